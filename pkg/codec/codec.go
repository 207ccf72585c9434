// Package codec defines the encodings available for the session report.
package codec

import (
	"fmt"
	"strings"
)

// Codec defines a simple interface for marshaling typed values.
type Codec interface {
	ContentType() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Registry maps format names and content types to codecs.
type Registry struct {
	byType map[string]Codec
	byName map[string]Codec
}

// NewRegistry constructs a registry preloaded with JSON, CBOR and protobuf.
func NewRegistry() (*Registry, error) {
	r := &Registry{byType: make(map[string]Codec), byName: make(map[string]Codec)}
	r.Register("json", JSON())
	r.Register("proto", Proto())
	cb, err := CBOR()
	if err != nil {
		return nil, err
	}
	r.Register("cbor", cb)
	return r, nil
}

// Register adds a codec under a short name and its content type.
func (r *Registry) Register(name string, c Codec) {
	r.byType[c.ContentType()] = c
	r.byName[strings.ToLower(name)] = c
}

// Get returns a codec by content type, or nil.
func (r *Registry) Get(contentType string) Codec { return r.byType[contentType] }

// Lookup returns a codec by short name ("json", "cbor", "proto").
func (r *Registry) Lookup(name string) (Codec, error) {
	c, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("codec: unknown format %q", name)
	}
	return c, nil
}
