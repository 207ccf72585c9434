// Package report writes the end-of-session statistics in a chosen encoding.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/gabrielkryss/s-talk/pkg/codec"
	"github.com/gabrielkryss/s-talk/pkg/relay"
)

// Report is the encoded form of a relay.Summary.
type Report struct {
	Local      string              `json:"local" cbor:"local"`
	Peer       string              `json:"peer" cbor:"peer"`
	Transport  string              `json:"transport" cbor:"transport"`
	StartedMS  int64               `json:"started_unix_ms" cbor:"started_unix_ms"`
	DurationMS int64               `json:"duration_ms" cbor:"duration_ms"`
	Stats      relay.StatsSnapshot `json:"stats" cbor:"stats"`
}

// FromSummary converts a finished session into a Report.
func FromSummary(s relay.Summary) Report {
	return Report{
		Local:      s.Local,
		Peer:       s.Peer,
		Transport:  s.Transport,
		StartedMS:  s.Started.UnixMilli(),
		DurationMS: s.Stopped.Sub(s.Started).Milliseconds(),
		Stats:      s.Stats,
	}
}

// Struct renders the report as a protobuf Struct for the proto codec.
func (r Report) Struct() (*structpb.Struct, error) {
	st := r.Stats
	return structpb.NewStruct(map[string]any{
		"local":           r.Local,
		"peer":            r.Peer,
		"transport":       r.Transport,
		"started_unix_ms": r.StartedMS,
		"duration_ms":     r.DurationMS,
		"stats": map[string]any{
			"queued":      st.Queued,
			"sent":        st.Sent,
			"send_errors": st.SendErrors,
			"received":    st.Received,
			"truncated":   st.Truncated,
			"dropped":     st.Dropped,
			"displayed":   st.Displayed,
		},
	})
}

// Encode marshals r with c. Protobuf codecs receive the Struct form.
func Encode(c codec.Codec, r Report) ([]byte, error) {
	if c.ContentType() == codec.Proto().ContentType() {
		st, err := r.Struct()
		if err != nil {
			return nil, fmt.Errorf("report: %w", err)
		}
		return c.Marshal(st)
	}
	return c.Marshal(r)
}

// Write encodes r in format ("json", "cbor" or "proto") and writes it to path.
func Write(path, format string, r Report) error {
	reg, err := codec.NewRegistry()
	if err != nil {
		return err
	}
	c, err := reg.Lookup(format)
	if err != nil {
		return err
	}
	b, err := Encode(c, r)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("report dir: %w", err)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
