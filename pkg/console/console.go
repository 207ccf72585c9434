// Package console renders chat lines for the local user.
package console

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/logrusorgru/aurora"
)

// eraseLine moves the cursor to the line just typed and clears it, so the
// echoed "Me:" line replaces the raw input on a terminal.
const eraseLine = "\033[F\033[2K"

// Options selects the labels and rendering of a Console.
type Options struct {
	LocalIP   string
	LocalPort uint16
	PeerPort  uint16
	// RewriteEcho erases the raw typed line before the echo.
	RewriteEcho bool
	Color       bool
}

// Console serialises chat lines from the input and display goroutines onto
// one writer. Each line is emitted with a single Write call.
type Console struct {
	mu      sync.Mutex
	w       io.Writer
	au      aurora.Aurora
	rewrite bool
	me      string
	peer    string
}

// New returns a Console writing to w.
func New(w io.Writer, o Options) *Console {
	return &Console{
		w:       w,
		au:      aurora.NewAurora(o.Color),
		rewrite: o.RewriteEcho,
		me:      Label(o.LocalIP, o.LocalPort),
		peer:    Label(o.LocalIP, o.PeerPort),
	}
}

// Label formats the "[user-<ip>-<port>]" tag used in front of chat lines.
func Label(ip string, port uint16) string {
	return "[user-" + ip + "-" + strconv.Itoa(int(port)) + "]"
}

// Echo prints a locally typed message.
func (c *Console) Echo(text string) error {
	line := fmt.Sprintf("%s Me: %s\n", c.au.Cyan(c.me), text)
	if c.rewrite {
		line = eraseLine + line
	}
	return c.write(line)
}

// Received prints a message that arrived from the peer.
func (c *Console) Received(text string) error {
	return c.write(fmt.Sprintf("%s Received: %s\n", c.au.Green(c.peer), text))
}

// Println prints a plain status line.
func (c *Console) Println(s string) error {
	return c.write(s + "\n")
}

func (c *Console) write(s string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := io.WriteString(c.w, s)
	return err
}
