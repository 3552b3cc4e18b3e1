package render

import (
	"bufio"
	"io"
	"os"

	"golang.org/x/term"
)

const clearScreen = "\x1b[H\x1b[2J"

// Console redraws the maps each cycle. The screen is only cleared when the
// destination is a terminal, so piped output stays plain text.
type Console struct {
	w     *bufio.Writer
	clear bool
}

func NewConsole(w io.Writer) *Console {
	clear := false
	if f, ok := w.(*os.File); ok {
		clear = term.IsTerminal(int(f.Fd()))
	}
	return &Console{w: bufio.NewWriter(w), clear: clear}
}

// Frame clears the screen (on a terminal) and prints each block after a
// blank line.
func (c *Console) Frame(blocks ...string) error {
	if c.clear {
		if _, err := c.w.WriteString(clearScreen); err != nil {
			return err
		}
	}
	for _, block := range blocks {
		if err := c.w.WriteByte('\n'); err != nil {
			return err
		}
		if _, err := c.w.WriteString(block); err != nil {
			return err
		}
	}
	return c.w.Flush()
}

// Println writes a line below the current frame.
func (c *Console) Println(line string) error {
	if _, err := c.w.WriteString(line + "\n"); err != nil {
		return err
	}
	return c.w.Flush()
}
