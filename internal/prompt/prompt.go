// Package prompt asks yes/no questions on the terminal.
//
// A Console only reads answers when its input is interactive; otherwise every
// question resolves to its default so unattended runs never block.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// Confirmer answers yes/no questions.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// Fixed is a Confirmer that always returns the same answer.
type Fixed bool

// Confirm returns the fixed answer.
func (f Fixed) Confirm(context.Context, string) (bool, error) { return bool(f), nil }

// Console prompts on a writer and reads answers from a reader.
type Console struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool

	mu sync.Mutex
	// pending holds a read left running by a cancelled Confirm. The next
	// Confirm takes its line instead of starting a second reader.
	pending chan answer
}

type answer struct {
	line string
	err  error
}

// NewConsole builds a Console. The input is interactive when it is a terminal.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: IsTerminal(in),
	}
}

// Interactive forces interactive mode on or off.
func (c *Console) Interactive(on bool) *Console {
	c.interactive = on
	return c
}

// Confirm prints question and waits for a y/n answer. Anything other than
// "y" or "yes" is a no. A non-interactive console answers no without
// reading. A line typed after a cancelled Confirm answers the next one.
func (c *Console) Confirm(ctx context.Context, question string) (bool, error) {
	if !c.interactive {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%s [y/N]: ", strings.TrimSpace(question))

	ch := c.pending
	if ch == nil {
		ch = make(chan answer, 1)
		go func() {
			line, err := c.in.ReadString('\n')
			ch <- answer{line: line, err: err}
		}()
	}
	c.pending = nil

	select {
	case <-ctx.Done():
		c.pending = ch
		fmt.Fprintln(c.out)
		return false, ctx.Err()
	case a := <-ch:
		if a.err != nil && a.err != io.EOF {
			return false, fmt.Errorf("read answer: %w", a.err)
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}

// IsTerminal reports whether v is an *os.File attached to a terminal.
func IsTerminal(v any) bool {
	file, ok := v.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
