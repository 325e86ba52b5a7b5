package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"

	"github.com/labkey/pushdist/pkg/domain/interfaces"
	"github.com/labkey/pushdist/pkg/domain/types"
)

type console struct {
	in     *bufio.Reader
	out    io.Writer
	notify func(chan<- os.Signal)
	stop   func(chan<- os.Signal)
	prompt *color.Color
}

// Option is a functional option for the console
type Option func(*console)

// WithSignalNotify replaces signal.Notify/signal.Stop, for tests
func WithSignalNotify(notify, stop func(chan<- os.Signal)) Option {
	return func(c *console) {
		c.notify = notify
		c.stop = stop
	}
}

// New creates an operator console reading confirmations from in
func New(in io.Reader, out io.Writer, opts ...Option) interfaces.Console {
	c := &console{
		in:  bufio.NewReader(in),
		out: out,
		notify: func(ch chan<- os.Signal) {
			signal.Notify(ch, os.Interrupt)
		},
		stop:   signal.Stop,
		prompt: color.New(color.FgYellow, color.Bold),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *console) Printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// Confirm waits for Enter. Interrupts are trapped only while waiting here;
// anywhere else Ctrl-C terminates the process as usual.
func (c *console) Confirm(prompt string) error {
	sig := make(chan os.Signal, 1)
	c.notify(sig)
	defer c.stop(sig)

	c.prompt.Fprint(c.out, prompt)

	lines := make(chan error, 1)
	go func() {
		_, err := c.in.ReadString('\n')
		lines <- err
	}()

	select {
	case <-sig:
		fmt.Fprintln(c.out)
		return types.ErrCancelled
	case err := <-lines:
		if err != nil {
			return goerr.Wrap(err, "failed to read operator confirmation")
		}
		return nil
	}
}
