package util

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gosuri/uilive"
	"github.com/mattn/go-isatty"
)

// TerminalPrinter redraws the latest line of each of its outputs in place.
// When stdout is not a terminal every line is passed through instead.
type TerminalPrinter struct {
	outputs   []*Output
	frequency time.Duration
	doneCh    chan struct{}
	finished  chan struct{}
	stopOnce  sync.Once
	live      bool

	writer  *uilive.Writer
	writers []io.Writer
	plain   io.Writer
}

func NewTerminalPrinter(frequency time.Duration) *TerminalPrinter {
	return &TerminalPrinter{
		outputs:   make([]*Output, 0),
		frequency: frequency,
		doneCh:    make(chan struct{}),
		finished:  make(chan struct{}),
		live:      IsTerminal(os.Stdout),

		writer:  uilive.New(),
		writers: make([]io.Writer, 0),
		plain:   os.Stdout,
	}
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (t *TerminalPrinter) NewOutput() *Output {
	out := &Output{mu: new(sync.Mutex)}
	if !t.live {
		out.passthrough = t.plain
	}
	t.outputs = append(t.outputs, out)
	if len(t.outputs) == 1 {
		t.writers = append(t.writers, t.writer)
	} else {
		t.writers = append(t.writers, t.writer.Newline())
	}
	return out
}

func (p *TerminalPrinter) Start(ctx context.Context) {
	if !p.live {
		close(p.finished)
		return
	}
	p.writer.Start()
	go func() {
		defer close(p.finished)
		for {
			select {
			case <-p.doneCh:
				p.print()
				p.writer.Stop()
				return
			case <-ctx.Done():
				p.writer.Stop()
				return
			case <-time.After(p.frequency):
				p.print()
			}
		}
	}()
}

// Stop prints the final state of every output. It must follow Start.
func (p *TerminalPrinter) Stop() {
	p.stopOnce.Do(func() { close(p.doneCh) })
	<-p.finished
}

func (p *TerminalPrinter) print() {
	for i, output := range p.outputs {
		fmt.Fprint(p.writers[i], output.Get()+"\n")
	}
	p.writer.Flush()
}

// Output holds the latest line written to it. It is safe for concurrent
// use by one writer and the printer.
type Output struct {
	mu          *sync.Mutex
	printable   string
	passthrough io.Writer
}

// Write keeps the last non-empty line of b.
func (o *Output) Write(b []byte) (int, error) {
	if o.passthrough != nil {
		return o.passthrough.Write(b)
	}
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	o.Set(lines[len(lines)-1])
	return len(b), nil
}

func (o *Output) Set(s string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.printable = s
}

func (o *Output) Get() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.printable
}
