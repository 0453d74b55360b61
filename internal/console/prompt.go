// ABOUTME: Terminal implementation of Notifier and Confirmer
// ABOUTME: Prints colored notices and reads y/N answers from the input stream

package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Prompter talks to the admin over a line-oriented terminal.
type Prompter struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
	// interactive is false when input is not a terminal; confirmations are
	// then refused unless assumeYes is set.
	interactive bool
}

// NewPrompter creates a prompter on in and out. assumeYes answers every
// confirmation with yes without reading input.
func NewPrompter(in io.Reader, out io.Writer, assumeYes bool) *Prompter {
	interactive := true
	if f, ok := in.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}
	return &Prompter{
		in:          bufio.NewReader(in),
		out:         out,
		assumeYes:   assumeYes,
		interactive: interactive,
	}
}

// Notify prints msg as a highlighted notice.
func (p *Prompter) Notify(msg string) {
	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Fprintf(p.out, "  ! %s\n", msg)
}

// Confirm asks prompt and returns true only for an explicit yes.
func (p *Prompter) Confirm(prompt string) bool {
	if p.assumeYes {
		return true
	}
	if !p.interactive {
		fmt.Fprintf(p.out, "%s (refusing without a terminal; pass --yes)\n", prompt)
		return false
	}

	fmt.Fprintf(p.out, "%s [y/N] ", prompt)
	line, err := p.ReadLine()
	if err != nil {
		fmt.Fprintln(p.out)
		return false
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// ReadLine reads one line of input without the trailing newline. It returns
// io.EOF when input is exhausted.
func (p *Prompter) ReadLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
