package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

// prompt asks the operator before a large hidden message is read.
type prompt struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

func newPrompt(in io.Reader, out io.Writer) *prompt {
	var interactive bool
	if f, ok := in.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}
	return &prompt{in: bufio.NewReader(in), out: out, interactive: interactive}
}

// ConfirmLargePayload declines without asking when nobody is at the terminal.
func (p *prompt) ConfirmLargePayload(length uint32) (bool, error) {
	size := humanize.IBytes(uint64(length))
	if !p.interactive {
		fmt.Fprintf(p.out, "Hidden message is %s, rerun with --yes to extract it\n", size)
		return false, nil
	}

	fmt.Fprintf(p.out, "Hidden message is %s, extract it anyway? [y/N] ", size)
	answer, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
