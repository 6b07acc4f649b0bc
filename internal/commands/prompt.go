package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter reads interactive answers. Tests replace DefaultPrompter.
type Prompter interface {
	Line(prompt string) (string, error)
	Secret(prompt string) (string, error)
}

// DefaultPrompter reads from stdin and writes prompts to stderr.
var DefaultPrompter Prompter = &stdinPrompter{in: os.Stdin, out: os.Stderr}

type stdinPrompter struct {
	in     *os.File
	out    io.Writer
	reader *bufio.Reader
}

func (p *stdinPrompter) Line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if p.reader == nil {
		p.reader = bufio.NewReader(p.in)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Secret reads without echo when stdin is a terminal.
func (p *stdinPrompter) Secret(prompt string) (string, error) {
	fd := int(p.in.Fd())
	if !term.IsTerminal(fd) {
		return p.Line(prompt)
	}
	fmt.Fprint(p.out, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ask returns value when set, otherwise prompts for it.
func ask(value, prompt string, secret bool) (string, error) {
	if value != "" {
		return value, nil
	}
	if secret {
		return DefaultPrompter.Secret(prompt)
	}
	return DefaultPrompter.Line(prompt)
}
