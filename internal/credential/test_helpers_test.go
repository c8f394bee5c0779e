package credential

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// lineAsker answers questions from a reader, one line each.
type lineAsker struct {
	in  *bufio.Reader
	out io.Writer
}

func newLineAsker(in io.Reader, out io.Writer) *lineAsker {
	return &lineAsker{in: bufio.NewReader(in), out: out}
}

func (a *lineAsker) Ask(question string) (string, error) {
	fmt.Fprint(a.out, question)
	line, err := a.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
