package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// PromptConfirmer asks a y/N question on a terminal. Anything but y/yes
// (including EOF) is a no.
type PromptConfirmer struct {
	In  io.Reader
	Out io.Writer
}

func (p PromptConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintf(p.Out, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "s", "si", "sí":
		return true, nil
	default:
		return false, nil
	}
}

// AutoConfirm answers every prompt with a fixed value.
type AutoConfirm bool

func (a AutoConfirm) Confirm(context.Context, string) (bool, error) { return bool(a), nil }
