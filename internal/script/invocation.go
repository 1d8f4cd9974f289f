package script

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
)

// Stdio holds the streams of a script run. Nil members use the process streams.
type Stdio struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (s Stdio) withDefaults() Stdio {
	if s.Stdin == nil {
		s.Stdin = os.Stdin
	}
	if s.Stdout == nil {
		s.Stdout = os.Stdout
	}
	if s.Stderr == nil {
		s.Stderr = os.Stderr
	}
	return s
}

// Invocation is the context of one script run.
type Invocation struct {
	Command *cli.Command
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger

	reader *bufio.Reader
}

// IsSet reports whether the flag was given on the command line.
func (inv *Invocation) IsSet(flag string) bool {
	return inv.Command != nil && inv.Command.IsSet(flag)
}

// Args returns the positional arguments.
func (inv *Invocation) Args() []string {
	if inv.Command == nil {
		return nil
	}
	return inv.Command.Args().Slice()
}

// Prompt writes message and reads one line of input.
func (inv *Invocation) Prompt(message string) (string, error) {
	if inv.reader == nil {
		inv.reader = bufio.NewReader(inv.Stdin)
	}
	fmt.Fprintf(inv.Stdout, "%s ", message)
	line, err := inv.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

type verboseSetter interface {
	SetVerbose(bool)
}

// Command builds the cli command running s with stdio.
func Command(s Script, stdio Stdio, logger *slog.Logger) *cli.Command {
	stdio = stdio.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &cli.Command{
		Name:      s.Ident(),
		Usage:     s.Description(),
		Flags:     Flags(s.Arguments()),
		Reader:    stdio.Stdin,
		Writer:    stdio.Stdout,
		ErrWriter: stdio.Stderr,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if v, ok := s.(verboseSetter); ok {
				v.SetVerbose(!cmd.Bool("quiet"))
			}
			return s.Run(ctx, &Invocation{
				Command: cmd,
				Stdin:   stdio.Stdin,
				Stdout:  stdio.Stdout,
				Stderr:  stdio.Stderr,
				Logger:  logger.With("script", s.Ident()),
			})
		},
	}
}

// Execute runs s with the given command line arguments, not including the
// script name.
func Execute(ctx context.Context, s Script, args []string, stdio Stdio, logger *slog.Logger) error {
	cmd := Command(s, stdio, logger)
	return cmd.Run(ctx, append([]string{s.Ident()}, args...))
}
