package script

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Base implements the bookkeeping shared by scripts. Embed it and add Run.
type Base struct {
	ident       string
	description string
	args        []NamedArgument
	verbose     bool
	data        map[string]any
}

// NewBase returns a Base carrying the default arguments.
func NewBase(ident, description string) Base {
	return Base{
		ident:       ident,
		description: description,
		args:        DefaultArguments(),
		verbose:     true,
		data:        map[string]any{},
	}
}

func (b *Base) Ident() string { return b.ident }

func (b *Base) Description() string { return b.description }

func (b *Base) SetDescription(description string) { b.description = description }

// AddArgument adds or replaces the argument called name.
func (b *Base) AddArgument(name string, arg Argument) error {
	if name == "" {
		return fmt.Errorf("%w: Argument ident must be a string.", ErrInvalidArgument)
	}
	na := NamedArgument{Name: name, Argument: arg}
	if i := slices.IndexFunc(b.args, func(a NamedArgument) bool { return a.Name == name }); i >= 0 {
		b.args[i] = na
		return nil
	}
	b.args = append(b.args, na)
	return nil
}

// Arguments returns the arguments in declaration order.
func (b *Base) Arguments() []NamedArgument {
	return slices.Clone(b.args)
}

// Argument returns the argument called name.
func (b *Base) Argument(name string) (NamedArgument, bool) {
	i := slices.IndexFunc(b.args, func(a NamedArgument) bool { return a.Name == name })
	if i < 0 {
		return NamedArgument{}, false
	}
	return b.args[i], true
}

func (b *Base) SetVerbose(verbose bool) { b.verbose = verbose }

func (b *Base) Verbose() bool { return b.verbose }

func (b *Base) SetData(data map[string]any) error {
	b.data = maps.Clone(data)
	if b.data == nil {
		b.data = map[string]any{}
	}
	return nil
}

// Data returns the script data.
func (b *Base) Data() map[string]any { return b.data }

func (b *Base) flagName(name string) string {
	if a, ok := b.Argument(name); ok {
		return a.FlagName()
	}
	return name
}

// ArgOrInput returns the flag value of name, prompting for it when unset.
func (b *Base) ArgOrInput(inv *Invocation, name string) (string, error) {
	flag := b.flagName(name)
	if inv.IsSet(flag) {
		return inv.Command.String(flag), nil
	}

	desc := name
	if a, ok := b.Argument(name); ok && a.Description != "" {
		desc = a.Description
	}
	return inv.Prompt(fmt.Sprintf("Enter %s:", desc))
}

// ArgOrChoices returns the selected choice values of a checkbox argument.
// A set flag is read as a comma separated list of values. Otherwise the
// choices are listed and a comma separated list of their numbers is read.
func (b *Base) ArgOrChoices(inv *Invocation, name string) ([]string, error) {
	a, ok := b.Argument(name)
	if !ok || len(a.Choices) == 0 {
		return nil, fmt.Errorf("%w: %q has no choices", ErrInvalidArgument, name)
	}

	if inv.IsSet(a.FlagName()) {
		var out []string
		for _, v := range splitList(inv.Command.String(a.FlagName())) {
			if !slices.ContainsFunc(a.Choices, func(c Choice) bool { return c.Value == v }) {
				return nil, fmt.Errorf("%w: %q", ErrInvalidChoice, v)
			}
			out = append(out, v)
		}
		return out, nil
	}

	desc := a.Description
	if desc == "" {
		desc = name
	}
	fmt.Fprintf(inv.Stdout, "Select %s\n", desc)
	for i, c := range a.Choices {
		label := c.Label
		if label == "" {
			label = c.Value
		}
		fmt.Fprintf(inv.Stdout, "  [%d] %s\n", i+1, label)
	}
	line, err := inv.Prompt("Enter numbers separated by commas:")
	if err != nil {
		return nil, err
	}

	var out []string
	for _, field := range splitList(line) {
		n, err := strconv.Atoi(field)
		if err != nil || n < 1 || n > len(a.Choices) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidChoice, field)
		}
		out = append(out, a.Choices[n-1].Value)
	}
	return out, nil
}

// Help writes the usage of the script.
func (b *Base) Help(inv *Invocation) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Usage: %s [flags]\n", b.ident)
	if b.description != "" {
		fmt.Fprintf(&sb, "\n%s\n", b.description)
	}
	sb.WriteString("\nFlags:\n")
	for _, a := range b.args {
		names := "--" + a.FlagName()
		if a.Prefix != "" {
			names = "-" + a.Prefix + ", " + names
		}
		fmt.Fprintf(&sb, "  %-24s %s\n", names, a.Description)
	}
	fmt.Fprintf(&sb, "  %-24s %s\n", "-h, --help", "Prints a usage statement")
	_, err := fmt.Fprint(inv.Stdout, sb.String())
	return err
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
