package script

import (
	"github.com/urfave/cli/v3"
)

// Input types of an argument prompt
const (
	InputText     = "text"
	InputCheckbox = "checkbox"
)

// Argument describes one script flag.
type Argument struct {
	// Prefix is the one letter alias, LongPrefix the flag name. LongPrefix
	// defaults to the argument name.
	Prefix       string
	LongPrefix   string
	Description  string
	NoValue      bool
	DefaultValue string
	InputType    string
	Choices      []Choice
}

// Choice is one selectable value of a checkbox argument.
type Choice struct {
	Value string
	Label string
}

// NamedArgument pairs an argument with its name.
type NamedArgument struct {
	Name string
	Argument
}

// FlagName returns the long flag name of the argument.
func (a NamedArgument) FlagName() string {
	if a.LongPrefix != "" {
		return a.LongPrefix
	}
	return a.Name
}

// DefaultArguments are added to every script. Help comes from the cli.
func DefaultArguments() []NamedArgument {
	return []NamedArgument{
		{
			Name: "quiet",
			Argument: Argument{
				Prefix:      "q",
				LongPrefix:  "quiet",
				Description: "Disable Output additional information on operations",
				NoValue:     true,
			},
		},
	}
}

// Flags converts arguments to cli flags.
func Flags(args []NamedArgument) []cli.Flag {
	flags := make([]cli.Flag, 0, len(args))
	for _, a := range args {
		var aliases []string
		if a.Prefix != "" {
			aliases = []string{a.Prefix}
		}
		if a.NoValue {
			flags = append(flags, &cli.BoolFlag{
				Name:    a.FlagName(),
				Aliases: aliases,
				Usage:   a.Description,
			})
			continue
		}
		flags = append(flags, &cli.StringFlag{
			Name:    a.FlagName(),
			Aliases: aliases,
			Usage:   a.Description,
			Value:   a.DefaultValue,
		})
	}
	return flags
}
