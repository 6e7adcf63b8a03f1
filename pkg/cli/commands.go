package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// ArgSpec describes a single argument for a command. Fields are textual
// and used for help and arity checks.
type ArgSpec struct {
	Name        string // human name
	Type        string // "int", "float", "index", "path", "enum", "options"
	Required    bool
	Default     string // textual default (for help only)
	Description string
}

// CommandSpec defines a single command and its expected arguments.
type CommandSpec struct {
	Name        string
	Aliases     []string
	Args        []ArgSpec
	Usage       string // short usage string
	Description string // brief description
	// Variadic lets the last argument repeat (key=value options, regions).
	Variadic bool
	Run      func(ctx context.Context, s *Session, args []string) error
}

// Commands is the registry the session dispatches on. It is filled in by
// init to break the reference cycle with the help command.
var Commands []CommandSpec

func init() {
	Commands = []CommandSpec{
		{
			Name:        "load",
			Aliases:     []string{"open", "o"},
			Args:        []ArgSpec{{"path", "path", false, "", "image file (PNG, JPEG, GIF, BMP, TIFF, WebP); fzf picker when omitted"}},
			Usage:       "load [path]",
			Description: "Load an image as the original; clears the history.",
			Run:         cmdLoad,
		},
		{
			Name:        "save",
			Aliases:     []string{"s"},
			Args:        []ArgSpec{{"index", "index", true, "", "history record"}, {"path", "path", true, "", "output file; format from extension"}},
			Usage:       "save <index> <path>",
			Description: "Encode a history record to disk.",
			Run:         cmdSave,
		},
		{
			Name:        "list",
			Aliases:     []string{"ls"},
			Usage:       "list",
			Description: "List the history records.",
			Run:         cmdList,
		},
		{
			Name:        "info",
			Args:        []ArgSpec{{"index", "index", true, "", "history record"}},
			Usage:       "info <index>",
			Description: "Show the details of one record.",
			Run:         cmdInfo,
		},
		{
			Name:        "hist",
			Aliases:     []string{"histogram"},
			Args:        []ArgSpec{{"index", "index", true, "", "history record"}, {"path", "path", false, "", "write a histogram chart (.png, .svg, .pdf)"}},
			Usage:       "hist <index> [path]",
			Description: "Summarize a record's histogram, optionally charting it.",
			Run:         cmdHist,
		},
		{
			Name:        "preview",
			Aliases:     []string{"p"},
			Args:        []ArgSpec{{"index", "index", false, "last", "history record"}},
			Usage:       "preview [index]",
			Description: "Show a record inline in kitty or iTerm2 compatible terminals.",
			Run:         cmdPreview,
		},
		{
			Name: "resample",
			Args: []ArgSpec{
				{"method", "enum", true, "", "nearest-neighbor|linear-x|linear-y|bilinear"},
				{"source", "index", true, "", "history record"},
				{"width", "int", true, "", "output width"},
				{"height", "int", true, "", "output height"},
			},
			Usage:       "resample <method> <source> <width> <height>",
			Description: "Change the spatial resolution.",
			Run:         cmdResample,
		},
		{
			Name:        "gray",
			Args:        []ArgSpec{{"source", "index", true, "", "history record"}, {"bit", "int", true, "", "bits per pixel, 1..8"}},
			Usage:       "gray <source> <bit>",
			Description: "Reduce to 2^bit gray levels.",
			Run:         cmdGray,
		},
		{
			Name:        "bitplane",
			Args:        []ArgSpec{{"source", "index", true, "", "history record"}, {"mask", "int", true, "", "planes to keep, 0..255 (0b/0x prefixes accepted)"}},
			Usage:       "bitplane <source> <mask>",
			Description: "Keep only the selected bit planes.",
			Run:         cmdBitPlane,
		},
		{
			Name: "equalize",
			Args: []ArgSpec{
				{"source", "index", true, "", "history record"},
				{"size", "int", false, "0", "local window size; 0 is global"},
				{"region", "int", false, "", "x0 y0 x1 y1 for a global region instead of size"},
			},
			Usage:       "equalize <source> [size | x0 y0 x1 y1]",
			Description: "Histogram equalization, global or local.",
			Variadic:    true,
			Run:         cmdEqualize,
		},
		{
			Name: "filter",
			Args: []ArgSpec{
				{"method", "enum", true, "", "see 'help filter'"},
				{"source", "index", true, "", "history record"},
				{"options", "options", false, "", "size= k= sigma= order= d= mask= process= blurred= boost="},
			},
			Usage:       "filter <method> <source> [key=value...]",
			Description: "Apply a spatial filter.",
			Variadic:    true,
			Run:         cmdFilter,
		},
		{
			Name: "noise",
			Args: []ArgSpec{
				{"source", "index", true, "", "history record"},
				{"mean", "float", true, "", "noise mean"},
				{"sigma", "float", true, "", "noise standard deviation"},
				{"k", "float", true, "", "noise amplitude"},
				{"seed", "int", false, "random", "generator seed"},
			},
			Usage:       "noise <source> <mean> <sigma> <k> [seed]",
			Description: "Add Gaussian noise.",
			Run:         cmdNoise,
		},
		{
			Name: "op",
			Args: []ArgSpec{
				{"op", "enum", true, "", "add|sub|scale"},
				{"source", "index", true, "", "history record"},
				{"other", "index", false, "", "second operand for add and sub"},
			},
			Usage:       "op <add|sub|scale> <source> [other]",
			Description: "Pixel-wise addition, subtraction or min-max scaling.",
			Run:         cmdOp,
		},
		{
			Name:        "pop",
			Aliases:     []string{"undo"},
			Usage:       "pop",
			Description: "Remove the newest record.",
			Run:         cmdPop,
		},
		{
			Name:        "reset",
			Usage:       "reset",
			Description: "Clear the history.",
			Run:         cmdReset,
		},
		{
			Name:        "status",
			Usage:       "status",
			Description: "Show engine status and the last error.",
			Run:         cmdStatus,
		},
		{
			Name:        "update",
			Aliases:     []string{"u"},
			Usage:       "update",
			Description: "Check for a newer release and install it.",
			Run:         cmdUpdate,
		},
		{
			Name:        "help",
			Aliases:     []string{"h", "?"},
			Args:        []ArgSpec{{"command", "string", false, "", "command to describe"}},
			Usage:       "help [command]",
			Description: "List commands or describe one.",
			Run:         cmdHelp,
		},
		{
			Name:        "quit",
			Aliases:     []string{"q", "exit"},
			Usage:       "quit",
			Description: "Leave the session.",
			Run:         func(context.Context, *Session, []string) error { return ErrQuit },
		},
	}
}

// LookupCommand finds a command by name or alias, case-insensitively.
func LookupCommand(name string) (*CommandSpec, bool) {
	name = strings.ToLower(name)
	for i := range Commands {
		c := &Commands[i]
		if c.Name == name {
			return c, true
		}
		for _, a := range c.Aliases {
			if a == name {
				return c, true
			}
		}
	}
	return nil, false
}

// CommandNames returns the sorted primary command names.
func CommandNames() []string {
	names := make([]string, len(Commands))
	for i, c := range Commands {
		names[i] = c.Name
	}
	sort.Strings(names)
	return names
}

// checkArity validates the argument count against c.Args.
func (c *CommandSpec) checkArity(args []string) error {
	required := 0
	for _, a := range c.Args {
		if a.Required {
			required++
		}
	}
	if len(args) < required {
		return fmt.Errorf("%s: missing %s; usage: %s", c.Name, c.Args[len(args)].Name, c.Usage)
	}
	if !c.Variadic && len(args) > len(c.Args) {
		return fmt.Errorf("%s: too many arguments; usage: %s", c.Name, c.Usage)
	}
	return nil
}

// Tooltip renders the multi-line help for c.
func (c *CommandSpec) Tooltip() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s\nUsage: %s", c.Name, c.Description, c.Usage)
	if len(c.Aliases) > 0 {
		fmt.Fprintf(&b, "\nAliases: %s", strings.Join(c.Aliases, ", "))
	}
	for _, a := range c.Args {
		req := "optional"
		if a.Required {
			req = "required"
		}
		fmt.Fprintf(&b, "\n  %s (%s, %s)", a.Name, a.Type, req)
		if a.Default != "" {
			fmt.Fprintf(&b, " default=%s", a.Default)
		}
		if a.Description != "" {
			fmt.Fprintf(&b, ": %s", a.Description)
		}
	}
	return b.String()
}
