// Package cli is a small flag parser with grouped -X<name>/-Xno-<name> toggles
// and a help page sized to the terminal.
package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/term"
)

type Value interface {
	String() string
	Set(string) error
}

type stringValue struct{ p *string }

func (v *stringValue) Set(s string) error { *v.p = s; return nil }
func (v *stringValue) String() string     { return *v.p }

type boolValue struct{ p *bool }

func (v *boolValue) Set(s string) error {
	if s == "" {
		*v.p = true
		return nil
	}
	val, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("invalid boolean value '%s': %w", s, err)
	}
	*v.p = val
	return nil
}
func (v *boolValue) String() string { return strconv.FormatBool(*v.p) }

type Flag struct {
	Name         string
	Shorthand    string
	Usage        string
	Value        Value
	DefValue     string
	ExpectedType string
}

func (f *Flag) isBool() bool {
	_, ok := f.Value.(*boolValue)
	return ok
}

type FlagGroup struct {
	Name                 string
	Description          string
	Flags                []FlagGroupEntry
	GroupType            string
	AvailableFlagsHeader string
}

// FlagGroupEntry is one toggle of a group: Prefix+Name sets Enabled,
// Prefix+"no-"+Name sets Disabled.
type FlagGroupEntry struct {
	Name     string
	Prefix   string
	Usage    string
	Enabled  *bool
	Disabled *bool
}

type FlagSet struct {
	name       string
	flags      map[string]*Flag
	shorthands map[string]*Flag
	groupFlags map[string]bool
	args       []string
	flagGroups []FlagGroup
}

func NewFlagSet(name string) *FlagSet {
	return &FlagSet{
		name:       name,
		flags:      make(map[string]*Flag),
		shorthands: make(map[string]*Flag),
		groupFlags: make(map[string]bool),
	}
}

func (f *FlagSet) Args() []string { return f.args }

func (f *FlagSet) Lookup(name string) *Flag { return f.flags[name] }

func (f *FlagSet) String(p *string, name, shorthand, value, usage, expectedType string) {
	*p = value
	f.Var(&stringValue{p}, name, shorthand, usage, value, expectedType)
}

func (f *FlagSet) Bool(p *bool, name, shorthand string, value bool, usage string) {
	*p = value
	f.Var(&boolValue{p}, name, shorthand, usage, strconv.FormatBool(value), "")
}

func (f *FlagSet) AddFlagGroup(name, description, groupType, availableFlagsHeader string, entries []FlagGroupEntry) {
	for _, e := range entries {
		if e.Enabled != nil {
			f.Bool(e.Enabled, e.Prefix+e.Name, "", *e.Enabled, e.Usage)
			f.groupFlags[e.Prefix+e.Name] = true
		}
		if e.Disabled != nil {
			f.Bool(e.Disabled, e.Prefix+"no-"+e.Name, "", *e.Disabled, "Disable '"+e.Name+"'")
			f.groupFlags[e.Prefix+"no-"+e.Name] = true
		}
	}
	f.flagGroups = append(f.flagGroups, FlagGroup{
		Name: name, Description: description, Flags: entries,
		GroupType: groupType, AvailableFlagsHeader: availableFlagsHeader,
	})
}

func (f *FlagSet) Var(value Value, name, shorthand, usage, defValue, expectedType string) {
	if name == "" {
		panic("flag name cannot be empty")
	}
	if _, ok := f.flags[name]; ok {
		panic(fmt.Sprintf("flag redefined: %s", name))
	}
	flag := &Flag{Name: name, Shorthand: shorthand, Usage: usage, Value: value, DefValue: defValue, ExpectedType: expectedType}
	f.flags[name] = flag
	if shorthand != "" {
		if _, ok := f.shorthands[shorthand]; ok {
			panic(fmt.Sprintf("shorthand flag redefined: %s", shorthand))
		}
		f.shorthands[shorthand] = flag
	}
}

// Parse accepts --name[=v], -name[=v] (for multi-letter names such as the
// group toggles), -x v and -xv. Anything else is a positional argument.
func (f *FlagSet) Parse(arguments []string) error {
	f.args = []string{}
	for i := 0; i < len(arguments); i++ {
		arg := arguments[i]
		switch {
		case arg == "--":
			f.args = append(f.args, arguments[i+1:]...)
			return nil
		case len(arg) < 2 || arg[0] != '-':
			f.args = append(f.args, arg)
			continue
		}

		body := strings.TrimPrefix(strings.TrimPrefix(arg, "-"), "-")
		name, value, hasValue := strings.Cut(body, "=")
		flag, ok := f.flags[name]
		if !ok && !strings.HasPrefix(arg, "--") {
			if sh, found := f.shorthands[body[:1]]; found {
				flag, name = sh, body[:1]
				value, hasValue = body[1:], len(body) > 1
				ok = true
			}
		}
		if !ok {
			return fmt.Errorf("unknown flag: %s", arg)
		}

		switch {
		case hasValue:
		case flag.isBool():
			value = ""
		case i+1 < len(arguments):
			i++
			value = arguments[i]
		default:
			return fmt.Errorf("flag needs an argument: %s", arg)
		}
		if err := flag.Value.Set(value); err != nil {
			return fmt.Errorf("flag %s: %w", name, err)
		}
	}
	return nil
}

type App struct {
	Name        string
	Synopsis    string
	Description string
	Authors     []string
	Repository  string
	FlagSet     *FlagSet
	Action      func(args []string) error
	Stdout      io.Writer
	Stderr      io.Writer
	help        bool
}

func NewApp(name string) *App {
	a := &App{Name: name, FlagSet: NewFlagSet(name), Stdout: os.Stdout, Stderr: os.Stderr}
	a.FlagSet.Bool(&a.help, "help", "h", false, "Display this information")
	return a
}

func (a *App) Run(arguments []string) error {
	a.help = false
	if err := a.FlagSet.Parse(arguments); err != nil {
		fmt.Fprintln(a.Stderr, err)
		fmt.Fprintf(a.Stderr, "Usage: %s %s\nRun '%s --help' for all available options and flags.\n", a.Name, a.Synopsis, a.Name)
		return err
	}
	if a.help {
		a.WriteHelp(a.Stdout)
		return nil
	}
	if a.Action != nil {
		return a.Action(a.FlagSet.Args())
	}
	return nil
}

// WriteHelp renders the full help page.
func (a *App) WriteHelp(w io.Writer) {
	h := &helpPage{app: a, width: terminalWidth()}
	h.measure()

	var sb strings.Builder
	if len(a.Authors) > 0 {
		fmt.Fprintf(&sb, "\n    Authors: %s\n", strings.Join(a.Authors, ", "))
	}
	if a.Repository != "" {
		fmt.Fprintf(&sb, "    For more details refer to %s\n", a.Repository)
	}
	if a.Synopsis != "" {
		fmt.Fprintf(&sb, "\n    Synopsis\n        %s %s\n", a.Name, a.Synopsis)
	}
	if a.Description != "" {
		fmt.Fprintf(&sb, "\n    Description\n        %s\n", a.Description)
	}

	if opts := h.options(); len(opts) > 0 {
		sb.WriteString("\n    Options\n")
		for _, flag := range opts {
			right := ""
			if !flag.isBool() && flag.DefValue != "" {
				right = "|" + flag.DefValue + "|"
			}
			h.entry(&sb, flagLabel(flag), flag.Usage, right)
		}
	}

	groups := append([]FlagGroup(nil), a.FlagSet.flagGroups...)
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	for _, g := range groups {
		h.group(&sb, g)
	}
	fmt.Fprint(w, sb.String())
}

type helpPage struct {
	app        *App
	width      int
	labelWidth int
	usageWidth int
}

func (h *helpPage) options() []*Flag {
	var out []*Flag
	for name, flag := range h.app.FlagSet.flags {
		if !h.app.FlagSet.groupFlags[name] {
			out = append(out, flag)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (h *helpPage) measure() {
	grow := func(w *int, s string) {
		if len(s) > *w {
			*w = len(s)
		}
	}
	for _, flag := range h.options() {
		grow(&h.labelWidth, flagLabel(flag))
		grow(&h.usageWidth, flag.Usage)
	}
	for _, g := range h.app.FlagSet.flagGroups {
		if len(g.Flags) == 0 {
			continue
		}
		grow(&h.labelWidth, fmt.Sprintf("-%sno-<%s>", g.Flags[0].Prefix, g.GroupType))
		for _, e := range g.Flags {
			grow(&h.labelWidth, e.Name)
			grow(&h.usageWidth, e.Usage)
		}
	}
}

func (h *helpPage) entry(sb *strings.Builder, label, usage, right string) {
	const indent = 8
	room := h.width - indent - h.labelWidth - 3 - len(right)
	if room < 10 {
		room = 10
	}
	lines := wrapText(usage, room)
	if len(lines) == 0 {
		lines = []string{""}
	}
	usageWidth := min(h.usageWidth, room)
	if right != "" {
		fmt.Fprintf(sb, "%*s%-*s %-*s  %s\n", indent, "", h.labelWidth, label, usageWidth, lines[0], right)
	} else {
		fmt.Fprintf(sb, "%*s%-*s %s\n", indent, "", h.labelWidth, label, lines[0])
	}
	for _, l := range lines[1:] {
		fmt.Fprintf(sb, "%*s%s\n", indent+h.labelWidth+1, "", l)
	}
}

func (h *helpPage) group(sb *strings.Builder, g FlagGroup) {
	if len(g.Flags) == 0 {
		return
	}
	prefix, kind := g.Flags[0].Prefix, g.GroupType
	fmt.Fprintf(sb, "\n    %s\n", g.Name)
	h.entry(sb, fmt.Sprintf("-%s<%s>", prefix, kind), "Enable a specific "+kind, "")
	h.entry(sb, fmt.Sprintf("-%sno-<%s>", prefix, kind), "Disable a specific "+kind, "")
	if g.AvailableFlagsHeader != "" {
		fmt.Fprintf(sb, "    %s\n", g.AvailableFlagsHeader)
	}

	entries := append([]FlagGroupEntry(nil), g.Flags...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	for _, e := range entries {
		state := "|-|"
		if e.Enabled != nil && *e.Enabled && (e.Disabled == nil || !*e.Disabled) {
			state = "|x|"
		}
		h.entry(sb, e.Name, e.Usage, state)
	}
}

func flagLabel(flag *Flag) string {
	var sb strings.Builder
	if flag.Shorthand != "" {
		fmt.Fprintf(&sb, "-%s, ", flag.Shorthand)
	}
	fmt.Fprintf(&sb, "--%s", flag.Name)
	if !flag.isBool() && flag.ExpectedType != "" {
		fmt.Fprintf(&sb, " <%s>", flag.ExpectedType)
	}
	return sb.String()
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return max(width, 20)
}

func wrapText(text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) > maxWidth {
			lines = append(lines, line)
			line = word
			continue
		}
		line += " " + word
	}
	return append(lines, line)
}
