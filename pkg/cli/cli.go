package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/term"
)

const indentUnit = "    "

type Value interface {
	String() string
	Set(string) error
	Get() any
}

// switchValue is implemented by values that take no argument.
type switchValue interface {
	Value
	isSwitch()
}

type stringValue struct{ p *string }

func (v *stringValue) Set(s string) error { *v.p = s; return nil }
func (v *stringValue) String() string     { return *v.p }
func (v *stringValue) Get() any           { return *v.p }

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
func (v *boolValue) Get() any       { return *v.p }
func (v *boolValue) isSwitch()      {}

type intValue struct{ p *int }

func (v *intValue) Set(s string) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer value '%s': %w", s, err)
	}
	*v.p = val
	return nil
}
func (v *intValue) String() string { return strconv.Itoa(*v.p) }
func (v *intValue) Get() any       { return *v.p }

// countValue increments once per occurrence, as in -v -v or -vv.
type countValue struct{ p *int }

func (v *countValue) Set(string) error { *v.p++; return nil }
func (v *countValue) String() string   { return strconv.Itoa(*v.p) }
func (v *countValue) Get() any         { return *v.p }
func (v *countValue) isSwitch()        {}

type listValue struct{ p *[]string }

func (v *listValue) Set(s string) error { *v.p = append(*v.p, s); return nil }
func (v *listValue) String() string     { return strings.Join(*v.p, ", ") }
func (v *listValue) Get() any           { return *v.p }

type Flag struct {
	Name         string
	Shorthand    string
	Usage        string
	Value        Value
	DefValue     string
	ExpectedType string
	prefix       bool
}

func (f *Flag) isSwitch() bool {
	_, ok := f.Value.(switchValue)
	return ok
}

// FlagGroup is a family of -<prefix><name> / -<prefix>no-<name> switches.
type FlagGroup struct {
	Name      string
	Prefix    string
	GroupType string
	Header    string
	Flags     []FlagGroupEntry
}

type FlagGroupEntry struct {
	Name     string
	Usage    string
	Default  bool
	Enabled  *bool
	Disabled *bool
}

type FlagSet struct {
	name          string
	flags         map[string]*Flag
	shorthands    map[string]*Flag
	specialPrefix map[string]*Flag
	args          []string
	groups        []FlagGroup
}

func NewFlagSet(name string) *FlagSet {
	return &FlagSet{
		name:          name,
		flags:         make(map[string]*Flag),
		shorthands:    make(map[string]*Flag),
		specialPrefix: make(map[string]*Flag),
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

func (f *FlagSet) Int(p *int, name, shorthand string, value int, usage, expectedType string) {
	*p = value
	f.Var(&intValue{p}, name, shorthand, usage, strconv.Itoa(value), expectedType)
}

func (f *FlagSet) Count(p *int, name, shorthand, usage string) {
	*p = 0
	f.Var(&countValue{p}, name, shorthand, usage, "", "")
}

func (f *FlagSet) List(p *[]string, name, shorthand string, value []string, usage, expectedType string) {
	*p = value
	f.Var(&listValue{p}, name, shorthand, usage, "", expectedType)
}

// Special registers a prefix flag whose value is glued to it, like -lfoo.
func (f *FlagSet) Special(p *[]string, prefix, usage, expectedType string) {
	*p = []string{}
	f.Var(&listValue{p}, prefix, "", usage, "", expectedType)
	f.flags[prefix].prefix = true
	f.specialPrefix[prefix] = f.flags[prefix]
}

// AddFlagGroup defines an enable and a disable switch for every entry.
func (f *FlagSet) AddFlagGroup(group FlagGroup) {
	for _, e := range group.Flags {
		if e.Enabled != nil {
			f.Bool(e.Enabled, group.Prefix+e.Name, "", false, e.Usage)
		}
		if e.Disabled != nil {
			f.Bool(e.Disabled, group.Prefix+"no-"+e.Name, "", false, "Disable '"+e.Name+"'")
		}
	}
	f.groups = append(f.groups, group)
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

func (f *FlagSet) Parse(arguments []string) error {
	f.args = []string{}
	for i := 0; i < len(arguments); i++ {
		arg := arguments[i]
		switch {
		case len(arg) < 2 || arg[0] != '-':
			f.args = append(f.args, arg)
		case arg == "--":
			f.args = append(f.args, arguments[i+1:]...)
			return nil
		case strings.HasPrefix(arg, "--"):
			if err := f.setNamed(arg[2:], "--", arguments, &i); err != nil {
				return err
			}
		default:
			name, _, _ := strings.Cut(arg[1:], "=")
			if _, ok := f.flags[name]; ok && len(name) > 1 {
				if err := f.setNamed(arg[1:], "-", arguments, &i); err != nil {
					return err
				}
			} else if err := f.parseShortFlag(arg, arguments, &i); err != nil {
				return err
			}
		}
	}
	return nil
}

// setNamed handles name, name=value and name <value> forms.
func (f *FlagSet) setNamed(spec, dashes string, arguments []string, i *int) error {
	name, value, hasValue := strings.Cut(spec, "=")
	if name == "" {
		return fmt.Errorf("empty flag name")
	}
	flag, ok := f.flags[name]
	if !ok {
		return fmt.Errorf("unknown flag: %s%s", dashes, name)
	}
	if hasValue {
		return flag.Value.Set(value)
	}
	if flag.isSwitch() {
		return flag.Value.Set("")
	}
	if *i+1 >= len(arguments) {
		return fmt.Errorf("flag needs an argument: %s%s", dashes, name)
	}
	*i++
	return flag.Value.Set(arguments[*i])
}

func (f *FlagSet) parseShortFlag(arg string, arguments []string, i *int) error {
	for prefix, flag := range f.specialPrefix {
		if strings.HasPrefix(arg, "-"+prefix) && len(arg) > len(prefix)+1 {
			return flag.Value.Set(arg[len(prefix)+1:])
		}
	}

	shorthand := arg[1:2]
	flag, ok := f.shorthands[shorthand]
	if !ok {
		return fmt.Errorf("unknown shorthand flag: -%s", shorthand)
	}
	if flag.isSwitch() {
		// Repeated switches may be stacked: -vvv
		for _, c := range arg[1:] {
			if string(c) != shorthand {
				return fmt.Errorf("unexpected value for switch -%s: %s", shorthand, arg[2:])
			}
			if err := flag.Value.Set(""); err != nil {
				return err
			}
		}
		return nil
	}
	value := arg[2:]
	if value == "" {
		if *i+1 >= len(arguments) {
			return fmt.Errorf("flag needs an argument: -%s", shorthand)
		}
		*i++
		value = arguments[*i]
	}
	return flag.Value.Set(value)
}

// ErrUsage wraps flag parsing errors; Run has already printed them.
var ErrUsage = errors.New("usage error")

type App struct {
	Name        string
	Synopsis    string
	Description string
	Authors     []string
	Repository  string
	FlagSet     *FlagSet
	Action      func(args []string) error
}

func NewApp(name string) *App {
	return &App{Name: name, FlagSet: NewFlagSet(name)}
}

func (a *App) Run(arguments []string) error {
	help := false
	a.FlagSet.Bool(&help, "help", "h", false, "Display this information")

	if err := a.FlagSet.Parse(arguments); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintf(os.Stderr, "Run '%s --help' for all available options and flags.\n", a.Name)
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if help {
		a.WriteHelp(os.Stdout, getTerminalWidth())
		return nil
	}
	if a.Action != nil {
		return a.Action(a.FlagSet.Args())
	}
	return nil
}

// WriteHelp renders the help page wrapped to width columns.
func (a *App) WriteHelp(w io.Writer, width int) {
	var sb strings.Builder
	options := a.optionFlags()

	left, usage := 0, 0
	for _, flag := range options {
		left = max(left, len(flagString(flag)))
		usage = max(usage, len(flag.Usage))
	}
	for _, g := range a.FlagSet.groups {
		left = max(left, len(fmt.Sprintf("-%sno-<%s>", g.Prefix, g.GroupType)))
		for _, e := range g.Flags {
			left = max(left, len(e.Name))
			usage = max(usage, len(e.Usage))
		}
	}
	l := layout{width: width, left: left, usage: usage}

	if len(a.Authors) > 0 {
		fmt.Fprintf(&sb, "\n%s%s, by %s\n", indentUnit, a.Name, strings.Join(a.Authors, ", "))
	}
	if a.Repository != "" {
		fmt.Fprintf(&sb, "%sFor more details refer to %s\n", indentUnit, a.Repository)
	}
	if a.Synopsis != "" {
		fmt.Fprintf(&sb, "\n%sSynopsis\n%s%s %s\n", indentUnit, indentUnit+indentUnit, a.Name, a.Synopsis)
	}
	if a.Description != "" {
		fmt.Fprintf(&sb, "\n%sDescription\n", indentUnit)
		for _, line := range wrapText(a.Description, width-2*len(indentUnit)) {
			fmt.Fprintf(&sb, "%s%s\n", indentUnit+indentUnit, line)
		}
	}

	if len(options) > 0 {
		fmt.Fprintf(&sb, "\n%sOptions\n", indentUnit)
		for _, flag := range options {
			right := ""
			if !flag.isSwitch() && flag.DefValue != "" && flag.DefValue != "0" {
				right = "|" + flag.DefValue + "|"
			}
			l.entry(&sb, flagString(flag), flag.Usage, right)
		}
	}

	groups := append([]FlagGroup(nil), a.FlagSet.groups...)
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	for _, g := range groups {
		fmt.Fprintf(&sb, "\n%s%s\n", indentUnit, g.Name)
		l.entry(&sb, fmt.Sprintf("-%s<%s>", g.Prefix, g.GroupType), "Enable a specific "+g.GroupType, "")
		l.entry(&sb, fmt.Sprintf("-%sno-<%s>", g.Prefix, g.GroupType), "Disable a specific "+g.GroupType, "")
		if g.Header != "" {
			fmt.Fprintf(&sb, "%s%s\n", indentUnit, g.Header)
		}
		entries := append([]FlagGroupEntry(nil), g.Flags...)
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
		for _, e := range entries {
			state := "|-|"
			if e.Default {
				state = "|x|"
			}
			l.entry(&sb, e.Name, e.Usage, state)
		}
	}
	fmt.Fprint(w, sb.String())
}

func (a *App) optionFlags() []*Flag {
	var options []*Flag
	for _, flag := range a.FlagSet.flags {
		if a.isGroupFlag(flag.Name) {
			continue
		}
		options = append(options, flag)
	}
	sort.Slice(options, func(i, j int) bool { return options[i].Name < options[j].Name })
	return options
}

func (a *App) isGroupFlag(name string) bool {
	for _, g := range a.FlagSet.groups {
		for _, e := range g.Flags {
			if name == g.Prefix+e.Name || name == g.Prefix+"no-"+e.Name {
				return true
			}
		}
	}
	return false
}

func flagString(flag *Flag) string {
	if flag.prefix {
		return fmt.Sprintf("-%s<%s>", flag.Name, flag.ExpectedType)
	}
	var sb strings.Builder
	arg := ""
	if !flag.isSwitch() && flag.ExpectedType != "" {
		arg = " <" + flag.ExpectedType + ">"
	}
	if flag.Shorthand != "" {
		fmt.Fprintf(&sb, "-%s%s, ", flag.Shorthand, arg)
	}
	fmt.Fprintf(&sb, "--%s%s", flag.Name, arg)
	return sb.String()
}

type layout struct {
	width, left, usage int
}

// entry prints one aligned row, wrapping usage under itself.
func (l layout) entry(sb *strings.Builder, left, usage, right string) {
	indent := indentUnit + indentUnit
	room := max(l.width-len(indent)-l.left-1-2-len(right), 10)
	lines := wrapText(usage, room)
	first := ""
	if len(lines) > 0 {
		first = lines[0]
	}

	if right != "" {
		fmt.Fprintf(sb, "%s%-*s %-*s  %s\n", indent, l.left, left, min(l.usage, room), first, right)
	} else {
		fmt.Fprintf(sb, "%s%-*s %s\n", indent, l.left, left, first)
	}
	for _, line := range lines[min(1, len(lines)):] {
		fmt.Fprintf(sb, "%s%s%s\n", indent, strings.Repeat(" ", l.left+1), line)
	}
}

func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return max(width, 20)
}

func wrapText(text string, maxWidth int) []string {
	words := strings.Fields(text)
	if maxWidth <= 0 || len(words) == 0 {
		return words
	}

	var lines []string
	var line strings.Builder
	for _, word := range words {
		if line.Len() > 0 && line.Len()+len(word)+1 > maxWidth {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
