package command

import (
	"strings"
)

// Prefix is the reserved character every command message must start with.
const Prefix = "/"

// SlotKind identifies how a grammar slot is satisfied.
type SlotKind int

const (
	SlotKeyword     SlotKind = iota // literal token that must appear verbatim
	SlotArg                         // single named argument
	SlotAlternation                 // any one of several named arguments
)

// String returns a human-readable representation of the slot kind.
func (k SlotKind) String() string {
	switch k {
	case SlotKeyword:
		return "keyword"
	case SlotAlternation:
		return "alternation"
	default:
		return "arg"
	}
}

// Slot is one position of a command grammar after the command keyword.
type Slot struct {
	Kind     SlotKind
	Names    []string // keyword text, or the accepted argument names
	Optional bool
}

// Arg configures an argument slot while it is being declared.
type Arg struct {
	names []string
}

// Or declares name as an alternative to the argument being configured.
// The matcher does not record which alternative was supplied.
func (a *Arg) Or(name string) *Arg {
	a.names = append(a.names, name)
	return a
}

// ArgParser is the declarative grammar of a single command.
// It only checks shape (keyword and arity); extracting values is up to the command.
type ArgParser struct {
	command string
	slots   []Slot
}

// Create begins a grammar anchored on the given command keyword.
func Create(command string) *ArgParser {
	return &ArgParser{
		command: command,
		slots:   make([]Slot, 0),
	}
}

// WithArg appends a required argument slot.
func (p *ArgParser) WithArg(name string, opts ...func(*Arg)) *ArgParser {
	return p.appendArg(name, false, opts)
}

// WithOptionalArg appends an optional argument slot. Optional slots never affect matching.
func (p *ArgParser) WithOptionalArg(name string, opts ...func(*Arg)) *ArgParser {
	return p.appendArg(name, true, opts)
}

// WithKeyword appends a literal token that must follow the previous slots verbatim.
func (p *ArgParser) WithKeyword(word string) *ArgParser {
	p.slots = append(p.slots, Slot{
		Kind:  SlotKeyword,
		Names: []string{word},
	})
	return p
}

func (p *ArgParser) appendArg(name string, optional bool, opts []func(*Arg)) *ArgParser {
	arg := &Arg{names: []string{name}}
	for _, opt := range opts {
		opt(arg)
	}

	kind := SlotArg
	if len(arg.names) > 1 {
		kind = SlotAlternation
	}

	p.slots = append(p.slots, Slot{
		Kind:     kind,
		Names:    arg.names,
		Optional: optional,
	})
	return p
}

// Command returns the command keyword without the prefix.
func (p *ArgParser) Command() string {
	return p.command
}

// Slots returns a copy of the slot specifications.
func (p *ArgParser) Slots() []Slot {
	result := make([]Slot, len(p.slots))
	copy(result, p.slots)
	return result
}

// Required returns the number of slots a message must fill to match.
func (p *ArgParser) Required() int {
	n := 0
	for _, slot := range p.slots {
		if !slot.Optional {
			n++
		}
	}
	return n
}

// Is reports whether text starts with the command keyword and carries at least
// as many further tokens as there are required slots.
func (p *ArgParser) Is(text string) bool {
	tokens := strings.Fields(text)
	if len(tokens) == 0 || tokens[0] != Prefix+p.command {
		return false
	}

	rest := tokens[1:]
	if len(rest) < p.Required() {
		return false
	}

	// Literal keywords are positional and must match where they are declared.
	for i, slot := range p.slots {
		if slot.Kind != SlotKeyword {
			continue
		}
		if i >= len(rest) {
			return false
		}
		if rest[i] != slot.Names[0] {
			return false
		}
	}

	return true
}

// String describes the grammar, e.g. "/play <url|query>".
func (p *ArgParser) String() string {
	var b strings.Builder
	b.WriteString(Prefix)
	b.WriteString(p.command)

	for _, slot := range p.slots {
		b.WriteByte(' ')

		if slot.Kind == SlotKeyword {
			b.WriteString(slot.Names[0])
			continue
		}

		open, closing := "<", ">"
		if slot.Optional {
			open, closing = "[", "]"
		}
		b.WriteString(open)
		b.WriteString(strings.Join(slot.Names, "|"))
		b.WriteString(closing)
	}

	return b.String()
}

// Rest returns text with the first token removed, whitespace normalised to single spaces.
func Rest(text string) string {
	tokens := strings.Fields(text)
	if len(tokens) <= 1 {
		return ""
	}
	return strings.Join(tokens[1:], " ")
}
