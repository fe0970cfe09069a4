package command

import (
	"strings"
	"testing"
)

func playParser() *ArgParser {
	return Create("play").WithArg("url", func(a *Arg) { a.Or("query") })
}

func TestArgParser_Is(t *testing.T) {
	tests := []struct {
		name   string
		parser *ArgParser
		text   string
		want   bool
	}{
		{
			name:   "keyword with url",
			parser: playParser(),
			text:   "/play https://example.com/a",
			want:   true,
		},
		{
			name:   "keyword with multi word query",
			parser: playParser(),
			text:   "/play never gonna give you up",
			want:   true,
		},
		{
			name:   "keyword without required slot",
			parser: playParser(),
			text:   "/play",
			want:   false,
		},
		{
			name:   "keyword followed only by whitespace",
			parser: playParser(),
			text:   "/play    ",
			want:   false,
		},
		{
			name:   "different keyword",
			parser: playParser(),
			text:   "/queue something",
			want:   false,
		},
		{
			name:   "keyword as prefix of longer token",
			parser: playParser(),
			text:   "/playlist foo",
			want:   false,
		},
		{
			name:   "missing prefix",
			parser: playParser(),
			text:   "play foo",
			want:   false,
		},
		{
			name:   "no slots",
			parser: Create("queue"),
			text:   "/queue",
			want:   true,
		},
		{
			name:   "no slots with extra tokens",
			parser: Create("queue"),
			text:   "/queue extra tokens",
			want:   true,
		},
		{
			name:   "empty text",
			parser: Create("queue"),
			text:   "",
			want:   false,
		},
		{
			name:   "optional slot omitted",
			parser: Create("remove").WithArg("from").WithOptionalArg("to"),
			text:   "/remove 3",
			want:   true,
		},
		{
			name:   "two required slots with one token",
			parser: Create("move").WithArg("from").WithArg("to"),
			text:   "/move 3",
			want:   false,
		},
		{
			name:   "literal keyword matches",
			parser: Create("queue").WithKeyword("remove").WithArg("index"),
			text:   "/queue remove 2",
			want:   true,
		},
		{
			name:   "literal keyword mismatch",
			parser: Create("queue").WithKeyword("remove").WithArg("index"),
			text:   "/queue clear 2",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.parser.Is(tt.text); got != tt.want {
				t.Errorf("Is(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestArgParser_Is_ArityProperty(t *testing.T) {
	// Is must be true exactly when the keyword leads and enough tokens follow.
	for required := range 4 {
		parser := Create("cmd")
		for i := range required {
			parser.WithArg("arg" + string(rune('a'+i)))
		}

		for supplied := range 6 {
			tokens := append([]string{"/cmd"}, strings.Fields(strings.Repeat("x ", supplied))...)
			text := strings.Join(tokens, " ")

			want := supplied >= required
			if got := parser.Is(text); got != want {
				t.Errorf("required=%d supplied=%d: Is(%q) = %v, want %v",
					required, supplied, text, got, want)
			}
		}
	}
}

func TestArgParser_Is_Idempotent(t *testing.T) {
	parser := playParser()
	text := "/play foo"

	first := parser.Is(text)
	for range 10 {
		if parser.Is(text) != first {
			t.Fatal("expected repeated matching to give the same answer")
		}
	}
	if len(parser.Slots()) != 1 {
		t.Errorf("expected matching not to change the grammar, got %d slots", len(parser.Slots()))
	}
}

func TestArgParser_Alternation(t *testing.T) {
	parser := playParser()

	slots := parser.Slots()
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if slots[0].Kind != SlotAlternation {
		t.Errorf("expected alternation slot, got %s", slots[0].Kind)
	}
	if got := strings.Join(slots[0].Names, ","); got != "url,query" {
		t.Errorf("expected names url,query, got %s", got)
	}
	if parser.Required() != 1 {
		t.Errorf("expected alternation to count as one required slot, got %d", parser.Required())
	}
}

func TestArgParser_String(t *testing.T) {
	tests := []struct {
		parser *ArgParser
		want   string
	}{
		{playParser(), "/play <url|query>"},
		{Create("queue"), "/queue"},
		{Create("remove").WithArg("from").WithOptionalArg("to"), "/remove <from> [to]"},
		{Create("queue").WithKeyword("remove").WithArg("index"), "/queue remove <index>"},
	}

	for _, tt := range tests {
		if got := tt.parser.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestArgParser_Command(t *testing.T) {
	if got := playParser().Command(); got != "play" {
		t.Errorf("expected command %q, got %q", "play", got)
	}
}

func TestRest(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"/play https://example.com/a", "https://example.com/a"},
		{"/play  never   gonna give", "never gonna give"},
		{"/play", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Rest(tt.text); got != tt.want {
			t.Errorf("Rest(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}
