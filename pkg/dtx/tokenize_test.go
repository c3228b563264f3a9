package dtx

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenize(t *testing.T) {
	input := `
ignored before any section

@@Threading
  1 2 3 4
%%shafts 4

@@ Color Palet
%%range 255
0,0,0
255,255,255
`
	sections, err := Tokenize(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(sections))
	}

	th := sections.Get("threading")
	if th == nil {
		t.Fatal("threading section missing")
	}
	if diff := cmp.Diff([]string{"1 2 3 4"}, th.Lines()); diff != "" {
		t.Errorf("threading lines mismatch (-want +got):\n%s", diff)
	}
	if v, ok := th.Metadata.Get("shafts"); !ok || v != "4" {
		t.Errorf("shafts metadata = %q, %v; want \"4\", true", v, ok)
	}

	pal := sections.Get(SectionColorPalette)
	if pal == nil {
		t.Fatal("alias \"color palet\" not resolved")
	}
	if pal.Len() != 2 {
		t.Errorf("palette has %d lines, want 2", pal.Len())
	}

	ordered := sections.Ordered()
	if ordered[0].Name != "threading" || ordered[1].Name != "color palette" {
		t.Errorf("Ordered() = [%s %s], want file order", ordered[0].Name, ordered[1].Name)
	}
}

func TestTokenizeMetadata(t *testing.T) {
	sections := mustTokenize(t, "@@info\n%%flag\n%%title\tLong  title here\n%%\n%%empty \n")
	s := sections.Get("info")
	if s == nil {
		t.Fatal("info section missing")
	}

	if !s.Metadata.Has("flag") {
		t.Error("key without value should be present")
	}
	if _, ok := s.Metadata.Get("flag"); ok {
		t.Error("key without value should report no value")
	}
	if v, _ := s.Metadata.Get("title"); v != "Long  title here" {
		t.Errorf("title = %q, want %q", v, "Long  title here")
	}
	if diff := cmp.Diff([]string{"flag", "title", "empty"}, s.Metadata.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
	if s.Len() != 0 {
		t.Errorf("metadata lines leaked into data: %v", s.Lines())
	}
}

func TestTokenizeRepeatedSection(t *testing.T) {
	sections := mustTokenize(t, "@@threading\n1 2\n@@tieup\n10\n@@THREADING\n3 4\n")
	if diff := cmp.Diff([]string{"3 4"}, sections.Get("threading").Lines()); diff != "" {
		t.Errorf("repeated section should replace the first (-want +got):\n%s", diff)
	}
}

func TestTokenizeStringLongLine(t *testing.T) {
	text := "@@threading\n" + strings.Repeat("1", maxLineSize+1) + "\n"
	if _, err := TokenizeString(text); err == nil {
		t.Error("a line over maxLineSize should fail, not yield empty sections")
	}
}

func mustTokenize(t *testing.T, s string) Sections {
	t.Helper()
	sections, err := TokenizeString(s)
	if err != nil {
		t.Fatalf("TokenizeString: %v", err)
	}
	return sections
}

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Threading", "threading"},
		{"  Warp Colors ", "warp colors"},
		{"COLOR PALET", "color palette"},
		{"color palette", "color palette"},
	}
	for _, tt := range tests {
		if got := CanonicalName(tt.in); got != tt.want {
			t.Errorf("CanonicalName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

