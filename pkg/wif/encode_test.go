package wif

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	errs "github.com/loomtools/dtxwif/pkg/errors"
	"github.com/loomtools/dtxwif/pkg/pattern"
)

func twoShaft() *pattern.Pattern {
	p := pattern.New("twill.dtx")
	p.Threading = []int{1, 2}
	p.Tieup = []string{"01", "10"}
	p.Treadling = [][]int{{1}, {2}}
	p.Imprint.Version = "4.2.1"
	return p
}

const twoShaftWIF = `[WIF]
Version=1.1
Date=April 20, 1997
Developers=wif@mhsoft.com
Source Program=Fiberworks PCW
Source Version=4.2

[CONTENTS]
COLOR PALETTE=true
TEXT=true
WEAVING=true
WARP=true
WEFT=true
COLOR TABLE=true
THREADING=true
TIEUP=true
TREADLING=true
LIFTPLAN=false
WARP COLORS=false
WEFT COLORS=false
WARP SPACING=false
WEFT SPACING=false
WARP THICKNESS=false
WEFT THICKNESS=false

[TEXT]
Title=twill

[THREADING]
1=1
2=2

[TIEUP]
1=1
2=2

[TREADLING]
1=1
2=2

[WEAVING]
Rising Shed=true
Treadles=2
Shafts=2

[WARP]
Threads=2
Color=1
Spacing=0.212
Thickness=0.212
Units=centimeters

[WEFT]
Threads=2
Color=2
Spacing=0.212
Thickness=0.212
Units=centimeters

[COLOR TABLE]
1=0,0,0
2=999,999,999

[COLOR PALETTE]
Range=0,999
Entries=2
`

func TestEncode(t *testing.T) {
	got, err := Encode(twoShaft(), "twill")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if diff := cmp.Diff(twoShaftWIF, string(got)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeSectionOrder(t *testing.T) {
	p := twoShaft()
	p.WarpColors = []int{0, 1}
	p.WeftColors = []int{1, 0}
	p.WarpSpacing = []int{4, 5}
	p.WeftSpacing = []int{5, 4}

	out, err := Encode(p, "t")
	if err != nil {
		t.Fatal(err)
	}
	order := []string{
		"[WIF]", "[CONTENTS]", "[TEXT]",
		"[WEFT COLORS]", "[WARP COLORS]", "[WEFT SPACING]", "[WARP SPACING]",
		"[THREADING]", "[TIEUP]", "[TREADLING]",
		"[WEAVING]", "[WARP]", "[WEFT]", "[COLOR TABLE]", "[COLOR PALETTE]",
	}
	text := string(out)
	last := -1
	for _, h := range order {
		i := strings.Index(text, "\n"+h+"\n")
		if h == "[WIF]" {
			i = strings.Index(text, h)
		}
		if i <= last {
			t.Fatalf("%s at %d, want after %d", h, i, last)
		}
		last = i
	}
}

func TestEncodeCompoundTreadling(t *testing.T) {
	p := pattern.New("c.dtx")
	p.Threading = []int{1, 2, 3, 4}
	p.Tieup = []string{"0001", "0010", "0100", "1000"}
	p.Treadling = [][]int{{1, 3, 4}, {2}, {1, 4}}

	f := encodeAndParse(t, p)
	tr := f.Section(SectionTreadling)
	want := map[string]string{"1": "1,3,4", "2": "2", "3": "1,4"}
	for k, v := range want {
		if got, _ := tr.Get(k); got != v {
			t.Errorf("TREADLING %s = %q, want %q", k, got, v)
		}
	}
}

func TestEncodeSpacing(t *testing.T) {
	p := twoShaft()
	p.Threading = []int{1, 2, 1, 2}
	p.WarpSpacing = []int{4, 4, 5, 4}
	p.WeftSpacing = []int{4, 4}

	f := encodeAndParse(t, p)
	if f.Has(SectionWeftSpacing) {
		t.Error("default weft spacing should be omitted")
	}
	ws := f.Section(SectionWarpSpacing)
	if ws == nil || ws.Len() != 4 {
		t.Fatalf("WARP SPACING = %v, want 4 entries", ws)
	}
	if got, _ := ws.Get("3"); got != "0.265" {
		t.Errorf("WARP SPACING 3 = %q, want 0.265", got)
	}
	if got, _ := ws.Get("1"); got != "0.212" {
		t.Errorf("WARP SPACING 1 = %q, want 0.212", got)
	}
	assertFlag(t, f, SectionWarpSpacing, true)
	assertFlag(t, f, SectionWeftSpacing, false)
}

func TestEncodeColors(t *testing.T) {
	p := twoShaft()
	p.Threading = []int{1, 2, 1}
	p.WarpColors = []int{3, 3, 3}
	p.WeftColors = []int{0, 1}
	p.Palette = []string{"0,0,0", "255,255,255", "255,0,0", "0,0,255"}

	f := encodeAndParse(t, p)
	if f.Has(SectionWarpColors) {
		t.Error("uniform warp colours should be omitted")
	}
	assertFlag(t, f, SectionWarpColors, false)
	assertFlag(t, f, SectionWeftColors, true)

	wc, err := f.Section(SectionWeftColors).Ints("2")
	if err != nil || len(wc) != 1 || wc[0] != 2 {
		t.Errorf("WEFT COLORS 2 = %v (%v), want [2]", wc, err)
	}
	if n, _ := f.Section(SectionWarp).Int("Color"); n != 4 {
		t.Errorf("WARP Color = %d, want 4", n)
	}
	if v, _ := f.Section(SectionColorTable).Get("3"); v != "999,0,0" {
		t.Errorf("COLOR TABLE 3 = %q, want 999,0,0", v)
	}
	if n, _ := f.Section(SectionColorPalette).Int("Entries"); n != 4 {
		t.Errorf("Entries = %d, want 4", n)
	}
}

func TestEncodeLiftplan(t *testing.T) {
	p := pattern.New("lift.dtx")
	p.Threading = []int{1, 2, 3}
	p.Liftplan = []string{"110", "000", "011"}
	p.Tieup = []string{"1"}
	p.Treadling = [][]int{{1}}

	f := encodeAndParse(t, p)
	if f.Has(SectionTieup) || f.Has(SectionTreadling) {
		t.Error("liftplan should take precedence over tieup and treadling")
	}
	lp := f.Section(SectionLiftplan)
	if lp.Len() != 2 {
		t.Errorf("LIFTPLAN has %d entries, want 2 (empty pick omitted)", lp.Len())
	}
	if v, _ := lp.Get("3"); v != "2,3" {
		t.Errorf("LIFTPLAN 3 = %q, want 2,3", v)
	}
	if n, _ := f.Section(SectionWeaving).Int("Treadles"); n != 3 {
		t.Errorf("Treadles = %d, want 3", n)
	}
	if n, _ := f.Section(SectionWeft).Int("Threads"); n != 3 {
		t.Errorf("WEFT Threads = %d, want 3", n)
	}
}

func TestWriteErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*pattern.Pattern)
		code   errs.Code
	}{
		{"missing threading", func(p *pattern.Pattern) { p.Threading = nil }, errs.ErrCodeMissingSection},
		{"no shed control", func(p *pattern.Pattern) { p.Treadling = nil }, errs.ErrCodeMissingSection},
		{"short palette entry", func(p *pattern.Pattern) { p.Palette = []string{"1,2"} }, errs.ErrCodeInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := twoShaft()
			tt.mutate(p)

			var buf bytes.Buffer
			err := Write(&buf, p, "x")
			if !errs.Is(err, tt.code) {
				t.Fatalf("err = %v, want %s", err, tt.code)
			}
			if buf.Len() != 0 {
				t.Errorf("wrote %d bytes on error", buf.Len())
			}
			if !strings.Contains(err.Error(), "twill.dtx") {
				t.Errorf("error %q does not name the file", err)
			}
		})
	}
}

func TestWritePaletteErrorIndex(t *testing.T) {
	p := twoShaft()
	p.Palette = []string{"1,2"}
	err := Write(&bytes.Buffer{}, p, "x")

	var pe *pattern.PaletteError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *pattern.PaletteError", err)
	}
	if pe.Index != 1 {
		t.Errorf("Index = %d, want 1", pe.Index)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "my draft.wif")
	if err := WriteFile(path, twoShaft()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Title=my draft\n") {
		t.Error("title should be the destination base name")
	}

	bad := twoShaft()
	bad.Threading = nil
	badPath := filepath.Join(dir, "bad.wif")
	if err := WriteFile(badPath, bad); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(badPath); !os.IsNotExist(err) {
		t.Error("failed encode should not create the file")
	}
}

func TestWriteFileKeepsExistingOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "twill.wif")
	if err := os.WriteFile(path, []byte("previous"), 0o644); err != nil {
		t.Fatal(err)
	}

	bad := twoShaft()
	bad.Threading = nil
	if err := WriteFile(path, bad); err == nil {
		t.Fatal("expected encode error")
	}
	if data, _ := os.ReadFile(path); string(data) != "previous" {
		t.Errorf("existing file changed to %q", data)
	}

	// A non-empty directory at the destination makes the final rename fail.
	blocked := filepath.Join(dir, "blocked.wif")
	if err := os.MkdirAll(filepath.Join(blocked, "keep"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(blocked, twoShaft()); !errs.Is(err, errs.ErrCodeIO) {
		t.Errorf("err = %v, want %s", err, errs.ErrCodeIO)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}

	if err := WriteFile(path, twoShaft()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if data, _ := os.ReadFile(path); !strings.HasPrefix(string(data), "[WIF]\n") {
		t.Errorf("file not replaced: %q", data)
	}
}

func TestTitle(t *testing.T) {
	tests := map[string]string{
		"/a/b/pattern.wif":   "pattern",
		"pattern.dtx.wif":    "pattern.dtx",
		"noext":              "noext",
		"dir/with.dot/x.wif": "x",
	}
	for in, want := range tests {
		if got := Title(in); got != want {
			t.Errorf("Title(%q) = %q, want %q", in, got, want)
		}
	}
}

func encodeAndParse(t *testing.T, p *pattern.Pattern) *File {
	t.Helper()
	out, err := Encode(p, "test")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	f, err := Parse(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return f
}

func assertFlag(t *testing.T, f *File, name string, want bool) {
	t.Helper()
	got, err := f.Section("CONTENTS").Bool(name)
	if err != nil {
		t.Fatalf("CONTENTS %s: %v", name, err)
	}
	if got != want {
		t.Errorf("CONTENTS %s = %v, want %v", name, got, want)
	}
}
