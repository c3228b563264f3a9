package dtx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	errs "github.com/loomtools/dtxwif/pkg/errors"
	"github.com/loomtools/dtxwif/pkg/pattern"
)

const sampleDTX = `@@StartDTX
@@Imprint
Fiberworks-PCW 4.2.1
January 1, 2020

@@Threading
1 2 3 4
1 2 3 4

@@Tieup
0011
0110
1100
1001

@@Treadling
1 2 3 4, 1

@@Warp Colors
0 0 1 1 0 0 1 1

@@Color Palet
255,0,0
0,0,255
`

func TestRead(t *testing.T) {
	p, err := Read(strings.NewReader(sampleDTX), "sample.dtx")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if p.Name != "sample.dtx" {
		t.Errorf("Name = %q", p.Name)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4, 1, 2, 3, 4}, p.Threading); diff != "" {
		t.Errorf("Threading mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]int{{1}, {2}, {3}, {4, 1}}, p.Treadling); diff != "" {
		t.Errorf("Treadling mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"0011", "0110", "1100", "1001"}, p.Tieup); diff != "" {
		t.Errorf("Tieup mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"255,0,0", "0,0,255"}, p.Palette); diff != "" {
		t.Errorf("Palette mismatch (-want +got):\n%s", diff)
	}
	if p.WeftColors != nil || p.Liftplan != nil || p.WarpSpacing != nil {
		t.Error("absent sections should stay nil")
	}

	want := pattern.Imprint{Application: "Fiberworks-PCW", Version: "4.2.1", Date: "January 1, 2020"}
	if diff := cmp.Diff(want, p.Imprint); diff != "" {
		t.Errorf("Imprint mismatch (-want +got):\n%s", diff)
	}
	if got := p.SourceVersion(); got != "4.2" {
		t.Errorf("SourceVersion() = %q, want 4.2", got)
	}
	if p.ColorRange != pattern.DefaultColorRange || !p.RisingShed {
		t.Errorf("dtx defaults not applied: range %d, rising %v", p.ColorRange, p.RisingShed)
	}
}

func TestReadWrappingInsensitive(t *testing.T) {
	a, err := Read(strings.NewReader("@@threading\n1 2 3 4 5 6\n"), "a.dtx")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Read(strings.NewReader("@@threading\n1 2\n3 4\n\n5\n6\n"), "b.dtx")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a.Threading, b.Threading); diff != "" {
		t.Errorf("line wrapping changed the threading (-a +b):\n%s", diff)
	}
}

func TestReadImprintMetadata(t *testing.T) {
	p, err := Read(strings.NewReader("@@imprint\n%%Fiberworks 3.9 beta\n%%created 2001-05-06\n"), "m.dtx")
	if err != nil {
		t.Fatal(err)
	}
	want := pattern.Imprint{Application: "Fiberworks", Version: "3.9", Date: "2001-05-06"}
	if diff := cmp.Diff(want, p.Imprint); diff != "" {
		t.Errorf("Imprint mismatch (-want +got):\n%s", diff)
	}
}

func TestReadNoImprint(t *testing.T) {
	p, err := Read(strings.NewReader("@@threading\n1\n"), "x.dtx")
	if err != nil {
		t.Fatal(err)
	}
	if p.Imprint.Version != "?" {
		t.Errorf("Version = %q, want ?", p.Imprint.Version)
	}
}

func TestReadBadToken(t *testing.T) {
	_, err := Read(strings.NewReader("@@threading\n1 2 x\n"), "bad.dtx")
	if !errs.Is(err, errs.ErrCodeInvalidValue) {
		t.Fatalf("err = %v, want %s", err, errs.ErrCodeInvalidValue)
	}
	if !strings.Contains(err.Error(), "bad.dtx") {
		t.Errorf("error %q does not name the file", err)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.dtx")
	if err := os.WriteFile(path, []byte(sampleDTX), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if p.Name != "draft.dtx" {
		t.Errorf("Name = %q, want draft.dtx", p.Name)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.dtx")); !errs.Is(err, errs.ErrCodeIO) {
		t.Errorf("missing file err = %v, want %s", err, errs.ErrCodeIO)
	}
}
