package wif

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/loomtools/dtxwif/internal/fsutil"
	errs "github.com/loomtools/dtxwif/pkg/errors"
	"github.com/loomtools/dtxwif/pkg/pattern"
)

// Fixed header values.
const (
	Version    = "1.1"
	Date       = "April 20, 1997"
	Developers = "wif@mhsoft.com"
)

// Header section names.
const (
	SectionWIF      = "WIF"
	SectionContents = "CONTENTS"
)

// Content section names, in the order they are listed in [CONTENTS].
const (
	SectionColorPalette  = "COLOR PALETTE"
	SectionText          = "TEXT"
	SectionWeaving       = "WEAVING"
	SectionWarp          = "WARP"
	SectionWeft          = "WEFT"
	SectionColorTable    = "COLOR TABLE"
	SectionThreading     = "THREADING"
	SectionTieup         = "TIEUP"
	SectionTreadling     = "TREADLING"
	SectionLiftplan      = "LIFTPLAN"
	SectionWarpColors    = "WARP COLORS"
	SectionWeftColors    = "WEFT COLORS"
	SectionWarpSpacing   = "WARP SPACING"
	SectionWeftSpacing   = "WEFT SPACING"
	SectionWarpThickness = "WARP THICKNESS"
	SectionWeftThickness = "WEFT THICKNESS"
)

// Title returns the WIF title for a destination path: its base name
// without directory or extension.
func Title(dest string) string {
	base := filepath.Base(dest)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Encode derives p and returns it as WIF text.
func Encode(p *pattern.Pattern, title string) ([]byte, error) {
	if err := p.Derive(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	e := &encoder{w: &buf, p: p, d: p.Derived}
	e.encode(title)
	return buf.Bytes(), nil
}

// Write encodes p and writes the result to w. Nothing is written if
// encoding fails.
func Write(w io.Writer, p *pattern.Pattern, title string) error {
	data, err := Encode(p, title)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "%s: write", p.Name)
	}
	return nil
}

// WriteFile encodes p into path, using the file name as title. The file is
// replaced by rename only after encoding and writing succeed, so a failure
// leaves any existing file untouched.
func WriteFile(path string, p *pattern.Pattern) error {
	data, err := Encode(p, Title(path))
	if err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "write %s", path)
	}
	return nil
}

type encoder struct {
	w io.Writer
	p *pattern.Pattern
	d *pattern.Derived
}

func (e *encoder) encode(title string) {
	e.header()
	e.contents()

	e.section(SectionText)
	e.kv("Title", title)

	e.colors(SectionWeftColors, e.d.WeftColors)
	e.colors(SectionWarpColors, e.d.WarpColors)
	e.spacing(SectionWeftSpacing, e.d.WeftSpacing)
	e.spacing(SectionWarpSpacing, e.d.WarpSpacing)

	e.section(SectionThreading)
	for i, shaft := range e.p.Threading {
		e.kv(strconv.Itoa(i+1), strconv.Itoa(shaft))
	}

	if e.d.Tieup != nil {
		e.lists(SectionTieup, e.d.Tieup)
		e.lists(SectionTreadling, e.p.Treadling)
	}
	if e.d.Liftplan != nil {
		e.lists(SectionLiftplan, e.d.Liftplan)
	}

	e.section(SectionWeaving)
	e.kv("Rising Shed", formatBool(e.p.RisingShed))
	e.kv("Treadles", strconv.Itoa(e.d.NumTreadles))
	e.kv("Shafts", strconv.Itoa(e.d.NumShafts))

	e.axis(SectionWarp, e.d.NumEnds, e.d.WarpDefaultColor)
	e.axis(SectionWeft, e.d.NumPicks, e.d.WeftDefaultColor)

	e.section(SectionColorTable)
	for i, c := range e.d.Palette {
		e.kv(strconv.Itoa(i+1), c.String())
	}

	e.section(SectionColorPalette)
	e.kv("Range", fmt.Sprintf("0,%d", pattern.OutputColorRange))
	e.kv("Entries", strconv.Itoa(len(e.d.Palette)))
}

func (e *encoder) header() {
	fmt.Fprintf(e.w, "[%s]\n", SectionWIF)
	e.kv("Version", Version)
	e.kv("Date", Date)
	e.kv("Developers", Developers)
	e.kv("Source Program", e.p.SourceProgram)
	e.kv("Source Version", e.p.SourceVersion())
}

func (e *encoder) contents() {
	tieupMode := e.d.Tieup != nil
	flags := []struct {
		name    string
		present bool
	}{
		{SectionColorPalette, true},
		{SectionText, true},
		{SectionWeaving, true},
		{SectionWarp, true},
		{SectionWeft, true},
		{SectionColorTable, true},
		{SectionThreading, true},
		{SectionTieup, tieupMode},
		{SectionTreadling, tieupMode},
		{SectionLiftplan, !tieupMode},
		{SectionWarpColors, e.d.WarpColors != nil},
		{SectionWeftColors, e.d.WeftColors != nil},
		{SectionWarpSpacing, e.d.WarpSpacing != nil},
		{SectionWeftSpacing, e.d.WeftSpacing != nil},
		{SectionWarpThickness, false},
		{SectionWeftThickness, false},
	}
	e.section(SectionContents)
	for _, f := range flags {
		e.kv(f.name, formatBool(f.present))
	}
}

func (e *encoder) colors(name string, sec pattern.ColorSection) {
	if sec == nil {
		return
	}
	e.section(name)
	for i, c := range sec {
		e.kv(strconv.Itoa(i+1), strconv.Itoa(c))
	}
}

func (e *encoder) spacing(name string, sec pattern.SpacingSection) {
	if sec == nil {
		return
	}
	e.section(name)
	for i, v := range sec {
		e.kv(strconv.Itoa(i+1), formatFloat(v))
	}
}

// lists writes one line per non-empty entry.
func (e *encoder) lists(name string, entries [][]int) {
	e.section(name)
	for i, vals := range entries {
		if len(vals) == 0 {
			continue
		}
		e.kv(strconv.Itoa(i+1), joinInts(vals))
	}
}

func (e *encoder) axis(name string, threads, color int) {
	e.section(name)
	e.kv("Threads", strconv.Itoa(threads))
	e.kv("Color", strconv.Itoa(color))
	e.kv("Spacing", formatFloat(pattern.DefaultSpacing))
	e.kv("Thickness", formatFloat(pattern.DefaultSpacing))
	e.kv("Units", pattern.SpacingUnits)
}

func (e *encoder) section(name string) {
	fmt.Fprintf(e.w, "\n[%s]\n", name)
}

func (e *encoder) kv(key, value string) {
	fmt.Fprintf(e.w, "%s=%s\n", key, value)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// joinInts renders vals in ascending order.
func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range slices.Sorted(slices.Values(vals)) {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
