package pattern

import (
	errs "github.com/loomtools/dtxwif/pkg/errors"
)

const (
	// UnitSpacing is the size of one native thickness unit in centimeters.
	UnitSpacing = 0.053

	// DefaultNativeSpacing is the thickness a thread has unless stated otherwise.
	DefaultNativeSpacing = 4

	// DefaultSpacing is DefaultNativeSpacing in centimeters.
	DefaultSpacing = DefaultNativeSpacing * UnitSpacing

	// SpacingUnits names the unit of all derived spacing values.
	SpacingUnits = "centimeters"

	// DefaultWarpColor and DefaultWeftColor are used when a pattern carries
	// no colour section for that axis. They index the fallback table.
	DefaultWarpColor = 1
	DefaultWeftColor = 2
)

// ColorSection lists the 1-based palette index of every thread;
// element i belongs to thread i+1.
type ColorSection []int

// SpacingSection lists the spacing in centimeters of every thread;
// element i belongs to thread i+1.
type SpacingSection []float64

// Derived holds everything an encoder needs beyond the decoded sections.
type Derived struct {
	NumEnds     int
	NumShafts   int
	NumTreadles int
	NumPicks    int

	// Colour sections are nil when every thread has the default colour.
	WarpColors       ColorSection
	WeftColors       ColorSection
	WarpDefaultColor int
	WeftDefaultColor int

	// Spacing sections are nil when every thread has the default spacing.
	WarpSpacing SpacingSection
	WeftSpacing SpacingSection

	// Tieup holds the shafts tied to each treadle (treadle-major); nil in
	// liftplan mode.
	Tieup [][]int
	// Liftplan holds the shafts raised on each pick; nil in tieup mode.
	Liftplan [][]int

	Palette         []RGB
	PaletteFallback bool
}

// Validate checks the structural invariants: a non-empty threading and a
// usable shed-control source.
func (p *Pattern) Validate() error {
	if p.Threading == nil {
		return errs.New(errs.ErrCodeMissingSection, "%s: missing required threading section", p.Name)
	}
	if len(p.Threading) == 0 {
		return errs.New(errs.ErrCodeMissingSection, "%s: threading section is empty", p.Name)
	}
	if !p.HasLiftplan() && !p.HasTreadles() {
		return errs.New(errs.ErrCodeMissingSection, "%s: must have a liftplan, or both tieup and treadling", p.Name)
	}
	return nil
}

// Derive validates the pattern and fills p.Derived. The decoded sections are
// left untouched, so Derive may be called repeatedly.
func (p *Pattern) Derive() error {
	if err := p.Validate(); err != nil {
		return err
	}

	d := &Derived{
		NumEnds:     p.NumEnds(),
		NumShafts:   p.NumShafts(),
		NumTreadles: p.NumTreadles(),
		NumPicks:    p.NumPicks(),
	}

	d.WarpColors, _ = ResolveColors(p.WarpColors)
	d.WeftColors, _ = ResolveColors(p.WeftColors)
	d.WarpDefaultColor = DefaultColor(p.WarpColors, DefaultWarpColor)
	d.WeftDefaultColor = DefaultColor(p.WeftColors, DefaultWeftColor)

	d.WarpSpacing, _ = ResolveSpacing(p.WarpSpacing)
	d.WeftSpacing, _ = ResolveSpacing(p.WeftSpacing)

	if p.HasLiftplan() {
		d.Liftplan = LiftplanShafts(p.Liftplan)
	} else {
		d.Tieup = TransposeTieup(p.Tieup, d.NumTreadles)
	}

	if len(p.Palette) > 0 {
		palette, err := RescalePalette(p.Palette, p.ColorRange)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidValue, err, "%s", p.Name)
		}
		d.Palette = palette
	} else {
		d.Palette = FallbackPalette()
		d.PaletteFallback = true
	}

	p.Derived = d
	return nil
}

// DefaultColor returns the 1-based default colour of a colour sequence:
// the first thread's colour. An empty sequence yields fallback.
func DefaultColor(seq []int, fallback int) int {
	if len(seq) == 0 {
		return fallback
	}
	return seq[0] + 1
}

// ResolveColors converts 0-based colour indices into a 1-based ColorSection.
// It reports false when the section carries no information, that is when it
// is empty or every thread has the default colour. Otherwise every thread is
// listed, including those with the default colour.
func ResolveColors(seq []int) (ColorSection, bool) {
	if len(seq) == 0 {
		return nil, false
	}
	def := DefaultColor(seq, 0)
	uniform := true
	out := make(ColorSection, len(seq))
	for i, c := range seq {
		out[i] = c + 1
		if out[i] != def {
			uniform = false
		}
	}
	if uniform {
		return nil, false
	}
	return out, true
}

// ResolveSpacing converts native spacing units into centimeters. It reports
// false when the section is empty or every value equals DefaultNativeSpacing.
func ResolveSpacing(seq []int) (SpacingSection, bool) {
	uniform := true
	for _, v := range seq {
		if v != DefaultNativeSpacing {
			uniform = false
			break
		}
	}
	if uniform {
		return nil, false
	}
	out := make(SpacingSection, len(seq))
	for i, v := range seq {
		out[i] = float64(v) * UnitSpacing
	}
	return out, true
}

// TransposeTieup turns shaft-major tieup rows (shaft 1 stored last) into a
// treadle-major list of ascending 1-based shafts. Columns missing from a
// short row count as untied.
func TransposeTieup(rows []string, numTreadles int) [][]int {
	out := make([][]int, numTreadles)
	for t := range numTreadles {
		var shafts []int
		for s := 1; s <= len(rows); s++ {
			row := rows[len(rows)-s]
			if t < len(row) && row[t] == ActiveMarker {
				shafts = append(shafts, s)
			}
		}
		out[t] = shafts
	}
	return out
}

// LiftplanShafts returns, for every liftplan row, the ascending 1-based
// shafts raised on that pick.
func LiftplanShafts(rows []string) [][]int {
	out := make([][]int, len(rows))
	for i, row := range rows {
		out[i] = activeColumns(row)
	}
	return out
}

func activeColumns(row string) []int {
	var cols []int
	for i := 0; i < len(row); i++ {
		if row[i] == ActiveMarker {
			cols = append(cols, i+1)
		}
	}
	return cols
}
