// Package pattern holds the normalized in-memory model of a weaving pattern
// and the derivation engine that computes the values a writer needs but the
// source formats leave implicit.
//
// # Model
//
// A [Pattern] stores each section the way the source format encodes it:
// shaft numbers per end, tieup rows as strings of '0'/'1' in shaft-major
// order with shaft 1 stored last, pick groups of treadles, liftplan rows,
// 0-based colour indices, and spacing in native units. A nil slice means
// the section was absent from the source.
//
// Readers ([dtx.Read], [wpo.Read]) populate a Pattern. [Pattern.Derive] then
// fills in [Derived] without touching the decoded fields, and encoders such
// as [wif.Encode] consume the result read-only.
//
// # Shed control
//
// A pattern either has a liftplan, or both a tieup and a treadling. When all
// three are present, the liftplan wins.
//
// [dtx.Read]: github.com/loomtools/dtxwif/pkg/dtx.Read
// [wpo.Read]: github.com/loomtools/dtxwif/pkg/wpo.Read
// [wif.Encode]: github.com/loomtools/dtxwif/pkg/wif.Encode
package pattern

import "strings"

const (
	// DefaultProgram is the source program reported for dtx patterns.
	DefaultProgram = "Fiberworks PCW"

	// DefaultColorRange is the maximum palette component value of dtx palettes.
	DefaultColorRange = 255

	// ActiveMarker marks a tied shaft or a raised shaft in a row string.
	ActiveMarker = '1'
)

// Imprint records which application wrote the source file.
type Imprint struct {
	Application string // application name as found in the source
	Version     string // full version as found in the source, e.g. "4.2.1"
	Date        string // creation date, free form
}

// Pattern is a weaving design as decoded from a source file.
type Pattern struct {
	// Name is the source file name, used to identify the pattern in errors.
	Name string

	Threading []int    // shaft per end, 1-based shafts, 0 = unthreaded
	Tieup     []string // shaft-major rows, last row is shaft 1
	Treadling [][]int  // treadles per pick
	Liftplan  []string // one row per pick, column s = shaft s+1

	WarpColors  []int // 0-based palette index per end
	WeftColors  []int // 0-based palette index per pick
	WarpSpacing []int // native thickness units per end
	WeftSpacing []int // native thickness units per pick

	Palette    []string // raw "R,G,B" entries
	ColorRange int      // maximum palette component value

	// SourceProgram is reported as the WIF "Source Program".
	SourceProgram string
	Imprint       Imprint
	RisingShed    bool

	// Derived is filled by Derive and is nil until then.
	Derived *Derived
}

// New creates an empty pattern with the defaults of a dtx source.
func New(name string) *Pattern {
	return &Pattern{
		Name:          name,
		ColorRange:    DefaultColorRange,
		SourceProgram: DefaultProgram,
		Imprint:       Imprint{Version: "?"},
		RisingShed:    true,
	}
}

// HasLiftplan reports whether the liftplan is the shed-control source.
func (p *Pattern) HasLiftplan() bool {
	return len(p.Liftplan) > 0
}

// HasTreadles reports whether both tieup and treadling are present.
func (p *Pattern) HasTreadles() bool {
	return len(p.Tieup) > 0 && len(p.Treadling) > 0
}

// NumEnds returns the number of warp ends.
func (p *Pattern) NumEnds() int {
	return len(p.Threading)
}

// NumShafts returns the highest shaft used by the threading.
func (p *Pattern) NumShafts() int {
	n := 0
	for _, s := range p.Threading {
		n = max(n, s)
	}
	return n
}

// NumTreadles returns the width of the liftplan rows when a liftplan is
// present, else the width of the tieup rows.
func (p *Pattern) NumTreadles() int {
	if p.HasLiftplan() {
		return rowWidth(p.Liftplan)
	}
	return rowWidth(p.Tieup)
}

// NumPicks returns the number of liftplan rows when a liftplan is present,
// else the number of treadling picks.
func (p *Pattern) NumPicks() int {
	if p.HasLiftplan() {
		return len(p.Liftplan)
	}
	return len(p.Treadling)
}

// SourceVersion returns the imprint version truncated to major.minor,
// which is how the version is reported in WIF headers.
func (p *Pattern) SourceVersion() string {
	parts := strings.Split(p.Imprint.Version, ".")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, ".")
}

func rowWidth(rows []string) int {
	n := 0
	for _, r := range rows {
		n = max(n, len(r))
	}
	return n
}
