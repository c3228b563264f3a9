package pattern

import (
	"fmt"
	"strconv"
	"strings"
)

// OutputColorRange is the maximum component value written to WIF colour tables.
const OutputColorRange = 999

// RGB is a colour with components in 0..OutputColorRange.
type RGB [3]int

// String formats the colour as "r,g,b".
func (c RGB) String() string {
	return fmt.Sprintf("%d,%d,%d", c[0], c[1], c[2])
}

// PaletteError reports a malformed palette entry.
type PaletteError struct {
	Index  int // 1-based entry index
	Entry  string
	Reason string
}

func (e *PaletteError) Error() string {
	return fmt.Sprintf("color palette entry %d (%q): %s", e.Index, e.Entry, e.Reason)
}

// FallbackPalette is written when a pattern supplies no palette:
// entry 1 is black and entry 2 is white.
func FallbackPalette() []RGB {
	return []RGB{
		{0, 0, 0},
		{OutputColorRange, OutputColorRange, OutputColorRange},
	}
}

// RescalePalette parses raw "R,G,B" entries with components in
// 0..colorRange and rescales every component c to c*999/colorRange,
// rounding down.
func RescalePalette(entries []string, colorRange int) ([]RGB, error) {
	if colorRange <= 0 {
		colorRange = DefaultColorRange
	}
	out := make([]RGB, len(entries))
	for i, entry := range entries {
		parts := strings.Split(entry, ",")
		if len(parts) != 3 {
			return nil, &PaletteError{Index: i + 1, Entry: entry, Reason: "expected 3 comma-separated integers"}
		}
		for j, part := range parts {
			c, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, &PaletteError{Index: i + 1, Entry: entry, Reason: fmt.Sprintf("component %d is not an integer", j+1)}
			}
			if c < 0 || c > colorRange {
				return nil, &PaletteError{Index: i + 1, Entry: entry, Reason: fmt.Sprintf("component %d not in range [0, %d]", j+1, colorRange)}
			}
			out[i][j] = c * OutputColorRange / colorRange
		}
	}
	return out, nil
}
