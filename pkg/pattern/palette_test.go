package pattern

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRescalePalette(t *testing.T) {
	got, err := RescalePalette([]string{"255,128,0", "0, 255 ,17"}, 255)
	if err != nil {
		t.Fatalf("RescalePalette error: %v", err)
	}
	want := []RGB{{999, 501, 0}, {0, 999, 66}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RescalePalette mismatch (-want +got):\n%s", diff)
	}
}

func TestRescalePaletteSixBit(t *testing.T) {
	got, err := RescalePalette([]string{"63,0,32"}, 63)
	if err != nil {
		t.Fatalf("RescalePalette error: %v", err)
	}
	if want := (RGB{999, 0, 507}); got[0] != want {
		t.Errorf("RescalePalette = %v, want %v", got[0], want)
	}
}

func TestRescalePaletteErrors(t *testing.T) {
	tests := []struct {
		name      string
		entries   []string
		wantIndex int
	}{
		{"two components", []string{"1,2"}, 1},
		{"four components", []string{"0,0,0", "1,2,3,4"}, 2},
		{"not a number", []string{"0,0,0", "0,0,0", "a,b,c"}, 3},
		{"out of range", []string{"256,0,0"}, 1},
		{"negative", []string{"0,-1,0"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RescalePalette(tt.entries, 255)
			var pe *PaletteError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *PaletteError, got %v", err)
			}
			if pe.Index != tt.wantIndex {
				t.Errorf("Index = %d, want %d", pe.Index, tt.wantIndex)
			}
		})
	}
}

func TestRGBString(t *testing.T) {
	if got := (RGB{1, 22, 333}).String(); got != "1,22,333" {
		t.Errorf("String() = %q", got)
	}
}
