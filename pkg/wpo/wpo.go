// Package wpo reads WeavePoint ".wpo" binary weaving pattern files into a
// [pattern.Pattern].
//
// A wpo file starts with a fixed 24-byte header, followed by the threading
// and the warp and weft colour lists, the shed-control data whose layout
// depends on the file type, 66 bytes of translation grids, and the colour
// table. Per-thread thickness and separation are not read.
//
// [pattern.Pattern]: github.com/loomtools/dtxwif/pkg/pattern.Pattern
package wpo

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	errs "github.com/loomtools/dtxwif/pkg/errors"
	"github.com/loomtools/dtxwif/pkg/pattern"
)

// ID is the required value of the first byte of a wpo file.
const ID = 123

// Program is the source program reported for wpo patterns.
const Program = "WeavePoint"

// FileType selects how shed control is stored.
type FileType uint8

const (
	// TypeLiftplan files have a liftplan and no tieup.
	TypeLiftplan FileType = 100
	// TypeSingleTreadling files have a tieup and one treadle per pick.
	TypeSingleTreadling FileType = 101
	// TypeMultipleTreadling files have a tieup and a treadle mask per pick.
	TypeMultipleTreadling FileType = 102
)

func (t FileType) String() string {
	switch t {
	case TypeLiftplan:
		return "liftplan"
	case TypeSingleTreadling:
		return "single treadling"
	case TypeMultipleTreadling:
		return "multiple treadling"
	}
	return strconv.Itoa(int(t))
}

// translationGridSize is the number of ignored bytes before the colour table.
const translationGridSize = 66

// header is the on-disk layout of the first 24 bytes.
type header struct {
	ID        uint8
	Version   uint8
	Type      FileType
	Zoom      uint8
	Shafts    uint8
	Treadles  uint8
	_         uint8
	Shed      uint8 // 0 = rising shed
	_         uint8
	EPI       uint8
	PPI       uint8
	_         [2]uint8
	Ends      uint16
	Picks     uint16
	_         [7]uint8
}

// Header holds the fields of a wpo header that describe the pattern.
type Header struct {
	Version    int
	Type       FileType
	Shafts     int
	Treadles   int
	RisingShed bool
	EPI        int
	PPI        int
	Ends       int
	Picks      int
}

// ColorRange returns the maximum palette component value, which depends on
// the file version.
func (h Header) ColorRange() int {
	if h.Version >= 4 {
		return 255
	}
	return 63
}

// Read decodes a wpo file. name identifies the source in error messages and
// becomes the pattern name.
func Read(r io.Reader, name string) (*pattern.Pattern, error) {
	p, _, err := ReadWithHeader(r, name)
	return p, err
}

// ReadBytes is Read for in-memory content.
func ReadBytes(data []byte, name string) (*pattern.Pattern, error) {
	return Read(bytes.NewReader(data), name)
}

// ReadFile opens and decodes a wpo file.
func ReadFile(path string) (*pattern.Pattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()
	return Read(f, filepath.Base(path))
}

// ReadWithHeader is Read that also returns the decoded header.
func ReadWithHeader(r io.Reader, name string) (*pattern.Pattern, *Header, error) {
	d := &decoder{r: bufio.NewReader(r)}
	p, h, err := d.decode(name)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, nil, errs.Wrap(errs.ErrCodeInvalidValue, io.ErrUnexpectedEOF, "%s: file too short", name)
		}
		if errs.GetCode(err) != "" {
			return nil, nil, err
		}
		return nil, nil, errs.Wrap(errs.ErrCodeIO, err, "%s: read failed", name)
	}
	return p, h, nil
}

type decoder struct {
	r io.Reader
}

func (d *decoder) decode(name string) (*pattern.Pattern, *Header, error) {
	var raw header
	if err := binary.Read(d.r, binary.BigEndian, &raw); err != nil {
		return nil, nil, err
	}
	if raw.ID != ID {
		return nil, nil, errs.New(errs.ErrCodeInvalidValue, "%s: id byte is %d, want %d", name, raw.ID, ID)
	}
	switch raw.Type {
	case TypeLiftplan, TypeSingleTreadling, TypeMultipleTreadling:
	default:
		return nil, nil, errs.New(errs.ErrCodeInvalidValue, "%s: unknown file type %d", name, raw.Type)
	}
	h := &Header{
		Version:    int(raw.Version),
		Type:       raw.Type,
		Shafts:     int(raw.Shafts),
		Treadles:   int(raw.Treadles),
		RisingShed: raw.Shed == 0,
		EPI:        int(raw.EPI),
		PPI:        int(raw.PPI),
		Ends:       int(raw.Ends),
		Picks:      int(raw.Picks),
	}
	if h.Shafts < 1 {
		return nil, nil, errs.New(errs.ErrCodeInvalidValue, "%s: header declares no shafts", name)
	}
	if h.Type != TypeLiftplan && h.Treadles < 1 {
		return nil, nil, errs.New(errs.ErrCodeInvalidValue, "%s: header declares no treadles", name)
	}

	p := pattern.New(name)
	p.SourceProgram = Program
	p.Imprint = pattern.Imprint{Application: Program, Version: strconv.Itoa(h.Version)}
	p.RisingShed = h.RisingShed
	p.ColorRange = h.ColorRange()

	var err error
	if p.Threading, err = d.byteList(); err != nil {
		return nil, nil, err
	}
	if p.WarpColors, err = d.byteList(); err != nil {
		return nil, nil, err
	}
	if p.WeftColors, err = d.byteList(); err != nil {
		return nil, nil, err
	}

	switch h.Type {
	case TypeLiftplan:
		masks, err := d.masks(h.Shafts, -1)
		if err != nil {
			return nil, nil, err
		}
		p.Liftplan = liftplanRows(masks, h.Shafts)
	case TypeMultipleTreadling:
		tieup, err := d.masks(h.Shafts, h.Treadles)
		if err != nil {
			return nil, nil, err
		}
		picks, err := d.masks(h.Treadles, -1)
		if err != nil {
			return nil, nil, err
		}
		p.Tieup = tieupRows(tieup, h.Shafts)
		p.Treadling = picks
	default:
		tieup, err := d.masks(h.Shafts, h.Treadles)
		if err != nil {
			return nil, nil, err
		}
		single, err := d.byteList()
		if err != nil {
			return nil, nil, err
		}
		p.Tieup = tieupRows(tieup, h.Shafts)
		p.Treadling = make([][]int, len(single))
		for i, t := range single {
			if t > 0 {
				p.Treadling[i] = []int{t}
			}
		}
	}

	if _, err := io.CopyN(io.Discard, d.r, translationGridSize); err != nil {
		return nil, nil, err
	}

	n, err := d.uint8()
	if err != nil {
		return nil, nil, err
	}
	p.Palette = make([]string, n)
	for i := range p.Palette {
		var rgb [3]uint8
		if _, err := io.ReadFull(d.r, rgb[:]); err != nil {
			return nil, nil, err
		}
		p.Palette[i] = fmt.Sprintf("%d,%d,%d", rgb[0], rgb[1], rgb[2])
	}
	return p, h, nil
}

func (d *decoder) uint8() (int, error) {
	var b [1]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return 0, err
	}
	return int(b[0]), nil
}

func (d *decoder) uint16() (int, error) {
	var v uint16
	if err := binary.Read(d.r, binary.BigEndian, &v); err != nil {
		return 0, err
	}
	return int(v), nil
}

// byteList reads a big-endian uint16 length followed by that many bytes.
func (d *decoder) byteList() ([]int, error) {
	n, err := d.uint16()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return nil, err
	}
	out := make([]int, n)
	for i, b := range buf {
		out[i] = int(b)
	}
	return out, nil
}

// masks reads count little-endian bitmasks of just enough bytes to hold
// bits bits, returning the 1-based set bits of each. A negative count means
// the count is stored as a big-endian uint16 first.
func (d *decoder) masks(bits, count int) ([][]int, error) {
	if count < 0 {
		var err error
		if count, err = d.uint16(); err != nil {
			return nil, err
		}
	}
	size := (bits-1)/8 + 1
	buf := make([]byte, size)
	out := make([][]int, count)
	for i := range out {
		if _, err := io.ReadFull(d.r, buf); err != nil {
			return nil, err
		}
		out[i] = maskBits(buf)
	}
	return out, nil
}

// maskBits returns the 1-based positions of the set bits of a little-endian
// mask, ascending.
func maskBits(mask []byte) []int {
	var out []int
	for i, b := range mask {
		for bit := range 8 {
			if b&(1<<bit) != 0 {
				out = append(out, i*8+bit+1)
			}
		}
	}
	return out
}

// tieupRows converts per-treadle shaft sets into shaft-major row strings
// with shaft 1 stored last.
func tieupRows(treadles [][]int, shafts int) []string {
	rows := make([][]byte, shafts)
	for s := range rows {
		rows[s] = bytes.Repeat([]byte{'0'}, len(treadles))
	}
	for t, tied := range treadles {
		for _, s := range tied {
			if s <= shafts {
				rows[shafts-s][t] = pattern.ActiveMarker
			}
		}
	}
	out := make([]string, shafts)
	for i, r := range rows {
		out[i] = string(r)
	}
	return out
}

// liftplanRows converts per-pick shaft sets into liftplan row strings.
func liftplanRows(picks [][]int, shafts int) []string {
	out := make([]string, len(picks))
	for i, raised := range picks {
		row := []byte(strings.Repeat("0", shafts))
		for _, s := range raised {
			if s <= shafts {
				row[s-1] = pattern.ActiveMarker
			}
		}
		out[i] = string(row)
	}
	return out
}
