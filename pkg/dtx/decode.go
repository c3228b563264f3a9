package dtx

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Canonical names of the sections Decode understands.
const (
	SectionThreading    = "threading"
	SectionTieup        = "tieup"
	SectionTreadling    = "treadling"
	SectionLiftplan     = "liftplan"
	SectionWarpColors   = "warp colors"
	SectionWeftColors   = "weft colors"
	SectionWarpSpacing  = "warp spacing"
	SectionWeftSpacing  = "weft spacing"
	SectionColorPalette = "color palette"
	SectionImprint      = "imprint"
)

// DecodeError reports a data token that could not be decoded.
type DecodeError struct {
	Section string
	Pos     int // 1-based token position within the section
	Token   string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s section: token %d (%q) is not an integer", e.Section, e.Pos, e.Token)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type decoder func(name string, lines RawLines) (Data, error)

var decoders = map[string]decoder{
	SectionThreading:   decodeIntSequence,
	SectionWarpColors:  decodeIntSequence,
	SectionWeftColors:  decodeIntSequence,
	SectionWarpSpacing: decodeIntSequence,
	SectionWeftSpacing: decodeIntSequence,
	SectionTreadling:   decodePickGroups,
	SectionTieup:       decodeRowStrings,
	SectionLiftplan:    decodeRowStrings,
}

// Decode replaces the raw data of every known section with its typed
// variant. Sections without a decoder, such as the color palette, keep
// their RawLines. Decoding an already decoded section is a no-op.
func Decode(sections Sections) error {
	for _, s := range sections.Ordered() {
		dec, ok := decoders[s.Name]
		if !ok {
			continue
		}
		lines, ok := s.Data.(RawLines)
		if !ok {
			continue
		}
		data, err := dec(s.Name, lines)
		if err != nil {
			return err
		}
		s.Data = data
	}
	return nil
}

// DecodeIntSequence parses whitespace-separated integers. Line breaks are
// treated like any other whitespace.
func DecodeIntSequence(lines []string) (IntSequence, error) {
	data, err := decodeIntSequence("", lines)
	if err != nil {
		return nil, err
	}
	return data.(IntSequence), nil
}

func decodeIntSequence(name string, lines RawLines) (Data, error) {
	tokens := strings.Fields(strings.Join(lines, " "))
	out := make(IntSequence, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.Atoi(tok)
		if err != nil {
			return nil, &DecodeError{Section: name, Pos: i + 1, Token: tok, Err: err}
		}
		out[i] = v
	}
	return out, nil
}

// treadleSeparator matches the separator between treadles of one pick.
var treadleSeparator = regexp.MustCompile(`, +`)

// DecodePickGroups parses a compound treadling stream, where treadles of
// one pick are separated by ", " and picks by plain spaces:
// "1, 3, 4 2 1, 4" yields [[1 3 4] [2] [1 4]].
func DecodePickGroups(lines []string) (PickGroups, error) {
	data, err := decodePickGroups("", lines)
	if err != nil {
		return nil, err
	}
	return data.(PickGroups), nil
}

func decodePickGroups(name string, lines RawLines) (Data, error) {
	stream := treadleSeparator.ReplaceAllString(strings.Join(lines, " "), ",")
	picks := strings.Fields(stream)
	out := make(PickGroups, len(picks))
	pos := 0
	for i, pick := range picks {
		parts := strings.Split(pick, ",")
		group := make([]int, len(parts))
		for j, part := range parts {
			pos++
			v, err := strconv.Atoi(part)
			if err != nil {
				return nil, &DecodeError{Section: name, Pos: pos, Token: part, Err: err}
			}
			group[j] = v
		}
		out[i] = group
	}
	return out, nil
}

func decodeRowStrings(_ string, lines RawLines) (Data, error) {
	return RowStrings(append([]string(nil), lines...)), nil
}
