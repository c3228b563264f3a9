package dtx

import (
	"bufio"
	"io"
	"strings"
	"unicode"
)

const (
	sectionMarker  = "@@"
	metadataMarker = "%%"

	// maxLineSize bounds a single line; threading lines of wide drafts can
	// be far longer than bufio's default.
	maxLineSize = 16 << 20
)

// sectionAliases maps historical spellings to canonical section names.
var sectionAliases = map[string]string{
	"color palet": "color palette",
}

// CanonicalName lower-cases a section name and resolves known aliases.
func CanonicalName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := sectionAliases[name]; ok {
		return alias
	}
	return name
}

// Tokenize splits dtx text into sections. It performs no validation:
// lines before the first section marker are dropped and a repeated section
// name replaces the earlier section.
func Tokenize(r io.Reader) (Sections, error) {
	sections := make(Sections)
	var current *Section
	pos := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, sectionMarker) {
			name := CanonicalName(line[len(sectionMarker):])
			current = &Section{Name: name, Pos: pos, Data: RawLines{}}
			sections[name] = current
			pos++
			continue
		}
		if current == nil {
			continue
		}
		current.addLine(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return sections, nil
}

// addLine appends a metadata entry or a raw data line.
func (s *Section) addLine(line string) {
	if strings.HasPrefix(line, metadataMarker) {
		rest := strings.TrimSpace(line[len(metadataMarker):])
		if rest == "" {
			return
		}
		key := rest
		var value *string
		if i := strings.IndexFunc(rest, unicode.IsSpace); i >= 0 {
			key = rest[:i]
			v := strings.TrimSpace(rest[i:])
			value = &v
		}
		s.Metadata.Set(key, value)
		return
	}
	s.Data = append(s.Data.(RawLines), line)
}

// TokenizeString is Tokenize for in-memory text. It fails only on a line
// longer than maxLineSize.
func TokenizeString(s string) (Sections, error) {
	return Tokenize(strings.NewReader(s))
}
