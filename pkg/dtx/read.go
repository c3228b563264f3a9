package dtx

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	errs "github.com/loomtools/dtxwif/pkg/errors"
	"github.com/loomtools/dtxwif/pkg/pattern"
)

// Read parses dtx text into a pattern. name identifies the source in error
// messages and becomes the pattern name.
func Read(r io.Reader, name string) (*pattern.Pattern, error) {
	sections, err := Tokenize(r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "%s: read failed", name)
	}
	return FromSections(sections, name)
}

// ReadBytes is Read for in-memory content.
func ReadBytes(data []byte, name string) (*pattern.Pattern, error) {
	return Read(bytes.NewReader(data), name)
}

// ReadFile opens and parses a dtx file.
func ReadFile(path string) (*pattern.Pattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()
	return Read(f, filepath.Base(path))
}

// FromSections decodes tokenized sections and assembles a pattern. Absent
// sections leave the matching pattern field nil.
func FromSections(sections Sections, name string) (*pattern.Pattern, error) {
	if err := Decode(sections); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidValue, err, "%s", name)
	}

	p := pattern.New(name)
	p.Threading = intsOf(sections, SectionThreading)
	p.WarpColors = intsOf(sections, SectionWarpColors)
	p.WeftColors = intsOf(sections, SectionWeftColors)
	p.WarpSpacing = intsOf(sections, SectionWarpSpacing)
	p.WeftSpacing = intsOf(sections, SectionWeftSpacing)
	p.Tieup = rowsOf(sections, SectionTieup)
	p.Liftplan = rowsOf(sections, SectionLiftplan)
	if s := sections.Get(SectionTreadling); s != nil {
		p.Treadling = [][]int(s.Data.(PickGroups))
	}
	if s := sections.Get(SectionColorPalette); s != nil {
		p.Palette = append([]string(nil), s.Lines()...)
	}
	if s := sections.Get(SectionImprint); s != nil {
		p.Imprint = parseImprint(s)
	}
	return p, nil
}

func intsOf(sections Sections, name string) []int {
	s := sections.Get(name)
	if s == nil {
		return nil
	}
	return []int(s.Data.(IntSequence))
}

func rowsOf(sections Sections, name string) []string {
	s := sections.Get(name)
	if s == nil {
		return nil
	}
	return []string(s.Data.(RowStrings))
}

// parseImprint reads "<application> <version>" and the creation date from
// the imprint data lines. Files that carry the imprint as metadata instead
// use the first key as application, the first word of its value as version,
// and the value of the second key as date.
func parseImprint(s *Section) pattern.Imprint {
	imp := pattern.Imprint{Version: "?"}
	if lines := s.Lines(); len(lines) > 0 {
		fields := strings.Fields(lines[0])
		if len(fields) > 0 {
			imp.Application = fields[0]
		}
		if len(fields) > 1 {
			imp.Version = fields[1]
		}
		if len(lines) > 1 {
			imp.Date = lines[1]
		}
		return imp
	}

	keys := s.Metadata.Keys()
	if len(keys) > 0 {
		imp.Application = keys[0]
		if v, ok := s.Metadata.Get(keys[0]); ok {
			if fields := strings.Fields(v); len(fields) > 0 {
				imp.Version = fields[0]
			}
		}
	}
	if len(keys) > 1 {
		if v, ok := s.Metadata.Get(keys[1]); ok {
			imp.Date = v
		}
	}
	return imp
}
