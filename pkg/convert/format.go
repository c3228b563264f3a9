package convert

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/loomtools/dtxwif/pkg/dtx"
	errs "github.com/loomtools/dtxwif/pkg/errors"
	"github.com/loomtools/dtxwif/pkg/pattern"
	"github.com/loomtools/dtxwif/pkg/wpo"
)

// Reader decodes one source file. name identifies the source in errors.
type Reader func(r io.Reader, name string) (*pattern.Pattern, error)

// Format describes a convertible source format.
type Format struct {
	Name    string // short name used on the command line and in the API
	Suffix  string // file suffix including the dot, lower case
	Program string // program that writes this format
	Binary  bool
	Read    Reader
}

// Supported formats.
var (
	DTX = &Format{Name: "dtx", Suffix: ".dtx", Program: pattern.DefaultProgram, Read: dtx.Read}
	WPO = &Format{Name: "wpo", Suffix: ".wpo", Program: wpo.Program, Binary: true, Read: wpo.Read}
)

var formats = []*Format{DTX, WPO}

// Formats returns every supported format.
func Formats() []*Format {
	return append([]*Format(nil), formats...)
}

// Names returns the short names of every supported format.
func Names() []string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = f.Name
	}
	return names
}

// ByName returns the format with the given short name.
func ByName(name string) (*Format, error) {
	name = strings.ToLower(strings.TrimPrefix(name, "."))
	for _, f := range formats {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, errs.New(errs.ErrCodeUnsupportedFormat, "unsupported format %q (must be one of: %s)", name, strings.Join(Names(), ", "))
}

// ForPath returns the format matching the suffix of path.
func ForPath(path string) (*Format, error) {
	if f := matchSuffix(path, formats); f != nil {
		return f, nil
	}
	return nil, errs.New(errs.ErrCodeUnsupportedFormat, "%s: unknown file suffix %q", filepath.Base(path), filepath.Ext(path))
}

// Decode parses data in format f.
func (f *Format) Decode(data []byte, name string) (*pattern.Pattern, error) {
	return f.Read(bytes.NewReader(data), name)
}

func matchSuffix(path string, fs []*Format) *Format {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range fs {
		if f.Suffix == ext {
			return f
		}
	}
	return nil
}
