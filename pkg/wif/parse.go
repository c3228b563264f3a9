package wif

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	errs "github.com/loomtools/dtxwif/pkg/errors"
)

// File is a parsed WIF document.
type File struct {
	sections []*Section
	byName   map[string]*Section
}

// Section is one bracketed section of a WIF document.
type Section struct {
	Name   string // as written in the file
	keys   []string
	values map[string]string
}

// Parse reads a WIF document. Section and key names are case-insensitive.
// Lines starting with ';' are comments and blank lines are ignored. A
// repeated key overwrites the earlier value.
func Parse(r io.Reader) (*File, error) {
	f := &File{byName: make(map[string]*Section)}
	var current *Section

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			end := strings.Index(line, "]")
			if end < 0 {
				return nil, errs.New(errs.ErrCodeInvalidInput, "line %d: unterminated section header %q", lineNo, line)
			}
			current = f.add(strings.TrimSpace(line[1:end]))
			continue
		}

		if current == nil {
			return nil, errs.New(errs.ErrCodeInvalidInput, "line %d: entry outside of any section", lineNo)
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, errs.New(errs.ErrCodeInvalidInput, "line %d: expected key=value, got %q", lineNo, line)
		}
		current.set(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "read wif")
	}
	return f, nil
}

// ParseString is Parse for in-memory text.
func ParseString(s string) (*File, error) {
	return Parse(strings.NewReader(s))
}

func (f *File) add(name string) *Section {
	norm := strings.ToUpper(name)
	if s, ok := f.byName[norm]; ok {
		return s
	}
	s := &Section{Name: name, values: make(map[string]string)}
	f.sections = append(f.sections, s)
	f.byName[norm] = s
	return s
}

// Section returns the named section, or nil.
func (f *File) Section(name string) *Section {
	return f.byName[strings.ToUpper(name)]
}

// Has reports whether the named section is present.
func (f *File) Has(name string) bool {
	return f.Section(name) != nil
}

// Sections returns all sections in file order.
func (f *File) Sections() []*Section {
	return append([]*Section(nil), f.sections...)
}

func (s *Section) set(key, value string) {
	norm := strings.ToLower(key)
	if _, ok := s.values[norm]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[norm] = value
}

// Keys returns the keys in file order, spelled as first written.
func (s *Section) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Len returns the number of entries.
func (s *Section) Len() int {
	return len(s.keys)
}

// Get returns the value of key.
func (s *Section) Get(key string) (string, bool) {
	v, ok := s.values[strings.ToLower(key)]
	return v, ok
}

// Int returns the value of key as an integer.
func (s *Section) Int(key string) (int, error) {
	v, err := s.require(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errs.Wrap(errs.ErrCodeInvalidValue, err, "[%s] %s", s.Name, key)
	}
	return n, nil
}

var wifBools = map[string]bool{
	"true": true, "on": true, "yes": true, "1": true,
	"false": false, "off": false, "no": false, "0": false,
}

// Bool returns the value of key as a WIF boolean.
func (s *Section) Bool(key string) (bool, error) {
	v, err := s.require(key)
	if err != nil {
		return false, err
	}
	b, ok := wifBools[strings.ToLower(v)]
	if !ok {
		return false, errs.New(errs.ErrCodeInvalidValue, "[%s] %s: %q is not a boolean", s.Name, key, v)
	}
	return b, nil
}

// Ints returns the comma-separated integer list stored under key. An empty
// value yields an empty list.
func (s *Section) Ints(key string) ([]int, error) {
	v, err := s.require(key)
	if err != nil {
		return nil, err
	}
	if v == "" {
		return []int{}, nil
	}
	parts := strings.Split(v, ",")
	out := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidValue, err, "[%s] %s", s.Name, key)
		}
		out[i] = n
	}
	return out, nil
}

func (s *Section) require(key string) (string, error) {
	v, ok := s.Get(key)
	if !ok {
		return "", errs.New(errs.ErrCodeNotFound, "[%s] has no %s entry", s.Name, key)
	}
	return v, nil
}
