package dtx

import "sort"

// Kind identifies the shape of a section's data.
type Kind int

const (
	KindRawLines Kind = iota
	KindIntSequence
	KindPickGroups
	KindRowStrings
)

var kindNames = map[Kind]string{
	KindRawLines:    "raw lines",
	KindIntSequence: "integers",
	KindPickGroups:  "pick groups",
	KindRowStrings:  "rows",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Data is the decoded content of a section. It is one of RawLines,
// IntSequence, PickGroups or RowStrings.
type Data interface {
	Kind() Kind
	Len() int
}

// RawLines are data lines exactly as they appear in the file, trimmed.
type RawLines []string

// IntSequence is a whitespace-separated integer stream.
type IntSequence []int

// PickGroups holds the treadles pressed on each pick.
type PickGroups [][]int

// RowStrings are rows of '0'/'1' characters.
type RowStrings []string

func (RawLines) Kind() Kind    { return KindRawLines }
func (IntSequence) Kind() Kind { return KindIntSequence }
func (PickGroups) Kind() Kind  { return KindPickGroups }
func (RowStrings) Kind() Kind  { return KindRowStrings }

func (d RawLines) Len() int    { return len(d) }
func (d IntSequence) Len() int { return len(d) }
func (d PickGroups) Len() int  { return len(d) }
func (d RowStrings) Len() int  { return len(d) }

// Metadata maps keys to optional values and remembers insertion order.
type Metadata struct {
	keys   []string
	values map[string]*string
}

// Set stores key with an optional value; a nil value means the key was
// given without one. Setting an existing key keeps its original position.
func (m *Metadata) Set(key string, value *string) {
	if m.values == nil {
		m.values = make(map[string]*string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value of key. ok is false if the key is absent or was
// given without a value.
func (m *Metadata) Get(key string) (value string, ok bool) {
	v := m.values[key]
	if v == nil {
		return "", false
	}
	return *v, true
}

// Has reports whether key is present, with or without a value.
func (m *Metadata) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Keys returns the keys in the order they were first set.
func (m *Metadata) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Len returns the number of keys.
func (m *Metadata) Len() int {
	return len(m.keys)
}

// Section is one named block of a dtx file.
type Section struct {
	Name     string
	Pos      int // order of appearance, starting at 0
	Metadata Metadata
	Data     Data
}

// Lines returns the section data as raw lines. It is nil once the section
// has been decoded into a non-string variant.
func (s *Section) Lines() []string {
	switch d := s.Data.(type) {
	case RawLines:
		return d
	case RowStrings:
		return d
	}
	return nil
}

// Len returns the number of data items.
func (s *Section) Len() int {
	if s.Data == nil {
		return 0
	}
	return s.Data.Len()
}

// Sections maps canonical, lower-case section names to sections.
type Sections map[string]*Section

// Ordered returns the sections in the order they appear in the file.
func (ss Sections) Ordered() []*Section {
	out := make([]*Section, 0, len(ss))
	for _, s := range ss {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pos < out[j].Pos })
	return out
}

// Get returns the named section, or nil.
func (ss Sections) Get(name string) *Section {
	return ss[name]
}
