package cache

// ConversionKeyOpts identifies one conversion.
type ConversionKeyOpts struct {
	CodecVersion string // bumped whenever encoder output changes
	Format       string // source format name, e.g. "dtx"
	Title        string // WIF title, part of the output
	SourceHash   string // Hash of the source bytes
}

// Keyer builds cache keys.
type Keyer interface {
	ConversionKey(opts ConversionKeyOpts) string
}

// DefaultKeyer builds unprefixed keys of the form "wif:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ConversionKey hashes every field of opts.
func (DefaultKeyer) ConversionKey(opts ConversionKeyOpts) string {
	return hashKey("wif", opts.CodecVersion, opts.Format, opts.Title, opts.SourceHash)
}

// ScopedKeyer wraps a Keyer with a prefix, so that several services can
// share one Redis database without seeing each other's entries.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ConversionKey returns the prefixed key.
func (k *ScopedKeyer) ConversionKey(opts ConversionKeyOpts) string {
	return k.prefix + k.inner.ConversionKey(opts)
}
