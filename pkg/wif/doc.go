// Package wif writes and reads WIF (Weaving Information File) 1.1 documents.
//
// WIF is an INI-like text format of bracketed section headers followed by
// key=value lines. [Encode] and [Write] serialize a [pattern.Pattern] the
// way Fiberworks PCW does, including its section order and its habit of
// omitting colour and spacing sections that only repeat the defaults.
// [Parse] reads any WIF document back into a [File] for inspection.
//
// [pattern.Pattern]: github.com/loomtools/dtxwif/pkg/pattern.Pattern
package wif
