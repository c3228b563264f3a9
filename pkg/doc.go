// Package pkg provides the core libraries for dtxwif weaving draft conversion.
//
// # Overview
//
// dtxwif reads weaving drafts written by Fiberworks PCW (.dtx) and WeavePoint
// (.wpo) and writes them as Weaving Information Files (WIF). The pkg
// directory is organized into three areas:
//
//  1. Formats - source readers and the WIF writer ([dtx], [wpo], [wif])
//  2. Model - the normalized pattern and its derivation ([pattern])
//  3. Infrastructure - batch conversion, caching, configuration, HTTP
//     ([convert], [cache], [config], [server], [observability])
//
// # Architecture
//
// The typical data flow through dtxwif:
//
//	.dtx text                   .wpo bytes
//	    ↓                            ↓
//	[dtx] Tokenize → Decode     [wpo] Read
//	    ↓                            ↓
//	    └──────── [pattern] ─────────┘
//	                  ↓
//	           Pattern.Derive
//	                  ↓
//	            [wif] Encode
//	                  ↓
//	              .wif text
//
// # Quick Start
//
// Convert one file:
//
//	p, err := dtx.ReadFile("twill.dtx")
//	if err != nil {
//	    return err
//	}
//	return wif.WriteFile("twill.wif", p)
//
// Convert a directory tree with caching and parallel workers:
//
//	paths, _ := convert.ResolvePaths([]string{"drafts/"})
//	c, _ := cache.NewFileCache(dir)
//	runner := convert.NewRunner(c, nil, logger, convert.Options{Workers: 8})
//	results := runner.ConvertAll(ctx, paths)
//
// # Main Packages
//
// [dtx] - Section tokenizer and value decoders for Fiberworks PCW drafts.
// Sections are opened by "@@" lines; "@" lines carry metadata.
//
// [wpo] - Binary WeavePoint reader (header, length-prefixed lists, bitmask
// sequences, colour table).
//
// [pattern] - The Pattern model. Derive resolves default colours and
// spacing, transposes the tieup, decodes liftplan rows and rescales the
// palette.
//
// [wif] - WIF writer with fixed section order, plus an INI reader used to
// inspect and verify output.
//
// [convert] - Format registry, path resolution, and the batch Runner shared
// by the CLI and the HTTP service. Failures are isolated per file and
// destinations are written atomically.
//
// [cache] - Conversion cache keyed by content hash. FileCache for the CLI,
// RedisCache for shared deployments, NullCache when disabled.
//
// [config] - TOML configuration file.
//
// [server] - HTTP conversion service built on chi.
//
// [observability] - Conversion and cache hooks with a counting
// implementation.
//
// [errors] - Structured errors with machine-readable codes.
//
// [dtx]: https://pkg.go.dev/github.com/loomtools/dtxwif/pkg/dtx
// [wpo]: https://pkg.go.dev/github.com/loomtools/dtxwif/pkg/wpo
// [wif]: https://pkg.go.dev/github.com/loomtools/dtxwif/pkg/wif
// [pattern]: https://pkg.go.dev/github.com/loomtools/dtxwif/pkg/pattern
// [convert]: https://pkg.go.dev/github.com/loomtools/dtxwif/pkg/convert
// [cache]: https://pkg.go.dev/github.com/loomtools/dtxwif/pkg/cache
// [config]: https://pkg.go.dev/github.com/loomtools/dtxwif/pkg/config
// [server]: https://pkg.go.dev/github.com/loomtools/dtxwif/pkg/server
// [observability]: https://pkg.go.dev/github.com/loomtools/dtxwif/pkg/observability
// [errors]: https://pkg.go.dev/github.com/loomtools/dtxwif/pkg/errors
package pkg
