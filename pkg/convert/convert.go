// Package convert turns weaving pattern files into WIF files.
//
// It is shared by the CLI and the HTTP service. A [Runner] converts single
// files or whole batches: each source is read with the [Format] matching its
// suffix, encoded with [wif.Encode], and written next to the source (or into
// an output directory) through a temporary file, so that a failed conversion
// never leaves a partial destination behind. Failures are isolated per file.
//
// # Usage
//
//	paths, err := convert.ResolvePaths([]string{"drafts/"})
//	if err != nil {
//	    return err
//	}
//	runner := convert.NewRunner(nil, nil, logger, convert.Options{Workers: 4})
//	for _, res := range runner.ConvertAll(ctx, paths) {
//	    fmt.Println(res.Status, res.Dest)
//	}
//
// [wif.Encode]: github.com/loomtools/dtxwif/pkg/wif.Encode
package convert

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/loomtools/dtxwif/pkg/pattern"
)

// CodecVersion changes whenever the encoder output for a given source
// changes. It is part of every cache key.
const CodecVersion = "1"

// DefaultWorkers is the batch parallelism when Options.Workers is unset.
const DefaultWorkers = 4

// OutputSuffix is the suffix of converted files.
const OutputSuffix = ".wif"

// Status is the outcome of converting one file.
type Status int

const (
	StatusWritten Status = iota
	StatusOverwritten
	StatusSkipped
	StatusFailed
)

var statusNames = map[Status]string{
	StatusWritten:     "written",
	StatusOverwritten: "overwritten",
	StatusSkipped:     "skipped",
	StatusFailed:      "failed",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Options configures a Runner.
type Options struct {
	// Overwrite replaces existing destination files instead of skipping them.
	Overwrite bool
	// Workers bounds the number of files converted in parallel.
	Workers int
	// OutputDir, when set, receives every destination file. Otherwise each
	// destination is written next to its source.
	OutputDir string
	// CacheTTL bounds how long converted output stays cached. Zero means
	// cache.TTLConversion.
	CacheTTL time.Duration
}

// Result describes the conversion of one source file.
type Result struct {
	Source   string
	Dest     string
	Format   *Format
	Status   Status
	Err      error
	Pattern  *pattern.Pattern // nil when skipped, failed early, or served from cache
	Size     int
	CacheHit bool
	Duration time.Duration
}

// OK reports whether the file was converted or deliberately skipped.
func (r Result) OK() bool {
	return r.Status != StatusFailed
}

// Destination returns the WIF path for src: src with its suffix replaced by
// ".wif", placed in outputDir if it is not empty.
func Destination(src, outputDir string) string {
	dest := strings.TrimSuffix(src, filepath.Ext(src)) + OutputSuffix
	if outputDir != "" {
		dest = filepath.Join(outputDir, filepath.Base(dest))
	}
	return dest
}

// Summary counts results by status.
type Summary struct {
	Written, Overwritten, Skipped, Failed int
}

// Summarize counts results by status.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case StatusWritten:
			s.Written++
		case StatusOverwritten:
			s.Overwritten++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}
