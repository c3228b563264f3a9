package convert

import (
	"io/fs"
	"os"
	"path/filepath"

	errs "github.com/loomtools/dtxwif/pkg/errors"
)

// ResolvePaths expands inputs into source files. A path whose suffix matches
// one of formats is taken as is; a directory is searched recursively for
// matching files. Other files are ignored. Duplicates are dropped, keeping
// the first occurrence. With no formats, every supported format matches.
func ResolvePaths(inputs []string, formats ...*Format) ([]string, error) {
	if len(formats) == 0 {
		formats = Formats()
	}

	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		key := filepath.Clean(p)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, p)
	}

	for _, in := range inputs {
		if matchSuffix(in, formats) != nil {
			add(in)
			continue
		}
		info, err := os.Stat(in)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeIO, err, "resolve %s", in)
		}
		if !info.IsDir() {
			continue
		}
		err = filepath.WalkDir(in, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && matchSuffix(d.Name(), formats) != nil {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeIO, err, "walk %s", in)
		}
	}
	return out, nil
}
