package site

import (
	"fmt"
	"io/fs"
	"sort"

	"github.com/gobwas/glob"
)

// Discover returns the slash-separated paths of files in fsys matching
// include and not matching exclude, sorted. An empty exclude matches nothing.
func Discover(fsys fs.FS, include, exclude string) ([]string, error) {
	inc, err := glob.Compile(include, '/')
	if err != nil {
		return nil, fmt.Errorf("include pattern %q: %w", include, err)
	}

	var exc glob.Glob
	if exclude != "" {
		if exc, err = glob.Compile(exclude, '/'); err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", exclude, err)
		}
	}

	var paths []string

	err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		if inc.Match(p) && (exc == nil || !exc.Match(p)) {
			paths = append(paths, p)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)

	return paths, nil
}
