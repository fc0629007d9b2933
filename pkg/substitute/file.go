package substitute

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	scderrors "github.com/bcomnes/scd/pkg/errors"
	"github.com/bcomnes/scd/pkg/pattern"
)

// File is a target file with its resolved rules.
type File struct {
	// Name is the path relative to the project directory.
	Name string
	// Path is the absolute path.
	Path  string
	Rules []pattern.Rule
}

// NewFile joins name with projectDir.
func NewFile(projectDir, name string, rules []pattern.Rule) *File {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(projectDir, name)
	}
	return &File{Name: name, Path: filepath.Clean(path), Rules: rules}
}

// Preflight checks that every file is a regular UTF-8 text file that can be
// opened for reading and for writing. It reports all failures at once so a batch is
// either applied to every file or to none.
func Preflight(files []*File) error {
	var errs []error
	for _, f := range files {
		if err := checkAccess(f.Path); err != nil {
			errs = append(errs, scderrors.WrapWithContext(scderrors.ErrCodeAccess,
				fmt.Sprintf("%s is not accessible", f.Name), err,
				map[string]any{"file": f.Name, "path": f.Path}))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return scderrors.WrapWithContext(scderrors.ErrCodeAccess,
		fmt.Sprintf("%d of %d target files failed the access check", len(errs), len(files)),
		errors.Join(errs...),
		map[string]any{"failed": len(errs), "total": len(files)})
}

func checkAccess(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file")
	}

	r, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("not readable: %w", err)
	}
	data, err := io.ReadAll(r)
	r.Close()
	if err != nil {
		return fmt.Errorf("not readable: %w", err)
	}
	if err := checkEncoding(data); err != nil {
		return err
	}

	w, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("not writable: %w", err)
	}
	return w.Close()
}

// checkEncoding rejects content that is not valid UTF-8. Patterns match on
// runes, so invalid bytes would come back as U+FFFD on write.
func checkEncoding(data []byte) error {
	if !utf8.Valid(data) {
		return errors.New("not valid UTF-8 text")
	}
	return nil
}
