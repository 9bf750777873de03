package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/softprops/porteurbars/internal/defaults"
)

// TreeDir is the directory under a template root holding the files to render.
const TreeDir = "template"

// Template is a template source on local disk. The defaults file and the
// renderable tree live under Root, or under Root/Base when Base is set.
type Template struct {
	Root string
	Base string
}

// NewTemplate creates a Template rooted at root.
func NewTemplate(root string) *Template {
	return &Template{Root: root}
}

// WithBase returns a copy of t that uses the base subdirectory of its root.
func (t *Template) WithBase(base string) *Template {
	t2 := *t
	t2.Base = base

	return &t2
}

// Dir returns the directory holding the defaults file and the template tree.
func (t *Template) Dir() string {
	return filepath.Join(t.Root, t.Base)
}

// DefaultsPath returns the path of the template's defaults file.
func (t *Template) DefaultsPath() string {
	return filepath.Join(t.Dir(), defaults.FileName)
}

// TreePath returns the root of the renderable file tree.
func (t *Template) TreePath() string {
	return filepath.Join(t.Dir(), TreeDir)
}

// ParseSource resolves a template source argument to a local directory.
// Plain paths and file:// URIs are accepted. Remote sources are rejected
// with ErrUnsupportedSource.
func ParseSource(src string) (string, error) {
	path := strings.TrimPrefix(src, "file://")

	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return "", NewPathError("open template", path, ErrNotADirectory)
		}

		abs, absErr := filepath.Abs(path)
		if absErr != nil {
			return "", NewPathError("open template", path, absErr)
		}

		return abs, nil
	}

	if isRemote(src) {
		return "", fmt.Errorf("%w: %s (clone it locally and pass the directory)", ErrUnsupportedSource, src)
	}

	return "", NewPathError("open template", path, err)
}

func isRemote(src string) bool {
	if strings.HasPrefix(src, "file://") {
		return false
	}

	return strings.Contains(src, "://") || strings.HasPrefix(src, "git@")
}
