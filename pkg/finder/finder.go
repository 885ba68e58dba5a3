package finder

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// DefaultPatterns match every markdown document below the search root
var DefaultPatterns = []string{"**/*.md", "**/*.markdown"}

// DocumentFinder finds markdown documents below a directory
type DocumentFinder interface {
	// Find returns every file below root matching one of the doublestar patterns
	Find(ctx context.Context, root string, patterns []string) ([]*FileInfo, error)
}

// FileInfo represents a found document
type FileInfo struct {
	Path    string
	Content []byte
}

// Finder is the afero backed implementation of DocumentFinder
type Finder struct {
	fs afero.Fs
}

var _ DocumentFinder = (*Finder)(nil)

// NewFinder creates a Finder reading from fs
func NewFinder(fs afero.Fs) *Finder {
	return &Finder{fs: fs}
}

// Find implements DocumentFinder. Results are sorted and de-duplicated.
func (f *Finder) Find(ctx context.Context, root string, patterns []string) ([]*FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Errorf("finding documents: %w", err)
	}

	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	stat, err := f.fs.Stat(root)
	if err != nil {
		return nil, errors.Errorf("reading root %s: %w", root, err)
	}
	if !stat.IsDir() {
		return nil, errors.Errorf("root %s is not a directory", root)
	}

	base := f.fs
	if root != "." && root != "" {
		base = afero.NewBasePathFs(f.fs, root)
	}
	iofs := afero.NewIOFS(base)

	seen := map[string]bool{}
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid pattern %q", pattern)
		}

		matches, err := doublestar.Glob(iofs, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Errorf("globbing %q: %w", pattern, err)
		}

		for _, m := range matches {
			seen[m] = true
		}
	}

	rels := make([]string, 0, len(seen))
	for m := range seen {
		rels = append(rels, m)
	}
	sort.Strings(rels)

	files := make([]*FileInfo, 0, len(rels))
	for _, rel := range rels {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("finding documents: %w", err)
		}

		path := filepath.Join(root, filepath.FromSlash(rel))
		content, err := afero.ReadFile(f.fs, path)
		if err != nil {
			return nil, errors.Errorf("reading %s: %w", path, err)
		}

		files = append(files, &FileInfo{Path: path, Content: content})
	}

	zerolog.Ctx(ctx).Debug().Str("root", root).Strs("patterns", patterns).Int("found", len(files)).Msg("found documents")

	return files, nil
}
