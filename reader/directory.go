package reader

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aqua777/go-ragpipe/schema"
)

// DirectoryReader walks a directory and loads every supported file,
// dispatching on extension. Unsupported files are skipped with a log line.
type DirectoryReader struct {
	Recursive bool

	readers map[string]Reader
	logger  *slog.Logger
}

// NewDirectoryReader creates a DirectoryReader supporting .txt, .md and
// .pdf files.
func NewDirectoryReader(recursive bool) *DirectoryReader {
	text := NewTextReader()
	return &DirectoryReader{
		Recursive: recursive,
		readers: map[string]Reader{
			".txt": text,
			".md":  text,
			".pdf": NewPDFReader(),
		},
		logger: slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}
}

// RegisterReader adds or replaces the reader for an extension (with dot).
func (r *DirectoryReader) RegisterReader(ext string, reader Reader) {
	r.readers[strings.ToLower(ext)] = reader
}

// LoadFile loads a single file using the reader registered for its
// extension.
func (r *DirectoryReader) LoadFile(path string) ([]schema.Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	reader, ok := r.readers[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported file extension %q", ext)
	}
	return reader.LoadFile(path)
}

// LoadDirectory loads every supported file under dir, in sorted path
// order. Files that fail to load are skipped with a warning.
func (r *DirectoryReader) LoadDirectory(dir string) ([]schema.Document, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && !r.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := r.readers[strings.ToLower(filepath.Ext(path))]; ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	sort.Strings(paths)

	var docs []schema.Document
	for _, path := range paths {
		fileDocs, err := r.LoadFile(path)
		if err != nil {
			r.logger.Warn("skipping file", "path", path, "error", err)
			continue
		}
		docs = append(docs, fileDocs...)
	}
	return docs, nil
}

var _ Reader = (*DirectoryReader)(nil)
