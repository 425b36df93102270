package vectorstore

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
)

// Persisted state is a set of sibling files sharing the store path:
//
//	path               gob-encoded index structure
//	path + ".texts"    JSON array of texts
//	path + ".metadata" JSON array of metadata objects
//	path + ".embeddings"  gob-encoded NxD float32 matrix
//
// The raw embedding matrix is kept separately from the index so the store
// can be re-indexed (for example, retrained in approximate mode) without
// re-embedding the texts.
const (
	textsSuffix      = ".texts"
	metadataSuffix   = ".metadata"
	embeddingsSuffix = ".embeddings"
)

// indexFile is the on-disk envelope for the index. Exactly one of the two
// payload fields is set, matching Kind.
type indexFile struct {
	Kind IndexKind
	Flat *flatIndex
	IVF  *ivfIndex
}

// load restores prior state from the store path. It never fails: any
// missing or unreadable artifact results in an empty store and a logged
// warning. The caller must not yet have published the store to other
// goroutines, so no locking is needed.
func (s *Store) load() {
	if _, err := os.Stat(s.path); err != nil {
		// No index file: fresh store.
		return
	}

	index, err := readIndex(s.path)
	if err != nil {
		s.logger.Warn("could not load existing index, starting empty", "path", s.path, "error", err)
		return
	}

	var texts []string
	var metadata []map[string]any
	var embeddings [][]float32

	if err := readJSON(s.path+textsSuffix, &texts); err != nil {
		s.logger.Warn("could not load existing store, starting empty", "path", s.path, "error", err)
		return
	}
	if err := readJSON(s.path+metadataSuffix, &metadata); err != nil {
		s.logger.Warn("could not load existing store, starting empty", "path", s.path, "error", err)
		return
	}
	if err := readGob(s.path+embeddingsSuffix, &embeddings); err != nil {
		s.logger.Warn("could not load existing store, starting empty", "path", s.path, "error", err)
		return
	}

	if len(texts) != index.Count() || len(metadata) != index.Count() || len(embeddings) != index.Count() {
		s.logger.Warn("persisted artifacts are inconsistent, starting empty",
			"path", s.path,
			"index_count", index.Count(),
			"texts", len(texts),
			"metadata", len(metadata),
			"embeddings", len(embeddings),
		)
		return
	}

	s.index = index
	s.texts = texts
	s.metadata = metadata
	s.embeddings = embeddings
	s.logger.Info("loaded vector store", "path", s.path, "total", index.Count())
}

// save writes all four artifacts. Errors are logged and swallowed: the
// in-memory state stays authoritative and durability is best-effort. The
// caller must hold the write lock.
func (s *Store) save() {
	if err := writeIndex(s.path, s.index); err != nil {
		s.logger.Error("error saving index", "path", s.path, "error", err)
	}
	if err := writeJSON(s.path+textsSuffix, s.texts); err != nil {
		s.logger.Error("error saving texts", "path", s.path, "error", err)
	}
	if err := writeJSON(s.path+metadataSuffix, s.metadata); err != nil {
		s.logger.Error("error saving metadata", "path", s.path, "error", err)
	}
	if err := writeGob(s.path+embeddingsSuffix, s.embeddings); err != nil {
		s.logger.Error("error saving embeddings", "path", s.path, "error", err)
	}
}

func readIndex(path string) (Index, error) {
	var file indexFile
	if err := readGob(path, &file); err != nil {
		return nil, err
	}
	switch file.Kind {
	case IndexKindFlat:
		if file.Flat == nil {
			return nil, fmt.Errorf("index file has kind %s but no payload", file.Kind)
		}
		return file.Flat, nil
	case IndexKindIVF:
		if file.IVF == nil {
			return nil, fmt.Errorf("index file has kind %s but no payload", file.Kind)
		}
		return file.IVF, nil
	default:
		return nil, fmt.Errorf("unknown index kind %q", file.Kind)
	}
}

func writeIndex(path string, index Index) error {
	file := indexFile{Kind: index.Kind()}
	switch ix := index.(type) {
	case *flatIndex:
		file.Flat = ix
	case *ivfIndex:
		file.IVF = ix
	default:
		return fmt.Errorf("unsupported index type %T", index)
	}
	return writeGob(path, file)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func readGob(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

func writeGob(path string, v any) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
