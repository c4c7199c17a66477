package cookies

import (
	"encoding/json"
	"os"

	"go.uber.org/zap"
)

// FileStore persists cookies as a UTF-8 JSON object mapping names to values.
//
// The file is shared state across client instances and processes. Saves use
// read-merge-write with no file locking, so concurrent writers race and the
// last writer wins. Callers that need stronger guarantees within a single
// process should use MemoryStore instead.
type FileStore struct {
	path string
	log  *zap.Logger
}

// NewFileStore creates a store backed by the JSON file at path.
func NewFileStore(path string, log *zap.Logger) *FileStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileStore{path: path, log: log}
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the jar from disk. Missing or corrupt files yield an empty map.
func (s *FileStore) Load() map[string]string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return map[string]string{}
	}

	var jar map[string]string
	if err := json.Unmarshal(data, &jar); err != nil {
		s.log.Warn("cookie jar unreadable, treating as empty",
			zap.String("path", s.path), zap.Error(err))
		return map[string]string{}
	}
	if jar == nil {
		return map[string]string{}
	}
	return jar
}

// Save merges cookies over the on-disk jar and rewrites the whole file.
// Write failures are logged, never propagated.
func (s *FileStore) Save(cookies map[string]string) {
	all := merge(s.Load(), cookies)

	data, err := json.Marshal(all)
	if err != nil {
		s.log.Error("failed to encode cookie jar", zap.Error(err))
		return
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.log.Error("failed to save cookie jar",
			zap.String("path", s.path), zap.Error(err))
		return
	}

	s.log.Debug("cookie jar saved",
		zap.String("path", s.path), zap.Int("cookies", len(all)))
}
