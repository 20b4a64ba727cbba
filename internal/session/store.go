package session

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// Store persists one JSON file per session with atomic rename-on-write,
// adapted from the teacher's internal/context/persistence/file_storage.go
// onto github.com/spf13/afero so tests can run against afero.NewMemMapFs()
// instead of touching the real disk (josephgoksu-TaskWing's afero.Fs
// injection pattern).
type Store struct {
	fs       afero.Fs
	basePath string
	mu       sync.Mutex
}

// NewStore builds a persistence layer rooted at basePath/sessions. Pass
// afero.NewOsFs() for production use, afero.NewMemMapFs() for tests.
func NewStore(fs afero.Fs, basePath string) (*Store, error) {
	dir := filepath.Join(basePath, "sessions")
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session storage directory: %w", err)
	}
	return &Store{fs: fs, basePath: basePath}, nil
}

// diskSession is the on-disk shape, kept separate from Session to avoid
// ever serializing its mutex. Only the fields named here survive a load:
// any other field in a session file is dropped, and Extra is never filled.
type diskSession struct {
	ID                 string                 `json:"id"`
	Context            string                 `json:"context"`
	ProviderSessionID  string                 `json:"provider_session_id"`
	Metadata           Metadata               `json:"metadata"`
	SuccessFeedback    []SuccessFeedbackEntry `json:"success_feedback"`
	SuccessFeedbackCap int                    `json:"success_feedback_cap"`
	Metrics            Metrics                `json:"metrics"`
	Extra              map[string]interface{} `json:"extra,omitempty"`
}

func (s *Store) sessionPath(id string) (string, error) {
	if strings.ContainsAny(id, "/\\.") {
		return "", fmt.Errorf("invalid session id for persistence: %s", id)
	}
	return filepath.Join(s.basePath, "sessions", id+".json"), nil
}

func (s *Store) save(sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.sessionPath(sess.ID)
	if err != nil {
		return err
	}

	var ds diskSession
	sess.WithLock(func() {
		ds = diskSession{
			ID:                 sess.ID,
			Context:            sess.Context,
			ProviderSessionID:  sess.ProviderSessionID,
			Metadata:           sess.Metadata,
			SuccessFeedback:    sess.SuccessFeedback,
			SuccessFeedbackCap: sess.SuccessFeedbackCap,
			Metrics:            sess.Metrics,
		}
	})

	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize session %s: %w", sess.ID, err)
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write session file %s: %w", sess.ID, err)
	}
	return s.fs.Rename(tmp, path)
}

func (s *Store) delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, err := s.sessionPath(id)
	if err != nil {
		return err
	}
	return s.fs.Remove(path)
}

func (s *Store) loadAll() (map[string]*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.basePath, "sessions")
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*Session)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := afero.ReadFile(s.fs, filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		var ds diskSession
		if err := json.Unmarshal(data, &ds); err != nil {
			continue
		}
		out[ds.ID] = &Session{
			ID:                 ds.ID,
			Context:            ds.Context,
			ProviderSessionID:  ds.ProviderSessionID,
			Metadata:           ds.Metadata,
			SuccessFeedback:    ds.SuccessFeedback,
			SuccessFeedbackCap: ds.SuccessFeedbackCap,
			Metrics:            ds.Metrics,
		}
	}
	return out, nil
}
