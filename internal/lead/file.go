package lead

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/glowheal/catalog/internal/model"
)

// LogFile is the append-only log written next to the per-lead documents.
const LogFile = "leads-log.jsonl"

// FileStore keeps one JSON document per lead in a directory and appends every
// new lead to a JSON Lines log.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lead dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && id != "." && id != ".."
}

func (s *FileStore) Put(ctx context.Context, l *model.Lead) (*model.Lead, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	prepare(l)
	if !validID(l.ID) {
		return nil, false, fmt.Errorf("%w: bad id %q", ErrInvalid, l.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, err := s.read(l.ID); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	b, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, false, fmt.Errorf("encode lead: %w", err)
	}
	line, err := json.Marshal(l)
	if err != nil {
		return nil, false, fmt.Errorf("encode lead: %w", err)
	}

	// The document becomes visible only after its log line is written.
	tmp, err := s.writeTemp(b)
	if err != nil {
		return nil, false, err
	}
	if err := s.appendLog(line); err != nil {
		os.Remove(tmp)
		return nil, false, err
	}
	if err := os.Rename(tmp, s.path(l.ID)); err != nil {
		os.Remove(tmp)
		return nil, false, fmt.Errorf("write lead: %w", err)
	}

	stored := *l
	return &stored, true, nil
}

func (s *FileStore) writeTemp(b []byte) (string, error) {
	f, err := os.CreateTemp(s.dir, ".lead-*.tmp")
	if err != nil {
		return "", fmt.Errorf("write lead: %w", err)
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write lead: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write lead: %w", err)
	}
	return f.Name(), nil
}

func (s *FileStore) appendLog(line []byte) error {
	f, err := os.OpenFile(filepath.Join(s.dir, LogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open lead log: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("append lead log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("append lead log: %w", err)
	}
	return nil
}

func (s *FileStore) read(id string) (*model.Lead, error) {
	b, err := os.ReadFile(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read lead: %w", err)
	}
	var l model.Lead
	if err := json.Unmarshal(b, &l); err != nil {
		return nil, fmt.Errorf("parse lead %s: %w", id, err)
	}
	return &l, nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*model.Lead, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(id)
}

func (s *FileStore) List(ctx context.Context, p ListParams) ([]model.Lead, error) {
	s.mu.Lock()
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("read lead dir: %w", err)
	}

	var leads []model.Lead
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		l, err := s.read(strings.TrimSuffix(name, ".json"))
		if err != nil {
			s.mu.Unlock()
			return nil, err
		}
		if matches(l, p) {
			leads = append(leads, *l)
		}
	}
	s.mu.Unlock()

	sortNewestFirst(leads)
	if n := limitOf(p); len(leads) > n {
		leads = leads[:n]
	}
	return leads, nil
}

func (s *FileStore) Close() error {
	return nil
}
