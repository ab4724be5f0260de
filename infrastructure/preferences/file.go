package preferences

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"template-backend/application/ports"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// FileStore keeps preferences in a YAML file and reloads it when another
// process changes it
type FileStore struct {
	*values
	path    string
	logger  *zap.Logger
	writeMu sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewFileStore loads path (a missing file is an empty store) and starts
// watching it
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create preferences watcher: %w", err)
	}
	// Watch the directory: atomic saves replace the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	s := &FileStore{
		values:  newValues(data),
		path:    path,
		logger:  logger.Named("Preferences"),
		watcher: watcher,
		done:    make(chan struct{}),
	}
	go s.watch()
	return s, nil
}

// Path returns the backing file
func (s *FileStore) Path() string {
	return s.path
}

// Set stores value under key
func (s *FileStore) Set(ctx context.Context, key, value string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.save(s.snapshotWith(key, &value))
}

// Remove deletes key
func (s *FileStore) Remove(ctx context.Context, key string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.save(s.snapshotWith(key, nil))
}

// Close stops the watcher
func (s *FileStore) Close() error {
	select {
	case <-s.done:
		return nil
	default:
	}
	close(s.done)
	return s.watcher.Close()
}

// save must be called with writeMu held
func (s *FileStore) save(data map[string]string) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".prefs-*")
	if err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace preferences file: %w", err)
	}

	s.replace(data)
	return nil
}

func (s *FileStore) watch() {
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
				continue
			}
			s.reload()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("Preferences watcher error", zap.Error(err))
		}
	}
}

func (s *FileStore) reload() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	data, err := readFile(s.path)
	if err != nil {
		s.logger.Warn("Failed to reload preferences", zap.String("path", s.path), zap.Error(err))
		return
	}
	s.replace(data)
}

func readFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}

	data := map[string]string{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse preferences %s: %w", path, err)
	}
	return data, nil
}

var _ ports.Preferences = (*FileStore)(nil)
