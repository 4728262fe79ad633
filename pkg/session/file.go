package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// FilePersistence stores the session record as a JSON file, the CLI
// equivalent of a browser's local storage: the session survives process
// restarts until an explicit clear. The file is written with 0600
// permissions since it holds a bearer credential.
type FilePersistence struct {
	path string
}

// NewFilePersistence creates a file-backed persistence at path. Parent
// directories are created on the first Save.
func NewFilePersistence(path string) (*FilePersistence, error) {
	if path == "" {
		return nil, errors.New("session: file persistence path is required")
	}
	return &FilePersistence{path: path}, nil
}

// DefaultSessionPath returns the conventional session file location under
// the user config directory.
func DefaultSessionPath(appName string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "session.json"), nil
}

func (f *FilePersistence) Save(ctx context.Context, entries map[string]string) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}

	// Write-then-rename keeps a crash from leaving a truncated record.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *FilePersistence) Load(ctx context.Context) (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		// A corrupt record is indistinguishable from no record for callers;
		// hydration treats both as anonymous.
		return map[string]string{}, nil
	}
	return entries, nil
}

func (f *FilePersistence) Clear(ctx context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
