package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"syscall"
)

// errCorruptStore marks a store file that exists but does not decode.
var errCorruptStore = errors.New("corrupt store file")

// FileKV keeps all keys in one JSON object on disk.
// Every call holds an exclusive flock on a sidecar ".lock" file, so the
// store file itself can be replaced atomically by rename.
type FileKV struct {
	path string
}

// NewFileKV creates the parent directory of path if needed.
func NewFileKV(path string) (*FileKV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileKV{path: path}, nil
}

func (f *FileKV) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		v  string
		ok bool
	)
	err := f.withLock(func() error {
		m, err := f.read()
		if err != nil {
			return err
		}
		v, ok = m[key]
		return nil
	})
	return v, ok, err
}

func (f *FileKV) Set(ctx context.Context, key, value string) error {
	return f.withLock(func() error {
		m, err := f.readForWrite()
		if err != nil {
			return err
		}
		m[key] = value
		return f.write(m)
	})
}

func (f *FileKV) Delete(ctx context.Context, key string) error {
	return f.withLock(func() error {
		m, err := f.readForWrite()
		if err != nil {
			return err
		}
		if _, ok := m[key]; !ok {
			return nil
		}
		delete(m, key)
		return f.write(m)
	})
}

func (f *FileKV) Update(ctx context.Context, key string, fn UpdateFunc) error {
	return f.withLock(func() error {
		m, err := f.readForWrite()
		if err != nil {
			return err
		}
		cur, ok := m[key]
		next, err := fn(cur, ok)
		if err != nil {
			return err
		}
		m[key] = next
		return f.write(m)
	})
}

func (f *FileKV) withLock(fn func() error) error {
	lock, err := os.OpenFile(f.path+".lock", os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer lock.Close()

	if err := syscall.Flock(int(lock.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("lock store file: %w", err)
	}
	defer syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)

	return fn()
}

// read returns the stored entries. A missing or empty file is an empty map.
func (f *FileKV) read() (map[string]string, error) {
	m := make(map[string]string)
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}
	if len(data) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorruptStore, err)
	}
	return m, nil
}

// readForWrite is read, except that an undecodable file is moved aside to
// <path>.corrupt and writing starts over from an empty map.
func (f *FileKV) readForWrite() (map[string]string, error) {
	m, err := f.read()
	if !errors.Is(err, errCorruptStore) {
		return m, err
	}
	backup := f.path + ".corrupt"
	if rerr := os.Rename(f.path, backup); rerr != nil {
		return nil, fmt.Errorf("back up store file: %w", rerr)
	}
	log.Printf("store: %v; moved to %s, starting empty", err, backup)
	return make(map[string]string), nil
}

// write replaces the store file via a temp file and rename.
func (f *FileKV) write(m map[string]string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write store file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close store file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
