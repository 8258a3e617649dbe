// Package filestore provides storage for uploaded medical-record files.
// It defines the Store interface, a disk-backed implementation, an in-memory
// implementation for testing, and an encrypting wrapper so that the persisted
// form of every file is ciphertext.
package filestore

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/punithchavan/CHIKITSA/internal/platform/phi"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
	ErrInvalidName  = errors.New("invalid file name")
)

// MaxFileSize is the maximum allowed upload size in bytes (50 MB).
const MaxFileSize = 50 * 1024 * 1024

// Store is the contract for upload storage backends. Names are flat object
// names with no path components.
type Store interface {
	Save(ctx context.Context, name string, content io.Reader) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

// ObjectName builds a collision-free stored name for an upload, keeping the
// original extension. Concurrent uploads of the same file never collide: the
// name combines a nanosecond timestamp with a random token.
func ObjectName(originalName string) string {
	token := make([]byte, 4)
	_, _ = rand.Read(token)
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), hex.EncodeToString(token), ext)
}

func validName(name string) bool {
	if name == "" || name != filepath.Base(name) {
		return false
	}
	return !strings.Contains(name, "..")
}

// ---------------------------------------------------------------------------
// Disk implementation
// ---------------------------------------------------------------------------

// DiskStore stores objects as files under a single directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the directory if absent and returns a DiskStore.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory %s: %w", dir, err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save writes the content to a temporary file and renames it into place, so a
// failed write never leaves a partial object behind.
func (s *DiskStore) Save(_ context.Context, name string, content io.Reader) error {
	if !validName(name) {
		return ErrInvalidName
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	n, err := io.Copy(tmp, io.LimitReader(content, MaxFileSize+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > MaxFileSize {
		err = ErrFileTooLarge
	}
	if err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store file %s: %w", name, err)
	}
	return nil
}

func (s *DiskStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	if !validName(name) {
		return nil, ErrInvalidName
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open file %s: %w", name, err)
	}
	return f, nil
}

func (s *DiskStore) Delete(_ context.Context, name string) error {
	if !validName(name) {
		return ErrInvalidName
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return ErrFileNotFound
	}
	return err
}

// ---------------------------------------------------------------------------
// In-memory implementation
// ---------------------------------------------------------------------------

// MemStore is a thread-safe, in-memory Store for testing.
type MemStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[string][]byte)}
}

func (s *MemStore) Save(_ context.Context, name string, content io.Reader) error {
	if !validName(name) {
		return ErrInvalidName
	}
	data, err := io.ReadAll(io.LimitReader(content, MaxFileSize+1))
	if err != nil {
		return err
	}
	if int64(len(data)) > MaxFileSize {
		return ErrFileTooLarge
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[name] = data
	return nil
}

func (s *MemStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[name]
	if !ok {
		return nil, ErrFileNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[name]; !ok {
		return ErrFileNotFound
	}
	delete(s.objects, name)
	return nil
}

// Len reports the number of stored objects.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// ---------------------------------------------------------------------------
// Encrypting wrapper
// ---------------------------------------------------------------------------

// EncryptedStore wraps a Store so that every object is encrypted before it is
// persisted and decrypted on open. The inner store only ever sees ciphertext.
type EncryptedStore struct {
	inner  Store
	cipher phi.Cipher
}

func NewEncryptedStore(inner Store, cipher phi.Cipher) *EncryptedStore {
	return &EncryptedStore{inner: inner, cipher: cipher}
}

func (s *EncryptedStore) Save(ctx context.Context, name string, content io.Reader) error {
	data, err := io.ReadAll(io.LimitReader(content, MaxFileSize+1))
	if err != nil {
		return err
	}
	if int64(len(data)) > MaxFileSize {
		return ErrFileTooLarge
	}
	sealed, err := s.cipher.EncryptBytes(data)
	if err != nil {
		return fmt.Errorf("encrypt file %s: %w", name, err)
	}
	return s.inner.Save(ctx, name, bytes.NewReader(sealed))
}

func (s *EncryptedStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	rc, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	sealed, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", name, err)
	}
	plain, err := s.cipher.DecryptBytes(sealed)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(plain)), nil
}

func (s *EncryptedStore) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, name)
}
