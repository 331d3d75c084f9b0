// Package storagetest provides an in-memory ImageStore for tests.
package storagetest

import (
	"context" // ImageStore signature
	"errors"  // Failure sentinel
	"fmt"     // Fake refs
	"sync"    // Guards the recorded calls

	"social_network/internal/storage" // ImageStore contract
)

// PNG is the smallest payload that sniffs as image/png
var PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

// ErrUploadFailed is returned by Upload while FailUploads is set
var ErrUploadFailed = errors.New("provider unavailable")

// Store records uploads and deletions
type Store struct {
	mu          sync.Mutex
	seq         int
	Stored      map[string][]byte
	Deleted     []string
	FailUploads bool
}

// New returns an empty Store
func New() *Store { return &Store{Stored: map[string][]byte{}} }

// Upload records the image under a sequential ref
func (s *Store) Upload(_ context.Context, u storage.Upload) (storage.Image, error) {
	if _, err := storage.Check(u, 0); err != nil {
		return storage.Image{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUploads {
		return storage.Image{}, ErrUploadFailed
	}
	s.seq++
	ref := fmt.Sprintf("posts/img-%d", s.seq)
	s.Stored[ref] = u.Data
	return storage.Image{URL: "https://img.test/" + ref + ".png", Ref: ref}, nil
}

// Delete forgets ref and records the call
func (s *Store) Delete(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Stored, ref)
	s.Deleted = append(s.Deleted, ref)
	return nil
}
