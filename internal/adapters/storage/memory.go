package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	portssvc "github.com/SscSPs/expenseflow/internal/core/ports/services"
)

type memoryObject struct {
	contentType string
	data        []byte
}

// MemoryStorage keeps receipts in process memory. Used for local runs and tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	baseURL string
	now     func() time.Time
}

var _ portssvc.BlobStorage = (*MemoryStorage)(nil)

// NewMemoryStorage creates an empty store whose URLs are rooted at baseURL.
func NewMemoryStorage(baseURL string) *MemoryStorage {
	if baseURL == "" {
		baseURL = "memory://receipts"
	}
	return &MemoryStorage{
		objects: make(map[string]memoryObject),
		baseURL: baseURL,
		now:     time.Now,
	}
}

func (s *MemoryStorage) Put(ctx context.Context, key, contentType string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read object %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memoryObject{contentType: contentType, data: data}
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *MemoryStorage) URL(_ context.Context, key string, ttl time.Duration) (string, error) {
	s.mu.RLock()
	_, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return "", apperrors.ErrNotFound
	}
	expires := s.now().Add(ttl).Unix()
	return s.baseURL + "/" + escapeKey(key) + "?expires=" + url.QueryEscape(strconv.FormatInt(expires, 10)), nil
}

// Get returns a copy of the stored object.
func (s *MemoryStorage) Get(key string) (data []byte, contentType string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, "", false
	}
	return bytes.Clone(obj.data), obj.contentType, true
}
