package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
)

type memoryObject struct {
	data        []byte
	contentType string
	etag        string
}

// MemoryStorage keeps objects in process memory. Used by the stub server when no MinIO is configured.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string]memoryObject)}
}

func memoryKey(bucket, objectKey string) string {
	return bucket + "/" + objectKey
}

func (m *MemoryStorage) PutObject(_ context.Context, bucket, objectKey string, reader io.Reader, size int64, contentType string) error {
	if reader == nil {
		return fmt.Errorf("reader is required")
	}
	if objectKey == "" {
		return fmt.Errorf("objectKey is required")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read object data failed: %w", err)
	}
	if size >= 0 && int64(len(data)) != size {
		return fmt.Errorf("object size mismatch: got %d, want %d", len(data), size)
	}
	sum := md5.Sum(data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[memoryKey(bucket, objectKey)] = memoryObject{
		data:        data,
		contentType: contentType,
		etag:        hex.EncodeToString(sum[:]),
	}
	return nil
}

func (m *MemoryStorage) GetObject(_ context.Context, bucket, objectKey string) (ObjectReader, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[memoryKey(bucket, objectKey)]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (m *MemoryStorage) StatObject(_ context.Context, bucket, objectKey string) (ObjectStat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[memoryKey(bucket, objectKey)]
	if !ok {
		return ObjectStat{}, ErrObjectNotFound
	}
	return ObjectStat{SizeBytes: int64(len(obj.data)), ETag: obj.etag, ContentType: obj.contentType}, nil
}

func (m *MemoryStorage) RemoveObject(_ context.Context, bucket, objectKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, memoryKey(bucket, objectKey))
	return nil
}
