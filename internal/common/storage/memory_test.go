package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

func TestMemoryStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()

	data := []byte("jpeg-data")
	if err := store.PutObject(ctx, "photos", "c/1.jpg", bytes.NewReader(data), int64(len(data)), "image/jpeg"); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	stat, err := store.StatObject(ctx, "photos", "c/1.jpg")
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if stat.SizeBytes != int64(len(data)) || stat.ContentType != "image/jpeg" || stat.ETag == "" {
		t.Fatalf("unexpected stat: %+v", stat)
	}

	reader, err := store.GetObject(ctx, "photos", "c/1.jpg")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	defer reader.Close()
	got, _ := io.ReadAll(reader)
	if !bytes.Equal(got, data) {
		t.Fatalf("got %q, want %q", got, data)
	}

	if err := store.RemoveObject(ctx, "photos", "c/1.jpg"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := store.GetObject(ctx, "photos", "c/1.jpg"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryStorageSizeMismatch(t *testing.T) {
	store := NewMemoryStorage()
	err := store.PutObject(context.Background(), "b", "k", bytes.NewReader([]byte("abc")), 5, "")
	if err == nil {
		t.Fatalf("expected size mismatch error")
	}
}

func TestNewMinIOStorageRequiresSettings(t *testing.T) {
	if _, err := NewMinIOStorage(MinIOConfig{}); err == nil {
		t.Fatalf("expected endpoint error")
	}
	if _, err := NewMinIOStorage(MinIOConfig{Endpoint: "localhost:9000"}); err == nil {
		t.Fatalf("expected access key error")
	}
}
