// Copyright 2026 The imagestore authors.
// SPDX-License-Identifier: Apache-2.0

package gcsbundle

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"testing"

	"cloud.google.com/go/storage"
)

// mockObjectHandle implements objectHandle for testing
type mockObjectHandle struct {
	data    []byte
	exists  bool
	readErr error
}

func (m *mockObjectHandle) NewReader(ctx context.Context) (io.ReadCloser, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	if !m.exists {
		return nil, storage.ErrObjectNotExist
	}
	return io.NopCloser(bytes.NewReader(m.data)), nil
}

// mockObjectHandleWithReadError implements objectHandle with a failing reader
type mockObjectHandleWithReadError struct{}

func (m *mockObjectHandleWithReadError) NewReader(ctx context.Context) (io.ReadCloser, error) {
	return io.NopCloser(&errorReader{}), nil
}

type errorReader struct{}

func (e *errorReader) Read(p []byte) (n int, err error) {
	return 0, errors.New("read error")
}

// mockBucketHandle implements bucketHandle for testing
type mockBucketHandle struct {
	objects map[string]objectHandle
}

func (b *mockBucketHandle) Object(name string) objectHandle {
	if obj, exists := b.objects[name]; exists {
		return obj
	}
	return &mockObjectHandle{exists: false}
}

func TestBundleReadFile(t *testing.T) {
	testData := []byte("test image data")
	bucket := &mockBucketHandle{
		objects: map[string]objectHandle{
			"resources/turtlerock.jpg": &mockObjectHandle{data: testData, exists: true},
			"resources/empty.jpg":      &mockObjectHandle{data: []byte{}, exists: true},
			"resources/denied.jpg":     &mockObjectHandle{readErr: errors.New("permission denied")},
			"resources/broken.jpg":     &mockObjectHandleWithReadError{},
		},
	}
	b := newWithBucket(bucket, "resources")
	ctx := context.Background()

	t.Run("existing object", func(t *testing.T) {
		data, err := b.ReadFile(ctx, "turtlerock.jpg")
		if err != nil {
			t.Fatalf("ReadFile returned error: %v", err)
		}
		if !bytes.Equal(data, testData) {
			t.Errorf("ReadFile returned %q, want %q", data, testData)
		}
	})

	t.Run("empty object", func(t *testing.T) {
		data, err := b.ReadFile(ctx, "empty.jpg")
		if err != nil {
			t.Fatalf("ReadFile returned error: %v", err)
		}
		if len(data) != 0 {
			t.Errorf("ReadFile returned %d bytes, want 0", len(data))
		}
	})

	t.Run("missing object", func(t *testing.T) {
		_, err := b.ReadFile(ctx, "nonexistent.jpg")
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("ReadFile returned %v, want fs.ErrNotExist", err)
		}
	})

	for _, name := range []string{"denied.jpg", "broken.jpg"} {
		t.Run("error reading "+name, func(t *testing.T) {
			_, err := b.ReadFile(ctx, name)
			if err == nil {
				t.Fatal("ReadFile returned nil error")
			}
			if errors.Is(err, fs.ErrNotExist) {
				t.Errorf("read failure should not be reported as missing: %v", err)
			}
		})
	}
}

func TestBundleWithoutPrefix(t *testing.T) {
	bucket := &mockBucketHandle{
		objects: map[string]objectHandle{
			"landmarkData.json": &mockObjectHandle{data: []byte("[]"), exists: true},
		},
	}
	b := newWithBucket(bucket, "")

	data, err := b.ReadFile(context.Background(), "landmarkData.json")
	if err != nil {
		t.Fatalf("ReadFile with no prefix returned error: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("ReadFile with no prefix returned %q", data)
	}
}
