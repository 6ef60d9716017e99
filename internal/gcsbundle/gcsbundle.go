// Copyright 2026 The imagestore authors.
// SPDX-License-Identifier: Apache-2.0

// Package gcsbundle provides an imagestore.Bundle implementation that reads
// resources from Google Cloud Storage.
package gcsbundle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"

	"cloud.google.com/go/storage"
)

// objectHandle is the subset of *storage.ObjectHandle used by Bundle.
type objectHandle interface {
	NewReader(ctx context.Context) (io.ReadCloser, error)
}

// bucketHandle is the subset of *storage.BucketHandle used by Bundle.
type bucketHandle interface {
	Object(name string) objectHandle
}

type gcsBucket struct {
	*storage.BucketHandle
}

func (b gcsBucket) Object(name string) objectHandle {
	return gcsObject{b.BucketHandle.Object(name)}
}

type gcsObject struct {
	*storage.ObjectHandle
}

func (o gcsObject) NewReader(ctx context.Context) (io.ReadCloser, error) {
	return o.ObjectHandle.NewReader(ctx)
}

// Bundle reads resources stored as objects in a GCS bucket.
type Bundle struct {
	bucket bucketHandle
	prefix string
}

// ReadFile implements the imagestore.Bundle interface.
func (b *Bundle) ReadFile(ctx context.Context, name string) ([]byte, error) {
	object := path.Join(b.prefix, name)
	r, err := b.bucket.Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
		}
		return nil, fmt.Errorf("error reading %q from gcs: %w", object, err)
	}
	defer r.Close()

	value, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading %q from gcs: %w", object, err)
	}
	return value, nil
}

// New constructs a Bundle reading objects from the specified GCS bucket.  If
// prefix is not empty, object names will be prefixed with that path.
// Credentials should be specified using one of the mechanisms supported for
// Application Default Credentials (see
// https://cloud.google.com/docs/authentication/production)
func New(ctx context.Context, bucket, prefix string) (*Bundle, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return newWithBucket(gcsBucket{client.Bucket(bucket)}, prefix), nil
}

func newWithBucket(bucket bucketHandle, prefix string) *Bundle {
	return &Bundle{bucket: bucket, prefix: prefix}
}
