// Copyright 2026 The imagestore authors.
// SPDX-License-Identifier: Apache-2.0

// Package s3bundle provides an imagestore.Bundle implementation that reads
// resources from Amazon S3 or an S3-compatible service.
package s3bundle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// Bundle reads resources stored as objects in an S3 bucket.  A resource
// named "turtlerock.jpg" is read from the object "<prefix>/turtlerock.jpg".
type Bundle struct {
	s3iface.S3API
	bucket, prefix string
}

// ReadFile implements the imagestore.Bundle interface.
func (b *Bundle) ReadFile(ctx context.Context, name string) ([]byte, error) {
	key := path.Join(b.prefix, name)
	input := &s3.GetObjectInput{
		Bucket: &b.bucket,
		Key:    &key,
	}

	resp, err := b.GetObjectWithContext(ctx, input)
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && isNotFound(aerr.Code()) {
			return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
		}
		return nil, fmt.Errorf("error fetching %q from s3: %w", key, err)
	}
	defer resp.Body.Close()

	value, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading s3 response body: %w", err)
	}
	return value, nil
}

func isNotFound(code string) bool {
	return code == s3.ErrCodeNoSuchKey || code == "NotFound"
}

// New constructs a Bundle configured using the provided URL string.  URL
// should be of the form: "s3://region/bucket/optional-path-prefix".
// Credentials should be specified using one of the mechanisms supported by
// aws-sdk-go (see https://docs.aws.amazon.com/sdk-for-go/api/aws/session/).
//
// The query parameters "endpoint", "disableSSL=1", and "s3ForcePathStyle=1"
// configure access to S3-compatible services such as minio.
func New(s string) (*Bundle, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}

	config, bucket, prefix, err := parseURL(u)
	if err != nil {
		return nil, err
	}

	sess, err := session.NewSession(config)
	if err != nil {
		return nil, err
	}

	return &Bundle{
		S3API:  s3.New(sess),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func parseURL(u *url.URL) (config *aws.Config, bucket, prefix string, err error) {
	if u.Scheme != "s3" {
		return nil, "", "", fmt.Errorf("s3bundle: unsupported scheme %q", u.Scheme)
	}

	region := u.Host
	parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
	bucket = parts[0]
	if bucket == "" {
		return nil, "", "", fmt.Errorf("s3bundle: no bucket specified in %q", u)
	}
	if len(parts) > 1 {
		prefix = parts[1]
	}

	config = aws.NewConfig().WithRegion(region)

	// allow overriding some additional config options, mostly useful when
	// working with s3-compatible services other than AWS.
	if v := u.Query().Get("endpoint"); v != "" {
		config = config.WithEndpoint(v)
	}
	if v := u.Query().Get("disableSSL"); v == "1" {
		config = config.WithDisableSSL(true)
	}
	if v := u.Query().Get("s3ForcePathStyle"); v == "1" {
		config = config.WithS3ForcePathStyle(true)
	}

	return config, bucket, prefix, nil
}
