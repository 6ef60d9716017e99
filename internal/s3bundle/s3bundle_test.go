// Copyright 2026 The imagestore authors.
// SPDX-License-Identifier: Apache-2.0

package s3bundle

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"net/url"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// mockS3Client is a mock implementation of the S3 client interface
type mockS3Client struct {
	s3iface.S3API
	storage map[string][]byte
	err     error
}

func (m *mockS3Client) GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	if data, ok := m.storage[*input.Bucket+"/"+*input.Key]; ok {
		return &s3.GetObjectOutput{
			Body: aws.ReadSeekCloser(bytes.NewReader(data)),
		}, nil
	}
	return nil, awserr.New(s3.ErrCodeNoSuchKey, "The specified key does not exist.", nil)
}

func TestBundle_ReadFile(t *testing.T) {
	mock := &mockS3Client{
		storage: map[string][]byte{
			"landmarks/resources/turtlerock.jpg":    []byte("turtle rock"),
			"landmarks/resources/landmarkData.json": []byte("[]"),
			"landmarks/icybay.jpg":                  []byte("icy bay"),
		},
	}

	t.Run("with prefix", func(t *testing.T) {
		b := &Bundle{S3API: mock, bucket: "landmarks", prefix: "resources"}
		got, err := b.ReadFile(context.Background(), "turtlerock.jpg")
		if err != nil {
			t.Fatalf("ReadFile returned error: %v", err)
		}
		if string(got) != "turtle rock" {
			t.Errorf("ReadFile returned %q, want %q", got, "turtle rock")
		}
	})

	t.Run("without prefix", func(t *testing.T) {
		b := &Bundle{S3API: mock, bucket: "landmarks"}
		got, err := b.ReadFile(context.Background(), "icybay.jpg")
		if err != nil {
			t.Fatalf("ReadFile returned error: %v", err)
		}
		if string(got) != "icy bay" {
			t.Errorf("ReadFile returned %q, want %q", got, "icy bay")
		}
	})

	t.Run("missing object", func(t *testing.T) {
		b := &Bundle{S3API: mock, bucket: "landmarks", prefix: "resources"}
		_, err := b.ReadFile(context.Background(), "nonexistent.jpg")
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("ReadFile returned %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("service error", func(t *testing.T) {
		failing := &mockS3Client{err: awserr.New("AccessDenied", "Access Denied", nil)}
		b := &Bundle{S3API: failing, bucket: "landmarks"}
		_, err := b.ReadFile(context.Background(), "turtlerock.jpg")
		if err == nil {
			t.Fatal("ReadFile returned nil error")
		}
		if errors.Is(err, fs.ErrNotExist) {
			t.Errorf("access error should not be reported as missing: %v", err)
		}
	})
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		url            string
		region         string
		bucket, prefix string
		endpoint       string
		wantErr        bool
	}{
		{"s3://us-west-2/landmarks", "us-west-2", "landmarks", "", "", false},
		{"s3://us-west-2/landmarks/resources/v1", "us-west-2", "landmarks", "resources/v1", "", false},
		{"s3://us-east-1/landmarks?endpoint=localhost:9000&disableSSL=1&s3ForcePathStyle=1", "us-east-1", "landmarks", "", "localhost:9000", false},
		{"s3://us-west-2/", "", "", "", "", true},
		{"gcs://bucket/prefix", "", "", "", "", true},
	}

	for _, tt := range tests {
		u, _ := url.Parse(tt.url)
		config, bucket, prefix, err := parseURL(u)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseURL(%q) returned nil error", tt.url)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseURL(%q) returned error: %v", tt.url, err)
			continue
		}
		if got := aws.StringValue(config.Region); got != tt.region {
			t.Errorf("parseURL(%q) region = %q, want %q", tt.url, got, tt.region)
		}
		if bucket != tt.bucket || prefix != tt.prefix {
			t.Errorf("parseURL(%q) returned bucket %q, prefix %q, want %q, %q", tt.url, bucket, prefix, tt.bucket, tt.prefix)
		}
		if got := aws.StringValue(config.Endpoint); got != tt.endpoint {
			t.Errorf("parseURL(%q) endpoint = %q, want %q", tt.url, got, tt.endpoint)
		}
		if tt.endpoint != "" && (!aws.BoolValue(config.DisableSSL) || !aws.BoolValue(config.S3ForcePathStyle)) {
			t.Errorf("parseURL(%q) did not apply disableSSL and s3ForcePathStyle", tt.url)
		}
	}
}
