package minio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/config"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/ports/driven"
)

var _ driven.ObjectStore = (*ObjectStore)(nil)

func TestNewRequiresEndpoint(t *testing.T) {
	_, err := New(context.Background(), config.MinioService{Bucket: "manuals"})
	assert.ErrorContains(t, err, "endpoint is required")
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), config.MinioService{Endpoint: "localhost:9000"})
	assert.ErrorContains(t, err, "bucket is required")
}
