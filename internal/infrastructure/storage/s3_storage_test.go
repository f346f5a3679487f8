package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraconfig "github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/config"
)

func validS3Config() infraconfig.StorageConfig {
	return infraconfig.StorageConfig{
		Driver:          "s3",
		Bucket:          "portal-documents",
		Region:          "eu-central-1",
		AccessKeyID:     "test-access-key",
		SecretAccessKey: "test-secret-key",
		PresignExpiry:   15 * time.Minute,
	}
}

func TestNewS3DocumentStorage(t *testing.T) {
	t.Run("creates store from valid config", func(t *testing.T) {
		store, err := NewS3DocumentStorage(validS3Config())
		require.NoError(t, err)
		assert.Equal(t, "portal-documents", store.GetBucket())
	})

	t.Run("requires bucket", func(t *testing.T) {
		cfg := validS3Config()
		cfg.Bucket = ""
		_, err := NewS3DocumentStorage(cfg)
		assert.ErrorContains(t, err, "bucket")
	})

	t.Run("requires access key", func(t *testing.T) {
		cfg := validS3Config()
		cfg.AccessKeyID = ""
		_, err := NewS3DocumentStorage(cfg)
		assert.ErrorContains(t, err, "access key")
	})

	t.Run("requires secret key", func(t *testing.T) {
		cfg := validS3Config()
		cfg.SecretAccessKey = ""
		_, err := NewS3DocumentStorage(cfg)
		assert.ErrorContains(t, err, "secret key")
	})

	t.Run("defaults presign expiry", func(t *testing.T) {
		cfg := validS3Config()
		cfg.PresignExpiry = 0
		store, err := NewS3DocumentStorage(cfg)
		require.NoError(t, err)
		assert.Equal(t, 15*time.Minute, store.presignExpiry)
	})

	t.Run("accepts custom endpoint without scheme", func(t *testing.T) {
		cfg := validS3Config()
		cfg.Endpoint = "minio.internal:9000"
		cfg.ForcePathStyle = true
		_, err := NewS3DocumentStorage(cfg)
		require.NoError(t, err)
	})
}

func TestNewDocumentStorage(t *testing.T) {
	t.Run("local driver", func(t *testing.T) {
		store, err := NewDocumentStorage(infraconfig.StorageConfig{
			Driver:    "local",
			LocalPath: t.TempDir(),
		})
		require.NoError(t, err)
		assert.IsType(t, &LocalDocumentStorage{}, store)
	})

	t.Run("s3 driver", func(t *testing.T) {
		store, err := NewDocumentStorage(validS3Config())
		require.NoError(t, err)
		assert.IsType(t, &S3DocumentStorage{}, store)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := NewDocumentStorage(infraconfig.StorageConfig{Driver: "ftp"})
		assert.ErrorContains(t, err, "unknown storage driver")
	})
}
