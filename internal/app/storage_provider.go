package app

import (
	"fmt"

	"github.com/yungbote/studyforge-backend/internal/platform/gcp"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

var (
	newBucketServiceWithConfig = gcp.NewBucketServiceWithConfig
	resolveStorageConfig       = gcp.ResolveObjectStorageConfigFromEnv
)

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidConfig StorageProviderBootstrapErrorCode = "invalid_config"
	StorageProviderBootstrapErrorConnectFailed StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code         StorageProviderBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageProviderBootstrapError) Error() string {
	return fmt.Sprintf(
		"object storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageProviderBootstrapError) Unwrap() error { return e.Cause }

// resolveBucketService returns nil without error when object storage is
// switched off; PDF storage and the stored-PDF routes are then unavailable.
func resolveBucketService(log *logger.Logger, cfg Config) (gcp.BucketService, error) {
	if !cfg.ObjectStorage {
		log.Warn("Object storage disabled; exported PDFs cannot be stored")
		return nil, nil
	}
	storageCfg, err := resolveStorageConfig()
	if err != nil {
		bootErr := &StorageProviderBootstrapError{
			Code:         StorageProviderBootstrapErrorInvalidConfig,
			Mode:         string(storageCfg.Mode),
			EmulatorHost: storageCfg.EmulatorHost,
			Cause:        err,
		}
		log.Error("Object storage provider selection failed", "error_code", bootErr.Code, "error", err)
		return nil, bootErr
	}

	log.Info("Selecting object storage provider", "mode", storageCfg.Mode, "emulator_host", storageCfg.EmulatorHost)
	bucket, err := newBucketServiceWithConfig(log, storageCfg)
	if err != nil {
		bootErr := &StorageProviderBootstrapError{
			Code:         StorageProviderBootstrapErrorConnectFailed,
			Mode:         string(storageCfg.Mode),
			EmulatorHost: storageCfg.EmulatorHost,
			Cause:        err,
		}
		log.Error("Object storage provider bootstrap failed", "error_code", bootErr.Code, "error", err)
		return nil, bootErr
	}
	return bucket, nil
}
