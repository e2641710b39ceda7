package app

import (
	"errors"
	"testing"

	"github.com/yungbote/studyforge-backend/internal/platform/gcp"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type stubBucket struct{ gcp.BucketService }

func stubStorage(t *testing.T, resolve func() (gcp.ObjectStorageConfig, error), build func(*logger.Logger, gcp.ObjectStorageConfig) (gcp.BucketService, error)) {
	t.Helper()
	prevResolve, prevBuild := resolveStorageConfig, newBucketServiceWithConfig
	resolveStorageConfig, newBucketServiceWithConfig = resolve, build
	t.Cleanup(func() { resolveStorageConfig, newBucketServiceWithConfig = prevResolve, prevBuild })
}

func TestResolveBucketServiceDisabled(t *testing.T) {
	stubStorage(t,
		func() (gcp.ObjectStorageConfig, error) { t.Fatal("config should not be read"); return gcp.ObjectStorageConfig{}, nil },
		nil,
	)
	bucket, err := resolveBucketService(logger.Nop(), Config{ObjectStorage: false})
	if err != nil || bucket != nil {
		t.Fatalf("disabled: want=nil,nil got=%v,%v", bucket, err)
	}
}

func TestResolveBucketServiceInvalidConfig(t *testing.T) {
	cause := errors.New("invalid OBJECT_STORAGE_MODE")
	stubStorage(t,
		func() (gcp.ObjectStorageConfig, error) { return gcp.ObjectStorageConfig{Mode: "bad-mode"}, cause },
		nil,
	)
	_, err := resolveBucketService(logger.Nop(), Config{ObjectStorage: true})
	var got *StorageProviderBootstrapError
	if !errors.As(err, &got) {
		t.Fatalf("expected StorageProviderBootstrapError, got=%T", err)
	}
	if got.Code != StorageProviderBootstrapErrorInvalidConfig || got.Mode != "bad-mode" || !errors.Is(err, cause) {
		t.Fatalf("error: got=%+v", got)
	}
}

func TestResolveBucketServiceConnectFailed(t *testing.T) {
	stubStorage(t,
		func() (gcp.ObjectStorageConfig, error) {
			return gcp.ObjectStorageConfig{Mode: gcp.ObjectStorageModeGCSEmulator, EmulatorHost: "http://fake-gcs:4443"}, nil
		},
		func(*logger.Logger, gcp.ObjectStorageConfig) (gcp.BucketService, error) { return nil, errors.New("dial tcp") },
	)
	_, err := resolveBucketService(logger.Nop(), Config{ObjectStorage: true})
	var got *StorageProviderBootstrapError
	if !errors.As(err, &got) || got.Code != StorageProviderBootstrapErrorConnectFailed {
		t.Fatalf("code: want=%q got=%v", StorageProviderBootstrapErrorConnectFailed, err)
	}
	if got.EmulatorHost != "http://fake-gcs:4443" {
		t.Fatalf("emulator host: got=%q", got.EmulatorHost)
	}
}

func TestResolveBucketServiceSuccess(t *testing.T) {
	want := stubBucket{}
	stubStorage(t,
		func() (gcp.ObjectStorageConfig, error) { return gcp.ObjectStorageConfig{Mode: gcp.ObjectStorageModeGCS}, nil },
		func(*logger.Logger, gcp.ObjectStorageConfig) (gcp.BucketService, error) { return want, nil },
	)
	bucket, err := resolveBucketService(logger.Nop(), Config{ObjectStorage: true})
	if err != nil || bucket != want {
		t.Fatalf("bucket: want=%v got=%v err=%v", want, bucket, err)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" https://a.dev, ,https://b.dev ")
	if len(got) != 2 || got[0] != "https://a.dev" || got[1] != "https://b.dev" {
		t.Fatalf("splitList: got=%v", got)
	}
	if splitList("") != nil {
		t.Fatalf("empty list should be nil")
	}
}
