package pdfs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/platform/gcp"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

const listLimit = 100

type Service interface {
	// List returns the user's stored PDFs, newest first.
	List(ctx context.Context, userID uuid.UUID) ([]gcp.ObjectAttrs, error)
	Download(ctx context.Context, userID uuid.UUID, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, userID uuid.UUID, name string) error
}

// Each operation looks under "<userID>/" first and retries once at the
// bucket root, where older exports were written.
type service struct {
	log     *logger.Logger
	buckets gcp.BucketService
}

func NewService(log *logger.Logger, buckets gcp.BucketService) Service {
	return &service{log: log.With("service", "StoredPDFService"), buckets: buckets}
}

func userPrefix(userID uuid.UUID) string {
	return userID.String() + "/"
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]gcp.ObjectAttrs, error) {
	log := s.log.WithContext(ctx)
	objs, err := s.buckets.ListObjects(ctx, gcp.BucketCategoryPDF, userPrefix(userID))
	if err != nil {
		log.Warn("Listing user PDFs failed; retrying at bucket root", "error", err)
		objs, err = s.buckets.ListObjects(ctx, gcp.BucketCategoryPDF, "")
		if err != nil {
			return nil, storageError("ListPDFs", err)
		}
	}
	gcp.SortNewestFirst(objs)
	if len(objs) > listLimit {
		objs = objs[:listLimit]
	}
	return objs, nil
}

func (s *service) Download(ctx context.Context, userID uuid.UUID, name string) (io.ReadCloser, error) {
	if !gcp.SafeObjectName(name) {
		return nil, fmt.Errorf("%w: invalid file name", domain.ErrInvalidArgument)
	}
	rc, err := s.buckets.DownloadFile(ctx, gcp.BucketCategoryPDF, userPrefix(userID)+name)
	if err == nil {
		return rc, nil
	}
	s.log.WithContext(ctx).Warn("Downloading user PDF failed; retrying at bucket root", "name", name, "error", err)
	rc, err = s.buckets.DownloadFile(ctx, gcp.BucketCategoryPDF, name)
	if err != nil {
		return nil, storageError("DownloadPDF", err)
	}
	return rc, nil
}

func (s *service) Delete(ctx context.Context, userID uuid.UUID, name string) error {
	if !gcp.SafeObjectName(name) {
		return fmt.Errorf("%w: invalid file name", domain.ErrInvalidArgument)
	}
	log := s.log.WithContext(ctx)
	err := s.buckets.DeleteFile(ctx, gcp.BucketCategoryPDF, userPrefix(userID)+name)
	if err != nil {
		log.Warn("Deleting user PDF failed; retrying at bucket root", "name", name, "error", err)
		if err = s.buckets.DeleteFile(ctx, gcp.BucketCategoryPDF, name); err != nil {
			return storageError("DeletePDF", err)
		}
	}
	log.Info("Deleted stored PDF", "name", name)
	return nil
}

func storageError(op string, err error) error {
	code := domain.StorageRetryable
	if errors.Is(err, gcp.ErrObjectNotFound) {
		code = domain.StorageNotFound
	}
	return &domain.StorageError{Code: code, Op: op, Cause: err}
}
