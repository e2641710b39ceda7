package docexport

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/platform/gcp"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type Export struct {
	FileName string
	Data     []byte
	Stored   bool
	Key      string
}

type Service interface {
	// Export renders in. With store set the PDF is also uploaded under the
	// user's folder of the pdf bucket; an upload failure is returned.
	Export(ctx context.Context, userID uuid.UUID, in Input, store bool) (*Export, error)
}

type service struct {
	log     *logger.Logger
	buckets gcp.BucketService
	now     func() time.Time
}

// NewService builds the exporter. buckets may be nil when object storage is
// not configured; storing is then rejected.
func NewService(log *logger.Logger, buckets gcp.BucketService) Service {
	return &service{log: log.With("service", "DocExportService"), buckets: buckets, now: time.Now}
}

func (s *service) Export(ctx context.Context, userID uuid.UUID, in Input, store bool) (*Export, error) {
	if len(in.Subtopics) == 0 {
		return nil, fmt.Errorf("%w: nothing to export", domain.ErrInvalidState)
	}
	if in.GeneratedAt.IsZero() {
		in.GeneratedAt = s.now()
	}
	doc := Build(in)
	data, err := Render(doc, in.GeneratedAt)
	if err != nil {
		return nil, err
	}
	out := &Export{FileName: FileName(in.Topic), Data: data}
	if !store {
		return out, nil
	}
	if s.buckets == nil {
		return nil, fmt.Errorf("%w: object storage is not configured", domain.ErrInvalidState)
	}
	key := userID.String() + "/" + out.FileName
	if err := s.buckets.UploadFile(ctx, gcp.BucketCategoryPDF, key, bytes.NewReader(data)); err != nil {
		s.log.WithContext(ctx).Error("Storing exported pdf failed", "key", key, "error", err)
		return nil, &domain.StorageError{Code: domain.StorageRetryable, Op: "ExportPDF", Cause: err}
	}
	out.Stored, out.Key = true, key
	s.log.WithContext(ctx).Info("Stored exported pdf", "key", key, "bytes", len(data))
	return out, nil
}
