package materials

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/studyforge-backend/internal/data/repos/dberr"
	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type UploadedContentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, item *types.UploadedContent) (*types.UploadedContent, error)
	// ListByUserID returns at most limit uploads, newest first. limit <= 0 means all.
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.UploadedContent, error)
	CountByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
}

type uploadedContentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUploadedContentRepo(db *gorm.DB, baseLog *logger.Logger) UploadedContentRepo {
	return &uploadedContentRepo{db: db, log: baseLog.With("repo", "UploadedContentRepo")}
}

func (r *uploadedContentRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *uploadedContentRepo) Create(ctx context.Context, tx *gorm.DB, item *types.UploadedContent) (*types.UploadedContent, error) {
	if err := r.tx(tx).WithContext(ctx).Create(item).Error; err != nil {
		return nil, dberr.MapError("UploadedContentRepo.Create", err)
	}
	return item, nil
}

func (r *uploadedContentRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.UploadedContent, error) {
	var out []*types.UploadedContent
	q := r.tx(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, dberr.MapError("UploadedContentRepo.ListByUserID", err)
	}
	return out, nil
}

func (r *uploadedContentRepo) CountByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	var n int64
	if err := r.tx(tx).WithContext(ctx).Model(&types.UploadedContent{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, dberr.MapError("UploadedContentRepo.CountByUserID", err)
	}
	return n, nil
}
