package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/studyforge-backend/internal/data/repos/dberr"
	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type TestResultRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rec *types.TestResultRecord) (*types.TestResultRecord, error)
	// ListByUserID returns the whole history, oldest first.
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.TestResultRecord, error)
	// ListRecentByUserID returns at most limit results, newest first.
	ListRecentByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.TestResultRecord, error)
	CountByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	GetByID(ctx context.Context, tx *gorm.DB, userID, id uuid.UUID) (*types.TestResultRecord, error)
}

type testResultRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTestResultRepo(db *gorm.DB, baseLog *logger.Logger) TestResultRepo {
	return &testResultRepo{db: db, log: baseLog.With("repo", "TestResultRepo")}
}

func (r *testResultRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *testResultRepo) Create(ctx context.Context, tx *gorm.DB, rec *types.TestResultRecord) (*types.TestResultRecord, error) {
	if err := r.tx(tx).WithContext(ctx).Create(rec).Error; err != nil {
		return nil, dberr.MapError("TestResultRepo.Create", err)
	}
	return rec, nil
}

func (r *testResultRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.TestResultRecord, error) {
	var out []*types.TestResultRecord
	if err := r.tx(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, dberr.MapError("TestResultRepo.ListByUserID", err)
	}
	return out, nil
}

func (r *testResultRepo) ListRecentByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.TestResultRecord, error) {
	var out []*types.TestResultRecord
	q := r.tx(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, dberr.MapError("TestResultRepo.ListRecentByUserID", err)
	}
	return out, nil
}

func (r *testResultRepo) CountByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	var n int64
	if err := r.tx(tx).WithContext(ctx).Model(&types.TestResultRecord{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, dberr.MapError("TestResultRepo.CountByUserID", err)
	}
	return n, nil
}

func (r *testResultRepo) GetByID(ctx context.Context, tx *gorm.DB, userID, id uuid.UUID) (*types.TestResultRecord, error) {
	var out types.TestResultRecord
	if err := r.tx(tx).WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&out).Error; err != nil {
		return nil, dberr.MapError("TestResultRepo.GetByID", err)
	}
	return &out, nil
}
