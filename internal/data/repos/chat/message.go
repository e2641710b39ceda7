package chat

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/studyforge-backend/internal/data/repos/dberr"
	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type ChatMessageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, msg *types.ChatMessage) (*types.ChatMessage, error)
	// ListRecentByUserID returns at most limit messages, newest first.
	ListRecentByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.ChatMessage, error)
	CountByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	DeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
}

type chatMessageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatMessageRepo(db *gorm.DB, baseLog *logger.Logger) ChatMessageRepo {
	return &chatMessageRepo{db: db, log: baseLog.With("repo", "ChatMessageRepo")}
}

func (r *chatMessageRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *chatMessageRepo) Create(ctx context.Context, tx *gorm.DB, msg *types.ChatMessage) (*types.ChatMessage, error) {
	if err := r.tx(tx).WithContext(ctx).Create(msg).Error; err != nil {
		return nil, dberr.MapError("ChatMessageRepo.Create", err)
	}
	return msg, nil
}

func (r *chatMessageRepo) ListRecentByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.ChatMessage, error) {
	var out []*types.ChatMessage
	q := r.tx(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, dberr.MapError("ChatMessageRepo.ListRecentByUserID", err)
	}
	return out, nil
}

func (r *chatMessageRepo) CountByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	var n int64
	if err := r.tx(tx).WithContext(ctx).Model(&types.ChatMessage{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, dberr.MapError("ChatMessageRepo.CountByUserID", err)
	}
	return n, nil
}

func (r *chatMessageRepo) DeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	res := r.tx(tx).WithContext(ctx).Where("user_id = ?", userID).Delete(&types.ChatMessage{})
	if res.Error != nil {
		return 0, dberr.MapError("ChatMessageRepo.DeleteByUserID", res.Error)
	}
	r.log.Debug("Chat history cleared", "user_id", userID, "deleted", res.RowsAffected)
	return res.RowsAffected, nil
}
