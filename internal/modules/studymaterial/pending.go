package studymaterial

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/platform/kvstore"
)

// PendingAction asks the study-material flow to generate Topic once.
type PendingAction struct {
	Topic  string `json:"topic"`
	Reason string `json:"reason"`
}

type PendingStore struct {
	kv  kvstore.Store
	ttl time.Duration
}

func NewPendingStore(kv kvstore.Store, ttl time.Duration) *PendingStore {
	return &PendingStore{kv: kv, ttl: ttl}
}

// SetPending replaces any pending action of the user.
func (p *PendingStore) SetPending(ctx context.Context, userID uuid.UUID, action PendingAction) error {
	action.Topic = strings.TrimSpace(action.Topic)
	if action.Topic == "" {
		return fmt.Errorf("%w: pending action needs a topic", domain.ErrInvalidArgument)
	}
	raw, err := json.Marshal(action)
	if err != nil {
		return err
	}
	return p.kv.Set(ctx, sessionKey(userID, fieldPending), string(raw), p.ttl)
}

// ConsumePending returns and removes the pending action. A nil action means none was queued.
func (p *PendingStore) ConsumePending(ctx context.Context, userID uuid.UUID) (*PendingAction, error) {
	raw, err := p.kv.GetDel(ctx, sessionKey(userID, fieldPending))
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("consume pending action: %w", err)
	}
	var action PendingAction
	if err := json.Unmarshal([]byte(raw), &action); err != nil {
		return nil, fmt.Errorf("decode pending action: %w", err)
	}
	return &action, nil
}
