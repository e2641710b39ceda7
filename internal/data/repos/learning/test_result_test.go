package learning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/studyforge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/studyforge-backend/internal/domain"
)

func TestTestResultRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewTestResultRepo(db, testutil.Logger(t))
	ctx := context.Background()
	userID := uuid.New()
	base := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i, topic := range []string{"React", "Python", "Algorithms"} {
		rec, err := repo.Create(ctx, tx, &types.TestResultRecord{
			UserID:          userID,
			TestTitle:       "Custom Test: " + topic,
			Topic:           topic,
			Difficulty:      "medium",
			TotalQuestions:  10,
			Score:           5 + i,
			Percentage:      50 + 10*i,
			TimeTaken:       300,
			TimeLimit:       1800,
			Suggestions:     datatypes.JSON([]byte(`["Practice more questions"]`)),
			DetailedResults: datatypes.JSON([]byte(`[]`)),
			CreatedAt:       base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("Create(%s): %v", topic, err)
		}
		ids = append(ids, rec.ID)
	}

	all, err := repo.ListByUserID(ctx, tx, userID)
	if err != nil {
		t.Fatalf("ListByUserID: %v", err)
	}
	if len(all) != 3 || all[0].Topic != "React" || all[2].Topic != "Algorithms" {
		t.Fatalf("ListByUserID: want ascending order, got %+v", all)
	}

	recent, err := repo.ListRecentByUserID(ctx, tx, userID, 2)
	if err != nil {
		t.Fatalf("ListRecentByUserID: %v", err)
	}
	if len(recent) != 2 || recent[0].Topic != "Algorithms" {
		t.Fatalf("ListRecentByUserID: want newest first, got %+v", recent)
	}

	n, err := repo.CountByUserID(ctx, tx, userID)
	if err != nil || n != 3 {
		t.Fatalf("CountByUserID: want=3 got=%d err=%v", n, err)
	}

	got, err := repo.GetByID(ctx, tx, userID, ids[1])
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Topic != "Python" || got.Percentage != 60 {
		t.Fatalf("GetByID: unexpected %+v", got)
	}

	if _, err := repo.GetByID(ctx, tx, uuid.New(), ids[1]); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("GetByID (other user): want ErrNotFound got=%v", err)
	}
}
