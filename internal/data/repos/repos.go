package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/studyforge-backend/internal/data/repos/chat"
	"github.com/yungbote/studyforge-backend/internal/data/repos/learning"
	"github.com/yungbote/studyforge-backend/internal/data/repos/materials"
	"github.com/yungbote/studyforge-backend/internal/data/repos/user"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type ProfileRepo = user.ProfileRepo
type ChatMessageRepo = chat.ChatMessageRepo
type TestResultRepo = learning.TestResultRepo
type UploadedContentRepo = materials.UploadedContentRepo

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return user.NewProfileRepo(db, baseLog)
}

func NewChatMessageRepo(db *gorm.DB, baseLog *logger.Logger) ChatMessageRepo {
	return chat.NewChatMessageRepo(db, baseLog)
}

func NewTestResultRepo(db *gorm.DB, baseLog *logger.Logger) TestResultRepo {
	return learning.NewTestResultRepo(db, baseLog)
}

func NewUploadedContentRepo(db *gorm.DB, baseLog *logger.Logger) UploadedContentRepo {
	return materials.NewUploadedContentRepo(db, baseLog)
}
