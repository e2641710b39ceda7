package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/studyforge-backend/internal/data/repos"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type Repos struct {
	Profile     repos.ProfileRepo
	ChatMessage repos.ChatMessageRepo
	TestResult  repos.TestResultRepo
	Upload      repos.UploadedContentRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Profile:     repos.NewProfileRepo(db, log),
		ChatMessage: repos.NewChatMessageRepo(db, log),
		TestResult:  repos.NewTestResultRepo(db, log),
		Upload:      repos.NewUploadedContentRepo(db, log),
	}
}
