package domain

import (
	"github.com/yungbote/studyforge-backend/internal/domain/chat"
	"github.com/yungbote/studyforge-backend/internal/domain/learning"
	"github.com/yungbote/studyforge-backend/internal/domain/materials"
	"github.com/yungbote/studyforge-backend/internal/domain/user"
)

type (
	Profile          = user.Profile
	ChatMessage      = chat.ChatMessage
	UploadedContent  = materials.UploadedContent
	TestResultRecord = learning.TestResultRecord
	TestResult       = learning.TestResult
	TestQuestion     = learning.TestQuestion
	DetailedResult   = learning.DetailedResult
	Subtopic         = learning.Subtopic
	SubtopicContent  = learning.SubtopicContent
	VideoRef         = learning.VideoRef
)

// Models lists every table owned by the service, in migration order.
func Models() []any {
	return []any{
		&user.Profile{},
		&chat.ChatMessage{},
		&learning.TestResultRecord{},
		&materials.UploadedContent{},
	}
}
