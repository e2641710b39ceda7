package materials

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UploadedContent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string    `gorm:"column:title;not null" json:"title"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	FileType  string    `gorm:"column:file_type;not null" json:"file_type"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (UploadedContent) TableName() string { return "uploaded_content" }

func (u *UploadedContent) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
