package uploads

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yungbote/studyforge-backend/internal/data/repos"
	"github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

const (
	DefaultMaxBytes = 5 << 20
	defaultFileType = "text/plain"
)

type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

type Service interface {
	// Upload stores the text body of f. The title is the file name without
	// its extension.
	Upload(ctx context.Context, userID uuid.UUID, f File) (*domain.UploadedContent, error)
	List(ctx context.Context, userID uuid.UUID) ([]*domain.UploadedContent, error)
}

type service struct {
	log      *logger.Logger
	repo     repos.UploadedContentRepo
	maxBytes int64
}

func NewService(log *logger.Logger, repo repos.UploadedContentRepo, maxBytes int64) Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &service{log: log.With("service", "UploadService"), repo: repo, maxBytes: maxBytes}
}

// Title strips directories and the last extension from name.
func Title(name string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	if ext := path.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return strings.TrimSpace(base)
}

// FileType is the media type without parameters, defaulting to text/plain.
func FileType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil || mt == "" || mt == "application/octet-stream" {
		return defaultFileType
	}
	return mt
}

func (s *service) Upload(ctx context.Context, userID uuid.UUID, f File) (*domain.UploadedContent, error) {
	title := Title(f.Name)
	if title == "" {
		return nil, fmt.Errorf("%w: file name is required", domain.ErrInvalidArgument)
	}
	if f.Body == nil {
		return nil, fmt.Errorf("%w: file body is required", domain.ErrInvalidArgument)
	}
	body, err := io.ReadAll(io.LimitReader(f.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(body)) > s.maxBytes {
		return nil, fmt.Errorf("%w: file is larger than %d bytes", domain.ErrInvalidArgument, s.maxBytes)
	}
	if !utf8.Valid(body) {
		return nil, fmt.Errorf("%w: only text files are supported", domain.ErrInvalidArgument)
	}

	item := &domain.UploadedContent{
		UserID:   userID,
		Title:    title,
		Content:  string(body),
		FileType: FileType(f.ContentType),
	}
	saved, err := s.repo.Create(ctx, nil, item)
	if err != nil {
		s.log.WithContext(ctx).Error("Saving upload failed", "title", title, "error", err)
		return nil, err
	}
	s.log.WithContext(ctx).Info("Stored upload", "upload_id", saved.ID, "bytes", len(body), "file_type", saved.FileType)
	return saved, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]*domain.UploadedContent, error) {
	return s.repo.ListByUserID(ctx, nil, userID, 0)
}
