package pdfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/platform/gcp"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type memBucket struct {
	mu      sync.Mutex
	objects map[string]gcp.ObjectAttrs
	data    map[string][]byte
	listErr map[string]error
}

func newMemBucket() *memBucket {
	return &memBucket{objects: map[string]gcp.ObjectAttrs{}, data: map[string][]byte{}, listErr: map[string]error{}}
}

func (b *memBucket) put(key string, updated time.Time, body string) {
	b.objects[key] = gcp.ObjectAttrs{Name: key, Size: int64(len(body)), ContentType: "application/pdf", Updated: updated}
	b.data[key] = []byte(body)
}

func (b *memBucket) UploadFile(ctx context.Context, category gcp.BucketCategory, key string, file io.Reader) error {
	body, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.put(key, time.Now(), string(body))
	return nil
}

func (b *memBucket) DownloadFile(ctx context.Context, category gcp.BucketCategory, key string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	body, ok := b.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", gcp.ErrObjectNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

func (b *memBucket) DeleteFile(ctx context.Context, category gcp.BucketCategory, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.data[key]; !ok {
		return fmt.Errorf("%w: %s", gcp.ErrObjectNotFound, key)
	}
	delete(b.data, key)
	delete(b.objects, key)
	return nil
}

func (b *memBucket) ListObjects(ctx context.Context, category gcp.BucketCategory, prefix string) ([]gcp.ObjectAttrs, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.listErr[prefix]; err != nil {
		return nil, err
	}
	out := []gcp.ObjectAttrs{}
	for key, attrs := range b.objects {
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok || strings.Contains(rest, "/") {
			continue
		}
		attrs.Name = rest
		out = append(out, attrs)
	}
	return out, nil
}

var t0 = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func TestListNewestFirstAndCapped(t *testing.T) {
	bucket := newMemBucket()
	user := uuid.New()
	for i := 0; i < 105; i++ {
		bucket.put(fmt.Sprintf("%s/topic_%03d_study_material.pdf", user, i), t0.Add(time.Duration(i)*time.Minute), "%PDF")
	}
	bucket.put(uuid.New().String()+"/other_study_material.pdf", t0.Add(time.Hour*10), "%PDF")

	svc := NewService(logger.Nop(), bucket)
	got, err := svc.List(context.Background(), user)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != listLimit {
		t.Fatalf("count: want=%d got=%d", listLimit, len(got))
	}
	if got[0].Name != "topic_104_study_material.pdf" || got[99].Name != "topic_005_study_material.pdf" {
		t.Fatalf("order: first=%s last=%s", got[0].Name, got[99].Name)
	}
}

func TestListFallsBackToRoot(t *testing.T) {
	bucket := newMemBucket()
	user := uuid.New()
	bucket.put("legacy_study_material.pdf", t0, "%PDF")
	bucket.listErr[user.String()+"/"] = errors.New("permission denied")

	got, err := NewService(logger.Nop(), bucket).List(context.Background(), user)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].Name != "legacy_study_material.pdf" {
		t.Fatalf("fallback list: got=%v", got)
	}

	bucket.listErr[""] = errors.New("permission denied")
	_, err = NewService(logger.Nop(), bucket).List(context.Background(), user)
	var se *domain.StorageError
	if !errors.As(err, &se) || se.Code != domain.StorageRetryable {
		t.Fatalf("List: want retryable StorageError got=%v", err)
	}
}

func TestDownloadAndDelete(t *testing.T) {
	bucket := newMemBucket()
	user := uuid.New()
	bucket.put(user.String()+"/Go_study_material.pdf", t0, "%PDF-user")
	bucket.put("Old_study_material.pdf", t0, "%PDF-root")
	svc := NewService(logger.Nop(), bucket)
	ctx := context.Background()

	for name, want := range map[string]string{"Go_study_material.pdf": "%PDF-user", "Old_study_material.pdf": "%PDF-root"} {
		rc, err := svc.Download(ctx, user, name)
		if err != nil {
			t.Fatalf("Download(%s): %v", name, err)
		}
		body, _ := io.ReadAll(rc)
		_ = rc.Close()
		if string(body) != want {
			t.Fatalf("Download(%s): want=%s got=%s", name, want, body)
		}
	}

	if err := svc.Delete(ctx, user, "Go_study_material.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Download(ctx, user, "Go_study_material.pdf"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Download after delete: want ErrNotFound got=%v", err)
	}
	if err := svc.Delete(ctx, user, "missing.pdf"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Delete missing: want ErrNotFound got=%v", err)
	}
}

func TestRejectsUnsafeNames(t *testing.T) {
	svc := NewService(logger.Nop(), newMemBucket())
	for _, name := range []string{"", "../secret.pdf", "a/b.pdf", ".."} {
		if _, err := svc.Download(context.Background(), uuid.New(), name); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("Download(%q): want ErrInvalidArgument got=%v", name, err)
		}
		if err := svc.Delete(context.Background(), uuid.New(), name); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("Delete(%q): want ErrInvalidArgument got=%v", name, err)
		}
	}
}
