package courses

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/modules/recommend"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

//go:embed catalog.yaml
var catalogYAML []byte

// AllDifficulties disables the difficulty filter.
const AllDifficulties = "All"

var Difficulties = []string{"Beginner", "Intermediate", "Advanced"}

type Course struct {
	ID          int    `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Difficulty  string `yaml:"difficulty" json:"difficulty"`
	Duration    string `yaml:"duration" json:"duration"`
	Platform    string `yaml:"platform" json:"platform"`
	Image       string `yaml:"image" json:"image"`
	Link        string `yaml:"link" json:"link"`
}

type catalogFile struct {
	Version int      `yaml:"version"`
	Courses []Course `yaml:"courses"`
}

var (
	catalogOnce sync.Once
	catalog     []Course
	catalogErr  error
)

// Catalog returns the embedded course list in file order.
func Catalog() ([]Course, error) {
	catalogOnce.Do(func() {
		catalog, catalogErr = parseCatalog(catalogYAML)
	})
	if catalogErr != nil {
		return nil, catalogErr
	}
	return append([]Course(nil), catalog...), nil
}

func parseCatalog(data []byte) ([]Course, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse course catalog: %w", err)
	}
	for i, c := range f.Courses {
		if strings.TrimSpace(c.Title) == "" || strings.TrimSpace(c.Link) == "" {
			return nil, fmt.Errorf("course catalog entry %d: title and link are required", i)
		}
		if normalizeDifficulty(c.Difficulty) == "" {
			return nil, fmt.Errorf("course catalog entry %d: unknown difficulty %q", i, c.Difficulty)
		}
	}
	return f.Courses, nil
}

func normalizeDifficulty(d string) string {
	d = strings.TrimSpace(d)
	for _, known := range Difficulties {
		if strings.EqualFold(d, known) {
			return known
		}
	}
	return ""
}

type Listing struct {
	Difficulty      string   `json:"difficulty"`
	Courses         []Course `json:"courses"`
	Recommendations []string `json:"recommendations"`
}

type Service interface {
	// List filters the catalog by difficulty ("" or "All" keeps everything)
	// and adds AI recommendations for the user.
	List(ctx context.Context, userID uuid.UUID, difficulty string) (*Listing, error)
}

type service struct {
	log  *logger.Logger
	recs recommend.Recommender
}

func NewService(log *logger.Logger, recs recommend.Recommender) Service {
	return &service{log: log.With("service", "CourseService"), recs: recs}
}

func (s *service) List(ctx context.Context, userID uuid.UUID, difficulty string) (*Listing, error) {
	all, err := Catalog()
	if err != nil {
		return nil, err
	}
	filter := AllDifficulties
	if d := strings.TrimSpace(difficulty); d != "" && !strings.EqualFold(d, AllDifficulties) {
		if filter = normalizeDifficulty(d); filter == "" {
			return nil, fmt.Errorf("%w: difficulty must be one of All, %s", domain.ErrInvalidArgument, strings.Join(Difficulties, ", "))
		}
	}
	out := make([]Course, 0, len(all))
	for _, c := range all {
		if filter == AllDifficulties || c.Difficulty == filter {
			out = append(out, c)
		}
	}
	return &Listing{
		Difficulty:      filter,
		Courses:         out,
		Recommendations: s.recs.ForUser(ctx, userID),
	}, nil
}
