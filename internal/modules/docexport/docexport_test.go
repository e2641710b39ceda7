package docexport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/platform/gcp"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type fixedMeasurer struct{}

func (fixedMeasurer) StringWidth(f Font, s string) float64 {
	return float64(len([]rune(s))) * f.Size * 0.2
}

func TestCleanText(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"**Closures**", "Closures"},
		{"### Key Concepts", "Key Concepts"},
		{"- item one", "item one"},
		{"3. Third step", "Third step"},
		{"Wait...   what", "Wait. what"},
		{"ØStrayÜ chars³", "Stray chars"},
		{"◦ nested", "• nested"},
		{"  spaced \n\t out  ", "spaced out"},
	}
	for _, c := range cases {
		if got := CleanText(c.in); got != c.want {
			t.Fatalf("CleanText(%q): want=%q got=%q", c.in, c.want, got)
		}
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("C++ & Go: basics"); got != "C_____Go__basics_study_material.pdf" {
		t.Fatalf("FileName: got=%q", got)
	}
	if got := FileName("React"); got != "React_study_material.pdf" {
		t.Fatalf("FileName: got=%q", got)
	}
}

func TestHighlightFirstMatchWins(t *testing.T) {
	cases := []struct {
		line string
		want Color
	}{
		{`def greet(name):`, colorKeyword},
		{`function add(a, b) {`, colorKeyword},
		{`if x > 0 && s == "a":`, colorControl},
		{`print("hello")`, colorString},
		{`# comment`, colorComment},
		{`// comment`, colorComment},
		{`return true;`, colorKeyword},
		{`x = 1`, colorCodePlain},
	}
	for _, c := range cases {
		if got := Highlight(c.line); got != c.want {
			t.Fatalf("Highlight(%q): want=%v got=%v", c.line, c.want, got)
		}
	}
}

func sampleInput() Input {
	subs := []domain.Subtopic{
		{Title: "1. **State**", Summary: "Data that changes... over time"},
		{Title: "Props", Summary: "Inputs to components"},
		{Title: "Hooks", Summary: "Functions for state and effects"},
		{Title: "Context", Summary: "Shared values"},
	}
	content := map[string]domain.SubtopicContent{
		"1. **State**": {
			Documentation: "## Intro\n\nSome **bold** text...\n\n- one\n- two\n\n```python\ndef f():\n\n    return 1\n```",
			Websites:      []string{"https://react.dev/learn"},
			Videos:        []domain.VideoRef{{ID: "v1", Title: "State  in React", ChannelTitle: "Dev Channel"}},
		},
		"Hooks": {Documentation: "Hooks let function components use state.", Websites: []string{}, Videos: []domain.VideoRef{}},
	}
	return Input{Topic: "React", Subtopics: subs, Content: content, GeneratedAt: time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)}
}

func TestBuildContentsAndSections(t *testing.T) {
	doc := Build(sampleInput())
	wantContents := []string{"1. State", "2. Props", "3. Hooks", "4. Context"}
	if !reflect.DeepEqual(doc.Contents, wantContents) {
		t.Fatalf("contents: want=%v got=%v", wantContents, doc.Contents)
	}
	if len(doc.Sections) != 2 {
		t.Fatalf("sections: want=2 got=%d", len(doc.Sections))
	}
	if doc.Sections[0].Number != 1 || doc.Sections[1].Number != 3 {
		t.Fatalf("section numbers: got=%d,%d", doc.Sections[0].Number, doc.Sections[1].Number)
	}
	if doc.Sections[0].Summary != "Data that changes. over time" {
		t.Fatalf("summary: got=%q", doc.Sections[0].Summary)
	}
	if doc.GeneratedOn != "3/4/2026" {
		t.Fatalf("generated on: got=%q", doc.GeneratedOn)
	}
	v := doc.Sections[0].Videos[0]
	if v.Title != "State in React" || v.Channel != "Dev Channel" {
		t.Fatalf("video line: got=%+v", v)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	in := sampleInput()
	a, b := Build(in), Build(in)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("two builds differ")
	}
	pa, pb := Layout(a, fixedMeasurer{}), Layout(b, fixedMeasurer{})
	if !reflect.DeepEqual(pa, pb) {
		t.Fatalf("two layouts differ")
	}
}

func TestBuildClassifiesBlocks(t *testing.T) {
	doc := Build(sampleInput())
	blocks := doc.Sections[0].Blocks
	if len(blocks) != 4 {
		t.Fatalf("blocks: want=4 got=%d (%+v)", len(blocks), blocks)
	}
	if blocks[0].Kind != BlockHeading || blocks[0].Text != "Intro" {
		t.Fatalf("heading: got=%+v", blocks[0])
	}
	if blocks[1].Kind != BlockProse || blocks[1].Text != "Some bold text." {
		t.Fatalf("prose: got=%+v", blocks[1])
	}
	if blocks[2].Kind != BlockList || !reflect.DeepEqual(blocks[2].Lines, []string{"• one", "• two"}) {
		t.Fatalf("list: got=%+v", blocks[2])
	}
	code := blocks[3]
	if code.Kind != BlockCode || code.Language != "python" {
		t.Fatalf("code: got=%+v", code)
	}
	if want := []string{"def f():", "", "    return 1"}; !reflect.DeepEqual(code.Lines, want) {
		t.Fatalf("code lines: want=%q got=%q", want, code.Lines)
	}
}

func TestTOCTitleHasSectionIffResolved(t *testing.T) {
	in := sampleInput()
	doc := Build(in)
	withSection := map[int]bool{}
	for _, s := range doc.Sections {
		withSection[s.Number] = true
	}
	for i, sub := range in.Subtopics {
		_, resolved := in.Content[sub.Title]
		if withSection[i+1] != resolved {
			t.Fatalf("subtopic %d: resolved=%v section=%v", i+1, resolved, withSection[i+1])
		}
	}
}

func longInput() Input {
	para := strings.Repeat("Components describe what the screen should show for a given state. ", 12)
	code := "```js\n" + strings.Repeat("const value = compute(input) // step\n", 90) + "```"
	subs := []domain.Subtopic{}
	content := map[string]domain.SubtopicContent{}
	for i := 0; i < 6; i++ {
		title := "Part " + string(rune('A'+i))
		subs = append(subs, domain.Subtopic{Title: title, Summary: "Summary of " + title})
		doc := strings.Repeat(para+"\n\n", 4) + code
		content[title] = domain.SubtopicContent{
			Documentation: doc,
			Websites:      []string{"https://example.com/" + strings.Repeat("very-long-path-segment/", 10)},
			Videos:        []domain.VideoRef{{Title: "Video " + title, ChannelTitle: "Chan"}},
		}
	}
	return Input{Topic: "JavaScript", Subtopics: subs, Content: content, GeneratedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)}
}

func TestLayoutPaginatesWithinBounds(t *testing.T) {
	pages := Layout(Build(longInput()), fixedMeasurer{})
	if len(pages) < 3 {
		t.Fatalf("pages: want>=3 got=%d", len(pages))
	}
	if first := pages[0].Ops[0]; first.Kind != OpBanner || first.H != bannerHeight {
		t.Fatalf("first op: want banner got=%+v", first)
	}
	titles := []string{}
	for pi, p := range pages {
		for _, op := range p.Ops {
			switch op.Kind {
			case OpText:
				if op.Y > blockBottom || op.Y < 0 {
					t.Fatalf("page %d: text %q at y=%.1f outside page body", pi, op.Text, op.Y)
				}
				if (fixedMeasurer{}).StringWidth(op.Font, op.Text) > PageWidth-op.X {
					t.Fatalf("page %d: text %q overflows", pi, op.Text)
				}
				if op.Font == fontSection {
					titles = append(titles, op.Text)
				}
			case OpRect:
				if op.Fill == colorCodeBG && op.Y+op.H > blockBottom+0.001 {
					t.Fatalf("page %d: code panel ends at %.1f", pi, op.Y+op.H)
				}
			}
		}
	}
	want := []string{"1. Part A", "2. Part B", "3. Part C", "4. Part D", "5. Part E", "6. Part F"}
	if !reflect.DeepEqual(titles, want) {
		t.Fatalf("section order: want=%v got=%v", want, titles)
	}
}

func TestRenderProducesPDF(t *testing.T) {
	in := sampleInput()
	data, err := Render(Build(in), in.GeneratedAt)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("Render: output is not a pdf")
	}
}

type fakeBucket struct {
	keys []string
	err  error
}

func (f *fakeBucket) UploadFile(ctx context.Context, category gcp.BucketCategory, key string, file io.Reader) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, string(category)+":"+key)
	return nil
}

func (f *fakeBucket) DownloadFile(ctx context.Context, category gcp.BucketCategory, key string) (io.ReadCloser, error) {
	return nil, gcp.ErrObjectNotFound
}

func (f *fakeBucket) DeleteFile(ctx context.Context, category gcp.BucketCategory, key string) error {
	return nil
}

func (f *fakeBucket) ListObjects(ctx context.Context, category gcp.BucketCategory, prefix string) ([]gcp.ObjectAttrs, error) {
	return nil, nil
}

func TestExportStoresUnderUserFolder(t *testing.T) {
	bucket := &fakeBucket{}
	svc := NewService(logger.Nop(), bucket)
	user := uuid.New()

	out, err := svc.Export(context.Background(), user, sampleInput(), true)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	wantKey := user.String() + "/React_study_material.pdf"
	if !out.Stored || out.Key != wantKey {
		t.Fatalf("stored key: want=%s got=%s (stored=%v)", wantKey, out.Key, out.Stored)
	}
	if len(bucket.keys) != 1 || bucket.keys[0] != "pdf:"+wantKey {
		t.Fatalf("bucket uploads: got=%v", bucket.keys)
	}
}

func TestExportUploadFailureIsStorageError(t *testing.T) {
	svc := NewService(logger.Nop(), &fakeBucket{err: errors.New("unavailable")})
	_, err := svc.Export(context.Background(), uuid.New(), sampleInput(), true)
	var se *domain.StorageError
	if !errors.As(err, &se) {
		t.Fatalf("Export: want StorageError got=%v", err)
	}
}

func TestExportWithoutSubtopics(t *testing.T) {
	svc := NewService(logger.Nop(), nil)
	_, err := svc.Export(context.Background(), uuid.New(), Input{Topic: "React"}, false)
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("Export: want ErrInvalidState got=%v", err)
	}
}
