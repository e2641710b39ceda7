package studymaterial

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/yungbote/studyforge-backend/internal/domain"
)

const (
	msgUnparseable = "Could not parse Gemini response."
	msgNoSubtopics = "No subtopics found."
)

// ParseResult is either Ok(Value) or ParseFailed(Raw) with a Reason.
type ParseResult[T any] struct {
	Value  T
	Raw    string
	Reason string
	OK     bool
}

func Ok[T any](v T) ParseResult[T] {
	return ParseResult[T]{Value: v, OK: true}
}

func ParseFailed[T any](raw, reason string) ParseResult[T] {
	return ParseResult[T]{Raw: raw, Reason: reason}
}

var (
	openFenceRE  = regexp.MustCompile("^```[a-zA-Z]*\\n?")
	closeFenceRE = regexp.MustCompile("```$")
)

// StripCodeFences removes one surrounding Markdown fence, if present.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = openFenceRE.ReplaceAllString(s, "")
	s = closeFenceRE.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ParseSubtopics accepts a JSON array of {title, summary} objects or the legacy
// array of plain titles. Entries without a title are dropped.
func ParseSubtopics(raw string) ParseResult[[]domain.Subtopic] {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(StripCodeFences(raw)), &items); err != nil {
		return ParseFailed[[]domain.Subtopic](raw, msgUnparseable)
	}
	out := make([]domain.Subtopic, 0, len(items))
	for _, item := range items {
		var title string
		if err := json.Unmarshal(item, &title); err == nil {
			if t := strings.TrimSpace(title); t != "" {
				out = append(out, domain.Subtopic{Title: t})
			}
			continue
		}
		var obj struct {
			Title   any `json:"title"`
			Summary any `json:"summary"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			continue
		}
		t, _ := obj.Title.(string)
		if strings.TrimSpace(t) == "" {
			continue
		}
		summary, _ := obj.Summary.(string)
		out = append(out, domain.Subtopic{Title: strings.TrimSpace(t), Summary: strings.TrimSpace(summary)})
	}
	if len(out) == 0 {
		return ParseFailed[[]domain.Subtopic](raw, msgNoSubtopics)
	}
	return Ok(out)
}

// ParseWebsites keeps only http(s) URLs from a JSON array.
func ParseWebsites(raw string) ParseResult[[]string] {
	var items []any
	if err := json.Unmarshal([]byte(StripCodeFences(raw)), &items); err != nil {
		return ParseFailed[[]string](raw, msgUnparseable)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		lower := strings.ToLower(s)
		if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
			out = append(out, s)
		}
	}
	return Ok(out)
}

type BlockKind string

const (
	BlockText BlockKind = "text"
	BlockCode BlockKind = "code"
)

type ContentBlock struct {
	Kind     BlockKind `json:"type"`
	Content  string    `json:"content"`
	Language string    `json:"language,omitempty"`
}

var (
	boldRE        = regexp.MustCompile(`\*\*`)
	headingHashRE = regexp.MustCompile(`(?m)^#+\s?`)
	manyNewlineRE = regexp.MustCompile(`\n{3,}`)
	fencedBlockRE = regexp.MustCompile("```([a-zA-Z0-9]*)\\n([\\s\\S]*?)```")
	likelyCodeRE  = regexp.MustCompile(`[;{}=()<>]|function |def |class |#include|import |console\.|System\.|print\(|public |private |let |const |var `)
)

// ParseContentBlocks splits documentation into prose and code blocks for the
// subtopic detail view. Fenced spans that do not look like code stay prose.
func ParseContentBlocks(raw string) []ContentBlock {
	if strings.TrimSpace(raw) == "" {
		return []ContentBlock{}
	}
	cleaned := boldRE.ReplaceAllString(raw, "")
	cleaned = headingHashRE.ReplaceAllString(cleaned, "")
	cleaned = strings.ReplaceAll(cleaned, "\r", "")
	cleaned = manyNewlineRE.ReplaceAllString(cleaned, "\n\n")
	cleaned = strings.TrimSpace(cleaned)

	blocks := []ContentBlock{}
	add := func(b ContentBlock) {
		if b.Content != "" {
			blocks = append(blocks, b)
		}
	}
	last := 0
	for _, m := range fencedBlockRE.FindAllStringSubmatchIndex(cleaned, -1) {
		if m[0] > last {
			add(ContentBlock{Kind: BlockText, Content: strings.TrimSpace(cleaned[last:m[0]])})
		}
		lang := cleaned[m[2]:m[3]]
		code := strings.TrimSpace(cleaned[m[4]:m[5]])
		if likelyCodeRE.MatchString(code) {
			if lang == "" {
				lang = "plaintext"
			}
			add(ContentBlock{Kind: BlockCode, Content: code, Language: lang})
		} else {
			add(ContentBlock{Kind: BlockText, Content: code})
		}
		last = m[1]
	}
	if last < len(cleaned) {
		add(ContentBlock{Kind: BlockText, Content: strings.TrimSpace(cleaned[last:])})
	}
	return blocks
}
