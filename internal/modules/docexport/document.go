package docexport

import (
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/studyforge-backend/internal/domain"
)

// Input is what an export needs from a study-material session.
type Input struct {
	Topic       string
	Subtopics   []domain.Subtopic
	Content     map[string]domain.SubtopicContent
	GeneratedAt time.Time
}

type BlockKind string

const (
	BlockHeading BlockKind = "heading"
	BlockCode    BlockKind = "code"
	BlockProse   BlockKind = "prose"
	BlockList    BlockKind = "list"
)

// Block is one printable piece of documentation. Text is set for headings
// and prose; Lines for code and lists.
type Block struct {
	Kind     BlockKind
	Text     string
	Lines    []string
	Language string
}

type VideoLine struct {
	Title   string
	Channel string
}

type Section struct {
	Number   int
	Title    string
	Summary  string
	Blocks   []Block
	Websites []string
	Videos   []VideoLine
}

// Document is the print model of an export. It carries no layout.
type Document struct {
	Topic       string
	GeneratedOn string
	Contents    []string
	Sections    []Section
}

func (d Document) Heading() string { return "Topic: " + d.Topic }

// Build walks the subtopics in order. Every subtopic is listed in the
// contents; only those with content get a section, keeping their list number.
func Build(in Input) Document {
	doc := Document{
		Topic:       strings.TrimSpace(in.Topic),
		GeneratedOn: in.GeneratedAt.Format("1/2/2006"),
		Contents:    make([]string, 0, len(in.Subtopics)),
		Sections:    []Section{},
	}
	for i, sub := range in.Subtopics {
		title := CleanText(sub.Title)
		doc.Contents = append(doc.Contents, numbered(i+1, title))

		content, ok := in.Content[sub.Title]
		if !ok {
			continue
		}
		sec := Section{
			Number:   i + 1,
			Title:    title,
			Summary:  CleanText(sub.Summary),
			Blocks:   buildBlocks(content.Documentation),
			Websites: []string{},
			Videos:   []VideoLine{},
		}
		for _, w := range content.Websites {
			if w = strings.TrimSpace(w); w != "" {
				sec.Websites = append(sec.Websites, w)
			}
		}
		for _, v := range content.Videos {
			sec.Videos = append(sec.Videos, VideoLine{
				Title:   spaceRE.ReplaceAllString(strings.TrimSpace(v.Title), " "),
				Channel: strings.TrimSpace(v.ChannelTitle),
			})
		}
		doc.Sections = append(doc.Sections, sec)
	}
	return doc
}

func numbered(n int, title string) string {
	return strconv.Itoa(n) + ". " + title
}

// buildBlocks classifies each raw section before any cleaning so that
// heading markers and fences are still visible.
func buildBlocks(doc string) []Block {
	out := []Block{}
	for _, raw := range splitSections(doc) {
		trimmed := strings.TrimSpace(raw)
		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, "#"):
			if h := CleanText(headingHashRE.ReplaceAllString(trimmed, "")); h != "" {
				out = append(out, Block{Kind: BlockHeading, Text: h})
			}
		case strings.Contains(trimmed, "```"):
			if b, ok := codeBlock(trimmed); ok {
				out = append(out, b)
			}
		case strings.ContainsAny(trimmed, "•-"):
			lines := []string{}
			for _, line := range strings.Split(trimmed, "\n") {
				marked := leadMarkerRE.MatchString(line)
				clean := CleanText(line)
				if clean == "" {
					continue
				}
				if marked {
					clean = "• " + clean
				}
				lines = append(lines, clean)
			}
			if len(lines) > 0 {
				out = append(out, Block{Kind: BlockList, Lines: lines})
			}
		default:
			if p := CleanText(trimmed); p != "" {
				out = append(out, Block{Kind: BlockProse, Text: p})
			}
		}
	}
	return out
}

// splitSections splits on blank lines but keeps a fenced block whole when
// the code itself contains blank lines.
func splitSections(doc string) []string {
	doc = strings.ReplaceAll(doc, "\r\n", "\n")
	parts := strings.Split(doc, "\n\n")
	out := make([]string, 0, len(parts))
	var open []string
	for _, p := range parts {
		if open != nil {
			open = append(open, p)
			if strings.Count(p, "```")%2 == 1 {
				out = append(out, strings.Join(open, "\n\n"))
				open = nil
			}
			continue
		}
		if strings.Count(p, "```")%2 == 1 {
			open = []string{p}
			continue
		}
		out = append(out, p)
	}
	if open != nil {
		out = append(out, strings.Join(open, "\n\n"))
	}
	return out
}

func codeBlock(section string) (Block, bool) {
	m := fencedBlockRE.FindString(section)
	if m == "" {
		return Block{}, false
	}
	body := strings.TrimSuffix(strings.TrimPrefix(m, "```"), "```")
	lang := ""
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		if first := strings.TrimSpace(body[:nl]); fenceLangRE.MatchString(first) {
			lang = strings.ToLower(first)
			body = body[nl+1:]
		}
	}
	body = strings.Trim(body, "\n")
	if strings.TrimSpace(body) == "" {
		return Block{}, false
	}
	lines := strings.Split(body, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(strings.ReplaceAll(l, "\t", "    "), " \r")
	}
	return Block{Kind: BlockCode, Lines: lines, Language: lang}, true
}
