package docexport

import (
	"math"
	"strings"
)

// Page geometry in millimetres (A4 portrait).
const (
	PageWidth    = 210.0
	PageHeight   = 297.0
	Margin       = 20.0
	ContentWidth = PageWidth - 2*Margin

	bannerHeight   = 60.0
	sectionBreakAt = PageHeight - 60
	blockBottom    = PageHeight - 20

	proseLineHeight   = 7.0
	summaryLineHeight = 6.0
	codeLineHeight    = 4.5
	codePadding       = 4.0
	listLineHeight    = 7.0
)

type Font struct {
	Family string
	Style  string
	Size   float64
}

var (
	fontTOCHeading = Font{"helvetica", "B", 18}
	fontTOCItem    = Font{"helvetica", "", 12}
	fontDate       = Font{"helvetica", "", 12}
	fontSection    = Font{"helvetica", "B", 16}
	fontSummary    = Font{"helvetica", "I", 11}
	fontHeading    = Font{"helvetica", "B", 14}
	fontProse      = Font{"helvetica", "", 11}
	fontCode       = Font{"courier", "", 9}
	fontLinkHead   = Font{"helvetica", "B", 13}
	fontLink       = Font{"helvetica", "", 10}
)

// Measurer reports the printed width of s in millimetres.
type Measurer interface {
	StringWidth(f Font, s string) float64
}

type OpKind int

const (
	OpText OpKind = iota
	OpRect
	OpBanner
)

// Op is one positioned drawing instruction. For OpText, Y is the baseline.
// Rects are filled with Fill and, when Stroke is set, outlined with Edge.
type Op struct {
	Kind   OpKind
	X, Y   float64
	W, H   float64
	Text   string
	Font   Font
	Color  Color
	Fill   Color
	Edge   Color
	Stroke bool
	Lines  []string
}

type Page struct {
	Ops []Op
}

type layouter struct {
	m     Measurer
	pages []Page
	y     float64
}

// Layout paginates doc. It depends only on m, so the result can be checked
// without a PDF backend.
func Layout(doc Document, m Measurer) []Page {
	l := &layouter{m: m, pages: []Page{{}}, y: Margin}
	l.cover(doc)
	for _, sec := range doc.Sections {
		l.section(sec)
	}
	return l.pages
}

func (l *layouter) add(op Op) {
	p := &l.pages[len(l.pages)-1]
	p.Ops = append(p.Ops, op)
}

func (l *layouter) newPage() {
	l.pages = append(l.pages, Page{})
	l.y = Margin
}

func (l *layouter) breakIfBelow(limit float64) {
	if l.y > limit {
		l.newPage()
	}
}

func (l *layouter) text(x float64, s string, f Font, c Color) {
	l.add(Op{Kind: OpText, X: x, Y: l.y, Text: s, Font: f, Color: c})
}

func (l *layouter) centered(y float64, s string, f Font, c Color) {
	x := (PageWidth - l.m.StringWidth(f, s)) / 2
	l.add(Op{Kind: OpText, X: x, Y: y, Text: s, Font: f, Color: c})
}

func (l *layouter) cover(doc Document) {
	l.add(Op{Kind: OpBanner, X: 0, Y: 0, W: PageWidth, H: bannerHeight, Fill: colorBlue, Lines: []string{"Study Material", doc.Heading()}})
	l.y = 80
	l.centered(l.y, "Generated on: "+doc.GeneratedOn, fontDate, colorBlack)
	l.y += 30

	l.add(Op{Kind: OpRect, X: Margin - 5, Y: l.y - 5, W: ContentWidth + 10, H: 20, Fill: colorPanel})
	l.text(Margin, "Table of Contents", fontTOCHeading, colorBlue)
	l.y += 15
	for _, item := range doc.Contents {
		for _, line := range l.wrap(item, fontTOCItem, ContentWidth-5) {
			l.breakIfBelow(blockBottom)
			l.text(Margin+5, line, fontTOCItem, colorBlack)
			l.y += 8
		}
	}
	l.y += 25
}

func (l *layouter) section(sec Section) {
	l.breakIfBelow(sectionBreakAt)
	l.add(Op{Kind: OpRect, X: Margin - 5, Y: l.y - 5, W: ContentWidth + 10, H: 15, Fill: colorBlue})
	l.add(Op{Kind: OpText, X: Margin, Y: l.y + 5, Text: numbered(sec.Number, sec.Title), Font: fontSection, Color: colorWhite})
	l.y += 20

	if sec.Summary != "" {
		lines := l.wrap(sec.Summary, fontSummary, ContentWidth)
		l.lines(lines, Margin, fontSummary, colorGray, summaryLineHeight)
		l.y += 8
	}

	for _, b := range sec.Blocks {
		l.breakIfBelow(sectionBreakAt)
		switch b.Kind {
		case BlockHeading:
			for _, line := range l.wrap(b.Text, fontHeading, ContentWidth) {
				l.text(Margin, line, fontHeading, colorGreen)
				l.y += 12
			}
		case BlockCode:
			l.code(b)
		case BlockList:
			for _, item := range b.Lines {
				for _, line := range l.wrap(item, fontProse, ContentWidth) {
					l.breakIfBelow(blockBottom)
					l.text(Margin, line, fontProse, colorBlack)
					l.y += listLineHeight
				}
			}
		default:
			lines := l.wrap(b.Text, fontProse, ContentWidth)
			if h := float64(len(lines)) * proseLineHeight; l.y+h > blockBottom && h <= blockBottom-Margin {
				l.newPage()
			}
			l.lines(lines, Margin, fontProse, colorBlack, proseLineHeight)
			l.y += 6
		}
	}

	if len(sec.Websites) > 0 {
		l.breakIfBelow(sectionBreakAt)
		l.text(Margin, "Recommended Websites:", fontLinkHead, colorBlue)
		l.y += 12
		for _, w := range sec.Websites {
			for _, line := range l.wrap("• "+w, fontLink, ContentWidth-5) {
				l.breakIfBelow(blockBottom)
				l.text(Margin+5, line, fontLink, colorBlack)
				l.y += 7
			}
		}
		l.y += 10
	}

	if len(sec.Videos) > 0 {
		l.breakIfBelow(sectionBreakAt)
		l.text(Margin, "Recommended Videos:", fontLinkHead, colorRed)
		l.y += 12
		for _, v := range sec.Videos {
			for _, line := range l.wrap("• "+v.Title, fontLink, ContentWidth-5) {
				l.breakIfBelow(blockBottom)
				l.text(Margin+5, line, fontLink, colorBlack)
				l.y += 7
			}
			if v.Channel != "" {
				l.breakIfBelow(blockBottom)
				l.text(Margin+10, "  Channel: "+v.Channel, fontLink, colorGray)
				l.y += 7
			}
		}
		l.y += 15
	}

	l.y += 25
}

// lines places already wrapped lines, breaking the page between lines when needed.
func (l *layouter) lines(lines []string, x float64, f Font, c Color, lh float64) {
	for _, line := range lines {
		l.breakIfBelow(blockBottom)
		l.text(x, line, f, c)
		l.y += lh
	}
}

// code draws a dark panel with one highlighted line per row. A block that
// does not fit below the cursor moves to a new page; one taller than a page
// continues on the next.
func (l *layouter) code(b Block) {
	rows := []string{}
	for _, line := range b.Lines {
		rows = append(rows, l.wrapCode(line, ContentWidth-12)...)
	}
	if len(rows) == 0 {
		return
	}
	full := float64(len(rows))*codeLineHeight + 2*codePadding
	if l.y+full > blockBottom && l.y > Margin {
		l.newPage()
	}
	for len(rows) > 0 {
		room := int(math.Floor((blockBottom - l.y - 2*codePadding) / codeLineHeight))
		if room < 1 {
			l.newPage()
			continue
		}
		n := min(room, len(rows))
		chunk := rows[:n]
		rows = rows[n:]

		h := float64(len(chunk))*codeLineHeight + 2*codePadding
		l.add(Op{Kind: OpRect, X: Margin, Y: l.y, W: ContentWidth, H: h, Fill: colorCodeBG, Edge: colorCodeEdge, Stroke: true})
		for i, row := range chunk {
			l.add(Op{
				Kind:  OpText,
				X:     Margin + 6,
				Y:     l.y + codePadding + 2 + float64(i)*codeLineHeight,
				Text:  row,
				Font:  fontCode,
				Color: Highlight(row),
			})
		}
		l.y += h
		if len(rows) > 0 {
			l.newPage()
		}
	}
	l.y += 8
}

// wrap breaks s into lines no wider than width, word by word. A single word
// wider than width is split by characters.
func (l *layouter) wrap(s string, f Font, width float64) []string {
	out := []string{}
	cur := ""
	for _, word := range strings.Fields(s) {
		test := word
		if cur != "" {
			test = cur + " " + word
		}
		if l.m.StringWidth(f, test) <= width {
			cur = test
			continue
		}
		if cur != "" {
			out = append(out, cur)
			cur = ""
		}
		if l.m.StringWidth(f, word) <= width {
			cur = word
			continue
		}
		pieces := l.split(word, f, width)
		out = append(out, pieces[:len(pieces)-1]...)
		cur = pieces[len(pieces)-1]
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}

// wrapCode keeps indentation and breaks an over-long line by characters.
func (l *layouter) wrapCode(line string, width float64) []string {
	if line == "" || l.m.StringWidth(fontCode, line) <= width {
		return []string{line}
	}
	return l.split(line, fontCode, width)
}

func (l *layouter) split(s string, f Font, width float64) []string {
	out := []string{}
	cur := []rune{}
	for _, r := range s {
		next := append(cur, r)
		if len(cur) > 0 && l.m.StringWidth(f, string(next)) > width {
			out = append(out, string(cur))
			cur = []rune{r}
			continue
		}
		cur = next
	}
	if len(cur) > 0 {
		out = append(out, string(cur))
	}
	return out
}
