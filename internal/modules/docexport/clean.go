package docexport

import (
	"regexp"
	"strings"
)

var (
	strayCharsRE   = regexp.MustCompile(`[³ØÜÖ]`)
	bulletRE       = regexp.MustCompile(`[•◦]`)
	markdownRE     = regexp.MustCompile(`[*#]+`)
	dotsRE         = regexp.MustCompile(`\.{2,}`)
	spaceRE        = regexp.MustCompile(`\s+`)
	leadMarkerRE   = regexp.MustCompile(`^\s*[-*+]\s*`)
	leadNumberRE   = regexp.MustCompile(`^\s*[0-9]+\.\s*`)
	headingHashRE  = regexp.MustCompile(`^#+\s*`)
	fencedBlockRE  = regexp.MustCompile("(?s)```.*?```")
	fenceLangRE    = regexp.MustCompile(`^[A-Za-z0-9_+#.-]+$`)
	fileNameUnsafe = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// CleanText normalizes model text for print. It is applied to titles,
// summaries, headings and prose; code is never passed through it.
func CleanText(s string) string {
	s = strayCharsRE.ReplaceAllString(s, "")
	s = bulletRE.ReplaceAllString(s, "•")
	s = markdownRE.ReplaceAllString(s, "")
	s = dotsRE.ReplaceAllString(s, ".")
	s = spaceRE.ReplaceAllString(s, " ")
	s = leadMarkerRE.ReplaceAllString(s, "")
	s = leadNumberRE.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// FileName is the download name of the exported document for topic.
func FileName(topic string) string {
	return fileNameUnsafe.ReplaceAllString(topic, "_") + "_study_material.pdf"
}
