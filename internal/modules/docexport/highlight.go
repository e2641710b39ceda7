package docexport

import "strings"

// Color is an RGB triple in 0..255.
type Color struct {
	R, G, B int
}

var (
	colorWhite     = Color{255, 255, 255}
	colorBlack     = Color{0, 0, 0}
	colorBlue      = Color{59, 130, 246}
	colorGreen     = Color{16, 185, 129}
	colorRed       = Color{239, 68, 68}
	colorGray      = Color{107, 114, 128}
	colorPanel     = Color{243, 244, 246}
	colorCodeBG    = Color{30, 30, 30}
	colorCodeEdge  = Color{60, 60, 60}
	colorCodePlain = Color{220, 220, 220}

	colorKeyword = Color{86, 156, 214}
	colorControl = Color{197, 134, 192}
	colorString  = Color{206, 145, 120}
	colorComment = Color{87, 166, 74}
)

type highlightRule struct {
	needles []string
	color   Color
}

// Evaluated top to bottom; the first rule with a matching needle wins.
var highlightRules = []highlightRule{
	{[]string{"def ", "function ", "class "}, colorKeyword},
	{[]string{"if ", "else ", "for ", "while "}, colorControl},
	{[]string{`"`, "'"}, colorString},
	{[]string{"//", "#"}, colorComment},
	{[]string{"true", "false", "null", "undefined"}, colorKeyword},
}

// Highlight picks the text color of one code line.
func Highlight(line string) Color {
	for _, r := range highlightRules {
		for _, n := range r.needles {
			if strings.Contains(line, n) {
				return r.color
			}
		}
	}
	return colorCodePlain
}
