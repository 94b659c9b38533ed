package render

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"svg": true, "head": true, "iframe": true, "#comment": true,
}

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "br": true,
	"dd": true, "div": true, "dl": true, "dt": true, "figcaption": true, "figure": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "header": true, "hr": true, "li": true, "main": true,
	"nav": true, "ol": true, "p": true, "pre": true, "section": true, "table": true,
	"tr": true, "ul": true,
}

// cells on one row stay on one line
var cellTags = map[string]bool{"td": true, "th": true}

// VisibleText approximates innerText from markup: non-rendered elements are
// dropped, block elements start new lines and whitespace is collapsed.
func VisibleText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	w := &textWriter{}
	w.walk(root)
	w.flush()
	return strings.Join(w.lines, "\n"), nil
}

type textWriter struct {
	lines []string
	cur   strings.Builder
}

func (w *textWriter) walk(s *goquery.Selection) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		name := goquery.NodeName(c)
		switch {
		case name == "#text":
			w.cur.WriteString(c.Text())
		case skipTags[name]:
		case blockTags[name]:
			w.flush()
			w.walk(c)
			w.flush()
		case cellTags[name]:
			w.walk(c)
			w.cur.WriteString(" ")
		default:
			w.walk(c)
		}
	})
}

func (w *textWriter) flush() {
	line := strings.Join(strings.Fields(w.cur.String()), " ")
	w.cur.Reset()
	if line != "" {
		w.lines = append(w.lines, line)
	}
}
