package goquery

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/casedoc"
	"golang.org/x/net/html"
)

// numericFragmentRe matches marked-content fragments made only of digits and
// separators. Renderers emit these for coordinates and layout artifacts.
var numericFragmentRe = regexp.MustCompile(`^[\d\s.,:;()\-–/]+$`)

var lastIntRe = regexp.MustCompile(`(\d+)\D*$`)

// PageCount reads the total page count from the viewer's page-count
// indicator. It prefers a data-total-pages attribute and otherwise takes the
// last integer of the indicator text ("of 120", "1 / 120").
// Returns 0 when no indicator is present.
func PageCount(htmlStr string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return 0
	}

	if v, ok := doc.Find("[data-total-pages]").First().Attr("data-total-pages"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}

	count := 0
	doc.Find("#numPages, .page-count").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		m := lastIntRe.FindStringSubmatch(strings.TrimSpace(s.Text()))
		if m == nil {
			return true
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			count = n
			return false
		}
		return true
	})
	return count
}

// RenderedPageCount returns the number of numbered page containers in the DOM,
// rendered or placeholder.
func RenderedPageCount(htmlStr string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return 0
	}
	return doc.Find(PageSelector).Length()
}

// TextLayerPageText returns the text layer content of page n. When the viewer
// renders a single text layer without page containers, that layer is used.
func TextLayerPageText(htmlStr string, n int) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}

	page := doc.Find(`.page[data-page-number="` + strconv.Itoa(n) + `"]`)
	if page.Length() > 0 {
		return selectionText(page.First().Find(TextLayerSelector))
	}
	if doc.Find(".page").Length() == 0 {
		return selectionText(doc.Find(TextLayerSelector).First())
	}
	return ""
}

// TextLayerPages returns the text layer content of every rendered page,
// sorted by page number.
func TextLayerPages(htmlStr string) []casedoc.PageText {
	return collectPages(htmlStr, PageSelector, func(s *goquery.Selection) string {
		return selectionText(s.Find(TextLayerSelector))
	})
}

// MarkedContentPages concatenates the non-numeric marked-content fragments
// of every rendered page, sorted by page number.
func MarkedContentPages(htmlStr string) []casedoc.PageText {
	return collectPages(htmlStr, PageSelector, func(s *goquery.Selection) string {
		var parts []string
		s.Find(MarkedContentSelector).Each(func(_ int, frag *goquery.Selection) {
			// Nested marked content is read through its outermost node.
			if frag.ParentsFiltered(MarkedContentSelector).Length() > 0 {
				return
			}
			text := strings.Join(strings.Fields(frag.Text()), " ")
			if text == "" || numericFragmentRe.MatchString(text) {
				return
			}
			parts = append(parts, text)
		})
		return strings.Join(parts, " ")
	})
}

// LoadedPages returns the pages a lazy-loading viewer has marked as loaded,
// sorted by page number. Text comes from the page's text layer when it has
// one and from the page element otherwise.
func LoadedPages(htmlStr string) []casedoc.PageText {
	return collectPages(htmlStr, `.page[data-loaded="true"]`, func(s *goquery.Selection) string {
		if layer := s.Find(TextLayerSelector); layer.Length() > 0 {
			return selectionText(layer)
		}
		return selectionText(s)
	})
}

// collectPages applies textFn to every element matching selector that
// carries a page number. Pages without text are omitted and duplicates keep
// their first occurrence.
func collectPages(htmlStr, selector string, textFn func(*goquery.Selection) string) []casedoc.PageText {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil
	}

	seen := make(map[int]bool)
	var pages []casedoc.PageText
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		n, ok := pageNumber(s)
		if !ok || seen[n] {
			return
		}
		text := textFn(s)
		if text == "" {
			return
		}
		seen[n] = true
		pages = append(pages, casedoc.PageText{Number: n, Text: text})
	})

	sort.Slice(pages, func(i, j int) bool { return pages[i].Number < pages[j].Number })
	return pages
}

func pageNumber(s *goquery.Selection) (int, bool) {
	v, ok := s.Attr("data-page-number")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// selectionText renders the text of a selection the way a reader sees it:
// spans are separated by spaces, line breaks and block elements start new
// lines.
func selectionText(s *goquery.Selection) string {
	var sb strings.Builder
	for _, n := range s.Nodes {
		writeNodeText(&sb, n)
		sb.WriteByte('\n')
	}
	return normalizeText(sb.String())
}

func writeNodeText(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style":
			return
		case "br":
			sb.WriteByte('\n')
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeNodeText(sb, c)
	}

	if n.Type == html.ElementNode {
		switch n.Data {
		case "span":
			sb.WriteByte(' ')
		case "div", "p", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6":
			sb.WriteByte('\n')
		}
	}
}

// normalizeText collapses horizontal whitespace within lines, trims lines
// and keeps at most one blank line between paragraphs.
func normalizeText(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if len(out) > 0 {
				blank = true
			}
			continue
		}
		if blank {
			out = append(out, "")
			blank = false
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
