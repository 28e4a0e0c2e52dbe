package goquery

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/casedoc"
)

// Ensure ListingParser implements casedoc.ListingParser at compile time.
var _ casedoc.ListingParser = (*ListingParser)(nil)

// Selectors for listing and case detail pages.
const (
	NextListingSelector       = `a[rel="next"], .pagination a.next, a.next-page`
	DocumentContainerSelector = "#documents, .documents, .case-documents"
)

var (
	documentLinkRe = regexp.MustCompile(`(?i)(viewer|document|\.pdf)`)
	nextTextRe     = regexp.MustCompile(`(?i)^next\b|^(›|»|>)$`)
	filedLabelRe   = regexp.MustCompile(`(?i)^(date filed|filing date|filed date|filed on|filed)\s*:?$`)
	filedInlineRe  = regexp.MustCompile(`(?i)(?:date filed|filing date|filed on|filed)\s*:?\s*(\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{4}|[A-Z][a-z]+\.? \d{1,2}, \d{4})`)
)

// ListingParser parses listing views and case detail pages.
type ListingParser struct{}

// NewListingParser creates a new ListingParser.
func NewListingParser() *ListingParser {
	return &ListingParser{}
}

// ParseListing extracts case rows from a listing page. A row is valid only
// when it holds an anchor whose text is a case number and at least two more
// non-empty cells; the first is the company and the second the description.
func (p *ListingParser) ParseListing(htmlStr string, baseURL string, view casedoc.ListingView) (*casedoc.ListingPage, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, casedoc.Errorf(casedoc.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil, casedoc.Errorf(casedoc.EINVALID, "failed to parse HTML: %v", err)
	}

	page := &casedoc.ListingPage{}
	seen := make(map[string]bool)

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		c := parseCaseRow(row, base, view)
		if c == nil || seen[c.CaseNumber] {
			return
		}
		seen[c.CaseNumber] = true
		page.Cases = append(page.Cases, c)
	})

	page.NextURL = nextListingURL(doc, base)
	return page, nil
}

func parseCaseRow(row *goquery.Selection, base *url.URL, view casedoc.ListingView) *casedoc.Case {
	var caseNumber, detailURL string
	var anchorCell *goquery.Selection

	row.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		m := casedoc.CaseNumberPattern.FindString(strings.TrimSpace(a.Text()))
		if m == "" {
			return true
		}
		href, _ := a.Attr("href")
		caseNumber = m
		detailURL = resolveURL(base, href)
		anchorCell = a.Closest("td, th")
		return false
	})
	if caseNumber == "" || detailURL == "" {
		return nil
	}

	var cells []string
	row.ChildrenFiltered("td").Each(func(_ int, td *goquery.Selection) {
		if anchorCell != nil && anchorCell.IsSelection(td) {
			return
		}
		text := strings.Join(strings.Fields(td.Text()), " ")
		if text != "" {
			cells = append(cells, text)
		}
	})
	if len(cells) < 2 {
		return nil
	}

	c := &casedoc.Case{
		CaseNumber:  caseNumber,
		Company:     cells[0],
		Description: cells[1],
		ListingURL:  detailURL,
		Utility:     view.Utility,
		Status:      view.Status,
	}
	// Some views show the filing date as an extra column.
	for _, cell := range cells[2:] {
		if _, ok := casedoc.ParseFiledDate(cell); ok {
			c.DateFiled = cell
			break
		}
	}
	return c
}

func nextListingURL(doc *goquery.Document, base *url.URL) string {
	if href, ok := doc.Find(NextListingSelector).First().Attr("href"); ok {
		if next := resolveURL(base, href); next != "" && isSameHost(base, next) {
			return next
		}
	}

	var next string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if !nextTextRe.MatchString(strings.TrimSpace(a.Text())) {
			return true
		}
		href, _ := a.Attr("href")
		if u := resolveURL(base, href); u != "" && isSameHost(base, u) {
			next = u
			return false
		}
		return true
	})
	return next
}

// ParseFiledDate returns the raw filed date shown on a case detail page.
// Labelled fields ("Date Filed", "Filing Date") are read first; inline
// "Filed: <date>" text is the fallback.
func (p *ListingParser) ParseFiledDate(htmlStr string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}

	var date string
	doc.Find("th, td, dt, label, strong, b, span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !filedLabelRe.MatchString(strings.TrimSpace(s.Text())) {
			return true
		}
		value := strings.TrimSpace(s.Next().Text())
		if value == "" {
			// Label wrapped in its own element inside a cell.
			value = strings.TrimSpace(s.Parent().Next().Text())
		}
		if value != "" {
			date = strings.Join(strings.Fields(value), " ")
			return false
		}
		return true
	})
	if date != "" {
		return date
	}

	if m := filedInlineRe.FindStringSubmatch(strings.Join(strings.Fields(doc.Text()), " ")); m != nil {
		return m[1]
	}
	return ""
}

// ParseDocuments returns the documents listed on a case detail page,
// deduplicated by viewer URL. Only links that look like a document viewer
// are taken. Inside a document container, each link takes its section from
// the nearest preceding heading or an enclosing data-section attribute.
// Without a container, links are taken with SectionOther.
func (p *ListingParser) ParseDocuments(htmlStr string, baseURL string, caseNumber string) ([]casedoc.DocumentRef, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, casedoc.Errorf(casedoc.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil, casedoc.Errorf(casedoc.EINVALID, "failed to parse HTML: %v", err)
	}

	seen := make(map[string]bool)
	var docs []casedoc.DocumentRef
	add := func(a *goquery.Selection, section string) {
		href, _ := a.Attr("href")
		viewerURL := resolveURL(base, href)
		if viewerURL == "" || seen[viewerURL] {
			return
		}
		seen[viewerURL] = true
		docs = append(docs, casedoc.DocumentRef{
			CaseNumber:  caseNumber,
			ViewerURL:   viewerURL,
			DisplayName: displayName(a, viewerURL),
			Section:     section,
		})
	}

	container := doc.Find(DocumentContainerSelector)
	if container.Length() > 0 {
		heading := ""
		container.Find("h2, h3, h4, caption, a[href]").Each(func(_ int, s *goquery.Selection) {
			if !s.Is("a") {
				heading = s.Text()
				return
			}
			if href, _ := s.Attr("href"); !documentLinkRe.MatchString(href) {
				return
			}
			section := heading
			if attr, ok := s.Closest("[data-section]").Attr("data-section"); ok {
				section = attr
			}
			add(s, casedoc.NormalizeSection(section))
		})
		return docs, nil
	}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !documentLinkRe.MatchString(href) {
			return
		}
		add(a, casedoc.SectionOther)
	})
	return docs, nil
}

func displayName(a *goquery.Selection, viewerURL string) string {
	if text := strings.Join(strings.Fields(a.Text()), " "); text != "" {
		return text
	}
	if title, ok := a.Attr("title"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	if u, err := url.Parse(viewerURL); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return viewerURL
}
