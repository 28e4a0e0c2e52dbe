package index

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/casedoc"
)

// Topics assigned to documents and chunks.
const (
	TopicRateOfReturn       = "rate_of_return"
	TopicRevenueRequirement = "revenue_requirement"
	TopicDepreciation       = "depreciation"
	TopicRateDesign         = "rate_design"
	TopicCostOfService      = "cost_of_service"
	TopicGeneral            = "general"
)

// topicKeywords lists the phrases counted for each topic, in tie-break order.
var topicKeywords = []struct {
	topic    string
	keywords []string
}{
	{TopicRateOfReturn, []string{"return on equity", "rate of return", "cost of capital", "cost of equity", "capital structure", "discounted cash flow", "risk premium", "capm", "cost of debt", "roe"}},
	{TopicRevenueRequirement, []string{"revenue requirement", "revenue deficiency", "rate base", "test year", "operating expense"}},
	{TopicDepreciation, []string{"depreciation", "service life", "net salvage", "amortization"}},
	{TopicRateDesign, []string{"rate design", "customer charge", "rate schedule", "billing determinant", "tariff"}},
	{TopicCostOfService, []string{"cost of service", "class cost", "cost allocation", "allocator", "cost study"}},
}

var (
	// Names are capitalized words after "testimony of"; lowercase words such
	// as "on behalf of" end the name.
	titleWitnessRe = regexp.MustCompile(`(?:[Tt]estimony|TESTIMONY|[Aa]ffidavit|AFFIDAVIT)\s+(?:[Oo]f|OF)\s+((?:[A-Z][A-Za-z.'\-]*\s+){1,3}[A-Z][A-Za-z'\-]+)`)
	textWitnessRe  = regexp.MustCompile(`[Mm]y name is\s+((?:[A-Z][A-Za-z.'\-]*\s+){1,3}[A-Z][A-Za-z'\-]+)`)

	directTestimonyRe = regexp.MustCompile(`(?i)\bdirect\s+testimony\b`)
	appendixTitleRe   = regexp.MustCompile(`(?i)\b(appendix|appendices|exhibit|attachment|workpapers?)\b`)
	appendixPageRe    = regexp.MustCompile(`(?i)^\s*(appendix|exhibit|attachment)\s+[A-Z0-9][\w.\-]*`)

	amountRe     = regexp.MustCompile(`\$\s?\d[\d,]*(?:\.\d+)?(?:\s?(?:[Mm]illion|[Bb]illion|[Tt]housand))?`)
	percentageRe = regexp.MustCompile(`\d+(?:\.\d+)?\s?(?:%|percent\b)`)
)

// witnessScanChars bounds how much leading text is searched for a witness
// introduction.
const witnessScanChars = 5000

// figureContextChars is how much text around a financial figure is kept on
// each side.
const figureContextChars = 60

// maxSearchTerms bounds the search terms stored per chunk.
const maxSearchTerms = 20

// DocumentFacts are signals derived once from a whole document and shared by
// all of its chunks.
type DocumentFacts struct {
	Witness           string
	Topic             string
	DirectTestimony   bool
	AppendixDocument  bool
	AppendixStartPage int // first page of a trailing appendix, 0 if none
}

// AnalyzeDocument derives document-level facts from the viewer title and the
// document's pages.
func AnalyzeDocument(title string, pages []casedoc.PageText) DocumentFacts {
	var sb strings.Builder
	for _, p := range pages {
		sb.WriteString(p.Text)
		sb.WriteString("\n\n")
	}
	text := sb.String()
	lead := truncate(text, witnessScanChars)

	facts := DocumentFacts{
		Witness:          findWitness(title, lead),
		Topic:            classifyTopic(text),
		DirectTestimony:  directTestimonyRe.MatchString(title) || directTestimonyRe.MatchString(lead),
		AppendixDocument: appendixTitleRe.MatchString(title),
	}

	// Only a heading after the first page starts an appendix section.
	for _, p := range pages {
		if p.Number > 1 && appendixPageRe.MatchString(p.Text) {
			facts.AppendixStartPage = p.Number
			break
		}
	}
	return facts
}

func findWitness(title, lead string) string {
	if m := titleWitnessRe.FindStringSubmatch(title); m != nil {
		return strings.Join(strings.Fields(m[1]), " ")
	}
	if m := textWitnessRe.FindStringSubmatch(lead); m != nil {
		return strings.Join(strings.Fields(m[1]), " ")
	}
	return ""
}

// classifyTopic returns the topic whose phrases occur most often in text.
func classifyTopic(text string) string {
	lower := strings.ToLower(text)
	best, bestCount := TopicGeneral, 0
	for _, tk := range topicKeywords {
		count := 0
		for _, kw := range tk.keywords {
			count += countWord(lower, kw)
		}
		if count > bestCount {
			best, bestCount = tk.topic, count
		}
	}
	return best
}

// countWord counts occurrences of phrase in lower that are not inside a
// longer word.
func countWord(lower, phrase string) int {
	count := 0
	for i := 0; ; {
		j := strings.Index(lower[i:], phrase)
		if j < 0 {
			return count
		}
		at := i + j
		end := at + len(phrase)
		if isBoundary(lower, at-1) && isBoundary(lower, end) {
			count++
		}
		i = end
	}
}

func isBoundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9')
}

// tagChunk builds the metadata of one chunk from the document facts and the
// chunk's own text.
func tagChunk(facts DocumentFacts, page int, content string, span Span) casedoc.ChunkMetadata {
	meta := casedoc.ChunkMetadata{
		Witness:           facts.Witness,
		Topic:             facts.Topic,
		IsDirectTestimony: facts.DirectTestimony,
		IsAppendix:        facts.AppendixDocument || (facts.AppendixStartPage > 0 && page >= facts.AppendixStartPage),
		SearchTerms:       searchTerms(content),
		Start:             span.Start,
		End:               span.End,
	}

	// A chunk about a specific topic overrides the document topic.
	if topic := classifyTopic(content); topic != TopicGeneral {
		meta.Topic = topic
	}

	meta.FinancialAmounts, meta.FinancialFigures = findFigures(content, amountRe, "amount", meta.FinancialFigures)
	meta.FinancialPercentages, meta.FinancialFigures = findFigures(content, percentageRe, "percentage", meta.FinancialFigures)
	return meta
}

// findFigures returns the distinct matches of re in content and appends each
// occurrence with its surrounding context to figures.
func findFigures(content string, re *regexp.Regexp, kind string, figures []casedoc.FinancialFigure) ([]string, []casedoc.FinancialFigure) {
	var values []string
	seen := make(map[string]bool)
	for _, loc := range re.FindAllStringIndex(content, -1) {
		value := strings.TrimRight(content[loc[0]:loc[1]], ",. ")
		figures = append(figures, casedoc.FinancialFigure{
			Value:   value,
			Kind:    kind,
			Context: figureContext(content, loc[0], loc[1]),
		})
		if !seen[value] {
			seen[value] = true
			values = append(values, value)
		}
	}
	return values, figures
}

func figureContext(content string, start, end int) string {
	from := alignRune(content, max(start-figureContextChars, 0))
	to := end + figureContextChars
	if to >= len(content) {
		to = len(content)
	} else {
		// Extend to the end of the rune at the cut.
		for to < len(content) && !utf8.RuneStart(content[to]) {
			to++
		}
	}
	return strings.Join(strings.Fields(content[from:to]), " ")
}

// searchTerms returns the most frequent content words of text, most
// frequent first.
func searchTerms(text string) []string {
	counts := make(map[string]int)
	var order []string
	for _, w := range casedoc.Tokenize(text) {
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > maxSearchTerms {
		order = order[:maxSearchTerms]
	}
	return order
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:alignRune(s, n)]
}
