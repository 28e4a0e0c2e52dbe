package index

import (
	"strings"
	"unicode/utf8"
)

// Span is a half-open byte range [Start, End) of a text unit.
type Span struct {
	Start int
	End   int
}

// Chunker splits text into overlapping windows that prefer to end on a
// paragraph or sentence boundary.
type Chunker struct {
	size    int
	overlap int
	minSize int
}

// NewChunker creates a Chunker. Overlap is reduced to a quarter of size when
// it does not leave room for progress, and minSize is capped at overlap so a
// merged trailing fragment never exceeds size+overlap.
func NewChunker(size, overlap, minSize int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 4
	}
	if minSize < 0 {
		minSize = 0
	}
	if minSize > overlap && overlap > 0 {
		minSize = overlap
	}
	return &Chunker{size: size, overlap: overlap, minSize: minSize}
}

// Split returns at most limit spans covering text. A limit of zero or less
// means no limit. Text shorter than the minimum chunk size yields no spans.
//
// Consecutive spans overlap; taking each span from the previous span's end
// reconstructs text exactly.
func (c *Chunker) Split(text string, limit int) []Span {
	n := len(text)
	if n == 0 || n < c.minSize {
		return nil
	}
	if n <= c.size {
		return []Span{{Start: 0, End: n}}
	}

	var spans []Span
	start, prevEnd := 0, 0
	for {
		if limit > 0 && len(spans) >= limit {
			return spans
		}

		end := start + c.size
		if end >= n {
			return append(spans, Span{Start: start, End: n})
		}

		end = c.breakPoint(text, start, alignRune(text, end), prevEnd)
		if end <= prevEnd {
			_, w := utf8.DecodeRuneInString(text[prevEnd:])
			end = prevEnd + w
		}

		// A short tail joins the current span instead of becoming a chunk.
		if n-end < c.minSize {
			return append(spans, Span{Start: start, End: n})
		}
		spans = append(spans, Span{Start: start, End: end})
		prevEnd = end

		next := alignRune(text, end-c.overlap)
		if next <= start {
			next = end
		}
		start = next
	}
}

// breakPoint finds where a window [start, end) should end. It looks for a
// paragraph break, then a sentence end, then whitespace, within the last 30%
// of the window, and falls back to end. A break is only taken past prevEnd,
// so every span ends later than the one before it.
func (c *Chunker) breakPoint(text string, start, end, prevEnd int) int {
	floor := max(alignRune(text, start+c.size*7/10), prevEnd)
	if floor >= end {
		return end
	}
	window := text[floor:end]

	if i := strings.LastIndex(window, "\n\n"); i >= 0 {
		return floor + i + 2
	}

	best := -1
	for _, sep := range []string{". ", "? ", "! ", ".\n", "?\n", "!\n"} {
		if i := strings.LastIndex(window, sep); i > best {
			best = i
		}
	}
	if best >= 0 {
		return floor + best + 2
	}

	if i := strings.LastIndexAny(window, " \n\t"); i >= 0 {
		return floor + i + 1
	}
	return end
}

// alignRune moves i back to the start of the rune containing it.
func alignRune(text string, i int) int {
	if i <= 0 {
		return 0
	}
	if i >= len(text) {
		return len(text)
	}
	for i > 0 && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}
