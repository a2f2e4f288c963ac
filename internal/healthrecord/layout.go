package healthrecord

import "strings"

// PageMetrics positions text on a page. All values are points measured from
// the top-left corner.
type PageMetrics struct {
	Height  float64
	Top     float64
	Bottom  float64
	LineGap float64
}

// LetterMetrics mirrors a US Letter page: first baseline 750pt above the
// bottom edge, 20pt leading and a 50pt bottom margin.
var LetterMetrics = PageMetrics{
	Height:  792,
	Top:     42,
	Bottom:  50,
	LineGap: 20,
}

// Capacity is the number of lines that fit on one page.
func (m PageMetrics) Capacity() int {
	if m.LineGap <= 0 {
		return 0
	}
	usable := m.Height - m.Bottom - m.Top
	if usable < 0 {
		return 0
	}
	return int(usable/m.LineGap) + 1
}

// Placement is one line of text at its final position. Page is zero based.
type Placement struct {
	Page int
	Y    float64
	Text string
}

// Layout assigns each line a page and baseline, starting a new page whenever
// the next baseline would fall inside the bottom margin.
func Layout(lines []string, m PageMetrics) []Placement {
	out := make([]Placement, 0, len(lines))
	page := 0
	y := m.Top
	limit := m.Height - m.Bottom
	for _, line := range lines {
		if y > limit {
			page++
			y = m.Top
		}
		out = append(out, Placement{Page: page, Y: y, Text: line})
		y += m.LineGap
	}
	return out
}

// Wrap breaks text into lines no wider than maxWidth according to measure.
// Words wider than maxWidth are split mid-word. Input is treated as bytes,
// which matches the single-byte encoding of the core PDF fonts.
func Wrap(text string, maxWidth float64, measure func(string) float64) []string {
	if measure(text) <= maxWidth {
		return []string{text}
	}

	var lines []string
	var current string
	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if measure(candidate) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		for measure(word) > maxWidth {
			cut := fitPrefix(word, maxWidth, measure)
			lines = append(lines, word[:cut])
			word = word[cut:]
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

// fitPrefix returns the longest prefix length that fits, never less than one.
func fitPrefix(word string, maxWidth float64, measure func(string) float64) int {
	n := 1
	for n < len(word) && measure(word[:n+1]) <= maxWidth {
		n++
	}
	return n
}
