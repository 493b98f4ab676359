package pdf

import "strings"

// avgGlyphWidthRatio approximates the average Helvetica glyph width as a
// fraction of the font size. This is an estimate, not real font metrics;
// the wrap therefore errs toward slightly short lines rather than clipped
// text.
const avgGlyphWidthRatio = 0.45

// Fitter wraps field text to a width budget and, when a line limit applies,
// steps the font size down until the wrapped text fits. It is a pure
// strategy with no PDF dependencies.
type Fitter struct {
	MaxFontSize float64
	MinFontSize float64
	FontStep    float64
}

// NewFitter creates a fitter for the given font-size range. Non-positive
// arguments fall back to the 11pt..6pt range in 0.5pt steps.
func NewFitter(maxSize, minSize, step float64) Fitter {
	if maxSize <= 0 {
		maxSize = 11.0
	}
	if minSize <= 0 {
		minSize = 6.0
	}
	if minSize > maxSize {
		minSize = maxSize
	}
	if step <= 0 {
		step = 0.5
	}
	return Fitter{
		MaxFontSize: maxSize,
		MinFontSize: minSize,
		FontStep:    step,
	}
}

// FitResult describes the outcome of fitting text into a field.
type FitResult struct {
	// Lines holds the wrapped text, at most the requested line limit.
	Lines []string

	// FontSize is the chosen size in points.
	FontSize float64

	// TotalLines is the number of lines the full text needs at the chosen
	// size, before any truncation.
	TotalLines int

	// Truncated reports whether lines were dropped to honor the limit.
	Truncated bool

	// Dropped holds the lines cut off by the limit, in order.
	Dropped []string
}

// Text returns the wrapped lines joined with newlines.
func (r FitResult) Text() string {
	return strings.Join(r.Lines, "\n")
}

// DroppedText returns the truncated remainder as a single space-joined
// string, mirroring how overflow is reported to callers.
func (r FitResult) DroppedText() string {
	return strings.Join(r.Dropped, " ")
}

// FitText wraps text into a field widthPts points wide. maxLines <= 0 means
// unlimited: the text is wrapped at the maximum font size and never
// truncated. Otherwise candidate sizes are tried largest-first and the first
// size whose wrap fits wins; if even the minimum size overflows, the wrap is
// cut at maxLines and the remainder reported in Dropped.
func (f Fitter) FitText(text string, widthPts float64, maxLines int) FitResult {
	normalized := NormalizeNewlines(text)

	if maxLines <= 0 {
		lines := wrapText(normalized, charsPerLine(widthPts, f.MaxFontSize))
		return FitResult{
			Lines:      lines,
			FontSize:   f.MaxFontSize,
			TotalLines: len(lines),
		}
	}

	var lines []string
	size := f.MaxFontSize
	for {
		lines = wrapText(normalized, charsPerLine(widthPts, size))
		if len(lines) <= maxLines {
			return FitResult{
				Lines:      lines,
				FontSize:   size,
				TotalLines: len(lines),
			}
		}
		next := size - f.FontStep
		if next < f.MinFontSize-1e-9 {
			// The minimum size is always a candidate, even when the step
			// overshoots it.
			if size > f.MinFontSize+1e-9 {
				next = f.MinFontSize
			} else {
				break
			}
		}
		size = next
	}

	// Nothing in range fits: keep the earliest lines of the smallest wrap.
	return FitResult{
		Lines:      lines[:maxLines],
		FontSize:   size,
		TotalLines: len(lines),
		Truncated:  true,
		Dropped:    lines[maxLines:],
	}
}

// NormalizeNewlines collapses platform newline sequences to "\n" and honors
// literal backslash-n sequences in the input as explicit line breaks.
func NormalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, `\n`, "\n")
	return text
}

// charsPerLine estimates how many characters fit on one line of a field
// widthPts points wide at the given font size. Always at least 1.
func charsPerLine(widthPts, fontSize float64) int {
	if widthPts <= 0 || fontSize <= 0 {
		return 1
	}
	budget := int(widthPts / (fontSize * avgGlyphWidthRatio))
	if budget < 1 {
		budget = 1
	}
	return budget
}

// wrapText greedily packs words into lines of at most budget characters.
// Explicit newlines in the text force line breaks. A word longer than a
// full line is hard-broken at the character boundary that fits.
func wrapText(text string, budget int) []string {
	if text == "" {
		return []string{""}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		lines = append(lines, wrapParagraph(paragraph, budget)...)
	}
	return lines
}

// wrapParagraph wraps a single run of text containing no newlines.
func wrapParagraph(paragraph string, budget int) []string {
	words := strings.Fields(paragraph)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := ""

	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}

		if len([]rune(candidate)) <= budget {
			current = candidate
			continue
		}

		if current != "" {
			lines = append(lines, current)
		}

		if len([]rune(word)) > budget {
			segments := breakLongWord(word, budget)
			lines = append(lines, segments[:len(segments)-1]...)
			current = segments[len(segments)-1]
		} else {
			current = word
		}
	}

	if current != "" {
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

// breakLongWord splits a word that cannot fit on one line into budget-sized
// segments. The result always has at least one element.
func breakLongWord(word string, budget int) []string {
	runes := []rune(word)
	if len(runes) == 0 {
		return []string{""}
	}
	if budget < 1 {
		budget = 1
	}

	var segments []string
	for start := 0; start < len(runes); start += budget {
		end := start + budget
		if end > len(runes) {
			end = len(runes)
		}
		segments = append(segments, string(runes[start:end]))
	}
	return segments
}
