package pdf

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fieldWidth yields a 40-character budget at 11pt (198 / (11 * 0.45) = 40).
const fieldWidth = 198.0

func TestCharsPerLine(t *testing.T) {
	tests := []struct {
		name     string
		widthPts float64
		fontSize float64
		want     int
	}{
		{"default field at 11pt", 198, 11, 40},
		{"default field at 6pt", 198, 6, 73},
		{"narrow field", 20, 11, 4},
		{"tiny field clamps to one char", 2, 11, 1},
		{"zero width clamps to one char", 0, 11, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, charsPerLine(tt.widthPts, tt.fontSize))
		})
	}
}

func TestNormalizeNewlines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"windows line endings", "a\r\nb", "a\nb"},
		{"bare carriage returns", "a\rb", "a\nb"},
		{"literal backslash-n", `a\nb`, "a\nb"},
		{"mixed", "a\r\nb\rc" + `\nd`, "a\nb\nc\nd"},
		{"untouched", "plain text", "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeNewlines(tt.input))
		})
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		budget int
		want   []string
	}{
		{
			name:   "empty text",
			text:   "",
			budget: 10,
			want:   []string{""},
		},
		{
			name:   "fits on one line",
			text:   "short text",
			budget: 20,
			want:   []string{"short text"},
		},
		{
			name:   "greedy packing",
			text:   "one two three four",
			budget: 9,
			want:   []string{"one two", "three", "four"},
		},
		{
			name:   "explicit breaks preserved",
			text:   "first\nsecond line",
			budget: 20,
			want:   []string{"first", "second line"},
		},
		{
			name:   "blank paragraph kept",
			text:   "first\n\nthird",
			budget: 20,
			want:   []string{"first", "", "third"},
		},
		{
			name:   "long word hard broken",
			text:   "abcdefghij",
			budget: 4,
			want:   []string{"abcd", "efgh", "ij"},
		},
		{
			name:   "long word mid-sentence",
			text:   "ok abcdefghij end",
			budget: 4,
			want:   []string{"ok", "abcd", "efgh", "ij", "end"},
		},
		{
			name:   "trailing fragment joins following word",
			text:   "abcdefgh in",
			budget: 5,
			want:   []string{"abcde", "fgh", "in"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrapText(tt.text, tt.budget))
		})
	}
}

// Greedy wrap must never split a word that fits on a line by itself.
func TestWrapTextPreservesWholeWords(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog near a riverbank at dawn"
	words := strings.Fields(text)

	for budget := 10; budget <= 40; budget += 5 {
		lines := wrapText(text, budget)

		var rejoined []string
		for _, line := range lines {
			assert.LessOrEqual(t, len(line), budget)
			rejoined = append(rejoined, strings.Fields(line)...)
		}
		assert.Equal(t, words, rejoined, "budget %d reordered or split words", budget)
	}
}

func TestFitTextNoOpWhenTextFits(t *testing.T) {
	fitter := NewFitter(11, 6, 0.5)

	text := "Pain prevents standing for long periods."
	require.LessOrEqual(t, len(text), 40)

	result := fitter.FitText(text, fieldWidth, 3)

	assert.Equal(t, []string{text}, result.Lines)
	assert.Equal(t, 11.0, result.FontSize)
	assert.False(t, result.Truncated)
	assert.Empty(t, result.Dropped)
	assert.Equal(t, text, result.Text())
}

func TestFitTextUnlimitedNeverTruncates(t *testing.T) {
	fitter := NewFitter(11, 6, 0.5)

	text := strings.Repeat("word ", 400)
	result := fitter.FitText(text, fieldWidth, 0)

	assert.False(t, result.Truncated)
	assert.Equal(t, 11.0, result.FontSize, "unlimited fields keep the maximum size")
	assert.Equal(t, len(result.Lines), result.TotalLines)
	assert.Greater(t, len(result.Lines), 7)
}

// A 7-line narrative sized for the field wraps at the default size with no
// truncation, matching the N5text[0] disability-explanation scenario.
func TestFitTextSevenLineNarrative(t *testing.T) {
	fitter := NewFitter(11, 6, 0.5)

	// Each clause is exactly 40 characters, so greedy wrap reproduces one
	// clause per line at the default size.
	clause := "lorem ipsum dolor sit amet consectetur a"
	require.Len(t, clause, 40)
	text := strings.TrimSpace(strings.Repeat(clause+" ", 7))

	result := fitter.FitText(text, fieldWidth, 7)

	assert.Len(t, result.Lines, 7)
	assert.Equal(t, 11.0, result.FontSize)
	assert.False(t, result.Truncated)
}

// Overlong input shrinks toward the minimum size and is then cut to exactly
// the limit, with the remainder reported.
func TestFitTextOverflowTruncates(t *testing.T) {
	fitter := NewFitter(11, 6, 0.5)

	text := strings.TrimSpace(strings.Repeat("chronic fatigue limits every activity ", 27)) // ~1000 chars
	result := fitter.FitText(text, fieldWidth, 7)

	assert.Len(t, result.Lines, 7)
	assert.Equal(t, 6.0, result.FontSize)
	assert.True(t, result.Truncated)
	assert.NotEmpty(t, result.Dropped)
	assert.Greater(t, result.TotalLines, 7)
	assert.NotEmpty(t, result.DroppedText())
}

// Output never exceeds the line limit, whatever the input.
func TestFitTextHonorsLineLimit(t *testing.T) {
	fitter := NewFitter(11, 6, 0.5)

	inputs := []string{
		"",
		"one line",
		strings.Repeat("x", 500),
		strings.Repeat("several words in a row ", 100),
		"explicit\nbreaks\non\nevery\nword\nhere\nand\nmore\nstill",
	}

	for _, text := range inputs {
		for _, limit := range []int{1, 2, 5, 13} {
			result := fitter.FitText(text, fieldWidth, limit)
			assert.LessOrEqual(t, len(result.Lines), limit,
				"limit %d exceeded for input %.20q", limit, text)
		}
	}
}

// Back-off picks an intermediate size when one exists that avoids
// truncation.
func TestFitTextChoosesLargestFittingSize(t *testing.T) {
	fitter := NewFitter(11, 6, 0.5)

	// Needs slightly more than 2 lines at 11pt, fits in 2 at a smaller size.
	text := strings.TrimSpace(strings.Repeat("ten chars ", 9)) // 89 chars
	atMax := fitter.FitText(text, fieldWidth, 0)
	require.Greater(t, len(atMax.Lines), 2)

	result := fitter.FitText(text, fieldWidth, 2)

	assert.False(t, result.Truncated)
	assert.Len(t, result.Lines, 2)
	assert.Less(t, result.FontSize, 11.0)
	assert.GreaterOrEqual(t, result.FontSize, 6.0)
}

// The configured minimum is evaluated even when the step sequence from the
// maximum does not land on it exactly.
func TestFitTextReachesMinimumWhenStepOvershoots(t *testing.T) {
	fitter := NewFitter(11, 6.3, 0.5)

	// 138 characters hard-break into 3 lines at 6.5pt (67-char budget) but
	// exactly 2 at 6.3pt (69-char budget).
	word := strings.Repeat("a", 138)

	result := fitter.FitText(word, fieldWidth, 2)
	assert.False(t, result.Truncated)
	assert.InDelta(t, 6.3, result.FontSize, 1e-9)
	assert.Len(t, result.Lines, 2)

	// When nothing fits, the truncated wrap is the minimum-size wrap.
	result = fitter.FitText(word, fieldWidth, 1)
	assert.True(t, result.Truncated)
	assert.InDelta(t, 6.3, result.FontSize, 1e-9)
}

// Tightening the line limit never increases the chosen font size.
func TestFitTextFontSizeMonotonic(t *testing.T) {
	fitter := NewFitter(11, 6, 0.5)
	text := strings.TrimSpace(strings.Repeat("steady flow of narrative words ", 12))

	prevSize := 0.0
	for limit := 1; limit <= 12; limit++ {
		result := fitter.FitText(text, fieldWidth, limit)
		if limit > 1 {
			assert.GreaterOrEqual(t, result.FontSize, prevSize,
				"font size shrank when the limit was relaxed to %d", limit)
		}
		prevSize = result.FontSize
	}
}

// Fitting is deterministic: identical inputs give identical results.
func TestFitTextDeterministic(t *testing.T) {
	fitter := NewFitter(11, 6, 0.5)
	text := strings.Repeat("repeatable content with several words ", 20)

	first := fitter.FitText(text, fieldWidth, 5)
	second := fitter.FitText(text, fieldWidth, 5)

	assert.True(t, reflect.DeepEqual(first, second))
}

func TestNewFitterDefaults(t *testing.T) {
	fitter := NewFitter(0, 0, 0)

	assert.Equal(t, 11.0, fitter.MaxFontSize)
	assert.Equal(t, 6.0, fitter.MinFontSize)
	assert.Equal(t, 0.5, fitter.FontStep)

	// Min above max collapses to max.
	fitter = NewFitter(8, 10, 1)
	assert.Equal(t, 8.0, fitter.MaxFontSize)
	assert.Equal(t, 8.0, fitter.MinFontSize)
}
