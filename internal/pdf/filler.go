package pdf

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// defaultFontName is used when neither the field nor the form declares a
// default appearance font.
const defaultFontName = "Helv"

// fieldSideMargin keeps the wrap estimate off the field border, matching
// the one-point inset the form was laid out with.
const fieldSideMargin = 1.0

// Filler transforms a form template plus field values into a filled PDF.
// It is stateless apart from the immutable fitter and default limit table,
// so a single instance serves concurrent requests.
type Filler struct {
	fitter   Fitter
	defaults LineLimits
}

// NewFiller creates a filler using the given fitting strategy and default
// line-limit table.
func NewFiller(fitter Fitter, defaults LineLimits) *Filler {
	return &Filler{
		fitter:   fitter,
		defaults: defaults,
	}
}

// Fill loads the template at templatePath, writes the requested values into
// its form fields, and returns the serialized document. Unknown field names
// and truncated text are reported in the result, never as errors; only an
// unreadable or form-less template fails the call.
func (f *Filler) Fill(templatePath string, req FormFillRequest) (*FormFillResult, error) {
	ctx, err := readTemplateContext(templatePath)
	if err != nil {
		return nil, err
	}

	fields, err := collectFormFields(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}

	result := &FormFillResult{}
	limits := f.defaults.Merge(req.LineLimits)
	byName := indexFields(fields)

	// Deterministic processing order keeps the output byte-stable for
	// identical requests.
	names := make([]string, 0, len(req.Fields))
	for name := range req.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field, ok := byName[name]
		if !ok {
			result.UnknownFields = append(result.UnknownFields, name)
			continue
		}

		switch field.Kind {
		case FieldKindCheckbox, FieldKindRadio:
			f.fillButton(field, req.Fields[name])
		case FieldKindText, FieldKindChoice, FieldKindUnknown:
			f.fillText(field, name, req.Fields[name], limits, result)
		default:
			// Pushbuttons and signatures hold no caller text.
			result.UnknownFields = append(result.UnknownFields, name)
			continue
		}
		result.FilledCount++
	}

	if acroDict, err := acroFormDict(ctx); err == nil && acroDict != nil {
		// Values changed under the widgets; ask viewers to rebuild the
		// appearance streams.
		acroDict["NeedAppearances"] = types.Boolean(true)
	}

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, fmt.Errorf("failed to serialize filled document: %w", err)
	}

	result.PDF = buf.Bytes()
	return result, nil
}

// readTemplateContext opens and parses a template into a pdfcpu context.
// The file handle is released before returning; the context owns an
// in-memory copy of everything it needs.
func readTemplateContext(templatePath string) (*model.Context, error) {
	file, err := os.Open(templatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, templatePath)
		}
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}

	return ctx, nil
}

// fillText wraps the text to the field's width and limit, then rewrites the
// field's value and appearance.
func (f *Filler) fillText(field *fieldRef, name, text string, limits LineLimits, result *FormFillResult) {
	maxLines := 0
	if limit, ok := limits.Lookup(name); ok {
		maxLines = limit
	}

	width := field.Width - fieldSideMargin
	fit := f.fitterFor(field).FitText(text, width, maxLines)

	if fit.Truncated {
		result.Overflow = append(result.Overflow, FieldOverflow{
			Field:          name,
			TotalLines:     fit.TotalLines,
			DisplayedLines: len(fit.Lines),
			DroppedLines:   len(fit.Dropped),
			DroppedText:    fit.DroppedText(),
		})
	}

	// Multiline field values separate lines with carriage returns.
	value := strings.Join(fit.Lines, "\r")
	field.dict["V"] = types.StringLiteral(escapePDFText(value))
	field.dict["DA"] = types.StringLiteral(fmt.Sprintf("/%s %s Tf 0 g", f.fontNameFor(field), formatFontSize(fit.FontSize)))

	dropAppearances(field)
}

// fillButton checks or clears a checkbox or radio field based on the
// truthiness of the supplied value.
func (f *Filler) fillButton(field *fieldRef, value string) {
	state := "Off"
	if isAffirmative(value) {
		state = "Yes"
	}

	field.dict["V"] = types.Name(state)
	for _, widget := range field.widgets {
		widget["AS"] = types.Name(state)
	}
}

// fitterFor narrows the configured fitter to the field's declared font
// size: a field laid out at 10pt must not grow to the global maximum.
func (f *Filler) fitterFor(field *fieldRef) Fitter {
	fitter := f.fitter
	if field.FontSize > 0 && field.FontSize < fitter.MaxFontSize {
		fitter.MaxFontSize = field.FontSize
		if fitter.MinFontSize > fitter.MaxFontSize {
			fitter.MinFontSize = fitter.MaxFontSize
		}
	}
	return fitter
}

// fontNameFor picks the appearance font resource for a field, keeping
// whatever the template declared.
func (f *Filler) fontNameFor(field *fieldRef) string {
	if daObj, found := field.dict.Find("DA"); found {
		if da, ok := daObj.(types.StringLiteral); ok {
			if name, ok := parseDAFontName(da.Value()); ok {
				return name
			}
		}
	}
	return defaultFontName
}

// dropAppearances removes stale appearance streams so viewers regenerate
// them from the new value.
func dropAppearances(field *fieldRef) {
	for _, widget := range field.widgets {
		delete(widget, "AP")
	}
}

// indexFields maps fields by their fully qualified name, plus by their
// terminal partial name when that is unambiguous. The SSA templates nest
// fields under page nodes while callers address leaves directly.
func indexFields(fields []*fieldRef) map[string]*fieldRef {
	byName := make(map[string]*fieldRef, len(fields))
	shortCount := make(map[string]int)

	for _, field := range fields {
		byName[field.Name] = field
		if idx := strings.LastIndex(field.Name, "."); idx >= 0 {
			shortCount[field.Name[idx+1:]]++
		}
	}

	for _, field := range fields {
		idx := strings.LastIndex(field.Name, ".")
		if idx < 0 {
			continue
		}
		short := field.Name[idx+1:]
		if shortCount[short] == 1 {
			if _, taken := byName[short]; !taken {
				byName[short] = field
			}
		}
	}

	return byName
}

// isAffirmative reports whether a value should check a checkbox.
func isAffirmative(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "true", "1", "on", "checked":
		return true
	default:
		return false
	}
}

// formatFontSize renders a font size for a DA string without a trailing
// zero fraction ("11" rather than "11.0", but "10.5" stays).
func formatFontSize(size float64) string {
	s := fmt.Sprintf("%.2f", size)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}

// escapePDFText escapes a string for use inside a PDF literal string.
// Backslashes, parentheses and control characters are escaped; bytes
// outside ASCII are written as octal escapes of their UTF-8 encoding.
func escapePDFText(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, c := range []byte(s) {
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '(':
			b.WriteString(`\(`)
		case ')':
			b.WriteString(`\)`)
		case '\r':
			b.WriteString(`\r`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 || c > 0x7e {
				b.WriteString(fmt.Sprintf(`\%03o`, c))
			} else {
				b.WriteByte(c)
			}
		}
	}

	return b.String()
}
