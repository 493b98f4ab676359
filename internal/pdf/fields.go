package pdf

import (
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Text field flag bits (PDF 32000-1, table 228)
const (
	fieldFlagReadOnly   = 1 << 0
	fieldFlagRequired   = 1 << 1
	fieldFlagMultiline  = 1 << 12
	fieldFlagRadio      = 1 << 15
	fieldFlagPushbutton = 1 << 16
)

// fieldRef pairs a field descriptor with the dictionaries that must be
// mutated when the field is filled.
type fieldRef struct {
	FormField

	// dict is the field dictionary carrying T/FT/V/DA.
	dict types.Dict

	// widgets holds the widget annotation dictionaries whose appearance
	// streams go stale once the value changes. For merged field/widget
	// dictionaries this contains dict itself.
	widgets []types.Dict
}

// collectFormFields enumerates the template's AcroForm fields, descending
// into hierarchical fields and qualifying child names with dots.
func collectFormFields(ctx *model.Context) ([]*fieldRef, error) {
	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return nil, fmt.Errorf("no AcroForm dictionary in document")
	}

	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroFormDict == nil {
		return nil, fmt.Errorf("empty AcroForm dictionary")
	}

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return nil, fmt.Errorf("no Fields array in AcroForm")
	}

	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference Fields array: %w", err)
	}

	var fields []*fieldRef
	for _, fieldObj := range fieldsArray {
		collected, err := collectField(ctx, fieldObj, "")
		if err != nil {
			// A malformed entry must not hide the remaining fields.
			continue
		}
		fields = append(fields, collected...)
	}

	return fields, nil
}

// acroFormDict returns the document's AcroForm dictionary for mutation.
func acroFormDict(ctx *model.Context) (types.Dict, error) {
	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return nil, fmt.Errorf("no AcroForm dictionary in document")
	}

	return ctx.DereferenceDict(acroFormObj)
}

// collectField processes one entry of a Fields or Kids array. Terminal
// fields yield a single ref; intermediate nodes recurse into their kids.
func collectField(ctx *model.Context, fieldObj types.Object, parentName string) ([]*fieldRef, error) {
	fieldDict, err := ctx.DereferenceDict(fieldObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference field: %w", err)
	}
	if fieldDict == nil {
		return nil, nil
	}

	name := parentName
	if nameObj, found := fieldDict.Find("T"); found {
		if partial, err := ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil); err == nil {
			if name == "" {
				name = partial
			} else {
				name = name + "." + partial
			}
		}
	}

	// A node whose kids are fields themselves (they carry a T entry) is an
	// intermediate field; its kids are enumerated under the qualified name.
	if kidsObj, found := fieldDict.Find("Kids"); found {
		if kidsArray, err := ctx.DereferenceArray(kidsObj); err == nil && len(kidsArray) > 0 {
			if kidsAreFields(ctx, kidsArray) {
				var fields []*fieldRef
				for _, kid := range kidsArray {
					collected, err := collectField(ctx, kid, name)
					if err != nil {
						continue
					}
					fields = append(fields, collected...)
				}
				return fields, nil
			}
		}
	}

	field := &fieldRef{dict: fieldDict}
	field.Name = name
	field.Kind = extractFieldKind(ctx, fieldDict)

	if valueObj, found := fieldDict.Find("V"); found {
		if val, err := ctx.DereferenceStringOrHexLiteral(valueObj, model.V10, nil); err == nil {
			field.Value = val
		} else if nameVal, err := ctx.DereferenceName(valueObj, model.V10, nil); err == nil {
			// Button values are names such as /Yes and /Off.
			field.Value = string(nameVal)
		}
	}
	if defaultObj, found := fieldDict.Find("DV"); found {
		if val, err := ctx.DereferenceStringOrHexLiteral(defaultObj, model.V10, nil); err == nil {
			field.DefaultValue = val
		}
	}

	if flagsObj, found := fieldDict.Find("Ff"); found {
		if flags, err := ctx.DereferenceInteger(flagsObj); err == nil && flags != nil {
			flagValue := *flags
			field.ReadOnly = (flagValue & fieldFlagReadOnly) != 0
			field.Required = (flagValue & fieldFlagRequired) != 0
			field.Multiline = (flagValue & fieldFlagMultiline) != 0
		}
	}

	if maxLenObj, found := fieldDict.Find("MaxLen"); found {
		if maxLen, err := ctx.DereferenceInteger(maxLenObj); err == nil && maxLen != nil {
			field.MaxLen = int(*maxLen)
		}
	}

	field.Width, field.Height, field.widgets = extractFieldGeometry(ctx, fieldDict)
	field.FontSize = extractFontSize(ctx, fieldDict)

	return []*fieldRef{field}, nil
}

// kidsAreFields reports whether the kids of a field are fields in their
// own right (hierarchical form) rather than plain widget annotations.
func kidsAreFields(ctx *model.Context, kids types.Array) bool {
	for _, kid := range kids {
		kidDict, err := ctx.DereferenceDict(kid)
		if err != nil || kidDict == nil {
			return false
		}
		if _, found := kidDict.Find("T"); !found {
			return false
		}
	}
	return len(kids) > 0
}

// extractFieldKind determines the field kind from the FT entry, consulting
// the parent chain for inherited types.
func extractFieldKind(ctx *model.Context, fieldDict types.Dict) FieldKind {
	ftObj, found := fieldDict.Find("FT")
	if !found {
		if parentObj, found := fieldDict.Find("Parent"); found {
			if parentDict, err := ctx.DereferenceDict(parentObj); err == nil && parentDict != nil {
				return extractFieldKind(ctx, parentDict)
			}
		}
		return FieldKindUnknown
	}

	ftName, err := ctx.DereferenceName(ftObj, model.V10, nil)
	if err != nil {
		return FieldKindUnknown
	}

	switch ftName {
	case "Btn":
		if flagsObj, found := fieldDict.Find("Ff"); found {
			if flags, err := ctx.DereferenceInteger(flagsObj); err == nil && flags != nil {
				flagValue := *flags
				if (flagValue & fieldFlagRadio) != 0 {
					return FieldKindRadio
				} else if (flagValue & fieldFlagPushbutton) != 0 {
					return FieldKindButton
				}
			}
		}
		return FieldKindCheckbox
	case "Tx":
		return FieldKindText
	case "Ch":
		return FieldKindChoice
	case "Sig":
		return FieldKindSignature
	default:
		return FieldKindUnknown
	}
}

// extractFieldGeometry finds the field's widget rectangle(s). Merged
// field/widget dictionaries carry Rect directly; otherwise the first
// widget kid provides the bounds. All widget dictionaries are returned so
// stale appearances can be dropped after a value change.
func extractFieldGeometry(ctx *model.Context, fieldDict types.Dict) (width, height float64, widgets []types.Dict) {
	if rectObj, found := fieldDict.Find("Rect"); found {
		if w, h, ok := parseRect(ctx, rectObj); ok {
			return w, h, []types.Dict{fieldDict}
		}
	}

	kidsObj, found := fieldDict.Find("Kids")
	if !found {
		return 0, 0, []types.Dict{fieldDict}
	}

	kidsArray, err := ctx.DereferenceArray(kidsObj)
	if err != nil {
		return 0, 0, []types.Dict{fieldDict}
	}

	for _, kid := range kidsArray {
		widgetDict, err := ctx.DereferenceDict(kid)
		if err != nil || widgetDict == nil {
			continue
		}
		widgets = append(widgets, widgetDict)
		if width == 0 {
			if rectObj, found := widgetDict.Find("Rect"); found {
				if w, h, ok := parseRect(ctx, rectObj); ok {
					width, height = w, h
				}
			}
		}
	}

	if len(widgets) == 0 {
		widgets = []types.Dict{fieldDict}
	}
	return width, height, widgets
}

// parseRect reads a [llx lly urx ury] rectangle into width and height.
func parseRect(ctx *model.Context, rectObj types.Object) (width, height float64, ok bool) {
	rectArray, err := ctx.DereferenceArray(rectObj)
	if err != nil || len(rectArray) != 4 {
		return 0, 0, false
	}

	coords := make([]float64, 4)
	for i, coord := range rectArray {
		if f, err := ctx.DereferenceNumber(coord); err == nil {
			coords[i] = f
		}
	}

	return coords[2] - coords[0], coords[3] - coords[1], true
}

// extractFontSize reads the font size from the field's default appearance
// string, falling back to the AcroForm-wide DA. Returns 0 when no size is
// declared (or the declared size is the "auto" marker 0).
func extractFontSize(ctx *model.Context, fieldDict types.Dict) float64 {
	if daObj, found := fieldDict.Find("DA"); found {
		if da, err := ctx.DereferenceStringOrHexLiteral(daObj, model.V10, nil); err == nil {
			if size, ok := parseDAFontSize(da); ok {
				return size
			}
		}
	}

	if acroDict, err := acroFormDict(ctx); err == nil && acroDict != nil {
		if daObj, found := acroDict.Find("DA"); found {
			if da, err := ctx.DereferenceStringOrHexLiteral(daObj, model.V10, nil); err == nil {
				if size, ok := parseDAFontSize(da); ok {
					return size
				}
			}
		}
	}

	return 0
}

// parseDAFontSize extracts the size operand of the Tf operator from a
// default appearance string such as "/Helv 11 Tf 0 g".
func parseDAFontSize(da string) (float64, bool) {
	parts := strings.Fields(da)
	for i, part := range parts {
		if part == "Tf" && i >= 1 {
			if size, err := parseFloat(parts[i-1]); err == nil {
				return size, size > 0
			}
		}
	}
	return 0, false
}

// parseDAFontName extracts the font resource name of the Tf operator from
// a default appearance string. The leading slash is stripped.
func parseDAFontName(da string) (string, bool) {
	parts := strings.Fields(da)
	for i, part := range parts {
		if part == "Tf" && i >= 2 && strings.HasPrefix(parts[i-2], "/") {
			return strings.TrimPrefix(parts[i-2], "/"), true
		}
	}
	return "", false
}

// parseFloat is a helper to parse a float from a string
func parseFloat(s string) (float64, error) {
	var f float64
	_, err := fmt.Sscanf(s, "%f", &f)
	return f, err
}
