package pdf

import "strconv"

// FieldKind represents the type of a form field
type FieldKind string

const (
	FieldKindText      FieldKind = "text"
	FieldKindCheckbox  FieldKind = "checkbox"
	FieldKindRadio     FieldKind = "radio"
	FieldKindChoice    FieldKind = "choice"
	FieldKindButton    FieldKind = "button"
	FieldKindSignature FieldKind = "signature"
	FieldKindUnknown   FieldKind = "unknown"
)

// FormField describes an interactive form field found in a template
type FormField struct {
	Name         string    `json:"name"`
	Kind         FieldKind `json:"kind"`
	Value        string    `json:"value,omitempty"`
	DefaultValue string    `json:"default_value,omitempty"`
	Width        float64   `json:"width"`
	Height       float64   `json:"height"`
	FontSize     float64   `json:"font_size,omitempty"`
	Multiline    bool      `json:"multiline"`
	MaxLen       int       `json:"max_len,omitempty"`
	ReadOnly     bool      `json:"read_only"`
	Required     bool      `json:"required"`
}

// TemplateInfo describes one template file in the templates directory
type TemplateInfo struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// Request Types

// FormFillRequest represents a request to fill a form template
type FormFillRequest struct {
	// TemplateName is the template file name inside the templates
	// directory. Empty selects the configured default template.
	TemplateName string `json:"template_name,omitempty"`

	// Fields maps field names to the text to fill in.
	Fields map[string]string `json:"fields"`

	// LineLimits optionally overrides the default per-field line limits.
	LineLimits map[string]int `json:"line_limits,omitempty"`
}

// FieldValueText renders a JSON-decoded field value as fill text. Strings
// pass through; numbers and booleans are coerced to their string forms so
// lenient clients can send scalars. ok is false for arrays and objects.
func FieldValueText(value interface{}) (text string, ok bool) {
	switch v := value.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

// TemplateFieldsRequest represents a request to list a template's fields
type TemplateFieldsRequest struct {
	TemplateName string `json:"template_name,omitempty"`
}

// TemplateListRequest represents a request to list available templates
type TemplateListRequest struct{}

// Response Types

// FieldOverflow records text dropped from one field during a fill
type FieldOverflow struct {
	Field          string `json:"field"`
	TotalLines     int    `json:"total_lines"`
	DisplayedLines int    `json:"displayed_lines"`
	DroppedLines   int    `json:"dropped_lines"`
	DroppedText    string `json:"dropped_text,omitempty"`
}

// FormFillResult represents the outcome of a fill operation
type FormFillResult struct {
	TemplateName string `json:"template_name"`

	// PDF holds the filled document.
	PDF []byte `json:"-"`

	// FilledCount is the number of fields that received a value.
	FilledCount int `json:"filled_count"`

	// UnknownFields lists requested field names absent from the template.
	// They are skipped, never fatal.
	UnknownFields []string `json:"unknown_fields,omitempty"`

	// Overflow reports text truncated to honor line limits.
	Overflow []FieldOverflow `json:"overflow,omitempty"`
}

// TemplateFieldsResult lists the fields of one template
type TemplateFieldsResult struct {
	TemplateName string      `json:"template_name"`
	Path         string      `json:"path"`
	Fields       []FormField `json:"fields"`
}

// TemplateListResult lists the available templates
type TemplateListResult struct {
	Directory  string         `json:"directory"`
	Templates  []TemplateInfo `json:"templates"`
	TotalCount int            `json:"total_count"`
}

// LineLimitsResult reports the default line-limit table
type LineLimitsResult struct {
	Limits map[string]int `json:"default_line_limits"`
	Count  int            `json:"total_fields_with_limits"`
}

// ServiceInfoResult describes the running service and its templates
type ServiceInfoResult struct {
	ServiceName       string         `json:"service_name"`
	Version           string         `json:"version"`
	TemplateDirectory string         `json:"template_directory"`
	DefaultTemplate   string         `json:"default_template"`
	Templates         []TemplateInfo `json:"templates"`
	LineLimitCount    int            `json:"line_limit_count"`
}
