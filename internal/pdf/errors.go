package pdf

import "errors"

// Sentinel errors for template resolution. Everything field-local (unknown
// names, overflow) is absorbed into the fill result instead of failing the
// request.
var (
	// ErrTemplateNotFound reports that a template name does not resolve to
	// a readable file in the templates directory.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrInvalidTemplate reports that a template file exists but is not a
	// parseable PDF carrying an interactive form.
	ErrInvalidTemplate = errors.New("invalid template")
)
