package pdf

import (
	"fmt"

	"github.com/formworks/ssa-form-filler/internal/pdf/security"
)

// Service handles form-filling operations by orchestrating the template
// catalog, validator, and filler
type Service struct {
	serviceName     string
	version         string
	defaultTemplate string

	defaults      LineLimits
	validator     *Validator
	templates     *Templates
	filler        *Filler
	pathValidator *security.PathValidator
}

// ServiceConfig carries the settings a Service needs
type ServiceConfig struct {
	ServiceName       string
	Version           string
	TemplateDirectory string
	DefaultTemplate   string
	MaxTemplateSize   int64
	Fitter            Fitter
	Defaults          LineLimits
}

// NewService creates a new form-filling service with all components
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.TemplateDirectory == "" {
		return nil, fmt.Errorf("template directory cannot be empty")
	}
	if cfg.MaxTemplateSize <= 0 {
		return nil, fmt.Errorf("maximum template size must be positive")
	}

	pathValidator, err := security.NewPathValidator(cfg.TemplateDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	validator := NewValidator(cfg.MaxTemplateSize)

	return &Service{
		serviceName:     cfg.ServiceName,
		version:         cfg.Version,
		defaultTemplate: cfg.DefaultTemplate,
		defaults:        cfg.Defaults,
		validator:       validator,
		templates:       NewTemplates(cfg.TemplateDirectory, validator),
		filler:          NewFiller(cfg.Fitter, cfg.Defaults),
		pathValidator:   pathValidator,
	}, nil
}

// FillForm fills a template with the requested field values and returns the
// serialized document plus any skipped-field and overflow metadata
func (s *Service) FillForm(req FormFillRequest) (*FormFillResult, error) {
	name := req.TemplateName
	if name == "" {
		name = s.defaultTemplate
	}

	path, err := s.templates.Resolve(name)
	if err != nil {
		return nil, err
	}
	if err := s.pathValidator.ValidatePath(path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	if err := s.validator.ValidateTemplate(path); err != nil {
		return nil, err
	}

	result, err := s.filler.Fill(path, req)
	if err != nil {
		return nil, err
	}

	result.TemplateName = name
	return result, nil
}

// TemplateFields lists the form fields of a template
func (s *Service) TemplateFields(req TemplateFieldsRequest) (*TemplateFieldsResult, error) {
	name := req.TemplateName
	if name == "" {
		name = s.defaultTemplate
	}

	path, err := s.templates.Resolve(name)
	if err != nil {
		return nil, err
	}
	if err := s.pathValidator.ValidatePath(path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	if err := s.validator.ValidateTemplate(path); err != nil {
		return nil, err
	}

	ctx, err := readTemplateContext(path)
	if err != nil {
		return nil, err
	}

	refs, err := collectFormFields(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}

	fields := make([]FormField, len(refs))
	for i, ref := range refs {
		fields[i] = ref.FormField
	}

	return &TemplateFieldsResult{
		TemplateName: name,
		Path:         path,
		Fields:       fields,
	}, nil
}

// ListTemplates lists the templates available in the configured directory
func (s *Service) ListTemplates(_ TemplateListRequest) (*TemplateListResult, error) {
	return s.templates.List()
}

// LineLimits reports the default line-limit table
func (s *Service) LineLimits() *LineLimitsResult {
	table := s.defaults.Table()
	return &LineLimitsResult{
		Limits: table,
		Count:  len(table),
	}
}

// ServiceInfo describes the running service, its templates, and defaults
func (s *Service) ServiceInfo() (*ServiceInfoResult, error) {
	list, err := s.templates.List()
	if err != nil {
		return nil, err
	}

	return &ServiceInfoResult{
		ServiceName:       s.serviceName,
		Version:           s.version,
		TemplateDirectory: s.templates.Directory(),
		DefaultTemplate:   s.defaultTemplate,
		Templates:         list.Templates,
		LineLimitCount:    s.defaults.Len(),
	}, nil
}

// DefaultTemplate returns the configured default template name
func (s *Service) DefaultTemplate() string {
	return s.defaultTemplate
}

// IsValidTemplate performs a quick validation check on a template file
func (s *Service) IsValidTemplate(filePath string) bool {
	return s.validator.IsValidTemplate(filePath)
}
