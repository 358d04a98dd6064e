package restdoc

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	tagValidator     *validator.Validate
	tagValidatorOnce sync.Once
)

func getTagValidator() *validator.Validate {
	tagValidatorOnce.Do(func() {
		tagValidator = validator.New(validator.WithRequiredStructEnabled())
	})
	return tagValidator
}

// Tag is a classified custom tag.
type Tag interface {
	// Name returns the full tag name, including TagPrefix.
	Name() string
	// Content returns the raw tag content.
	Content() string
}

// GenericTag keeps the raw content only. Labels and unknown tags use it.
type GenericTag struct {
	name    string
	content string
}

// NewGenericTag creates a GenericTag.
func NewGenericTag(name, content string) *GenericTag {
	return &GenericTag{name: name, content: content}
}

func (t *GenericTag) Name() string    { return t.name }
func (t *GenericTag) Content() string { return t.content }

// ParamTag is a key/value style tag: `[type] $variable description`.
// The variable is stored without its leading '$'. When no token starts with
// '$' the first token is taken as the variable.
type ParamTag struct {
	GenericTag
	Type        string
	Variable    string `validate:"required"`
	Description string
}

// ParseParamTag parses content with the ParamTag grammar.
func ParseParamTag(name, content string) (Tag, error) {
	tag := &ParamTag{GenericTag: GenericTag{name: name, content: content}}

	first, rest := nextToken(content)
	if !strings.HasPrefix(first, "$") {
		if second, after := nextToken(rest); strings.HasPrefix(second, "$") {
			tag.Type = first
			first, rest = second, after
		}
	}
	tag.Variable = strings.TrimPrefix(first, "$")
	tag.Description = strings.TrimSpace(rest)

	if err := validateTag(tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// QueryTag describes a query string parameter:
// `[type] $name[=default] [required] description`.
type QueryTag struct {
	GenericTag
	Type        string
	Param       string `validate:"required"`
	Default     string
	HasDefault  bool
	Required    bool
	Description string
}

// ParseQueryTag parses content with the QueryTag grammar.
func ParseQueryTag(name, content string) (Tag, error) {
	tag := &QueryTag{GenericTag: GenericTag{name: name, content: content}}

	first, rest := nextToken(content)
	if !strings.HasPrefix(first, "$") {
		if second, after := nextToken(rest); strings.HasPrefix(second, "$") {
			tag.Type = first
			first, rest = second, after
		}
	}
	param, def, hasDefault := strings.Cut(strings.TrimPrefix(first, "$"), "=")
	tag.Param, tag.Default, tag.HasDefault = param, def, hasDefault

	if word, after := nextToken(rest); strings.EqualFold(word, "required") {
		tag.Required = true
		rest = after
	}
	tag.Description = strings.TrimSpace(rest)

	if err := validateTag(tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// validateTag turns validator output into one short message per field.
func validateTag(tag Tag) error {
	err := getTagValidator().Struct(tag)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, ve := range verrs {
		msgs = append(msgs, fieldMessage(ve))
	}
	return fmt.Errorf("%w %q: %s", ErrMalformedTag, tag.Content(), strings.Join(msgs, ", "))
}

func fieldMessage(ve validator.FieldError) string {
	switch ve.Field() {
	case "Variable":
		return "missing variable name"
	case "Param":
		return "missing parameter name"
	}
	return fmt.Sprintf("%s failed on %s", strings.ToLower(ve.Field()), ve.Tag())
}

func parseGenericTag(name, content string) (Tag, error) {
	return NewGenericTag(name, content), nil
}

// nextToken splits s into its first whitespace separated token and the rest.
func nextToken(s string) (string, string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if i := strings.IndexFunc(s, unicode.IsSpace); i >= 0 {
		return s[:i], s[i:]
	}
	return s, ""
}
