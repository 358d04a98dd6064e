package restdoc

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingDocumentation indicates the declaration has no usable doc comment.
	ErrMissingDocumentation = errors.New("missing documentation")
	// ErrIgnored indicates the declaration opted out with @restdoc-ignore.
	ErrIgnored = errors.New("ignored by directive")
	// ErrAbstract indicates the declaration is abstract.
	ErrAbstract = errors.New("abstract declaration")
	// ErrProcessing indicates tag classification or the Processor hook failed.
	ErrProcessing = errors.New("processing failure")

	// ErrUnknownAttribute is returned by Doc.Attr for names that resolve to nothing.
	ErrUnknownAttribute = errors.New("unknown attribute")
	// ErrInvalidDeclaration indicates New was called with unusable arguments.
	ErrInvalidDeclaration = errors.New("invalid declaration")
	// ErrNotInstantiable indicates the declaration cannot create instances.
	ErrNotInstantiable = errors.New("declaration is not instantiable")
	// ErrMalformedTag indicates tag content that does not fit its grammar.
	ErrMalformedTag = errors.New("malformed tag content")
)

// InvalidError describes why a Doc is not a valid documentation target.
// Its message is the human readable reason; Kind is one of the sentinel
// errors above.
type InvalidError struct {
	Kind    error
	Name    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *InvalidError) Error() string {
	return e.Message
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *InvalidError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// UnknownAttributeError is returned when an attribute name is neither a tag
// key, a description nor a base attribute.
type UnknownAttributeError struct {
	Declaration string
	Attribute   string
}

func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("%s: unknown attribute %q", e.Declaration, e.Attribute)
}

// Is makes errors.Is(err, ErrUnknownAttribute) succeed.
func (e *UnknownAttributeError) Is(target error) bool {
	return target == ErrUnknownAttribute
}
