package restdoc

import "github.com/example/restdoc/pkg/docblock"

// Declaration is the reflective view of a documented type or method.
type Declaration interface {
	// Name returns the fully qualified name. It is only used in messages.
	Name() string
	IsAbstract() bool
	// Parent returns the parent declaration, if any.
	Parent() (Declaration, bool)
	// DocComment returns the raw documentation comment, if any.
	DocComment() (string, bool)
}

// Instantiator is implemented by declarations able to create instances of the
// declared type. It backs Doc.Materialize.
type Instantiator interface {
	Instantiate(args ...any) (any, error)
	Configure(instance any, config map[string]any) (any, error)
}

// CommentParser turns raw comment text into a docblock.Block.
// *docblock.Parser is the default implementation.
type CommentParser interface {
	Parse(text string) (*docblock.Block, error)
}
