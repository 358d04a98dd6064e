package restdoc

import (
	"errors"
	"sync/atomic"

	"github.com/example/restdoc/pkg/docblock"
)

// fakeDecl is an in-memory Declaration.
type fakeDecl struct {
	name     string
	abstract bool
	parent   *fakeDecl
	comment  *string

	parentCalls atomic.Int32
}

func (f *fakeDecl) Name() string     { return f.name }
func (f *fakeDecl) IsAbstract() bool { return f.abstract }

func (f *fakeDecl) Parent() (Declaration, bool) {
	f.parentCalls.Add(1)
	if f.parent == nil {
		return nil, false
	}
	return f.parent, true
}

func (f *fakeDecl) DocComment() (string, bool) {
	if f.comment == nil {
		return "", false
	}
	return *f.comment, true
}

func decl(name, comment string) *fakeDecl {
	return &fakeDecl{name: name, comment: &comment}
}

// widget is the type fakeFactory builds.
type widget struct {
	Args  []any
	Title string
}

// fakeFactory adds Instantiator to fakeDecl.
type fakeFactory struct {
	*fakeDecl
	configured bool
}

func (f *fakeFactory) Instantiate(args ...any) (any, error) {
	return &widget{Args: args}, nil
}

func (f *fakeFactory) Configure(instance any, config map[string]any) (any, error) {
	f.configured = true
	w := instance.(*widget)
	title, ok := config["Title"].(string)
	if !ok {
		return nil, errors.New("title must be a string")
	}
	w.Title = title
	return w, nil
}

// countingParser records how often Parse is invoked.
type countingParser struct {
	calls atomic.Int32
}

func (p *countingParser) Parse(text string) (*docblock.Block, error) {
	p.calls.Add(1)
	return docblock.Parse(text)
}
