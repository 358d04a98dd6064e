package source

import (
	"github.com/example/restdoc/pkg/restdoc"
)

// Kind classifies a declaration.
type Kind int

const (
	KindStruct Kind = iota
	KindInterface
	KindType
	KindFunc
	KindMethod
)

func (k Kind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindInterface:
		return "interface"
	case KindType:
		return "type"
	case KindFunc:
		return "func"
	case KindMethod:
		return "method"
	}
	return "unknown"
}

// Decl is a declaration found by an Index. It implements
// restdoc.Declaration and restdoc.Instantiator.
type Decl struct {
	index    *Index
	pkg      string
	name     string
	recv     string // receiver type for methods
	kind     Kind
	abstract bool
	embedded []string // qualified names, in field order
	doc      string
	hasDoc   bool
	file     string
	line     int
}

var (
	_ restdoc.Declaration  = (*Decl)(nil)
	_ restdoc.Instantiator = (*Decl)(nil)
)

// Name returns "pkg.Type", "pkg.Func" or "pkg.Type.Method".
func (d *Decl) Name() string {
	if d.recv != "" {
		return d.pkg + "." + d.recv + "." + d.name
	}
	return d.pkg + "." + d.name
}

// Package returns the package name.
func (d *Decl) Package() string { return d.pkg }

// Kind returns the declaration kind.
func (d *Decl) Kind() Kind { return d.kind }

// Position returns the file and line of the declaration.
func (d *Decl) Position() (string, int) { return d.file, d.line }

// IsAbstract reports true for interfaces and interface methods.
func (d *Decl) IsAbstract() bool {
	return d.kind == KindInterface || d.abstract
}

// DocComment returns the raw comment, markers included.
func (d *Decl) DocComment() (string, bool) {
	return d.doc, d.hasDoc
}

// Parent returns the first embedded type known to the index. For methods it
// is the nearest ancestor of the receiver declaring a method of the same name.
func (d *Decl) Parent() (restdoc.Declaration, bool) {
	p := d.parent()
	if p == nil {
		return nil, false
	}
	return p, true
}

func (d *Decl) parent() *Decl {
	if d.kind != KindMethod {
		return d.parentType()
	}

	owner, ok := d.index.Lookup(d.pkg + "." + d.recv)
	if !ok {
		return nil
	}
	seen := map[string]bool{owner.Name(): true}
	for t := owner.parentType(); t != nil && !seen[t.Name()]; t = t.parentType() {
		seen[t.Name()] = true
		if m, ok := d.index.Lookup(t.Name() + "." + d.name); ok {
			return m
		}
	}
	return nil
}

func (d *Decl) parentType() *Decl {
	for _, name := range d.embedded {
		if p, ok := d.index.Lookup(name); ok {
			return p
		}
	}
	return nil
}
