// Package source indexes Go declarations and their doc comments so they can
// be resolved with package restdoc.
//
// Struct types inherit from their first embedded type, interfaces from their
// first embedded interface, and methods from the same-named method on the
// receiver's ancestors. Interfaces and interface methods are abstract.
package source

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// Index holds the declarations found in parsed Go files, keyed by
// fully-qualified name ("pkg.Type" or "pkg.Type.Method").
//
// Parsing is not safe for concurrent use; lookups and bindings are.
type Index struct {
	fset    *token.FileSet
	exclude []string
	logger  *slog.Logger

	decls map[string]*Decl

	mu       sync.RWMutex
	bindings map[string]*binding
}

// IndexOption configures NewIndex.
type IndexOption func(*Index)

// WithExclude skips files and directories matching any of the doublestar
// patterns, evaluated against the slash separated path relative to the
// directory given to ParseDirectory.
func WithExclude(patterns ...string) IndexOption {
	return func(ix *Index) { ix.exclude = append(ix.exclude, patterns...) }
}

// WithLogger sets the logger used to report skipped files.
func WithLogger(l *slog.Logger) IndexOption {
	return func(ix *Index) { ix.logger = l }
}

// NewIndex allocates a new instance.
func NewIndex(opts ...IndexOption) *Index {
	ix := &Index{
		fset:     token.NewFileSet(),
		logger:   slog.Default(),
		decls:    make(map[string]*Decl),
		bindings: make(map[string]*binding),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// ParseDirectory walks dir recursively and parses every non-test Go file.
// vendor, testdata and hidden directories are skipped, as are files that fail
// to parse.
func (ix *Index) ParseDirectory(dir string) error {
	for _, pattern := range ix.exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	return filepath.WalkDir(dir, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ix.excluded(dir, path) {
			if de.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if de.IsDir() {
			name := de.Name()
			if path != dir && (name == "vendor" || name == "testdata" || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		if err := ix.ParseFile(path, nil); err != nil {
			ix.logger.Warn("skipping file", "path", path, "error", err)
		}
		return nil
	})
}

func (ix *Index) excluded(root, path string) bool {
	if len(ix.exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range ix.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// ParseFile parses a single file. src follows go/parser.ParseFile: when nil
// the file is read from disk.
func (ix *Index) ParseFile(filename string, src any) error {
	if src == nil {
		data, err := os.ReadFile(filepath.Clean(filename))
		if err != nil {
			return err
		}
		src = data
	}
	file, err := parser.ParseFile(ix.fset, filename, src, parser.ParseComments)
	if err != nil {
		return fmt.Errorf("parse %s: %w", filename, err)
	}
	ix.addFile(file)
	return nil
}

// Lookup returns the declaration with the given fully-qualified name.
func (ix *Index) Lookup(name string) (*Decl, bool) {
	d, ok := ix.decls[name]
	return d, ok
}

// Decls returns every declaration ordered by name.
func (ix *Index) Decls() []*Decl {
	out := make([]*Decl, 0, len(ix.decls))
	for _, d := range ix.decls {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Len returns the number of indexed declarations.
func (ix *Index) Len() int {
	return len(ix.decls)
}

func (ix *Index) addFile(file *ast.File) {
	pkg := file.Name.Name
	for _, decl := range file.Decls {
		switch decl := decl.(type) {
		case *ast.GenDecl:
			if decl.Tok != token.TYPE {
				continue
			}
			for _, spec := range decl.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				doc := ts.Doc
				if doc == nil && !decl.Lparen.IsValid() {
					doc = decl.Doc
				}
				ix.addType(pkg, ts, doc)
			}
		case *ast.FuncDecl:
			ix.addFunc(pkg, decl)
		}
	}
}

func (ix *Index) addType(pkg string, ts *ast.TypeSpec, doc *ast.CommentGroup) {
	d := ix.newDecl(pkg, ts.Name.Name, "", ts.Pos(), doc)

	switch t := ts.Type.(type) {
	case *ast.StructType:
		d.kind = KindStruct
		for _, fld := range t.Fields.List {
			if len(fld.Names) == 0 {
				d.embedded = append(d.embedded, qualify(pkg, typeName(fld.Type)))
			}
		}
	case *ast.InterfaceType:
		d.kind = KindInterface
		for _, m := range t.Methods.List {
			if len(m.Names) == 0 {
				d.embedded = append(d.embedded, qualify(pkg, typeName(m.Type)))
				continue
			}
			for _, n := range m.Names {
				md := ix.newDecl(pkg, n.Name, ts.Name.Name, n.Pos(), m.Doc)
				md.kind = KindMethod
				md.abstract = true
				ix.add(md)
			}
		}
	default:
		d.kind = KindType
	}
	ix.add(d)
}

func (ix *Index) addFunc(pkg string, fn *ast.FuncDecl) {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		d := ix.newDecl(pkg, fn.Name.Name, "", fn.Pos(), fn.Doc)
		d.kind = KindFunc
		ix.add(d)
		return
	}
	recv := typeName(fn.Recv.List[0].Type)
	if recv == "" {
		return
	}
	d := ix.newDecl(pkg, fn.Name.Name, recv, fn.Pos(), fn.Doc)
	d.kind = KindMethod
	ix.add(d)
}

func (ix *Index) newDecl(pkg, name, recv string, pos token.Pos, doc *ast.CommentGroup) *Decl {
	p := ix.fset.Position(pos)
	d := &Decl{index: ix, pkg: pkg, name: name, recv: recv, file: p.Filename, line: p.Line}
	d.doc, d.hasDoc = rawComment(doc)
	return d
}

// add keeps the first declaration seen for a name.
func (ix *Index) add(d *Decl) {
	name := d.Name()
	if prev, ok := ix.decls[name]; ok {
		ix.logger.Debug("duplicate declaration", "name", name, "kept", prev.file, "dropped", d.file)
		return
	}
	ix.decls[name] = d
}

// rawComment keeps comment markers so the docblock parser sees the source
// text; compiler directives are dropped.
func rawComment(cg *ast.CommentGroup) (string, bool) {
	if cg == nil {
		return "", false
	}
	lines := make([]string, 0, len(cg.List))
	for _, c := range cg.List {
		if strings.HasPrefix(c.Text, "//go:") {
			continue
		}
		lines = append(lines, c.Text)
	}
	if len(lines) == 0 {
		return "", false
	}
	return strings.Join(lines, "\n"), true
}

// typeName returns the (possibly package qualified) name of a type
// expression, ignoring pointers and type arguments.
func typeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return typeName(t.X)
	case *ast.SelectorExpr:
		if x, ok := t.X.(*ast.Ident); ok {
			return x.Name + "." + t.Sel.Name
		}
	case *ast.IndexExpr:
		return typeName(t.X)
	case *ast.IndexListExpr:
		return typeName(t.X)
	}
	return ""
}

func qualify(pkg, name string) string {
	if name == "" || strings.Contains(name, ".") {
		return name
	}
	return pkg + "." + name
}
