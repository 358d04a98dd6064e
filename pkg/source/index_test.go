package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/restdoc/pkg/restdoc"
)

const controllers = `package api

// BaseController holds shared behaviour.
//
// Every controller embeds it.
type BaseController struct{}

// List returns a page of items.
// @restdoc-query int $page=1 Page number
func (c *BaseController) List() {}

// UserController manages users.
// @restdoc-label public
type UserController struct {
	*BaseController
	Name string
}

// @inheritdoc
func (c *UserController) List() {}

// AdminController manages admins.
// @inheritdoc
type AdminController struct {
	UserController
}

//go:generate echo hi
// Hidden is not documented for clients.
// @restdoc-ignore
type Hidden struct{}

type Undocumented struct{}

/**
 * Resource is anything addressable.
 */
type Resource interface {
	// URL returns the canonical address.
	URL() string
}

// Item is a resource.
type Item interface {
	Resource
}

type (
	// ID identifies things.
	ID string
)

// Ping answers health checks.
func Ping() {}
`

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	ix := NewIndex()
	require.NoError(t, ix.ParseFile("controllers.go", controllers))
	return ix
}

func TestIndexDeclarations(t *testing.T) {
	ix := newTestIndex(t)

	var names []string
	for _, d := range ix.Decls() {
		names = append(names, d.Name())
	}
	assert.Equal(t, []string{
		"api.AdminController",
		"api.BaseController",
		"api.BaseController.List",
		"api.Hidden",
		"api.ID",
		"api.Item",
		"api.Ping",
		"api.Resource",
		"api.Resource.URL",
		"api.Undocumented",
		"api.UserController",
		"api.UserController.List",
	}, names)
	assert.Equal(t, len(names), ix.Len())
}

func TestDeclKinds(t *testing.T) {
	ix := newTestIndex(t)

	tests := []struct {
		name     string
		kind     Kind
		abstract bool
	}{
		{"api.UserController", KindStruct, false},
		{"api.Resource", KindInterface, true},
		{"api.Resource.URL", KindMethod, true},
		{"api.UserController.List", KindMethod, false},
		{"api.ID", KindType, false},
		{"api.Ping", KindFunc, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := ix.Lookup(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.kind, d.Kind())
			assert.Equal(t, tt.abstract, d.IsAbstract())
			assert.Equal(t, "api", d.Package())
		})
	}
}

func TestDeclDocComment(t *testing.T) {
	ix := newTestIndex(t)

	d, _ := ix.Lookup("api.Undocumented")
	_, ok := d.DocComment()
	assert.False(t, ok)

	d, _ = ix.Lookup("api.Hidden")
	text, ok := d.DocComment()
	require.True(t, ok)
	assert.NotContains(t, text, "go:generate")

	d, _ = ix.Lookup("api.ID")
	text, ok = d.DocComment()
	require.True(t, ok)
	assert.Equal(t, "// ID identifies things.", text)

	file, line := d.Position()
	assert.Equal(t, "controllers.go", file)
	assert.Positive(t, line)
}

func TestDeclParent(t *testing.T) {
	ix := newTestIndex(t)

	tests := []struct {
		name   string
		parent string
	}{
		{"api.AdminController", "api.UserController"},
		{"api.UserController", "api.BaseController"},
		{"api.BaseController", ""},
		{"api.Item", "api.Resource"},
		{"api.UserController.List", "api.BaseController.List"},
		{"api.BaseController.List", ""},
		{"api.Ping", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := ix.Lookup(tt.name)
			require.True(t, ok)
			p, ok := d.Parent()
			if tt.parent == "" {
				assert.False(t, ok)
				assert.Nil(t, p)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.parent, p.Name())
		})
	}
}

func TestResolveWithRestdoc(t *testing.T) {
	ix := newTestIndex(t)

	admin, _ := ix.Lookup("api.AdminController")
	doc, err := restdoc.New(admin)
	require.NoError(t, err)
	assert.True(t, doc.IsValid())
	assert.Equal(t, "AdminController manages admins.", doc.ShortDescription())

	list, _ := ix.Lookup("api.UserController.List")
	doc, err = restdoc.New(list)
	require.NoError(t, err)
	assert.Equal(t, "List returns a page of items.", doc.ShortDescription())
	require.NotNil(t, doc.Parent())
	assert.Len(t, doc.Parent().TagGroup("query"), 1)

	hidden, _ := ix.Lookup("api.Hidden")
	doc, err = restdoc.New(hidden)
	require.NoError(t, err)
	assert.ErrorIs(t, doc.Err(), restdoc.ErrIgnored)

	res, _ := ix.Lookup("api.Resource")
	doc, err = restdoc.New(res)
	require.NoError(t, err)
	assert.ErrorIs(t, doc.Err(), restdoc.ErrAbstract)
	assert.Equal(t, "Resource is anything addressable.", doc.ShortDescription())
}

func TestParseDirectory(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, content string) {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	write("a.go", "package a\n\n// A doc.\ntype A struct{}\n")
	write("a_test.go", "package a\n\n// T doc.\ntype T struct{}\n")
	write("broken.go", "package a\n\ntype {")
	write("sub/b.go", "package b\n\n// B doc.\ntype B struct{}\n")
	write("vendor/v/v.go", "package v\n\ntype V struct{}\n")
	write("testdata/x.go", "package x\n\ntype X struct{}\n")
	write("gen/c.go", "package c\n\ntype C struct{}\n")

	ix := NewIndex(WithExclude("gen/**"))
	require.NoError(t, ix.ParseDirectory(dir))

	var names []string
	for _, d := range ix.Decls() {
		names = append(names, d.Name())
	}
	assert.Equal(t, []string{"a.A", "b.B"}, names)
}

func TestParseDirectoryInvalidPattern(t *testing.T) {
	ix := NewIndex(WithExclude("[unclosed"))
	assert.Error(t, ix.ParseDirectory(t.TempDir()))
}
