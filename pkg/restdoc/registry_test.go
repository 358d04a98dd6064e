package restdoc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			RegisterDefaults()
		}()
	}
	wg.Wait()

	r := DefaultRegistry()
	assert.Same(t, r, DefaultRegistry())
	assert.Equal(t, []string{"field", "field-use-as", "label", "link", "query"}, r.Suffixes())
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Suffixes())

	r.Register("query", QueryHandler)
	r.Register("query", QueryHandler)
	assert.Equal(t, []string{"query"}, r.Suffixes())

	r.Register("query", GenericHandler)
	tag, err := r.Classify("restdoc-query", "$id")
	require.NoError(t, err)
	assert.IsType(t, &GenericTag{}, tag)

	r.Register("nothing", nil)
	_, ok := r.Handler("restdoc-nothing")
	assert.False(t, ok)
}

func TestRegistryClassify(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		name    string
		tag     string
		content string
		want    Tag
		wantErr bool
	}{
		{
			name:    "query with type default and required",
			tag:     "restdoc-query",
			content: "int $page=1 required Page number",
			want: &QueryTag{
				GenericTag:  GenericTag{name: "restdoc-query", content: "int $page=1 required Page number"},
				Type:        "int",
				Param:       "page",
				Default:     "1",
				HasDefault:  true,
				Required:    true,
				Description: "Page number",
			},
		},
		{
			name:    "query bare words",
			tag:     "restdoc-query",
			content: "foo bar",
			want: &QueryTag{
				GenericTag:  GenericTag{name: "restdoc-query", content: "foo bar"},
				Param:       "foo",
				Description: "bar",
			},
		},
		{
			name:    "query empty default",
			tag:     "restdoc-query",
			content: "$q=",
			want: &QueryTag{
				GenericTag: GenericTag{name: "restdoc-query", content: "$q="},
				Param:      "q",
				HasDefault: true,
			},
		},
		{
			name:    "query without name",
			tag:     "restdoc-query",
			content: "",
			wantErr: true,
		},
		{
			name:    "field with type",
			tag:     "restdoc-field",
			content: "string $email Contact   address",
			want: &ParamTag{
				GenericTag:  GenericTag{name: "restdoc-field", content: "string $email Contact   address"},
				Type:        "string",
				Variable:    "email",
				Description: "Contact   address",
			},
		},
		{
			name:    "link without type",
			tag:     "restdoc-link",
			content: "$self Canonical URL",
			want: &ParamTag{
				GenericTag:  GenericTag{name: "restdoc-link", content: "$self Canonical URL"},
				Variable:    "self",
				Description: "Canonical URL",
			},
		},
		{
			name:    "field-use-as bare",
			tag:     "restdoc-field-use-as",
			content: "id",
			want: &ParamTag{
				GenericTag: GenericTag{name: "restdoc-field-use-as", content: "id"},
				Variable:   "id",
			},
		},
		{
			name:    "field without variable",
			tag:     "restdoc-field",
			content: "   ",
			wantErr: true,
		},
		{
			name:    "label",
			tag:     "restdoc-label",
			content: "public",
			want:    NewGenericTag("restdoc-label", "public"),
		},
		{
			name:    "unknown tag",
			tag:     "restdoc-whatever",
			content: "anything goes",
			want:    NewGenericTag("restdoc-whatever", "anything goes"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Classify(tt.tag, tt.content)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "classify @"+tt.tag)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMalformedTagMessage(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		tag  string
		want string
	}{
		{"restdoc-query", `classify @restdoc-query: malformed tag content "": missing parameter name`},
		{"restdoc-link", `classify @restdoc-link: malformed tag content "": missing variable name`},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			_, err := r.Classify(tt.tag, "")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedTag)
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestCustomHandler(t *testing.T) {
	type upper struct{ GenericTag }

	r := NewDefaultRegistry()
	r.Register("version", HandlerFunc(func(name, content string) (Tag, error) {
		return &upper{GenericTag{name: name, content: "v" + content}}, nil
	}))

	doc, err := New(decl("app.C", "C. @restdoc-version 2"), WithRegistry(r))
	require.NoError(t, err)

	group := doc.TagGroup("version")
	require.Len(t, group, 1)
	assert.Equal(t, "v2", group[0].Content())
}
