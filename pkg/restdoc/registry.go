package restdoc

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// TagPrefix is the reserved prefix of custom tags, e.g. @restdoc-query.
const TagPrefix = "restdoc-"

// Handler converts the raw content of a custom tag into a structured Tag.
// name is the full tag name, including TagPrefix.
type Handler interface {
	Handle(name, content string) (Tag, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(name, content string) (Tag, error)

// Handle calls f(name, content).
func (f HandlerFunc) Handle(name, content string) (Tag, error) {
	return f(name, content)
}

var (
	// QueryHandler classifies @restdoc-query tags.
	QueryHandler Handler = HandlerFunc(ParseQueryTag)
	// ParamHandler classifies key/value tags such as @restdoc-field.
	ParamHandler Handler = HandlerFunc(ParseParamTag)
	// GenericHandler keeps the raw content.
	GenericHandler Handler = HandlerFunc(parseGenericTag)
)

// Registry maps custom tag names to handlers.
//
// The registry is safe for concurrent use by multiple goroutines.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler // full tag name -> handler
}

// NewRegistry creates a new, empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// NewDefaultRegistry creates a registry holding the built-in handlers. Use it
// when the process-wide registry must not be shared.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.registerDefaults()
	return r
}

// Register binds handler to the tag TagPrefix+suffix. Registering a suffix
// again replaces the previous handler. A nil handler is ignored.
func (r *Registry) Register(suffix string, handler Handler) {
	if handler == nil {
		return
	}
	r.mu.Lock()
	r.handlers[TagPrefix+suffix] = handler
	r.mu.Unlock()
}

// Handler returns the handler registered for the full tag name.
func (r *Registry) Handler(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Suffixes lists the registered suffixes in lexical order.
func (r *Registry) Suffixes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		out = append(out, strings.TrimPrefix(name, TagPrefix))
	}
	sort.Strings(out)
	return out
}

// Classify converts a tag through its handler. Tags without a handler become
// a GenericTag.
func (r *Registry) Classify(name, content string) (Tag, error) {
	h, ok := r.Handler(name)
	if !ok {
		return NewGenericTag(name, content), nil
	}
	tag, err := h.Handle(name, content)
	if err != nil {
		return nil, fmt.Errorf("classify @%s: %w", name, err)
	}
	return tag, nil
}

func (r *Registry) registerDefaults() {
	r.Register("query", QueryHandler)
	r.Register("field", ParamHandler)
	r.Register("field-use-as", ParamHandler)
	r.Register("link", ParamHandler)
	r.Register("label", GenericHandler)
}

var (
	defaultRegistry = NewRegistry()
	defaultsOnce    sync.Once
)

// RegisterDefaults installs the built-in handlers into the process-wide
// registry. Only the first call does any work; New calls it on demand.
func RegisterDefaults() {
	defaultsOnce.Do(defaultRegistry.registerDefaults)
}

// DefaultRegistry returns the process-wide registry, populated with the
// built-in handlers.
func DefaultRegistry() *Registry {
	RegisterDefaults()
	return defaultRegistry
}
