package restdoc

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/example/restdoc/pkg/docblock"
)

// DescriptionKind selects one of the two descriptions of a Doc.
type DescriptionKind string

const (
	ShortDescription DescriptionKind = "shortDescription"
	LongDescription  DescriptionKind = "longDescription"
)

// Reserved tag keys (suffixes after TagPrefix).
const (
	IgnoreKey  = "ignore"
	LabelKey   = "label"
	InheritKey = "inherit-description"
)

// DefaultMaxDepth bounds the number of ancestors Parent will resolve.
const DefaultMaxDepth = 32

// Processor is an extra validation or derivation step run at the end of New.
// A returned error (or a panic) turns the Doc invalid with ErrProcessing.
type Processor interface {
	Process(d *Doc) error
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(d *Doc) error

// Process calls f(d).
func (f ProcessorFunc) Process(d *Doc) error {
	return f(d)
}

// Option configures New.
type Option func(*options)

type options struct {
	parser       CommentParser
	registry     *Registry
	logger       *slog.Logger
	processor    Processor
	objectConfig map[string]any
	maxDepth     int
}

// WithParser replaces the default docblock parser.
func WithParser(p CommentParser) Option {
	return func(o *options) { o.parser = p }
}

// WithRegistry uses r instead of DefaultRegistry.
func WithRegistry(r *Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithLogger sets the logger used for state transitions.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithProcessor installs the domain processing hook. Parents share it.
func WithProcessor(p Processor) Option {
	return func(o *options) { o.processor = p }
}

// WithObjectConfig sets the configuration Materialize applies when called
// without one.
func WithObjectConfig(cfg map[string]any) Option {
	return func(o *options) { o.objectConfig = cfg }
}

// WithMaxDepth bounds the parent chain. Values below 1 keep the default.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

// Doc is the annotated view of one declaration.
type Doc struct {
	decl  Declaration
	opts  options
	depth int
	chain []string // names from the root child down to this declaration

	block     *docblock.Block
	valid     bool
	err       *InvalidError
	inherited bool
	tags      map[string][]Tag
	keys      []string // tag keys in order of first appearance
	labels    map[string]struct{}

	shortOnce sync.Once
	short     string
	longOnce  sync.Once
	long      string

	parentOnce sync.Once
	parent     *Doc
}

// New wraps decl. It only fails for programmer errors; documentation
// problems are reported by IsValid and Err.
func New(decl Declaration, opts ...Option) (*Doc, error) {
	if decl == nil {
		return nil, fmt.Errorf("%w: nil declaration", ErrInvalidDeclaration)
	}

	o := options{
		parser:   docblock.NewParser(),
		logger:   slog.Default(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.parser == nil {
		return nil, fmt.Errorf("%w: nil comment parser", ErrInvalidDeclaration)
	}
	if o.registry == nil {
		o.registry = DefaultRegistry()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	return newDoc(decl, o, 0, []string{decl.Name()}), nil
}

func newDoc(decl Declaration, o options, depth int, chain []string) *Doc {
	d := &Doc{
		decl:   decl,
		opts:   o,
		depth:  depth,
		chain:  chain,
		tags:   make(map[string][]Tag),
		labels: make(map[string]struct{}),
	}
	d.init()
	return d
}

// init runs the validation steps in order and stops at the first failure.
func (d *Doc) init() {
	name := d.decl.Name()
	d.valid = true

	text, ok := d.decl.DocComment()
	if !ok {
		d.invalidate(ErrMissingDocumentation, name+": does not have docBlock", nil)
		return
	}
	block, err := d.opts.parser.Parse(text)
	if err != nil || block == nil {
		d.invalidate(ErrMissingDocumentation, name+": does not have docBlock", err)
		return
	}
	d.block = block
	d.inherited = hasInheritDirective(block)

	// Tags are grouped before the ignore check; ignored docs keep them.
	classifyErr := d.classify(block)
	if _, ok := d.tags[IgnoreKey]; ok {
		d.invalidate(ErrIgnored, name+": ignore due tag", nil)
		return
	}

	if d.decl.IsAbstract() {
		d.invalidate(ErrAbstract, name+": isAbstract", nil)
		return
	}

	if classifyErr != nil {
		d.invalidate(ErrProcessing, name+": "+classifyErr.Error(), classifyErr)
		return
	}

	if err := d.process(); err != nil {
		msg := err.Error()
		if msg == "" {
			msg = name + ": processing failed"
		}
		d.invalidate(ErrProcessing, msg, err)
		return
	}

	d.opts.logger.Debug("declaration resolved", "name", name, "tags", len(d.keys), "inherited", d.inherited)
}

func hasInheritDirective(block *docblock.Block) bool {
	for _, t := range block.Tags {
		if t.Name == TagPrefix+InheritKey || strings.EqualFold(t.Name, docblock.InheritDoc) {
			return true
		}
	}
	return false
}

// classify groups every prefixed tag by suffix. The first classification
// error is returned after all tags have been grouped.
func (d *Doc) classify(block *docblock.Block) error {
	var firstErr error
	for _, raw := range block.Tags {
		key, ok := strings.CutPrefix(raw.Name, TagPrefix)
		if !ok || key == "" {
			continue
		}
		tag, err := d.opts.registry.Classify(raw.Name, raw.Content)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if _, seen := d.tags[key]; !seen {
			d.keys = append(d.keys, key)
		}
		d.tags[key] = append(d.tags[key], tag)
	}

	for _, tag := range d.tags[LabelKey] {
		if tag.Content() != "" {
			d.labels[tag.Content()] = struct{}{}
		}
	}
	return firstErr
}

func (d *Doc) process() (err error) {
	if d.opts.processor == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return d.opts.processor.Process(d)
}

func (d *Doc) invalidate(kind error, message string, cause error) {
	d.valid = false
	d.err = &InvalidError{Kind: kind, Name: d.decl.Name(), Message: message, Cause: cause}
	d.opts.logger.Debug("declaration skipped", "name", d.decl.Name(), "reason", message)
}

// Declaration returns the wrapped declaration.
func (d *Doc) Declaration() Declaration { return d.decl }

// Name returns the declaration name.
func (d *Doc) Name() string { return d.decl.Name() }

// IsValid reports whether the declaration is a documentation target.
func (d *Doc) IsValid() bool { return d.valid }

// IsInherited reports whether the comment carries an inherit directive.
func (d *Doc) IsInherited() bool { return d.inherited }

// Err returns the reason the Doc is invalid, or nil. The returned error is
// an *InvalidError.
func (d *Doc) Err() error {
	if d.err == nil {
		return nil
	}
	return d.err
}

// Block returns the parsed comment, or nil when there is none.
func (d *Doc) Block() *docblock.Block { return d.block }

// TagGroup returns the tags classified under key in comment order. Absent
// keys yield an empty slice. The slice must not be modified.
func (d *Doc) TagGroup(key string) []Tag {
	return slices.Clip(d.tags[key])
}

// TagKeys returns the tag keys in order of first appearance.
func (d *Doc) TagKeys() []string {
	return slices.Clone(d.keys)
}

// HasLabel reports whether a @restdoc-label tag with the given value exists.
func (d *Doc) HasLabel(value string) bool {
	_, ok := d.labels[value]
	return ok
}

// Labels returns the attached labels in lexical order.
func (d *Doc) Labels() []string {
	out := make([]string, 0, len(d.labels))
	for l := range d.labels {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// ShortDescription returns the resolved short description.
func (d *Doc) ShortDescription() string {
	d.shortOnce.Do(func() { d.short = d.resolveDescription(ShortDescription) })
	return d.short
}

// LongDescription returns the resolved long description.
func (d *Doc) LongDescription() string {
	d.longOnce.Do(func() { d.long = d.resolveDescription(LongDescription) })
	return d.long
}

// Description returns the resolved description of the given kind. Unknown
// kinds yield "".
func (d *Doc) Description(kind DescriptionKind) string {
	switch kind {
	case ShortDescription:
		return d.ShortDescription()
	case LongDescription:
		return d.LongDescription()
	}
	return ""
}

// resolveDescription falls back to the parent only when the own value is
// empty and the comment asked for inheritance.
func (d *Doc) resolveDescription(kind DescriptionKind) string {
	value := d.ownDescription(kind)
	if value != "" || !d.inherited {
		return value
	}
	if p := d.Parent(); p != nil {
		return p.Description(kind)
	}
	return value
}

func (d *Doc) ownDescription(kind DescriptionKind) string {
	if d.block == nil {
		return ""
	}
	if kind == ShortDescription {
		return d.block.Short
	}
	return d.block.Long
}

// Parent returns the Doc of the parent declaration, or nil when there is
// none. The parent is built once, with the same options, and may itself be
// invalid.
func (d *Doc) Parent() *Doc {
	d.parentOnce.Do(func() { d.parent = d.resolveParent() })
	return d.parent
}

func (d *Doc) resolveParent() *Doc {
	pd, ok := d.decl.Parent()
	if !ok || pd == nil {
		return nil
	}

	name := pd.Name()
	if d.depth+1 > d.opts.maxDepth {
		d.opts.logger.Warn("parent chain too deep, stopping", "name", d.Name(), "parent", name, "max_depth", d.opts.maxDepth)
		return nil
	}
	if slices.Contains(d.chain, name) {
		d.opts.logger.Warn("parent chain loops, stopping", "name", d.Name(), "parent", name)
		return nil
	}

	chain := append(slices.Clone(d.chain), name)
	return newDoc(pd, d.opts, d.depth+1, chain)
}

// Materialize creates an instance of the declared type with args and applies
// config to it; a nil config falls back to WithObjectConfig. It works for
// invalid docs too and performs no validation.
func (d *Doc) Materialize(args []any, config map[string]any) (any, error) {
	inst, ok := d.decl.(Instantiator)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotInstantiable, d.Name())
	}

	obj, err := inst.Instantiate(args...)
	if err != nil {
		return nil, fmt.Errorf("instantiate %s: %w", d.Name(), err)
	}

	if config == nil {
		config = d.opts.objectConfig
	}
	if len(config) == 0 {
		return obj, nil
	}

	obj, err = inst.Configure(obj, config)
	if err != nil {
		return nil, fmt.Errorf("configure %s: %w", d.Name(), err)
	}
	return obj, nil
}
