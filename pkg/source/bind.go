package source

import (
	"errors"
	"fmt"
	"path"
	"reflect"
	"sort"
	"strings"
)

var (
	// ErrNotBound indicates no Go type was bound to the declaration.
	ErrNotBound = errors.New("declaration has no bound Go type")
	// ErrUnknownProperty indicates a configuration key matches no field.
	ErrUnknownProperty = errors.New("unknown property")
)

type binding struct {
	typ  reflect.Type  // struct type, never a pointer
	ctor reflect.Value // optional constructor
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Bind attaches the dynamic type of v to the declaration of the same name
// ("pkg.Type", where pkg is the last element of the import path). Use BindAs
// when the package name differs from its import path.
func (ix *Index) Bind(v any) error {
	t := reflect.TypeOf(v)
	if t == nil {
		return fmt.Errorf("bind: nil value")
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return fmt.Errorf("bind: %s is not a named type", t)
	}
	return ix.BindAs(path.Base(t.PkgPath())+"."+t.Name(), v)
}

// BindAs attaches the dynamic type of v to the named declaration.
func (ix *Index) BindAs(name string, v any) error {
	t := reflect.TypeOf(v)
	if t == nil {
		return fmt.Errorf("bind %s: nil value", name)
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("bind %s: %s is not a struct", name, t)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	b := ix.bindings[name]
	if b == nil {
		b = &binding{}
		ix.bindings[name] = b
	}
	b.typ = t
	return nil
}

// BindConstructor registers fn as the constructor of the named declaration.
// fn must return *T or (*T, error); its parameters receive the arguments of
// Instantiate.
func (ix *Index) BindConstructor(name string, fn any) error {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return fmt.Errorf("constructor for %s must be a function", name)
	}
	ft := fv.Type()
	switch {
	case ft.NumOut() == 1:
	case ft.NumOut() == 2 && ft.Out(1).Implements(errorType):
	default:
		return fmt.Errorf("constructor for %s must return *T or (*T, error)", name)
	}
	out := ft.Out(0)
	if out.Kind() != reflect.Ptr || out.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("constructor for %s must return a pointer to a struct", name)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.bindings[name] = &binding{typ: out.Elem(), ctor: fv}
	return nil
}

func (ix *Index) binding(name string) (*binding, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	b, ok := ix.bindings[name]
	return b, ok
}

// Instantiate creates a new instance of the bound type. Without a
// constructor no arguments are accepted and a pointer to the zero value is
// returned.
func (d *Decl) Instantiate(args ...any) (any, error) {
	b, ok := d.index.binding(d.Name())
	if !ok || d.kind == KindMethod {
		return nil, fmt.Errorf("%w: %s", ErrNotBound, d.Name())
	}
	if !b.ctor.IsValid() {
		if len(args) > 0 {
			return nil, fmt.Errorf("%s has no constructor, got %d arguments", d.Name(), len(args))
		}
		return reflect.New(b.typ).Interface(), nil
	}
	return call(b.ctor, args)
}

func call(fn reflect.Value, args []any) (any, error) {
	ft := fn.Type()
	if !ft.IsVariadic() && len(args) != ft.NumIn() {
		return nil, fmt.Errorf("constructor takes %d arguments, got %d", ft.NumIn(), len(args))
	}
	if ft.IsVariadic() && len(args) < ft.NumIn()-1 {
		return nil, fmt.Errorf("constructor takes at least %d arguments, got %d", ft.NumIn()-1, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		want := paramType(ft, i)
		v, err := coerce(a, want)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in[i] = v
	}

	out := fn.Call(in)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

func paramType(ft reflect.Type, i int) reflect.Type {
	if ft.IsVariadic() && i >= ft.NumIn()-1 {
		return ft.In(ft.NumIn() - 1).Elem()
	}
	return ft.In(i)
}

// Configure sets exported fields of the struct instance points to. Keys match
// the field name, then its json or yaml tag name, case-insensitively.
func (d *Decl) Configure(instance any, config map[string]any) (any, error) {
	rv := reflect.ValueOf(instance)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("configure %s: instance must be a non-nil struct pointer", d.Name())
	}
	sv := rv.Elem()

	keys := make([]string, 0, len(config))
	for k := range config {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		idx, ok := fieldByProperty(sv.Type(), key)
		if !ok {
			return nil, fmt.Errorf("%w %q on %s", ErrUnknownProperty, key, sv.Type())
		}
		field := sv.FieldByIndex(idx)
		v, err := coerce(config[key], field.Type())
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", key, err)
		}
		field.Set(v)
	}
	return instance, nil
}

func fieldByProperty(t reflect.Type, key string) ([]int, bool) {
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		if strings.EqualFold(f.Name, key) || strings.EqualFold(tagName(f, "json"), key) || strings.EqualFold(tagName(f, "yaml"), key) {
			return f.Index, true
		}
	}
	return nil, false
}

func tagName(f reflect.StructField, key string) string {
	name, _, _ := strings.Cut(f.Tag.Get(key), ",")
	if name == "-" {
		return ""
	}
	return name
}

// coerce converts v to t when that is lossless in intent: assignable values,
// numeric to numeric, and identical underlying kinds.
func coerce(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot use nil as %s", t)
	}

	val := reflect.ValueOf(v)
	if val.Type().AssignableTo(t) {
		return val, nil
	}
	if (isNumeric(val.Kind()) && isNumeric(t.Kind())) || val.Kind() == t.Kind() {
		if val.Type().ConvertibleTo(t) {
			return val.Convert(t), nil
		}
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", val.Type(), t)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
