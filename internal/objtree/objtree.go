// Package objtree turns an arbitrary aggregate object graph into a plain
// mapping/sequence tree. Traversal stops at leaves: callables, values from a
// closed registry of wrapper types, and values that expose no fields at all.
// The materialized tree mirrors the object's structure, with each converted
// object tagged under the "!type" key so real dictionaries stay
// distinguishable from dictionary-ified objects.
package objtree

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"

	"wholecell/internal/bioseq"
	"wholecell/internal/interpolate"
	"wholecell/internal/ndarray"
	"wholecell/internal/symbolic"
	"wholecell/internal/units"
)

// TypeKey is the synthetic attribute recording a converted object's
// originating type. It is assumed not to collide with real attribute names.
const TypeKey = "!type"

// TypeName is the value stored under TypeKey.
type TypeName string

func (t TypeName) String() string {
	return string(t)
}

// DefaultMaxDepth bounds traversal so cyclic object graphs fail with
// ErrMaxDepth instead of exhausting the stack. Cycles are otherwise
// unsupported.
const DefaultMaxDepth = 128

var ErrMaxDepth = errors.New("object tree exceeds maximum traversal depth")

// StateProvider lets an object customize which state is materialized and
// compared, analogous to defining custom serialization.
type StateProvider interface {
	SerializedState() map[string]any
}

// IsLeaf reports whether traversal stops at the given value. Mappings and
// sequences always recurse, except textual/byte values which would otherwise
// decompose per character.
func IsLeaf(v any) bool {
	switch v.(type) {
	case nil, string, []byte:
		return true
	case units.Quantity, *units.Quantity,
		units.Unit,
		bioseq.Seq, *bioseq.Seq,
		symbolic.Expr, *symbolic.Matrix,
		*ndarray.Array,
		*units.StructArray,
		*interpolate.CubicSpline,
		TypeName:
		return true
	case bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, complex64, complex128:
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return false
	case reflect.Func:
		return true
	case reflect.Pointer:
		if rv.IsNil() {
			return true
		}
		if rv.Elem().Kind() != reflect.Struct {
			return true
		}
		return !hasFields(v)
	case reflect.Struct:
		return !hasFields(v)
	default:
		return true
	}
}

// hasFields reports whether the value exposes any per-instance state, either
// through a StateProvider or as exported struct fields. Values without fields
// are opaque and treated as leaves.
func hasFields(v any) bool {
	if _, ok := v.(StateProvider); ok {
		return true
	}
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			return true
		}
	}
	return false
}

// AllVars collects the object's instance state as a name→value mapping. A
// StateProvider supplies its own mapping; otherwise the exported struct
// fields are gathered reflectively.
func AllVars(v any) (map[string]any, error) {
	if sp, ok := v.(StateProvider); ok {
		return sp.SerializedState(), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot extract attributes from %T", v)
	}

	t := rv.Type()
	attrs := make(map[string]any)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		attrs[field.Name] = rv.Field(i).Interface()
	}
	return attrs, nil
}

// SpecialAttrs returns the declared attribute subset for the registered
// special-object types. Both the differ and the size profiler compare/size
// only these attributes for such values.
func SpecialAttrs(v any) ([]string, map[string]any, bool) {
	switch val := v.(type) {
	case *interpolate.CubicSpline:
		return []string{"x", "c", "axis"}, map[string]any{
			"x":    val.X,
			"c":    val.C,
			"axis": val.Axis,
		}, true
	case *units.StructArray:
		return []string{"struct_array", "units"}, map[string]any{
			"struct_array": val.Array,
			"units":        val.Units,
		}, true
	}
	return nil, nil, false
}

// Debug modes for Materialize.
const (
	DebugAll      = "ALL"      // print every visited path
	DebugCallable = "CALLABLE" // print only callable leaves
)

type Options struct {
	Path     string
	Debug    string
	Out      io.Writer
	MaxDepth int
}

// Materialize converts an object graph into a tree of map[string]any,
// []any and leaf values. Debug output, when enabled, does not affect the
// returned tree.
func Materialize(v any, opts Options) (any, error) {
	if opts.MaxDepth == 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return materialize(v, opts.Path, 0, opts)
}

func materialize(v any, path string, depth int, opts Options) (any, error) {
	if depth > opts.MaxDepth {
		return nil, fmt.Errorf("%w at %s", ErrMaxDepth, path)
	}

	if opts.Debug == DebugAll {
		fmt.Fprintln(opts.Out, path)
	}

	if IsLeaf(v) {
		if opts.Debug == DebugCallable && v != nil && reflect.ValueOf(v).Kind() == reflect.Func {
			fmt.Fprintf(opts.Out, "%s: %v\n", path, reflect.TypeOf(v))
		}
		return v, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		tree := make(map[string]any, rv.Len())
		for _, mk := range rv.MapKeys() {
			key := fmt.Sprint(mk.Interface())
			child, err := materialize(rv.MapIndex(mk).Interface(), fmt.Sprintf("%s['%s']", path, key), depth+1, opts)
			if err != nil {
				return nil, err
			}
			tree[key] = child
		}
		return tree, nil

	case reflect.Slice, reflect.Array:
		tree := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			child, err := materialize(rv.Index(i).Interface(), fmt.Sprintf("%s[%d]", path, i), depth+1, opts)
			if err != nil {
				return nil, err
			}
			tree[i] = child
		}
		return tree, nil

	default:
		attrs, err := AllVars(v)
		if err != nil {
			return nil, fmt.Errorf("at %s: %w", path, err)
		}
		names := make([]string, 0, len(attrs))
		for name := range attrs {
			names = append(names, name)
		}
		sort.Strings(names)

		tree := make(map[string]any, len(attrs)+1)
		for _, name := range names {
			child, err := materialize(attrs[name], fmt.Sprintf("%s.%s", path, name), depth+1, opts)
			if err != nil {
				return nil, err
			}
			tree[name] = child
		}
		tree[TypeKey] = TypeName(typeName(v))
		return tree, nil
	}
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}
