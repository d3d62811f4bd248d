// Package diff compares two object trees and reports their differences in a
// result shaped like the inputs: matching substructure is absent, differing
// leaves become (left, right) pairs, differing mappings keep only the keys
// that differ, differing sequences keep only the positions that differ.
//
// Floating point values are compared with a tolerance expressed in units in
// the last place (ULP), NaN matching NaN. The comparison is symmetric:
// swapping the operands swaps the pair contents but not the result shape.
package diff

import (
	"fmt"
	"io"
	"math"
	"os"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"wholecell/internal/ndarray"
	"wholecell/internal/objtree"
	"wholecell/internal/units"
)

// Float comparison tolerance in units in the last place. Zero means exact.
// Process-wide: set once at startup, before any comparison runs.
var nulp int64 = 0

func SetTolerance(n int64) {
	if n < 0 {
		n = 0
	}
	nulp = n
}

func Tolerance() int64 {
	return nulp
}

// DiagnosticWriter receives the non-fatal note emitted when a value kind
// reaches the final dispatch branch; such values contribute no difference.
var DiagnosticWriter io.Writer = os.Stderr

const (
	leafElideLen = 200
	typeElideLen = 400
)

var whitespace = regexp.MustCompile(`\s+`)

// Missing stands in for an absent key or index. It displays as "--" and
// never equals a real value.
type Missing struct{}

func (Missing) String() string { return "--" }

// MissingValue is the sentinel used to pad mismatched mappings/sequences.
var MissingValue = Missing{}

// Elided is a display form truncated to a length bound.
type Elided struct {
	Text string
}

func (e Elided) String() string { return e.Text }

// Pair is a point of difference: the left and right values (possibly
// elided) at the same position in the two trees.
type Pair struct {
	A any
	B any
}

func (p Pair) String() string {
	return fmt.Sprintf("(%s, %s)", Repr(p.A), Repr(p.B))
}

// Empty reports whether a diff result carries no differences.
func Empty(d any) bool {
	switch v := d.(type) {
	case nil:
		return true
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case Pair, Elided:
		return false
	}
	rv := reflect.ValueOf(d)
	if rv.Kind() == reflect.Map || rv.Kind() == reflect.Slice {
		return rv.Len() == 0
	}
	return false
}

// Trees finds the differences between two trees or leaves. The result is
// empty (per Empty) when the inputs match; otherwise each point of
// difference is a Pair, an Elided description, or a mapping/sequence of
// sub-results.
func Trees(a, b any) any {
	// Strings and exact integers compare by ordinary equality regardless of
	// their concrete integer width.
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			if sa != sb {
				return Pair{Elide(a, leafElideLen), Elide(b, leafElideLen)}
			}
			return nil
		}
	}
	if ia, aok := asInt(a); aok {
		if ib, bok := asInt(b); bok {
			if ia != ib {
				return Pair{Elide(a, leafElideLen), Elide(b, leafElideLen)}
			}
			return nil
		}
	}

	// Different runtime types are themselves the difference; no structural
	// comparison is attempted past this point, so both sides share a type.
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return Pair{Elide(a, typeElideLen), Elide(b, typeElideLen)}
	}

	if fa, ok := a.(float64); ok {
		return compareFloats(fa, b.(float64))
	}

	if aa, ok := a.(*ndarray.Array); ok {
		return compareArrays(aa, b.(*ndarray.Array))
	}

	if qa, ok := a.(units.Quantity); ok {
		qb := b.(units.Quantity)
		a0, b0, err := qa.MatchUnits(qb)
		if err != nil {
			// Mismatched units are a finding, not an error.
			return Pair{Elide(qa, leafElideLen), Elide(qb, leafElideLen)}
		}
		return Trees(a0.AsNumber(), b0.AsNumber())
	}

	if names, avals, ok := objtree.SpecialAttrs(a); ok {
		_, bvals, _ := objtree.SpecialAttrs(b)
		result := make(map[string]any)
		for _, name := range names {
			sub := Trees(avals[name], bvals[name])
			if !Empty(sub) {
				result[name] = sub
			}
		}
		return result
	}

	if objtree.IsLeaf(a) {
		if !reflect.DeepEqual(a, b) {
			return Pair{Elide(a, leafElideLen), Elide(b, leafElideLen)}
		}
		return nil
	}

	if ma, ok := asStringMap(a); ok {
		mb, _ := asStringMap(b)
		keys := make(map[string]struct{}, len(ma)+len(mb))
		for k := range ma {
			keys[k] = struct{}{}
		}
		for k := range mb {
			keys[k] = struct{}{}
		}
		result := make(map[string]any)
		for k := range keys {
			av, ok := ma[k]
			if !ok {
				av = MissingValue
			}
			bv, ok := mb[k]
			if !ok {
				bv = MissingValue
			}
			sub := Trees(av, bv)
			if !Empty(sub) {
				result[k] = sub
			}
		}
		return result
	}

	if sa, ok := asSlice(a); ok {
		sb, _ := asSlice(b)
		for len(sa) < len(sb) {
			sa = append(sa, MissingValue)
		}
		for len(sb) < len(sa) {
			sb = append(sb, MissingValue)
		}
		var result []any
		for i := range sa {
			sub := Trees(sa[i], sb[i])
			if !Empty(sub) {
				result = append(result, sub)
			}
		}
		return result
	}

	// Should not occur for well-formed materialized trees.
	fmt.Fprintf(DiagnosticWriter, "value not considered by diff.Trees: %v %v\n", a, b)
	return nil
}

// compareFloats allows the configured ULP tolerance, and considers all NaN
// values to match.
func compareFloats(f1, f2 float64) any {
	if f1 == f2 || (math.IsNaN(f1) && math.IsNaN(f2)) {
		return nil
	}
	if ulpDistance(f1, f2) <= nulp {
		return nil
	}
	return Pair{f1, f2}
}

// ulpDistance counts representable doubles between a and b. NaN or opposite
// infinities produce a saturated distance.
func ulpDistance(a, b float64) int64 {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.MaxInt64
	}
	ia, ib := orderedBits(a), orderedBits(b)
	if ia > ib {
		ia, ib = ib, ia
	}
	d := ib - ia
	if d < 0 {
		return math.MaxInt64
	}
	return d
}

// orderedBits maps float bit patterns onto a scale where consecutive values
// differ by one ULP across the zero boundary.
func orderedBits(f float64) int64 {
	b := int64(math.Float64bits(f))
	if b < 0 {
		b = math.MinInt64 - b
	}
	return b
}

// compareArrays checks shape and elements. Shape mismatches report compact
// summaries; element mismatches report a simplified description rather than
// the raw arrays.
func compareArrays(a, b *ndarray.Array) any {
	if !a.SameShape(b) {
		return Pair{Elided{a.Summary()}, Elided{b.Summary()}}
	}
	if a.DType != b.DType {
		return simplifyMismatch(fmt.Sprintf("dtype mismatch: %s != %s", a.DType, b.DType))
	}

	n := a.Len()
	switch a.DType {
	case ndarray.Float64:
		bad, first := 0, -1
		for i := 0; i < n; i++ {
			x, y := a.Floats[i], b.Floats[i]
			if x == y || (math.IsNaN(x) && math.IsNaN(y)) {
				continue
			}
			if ulpDistance(x, y) <= nulp {
				continue
			}
			if first < 0 {
				first = i
			}
			bad++
		}
		if bad == 0 {
			return nil
		}
		return simplifyMismatch(fmt.Sprintf(
			"mismatched elements: %d / %d; first at [%d]: %v != %v",
			bad, n, first, a.Floats[first], b.Floats[first]))

	case ndarray.Object:
		bad, first := 0, -1
		for i := 0; i < n; i++ {
			sub := Trees(a.Objs[i], b.Objs[i])
			if Empty(sub) {
				continue
			}
			if first < 0 {
				first = i
			}
			bad++
		}
		if bad == 0 {
			return nil
		}
		return simplifyMismatch(fmt.Sprintf(
			"mismatched elements: %d / %d; first at [%d]: %v != %v",
			bad, n, first, a.Objs[first], b.Objs[first]))

	default:
		bad, first := 0, -1
		for i := 0; i < n; i++ {
			if reflect.DeepEqual(a.Elem(i), b.Elem(i)) {
				continue
			}
			if first < 0 {
				first = i
			}
			bad++
		}
		if bad == 0 {
			return nil
		}
		return simplifyMismatch(fmt.Sprintf(
			"mismatched elements: %d / %d; first at [%d]: %v != %v",
			bad, n, first, a.Elem(first), b.Elem(first)))
	}
}

func simplifyMismatch(message string) Elided {
	collapsed := strings.TrimSpace(whitespace.ReplaceAllString(message, " "))
	if len(collapsed) > leafElideLen {
		collapsed = collapsed[:leafElideLen] + "..."
	}
	return Elided{collapsed}
}

// Elide returns the value unchanged when its rendering fits within max,
// else a truncated rendering marked with a trailing ellipsis.
func Elide(v any, max int) any {
	r := Repr(v)
	if len(r) > max {
		return Elided{r[:max] + "..."}
	}
	return v
}

// Repr renders a value for display inside diff reports.
func Repr(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case string:
		return fmt.Sprintf("%q", val)
	case Elided:
		return val.Text
	case Missing:
		return "--"
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

func asStringMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	m := make(map[string]any, rv.Len())
	for _, mk := range rv.MapKeys() {
		m[fmt.Sprint(mk.Interface())] = rv.MapIndex(mk).Interface()
	}
	return m, true
}

func asSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return append([]any(nil), s...), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// SortedKeys is a deterministic ordering helper for rendering map-shaped
// diff results.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
