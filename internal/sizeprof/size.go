// Package sizeprof estimates the memory footprint of an object tree per
// attribute, in MB. Entries at or below the cutoff are folded into their
// parent's total without their own breakdown line.
package sizeprof

import (
	"fmt"
	"math"
	"reflect"

	"wholecell/internal/bioseq"
	"wholecell/internal/ndarray"
	"wholecell/internal/objtree"
	"wholecell/internal/units"
)

// DefaultCutoff is the breakdown threshold in MB.
const DefaultCutoff = 0.1

const bytesPerMB = 1 << 20

// Report is a total in MB with an optional breakdown. Breakdown is a
// map[string]Report for mappings and special objects, or a []Report for
// sequences; it is nil when nothing exceeded the cutoff.
//
// Sequence breakdowns list only the elements above the cutoff, so their
// positions do not correspond to the original indices.
type Report struct {
	MB        float64
	Breakdown any
}

// Tree sizes a value with the default cutoff.
func Tree(v any) Report {
	return TreeWithCutoff(v, DefaultCutoff)
}

// TreeWithCutoff sizes a value, keeping breakdown entries whose size
// exceeds the cutoff (in MB). The total always reflects the full recursive
// sum regardless of the cutoff.
func TreeWithCutoff(v any, cutoff float64) Report {
	size := shallowMB(v)

	switch val := v.(type) {
	case units.Quantity:
		size += TreeWithCutoff(val.Unit, cutoff).MB
		size += shallowMB(val.Value)
		if arr, ok := val.Value.(*ndarray.Array); ok {
			size += float64(arr.NBytes()) / bytesPerMB
		}
		return Report{MB: size}

	case bioseq.Seq:
		size += float64(len(val.Data)) / bytesPerMB
		return Report{MB: size}

	case *units.StructArray:
		// Each record is allocated the same amount of space; one
		// representative row sizes them all.
		size += TreeWithCutoff(val.Units, cutoff).MB
		size += float64(val.RowBytes()*val.Rows()) / bytesPerMB
		return Report{MB: size}
	}

	if names, vals, ok := objtree.SpecialAttrs(v); ok {
		breakdown := make(map[string]Report)
		for _, name := range names {
			sub := TreeWithCutoff(vals[name], cutoff)
			size += sub.MB
			if sub.MB > cutoff {
				breakdown[name] = Report{MB: round2(sub.MB), Breakdown: sub.Breakdown}
			}
		}
		return finish(size, cutoff, breakdown, len(breakdown))
	}

	if objtree.IsLeaf(v) {
		return Report{MB: size}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		breakdown := make(map[string]Report)
		total := size
		for _, mk := range rv.MapKeys() {
			sub := TreeWithCutoff(rv.MapIndex(mk).Interface(), cutoff)
			entry := sub.MB + shallowMB(mk.Interface())
			total += entry
			if entry > cutoff {
				key := keyString(mk.Interface())
				breakdown[key] = Report{MB: round2(entry), Breakdown: sub.Breakdown}
			}
		}
		return finish(total, cutoff, breakdown, len(breakdown))

	case reflect.Slice, reflect.Array:
		var breakdown []Report
		total := size
		for i := 0; i < rv.Len(); i++ {
			sub := TreeWithCutoff(rv.Index(i).Interface(), cutoff)
			total += sub.MB
			if sub.MB > cutoff {
				breakdown = append(breakdown, Report{MB: round2(sub.MB), Breakdown: sub.Breakdown})
			}
		}
		return finish(total, cutoff, breakdown, len(breakdown))

	default:
		attrs, err := objtree.AllVars(v)
		if err != nil {
			return Report{MB: size}
		}
		breakdown := make(map[string]Report)
		total := size
		for name, value := range attrs {
			sub := TreeWithCutoff(value, cutoff)
			total += sub.MB
			if sub.MB > cutoff {
				breakdown[name] = Report{MB: round2(sub.MB), Breakdown: sub.Breakdown}
			}
		}
		return finish(total, cutoff, breakdown, len(breakdown))
	}
}

func finish(total, cutoff float64, breakdown any, entries int) Report {
	if total > cutoff && entries > 0 {
		return Report{MB: total, Breakdown: breakdown}
	}
	return Report{MB: total}
}

func round2(mb float64) float64 {
	return math.Round(mb*100) / 100
}

func keyString(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}

// shallowMB approximates the footprint of a value without the values it
// references, converted to MB.
func shallowMB(v any) float64 {
	return float64(shallowBytes(v)) / bytesPerMB
}

func shallowBytes(v any) int {
	switch val := v.(type) {
	case nil:
		return 0
	case string:
		return 16 + len(val)
	case []byte:
		return 24 + len(val)
	case *ndarray.Array:
		return 48 + val.NBytes()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		return 24 + 8*rv.Len()
	case reflect.Array:
		return int(rv.Type().Size())
	case reflect.Map:
		return 48 + 16*rv.Len()
	case reflect.Pointer:
		if rv.IsNil() {
			return 8
		}
		return 8 + int(rv.Elem().Type().Size())
	default:
		return int(rv.Type().Size())
	}
}
