// Package units provides unit-tagged numeric values as they appear inside
// sim-data snapshots: a Quantity is a number (or array) annotated with a
// Unit, and a StructArray is a labeled numeric table whose columns carry
// per-field units.
package units

import (
	"fmt"
	"sort"
	"strings"

	"wholecell/internal/ndarray"
)

// Unit is a product of base dimensions raised to integer exponents, with a
// scale factor relative to the base unit of those dimensions (so "mg" is
// {"g": 1} with factor 1e-3).
type Unit struct {
	Dims   map[string]int `json:"dims"`
	Factor float64        `json:"factor"`
}

func NewUnit(factor float64, dims map[string]int) Unit {
	copied := make(map[string]int, len(dims))
	for k, v := range dims {
		if v != 0 {
			copied[k] = v
		}
	}
	return Unit{Dims: copied, Factor: factor}
}

// Compatible reports whether two units measure the same dimensions.
func (u Unit) Compatible(v Unit) bool {
	if len(u.Dims) != len(v.Dims) {
		return false
	}
	for k, e := range u.Dims {
		if v.Dims[k] != e {
			return false
		}
	}
	return true
}

func (u Unit) Mul(v Unit) Unit {
	dims := make(map[string]int, len(u.Dims)+len(v.Dims))
	for k, e := range u.Dims {
		dims[k] += e
	}
	for k, e := range v.Dims {
		dims[k] += e
	}
	return NewUnit(u.Factor*v.Factor, dims)
}

func (u Unit) String() string {
	if len(u.Dims) == 0 {
		if u.Factor == 1 || u.Factor == 0 {
			return "dimensionless"
		}
		return fmt.Sprintf("%g", u.Factor)
	}

	keys := make([]string, 0, len(u.Dims))
	for k := range u.Dims {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var num, den []string
	for _, k := range keys {
		e := u.Dims[k]
		switch {
		case e == 1:
			num = append(num, k)
		case e > 1:
			num = append(num, fmt.Sprintf("%s^%d", k, e))
		case e == -1:
			den = append(den, k)
		default:
			den = append(den, fmt.Sprintf("%s^%d", k, -e))
		}
	}

	var sb strings.Builder
	if u.Factor != 1 && u.Factor != 0 {
		fmt.Fprintf(&sb, "%g*", u.Factor)
	}
	if len(num) == 0 {
		sb.WriteString("1")
	} else {
		sb.WriteString(strings.Join(num, "*"))
	}
	if len(den) > 0 {
		sb.WriteString("/")
		sb.WriteString(strings.Join(den, "/"))
	}
	return sb.String()
}

// Quantity is a number or numeric array tagged with a unit.
type Quantity struct {
	Value any // float64 or *ndarray.Array
	Unit  Unit
}

func NewQuantity(value float64, unit Unit) Quantity {
	return Quantity{Value: value, Unit: unit}
}

func NewArrayQuantity(value *ndarray.Array, unit Unit) Quantity {
	return Quantity{Value: value, Unit: unit}
}

// MatchUnits converts r into q's unit so the two payloads can be compared
// as plain numbers. Incompatible dimensions are an error.
func (q Quantity) MatchUnits(r Quantity) (Quantity, Quantity, error) {
	if !q.Unit.Compatible(r.Unit) {
		return Quantity{}, Quantity{}, fmt.Errorf("incompatible units: %s vs %s", q.Unit, r.Unit)
	}
	if q.Unit.Factor == r.Unit.Factor {
		return q, r, nil
	}
	scale := r.Unit.Factor / q.Unit.Factor
	return q, Quantity{Value: scaleValue(r.Value, scale), Unit: q.Unit}, nil
}

// AsNumber strips the unit, returning the raw payload.
func (q Quantity) AsNumber() any {
	return q.Value
}

func (q Quantity) String() string {
	return fmt.Sprintf("%v [%s]", q.Value, q.Unit)
}

func scaleValue(v any, scale float64) any {
	switch val := v.(type) {
	case float64:
		return val * scale
	case *ndarray.Array:
		if val.DType != ndarray.Float64 {
			return val
		}
		scaled := make([]float64, len(val.Floats))
		for i, f := range val.Floats {
			scaled[i] = f * scale
		}
		out := *val
		out.Floats = scaled
		return &out
	default:
		return v
	}
}
