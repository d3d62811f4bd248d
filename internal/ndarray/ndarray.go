// Package ndarray provides the dense array value type carried inside
// serialized sim-data snapshots. Arrays are flat storage plus a shape;
// they are traversal leaves, compared elementwise by the diff engine.
package ndarray

import (
	"fmt"
	"strings"
)

type DType string

const (
	Float64 DType = "float64"
	Int64   DType = "int64"
	Bool    DType = "bool"
	String  DType = "str"
	// Object marks ragged or heterogeneous arrays whose elements are
	// arbitrary values compared element by element.
	Object DType = "object"
)

type Array struct {
	Shape []int
	DType DType

	Floats []float64
	Ints   []int64
	Bools  []bool
	Strs   []string
	Objs   []any
}

func NewFloat64(shape []int, data []float64) (*Array, error) {
	if err := checkLen(shape, len(data)); err != nil {
		return nil, err
	}
	return &Array{Shape: shape, DType: Float64, Floats: data}, nil
}

func NewInt64(shape []int, data []int64) (*Array, error) {
	if err := checkLen(shape, len(data)); err != nil {
		return nil, err
	}
	return &Array{Shape: shape, DType: Int64, Ints: data}, nil
}

func NewBool(shape []int, data []bool) (*Array, error) {
	if err := checkLen(shape, len(data)); err != nil {
		return nil, err
	}
	return &Array{Shape: shape, DType: Bool, Bools: data}, nil
}

func NewString(shape []int, data []string) (*Array, error) {
	if err := checkLen(shape, len(data)); err != nil {
		return nil, err
	}
	return &Array{Shape: shape, DType: String, Strs: data}, nil
}

func NewObject(shape []int, data []any) (*Array, error) {
	if err := checkLen(shape, len(data)); err != nil {
		return nil, err
	}
	return &Array{Shape: shape, DType: Object, Objs: data}, nil
}

func checkLen(shape []int, n int) error {
	want := 1
	for _, d := range shape {
		if d < 0 {
			return fmt.Errorf("negative dimension in shape %v", shape)
		}
		want *= d
	}
	if want != n {
		return fmt.Errorf("shape %v needs %d elements, got %d", shape, want, n)
	}
	return nil
}

// Len is the total element count (the product of the shape).
func (a *Array) Len() int {
	n := 1
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

func (a *Array) SameShape(b *Array) bool {
	if len(a.Shape) != len(b.Shape) {
		return false
	}
	for i := range a.Shape {
		if a.Shape[i] != b.Shape[i] {
			return false
		}
	}
	return true
}

// Elem returns the element at flat index i as an untyped value.
func (a *Array) Elem(i int) any {
	switch a.DType {
	case Float64:
		return a.Floats[i]
	case Int64:
		return a.Ints[i]
	case Bool:
		return a.Bools[i]
	case String:
		return a.Strs[i]
	default:
		return a.Objs[i]
	}
}

// Summary is the compact shape/dtype rendering used in place of full
// array contents when two arrays cannot be compared elementwise.
func (a *Array) Summary() string {
	return fmt.Sprintf("array(%v %s)", a.Shape, a.DType)
}

// String renders the summary plus a bounded element preview.
func (a *Array) String() string {
	const maxShow = 8
	n := a.Len()
	var sb strings.Builder
	fmt.Fprintf(&sb, "array(%v %s [", a.Shape, a.DType)
	for i := 0; i < n && i < maxShow; i++ {
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%v", a.Elem(i))
	}
	if n > maxShow {
		sb.WriteString(" ...")
	}
	sb.WriteString("])")
	return sb.String()
}

// NBytes is the size of the element storage, used by the size profiler.
func (a *Array) NBytes() int {
	n := a.Len()
	switch a.DType {
	case Float64, Int64:
		return 8 * n
	case Bool:
		return n
	case String:
		total := 0
		for _, s := range a.Strs {
			total += 16 + len(s)
		}
		return total
	default:
		return 16 * n
	}
}
