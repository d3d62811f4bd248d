package ndarray

import (
	"strings"
	"testing"
)

func TestNewFloat64ShapeCheck(t *testing.T) {
	if _, err := NewFloat64([]int{2, 3}, make([]float64, 5)); err == nil {
		t.Fatal("expected shape/data length mismatch error")
	}
	arr, err := NewFloat64([]int{2, 3}, make([]float64, 6))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if arr.Len() != 6 {
		t.Fatalf("len: got %d want 6", arr.Len())
	}
}

func TestSummary(t *testing.T) {
	arr, err := NewInt64([]int{4}, []int64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := arr.Summary(); got != "array([4] int64)" {
		t.Fatalf("summary: got %q", got)
	}
}

func TestSameShape(t *testing.T) {
	a, _ := NewFloat64([]int{2, 2}, make([]float64, 4))
	b, _ := NewFloat64([]int{2, 2}, make([]float64, 4))
	c, _ := NewFloat64([]int{4}, make([]float64, 4))
	if !a.SameShape(b) {
		t.Fatal("expected same shape")
	}
	if a.SameShape(c) {
		t.Fatal("expected different shape")
	}
}

func TestElem(t *testing.T) {
	arr, _ := NewString([]int{2}, []string{"x", "y"})
	if arr.Elem(1) != "y" {
		t.Fatalf("elem: got %v", arr.Elem(1))
	}

	objs, _ := NewObject([]int{1}, []any{map[string]any{"k": "v"}})
	if _, ok := objs.Elem(0).(map[string]any); !ok {
		t.Fatalf("object elem: got %T", objs.Elem(0))
	}
}

func TestNBytesByDType(t *testing.T) {
	floats, _ := NewFloat64([]int{3}, make([]float64, 3))
	bools, _ := NewBool([]int{3}, make([]bool, 3))
	if floats.NBytes() != 24 {
		t.Fatalf("float nbytes: got %d", floats.NBytes())
	}
	if bools.NBytes() != 3 {
		t.Fatalf("bool nbytes: got %d", bools.NBytes())
	}
}

func TestStringRendering(t *testing.T) {
	arr, _ := NewFloat64([]int{2}, []float64{1.5, 2.5})
	if !strings.Contains(arr.String(), "1.5") {
		t.Fatalf("string: got %q", arr.String())
	}
}
