package symbolic

import "testing"

func TestNewMatrixSizeCheck(t *testing.T) {
	if _, err := NewMatrix(2, 2, []Expr{NewExpr("x")}); err == nil {
		t.Fatal("expected cell count mismatch error")
	}
}

func TestMatrixAt(t *testing.T) {
	m, err := NewMatrix(2, 2, []Expr{
		NewExpr("a"), NewExpr("b"),
		NewExpr("c"), NewExpr("d"),
	})
	if err != nil {
		t.Fatalf("new matrix: %v", err)
	}
	if got := m.At(1, 0).Form; got != "c" {
		t.Fatalf("at(1,0): got %q", got)
	}
	if got := m.String(); got != "Matrix([a, b], [c, d])" {
		t.Fatalf("string: got %q", got)
	}
}
