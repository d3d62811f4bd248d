// Package symbolic provides the symbolic-expression leaf types that appear
// in fitted sim-data (rate-law expressions and dense symbolic matrices).
// Both are opaque to the tree traversal and compared by exact equality.
package symbolic

import (
	"fmt"
	"strings"
)

// Expr is a symbolic expression in canonical text form.
type Expr struct {
	Form string
}

func NewExpr(form string) Expr {
	return Expr{Form: form}
}

func (e Expr) String() string {
	return e.Form
}

// Matrix is a dense matrix of symbolic expressions, row-major.
type Matrix struct {
	RowCount int
	ColCount int
	Cells    []Expr
}

func NewMatrix(rows, cols int, cells []Expr) (*Matrix, error) {
	if rows*cols != len(cells) {
		return nil, fmt.Errorf("matrix %dx%d needs %d cells, got %d", rows, cols, rows*cols, len(cells))
	}
	return &Matrix{RowCount: rows, ColCount: cols, Cells: cells}, nil
}

func (m *Matrix) At(row, col int) Expr {
	return m.Cells[row*m.ColCount+col]
}

func (m *Matrix) String() string {
	rows := make([]string, m.RowCount)
	for r := 0; r < m.RowCount; r++ {
		cells := make([]string, m.ColCount)
		for c := 0; c < m.ColCount; c++ {
			cells[c] = m.At(r, c).Form
		}
		rows[r] = "[" + strings.Join(cells, ", ") + "]"
	}
	return "Matrix(" + strings.Join(rows, ", ") + ")"
}
