// Package interpolate provides the cubic spline used for fitted expression
// curves. The spline's identity for comparison and sizing purposes is the
// declared attribute subset (knots, coefficients, axis); any cached state is
// ignored.
package interpolate

import (
	"fmt"
	"sort"

	"wholecell/internal/ndarray"
)

// CubicSpline is a piecewise cubic through the knots X. C holds the
// polynomial coefficients with shape [4, len(X)-1], highest power first, so
// the segment starting at X[i] evaluates as
//
//	C[0,i]*dt^3 + C[1,i]*dt^2 + C[2,i]*dt + C[3,i]
//
// with dt = t - X[i].
type CubicSpline struct {
	X    *ndarray.Array
	C    *ndarray.Array
	Axis int
}

// Fit builds a natural cubic spline through the given points. The knots must
// be strictly increasing and there must be at least three of them.
func Fit(x, y []float64) (*CubicSpline, error) {
	n := len(x)
	if n != len(y) {
		return nil, fmt.Errorf("knot/value length mismatch: %d vs %d", n, len(y))
	}
	if n < 3 {
		return nil, fmt.Errorf("need at least 3 knots, got %d", n)
	}
	if !sort.Float64sAreSorted(x) {
		return nil, fmt.Errorf("knots must be increasing")
	}

	h := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		h[i] = x[i+1] - x[i]
		if h[i] <= 0 {
			return nil, fmt.Errorf("repeated knot at index %d", i)
		}
	}

	// Thomas solve for the interior second derivatives; natural boundary
	// conditions pin both ends to zero.
	m := make([]float64, n)
	if n > 2 {
		diag := make([]float64, n-2)
		upper := make([]float64, n-2)
		rhs := make([]float64, n-2)
		for i := 1; i < n-1; i++ {
			diag[i-1] = 2 * (h[i-1] + h[i])
			upper[i-1] = h[i]
			rhs[i-1] = 6 * ((y[i+1]-y[i])/h[i] - (y[i]-y[i-1])/h[i-1])
		}
		for i := 1; i < n-2; i++ {
			w := h[i] / diag[i-1]
			diag[i] -= w * upper[i-1]
			rhs[i] -= w * rhs[i-1]
		}
		m[n-2] = rhs[n-3] / diag[n-3]
		for i := n - 4; i >= 0; i-- {
			m[i+1] = (rhs[i] - upper[i]*m[i+2]) / diag[i]
		}
	}

	coeffs := make([]float64, 4*(n-1))
	for i := 0; i < n-1; i++ {
		coeffs[0*(n-1)+i] = (m[i+1] - m[i]) / (6 * h[i])
		coeffs[1*(n-1)+i] = m[i] / 2
		coeffs[2*(n-1)+i] = (y[i+1]-y[i])/h[i] - h[i]*(2*m[i]+m[i+1])/6
		coeffs[3*(n-1)+i] = y[i]
	}

	knots, err := ndarray.NewFloat64([]int{n}, append([]float64(nil), x...))
	if err != nil {
		return nil, err
	}
	c, err := ndarray.NewFloat64([]int{4, n - 1}, coeffs)
	if err != nil {
		return nil, err
	}
	return &CubicSpline{X: knots, C: c, Axis: 0}, nil
}

// Eval evaluates the spline at t, extrapolating with the end segments.
func (s *CubicSpline) Eval(t float64) float64 {
	knots := s.X.Floats
	n := len(knots)
	seg := sort.SearchFloat64s(knots, t) - 1
	if seg < 0 {
		seg = 0
	}
	if seg > n-2 {
		seg = n - 2
	}
	dt := t - knots[seg]
	width := n - 1
	c0 := s.C.Floats[0*width+seg]
	c1 := s.C.Floats[1*width+seg]
	c2 := s.C.Floats[2*width+seg]
	c3 := s.C.Floats[3*width+seg]
	return ((c0*dt+c1)*dt+c2)*dt + c3
}

func (s *CubicSpline) String() string {
	return fmt.Sprintf("CubicSpline(knots=%d axis=%d)", s.X.Len(), s.Axis)
}
