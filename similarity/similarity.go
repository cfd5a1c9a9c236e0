// Package similarity provides dense square similarity matrices stored in
// column-major order, together with non-owning read views used by the
// samplers in this module.
package similarity

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidSize is returned when a matrix is requested with fewer than one item.
	ErrInvalidSize = errors.New("similarity: number of items must be positive")
	// ErrDataLength is returned when a backing slice does not hold n*n values.
	ErrDataLength = errors.New("similarity: data length does not match number of items")
	// ErrNotSquare is returned when converting a non-square matrix.
	ErrNotSquare = errors.New("similarity: matrix is not square")
	// ErrOutOfRange is returned by Set for indices outside [0, n).
	ErrOutOfRange = errors.New("similarity: index out of range")
	// ErrNotFinite is returned by Validate for NaN or infinite entries.
	ErrNotFinite = errors.New("similarity: entry is not finite")
	// ErrNegative is returned by Validate for negative entries.
	ErrNegative = errors.New("similarity: entry is negative")
)

// Matrix is an n×n matrix that owns its storage.
// Element (i, j) lives at offset n*j + i.
type Matrix struct {
	data   []float64
	nItems int
}

// Zeros creates an n×n matrix filled with 0.
func Zeros(nItems int) (*Matrix, error) {
	if nItems < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidSize, nItems)
	}
	return &Matrix{
		data:   make([]float64, nItems*nItems),
		nItems: nItems,
	}, nil
}

// Ones creates an n×n matrix filled with 1.
func Ones(nItems int) (*Matrix, error) {
	m, err := Zeros(nItems)
	if err != nil {
		return nil, err
	}
	floats.AddConst(1.0, m.data)
	return m, nil
}

// Identity creates an n×n matrix with ones on the diagonal.
func Identity(nItems int) (*Matrix, error) {
	m, err := Zeros(nItems)
	if err != nil {
		return nil, err
	}
	stride := nItems + 1
	for i := 0; i < len(m.data); i += stride {
		m.data[i] = 1.0
	}
	return m, nil
}

// FromSlice creates a matrix holding a copy of data, which must be n*n
// values in column-major order.
func FromSlice(data []float64, nItems int) (*Matrix, error) {
	if nItems < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidSize, nItems)
	}
	if len(data) != nItems*nItems {
		return nil, fmt.Errorf("%w: got %d values for %d items", ErrDataLength, len(data), nItems)
	}
	owned := make([]float64, len(data))
	copy(owned, data)
	return &Matrix{data: owned, nItems: nItems}, nil
}

// FromDense copies a square gonum matrix. Row r, column c of m becomes
// element (r, c).
func FromDense(m mat.Matrix) (*Matrix, error) {
	r, c := m.Dims()
	if r != c {
		return nil, fmt.Errorf("%w: %dx%d", ErrNotSquare, r, c)
	}
	out, err := Zeros(r)
	if err != nil {
		return nil, err
	}
	for j := 0; j < c; j++ {
		col := out.data[j*r : (j+1)*r]
		for i := 0; i < r; i++ {
			col[i] = m.At(i, j)
		}
	}
	return out, nil
}

// NItems returns the number of items (rows and columns).
func (m *Matrix) NItems() int {
	return m.nItems
}

// Data returns the column-major backing slice. Callers must not resize it.
func (m *Matrix) Data() []float64 {
	return m.data
}

// Set stores v at (i, j).
func (m *Matrix) Set(i, j int, v float64) error {
	if i < 0 || i >= m.nItems || j < 0 || j >= m.nItems {
		return fmt.Errorf("%w: (%d,%d) for %d items", ErrOutOfRange, i, j, m.nItems)
	}
	m.data[m.nItems*j+i] = v
	return nil
}

// View returns a read view sharing m's storage. The view is only valid
// while m is alive and is not mutated.
func (m *Matrix) View() View {
	return View{data: m.data, nItems: m.nItems}
}

// View is a non-owning, read-only window over column-major similarity data.
// Views are cheap to copy and any number of them may coexist.
type View struct {
	data   []float64
	nItems int
}

// ViewOf wraps data without copying it.
func ViewOf(data []float64, nItems int) (View, error) {
	if nItems < 1 {
		return View{}, fmt.Errorf("%w, got %d", ErrInvalidSize, nItems)
	}
	if len(data) != nItems*nItems {
		return View{}, fmt.Errorf("%w: got %d values for %d items", ErrDataLength, len(data), nItems)
	}
	return View{data: data, nItems: nItems}, nil
}

// UnsafeViewOf wraps data without any validation. The caller guarantees
// that data holds at least nItems*nItems values for the lifetime of the view.
func UnsafeViewOf(data []float64, nItems int) View {
	return View{data: data[:nItems*nItems], nItems: nItems}
}

// NItems returns the number of items.
func (v View) NItems() int {
	return v.nItems
}

// Data returns the viewed column-major slice.
func (v View) Data() []float64 {
	return v.data
}

// At returns the value at (i, j). It panics if either index is out of range.
func (v View) At(i, j int) float64 {
	if uint(i) >= uint(v.nItems) || uint(j) >= uint(v.nItems) {
		panic(fmt.Sprintf("similarity: index (%d,%d) out of range for %d items", i, j, v.nItems))
	}
	return v.data[v.nItems*j+i]
}

// AtUnchecked returns the value at (i, j) without validating the indices
// against n. Callers must guarantee 0 <= i, j < NItems().
func (v View) AtUnchecked(i, j int) float64 {
	return v.data[v.nItems*j+i]
}

// SumOfTriangle returns the sum of the strictly lower triangular entries (i > j).
func (v View) SumOfTriangle() float64 {
	sum := 0.0
	for i := 0; i < v.nItems; i++ {
		for j := 0; j < i; j++ {
			sum += v.AtUnchecked(i, j)
		}
	}
	return sum
}

// SumOfRowSubset returns the sum of (row, c) over every c in columns.
// Indices are not checked against n.
func (v View) SumOfRowSubset(row int, columns []int) float64 {
	sum := 0.0
	for _, c := range columns {
		sum += v.AtUnchecked(row, c)
	}
	return sum
}

// Dense returns a zero-copy gonum view where At(r, c) equals v.At(r, c).
func (v View) Dense() mat.Matrix {
	// gonum is row-major, so the column-major buffer reads as the transpose.
	return mat.NewDense(v.nItems, v.nItems, v.data).T()
}

// IsSymmetric reports whether |s(i,j) - s(j,i)| <= tol for all pairs.
func (v View) IsSymmetric(tol float64) bool {
	for i := 0; i < v.nItems; i++ {
		for j := 0; j < i; j++ {
			if math.Abs(v.AtUnchecked(i, j)-v.AtUnchecked(j, i)) > tol {
				return false
			}
		}
	}
	return true
}

// Validate checks that every entry is finite and non-negative.
func (v View) Validate() error {
	for k, x := range v.data {
		i, j := k%v.nItems, k/v.nItems
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w at (%d,%d): %v", ErrNotFinite, i, j, x)
		}
		if x < 0 {
			return fmt.Errorf("%w at (%d,%d): %v", ErrNegative, i, j, x)
		}
	}
	return nil
}
