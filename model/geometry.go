package model

// Rect is a rectangle in PDF user space (1/72 inch units), stored the way
// PDF arrays store it: lower-left and upper-right corners.
type Rect struct {
	LLX, LLY float64
	URX, URY float64
}

// NewRect creates a rectangle anchored at the origin
func NewRect(width, height float64) Rect {
	return Rect{URX: width, URY: height}
}

// RectFromArray builds a rectangle from the four numbers of a PDF
// rectangle array.
func RectFromArray(v [4]float64) Rect {
	return Rect{LLX: v[0], LLY: v[1], URX: v[2], URY: v[3]}
}

// Array returns the rectangle as [llx lly urx ury]
func (r Rect) Array() [4]float64 {
	return [4]float64{r.LLX, r.LLY, r.URX, r.URY}
}

// Width returns the horizontal extent
func (r Rect) Width() float64 {
	return r.URX - r.LLX
}

// Height returns the vertical extent
func (r Rect) Height() float64 {
	return r.URY - r.LLY
}

// IsValid returns true if the rectangle has positive dimensions
func (r Rect) IsValid() bool {
	return r.Width() > 0 && r.Height() > 0
}

// Matrix represents a 2D affine transformation matrix [a b c d e f]
type Matrix [6]float64

// Multiply multiplies two matrices
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[1]*other[2],
		m[0]*other[1] + m[1]*other[3],
		m[2]*other[0] + m[3]*other[2],
		m[2]*other[1] + m[3]*other[3],
		m[4]*other[0] + m[5]*other[2] + other[4],
		m[4]*other[1] + m[5]*other[3] + other[5],
	}
}

// Translate creates a translation matrix
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Scale creates a scaling matrix
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}
