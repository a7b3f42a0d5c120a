// Package geom provides rectangle-set arithmetic shared by the spreadsheet
// print-area logic and the PDF block layout.
//
// Rectangles are half-open: a point (x, y) is inside when
// X1 <= x < X2 and Y1 <= y < Y2. Cell ranges map onto this by using
// X1 = first column, X2 = last column + 1 (same for rows), so a range and
// its neighbor never share points.
package geom

// Rect is a half-open axis-aligned rectangle.
type Rect struct {
	X1, Y1, X2, Y2 float64
}

// NewRect returns a normalized Rect; swapped corners are reordered.
func NewRect(x1, y1, x2, y2 float64) Rect {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return Rect{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// CellRect builds a Rect covering the inclusive cell range
// (col1,row1)..(col2,row2) in half-open coordinates.
func CellRect(col1, row1, col2, row2 int) Rect {
	return NewRect(float64(col1), float64(row1), float64(col2+1), float64(row2+1))
}

// Empty reports whether r covers no points.
func (r Rect) Empty() bool { return r.X1 >= r.X2 || r.Y1 >= r.Y2 }

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.X2 - r.X1 }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Y2 - r.Y1 }

// Contains reports whether the point is inside r.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X1 && x < r.X2 && y >= r.Y1 && y < r.Y2
}

// ContainsCell reports whether the 1-based cell (col, row) is inside r.
func (r Rect) ContainsCell(col, row int) bool {
	return r.Contains(float64(col), float64(row))
}

// ContainsRect reports whether o lies entirely inside r.
func (r Rect) ContainsRect(o Rect) bool {
	if o.Empty() {
		return true
	}
	return o.X1 >= r.X1 && o.X2 <= r.X2 && o.Y1 >= r.Y1 && o.Y2 <= r.Y2
}

// Intersects reports whether r and o share any point.
func (r Rect) Intersects(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X1 < o.X2 && o.X1 < r.X2 && r.Y1 < o.Y2 && o.Y1 < r.Y2
}

// Intersect returns the overlapping region of r and o, empty when disjoint.
func (r Rect) Intersect(o Rect) Rect {
	x1 := max(r.X1, o.X1)
	y1 := max(r.Y1, o.Y1)
	x2 := min(r.X2, o.X2)
	y2 := min(r.Y2, o.Y2)
	if x1 >= x2 || y1 >= y2 {
		return Rect{}
	}
	return Rect{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Union returns the bounding box of r and o.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return Rect{
		X1: min(r.X1, o.X1),
		Y1: min(r.Y1, o.Y1),
		X2: max(r.X2, o.X2),
		Y2: max(r.Y2, o.Y2),
	}
}

// Subtract returns the parts of r not covered by o, as up to four
// rectangles (top, bottom, left, right bands around the overlap).
func (r Rect) Subtract(o Rect) []Rect {
	i := r.Intersect(o)
	if i.Empty() {
		if r.Empty() {
			return nil
		}
		return []Rect{r}
	}

	var out []Rect
	if i.Y1 > r.Y1 {
		out = append(out, Rect{X1: r.X1, Y1: r.Y1, X2: r.X2, Y2: i.Y1})
	}
	if i.Y2 < r.Y2 {
		out = append(out, Rect{X1: r.X1, Y1: i.Y2, X2: r.X2, Y2: r.Y2})
	}
	if i.X1 > r.X1 {
		out = append(out, Rect{X1: r.X1, Y1: i.Y1, X2: i.X1, Y2: i.Y2})
	}
	if i.X2 < r.X2 {
		out = append(out, Rect{X1: i.X2, Y1: i.Y1, X2: r.X2, Y2: i.Y2})
	}
	return out
}

// Set is a collection of rectangles treated as a point set.
type Set []Rect

// Add appends r, ignoring empty rectangles.
func (s *Set) Add(r Rect) {
	if !r.Empty() {
		*s = append(*s, r)
	}
}

// Empty reports whether the set covers no points.
func (s Set) Empty() bool {
	for _, r := range s {
		if !r.Empty() {
			return false
		}
	}
	return true
}

// Union returns the bounding box of all members.
func (s Set) Union() Rect {
	var u Rect
	for _, r := range s {
		u = u.Union(r)
	}
	return u
}

// Contains reports whether any member contains the point.
func (s Set) Contains(x, y float64) bool {
	for _, r := range s {
		if r.Contains(x, y) {
			return true
		}
	}
	return false
}

// ContainsCell reports whether any member contains the 1-based cell.
func (s Set) ContainsCell(col, row int) bool {
	return s.Contains(float64(col), float64(row))
}

// ContainsRect reports whether a single member fully contains o.
// A rect straddling two members without being inside either counts as
// not contained; callers needing exact coverage should subtract instead.
func (s Set) ContainsRect(o Rect) bool {
	for _, r := range s {
		if r.ContainsRect(o) {
			return true
		}
	}
	return false
}

// Subtract removes o from every member.
func (s Set) Subtract(o Rect) Set {
	var out Set
	for _, r := range s {
		out = append(out, r.Subtract(o)...)
	}
	return out
}
