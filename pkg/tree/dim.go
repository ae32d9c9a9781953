package tree

import "fmt"

// Dim is the dimension of an item.
type Dim int

const (
	// DimNone marks items that cannot be rendered, such as Empty.
	DimNone Dim = 0
	Dim2    Dim = 2
	Dim3    Dim = 3
)

func (d Dim) String() string {
	switch d {
	case DimNone:
		return "none"
	case Dim2:
		return "2D"
	case Dim3:
		return "3D"
	}
	return fmt.Sprintf("Dim(%d)", int(d))
}

// CommonDim returns the dimension shared by all non-empty items and whether
// they agree. Items of DimNone are ignored.
func CommonDim(items []Item) (Dim, bool) {
	dim := DimNone
	for _, it := range items {
		d := it.Dim()
		if d == DimNone {
			continue
		}
		if dim == DimNone {
			dim = d
		} else if dim != d {
			return DimNone, false
		}
	}
	return dim, true
}
