package grid

import "fmt"

// ItemLayout describes an item's rectangle on the grid together with its size
// constraints. It is a plain value: engine operations return copies, never
// shared pointers. The ID is caller-assigned and must be unique within one
// engine.
//
// A zero MaxWidth or MaxHeight means unbounded in that direction.
type ItemLayout struct {
	ID        string `json:"id" bson:"id"`
	StartX    int    `json:"start_x" bson:"start_x"`
	StartY    int    `json:"start_y" bson:"start_y"`
	Width     int    `json:"width" bson:"width"`
	Height    int    `json:"height" bson:"height"`
	MinWidth  int    `json:"min_width" bson:"min_width"`
	MinHeight int    `json:"min_height" bson:"min_height"`
	MaxWidth  int    `json:"max_width,omitempty" bson:"max_width,omitempty"`
	MaxHeight int    `json:"max_height,omitempty" bson:"max_height,omitempty"`
}

// Rect returns the item's current rectangle.
func (it ItemLayout) Rect() Rect {
	return Rect{X: it.StartX, Y: it.StartY, W: it.Width, H: it.Height}
}

// WithRect returns a copy of the item moved and resized to r.
// Size constraints are carried over unchanged.
func (it ItemLayout) WithRect(r Rect) ItemLayout {
	it.StartX, it.StartY, it.Width, it.Height = r.X, r.Y, r.W, r.H
	return it
}

// Validate checks the item's internal consistency independent of any grid:
// positive size, minimums not above the current size, and maximums (when set)
// not below it. It does not check grid bounds; the engine does that against
// its slot count.
func (it ItemLayout) Validate() error {
	switch {
	case it.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidItem)
	case it.Width <= 0 || it.Height <= 0:
		return fmt.Errorf("%w: %s: non-positive size %dx%d", ErrInvalidItem, it.ID, it.Width, it.Height)
	case it.MinWidth <= 0 || it.MinHeight <= 0:
		return fmt.Errorf("%w: %s: non-positive minimum size %dx%d", ErrInvalidItem, it.ID, it.MinWidth, it.MinHeight)
	case it.MinWidth > it.Width || it.MinHeight > it.Height:
		return fmt.Errorf("%w: %s: minimum %dx%d exceeds size %dx%d", ErrInvalidItem, it.ID, it.MinWidth, it.MinHeight, it.Width, it.Height)
	case it.MaxWidth != 0 && it.MaxWidth < it.Width:
		return fmt.Errorf("%w: %s: maximum width %d below width %d", ErrInvalidItem, it.ID, it.MaxWidth, it.Width)
	case it.MaxHeight != 0 && it.MaxHeight < it.Height:
		return fmt.Errorf("%w: %s: maximum height %d below height %d", ErrInvalidItem, it.ID, it.MaxHeight, it.Height)
	}
	return nil
}

// Rect is an axis-aligned rectangle in cell coordinates. X addresses a column,
// Y a row; W and H are measured in cells.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Contains reports whether the cell (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Overlaps reports whether the two rectangles share at least one cell.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Area returns the number of cells covered by the rectangle.
func (r Rect) Area() int { return r.W * r.H }

// Shifted returns the rectangle moved by (dx, dy) cells.
func (r Rect) Shifted(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d@(%d,%d)", r.W, r.H, r.X, r.Y)
}

// cellIndex flattens (x, y) to a row-major cell index for a grid that is
// slots columns wide.
func cellIndex(x, y, slots int) int { return y*slots + x }

// cellCoords is the inverse of cellIndex.
func cellCoords(idx, slots int) (x, y int) { return idx % slots, idx / slots }

// DropZone identifies the sub-region of a target item's bounding box a
// pointer was released in. It selects the directional insertion strategy.
type DropZone int

const (
	// DropCenter applies the default push-down strategy.
	DropCenter DropZone = iota
	// DropTop inserts above the target, shifting conflicts away vertically.
	DropTop
	// DropBottom inserts immediately below the target.
	DropBottom
	// DropLeft inserts to the left of the target, falling back to DropBottom
	// when there is no horizontal room.
	DropLeft
	// DropRight inserts to the right of the target, falling back to
	// DropBottom when there is no horizontal room.
	DropRight
)

// String returns the zone name for logging.
func (z DropZone) String() string {
	switch z {
	case DropTop:
		return "top"
	case DropBottom:
		return "bottom"
	case DropLeft:
		return "left"
	case DropRight:
		return "right"
	default:
		return "center"
	}
}

// dropZoneEdge is the fraction of the target's bounding box counted as an
// edge region for drop-zone classification.
const dropZoneEdge = 0.25

// ZoneAt classifies a pointer offset normalized to a target item's bounding
// box, where (0,0) is the top-left corner and (1,1) the bottom-right. The
// outer 25% on each side counts as that side's zone; top and bottom take
// priority over left and right when both thresholds are met.
func ZoneAt(fx, fy float64) DropZone {
	switch {
	case fy < dropZoneEdge:
		return DropTop
	case fy > 1-dropZoneEdge:
		return DropBottom
	case fx < dropZoneEdge:
		return DropLeft
	case fx > 1-dropZoneEdge:
		return DropRight
	default:
		return DropCenter
	}
}
