package main

const SpatialCellSize = 80.0 // ~2x largest entity radius

// Entity kinds stored in the grid
const (
	KindPlayer = 'p'
	KindMob    = 'm'
	KindItem   = 'i'
)

// EntityRef identifies an entity in the grid
type EntityRef struct {
	Kind byte
	ID   string
}

// SpatialGrid is a grid broad-phase for aggro, combat and pickup queries.
// It is rebuilt at the start of every tick from the entity store.
type SpatialGrid struct {
	cellSize   float64
	cols, rows int
	cells      [][]EntityRef
}

// NewSpatialGrid creates a grid covering a w x h world
func NewSpatialGrid(w, h float64) *SpatialGrid {
	cols := int(w/SpatialCellSize) + 1
	rows := int(h/SpatialCellSize) + 1
	return &SpatialGrid{
		cellSize: SpatialCellSize,
		cols:     cols,
		rows:     rows,
		cells:    make([][]EntityRef, cols*rows),
	}
}

// Clear resets all cells (keeps allocated capacity)
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *SpatialGrid) cellIdx(x, y float64) int {
	cx := int(x / g.cellSize)
	cy := int(y / g.cellSize)
	if cx < 0 {
		cx = 0
	} else if cx >= g.cols {
		cx = g.cols - 1
	}
	if cy < 0 {
		cy = 0
	} else if cy >= g.rows {
		cy = g.rows - 1
	}
	return cy*g.cols + cx
}

// Insert adds an entity reference at the given position
func (g *SpatialGrid) Insert(x, y float64, ref EntityRef) {
	idx := g.cellIdx(x, y)
	g.cells[idx] = append(g.cells[idx], ref)
}

// QueryBuf appends all refs in cells overlapping the bounding box of the
// query circle to buf and returns the extended slice, avoiding per-call
// allocation in the tick loop
func (g *SpatialGrid) QueryBuf(x, y, radius float64, buf []EntityRef) []EntityRef {
	minCX := int((x - radius) / g.cellSize)
	maxCX := int((x + radius) / g.cellSize)
	minCY := int((y - radius) / g.cellSize)
	maxCY := int((y + radius) / g.cellSize)
	if minCX < 0 {
		minCX = 0
	}
	if maxCX >= g.cols {
		maxCX = g.cols - 1
	}
	if minCY < 0 {
		minCY = 0
	}
	if maxCY >= g.rows {
		maxCY = g.rows - 1
	}
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			buf = append(buf, g.cells[cy*g.cols+cx]...)
		}
	}
	return buf
}

// Query returns all refs in cells overlapping the query circle
func (g *SpatialGrid) Query(x, y, radius float64) []EntityRef {
	return g.QueryBuf(x, y, radius, nil)
}
