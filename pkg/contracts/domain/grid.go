package domain

// Grid is the 2D cell layout of one roster sheet. Rows may be ragged.
type Grid [][]Cell

// At returns the cell at (row, col), or an empty cell when out of range
func (g Grid) At(row, col int) Cell {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return Cell{}
	}
	return g[row][col]
}

// Rows returns the number of rows
func (g Grid) Rows() int {
	return len(g)
}

// Cols returns the width of the widest row
func (g Grid) Cols() int {
	width := 0
	for _, row := range g {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// TextGrid builds a grid of text cells, mostly useful for fixtures
func TextGrid(rows [][]string) Grid {
	grid := make(Grid, len(rows))
	for r, row := range rows {
		grid[r] = make([]Cell, len(row))
		for c, value := range row {
			grid[r][c] = TextCell(value)
		}
	}
	return grid
}

// Sheet is one visible roster sheet with its display title
type Sheet struct {
	Title string `json:"title"`
	Grid  Grid   `json:"-"`
}
