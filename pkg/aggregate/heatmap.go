package aggregate

// Heatmap is a two dimensional cross tabulation. Cells[r][c] counts the
// entities carrying row key Rows[r] and column key Cols[c].
type Heatmap struct {
	Rows      []string    `json:"rows"`
	Cols      []string    `json:"cols"`
	Cells     [][]int     `json:"cells"`
	Intensity [][]float64 `json:"intensity"`
	Max       int         `json:"max"`
}

// At returns the count of the cell at row key r and column key c.
func (h Heatmap) At(r string, c string) int {
	for i, row := range h.Rows {
		if row != r {
			continue
		}
		for j, col := range h.Cols {
			if col == c {
				return h.Cells[i][j]
			}
		}
	}
	return 0
}

// CrossTab counts items by every pair of their row and column keys. Only
// the topRows rows and topCols columns with the largest marginal totals are
// kept; intensities are scaled against the largest remaining cell. Entities
// without a key land in the fallback row or column.
func CrossTab[T any](items []T, rowKey KeyFunc[T], colKey KeyFunc[T], topRows int, topCols int, opts ...Option) Heatmap {
	o := options{fallback: DefaultFallback}
	for _, opt := range opts {
		opt(&o)
	}

	rows := Keys(TopN(Group(items, rowKey, nil, opts...), topRows))
	cols := Keys(TopN(Group(items, colKey, nil, opts...), topCols))

	rowIndex := indexOf(rows)
	colIndex := indexOf(cols)

	cells := make([][]int, len(rows))
	for i := range cells {
		cells[i] = make([]int, len(cols))
	}

	keysOf := func(fn KeyFunc[T], item T) []string {
		keys := normalizeKeys(fn(item))
		if len(keys) == 0 {
			return []string{o.fallback}
		}
		return keys
	}

	largest := 0
	for _, item := range items {
		for _, r := range keysOf(rowKey, item) {
			i, ok := rowIndex[r]
			if !ok {
				continue
			}
			for _, c := range keysOf(colKey, item) {
				j, ok := colIndex[c]
				if !ok {
					continue
				}
				cells[i][j]++
				largest = max(largest, cells[i][j])
			}
		}
	}

	intensity := make([][]float64, len(rows))
	for i := range cells {
		intensity[i] = make([]float64, len(cols))
		for j := range cells[i] {
			intensity[i][j] = ratio(cells[i][j], largest)
		}
	}

	return Heatmap{
		Rows:      rows,
		Cols:      cols,
		Cells:     cells,
		Intensity: intensity,
		Max:       largest,
	}
}

func indexOf(keys []string) map[string]int {
	out := make(map[string]int, len(keys))
	for i, k := range keys {
		out[k] = i
	}
	return out
}
