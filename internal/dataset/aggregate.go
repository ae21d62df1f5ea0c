package dataset

// Aggregate helpers over one resolved column.
//
// All four numeric aggregates operate on the eligible values of a
// column: finite numbers only, absent and non-numeric cells excluded
// rather than counted as zero. When no cell is eligible the second
// return is false, the "no data" signal, so callers never see a
// silent 0 or a divide-by-zero NaN.

// Count returns the number of rows in the table. It counts rows, not
// eligible cells, so it is defined for every table including empty ones.
func (t *Table) Count() int { return len(t.Rows) }

// Sum returns the sum of the eligible values in a column.
func (t *Table) Sum(col int) (float64, bool) {
	values := t.Numbers(col)
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum, true
}

// Avg returns the arithmetic mean of the eligible values in a column.
func (t *Table) Avg(col int) (float64, bool) {
	values := t.Numbers(col)
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// Min returns the smallest eligible value in a column.
func (t *Table) Min(col int) (float64, bool) {
	values := t.Numbers(col)
	if len(values) == 0 {
		return 0, false
	}
	minV := values[0]
	for _, v := range values[1:] {
		if v < minV {
			minV = v
		}
	}
	return minV, true
}

// Max returns the largest eligible value in a column.
func (t *Table) Max(col int) (float64, bool) {
	values := t.Numbers(col)
	if len(values) == 0 {
		return 0, false
	}
	maxV := values[0]
	for _, v := range values[1:] {
		if v > maxV {
			maxV = v
		}
	}
	return maxV, true
}
