package efficiency

import (
	"fmt"

	"github.com/phil-mansfield/table"
)

// ReadTable reads an efficiency table from a text file whose first column is
// the momentum threshold and whose second column is the probability.
func ReadTable(fname string) (Table, error) {
	cols, err := table.ReadTable(fname, []int{0, 1}, nil)
	if err != nil {
		return nil, err
	}

	thresholds, probs := cols[0], cols[1]
	entries := make([]Entry, len(thresholds))
	for i := range entries {
		entries[i] = Entry{thresholds[i], probs[i]}
	}

	t, err := NewTable(entries)
	if err != nil {
		return nil, fmt.Errorf("reading efficiency file '%s': %w", fname, err)
	}
	return t, nil
}
