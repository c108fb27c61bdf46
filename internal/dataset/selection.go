// internal/dataset/selection.go

// Package dataset assembles data sets from on and off sequences: it checks a
// selection against quality limits, builds the ordered statements that store
// it and renders the data-set file read by the analysis.
package dataset

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/astro-datacenter/rundb/internal/core"
)

// Observation modes implied by a selection
const (
	ModeWobble = "Wobble"
	ModeOnOff  = "On"
)

var ErrInvalidSequences = errors.New("invalid sequence list")

// Selection is a data set as chosen by a user.
type Selection struct {
	On      []int
	Off     []int
	Name    string
	Comment string
	UserKey int64
	// Update is the number of an existing data set to replace; 0 inserts a new one.
	Update int64
}

// ParseSequences parses a list of sequence numbers separated by spaces or commas.
// Duplicates are dropped; order is ascending.
func ParseSequences(raw string) ([]int, error) {
	nums, err := core.ParseIntList(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSequences, err)
	}
	seen := make(map[int]bool, len(nums))
	out := make([]int, 0, len(nums))
	for _, n := range nums {
		if n <= 0 {
			return nil, fmt.Errorf("%w: '%d' is not a sequence number", ErrInvalidSequences, n)
		}
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out, nil
}

// Mode is the observation mode of the selection: wobble without off sequences.
func (s Selection) Mode() string {
	if len(s.Off) == 0 {
		return ModeWobble
	}
	return ModeOnOff
}

// Both returns the sequences selected as on and as off at the same time.
func (s Selection) Both() []int {
	off := make(map[int]bool, len(s.Off))
	for _, n := range s.Off {
		off[n] = true
	}
	var both []int
	for _, n := range s.On {
		if off[n] {
			both = append(both, n)
		}
	}
	return both
}

// Number returns the data-set number the selection is written to.
func (s Selection) Number(next int64) int64 {
	if s.Update > 0 {
		return s.Update
	}
	return next
}

func joinInts(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, " ")
}
