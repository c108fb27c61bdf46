// internal/plots/plots.go

// Package plots locates the plot files written by the analysis programs and
// navigates between the sequences they belong to.
package plots

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

var (
	ErrUnknownKind = errors.New("unknown plot type")
	ErrNoTabs      = errors.New("no tab list for plot")
	ErrNoPlot      = errors.New("plot not found")
)

// Kind describes where one type of plots is stored.
type Kind struct {
	Name   string
	Dir    string
	CSV    string // base name of the tab list
	Prefix string // file name prefix of the images
	Wide   bool   // directories are grouped by thousands instead of ten-thousands
}

var kinds = map[string]Kind{
	"star":    {Name: "star", Dir: "star", CSV: "star", Prefix: "star"},
	"calib":   {Name: "calib", Dir: "callisto", CSV: "calib", Prefix: "calib"},
	"signal":  {Name: "signal", Dir: "callisto", CSV: "signal", Prefix: "signal"},
	"ganymed": {Name: "ganymed", Dir: "ganymed", CSV: "ganymed", Prefix: "ganymed", Wide: true},
	"gplotdb": {Name: "gplotdb", Dir: "ganymed", CSV: "plotdb", Prefix: "gplotdb", Wide: true},
	"db":      {Name: "db", Dir: "plotdb", CSV: "plotdb", Prefix: "plotdb"},
}

// DefaultKind is used when a request names none.
const DefaultKind = "db"

// LookupKind returns the plot type registered under name.
func LookupKind(name string) (Kind, error) {
	if name == "" {
		name = DefaultKind
	}
	k, ok := kinds[name]
	if !ok {
		return Kind{}, fmt.Errorf("%w: '%s'", ErrUnknownKind, name)
	}
	return k, nil
}

// Kinds returns the registered plot type names in sorted order.
func Kinds() []string {
	names := make([]string, 0, len(kinds))
	for n := range kinds {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RelDir is the directory of the plots of number relative to the plot root.
// A number <= 0 addresses the top directory of the kind.
func (k Kind) RelDir(number int) string {
	if number <= 0 {
		return k.Dir + "/"
	}
	if k.Wide {
		return fmt.Sprintf("%s/%05d/%08d/", k.Dir, number/1000, number)
	}
	return fmt.Sprintf("%s/%04d/%08d/", k.Dir, number/10000, number)
}

// RelFile is the image of one tab relative to the plot root.
func (k Kind) RelFile(number, tab int) string {
	return fmt.Sprintf("%s%s%08d-tab%d.png", k.RelDir(number), k.Prefix, number, tab)
}

// Locator resolves plot paths below a root directory.
type Locator struct {
	Root string
}

// File returns the absolute path of one tab image and whether it exists.
func (l Locator) File(k Kind, number, tab int) (string, bool) {
	p := filepath.Join(l.Root, filepath.FromSlash(k.RelFile(number, tab)))
	_, err := os.Stat(p)
	return p, err == nil
}

// Tabs reads the tab list written next to the plots of number.
// Each line holds tab-separated fields describing one tab.
func (l Locator) Tabs(k Kind, number int) ([][]string, error) {
	p := filepath.Join(l.Root, filepath.FromSlash(k.RelDir(number)), k.CSV+".csv")
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoTabs, p)
		}
		return nil, fmt.Errorf("failed to open tab list: %w", err)
	}
	defer f.Close()
	return readTabs(f)
}

func readTabs(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse tab list: %w", err)
	}
	return records, nil
}

// Position is the place of one sequence in a navigation list.
type Position struct {
	Current int `json:"current"`
	Prev    int `json:"prev,omitempty"`
	Next    int `json:"next,omitempty"`
	Count   int `json:"count"`
}

// Navigate finds current in list and its neighbours. Prev wraps from the
// first entry to the last; Next stops at the last entry unless the list has
// exactly two entries. A current of 0, or one not in the list, selects the
// first entry. A list with one entry has no neighbours.
func Navigate(list []int, current int) Position {
	pos := Position{Count: len(list)}
	if len(list) == 0 {
		return pos
	}
	idx := 0
	for i, n := range list {
		if n == current {
			idx = i
			break
		}
	}
	pos.Current = list[idx]
	if len(list) == 1 {
		return pos
	}
	pos.Prev = list[(idx-1+len(list))%len(list)]
	switch {
	case idx < len(list)-1:
		pos.Next = list[idx+1]
	case len(list) == 2:
		pos.Next = list[0]
	}
	return pos
}
