// internal/plots/plots_test.go
package plots

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelFile(t *testing.T) {
	testCases := []struct {
		kind   string
		number int
		tab    int
		want   string
	}{
		{kind: "star", number: 123456, tab: 1, want: "star/0012/00123456/star00123456-tab1.png"},
		{kind: "calib", number: 98765, tab: 3, want: "callisto/0009/00098765/calib00098765-tab3.png"},
		{kind: "signal", number: 98765, tab: 0, want: "callisto/0009/00098765/signal00098765-tab0.png"},
		{kind: "ganymed", number: 4321, tab: 2, want: "ganymed/00004/00004321/ganymed00004321-tab2.png"},
		{kind: "gplotdb", number: 4321, tab: 2, want: "ganymed/00004/00004321/gplotdb00004321-tab2.png"},
		{kind: "", number: 0, tab: 5, want: "plotdb/plotdb00000000-tab5.png"},
	}
	for _, tc := range testCases {
		t.Run(tc.kind, func(t *testing.T) {
			k, err := LookupKind(tc.kind)
			require.NoError(t, err)
			assert.Equal(t, tc.want, k.RelFile(tc.number, tc.tab))
		})
	}

	_, err := LookupKind("status")
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.Equal(t, []string{"calib", "db", "ganymed", "gplotdb", "signal", "star"}, Kinds())
}

func TestLocator(t *testing.T) {
	root := t.TempDir()
	k, err := LookupKind("star")
	require.NoError(t, err)

	dir := filepath.Join(root, "star", "0001", "00012345")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "star.csv"), []byte("0\tstar\tStar overview\n1\tpsf\tPoint spread \"function\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "star00012345-tab1.png"), []byte("png"), 0o644))

	l := Locator{Root: root}

	tabs, err := l.Tabs(k, 12345)
	require.NoError(t, err)
	require.Len(t, tabs, 2)
	assert.Equal(t, []string{"0", "star", "Star overview"}, tabs[0])
	assert.Equal(t, `Point spread "function"`, tabs[1][2])

	p, ok := l.File(k, 12345, 1)
	assert.True(t, ok)
	assert.True(t, strings.HasSuffix(p, filepath.Join("00012345", "star00012345-tab1.png")))

	_, ok = l.File(k, 12345, 2)
	assert.False(t, ok)

	_, err = l.Tabs(k, 99999)
	assert.ErrorIs(t, err, ErrNoTabs)
}

func TestNavigate(t *testing.T) {
	list := []int{100, 200, 300}
	testCases := []struct {
		name    string
		list    []int
		current int
		want    Position
	}{
		{name: "Empty", list: nil, current: 100, want: Position{}},
		{name: "Single", list: []int{100}, current: 0, want: Position{Current: 100, Count: 1}},
		{name: "Start", list: list, current: 0, want: Position{Current: 100, Prev: 300, Next: 200, Count: 3}},
		{name: "Middle", list: list, current: 200, want: Position{Current: 200, Prev: 100, Next: 300, Count: 3}},
		{name: "Last has no next", list: list, current: 300, want: Position{Current: 300, Prev: 200, Count: 3}},
		{name: "Unknown", list: list, current: 150, want: Position{Current: 100, Prev: 300, Next: 200, Count: 3}},
		{name: "Two", list: []int{1, 2}, current: 1, want: Position{Current: 1, Prev: 2, Next: 2, Count: 2}},
		{name: "Two last wraps", list: []int{1, 2}, current: 2, want: Position{Current: 2, Prev: 1, Next: 1, Count: 2}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Navigate(tc.list, tc.current))
		})
	}
}
