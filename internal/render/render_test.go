// internal/render/render_test.go
package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astro-datacenter/rundb/internal/query"
	"github.com/astro-datacenter/rundb/internal/storage"
)

func sampleResult() *storage.Result {
	return &storage.Result{
		Columns: []query.ColumnMeta{{Label: "Sequ", RightAlign: true}, {Label: "Source"}},
		Rows:    [][]string{{"10000", "Crab"}, {"15000", "<b>Mrk421</b>"}},
		Total:   12,
	}
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, sampleResult()))
	assert.Equal(t, "Sequ\tSource\n10000\tCrab\n15000\t<b>Mrk421</b>\n", buf.String())
}

func TestHTML(t *testing.T) {
	var buf bytes.Buffer
	err := HTML(&buf, View{Title: "Sequences", Query: "SELECT 1", Offset: 10, Result: sampleResult()})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "<th>Sequ</th><th>Source</th>")
	assert.Contains(t, out, `<td align="right">10000</td><td>Crab</td>`)
	assert.Contains(t, out, "&lt;b&gt;Mrk421&lt;/b&gt;")
	assert.NotContains(t, out, "<b>Mrk421</b>")
	assert.Contains(t, out, `<pre class="query">SELECT 1</pre>`)
	assert.Contains(t, out, "Found 12 entries. Showing 11 - 12.")
}

func TestHTML_Empty(t *testing.T) {
	var buf bytes.Buffer
	res := &storage.Result{Columns: []query.ColumnMeta{{Label: "Sequ"}}, Rows: [][]string{}}
	require.NoError(t, HTML(&buf, View{Result: res}))
	assert.Contains(t, buf.String(), "Found 0 entries. Showing 0 - 0.")
	assert.NotContains(t, buf.String(), "class=\"query\"")
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Table(&buf, sampleResult()))
	out := buf.String()
	assert.Contains(t, out, "Sequ")
	assert.Contains(t, out, "Crab")
	assert.True(t, strings.HasSuffix(out, "2 of 12 rows\n"))
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, View{Title: "Sequences", Result: sampleResult()}))

	var got struct {
		Title   string              `json:"title"`
		Total   int64               `json:"total"`
		Columns []query.ColumnMeta  `json:"columns"`
		Rows    []map[string]string `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Sequences", got.Title)
	assert.Equal(t, int64(12), got.Total)
	assert.True(t, got.Columns[0].RightAlign)
	assert.Equal(t, map[string]string{"Sequ": "10000", "Source": "Crab"}, got.Rows[0])
}

func TestWrite(t *testing.T) {
	testCases := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{format: FormatText, want: "Sequ\tSource"},
		{format: FormatHTML, want: "<table"},
		{format: "", want: "<table"},
		{format: FormatJSON, want: `"total":12`},
		{format: FormatTable, want: "of 12 rows"},
		{format: "xml", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.format, func(t *testing.T) {
			var buf bytes.Buffer
			err := Write(&buf, tc.format, View{Result: sampleResult()})
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, buf.String(), tc.want)
		})
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/html; charset=utf-8", ContentType(FormatHTML))
	assert.Equal(t, "application/json; charset=utf-8", ContentType(FormatJSON))
	assert.Equal(t, "text/plain; charset=utf-8", ContentType(FormatTable))
}
