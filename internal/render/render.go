// internal/render/render.go

// Package render formats query results for the different output formats
// of the query endpoint and the command line client.
package render

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/olekukonko/tablewriter"

	"github.com/astro-datacenter/rundb/internal/query"
	"github.com/astro-datacenter/rundb/internal/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Output formats
const (
	FormatHTML  = "html"
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
)

var ErrUnknownFormat = errors.New("unknown output format")

// Formats lists the supported formats.
var Formats = []string{FormatHTML, FormatText, FormatTable, FormatJSON}

// ContentType returns the HTTP content type of a format.
func ContentType(format string) string {
	switch format {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatJSON:
		return "application/json; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// View is one rendered result with the context it was produced in.
type View struct {
	Title  string
	Query  string // interpolated SQL, shown when non-empty
	Offset int
	Result *storage.Result
}

// Write renders v in the given format.
func Write(w io.Writer, format string, v View) error {
	switch format {
	case FormatHTML, "":
		return HTML(w, v)
	case FormatText:
		return Text(w, v.Result)
	case FormatTable:
		return Table(w, v.Result)
	case FormatJSON:
		return JSON(w, v)
	}
	return fmt.Errorf("%w: '%s'", ErrUnknownFormat, format)
}

// Text writes a tab-delimited header line followed by one line per row.
func Text(w io.Writer, res *storage.Result) error {
	labels := make([]string, len(res.Columns))
	for i, c := range res.Columns {
		labels[i] = c.Label
	}
	if _, err := fmt.Fprintln(w, strings.Join(labels, "\t")); err != nil {
		return err
	}
	for _, row := range res.Rows {
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}

// Table writes an ASCII table with numeric columns right aligned.
func Table(w io.Writer, res *storage.Result) error {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)

	labels := make([]string, len(res.Columns))
	aligns := make([]int, len(res.Columns))
	for i, c := range res.Columns {
		labels[i] = c.Label
		aligns[i] = tablewriter.ALIGN_LEFT
		if c.RightAlign {
			aligns[i] = tablewriter.ALIGN_RIGHT
		}
	}
	table.SetHeader(labels)
	table.SetColumnAlignment(aligns)
	table.AppendBulk(res.Rows)
	table.Render()
	_, err := fmt.Fprintf(w, "%d of %d rows\n", len(res.Rows), res.Total)
	return err
}

type jsonResult struct {
	Title   string              `json:"title,omitempty"`
	Query   string              `json:"query,omitempty"`
	Offset  int                 `json:"offset"`
	Total   int64               `json:"total"`
	Columns []query.ColumnMeta  `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

// JSON writes the result as one object with rows keyed by column label.
func JSON(w io.Writer, v View) error {
	out := jsonResult{
		Title:   v.Title,
		Query:   v.Query,
		Offset:  v.Offset,
		Total:   v.Result.Total,
		Columns: v.Result.Columns,
		Rows:    make([]map[string]string, 0, len(v.Result.Rows)),
	}
	for _, row := range v.Result.Rows {
		m := make(map[string]string, len(row))
		for i, cell := range row {
			if i < len(v.Result.Columns) {
				m[v.Result.Columns[i].Label] = cell
			}
		}
		out.Rows = append(out.Rows, m)
	}
	return json.NewEncoder(w).Encode(out)
}

var htmlTemplate = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
{{- if .Query}}
<pre class="query">{{.Query}}</pre>
{{- end}}
<table border="1">
<tr>{{range .Columns}}<th>{{.Label}}</th>{{end}}</tr>
{{- range .Rows}}
<tr>{{range .}}<td{{if .Right}} align="right"{{end}}>{{.Value}}</td>{{end}}</tr>
{{- end}}
</table>
<p>Found {{.Total}} entries. Showing {{.First}} - {{.Last}}.</p>
</body></html>
`))

type htmlCell struct {
	Value string
	Right bool
}

type htmlPage struct {
	Title   string
	Query   string
	Columns []query.ColumnMeta
	Rows    [][]htmlCell
	Total   int64
	First   int
	Last    int
}

// HTML writes a complete page with the result table. Values are escaped.
func HTML(w io.Writer, v View) error {
	res := v.Result
	page := htmlPage{
		Title:   v.Title,
		Query:   v.Query,
		Columns: res.Columns,
		Rows:    make([][]htmlCell, len(res.Rows)),
		Total:   res.Total,
		First:   v.Offset,
		Last:    v.Offset + len(res.Rows),
	}
	if len(res.Rows) > 0 {
		page.First = v.Offset + 1
	}
	for i, row := range res.Rows {
		cells := make([]htmlCell, len(row))
		for j, val := range row {
			cells[j] = htmlCell{Value: val, Right: j < len(res.Columns) && res.Columns[j].RightAlign}
		}
		page.Rows[i] = cells
	}
	return htmlTemplate.Execute(w, page)
}
