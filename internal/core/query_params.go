// internal/core/query_params.go
package core

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Parameter names shared by every report page
const (
	ParamNumStart   = "fNumStart"
	ParamNumResults = "fNumResults"
	ParamSortBy     = "fSortBy"
	ParamSendTxt    = "fSendTxt"

	ToggleOn  = "On"
	ToggleOff = "Off"
)

// Params is a flat view of request parameters: one string value per key.
type Params map[string]string

// ParamsFromValues flattens url.Values, keeping the first value of each key.
func ParamsFromValues(values url.Values) Params {
	p := make(Params, len(values))
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		p[key] = strings.TrimSpace(vals[0])
	}
	return p
}

// Get returns the value of key or "".
func (p Params) Get(key string) string {
	return p[key]
}

// Has reports whether key carries a non-empty value.
func (p Params) Has(key string) bool {
	return p[key] != ""
}

// On reports whether the toggle key is switched on.
func (p Params) On(key string) bool {
	return p[key] == ToggleOn
}

// Merge returns a new Params holding stored values overridden by p.
// Neither receiver nor argument is modified.
func (p Params) Merge(stored Params) Params {
	out := make(Params, len(p)+len(stored))
	for k, v := range stored {
		out[k] = v
	}
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Paging holds the parsed pagination options of a page request.
type Paging struct {
	Offset int
	Limit  int
	Export bool // full text export, no LIMIT
}

// ParsePaging extracts offset, page size and export mode from the parameters.
func ParsePaging(p Params, defaultSize, maxSize int) (Paging, error) {
	paging := Paging{Offset: 0, Limit: defaultSize}

	if raw := p.Get(ParamNumStart); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return paging, fmt.Errorf("invalid '%s' parameter: must be an integer", ParamNumStart)
		}
		if offset < 0 {
			return paging, fmt.Errorf("invalid '%s' parameter: must be non-negative", ParamNumStart)
		}
		paging.Offset = offset
	}

	if raw := p.Get(ParamNumResults); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return paging, fmt.Errorf("invalid '%s' parameter: must be an integer", ParamNumResults)
		}
		if limit < 1 {
			return paging, fmt.Errorf("invalid '%s' parameter: must be at least 1", ParamNumResults)
		}
		if limit > maxSize {
			return paging, fmt.Errorf("invalid '%s' parameter: maximum is %d", ParamNumResults, maxSize)
		}
		paging.Limit = limit
	}

	paging.Export = p.Has(ParamSendTxt)
	return paging, nil
}

// SortSpec is a parsed "<column><direction-marker>" sort specifier.
type SortSpec struct {
	Key  string
	Desc bool
}

// ParseSort splits a sort specifier such as "fSequenceFirst-" into key and direction.
// A trailing '-' selects descending order; a trailing '+' (or none) ascending.
// ok is false when raw is empty.
func ParseSort(raw string) (spec SortSpec, ok bool, err error) {
	if raw == "" {
		return SortSpec{}, false, nil
	}
	switch raw[len(raw)-1] {
	case '-':
		spec = SortSpec{Key: raw[:len(raw)-1], Desc: true}
	case '+':
		spec = SortSpec{Key: raw[:len(raw)-1]}
	default:
		spec = SortSpec{Key: raw}
	}
	if spec.Key == "" {
		return SortSpec{}, false, fmt.Errorf("invalid '%s' parameter: missing column", ParamSortBy)
	}
	return spec, true, nil
}

// ParseIntList parses a list of integers separated by spaces and/or commas.
func ParseIntList(raw string) ([]int, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid number '%s' in list", f)
		}
		out = append(out, n)
	}
	return out, nil
}
