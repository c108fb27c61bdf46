// internal/catalog/catalog_test.go
package catalog

import (
	"strings"
	"testing"
	"time"

	"github.com/astro-datacenter/rundb/internal/core"
	"github.com/astro-datacenter/rundb/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagesValidate(t *testing.T) {
	require.NoError(t, Validate())
	for _, name := range Names() {
		p, err := Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, name, p.Name)
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("passwords")
	assert.ErrorIs(t, err, ErrUnknownPage)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"ceres", "datasets", "optical", "runs", "sequencebuild", "sequences"}, Names())
}

func TestSequencesRangeAndSort(t *testing.T) {
	params := core.Params{"fRunMin": "10000", "fRunMax": "20000", "fSortBy": "fSequenceFirst-"}
	req, err := query.NewRequest(Sequences, params, query.Options{Now: time.Now(), DefaultPageSize: 20, MaxPageSize: 100})
	require.NoError(t, err)
	stmt, err := query.Build(req)
	require.NoError(t, err)

	dbg := stmt.Debug()
	assert.Equal(t, 1, strings.Count(dbg, "fSequenceFirst BETWEEN 10000 AND 20000"))
	assert.Contains(t, dbg, "ORDER BY Sequences.fSequenceFirst DESC")
	assert.Contains(t, dbg, "Source.fTest = 'no'")
	assert.Equal(t, 1, strings.Count(dbg, "LEFT JOIN Source"))
}

func TestSequencesTestFlag(t *testing.T) {
	req, err := query.NewRequest(Sequences, core.Params{"fTest": "On"}, query.Options{DefaultPageSize: 20, MaxPageSize: 100})
	require.NoError(t, err)
	stmt, err := query.Build(req)
	require.NoError(t, err)
	assert.NotContains(t, stmt.SQL, "WHERE")
	assert.NotContains(t, stmt.SQL, "LEFT JOIN Source")
}

func TestPagesBuildWithEverythingOn(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			p, err := Lookup(name)
			require.NoError(t, err)
			params := core.Params{}
			for _, c := range p.Columns {
				params[c.Key] = core.ToggleOn
			}
			for _, s := range p.Steps {
				params[s.Key] = core.ToggleOn
			}
			req, err := query.NewRequest(p, params, query.Options{DefaultPageSize: 20, MaxPageSize: 100})
			require.NoError(t, err)
			stmt, err := query.Build(req)
			require.NoError(t, err)
			assert.Len(t, stmt.Columns, 1+len(p.Columns)+len(p.Steps))
			assert.Equal(t, strings.Count(stmt.SQL, "?"), len(stmt.Args))
		})
	}
}

func TestCeresProcessSteps(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	params := core.Params{"Corsika": core.ToggleOn, "Star": core.ToggleOn, "fSequenceNo": "42"}
	req, err := query.NewRequest(Ceres, params, query.Options{Now: now, DefaultPageSize: 20, MaxPageSize: 100})
	require.NoError(t, err)
	stmt, err := query.Build(req)
	require.NoError(t, err)

	dbg := stmt.Debug()
	assert.Contains(t, dbg, "LEFT JOIN CorsikaInfo USING(fRunNumber, fFileNumber)")
	assert.Contains(t, dbg, "'2024-03-08 12:00:00' < CorsikaStatus.fStartTime")
	assert.Contains(t, dbg, "'2024-03-10 10:00:00' < StarStatus.fStartTime")
	assert.Contains(t, dbg, "CeresInfo.fSequenceNumber = 42")
	assert.NotContains(t, dbg, "CeresStatus")
	assert.Contains(t, dbg, "ORDER BY CeresInfo.fRunNumber")
}

func TestSequenceBuildDateRange(t *testing.T) {
	tests := []struct {
		name    string
		params  core.Params
		want    string
		wantErr bool
	}{
		{
			name:   "Night range",
			params: core.Params{"fRunMin": "2024-03-01", "fRunMax": "2024-03-31"},
			want:   "SequenceBuildStatus.fDate BETWEEN '2024-03-01' AND '2024-03-31'",
		},
		{
			name:    "Run numbers are not dates",
			params:  core.Params{"fRunMin": "10000", "fRunMax": "20000"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := query.NewRequest(SequenceBuild, tt.params, query.Options{DefaultPageSize: 20, MaxPageSize: 100})
			if tt.wantErr {
				assert.ErrorIs(t, err, query.ErrMalformedRequest)
				return
			}
			require.NoError(t, err)
			stmt, err := query.Build(req)
			require.NoError(t, err)
			assert.Contains(t, stmt.Debug(), tt.want)
		})
	}
}
