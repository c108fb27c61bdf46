// internal/catalog/optical.go
package catalog

import "github.com/astro-datacenter/rundb/internal/query"

// Optical lists the exposures of the optical telescopes.
var Optical = &query.Page{
	Name:  "optical",
	Title: "Optical Data",
	Table: "OpticalData",
	ID:    query.Column{Key: "fTimestamp", Expr: "OpticalData.fTimestamp", Alias: "Time"},
	Joins: []query.Join{
		{Key: "Telescope", Clause: "LEFT JOIN Telescope USING(fTelescopeKEY)"},
		{Key: "Object", Clause: "LEFT JOIN Object USING(fObjectKEY)"},
		{Key: "Band", Clause: "LEFT JOIN Band USING(fBandKEY)"},
		{Key: "FitsFile", Clause: "LEFT JOIN FitsFile USING(fFitsFileKEY)"},
		{Key: "Status", Clause: "LEFT JOIN Status USING(fStatusKEY)"},
	},
	Columns: []query.Column{
		{Key: "fExposure", Alias: "Exposure", RightAlign: true},
		{Key: "fSkyLevel", Alias: "Skylevel", RightAlign: true},
		{Key: "fFWHM", Alias: "FWHM", RightAlign: true},
		{Key: "fApertureRadius", Alias: "Aperture radius", RightAlign: true},
		{Key: "fInstrumentalMag", Alias: "instrumental magnitude", RightAlign: true},
		{Key: "fInstrumentalMagErr", Alias: "instrum. mag. error", RightAlign: true},
		{Key: "fTelescopeName", Alias: "Telescope", Joins: []string{"Telescope"}},
		{Key: "fObjectName", Alias: "Object Name", Joins: []string{"Object"}},
		{Key: "fBandName", Alias: "Band", Joins: []string{"Band"}},
		{Key: "fFitsFileName", Alias: "Fits File", Joins: []string{"FitsFile"}},
		{Key: "fStatusName", Alias: "Status Code", Joins: []string{"Status"}},
	},
	Enums: []query.Enum{
		{Column: "fTelescopeName", Param: "fTelescopeKEY", Check: "OpticalData.fTelescopeKEY"},
		{Column: "fObjectName", Param: "fObjectKEY", Check: "OpticalData.fObjectKEY"},
		{Column: "fBandName", Param: "fBandKEY", Check: "OpticalData.fBandKEY"},
		{Column: "fFitsFileName", Param: "fFitsFileKEY", Check: "OpticalData.fFitsFileKEY"},
		{Column: "fStatusName", Param: "fStatusKEY", Check: "OpticalData.fStatusKEY"},
	},
	Filters: []query.Filter{
		query.DateBound{Param: "fStartDate", Expr: "OpticalData.fTimestamp", Op: ">=", Clock: "13:00:00", DayOffset: -1},
		query.DateBound{Param: "fStopDate", Expr: "OpticalData.fTimestamp", Op: "<", Clock: "13:00:00"},
	},
	CountAlias:   "# Runs",
	DefaultOrder: query.Order{Expr: "OpticalData.fTimestamp"},
}
