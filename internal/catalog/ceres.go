// internal/catalog/ceres.go
package catalog

import (
	"time"

	"github.com/astro-datacenter/rundb/internal/query"
)

// mcStep is a Monte-Carlo processing step with its own <key>Status table.
func mcStep(key string, limit time.Duration) query.StatusStep {
	table := key + "Status"
	return query.StatusStep{
		Key:       key,
		Alias:     key,
		TimeLimit: limit,
		Joins:     []string{table},
		Process: &query.ProcessColumns{
			Start:      table + ".fStartTime",
			Stop:       table + ".fStopTime",
			ReturnCode: table + ".fReturnCode",
			Available:  table + ".fAvailable",
		},
	}
}

// Ceres lists simulated files with their shower parameters and the state
// of the simulation and analysis chain.
var Ceres = &query.Page{
	Name:  "ceres",
	Title: "Monte-Carlo Files",
	Table: "CeresInfo",
	ID:    query.Column{Key: "fRunNumber", Expr: "CeresInfo.fRunNumber", Alias: "Run", RightAlign: true},
	Joins: []query.Join{
		{Key: "CorsikaInfo", Clause: "LEFT JOIN CorsikaInfo USING(fRunNumber, fFileNumber)"},
		{Key: "ParticleType", Clause: "LEFT JOIN ParticleType USING(fParticleTypeKEY)"},
		{Key: "RunType", Clause: "LEFT JOIN RunType USING(fRunTypeKEY)"},
		{Key: "AtmosphericModel", Clause: "LEFT JOIN AtmosphericModel USING(fAtmosphericModelKEY)"},
		{Key: "CeresSetup", Clause: "LEFT JOIN CeresSetup USING(fCeresSetupKEY)"},
		{Key: "CorsikaStatus", Clause: "LEFT JOIN CorsikaStatus USING(fRunNumber, fFileNumber)"},
		{Key: "CeresStatus", Clause: "LEFT JOIN CeresStatus USING(fRunNumber, fFileNumber)"},
		{Key: "SequenceFileStatus", Clause: "LEFT JOIN SequenceFileStatus USING(fRunNumber)"},
		{Key: "CallistoStatus", Clause: "LEFT JOIN CallistoStatus USING(fRunNumber)"},
		{Key: "StarStatus", Clause: "LEFT JOIN StarStatus USING(fRunNumber)"},
	},
	BaseJoins: []string{"CorsikaInfo"},
	Columns: []query.Column{
		{Key: "fFileNumber", Expr: "CeresInfo.fFileNumber", Alias: "File", RightAlign: true},
		{Key: "fNumEvents", Expr: "CorsikaInfo.fNumEvents", Alias: "Showers", RightAlign: true},
		{Key: "fNumEventsReUse", Expr: "CorsikaInfo.fNumEvents*CeresInfo.fNumReUseShowers", Alias: "Evts", RightAlign: true},
		{Key: "fNumReUseShowers", Expr: "CeresInfo.fNumReUseShowers", Alias: "reused", RightAlign: true},
		{Key: "fSequenceNumber", Expr: "CeresInfo.fSequenceNumber", Alias: "Sequ#", RightAlign: true},
		{Key: "fImpactMax", Alias: "Impact", RightAlign: true},
		{Key: "fViewConeMax", Alias: "Viewcone", RightAlign: true},
		{Key: "fStartingAltitude", Alias: "Starting alt.", RightAlign: true},
		{Key: "fMirrorDiameter", Alias: "Mirror diam.", RightAlign: true},
		{Key: "fZenithDistanceMin", Alias: "ZdMin", RightAlign: true},
		{Key: "fZenithDistanceMax", Alias: "ZdMax", RightAlign: true},
		{Key: "fAzimuthMin", Alias: "AzMin", RightAlign: true},
		{Key: "fAzimuthMax", Alias: "AzMax", RightAlign: true},
		{Key: "fEnergyMin", Alias: "Emin", RightAlign: true},
		{Key: "fEnergyMax", Alias: "Emax", RightAlign: true},
		{Key: "fEnergySlope", Alias: "Slope", RightAlign: true},
		{Key: "fParticleTypeName", Alias: "Particle", Joins: []string{"ParticleType"}},
		{Key: "fRunTypeName", Alias: "RunType", Joins: []string{"RunType"}},
		{Key: "fAtmosphericModelName", Alias: "Atm. model", Joins: []string{"AtmosphericModel"}},
		{Key: "fCeresSetupName", Alias: "Ceres setup", Joins: []string{"CeresSetup"}},
	},
	Enums: []query.Enum{
		{Column: "fParticleTypeName", Param: "fParticleTypeKEY", Check: "CorsikaInfo.fParticleTypeKEY"},
		{Column: "fRunTypeName", Param: "fRunTypeKEY", Check: "CeresInfo.fRunTypeKEY"},
		{Column: "fAtmosphericModelName", Param: "fAtmosphericModelKEY", Check: "CorsikaInfo.fAtmosphericModelKEY"},
		{Column: "fCeresSetupName", Param: "fCeresSetupKEY", Check: "CeresInfo.fCeresSetupKEY"},
	},
	Steps: []query.StatusStep{
		mcStep("Corsika", 48*time.Hour),
		mcStep("Ceres", 4*time.Hour),
		mcStep("SequenceFile", 2*time.Hour),
		mcStep("Callisto", 4*time.Hour),
		mcStep("Star", 2*time.Hour),
	},
	Filters: []query.Filter{
		query.Range{MinParam: "fRunMin", MaxParam: "fRunMax", Low: "CeresInfo.fRunNumber"},
		query.Equality{Param: "fSequenceNo", Expr: "CeresInfo.fSequenceNumber", Numeric: true},
	},
	Aggregates: []query.Aggregate{
		{Expr: "SUM(CorsikaInfo.fNumEvents)", Alias: "Showers", RightAlign: true},
		{Expr: "SUM(CorsikaInfo.fNumEvents*CeresInfo.fNumReUseShowers)", Alias: "Evts", RightAlign: true},
	},
	CountAlias:   "# Files",
	DefaultOrder: query.Order{Expr: "CeresInfo.fRunNumber, CeresInfo.fFileNumber"},
}
