// internal/dataset/check.go
package dataset

import (
	"fmt"
	"strings"

	"github.com/astro-datacenter/rundb/internal/domain"
)

// Level grades a finding. Any ERROR blocks storing the data set.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Quality limits applied by Check
const (
	RunTimeLimit        = 5.0 // minutes
	UnsuitableLimit     = 15.0
	IsolatedLimit       = 0.0
	IsolatedMaxCluster  = 0.0
	PedRmsTolerance     = 0.09
	ScaleLimit          = 1.3
	InhomogeneityLimit  = 13.0
	NumStarsLimit       = 20.0
	NumStarsCorrLimit   = 10.0
	obsModeUnknownLimit = 1 // keys up to this one mark old data without a mode
)

// Finding is one message of a check.
type Finding struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Report is the database information a selection is checked against.
type Report struct {
	On, Off       domain.SequenceStats
	ModeKey       int64   // key of the mode implied by the selection
	OnModeKeys    []int64 // distinct modes of the on sequences
	OnDTKeys      []int64 // distinct discriminator tables of the on sequences
	OnSourceNames []string
	RealSources   []domain.RealSource
}

// Result is the outcome of Check.
type Result struct {
	Findings []Finding `json:"findings"`
	Errors   int       `json:"errors"`
}

// OK reports whether the data set may be stored.
func (r Result) OK() bool {
	return r.Errors == 0
}

// add appends a finding and counts errors.
func (r *Result) add(level Level, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{Level: level, Message: fmt.Sprintf(format, args...)})
	if level == LevelError {
		r.Errors++
	}
}

// Check validates a selection. Quality limits give INFO or WARN findings;
// inconsistent selections and missing metadata give ERRORs.
func Check(sel Selection, rep Report) Result {
	res := Result{Findings: make([]Finding, 0)}
	if len(sel.On) == 0 {
		res.add(LevelError, "You have to select at least one on-sequence.")
		return res
	}

	// Unknown sequences
	if rep.On.Count < int64(len(sel.On)) {
		res.add(LevelError, "Only %d of your %d on-sequences are in the database.", rep.On.Count, len(sel.On))
	}
	if len(sel.Off) > 0 && rep.Off.Count < int64(len(sel.Off)) {
		res.add(LevelError, "Only %d of your %d off-sequences are in the database.", rep.Off.Count, len(sel.Off))
	}

	groups := []struct {
		name  string
		stats domain.SequenceStats
		used  bool
	}{
		{"on", rep.On, true},
		{"off", rep.Off, len(sel.Off) > 0},
	}
	// Quality limits, per group
	for _, g := range groups {
		if !g.used {
			continue
		}
		v := g.stats
		if v.NumStarsCorMin < NumStarsCorrLimit {
			res.add(LevelWarn, "At least one of your %s-sequences has less than %g correlated stars (%g).", g.name, NumStarsCorrLimit, v.NumStarsCorMin)
		}
		if v.NumStarsMin < NumStarsLimit {
			res.add(LevelWarn, "At least one of your %s-sequences has less than %g identified stars (%g).", g.name, NumStarsLimit, v.NumStarsMin)
		}
		if v.RunTimeMin < RunTimeLimit {
			res.add(LevelInfo, "At least one of your %s-sequences is shorter than %g min (%g min).", g.name, RunTimeLimit, v.RunTimeMin)
		}
		if v.InhomogeneityMax > InhomogeneityLimit {
			res.add(LevelWarn, "At least one of your %s-sequences has an inhomogeneity larger than %g (%g).", g.name, InhomogeneityLimit, v.InhomogeneityMax)
		}
		if v.UnsuitableMax > UnsuitableLimit {
			res.add(LevelWarn, "At least one of your %s-sequences has more than %g unsuitable inner pixel (%g).", g.name, UnsuitableLimit, v.UnsuitableMax)
		}
		if v.IsolatedMax > IsolatedLimit {
			res.add(LevelWarn, "At least one of your %s-sequences has more than %g isolated inner pixel (%g).", g.name, IsolatedLimit, v.IsolatedMax)
		}
		if v.IsolatedClusterMax > IsolatedMaxCluster {
			res.add(LevelWarn, "At least one of your %s-sequences has more than %g isolated max cluster (%g).", g.name, IsolatedMaxCluster, v.IsolatedClusterMax)
		}
	}

	// Pedestal RMS is compared with the on average; off data must lie within the tolerance on both sides
	pedHigh := rep.On.PedRmsAvg + PedRmsTolerance
	pedLow := rep.On.PedRmsAvg - PedRmsTolerance
	if rep.On.PedRmsMax > pedHigh {
		res.add(LevelWarn, "At least one of your on-sequences has a PedRms larger than %g (%g).", pedHigh, rep.On.PedRmsMax)
	}
	if len(sel.Off) > 0 {
		if rep.Off.PedRmsMax > pedHigh {
			res.add(LevelWarn, "At least one of your off-sequences has a PedRms larger than %g (%g).", pedHigh, rep.Off.PedRmsMax)
		}
		if rep.Off.PedRmsMin < pedLow {
			res.add(LevelWarn, "At least one of your off-sequences has a PedRms smaller than %g (%g).", pedLow, rep.Off.PedRmsMin)
		}
		if rep.Off.RunTimeSum > 0 {
			if scale := rep.On.RunTimeSum / rep.Off.RunTimeSum; scale > ScaleLimit {
				res.add(LevelWarn, "Your scale factor is larger than %g (%.2f). Try to find more off data!", ScaleLimit, scale)
			}
		}
	}

	// Consistency of the selection
	if len(rep.OnModeKeys) > 0 {
		// Old data has no observation mode and is not checked
		if key := rep.OnModeKeys[0]; key != rep.ModeKey && key > obsModeUnknownLimit {
			res.add(LevelError, "You have a mistake in your observation mode.")
		}
	}
	if both := sel.Both(); len(both) > 0 {
		res.add(LevelError, "You have selected sequences (%s) as On AND Off.", joinInts(both))
	}
	if len(rep.RealSources) > 1 {
		res.add(LevelError, "You have selected more than one (%d) on source.", len(rep.RealSources))
	}
	if len(rep.OnModeKeys) > 1 {
		res.add(LevelWarn, "You have selected more than one (%d) different observation modes in your on sequences.", len(rep.OnModeKeys))
	}
	if len(rep.OnDTKeys) > 1 {
		res.add(LevelWarn, "Your selected on sequences have more than one (%d) different discriminator threshold tables.", len(rep.OnDTKeys))
	}
	if _, ok := rep.RealSource(); !ok {
		res.add(LevelError, "The source you selected does not have a real source key yet (%s).", strings.Join(rep.OnSourceNames, " "))
	}
	// Name and comment are free text but required
	if strings.TrimSpace(sel.Name) == "" {
		res.add(LevelError, "You have to choose a name.")
	}
	if strings.TrimSpace(sel.Comment) == "" {
		res.add(LevelError, "You have to comment your data set.")
	}
	return res
}

// RealSource returns the single real source of the on sequences.
func (r Report) RealSource() (domain.RealSource, bool) {
	if len(r.RealSources) == 0 || r.RealSources[0].Key == 0 {
		return domain.RealSource{}, false
	}
	return r.RealSources[0], true
}
