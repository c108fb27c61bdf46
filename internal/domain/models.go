// internal/domain/models.go
package domain

import "time"

// User is a data-center account allowed to query and build data sets.
type User struct {
	ID           int64
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// Exec is one write statement of an ordered batch.
type Exec struct {
	SQL  string
	Args []any
}

// ExecResult reports the outcome of one batch statement.
type ExecResult struct {
	SQL          string `json:"sql"`
	RowsAffected int64  `json:"rows_affected"`
	Error        string `json:"error,omitempty"`
}

// SequenceStats are the aggregated quality values of a set of sequences.
// Run times are in minutes.
type SequenceStats struct {
	Count              int64
	RunTimeMin         float64
	RunTimeMax         float64
	RunTimeSum         float64
	InhomogeneityMax   float64
	UnsuitableMax      float64
	IsolatedMax        float64
	IsolatedClusterMax float64
	PedRmsMin          float64
	PedRmsMax          float64
	PedRmsAvg          float64
	NumStarsMin        float64
	NumStarsCorMin     float64
	ZenithDistanceMin  float64
	ZenithDistanceMax  float64
	RunStart           string
	RunStop            string
	DataRateAvg        float64
	PSFAvg             float64
	PSFMin             float64
	PSFMax             float64
}

// RealSource is a physical source; several catalog names may share one key.
type RealSource struct {
	Key  int64
	Name string
}

// DataSet is the stored description of a data set.
type DataSet struct {
	Number            int64
	UserKey           int64
	Name              string
	Comment           string
	SourceKey         int64
	ObservationMode   int64
	RunStart          string
	RunStop           string
	ZenithDistanceMin float64
	ZenithDistanceMax float64
	RunTime           float64
}

// Comment is a free-text remark attached to a run or a sequence.
type Comment struct {
	Key     int64  `json:"key"`
	Night   string `json:"night"`
	Target  int64  `json:"target"` // run or sequence number
	Comment string `json:"comment"`
	User    string `json:"user"`
}

// Source is a catalog entry of an observed object.
type Source struct {
	Key  int64  `json:"key"`
	Name string `json:"name"`
}
