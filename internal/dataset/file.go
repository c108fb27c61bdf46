// internal/dataset/file.go
package dataset

import (
	"fmt"
	"strings"
)

// Catalog is the source catalog referenced by every data-set file.
const Catalog = "/magic/datacenter/setup/magic_favorites_dc.edb"

// FileInput describes a stored data set for File.
type FileInput struct {
	On, Off    []int
	SourceName string
	RunTime    float64 // minutes
	Name       string
	Comment    string
}

// File renders the data-set file read by the analysis chain.
func File(in FileInput) string {
	var b strings.Builder
	b.WriteString("AnalysisNumber: 1\n\n")
	fmt.Fprintf(&b, "SequencesOn: %s\n", joinInts(in.On))
	if len(in.Off) > 0 {
		fmt.Fprintf(&b, "SequencesOff: %s\n", joinInts(in.Off))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "SourceName: %s\n", in.SourceName)
	fmt.Fprintf(&b, "Catalog: %s\n", Catalog)
	// Without off sequences the background comes from the on data
	if len(in.Off) == 0 {
		b.WriteString("WobbleMode: On\n")
	}
	fmt.Fprintf(&b, "RunTime: %s\n", formatMinutes(in.RunTime))
	fmt.Fprintf(&b, "Name: %s\n", in.Name)
	fmt.Fprintf(&b, "Comment: %s\n", in.Comment)
	return b.String()
}

// formatMinutes prints at most two decimals, e.g. 60, 12.5.
func formatMinutes(m float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", m), "0"), ".")
}
