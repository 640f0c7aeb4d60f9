package domain

import (
	"maps"
	"slices"
)

// AuxInfo is the bibliography-relevant content of one auxiliary file.
type AuxInfo struct {
	// AuxFile is the path of the scanned auxiliary file.
	AuxFile string
	// Citations are the cited keys.
	Citations map[string]struct{}
	// Databases are the bibliography databases, each with a ".bib" extension.
	Databases map[string]struct{}
	// Styles are the bibliography styles, each with a ".bst" extension.
	Styles map[string]struct{}
}

// NewAuxInfo returns an empty AuxInfo for the given file.
func NewAuxInfo(auxFile string) AuxInfo {
	return AuxInfo{
		AuxFile:   auxFile,
		Citations: make(map[string]struct{}),
		Databases: make(map[string]struct{}),
		Styles:    make(map[string]struct{}),
	}
}

// Equal reports whether both snapshots name the same file with the same sets.
func (a AuxInfo) Equal(b AuxInfo) bool {
	return a.AuxFile == b.AuxFile &&
		maps.Equal(a.Citations, b.Citations) &&
		maps.Equal(a.Databases, b.Databases) &&
		maps.Equal(a.Styles, b.Styles)
}

// SortedDatabases returns the databases in lexical order.
func (a AuxInfo) SortedDatabases() []string {
	return slices.Sorted(maps.Keys(a.Databases))
}

// SortedStyles returns the styles in lexical order.
func (a AuxInfo) SortedStyles() []string {
	return slices.Sorted(maps.Keys(a.Styles))
}

// AuxSnapshotsEqual compares two ordered snapshot lists element by element.
func AuxSnapshotsEqual(a, b []AuxInfo) bool {
	return slices.EqualFunc(a, b, func(x, y AuxInfo) bool { return x.Equal(y) })
}
