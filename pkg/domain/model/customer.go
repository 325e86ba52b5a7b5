package model

import "strings"

// Customer is a row of the Customers list. String fields are trimmed on load.
type Customer struct {
	Name         string
	ProjectName  string
	Folder       string
	BuildTarget  string
	WhatsNew     string
	ReleaseNotes string
}

// Key is the lower-cased customer name used in storage paths and template file names.
func (x Customer) Key() string {
	return strings.ToLower(strings.TrimSpace(x.Name))
}

// MatchesName reports whether name selects this customer (trimmed, case-insensitive).
func (x Customer) MatchesName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(x.Name))
}

// GeneralCustomer is the customer key of the public download page.
const GeneralCustomer = "general"

// Distribution records which build target derives from which base.
type Distribution struct {
	Name             string
	BaseDistribution string
}

// Distributions is the full distributions list.
type Distributions []Distribution

// BaseOf returns the direct base distribution of buildTarget. When the list
// has several rows for the same name the last one wins.
func (x Distributions) BaseOf(buildTarget string) string {
	var base string
	for _, d := range x {
		if d.Name == buildTarget {
			base = d.BaseDistribution
		}
	}
	return base
}

var (
	professionalTargets = map[string]bool{
		"professional":  true,
		"biologics_pro": true,
		"pro_plus":      true,
	}
	professionalBases = map[string]bool{
		"professional": true,
		"pro_plus":     true,
	}
)

// IsProfessional reports whether a build target belongs to the professional
// tier, either directly or through its base distribution.
func IsProfessional(buildTarget, baseDistribution string) bool {
	return professionalTargets[buildTarget] || professionalBases[baseDistribution]
}
