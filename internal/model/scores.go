package model

import "time"

// Domain identifies one of the seven livability factors.
type Domain string

const (
	DomainCrime      Domain = "crime"
	DomainSchools    Domain = "schools"
	DomainTransit    Domain = "transit"
	DomainHousing    Domain = "housing"
	DomainDiversity  Domain = "diversity"
	DomainHealthcare Domain = "healthcare"
	DomainLifestyle  Domain = "lifestyle"
)

// Domains returns all seven domains in canonical order. The order is fixed so
// that every iteration over domains (merging, reporting, serialization)
// produces byte-identical output across runs.
func Domains() []Domain {
	return []Domain{
		DomainCrime,
		DomainSchools,
		DomainTransit,
		DomainHousing,
		DomainDiversity,
		DomainHealthcare,
		DomainLifestyle,
	}
}

// Tier is the ordinal presentation bucket derived from a composite score.
type Tier string

const (
	TierExcellent    Tier = "Excellent"
	TierGood         Tier = "Good"
	TierAverage      Tier = "Average"
	TierBelowAverage Tier = "Below Average"
	TierPoor         Tier = "Poor"
	TierNoData       Tier = "No Data"
)

// DomainScores carries the per-domain 0-10 scores for one area. A nil field
// means the domain produced no score for the area; it is never conflated with
// zero, which would bias the composite toward a false worst case.
type DomainScores struct {
	Crime      *float64 `json:"crime_score"`
	Schools    *float64 `json:"school_score"`
	Transit    *float64 `json:"transit_score"`
	Housing    *float64 `json:"housing_score"`
	Diversity  *float64 `json:"diversity_score"`
	Healthcare *float64 `json:"healthcare_score"`
	Lifestyle  *float64 `json:"lifestyle_score"`
}

// Get returns the score for a domain, nil when absent.
func (s *DomainScores) Get(d Domain) *float64 {
	switch d {
	case DomainCrime:
		return s.Crime
	case DomainSchools:
		return s.Schools
	case DomainTransit:
		return s.Transit
	case DomainHousing:
		return s.Housing
	case DomainDiversity:
		return s.Diversity
	case DomainHealthcare:
		return s.Healthcare
	case DomainLifestyle:
		return s.Lifestyle
	}
	return nil
}

// Set stores the score for a domain.
func (s *DomainScores) Set(d Domain, v *float64) {
	switch d {
	case DomainCrime:
		s.Crime = v
	case DomainSchools:
		s.Schools = v
	case DomainTransit:
		s.Transit = v
	case DomainHousing:
		s.Housing = v
	case DomainDiversity:
		s.Diversity = v
	case DomainHealthcare:
		s.Healthcare = v
	case DomainLifestyle:
		s.Lifestyle = v
	}
}

// Available returns the number of non-nil domain scores.
func (s *DomainScores) Available() int {
	n := 0
	for _, d := range Domains() {
		if s.Get(d) != nil {
			n++
		}
	}
	return n
}

// CompositeRow is the terminal artifact of the pipeline: one row per
// registered area, regardless of how many domains produced data for it.
type CompositeRow struct {
	ZIP       string       `json:"zip_code"`
	AreaSqMi  float64      `json:"area_sq_mi"`
	Scores    DomainScores `json:"scores"`
	Composite *float64     `json:"composite_score"`
	Tier      Tier         `json:"tier"`
}

// Run records one full pipeline execution and the counts surfaced by its
// recoverable error paths.
type Run struct {
	ID            string    `json:"id"`
	StartedAt     time.Time `json:"started_at"`
	CompletedAt   time.Time `json:"completed_at"`
	Areas         int       `json:"areas"`
	PointsDropped int       `json:"points_dropped"`
	OrphanRows    int       `json:"orphan_rows"`
}
