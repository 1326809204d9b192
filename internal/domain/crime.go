package domain

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/livability-cli/internal/model"
	"github.com/sells-group/livability-cli/internal/normalize"
)

// CrimeCategory classifies an offense description.
type CrimeCategory string

const (
	CrimeViolent  CrimeCategory = "Violent"
	CrimeProperty CrimeCategory = "Property"
	CrimeOther    CrimeCategory = "Other"
)

// defaultViolentKeywords and defaultPropertyKeywords drive offense
// classification. Order matters only across the two lists: violent keywords
// are checked first, so a description matching both lists is Violent.
var defaultViolentKeywords = []string{
	"ASSAULT", "HOMICIDE", "MURDER", "ROBBERY", "RAPE",
	"SEX OFFENSE", "KIDNAPPING", "HUMAN TRAFFICKING",
	"MANSLAUGHTER", "SHOOTING", "STABBING", "THREATS",
}

var defaultPropertyKeywords = []string{
	"LARCENY", "BURGLARY", "THEFT", "STOLEN", "BREAKING & ENTERING",
	"AUTO THEFT", "VANDALISM", "ARSON", "SHOPLIFTING",
	"TRESPASSING", "PROPERTY DAMAGE", "B & E",
}

// CrimeClassifier maps free-text offense descriptions to categories via
// ordered keyword lists. The lists are copied at construction; the classifier
// is immutable afterwards.
type CrimeClassifier struct {
	violent  []string
	property []string
}

// NewCrimeClassifier builds a classifier. Empty keyword slices fall back to
// the defaults.
func NewCrimeClassifier(violent, property []string) *CrimeClassifier {
	if len(violent) == 0 {
		violent = defaultViolentKeywords
	}
	if len(property) == 0 {
		property = defaultPropertyKeywords
	}
	c := &CrimeClassifier{
		violent:  make([]string, len(violent)),
		property: make([]string, len(property)),
	}
	for i, kw := range violent {
		c.violent[i] = strings.ToUpper(kw)
	}
	for i, kw := range property {
		c.property[i] = strings.ToUpper(kw)
	}
	return c
}

// Classify returns the category for an offense description. First match wins:
// violent keywords are checked before property keywords.
func (c *CrimeClassifier) Classify(offense string) CrimeCategory {
	desc := strings.ToUpper(strings.TrimSpace(offense))
	for _, kw := range c.violent {
		if strings.Contains(desc, kw) {
			return CrimeViolent
		}
	}
	for _, kw := range c.property {
		if strings.Contains(desc, kw) {
			return CrimeProperty
		}
	}
	return CrimeOther
}

// CrimeIncident is a single offense already assigned to an area by the
// spatial join.
type CrimeIncident struct {
	ZIP     string
	Offense string
}

// CrimeWeights combines the three crime component scores.
type CrimeWeights struct {
	Rate     float64 `yaml:"rate"`
	Violent  float64 `yaml:"violent"`
	Property float64 `yaml:"property"`
}

// DefaultCrimeWeights returns the standard crime component weights.
func DefaultCrimeWeights() CrimeWeights {
	return CrimeWeights{Rate: 0.40, Violent: 0.35, Property: 0.25}
}

// Validate checks the weights form a convex combination.
func (w CrimeWeights) Validate() error {
	return checkConvex("crime weights", w.Rate, w.Violent, w.Property)
}

// CrimeMetrics is the per-area crime row: raw counts, area-normalized rates,
// component scores, and the overall domain score.
type CrimeMetrics struct {
	ZIP             string  `csv:"zip_code" json:"zip_code"`
	TotalCrimes     int     `csv:"total_crimes" json:"total_crimes"`
	ViolentCrimes   int     `csv:"violent_crimes" json:"violent_crimes"`
	PropertyCrimes  int     `csv:"property_crimes" json:"property_crimes"`
	AreaSqMi        float64 `csv:"area_sq_mi" json:"area_sq_mi"`
	CrimesPerSqMi   float64 `csv:"crimes_per_sq_mi" json:"crimes_per_sq_mi"`
	ViolentPerSqMi  float64 `csv:"violent_per_sq_mi" json:"violent_per_sq_mi"`
	PropertyPerSqMi float64 `csv:"property_per_sq_mi" json:"property_per_sq_mi"`
	RateScore       float64 `csv:"crime_score" json:"crime_score"`
	ViolentScore    float64 `csv:"violent_score" json:"violent_score"`
	PropertyScore   float64 `csv:"property_score" json:"property_score"`
	Overall         float64 `csv:"overall_crime_score" json:"overall_crime_score"`
}

// ScoreCrime aggregates classified incidents per area and scores them. Every
// registered area gets a row: zero incidents over a nonzero area is a real
// rate of zero, not missing data. Scores are inverted (10 = safest).
func ScoreCrime(areas []model.Area, incidents []CrimeIncident, classifier *CrimeClassifier, weights CrimeWeights) ([]CrimeMetrics, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if classifier == nil {
		classifier = NewCrimeClassifier(nil, nil)
	}

	type counts struct{ total, violent, property int }
	byZIP := make(map[string]*counts, len(areas))
	for _, a := range areas {
		byZIP[a.ZIP] = &counts{}
	}

	for _, inc := range incidents {
		c, ok := byZIP[model.NormalizeZIP(inc.ZIP)]
		if !ok {
			return nil, eris.Errorf("crime: incident references unregistered ZIP %s", inc.ZIP)
		}
		c.total++
		switch classifier.Classify(inc.Offense) {
		case CrimeViolent:
			c.violent++
		case CrimeProperty:
			c.property++
		}
	}

	rows := make([]CrimeMetrics, len(areas))
	rates := make([]float64, len(areas))
	violentRates := make([]float64, len(areas))
	propertyRates := make([]float64, len(areas))
	for i, a := range areas {
		c := byZIP[a.ZIP]
		rows[i] = CrimeMetrics{
			ZIP:            a.ZIP,
			TotalCrimes:    c.total,
			ViolentCrimes:  c.violent,
			PropertyCrimes: c.property,
			AreaSqMi:       a.AreaSqMi,
		}
		rates[i] = float64(c.total) / a.AreaSqMi
		violentRates[i] = float64(c.violent) / a.AreaSqMi
		propertyRates[i] = float64(c.property) / a.AreaSqMi
		rows[i].CrimesPerSqMi = rates[i]
		rows[i].ViolentPerSqMi = violentRates[i]
		rows[i].PropertyPerSqMi = propertyRates[i]
	}

	rateScores := normalize.MinMax(rates, true)
	violentScores := normalize.MinMax(violentRates, true)
	propertyScores := normalize.MinMax(propertyRates, true)
	for i := range rows {
		rows[i].RateScore = rateScores[i]
		rows[i].ViolentScore = violentScores[i]
		rows[i].PropertyScore = propertyScores[i]
		rows[i].Overall = rateScores[i]*weights.Rate +
			violentScores[i]*weights.Violent +
			propertyScores[i]*weights.Property
	}

	return rows, nil
}

// CrimeScoreTable extracts the ZIP-to-score table for the merger.
func CrimeScoreTable(rows []CrimeMetrics) ScoreTable {
	t := make(ScoreTable, len(rows))
	for _, r := range rows {
		t[r.ZIP] = ptr(r.Overall)
	}
	return t
}
