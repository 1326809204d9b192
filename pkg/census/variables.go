package census

// ACS 5-year variables the pipeline requests.
//
// Housing (tables B25077, B25064, B19013):
const (
	VarMedianHomeValue = "B25077_001E"
	VarMedianRent      = "B25064_001E"
	VarMedianIncome    = "B19013_001E"
)

// Race composition (table B02001). The Bureau's "American Indian" and
// "Pacific Islander" categories are folded into VarRaceOther upstream of the
// diversity index, matching the five-bucket breakdown the index runs on.
const (
	VarTotalPop      = "B02001_001E"
	VarRaceWhite     = "B02001_002E"
	VarRaceBlack     = "B02001_003E"
	VarRaceAsian     = "B02001_005E"
	VarRaceOther     = "B02001_007E"
	VarRaceTwoOrMore = "B02001_008E"
)

// HousingVariables returns the variable list for the housing fetch.
func HousingVariables() []string {
	return []string{VarMedianHomeValue, VarMedianRent, VarMedianIncome}
}

// DemographicVariables returns the variable list for the diversity fetch.
func DemographicVariables() []string {
	return []string{VarTotalPop, VarRaceWhite, VarRaceBlack, VarRaceAsian, VarRaceOther, VarRaceTwoOrMore}
}
