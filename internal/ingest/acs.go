package ingest

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/livability-cli/internal/area"
	"github.com/sells-group/livability-cli/internal/domain"
	"github.com/sells-group/livability-cli/internal/model"
	"github.com/sells-group/livability-cli/pkg/census"
)

// ACSClient is the slice of the census client the ingest stage uses.
type ACSClient interface {
	FetchZCTA(ctx context.Context, variables []string) ([]census.Row, error)
}

// LoadHousingObservations fetches the housing estimates for every registered
// area. The API returns the whole country; rows outside the registry are
// discarded. Areas absent from the response still get an observation with all
// fields nil so the scorer's imputation sees them.
func LoadHousingObservations(ctx context.Context, client ACSClient, registry *area.Registry) ([]domain.HousingObservation, error) {
	rows, err := client.FetchZCTA(ctx, census.HousingVariables())
	if err != nil {
		return nil, err
	}

	byZIP := make(map[string]census.Row, registry.Len())
	for _, row := range rows {
		zip := model.NormalizeZIP(row.ZCTA)
		if registry.Contains(zip) {
			byZIP[zip] = row
		}
	}

	observations := make([]domain.HousingObservation, 0, registry.Len())
	for _, a := range registry.Areas() {
		obs := domain.HousingObservation{ZIP: a.ZIP}
		if row, ok := byZIP[a.ZIP]; ok {
			obs.HomeValue = row.Values[census.VarMedianHomeValue]
			obs.Rent = row.Values[census.VarMedianRent]
			obs.MedianIncome = row.Values[census.VarMedianIncome]
		}
		observations = append(observations, obs)
	}

	zap.L().Info("ingest: loaded housing estimates",
		zap.Int("areas", registry.Len()), zap.Int("matched", len(byZIP)))
	return observations, nil
}

// LoadDemographicObservations fetches the race composition estimates for
// every registered area. Unmatched areas get a zero-population observation,
// which the diversity scorer withholds a score for.
func LoadDemographicObservations(ctx context.Context, client ACSClient, registry *area.Registry) ([]domain.DemographicObservation, error) {
	rows, err := client.FetchZCTA(ctx, census.DemographicVariables())
	if err != nil {
		return nil, err
	}

	byZIP := make(map[string]census.Row, registry.Len())
	for _, row := range rows {
		zip := model.NormalizeZIP(row.ZCTA)
		if registry.Contains(zip) {
			byZIP[zip] = row
		}
	}

	observations := make([]domain.DemographicObservation, 0, registry.Len())
	for _, a := range registry.Areas() {
		obs := domain.DemographicObservation{ZIP: a.ZIP}
		if row, ok := byZIP[a.ZIP]; ok {
			obs.Total = deref(row.Values[census.VarTotalPop])
			obs.White = deref(row.Values[census.VarRaceWhite])
			obs.Black = deref(row.Values[census.VarRaceBlack])
			obs.Asian = deref(row.Values[census.VarRaceAsian])
			obs.Other = deref(row.Values[census.VarRaceOther])
			obs.TwoOrMore = deref(row.Values[census.VarRaceTwoOrMore])
		}
		observations = append(observations, obs)
	}

	zap.L().Info("ingest: loaded demographic estimates",
		zap.Int("areas", registry.Len()), zap.Int("matched", len(byZIP)))
	return observations, nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
