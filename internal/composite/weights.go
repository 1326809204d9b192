package composite

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/livability-cli/internal/domain"
	"github.com/sells-group/livability-cli/internal/model"
)

// WeightsFile is the on-disk override for every weight in the pipeline:
// the composite domain weights plus the per-domain component weights.
// Omitted sections keep their defaults; a present section replaces its
// default wholesale and is validated before use.
type WeightsFile struct {
	Composite  map[string]float64        `yaml:"composite"`
	Crime      *domain.CrimeWeights      `yaml:"crime"`
	Transit    *domain.TransitWeights    `yaml:"transit"`
	Healthcare *domain.HealthcareWeights `yaml:"healthcare"`
	Housing    *domain.HousingWeights    `yaml:"housing"`
}

// WeightSet is the fully resolved weight configuration a run scores with.
type WeightSet struct {
	Composite  Weights
	Crime      domain.CrimeWeights
	Transit    domain.TransitWeights
	Healthcare domain.HealthcareWeights
	Housing    domain.HousingWeights
}

// DefaultWeightSet returns the standard weights for every stage.
func DefaultWeightSet() WeightSet {
	return WeightSet{
		Composite:  DefaultWeights(),
		Crime:      domain.DefaultCrimeWeights(),
		Transit:    domain.DefaultTransitWeights(),
		Healthcare: domain.DefaultHealthcareWeights(),
		Housing:    domain.DefaultHousingWeights(),
	}
}

// LoadWeightSet reads weight overrides from a YAML file and merges them over
// the defaults. An empty path returns the defaults unchanged.
func LoadWeightSet(path string) (WeightSet, error) {
	set := DefaultWeightSet()
	if path == "" {
		return set, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return set, eris.Wrapf(err, "composite: read weights %s", path)
	}
	var file WeightsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return set, eris.Wrap(err, "composite: parse weights")
	}

	if len(file.Composite) > 0 {
		w := make(Weights, len(file.Composite))
		for name, v := range file.Composite {
			w[model.Domain(name)] = v
		}
		set.Composite = w
	}
	if file.Crime != nil {
		set.Crime = *file.Crime
	}
	if file.Transit != nil {
		set.Transit = *file.Transit
	}
	if file.Healthcare != nil {
		set.Healthcare = *file.Healthcare
	}
	if file.Housing != nil {
		set.Housing = *file.Housing
	}

	if err := set.Validate(); err != nil {
		return set, eris.Wrapf(err, "composite: weights file %s", path)
	}
	return set, nil
}

// Validate checks every weight group in the set.
func (s WeightSet) Validate() error {
	if err := s.Composite.Validate(); err != nil {
		return err
	}
	if err := s.Crime.Validate(); err != nil {
		return err
	}
	if err := s.Transit.Validate(); err != nil {
		return err
	}
	if err := s.Healthcare.Validate(); err != nil {
		return err
	}
	return s.Housing.Validate()
}
