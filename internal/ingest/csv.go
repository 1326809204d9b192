package ingest

import (
	"encoding/csv"
	"io"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/livability-cli/internal/domain"
	"github.com/sells-group/livability-cli/internal/model"
)

// decodeAll decodes a whole CSV stream into a slice of T.
func decodeAll[T any](r io.Reader, what string) ([]T, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	dec, err := csvutil.NewDecoder(reader)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: %s header", what)
	}

	var out []T
	for {
		var rec T
		if err := dec.Decode(&rec); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrapf(err, "ingest: %s row", what)
		}
		out = append(out, rec)
	}
	return out, nil
}

// LoadHospitals reads the curated hospital CSV. At least one facility must
// exist for the healthcare stage to mean anything.
func LoadHospitals(r io.Reader) ([]domain.Hospital, error) {
	hospitals, err := decodeAll[domain.Hospital](r, "hospitals")
	if err != nil {
		return nil, err
	}
	if len(hospitals) == 0 {
		return nil, eris.New("ingest: hospital file has no rows")
	}
	for i := range hospitals {
		hospitals[i].ZIP = model.NormalizeZIP(hospitals[i].ZIP)
	}
	return hospitals, nil
}

// LoadSchoolGrades reads the curated per-area school grade CSV.
func LoadSchoolGrades(r io.Reader) ([]domain.SchoolGrade, error) {
	return decodeAll[domain.SchoolGrade](r, "school grades")
}

// LoadLifestyleGrades reads the curated per-area amenity grade CSV.
func LoadLifestyleGrades(r io.Reader) ([]domain.LifestyleGrades, error) {
	return decodeAll[domain.LifestyleGrades](r, "lifestyle grades")
}
