package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"deskinsight/internal/domain"
)

// ParseFeatureVector validates a raw 5-tuple in feature order:
// client id, open date, close date (both YYYYMMDD), maintenance flag,
// incident type id.
func ParseFeatureVector(values []any) (domain.FeatureVector, error) {
	if len(values) != domain.NumFeatures {
		return domain.FeatureVector{}, invalidVector("expected %d values, got %d", domain.NumFeatures, len(values))
	}
	ints := make([]int64, len(values))
	for i, v := range values {
		n, err := integer(v)
		if err != nil {
			return domain.FeatureVector{}, invalidVector("%s: %v", domain.FeatureNames[i], err)
		}
		ints[i] = n
	}

	fv := domain.FeatureVector{
		ClientID:       ints[0],
		OpenDate:       ints[1],
		CloseDate:      ints[2],
		IsMaintenance:  int(ints[3]),
		IncidentTypeID: ints[4],
	}
	if fv.ClientID < 0 {
		return domain.FeatureVector{}, invalidVector("client_id must be non-negative, got %d", fv.ClientID)
	}
	if fv.IncidentTypeID < 0 {
		return domain.FeatureVector{}, invalidVector("incident_type_id must be non-negative, got %d", fv.IncidentTypeID)
	}
	if ints[3] != 0 && ints[3] != 1 {
		return domain.FeatureVector{}, invalidVector("is_maintenance must be 0 or 1, got %d", ints[3])
	}
	if _, err := FeatureRow(fv); err != nil {
		return domain.FeatureVector{}, err
	}
	return fv, nil
}

// FeatureRow converts fv to a model input row. Dates become Unix seconds at
// UTC midnight, matching the dataset's epoch conversion; the YYYYMMDD
// integers are never fed to a model directly, since it was trained on epochs.
func FeatureRow(fv domain.FeatureVector) ([]float64, error) {
	open, err := dateEpoch(fv.OpenDate)
	if err != nil {
		return nil, invalidVector("open date: %v", err)
	}
	closed, err := dateEpoch(fv.CloseDate)
	if err != nil {
		return nil, invalidVector("close date: %v", err)
	}
	return domain.TrainingExample{
		ClientID:       fv.ClientID,
		OpenEpoch:      open,
		CloseEpoch:     closed,
		IsMaintenance:  fv.IsMaintenance,
		IncidentTypeID: fv.IncidentTypeID,
	}.Features(), nil
}

func dateEpoch(yyyymmdd int64) (float64, error) {
	year, month, day := int(yyyymmdd/10000), time.Month(yyyymmdd/100%100), int(yyyymmdd%100)
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if yyyymmdd < 10000101 || yyyymmdd > 99991231 || t.Year() != year || t.Month() != month || t.Day() != day {
		return 0, fmt.Errorf("%d is not a YYYYMMDD date", yyyymmdd)
	}
	return float64(t.Unix()), nil
}

func integer(v any) (int64, error) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		parsed, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", x.String())
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", x)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %v", v)
	}
	return int64(f), nil
}

func invalidVector(format string, args ...any) error {
	return &domain.InvalidFeatureVectorError{Reason: fmt.Sprintf(format, args...)}
}
