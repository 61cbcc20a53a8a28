package normalize

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"deskinsight/internal/domain"
)

func ParseRecordSet(r io.Reader) (domain.RecordSet, error) {
	var rs domain.RecordSet
	if err := json.NewDecoder(r).Decode(&rs); err != nil {
		return domain.RecordSet{}, fmt.Errorf("decode record set: %w", err)
	}
	return rs, nil
}

func LoadRecordSet(path string) (domain.RecordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.RecordSet{}, err
	}
	defer f.Close()
	return ParseRecordSet(f)
}

// Prepare runs the full pre-load pipeline: normalize, decode, validate.
func Prepare(rs domain.RecordSet) (domain.Entities, error) {
	normalized, err := Normalize(rs)
	if err != nil {
		return domain.Entities{}, err
	}
	entities, err := Decode(normalized)
	if err != nil {
		return domain.Entities{}, err
	}
	if err := Validate(entities); err != nil {
		return domain.Entities{}, fmt.Errorf("validate records: %w", err)
	}
	return entities, nil
}
