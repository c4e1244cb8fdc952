package repository

import (
	"encoding/json"

	"github.com/quickshow/quickshow-api/internal/model"
)

// Helpers for the JSON columns (occupancy maps, seat lists, genre and
// cast lists). nil values encode as the empty collection so the DB
// never stores SQL NULL for these columns.

func seatMapJSON(m map[string]string) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func parseSeatMap(raw []byte) (map[string]string, error) {
	if len(raw) == 0 {
		return map[string]string{}, nil
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]string{}
	}
	return m, nil
}

func stringListJSON(v []string) ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v)
}

func parseStringList(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	var v []string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func castListJSON(v []model.CastMember) ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v)
}

func parseCastList(raw []byte) ([]model.CastMember, error) {
	if len(raw) == 0 {
		return []model.CastMember{}, nil
	}
	var v []model.CastMember
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
