package store

import "encoding/json"

func unmarshalStats(data []byte, out *map[string]float64) error {
	if len(data) == 0 {
		*out = map[string]float64{}
		return nil
	}
	return json.Unmarshal(data, out)
}
