package geolib

import "fmt"

// EncodeSuccessData renders geolocation attributes as a flat JSON
// object with the same field names the geolocation service uses. A
// query is included as well so downstream consumer knows what address
// this data belongs to.
func EncodeSuccessData(query string, data SuccessData) ([]byte, error) {
	rawStruct := struct {
		Query string `json:"query"`
		SuccessData
	}{
		Query:       query,
		SuccessData: data,
	}

	encoded, err := parserJSON.Marshal(&rawStruct)
	if err != nil {
		return nil, fmt.Errorf("cannot encode success data: %w", err)
	}

	return encoded, nil
}
