package geolib_test

import (
	"encoding/json"
	"testing"

	"github.com/9seconds/peergeo/geolib"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/suite"
)

type EncodeTestSuite struct {
	suite.Suite
}

func (suite *EncodeTestSuite) TestRoundTrip() {
	data := geolib.SuccessData{
		Country:     "Germany",
		CountryCode: "DE",
		Region:      "HE",
		RegionName:  "Hesse",
		City:        "Frankfurt am Main",
		Zip:         "60313",
		Lat:         50.1109,
		Lon:         8.68213,
		Timezone:    "Europe/Berlin",
		ISP:         "Hetzner Online GmbH",
		Org:         "Hetzner",
		AS:          "AS24940 Hetzner Online GmbH",
	}

	encoded, err := geolib.EncodeSuccessData("5.9.0.1", data)

	suite.NoError(err)

	decoded := struct {
		Query string `json:"query"`
		geolib.SuccessData
	}{}

	suite.NoError(json.Unmarshal(encoded, &decoded))
	suite.Equal("5.9.0.1", decoded.Query)
	suite.Empty(cmp.Diff(data, decoded.SuccessData))
}

func (suite *EncodeTestSuite) TestParseEncoded() {
	data := geolib.SuccessData{
		Country: "Japan",
		City:    "Tokyo",
		Lat:     35.6893,
		Lon:     139.6899,
	}

	encoded, err := geolib.EncodeSuccessData("1.0.16.1", data)

	suite.NoError(err)
	suite.Contains(string(encoded), `"query":"1.0.16.1"`)

	withStatus := append([]byte(`{"status":"success",`), encoded[1:]...)
	info := geolib.Parse("1.0.16.1", withStatus)
	parsed, ok := info.Data()

	suite.True(ok)
	suite.Equal("1.0.16.1", info.Query())
	suite.Empty(cmp.Diff(data, parsed))
}

func (suite *EncodeTestSuite) TestFieldNames() {
	encoded, err := geolib.EncodeSuccessData("q", geolib.SuccessData{})

	suite.NoError(err)
	suite.JSONEq(`{
        "query": "q",
        "country": "",
        "countryCode": "",
        "region": "",
        "regionName": "",
        "city": "",
        "zip": "",
        "lat": 0,
        "lon": 0,
        "timezone": "",
        "isp": "",
        "org": "",
        "as": ""
    }`, string(encoded))
}

func TestEncode(t *testing.T) {
	suite.Run(t, &EncodeTestSuite{})
}
