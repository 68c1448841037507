package geolib

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// Status is a classification of the resolving outcome. A zero value is
// StatusFail.
type Status uint8

const (
	StatusFail Status = iota
	StatusSuccess
	StatusTimeout
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFail:
		return "fail"
	case StatusTimeout:
		return "timeout"
	}

	return fmt.Sprintf("status(%d)", uint8(s))
}

// MarshalText is to conform encoding.TextMarshaler interface.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SuccessData is a set of attributes returned by geolocation service
// on successful lookup. JSON names are the same as service uses.
type SuccessData struct {
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	Region      string  `json:"region"`
	RegionName  string  `json:"regionName"`
	City        string  `json:"city"`
	Zip         string  `json:"zip"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Timezone    string  `json:"timezone"`
	ISP         string  `json:"isp"`
	Org         string  `json:"org"`
	AS          string  `json:"as"`
}

// Information is a result of resolving which is passed to a handler.
//
// It is a tagged value: data is available only for StatusSuccess, a
// message is available only for failures and timeouts. Use constructors
// to create it, a zero value is a failure without a message.
type Information struct {
	query      string
	status     Status
	data       SuccessData
	message    string
	hasMessage bool
}

// Query returns a subject of the lookup. For successful responses it
// is taken from the payload, for all other cases it is a correlation
// key.
func (i Information) Query() string {
	return i.query
}

func (i Information) Status() Status {
	return i.status
}

// Data returns geolocation attributes. The second value is false if
// lookup has not succeeded.
func (i Information) Data() (SuccessData, bool) {
	if i.status != StatusSuccess {
		return SuccessData{}, false
	}

	return i.data, true
}

// Message returns a human-readable diagnostic of the failure. Success
// never has a message; upstream failures may have no message too.
func (i Information) Message() (string, bool) {
	return i.message, i.hasMessage
}

func (i Information) OK() bool {
	return i.status == StatusSuccess
}

func (i Information) String() string {
	if i.OK() {
		return fmt.Sprintf("%s: %s (%s, %s)", i.query, i.status, i.data.CountryCode, i.data.City)
	}

	return fmt.Sprintf("%s: %s (%s)", i.query, i.status, i.message)
}

// MarshalJSON is to conform json.Marshaler interface.
func (i Information) MarshalJSON() ([]byte, error) {
	rawStruct := struct {
		Query   string       `json:"query"`
		Status  Status       `json:"status"`
		Data    *SuccessData `json:"data,omitempty"`
		Message *string      `json:"message,omitempty"`
	}{
		Query:  i.query,
		Status: i.status,
	}

	if data, ok := i.Data(); ok {
		rawStruct.Data = &data
	}

	if message, ok := i.Message(); ok {
		rawStruct.Message = &message
	}

	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(&rawStruct)
}

func NewSuccess(query string, data SuccessData) Information {
	return Information{
		query:  query,
		status: StatusSuccess,
		data:   data,
	}
}

func NewFail(query, message string) Information {
	return Information{
		query:      query,
		status:     StatusFail,
		message:    message,
		hasMessage: true,
	}
}

// NewFailWithoutMessage is used when upstream service reports a failure
// but does not explain it.
func NewFailWithoutMessage(query string) Information {
	return Information{
		query:  query,
		status: StatusFail,
	}
}

func NewTimeout(query, message string) Information {
	return Information{
		query:      query,
		status:     StatusTimeout,
		message:    message,
		hasMessage: true,
	}
}
