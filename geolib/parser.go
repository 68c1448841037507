package geolib

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
)

const (
	upstreamStatusSuccess = "success"

	MessageEmptyResponse = "Empty response from server"
	MessageInvalidFormat = "Invalid response format: missing 'query' or 'status'"
)

// parserJSON is compatible with encoding/json except key matching: the
// service uses lowercase keys only.
var parserJSON = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	CaseSensitive:          true,
}.Froze()

// absent and null values are equal for query, status and message.
type upstreamResponse struct {
	Query   *string `json:"query"`
	Status  *string `json:"status"`
	Message *string `json:"message"`

	SuccessData
}

// Parse classifies a raw response body of the geolocation service.
// A key is used to annotate failures which could not get a query from
// the body itself.
//
// Parse never returns an error: all problems are expressed as failed
// Information.
func Parse(key string, body []byte) Information {
	if len(bytes.TrimSpace(body)) == 0 {
		return NewFail(key, MessageEmptyResponse)
	}

	resp := upstreamResponse{}

	if err := parserJSON.Unmarshal(body, &resp); err != nil {
		return NewFail(key, "JSON parse error: "+err.Error()+", request data: "+key)
	}

	if resp.Query == nil || resp.Status == nil {
		return NewFail(key, MessageInvalidFormat)
	}

	if *resp.Status == upstreamStatusSuccess {
		return NewSuccess(*resp.Query, resp.SuccessData)
	}

	if resp.Message == nil {
		return NewFailWithoutMessage(*resp.Query)
	}

	return NewFail(*resp.Query, *resp.Message)
}
