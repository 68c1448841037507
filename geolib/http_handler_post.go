package geolib

import (
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/qri-io/jsonschema"
)

const maxPostRequestBodySize = 1 << 20

var handlePostRequestJSONSchema = func() *jsonschema.Schema {
	data := `{
        "type": "object",
        "required": [
            "ips"
        ],
        "additionalProperties": false,
        "properties": {
            "ips": {
                "type": "array",
                "minItems": 1,
                "items": {
                    "anyOf": [
                        {
                            "type": "string",
                            "format": "ipv4",
                            "minLength": 7,
                            "maxLength": 15
                        },
                        {
                            "type": "string",
                            "format": "ipv6",
                            "minLength": 2,
                            "maxLength": 39
                        }
                    ]
                }
            }
        }
    }`

	rv := &jsonschema.Schema{}
	if err := parserJSON.Unmarshal([]byte(data), rv); err != nil {
		panic(err)
	}

	return rv
}()

type handlePostRequest struct {
	IPs []net.IP `json:"ips"`
}

type handlePostResponse struct {
	Results []httpResult `json:"results"`
}

func (h httpHandler) handlePost(w http.ResponseWriter, req *http.Request) {
	if !strings.Contains(req.Header.Get("Content-Type"), "application/json") {
		h.sendError(w, nil, "Incorrect content type", http.StatusUnsupportedMediaType)

		return
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(req.Body, maxPostRequestBodySize))

	req.Body.Close()

	if err != nil {
		h.sendError(w, err, "Cannot read request body", http.StatusBadRequest)

		return
	}

	errs, err := handlePostRequestJSONSchema.ValidateBytes(req.Context(), bodyBytes)
	if err != nil {
		h.sendError(w, err, "Cannot validate body", http.StatusBadRequest)

		return
	}

	if len(errs) > 0 {
		h.sendError(w, errs[0], "Invalid request body", http.StatusBadRequest)

		return
	}

	parsedRequest := &handlePostRequest{}
	if err := parserJSON.Unmarshal(bodyBytes, parsedRequest); err != nil {
		h.sendError(w, err, "Cannot parse request JSON", http.StatusBadRequest)

		return
	}

	resolved, err := h.resolver.LookupAll(req.Context(), handlePostUniqueIPs(parsedRequest.IPs))
	if err != nil {
		h.sendError(w, err, "Cannot resolve given IPs", http.StatusServiceUnavailable)

		return
	}

	response := handlePostResponse{
		Results: make([]httpResult, len(resolved)),
	}

	for i := range resolved {
		response.Results[i] = newHTTPResult(resolved[i])
	}

	h.encodeJSON(w, response)
}

func handlePostUniqueIPs(ips []net.IP) []string {
	seen := make(map[string]bool, len(ips))
	rv := make([]string, 0, len(ips))

	for _, v := range ips {
		key := v.String()

		if !seen[key] {
			seen[key] = true
			rv = append(rv, key)
		}
	}

	return rv
}
