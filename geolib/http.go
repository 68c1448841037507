package geolib

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

type httpResult struct {
	Query   string          `json:"query"`
	Status  Status          `json:"status"`
	Data    *SuccessData    `json:"data,omitempty"`
	Message *string         `json:"message,omitempty"`
	Country *CountryDetails `json:"country,omitempty"`
}

func newHTTPResult(info Information) httpResult {
	rv := httpResult{
		Query:  info.Query(),
		Status: info.Status(),
	}

	if data, ok := info.Data(); ok {
		rv.Data = &data

		if country, ok := LookupCountry(data.CountryCode); ok {
			rv.Country = &country
		}
	}

	if message, ok := info.Message(); ok {
		rv.Message = &message
	}

	return rv
}

type httpHandler struct {
	resolver *Resolver
}

func (h httpHandler) encodeJSON(w http.ResponseWriter, data interface{}) {
	encoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)

	w.Header().Set("Content-Type", "application/json")
	encoder.SetEscapeHTML(false)
	encoder.Encode(data) // nolint: errcheck
}

func (h httpHandler) sendError(w http.ResponseWriter, err error, message string, statusCode int) {
	h.sendHTTPError(w, &httpError{
		message:    message,
		statusCode: statusCode,
		err:        err,
	})
}

func (h httpHandler) sendHTTPError(w http.ResponseWriter, e *httpError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode())

	encoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)

	encoder.SetEscapeHTML(false)
	encoder.Encode(e) // nolint: errcheck
}

// informationStatusCode maps unsuccessful lookups to HTTP status codes.
func (h httpHandler) informationStatusCode(info Information) int {
	switch {
	case info.OK():
		return http.StatusOK
	case info.Status() == StatusTimeout:
		return http.StatusGatewayTimeout
	case h.resolver.Closed():
		return http.StatusServiceUnavailable
	}

	return http.StatusBadGateway
}

// NewHTTPHandler returns an HTTP API of the resolver:
//
//	GET /               resolves an IP address of the caller
//	GET /resolve/{key}  resolves a given key
//	POST /              resolves a batch of IP addresses
//	GET /stats          returns usage statistics
func NewHTTPHandler(resolver *Resolver) http.Handler {
	handler := httpHandler{
		resolver: resolver,
	}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", handler.handleGetSelf)
	mux.HandleFunc("GET /resolve/{key}", handler.handleGetKey)
	mux.HandleFunc("POST /{$}", handler.handlePost)
	mux.HandleFunc("GET /stats", handler.handleGetStats)

	return mux
}
