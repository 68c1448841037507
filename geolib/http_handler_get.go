package geolib

import (
	"net"
	"net/http"
)

func (h httpHandler) handleGetSelf(w http.ResponseWriter, req *http.Request) {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		h.sendError(w, err, "Cannot detect your IP address", http.StatusBadRequest)

		return
	}

	ipAddr := net.ParseIP(host)
	if ipAddr == nil {
		h.sendError(w, nil, "Address was detected incorrectly", http.StatusBadRequest)

		return
	}

	h.handleGetResolve(w, req, ipAddr.String())
}

func (h httpHandler) handleGetKey(w http.ResponseWriter, req *http.Request) {
	key := req.PathValue("key")

	if err := validateKey(key); err != nil {
		h.sendError(w, err, "Invalid key", http.StatusBadRequest)

		return
	}

	h.handleGetResolve(w, req, key)
}

func (h httpHandler) handleGetResolve(w http.ResponseWriter, req *http.Request, key string) {
	info, err := h.resolver.Lookup(req.Context(), key)
	if err != nil {
		h.sendError(w, err, "Cannot resolve "+key, http.StatusServiceUnavailable)

		return
	}

	if !info.OK() {
		h.sendHTTPError(w, newLookupError(info, h.informationStatusCode(info)))

		return
	}

	response := struct {
		Result httpResult `json:"result"`
	}{
		Result: newHTTPResult(info),
	}

	h.encodeJSON(w, response)
}

func (h httpHandler) handleGetStats(w http.ResponseWriter, _ *http.Request) {
	response := struct {
		Pending int         `json:"pending"`
		Results *UsageStats `json:"results"`
	}{
		Pending: h.resolver.Pending(),
		Results: h.resolver.UsageStats(),
	}

	h.encodeJSON(w, response)
}
