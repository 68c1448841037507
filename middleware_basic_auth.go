package main

import (
	"crypto/subtle"
	"net/http"
)

type basicAuthMiddleware struct {
	handler  http.Handler
	user     []byte
	password []byte
}

func (b *basicAuthMiddleware) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	user, pass, ok := req.BasicAuth()

	if ok && subtle.ConstantTimeCompare(b.user, []byte(user))+subtle.ConstantTimeCompare(b.password, []byte(pass)) == 2 {
		b.handler.ServeHTTP(w, req)

		return
	}

	w.Header().Set("WWW-Authenticate", `Basic realm="peergeo"`)
	http.Error(w, "Authentication is required", http.StatusUnauthorized)
}

func newBasicAuthMiddleware(handler http.Handler, user, password string) http.Handler {
	return &basicAuthMiddleware{
		handler:  handler,
		user:     []byte(user),
		password: []byte(password),
	}
}
