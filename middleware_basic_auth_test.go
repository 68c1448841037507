package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"
)

type BasicAuthMiddlewareTestSuite struct {
	suite.Suite

	handler http.Handler
}

func (suite *BasicAuthMiddlewareTestSuite) SetupTest() {
	suite.handler = newBasicAuthMiddleware(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}),
		"user",
		"password")
}

func (suite *BasicAuthMiddlewareTestSuite) Do(user, password string, set bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	if set {
		req.SetBasicAuth(user, password)
	}

	suite.handler.ServeHTTP(rec, req)

	return rec
}

func (suite *BasicAuthMiddlewareTestSuite) TestOk() {
	suite.Equal(http.StatusNoContent, suite.Do("user", "password", true).Code)
}

func (suite *BasicAuthMiddlewareTestSuite) TestNoCredentials() {
	rec := suite.Do("", "", false)

	suite.Equal(http.StatusUnauthorized, rec.Code)
	suite.NotEmpty(rec.Header().Get("WWW-Authenticate"))
}

func (suite *BasicAuthMiddlewareTestSuite) TestIncorrectCredentials() {
	suite.Equal(http.StatusUnauthorized, suite.Do("user", "passwor", true).Code)
	suite.Equal(http.StatusUnauthorized, suite.Do("usr", "password", true).Code)
	suite.Equal(http.StatusUnauthorized, suite.Do("", "", true).Code)
}

func TestBasicAuthMiddleware(t *testing.T) {
	suite.Run(t, &BasicAuthMiddlewareTestSuite{})
}
