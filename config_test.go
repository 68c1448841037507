package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/9seconds/peergeo/geolib"
	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite

	dir string
}

func (suite *ConfigTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
}

func (suite *ConfigTestSuite) Write(content string) string {
	path := filepath.Join(suite.dir, "config.hjson")

	suite.NoError(os.WriteFile(path, []byte(content), 0o600))

	return path
}

func (suite *ConfigTestSuite) TestDefaults() {
	conf, err := parseConfig(suite.Write(`{listen: "127.0.0.1:8080"}`))

	suite.Require().NoError(err)
	suite.Equal("127.0.0.1:8080", conf.GetListen())
	suite.Equal(geolib.DefaultEndpoint, conf.GetEndpoint())
	suite.Empty(conf.GetParameters())
	suite.Equal(geolib.DefaultTimeout, conf.GetTimeout())
	suite.Equal(DefaultHTTPTimeout, conf.GetHTTPTimeout())
	suite.Equal(DefaultRateLimitInterval, conf.GetRateLimitInterval())
	suite.Equal(DefaultRateLimitBurst, conf.GetRateLimitBurst())
	suite.Equal(geolib.DefaultTransportPoolSize, conf.GetWorkerPoolSize())
	suite.Equal(geolib.DefaultCorrelatorWorkers, conf.GetCorrelatorWorkers())
	suite.EqualValues(DefaultCircuitBreakerOpenThreshold, conf.GetCircuitBreakerOpenThreshold())
	suite.Equal(DefaultCircuitBreakerHalfOpenTimeout, conf.GetCircuitBreakerHalfOpenTimeout())
	suite.Equal(DefaultCircuitBreakerResetFailuresTimeout, conf.GetCircuitBreakerResetFailuresTimeout())
	suite.False(conf.HasBasicAuth())
}

func (suite *ConfigTestSuite) TestFull() {
	conf, err := parseConfig(suite.Write(`{
        # comments are allowed
        listen: ":9000"
        endpoint: "https://pro.ip-api.com/json/"
        parameters: {
            lang: de
            key: secret
        }
        timeout: 3s
        http_timeout: 2s
        rate_limit_interval: 1.4s
        rate_limit_burst: 3
        worker_pool_size: 16
        correlator_workers: 2
        circuit_breaker: {
            open_threshold: 7
            half_open_timeout: 30s
            reset_failures_timeout: 1m
        }
        basic_auth: {
            user: user
            password: password
        }
    }`))

	suite.Require().NoError(err)
	suite.Equal(":9000", conf.GetListen())
	suite.Equal("https://pro.ip-api.com/json/", conf.GetEndpoint())
	suite.Equal(map[string]string{"lang": "de", "key": "secret"}, conf.GetParameters())
	suite.Equal(3*time.Second, conf.GetTimeout())
	suite.Equal(2*time.Second, conf.GetHTTPTimeout())
	suite.Equal(1400*time.Millisecond, conf.GetRateLimitInterval())
	suite.Equal(3, conf.GetRateLimitBurst())
	suite.Equal(16, conf.GetWorkerPoolSize())
	suite.Equal(2, conf.GetCorrelatorWorkers())
	suite.EqualValues(7, conf.GetCircuitBreakerOpenThreshold())
	suite.Equal(30*time.Second, conf.GetCircuitBreakerHalfOpenTimeout())
	suite.Equal(time.Minute, conf.GetCircuitBreakerResetFailuresTimeout())
	suite.True(conf.HasBasicAuth())
	suite.Equal("user", conf.GetBasicAuthUser())
	suite.Equal("password", conf.GetBasicAuthPassword())
}

func (suite *ConfigTestSuite) TestExampleConfig() {
	conf, err := parseConfig("example.config.hjson")

	suite.Require().NoError(err)
	suite.Equal("127.0.0.1:8080", conf.GetListen())
	suite.Equal(map[string]string{"lang": "en"}, conf.GetParameters())
	suite.Equal(1400*time.Millisecond, conf.GetRateLimitInterval())
	suite.False(conf.HasBasicAuth())
}

func (suite *ConfigTestSuite) TestNoFile() {
	_, err := parseConfig(filepath.Join(suite.dir, "nothing"))

	suite.Error(err)
}

func (suite *ConfigTestSuite) TestBrokenHjson() {
	_, err := parseConfig(suite.Write(`{listen: `))

	suite.Error(err)
}

func (suite *ConfigTestSuite) TestIncorrectListen() {
	_, err := parseConfig(suite.Write(`{listen: "localhost"}`))

	suite.Error(err)
}

func (suite *ConfigTestSuite) TestIncorrectDuration() {
	for _, v := range []string{"timeout: 10", "timeout: ten", "timeout: -1s"} {
		_, err := parseConfig(suite.Write("{\nlisten: \":80\"\n" + v + "\n}"))

		suite.Error(err, v)
	}
}

func (suite *ConfigTestSuite) TestIncorrectEndpoint() {
	_, err := parseConfig(suite.Write(`{listen: ":80", endpoint: "ftp://ip-api.com/"}`))

	suite.Error(err)
}

func (suite *ConfigTestSuite) TestBasicAuthWithoutPassword() {
	_, err := parseConfig(suite.Write(`{listen: ":80", basic_auth: {user: "user"}}`))

	suite.Error(err)
}

func TestConfig(t *testing.T) {
	suite.Run(t, &ConfigTestSuite{})
}
