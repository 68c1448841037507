package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/9seconds/peergeo/geolib"
	"github.com/hjson/hjson-go/v4"
)

const (
	DefaultHTTPTimeout                        = 10 * time.Second
	DefaultRateLimitInterval                  = 1400 * time.Millisecond
	DefaultRateLimitBurst                     = 1
	DefaultCircuitBreakerOpenThreshold        = 5
	DefaultCircuitBreakerHalfOpenTimeout      = time.Minute
	DefaultCircuitBreakerResetFailuresTimeout = 20 * time.Second
)

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var v interface{}

	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("cannot unmarshal duration: %w", err)
	}

	vv, ok := v.(string)
	if !ok {
		return fmt.Errorf("incorrect duration: %v", v)
	}

	dur, err := time.ParseDuration(vv)
	if err != nil {
		return fmt.Errorf("cannot parse duration: %w", err)
	}

	if dur < 0 {
		return fmt.Errorf("duration is negative: %s", vv)
	}

	d.Duration = dur

	return nil
}

type config struct {
	Listen            string            `json:"listen"`
	Endpoint          string            `json:"endpoint"`
	Parameters        map[string]string `json:"parameters"`
	Timeout           duration          `json:"timeout"`
	HTTPTimeout       duration          `json:"http_timeout"`
	RateLimitInterval duration          `json:"rate_limit_interval"`
	RateLimitBurst    uint              `json:"rate_limit_burst"`
	WorkerPoolSize    uint              `json:"worker_pool_size"`
	CorrelatorWorkers uint              `json:"correlator_workers"`
	CircuitBreaker    struct {
		OpenThreshold        uint32   `json:"open_threshold"`
		HalfOpenTimeout      duration `json:"half_open_timeout"`
		ResetFailuresTimeout duration `json:"reset_failures_timeout"`
	} `json:"circuit_breaker"`
	BasicAuth struct {
		User     string `json:"user"`
		Password string `json:"password"`
	} `json:"basic_auth"`
}

func (c config) GetListen() string {
	return c.Listen
}

func (c config) GetEndpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}

	return geolib.DefaultEndpoint
}

func (c config) GetParameters() map[string]string {
	if c.Parameters == nil {
		return map[string]string{}
	}

	return c.Parameters
}

func (c config) GetTimeout() time.Duration {
	if c.Timeout.Duration == 0 {
		return geolib.DefaultTimeout
	}

	return c.Timeout.Duration
}

func (c config) GetHTTPTimeout() time.Duration {
	if c.HTTPTimeout.Duration == 0 {
		return DefaultHTTPTimeout
	}

	return c.HTTPTimeout.Duration
}

func (c config) GetRateLimitInterval() time.Duration {
	if c.RateLimitInterval.Duration == 0 {
		return DefaultRateLimitInterval
	}

	return c.RateLimitInterval.Duration
}

func (c config) GetRateLimitBurst() int {
	if c.RateLimitBurst == 0 {
		return DefaultRateLimitBurst
	}

	return int(c.RateLimitBurst)
}

func (c config) GetWorkerPoolSize() int {
	if c.WorkerPoolSize == 0 {
		return geolib.DefaultTransportPoolSize
	}

	return int(c.WorkerPoolSize)
}

func (c config) GetCorrelatorWorkers() int {
	if c.CorrelatorWorkers == 0 {
		return geolib.DefaultCorrelatorWorkers
	}

	return int(c.CorrelatorWorkers)
}

func (c config) GetCircuitBreakerOpenThreshold() uint32 {
	if c.CircuitBreaker.OpenThreshold == 0 {
		return DefaultCircuitBreakerOpenThreshold
	}

	return c.CircuitBreaker.OpenThreshold
}

func (c config) GetCircuitBreakerHalfOpenTimeout() time.Duration {
	if c.CircuitBreaker.HalfOpenTimeout.Duration == 0 {
		return DefaultCircuitBreakerHalfOpenTimeout
	}

	return c.CircuitBreaker.HalfOpenTimeout.Duration
}

func (c config) GetCircuitBreakerResetFailuresTimeout() time.Duration {
	if c.CircuitBreaker.ResetFailuresTimeout.Duration == 0 {
		return DefaultCircuitBreakerResetFailuresTimeout
	}

	return c.CircuitBreaker.ResetFailuresTimeout.Duration
}

func (c config) HasBasicAuth() bool {
	return c.BasicAuth.User != "" || c.BasicAuth.Password != ""
}

func (c config) GetBasicAuthUser() string {
	return c.BasicAuth.User
}

func (c config) GetBasicAuthPassword() string {
	return c.BasicAuth.Password
}

func parseConfig(path string) (*config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}

	conf := config{}
	rawMap := map[string]interface{}{}

	if err := hjson.Unmarshal(content, &rawMap); err != nil {
		return nil, fmt.Errorf("cannot parse hjson: %w", err)
	}

	rawBytes, err := json.Marshal(rawMap)
	if err != nil {
		return nil, fmt.Errorf("cannot reencode config: %w", err)
	}

	if err := json.Unmarshal(rawBytes, &conf); err != nil {
		return nil, fmt.Errorf("incorrect config structure: %w", err)
	}

	if _, _, err := net.SplitHostPort(conf.GetListen()); err != nil {
		return nil, fmt.Errorf("incorrect host:port for listen: %w", err)
	}

	endpoint, err := url.Parse(conf.GetEndpoint())
	if err != nil {
		return nil, fmt.Errorf("incorrect endpoint: %w", err)
	}

	if endpoint.Scheme != "http" && endpoint.Scheme != "https" {
		return nil, fmt.Errorf("unsupported endpoint scheme %s", endpoint.Scheme)
	}

	if conf.BasicAuth.User != "" && conf.BasicAuth.Password == "" {
		return nil, errors.New("basic auth password is empty")
	}

	return &conf, nil
}
