package clickhouse

import (
	"testing"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsFromConfig(t *testing.T) {
	cfg := Config{
		Host:         "ch.local",
		Port:         9440,
		Database:     "hoopline",
		User:         "svc",
		Password:     "p@ss",
		DialTimeout:  2 * time.Second,
		AsyncInsert:  true,
		WaitForAsync: true,
		MaxExecTime:  90 * time.Second,
	}
	require.NoError(t, cfg.complete())
	opts := cfg.options()

	assert.Equal(t, ch.Native, opts.Protocol)
	assert.Equal(t, []string{"ch.local:9440"}, opts.Addr)
	assert.Equal(t, "hoopline", opts.Auth.Database)
	assert.Equal(t, "p@ss", opts.Auth.Password)
	assert.Equal(t, 2*time.Second, opts.DialTimeout)
	assert.Equal(t, 10*time.Second, opts.ReadTimeout)
	assert.Equal(t, 10, opts.MaxOpenConns)
	assert.Equal(t, 90, opts.Settings["max_execution_time"])
	assert.Equal(t, 1, opts.Settings["async_insert"])
	assert.Equal(t, 1, opts.Settings["wait_for_async_insert"])
}

func TestOptionsHTTPDefaults(t *testing.T) {
	cfg := Config{Host: "localhost", Port: 8123, HTTP: true}
	require.NoError(t, cfg.complete())
	opts := cfg.options()

	assert.Equal(t, ch.HTTP, opts.Protocol)
	assert.Equal(t, "default", opts.Auth.Database)
	assert.NotContains(t, opts.Settings, "async_insert")
	assert.NotContains(t, opts.Settings, "max_execution_time")
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient(Config{Port: 9000})
	assert.ErrorContains(t, err, "host is required")
}
