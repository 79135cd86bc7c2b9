package clickhouse

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/creasty/defaults"
)

// Config describes the pool shared by the history and prediction stores.
// Zero fields take the defaults in the struct tags.
type Config struct {
	Host     string
	Port     int    `default:"9000"`
	Database string `default:"default"`
	User     string `default:"default"`
	Password string

	// HTTP speaks the HTTP interface (usually port 8123) instead of native TCP.
	HTTP bool

	MaxOpenConns    int           `default:"10"`
	MaxIdleConns    int           `default:"5"`
	ConnMaxLifetime time.Duration `default:"5m"`
	DialTimeout     time.Duration `default:"5s"`
	ReadTimeout     time.Duration `default:"10s"`
	PingTimeout     time.Duration `default:"5s"`

	// AsyncInsert lets the server buffer small game inserts; WaitForAsync
	// makes the insert return only once the buffer is flushed.
	AsyncInsert  bool
	WaitForAsync bool
	// MaxExecTime caps every query server side; whole seconds only.
	MaxExecTime time.Duration
}

func (c *Config) complete() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("clickhouse defaults: %w", err)
	}
	if c.Host == "" {
		return errors.New("clickhouse: host is required")
	}
	return nil
}

// options translates c into the driver's connection options.
func (c *Config) options() *ch.Options {
	protocol := ch.Native
	if c.HTTP {
		protocol = ch.HTTP
	}
	settings := ch.Settings{}
	if secs := int(c.MaxExecTime / time.Second); secs > 0 {
		settings["max_execution_time"] = secs
	}
	if c.AsyncInsert {
		settings["async_insert"] = 1
		if c.WaitForAsync {
			settings["wait_for_async_insert"] = 1
		}
	}
	return &ch.Options{
		Protocol: protocol,
		Addr:     []string{net.JoinHostPort(c.Host, strconv.Itoa(c.Port))},
		Auth: ch.Auth{
			Database: c.Database,
			Username: c.User,
			Password: c.Password,
		},
		Settings:        settings,
		DialTimeout:     c.DialTimeout,
		ReadTimeout:     c.ReadTimeout,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}
}
