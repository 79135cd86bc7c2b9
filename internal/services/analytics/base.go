package analytics

import (
    "context"
    "errors"
    "fmt"
    "time"

    "github.com/sony/gobreaker"

    "HoopLine/pkg/config"
    xhttp "HoopLine/pkg/http"
)

// HTTPServiceBase provides a DRY foundation for advisor HTTP clients.
// Every call goes through a circuit breaker so a dead advisor fails fast.
type HTTPServiceBase struct {
    baseURL string
    client  *xhttp.Client
    breaker *gobreaker.CircuitBreaker
    retries int
}

// NewHTTPServiceBase builds an HTTP client with timeout, base URL and breaker from config.
func NewHTTPServiceBase(cfg *config.Config) *HTTPServiceBase {
    timeout := cfg.Advisor.Timeout
    if timeout <= 0 {
        timeout = 2 * time.Second
    }
    failures := cfg.Advisor.BreakerFailures
    if failures == 0 {
        failures = 5
    }
    st := gobreaker.Settings{Name: "override-advisor"}
    st.ReadyToTrip = func(counts gobreaker.Counts) bool { return counts.ConsecutiveFailures >= failures }
    st.Timeout = cfg.Advisor.BreakerTimeout
    return &HTTPServiceBase{
        baseURL: cfg.Advisor.URL,
        client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
        breaker: gobreaker.NewCircuitBreaker(st),
        retries: cfg.Advisor.Retries,
    }
}

// ErrBreakerOpen is returned while the advisor circuit is open.
var ErrBreakerOpen = errors.New("advisor circuit open")

// PostJSON posts the given payload to `path` under baseURL and decodes JSON into dest.
func (b *HTTPServiceBase) PostJSON(ctx context.Context, path string, payload interface{}, dest interface{}) error {
    if b.client == nil || b.baseURL == "" {
        return fmt.Errorf("advisor http client not initialized")
    }
    _, err := b.breaker.Execute(func() (interface{}, error) {
        return nil, b.client.SendAndParse(ctx, &xhttp.RequestOptions{
            Method: xhttp.MethodPost,
            URL:    b.baseURL + path,
            Headers: map[string]string{
                "Content-Type": "application/json",
            },
            Body: payload,
        }, dest)
    })
    if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
        return fmt.Errorf("post %s: %w", path, ErrBreakerOpen)
    }
    if err != nil {
        return fmt.Errorf("post %s: %w", path, err)
    }
    return nil
}

// PostJSONWithRetry posts JSON with up to the configured number of retries.
// An open breaker is not retried.
func (b *HTTPServiceBase) PostJSONWithRetry(ctx context.Context, path string, payload interface{}, dest interface{}) error {
    attempts := b.retries + 1
    var err error
    for i := 1; i <= attempts; i++ {
        err = b.PostJSON(ctx, path, payload, dest)
        if err == nil || errors.Is(err, ErrBreakerOpen) {
            return err
        }
        if i == attempts {
            break
        }
        select {
        case <-time.After(time.Duration(i) * 50 * time.Millisecond):
        case <-ctx.Done():
            return ctx.Err()
        }
    }
    return err
}

// State reports the breaker state, for health output.
func (b *HTTPServiceBase) State() string {
    return b.breaker.State().String()
}
