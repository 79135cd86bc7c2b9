package cache

import "time"

// BytesCache stores encoded baselines and responses under expiring keys.
// A miss is ok=false with a nil error; an error means the backend failed.
type BytesCache interface {
	GetBytes(key string) ([]byte, bool, error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
