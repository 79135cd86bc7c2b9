package http

import (
	"time"

	xutil "HoopLine/pkg/util"
)

// ParseDate accepts YYYY-MM-DD, RFC3339 or unix seconds and truncates to the UTC day.
func ParseDate(s string) (time.Time, bool) { return xutil.ParseDate(s) }
