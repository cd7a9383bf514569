package cms

import "time"

// NowMillis returns the current UTC time as epoch milliseconds, truncated
// to whole seconds. All record timestamps use this resolution.
func NowMillis() int64 {
	return time.Now().UTC().Unix() * 1000
}
