// Package tokenx reads expiry information out of bearer tokens and user
// records without verifying signatures. The client never holds the issuer's
// key, so everything here is advisory: it decides when the client stops
// presenting a credential, not whether the credential is genuine.
package tokenx

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// millisThreshold separates epoch seconds from epoch milliseconds: values at
// or below it are seconds.
const millisThreshold = 1e12

// expiryClaims are looked up in order; the first one present decides.
var expiryClaims = []string{"exp", "expiration", "expires_at"}

// Layouts tried for string-valued expiry claims. Zone-less date-times are
// read in local time and bare dates in UTC.
var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		time.RFC1123Z,
		time.RFC1123,
		time.RFC850,
	}
	localLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		time.ANSIC,
	}
)

var parser = jwt.NewParser(jwt.WithPaddingAllowed())

// DecodeExpiry returns the expiry instant carried by token, or false when it
// cannot be determined. It never fails: malformed tokens, undecodable
// segments, non-object payloads and unusable claims all report false.
func DecodeExpiry(token string) (time.Time, bool) {
	if strings.TrimSpace(token) == "" {
		return time.Time{}, false
	}

	// Only the payload matters; the header is not decoded at all.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	payload, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return time.Time{}, false
	}
	var claims jwt.MapClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return time.Time{}, false
	}

	for _, name := range expiryClaims {
		v, ok := claims[name]
		if !ok || v == nil {
			continue
		}
		return claimTime(v)
	}
	return time.Time{}, false
}

func claimTime(v any) (time.Time, bool) {
	switch value := v.(type) {
	case float64:
		return epochTime(value)
	case string:
		return parseDate(value)
	default:
		return time.Time{}, false
	}
}

// NormalizeEpoch converts a user record's expiration field, given in either
// seconds or milliseconds since the epoch, to an instant. Zero and negative
// values mean "unset".
func NormalizeEpoch(v int64) (time.Time, bool) {
	if v <= 0 {
		return time.Time{}, false
	}
	return epochTime(float64(v))
}

func epochTime(v float64) (time.Time, bool) {
	ms := v
	if v <= millisThreshold {
		ms = v * 1000
	}
	if math.IsNaN(ms) || ms >= math.MaxInt64 || ms <= math.MinInt64 {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)), true
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
