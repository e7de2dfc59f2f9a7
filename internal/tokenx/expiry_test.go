package tokenx

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("issuer-secret"))
	require.NoError(t, err)
	return s
}

func rawToken(header, payload string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(header)) + "." + enc.EncodeToString([]byte(payload)) + ".sig"
}

func TestDecodeExpiry_NumericClaims(t *testing.T) {
	tests := []struct {
		name   string
		claim  float64
		wantMS int64
	}{
		{name: "seconds", claim: 1700000000, wantMS: 1700000000000},
		{name: "threshold is seconds", claim: 1e12, wantMS: 1e15},
		{name: "milliseconds", claim: 1700000000123, wantMS: 1700000000123},
		{name: "zero is epoch", claim: 0, wantMS: 0},
		{name: "fractional seconds", claim: 1700000000.5, wantMS: 1700000000500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DecodeExpiry(signed(t, jwt.MapClaims{"exp": tt.claim}))
			require.True(t, ok)
			assert.Equal(t, tt.wantMS, got.UnixMilli())
		})
	}
}

func TestDecodeExpiry_ClaimPrecedence(t *testing.T) {
	t.Run("exp wins over aliases", func(t *testing.T) {
		got, ok := DecodeExpiry(signed(t, jwt.MapClaims{
			"exp":        1700000000,
			"expiration": 1800000000,
			"expires_at": 1900000000,
		}))
		require.True(t, ok)
		assert.Equal(t, int64(1700000000000), got.UnixMilli())
	})

	t.Run("expiration used when exp missing", func(t *testing.T) {
		got, ok := DecodeExpiry(signed(t, jwt.MapClaims{"expiration": 1800000000, "expires_at": 1900000000}))
		require.True(t, ok)
		assert.Equal(t, int64(1800000000000), got.UnixMilli())
	})

	t.Run("expires_at used last", func(t *testing.T) {
		got, ok := DecodeExpiry(signed(t, jwt.MapClaims{"expires_at": 1900000000}))
		require.True(t, ok)
		assert.Equal(t, int64(1900000000000), got.UnixMilli())
	})

	t.Run("null exp falls through", func(t *testing.T) {
		got, ok := DecodeExpiry(rawToken(`{"alg":"HS256"}`, `{"exp":null,"expiration":1800000000}`))
		require.True(t, ok)
		assert.Equal(t, int64(1800000000000), got.UnixMilli())
	})

	t.Run("first present claim of unusable type decides", func(t *testing.T) {
		_, ok := DecodeExpiry(rawToken(`{"alg":"HS256"}`, `{"exp":true,"expiration":1800000000}`))
		assert.False(t, ok)
	})
}

func TestDecodeExpiry_StringClaims(t *testing.T) {
	t.Run("RFC3339", func(t *testing.T) {
		got, ok := DecodeExpiry(signed(t, jwt.MapClaims{"expires_at": "2030-01-02T03:04:05Z"}))
		require.True(t, ok)
		assert.True(t, got.Equal(time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)))
	})

	t.Run("RFC3339 with offset and fraction", func(t *testing.T) {
		got, ok := DecodeExpiry(signed(t, jwt.MapClaims{"exp": "2030-01-02T05:04:05.250+02:00"}))
		require.True(t, ok)
		assert.Equal(t, time.Date(2030, 1, 2, 3, 4, 5, 250e6, time.UTC).UnixMilli(), got.UnixMilli())
	})

	t.Run("date only is UTC midnight", func(t *testing.T) {
		got, ok := DecodeExpiry(signed(t, jwt.MapClaims{"exp": "2030-01-02"}))
		require.True(t, ok)
		assert.True(t, got.Equal(time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("RFC1123", func(t *testing.T) {
		got, ok := DecodeExpiry(signed(t, jwt.MapClaims{"exp": "Wed, 02 Jan 2030 03:04:05 GMT"}))
		require.True(t, ok)
		assert.Equal(t, 2030, got.Year())
	})

	t.Run("unparseable", func(t *testing.T) {
		_, ok := DecodeExpiry(signed(t, jwt.MapClaims{"exp": "next tuesday"}))
		assert.False(t, ok)
	})
}

func TestDecodeExpiry_FailsSoft(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "blank", token: "   "},
		{name: "one segment", token: "abc"},
		{name: "two segments", token: "abc.def"},
		{name: "four segments", token: "a.b.c.d"},
		{name: "payload bad base64 length", token: base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256"}`)) + ".abcde.sig"},
		{name: "payload garbage", token: base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256"}`)) + ".%%%.sig"},
		{name: "payload not json", token: rawToken(`{"alg":"HS256"}`, `not json`)},
		{name: "payload json array", token: rawToken(`{"alg":"HS256"}`, `[1,2,3]`)},
		{name: "payload json null", token: rawToken(`{"alg":"HS256"}`, `null`)},
		{name: "no expiry claims", token: rawToken(`{"alg":"HS256"}`, `{"sub":"u1"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				_, ok := DecodeExpiry(tt.token)
				assert.False(t, ok)
			})
		})
	}
}

func TestDecodeExpiry_UnknownAlgStillReadsPayload(t *testing.T) {
	got, ok := DecodeExpiry(rawToken(`{"alg":"XYZ999","typ":"JWT"}`, `{"exp":1700000000}`))
	require.True(t, ok)
	assert.Equal(t, int64(1700000000000), got.UnixMilli())
}

func TestDecodeExpiry_HeaderIsNotDecoded(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{name: "header not base64", header: "not-json-header"},
		{name: "header not json", header: base64.RawURLEncoding.EncodeToString([]byte(`garbage`))},
		{name: "empty header", header: ""},
	}
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"exp":2000000000}`))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DecodeExpiry(tt.header + "." + payload + ".sig")
			require.True(t, ok)
			assert.Equal(t, int64(2000000000000), got.UnixMilli())
		})
	}
}

func TestDecodeExpiry_PaddedSegments(t *testing.T) {
	enc := base64.URLEncoding
	token := enc.EncodeToString([]byte(`{"alg":"HS256"}`)) + "." + enc.EncodeToString([]byte(`{"exp":1700000000}`)) + ".sig"

	got, ok := DecodeExpiry(token)
	require.True(t, ok)
	assert.Equal(t, int64(1700000000000), got.UnixMilli())
}

func TestNormalizeEpoch(t *testing.T) {
	_, ok := NormalizeEpoch(0)
	assert.False(t, ok)

	_, ok = NormalizeEpoch(-5)
	assert.False(t, ok)

	got, ok := NormalizeEpoch(1700000000)
	require.True(t, ok)
	assert.Equal(t, int64(1700000000000), got.UnixMilli())

	got, ok = NormalizeEpoch(1700000000999)
	require.True(t, ok)
	assert.Equal(t, int64(1700000000999), got.UnixMilli())
}
