package returnurl_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filingdesk/filingdesk/pkg/returnurl"
)

const testSecret = "test-signing-secret"

var testPaths = []string{"/dashboard", "/invoices/new", "/reviews/write"}

func newService(t *testing.T, opts ...returnurl.Option) *returnurl.Service {
	t.Helper()
	svc, err := returnurl.New(testSecret, testPaths, opts...)
	require.NoError(t, err)
	return svc
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("valid configuration", func(t *testing.T) {
		t.Parallel()
		svc, err := returnurl.New(testSecret, testPaths)
		require.NoError(t, err)
		require.NotNil(t, svc)
	})

	t.Run("empty secret", func(t *testing.T) {
		t.Parallel()
		svc, err := returnurl.New("", testPaths)
		require.ErrorIs(t, err, returnurl.ErrMissingSecret)
		require.Nil(t, svc)
	})

	t.Run("empty allow-list", func(t *testing.T) {
		t.Parallel()
		svc, err := returnurl.New(testSecret, nil)
		require.ErrorIs(t, err, returnurl.ErrEmptyAllowList)
		require.Nil(t, svc)
	})
}

func TestIssueAndValidate_RoundTrip(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	for _, path := range testPaths {
		t.Run(path, func(t *testing.T) {
			t.Parallel()
			token, err := svc.Issue(path)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			got, err := svc.Validate(token)
			require.NoError(t, err)
			assert.Equal(t, path, got)
		})
	}
}

func TestIssue_PathNotAllowed(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	for _, path := range []string{"/not-allowed", "", "/dashboard/", "dashboard"} {
		token, err := svc.Issue(path)
		require.ErrorIs(t, err, returnurl.ErrPathNotAllowed, "path %q", path)
		assert.Empty(t, token)
	}
}

func TestValidate_MalformedInput(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	tests := []struct {
		name  string
		token string
	}{
		{"empty string", ""},
		{"not base64", "not-base64!!"},
		{"padded base64", "YWJjZA=="},
		{"no delimiters", base64.RawURLEncoding.EncodeToString([]byte("garbage"))},
		{"one field missing", base64.RawURLEncoding.EncodeToString([]byte("/dashboard:1700000000000"))},
		{"empty path field", base64.RawURLEncoding.EncodeToString([]byte(":1700000000000:deadbeef"))},
		{"empty timestamp field", base64.RawURLEncoding.EncodeToString([]byte("/dashboard::deadbeef"))},
		{"empty signature field", base64.RawURLEncoding.EncodeToString([]byte("/dashboard:1700000000000:"))},
		{"non-numeric timestamp", base64.RawURLEncoding.EncodeToString([]byte("/dashboard:soon:deadbeef"))},
		{"non-hex signature", base64.RawURLEncoding.EncodeToString([]byte("/dashboard:1700000000000:zzzz"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path, err := svc.Validate(tt.token)
			require.ErrorIs(t, err, returnurl.ErrInvalidToken)
			assert.Empty(t, path)
		})
	}
}

func TestValidate_Tampering(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	token, err := svc.Issue("/dashboard")
	require.NoError(t, err)

	decoded, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)

	// Flipping any single payload character must invalidate the signature.
	for i := range decoded {
		tampered := []byte(strings.Clone(string(decoded)))
		tampered[i] ^= 0x01
		_, err := svc.Validate(base64.RawURLEncoding.EncodeToString(tampered))
		require.ErrorIs(t, err, returnurl.ErrInvalidToken, "flipped byte %d", i)
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	other, err := returnurl.New("a-different-secret", testPaths)
	require.NoError(t, err)

	token, err := svc.Issue("/dashboard")
	require.NoError(t, err)

	_, err = other.Validate(token)
	require.ErrorIs(t, err, returnurl.ErrInvalidToken)
}

func TestValidate_ExpiryBoundary(t *testing.T) {
	t.Parallel()
	issuedAt := time.UnixMilli(1_700_000_000_000)

	tests := []struct {
		name    string
		elapsed time.Duration
		valid   bool
	}{
		{"immediately", 0, true},
		{"one millisecond before the window closes", time.Hour - time.Millisecond, true},
		{"exactly at the window", time.Hour, true},
		{"one millisecond past the window", time.Hour + time.Millisecond, false},
		{"well past the window", 24 * time.Hour, false},
		{"issued in the future", -time.Millisecond, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			clock := issuedAt
			svc := newService(t, returnurl.WithClock(func() time.Time { return clock }))

			token, err := svc.Issue("/dashboard")
			require.NoError(t, err)

			clock = issuedAt.Add(tt.elapsed)
			path, err := svc.Validate(token)
			if tt.valid {
				require.NoError(t, err)
				assert.Equal(t, "/dashboard", path)
			} else {
				require.ErrorIs(t, err, returnurl.ErrInvalidToken)
			}
		})
	}
}

func TestValidate_CustomTTL(t *testing.T) {
	t.Parallel()
	issuedAt := time.UnixMilli(1_700_000_000_000)
	clock := issuedAt
	svc := newService(t,
		returnurl.WithTTL(time.Minute),
		returnurl.WithClock(func() time.Time { return clock }),
	)

	token, err := svc.Issue("/dashboard")
	require.NoError(t, err)

	clock = issuedAt.Add(time.Minute)
	_, err = svc.Validate(token)
	require.NoError(t, err)

	clock = issuedAt.Add(time.Minute + time.Millisecond)
	_, err = svc.Validate(token)
	require.ErrorIs(t, err, returnurl.ErrInvalidToken)
}

func TestIssue_DistinctAcrossTime(t *testing.T) {
	t.Parallel()
	issuedAt := time.UnixMilli(1_700_000_000_000)
	clock := issuedAt
	svc := newService(t, returnurl.WithClock(func() time.Time { return clock }))

	first, err := svc.Issue("/dashboard")
	require.NoError(t, err)

	clock = issuedAt.Add(time.Millisecond)
	second, err := svc.Issue("/dashboard")
	require.NoError(t, err)

	require.NotEqual(t, first, second)

	for _, token := range []string{first, second} {
		path, err := svc.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "/dashboard", path)
	}
}

func TestIssue_DeterministicWithFixedClock(t *testing.T) {
	t.Parallel()
	svc := newService(t, returnurl.WithClock(fixedClock(time.UnixMilli(1_700_000_000_000))))

	first, err := svc.Issue("/dashboard")
	require.NoError(t, err)
	second, err := svc.Issue("/dashboard")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestValidate_AllowListChange(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	token, err := svc.Issue("/reviews/write")
	require.NoError(t, err)

	// Same secret, narrower allow-list: a previously valid encoding must not
	// be trusted after the destination is withdrawn.
	narrowed, err := returnurl.New(testSecret, []string{"/dashboard"})
	require.NoError(t, err)

	_, err = narrowed.Validate(token)
	require.ErrorIs(t, err, returnurl.ErrInvalidToken)
}

func TestPathWithColon(t *testing.T) {
	t.Parallel()
	svc, err := returnurl.New(testSecret, []string{"/docs/ng:vat-guide"})
	require.NoError(t, err)

	token, err := svc.Issue("/docs/ng:vat-guide")
	require.NoError(t, err)

	path, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "/docs/ng:vat-guide", path)
}

func TestTokenIsURLSafe(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	token, err := svc.Issue("/invoices/new")
	require.NoError(t, err)

	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
	assert.NotContains(t, token, "=")
}

func TestConcreteScenario(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	token, err := svc.Issue("/dashboard")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	path, err := svc.Validate(token)
	require.NoError(t, err)
	require.Equal(t, "/dashboard", path)

	_, err = svc.Issue("/not-allowed")
	require.ErrorIs(t, err, returnurl.ErrPathNotAllowed)

	_, err = svc.Validate("")
	require.ErrorIs(t, err, returnurl.ErrInvalidToken)
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("applies configured TTL", func(t *testing.T) {
		t.Parallel()
		issuedAt := time.UnixMilli(1_700_000_000_000)
		clock := issuedAt
		svc, err := returnurl.NewFromConfig(
			returnurl.Config{Secret: testSecret, TTL: time.Minute},
			testPaths,
			returnurl.WithClock(func() time.Time { return clock }),
		)
		require.NoError(t, err)

		token, err := svc.Issue("/dashboard")
		require.NoError(t, err)

		clock = issuedAt.Add(2 * time.Minute)
		_, err = svc.Validate(token)
		require.ErrorIs(t, err, returnurl.ErrInvalidToken)
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Parallel()
		_, err := returnurl.NewFromConfig(returnurl.Config{}, testPaths)
		require.ErrorIs(t, err, returnurl.ErrMissingSecret)
	})
}
