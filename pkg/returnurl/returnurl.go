package returnurl

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// DefaultTTL is the validity window applied when no WithTTL option is given.
const DefaultTTL = time.Hour

// Service issues and validates signed return-URL tokens. The secret and the
// allow-list are fixed at construction; both operations are pure functions of
// (input, clock), so a Service is safe for concurrent use without coordination.
type Service struct {
	secret  []byte
	allowed map[string]struct{}
	ttl     time.Duration
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTTL overrides the validity window. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock replaces the wall clock, letting tests pin issuance and
// validation times. Nil clocks are ignored.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Service signing with secret and restricted to the given
// destination paths. The secret must be non-empty and at least one path must
// be allowed; there is no fallback secret.
func New(secret string, allowed []string, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if len(allowed) == 0 {
		return nil, ErrEmptyAllowList
	}

	s := &Service{
		secret:  []byte(secret),
		allowed: make(map[string]struct{}, len(allowed)),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, p := range allowed {
		s.allowed[p] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue mints a token redirecting back to path. Paths outside the allow-list
// are rejected with ErrPathNotAllowed; callers treat that as "do not attach a
// return token" rather than a failure to report.
func (s *Service) Issue(path string) (string, error) {
	if _, ok := s.allowed[path]; !ok {
		return "", ErrPathNotAllowed
	}

	payload := path + ":" + strconv.FormatInt(s.now().UnixMilli(), 10)
	token := payload + ":" + hex.EncodeToString(s.sign(payload))
	return base64.RawURLEncoding.EncodeToString([]byte(token)), nil
}

// Validate checks an untrusted token and returns the destination path it
// carries. The returned path is guaranteed to be a current member of the
// allow-list. Every failure mode returns ErrInvalidToken; the caller cannot
// distinguish expired from forged from malformed.
func (s *Service) Validate(token string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", ErrInvalidToken
	}
	decoded := string(raw)

	// Signature and timestamp are the two rightmost colon-delimited fields,
	// so a colon inside the path cannot shift the split.
	sigAt := strings.LastIndexByte(decoded, ':')
	if sigAt < 0 {
		return "", ErrInvalidToken
	}
	payload, sigHex := decoded[:sigAt], decoded[sigAt+1:]

	tsAt := strings.LastIndexByte(payload, ':')
	if tsAt < 0 {
		return "", ErrInvalidToken
	}
	path, tsStr := payload[:tsAt], payload[tsAt+1:]
	if path == "" || tsStr == "" || sigHex == "" {
		return "", ErrInvalidToken
	}

	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return "", ErrInvalidToken
	}
	if !hmac.Equal(sig, s.sign(payload)) {
		return "", ErrInvalidToken
	}

	issuedAtMs, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return "", ErrInvalidToken
	}
	age := s.now().UnixMilli() - issuedAtMs
	if age < 0 || age > s.ttl.Milliseconds() {
		return "", ErrInvalidToken
	}

	// Re-checked here because the allow-list may have changed since issuance;
	// a previously valid encoding is never trusted on its own.
	if _, ok := s.allowed[path]; !ok {
		return "", ErrInvalidToken
	}
	return path, nil
}

func (s *Service) sign(payload string) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(payload))
	return h.Sum(nil)
}
