package account_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filingdesk/filingdesk/modules/account"
	"github.com/filingdesk/filingdesk/pkg/email"
	"github.com/filingdesk/filingdesk/pkg/returnurl"
	"github.com/filingdesk/filingdesk/pkg/routegate"
)

const testReturnSecret = "return-secret"

var allowedReturns = []string{"/dashboard", "/reviews/write"}

type memStore struct {
	mu            sync.Mutex
	byID          map[uuid.UUID]*account.Account
	verifications map[string]uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{
		byID:          make(map[uuid.UUID]*account.Account),
		verifications: make(map[string]uuid.UUID),
	}
}

func (s *memStore) Create(_ context.Context, acct *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Email == acct.Email {
			return account.ErrEmailTaken
		}
	}
	cp := *acct
	s.byID[acct.ID] = &cp
	return nil
}

func (s *memStore) GetByEmail(_ context.Context, addr string) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acct := range s.byID {
		if acct.Email == addr {
			cp := *acct
			return &cp, nil
		}
	}
	return nil, account.ErrNotFound
}

func (s *memStore) GetByID(_ context.Context, id uuid.UUID) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.byID[id]
	if !ok {
		return nil, account.ErrNotFound
	}
	cp := *acct
	return &cp, nil
}

func (s *memStore) GetByReferralCode(_ context.Context, code string) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acct := range s.byID {
		if acct.ReferralCode == code {
			cp := *acct
			return &cp, nil
		}
	}
	return nil, account.ErrNotFound
}

func (s *memStore) SetVerificationToken(_ context.Context, accountID uuid.UUID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifications[token] = accountID
	return nil
}

func (s *memStore) ConsumeVerificationToken(_ context.Context, token string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	accountID, ok := s.verifications[token]
	if !ok {
		return uuid.Nil, account.ErrVerificationInvalid
	}
	delete(s.verifications, token)
	if acct, ok := s.byID[accountID]; ok {
		acct.EmailVerified = true
	}
	return accountID, nil
}

type memReferrals struct {
	mu      sync.Mutex
	records []account.Referral
}

func (s *memReferrals) Record(_ context.Context, ref account.Referral) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, ref)
	return nil
}

func (s *memReferrals) Summary(_ context.Context, code string) (int, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var conversions int
	var accrued int64
	for _, ref := range s.records {
		if ref.Code == code {
			conversions++
			accrued += ref.Commission
		}
	}
	return conversions, accrued, nil
}

type capturingSender struct {
	mu       sync.Mutex
	messages []email.Message
}

func (s *capturingSender) Send(_ context.Context, msg email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

type fixture struct {
	svc       *account.Service
	store     *memStore
	referrals *memReferrals
	sender    *capturingSender
	returnURL *returnurl.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	returnSvc, err := returnurl.New(testReturnSecret, allowedReturns)
	require.NoError(t, err)

	f := &fixture{
		store:     newMemStore(),
		referrals: &memReferrals{},
		sender:    &capturingSender{},
		returnURL: returnSvc,
	}
	f.svc = account.NewService(
		account.Config{BaseURL: "https://app.filingdesk.test"},
		f.store, f.referrals, returnSvc, f.sender,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return f
}

func signUp(t *testing.T, f *fixture, addr string) *account.Account {
	t.Helper()
	acct, _, err := f.svc.SignUp(t.Context(), account.SignUpParams{
		Email:    addr,
		Password: "correct-horse",
		Type:     routegate.AccountTypeCompany,
	})
	require.NoError(t, err)
	return acct
}

func TestSignUp(t *testing.T) {
	t.Parallel()

	t.Run("creates account and sends verification", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		acct, redirect, err := f.svc.SignUp(t.Context(), account.SignUpParams{
			Email:    "Owner@Example.COM ",
			Password: "correct-horse",
			Type:     routegate.AccountTypeBusiness,
		})
		require.NoError(t, err)
		assert.Equal(t, "owner@example.com", acct.Email)
		assert.Equal(t, routegate.AccountTypeBusiness, acct.Type)
		assert.Len(t, acct.ReferralCode, 8)
		assert.Empty(t, redirect)

		require.Len(t, f.sender.messages, 1)
		assert.Equal(t, "owner@example.com", f.sender.messages[0].To)
		assert.Contains(t, f.sender.messages[0].BodyHTML, "https://app.filingdesk.test/account/verify?token=")
	})

	t.Run("honors valid return token", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		token, err := f.returnURL.Issue("/reviews/write")
		require.NoError(t, err)

		_, redirect, err := f.svc.SignUp(t.Context(), account.SignUpParams{
			Email:       "a@example.com",
			Password:    "correct-horse",
			Type:        routegate.AccountTypeIndividual,
			ReturnToken: token,
		})
		require.NoError(t, err)
		assert.Equal(t, "/reviews/write", redirect)
	})

	t.Run("ignores forged return token", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, redirect, err := f.svc.SignUp(t.Context(), account.SignUpParams{
			Email:       "a@example.com",
			Password:    "correct-horse",
			Type:        routegate.AccountTypeIndividual,
			ReturnToken: "forged-nonsense",
		})
		require.NoError(t, err)
		assert.Empty(t, redirect)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		cases := []account.SignUpParams{
			{Email: "nope", Password: "correct-horse", Type: routegate.AccountTypeCompany},
			{Email: "a@example.com", Password: "short", Type: routegate.AccountTypeCompany},
			{Email: "a@example.com", Password: "correct-horse", Type: routegate.AccountTypeAdmin},
			{Email: "a@example.com", Password: "correct-horse", Type: routegate.AccountType("ghost")},
		}
		for _, params := range cases {
			_, _, err := f.svc.SignUp(t.Context(), params)
			require.ErrorIs(t, err, account.ErrInvalidInput)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		signUp(t, f, "a@example.com")

		_, _, err := f.svc.SignUp(t.Context(), account.SignUpParams{
			Email:    "a@example.com",
			Password: "correct-horse",
			Type:     routegate.AccountTypeCompany,
		})
		require.ErrorIs(t, err, account.ErrEmailTaken)
	})
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	signUp(t, f, "a@example.com")

	t.Run("correct credentials", func(t *testing.T) {
		acct, err := f.svc.Authenticate(t.Context(), "A@example.com", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, "a@example.com", acct.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.svc.Authenticate(t.Context(), "a@example.com", "battery-staple")
		require.ErrorIs(t, err, account.ErrInvalidCredentials)
	})

	t.Run("unknown email collapses to same error", func(t *testing.T) {
		_, err := f.svc.Authenticate(t.Context(), "ghost@example.com", "correct-horse")
		require.ErrorIs(t, err, account.ErrInvalidCredentials)
	})
}

func TestVerifyEmail(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	acct := signUp(t, f, "a@example.com")

	require.Len(t, f.sender.messages, 1)
	body := f.sender.messages[0].BodyHTML
	start := strings.Index(body, "token=") + len("token=")
	token := body[start : start+36] // a uuid string

	require.NoError(t, f.svc.VerifyEmail(t.Context(), token))

	stored, err := f.store.GetByID(t.Context(), acct.ID)
	require.NoError(t, err)
	assert.True(t, stored.EmailVerified)

	// A consumed token cannot be replayed.
	require.ErrorIs(t, f.svc.VerifyEmail(t.Context(), token), account.ErrVerificationInvalid)
	require.ErrorIs(t, f.svc.VerifyEmail(t.Context(), ""), account.ErrVerificationInvalid)
}

func TestSignInOAuth(t *testing.T) {
	t.Parallel()

	profile := account.OAuthProfile{
		ProviderUserID: "google-123",
		Email:          "Owner@Example.com",
		EmailVerified:  true,
		Name:           "Owner",
	}

	t.Run("registers on first contact", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		acct, _, err := f.svc.SignInOAuth(t.Context(), profile, "")
		require.NoError(t, err)
		assert.Equal(t, "owner@example.com", acct.Email)
		assert.True(t, acct.EmailVerified)
		assert.Len(t, acct.ReferralCode, 8)

		// A second sign-in resolves to the same account.
		again, _, err := f.svc.SignInOAuth(t.Context(), profile, "")
		require.NoError(t, err)
		assert.Equal(t, acct.ID, again.ID)
	})

	t.Run("matches an existing password account by email", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		existing := signUp(t, f, "owner@example.com")

		acct, _, err := f.svc.SignInOAuth(t.Context(), profile, "")
		require.NoError(t, err)
		assert.Equal(t, existing.ID, acct.ID)
	})

	t.Run("return token honored and forged token ignored", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		token, err := f.returnURL.Issue("/dashboard")
		require.NoError(t, err)

		_, redirect, err := f.svc.SignInOAuth(t.Context(), profile, token)
		require.NoError(t, err)
		assert.Equal(t, "/dashboard", redirect)

		_, redirect, err = f.svc.SignInOAuth(t.Context(), profile, "forged")
		require.NoError(t, err)
		assert.Empty(t, redirect)
	})
}

func TestGoogleProviderAuthURL(t *testing.T) {
	t.Parallel()
	provider := account.NewGoogleProvider(account.OAuthConfig{
		ClientID:    "client-1",
		RedirectURL: "https://app.filingdesk.test/account/oauth/google/callback",
	})

	url := provider.AuthURL("opaque-state")
	assert.Contains(t, url, "client_id=client-1")
	assert.Contains(t, url, "state=opaque-state")
	assert.Contains(t, url, "accounts.google.com")
}

func TestReferralFlow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	referrer := signUp(t, f, "referrer@example.com")
	referred := signUp(t, f, "referred@example.com")

	require.NoError(t, f.svc.RecordConversion(t.Context(), referrer.ReferralCode, referred.ID, 10_000_00))

	summary, err := f.svc.Referrals(t.Context(), referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, referrer.ReferralCode, summary.Code)
	assert.Equal(t, 1, summary.Conversions)
	assert.Equal(t, int64(1_000_00), summary.Accrued) // 10% base tier
	assert.False(t, summary.Payable)

	require.ErrorIs(t,
		f.svc.RecordConversion(t.Context(), "NOPE1234", referred.ID, 10_000_00),
		account.ErrUnknownReferralCode,
	)
}
