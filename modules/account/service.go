package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/filingdesk/filingdesk/pkg/email"
	"github.com/filingdesk/filingdesk/pkg/referral"
	"github.com/filingdesk/filingdesk/pkg/returnurl"
	"github.com/filingdesk/filingdesk/pkg/routegate"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const minPasswordLength = 8

type Config struct {
	BaseURL string `env:"APP_BASE_URL" envDefault:"https://app.filingdesk.app"` // BaseURL prefixes links in outbound email.
}

// Service implements account lifecycle operations over a Store.
type Service struct {
	store     Store
	referrals ReferralStore
	plan      referral.Plan
	returnURL *returnurl.Service
	sender    email.Sender
	log       *slog.Logger
	baseURL   string
}

// NewService wires the account service. The returnurl service carries the
// allow-list of post-signup destinations; sender may be a dev sender.
func NewService(cfg Config, store Store, referrals ReferralStore, returnURL *returnurl.Service, sender email.Sender, log *slog.Logger) *Service {
	return &Service{
		store:     store,
		referrals: referrals,
		plan:      referral.DefaultPlan(),
		returnURL: returnURL,
		sender:    sender,
		log:       log,
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
	}
}

// SignUpParams is the sign-up request after transport decoding.
type SignUpParams struct {
	Email        string
	Password     string
	Type         routegate.AccountType
	ReferralCode string // ReferralCode is the referrer's code, optional.
	ReturnToken  string // ReturnToken is an opaque return-URL token, optional.
}

// SignUp registers an account and returns it along with the validated
// post-signup redirect path. The redirect is empty whenever the return token
// is absent, expired, forged, or aimed outside the allow-list; sign-up never
// fails because of a bad return token.
func (s *Service) SignUp(ctx context.Context, params SignUpParams) (*Account, string, error) {
	addr := strings.ToLower(strings.TrimSpace(params.Email))
	if !emailRegex.MatchString(addr) {
		return nil, "", fmt.Errorf("%w: malformed email", ErrInvalidInput)
	}
	if len(params.Password) < minPasswordLength {
		return nil, "", fmt.Errorf("%w: password shorter than %d characters", ErrInvalidInput, minPasswordLength)
	}
	switch params.Type {
	case routegate.AccountTypeIndividual, routegate.AccountTypeCompany, routegate.AccountTypeBusiness:
	default:
		return nil, "", fmt.Errorf("%w: account type %q not open for registration", ErrInvalidInput, params.Type)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	acct := &Account{
		ID:           uuid.New(),
		Email:        addr,
		PasswordHash: hash,
		Type:         params.Type,
		ReferralCode: referral.NewCode(),
		ReferredBy:   strings.ToUpper(strings.TrimSpace(params.ReferralCode)),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Create(ctx, acct); err != nil {
		return nil, "", err
	}

	if err := s.sendVerification(ctx, acct); err != nil {
		// The account exists; verification can be re-sent later.
		s.log.ErrorContext(ctx, "failed to send verification email", "account_id", acct.ID, "error", err)
	}

	redirect := ""
	if params.ReturnToken != "" {
		if path, err := s.returnURL.Validate(params.ReturnToken); err == nil {
			redirect = path
		}
	}
	return acct, redirect, nil
}

func (s *Service) sendVerification(ctx context.Context, acct *Account) error {
	token := uuid.NewString()
	if err := s.store.SetVerificationToken(ctx, acct.ID, token); err != nil {
		return err
	}
	link := s.baseURL + "/account/verify?token=" + token
	return s.sender.Send(ctx, email.Message{
		To:       acct.Email,
		Subject:  "Verify your FilingDesk account",
		BodyHTML: fmt.Sprintf(`<p>Welcome to FilingDesk.</p><p><a href="%s">Verify your email address</a> to activate your account.</p>`, link),
		Tag:      "signup-verification",
	})
}

// SignInOAuth signs a provider-verified identity in, registering an
// individual account on first contact. The redirect follows the same
// return-token rules as SignUp.
func (s *Service) SignInOAuth(ctx context.Context, profile OAuthProfile, returnToken string) (*Account, string, error) {
	addr := strings.ToLower(strings.TrimSpace(profile.Email))
	if !emailRegex.MatchString(addr) {
		return nil, "", fmt.Errorf("%w: malformed email", ErrInvalidInput)
	}

	redirect := ""
	if returnToken != "" {
		if path, err := s.returnURL.Validate(returnToken); err == nil {
			redirect = path
		}
	}

	acct, err := s.store.GetByEmail(ctx, addr)
	if err == nil {
		return acct, redirect, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, "", err
	}

	acct = &Account{
		ID:            uuid.New(),
		Email:         addr,
		Type:          routegate.AccountTypeIndividual,
		EmailVerified: profile.EmailVerified,
		ReferralCode:  referral.NewCode(),
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.Create(ctx, acct); err != nil {
		return nil, "", err
	}
	return acct, redirect, nil
}

// Get fetches an account by ID.
func (s *Service) Get(ctx context.Context, accountID uuid.UUID) (*Account, error) {
	return s.store.GetByID(ctx, accountID)
}

// Authenticate checks credentials. Unknown emails and wrong passwords return
// the same error.
func (s *Service) Authenticate(ctx context.Context, emailAddr, password string) (*Account, error) {
	acct, err := s.store.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(emailAddr)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return acct, nil
}

// VerifyEmail consumes a verification token and marks the account verified.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return ErrVerificationInvalid
	}
	_, err := s.store.ConsumeVerificationToken(ctx, token)
	return err
}

// RecordConversion accrues commission for the owner of code after a referred
// account makes a payment. The commission rate depends on the referrer's
// conversion count at the time of the event.
func (s *Service) RecordConversion(ctx context.Context, code string, referredID uuid.UUID, payment int64) error {
	referrer, err := s.store.GetByReferralCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUnknownReferralCode
		}
		return err
	}

	conversions, _, err := s.referrals.Summary(ctx, referrer.ReferralCode)
	if err != nil {
		return err
	}

	return s.referrals.Record(ctx, Referral{
		ID:         uuid.New(),
		Code:       referrer.ReferralCode,
		ReferredID: referredID,
		Commission: s.plan.Commission(payment, conversions),
		CreatedAt:  time.Now().UTC(),
	})
}

// Referrals returns the referral standing for an account.
func (s *Service) Referrals(ctx context.Context, accountID uuid.UUID) (ReferralSummary, error) {
	acct, err := s.store.GetByID(ctx, accountID)
	if err != nil {
		return ReferralSummary{}, err
	}

	conversions, accrued, err := s.referrals.Summary(ctx, acct.ReferralCode)
	if err != nil {
		return ReferralSummary{}, err
	}
	return ReferralSummary{
		Code:        acct.ReferralCode,
		Conversions: conversions,
		Accrued:     accrued,
		Payable:     s.plan.Payable(accrued),
	}, nil
}
