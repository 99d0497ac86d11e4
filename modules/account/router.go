package account

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/filingdesk/filingdesk/pkg/routegate"
)

// RouterOptions configures the account router.
type RouterOptions struct {
	// RateLimit, when set, wraps the credential endpoints (sign-up, sign-in).
	RateLimit func(next http.Handler) http.Handler
	// OAuth, when set, enables the Google sign-in routes.
	OAuth *GoogleProvider
}

// Router mounts account endpoints.
func Router(svc *Service, opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		if opts.RateLimit != nil {
			r.Use(opts.RateLimit)
		}
		r.Post("/signup", handleSignUp(svc))
		r.Post("/signin", handleSignIn(svc))
	})

	r.Get("/verify", handleVerify(svc))
	r.Get("/referrals/{accountID}", handleReferrals(svc))

	if opts.OAuth != nil {
		r.Get("/oauth/google", handleOAuthStart(opts.OAuth))
		r.Get("/oauth/google/callback", handleOAuthCallback(svc, opts.OAuth))
	}

	return r
}

type signUpRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	AccountType  string `json:"account_type"`
	ReferralCode string `json:"referral_code,omitempty"`
	ReturnToken  string `json:"return_token,omitempty"`
}

type accountResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	AccountType   string `json:"account_type"`
	EmailVerified bool   `json:"email_verified"`
	ReferralCode  string `json:"referral_code"`
	Redirect      string `json:"redirect,omitempty"`
}

func handleSignUp(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signUpRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		acct, redirect, err := svc.SignUp(r.Context(), SignUpParams{
			Email:        req.Email,
			Password:     req.Password,
			Type:         routegate.AccountType(req.AccountType),
			ReferralCode: req.ReferralCode,
			ReturnToken:  req.ReturnToken,
		})
		switch {
		case errors.Is(err, ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case errors.Is(err, ErrEmailTaken):
			writeError(w, http.StatusConflict, err.Error())
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusCreated, accountResponse{
			ID:           acct.ID.String(),
			Email:        acct.Email,
			AccountType:  string(acct.Type),
			ReferralCode: acct.ReferralCode,
			Redirect:     redirect,
		})
	}
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func handleSignIn(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signInRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		acct, err := svc.Authenticate(r.Context(), req.Email, req.Password)
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, accountResponse{
			ID:            acct.ID.String(),
			Email:         acct.Email,
			AccountType:   string(acct.Type),
			EmailVerified: acct.EmailVerified,
			ReferralCode:  acct.ReferralCode,
		})
	}
}

func handleVerify(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := svc.VerifyEmail(r.Context(), r.URL.Query().Get("token"))
		switch {
		case errors.Is(err, ErrVerificationInvalid):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleReferrals(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := uuid.Parse(chi.URLParam(r, "accountID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "malformed account id")
			return
		}

		summary, err := svc.Referrals(r.Context(), accountID)
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"code":        summary.Code,
			"conversions": summary.Conversions,
			"accrued":     summary.Accrued,
			"payable":     summary.Payable,
		})
	}
}

// handleOAuthStart redirects to the provider's consent page. The optional
// state query value is an opaque return-URL token, echoed back and validated
// on the callback.
func handleOAuthStart(provider *GoogleProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, provider.AuthURL(r.URL.Query().Get("state")), http.StatusFound)
	}
}

func handleOAuthCallback(svc *Service, provider *GoogleProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			writeError(w, http.StatusBadRequest, "missing authorization code")
			return
		}

		profile, err := provider.ResolveProfile(r.Context(), code)
		switch {
		case errors.Is(err, ErrOAuthExchange), errors.Is(err, ErrOAuthNoEmail):
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		acct, redirect, err := svc.SignInOAuth(r.Context(), profile, r.URL.Query().Get("state"))
		switch {
		case errors.Is(err, ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, accountResponse{
			ID:            acct.ID.String(),
			Email:         acct.Email,
			AccountType:   string(acct.Type),
			EmailVerified: acct.EmailVerified,
			ReferralCode:  acct.ReferralCode,
			Redirect:      redirect,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
