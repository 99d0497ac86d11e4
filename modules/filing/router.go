package filing

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Router mounts filing endpoints. decide gates the approve/reject routes;
// they are meant for authority-side operators.
func Router(svc *Service, decide func(next http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/{accountID}", handleDraft(svc))
	r.Get("/{accountID}", handleList(svc))
	r.Get("/{accountID}/{filingID}", handleGet(svc))
	r.Post("/{accountID}/{filingID}/submit", handleSubmit(svc))

	r.Group(func(r chi.Router) {
		if decide != nil {
			r.Use(decide)
		}
		r.Post("/{accountID}/{filingID}/approve", handleApprove(svc))
		r.Post("/{accountID}/{filingID}/reject", handleReject(svc))
	})

	return r
}

type draftRequest struct {
	Type           string    `json:"type"`
	PeriodStart    time.Time `json:"period_start"`
	PeriodEnd      time.Time `json:"period_end"`
	DeclaredIncome int64     `json:"declared_income,omitempty"`
}

type breakdownEntry struct {
	Category string `json:"category"`
	Amount   int64  `json:"amount"`
}

type filingResponse struct {
	ID          string           `json:"id"`
	Type        string           `json:"type"`
	PeriodStart time.Time        `json:"period_start"`
	PeriodEnd   time.Time        `json:"period_end"`
	Base        int64            `json:"base"`
	Amount      int64            `json:"amount"`
	Breakdown   []breakdownEntry `json:"breakdown,omitempty"`
	Status      string           `json:"status"`
	Reason      string           `json:"reason,omitempty"`
	SubmittedAt *time.Time       `json:"submitted_at,omitempty"`
	DecidedAt   *time.Time       `json:"decided_at,omitempty"`
}

func toResponse(f *Filing) filingResponse {
	resp := filingResponse{
		ID:          f.ID.String(),
		Type:        string(f.Type),
		PeriodStart: f.PeriodStart,
		PeriodEnd:   f.PeriodEnd,
		Base:        f.Base,
		Amount:      f.Amount,
		Status:      string(f.Status),
		Reason:      f.Reason,
		SubmittedAt: f.SubmittedAt,
		DecidedAt:   f.DecidedAt,
	}
	for _, category := range sortedCategories(f.Breakdown) {
		resp.Breakdown = append(resp.Breakdown, breakdownEntry{
			Category: string(category),
			Amount:   f.Breakdown[category],
		})
	}
	return resp
}

func pathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}

func handleDraft(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := pathUUID(r, "accountID")
		if !ok {
			writeError(w, http.StatusBadRequest, "malformed account id")
			return
		}
		var req draftRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		f, err := svc.Draft(r.Context(), DraftParams{
			AccountID:      accountID,
			Type:           Type(req.Type),
			PeriodStart:    req.PeriodStart,
			PeriodEnd:      req.PeriodEnd,
			DeclaredIncome: req.DeclaredIncome,
		})
		switch {
		case errors.Is(err, ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case errors.Is(err, ErrPeriodOverlap):
			writeError(w, http.StatusConflict, err.Error())
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, toResponse(f))
	}
}

func handleList(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := pathUUID(r, "accountID")
		if !ok {
			writeError(w, http.StatusBadRequest, "malformed account id")
			return
		}
		filings, err := svc.List(r.Context(), accountID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		out := make([]filingResponse, 0, len(filings))
		for _, f := range filings {
			out = append(out, toResponse(f))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleGet(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := pathUUID(r, "accountID")
		filingID, ok2 := pathUUID(r, "filingID")
		if !ok || !ok2 {
			writeError(w, http.StatusBadRequest, "malformed id")
			return
		}
		f, err := svc.Get(r.Context(), accountID, filingID)
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, toResponse(f))
	}
}

func handleSubmit(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transitionEndpoint(w, r, func(accountID, filingID uuid.UUID) (*Filing, error) {
			return svc.Submit(r.Context(), accountID, filingID)
		})
	}
}

func handleApprove(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transitionEndpoint(w, r, func(accountID, filingID uuid.UUID) (*Filing, error) {
			return svc.Approve(r.Context(), accountID, filingID)
		})
	}
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func handleReject(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rejectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}
		transitionEndpoint(w, r, func(accountID, filingID uuid.UUID) (*Filing, error) {
			return svc.Reject(r.Context(), accountID, filingID, req.Reason)
		})
	}
}

func transitionEndpoint(w http.ResponseWriter, r *http.Request, op func(accountID, filingID uuid.UUID) (*Filing, error)) {
	accountID, ok := pathUUID(r, "accountID")
	filingID, ok2 := pathUUID(r, "filingID")
	if !ok || !ok2 {
		writeError(w, http.StatusBadRequest, "malformed id")
		return
	}
	f, err := op(accountID, filingID)
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(f))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
