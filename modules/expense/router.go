package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/filingdesk/filingdesk/pkg/taxrate"
)

// Router mounts expense endpoints.
func Router(svc *Service) chi.Router {
	r := chi.NewRouter()

	r.Post("/{accountID}", handleCreate(svc))
	r.Get("/{accountID}", handleList(svc))
	r.Get("/{accountID}/{expenseID}", handleGet(svc))
	r.Put("/{accountID}/{expenseID}/receipt", handleAttachReceipt(svc))

	return r
}

type createRequest struct {
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Amount      int64     `json:"amount"`
	IncurredAt  time.Time `json:"incurred_at"`
}

type expenseResponse struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Amount      int64     `json:"amount"`
	WHT         int64     `json:"wht"`
	Net         int64     `json:"net"`
	ReceiptURL  string    `json:"receipt_url,omitempty"`
	IncurredAt  time.Time `json:"incurred_at"`
}

func toResponse(svc *Service, exp *Expense) expenseResponse {
	resp := expenseResponse{
		ID:          exp.ID.String(),
		Description: exp.Description,
		Category:    string(exp.Category),
		Amount:      exp.Amount,
		WHT:         exp.WHT,
		Net:         exp.Net,
		IncurredAt:  exp.IncurredAt,
	}
	if exp.ReceiptKey != "" && svc.objects != nil {
		resp.ReceiptURL = svc.objects.URL(exp.ReceiptKey)
	}
	return resp
}

func pathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}

func handleCreate(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := pathUUID(r, "accountID")
		if !ok {
			writeError(w, http.StatusBadRequest, "malformed account id")
			return
		}
		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		exp, err := svc.Create(r.Context(), CreateParams{
			AccountID:   accountID,
			Description: req.Description,
			Category:    taxrate.Category(req.Category),
			Amount:      req.Amount,
			IncurredAt:  req.IncurredAt,
		})
		switch {
		case errors.Is(err, ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, toResponse(svc, exp))
	}
}

func handleList(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := pathUUID(r, "accountID")
		if !ok {
			writeError(w, http.StatusBadRequest, "malformed account id")
			return
		}
		expenses, err := svc.List(r.Context(), accountID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		out := make([]expenseResponse, 0, len(expenses))
		for _, exp := range expenses {
			out = append(out, toResponse(svc, exp))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleGet(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := pathUUID(r, "accountID")
		expenseID, ok2 := pathUUID(r, "expenseID")
		if !ok || !ok2 {
			writeError(w, http.StatusBadRequest, "malformed id")
			return
		}
		exp, err := svc.Get(r.Context(), accountID, expenseID)
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, toResponse(svc, exp))
	}
}

func handleAttachReceipt(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := pathUUID(r, "accountID")
		expenseID, ok2 := pathUUID(r, "expenseID")
		if !ok || !ok2 {
			writeError(w, http.StatusBadRequest, "malformed id")
			return
		}

		url, err := svc.AttachReceipt(r.Context(), accountID, expenseID,
			r.Header.Get("Content-Type"), r.ContentLength, r.Body)
		switch {
		case errors.Is(err, ErrUnsupportedReceipt):
			writeError(w, http.StatusUnsupportedMediaType, err.Error())
			return
		case errors.Is(err, ErrReceiptTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"receipt_url": url})
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
