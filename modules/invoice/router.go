package invoice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Router mounts invoice endpoints. Every route is scoped to the account in
// the URL; cross-account reads fall through to 404.
func Router(svc *Service) chi.Router {
	r := chi.NewRouter()

	r.Post("/{accountID}", handleCreate(svc))
	r.Get("/{accountID}", handleList(svc))
	r.Get("/{accountID}/search", handleSearch(svc))
	r.Get("/{accountID}/{invoiceID}", handleGet(svc))
	r.Get("/{accountID}/{invoiceID}/qr", handleQR(svc))
	r.Post("/{accountID}/{invoiceID}/send", handleTransition(svc, (*Service).Send))
	r.Post("/{accountID}/{invoiceID}/pay", handleTransition(svc, (*Service).MarkPaid))

	return r
}

type createRequest struct {
	CustomerName  string     `json:"customer_name"`
	CustomerEmail string     `json:"customer_email,omitempty"`
	Items         []LineItem `json:"items"`
	DueAt         time.Time  `json:"due_at"`
}

type invoiceResponse struct {
	ID            string     `json:"id"`
	Number        string     `json:"number"`
	CustomerName  string     `json:"customer_name"`
	CustomerEmail string     `json:"customer_email,omitempty"`
	Items         []LineItem `json:"items"`
	Subtotal      int64      `json:"subtotal"`
	VAT           int64      `json:"vat"`
	Total         int64      `json:"total"`
	TotalDisplay  string     `json:"total_display"`
	Status        string     `json:"status"`
	DueAt         time.Time  `json:"due_at"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

func toResponse(inv *Invoice) invoiceResponse {
	return invoiceResponse{
		ID:            inv.ID.String(),
		Number:        inv.Number,
		CustomerName:  inv.CustomerName,
		CustomerEmail: inv.CustomerEmail,
		Items:         inv.Items,
		Subtotal:      inv.Subtotal,
		VAT:           inv.VAT,
		Total:         inv.Total,
		TotalDisplay:  inv.DisplayTotal(),
		Status:        string(inv.Status),
		DueAt:         inv.DueAt,
		PaidAt:        inv.PaidAt,
	}
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

		inv, err := svc.Create(r.Context(), CreateParams{
			AccountID:     accountID,
			CustomerName:  req.CustomerName,
			CustomerEmail: req.CustomerEmail,
			Items:         req.Items,
			DueAt:         req.DueAt,
		})
		switch {
		case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNoLineItems):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, toResponse(inv))
	}
}

func handleList(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := pathUUID(r, "accountID")
		if !ok {
			writeError(w, http.StatusBadRequest, "malformed account id")
			return
		}
		invoices, err := svc.List(r.Context(), accountID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		out := make([]invoiceResponse, 0, len(invoices))
		for _, inv := range invoices {
			out = append(out, toResponse(inv))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleGet(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := pathUUID(r, "accountID")
		invoiceID, ok2 := pathUUID(r, "invoiceID")
		if !ok || !ok2 {
			writeError(w, http.StatusBadRequest, "malformed id")
			return
		}
		inv, err := svc.Get(r.Context(), accountID, invoiceID)
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, toResponse(inv))
	}
}

func handleQR(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := pathUUID(r, "accountID")
		invoiceID, ok2 := pathUUID(r, "invoiceID")
		if !ok || !ok2 {
			writeError(w, http.StatusBadRequest, "malformed id")
			return
		}
		size, _ := strconv.Atoi(r.URL.Query().Get("size"))
		png, err := svc.PaymentQR(r.Context(), accountID, invoiceID, size)
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(png)
	}
}

func handleTransition(svc *Service, op func(*Service, context.Context, uuid.UUID, uuid.UUID) (*Invoice, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := pathUUID(r, "accountID")
		invoiceID, ok2 := pathUUID(r, "invoiceID")
		if !ok || !ok2 {
			writeError(w, http.StatusBadRequest, "malformed id")
			return
		}
		inv, err := op(svc, r.Context(), accountID, invoiceID)
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
			return
		case errors.Is(err, ErrAlreadyPaid):
			writeError(w, http.StatusConflict, err.Error())
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, toResponse(inv))
	}
}

func handleSearch(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := pathUUID(r, "accountID")
		if !ok {
			writeError(w, http.StatusBadRequest, "malformed account id")
			return
		}
		query := r.URL.Query().Get("q")
		if query == "" {
			writeError(w, http.StatusBadRequest, "missing query")
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 || limit > 100 {
			limit = 20
		}
		hits, err := svc.Search(r.Context(), query, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		// The index is shared across tenants; scope the response here.
		scoped := make([]SearchHit, 0, len(hits))
		for _, hit := range hits {
			if hit.AccountID == accountID.String() {
				scoped = append(scoped, hit)
			}
		}
		writeJSON(w, http.StatusOK, scoped)
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
