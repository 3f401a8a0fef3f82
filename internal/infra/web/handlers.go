package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"course-platform/internal/domain"
	"course-platform/internal/domain/model"
	"course-platform/internal/domain/ports/adapter"
	"course-platform/internal/infra/logging"
	"course-platform/internal/infra/metrics"
	red "course-platform/internal/infra/redis"
	"course-platform/internal/usecase"
)

type checkoutRequest struct {
	CourseID string  `json:"course_id"`
	UserID   string  `json:"user_id"`
	Amount   float64 `json:"amount"` // major units, up to two decimals
	Title    string  `json:"title"`
	Currency string  `json:"currency"`
}

type checkoutResponse struct {
	MerchantID string `json:"merchant_id"`
	OrderID    string `json:"order_id"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	Hash       string `json:"hash"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// checkoutHandler validates the purchase request and returns the signed
// redirect parameters. Validation failures never leave a payment row behind.
func (s *Server) checkoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req checkoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			metrics.IncCheckout("validation_failed")
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if s.limiter != nil && req.UserID != "" {
			allowed, err := s.limiter.Allow(ctx, red.CheckoutKey(req.UserID), s.checkoutLimit, time.Minute)
			if err != nil {
				// Redis being down must not block purchases.
				s.log.Warn().Err(err).Msg("rate limiter unavailable, admitting request")
			} else if !allowed {
				metrics.IncCheckout("rate_limited")
				metrics.IncRateLimitDrop("checkout")
				writeError(w, http.StatusTooManyRequests, "too many checkout attempts")
				return
			}
		}

		params, err := s.checkoutUC.Initiate(ctx, usecase.CheckoutInput{
			CourseID:    req.CourseID,
			UserID:      req.UserID,
			AmountCents: int64(math.Round(req.Amount * 100)),
			Title:       req.Title,
			Currency:    req.Currency,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidArgument):
				metrics.IncCheckout("validation_failed")
				writeError(w, http.StatusBadRequest, "invalid checkout request")
			case errors.Is(err, domain.ErrPriceMismatch):
				metrics.IncCheckout("validation_failed")
				writeError(w, http.StatusBadRequest, "amount does not match course price")
			case errors.Is(err, domain.ErrCourseNotPublished):
				metrics.IncCheckout("validation_failed")
				writeError(w, http.StatusBadRequest, "course is not available for purchase")
			case errors.Is(err, domain.ErrCourseNotFound):
				metrics.IncCheckout("validation_failed")
				writeError(w, http.StatusNotFound, "course not found")
			case errors.Is(err, domain.ErrUserNotFound):
				metrics.IncCheckout("validation_failed")
				writeError(w, http.StatusNotFound, "user not found")
			default:
				metrics.IncCheckout("error")
				logging.With(ctx, s.log).Error().Err(err).Msg("checkout failed")
				writeError(w, http.StatusInternalServerError, "checkout failed")
			}
			return
		}

		metrics.IncCheckout("started")
		writeJSON(w, http.StatusOK, checkoutResponse{
			MerchantID: params.MerchantID,
			OrderID:    params.OrderID,
			Amount:     params.Amount,
			Currency:   params.Currency,
			Hash:       params.Hash,
		})
	}
}

type notifyResponse struct {
	Status  string `json:"status"`
	Outcome string `json:"outcome,omitempty"`
}

// notifyHandler receives the gateway's server-to-server notification. Every
// deterministically handled case is acknowledged with 200 so the gateway stops
// redelivering; only a persistence or grant fault returns 500 and invites a
// retry.
func (s *Server) notifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, notifyResponse{Status: "failed"})
			return
		}

		n := adapter.Notification{
			MerchantID:       r.PostFormValue("merchant_id"),
			OrderID:          r.PostFormValue("order_id"),
			GatewayPaymentID: r.PostFormValue("payment_id"),
			Amount:           r.PostFormValue("payhere_amount"),
			Currency:         r.PostFormValue("payhere_currency"),
			StatusCode:       r.PostFormValue("status_code"),
			StatusMessage:    r.PostFormValue("status_message"),
			Method:           r.PostFormValue("method"),
			Signature:        r.PostFormValue("md5sig"),
		}
		ctx = logging.WithOrderID(ctx, n.OrderID)

		outcome, err := s.notifyUC.Handle(ctx, n)
		if err != nil {
			metrics.IncNotification("error")
			logging.With(ctx, s.log).Error().Err(err).Msg("notification processing failed")
			writeJSON(w, http.StatusInternalServerError, notifyResponse{Status: "failed"})
			return
		}

		metrics.IncNotification(string(outcome))
		switch outcome {
		case usecase.OutcomeCompleted:
			metrics.IncPayment("completed")
			metrics.AddPaymentRevenue(n.Currency, parseCents(n.Amount))
			metrics.IncAccessGrant("granted")
		case usecase.OutcomeFailed:
			metrics.IncPayment("failed")
		case usecase.OutcomeInvalidSignature:
			metrics.IncSignatureFailure()
		}

		status := "success"
		if outcome == usecase.OutcomeFailed || outcome == usecase.OutcomeNotFound || outcome == usecase.OutcomeInvalidSignature {
			status = "failed"
		}
		writeJSON(w, http.StatusOK, notifyResponse{Status: status, Outcome: string(outcome)})
	}
}

// parseCents converts the gateway's two-decimal wire amount to minor units.
// The value was already authenticated by the signature check.
func parseCents(amount string) int64 {
	f, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0
	}
	return int64(math.Round(f * 100))
}

func (s *Server) loginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			APIKey string `json:"api_key"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.APIKey == "" {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if s.apiKey == "" || req.APIKey != s.apiKey {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		if _, err := s.auth.Mint(w); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to mint session")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

type courseCreateRequest struct {
	Title      string `json:"title"`
	PriceCents int64  `json:"price_cents"`
	Currency   string `json:"currency"`
	Published  bool   `json:"published"`
}

func coursesCreateHandler(courseUC usecase.CourseUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req courseCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		course, err := courseUC.Create(ctx, req.Title, req.PriceCents, req.Currency, req.Published)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "Failed to create course", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, course)
	}
}

func coursesListHandler(courseUC usecase.CourseUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		courses, err := courseUC.List(ctx, true, offset, limit)
		if err != nil {
			http.Error(w, "Failed to list courses", http.StatusInternalServerError)
			return
		}

		response := struct {
			Data []*model.Course `json:"data"`
		}{Data: courses}
		writeJSON(w, http.StatusOK, response)
	}
}

func courseGetHandler(courseUC usecase.CourseUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "Course ID is required", http.StatusBadRequest)
			return
		}

		course, err := courseUC.Get(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrCourseNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "Failed to get course", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, course)
	}
}

func paymentsListHandler(reportUC usecase.ReportUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		status := r.URL.Query().Get("status")

		payments, err := reportUC.ListPayments(ctx, status, offset, limit)
		if err != nil {
			http.Error(w, "Failed to list payments", http.StatusInternalServerError)
			return
		}

		response := struct {
			Data   []*model.Payment `json:"data"`
			Offset int              `json:"offset"`
			Limit  int              `json:"limit"`
		}{Data: payments, Offset: offset, Limit: limit}
		writeJSON(w, http.StatusOK, response)
	}
}

func statsHandler(reportUC usecase.ReportUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		week, month, year, err := reportUC.Revenue(ctx)
		if err != nil {
			http.Error(w, "Failed to get revenue", http.StatusInternalServerError)
			return
		}

		response := struct {
			Revenue struct {
				Week  int64 `json:"week"`
				Month int64 `json:"month"`
				Year  int64 `json:"year"`
			} `json:"revenue_cents"`
		}{}
		response.Revenue.Week = week
		response.Revenue.Month = month
		response.Revenue.Year = year
		writeJSON(w, http.StatusOK, response)
	}
}

func userPurchasesHandler(accessUC usecase.AccessGrantUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "User ID is required", http.StatusBadRequest)
			return
		}

		purchases, err := accessUC.ListByUser(ctx, id)
		if err != nil {
			http.Error(w, "Failed to list purchases", http.StatusInternalServerError)
			return
		}

		response := struct {
			Data []*model.Purchase `json:"data"`
		}{Data: purchases}
		writeJSON(w, http.StatusOK, response)
	}
}

func (s *Server) returnHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head>
	<title>Payment Received</title>
	<meta charset="utf-8">
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<style>
		body { font-family: Arial, sans-serif; text-align: center; padding: 50px; }
		.success { color: #4CAF50; }
	</style>
</head>
<body>
	<h1 class="success">Payment Received</h1>
	<p>Thank you. Your course access is being activated and will appear in your library shortly.</p>
</body>
</html>
`)
	}
}

func (s *Server) cancelHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head>
	<title>Payment Cancelled</title>
	<meta charset="utf-8">
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<style>
		body { font-family: Arial, sans-serif; text-align: center; padding: 50px; }
		.error { color: #F44336; }
	</style>
</head>
<body>
	<h1 class="error">Payment Cancelled</h1>
	<p>Your payment was not processed. You can return to the course page and try again.</p>
</body>
</html>
`)
	}
}
