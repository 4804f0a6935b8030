package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tycoon/internal/catalog"
	"tycoon/internal/game"
	"tycoon/internal/session"
	"tycoon/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type Server struct {
	log  *slog.Logger
	sess *session.Session
	mux  *chi.Mux
}

func New(sess *session.Session, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		log:  logger,
		sess: sess,
		mux:  chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/summary", s.handleSummary)
		r.Get("/market", s.handleMarket)
		r.Get("/catalog", s.handleCatalog)

		r.Post("/game/new", s.handleNewGame)
		r.Post("/trade", s.handleTrade)
		r.Post("/mortgage", s.handleMortgage)
		r.Post("/loans", s.handleTakeLoan)
		r.Post("/loans/{id}/repay", s.handleRepayLoan)
		r.Post("/companies", s.handleCreateCompany)
		r.Post("/companies/{id}/employees", s.handleHireEmployee)
		r.Post("/attributes/{attr}/train", s.handleTrain)
		r.Post("/jobs/{id}/work", s.handleWork)
		r.Post("/accommodation", s.handleAccommodation)
		r.Post("/warehouses/{id}", s.handleBuyWarehouse)
		r.Post("/intel/{id}/read", s.handleReadIntel)
		r.Post("/month/advance", s.handleAdvance)
		r.Post("/month/settle", s.handleSettle)
	})
}

// requestID tags every request with an id, reusing the caller's X-Request-Id
// when present.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(middleware.RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(middleware.RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.State())
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Summary())
}

type marketRow struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Kind      catalog.Kind      `json:"kind"`
	Category  string            `json:"category"`
	Risk      catalog.RiskClass `json:"risk"`
	BasePrice float64           `json:"base_price"`
	Price     float64           `json:"price"`
	History   []float64         `json:"history"`
	Held      int               `json:"held"`
}

func (s *Server) handleMarket(w http.ResponseWriter, _ *http.Request) {
	st := s.sess.State()
	cat := s.sess.Engine().Catalog()
	rows := make([]marketRow, 0, len(cat.Goods))
	for _, g := range cat.Goods {
		price, ok := st.Market.Prices[g.ID]
		if !ok {
			price = g.BasePrice
		}
		rows = append(rows, marketRow{
			ID:        g.ID,
			Name:      g.Name,
			Kind:      g.Kind,
			Category:  g.Category,
			Risk:      g.Risk,
			BasePrice: g.BasePrice,
			Price:     price,
			History:   st.Market.History[g.ID],
			Held:      st.Inventory[g.ID].Quantity,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"age":          st.Age,
		"goods":        rows,
		"active_intel": game.ActiveIntel(st.Intelligence, st.Age),
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Engine().Catalog())
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	st, err := s.sess.Reset(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	var in struct {
		GoodID   string `json:"good_id"`
		Side     string `json:"side"`
		Quantity int    `json:"quantity"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	side := game.Side(strings.ToLower(strings.TrimSpace(in.Side)))
	if side != game.Buy && side != game.Sell {
		writeError(w, http.StatusBadRequest, "side must be buy or sell")
		return
	}
	eng := s.sess.Engine()
	s.apply(w, r, "trade", func(st game.State) (game.State, error) {
		return eng.Trade(st, in.GoodID, side, in.Quantity)
	})
}

func (s *Server) handleMortgage(w http.ResponseWriter, r *http.Request) {
	var in struct {
		GoodID      string  `json:"good_id"`
		DownPayment float64 `json:"down_payment"`
		Months      int     `json:"months"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	eng := s.sess.Engine()
	s.apply(w, r, "mortgage", func(st game.State) (game.State, error) {
		return eng.Mortgage(st, in.GoodID, in.DownPayment, in.Months)
	})
}

func (s *Server) handleTakeLoan(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Amount float64 `json:"amount"`
		Months int     `json:"months"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	eng := s.sess.Engine()
	s.apply(w, r, "take_loan", func(st game.State) (game.State, error) {
		return eng.TakeLoan(st, in.Amount, in.Months)
	})
}

func (s *Server) handleRepayLoan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	eng := s.sess.Engine()
	s.apply(w, r, "repay_loan", func(st game.State) (game.State, error) {
		return eng.RepayLoanEarly(st, id)
	})
}

func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var in struct {
		TypeID string `json:"type_id"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	eng := s.sess.Engine()
	s.apply(w, r, "create_company", func(st game.State) (game.State, error) {
		return eng.CreateCompany(st, in.TypeID)
	})
}

func (s *Server) handleHireEmployee(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "id")
	var in struct {
		EmployeeID string `json:"employee_id"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	eng := s.sess.Engine()
	s.apply(w, r, "hire_employee", func(st game.State) (game.State, error) {
		return eng.HireEmployee(st, companyID, in.EmployeeID)
	})
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	attr := catalog.Attribute(strings.ToLower(chi.URLParam(r, "attr")))
	eng := s.sess.Engine()
	s.apply(w, r, "train", func(st game.State) (game.State, error) {
		return eng.TrainAttribute(st, attr)
	})
}

func (s *Server) handleWork(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	eng := s.sess.Engine()
	s.apply(w, r, "work", func(st game.State) (game.State, error) {
		return eng.WorkJob(st, jobID)
	})
}

func (s *Server) handleAccommodation(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	eng := s.sess.Engine()
	s.apply(w, r, "set_accommodation", func(st game.State) (game.State, error) {
		return eng.SetAccommodation(st, in.ID)
	})
}

func (s *Server) handleBuyWarehouse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	eng := s.sess.Engine()
	s.apply(w, r, "buy_warehouse", func(st game.State) (game.State, error) {
		return eng.BuyWarehouse(st, id)
	})
}

func (s *Server) handleReadIntel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	eng := s.sess.Engine()
	s.apply(w, r, "read_intel", func(st game.State) (game.State, error) {
		return eng.MarkIntelRead(st, id)
	})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	st, preview, err := s.sess.Advance(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": st, "preview": preview})
}

func (s *Server) handleSettle(w http.ResponseWriter, r *http.Request) {
	var in struct {
		PaidBillIDs []string `json:"paid_bill_ids"`
		PayAll      bool     `json:"pay_all"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	settle := func() (game.State, error) { return s.sess.Settle(r.Context(), in.PaidBillIDs) }
	if in.PayAll {
		settle = func() (game.State, error) { return s.sess.SettleAll(r.Context()) }
	}
	st, err := settle()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) apply(w http.ResponseWriter, r *http.Request, name string, fn session.Action) {
	st, err := s.sess.Apply(r.Context(), name, fn)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func writeDomainError(w http.ResponseWriter, err error) {
	var rej *game.Rejection
	switch {
	case errors.Is(err, game.ErrSettlementPending),
		errors.Is(err, game.ErrNotPendingSettlement),
		errors.Is(err, game.ErrGameOver):
		writeRejection(w, http.StatusConflict, err)
	case errors.As(err, &rej):
		writeRejection(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeRejection(w http.ResponseWriter, status int, err error) {
	payload := map[string]any{"error": err.Error()}
	var rej *game.Rejection
	if errors.As(err, &rej) {
		payload["reason"] = rej.Reason.Error()
	}
	writeJSON(w, status, payload)
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
