package main

import (
	"net/http"
	"time"

	"github.com/diewo77/go-schools/httpx"
	"github.com/diewo77/go-schools/internal/clock"
	"github.com/diewo77/go-schools/internal/config"
	"github.com/diewo77/go-schools/internal/grading"
	"github.com/diewo77/go-schools/internal/handlers"
	"github.com/diewo77/go-schools/internal/ledger"
	"github.com/diewo77/go-schools/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// scaleCacheTTL bounds how long a scale change made through another instance
// stays invisible here; the cache is per process.
const scaleCacheTTL = time.Minute

// App is the main application handler that sets up all routes.
type App struct {
	mux    *http.ServeMux
	db     *gorm.DB
	grades *handlers.GradeHandler
	ledger *handlers.LedgerHandler
}

// NewApp wires the store, the engines and their handlers.
func NewApp(db *gorm.DB, cfg *config.Config, log *zap.Logger) *App {
	st := store.New(db)
	clk := clock.New(cfg.Ledger.Location())

	gradeSvc := grading.NewService(st, log, grading.Options{ScaleTTL: scaleCacheTTL, Clock: clk})
	ledgerSvc := ledger.NewService(st, log, ledger.Options{
		AllowOverpayment:  cfg.Ledger.AllowOverpayment,
		AllocationRetries: cfg.Ledger.AllocationRetries,
		Clock:             clk,
	})

	app := &App{
		mux:    http.NewServeMux(),
		db:     db,
		grades: handlers.NewGradeHandler(gradeSvc, log),
		ledger: handlers.NewLedgerHandler(ledgerSvc, log),
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	a.mux.HandleFunc("GET /healthz", a.health)

	// Students
	a.mux.HandleFunc("POST /students", a.ledger.RegisterStudent)
	a.mux.HandleFunc("GET /students/{id}/balance", a.ledger.Balance)
	a.mux.HandleFunc("GET /students/{id}/terms/{termId}/report", a.grades.TermReport)
	a.mux.HandleFunc("GET /students/{id}/terms/{termId}/subjects/{subjectId}", a.grades.SubjectAverage)

	// Grades
	a.mux.HandleFunc("POST /subjects", a.grades.CreateSubject)
	a.mux.HandleFunc("GET /subjects", a.grades.Subjects)
	a.mux.HandleFunc("POST /terms", a.grades.CreateTerm)
	a.mux.HandleFunc("POST /assessments", a.grades.RecordAssessment)
	a.mux.HandleFunc("POST /grades/average", a.grades.Average)
	a.mux.HandleFunc("GET /grades/band", a.grades.Band)
	a.mux.HandleFunc("POST /grade-scales", a.grades.CreateScale)
	a.mux.HandleFunc("GET /grade-scales/{id}", a.grades.GetScale)

	// Fees
	a.mux.HandleFunc("POST /invoices", a.ledger.CreateInvoice)
	a.mux.HandleFunc("GET /invoices/{id}", a.ledger.GetInvoice)
	a.mux.HandleFunc("POST /invoices/{id}/payments", a.ledger.RecordPayment)
	a.mux.HandleFunc("POST /invoices/{id}/cancel", a.ledger.CancelInvoice)
	a.mux.HandleFunc("GET /reports/arrears", a.ledger.Arrears)
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		httpx.JSONError(w, http.StatusServiceUnavailable, "database_unavailable", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// withLogging adds a request id and logs every request.
func withLogging(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("request",
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
