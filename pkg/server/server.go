package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JorgeHRP/renato-bi/pkg/config"
	"github.com/JorgeHRP/renato-bi/pkg/csv"
	"github.com/JorgeHRP/renato-bi/pkg/ingest"
	"github.com/JorgeHRP/renato-bi/pkg/models"
	"github.com/JorgeHRP/renato-bi/pkg/store"
)

const maxUploadSize = 32 << 20

// Server exposes companies, uploads and stored records over HTTP
type Server struct {
	config    *config.Config
	logger    *log.Logger
	router    chi.Router
	ingester  *ingest.Ingester
	records   *store.Records
	companies *store.Companies
	now       func() time.Time
}

// New creates a new HTTP server
func New(cfg *config.Config, logger *log.Logger, ingester *ingest.Ingester, records *store.Records, companies *store.Companies) *Server {
	s := &Server{
		config:    cfg,
		logger:    logger,
		router:    chi.NewRouter(),
		ingester:  ingester,
		records:   records,
		companies: companies,
		now:       time.Now,
	}
	s.setupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       time.Minute,
	}
	return srv.ListenAndServe()
}

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.withLogging)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1/companies", func(r chi.Router) {
		r.Get("/", s.handleListCompanies)
		r.Post("/", s.handleCreateCompany)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetCompany)
			r.Delete("/", s.handleDeleteCompany)
			r.Post("/uploads", s.handleUpload)
			r.Get("/data", s.handleGetData)
			r.Get("/data.csv", s.handleGetDataCSV)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// ---------------- companies ----------------

type createCompanyRequest struct {
	Name    string `json:"name"`
	CNPJ    string `json:"cnpj"`
	Segment string `json:"segment"`
}

func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var req createCompanyRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	company := models.NewCompany(req.Name, req.CNPJ, req.Segment, s.now().UTC())
	if company.Name == "" {
		s.respondError(w, r, http.StatusBadRequest, "name required", nil)
		return
	}
	if err := s.companies.Put(r.Context(), company); err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to create company", err)
		return
	}

	s.logger.Info("company created", "company_id", company.ID, "name", company.Name)
	if err := s.writeJSON(w, http.StatusCreated, map[string]any{
		"status":  "success",
		"company": company,
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.companies.List(r.Context())
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to list companies", err)
		return
	}
	if err := s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"companies": companies,
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	company, ok := s.loadCompany(w, r)
	if !ok {
		return
	}
	if err := s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"company": company,
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// handleDeleteCompany removes the company together with its record.
func (s *Server) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	company, ok := s.loadCompany(w, r)
	if !ok {
		return
	}
	if err := s.records.Delete(r.Context(), company.ID); err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to delete record", err)
		return
	}
	if err := s.companies.Delete(r.Context(), company.ID); err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to delete company", err)
		return
	}

	s.logger.Info("company deleted", "company_id", company.ID)
	if err := s.writeJSON(w, http.StatusOK, map[string]string{"status": "success"}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// ---------------- uploads ----------------

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	company, ok := s.loadCompany(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "file required", err)
		return
	}
	defer file.Close()

	filename := ingest.SanitizeFilename(header.Filename)
	if filename == "" || !ingest.Allowed(filename) {
		s.respondError(w, r, http.StatusBadRequest, "only .xls and .xlsx files are accepted", nil)
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "failed to read file", err)
		return
	}
	if _, err := ingest.SaveUpload(s.config.UploadDir, company.ID, filename, data); err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to save upload", err)
		return
	}

	res, err := s.ingester.Ingest(r.Context(), ingest.Upload{CompanyID: company.ID, Filename: filename, Data: data})
	if err != nil {
		s.respondError(w, r, statusFor(err), "failed to ingest upload", err)
		return
	}

	status, code := "success", http.StatusOK
	message := fmt.Sprintf("%d transações importadas", res.Imported)
	if res.Record.Error != "" {
		status, code = "error", http.StatusUnprocessableEntity
		message = res.Record.Error
	}
	if err := s.writeJSON(w, code, map[string]any{
		"status":   status,
		"message":  message,
		"imported": res.Imported,
		"record":   res.Record,
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// ---------------- records ----------------

func (s *Server) handleGetData(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadRecord(w, r)
	if !ok {
		return
	}
	if err := s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"record": rec,
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// handleGetDataCSV serves the recent transactions of the stored record.
func (s *Server) handleGetDataCSV(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadRecord(w, r)
	if !ok {
		return
	}
	out, err := csv.Create(rec.Transactions, nil)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to render csv", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s-transactions.csv\"", rec.CompanyID))
	if _, err := w.Write(out); err != nil {
		s.logger.Warn("failed to write csv response", "err", err)
	}
}

// --- helpers ---

func (s *Server) loadCompany(w http.ResponseWriter, r *http.Request) (*models.Company, bool) {
	company, err := s.companies.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, statusFor(err), "company not found", err)
		return nil, false
	}
	return company, true
}

func (s *Server) loadRecord(w http.ResponseWriter, r *http.Request) (*models.Record, bool) {
	rec, err := s.records.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, statusFor(err), "no data for company", err)
		return nil, false
	}
	return rec, true
}

func statusFor(err error) int {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeJSON encodes v as JSON with the given status and writes headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// respondError logs the error and returns a minimal JSON error body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil {
		s.logger.Warn("request error", "status", status, "msg", message, "err", err, "method", r.Method, "path", r.URL.Path)
	} else {
		s.logger.Warn("request error", "status", status, "msg", message, "method", r.Method, "path", r.URL.Path)
	}
	_ = s.writeJSON(w, status, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// withLogging logs each request once it is served and turns panics into a
// 500 response.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "panic", rec, "method", r.Method, "path", r.URL.Path)
				s.respondError(ww, r, http.StatusInternalServerError, "internal server error", fmt.Errorf("panic: %v", rec))
			}
			s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(),
				"duration", time.Since(start), "request_id", middleware.GetReqID(r.Context()), "remote", r.RemoteAddr)
		}()
		next.ServeHTTP(ww, r)
	})
}
