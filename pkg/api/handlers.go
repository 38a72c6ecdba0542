package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/peerfact-labs/peerfact/pkg/service"
	"github.com/peerfact-labs/peerfact/pkg/store"
)

const maxBodyBytes = 1 << 20

// TokenIssuer mints an API token for a freshly bootstrapped user. Wired from
// the auth package at startup; nil disables token minting.
type TokenIssuer interface {
	Issue(userID, username string) (string, error)
}

// Server holds the HTTP handlers over the service layer.
type Server struct {
	svc    *service.Service
	tokens TokenIssuer
}

// NewServer creates the handler set.
func NewServer(svc *service.Service, tokens TokenIssuer) *Server {
	return &Server{svc: svc, tokens: tokens}
}

// Routes registers every endpoint on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/users/bootstrap", s.handleBootstrapUser)
	mux.HandleFunc("GET /api/users/{id}", s.handleGetUser)

	mux.HandleFunc("POST /api/claims", s.handleCreateClaim)
	mux.HandleFunc("GET /api/claims", s.handleListClaims)
	mux.HandleFunc("GET /api/claims/{id}", s.handleGetClaim)
	mux.HandleFunc("POST /api/claims/{id}/verify", s.handleVerify)
	mux.HandleFunc("GET /api/claims/{id}/verdict", s.handleVerdict)

	mux.HandleFunc("GET /api/leaderboard/users", s.handleUserLeaderboard)
	mux.HandleFunc("GET /api/leaderboard/sources", s.handleSourceLeaderboard)

	mux.HandleFunc("POST /api/analyze/claim", s.handleAnalyze)

	mux.HandleFunc("GET /api/chain/status", s.handleChainStatus)
	mux.HandleFunc("GET /api/chain/users/{id}", s.handleChainUser)
	mux.HandleFunc("GET /api/chain/claims/{id}", s.handleChainClaim)

	mux.HandleFunc("POST /api/status", s.handleRecordStatus)
	mux.HandleFunc("GET /api/status", s.handleListStatus)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps service-layer errors onto problem responses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		WriteBadRequest(w, err.Error())
	case errors.Is(err, store.ErrUserNotFound):
		WriteNotFound(w, "user not found")
	case errors.Is(err, store.ErrClaimNotFound):
		WriteNotFound(w, "claim not found")
	default:
		WriteInternal(w, err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

type bootstrapRequest struct {
	Username string `json:"username"`
}

func (s *Server) handleBootstrapUser(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req bootstrapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := s.svc.BootstrapUser(r.Context(), req.Username)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := map[string]any{"user": user}
	if s.tokens != nil {
		token, err := s.tokens.Issue(user.ID, user.Username)
		if err != nil {
			WriteInternal(w, err)
			return
		}
		resp["token"] = token
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.svc.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type createClaimRequest struct {
	AuthorID string `json:"author_id"`
	Text     string `json:"text"`
	Link     string `json:"link,omitempty"`
}

func (s *Server) handleCreateClaim(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req createClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}

	claim, err := s.svc.CreateClaim(r.Context(), req.AuthorID, req.Text, req.Link)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, claim)
}

// limitParam parses a ?limit= query parameter with a default and ceiling.
func limitParam(r *http.Request, def, max int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

func (s *Server) handleListClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := s.svc.ListClaims(r.Context(), limitParam(r, 50, 200))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"claims": claims, "count": len(claims)})
}

func (s *Server) handleGetClaim(w http.ResponseWriter, r *http.Request) {
	detail, err := s.svc.GetClaim(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

type verifyRequest struct {
	AuthorID    string `json:"author_id"`
	Stance      string `json:"stance"`
	SourceURL   string `json:"source_url,omitempty"`
	Explanation string `json:"explanation,omitempty"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}

	receipt, err := s.svc.RecordVerification(r.Context(), service.VerificationInput{
		ClaimID:     r.PathValue("id"),
		AuthorID:    req.AuthorID,
		Stance:      req.Stance,
		SourceURL:   req.SourceURL,
		Explanation: req.Explanation,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (s *Server) handleVerdict(w http.ResponseWriter, r *http.Request) {
	verdict, err := s.svc.Verdict(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, verdict)
}

func (s *Server) handleUserLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := s.svc.UserLeaderboard(r.Context(), limitParam(r, 10, 100))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": rows, "count": len(rows)})
}

func (s *Server) handleSourceLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := s.svc.SourceLeaderboard(r.Context(), limitParam(r, 10, 100))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": rows, "count": len(rows)})
}

type analyzeRequest struct {
	Text      string `json:"text"`
	SourceURL string `json:"source_url,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}

	annotation, err := s.svc.Analyze(r.Context(), req.Text, req.SourceURL)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, annotation)
}

func (s *Server) handleChainStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.ChainStatus())
}

func (s *Server) handleChainUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.UserChainHistory(r.PathValue("id")))
}

func (s *Server) handleChainClaim(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.ClaimChainHistory(r.PathValue("id")))
}

type statusRequest struct {
	ClientName string `json:"client_name"`
}

func (s *Server) handleRecordStatus(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}

	check, err := s.svc.RecordStatus(r.Context(), req.ClientName)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, check)
}

func (s *Server) handleListStatus(w http.ResponseWriter, r *http.Request) {
	checks, err := s.svc.ListStatus(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status_checks": checks, "count": len(checks)})
}
