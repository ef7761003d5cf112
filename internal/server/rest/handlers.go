package rest

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bobbydeveaux/fpmatch-service/internal/audit"
	"github.com/bobbydeveaux/fpmatch-service/internal/match"
	"github.com/bobbydeveaux/fpmatch-service/internal/minutiae"
	"github.com/bobbydeveaux/fpmatch-service/internal/server/storage"
)

// Server holds the dependencies needed by the REST handlers.
type Server struct {
	store            Store
	logger           *slog.Logger
	auditLog         *audit.Logger // may be nil: audit logging is best-effort
	defaultThreshold float64
}

// NewServer creates a new Server with the provided storage layer. logger and
// auditLog may be nil; a nil logger falls back to slog.Default(), and a nil
// auditLog simply skips audit trail recording.
func NewServer(store Store, logger *slog.Logger, auditLog *audit.Logger, defaultThreshold float64) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: store, logger: logger, auditLog: auditLog, defaultThreshold: defaultThreshold}
}

// writeError writes a JSON error response with the given HTTP status code.
// The response body is {"error": "<message>"}.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleHealthz responds to GET /healthz. It does not require
// authentication.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// userResponse is the public JSON representation of a storage.User.
type userResponse struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Enrolled   bool   `json:"enrolled"`
	EnrolledAt string `json:"enrolled_at,omitempty"`
}

func toUserResponse(u storage.User) userResponse {
	resp := userResponse{ID: u.ID, Name: u.Name, Email: u.Email}
	if !u.EnrolledAt.IsZero() {
		resp.Enrolled = true
		resp.EnrolledAt = u.EnrolledAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

// createUserRequest is the body of POST /api/v1/users.
type createUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// handleCreateUser responds to POST /api/v1/users.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "'name' is required")
		return
	}

	u, err := s.store.CreateUser(r.Context(), req.Name, req.Email)
	if err != nil {
		s.logger.Error("create user failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

// handleListUsers responds to GET /api/v1/users.
//
// Supported query parameters: limit (default 100), offset (default 0).
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	limit := parseIntDefault(r.URL.Query().Get("limit"), 100)
	offset := parseIntDefault(r.URL.Query().Get("offset"), 0)

	users, err := s.store.ListUsers(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("list users failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	resp := make([]userResponse, len(users))
	for i, u := range users {
		resp[i] = toUserResponse(u)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetUser responds to GET /api/v1/users/{id}.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}
	u, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// handleDeleteUser responds to DELETE /api/v1/users/{id}.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteUser(r.Context(), id); err != nil {
		s.logger.Error("delete user failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// templateRequest is the body of POST /api/v1/users/{id}/fingerprint.
type templateRequest struct {
	Template string `json:"template"`
}

// handleEnroll responds to POST /api/v1/users/{id}/fingerprint. It stores
// the base64-decoded body verbatim, without attempting to parse it as an
// FP3 template: validity is established lazily on first match.
func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	blob, err := base64.StdEncoding.DecodeString(req.Template)
	if err != nil {
		writeError(w, http.StatusBadRequest, "'template' must be valid base64")
		return
	}

	if _, err := s.store.GetUser(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err := s.store.SetFingerprint(r.Context(), id, blob); err != nil {
		s.logger.Error("enroll failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to store fingerprint")
		return
	}

	s.recordAudit(r, "enroll", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "enrolled"})
}

// handleDownloadFingerprint responds to GET /api/v1/users/{id}/fingerprint.
func (s *Server) handleDownloadFingerprint(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}
	u, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if u.FingerprintBlob == nil {
		writeError(w, http.StatusNotFound, "user has no enrolled fingerprint")
		return
	}
	writeJSON(w, http.StatusOK, templateRequest{
		Template: base64.StdEncoding.EncodeToString(u.FingerprintBlob),
	})
}

// matchRequest is the body of POST /api/v1/users/{id}/verify and
// POST /api/v1/identify.
type matchRequest struct {
	Probe     string   `json:"probe"`
	Threshold *float64 `json:"threshold"`
}

// verifyResponse is the body returned by POST /api/v1/users/{id}/verify.
type verifyResponse struct {
	Matched    bool    `json:"matched"`
	Similarity float64 `json:"similarity"`
	Score      int     `json:"score"`
}

// handleVerify responds to POST /api/v1/users/{id}/verify: it compares the
// request's probe image against one specific user's enrolled template.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	probe, threshold, ok := s.decodeMatchRequest(w, r)
	if !ok {
		return
	}

	u, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if u.FingerprintBlob == nil {
		writeError(w, http.StatusNotFound, "user has no enrolled fingerprint")
		return
	}
	if len(probe) != minutiae.ImageSize {
		writeError(w, http.StatusUnprocessableEntity, "probe image has the wrong byte length")
		return
	}

	similarity, matched := match.Match(probe, u.FingerprintBlob, threshold)
	s.recordAudit(r, "verify", id)
	writeJSON(w, http.StatusOK, verifyResponse{
		Matched:    matched,
		Similarity: similarity,
		Score:      int(similarity * 100),
	})
}

// identifyResponse is the body returned by POST /api/v1/identify.
type identifyResponse struct {
	UserID     int     `json:"user_id"`
	Similarity float64 `json:"similarity"`
	Score      int     `json:"score"`
}

// handleIdentify responds to POST /api/v1/identify: it compares the
// request's probe image against every enrolled user's template and reports
// the best-scoring match that clears threshold, or 404 if none does.
func (s *Server) handleIdentify(w http.ResponseWriter, r *http.Request) {
	probe, threshold, ok := s.decodeMatchRequest(w, r)
	if !ok {
		return
	}
	if len(probe) != minutiae.ImageSize {
		writeError(w, http.StatusUnprocessableEntity, "probe image has the wrong byte length")
		return
	}

	blobs, err := s.store.FingerprintBlobs(r.Context())
	if err != nil {
		s.logger.Error("identify: list fingerprint blobs failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to load enrolled templates")
		return
	}

	bestUserID := 0
	bestSimilarity := 0.0
	found := false
	for userID, blob := range blobs {
		similarity, matched := match.Match(probe, blob, threshold)
		if matched && similarity > bestSimilarity {
			bestUserID = userID
			bestSimilarity = similarity
			found = true
		}
	}

	if !found {
		writeError(w, http.StatusNotFound, "no enrolled user matches the probe at the given threshold")
		return
	}

	s.recordAudit(r, "identify", bestUserID)
	writeJSON(w, http.StatusOK, identifyResponse{
		UserID:     bestUserID,
		Similarity: bestSimilarity,
		Score:      int(bestSimilarity * 100),
	})
}

// decodeMatchRequest parses and validates the shared {"probe", "threshold"}
// request body used by verify and identify, applying the server's default
// threshold when the caller omits one. It writes an error response and
// returns ok=false on any failure.
func (s *Server) decodeMatchRequest(w http.ResponseWriter, r *http.Request) (probe []byte, threshold float64, ok bool) {
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return nil, 0, false
	}
	probe, err := base64.StdEncoding.DecodeString(req.Probe)
	if err != nil {
		writeError(w, http.StatusBadRequest, "'probe' must be valid base64")
		return nil, 0, false
	}
	threshold = s.defaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	if threshold < 0 || threshold > 1 {
		writeError(w, http.StatusBadRequest, "'threshold' must be in [0, 1]")
		return nil, 0, false
	}
	return probe, threshold, true
}

// parseUserID extracts and validates the {id} path parameter, writing a 400
// response and returning ok=false if it is not a valid integer.
func parseUserID(w http.ResponseWriter, r *http.Request) (int, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "'id' must be an integer")
		return 0, false
	}
	return id, true
}

// parseIntDefault parses s as an int, returning def on any parse failure or
// when s is empty.
func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// recordAudit appends a best-effort tamper-evident audit entry for a
// biometric operation. A nil auditLog (no audit file configured) or a
// write failure is logged but never surfaced to the caller: the audit
// trail is observability, not a correctness gate on the API response.
func (s *Server) recordAudit(r *http.Request, action string, userID int) {
	if s.auditLog == nil {
		return
	}
	event := audit.AuditEvent{
		Action:    action,
		UserID:    userID,
		RequestID: uuid.NewString(),
	}
	if _, err := s.auditLog.AppendEvent(event); err != nil {
		s.logger.Warn("audit: append failed", slog.Any("error", err))
	}
}
