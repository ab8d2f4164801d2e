package http

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/custodia-labs/user-manager/internal/core/domain"
)

// maxBodyBytes bounds request bodies on the credential endpoints
const maxBodyBytes = 1 << 20

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// RootResponse identifies the running service
// @Description Service identification
type RootResponse struct {
	Service string `json:"Service" example:"User Manager"`
	Version string `json:"Version" example:"1.0.0"`
}

// Health endpoints

// handleRoot godoc
// @Summary      Service identification
// @Tags         Health
// @Produce      json
// @Success      200  {object}  RootResponse
// @Router       / [get]
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{Service: s.serviceName, Version: s.version})
}

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns ready once the credential store answers a ping
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "Credential store unavailable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "credential store unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: s.version})
}

// Credential endpoints

// handleRegister godoc
// @Summary      Register a user
// @Description  Stores a new credential record. Accepts form or JSON bodies.
// @Tags         Auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        request  body      domain.RegisterRequest  true  "New user"
// @Success      200      {object}  domain.PublicUser
// @Failure      400      {object}  ErrorResponse  "Invalid input"
// @Failure      409      {object}  ErrorResponse  "Username taken"
// @Failure      503      {object}  ErrorResponse  "Credential store unavailable"
// @Router       /register [post]
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := decodeRequest(w, r, &req, func(form formValues) {
		req.Username = form.get("username")
		req.Password = form.get("password")
		if fullName, ok := form.lookup("full_name"); ok {
			req.FullName = &fullName
		}
	}); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.authService.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStoreUnavailable):
			s.logger.Error("register failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "credential store unavailable")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "username and password are required")
		case errors.Is(err, domain.ErrAlreadyExists):
			writeError(w, http.StatusConflict, "user already exists")
		default:
			s.logger.Error("register failed", "error", err)
			writeError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// handleToken godoc
// @Summary      Issue an access token
// @Description  OAuth2 password style login. Accepts form or JSON bodies.
// @Tags         Auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        request  body      domain.LoginRequest  true  "Login credentials"
// @Success      200      {object}  domain.TokenResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Incorrect username or password"
// @Failure      503      {object}  ErrorResponse  "Credential store unavailable"
// @Router       /token [post]
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeRequest(w, r, &req, func(form formValues) {
		req.Username = form.get("username")
		req.Password = form.get("password")
	}); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStoreUnavailable):
			s.logger.Error("login failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "credential store unavailable")
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrBadCredentials):
			// Unknown user and wrong password are indistinguishable to clients
			writeUnauthorized(w, "incorrect username or password")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "username and password are required")
		default:
			s.logger.Error("login failed", "username", req.Username, "error", err)
			writeError(w, http.StatusInternalServerError, "authentication failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleGetMe godoc
// @Summary      Current user
// @Description  Returns the public view of the user the bearer token was issued to
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.PublicUser
// @Failure      400  {object}  ErrorResponse  "Inactive user"
// @Failure      401  {object}  ErrorResponse  "Could not validate credentials"
// @Router       /users/me [get]
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	user := GetCurrentUser(r.Context())
	if user == nil {
		writeUnauthorized(w, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Helper functions

type formValues map[string][]string

func (f formValues) lookup(key string) (string, bool) {
	values, ok := f[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func (f formValues) get(key string) string {
	value, _ := f.lookup(key)
	return value
}

// decodeRequest reads a JSON body into dst, or hands form values to fromForm
// for any other content type.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any, fromForm func(formValues)) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.EqualFold(mediaType, "application/json") {
		return json.NewDecoder(r.Body).Decode(dst)
	}

	if err := r.ParseForm(); err != nil {
		return err
	}
	fromForm(formValues(r.PostForm))
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, message)
}
