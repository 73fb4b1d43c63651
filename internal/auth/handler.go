package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rufit/rufitserver/internal/telemetry/metrics"
	"github.com/rufit/rufitserver/internal/telemetry/tracing"
	"github.com/rufit/rufitserver/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=auth_test

type authService interface {
	Register(ctx context.Context, creds Credentials, email string) (int, error)
	Login(ctx context.Context, creds Credentials, createdAt time.Time) (*LoginSession, error)
	Logout(ctx context.Context, token string) (bool, error)
	DeleteAccount(ctx context.Context, userID int, token string) error
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	UserID  int    `json:"user_id"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	UserID      int    `json:"user_id"`
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

type Handler struct {
	service authService
	metrics *metrics.Manager
}

func NewHandler(service authService, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		service: service,
		metrics: metricsManager,
	}
}

func (h *Handler) countLogin(result string) {
	if h.metrics != nil {
		h.metrics.CounterLogins.WithLabelValues(result).Inc()
	}
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.register")
	defer span.End()

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("register, unmarshal json params: %s", err)
		pkg.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Password == "" {
		pkg.WriteMessage(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	userID, err := h.service.Register(ctx, Credentials{Username: req.Username, Password: req.Password}, req.Email)
	if errors.Is(err, ErrUserExists) {
		pkg.WriteMessage(w, http.StatusBadRequest, "Username already exists")
		return
	}
	if err != nil {
		log.Errorf("register user [%s]: %s", req.Username, err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	log.Debugf("new user registered: %s [%d]", req.Username, userID)
	pkg.WriteJSON(w, http.StatusCreated, RegisterResponse{
		Message: "User created successfully",
		UserID:  userID,
	})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.login")
	defer span.End()

	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		log.Errorf("login, unmarshal json params: %s", err)
		pkg.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		pkg.WriteMessage(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	session, err := h.service.Login(ctx, creds, time.Now())
	if errors.Is(err, ErrWrongPassword) {
		h.countLogin("failure")
		pkg.WriteMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		h.countLogin("error")
		log.Errorf("login failed for [%s]: %s", creds.Username, err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.countLogin("success")
	log.Trace("new login success")
	pkg.WriteJSON(w, http.StatusOK, LoginResponse{
		AccessToken: session.Token,
		UserID:      session.UserID,
	})
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.logout")
	defer span.End()

	token := BearerToken(r)
	if token == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	loggedOut, err := h.service.Logout(ctx, token)
	if err != nil {
		log.Errorf("logout: %s", err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if !loggedOut {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	pkg.WriteMessage(w, http.StatusOK, "Logged out")
}

func (h *Handler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.deleteAccount")
	defer span.End()

	userID, ok := UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}

	err := h.service.DeleteAccount(ctx, userID, BearerToken(r))
	if errors.Is(err, ErrUserNotFound) {
		pkg.WriteMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		log.Errorf("delete account %d: %s", userID, err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	log.Debugf("user %d deleted", userID)
	pkg.WriteMessage(w, http.StatusOK, "Account deleted")
}
