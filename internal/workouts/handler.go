package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/rufit/rufitserver/internal/auth"
	"github.com/rufit/rufitserver/internal/telemetry/metrics"
	"github.com/rufit/rufitserver/internal/telemetry/tracing"
	"github.com/rufit/rufitserver/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workouts_test

type workoutsRepo interface {
	AddSession(ctx context.Context, session []Workout) ([]Workout, error)
	ListByUser(ctx context.Context, userID int) ([]Workout, error)
	ReplaceSession(ctx context.Context, userID int, sessionID string, session []Workout) error
	DeleteSession(ctx context.Context, userID int, sessionID string) error
}

type exerciseNames interface {
	CanonicalName(name string) (string, bool)
}

type CreateSessionResponse struct {
	Message   string    `json:"message"`
	SessionID string    `json:"session_id"`
	Workouts  []Workout `json:"workouts"`
}

type Handler struct {
	repo    workoutsRepo
	names   exerciseNames
	metrics *metrics.Manager
	now     func() time.Time
}

func NewHandler(repo workoutsRepo, names exerciseNames, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		names:   names,
		metrics: metricsManager,
		now:     time.Now,
	}
}

// canonicalName trims the name and, when the catalog knows the exercise,
// swaps in the catalog spelling so history grouping stays consistent.
func (h *Handler) canonicalName(name string) string {
	name = strings.TrimSpace(name)
	if h.names == nil {
		return name
	}
	if canonical, ok := h.names.CanonicalName(name); ok {
		return canonical
	}
	return name
}

func (h *Handler) toWorkouts(userID int, sessionID string, performedAt time.Time, req SessionRequest) []Workout {
	session := make([]Workout, 0, len(req.Exercises))
	for _, e := range req.Exercises {
		session = append(session, Workout{
			UserID:      userID,
			WorkoutName: req.WorkoutName,
			SessionID:   sessionID,
			Exercise:    h.canonicalName(e.Name),
			Sets:        e.Sets,
			Reps:        e.Reps,
			Weight:      e.Weight,
			PerformedAt: performedAt,
		})
	}
	return session
}

func decodeSessionRequest(w http.ResponseWriter, r *http.Request) (SessionRequest, bool) {
	var req SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("workout session, unmarshal json params: %s", err)
		pkg.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	if err := req.Validate(); err != nil {
		pkg.WriteMessage(w, http.StatusBadRequest, "You must enter a value for all fields: "+err.Error())
		return req, false
	}
	return req, true
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.create")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}

	req, ok := decodeSessionRequest(w, r)
	if !ok {
		return
	}

	sessionID := uuid.NewString()
	added, err := h.repo.AddSession(ctx, h.toWorkouts(userID, sessionID, h.now(), req))
	if err != nil {
		log.Errorf("add workout session for user %d: %s", userID, err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if h.metrics != nil {
		h.metrics.CounterWorkoutsLogged.Add(float64(len(added)))
	}

	log.Debugf("user %d logged workout session %s with %d exercises", userID, sessionID, len(added))
	pkg.WriteJSON(w, http.StatusCreated, CreateSessionResponse{
		Message:   "Good Work!",
		SessionID: sessionID,
		Workouts:  added,
	})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}

	list, err := h.repo.ListByUser(ctx, userID)
	if err != nil {
		log.Errorf("list workouts for user %d: %s", userID, err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	pkg.WriteJSON(w, http.StatusOK, list)
}

func sessionIDFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID, err := uuid.Parse(mux.Vars(r)["sessionId"])
	if err != nil {
		pkg.WriteMessage(w, http.StatusBadRequest, "Invalid session id")
		return "", false
	}
	return sessionID.String(), true
}

func (h *Handler) HandleUpdateSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.updateSession")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}
	sessionID, ok := sessionIDFromRequest(w, r)
	if !ok {
		return
	}
	req, ok := decodeSessionRequest(w, r)
	if !ok {
		return
	}

	err := h.repo.ReplaceSession(ctx, userID, sessionID, h.toWorkouts(userID, sessionID, h.now(), req))
	if errors.Is(err, ErrSessionNotFound) {
		pkg.WriteMessage(w, http.StatusNotFound, "Workout session not found")
		return
	}
	if err != nil {
		log.Errorf("update workout session %s for user %d: %s", sessionID, userID, err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	pkg.WriteMessage(w, http.StatusOK, "Workout session updated successfully")
}

func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.deleteSession")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}
	sessionID, ok := sessionIDFromRequest(w, r)
	if !ok {
		return
	}

	err := h.repo.DeleteSession(ctx, userID, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		pkg.WriteMessage(w, http.StatusNotFound, "Workout session not found")
		return
	}
	if err != nil {
		log.Errorf("delete workout session %s for user %d: %s", sessionID, userID, err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	pkg.WriteMessage(w, http.StatusOK, "Workout session deleted successfully")
}
