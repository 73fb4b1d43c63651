package userinfo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/rufit/rufitserver/internal/auth"
	"github.com/rufit/rufitserver/internal/telemetry/tracing"
	"github.com/rufit/rufitserver/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=userinfo_test

type profileRepo interface {
	Get(ctx context.Context, userID int) (*Profile, error)
	Upsert(ctx context.Context, p Profile) (bool, error)
}

type UpsertRequest struct {
	UserData *Profile `json:"user_data"`
}

type Handler struct {
	repo profileRepo
}

func NewHandler(repo profileRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.userinfo.get")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}

	profile, err := h.repo.Get(ctx, userID)
	if errors.Is(err, ErrProfileNotFound) {
		log.Warnf("user info not found for user %d", userID)
		pkg.WriteMessage(w, http.StatusNotFound, "User info not found")
		return
	}
	if err != nil {
		log.Errorf("get user info for user %d: %s", userID, err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	pkg.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.userinfo.upsert")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}

	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("user info upsert, unmarshal json params: %s", err)
		pkg.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserData == nil {
		log.Warnf("no user data provided for user %d", userID)
		pkg.WriteMessage(w, http.StatusBadRequest, "No user data provided")
		return
	}

	profile := *req.UserData
	profile.UserID = userID
	if err := profile.Normalize(); err != nil {
		pkg.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.repo.Upsert(ctx, profile)
	if err != nil {
		log.Errorf("upsert user info for user %d: %s", userID, err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	action := "updated"
	if created {
		action = "created"
	}
	log.Debugf("user info %s for user %d", action, userID)
	pkg.WriteMessage(w, http.StatusCreated, "User info "+action+" successfully")
}
