package recommendation

import (
	"context"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/rufit/rufitserver/internal/auth"
	"github.com/rufit/rufitserver/internal/telemetry/tracing"
	"github.com/rufit/rufitserver/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=recommendation_test

type recommender interface {
	CalculateRecommendations(ctx context.Context, userID int) (*Result, error)
}

type Handler struct {
	service recommender
}

func NewHandler(service recommender) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.recommendations.get")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}

	result, err := h.service.CalculateRecommendations(ctx, userID)
	if err != nil {
		log.Errorf("calculate recommendations for user %d: %s", userID, err)
		pkg.WriteMessage(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if result.Error != "" {
		pkg.WriteMessage(w, http.StatusNotFound, result.Error)
		return
	}

	pkg.WriteJSON(w, http.StatusOK, result)
}
