package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	models "github.com/brdnvt/django-blog-recommendation-system/model"
	"github.com/brdnvt/django-blog-recommendation-system/repository"
)

// RecommendationHandler serves the read path: recommendations for the
// authenticated caller, excluding their own authored posts. Read-only;
// pipeline failures are never surfaced to readers.
type RecommendationHandler struct {
	repo repository.RecommendationRepository
	log  zerolog.Logger
}

func NewRecommendationHandler(repo repository.RecommendationRepository, log zerolog.Logger) *RecommendationHandler {
	return &RecommendationHandler{repo: repo, log: log}
}

func (h *RecommendationHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no authentication credentials provided")
		return
	}

	recs, err := h.repo.GetForUser(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to load recommendations")
		writeError(w, http.StatusInternalServerError, "failed to load recommendations")
		return
	}

	if recs == nil {
		recs = []models.Recommendation{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"recommendations": recs,
		"user_id":         userID,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
