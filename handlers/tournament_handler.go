package handlers

import (
	"net/http"

	"github.com/riftops/clash-coordinator/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(tournamentService services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: tournamentService}
}

// ListOpen returns the tournament days still accepting registrations.
func (h *TournamentHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournamentService.ListOpen(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
