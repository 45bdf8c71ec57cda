package handlers

import (
	"errors"
	"net/http"

	"github.com/riftops/clash-coordinator/services"
)

// RosterHandler exposes the four coordinator operations plus the pull-side
// snapshots as a flat JSON API. All request validation beyond field presence
// lives in the service layer.
type RosterHandler struct {
	rosterService services.RosterService
}

func NewRosterHandler(rosterService services.RosterService) *RosterHandler {
	return &RosterHandler{rosterService: rosterService}
}

func (h *RosterHandler) JoinTeam(w http.ResponseWriter, r *http.Request) {
	var input services.JoinTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.PlayerID == "" || input.ServerName == "" || input.Tournament == "" || input.Day == "" || input.Role == "" {
		badRequestResponse(w, r, errors.New("player_id, server_name, tournament, day and role are required"))
		return
	}

	team, err := h.rosterService.JoinTeam(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RosterHandler) LeaveTeam(w http.ResponseWriter, r *http.Request) {
	var input services.LeaveTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.PlayerID == "" || input.ServerName == "" || input.Tournament == "" || input.Day == "" || input.TeamName == "" {
		badRequestResponse(w, r, errors.New("player_id, server_name, tournament, day and team_name are required"))
		return
	}

	if err := h.rosterService.LeaveTeam(r.Context(), input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *RosterHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	input := services.ListTeamsInput{
		ServerName: r.URL.Query().Get("server"),
		Tournament: r.URL.Query().Get("tournament"),
		Day:        r.URL.Query().Get("day"),
		TeamName:   r.URL.Query().Get("team"),
	}

	teams, err := h.rosterService.ListTeams(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RosterHandler) JoinTentative(w http.ResponseWriter, r *http.Request) {
	input, ok := readTentativeInput(w, r)
	if !ok {
		return
	}

	entry, err := h.rosterService.JoinTentative(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tentative": entry}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RosterHandler) LeaveTentative(w http.ResponseWriter, r *http.Request) {
	input, ok := readTentativeInput(w, r)
	if !ok {
		return
	}

	entry, err := h.rosterService.LeaveTentative(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tentative": entry}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RosterHandler) GetTentative(w http.ResponseWriter, r *http.Request) {
	input := services.TentativeInput{
		ServerName: r.URL.Query().Get("server"),
		Tournament: r.URL.Query().Get("tournament"),
		Day:        r.URL.Query().Get("day"),
	}
	if input.ServerName == "" || input.Tournament == "" || input.Day == "" {
		badRequestResponse(w, r, errors.New("server, tournament and day query parameters are required"))
		return
	}

	entry, err := h.rosterService.GetTentative(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tentative": entry}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func readTentativeInput(w http.ResponseWriter, r *http.Request) (services.TentativeInput, bool) {
	var input services.TentativeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return input, false
	}
	if input.PlayerID == "" || input.ServerName == "" || input.Tournament == "" || input.Day == "" {
		badRequestResponse(w, r, errors.New("player_id, server_name, tournament and day are required"))
		return input, false
	}
	return input, true
}
