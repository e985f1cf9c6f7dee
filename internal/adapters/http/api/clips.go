package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/podclips/internal/domain/ranking"
)

type voteRequest struct {
	VoteType string `json:"vote_type"`
}

// handleListClips handles GET /api/clips?sort_by=&skip=&limit=.
func (s *Server) handleListClips(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_clips"
	q := r.URL.Query()

	skip, err := intParam(q.Get("skip"), 0)
	if err != nil || skip < 0 {
		s.fail(w, r, WrapKind(op, ErrBadRequest, errors.New("skip must be a non-negative integer")))
		return
	}
	limit, err := intParam(q.Get("limit"), s.defaultLimit)
	if err != nil || limit < 1 || limit > s.maxLimit {
		s.fail(w, r, WrapKind(op, ErrBadRequest, fmt.Errorf("limit must be between 1 and %d", s.maxLimit)))
		return
	}
	sortBy := q.Get("sort_by")
	if sortBy == "" {
		sortBy = ranking.DefaultSortKey.String()
	}

	clips, err := s.deps.ListClips(r.Context(), sortBy)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, ranking.Page(clips, skip, limit))
}

// handleGetClip handles GET /api/clips/{clip_id}.
func (s *Server) handleGetClip(w http.ResponseWriter, r *http.Request) {
	clip, err := s.deps.GetClip(r.Context(), r.PathValue("clip_id"))
	if err != nil {
		s.fail(w, r, Wrap("api.get_clip", err))
		return
	}
	writeJSON(w, http.StatusOK, clip)
}

// handleVote handles POST /api/clips/{clip_id}/vote.
func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	const op = "api.vote"
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, r, WrapKind(op, ErrBadRequest, errors.New("invalid JSON body")))
		return
	}
	if _, err := s.deps.ApplyVote(r.Context(), r.PathValue("clip_id"), req.VoteType, voterID(r)); err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "success"})
}

// handlePlatformStats handles GET /api/stats.
func (s *Server) handlePlatformStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.PlatformStats(r.Context())
	if err != nil {
		s.fail(w, r, Wrap("api.stats", err))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
