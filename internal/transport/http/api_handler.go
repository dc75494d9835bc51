package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"songquiz-service/internal/app"
	"songquiz-service/internal/domain"
	"songquiz-service/internal/infra/youtube"
)

// APIHandler serves the REST side of the quiz.
type APIHandler struct {
	quizzes    *app.QuizService
	challenges *app.ChallengeService
	rankings   *app.RankingService
}

func NewAPIHandler(quizzes *app.QuizService, challenges *app.ChallengeService, rankings *app.RankingService) *APIHandler {
	return &APIHandler{quizzes: quizzes, challenges: challenges, rankings: rankings}
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// questionPayload adds the player-ready video id to a free-mode question.
type questionPayload struct {
	domain.QuizQuestion
	VideoID string `json:"videoId,omitempty"`
}

type questionViewPayload struct {
	*app.QuestionView
	VideoID string `json:"videoId,omitempty"`
}

// statePayload shadows the embedded question with one that carries the video id.
type statePayload struct {
	app.ChallengeState
	Question *questionViewPayload `json:"question,omitempty"`
}

type startRequest struct {
	AlbumIDs []string `json:"albumIds"`
}

type answerRequest struct {
	Answer       string  `json:"answer"`
	ClipDuration float64 `json:"clipDuration"`
}

type revealRequest struct {
	ClipDuration float64 `json:"clipDuration"`
}

type registerRequest struct {
	Username string `json:"username"`
}

func (h *APIHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.quizzes.Catalog(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: catalog})
}

// Quiz generates a free-mode question list.
func (h *APIHandler) Quiz(w http.ResponseWriter, r *http.Request) {
	count := 0
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, envelope{Error: "count must be a positive integer"})
			return
		}
		count = n
	}

	questions, err := h.quizzes.Generate(r.Context(), splitList(r.URL.Query().Get("albums")), count)
	if err != nil {
		writeError(w, err)
		return
	}
	payload := make([]questionPayload, 0, len(questions))
	for _, q := range questions {
		payload = append(payload, questionPayload{QuizQuestion: q, VideoID: videoID(q.Track.MediaURL)})
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: payload})
}

func (h *APIHandler) StartChallenge(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !decodeBody(w, r, &req) {
		return
	}
	state, err := h.challenges.Start(r.Context(), req.AlbumIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: toStatePayload(state)})
}

func (h *APIHandler) ChallengeState(w http.ResponseWriter, r *http.Request) {
	state, err := h.challenges.State(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: toStatePayload(state)})
}

func (h *APIHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	outcome, err := h.challenges.Answer(r.Context(), chi.URLParam(r, "id"), req.Answer, req.ClipDuration)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: map[string]any{
		"correct": outcome.Correct,
		"score":   outcome.Score,
		"state":   toStatePayload(outcome.State),
	}})
}

func (h *APIHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	var req revealRequest
	if !decodeBody(w, r, &req) {
		return
	}
	outcome, err := h.challenges.Reveal(r.Context(), chi.URLParam(r, "id"), req.ClipDuration)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: map[string]any{
		"title": outcome.Title,
		"score": outcome.Score,
		"state": toStatePayload(outcome.State),
	}})
}

func (h *APIHandler) Next(w http.ResponseWriter, r *http.Request) {
	state, err := h.challenges.Next(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: toStatePayload(state)})
}

func (h *APIHandler) Finish(w http.ResponseWriter, r *http.Request) {
	state, err := h.challenges.Finish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: toStatePayload(state)})
}

func (h *APIHandler) Result(w http.ResponseWriter, r *http.Request) {
	result, err := h.challenges.Result(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: result})
}

// Register puts a completed challenge on the leaderboard.
func (h *APIHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	entry, err := h.challenges.Register(r.Context(), chi.URLParam(r, "id"), req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: entry, Message: "Ranking registered"})
}

func (h *APIHandler) ListRankings(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, domain.ErrInvalidLimit)
			return
		}
		limit = n
	}
	entries, err := h.rankings.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.RankingEntry{}
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: entries})
}

// SubmitRanking accepts a score computed elsewhere.
func (h *APIHandler) SubmitRanking(w http.ResponseWriter, r *http.Request) {
	var req domain.ScoreSubmission
	if !decodeBody(w, r, &req) {
		return
	}
	entry, err := h.rankings.Submit(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: entry, Message: "Ranking registered"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
		writeJSON(w, status, envelope{Error: "internal server error"})
		return
	}
	writeJSON(w, status, envelope{Error: err.Error()})
}

func statusFor(err error) int {
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation),
		errors.Is(err, domain.ErrInvalidLimit),
		errors.Is(err, domain.ErrNoTracksAvailable):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrCatalogNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionCompleted),
		errors.Is(err, domain.ErrSessionNotCompleted),
		errors.Is(err, domain.ErrAlreadyRevealed),
		errors.Is(err, domain.ErrNotRevealed),
		errors.Is(err, domain.ErrAlreadyRegistered):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody reads a JSON body. An empty body leaves v at its zero value.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, envelope{Error: "invalid request body"})
		return false
	}
	return true
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func videoID(url string) string {
	id, err := youtube.VideoID(url)
	if err != nil {
		return ""
	}
	return id
}

func toStatePayload(state app.ChallengeState) statePayload {
	payload := statePayload{ChallengeState: state}
	if state.Question != nil {
		payload.Question = &questionViewPayload{QuestionView: state.Question, VideoID: videoID(state.Question.MediaURL)}
	}
	return payload
}
