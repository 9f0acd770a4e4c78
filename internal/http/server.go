// Package http exposes the poll, vote, and admin operations over a chi
// router. Handlers decode and map; operation semantics live in the
// repository and the authorization gate.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"slotpoll/internal/apperr"
	"slotpoll/internal/auth"
	"slotpoll/internal/config"
	"slotpoll/internal/model"
	"slotpoll/internal/monitoring"
)

// AdminTokenHeader carries the opaque session token on admin-scoped
// requests.
const AdminTokenHeader = "x-admin-token"

// Store is the slice of the repository the handlers need.
type Store interface {
	CreatePoll(ctx context.Context, adminID, title string, description *string, slots []model.TimeSlotInput) (string, error)
	DeletePoll(ctx context.Context, adminID, eventID string) error
	ListPolls(ctx context.Context, adminID string) ([]model.Event, error)
	GetPoll(ctx context.Context, eventID string) (model.PollDetail, error)
	SubmitVote(ctx context.Context, eventID, participantName string, votes []model.VoteInput) (string, error)
	ReplaceVotes(ctx context.Context, eventID, participantID string, votes []model.VoteInput) (string, error)
}

// Gate is the authorization surface the handlers need.
type Gate interface {
	Authenticate(ctx context.Context, token string) (auth.Identity, error)
	Signup(ctx context.Context, name, password string) (auth.Credentials, error)
	Login(ctx context.Context, name, password string) (auth.Credentials, error)
	Logout(ctx context.Context, token string) error
}

type Server struct {
	cfg   config.Config
	store Store
	gate  Gate
}

func NewServer(cfg config.Config, store Store, gate Gate) *Server {
	return &Server{cfg: cfg, store: store, gate: gate}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.With(s.adminMiddleware).Post("/poll", s.handleCreatePoll)
	r.Get("/poll/{id}", s.handleGetPoll)
	r.With(s.adminMiddleware).Delete("/poll/{id}", s.handleDeletePoll)
	r.Post("/poll/{id}/vote", s.handleSubmitVote)
	r.Put("/poll/{id}/participant/{participantId}", s.handleReplaceVotes)
	r.With(s.adminMiddleware).Get("/events", s.handleListEvents)

	r.Post("/admin/signup", s.handleSignup)
	r.Post("/admin/login", s.handleLogin)
	r.With(s.adminMiddleware).Post("/admin/logout", s.handleLogout)

	return r
}

// Auth

type identityKey struct{}

// adminMiddleware resolves the session token before any other validation
// runs; a missing or invalid token is always 401.
func (s *Server) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := s.gate.Authenticate(r.Context(), r.Header.Get(AdminTokenHeader))
		if err != nil {
			writeAppError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), identityKey{}, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFromContext(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(auth.Identity)
	return identity, ok
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+AdminTokenHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Models

type timeSlotInput struct {
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
}

type createPollRequest struct {
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	TimeSlots   []timeSlotInput `json:"timeSlots"`
}

type voteInput struct {
	TimeSlotID string `json:"timeSlotId"`
	Available  bool   `json:"available"`
}

type submitVoteRequest struct {
	ParticipantName string      `json:"participantName"`
	Votes           []voteInput `json:"votes"`
}

type replaceVotesRequest struct {
	Votes []voteInput `json:"votes"`
}

type adminAuthRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type adminAuthResponse struct {
	Token   string `json:"token"`
	AdminID string `json:"adminId"`
	Name    string `json:"name"`
}

type timeSlotResponse struct {
	ID             string `json:"id"`
	StartsAt       string `json:"startsAt"`
	EndsAt         string `json:"endsAt"`
	AvailableCount int64  `json:"availableCount"`
}

type participantResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Votes []voteInput `json:"votes"`
}

type pollResponse struct {
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	Description  *string               `json:"description,omitempty"`
	CreatedAt    string                `json:"createdAt"`
	TimeSlots    []timeSlotResponse    `json:"timeSlots"`
	Participants []participantResponse `json:"participants"`
}

type eventSummaryResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

// Handlers

func (s *Server) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	var req createPollRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request")
		return
	}

	slots := make([]model.TimeSlotInput, 0, len(req.TimeSlots))
	for _, slot := range req.TimeSlots {
		slots = append(slots, model.TimeSlotInput{StartsAt: slot.StartsAt, EndsAt: slot.EndsAt})
	}

	id, err := s.store.CreatePoll(r.Context(), identity.AdminID, req.Title, req.Description, slots)
	if err != nil {
		monitoring.TrackOperation("create_poll", "error")
		writeAppError(w, err)
		return
	}
	monitoring.TrackOperation("create_poll", "success")
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleDeletePoll(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.store.DeletePoll(r.Context(), identity.AdminID, id); err != nil {
		monitoring.TrackOperation("delete_poll", "error")
		writeAppError(w, err)
		return
	}
	monitoring.TrackOperation("delete_poll", "success")
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	detail, err := s.store.GetPoll(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		monitoring.TrackOperation("get_poll", "error")
		writeAppError(w, err)
		return
	}
	monitoring.TrackOperation("get_poll", "success")
	writeJSON(w, http.StatusOK, toPollResponse(detail))
}

func (s *Server) handleSubmitVote(w http.ResponseWriter, r *http.Request) {
	var req submitVoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request")
		return
	}

	participantID, err := s.store.SubmitVote(r.Context(), chi.URLParam(r, "id"), req.ParticipantName, toVoteInputs(req.Votes))
	if err != nil {
		monitoring.TrackOperation("submit_vote", "error")
		writeAppError(w, err)
		return
	}
	monitoring.TrackOperation("submit_vote", "success")
	writeJSON(w, http.StatusCreated, map[string]string{"participantId": participantID})
}

func (s *Server) handleReplaceVotes(w http.ResponseWriter, r *http.Request) {
	var req replaceVotesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request")
		return
	}

	participantID, err := s.store.ReplaceVotes(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "participantId"), toVoteInputs(req.Votes))
	if err != nil {
		monitoring.TrackOperation("replace_votes", "error")
		writeAppError(w, err)
		return
	}
	monitoring.TrackOperation("replace_votes", "success")
	writeJSON(w, http.StatusOK, map[string]string{"participantId": participantID})
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	events, err := s.store.ListPolls(r.Context(), identity.AdminID)
	if err != nil {
		monitoring.TrackOperation("list_events", "error")
		writeAppError(w, err)
		return
	}
	monitoring.TrackOperation("list_events", "success")
	summaries := make([]eventSummaryResponse, 0, len(events))
	for _, event := range events {
		summaries = append(summaries, eventSummaryResponse{
			ID:          event.ID,
			Title:       event.Title,
			Description: event.Description,
			CreatedAt:   formatTime(event.CreatedAt),
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req adminAuthRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request")
		return
	}

	creds, err := s.gate.Signup(r.Context(), req.Name, req.Password)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, adminAuthResponse{Token: creds.Token, AdminID: creds.AdminID, Name: creds.Name})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req adminAuthRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request")
		return
	}

	creds, err := s.gate.Login(r.Context(), req.Name, req.Password)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, adminAuthResponse{Token: creds.Token, AdminID: creds.AdminID, Name: creds.Name})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	if err := s.gate.Logout(r.Context(), identity.Token); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Response assembly

func toPollResponse(detail model.PollDetail) pollResponse {
	slots := make([]timeSlotResponse, 0, len(detail.TimeSlots))
	for _, slot := range detail.TimeSlots {
		slots = append(slots, timeSlotResponse{
			ID:             slot.ID,
			StartsAt:       formatTime(slot.StartsAt),
			EndsAt:         formatTime(slot.EndsAt),
			AvailableCount: slot.AvailableCount,
		})
	}

	participants := make([]participantResponse, 0, len(detail.Participants))
	for _, ballot := range detail.Participants {
		votes := make([]voteInput, 0, len(ballot.Votes))
		for _, vote := range ballot.Votes {
			votes = append(votes, voteInput{TimeSlotID: vote.TimeSlotID, Available: vote.Available})
		}
		participants = append(participants, participantResponse{
			ID:    ballot.ID,
			Name:  ballot.Name,
			Votes: votes,
		})
	}

	return pollResponse{
		ID:           detail.ID,
		Title:        detail.Title,
		Description:  detail.Description,
		CreatedAt:    formatTime(detail.CreatedAt),
		TimeSlots:    slots,
		Participants: participants,
	}
}

func toVoteInputs(votes []voteInput) []model.VoteInput {
	inputs := make([]model.VoteInput, 0, len(votes))
	for _, vote := range votes {
		inputs = append(inputs, model.VoteInput{TimeSlotID: vote.TimeSlotID, Available: vote.Available})
	}
	return inputs
}

// Utilities

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// decodeJSON tolerates unknown fields so older or extended clients keep
// working; only malformed JSON is rejected.
func decodeJSON(r *http.Request, out interface{}) error {
	return json.NewDecoder(r.Body).Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

func writeAppError(w http.ResponseWriter, err error) {
	writeError(w, statusForKind(apperr.KindOf(err)), apperr.CodeOf(err))
}

func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusUnprocessableEntity
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
