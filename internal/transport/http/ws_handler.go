package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"songquiz-service/internal/app"
	"songquiz-service/internal/domain"
)

type WSHandler struct {
	challenges *app.ChallengeService
	rankings   *app.RankingService
	upgrader   websocket.Upgrader
}

func NewWSHandler(challenges *app.ChallengeService, rankings *app.RankingService) *WSHandler {
	return &WSHandler{
		challenges: challenges,
		rankings:   rankings,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type answerResult struct {
	Correct bool                   `json:"correct"`
	Score   *domain.ChallengeScore `json:"score,omitempty"`
	State   statePayload           `json:"state"`
}

type revealResult struct {
	Title string                `json:"title"`
	Score domain.ChallengeScore `json:"score"`
	State statePayload          `json:"state"`
}

// writer owns all writes to a connection; gorilla connections allow one concurrent writer.
type writer struct {
	send chan outboundMessage
	done chan struct{}
}

func startWriter(conn *websocket.Conn) *writer {
	w := &writer{send: make(chan outboundMessage, 16), done: make(chan struct{})}
	go func() {
		defer close(w.done)
		for msg := range w.send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				// keep draining so senders never block on a dead connection
				for range w.send {
				}
				return
			}
		}
	}()
	return w
}

func (w *writer) emit(typ string, payload any) {
	w.send <- outboundMessage{Type: typ, Payload: payload}
}

func (w *writer) fail(err error) {
	w.emit("error", errorPayload{Message: err.Error()})
}

func (w *writer) close() {
	close(w.send)
	<-w.done
}

// ServeChallenge runs one time-attack challenge over a websocket.
// The session starts on connect; albums narrows the question pool.
func (h *WSHandler) ServeChallenge(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	out := startWriter(conn)
	defer out.close()

	state, err := h.challenges.Start(ctx, splitList(r.URL.Query().Get("albums")))
	if err != nil {
		out.fail(err)
		return
	}
	id := state.SessionID
	defer func() {
		if err := h.challenges.Abandon(ctx, id); err != nil {
			log.Printf("abandon challenge %s: %v", id, err)
		}
	}()
	out.emit("started", toStatePayload(state))

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var req answerRequest
			if err := unmarshalPayload(inbound.Payload, &req); err != nil {
				out.emit("error", errorPayload{Message: "invalid answer payload"})
				continue
			}
			outcome, err := h.challenges.Answer(ctx, id, req.Answer, req.ClipDuration)
			if err != nil {
				out.fail(err)
				continue
			}
			out.emit("answerResult", answerResult{Correct: outcome.Correct, Score: outcome.Score, State: toStatePayload(outcome.State)})
			h.emitResultIfDone(ctx, out, outcome.State)
		case "reveal":
			var req revealRequest
			if err := unmarshalPayload(inbound.Payload, &req); err != nil {
				out.emit("error", errorPayload{Message: "invalid reveal payload"})
				continue
			}
			outcome, err := h.challenges.Reveal(ctx, id, req.ClipDuration)
			if err != nil {
				out.fail(err)
				continue
			}
			out.emit("revealed", revealResult{Title: outcome.Title, Score: outcome.Score, State: toStatePayload(outcome.State)})
			h.emitResultIfDone(ctx, out, outcome.State)
		case "next":
			state, err := h.challenges.Next(ctx, id)
			if err != nil {
				out.fail(err)
				continue
			}
			out.emit("state", toStatePayload(state))
			h.emitResultIfDone(ctx, out, state)
		case "finish":
			state, err := h.challenges.Finish(ctx, id)
			if err != nil {
				out.fail(err)
				continue
			}
			h.emitResultIfDone(ctx, out, state)
		case "register":
			var req registerRequest
			if err := unmarshalPayload(inbound.Payload, &req); err != nil {
				out.emit("error", errorPayload{Message: "invalid register payload"})
				continue
			}
			entry, err := h.challenges.Register(ctx, id, req.Username)
			if err != nil {
				out.fail(err)
				continue
			}
			out.emit("registered", entry)
		default:
			out.emit("error", errorPayload{Message: "unsupported message type"})
		}
	}
}

func (h *WSHandler) emitResultIfDone(ctx context.Context, out *writer, state app.ChallengeState) {
	if !state.Completed {
		return
	}
	result, err := h.challenges.Result(ctx, state.SessionID)
	if err != nil {
		out.fail(err)
		return
	}
	out.emit("result", result)
}

// ServeRankings streams leaderboard snapshots until the client goes away.
func (h *WSHandler) ServeRankings(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	out := startWriter(conn)
	defer out.close()

	updates, cancel, err := h.rankings.Subscribe(r.Context())
	if err != nil {
		out.fail(err)
		return
	}
	defer cancel()

	closeSignals := make(chan struct{})
	updatesDone := make(chan struct{})
	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				out.emit("leaderboard", update)
			case <-closeSignals:
				return
			}
		}
	}()

	// Inbound messages are ignored; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	close(closeSignals)
	<-updatesDone
}

func unmarshalPayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}
