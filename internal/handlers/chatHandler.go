package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rpillai/docuchat/internal/adapter"
	"github.com/rpillai/docuchat/internal/api"
	"github.com/rpillai/docuchat/internal/domain/chatModel"
	"github.com/rpillai/docuchat/internal/rag"
	"github.com/rpillai/docuchat/internal/realtime"
)

const streamHeartbeatInterval = 30 * time.Second

// CreateSessionHandler godoc
// @Summary      Create a chat session
// @Description  Starts a new conversation. Title is optional; an untitled session is named after its first message.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        request  body      api.CreateSessionRequest  false  "Optional title"
// @Success      201      {object}  api.SessionResponse
// @Failure      400      {object}  api.ErrorResponse
// @Router       /sessions [post]
func CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	userID, ok := userFromContext(r.Context())
	if !ok {
		WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var requestData api.CreateSessionRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil && !errors.Is(err, io.EOF) {
			WriteErrorResponse(w, http.StatusBadRequest, "Bad Request")
			return
		}
	}

	session, err := handlerInstance.chats.CreateSession(r.Context(), userID, requestData.Title)
	if err != nil {
		logCH.Error("could not create session", "userId", userID, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}
	writeJsonResponse(w, http.StatusCreated, adapter.ToSessionResponse(session))
}

// ListSessionsHandler godoc
// @Summary      List the caller's chat sessions
// @Tags         Sessions
// @Produce      json
// @Success      200  {array}   api.SessionResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /sessions [get]
func ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	userID, ok := userFromContext(r.Context())
	if !ok {
		WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	sessions, err := handlerInstance.chats.ListSessions(r.Context(), userID)
	if err != nil {
		logCH.Error("could not list sessions", "userId", userID, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToSessionResponses(sessions))
}

// ListMessagesHandler godoc
// @Summary      List messages in a session
// @Tags         Messaging
// @Produce      json
// @Param        id   path      int  true  "Session ID"
// @Success      200  {array}   api.MessageResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /sessions/{id}/messages [get]
func ListMessagesHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	messages, err := handlerInstance.chats.ListMessages(r.Context(), session.ID)
	if err != nil {
		logCH.Error("could not list messages", "sessionId", session.ID, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToMessageResponses(messages))
}

// SendMessageHandler godoc
// @Summary      Send a message and get a cited answer
// @Description  Persists the user's message, retrieves relevant context from the caller's documents, generates an answer, persists it, and publishes it to the session stream. The full answer is also returned directly.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Param        id       path      int                     true  "Session ID"
// @Param        request  body      api.SendMessageRequest  true  "Message content"
// @Success      201      {object}  api.MessageResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      503      {object}  api.ErrorResponse  "Language model unavailable"
// @Router       /sessions/{id}/messages [post]
func SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logCH.Warn("Invalid Context by request ", "remoteAddr", r.RemoteAddr)
		return
	}
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	var requestData api.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || requestData.Content == "" {
		logCH.Warn("Bad chat request", "sessionId", session.ID, "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "content is required")
		return
	}

	answer, err := handlerInstance.ragSvc.AnswerMessage(r.Context(), session, requestData.Content)
	if err != nil {
		if errors.Is(err, rag.ErrUnavailable) {
			WriteErrorResponse(w, http.StatusServiceUnavailable, "Chat is unavailable: language model not initialized")
			return
		}
		logCH.Error("chat turn failed", "sessionId", session.ID, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJsonResponse(w, http.StatusCreated, adapter.ToMessageResponse(answer))
}

// FeedbackHandler godoc
// @Summary      Rate an answer
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Param        id         path      int                  true  "Session ID"
// @Param        messageId  path      int                  true  "Message ID"
// @Param        request    body      api.FeedbackRequest  true  "Feedback"
// @Success      200        {object}  map[string]string
// @Failure      404        {object}  api.ErrorResponse
// @Router       /sessions/{id}/messages/{messageId}/feedback [patch]
func FeedbackHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	messageID, ok := pathID(r, "messageId")
	if !ok {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid message id")
		return
	}

	var requestData api.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Bad Request")
		return
	}

	found, err := handlerInstance.chats.SaveFeedback(r.Context(), session.ID, messageID, requestData.IsHelpful, requestData.FeedbackText)
	if err != nil {
		logCH.Error("could not save feedback", "messageId", messageID, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, "Message not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, map[string]string{"message": "Feedback recorded"})
}

// StreamSessionHandler godoc
// @Summary      Stream session answers over SSE
// @Description  Server-sent events feed of AI answers published to this session. At-most-once; messages published while disconnected are not replayed.
// @Tags         Messaging
// @Produce      text/event-stream
// @Param        id  path  int  true  "Session ID"
// @Failure      404  {object}  api.ErrorResponse
// @Failure      503  {object}  api.ErrorResponse  "Realtime channel unavailable"
// @Router       /sessions/{id}/stream [get]
func StreamSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	if handlerInstance.bus == nil {
		WriteErrorResponse(w, http.StatusServiceUnavailable, "Realtime channel unavailable")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteErrorResponse(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	topic := realtime.SessionTopic(session.ID)
	payloads, closeSub := handlerInstance.bus.Subscribe(r.Context(), topic)
	defer closeSub()
	logCH.Debug("Stream attached", "sessionId", session.ID)

	heartbeat := time.NewTicker(streamHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case payload, open := <-payloads:
			if !open {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		case <-heartbeat.C:
			// comment line keeps idle proxies from closing the stream
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

// sessionFromRequest resolves the {id} path parameter to a session owned by
// the authenticated caller. Writes the error response itself when it fails.
func sessionFromRequest(w http.ResponseWriter, r *http.Request) (chatModel.ChatSession, bool) {
	userID, ok := userFromContext(r.Context())
	if !ok {
		WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return chatModel.ChatSession{}, false
	}
	sessionID, ok := pathID(r, "id")
	if !ok {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid session id")
		return chatModel.ChatSession{}, false
	}
	session, found := handlerInstance.chats.GetSession(r.Context(), sessionID, userID)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, "Session not found")
		return chatModel.ChatSession{}, false
	}
	return session, true
}
