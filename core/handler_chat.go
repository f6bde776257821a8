package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/caasmo/authrelay/db"
	"github.com/caasmo/authrelay/llm"
	"github.com/google/uuid"
)

// chatSystemPrompt frames the upstream model for every conversation.
const chatSystemPrompt = "You are a helpful assistant. Answer concisely and accurately. " +
	"If you are unsure about something, say so instead of guessing."

// placeholderTitle is shown until the model names the conversation.
const placeholderTitle = "New conversation"

// sseWriter serializes events onto one response stream.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newSseWriter(w http.ResponseWriter) (*sseWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support flushing")
	}
	setHeaders(w, HeadersSse)
	w.WriteHeader(http.StatusOK)
	return &sseWriter{w: w, flusher: flusher}, nil
}

func (s *sseWriter) send(event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal stream event: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", body); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// ChatHandler relays one user message to the upstream generator and
// streams the reply back as server-sent events. The event order is
// fixed: one envelope with the conversation id, then text chunks, then
// an optional title for newly created conversations, then done. The
// assistant message is persisted only after the full stream completes;
// a broken stream leaves no partial assistant message behind.
//
// Endpoint: POST /api/chat
func (a *App) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.validator.ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}
	if a.generator == nil {
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	id := IdentityFromContext(r.Context())

	var req struct {
		Message        string `json:"message"`
		ConversationID string `json:"conversationId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	conversation, isNew, err := a.conversationForChat(req.ConversationID, id.User.ID)
	if err != nil {
		a.logger.Error("conversation resolution failed", "err", err)
		writeJsonError(w, errorInternal)
		return
	}
	if conversation == nil {
		writeJsonError(w, errorNotFound)
		return
	}

	_, err = a.dbChat.InsertMessage(db.Message{
		ID:             uuid.NewString(),
		ConversationID: conversation.ID,
		UserID:         id.User.ID,
		Role:           db.MessageRoleUser,
		Content:        req.Message,
	})
	if err != nil {
		a.logger.Error("failed to persist user message", "err", err)
		writeJsonError(w, errorInternal)
		return
	}

	history, err := a.generationHistory(conversation.ID)
	if err != nil {
		a.logger.Error("failed to load conversation history", "err", err)
		writeJsonError(w, errorInternal)
		return
	}

	stream, err := newSseWriter(w)
	if err != nil {
		a.logger.Error("streaming unsupported", "err", err)
		writeJsonError(w, errorInternal)
		return
	}

	if err := stream.send(map[string]interface{}{
		"conversationId":    conversation.ID,
		"isNewConversation": isNew,
	}); err != nil {
		return
	}

	var reply strings.Builder
	err = a.generator.StreamText(r.Context(), chatSystemPrompt, history, func(chunk string) error {
		reply.WriteString(chunk)
		return stream.send(map[string]string{"text": chunk})
	})
	if err != nil {
		a.logger.Error("generation stream failed", "conversation", conversation.ID, "err", err)
		_ = stream.send(map[string]string{"error": "Stream error occurred"})
		return
	}

	_, err = a.dbChat.InsertMessage(db.Message{
		ID:             uuid.NewString(),
		ConversationID: conversation.ID,
		UserID:         id.User.ID,
		Role:           db.MessageRoleAssistant,
		Content:        reply.String(),
	})
	if err != nil {
		a.logger.Error("failed to persist assistant message", "conversation", conversation.ID, "err", err)
		_ = stream.send(map[string]string{"error": "Stream error occurred"})
		return
	}

	if isNew {
		if title := a.generateTitle(r.Context(), req.Message); title != "" {
			if err := a.dbChat.UpdateConversationTitle(conversation.ID, id.User.ID, title); err != nil {
				a.logger.Error("failed to store conversation title", "conversation", conversation.ID, "err", err)
			} else {
				_ = stream.send(map[string]string{"title": title})
			}
		}
	}

	_ = stream.send(map[string]bool{"done": true})
}

// conversationForChat loads an owned conversation or creates a fresh
// one. A conversation owned by someone else resolves to nil, the same
// as a missing one.
func (a *App) conversationForChat(conversationId, userId string) (*db.Conversation, bool, error) {
	if conversationId != "" {
		c, err := a.dbChat.GetConversation(conversationId, userId)
		return c, false, err
	}

	c, err := a.dbChat.CreateConversation(db.Conversation{
		ID:     uuid.NewString(),
		UserID: userId,
		Title:  placeholderTitle,
	})
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

// generationHistory maps the stored conversation onto the generator's
// message shape, bounded to the most recent turns.
func (a *App) generationHistory(conversationId string) ([]llm.Message, error) {
	messages, err := a.dbChat.ListMessages(conversationId)
	if err != nil {
		return nil, err
	}

	maxTurns := a.configProvider.Get().Llm.HistoryMaxTurns
	if maxTurns > 0 && len(messages) > maxTurns*2 {
		messages = messages[len(messages)-maxTurns*2:]
	}

	history := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		role := llm.RoleUser
		if m.Role == db.MessageRoleAssistant {
			role = llm.RoleAssistant
		}
		history = append(history, llm.Message{Role: role, Content: m.Content})
	}
	return history, nil
}

// generateTitle asks the model to name the conversation from its first
// message. Failures degrade to the placeholder title.
func (a *App) generateTitle(ctx context.Context, firstMessage string) string {
	prompt := fmt.Sprintf(
		"Generate a title of three to five words for a conversation that starts with the following message. Reply with the title only, no quotes.\n\n%s",
		firstMessage,
	)

	title, err := a.generator.GenerateText(ctx, prompt)
	if err != nil {
		a.logger.Error("title generation failed", "err", err)
		return ""
	}

	title = strings.Trim(strings.TrimSpace(title), `"`)
	if max := a.configProvider.Get().Llm.TitleMaxLength; max > 0 {
		if runes := []rune(title); len(runes) > max {
			title = string(runes[:max])
		}
	}
	return title
}
