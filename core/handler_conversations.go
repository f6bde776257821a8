package core

import (
	"net/http"
)

const (
	CodeOkConversationList = "ok_conversation_list"
	CodeOkConversation     = "ok_conversation"
)

// ListConversationsHandler returns the caller's conversations ordered
// by most recent activity.
//
// Endpoint: GET /api/chat/conversations
func (a *App) ListConversationsHandler(w http.ResponseWriter, r *http.Request) {
	id := IdentityFromContext(r.Context())

	conversations, err := a.dbChat.ListConversations(id.User.ID)
	if err != nil {
		a.logger.Error("conversation listing failed", "user", id.User.ID, "err", err)
		writeJsonError(w, errorInternal)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkConversationList,
			Message: "Conversations retrieved",
		},
		Data: map[string]interface{}{"conversations": conversations},
	})
}

// GetConversationHandler returns one owned conversation with its
// messages. A conversation owned by someone else is reported exactly
// like a missing one.
//
// Endpoint: GET /api/chat/conversations/{id}
func (a *App) GetConversationHandler(w http.ResponseWriter, r *http.Request) {
	id := IdentityFromContext(r.Context())
	conversationId := a.pathParam(r, "id")
	if conversationId == "" {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	conversation, err := a.dbChat.GetConversation(conversationId, id.User.ID)
	if err != nil {
		a.logger.Error("conversation lookup failed", "err", err)
		writeJsonError(w, errorInternal)
		return
	}
	if conversation == nil {
		writeJsonError(w, errorNotFound)
		return
	}

	messages, err := a.dbChat.ListMessages(conversation.ID)
	if err != nil {
		a.logger.Error("message listing failed", "conversation", conversation.ID, "err", err)
		writeJsonError(w, errorInternal)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkConversation,
			Message: "Conversation retrieved",
		},
		Data: map[string]interface{}{
			"conversation": conversation,
			"messages":     messages,
		},
	})
}

// DeleteConversationHandler removes an owned conversation and its
// messages.
//
// Endpoint: DELETE /api/chat/conversations/{id}
func (a *App) DeleteConversationHandler(w http.ResponseWriter, r *http.Request) {
	id := IdentityFromContext(r.Context())
	conversationId := a.pathParam(r, "id")
	if conversationId == "" {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	deleted, err := a.dbChat.DeleteConversation(conversationId, id.User.ID)
	if err != nil {
		a.logger.Error("conversation deletion failed", "err", err)
		writeJsonError(w, errorInternal)
		return
	}
	if !deleted {
		writeJsonError(w, errorNotFound)
		return
	}

	writeJsonOk(w, okConversationDeleted)
}
