package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farmassist/farmassist-backend/internal/data/documents"
	"github.com/farmassist/farmassist-backend/internal/data/fallback"
	"github.com/farmassist/farmassist-backend/internal/http/response"
	"github.com/farmassist/farmassist-backend/internal/services"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (ch *ChatHandler) Send(c *gin.Context) {
	var req services.ChatInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	reply, err := ch.chatService.SendMessage(c.Request.Context(), req)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, reply)
}

func (ch *ChatHandler) History(c *gin.Context) {
	messages, err := ch.chatService.History(c.Request.Context(), c.Query("user_id"), c.Query("session_id"))
	if err != nil {
		if response.DomainError(err) {
			response.RespondFromError(c, err)
			return
		}
		messages = []fallback.ChatMessageRecord{}
	}
	if messages == nil {
		messages = []fallback.ChatMessageRecord{}
	}
	response.RespondOK(c, gin.H{"messages": messages})
}

func (ch *ChatHandler) Sessions(c *gin.Context) {
	sessions, err := ch.chatService.Sessions(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		if response.DomainError(err) {
			response.RespondFromError(c, err)
			return
		}
		sessions = []documents.SessionSummary{}
	}
	if sessions == nil {
		sessions = []documents.SessionSummary{}
	}
	response.RespondOK(c, gin.H{"sessions": sessions})
}
