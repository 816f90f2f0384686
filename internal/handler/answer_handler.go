package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/talentvec/talentvec/internal/pkg/errcode"
	"github.com/talentvec/talentvec/internal/pkg/response"
	"github.com/talentvec/talentvec/internal/service"
)

type AnswerHandler struct {
	answers *service.AnswerService
}

func NewAnswerHandler(answers *service.AnswerService) *AnswerHandler {
	return &AnswerHandler{answers: answers}
}

type askRequest struct {
	Question  string  `json:"question"`
	TopK      int     `json:"top_k"`
	Threshold float64 `json:"threshold"`
}

func (h *AnswerHandler) Ask(c *gin.Context) {
	if h.answers == nil {
		response.Error(c, errcode.ErrAIUnavailable, "generation model not configured")
		return
	}
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	answer, err := h.answers.Answer(c.Request.Context(), getUserID(c), req.Question, req.TopK, req.Threshold)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"success":    true,
		"answer":     answer.AnswerText,
		"sources":    answer.Sources,
		"usage":      answer.Usage,
		"latency_ms": answer.LatencyMs,
	})
}
