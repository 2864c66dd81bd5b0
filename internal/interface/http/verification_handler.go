package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/edu-verify/internal/application"
	"github.com/oksasatya/edu-verify/pkg/response"
	"github.com/oksasatya/edu-verify/pkg/validation"
)

// VerificationService is implemented by application.Service.
type VerificationService interface {
	Register(ctx context.Context, in application.RegisterInput) application.Outcome
	Verify(ctx context.Context, platformID, code string) application.Outcome
	BeginInteractiveVerify(ctx context.Context, platformID, requesterID string) application.Outcome
	SubmitInteractiveVerify(ctx context.Context, ticket, requesterID, code string) application.Outcome
}

type VerificationHandler struct {
	Svc    VerificationService
	Logger *logrus.Logger
}

func NewVerificationHandler(svc VerificationService, logger *logrus.Logger) *VerificationHandler {
	return &VerificationHandler{Svc: svc, Logger: logger}
}

// Email and code format are judged by the flows so they come back as outcomes.
type registerRequest struct {
	PlatformID  string `json:"platform_id" binding:"required,platformid"`
	DisplayName string `json:"display_name" binding:"omitempty,displayname"`
	Email       string `json:"email" binding:"max=254"`
}

type verifyRequest struct {
	PlatformID string `json:"platform_id" binding:"required,platformid"`
	Code       string `json:"code" binding:"max=32"`
}

type beginInteractiveRequest struct {
	PlatformID  string `json:"platform_id" binding:"required,platformid"`
	RequesterID string `json:"requester_id" binding:"required,platformid"`
}

type submitInteractiveRequest struct {
	Ticket      string `json:"ticket" binding:"required,ticket"`
	RequesterID string `json:"requester_id" binding:"required,platformid"`
	Code        string `json:"code" binding:"max=32"`
}

func (h *VerificationHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	o := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		PlatformID:  req.PlatformID,
		DisplayName: req.DisplayName,
		Email:       req.Email,
	})
	renderOutcome(c, o)
}

func (h *VerificationHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	renderOutcome(c, h.Svc.Verify(c.Request.Context(), req.PlatformID, req.Code))
}

func (h *VerificationHandler) BeginInteractive(c *gin.Context) {
	var req beginInteractiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	renderOutcome(c, h.Svc.BeginInteractiveVerify(c.Request.Context(), req.PlatformID, req.RequesterID))
}

func (h *VerificationHandler) SubmitInteractive(c *gin.Context) {
	var req submitInteractiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	renderOutcome(c, h.Svc.SubmitInteractiveVerify(c.Request.Context(), req.Ticket, req.RequesterID, req.Code))
}
