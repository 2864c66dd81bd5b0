package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/edu-verify/internal/application"
	"github.com/oksasatya/edu-verify/internal/domain/entity"
	"github.com/oksasatya/edu-verify/pkg/response"
	"github.com/oksasatya/edu-verify/pkg/validation"
)

// IdentityService is implemented by application.Service.
type IdentityService interface {
	GetIdentity(ctx context.Context, platformID string) (*entity.Identity, entity.ProjectStats, error)
	SetCouncilMember(ctx context.Context, platformID string, council bool) (*entity.Identity, error)
	SearchDirectory(ctx context.Context, q string, size int) ([]application.DirectoryEntry, error)
}

type IdentityHandler struct {
	Svc    IdentityService
	Logger *logrus.Logger
}

func NewIdentityHandler(svc IdentityService, logger *logrus.Logger) *IdentityHandler {
	return &IdentityHandler{Svc: svc, Logger: logger}
}

type identityURI struct {
	PlatformID string `uri:"platform_id" binding:"required,platformid"`
}

type councilRequest struct {
	Council *bool `json:"council" binding:"required"`
}

type searchQuery struct {
	Q    string `form:"q" binding:"required,max=200"`
	Size int    `form:"size" binding:"omitempty,min=1,max=50"`
}

type identityView struct {
	PlatformID      string              `json:"platform_id"`
	DisplayName     string              `json:"display_name,omitempty"`
	Email           string              `json:"email,omitempty"`
	Status          entity.Status       `json:"status"`
	IsCouncilMember bool                `json:"is_council_member"`
	PendingExpires  *time.Time          `json:"pending_expires_at,omitempty"`
	VerifiedAt      *time.Time          `json:"verified_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	Projects        entity.ProjectStats `json:"projects"`
}

// The pending code itself is never exposed.
func identityViewOf(i *entity.Identity, st entity.ProjectStats) identityView {
	v := identityView{
		PlatformID:      i.PlatformID,
		DisplayName:     i.DisplayName,
		Email:           i.Email,
		Status:          i.Status(),
		IsCouncilMember: i.IsCouncilMember,
		VerifiedAt:      timePtr(i.VerifiedAt()),
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
		Projects:        st,
	}
	if p, ok := i.Pending(); ok {
		v.PendingExpires = timePtr(p.ExpiresAt)
	}
	return v
}

func (h *IdentityHandler) Get(c *gin.Context) {
	var uri identityURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid platform id", validation.ToDetails(err))
		return
	}
	i, st, err := h.Svc.GetIdentity(c.Request.Context(), uri.PlatformID)
	if errors.Is(err, application.ErrIdentityNotFound) {
		response.Success(c, http.StatusOK, gin.H{"platform_id": uri.PlatformID, "status": entity.StatusUnregistered}, "identity not registered", nil)
		return
	}
	if err != nil {
		h.logError("get identity failed", err, uri.PlatformID)
		response.Error[any](c, http.StatusInternalServerError, "something went wrong", nil)
		return
	}
	response.Success(c, http.StatusOK, identityViewOf(i, st), "identity", nil)
}

func (h *IdentityHandler) SetCouncil(c *gin.Context) {
	var uri identityURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid platform id", validation.ToDetails(err))
		return
	}
	var req councilRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	i, err := h.Svc.SetCouncilMember(c.Request.Context(), uri.PlatformID, *req.Council)
	if errors.Is(err, application.ErrIdentityNotFound) {
		response.Error[any](c, http.StatusNotFound, "identity not found", nil)
		return
	}
	if err != nil {
		h.logError("set council failed", err, uri.PlatformID)
		response.Error[any](c, http.StatusInternalServerError, "something went wrong", nil)
		return
	}
	response.Success(c, http.StatusOK, identityViewOf(i, entity.ProjectStats{}), "council flag updated", nil)
}

// Search queries the member directory.
func (h *IdentityHandler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.SearchDirectory(c.Request.Context(), q.Q, q.Size)
	if errors.Is(err, application.ErrDirectoryOff) {
		response.Error[any](c, http.StatusServiceUnavailable, "directory not configured", nil)
		return
	}
	if err != nil {
		h.logError("directory search failed", err, "")
		response.Error[any](c, http.StatusBadGateway, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, res, "ok", map[string]any{"count": len(res)})
}

func (h *IdentityHandler) logError(msg string, err error, platformID string) {
	if h.Logger == nil {
		return
	}
	h.Logger.WithError(err).WithField("platform_id", platformID).Error(msg)
}
