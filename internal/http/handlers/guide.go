package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/scholarai/scholar-backend/internal/http/response"
	"github.com/scholarai/scholar-backend/internal/platform/apierr"
	"github.com/scholarai/scholar-backend/internal/platform/ctxutil"
	"github.com/scholarai/scholar-backend/internal/platform/logger"
	"github.com/scholarai/scholar-backend/internal/services"
)

type GuideHandler struct {
	log      *logger.Logger
	guides   services.GuideService
	replan   services.Replanner
	nudge    services.NudgeService
	exporter services.ExportService
}

func NewGuideHandler(
	log *logger.Logger,
	guideService services.GuideService,
	replanner services.Replanner,
	nudgeService services.NudgeService,
	exportService services.ExportService,
) *GuideHandler {
	return &GuideHandler{
		log:      log.With("handler", "GuideHandler"),
		guides:   guideService,
		replan:   replanner,
		nudge:    nudgeService,
		exporter: exportService,
	}
}

func (h *GuideHandler) currentUser(c *gin.Context) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, apierr.AuthFailed(fmt.Errorf("no authenticated user on request"))
	}
	return rd.UserID, nil
}

const maxUploadBytes = 100 << 20

// Upload ingests a multipart file plus optional goals and returns the
// freshly generated guide.
func (h *GuideHandler) Upload(c *gin.Context) {
	userID, err := h.currentUser(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.RespondAPIError(c, apierr.InvalidRequest(fmt.Errorf("missing file field: %w", err)))
		return
	}
	if fileHeader.Size > maxUploadBytes {
		response.RespondAPIError(c, apierr.InvalidRequest(fmt.Errorf("file too large: %d bytes", fileHeader.Size)))
		return
	}
	goals := c.PostForm("goals")

	tmpDir, err := os.MkdirTemp("", "upload_*")
	if err != nil {
		response.RespondAPIError(c, fmt.Errorf("temp dir: %w", err))
		return
	}
	defer os.RemoveAll(tmpDir)

	localPath := filepath.Join(tmpDir, filepath.Base(fileHeader.Filename))
	if err := c.SaveUploadedFile(fileHeader, localPath); err != nil {
		response.RespondAPIError(c, fmt.Errorf("save upload: %w", err))
		return
	}

	guide, err := h.guides.CreateFromUpload(c.Request.Context(), userID, localPath, fileHeader.Filename, goals)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, guide)
}

func (h *GuideHandler) List(c *gin.Context) {
	userID, err := h.currentUser(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	summaries, err := h.guides.List(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, summaries)
}

func (h *GuideHandler) Get(c *gin.Context) {
	id, err := parseGuideID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	guide, err := h.guides.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, guide)
}

func (h *GuideHandler) Delete(c *gin.Context) {
	id, err := parseGuideID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if err := h.guides.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": id})
}

type progressRequest struct {
	SessionIndex int  `json:"session_index"`
	Completed    bool `json:"completed"`
}

func (h *GuideHandler) UpdateProgress(c *gin.Context) {
	id, err := parseGuideID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, apierr.InvalidRequest(fmt.Errorf("bad progress body: %w", err)))
		return
	}
	guide, err := h.guides.SetSessionCompleted(c.Request.Context(), id, req.SessionIndex, req.Completed)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, guide)
}

type replanRequest struct {
	MissedReason string `json:"missed_reason"`
}

func (h *GuideHandler) Replan(c *gin.Context) {
	id, err := parseGuideID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var req replanRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondAPIError(c, apierr.InvalidRequest(fmt.Errorf("bad replan body: %w", err)))
		return
	}
	guide, err := h.replan.Replan(c.Request.Context(), id, req.MissedReason)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, guide)
}

type motivationRequest struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

func (h *GuideHandler) Motivation(c *gin.Context) {
	var req motivationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, apierr.InvalidRequest(fmt.Errorf("bad motivation body: %w", err)))
		return
	}
	msg, err := h.nudge.Motivation(c.Request.Context(), req.Completed, req.Total)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": msg})
}

func (h *GuideHandler) Export(c *gin.Context) {
	id, err := parseGuideID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	variant := c.Param("variant")

	guide, err := h.guides.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	doc, err := h.exporter.Render(guide, variant)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Bytes)
}

func parseGuideID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apierr.InvalidRequest(fmt.Errorf("bad guide id %q", c.Param("id")))
	}
	return id, nil
}
