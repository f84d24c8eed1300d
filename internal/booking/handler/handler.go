package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"booking_portal_backend/internal/attachments"
	"booking_portal_backend/internal/booking/domain"
	"booking_portal_backend/internal/booking/service"
	"booking_portal_backend/internal/booking/transport"
	"booking_portal_backend/platform/httpkit"
	"booking_portal_backend/platform/logger"
	"booking_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"

	maxMultipartMemory = 32 << 20
)

// Handler serves the booking wizard endpoints.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New registers the formfield tag used by SetFieldRequest on val.
func New(svc *service.Service, val *validator.Validator) (*Handler, error) {
	if err := val.RegisterValidation("formfield", domain.IsFormField); err != nil {
		return nil, fmt.Errorf("register formfield validation: %w", err)
	}
	return &Handler{svc: svc, val: val}, nil
}

// RegisterRoutes mounts the wizard under rg (/api/v1/booking).
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/drafts", h.ListDrafts)

	rg.POST("/sessions", h.Create)
	rg.GET("/sessions/:id", h.Get)
	rg.DELETE("/sessions/:id", h.Delete)
	rg.POST("/sessions/:id/service", h.SelectService)
	rg.POST("/sessions/:id/next", h.Next)
	rg.POST("/sessions/:id/back", h.Back)
	rg.PATCH("/sessions/:id/fields", h.SetField)
	rg.POST("/sessions/:id/location/begin", h.BeginLocation)
	rg.POST("/sessions/:id/location/complete", h.CompleteLocation)
	rg.POST("/sessions/:id/location/dismiss", h.DismissLocationPrompt)
	rg.POST("/sessions/:id/search", h.Search)
	rg.POST("/sessions/:id/suggestions/select", h.SelectSuggestion)
	rg.POST("/sessions/:id/photos", h.UploadPhotos)
	rg.DELETE("/sessions/:id/photos/:index", h.RemovePhoto)
	rg.POST("/sessions/:id/submit", h.Submit)
	rg.POST("/sessions/:id/draft", h.SaveDraft)
}

// sessionCall resolves the caller and the session id, or aborts.
func sessionCall(c *gin.Context) (uuid.UUID, string, bool) {
	caller, ok := httpkit.MustCaller(c)
	if !ok {
		return uuid.Nil, "", false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, "", false
	}
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.SessionIDKey, id.String()))
	return caller.UserID, id.String(), true
}

// bind decodes and validates a JSON body, or aborts.
func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return false
	}
	return true
}

// Create handles POST /api/v1/booking/sessions
func (h *Handler) Create(c *gin.Context) {
	caller, ok := httpkit.MustCaller(c)
	if !ok {
		return
	}

	var req transport.CreateSessionRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}

	view, err := h.svc.Create(c.Request.Context(), caller.UserID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, view)
}

func (h *Handler) Get(c *gin.Context) {
	userID, id, ok := sessionCall(c)
	if !ok {
		return
	}
	view, err := h.svc.Get(c.Request.Context(), userID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, view)
}

func (h *Handler) Delete(c *gin.Context) {
	userID, id, ok := sessionCall(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), userID, id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SelectService(c *gin.Context) {
	userID, id, ok := sessionCall(c)
	if !ok {
		return
	}
	var req transport.SelectServiceRequest
	if !h.bind(c, &req) {
		return
	}
	view, err := h.svc.SelectService(c.Request.Context(), userID, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, view)
}

func (h *Handler) Next(c *gin.Context) {
	userID, id, ok := sessionCall(c)
	if !ok {
		return
	}
	view, err := h.svc.Next(c.Request.Context(), userID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, view)
}

func (h *Handler) Back(c *gin.Context) {
	userID, id, ok := sessionCall(c)
	if !ok {
		return
	}
	view, err := h.svc.Back(c.Request.Context(), userID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, view)
}

func (h *Handler) SetField(c *gin.Context) {
	userID, id, ok := sessionCall(c)
	if !ok {
		return
	}
	var req transport.SetFieldRequest
	if !h.bind(c, &req) {
		return
	}
	view, err := h.svc.SetField(c.Request.Context(), userID, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, view)
}

func (h *Handler) BeginLocation(c *gin.Context) {
	userID, id, ok := sessionCall(c)
	if !ok {
		return
	}
	resp, err := h.svc.BeginLocation(c.Request.Context(), userID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) CompleteLocation(c *gin.Context) {
	userID, id, ok := sessionCall(c)
	if !ok {
		return
	}
	var req transport.LocationResultRequest
	if !h.bind(c, &req) {
		return
	}
	view, err := h.svc.CompleteLocation(c.Request.Context(), userID, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, view)
}

func (h *Handler) DismissLocationPrompt(c *gin.Context) {
	userID, id, ok := sessionCall(c)
	if !ok {
		return
	}
	view, err := h.svc.DismissLocationPrompt(c.Request.Context(), userID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, view)
}

func (h *Handler) Search(c *gin.Context) {
	userID, id, ok := sessionCall(c)
	if !ok {
		return
	}
	var req transport.SearchRequest
	if !h.bind(c, &req) {
		return
	}
	view, err := h.svc.Search(c.Request.Context(), userID, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, view)
}

func (h *Handler) SelectSuggestion(c *gin.Context) {
	userID, id, ok := sessionCall(c)
	if !ok {
		return
	}
	var req transport.SelectSuggestionRequest
	if !h.bind(c, &req) {
		return
	}
	view, err := h.svc.SelectSuggestion(c.Request.Context(), userID, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, view)
}

// UploadPhotos handles multipart uploads in the "photos" field.
func (h *Handler) UploadPhotos(c *gin.Context) {
	userID, id, ok := sessionCall(c)
	if !ok {
		return
	}
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	headers := c.Request.MultipartForm.File["photos"]
	files := make([]attachments.File, 0, len(headers))
	for _, fh := range headers {
		files = append(files, attachments.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Open:        func() (io.ReadCloser, error) { return fh.Open() },
		})
	}

	view, err := h.svc.UploadPhotos(c.Request.Context(), userID, id, files)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, view)
}

func (h *Handler) RemovePhoto(c *gin.Context) {
	userID, id, ok := sessionCall(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	view, err := h.svc.RemovePhoto(c.Request.Context(), userID, id, index)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, view)
}

func (h *Handler) Submit(c *gin.Context) {
	userID, id, ok := sessionCall(c)
	if !ok {
		return
	}
	resp, err := h.svc.Submit(c.Request.Context(), userID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) SaveDraft(c *gin.Context) {
	userID, id, ok := sessionCall(c)
	if !ok {
		return
	}
	resp, err := h.svc.SaveDraft(c.Request.Context(), userID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) ListDrafts(c *gin.Context) {
	if _, ok := httpkit.MustCaller(c); !ok {
		return
	}
	resp, err := h.svc.ListDrafts(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}
