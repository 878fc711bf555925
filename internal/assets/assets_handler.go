package assets

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"sams/internal/uploads"
	custom_error "sams/pkg/errors"
	"sams/pkg/models"
	"sams/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AssetHandler struct {
	service *AssetService
	log     *zap.Logger
}

func NewAssetHandler(service *AssetService, log *zap.Logger) *AssetHandler {
	return &AssetHandler{service: service, log: log}
}

func (h *AssetHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/assets", h.CreateAsset)
	router.GET("/assets", h.ListAssets)
	router.GET("/assets/available", h.ListAvailableAssets)
	router.GET("/assets/:id", h.GetAsset)
	router.PUT("/assets/:id", h.UpdateAsset)
	router.DELETE("/assets/:id", h.DeleteAsset)
	router.POST("/assets/:id/transfer", h.TransferAsset)
	router.POST("/assets/:id/dispose", h.DisposeAsset)
	router.GET("/assets/:id/history", h.GetAssetHistory)
	router.GET("/assets/:id/depreciation", h.GetDepreciationSchedule)

	router.GET("/approvals", security.Authorize("admin"), h.GetPendingApprovals)
	router.POST("/approvals/:id/approve", security.Authorize("admin"), h.ApproveAssignment)
	router.POST("/approvals/:id/reject", security.Authorize("admin"), h.RejectAssignment)
}

func (h *AssetHandler) CreateAsset(c *gin.Context) {
	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
		return
	}

	req, docs, err := bindAssetRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	asset, err := h.service.CreateAsset(actor, req, docs)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, asset)
}

func (h *AssetHandler) ListAssets(c *gin.Context) {
	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
		return
	}

	assets, err := h.service.ListAssets(actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, assets)
}

func (h *AssetHandler) ListAvailableAssets(c *gin.Context) {
	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
		return
	}

	assets, err := h.service.ListAvailableAssets(actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, assets)
}

func (h *AssetHandler) GetAsset(c *gin.Context) {
	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
		return
	}

	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asset ID"})
		return
	}

	asset, err := h.service.GetAsset(actor, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, asset)
}

func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
		return
	}

	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asset ID"})
		return
	}

	req, docs, err := bindAssetRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	asset, err := h.service.UpdateAsset(actor, id, req, docs)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, asset)
}

func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
		return
	}

	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asset ID"})
		return
	}

	if err := h.service.DeleteAsset(actor, id); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Asset deleted"})
}

func (h *AssetHandler) TransferAsset(c *gin.Context) {
	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
		return
	}

	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asset ID"})
		return
	}

	var req struct {
		AssignTo     string `json:"assign_to" binding:"required"`
		AssignUserID *int   `json:"assign_user_id"`
		SiteID       *int   `json:"site_id"`
		AreaID       *int   `json:"area_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	message, err := h.service.TransferAsset(actor, models.TransferAssetRequest{
		AssetID:      id,
		AssignTo:     req.AssignTo,
		AssignUserID: req.AssignUserID,
		SiteID:       req.SiteID,
		AreaID:       req.AreaID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *AssetHandler) DisposeAsset(c *gin.Context) {
	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
		return
	}

	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asset ID"})
		return
	}

	var payload struct {
		Comment string `json:"comment"`
	}
	var doc *uploads.Document

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if data := c.PostForm("data"); data != "" {
			if err := json.Unmarshal([]byte(data), &payload); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
				return
			}
		}
		doc, err = formDocument(c, "disposal_document", uploads.CategoryDisposal)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	} else if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			return
		}
	}

	message, err := h.service.DisposeAsset(actor, models.DisposeAssetRequest{
		AssetID: id,
		Comment: payload.Comment,
	}, doc)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *AssetHandler) GetAssetHistory(c *gin.Context) {
	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
		return
	}

	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asset ID"})
		return
	}

	history, err := h.service.GetAssetHistory(actor, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

func (h *AssetHandler) GetDepreciationSchedule(c *gin.Context) {
	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
		return
	}

	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asset ID"})
		return
	}

	schedule, err := h.service.DepreciationSchedule(actor, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, schedule)
}

func (h *AssetHandler) GetPendingApprovals(c *gin.Context) {
	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
		return
	}

	approvals, err := h.service.GetPendingApprovals(actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, approvals)
}

func (h *AssetHandler) ApproveAssignment(c *gin.Context) {
	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
		return
	}

	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID"})
		return
	}

	if err := h.service.ApproveAssignment(actor, id); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Request approved"})
}

func (h *AssetHandler) RejectAssignment(c *gin.Context) {
	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
		return
	}

	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID"})
		return
	}

	if err := h.service.RejectAssignment(actor, id); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Request rejected"})
}

// respondError maps domain errors onto HTTP statuses. Internal details go to
// the log, never to the client.
func (h *AssetHandler) respondError(c *gin.Context, err error) {
	switch {
	case IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, custom_error.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "The record was modified by someone else, reload and retry"})
	case errors.Is(err, custom_error.ErrAlreadyProcessed):
		c.JSON(http.StatusConflict, gin.H{"error": "Request was already processed"})
	default:
		var unique *custom_error.UniqueViolationError
		if errors.As(err, &unique) {
			c.JSON(http.StatusConflict, gin.H{"error": unique.Error()})
			return
		}
		h.log.Error("asset operation failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func pathID(c *gin.Context) (int, error) {
	return strconv.Atoi(c.Param("id"))
}

// bindAssetRequest accepts a plain JSON body or a multipart form whose
// "data" field carries the JSON, with documents attached as file parts.
func bindAssetRequest(c *gin.Context) (req models.AssetRequest, docs []uploads.Document, err error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		err = c.ShouldBindJSON(&req)
		return
	}

	data := c.PostForm("data")
	if data == "" {
		err = errors.New("missing data field")
		return
	}
	if err = json.Unmarshal([]byte(data), &req); err != nil {
		return
	}
	if req.Name == "" {
		err = errors.New("name is required")
		return
	}

	fields := map[string]string{
		"image":         uploads.CategoryImage,
		"delivery_note": uploads.CategoryDeliveryNote,
		"receipt":       uploads.CategoryReceipt,
		"invoice":       uploads.CategoryInvoice,
	}
	for field, category := range fields {
		doc, ferr := formDocument(c, field, category)
		if ferr != nil {
			err = ferr
			return
		}
		if doc != nil {
			docs = append(docs, *doc)
		}
	}

	return
}

func formDocument(c *gin.Context, field, category string) (*uploads.Document, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}

	content, err := readMultipartFile(header)
	if err != nil {
		return nil, err
	}

	return &uploads.Document{
		Category: category,
		Filename: header.Filename,
		Content:  content,
	}, nil
}

func readMultipartFile(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}
