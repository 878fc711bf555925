package googlesheets

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"sams/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

type GoogleSheetsHandler struct {
	export *RegisterExportService
	log    *zap.Logger
}

// NewSheetsService builds the Sheets client from either the credentials JSON
// in the environment or a local credentials file.
func NewSheetsService(ctx context.Context) (*sheets.Service, error) {
	var credentials *google.Credentials
	var err error

	if credentialsJSON := os.Getenv("GOOGLE_SHEETS_CREDENTIALS_JSON"); credentialsJSON != "" {
		credentials, err = google.CredentialsFromJSON(ctx, []byte(credentialsJSON), sheets.SpreadsheetsScope)
	} else {
		credentialsFile := os.Getenv("SHEETS_CREDENTIALS_FILE")
		if credentialsFile == "" {
			credentialsFile = "configs/google-credentials.json"
		}
		b, readErr := os.ReadFile(credentialsFile)
		if readErr != nil {
			return nil, fmt.Errorf("could not read Google credentials file: %w", readErr)
		}
		credentials, err = google.CredentialsFromJSON(ctx, b, sheets.SpreadsheetsScope)
	}
	if err != nil {
		return nil, fmt.Errorf("could not load Google credentials: %w", err)
	}

	client := oauth2.NewClient(ctx, credentials.TokenSource)
	sheetsService, err := sheets.New(client)
	if err != nil {
		return nil, fmt.Errorf("could not create Google Sheets client: %w", err)
	}

	return sheetsService, nil
}

func NewGoogleSheetsHandler(export *RegisterExportService, log *zap.Logger) *GoogleSheetsHandler {
	return &GoogleSheetsHandler{export: export, log: log}
}

func (h *GoogleSheetsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/sheets/export", security.Authorize("admin"), h.ExportRegister)
}

func (h *GoogleSheetsHandler) ExportRegister(c *gin.Context) {
	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
		return
	}

	var req struct {
		SpreadsheetID string `json:"spreadsheet_id"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			return
		}
	}
	if req.SpreadsheetID == "" {
		req.SpreadsheetID = os.Getenv("ASSET_REGISTER_SPREADSHEET_ID")
	}
	if req.SpreadsheetID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No spreadsheet configured for export"})
		return
	}

	count, err := h.export.Export(actor.OrganizationID, req.SpreadsheetID)
	if err != nil {
		h.log.Error("asset register export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Asset register exported", "rows": count})
}
