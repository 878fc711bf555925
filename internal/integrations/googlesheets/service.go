package googlesheets

import (
	"fmt"
	"time"

	"sams/pkg/models"

	"google.golang.org/api/sheets/v4"
)

// AssetSource is the slice of the asset storage the export needs.
type AssetSource interface {
	ListAssets(orgID int) ([]models.Asset, error)
}

// RegisterExportService pushes the asset register of one organization into
// a spreadsheet, one asset per row.
type RegisterExportService struct {
	sheetsService *sheets.Service
	assets        AssetSource
}

func NewRegisterExportService(sheetsService *sheets.Service, assets AssetSource) *RegisterExportService {
	return &RegisterExportService{
		sheetsService: sheetsService,
		assets:        assets,
	}
}

var registerHeader = []interface{}{
	"Code", "Name", "Brand", "Model", "Serial Number", "Quantity",
	"Unit Price", "Status", "Assigned To", "Date Acquired", "Exported At",
}

// Export rewrites the register sheet starting at A1 and returns the number
// of asset rows written.
func (s *RegisterExportService) Export(orgID int, spreadsheetID string) (int, error) {
	assets, err := s.assets.ListAssets(orgID)
	if err != nil {
		return 0, fmt.Errorf("failed to load asset register: %w", err)
	}

	exportedAt := time.Now().Format(time.RFC3339)
	values := make([][]interface{}, 0, len(assets)+1)
	values = append(values, registerHeader)

	for i := range assets {
		values = append(values, registerRow(&assets[i], exportedAt))
	}

	valueRange := &sheets.ValueRange{Values: values}
	_, err = s.sheetsService.Spreadsheets.Values.
		Update(spreadsheetID, "A1", valueRange).
		ValueInputOption("RAW").
		Do()
	if err != nil {
		return 0, fmt.Errorf("failed to write asset register to spreadsheet: %w", err)
	}

	return len(assets), nil
}

func registerRow(asset *models.Asset, exportedAt string) []interface{} {
	acquired := ""
	if asset.DateAcquired != nil {
		acquired = asset.DateAcquired.Format("2006-01-02")
	}

	return []interface{}{
		asset.Code,
		asset.Name,
		asset.Brand,
		asset.Model,
		asset.SerialNumber,
		asset.Quantity,
		asset.UnitPrice.StringFixed(2),
		string(asset.Status),
		string(asset.AssignTarget),
		acquired,
		exportedAt,
	}
}
