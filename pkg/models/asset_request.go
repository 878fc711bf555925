package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetRequest is the create/update payload. Documents travel separately
// as multipart file parts.
type AssetRequest struct {
	Name               string          `json:"name" binding:"required"`
	Brand              string          `json:"brand"`
	Model              string          `json:"model"`
	SerialNumber       string          `json:"serial_number"`
	CategoryID         *int            `json:"category_id"`
	SubCategoryID      *int            `json:"sub_category_id"`
	DepartmentID       *int            `json:"department_id"`
	SubDepartmentID    *int            `json:"sub_department_id"`
	SupplierID         *int            `json:"supplier_id"`
	Quantity           int             `json:"quantity" binding:"omitempty,gte=1"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	WarrantyMonths     *int            `json:"warranty_months"`
	IsDepreciable      bool            `json:"is_depreciable"`
	DepreciableCost    decimal.Decimal `json:"depreciable_cost"`
	SalvageValue       decimal.Decimal `json:"salvage_value"`
	DepreciationMonths int             `json:"depreciation_months"`
	DepreciationMethod string          `json:"depreciation_method"`
	DateAcquired       *time.Time      `json:"date_acquired"`
	AssignTo           string          `json:"assign_to"`
	AssignUserID       *int            `json:"assign_user_id"`
	SiteID             *int            `json:"site_id"`
	AreaID             *int            `json:"area_id"`
}

// TransferAssetRequest asks to move custody of an asset to a user or a
// site/area, or to clear it. AssetID is taken from the URI.
type TransferAssetRequest struct {
	AssetID      int
	AssignTo     string `json:"assign_to" binding:"required"`
	AssignUserID *int   `json:"assign_user_id"`
	SiteID       *int   `json:"site_id"`
	AreaID       *int   `json:"area_id"`
}

// DisposeAssetRequest asks to retire an asset. The disposal document, if
// any, arrives as a multipart file part.
type DisposeAssetRequest struct {
	AssetID int
	Comment string `json:"comment"`
}
