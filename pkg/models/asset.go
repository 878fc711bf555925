package models

import (
	"time"

	"github.com/shopspring/decimal"

	"sams/pkg/metadata"
)

// Asset is one physical item. The assign_* columns are a denormalized
// snapshot of current custody; the authoritative trail is asset_assignments.
type Asset struct {
	ID                 int                          `json:"id" db:"id"`
	Code               string                       `json:"code" db:"code"`
	OrganizationID     int                          `json:"organization_id" db:"organization_id"`
	Name               string                       `json:"name" db:"name"`
	Brand              string                       `json:"brand" db:"brand"`
	Model              string                       `json:"model" db:"model"`
	SerialNumber       string                       `json:"serial_number" db:"serial_number"`
	CategoryID         *int                         `json:"category_id" db:"category_id"`
	SubCategoryID      *int                         `json:"sub_category_id" db:"sub_category_id"`
	DepartmentID       *int                         `json:"department_id" db:"department_id"`
	SubDepartmentID    *int                         `json:"sub_department_id" db:"sub_department_id"`
	SupplierID         *int                         `json:"supplier_id" db:"supplier_id"`
	Quantity           int                          `json:"quantity" db:"quantity"`
	UnitPrice          decimal.Decimal              `json:"unit_price" db:"unit_price"`
	WarrantyMonths     *int                         `json:"warranty_months" db:"warranty_months"`
	IsDepreciable      bool                         `json:"is_depreciable" db:"is_depreciable"`
	DepreciableCost    decimal.Decimal              `json:"depreciable_cost" db:"depreciable_cost"`
	SalvageValue       decimal.Decimal              `json:"salvage_value" db:"salvage_value"`
	DepreciationMonths int                          `json:"depreciation_months" db:"depreciation_months"`
	DepreciationMethod *metadata.DepreciationMethod `json:"depreciation_method" db:"depreciation_method"`
	DateAcquired       *time.Time                   `json:"date_acquired" db:"date_acquired"`
	AssignTarget       metadata.AssignTarget        `json:"assign_to" db:"assign_to"`
	AssignedUserID     *int                         `json:"assigned_user_id" db:"assigned_user_id"`
	SiteID             *int                         `json:"site_id" db:"site_id"`
	AreaID             *int                         `json:"area_id" db:"area_id"`
	Status             metadata.AssetStatus         `json:"status" db:"status"`
	IsAvailable        bool                         `json:"is_available" db:"is_available"`
	DisposedAt         *time.Time                   `json:"disposed_at" db:"disposed_at"`
	DisposalDocument   *string                      `json:"disposal_document" db:"disposal_document"`
	ImagePath          *string                      `json:"image_path" db:"image_path"`
	DeliveryNotePath   *string                      `json:"delivery_note_path" db:"delivery_note_path"`
	ReceiptPath        *string                      `json:"receipt_path" db:"receipt_path"`
	InvoicePath        *string                      `json:"invoice_path" db:"invoice_path"`
	Barcode            string                       `json:"barcode" db:"barcode"`
	QRCodePath         string                       `json:"qr_code_path" db:"qr_code_path"`
	Cancelled          bool                         `json:"-" db:"cancelled"`
	Version            int                          `json:"-" db:"version"`
	CreatedBy          string                       `json:"created_by" db:"created_by"`
	CreatedAt          time.Time                    `json:"created_at" db:"created_at"`
	UpdatedBy          *string                      `json:"updated_by" db:"updated_by"`
	UpdatedAt          *time.Time                   `json:"updated_at" db:"updated_at"`
}

// AssetSnapshot carries only the custody fields written back to the asset
// row when an assignment takes effect. Guarded by the row version.
type AssetSnapshot struct {
	ID               int
	OrganizationID   int
	AssignTarget     metadata.AssignTarget
	AssignedUserID   *int
	SiteID           *int
	AreaID           *int
	Status           metadata.AssetStatus
	IsAvailable      bool
	DisposedAt       *time.Time
	DisposalDocument *string
	Version          int
	UpdatedBy        string
}

// FlatAssetRow is the raw scan target for asset reads. Enum columns come
// back as strings and are decoded explicitly; an out-of-range stored value
// is an error, not a silent cast.
type FlatAssetRow struct {
	ID                 int             `db:"id"`
	Code               string          `db:"code"`
	OrganizationID     int             `db:"organization_id"`
	Name               string          `db:"name"`
	Brand              string          `db:"brand"`
	Model              string          `db:"model"`
	SerialNumber       string          `db:"serial_number"`
	CategoryID         *int            `db:"category_id"`
	SubCategoryID      *int            `db:"sub_category_id"`
	DepartmentID       *int            `db:"department_id"`
	SubDepartmentID    *int            `db:"sub_department_id"`
	SupplierID         *int            `db:"supplier_id"`
	Quantity           int             `db:"quantity"`
	UnitPrice          decimal.Decimal `db:"unit_price"`
	WarrantyMonths     *int            `db:"warranty_months"`
	IsDepreciable      bool            `db:"is_depreciable"`
	DepreciableCost    decimal.Decimal `db:"depreciable_cost"`
	SalvageValue       decimal.Decimal `db:"salvage_value"`
	DepreciationMonths int             `db:"depreciation_months"`
	DepreciationMethod *string         `db:"depreciation_method"`
	DateAcquired       *time.Time      `db:"date_acquired"`
	AssignTarget       string          `db:"assign_to"`
	AssignedUserID     *int            `db:"assigned_user_id"`
	SiteID             *int            `db:"site_id"`
	AreaID             *int            `db:"area_id"`
	Status             string          `db:"status"`
	IsAvailable        bool            `db:"is_available"`
	DisposedAt         *time.Time      `db:"disposed_at"`
	DisposalDocument   *string         `db:"disposal_document"`
	ImagePath          *string         `db:"image_path"`
	DeliveryNotePath   *string         `db:"delivery_note_path"`
	ReceiptPath        *string         `db:"receipt_path"`
	InvoicePath        *string         `db:"invoice_path"`
	Barcode            string          `db:"barcode"`
	QRCodePath         string          `db:"qr_code_path"`
	Cancelled          bool            `db:"cancelled"`
	Version            int             `db:"version"`
	CreatedBy          string          `db:"created_by"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedBy          *string         `db:"updated_by"`
	UpdatedAt          *time.Time      `db:"updated_at"`
}

func (f *FlatAssetRow) TransformToAsset() (*Asset, error) {
	status, err := metadata.NewAssetStatus(f.Status)
	if err != nil {
		return nil, err
	}
	target, err := metadata.NewAssignTarget(f.AssignTarget)
	if err != nil {
		return nil, err
	}

	var method *metadata.DepreciationMethod
	if f.DepreciationMethod != nil && *f.DepreciationMethod != "" {
		m, err := metadata.NewDepreciationMethod(*f.DepreciationMethod)
		if err != nil {
			return nil, err
		}
		method = &m
	}

	return &Asset{
		ID:                 f.ID,
		Code:               f.Code,
		OrganizationID:     f.OrganizationID,
		Name:               f.Name,
		Brand:              f.Brand,
		Model:              f.Model,
		SerialNumber:       f.SerialNumber,
		CategoryID:         f.CategoryID,
		SubCategoryID:      f.SubCategoryID,
		DepartmentID:       f.DepartmentID,
		SubDepartmentID:    f.SubDepartmentID,
		SupplierID:         f.SupplierID,
		Quantity:           f.Quantity,
		UnitPrice:          f.UnitPrice,
		WarrantyMonths:     f.WarrantyMonths,
		IsDepreciable:      f.IsDepreciable,
		DepreciableCost:    f.DepreciableCost,
		SalvageValue:       f.SalvageValue,
		DepreciationMonths: f.DepreciationMonths,
		DepreciationMethod: method,
		DateAcquired:       f.DateAcquired,
		AssignTarget:       target,
		AssignedUserID:     f.AssignedUserID,
		SiteID:             f.SiteID,
		AreaID:             f.AreaID,
		Status:             status,
		IsAvailable:        f.IsAvailable,
		DisposedAt:         f.DisposedAt,
		DisposalDocument:   f.DisposalDocument,
		ImagePath:          f.ImagePath,
		DeliveryNotePath:   f.DeliveryNotePath,
		ReceiptPath:        f.ReceiptPath,
		InvoicePath:        f.InvoicePath,
		Barcode:            f.Barcode,
		QRCodePath:         f.QRCodePath,
		Cancelled:          f.Cancelled,
		Version:            f.Version,
		CreatedBy:          f.CreatedBy,
		CreatedAt:          f.CreatedAt,
		UpdatedBy:          f.UpdatedBy,
		UpdatedAt:          f.UpdatedAt,
	}, nil
}
