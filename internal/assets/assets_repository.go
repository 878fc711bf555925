package assets

import (
	"fmt"

	"sams/internal/repository"
	custom_error "sams/pkg/errors"
	"sams/pkg/metadata"
	"sams/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
)

// AssetsRepository is the storage contract consumed by the lifecycle
// service. Write methods take the transaction they must join; read-side
// projections run outside any transaction.
type AssetsRepository interface {
	NextSequence(tx *goqu.TxDatabase, orgID int) (int, error)
	InsertAsset(tx *goqu.TxDatabase, asset *models.Asset) (int, error)
	UpdateAsset(tx *goqu.TxDatabase, asset *models.Asset) error
	UpdateAssetSnapshot(tx *goqu.TxDatabase, snap models.AssetSnapshot) error
	SoftDeleteAsset(tx *goqu.TxDatabase, id, orgID, version int, actor string) error
	GetAssetForUpdate(tx *goqu.TxDatabase, id, orgID int) (*models.Asset, error)

	GetActiveAssignment(tx *goqu.TxDatabase, assetID, orgID int) (*models.AssetAssigned, error)
	GetAssignment(tx *goqu.TxDatabase, id, orgID int) (*models.AssetAssigned, error)
	InsertAssignment(tx *goqu.TxDatabase, row *models.AssetAssigned) (int, error)
	CloseAssignment(tx *goqu.TxDatabase, id, version int, actor string) error
	SetAssignmentOutcome(tx *goqu.TxDatabase, id, version int, status metadata.AssignmentStatus, approval metadata.ApprovalStatus, actor string) error

	InsertHistory(tx *goqu.TxDatabase, assetID, orgID int, action, actor string) error
	InsertComment(tx *goqu.TxDatabase, comment models.Comment) error

	GetAsset(id, orgID int) (*models.Asset, error)
	ListAssets(orgID int) ([]models.Asset, error)
	ListAvailableAssets(orgID int) ([]models.Asset, error)
	GetAssetDetails(id, orgID int) (*AssetDetail, error)
	GetPendingApprovals(orgID int) ([]models.PendingApproval, error)
	GetAssetHistory(assetID, orgID int) ([]models.AssetHistory, error)
}

type assetsRepository struct {
	repo *repository.Repository
}

var _ AssetsRepository = (*assetsRepository)(nil)

func NewRepository(r *repository.Repository) AssetsRepository {
	return &assetsRepository{repo: r}
}

// NextSequence yields the tenant-scoped business sequence for a new asset
// code. The unique index on (organization_id, code) is the backstop when
// two creates race.
func (r *assetsRepository) NextSequence(tx *goqu.TxDatabase, orgID int) (int, error) {
	var next int
	_, err := tx.Select(goqu.L("COALESCE(MAX(id), 0) + 1")).
		From("assets").
		Where(goqu.Ex{"organization_id": orgID}).
		Executor().
		ScanVal(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch next asset sequence: %w", err)
	}
	return next, nil
}

func (r *assetsRepository) InsertAsset(tx *goqu.TxDatabase, asset *models.Asset) (int, error) {
	query := tx.Insert("assets").
		Rows(goqu.Record{
			"code":                asset.Code,
			"organization_id":     asset.OrganizationID,
			"name":                asset.Name,
			"brand":               asset.Brand,
			"model":               asset.Model,
			"serial_number":       asset.SerialNumber,
			"category_id":         asset.CategoryID,
			"sub_category_id":     asset.SubCategoryID,
			"department_id":       asset.DepartmentID,
			"sub_department_id":   asset.SubDepartmentID,
			"supplier_id":         asset.SupplierID,
			"quantity":            asset.Quantity,
			"unit_price":          asset.UnitPrice,
			"warranty_months":     asset.WarrantyMonths,
			"is_depreciable":      asset.IsDepreciable,
			"depreciable_cost":    asset.DepreciableCost,
			"salvage_value":       asset.SalvageValue,
			"depreciation_months": asset.DepreciationMonths,
			"depreciation_method": asset.DepreciationMethod,
			"date_acquired":       asset.DateAcquired,
			"assign_to":           asset.AssignTarget,
			"assigned_user_id":    asset.AssignedUserID,
			"site_id":             asset.SiteID,
			"area_id":             asset.AreaID,
			"status":              asset.Status,
			"is_available":        asset.IsAvailable,
			"image_path":          asset.ImagePath,
			"delivery_note_path":  asset.DeliveryNotePath,
			"receipt_path":        asset.ReceiptPath,
			"invoice_path":        asset.InvoicePath,
			"barcode":             asset.Barcode,
			"qr_code_path":        asset.QRCodePath,
			"created_by":          asset.CreatedBy,
		}).
		Returning("id")

	var id int
	if _, err := query.Executor().ScanVal(&id); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" {
				return 0, custom_error.WrapDBError("Duplicate asset code", string(pqErr.Code))
			}
		}
		return 0, fmt.Errorf("failed to insert asset record: %w", err)
	}

	return id, nil
}

// UpdateAsset writes the editable fields. Custody snapshot columns are
// deliberately not touched here; they change only through assignments.
func (r *assetsRepository) UpdateAsset(tx *goqu.TxDatabase, asset *models.Asset) error {
	result, err := tx.Update("assets").
		Set(goqu.Record{
			"name":                asset.Name,
			"brand":               asset.Brand,
			"model":               asset.Model,
			"serial_number":       asset.SerialNumber,
			"category_id":         asset.CategoryID,
			"sub_category_id":     asset.SubCategoryID,
			"department_id":       asset.DepartmentID,
			"sub_department_id":   asset.SubDepartmentID,
			"supplier_id":         asset.SupplierID,
			"quantity":            asset.Quantity,
			"unit_price":          asset.UnitPrice,
			"warranty_months":     asset.WarrantyMonths,
			"is_depreciable":      asset.IsDepreciable,
			"depreciable_cost":    asset.DepreciableCost,
			"salvage_value":       asset.SalvageValue,
			"depreciation_months": asset.DepreciationMonths,
			"depreciation_method": asset.DepreciationMethod,
			"date_acquired":       asset.DateAcquired,
			"image_path":          asset.ImagePath,
			"delivery_note_path":  asset.DeliveryNotePath,
			"receipt_path":        asset.ReceiptPath,
			"invoice_path":        asset.InvoicePath,
			"updated_by":          asset.UpdatedBy,
			"updated_at":          goqu.L("NOW()"),
			"version":             goqu.L("version + 1"),
		}).
		Where(goqu.Ex{
			"id":              asset.ID,
			"organization_id": asset.OrganizationID,
			"version":         asset.Version,
		}).
		Executor().
		Exec()
	if err != nil {
		return fmt.Errorf("failed to update asset %d: %w", asset.ID, err)
	}

	return requireRowAffected(result, custom_error.ErrVersionConflict)
}

// UpdateAssetSnapshot applies the denormalized custody fields after an
// assignment takes effect. Guarded by the asset version.
func (r *assetsRepository) UpdateAssetSnapshot(tx *goqu.TxDatabase, snap models.AssetSnapshot) error {
	result, err := tx.Update("assets").
		Set(goqu.Record{
			"assign_to":         snap.AssignTarget,
			"assigned_user_id":  snap.AssignedUserID,
			"site_id":           snap.SiteID,
			"area_id":           snap.AreaID,
			"status":            snap.Status,
			"is_available":      snap.IsAvailable,
			"disposed_at":       snap.DisposedAt,
			"disposal_document": snap.DisposalDocument,
			"updated_by":        snap.UpdatedBy,
			"updated_at":        goqu.L("NOW()"),
			"version":           goqu.L("version + 1"),
		}).
		Where(goqu.Ex{
			"id":              snap.ID,
			"organization_id": snap.OrganizationID,
			"version":         snap.Version,
		}).
		Executor().
		Exec()
	if err != nil {
		return fmt.Errorf("failed to update asset snapshot %d: %w", snap.ID, err)
	}

	return requireRowAffected(result, custom_error.ErrVersionConflict)
}

func (r *assetsRepository) SoftDeleteAsset(tx *goqu.TxDatabase, id, orgID, version int, actor string) error {
	result, err := tx.Update("assets").
		Set(goqu.Record{
			"cancelled":  true,
			"updated_by": actor,
			"updated_at": goqu.L("NOW()"),
			"version":    goqu.L("version + 1"),
		}).
		Where(goqu.Ex{
			"id":              id,
			"organization_id": orgID,
			"version":         version,
		}).
		Executor().
		Exec()
	if err != nil {
		return fmt.Errorf("failed to soft-delete asset %d: %w", id, err)
	}

	return requireRowAffected(result, custom_error.ErrVersionConflict)
}

func (r *assetsRepository) GetAssetForUpdate(tx *goqu.TxDatabase, id, orgID int) (*models.Asset, error) {
	var flat models.FlatAssetRow

	found, err := tx.From("assets").
		Where(goqu.Ex{
			"id":              id,
			"organization_id": orgID,
			"cancelled":       false,
		}).
		Executor().
		ScanStruct(&flat)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}
	if !found {
		return nil, custom_error.ErrAssetNotFound
	}

	return flat.TransformToAsset()
}

func (r *assetsRepository) GetActiveAssignment(tx *goqu.TxDatabase, assetID, orgID int) (*models.AssetAssigned, error) {
	var flat models.FlatAssignmentRow

	found, err := tx.From("asset_assignments").
		Where(goqu.Ex{
			"asset_id":        assetID,
			"organization_id": orgID,
			"cancelled":       false,
			"status":          []string{string(metadata.AssignmentAssigned), string(metadata.AssignmentReassigned)},
		}).
		Executor().
		ScanStruct(&flat)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}
	if !found {
		return nil, nil
	}

	return flat.TransformToAssignment()
}

func (r *assetsRepository) GetAssignment(tx *goqu.TxDatabase, id, orgID int) (*models.AssetAssigned, error) {
	var flat models.FlatAssignmentRow

	found, err := tx.From("asset_assignments").
		Where(goqu.Ex{
			"id":              id,
			"organization_id": orgID,
			"cancelled":       false,
		}).
		Executor().
		ScanStruct(&flat)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}
	if !found {
		return nil, custom_error.ErrAssignmentNotFound
	}

	return flat.TransformToAssignment()
}

func (r *assetsRepository) InsertAssignment(tx *goqu.TxDatabase, row *models.AssetAssigned) (int, error) {
	query := tx.Insert("asset_assignments").
		Rows(goqu.Record{
			"asset_id":        row.AssetID,
			"organization_id": row.OrganizationID,
			"assigned_from":   row.AssignedFrom,
			"user_id_from":    row.UserIDFrom,
			"site_id_from":    row.SiteIDFrom,
			"area_id_from":    row.AreaIDFrom,
			"assign_to":       row.AssignTarget,
			"user_id":         row.UserID,
			"site_id":         row.SiteID,
			"area_id":         row.AreaID,
			"status":            row.Status,
			"approval_status":   row.ApprovalStatus,
			"disposal_document": row.DisposalDoc,
			"comment":           row.Comment,
			"created_by":        row.CreatedBy,
		}).
		Returning("id")

	var id int
	if _, err := query.Executor().ScanVal(&id); err != nil {
		return 0, fmt.Errorf("failed to insert assignment record: %w", err)
	}

	return id, nil
}

// CloseAssignment marks a superseded custody row as unassigned. The row
// stays in the ledger; nothing is ever deleted from it.
func (r *assetsRepository) CloseAssignment(tx *goqu.TxDatabase, id, version int, actor string) error {
	result, err := tx.Update("asset_assignments").
		Set(goqu.Record{
			"status":     metadata.AssignmentUnassigned,
			"updated_by": actor,
			"updated_at": goqu.L("NOW()"),
			"version":    goqu.L("version + 1"),
		}).
		Where(goqu.Ex{
			"id":      id,
			"version": version,
		}).
		Executor().
		Exec()
	if err != nil {
		return fmt.Errorf("failed to close assignment %d: %w", id, err)
	}

	return requireRowAffected(result, custom_error.ErrVersionConflict)
}

func (r *assetsRepository) SetAssignmentOutcome(tx *goqu.TxDatabase, id, version int, status metadata.AssignmentStatus, approval metadata.ApprovalStatus, actor string) error {
	result, err := tx.Update("asset_assignments").
		Set(goqu.Record{
			"status":          status,
			"approval_status": approval,
			"updated_by":      actor,
			"updated_at":      goqu.L("NOW()"),
			"version":         goqu.L("version + 1"),
		}).
		Where(goqu.Ex{
			"id":      id,
			"version": version,
		}).
		Executor().
		Exec()
	if err != nil {
		return fmt.Errorf("failed to update assignment %d: %w", id, err)
	}

	return requireRowAffected(result, custom_error.ErrVersionConflict)
}

func (r *assetsRepository) InsertHistory(tx *goqu.TxDatabase, assetID, orgID int, action, actor string) error {
	_, err := tx.Insert("asset_history").
		Rows(goqu.Record{
			"asset_id":        assetID,
			"organization_id": orgID,
			"action":          action,
			"actor":           actor,
		}).
		Executor().
		Exec()
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}

	return nil
}

func (r *assetsRepository) InsertComment(tx *goqu.TxDatabase, comment models.Comment) error {
	_, err := tx.Insert("asset_comments").
		Rows(goqu.Record{
			"asset_id":        comment.AssetID,
			"organization_id": comment.OrganizationID,
			"text":            comment.Text,
			"is_admin":        comment.IsAdmin,
			"created_by":      comment.CreatedBy,
		}).
		Executor().
		Exec()
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}

	return nil
}

func requireRowAffected(result interface{ RowsAffected() (int64, error) }, conflictErr error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return conflictErr
	}
	return nil
}
