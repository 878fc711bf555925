package assets

import (
	"errors"
	"fmt"
	"time"

	"sams/internal/depreciation"
	"sams/internal/repository"
	"sams/internal/uploads"
	custom_error "sams/pkg/errors"
	"sams/pkg/metadata"
	"sams/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"go.uber.org/zap"
)

// History actions written to the append-only trail.
const (
	actionCreated           = "Asset Created"
	actionUpdated           = "Asset Updated"
	actionDeleted           = "Asset Deleted"
	actionTransferred       = "Asset Transferred"
	actionTransferRequested = "Asset Transfer Requested"
	actionDisposed          = "Asset Disposed"
	actionDisposalRequested = "Asset Disposal Requested"
	actionRequestApproved   = "Asset Request Approved"
	actionRequestRejected   = "Asset Request Rejected"
)

// AssetService implements the asset lifecycle: create, update, soft delete,
// custody transfer, disposal and the admin approval gate. Every mutation runs
// in one transaction; file writes happen before it and are compensated if it
// fails.
type AssetService struct {
	repository AssetsRepository
	files      uploads.FileStore
	db         *goqu.Database
	log        *zap.Logger

	runTx func(db *goqu.Database, fn func(tx *goqu.TxDatabase) error) error
}

func NewAssetService(repo AssetsRepository, files uploads.FileStore, db *goqu.Database, log *zap.Logger) *AssetService {
	return &AssetService{
		repository: repo,
		files:      files,
		db:         db,
		log:        log,
		runTx:      repository.WithTransaction,
	}
}

// CreateAsset registers a new asset and, when the request names a custodian,
// writes the initial custody row as already approved regardless of the
// actor's role.
func (s *AssetService) CreateAsset(actor models.Actor, req models.AssetRequest, docs []uploads.Document) (*models.Asset, error) {
	target := metadata.TargetNotAssigned
	if req.AssignTo != "" {
		var err error
		target, err = metadata.NewAssignTarget(req.AssignTo)
		if err != nil {
			return nil, err
		}
	}
	if target == metadata.TargetDisposed {
		return nil, fmt.Errorf("cannot create an asset as disposed")
	}

	var method *metadata.DepreciationMethod
	if req.DepreciationMethod != "" {
		m, err := metadata.NewDepreciationMethod(req.DepreciationMethod)
		if err != nil {
			return nil, err
		}
		method = &m
	}

	saved, err := s.saveDocuments(docs)
	if err != nil {
		return nil, err
	}

	asset := &models.Asset{
		OrganizationID:     actor.OrganizationID,
		Name:               req.Name,
		Brand:              req.Brand,
		Model:              req.Model,
		SerialNumber:       req.SerialNumber,
		CategoryID:         req.CategoryID,
		SubCategoryID:      req.SubCategoryID,
		DepartmentID:       req.DepartmentID,
		SubDepartmentID:    req.SubDepartmentID,
		SupplierID:         req.SupplierID,
		Quantity:           req.Quantity,
		UnitPrice:          req.UnitPrice,
		WarrantyMonths:     req.WarrantyMonths,
		IsDepreciable:      req.IsDepreciable,
		DepreciableCost:    req.DepreciableCost,
		SalvageValue:       req.SalvageValue,
		DepreciationMonths: req.DepreciationMonths,
		DepreciationMethod: method,
		DateAcquired:       req.DateAcquired,
		AssignTarget:       target,
		Status:             metadata.AssetAvailable,
		IsAvailable:        true,
		CreatedBy:          actor.Username,
	}
	applyDocuments(asset, saved)

	if target != metadata.TargetNotAssigned {
		asset.AssignedUserID = req.AssignUserID
		asset.SiteID = req.SiteID
		asset.AreaID = req.AreaID
		asset.Status = metadata.AssetAssigned
		asset.IsAvailable = false
	}

	err = s.runTx(s.db, func(tx *goqu.TxDatabase) error {
		seq, err := s.repository.NextSequence(tx, actor.OrganizationID)
		if err != nil {
			return err
		}

		code := metadata.NewAssetCode(seq)
		asset.Code = code.GenerateCode()
		asset.Barcode = code.Barcode()
		asset.QRCodePath = code.QRImagePath()

		id, err := s.repository.InsertAsset(tx, asset)
		if err != nil {
			return err
		}
		asset.ID = id

		if target != metadata.TargetNotAssigned {
			row := &models.AssetAssigned{
				AssetID:        id,
				OrganizationID: actor.OrganizationID,
				AssignTarget:   target,
				UserID:         req.AssignUserID,
				SiteID:         req.SiteID,
				AreaID:         req.AreaID,
				Status:         metadata.AssignmentAssigned,
				ApprovalStatus: metadata.ApprovalApproved,
				CreatedBy:      actor.Username,
			}
			if _, err := s.repository.InsertAssignment(tx, row); err != nil {
				return err
			}
		}

		return s.repository.InsertHistory(tx, id, actor.OrganizationID, actionCreated, actor.Username)
	})
	if err != nil {
		s.compensateUploads(pathsOf(saved))
		return nil, err
	}

	return asset, nil
}

// UpdateAsset rewrites the editable fields and documents. Custody is never
// touched here; it changes only through transfer, disposal or approval.
func (s *AssetService) UpdateAsset(actor models.Actor, id int, req models.AssetRequest, docs []uploads.Document) (*models.Asset, error) {
	var method *metadata.DepreciationMethod
	if req.DepreciationMethod != "" {
		m, err := metadata.NewDepreciationMethod(req.DepreciationMethod)
		if err != nil {
			return nil, err
		}
		method = &m
	}

	saved, err := s.saveDocuments(docs)
	if err != nil {
		return nil, err
	}

	var updated *models.Asset
	err = s.runTx(s.db, func(tx *goqu.TxDatabase) error {
		asset, err := s.repository.GetAssetForUpdate(tx, id, actor.OrganizationID)
		if err != nil {
			return err
		}

		asset.Name = req.Name
		asset.Brand = req.Brand
		asset.Model = req.Model
		asset.SerialNumber = req.SerialNumber
		asset.CategoryID = req.CategoryID
		asset.SubCategoryID = req.SubCategoryID
		asset.DepartmentID = req.DepartmentID
		asset.SubDepartmentID = req.SubDepartmentID
		asset.SupplierID = req.SupplierID
		asset.Quantity = req.Quantity
		asset.UnitPrice = req.UnitPrice
		asset.WarrantyMonths = req.WarrantyMonths
		asset.IsDepreciable = req.IsDepreciable
		asset.DepreciableCost = req.DepreciableCost
		asset.SalvageValue = req.SalvageValue
		asset.DepreciationMonths = req.DepreciationMonths
		asset.DepreciationMethod = method
		asset.DateAcquired = req.DateAcquired
		asset.UpdatedBy = &actor.Username
		applyDocuments(asset, saved)

		if err := s.repository.UpdateAsset(tx, asset); err != nil {
			return err
		}
		if err := s.repository.InsertHistory(tx, id, actor.OrganizationID, actionUpdated, actor.Username); err != nil {
			return err
		}

		updated = asset
		return nil
	})
	if err != nil {
		s.compensateUploads(pathsOf(saved))
		return nil, err
	}

	return updated, nil
}

// DeleteAsset cancels the row. The asset and its ledger stay in place for
// audit; only listings stop showing it.
func (s *AssetService) DeleteAsset(actor models.Actor, id int) error {
	return s.runTx(s.db, func(tx *goqu.TxDatabase) error {
		asset, err := s.repository.GetAssetForUpdate(tx, id, actor.OrganizationID)
		if err != nil {
			return err
		}

		if err := s.repository.SoftDeleteAsset(tx, id, actor.OrganizationID, asset.Version, actor.Username); err != nil {
			return err
		}

		return s.repository.InsertHistory(tx, id, actor.OrganizationID, actionDeleted, actor.Username)
	})
}

// TransferAsset moves custody. An admin's transfer takes effect immediately;
// anyone else gets a hold row waiting in the approval queue, and the asset
// snapshot stays as it was.
func (s *AssetService) TransferAsset(actor models.Actor, req models.TransferAssetRequest) (string, error) {
	target, err := metadata.NewAssignTarget(req.AssignTo)
	if err != nil {
		return "", err
	}
	if target == metadata.TargetDisposed {
		return "", fmt.Errorf("disposal must go through the dispose operation")
	}

	message := "Asset transferred"
	err = s.runTx(s.db, func(tx *goqu.TxDatabase) error {
		asset, err := s.repository.GetAssetForUpdate(tx, req.AssetID, actor.OrganizationID)
		if err != nil {
			return err
		}

		active, err := s.repository.GetActiveAssignment(tx, req.AssetID, actor.OrganizationID)
		if err != nil {
			return err
		}

		row := newLedgerRow(actor, asset, active)
		row.AssignTarget = target
		row.UserID = req.AssignUserID
		row.SiteID = req.SiteID
		row.AreaID = req.AreaID

		if !actor.IsAdmin {
			row.Status = metadata.AssignmentHold
			row.ApprovalStatus = metadata.ApprovalPending
			if _, err := s.repository.InsertAssignment(tx, row); err != nil {
				return err
			}
			message = "Transfer submitted for approval"
			return s.repository.InsertHistory(tx, req.AssetID, actor.OrganizationID, actionTransferRequested, actor.Username)
		}

		row.Status = transferStatus(target, active)
		row.ApprovalStatus = metadata.ApprovalApproved

		if active != nil {
			if err := s.repository.CloseAssignment(tx, active.ID, active.Version, actor.Username); err != nil {
				return err
			}
		}
		if _, err := s.repository.InsertAssignment(tx, row); err != nil {
			return err
		}
		if err := s.repository.UpdateAssetSnapshot(tx, snapshotFor(asset, row, actor.Username)); err != nil {
			return err
		}

		return s.repository.InsertHistory(tx, req.AssetID, actor.OrganizationID, actionTransferred, actor.Username)
	})
	if err != nil {
		return "", err
	}

	return message, nil
}

// DisposeAsset retires an asset. Admins dispose immediately; other actors
// queue the disposal for approval with the document and comment attached to
// the pending row.
func (s *AssetService) DisposeAsset(actor models.Actor, req models.DisposeAssetRequest, doc *uploads.Document) (string, error) {
	var docPath *string
	if doc != nil {
		path, err := s.files.Save(uploads.CategoryDisposal, doc.Filename, doc.Content, uploads.DocumentExts)
		if err != nil {
			return "", err
		}
		docPath = &path
	}

	message := "Asset disposed"
	err := s.runTx(s.db, func(tx *goqu.TxDatabase) error {
		asset, err := s.repository.GetAssetForUpdate(tx, req.AssetID, actor.OrganizationID)
		if err != nil {
			return err
		}

		active, err := s.repository.GetActiveAssignment(tx, req.AssetID, actor.OrganizationID)
		if err != nil {
			return err
		}

		row := newLedgerRow(actor, asset, active)
		row.AssignTarget = metadata.TargetDisposed
		row.DisposalDoc = docPath
		if req.Comment != "" {
			row.Comment = &req.Comment
		}

		if !actor.IsAdmin {
			row.Status = metadata.AssignmentHold
			row.ApprovalStatus = metadata.ApprovalPending
			if _, err := s.repository.InsertAssignment(tx, row); err != nil {
				return err
			}
			message = "Disposal submitted for approval"
			return s.repository.InsertHistory(tx, req.AssetID, actor.OrganizationID, actionDisposalRequested, actor.Username)
		}

		row.Status = metadata.AssignmentDisposed
		row.ApprovalStatus = metadata.ApprovalApproved

		if active != nil {
			if err := s.repository.CloseAssignment(tx, active.ID, active.Version, actor.Username); err != nil {
				return err
			}
		}
		if _, err := s.repository.InsertAssignment(tx, row); err != nil {
			return err
		}
		if err := s.repository.UpdateAssetSnapshot(tx, snapshotFor(asset, row, actor.Username)); err != nil {
			return err
		}
		if req.Comment != "" {
			comment := models.Comment{
				AssetID:        req.AssetID,
				OrganizationID: actor.OrganizationID,
				Text:           req.Comment,
				IsAdmin:        actor.IsAdmin,
				CreatedBy:      actor.Username,
			}
			if err := s.repository.InsertComment(tx, comment); err != nil {
				return err
			}
		}

		return s.repository.InsertHistory(tx, req.AssetID, actor.OrganizationID, actionDisposed, actor.Username)
	})
	if err != nil {
		if docPath != nil {
			s.compensateUploads([]string{*docPath})
		}
		return "", err
	}

	return message, nil
}

// ApproveAssignment applies a pending custody change: the previous active
// row is closed, the pending row becomes the outcome, and the asset snapshot
// finally catches up with it.
func (s *AssetService) ApproveAssignment(actor models.Actor, assignmentID int) error {
	return s.runTx(s.db, func(tx *goqu.TxDatabase) error {
		row, err := s.repository.GetAssignment(tx, assignmentID, actor.OrganizationID)
		if err != nil {
			return err
		}
		if row.ApprovalStatus != metadata.ApprovalPending {
			return custom_error.ErrAlreadyProcessed
		}

		asset, err := s.repository.GetAssetForUpdate(tx, row.AssetID, actor.OrganizationID)
		if err != nil {
			return err
		}

		active, err := s.repository.GetActiveAssignment(tx, row.AssetID, actor.OrganizationID)
		if err != nil {
			return err
		}
		if active != nil && active.ID != row.ID {
			if err := s.repository.CloseAssignment(tx, active.ID, active.Version, actor.Username); err != nil {
				return err
			}
		}

		var status metadata.AssignmentStatus
		switch row.AssignTarget {
		case metadata.TargetDisposed:
			status = metadata.AssignmentDisposed
		default:
			status = transferStatus(row.AssignTarget, active)
		}

		if err := s.repository.SetAssignmentOutcome(tx, row.ID, row.Version, status, metadata.ApprovalApproved, actor.Username); err != nil {
			return err
		}

		row.Status = status
		if err := s.repository.UpdateAssetSnapshot(tx, snapshotFor(asset, row, actor.Username)); err != nil {
			return err
		}

		if row.AssignTarget == metadata.TargetDisposed && row.Comment != nil {
			comment := models.Comment{
				AssetID:        row.AssetID,
				OrganizationID: actor.OrganizationID,
				Text:           *row.Comment,
				IsAdmin:        actor.IsAdmin,
				CreatedBy:      row.CreatedBy,
			}
			if err := s.repository.InsertComment(tx, comment); err != nil {
				return err
			}
		}

		return s.repository.InsertHistory(tx, row.AssetID, actor.OrganizationID, actionRequestApproved, actor.Username)
	})
}

// RejectAssignment closes a pending row without touching the asset. The
// rejected row stays in the ledger as part of the trail.
func (s *AssetService) RejectAssignment(actor models.Actor, assignmentID int) error {
	return s.runTx(s.db, func(tx *goqu.TxDatabase) error {
		row, err := s.repository.GetAssignment(tx, assignmentID, actor.OrganizationID)
		if err != nil {
			return err
		}
		if row.ApprovalStatus != metadata.ApprovalPending {
			return custom_error.ErrAlreadyProcessed
		}

		if err := s.repository.SetAssignmentOutcome(tx, row.ID, row.Version, metadata.AssignmentUnassigned, metadata.ApprovalRejected, actor.Username); err != nil {
			return err
		}

		return s.repository.InsertHistory(tx, row.AssetID, actor.OrganizationID, actionRequestRejected, actor.Username)
	})
}

func (s *AssetService) GetAsset(actor models.Actor, id int) (*AssetDetail, error) {
	detail, err := s.repository.GetAssetDetails(id, actor.OrganizationID)
	if err != nil {
		return nil, err
	}

	if detail.IsDepreciable && detail.DepreciationMethod != nil && detail.DateAcquired != nil {
		detail.DepreciationSchedule = depreciation.Schedule(depreciation.Input{
			Cost:     detail.DepreciableCost,
			Salvage:  detail.SalvageValue,
			Months:   detail.DepreciationMonths,
			Method:   *detail.DepreciationMethod,
			Acquired: *detail.DateAcquired,
		})
	}

	return detail, nil
}

func (s *AssetService) ListAssets(actor models.Actor) ([]models.Asset, error) {
	return s.repository.ListAssets(actor.OrganizationID)
}

func (s *AssetService) ListAvailableAssets(actor models.Actor) ([]models.Asset, error) {
	return s.repository.ListAvailableAssets(actor.OrganizationID)
}

func (s *AssetService) GetPendingApprovals(actor models.Actor) ([]models.PendingApproval, error) {
	return s.repository.GetPendingApprovals(actor.OrganizationID)
}

func (s *AssetService) GetAssetHistory(actor models.Actor, assetID int) ([]models.AssetHistory, error) {
	if _, err := s.repository.GetAsset(assetID, actor.OrganizationID); err != nil {
		return nil, err
	}
	return s.repository.GetAssetHistory(assetID, actor.OrganizationID)
}

// DepreciationSchedule computes the book-value table for one asset.
func (s *AssetService) DepreciationSchedule(actor models.Actor, assetID int) ([]depreciation.YearRow, error) {
	asset, err := s.repository.GetAsset(assetID, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	if !asset.IsDepreciable || asset.DepreciationMethod == nil {
		return nil, fmt.Errorf("asset %s is not depreciable", asset.Code)
	}

	acquired := time.Now()
	if asset.DateAcquired != nil {
		acquired = *asset.DateAcquired
	}

	return depreciation.Schedule(depreciation.Input{
		Cost:     asset.DepreciableCost,
		Salvage:  asset.SalvageValue,
		Months:   asset.DepreciationMonths,
		Method:   *asset.DepreciationMethod,
		Acquired: acquired,
	}), nil
}

// newLedgerRow starts a transition row whose FROM side captures the current
// custody snapshot and links the active chain.
func newLedgerRow(actor models.Actor, asset *models.Asset, active *models.AssetAssigned) *models.AssetAssigned {
	row := &models.AssetAssigned{
		AssetID:        asset.ID,
		OrganizationID: actor.OrganizationID,
		UserIDFrom:     asset.AssignedUserID,
		SiteIDFrom:     asset.SiteID,
		AreaIDFrom:     asset.AreaID,
		CreatedBy:      actor.Username,
	}
	if active != nil {
		row.AssignedFrom = &active.ID
	}
	return row
}

// transferStatus picks the ledger status for a custody change: the first
// assignment is "assigned", a supersede is "reassigned", a clear is
// "unassigned".
func transferStatus(target metadata.AssignTarget, active *models.AssetAssigned) metadata.AssignmentStatus {
	if target == metadata.TargetNotAssigned {
		return metadata.AssignmentUnassigned
	}
	if active != nil {
		return metadata.AssignmentReassigned
	}
	return metadata.AssignmentAssigned
}

// snapshotFor derives the denormalized custody columns from a ledger row
// that has taken effect.
func snapshotFor(asset *models.Asset, row *models.AssetAssigned, actor string) models.AssetSnapshot {
	snap := models.AssetSnapshot{
		ID:               asset.ID,
		OrganizationID:   asset.OrganizationID,
		AssignTarget:     row.AssignTarget,
		AssignedUserID:   row.UserID,
		SiteID:           row.SiteID,
		AreaID:           row.AreaID,
		Status:           metadata.AssetAssigned,
		IsAvailable:      false,
		DisposedAt:       asset.DisposedAt,
		DisposalDocument: asset.DisposalDocument,
		Version:          asset.Version,
		UpdatedBy:        actor,
	}

	switch row.AssignTarget {
	case metadata.TargetNotAssigned:
		snap.Status = metadata.AssetAvailable
		snap.IsAvailable = true
	case metadata.TargetDisposed:
		now := time.Now()
		snap.Status = metadata.AssetExpired
		snap.DisposedAt = &now
		snap.DisposalDocument = row.DisposalDoc
	}

	return snap
}

// saveDocuments writes all uploads up front and returns category -> path.
// On any failure the files already written are rolled back immediately.
func (s *AssetService) saveDocuments(docs []uploads.Document) (map[string]string, error) {
	saved := make(map[string]string, len(docs))
	for _, doc := range docs {
		path, err := s.files.Save(doc.Category, doc.Filename, doc.Content, uploads.DocumentExts)
		if err != nil {
			paths := make([]string, 0, len(saved))
			for _, p := range saved {
				paths = append(paths, p)
			}
			s.files.Remove(paths...)
			return nil, err
		}
		saved[doc.Category] = path
	}
	return saved, nil
}

// compensateUploads removes files written before a transaction that later
// failed. Runs off the request path; Remove logs its own failures.
func (s *AssetService) compensateUploads(paths []string) {
	if len(paths) == 0 {
		return
	}
	go s.files.Remove(paths...)
}

func pathsOf(saved map[string]string) []string {
	paths := make([]string, 0, len(saved))
	for _, p := range saved {
		paths = append(paths, p)
	}
	return paths
}

func applyDocuments(asset *models.Asset, saved map[string]string) {
	if p, ok := saved[uploads.CategoryImage]; ok {
		asset.ImagePath = &p
	}
	if p, ok := saved[uploads.CategoryDeliveryNote]; ok {
		asset.DeliveryNotePath = &p
	}
	if p, ok := saved[uploads.CategoryReceipt]; ok {
		asset.ReceiptPath = &p
	}
	if p, ok := saved[uploads.CategoryInvoice]; ok {
		asset.InvoicePath = &p
	}
}

// IsNotFound reports whether err maps to a missing-resource response.
func IsNotFound(err error) bool {
	return errors.Is(err, custom_error.ErrAssetNotFound) || errors.Is(err, custom_error.ErrAssignmentNotFound)
}
