package assets

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"sams/internal/uploads"
	custom_error "sams/pkg/errors"
	"sams/pkg/metadata"
	"sams/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type repositoryMock struct {
	mock.Mock
}

func (m *repositoryMock) NextSequence(tx *goqu.TxDatabase, orgID int) (int, error) {
	args := m.Called(tx, orgID)
	return args.Int(0), args.Error(1)
}

func (m *repositoryMock) InsertAsset(tx *goqu.TxDatabase, asset *models.Asset) (int, error) {
	args := m.Called(tx, asset)
	return args.Int(0), args.Error(1)
}

func (m *repositoryMock) UpdateAsset(tx *goqu.TxDatabase, asset *models.Asset) error {
	return m.Called(tx, asset).Error(0)
}

func (m *repositoryMock) UpdateAssetSnapshot(tx *goqu.TxDatabase, snap models.AssetSnapshot) error {
	return m.Called(tx, snap).Error(0)
}

func (m *repositoryMock) SoftDeleteAsset(tx *goqu.TxDatabase, id, orgID, version int, actor string) error {
	return m.Called(tx, id, orgID, version, actor).Error(0)
}

func (m *repositoryMock) GetAssetForUpdate(tx *goqu.TxDatabase, id, orgID int) (*models.Asset, error) {
	args := m.Called(tx, id, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Asset), args.Error(1)
}

func (m *repositoryMock) GetActiveAssignment(tx *goqu.TxDatabase, assetID, orgID int) (*models.AssetAssigned, error) {
	args := m.Called(tx, assetID, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AssetAssigned), args.Error(1)
}

func (m *repositoryMock) GetAssignment(tx *goqu.TxDatabase, id, orgID int) (*models.AssetAssigned, error) {
	args := m.Called(tx, id, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AssetAssigned), args.Error(1)
}

func (m *repositoryMock) InsertAssignment(tx *goqu.TxDatabase, row *models.AssetAssigned) (int, error) {
	args := m.Called(tx, row)
	return args.Int(0), args.Error(1)
}

func (m *repositoryMock) CloseAssignment(tx *goqu.TxDatabase, id, version int, actor string) error {
	return m.Called(tx, id, version, actor).Error(0)
}

func (m *repositoryMock) SetAssignmentOutcome(tx *goqu.TxDatabase, id, version int, status metadata.AssignmentStatus, approval metadata.ApprovalStatus, actor string) error {
	return m.Called(tx, id, version, status, approval, actor).Error(0)
}

func (m *repositoryMock) InsertHistory(tx *goqu.TxDatabase, assetID, orgID int, action, actor string) error {
	return m.Called(tx, assetID, orgID, action, actor).Error(0)
}

func (m *repositoryMock) InsertComment(tx *goqu.TxDatabase, comment models.Comment) error {
	return m.Called(tx, comment).Error(0)
}

func (m *repositoryMock) GetAsset(id, orgID int) (*models.Asset, error) {
	args := m.Called(id, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Asset), args.Error(1)
}

func (m *repositoryMock) ListAssets(orgID int) ([]models.Asset, error) {
	args := m.Called(orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Asset), args.Error(1)
}

func (m *repositoryMock) ListAvailableAssets(orgID int) ([]models.Asset, error) {
	args := m.Called(orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Asset), args.Error(1)
}

func (m *repositoryMock) GetAssetDetails(id, orgID int) (*AssetDetail, error) {
	args := m.Called(id, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AssetDetail), args.Error(1)
}

func (m *repositoryMock) GetPendingApprovals(orgID int) ([]models.PendingApproval, error) {
	args := m.Called(orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PendingApproval), args.Error(1)
}

func (m *repositoryMock) GetAssetHistory(assetID, orgID int) ([]models.AssetHistory, error) {
	args := m.Called(assetID, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AssetHistory), args.Error(1)
}

type stubFiles struct {
	saves   int
	removed chan []string
}

func newStubFiles() *stubFiles {
	return &stubFiles{removed: make(chan []string, 1)}
}

func (s *stubFiles) Save(category, filename string, content []byte, allowedExts []string) (string, error) {
	s.saves++
	return fmt.Sprintf("%s/%d-%s", category, s.saves, filename), nil
}

func (s *stubFiles) Remove(paths ...string) {
	s.removed <- paths
}

func newTestService(repo *repositoryMock, files uploads.FileStore) *AssetService {
	service := NewAssetService(repo, files, nil, zap.NewNop())
	service.runTx = func(_ *goqu.Database, fn func(tx *goqu.TxDatabase) error) error {
		return fn(nil)
	}
	return service
}

func admin() models.Actor {
	return models.Actor{OrganizationID: 1, UserID: 7, Username: "boss", IsAdmin: true}
}

func staff() models.Actor {
	return models.Actor{OrganizationID: 1, UserID: 9, Username: "clerk", IsAdmin: false}
}

func intPtr(v int) *int { return &v }

func custodyAsset(version int) *models.Asset {
	return &models.Asset{
		ID:             42,
		Code:           "AST-00042",
		OrganizationID: 1,
		Name:           "Laptop",
		AssignTarget:   metadata.TargetUser,
		AssignedUserID: intPtr(3),
		Status:         metadata.AssetAssigned,
		IsAvailable:    false,
		Version:        version,
	}
}

func activeAssignment() *models.AssetAssigned {
	return &models.AssetAssigned{
		ID:             100,
		AssetID:        42,
		OrganizationID: 1,
		AssignTarget:   metadata.TargetUser,
		UserID:         intPtr(3),
		Status:         metadata.AssignmentAssigned,
		ApprovalStatus: metadata.ApprovalApproved,
		Version:        2,
	}
}

func TestCreateAssetWritesApprovedInitialAssignment(t *testing.T) {
	repo := new(repositoryMock)
	service := newTestService(repo, newStubFiles())

	repo.On("NextSequence", mock.Anything, 1).Return(5, nil)
	repo.On("InsertAsset", mock.Anything, mock.MatchedBy(func(a *models.Asset) bool {
		return a.Code == "AST-00005" &&
			a.Status == metadata.AssetAssigned &&
			!a.IsAvailable &&
			a.AssignTarget == metadata.TargetUser
	})).Return(11, nil)
	repo.On("InsertAssignment", mock.Anything, mock.MatchedBy(func(row *models.AssetAssigned) bool {
		return row.AssetID == 11 &&
			row.Status == metadata.AssignmentAssigned &&
			row.ApprovalStatus == metadata.ApprovalApproved
	})).Return(200, nil)
	repo.On("InsertHistory", mock.Anything, 11, 1, "Asset Created", "boss").Return(nil)

	asset, err := service.CreateAsset(admin(), models.AssetRequest{
		Name:         "Laptop",
		Quantity:     1,
		AssignTo:     "user",
		AssignUserID: intPtr(3),
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, "AST-00005", asset.Code)
	assert.Equal(t, "AST-00005", asset.Barcode)
	repo.AssertExpectations(t)
}

func TestCreateAssetUnassignedStaysAvailable(t *testing.T) {
	repo := new(repositoryMock)
	service := newTestService(repo, newStubFiles())

	repo.On("NextSequence", mock.Anything, 1).Return(1, nil)
	repo.On("InsertAsset", mock.Anything, mock.MatchedBy(func(a *models.Asset) bool {
		return a.Status == metadata.AssetAvailable && a.IsAvailable
	})).Return(1, nil)
	repo.On("InsertHistory", mock.Anything, 1, 1, "Asset Created", "clerk").Return(nil)

	_, err := service.CreateAsset(staff(), models.AssetRequest{Name: "Chair", Quantity: 2}, nil)

	assert.NoError(t, err)
	repo.AssertNotCalled(t, "InsertAssignment", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestCreateAssetCompensatesUploadsOnFailure(t *testing.T) {
	repo := new(repositoryMock)
	files := newStubFiles()
	service := newTestService(repo, files)

	repo.On("NextSequence", mock.Anything, 1).Return(0, errors.New("db down"))

	_, err := service.CreateAsset(admin(), models.AssetRequest{Name: "Printer", Quantity: 1}, []uploads.Document{
		{Category: uploads.CategoryInvoice, Filename: "invoice.pdf", Content: []byte("x")},
	})

	assert.Error(t, err)
	select {
	case removed := <-files.removed:
		assert.Len(t, removed, 1)
	case <-time.After(time.Second):
		t.Fatal("expected uploaded file to be removed after rollback")
	}
}

func TestCreateAssetRejectsDisposedTarget(t *testing.T) {
	service := newTestService(new(repositoryMock), newStubFiles())

	_, err := service.CreateAsset(admin(), models.AssetRequest{Name: "X", AssignTo: "disposed"}, nil)

	assert.Error(t, err)
}

func TestTransferByAdminTakesEffectImmediately(t *testing.T) {
	repo := new(repositoryMock)
	service := newTestService(repo, newStubFiles())
	asset := custodyAsset(4)

	repo.On("GetAssetForUpdate", mock.Anything, 42, 1).Return(asset, nil)
	repo.On("GetActiveAssignment", mock.Anything, 42, 1).Return(activeAssignment(), nil)
	repo.On("CloseAssignment", mock.Anything, 100, 2, "boss").Return(nil)
	repo.On("InsertAssignment", mock.Anything, mock.MatchedBy(func(row *models.AssetAssigned) bool {
		return row.Status == metadata.AssignmentReassigned &&
			row.ApprovalStatus == metadata.ApprovalApproved &&
			row.AssignedFrom != nil && *row.AssignedFrom == 100 &&
			row.UserIDFrom != nil && *row.UserIDFrom == 3 &&
			row.SiteID != nil && *row.SiteID == 8
	})).Return(201, nil)
	repo.On("UpdateAssetSnapshot", mock.Anything, mock.MatchedBy(func(snap models.AssetSnapshot) bool {
		return snap.AssignTarget == metadata.TargetSite &&
			snap.SiteID != nil && *snap.SiteID == 8 &&
			snap.AssignedUserID == nil &&
			snap.Status == metadata.AssetAssigned &&
			!snap.IsAvailable &&
			snap.Version == 4
	})).Return(nil)
	repo.On("InsertHistory", mock.Anything, 42, 1, "Asset Transferred", "boss").Return(nil)

	message, err := service.TransferAsset(admin(), models.TransferAssetRequest{
		AssetID:  42,
		AssignTo: "site",
		SiteID:   intPtr(8),
	})

	assert.NoError(t, err)
	assert.Equal(t, "Asset transferred", message)
	repo.AssertExpectations(t)
}

func TestTransferByNonAdminQueuesForApproval(t *testing.T) {
	repo := new(repositoryMock)
	service := newTestService(repo, newStubFiles())

	repo.On("GetAssetForUpdate", mock.Anything, 42, 1).Return(custodyAsset(4), nil)
	repo.On("GetActiveAssignment", mock.Anything, 42, 1).Return(activeAssignment(), nil)
	repo.On("InsertAssignment", mock.Anything, mock.MatchedBy(func(row *models.AssetAssigned) bool {
		return row.Status == metadata.AssignmentHold &&
			row.ApprovalStatus == metadata.ApprovalPending
	})).Return(201, nil)
	repo.On("InsertHistory", mock.Anything, 42, 1, "Asset Transfer Requested", "clerk").Return(nil)

	message, err := service.TransferAsset(staff(), models.TransferAssetRequest{
		AssetID:      42,
		AssignTo:     "user",
		AssignUserID: intPtr(5),
	})

	assert.NoError(t, err)
	assert.Equal(t, "Transfer submitted for approval", message)
	repo.AssertNotCalled(t, "CloseAssignment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "UpdateAssetSnapshot", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestTransferToClearCustody(t *testing.T) {
	repo := new(repositoryMock)
	service := newTestService(repo, newStubFiles())

	repo.On("GetAssetForUpdate", mock.Anything, 42, 1).Return(custodyAsset(4), nil)
	repo.On("GetActiveAssignment", mock.Anything, 42, 1).Return(activeAssignment(), nil)
	repo.On("CloseAssignment", mock.Anything, 100, 2, "boss").Return(nil)
	repo.On("InsertAssignment", mock.Anything, mock.MatchedBy(func(row *models.AssetAssigned) bool {
		return row.Status == metadata.AssignmentUnassigned &&
			row.AssignTarget == metadata.TargetNotAssigned
	})).Return(202, nil)
	repo.On("UpdateAssetSnapshot", mock.Anything, mock.MatchedBy(func(snap models.AssetSnapshot) bool {
		return snap.Status == metadata.AssetAvailable && snap.IsAvailable
	})).Return(nil)
	repo.On("InsertHistory", mock.Anything, 42, 1, "Asset Transferred", "boss").Return(nil)

	_, err := service.TransferAsset(admin(), models.TransferAssetRequest{
		AssetID:  42,
		AssignTo: "not_assigned",
	})

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestTransferRejectsDisposedTarget(t *testing.T) {
	service := newTestService(new(repositoryMock), newStubFiles())

	_, err := service.TransferAsset(admin(), models.TransferAssetRequest{AssetID: 42, AssignTo: "disposed"})

	assert.Error(t, err)
}

func TestDisposeByAdminExpiresAsset(t *testing.T) {
	repo := new(repositoryMock)
	service := newTestService(repo, newStubFiles())

	repo.On("GetAssetForUpdate", mock.Anything, 42, 1).Return(custodyAsset(4), nil)
	repo.On("GetActiveAssignment", mock.Anything, 42, 1).Return(activeAssignment(), nil)
	repo.On("CloseAssignment", mock.Anything, 100, 2, "boss").Return(nil)
	repo.On("InsertAssignment", mock.Anything, mock.MatchedBy(func(row *models.AssetAssigned) bool {
		return row.Status == metadata.AssignmentDisposed &&
			row.ApprovalStatus == metadata.ApprovalApproved &&
			row.AssignTarget == metadata.TargetDisposed &&
			row.DisposalDoc != nil
	})).Return(203, nil)
	repo.On("UpdateAssetSnapshot", mock.Anything, mock.MatchedBy(func(snap models.AssetSnapshot) bool {
		return snap.Status == metadata.AssetExpired &&
			!snap.IsAvailable &&
			snap.DisposedAt != nil &&
			snap.DisposalDocument != nil
	})).Return(nil)
	repo.On("InsertComment", mock.Anything, mock.MatchedBy(func(c models.Comment) bool {
		return c.Text == "worn out" && c.IsAdmin
	})).Return(nil)
	repo.On("InsertHistory", mock.Anything, 42, 1, "Asset Disposed", "boss").Return(nil)

	message, err := service.DisposeAsset(admin(), models.DisposeAssetRequest{
		AssetID: 42,
		Comment: "worn out",
	}, &uploads.Document{Category: uploads.CategoryDisposal, Filename: "scrap.pdf", Content: []byte("x")})

	assert.NoError(t, err)
	assert.Equal(t, "Asset disposed", message)
	repo.AssertExpectations(t)
}

func TestDisposeByNonAdminQueuesForApproval(t *testing.T) {
	repo := new(repositoryMock)
	service := newTestService(repo, newStubFiles())

	repo.On("GetAssetForUpdate", mock.Anything, 42, 1).Return(custodyAsset(4), nil)
	repo.On("GetActiveAssignment", mock.Anything, 42, 1).Return(activeAssignment(), nil)
	repo.On("InsertAssignment", mock.Anything, mock.MatchedBy(func(row *models.AssetAssigned) bool {
		return row.Status == metadata.AssignmentHold &&
			row.ApprovalStatus == metadata.ApprovalPending &&
			row.AssignTarget == metadata.TargetDisposed &&
			row.Comment != nil && *row.Comment == "broken"
	})).Return(204, nil)
	repo.On("InsertHistory", mock.Anything, 42, 1, "Asset Disposal Requested", "clerk").Return(nil)

	message, err := service.DisposeAsset(staff(), models.DisposeAssetRequest{
		AssetID: 42,
		Comment: "broken",
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, "Disposal submitted for approval", message)
	repo.AssertNotCalled(t, "UpdateAssetSnapshot", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "CloseAssignment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestApproveAppliesPendingTransfer(t *testing.T) {
	repo := new(repositoryMock)
	service := newTestService(repo, newStubFiles())

	pending := &models.AssetAssigned{
		ID:             300,
		AssetID:        42,
		OrganizationID: 1,
		AssignTarget:   metadata.TargetUser,
		UserID:         intPtr(5),
		Status:         metadata.AssignmentHold,
		ApprovalStatus: metadata.ApprovalPending,
		Version:        1,
		CreatedBy:      "clerk",
	}

	repo.On("GetAssignment", mock.Anything, 300, 1).Return(pending, nil)
	repo.On("GetAssetForUpdate", mock.Anything, 42, 1).Return(custodyAsset(4), nil)
	repo.On("GetActiveAssignment", mock.Anything, 42, 1).Return(activeAssignment(), nil)
	repo.On("CloseAssignment", mock.Anything, 100, 2, "boss").Return(nil)
	repo.On("SetAssignmentOutcome", mock.Anything, 300, 1, metadata.AssignmentReassigned, metadata.ApprovalApproved, "boss").Return(nil)
	repo.On("UpdateAssetSnapshot", mock.Anything, mock.MatchedBy(func(snap models.AssetSnapshot) bool {
		return snap.AssignedUserID != nil && *snap.AssignedUserID == 5 &&
			snap.Status == metadata.AssetAssigned
	})).Return(nil)
	repo.On("InsertHistory", mock.Anything, 42, 1, "Asset Request Approved", "boss").Return(nil)

	err := service.ApproveAssignment(admin(), 300)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestApproveAlreadyProcessedRequest(t *testing.T) {
	repo := new(repositoryMock)
	service := newTestService(repo, newStubFiles())

	processed := &models.AssetAssigned{
		ID:             300,
		AssetID:        42,
		OrganizationID: 1,
		Status:         metadata.AssignmentAssigned,
		ApprovalStatus: metadata.ApprovalApproved,
	}
	repo.On("GetAssignment", mock.Anything, 300, 1).Return(processed, nil)

	err := service.ApproveAssignment(admin(), 300)

	assert.ErrorIs(t, err, custom_error.ErrAlreadyProcessed)
	repo.AssertNotCalled(t, "SetAssignmentOutcome", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "UpdateAssetSnapshot", mock.Anything, mock.Anything)
}

func TestRejectLeavesSnapshotUntouched(t *testing.T) {
	repo := new(repositoryMock)
	service := newTestService(repo, newStubFiles())

	pending := &models.AssetAssigned{
		ID:             301,
		AssetID:        42,
		OrganizationID: 1,
		AssignTarget:   metadata.TargetUser,
		Status:         metadata.AssignmentHold,
		ApprovalStatus: metadata.ApprovalPending,
		Version:        1,
	}
	repo.On("GetAssignment", mock.Anything, 301, 1).Return(pending, nil)
	repo.On("SetAssignmentOutcome", mock.Anything, 301, 1, metadata.AssignmentUnassigned, metadata.ApprovalRejected, "boss").Return(nil)
	repo.On("InsertHistory", mock.Anything, 42, 1, "Asset Request Rejected", "boss").Return(nil)

	err := service.RejectAssignment(admin(), 301)

	assert.NoError(t, err)
	repo.AssertNotCalled(t, "UpdateAssetSnapshot", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestDeleteMissingAssetWritesNoHistory(t *testing.T) {
	repo := new(repositoryMock)
	service := newTestService(repo, newStubFiles())

	repo.On("GetAssetForUpdate", mock.Anything, 999, 1).Return(nil, custom_error.ErrAssetNotFound)

	err := service.DeleteAsset(admin(), 999)

	assert.ErrorIs(t, err, custom_error.ErrAssetNotFound)
	repo.AssertNotCalled(t, "SoftDeleteAsset", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "InsertHistory", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteAssetSoftDeletes(t *testing.T) {
	repo := new(repositoryMock)
	service := newTestService(repo, newStubFiles())

	repo.On("GetAssetForUpdate", mock.Anything, 42, 1).Return(custodyAsset(6), nil)
	repo.On("SoftDeleteAsset", mock.Anything, 42, 1, 6, "boss").Return(nil)
	repo.On("InsertHistory", mock.Anything, 42, 1, "Asset Deleted", "boss").Return(nil)

	err := service.DeleteAsset(admin(), 42)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdateAssetDoesNotTouchCustody(t *testing.T) {
	repo := new(repositoryMock)
	service := newTestService(repo, newStubFiles())
	asset := custodyAsset(4)

	repo.On("GetAssetForUpdate", mock.Anything, 42, 1).Return(asset, nil)
	repo.On("UpdateAsset", mock.Anything, mock.MatchedBy(func(a *models.Asset) bool {
		return a.Name == "Laptop Pro" &&
			a.AssignTarget == metadata.TargetUser &&
			a.AssignedUserID != nil && *a.AssignedUserID == 3
	})).Return(nil)
	repo.On("InsertHistory", mock.Anything, 42, 1, "Asset Updated", "boss").Return(nil)

	updated, err := service.UpdateAsset(admin(), 42, models.AssetRequest{Name: "Laptop Pro", Quantity: 1}, nil)

	assert.NoError(t, err)
	assert.Equal(t, "Laptop Pro", updated.Name)
	repo.AssertExpectations(t)
}

func TestVersionConflictSurfacesToCaller(t *testing.T) {
	repo := new(repositoryMock)
	service := newTestService(repo, newStubFiles())

	repo.On("GetAssetForUpdate", mock.Anything, 42, 1).Return(custodyAsset(4), nil)
	repo.On("SoftDeleteAsset", mock.Anything, 42, 1, 4, "boss").Return(custom_error.ErrVersionConflict)

	err := service.DeleteAsset(admin(), 42)

	assert.ErrorIs(t, err, custom_error.ErrVersionConflict)
}
