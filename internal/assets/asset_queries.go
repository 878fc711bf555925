package assets

import (
	"fmt"

	"sams/internal/depreciation"
	custom_error "sams/pkg/errors"
	"sams/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

// AssetDetail is the joined read projection for the detail view. The
// depreciation schedule is recomputed by the service when the asset is
// eligible.
type AssetDetail struct {
	models.Asset
	CategoryName         *string               `json:"category_name"`
	DepartmentName       *string               `json:"department_name"`
	SupplierName         *string               `json:"supplier_name"`
	SiteName             *string               `json:"site_name"`
	AreaName             *string               `json:"area_name"`
	AssigneeName         *string               `json:"assignee_name"`
	DepreciationSchedule []depreciation.YearRow `json:"depreciation_schedule,omitempty"`
}

type flatAssetDetail struct {
	models.FlatAssetRow
	CategoryName   *string `db:"category_name"`
	DepartmentName *string `db:"department_name"`
	SupplierName   *string `db:"supplier_name"`
	SiteName       *string `db:"site_name"`
	AreaName       *string `db:"area_name"`
	AssigneeName   *string `db:"assignee_name"`
}

func (r *assetsRepository) GetAsset(id, orgID int) (*models.Asset, error) {
	var flat models.FlatAssetRow

	found, err := r.repo.Goqu.From("assets").
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

func (r *assetsRepository) ListAssets(orgID int) ([]models.Asset, error) {
	return r.listAssets(goqu.Ex{
		"organization_id": orgID,
		"cancelled":       false,
	})
}

// ListAvailableAssets returns assets open for assignment. Failures are
// returned to the caller; an empty result always means "no rows".
func (r *assetsRepository) ListAvailableAssets(orgID int) ([]models.Asset, error) {
	return r.listAssets(goqu.Ex{
		"organization_id": orgID,
		"cancelled":       false,
		"is_available":    true,
	})
}

func (r *assetsRepository) listAssets(conditions goqu.Ex) ([]models.Asset, error) {
	var flats []models.FlatAssetRow

	err := r.repo.Goqu.From("assets").
		Where(conditions).
		Order(goqu.C("id").Asc()).
		Executor().
		ScanStructs(&flats)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	result := make([]models.Asset, 0, len(flats))
	for i := range flats {
		asset, err := flats[i].TransformToAsset()
		if err != nil {
			return nil, fmt.Errorf("failed to decode asset %d: %w", flats[i].ID, err)
		}
		result = append(result, *asset)
	}

	return result, nil
}

func (r *assetsRepository) GetAssetDetails(id, orgID int) (*AssetDetail, error) {
	var flat flatAssetDetail

	query := r.repo.Goqu.
		Select(
			goqu.T("a").All(),
			goqu.I("c.name").As("category_name"),
			goqu.I("d.name").As("department_name"),
			goqu.I("sp.name").As("supplier_name"),
			goqu.I("st.name").As("site_name"),
			goqu.I("ar.name").As("area_name"),
			goqu.I("u.fullname").As("assignee_name"),
		).
		From(goqu.T("assets").As("a")).
		LeftJoin(
			goqu.T("categories").As("c"),
			goqu.On(goqu.Ex{"a.category_id": goqu.I("c.id")}),
		).
		LeftJoin(
			goqu.T("departments").As("d"),
			goqu.On(goqu.Ex{"a.department_id": goqu.I("d.id")}),
		).
		LeftJoin(
			goqu.T("suppliers").As("sp"),
			goqu.On(goqu.Ex{"a.supplier_id": goqu.I("sp.id")}),
		).
		LeftJoin(
			goqu.T("sites").As("st"),
			goqu.On(goqu.Ex{"a.site_id": goqu.I("st.id")}),
		).
		LeftJoin(
			goqu.T("areas").As("ar"),
			goqu.On(goqu.Ex{"a.area_id": goqu.I("ar.id")}),
		).
		LeftJoin(
			goqu.T("users").As("u"),
			goqu.On(goqu.Ex{"a.assigned_user_id": goqu.I("u.id")}),
		).
		Where(goqu.Ex{
			"a.id":              id,
			"a.organization_id": orgID,
			"a.cancelled":       false,
		})

	found, err := query.Executor().ScanStruct(&flat)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}
	if !found {
		return nil, custom_error.ErrAssetNotFound
	}

	asset, err := flat.TransformToAsset()
	if err != nil {
		return nil, fmt.Errorf("failed to decode asset %d: %w", id, err)
	}

	return &AssetDetail{
		Asset:          *asset,
		CategoryName:   flat.CategoryName,
		DepartmentName: flat.DepartmentName,
		SupplierName:   flat.SupplierName,
		SiteName:       flat.SiteName,
		AreaName:       flat.AreaName,
		AssigneeName:   flat.AssigneeName,
	}, nil
}

func (r *assetsRepository) GetPendingApprovals(orgID int) ([]models.PendingApproval, error) {
	var rows []models.PendingApproval

	query := r.repo.Goqu.
		Select(
			goqu.I("aa.id").As("assignment_id"),
			goqu.I("a.id").As("asset_id"),
			goqu.I("a.code").As("asset_code"),
			goqu.I("a.name").As("asset_name"),
			goqu.I("aa.assign_to").As("assign_to"),
			goqu.I("aa.created_by").As("requested_by"),
			goqu.I("u.fullname").As("assignee_name"),
			goqu.I("st.name").As("site_name"),
			goqu.I("ar.name").As("area_name"),
			goqu.I("aa.created_at").As("requested_at"),
		).
		From(goqu.T("asset_assignments").As("aa")).
		InnerJoin(
			goqu.T("assets").As("a"),
			goqu.On(goqu.Ex{"aa.asset_id": goqu.I("a.id")}),
		).
		LeftJoin(
			goqu.T("users").As("u"),
			goqu.On(goqu.Ex{"aa.user_id": goqu.I("u.id")}),
		).
		LeftJoin(
			goqu.T("sites").As("st"),
			goqu.On(goqu.Ex{"aa.site_id": goqu.I("st.id")}),
		).
		LeftJoin(
			goqu.T("areas").As("ar"),
			goqu.On(goqu.Ex{"aa.area_id": goqu.I("ar.id")}),
		).
		Where(goqu.Ex{
			"aa.organization_id": orgID,
			"aa.approval_status": "pending",
			"aa.cancelled":       false,
		}).
		Order(goqu.I("aa.created_at").Asc())

	if err := query.Executor().ScanStructs(&rows); err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	return rows, nil
}

func (r *assetsRepository) GetAssetHistory(assetID, orgID int) ([]models.AssetHistory, error) {
	var rows []models.AssetHistory

	err := r.repo.Goqu.From("asset_history").
		Where(goqu.Ex{
			"asset_id":        assetID,
			"organization_id": orgID,
		}).
		Order(goqu.C("created_at").Asc()).
		Executor().
		ScanStructs(&rows)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	return rows, nil
}
