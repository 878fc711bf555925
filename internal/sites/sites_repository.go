package sites

import (
	"fmt"

	"sams/internal/repository"
	custom_error "sams/pkg/errors"
	"sams/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
)

type SitesRepository struct {
	repo *repository.Repository
}

func NewRepository(r *repository.Repository) *SitesRepository {
	return &SitesRepository{repo: r}
}

func (r *SitesRepository) PersistSite(site *models.Site) error {
	query := r.repo.Goqu.Insert("sites").
		Rows(goqu.Record{
			"organization_id": site.OrganizationID,
			"name":            site.Name,
			"details":         site.Details,
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&site.ID); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return custom_error.WrapDBError("Site name already in use", string(pqErr.Code))
		}
		return fmt.Errorf("failed to insert site: %w", err)
	}

	return nil
}

func (r *SitesRepository) GetSites(orgID int) ([]models.Site, error) {
	var sites []models.Site

	err := r.repo.Goqu.From("sites").
		Where(goqu.Ex{"organization_id": orgID}).
		Order(goqu.C("name").Asc()).
		Executor().
		ScanStructs(&sites)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	return sites, nil
}

func (r *SitesRepository) RemoveSite(id, orgID int) error {
	result, err := r.repo.Goqu.Delete("sites").
		Where(goqu.Ex{"id": id, "organization_id": orgID}).
		Executor().
		Exec()
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return custom_error.WrapDBError("site", string(pqErr.Code))
		}
		return fmt.Errorf("failed to delete site %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return custom_error.ErrSiteNotFound
	}

	return nil
}

func (r *SitesRepository) PersistArea(area *models.Area) error {
	query := r.repo.Goqu.Insert("areas").
		Rows(goqu.Record{
			"organization_id": area.OrganizationID,
			"site_id":         area.SiteID,
			"name":            area.Name,
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&area.ID); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505", "23503":
				return custom_error.WrapDBError("area", string(pqErr.Code))
			}
		}
		return fmt.Errorf("failed to insert area: %w", err)
	}

	return nil
}

func (r *SitesRepository) GetAreas(siteID, orgID int) ([]models.Area, error) {
	var areas []models.Area

	err := r.repo.Goqu.From("areas").
		Where(goqu.Ex{"site_id": siteID, "organization_id": orgID}).
		Order(goqu.C("name").Asc()).
		Executor().
		ScanStructs(&areas)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	return areas, nil
}

// GetSiteAssets lists the assets whose custody snapshot points at the site.
func (r *SitesRepository) GetSiteAssets(siteID, orgID int) ([]models.Asset, error) {
	var flats []models.FlatAssetRow

	err := r.repo.Goqu.From("assets").
		Where(goqu.Ex{
			"site_id":         siteID,
			"organization_id": orgID,
			"cancelled":       false,
		}).
		Order(goqu.C("code").Asc()).
		Executor().
		ScanStructs(&flats)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	assets := make([]models.Asset, 0, len(flats))
	for i := range flats {
		asset, err := flats[i].TransformToAsset()
		if err != nil {
			return nil, fmt.Errorf("failed to decode asset %d: %w", flats[i].ID, err)
		}
		assets = append(assets, *asset)
	}

	return assets, nil
}
