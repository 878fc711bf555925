package models

type Site struct {
	ID             int     `json:"id" db:"id"`
	OrganizationID int     `json:"organization_id" db:"organization_id"`
	Name           string  `json:"name" db:"name"`
	Details        *string `json:"details" db:"details"`
}

type Area struct {
	ID             int    `json:"id" db:"id"`
	OrganizationID int    `json:"organization_id" db:"organization_id"`
	SiteID         int    `json:"site_id" db:"site_id"`
	Name           string `json:"name" db:"name"`
}
