package models

import "time"

// AssetHistory is the append-only human-readable trail of asset actions.
// Write-only from the core's perspective.
type AssetHistory struct {
	ID             int       `json:"id" db:"id"`
	AssetID        int       `json:"asset_id" db:"asset_id"`
	OrganizationID int       `json:"organization_id" db:"organization_id"`
	Action         string    `json:"action" db:"action"`
	Actor          string    `json:"actor" db:"actor"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Comment is a free-text note attached to an asset, tagged with the
// privilege of the author at the time of writing.
type Comment struct {
	ID             int       `json:"id" db:"id"`
	AssetID        int       `json:"asset_id" db:"asset_id"`
	OrganizationID int       `json:"organization_id" db:"organization_id"`
	Text           string    `json:"text" db:"text"`
	IsAdmin        bool      `json:"is_admin" db:"is_admin"`
	CreatedBy      string    `json:"created_by" db:"created_by"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
