package models

import (
	"time"

	"sams/pkg/metadata"
)

// AssetAssigned is one custody ledger row: a transition FROM the previous
// custody state TO the requested one. Rows are append-only; superseded rows
// are closed to unassigned, never deleted. assigned_from links the chain.
type AssetAssigned struct {
	ID             int                       `json:"id" db:"id"`
	AssetID        int                       `json:"asset_id" db:"asset_id"`
	OrganizationID int                       `json:"organization_id" db:"organization_id"`
	AssignedFrom   *int                      `json:"assigned_from" db:"assigned_from"`
	UserIDFrom     *int                      `json:"user_id_from" db:"user_id_from"`
	SiteIDFrom     *int                      `json:"site_id_from" db:"site_id_from"`
	AreaIDFrom     *int                      `json:"area_id_from" db:"area_id_from"`
	AssignTarget   metadata.AssignTarget     `json:"assign_to" db:"assign_to"`
	UserID         *int                      `json:"user_id" db:"user_id"`
	SiteID         *int                      `json:"site_id" db:"site_id"`
	AreaID         *int                      `json:"area_id" db:"area_id"`
	Status         metadata.AssignmentStatus `json:"status" db:"status"`
	ApprovalStatus metadata.ApprovalStatus   `json:"approval_status" db:"approval_status"`
	DisposalDoc    *string                   `json:"disposal_document" db:"disposal_document"`
	Comment        *string                   `json:"comment" db:"comment"`
	Cancelled      bool                      `json:"-" db:"cancelled"`
	Version        int                       `json:"-" db:"version"`
	CreatedBy      string                    `json:"created_by" db:"created_by"`
	CreatedAt      time.Time                 `json:"created_at" db:"created_at"`
	UpdatedBy      *string                   `json:"updated_by" db:"updated_by"`
	UpdatedAt      *time.Time                `json:"updated_at" db:"updated_at"`
}

// FlatAssignmentRow is the raw scan target; enums decoded explicitly.
type FlatAssignmentRow struct {
	ID             int        `db:"id"`
	AssetID        int        `db:"asset_id"`
	OrganizationID int        `db:"organization_id"`
	AssignedFrom   *int       `db:"assigned_from"`
	UserIDFrom     *int       `db:"user_id_from"`
	SiteIDFrom     *int       `db:"site_id_from"`
	AreaIDFrom     *int       `db:"area_id_from"`
	AssignTarget   string     `db:"assign_to"`
	UserID         *int       `db:"user_id"`
	SiteID         *int       `db:"site_id"`
	AreaID         *int       `db:"area_id"`
	Status         string     `db:"status"`
	ApprovalStatus string     `db:"approval_status"`
	DisposalDoc    *string    `db:"disposal_document"`
	Comment        *string    `db:"comment"`
	Cancelled      bool       `db:"cancelled"`
	Version        int        `db:"version"`
	CreatedBy      string     `db:"created_by"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedBy      *string    `db:"updated_by"`
	UpdatedAt      *time.Time `db:"updated_at"`
}

func (f *FlatAssignmentRow) TransformToAssignment() (*AssetAssigned, error) {
	status, err := metadata.NewAssignmentStatus(f.Status)
	if err != nil {
		return nil, err
	}
	approval, err := metadata.NewApprovalStatus(f.ApprovalStatus)
	if err != nil {
		return nil, err
	}
	target, err := metadata.NewAssignTarget(f.AssignTarget)
	if err != nil {
		return nil, err
	}

	return &AssetAssigned{
		ID:             f.ID,
		AssetID:        f.AssetID,
		OrganizationID: f.OrganizationID,
		AssignedFrom:   f.AssignedFrom,
		UserIDFrom:     f.UserIDFrom,
		SiteIDFrom:     f.SiteIDFrom,
		AreaIDFrom:     f.AreaIDFrom,
		AssignTarget:   target,
		UserID:         f.UserID,
		SiteID:         f.SiteID,
		AreaID:         f.AreaID,
		Status:         status,
		ApprovalStatus: approval,
		DisposalDoc:    f.DisposalDoc,
		Comment:        f.Comment,
		Cancelled:      f.Cancelled,
		Version:        f.Version,
		CreatedBy:      f.CreatedBy,
		CreatedAt:      f.CreatedAt,
		UpdatedBy:      f.UpdatedBy,
		UpdatedAt:      f.UpdatedAt,
	}, nil
}

// PendingApproval is the joined projection backing the approval queue view.
type PendingApproval struct {
	AssignmentID int       `json:"assignment_id" db:"assignment_id"`
	AssetID      int       `json:"asset_id" db:"asset_id"`
	AssetCode    string    `json:"asset_code" db:"asset_code"`
	AssetName    string    `json:"asset_name" db:"asset_name"`
	AssignTarget string    `json:"assign_to" db:"assign_to"`
	RequestedBy  string    `json:"requested_by" db:"requested_by"`
	AssigneeName *string   `json:"assignee_name" db:"assignee_name"`
	SiteName     *string   `json:"site_name" db:"site_name"`
	AreaName     *string   `json:"area_name" db:"area_name"`
	RequestedAt  time.Time `json:"requested_at" db:"requested_at"`
}
