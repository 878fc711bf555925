package metadata

import "fmt"

// AssetStatus is the denormalized state stored on the asset row itself.
type AssetStatus string

const (
	AssetAvailable AssetStatus = "available"
	AssetAssigned  AssetStatus = "assigned"
	AssetExpired   AssetStatus = "expired"
)

func NewAssetStatus(value string) (AssetStatus, error) {
	status := AssetStatus(value)
	if !status.isValid() {
		return "", fmt.Errorf("invalid asset status: %s", value)
	}
	return status, nil
}

func (s AssetStatus) isValid() bool {
	switch s {
	case AssetAvailable, AssetAssigned, AssetExpired:
		return true
	default:
		return false
	}
}

// AssignmentStatus is the state of a single custody ledger row.
type AssignmentStatus string

const (
	AssignmentUnassigned AssignmentStatus = "unassigned"
	AssignmentAssigned   AssignmentStatus = "assigned"
	AssignmentReassigned AssignmentStatus = "reassigned"
	AssignmentHold       AssignmentStatus = "hold"
	AssignmentDisposed   AssignmentStatus = "disposed"
)

func NewAssignmentStatus(value string) (AssignmentStatus, error) {
	status := AssignmentStatus(value)
	if !status.isValid() {
		return "", fmt.Errorf("invalid assignment status: %s", value)
	}
	return status, nil
}

func (s AssignmentStatus) isValid() bool {
	switch s {
	case AssignmentUnassigned, AssignmentAssigned, AssignmentReassigned, AssignmentHold, AssignmentDisposed:
		return true
	default:
		return false
	}
}

// IsActive reports whether a ledger row in this status represents current custody.
func (s AssignmentStatus) IsActive() bool {
	return s == AssignmentAssigned || s == AssignmentReassigned
}

// ApprovalStatus tracks the approval gate on a ledger row.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

func NewApprovalStatus(value string) (ApprovalStatus, error) {
	status := ApprovalStatus(value)
	if !status.isValid() {
		return "", fmt.Errorf("invalid approval status: %s", value)
	}
	return status, nil
}

func (s ApprovalStatus) isValid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	default:
		return false
	}
}

// AssignTarget names which kind of custodian an asset is assigned to.
type AssignTarget string

const (
	TargetNotAssigned AssignTarget = "not_assigned"
	TargetUser        AssignTarget = "user"
	TargetSite        AssignTarget = "site"
	TargetDisposed    AssignTarget = "disposed"
)

func NewAssignTarget(value string) (AssignTarget, error) {
	target := AssignTarget(value)
	if !target.isValid() {
		return "", fmt.Errorf("invalid assign target: %s", value)
	}
	return target, nil
}

func (t AssignTarget) isValid() bool {
	switch t {
	case TargetNotAssigned, TargetUser, TargetSite, TargetDisposed:
		return true
	default:
		return false
	}
}

func (t AssignTarget) String() string {
	return string(t)
}
