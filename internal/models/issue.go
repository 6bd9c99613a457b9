package models

import "time"

// IssueCategory enumerates the fixed set of reportable problem types.
type IssueCategory string

const (
	CategoryRoad         IssueCategory = "Road/Pothole"
	CategoryGarbage      IssueCategory = "Garbage"
	CategoryWaterSupply  IssueCategory = "Water Supply"
	CategoryDrainage     IssueCategory = "Drainage"
	CategoryElectricity  IssueCategory = "Electricity"
	CategoryPublicSafety IssueCategory = "Public Safety"
	CategoryOther        IssueCategory = "Other"
)

// Categories lists every defined category in declaration order.
func Categories() []IssueCategory {
	return []IssueCategory{
		CategoryRoad,
		CategoryGarbage,
		CategoryWaterSupply,
		CategoryDrainage,
		CategoryElectricity,
		CategoryPublicSafety,
		CategoryOther,
	}
}

// Valid reports whether the category is one of the defined values.
func (c IssueCategory) Valid() bool {
	switch c {
	case CategoryRoad, CategoryGarbage, CategoryWaterSupply, CategoryDrainage,
		CategoryElectricity, CategoryPublicSafety, CategoryOther:
		return true
	}
	return false
}

// Weight returns the scoring weight for the category. The mapping is
// total: categories outside the defined set weigh 1.
func (c IssueCategory) Weight() int {
	switch c {
	case CategoryRoad:
		return 3
	case CategoryGarbage:
		return 4
	case CategoryWaterSupply:
		return 5
	case CategoryDrainage:
		return 5
	case CategoryElectricity:
		return 4
	case CategoryPublicSafety:
		return 6
	case CategoryOther:
		return 4
	default:
		return 1
	}
}

// IssueStatus enumerates the lifecycle states of an issue.
type IssueStatus string

const (
	StatusPending      IssueStatus = "Pending"
	StatusAcknowledged IssueStatus = "Acknowledged"
	StatusResolved     IssueStatus = "Resolved"
)

// Valid reports whether the status is one of the three defined values.
func (s IssueStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAcknowledged, StatusResolved:
		return true
	}
	return false
}

// Issue represents a single reported civic problem.
//
// votes and likes are monotonically non-decreasing counters maintained
// redundantly with the ledger; is_verified never reverts once set.
type Issue struct {
	ID          string        `db:"id" json:"id"`
	Category    IssueCategory `db:"category" json:"category"`
	Description string        `db:"description" json:"description"`
	Longitude   float64       `db:"longitude" json:"longitude"`
	Latitude    float64       `db:"latitude" json:"latitude"`
	AreaName    string        `db:"area_name" json:"area_name"`
	ImagePath   *string       `db:"image_path" json:"image_path,omitempty"`
	Status      IssueStatus   `db:"status" json:"status"`
	Votes       int           `db:"votes" json:"votes"`
	Likes       int           `db:"likes" json:"likes"`
	IsVerified  bool          `db:"is_verified" json:"is_verified"`
	OwnerID     string        `db:"owner_id" json:"owner_id"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// IssueFilter captures filtering criteria for listing issues.
type IssueFilter struct {
	OwnerID  string
	Status   *IssueStatus
	Category *IssueCategory
}
