package models

// StatusCount is the number of issues currently in a given status.
type StatusCount struct {
	Status IssueStatus `db:"status" json:"status"`
	Count  int         `db:"count" json:"count"`
}

// CategoryCount is the number of issues reported under a category.
type CategoryCount struct {
	Category IssueCategory `db:"category" json:"category"`
	Count    int           `db:"count" json:"count"`
}

// AreaCount is the number of issues reported in a named area.
type AreaCount struct {
	AreaName string `db:"area_name" json:"area_name"`
	Count    int    `db:"count" json:"count"`
}
