package dto

import "time"

type MovementFilters struct {
	OrgID        string
	ProductID    string
	GroupID      string
	MovementType string
	StartDate    *time.Time
	EndDate      *time.Time
	Page         int
	PageSize     int
}
