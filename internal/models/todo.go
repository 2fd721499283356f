package models

import "time"

const (
	TitleMaxLen       = 200
	DescriptionMaxLen = 1000
)

type Todo struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
