package models

import "time"

type Event struct {
	ID          int       `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	StartTime   time.Time `json:"startTime" db:"start_time"`
	EndTime     time.Time `json:"endTime" db:"end_time"`
	ClassID     *int      `json:"classId" db:"class_id"`
	ClassName   *string   `json:"className,omitempty" db:"class_name"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// EventInput is the validated payload of the event form and the JSON API.
// ID is set only when an existing event is modified.
type EventInput struct {
	ID          *int      `json:"id" form:"id" validate:"omitnil,gt=0"`
	Title       string    `json:"title" form:"title" validate:"required"`
	Description string    `json:"description" form:"description" validate:"required"`
	StartTime   time.Time `json:"startTime" form:"startTime" validate:"required"`
	EndTime     time.Time `json:"endTime" form:"endTime" validate:"required,gtfield=StartTime"`
	ClassID     *int      `json:"classId" form:"classId" validate:"omitnil,gt=0"`
}

type Class struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Result is what a create/update/delete action reports back to the form.
type Result struct {
	Success bool `json:"success"`
	Error   bool `json:"error"`
}

type Announcement struct {
	EventID   int       `db:"id"`
	Title     string    `db:"title"`
	StartTime time.Time `db:"start_time"`
	ClassName *string   `db:"class_name"`
}
