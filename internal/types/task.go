package types

import (
	"encoding/json"
	"time"
)

type CreateTaskRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description *string   `json:"description"`
	Date        *DateTime `json:"date" binding:"required"`
	CategoryID  *uint     `json:"category_id"`
}

// TaskPatch is the body of PUT /tasks/:id. Only fields present in the JSON
// are applied.
type TaskPatch struct {
	Title       Optional[string]   `json:"title"`
	Description Optional[string]   `json:"description"`
	Date        Optional[DateTime] `json:"date"`
	Completed   Optional[bool]     `json:"completed"`
	CategoryID  Optional[uint]     `json:"category_id"`
}

// TaskView is a task joined with its category's display fields.
type TaskView struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Date          time.Time `json:"date"`
	Completed     bool      `json:"completed"`
	CategoryID    *uint     `json:"category_id"`
	CategoryName  *string   `json:"category_name"`
	CategoryColor *string   `json:"category_color"`
}

// MarshalJSON writes Date in WallClockLayout.
func (v TaskView) MarshalJSON() ([]byte, error) {
	type view TaskView
	return json.Marshal(struct {
		view
		Date DateTime `json:"date"`
	}{view: view(v), Date: DateTime{Time: v.Date}})
}

func (v *TaskView) UnmarshalJSON(data []byte) error {
	type view TaskView
	aux := struct {
		*view
		Date DateTime `json:"date"`
	}{view: (*view)(v)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	v.Date = aux.Date.Time
	return nil
}
