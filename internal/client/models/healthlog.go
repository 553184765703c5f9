package models

import "time"

// Category classifies a health log entry.
type Category string

const (
	CategorySymptom     Category = "symptom"
	CategoryMedication  Category = "medication"
	CategoryAppointment Category = "appointment"
	CategoryExercise    Category = "exercise"
	CategoryDiet        Category = "diet"
	CategorySleep       Category = "sleep"
	CategoryMood        Category = "mood"
	CategoryOther       Category = "other"
)

// Categories lists every valid category.
var Categories = []Category{
	CategorySymptom,
	CategoryMedication,
	CategoryAppointment,
	CategoryExercise,
	CategoryDiet,
	CategorySleep,
	CategoryMood,
	CategoryOther,
}

// DateLayout is the format of HealthLog.Date.
const DateLayout = "2006-01-02"

// HealthLog is the plaintext journal entry. It is serialized to JSON and
// encrypted before it reaches the store.
type HealthLog struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    Category  `json:"category"`
	Severity    *int      `json:"severity,omitempty"`
	Date        string    `json:"date"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// LocalID is the id of the row the entry was read from.
	LocalID int64 `json:"-"`
}

// Draft is the input for creating a health log.
type Draft struct {
	Title       string
	Category    Category
	Severity    *int
	Date        string
	Description string
	Tags        []string
	Notes       string
}

// Patch is a partial update. ID must carry the domain id of the entry being
// edited; nil fields are left unchanged.
type Patch struct {
	ID          string
	Title       *string
	Category    *Category
	Severity    *int
	Date        *string
	Description *string
	Tags        []string
	Notes       *string

	// ClearSeverity removes the severity; it wins over Severity.
	ClearSeverity bool
}

// Apply merges p over h. The domain id is never changed.
func (p Patch) Apply(h *HealthLog) {
	if p.Title != nil {
		h.Title = *p.Title
	}
	if p.Category != nil {
		h.Category = *p.Category
	}
	if p.Severity != nil {
		v := *p.Severity
		h.Severity = &v
	}
	if p.ClearSeverity {
		h.Severity = nil
	}
	if p.Date != nil {
		h.Date = *p.Date
	}
	if p.Description != nil {
		h.Description = *p.Description
	}
	if p.Tags != nil {
		h.Tags = append([]string(nil), p.Tags...)
	}
	if p.Notes != nil {
		h.Notes = *p.Notes
	}
}
