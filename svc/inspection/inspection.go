package inspection

import (
	"time"

	"github.com/google/uuid"
)

// Answer is the result recorded for a checklist item.
type Answer string

const (
	AnswerCompliant    Answer = "ok"
	AnswerNonCompliant Answer = "nok"
	AnswerNotApplicable Answer = "na"
)

// ChecklistItem is a single inspected point with its recorded answer.
type ChecklistItem struct {
	Question    string `json:"question"`
	Answer      Answer `json:"answer"`
	Observation string `json:"observation,omitempty"`
}

// Inspection is a digital safety inspection: a checklist with photo evidence
// and a signature, attached to a project.
type Inspection struct {
	ID        uuid.UUID       `json:"id"`
	ProjectID uuid.UUID       `json:"project_id"`
	UserID    uuid.UUID       `json:"user_id"`
	Title     string          `json:"title"`
	Status    string          `json:"status"`
	Score     int             `json:"score"`
	Items     []ChecklistItem `json:"items"`
	PhotoURLs []string        `json:"photo_urls"`
	Signature string          `json:"signature,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
