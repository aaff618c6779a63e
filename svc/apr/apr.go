package apr

import (
	"time"

	"github.com/google/uuid"
)

// Risk is a single hazard entry in a job safety analysis, with its assessed
// severity and planned control measures.
type Risk struct {
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Controls    string `json:"controls,omitempty"`
}

// APR is a job safety analysis (Análise Preliminar de Risco) for an activity
// on a project. Risk entries may be drafted with AI assistance client-side;
// by the time they arrive here they are plain data.
type APR struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Activity  string    `json:"activity"`
	Risks     []Risk    `json:"risks"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
