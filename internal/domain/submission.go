package domain

import (
	"time"

	"github.com/google/uuid"
)

// GameSubmission records a user proposing a game that is not public yet.
type GameSubmission struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	UserID     uuid.UUID  `json:"userId" gorm:"type:uuid;not null;index"`
	GameID     uint       `json:"gameId" gorm:"not null;index"`
	CreatedAt  time.Time  `json:"createdAt"`
	AcceptedAt *time.Time `json:"acceptedAt"`

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Game *Game `json:"game,omitempty" gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE"`
}

func (s *GameSubmission) IsAccepted() bool {
	return s.AcceptedAt != nil
}

// Accept stamps the submission. It fails if the submission was already
// accepted so the submitter is only ever notified once.
func (s *GameSubmission) Accept(now time.Time) error {
	if s.IsAccepted() {
		return ErrSubmissionAlreadyAccepted
	}
	s.AcceptedAt = &now
	return nil
}
