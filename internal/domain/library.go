package domain

import (
	"github.com/google/uuid"
)

// GameLibrary is the set of games a user owns. Each user has at most one.
type GameLibrary struct {
	ID     uint      `json:"id" gorm:"primaryKey"`
	UserID uuid.UUID `json:"userId" gorm:"type:uuid;uniqueIndex;not null"`
	Games  []*Game   `json:"games" gorm:"many2many:game_library_games"`

	// Relations
	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (l *GameLibrary) Contains(gameID uint) bool {
	for _, g := range l.Games {
		if g.ID == gameID {
			return true
		}
	}
	return false
}
