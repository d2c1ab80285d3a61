package domain

import (
	"time"

	"github.com/google/uuid"
)

type Screenshot struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	GameID       uint      `json:"gameId" gorm:"not null;index"`
	Image        string    `json:"image" gorm:"not null"`
	UploadedAt   time.Time `json:"uploadedAt" gorm:"autoCreateTime"`
	UploadedByID uuid.UUID `json:"uploadedById" gorm:"type:uuid;not null"`
	Description  *string   `json:"description" gorm:"size:256"`
	Published    bool      `json:"published" gorm:"not null;default:false"`

	// Relations
	Game       *Game `json:"-" gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE"`
	UploadedBy *User `json:"-" gorm:"foreignKey:UploadedByID"`
}

// Caption falls back to the game name when the screenshot has no
// description. Game must be loaded for the fallback.
func (s *Screenshot) Caption() string {
	if s.Description != nil && *s.Description != "" {
		return *s.Description
	}
	if s.Game != nil {
		return s.Game.Name
	}
	return ""
}
