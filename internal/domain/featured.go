package domain

import (
	"fmt"
	"time"
)

// FeaturedKind names the catalog entity a featured item points at.
type FeaturedKind string

const (
	FeaturedGame     FeaturedKind = "game"
	FeaturedCompany  FeaturedKind = "company"
	FeaturedGenre    FeaturedKind = "genre"
	FeaturedPlatform FeaturedKind = "platform"
)

func (k FeaturedKind) IsValid() bool {
	switch k {
	case FeaturedGame, FeaturedCompany, FeaturedGenre, FeaturedPlatform:
		return true
	}
	return false
}

// FeaturedRef identifies one catalog row of a given kind.
type FeaturedRef struct {
	Kind FeaturedKind `json:"kind" gorm:"column:kind;size:16;not null"`
	ID   uint         `json:"objectId" gorm:"column:object_id;not null"`
}

func (r FeaturedRef) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

type Featured struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	Ref         FeaturedRef `json:"ref" gorm:"embedded"`
	Image       string      `json:"image" gorm:"size:100;not null"`
	Description *string     `json:"description" gorm:"size:255"`
	CreatedAt   time.Time   `json:"createdAt"`
}

func (Featured) TableName() string {
	return "featured_content"
}
