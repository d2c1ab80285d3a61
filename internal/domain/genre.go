package domain

type Genre struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:50;not null"`
	Slug string `json:"slug" gorm:"size:50;uniqueIndex;not null"`
}
