package domain

// Company is a developer or publisher.
type Company struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Name    string `json:"name" gorm:"size:127;not null"`
	Slug    string `json:"slug" gorm:"size:50;uniqueIndex;not null"`
	Logo    string `json:"logo"`
	Website string `json:"website" gorm:"size:128"`
}
