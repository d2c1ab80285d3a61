package domain

// Runner is an execution backend an installer targets (wine, dosbox, ...).
type Runner struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Name    string `json:"name" gorm:"size:127;not null"`
	Slug    string `json:"slug" gorm:"size:50;uniqueIndex;not null"`
	Website string `json:"website"`
}
