package entities

type Book struct {
	Title  string `gorm:"primaryKey;size:512" json:"title"`
	Author string `gorm:"size:256" json:"author"`
	Genre  string `gorm:"index;size:100" json:"genre"`
	Image  string `gorm:"size:2048" json:"image,omitempty"`

	// Rating is the mean of all review ratings rounded to one decimal; 0 means unrated.
	Rating     float64 `gorm:"not null;default:0" json:"rating"`
	NumRatings int     `gorm:"not null;default:0" json:"num_ratings"`
}

func (Book) TableName() string {
	return "books"
}

// HasRatings reports whether at least one review contributed to Rating.
func (b *Book) HasRatings() bool {
	return b.NumRatings > 0
}
