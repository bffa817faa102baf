package entities

import "time"

type UpdateType string

const (
	UpdateTypeReading UpdateType = "reading"
	UpdateTypeReview  UpdateType = "review"
)

// Update is a single timeline entry. Rows are append-only; only admins delete them.
type Update struct {
	ID   uint       `gorm:"primaryKey;autoIncrement" json:"update_id"`
	Type UpdateType `gorm:"size:20;not null" json:"type"`

	AuthorUsername string `gorm:"size:24;index;not null" json:"author_username"`
	Author         User   `gorm:"foreignKey:AuthorUsername;references:Username;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	BookTitle string `gorm:"size:512;index;not null" json:"book_title"`
	Book      Book   `gorm:"foreignKey:BookTitle;references:Title;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	Content *string `gorm:"type:text" json:"content,omitempty"`
	Rating  *int    `json:"rating,omitempty"`

	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
}

func (Update) TableName() string {
	return "updates"
}

func (u *Update) IsReview() bool {
	return u.Type == UpdateTypeReview
}
