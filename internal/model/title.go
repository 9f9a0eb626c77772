package model

// Category 作品分类
type Category struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"size:256;not null;uniqueIndex:idx_categories_name"`
	Slug string `gorm:"size:50;not null;uniqueIndex:idx_categories_slug"`
}

// Genre 作品类型
type Genre struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"size:256;not null;uniqueIndex:idx_genres_name"`
	Slug string `gorm:"size:56;not null;uniqueIndex:idx_genres_slug"`
}

// Title 作品
// Rating 不落库，读取时由评论分数求平均得到，没有评论时为 nil
type Title struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"size:256;not null"`
	Year        int       `gorm:"not null;index"`
	Description *string   `gorm:"size:300"`
	CategoryID  *int64    `gorm:"index"`
	Category    *Category `gorm:"constraint:OnDelete:SET NULL;"`
	Genres      []Genre   `gorm:"many2many:title_genres;constraint:OnDelete:CASCADE;"`
	Rating      *float64  `gorm:"->;-:migration"`
}
