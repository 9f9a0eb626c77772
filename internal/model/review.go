package model

import "time"

const (
	MinScore = 1
	MaxScore = 10
)

// Review 评论，同一作者对同一作品只能有一条
type Review struct {
	ID       int64     `gorm:"primaryKey"`
	TitleID  int64     `gorm:"not null;uniqueIndex:idx_reviews_title_author"`
	Title    *Title    `gorm:"constraint:OnDelete:CASCADE;"`
	AuthorID int64     `gorm:"not null;uniqueIndex:idx_reviews_title_author;index"`
	Author   *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
	Text     string    `gorm:"type:text;not null"`
	Score    int       `gorm:"type:smallint;not null;check:chk_reviews_score,score >= 1 AND score <= 10"`
	PubDate  time.Time `gorm:"not null;index"`
}

// Comment 评论下的回复
type Comment struct {
	ID       int64     `gorm:"primaryKey"`
	ReviewID int64     `gorm:"not null;index"`
	Review   *Review   `gorm:"constraint:OnDelete:CASCADE;"`
	AuthorID int64     `gorm:"not null;index"`
	Author   *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
	Text     string    `gorm:"type:text;not null"`
	PubDate  time.Time `gorm:"not null;index"`
}

// AverageScore 计算平均分，没有分数时返回 nil
func AverageScore(scores []int) *float64 {
	if len(scores) == 0 {
		return nil
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	avg := float64(sum) / float64(len(scores))
	return &avg
}
