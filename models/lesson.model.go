package models

import "gorm.io/gorm"

// Lesson is one unit of content; LessonNumber orders lessons within a level
type Lesson struct {
	gorm.Model
	Level        Level  `gorm:"type:varchar(20);not null;uniqueIndex:idx_lesson_level_number" json:"level"`
	LessonNumber int    `gorm:"not null;uniqueIndex:idx_lesson_level_number" json:"lessonNumber"`
	Title        string `gorm:"not null" json:"title"`
	Content      string `gorm:"type:text;not null" json:"content"`
}
