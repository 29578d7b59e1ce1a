package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Lesson struct {
	ID                 uuid.UUID              `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseID           uuid.UUID              `gorm:"type:uuid;not null;index" json:"course_id"`
	Course             *Course                `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	OrderInCourse      int                    `gorm:"column:order_in_course;not null" json:"order_in_course"`
	Title              string                 `gorm:"column:title;not null" json:"title"`
	PlannedDescription string                 `gorm:"column:planned_description" json:"planned_description,omitempty"`
	ContentMD          string                 `gorm:"column:content_md" json:"content_md,omitempty"`
	ExternalLinks      datatypes.JSON         `gorm:"column:external_links;type:jsonb" json:"external_links"`
	GenerationStatus   LessonGenerationStatus `gorm:"column:generation_status;not null;default:planned;index" json:"generation_status"`
	UserStatus         UserLessonStatus       `gorm:"column:user_status;not null;default:not_started" json:"user_status"`
	HasQuiz            bool                   `gorm:"column:has_quiz;not null;default:false" json:"has_quiz"`
	CreatedAt          time.Time              `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time              `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt          gorm.DeletedAt         `gorm:"index" json:"deleted_at,omitempty"`
}

func (Lesson) TableName() string { return "lesson" }
