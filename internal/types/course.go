package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Course struct {
	ID                uuid.UUID              `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title             string                 `gorm:"column:title;not null" json:"title"`
	Subject           string                 `gorm:"column:subject;not null" json:"subject"`
	Description       string                 `gorm:"column:description" json:"description"`
	Icon              string                 `gorm:"column:icon" json:"icon,omitempty"`
	Difficulty        CourseDifficulty       `gorm:"column:difficulty;not null;default:medium" json:"difficulty"`
	FieldOfStudy      FieldOfStudy           `gorm:"column:field_of_study" json:"field_of_study,omitempty"`
	LessonOutlinePlan datatypes.JSON         `gorm:"column:lesson_outline_plan;type:jsonb" json:"lesson_outline_plan"`
	GenerationStatus  CourseGenerationStatus `gorm:"column:generation_status;not null;default:draft;index" json:"generation_status"`
	UserStatus        UserCourseStatus       `gorm:"column:user_status;not null;default:not_started" json:"user_status"`
	HasQuizzes        bool                   `gorm:"column:has_quizzes;not null;default:false" json:"has_quizzes"`
	Lessons           []*Lesson              `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"lessons,omitempty"`
	CreatedAt         time.Time              `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time              `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt         gorm.DeletedAt         `gorm:"index" json:"deleted_at,omitempty"`
}

func (Course) TableName() string { return "course" }
