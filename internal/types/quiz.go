package types

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Quiz struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"course_id"`
	Course           *Course        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	LessonID         *uuid.UUID     `gorm:"type:uuid;index" json:"lesson_id,omitempty"`
	Lesson           *Lesson        `gorm:"constraint:OnDelete:CASCADE;foreignKey:LessonID;references:ID" json:"lesson,omitempty"`
	QuizData         datatypes.JSON `gorm:"column:quiz_data;type:jsonb;not null" json:"quiz_data"`
	TimeLimitSeconds int            `gorm:"column:time_limit_seconds;not null;default:300" json:"time_limit_seconds"`
	PassingScore     int            `gorm:"column:passing_score;not null;default:70" json:"passing_score"`
	IsFinalQuiz      bool           `gorm:"column:is_final_quiz;not null;default:false" json:"is_final_quiz"`
	Passed           *bool          `gorm:"column:passed" json:"passed"`
	IsActive         bool           `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Quiz) TableName() string { return "quiz" }

const (
	QuizMinQuestions = 3
	QuizMaxQuestions = 12
	QuizAnswerCount  = 4
)

// QuizQuestion is one multiple-choice question inside a quiz payload.
// CorrectAnswer is 1-indexed into Answers.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Answers       []string `json:"answers"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	Point         int      `json:"point"`
}

// QuizData is the structured payload stored in the quiz_data jsonb column.
type QuizData struct {
	Title     string         `json:"quiz_title"`
	Synopsis  string         `json:"quiz_synopsis,omitempty"`
	Questions []QuizQuestion `json:"questions"`
}

// Validate enforces the fixed question schema: 3-12 questions, exactly 4
// answer options each, correct answer marker within 1..4.
func (q *QuizData) Validate() error {
	n := len(q.Questions)
	if n < QuizMinQuestions || n > QuizMaxQuestions {
		return fmt.Errorf("quiz must have between %d and %d questions, got %d", QuizMinQuestions, QuizMaxQuestions, n)
	}
	for i, question := range q.Questions {
		if question.Question == "" {
			return fmt.Errorf("question %d has empty text", i)
		}
		if len(question.Answers) != QuizAnswerCount {
			return fmt.Errorf("question %d must have exactly %d answer options, got %d", i, QuizAnswerCount, len(question.Answers))
		}
		if question.CorrectAnswer < 1 || question.CorrectAnswer > QuizAnswerCount {
			return fmt.Errorf("question %d correct answer marker %d out of range 1..%d", i, question.CorrectAnswer, QuizAnswerCount)
		}
	}
	return nil
}

func (q *QuizData) Encode() datatypes.JSON {
	b, _ := json.Marshal(q)
	return datatypes.JSON(b)
}

func DecodeQuizData(js datatypes.JSON) (*QuizData, error) {
	var qd QuizData
	if err := json.Unmarshal(js, &qd); err != nil {
		return nil, err
	}
	return &qd, nil
}
