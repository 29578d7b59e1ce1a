package types

// CourseGenerationStatus is the pipeline-owned lifecycle of a course.
// It is only ever written by the generation orchestrator.
type CourseGenerationStatus string

const (
	CourseDraft            CourseGenerationStatus = "draft"
	CourseGenerating       CourseGenerationStatus = "generating"
	CourseCompleted        CourseGenerationStatus = "completed"
	CourseGenerationFailed CourseGenerationStatus = "generation_failed"
)

// LessonGenerationStatus is the pipeline-owned lifecycle of a lesson.
type LessonGenerationStatus string

const (
	LessonPlanned           LessonGenerationStatus = "planned"
	LessonGenerating        LessonGenerationStatus = "generating"
	LessonCompleted         LessonGenerationStatus = "completed"
	LessonGenerationFailed  LessonGenerationStatus = "generation_failed"
	LessonNeedsReview       LessonGenerationStatus = "needs_review"
)

// UserCourseStatus is the learner-owned progress of a course. It is derived
// from lesson user statuses and never set directly by the pipeline.
type UserCourseStatus string

const (
	UserCourseNotStarted UserCourseStatus = "not_started"
	UserCourseInProgress UserCourseStatus = "in_progress"
	UserCourseCompleted  UserCourseStatus = "completed"
)

// UserLessonStatus is the learner-owned progress of a single lesson.
type UserLessonStatus string

const (
	UserLessonNotStarted UserLessonStatus = "not_started"
	UserLessonInProgress UserLessonStatus = "in_progress"
	UserLessonCompleted  UserLessonStatus = "completed"
)

func (s UserLessonStatus) Valid() bool {
	switch s {
	case UserLessonNotStarted, UserLessonInProgress, UserLessonCompleted:
		return true
	}
	return false
}

type CourseDifficulty string

const (
	DifficultyEasy   CourseDifficulty = "easy"
	DifficultyMedium CourseDifficulty = "medium"
	DifficultyHard   CourseDifficulty = "hard"
)

func (d CourseDifficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// FieldOfStudy is the planner-assigned course category.
type FieldOfStudy string

const (
	FieldTechnology  FieldOfStudy = "technology"
	FieldScience     FieldOfStudy = "science"
	FieldMathematics FieldOfStudy = "mathematics"
	FieldBusiness    FieldOfStudy = "business"
	FieldArts        FieldOfStudy = "arts"
	FieldLanguage    FieldOfStudy = "language"
	FieldHealth      FieldOfStudy = "health"
	FieldHistory     FieldOfStudy = "history"
	FieldPhilosophy  FieldOfStudy = "philosophy"
	FieldEngineering FieldOfStudy = "engineering"
	FieldDesign      FieldOfStudy = "design"
	FieldMusic       FieldOfStudy = "music"
	FieldLiterature  FieldOfStudy = "literature"
	FieldPsychology  FieldOfStudy = "psychology"
	FieldEconomics   FieldOfStudy = "economics"
)

var AllFieldsOfStudy = []FieldOfStudy{
	FieldTechnology, FieldScience, FieldMathematics, FieldBusiness,
	FieldArts, FieldLanguage, FieldHealth, FieldHistory, FieldPhilosophy,
	FieldEngineering, FieldDesign, FieldMusic, FieldLiterature,
	FieldPsychology, FieldEconomics,
}

func (f FieldOfStudy) Valid() bool {
	for _, v := range AllFieldsOfStudy {
		if f == v {
			return true
		}
	}
	return false
}
