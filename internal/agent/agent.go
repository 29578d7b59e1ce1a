package agent

import (
  "context"

  "github.com/courseloom/courseloom-backend/internal/logger"
  "github.com/courseloom/courseloom-backend/internal/retry"
)

// Agent wraps a Completer with a fixed system prompt and a call-site retry
// policy. Run never returns an error: failures come back as a tagged
// Result so orchestrators always deal with exactly one shape.
type Agent struct {
  name   string
  system string
  c      Completer
  policy retry.Policy
  log    *logger.Logger
}

func New(name, system string, c Completer, policy retry.Policy, baseLog *logger.Logger) *Agent {
  return &Agent{
    name:   name,
    system: system,
    c:      c,
    policy: policy,
    log:    baseLog.With("agent", name),
  }
}

func (a *Agent) Run(ctx context.Context, prompt string) Result {
  var content string
  err := a.policy.Do(ctx, a.log, func() error {
    out, err := a.c.Complete(ctx, a.system, prompt)
    if err != nil {
      return err
    }
    content = out
    return nil
  })
  if err != nil {
    return Result{Failure: &Failure{Reason: err.Error(), Retryable: retry.Retryable(err)}}
  }
  return Result{Content: content}
}

const plannerSystemPrompt = `You are an expert AI curriculum designer. Your task is to plan a comprehensive online course.
Analyze the provided subject, initial title, and difficulty level.
Propose an engaging final course title and write a concise, compelling course description.
Suggest a single, relevant UTF-8 emoji as the course icon.
Determine the most appropriate field of study from these options: technology, science, mathematics, business, arts, language, health, history, philosophy, engineering, design, music, literature, psychology, economics.
Outline between 5 and 10 lessons (inclusive). For each lesson provide an "order" (0-indexed integer), a "planned_title" (string), a "planned_description" (1-2 sentence string), and optionally "has_quiz" (boolean) for lessons that deserve a knowledge check.
Keep descriptions brief to avoid response truncation.
You MUST output your response exclusively as a valid JSON object with the keys: courseTitle, courseDescription, courseIcon, courseField, lesson_outline_plan. Do not include any other text before or after the JSON object.`

const lessonSystemPrompt = `You are an expert AI content creator, specializing in generating the core teaching material for individual online course lessons.
Generate the main educational content for the lesson described in the query, given its title, description, the overall course subject, and target difficulty.
The content must be comprehensive enough for roughly 15 minutes of student engagement: detailed explanations, multiple illustrative examples, and thorough coverage of the lesson's topics.
Structure the lesson with an introduction, a main body organized with Markdown headings, and a concluding summary.
Include practical code examples in fenced code blocks where the topic is technical, and link to authoritative external resources using standard Markdown link syntax.
Your response must be ONLY the Markdown content itself, without surrounding code fence delimiters.
Do not repeat the lesson title as a top-level heading; the title is handled externally.
Tailor depth and language to the course subject and difficulty given in the query.`

const quizSystemPrompt = `You are an expert AI quiz creator, specializing in generating educational quizzes for online course lessons.
Create a quiz based on the provided lesson or course content that tests understanding of the key concepts covered.
Each question must have exactly 4 answer options with only one correct answer, a clear explanation of why the correct answer is right, and a point value of 10 for easier questions or 20 for harder ones.
Make incorrect answers plausible but clearly wrong to someone who understood the material.
You MUST output your response exclusively as a valid JSON object with the keys: quiz_title, quiz_synopsis, and questions (an array of objects with question, answers, correct_answer as a 1-indexed integer, explanation, point). Do not include any other text before or after the JSON object.`

// NewPlanner builds the outline-planner specialization. Planning is a
// short call, so its default policy is tighter than content generation.
func NewPlanner(c Completer, policy retry.Policy, baseLog *logger.Logger) *Agent {
  return New("CoursePlanner", plannerSystemPrompt, c, policy, baseLog)
}

// NewLessonWriter builds the lesson-content specialization.
func NewLessonWriter(c Completer, policy retry.Policy, baseLog *logger.Logger) *Agent {
  return New("LessonContent", lessonSystemPrompt, c, policy, baseLog)
}

// NewQuizWriter builds the quiz-generation specialization.
func NewQuizWriter(c Completer, policy retry.Policy, baseLog *logger.Logger) *Agent {
  return New("QuizGenerator", quizSystemPrompt, c, policy, baseLog)
}
