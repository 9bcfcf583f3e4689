package domain

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// LessonType kind of lesson content
type LessonType string

// lesson types
const (
	LessonVideo    LessonType = "video"
	LessonText     LessonType = "text"
	LessonQuiz     LessonType = "quiz"
	LessonDocument LessonType = "document"
	LessonExercise LessonType = "exercise"
)

// QuestionType kind of quiz question
type QuestionType string

// question types
const (
	QuestionMultipleChoice QuestionType = "multiple-choice"
	QuestionTrueFalse      QuestionType = "true-false"
	QuestionText           QuestionType = "text"
)

// Course content tree root.
//
// Lessons is the flat, source-ordered list of every lesson in the course. It
// duplicates Modules[].Lessons and is the authoritative order for sequential
// unlocking, including across module boundaries.
type Course struct {
	ID          string    `json:"id" yaml:"id" validate:"required"`
	Title       string    `json:"title" yaml:"title" validate:"required"`
	Description string    `json:"description,omitempty" yaml:"description"`
	Category    string    `json:"category,omitempty" yaml:"category"`
	Level       string    `json:"level,omitempty" yaml:"level"`
	Modules     []*Module `json:"modules" yaml:"modules" validate:"dive"`
	Lessons     []*Lesson `json:"lessons" yaml:"lessons" validate:"dive"`
}

// Module ordered group of lessons
type Module struct {
	ID          string    `json:"id" yaml:"id" validate:"required"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description"`
	Order       int       `json:"order" yaml:"order"`
	Lessons     []*Lesson `json:"lessons" yaml:"lessons" validate:"dive"`
}

// Lesson single unit of content
type Lesson struct {
	ID       string     `json:"id" yaml:"id" validate:"required"`
	Title    string     `json:"title" yaml:"title"`
	Duration string     `json:"duration,omitempty" yaml:"duration"`
	Type     LessonType `json:"type" yaml:"type" validate:"oneof=video text quiz document exercise"`
	Content  string     `json:"content,omitempty" yaml:"content"`
	Quiz     *Quiz      `json:"quiz,omitempty" yaml:"quiz" validate:"omitempty"`
}

// IsQuiz reports whether the lesson is a quiz lesson
func (l *Lesson) IsQuiz() bool {
	return l.Type == LessonQuiz
}

// Quiz questions attached to a quiz lesson
type Quiz struct {
	ID           string      `json:"id" yaml:"id"`
	Questions    []*Question `json:"questions" yaml:"questions" validate:"dive"`
	PassingScore int         `json:"passingScore" yaml:"passing_score" validate:"min=0,max=100"`
	TimeLimit    int         `json:"timeLimit,omitempty" yaml:"time_limit" validate:"min=0"` // minutes
}

// Question single quiz question
type Question struct {
	ID            string       `json:"id" yaml:"id" validate:"required"`
	Text          string       `json:"text" yaml:"text"`
	Type          QuestionType `json:"type" yaml:"type" validate:"oneof=multiple-choice true-false text"`
	Options       []string     `json:"options,omitempty" yaml:"options"`
	CorrectAnswer AnswerSet    `json:"correctAnswer,omitempty" yaml:"correct_answer"`
	Explanation   string       `json:"explanation,omitempty" yaml:"explanation"`
}

// FindLesson returns the lesson with id from the flat list and its position
func (c *Course) FindLesson(id string) (*Lesson, int) {
	for i, l := range c.Lessons {
		if l.ID == id {
			return l, i
		}
	}
	return nil, -1
}

// FindModule returns the module with id
func (c *Course) FindModule(id string) *Module {
	for _, m := range c.Modules {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// ModuleOf returns the module containing lessonID, nil if none does
func (c *Course) ModuleOf(lessonID string) *Module {
	for _, m := range c.Modules {
		for _, l := range m.Lessons {
			if l.ID == lessonID {
				return m
			}
		}
	}
	return nil
}

// AnswerSet expected answers of a question, decodes from a single string or a list
type AnswerSet []string

// UnmarshalJSON accepts "a" as well as ["a", "b"]
func (as *AnswerSet) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*as = AnswerSet{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*as = many
	return nil
}

// UnmarshalYAML accepts a scalar as well as a sequence
func (as *AnswerSet) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*as = AnswerSet{node.Value}
		return nil
	}
	var many []string
	if err := node.Decode(&many); err != nil {
		return err
	}
	*as = many
	return nil
}

// Contains reports whether answer is one of the expected answers
func (as AnswerSet) Contains(answer string) bool {
	for _, a := range as {
		if a == answer {
			return true
		}
	}
	return false
}
