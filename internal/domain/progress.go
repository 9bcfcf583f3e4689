package domain

import "time"

// ProgressRecord learning state of one user in one course
type ProgressRecord struct {
	UserID           string         `json:"userId"`
	CourseID         string         `json:"courseId"`
	CompletedLessons []string       `json:"completedLessons"`
	CompletedModules []string       `json:"completedModules"`
	CurrentLesson    string         `json:"currentLesson,omitempty"`
	Progress         int            `json:"progress"` // 0-100
	QuizScores       map[string]int `json:"quizScores"` // lesson id -> last score
	LastAccessed     time.Time      `json:"lastAccessed"`
}

// NewProgressRecord create an empty record
func NewProgressRecord(userID, courseID string) *ProgressRecord {
	return &ProgressRecord{
		UserID:           userID,
		CourseID:         courseID,
		CompletedLessons: []string{},
		CompletedModules: []string{},
		QuizScores:       make(map[string]int),
	}
}

// Normalize collapse duplicated ids and fill nil collections
func (pr *ProgressRecord) Normalize() *ProgressRecord {
	pr.CompletedLessons = dedupe(pr.CompletedLessons)
	pr.CompletedModules = dedupe(pr.CompletedModules)
	if pr.QuizScores == nil {
		pr.QuizScores = make(map[string]int)
	}
	return pr
}

// HasCompletedLesson membership test, nil record completes nothing
func (pr *ProgressRecord) HasCompletedLesson(lessonID string) bool {
	if pr == nil {
		return false
	}
	for _, id := range pr.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}

// HasCompletedModule membership test, nil record completes nothing
func (pr *ProgressRecord) HasCompletedModule(moduleID string) bool {
	if pr == nil {
		return false
	}
	for _, id := range pr.CompletedModules {
		if id == moduleID {
			return true
		}
	}
	return false
}

// QuizScore last recorded score for lessonID
func (pr *ProgressRecord) QuizScore(lessonID string) (int, bool) {
	if pr == nil {
		return 0, false
	}
	score, ok := pr.QuizScores[lessonID]
	return score, ok
}

// CompleteLesson add lessonID to the completed set, returns false if it was already there
func (pr *ProgressRecord) CompleteLesson(lessonID string) bool {
	if pr.HasCompletedLesson(lessonID) {
		return false
	}
	pr.CompletedLessons = append(pr.CompletedLessons, lessonID)
	return true
}

// CompleteModule add moduleID to the completed set, returns false if it was already there
func (pr *ProgressRecord) CompleteModule(moduleID string) bool {
	if pr.HasCompletedModule(moduleID) {
		return false
	}
	pr.CompletedModules = append(pr.CompletedModules, moduleID)
	return true
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
