package domain

// UserModel learner account
type UserModel struct {
	ID              string   `json:"id"`
	Name            string   `json:"name" validate:"required,max=64"`
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password,omitempty" validate:"required,min=6"`
	LoginRetry      int      `json:"-"`
	LastLogin       int64    `json:"-"`
	EnrolledCourses []string `json:"enrolledCourses"`
}

// IsEnrolled reports whether the user enrolled in courseID
func (u *UserModel) IsEnrolled(courseID string) bool {
	for _, id := range u.EnrolledCourses {
		if id == courseID {
			return true
		}
	}
	return false
}
