package model

type UserRole string

const (
	Student UserRole = "student"
	Tutor   UserRole = "tutor"
	Admin   UserRole = "admin"
)

// Privileged reports whether the role may see correct answers and
// explanations regardless of assessment visibility flags.
func (r UserRole) Privileged() bool {
	return r == Tutor || r == Admin
}
