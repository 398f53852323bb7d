package models

// Staff roles. Managers may save audits and change roles.
const (
	RoleFlorist = "florist"
	RoleManager = "manager"
)

// Staff is a shop employee shown on the profile screen.
// It maps to the `staff` table in SQLite.
type Staff struct {
	ID       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	FullName string `db:"full_name" json:"full_name,omitempty"`
	Phone    string `db:"phone" json:"phone,omitempty"`
	Email    string `db:"email" json:"email,omitempty"`
	Role     string `db:"role" json:"role"`
}

// NewManager creates a staff model with Role preset to "manager".
func NewManager(username string) *Staff {
	return &Staff{Username: username, Role: RoleManager}
}
