package domain

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleUser      Role = "user"
	RoleInspector Role = "inspector"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleInspector:
		return true
	}
	return false
}

// Normalized collapses the role to the binary classification the
// dashboard routes on: "inspector" stays "inspector", everything else
// routes as "admin". A "user" role therefore lands on the admin path
// and gets bounced straight back out by the admin gate; that cycle is
// pinned by tests until product decides otherwise.
func (r Role) Normalized() Role {
	if r == RoleInspector {
		return RoleInspector
	}
	return RoleAdmin
}

func (r Role) String() string { return string(r) }
