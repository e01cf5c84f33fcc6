package domain

// Role names recognised by the leads row-level security policies.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Identity is the authenticated caller on whose behalf scoped lead queries run.
// It is forwarded to the database as request claims so row-level access policies
// can decide which rows are visible.
type Identity struct {
	// Subject is the caller's user ID (the JWT "sub" claim).
	Subject string `json:"sub"`
	// Role is the caller's application role, e.g. RoleAdmin.
	Role string `json:"role"`
}
