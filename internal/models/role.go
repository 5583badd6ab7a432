package models

// Role is a collaborator permission level on a project.
type Role string

const (
	RoleViewer      Role = "Viewer"
	RoleEditor      Role = "Editor"
	RoleCoDeveloper Role = "Co-Developer"
	RoleDeveloper   Role = "Developer"
)

// roleRank orders roles for permission checks. Developer and Co-Developer
// share the top rank: both may push to main.
var roleRank = map[Role]int{
	RoleViewer:      1,
	RoleEditor:      3,
	RoleCoDeveloper: 5,
	RoleDeveloper:   5,
}

// Rank returns the numeric level of the role, 0 for unknown roles.
func (r Role) Rank() int { return roleRank[r] }

// CanView reports whether the role may read project content.
func (r Role) CanView() bool { return r.Rank() >= 1 }

// CanEdit reports whether the role may commit (at least to a personal branch).
func (r Role) CanEdit() bool { return r.Rank() >= 3 }

// CanPushToMain reports whether the role may write directly to main.
func (r Role) CanPushToMain() bool { return r.Rank() >= 5 }

// NormalizeRole maps unknown role strings to Viewer.
func NormalizeRole(s string) Role {
	switch Role(s) {
	case RoleViewer, RoleEditor, RoleCoDeveloper, RoleDeveloper:
		return Role(s)
	default:
		return RoleViewer
	}
}
