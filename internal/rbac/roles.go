package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleOwner      = "owner"
	RoleSupervisor = "supervisor" // manages campaigns, may hang up live calls
	RoleOperator   = "operator"   // starts calls, monitors their own queues
	RoleAnalyst    = "analyst"    // read-only reporting access
	RoleSuperAdmin = "super_admin"
	RoleAutomation = "automation" // hidden role for the campaign scheduler
)

func IsSuperAdmin(role string) bool { return role == RoleSuperAdmin }

func IsHiddenRole(role string) bool { return role == RoleAutomation }
