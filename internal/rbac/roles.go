package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleOperator     = "operator"
	RoleSupport      = "support"
	RoleFinance      = "finance"
	RoleSuperAdmin   = "super_admin"
	RoleBillingAgent = "billing_agent" // hidden service-to-service role
)

func IsSuperAdmin(role string) bool { return role == RoleSuperAdmin }

func IsHiddenRole(role string) bool { return role == RoleBillingAgent }
