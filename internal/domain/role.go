package domain

// Roles carried in the auth platform's JWT. RoleService identifies trusted
// back-office producers (ledger/report jobs) allowed to create notifications.
const (
	RoleAdmin   = "admin"
	RoleUser    = "user"
	RoleService = "service"
)
