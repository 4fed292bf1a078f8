package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"quiz:view",
		"attempt:submit",
		"attempt:complete",
		"attempt:view-own",
	},
	"teacher": {
		"quiz:view",
		"quiz:create",
		"attempt:view-all",
		"users:list",
	},
	"admin": {
		"*", // everything
	},
}
