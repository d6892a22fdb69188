package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"subject:view",
		"progress:update",
		"progress:view",
		"quiz:take",
		"quiz:analyze",
		"remedial:generate",
		"lesson:search",
	},
	"admin": {
		"*", // everything, including admin:override and content:manage
	},
}
