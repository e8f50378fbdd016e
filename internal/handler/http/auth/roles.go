package auth

import "strings"

// Roles carried in the "role" claim of issued tokens.
const (
	// RoleAdmin may start analyses and search.
	RoleAdmin = "admin"
	// RoleViewer may only search the fragments of the last run.
	RoleViewer = "viewer"
)

// Permission lists the methods and path patterns a role may use.
// A pattern ending in "/*" matches the prefix itself and everything below it.
type Permission struct {
	// AllowedMethods are upper-case HTTP methods.
	AllowedMethods []string
	// AllowedPaths are exact paths or "/*"-suffixed prefixes.
	AllowedPaths []string
}

// RolePermissions maps each role to its permission set.
var RolePermissions = map[string]Permission{
	RoleAdmin: {
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedPaths:   []string{"/*"},
	},
	RoleViewer: {
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedPaths:   []string{"/search", "/swagger/*"},
	},
}

// checkRolePermission reports whether role may call method on path.
// Unknown and empty roles are denied.
func checkRolePermission(role, method, path string) bool {
	perm, ok := RolePermissions[role]
	if !ok {
		return false
	}
	if !contains(perm.AllowedMethods, method) {
		return false
	}
	return matchesPathPattern(path, perm.AllowedPaths)
}

func matchesPathPattern(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern == "/*" {
			return true
		}
		if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				return true
			}
			continue
		}
		if path == pattern {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
