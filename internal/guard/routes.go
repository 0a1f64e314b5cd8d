// Package guard classifies inbound request paths and enforces coarse-grained
// access before any handler logic runs.
package guard

import "strings"

// RouteClass is the statically determined access class of a path.
type RouteClass int

const (
	// RoutePublic requires no session.
	RoutePublic RouteClass = iota
	// RouteExcluded is infrastructure the guard never inspects: static
	// assets, the auth endpoints themselves, health and metrics.
	RouteExcluded
	// RouteProtected requires any authenticated principal.
	RouteProtected
	// RouteAdminOnly requires the admin role.
	RouteAdminOnly
	// RouteStaffOrAdmin requires the staff or admin role.
	RouteStaffOrAdmin
	// RouteProtectedAPI requires a session and answers JSON, never redirects.
	RouteProtectedAPI
	// RouteUnclassified matched no table; it is treated exactly like
	// RouteProtected (fail closed) and logged as a configuration gap.
	RouteUnclassified
)

func (c RouteClass) String() string {
	switch c {
	case RoutePublic:
		return "public"
	case RouteExcluded:
		return "excluded"
	case RouteProtected:
		return "protected"
	case RouteAdminOnly:
		return "admin_only"
	case RouteStaffOrAdmin:
		return "staff_or_admin"
	case RouteProtectedAPI:
		return "protected_api"
	case RouteUnclassified:
		return "unclassified"
	}
	return "unknown"
}

// Classification tables. Immutable after process start; classification is
// pure prefix matching and consults no application state.
var (
	excludedPrefixes = []string{
		"/static/",
		"/auth/",
		"/api/auth/",
		"/healthz",
		"/metrics",
		"/favicon.ico",
	}

	publicPaths = []string{
		"/",
		"/shop",
		"/categories",
		"/about",
		"/contact",
		"/help",
		"/shipping",
		"/returns",
		"/login",
		"/register",
		"/unauthorized",
	}

	adminPrefixes = []string{
		"/admin",
	}

	staffPrefixes = []string{
		"/staff",
	}

	protectedPaths = []string{
		"/dashboard",
		"/users",
		"/profile",
		"/products",
		"/orders",
		"/cart",
		"/checkout",
		"/wishlist",
		"/reports",
		"/analytics",
		"/settings",
		"/support",
		"/customers",
		"/addresses",
		"/user",
	}

	protectedAPIPrefixes = []string{
		"/api/users",
		"/api/products",
		"/api/orders",
		"/api/cart",
		"/api/reports",
		"/api/settings",
		"/api/support",
		"/api/customers",
	}
)

// Classify resolves the access class of a path. When a path matches several
// tables the most restrictive classification wins, so a role-restricted
// prefix beats membership in the generic protected list.
func Classify(path string) RouteClass {
	if path == "" {
		return RouteUnclassified
	}

	for _, prefix := range excludedPrefixes {
		if strings.HasPrefix(path, prefix) || path == strings.TrimSuffix(prefix, "/") {
			return RouteExcluded
		}
	}
	// Asset-style paths (anything with a file extension) skip the guard the
	// same way the static prefixes do.
	if strings.Contains(lastSegment(path), ".") {
		return RouteExcluded
	}

	if matchesPrefix(path, adminPrefixes) {
		return RouteAdminOnly
	}
	if matchesPrefix(path, staffPrefixes) {
		return RouteStaffOrAdmin
	}

	if strings.HasPrefix(path, "/api/") {
		if matchesPrefix(path, protectedAPIPrefixes) {
			return RouteProtectedAPI
		}
		// Unlisted API paths answer for themselves (e.g. /api/permissions
		// serves anonymous callers a role-less payload).
		return RoutePublic
	}

	if matchesExact(path, publicPaths) {
		return RoutePublic
	}
	if matchesExact(path, protectedPaths) {
		return RouteProtected
	}

	return RouteUnclassified
}

// matchesExact reports whether path equals an entry or sits beneath one.
func matchesExact(path string, table []string) bool {
	for _, route := range table {
		if path == route {
			return true
		}
		if route != "/" && strings.HasPrefix(path, route+"/") {
			return true
		}
	}
	return false
}

func matchesPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func lastSegment(path string) string {
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
