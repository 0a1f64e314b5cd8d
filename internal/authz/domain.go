package authz

import "strings"

// Role is a closed set of permission groupings. Exactly one role is attached
// to an authenticated principal at any time; it travels as a session claim.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
	RoleUser  Role = "user"
)

// Roles lists every known role in declaration order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleStaff, RoleUser}
}

// ParseRole maps a raw claim string onto a known role. The boolean reports
// whether the input named a known role; callers that receive false and still
// need a role must fall back to least privilege themselves.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.TrimSpace(strings.ToLower(raw))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleStaff:
		return RoleStaff, true
	case RoleUser:
		return RoleUser, true
	}
	return RoleUser, false
}

// Valid reports whether the role is one of the known variants.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok && Role(strings.ToLower(string(r))) == r
}

func (r Role) String() string { return string(r) }

// Action is an atomic CRUD capability on a resource.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Actions lists every action in canonical order.
func Actions() []Action {
	return []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete}
}

func (a Action) String() string { return string(a) }

// Resource is a protected domain concept. The set is closed and known at
// build time; unknown resources fail closed at lookup.
type Resource string

const (
	ResourceDashboard  Resource = "dashboard"
	ResourceUsers      Resource = "users"
	ResourceProducts   Resource = "products"
	ResourceOrders     Resource = "orders"
	ResourceCategories Resource = "categories"
	ResourceReports    Resource = "reports"
	ResourceAnalytics  Resource = "analytics"
	ResourceSettings   Resource = "settings"
	ResourceSupport    Resource = "support"
	ResourceCustomers  Resource = "customers"
	ResourceProfile    Resource = "profile"
	ResourceAddresses  Resource = "addresses"
	ResourceCart       Resource = "cart"
	ResourceWishlist   Resource = "wishlist"
	ResourceCheckout   Resource = "checkout"
)

// Resources lists every protected resource in declaration order.
func Resources() []Resource {
	return []Resource{
		ResourceDashboard,
		ResourceUsers,
		ResourceProducts,
		ResourceOrders,
		ResourceCategories,
		ResourceReports,
		ResourceAnalytics,
		ResourceSettings,
		ResourceSupport,
		ResourceCustomers,
		ResourceProfile,
		ResourceAddresses,
		ResourceCart,
		ResourceWishlist,
		ResourceCheckout,
	}
}

// ParseResource maps a raw string onto a known resource.
func ParseResource(raw string) (Resource, bool) {
	candidate := Resource(strings.TrimSpace(strings.ToLower(raw)))
	for _, res := range Resources() {
		if res == candidate {
			return res, true
		}
	}
	return "", false
}

func (r Resource) String() string { return string(r) }
