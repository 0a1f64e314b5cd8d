package authz

import "fmt"

// matrix is the capability table: (resource, role) -> allowed actions in
// canonical order. It is populated once at package init and never mutated,
// which makes every lookup safe for unlimited concurrent use.
//
// Staff may create and update products but never delete them; users fully
// manage their own addresses, cart and wishlist; checkout defines no delete
// for anyone. Changing a cell here is a policy change, not a code change.
var matrix = map[Resource]map[Role][]Action{
	ResourceDashboard: {
		RoleAdmin: {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		RoleStaff: {ActionRead, ActionUpdate},
		RoleUser:  {ActionRead},
	},
	ResourceUsers: {
		RoleAdmin: {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		RoleStaff: {ActionRead},
		RoleUser:  {},
	},
	ResourceProducts: {
		RoleAdmin: {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		RoleStaff: {ActionRead, ActionCreate, ActionUpdate},
		RoleUser:  {ActionRead},
	},
	ResourceOrders: {
		RoleAdmin: {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		RoleStaff: {ActionRead, ActionUpdate},
		RoleUser:  {ActionRead, ActionCreate},
	},
	ResourceCategories: {
		RoleAdmin: {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		RoleStaff: {ActionRead, ActionCreate, ActionUpdate},
		RoleUser:  {ActionRead},
	},
	ResourceReports: {
		RoleAdmin: {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		RoleStaff: {ActionRead},
		RoleUser:  {},
	},
	ResourceAnalytics: {
		RoleAdmin: {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		RoleStaff: {ActionRead},
		RoleUser:  {},
	},
	ResourceSettings: {
		RoleAdmin: {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		RoleStaff: {ActionRead},
		RoleUser:  {ActionRead},
	},
	ResourceSupport: {
		RoleAdmin: {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		RoleStaff: {ActionRead, ActionCreate, ActionUpdate},
		RoleUser:  {ActionRead, ActionCreate},
	},
	ResourceCustomers: {
		RoleAdmin: {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		RoleStaff: {ActionRead, ActionUpdate},
		RoleUser:  {},
	},
	ResourceProfile: {
		RoleAdmin: {ActionRead, ActionUpdate},
		RoleStaff: {ActionRead, ActionUpdate},
		RoleUser:  {ActionRead, ActionUpdate},
	},
	ResourceAddresses: {
		RoleAdmin: {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		RoleStaff: {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		RoleUser:  {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
	},
	ResourceCart: {
		RoleAdmin: {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		RoleStaff: {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		RoleUser:  {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
	},
	ResourceWishlist: {
		RoleAdmin: {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		RoleStaff: {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		RoleUser:  {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
	},
	ResourceCheckout: {
		RoleAdmin: {ActionRead, ActionCreate, ActionUpdate},
		RoleStaff: {ActionRead, ActionCreate, ActionUpdate},
		RoleUser:  {ActionRead, ActionCreate, ActionUpdate},
	},
}

// AllowedActions returns the actions the role may perform on the resource,
// in canonical declared order. Unknown resource or role yields an empty
// slice; it never returns nil to force a panic path and never errors.
func AllowedActions(resource Resource, role Role) []Action {
	roles, ok := matrix[resource]
	if !ok {
		return []Action{}
	}
	actions, ok := roles[role]
	if !ok {
		return []Action{}
	}
	out := make([]Action, len(actions))
	copy(out, actions)
	return out
}

// HasPermission reports whether the role may perform the action on the
// resource. Unknown resource, action, or role all fail closed.
func HasPermission(resource Resource, action Action, role Role) bool {
	for _, allowed := range matrix[resource][role] {
		if allowed == action {
			return true
		}
	}
	return false
}

// CanRead reports read permission on the resource.
func CanRead(resource Resource, role Role) bool {
	return HasPermission(resource, ActionRead, role)
}

// CanCreate reports create permission on the resource.
func CanCreate(resource Resource, role Role) bool {
	return HasPermission(resource, ActionCreate, role)
}

// CanUpdate reports update permission on the resource.
func CanUpdate(resource Resource, role Role) bool {
	return HasPermission(resource, ActionUpdate, role)
}

// CanDelete reports delete permission on the resource.
func CanDelete(resource Resource, role Role) bool {
	return HasPermission(resource, ActionDelete, role)
}

// Validate checks the matrix for exhaustiveness: every declared resource must
// carry an entry for every declared role, and every listed action must be a
// known action. Missing entries still deny at lookup time; this surfaces them
// at startup as configuration errors instead of silent empty grants.
func Validate() error {
	known := make(map[Action]struct{}, len(Actions()))
	for _, a := range Actions() {
		known[a] = struct{}{}
	}
	for _, resource := range Resources() {
		roles, ok := matrix[resource]
		if !ok {
			return fmt.Errorf("authz: resource %q missing from matrix", resource)
		}
		for _, role := range Roles() {
			actions, ok := roles[role]
			if !ok {
				return fmt.Errorf("authz: resource %q missing entry for role %q", resource, role)
			}
			for _, a := range actions {
				if _, ok := known[a]; !ok {
					return fmt.Errorf("authz: resource %q role %q lists unknown action %q", resource, role, a)
				}
			}
		}
	}
	return nil
}
