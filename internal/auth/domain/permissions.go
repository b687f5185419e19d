package domain

// Permission identifies a single action on a resource, e.g. "write:devices".
type Permission string

// PermissionAll is the admin wildcard: it satisfies every permission check
// without enumerating individual permissions.
const PermissionAll Permission = "*"

const (
	PermissionReadDevices      Permission = "read:devices"
	PermissionWriteDevices     Permission = "write:devices"
	PermissionReadModels       Permission = "read:models"
	PermissionWriteModels      Permission = "write:models"
	PermissionReadConnections  Permission = "read:connections"
	PermissionWriteConnections Permission = "write:connections"
	PermissionReadFloors       Permission = "read:floors"
	PermissionWriteFloors      Permission = "write:floors"
	PermissionReadAttributes   Permission = "read:attributes"
	PermissionWriteAttributes  Permission = "write:attributes"
	PermissionManageUsers      Permission = "manage:users"
)

// AllPermissions lists every concrete permission the API defines.
func AllPermissions() []Permission {
	return []Permission{
		PermissionReadDevices, PermissionWriteDevices,
		PermissionReadModels, PermissionWriteModels,
		PermissionReadConnections, PermissionWriteConnections,
		PermissionReadFloors, PermissionWriteFloors,
		PermissionReadAttributes, PermissionWriteAttributes,
		PermissionManageUsers,
	}
}

// PermissionRegistry is the immutable role -> permission-set mapping, built
// once at startup and shared by the login flow and the authorization
// middleware.
type PermissionRegistry struct {
	byRole map[Role][]Permission
}

// NewPermissionRegistry builds the registry with the fixed role map.
func NewPermissionRegistry() *PermissionRegistry {
	return &PermissionRegistry{
		byRole: map[Role][]Permission{
			RoleAdmin: {PermissionAll},
			RoleUser: {
				PermissionReadDevices, PermissionWriteDevices,
				PermissionReadModels, PermissionWriteModels,
				PermissionReadConnections, PermissionWriteConnections,
				PermissionReadFloors, PermissionWriteFloors,
				PermissionReadAttributes, PermissionWriteAttributes,
			},
			RoleViewer: {
				PermissionReadDevices,
				PermissionReadModels,
				PermissionReadConnections,
				PermissionReadFloors,
				PermissionReadAttributes,
			},
		},
	}
}

// PermissionsFor resolves the permission set for a role. Unknown roles get an
// empty set. The returned slice is a copy; callers cannot mutate the registry.
func (r *PermissionRegistry) PermissionsFor(role Role) []Permission {
	perms, ok := r.byRole[role]
	if !ok {
		return []Permission{}
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// Knows reports whether the role is part of the closed role set.
func (r *PermissionRegistry) Knows(role Role) bool {
	_, ok := r.byRole[role]
	return ok
}

// HasPermission reports whether the granted set satisfies the required
// permission, either by exact match or through the admin wildcard.
func (r *PermissionRegistry) HasPermission(granted []Permission, required Permission) bool {
	for _, p := range granted {
		if p == PermissionAll || p == required {
			return true
		}
	}
	return false
}
