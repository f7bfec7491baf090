package auth

import (
	"encoding/json"
	"fmt"
)

// Resource names an access-controlled area of the console
type Resource string

const (
	ResourceUsers       Resource = "users"
	ResourceRoles       Resource = "roles"
	ResourceIssues      Resource = "issues"
	ResourceSmallClaims Resource = "small_claims"
	ResourceStatutes    Resource = "statutes"
	ResourceApprovals   Resource = "approvals"
	ResourceLogs        Resource = "logs"
)

// Action names an operation on a resource
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// AdminRole bypasses all permission checks
const AdminRole = "Administrator"

// Resources and Actions are the closed sets a permission matrix may use
var (
	Resources = []Resource{
		ResourceUsers, ResourceRoles, ResourceIssues,
		ResourceSmallClaims, ResourceStatutes, ResourceApprovals, ResourceLogs,
	}
	Actions = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}
)

func validResource(r Resource) bool {
	for _, known := range Resources {
		if r == known {
			return true
		}
	}
	return false
}

func validAction(a Action) bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

// PermissionSet maps resource and action to an allow flag.
// Absent resources or actions deny.
type PermissionSet map[Resource]map[Action]bool

// ParsePermissions decodes a role's JSON permission matrix and validates
// every key against the closed resource/action sets. The stored matrix
// uses 0/1 flags.
func ParsePermissions(raw string) (PermissionSet, error) {
	if raw == "" {
		return PermissionSet{}, nil
	}

	var decoded map[string]map[string]int
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("failed to parse permissions: %w", err)
	}

	perms := PermissionSet{}
	for res, actions := range decoded {
		resource := Resource(res)
		if !validResource(resource) {
			return nil, fmt.Errorf("unknown permission resource %q", res)
		}
		perms[resource] = map[Action]bool{}
		for act, flag := range actions {
			action := Action(act)
			if !validAction(action) {
				return nil, fmt.Errorf("unknown permission action %q on %q", act, res)
			}
			perms[resource][action] = flag == 1
		}
	}

	return perms, nil
}

// MarshalPermissions encodes a permission set back to the stored JSON shape
func MarshalPermissions(perms PermissionSet) (string, error) {
	encoded := map[string]map[string]int{}
	for _, res := range Resources {
		encoded[string(res)] = map[string]int{}
		for _, act := range Actions {
			if perms[res][act] {
				encoded[string(res)][string(act)] = 1
			} else {
				encoded[string(res)][string(act)] = 0
			}
		}
	}

	out, err := json.Marshal(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to marshal permissions: %w", err)
	}
	return string(out), nil
}

// Actor is the authenticated principal threaded explicitly through every
// mutating call. There is no ambient current-user anywhere.
type Actor struct {
	ID          int
	Username    string
	Role        string
	Permissions PermissionSet
}

// Can reports whether the actor may perform action on resource.
// Administrators always may; everyone else gets a fail-closed map lookup.
func (a Actor) Can(resource Resource, action Action) bool {
	if a.Role == AdminRole {
		return true
	}
	return a.Permissions[resource][action]
}
