package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePermissions(t *testing.T) {
	perms, err := ParsePermissions(`{"issues": {"create": 1, "read": 1, "update": 0}, "logs": {"read": 1}}`)
	require.NoError(t, err)

	assert.True(t, perms[ResourceIssues][ActionCreate])
	assert.True(t, perms[ResourceIssues][ActionRead])
	assert.False(t, perms[ResourceIssues][ActionUpdate])
	assert.False(t, perms[ResourceIssues][ActionDelete])
	assert.True(t, perms[ResourceLogs][ActionRead])
	assert.False(t, perms[ResourceStatutes][ActionRead])
}

func TestParsePermissions_Empty(t *testing.T) {
	perms, err := ParsePermissions("")
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestParsePermissions_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "not json"},
		{"unknown resource", `{"reports": {"read": 1}}`},
		{"unknown action", `{"issues": {"approve": 1}}`},
		{"wrong value shape", `{"issues": {"read": "yes"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePermissions(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestParsePermissions_NonOneFlagDenies(t *testing.T) {
	perms, err := ParsePermissions(`{"issues": {"read": 2}}`)
	require.NoError(t, err)
	assert.False(t, perms[ResourceIssues][ActionRead])
}

func TestMarshalPermissions_RoundTrip(t *testing.T) {
	in := PermissionSet{
		ResourceStatutes: {ActionCreate: true, ActionUpdate: true},
		ResourceLogs:     {ActionRead: true},
	}

	raw, err := MarshalPermissions(in)
	require.NoError(t, err)

	out, err := ParsePermissions(raw)
	require.NoError(t, err)

	assert.True(t, out[ResourceStatutes][ActionCreate])
	assert.True(t, out[ResourceStatutes][ActionUpdate])
	assert.True(t, out[ResourceLogs][ActionRead])
	assert.False(t, out[ResourceStatutes][ActionDelete])
	assert.False(t, out[ResourceUsers][ActionRead])
}

func TestActorCan(t *testing.T) {
	editor := Actor{
		ID:       2,
		Username: "editor",
		Role:     "Editor",
		Permissions: PermissionSet{
			ResourceStatutes: {ActionCreate: true, ActionRead: true},
		},
	}

	assert.True(t, editor.Can(ResourceStatutes, ActionCreate))
	assert.True(t, editor.Can(ResourceStatutes, ActionRead))
	assert.False(t, editor.Can(ResourceStatutes, ActionDelete))
	assert.False(t, editor.Can(ResourceApprovals, ActionUpdate))
	assert.False(t, editor.Can(ResourceUsers, ActionRead))
}

func TestActorCan_AdminBypass(t *testing.T) {
	admin := Actor{ID: 1, Username: "admin", Role: AdminRole}

	for _, res := range Resources {
		for _, act := range Actions {
			assert.True(t, admin.Can(res, act), "admin should be allowed %s on %s", act, res)
		}
	}
}

func TestActorCan_NilPermissionsFailClosed(t *testing.T) {
	actor := Actor{ID: 3, Username: "viewer", Role: "Viewer"}
	assert.False(t, actor.Can(ResourceIssues, ActionRead))
}
