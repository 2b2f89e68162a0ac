package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{input: "admin", want: RoleAdmin},
		{input: "employee", want: RoleEmployee},
		{input: "manager", want: RoleManager},
		{input: "chief", want: RoleChief},
		{input: "godown_incharge", want: RoleGodownIncharge},
		{input: "godown-incharge", want: RoleGodownIncharge},
		{input: "godownincharge", want: RoleGodownIncharge},
		{input: "Admin", wantErr: true},
		{input: "", wantErr: true},
		{input: "superuser", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownRole)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoleCapabilities(t *testing.T) {
	// Only the employee creates leads; only admin manages staff and
	// deletes leads.
	assert.True(t, RoleEmployee.Can(CapCreateLead))
	assert.False(t, RoleAdmin.Can(CapCreateLead))
	assert.False(t, RoleManager.Can(CapCreateLead))

	assert.True(t, RoleAdmin.Can(CapManageStaff))
	assert.True(t, RoleAdmin.Can(CapDeleteLead))
	assert.False(t, RoleManager.Can(CapManageStaff))
	assert.False(t, RoleChief.Can(CapDeleteLead))

	// Back-office roles see all leads, the employee does not
	for _, r := range []Role{RoleAdmin, RoleManager, RoleChief, RoleGodownIncharge} {
		assert.True(t, r.Can(CapViewAllLeads), "role %s", r)
	}
	assert.False(t, RoleEmployee.Can(CapViewAllLeads))

	// Godown incharge is read-only on the pipeline
	assert.False(t, RoleGodownIncharge.Can(CapUpdateLeadState))
	assert.True(t, RoleGodownIncharge.Can(CapViewDashboard))

	// Unknown role has no capabilities at all
	assert.False(t, Role("ghost").Can(CapViewAllLeads))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleGodownIncharge.Valid())
	assert.False(t, Role("").Valid())
	assert.False(t, Role("root").Valid())
}
