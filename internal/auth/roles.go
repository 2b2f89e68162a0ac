package auth

import "errors"

// Role is the closed set of account roles. All role checks in the
// codebase go through ParseRole and Can; handlers never compare
// raw strings.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleEmployee       Role = "employee"
	RoleManager        Role = "manager"
	RoleChief          Role = "chief"
	RoleGodownIncharge Role = "godown_incharge"
)

var ErrUnknownRole = errors.New("unknown role")

// roleAliases maps URL path segments to roles. The mobile client uses
// "godown-incharge" in routes; the database stores "godown_incharge".
var roleAliases = map[string]Role{
	"admin":           RoleAdmin,
	"employee":        RoleEmployee,
	"manager":         RoleManager,
	"chief":           RoleChief,
	"godown_incharge": RoleGodownIncharge,
	"godown-incharge": RoleGodownIncharge,
	"godownincharge":  RoleGodownIncharge,
}

func ParseRole(s string) (Role, error) {
	if r, ok := roleAliases[s]; ok {
		return r, nil
	}
	return "", ErrUnknownRole
}

func (r Role) String() string { return string(r) }

// Valid reports whether r is one of the five known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmployee, RoleManager, RoleChief, RoleGodownIncharge:
		return true
	}
	return false
}

// Capability is a named permission checked by handlers.
type Capability string

const (
	CapManageStaff     Capability = "manage_staff"      // create/update/delete accounts
	CapCreateLead      Capability = "create_lead"       // submit new leads
	CapViewAllLeads    Capability = "view_all_leads"    // read every lead
	CapUpdateLeadState Capability = "update_lead_state" // advance the status pipeline
	CapDeleteLead      Capability = "delete_lead"
	CapCompiledFile    Capability = "compiled_file"   // attach/remove compiled PDFs
	CapReviewKYC       Capability = "review_kyc"      // approve/reject employee KYC
	CapViewDashboard   Capability = "view_dashboard"  // aggregate counts
	CapExportReports   Capability = "export_reports"  // CSV/PDF exports
)

var capabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapManageStaff:     true,
		CapViewAllLeads:    true,
		CapUpdateLeadState: true,
		CapDeleteLead:      true,
		CapCompiledFile:    true,
		CapReviewKYC:       true,
		CapViewDashboard:   true,
		CapExportReports:   true,
	},
	RoleEmployee: {
		CapCreateLead: true,
	},
	RoleManager: {
		CapViewAllLeads:    true,
		CapUpdateLeadState: true,
		CapCompiledFile:    true,
		CapViewDashboard:   true,
		CapExportReports:   true,
	},
	RoleChief: {
		CapViewAllLeads:    true,
		CapUpdateLeadState: true,
		CapViewDashboard:   true,
		CapExportReports:   true,
	},
	RoleGodownIncharge: {
		CapViewAllLeads:  true,
		CapViewDashboard: true,
	},
}

// Can is the single capability check used everywhere a role decision
// is made.
func (r Role) Can(c Capability) bool {
	return capabilities[r][c]
}
