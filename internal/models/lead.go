package models

import "time"

// LeadStatus is the fixed pipeline vocabulary. The first stage is the
// creation default; ordering is a convention the back office follows,
// not an enforced adjacency graph.
type LeadStatus string

const (
	StatusUnderDiscussion        LeadStatus = "UNDER_DISCUSSION"
	StatusVisitScheduled         LeadStatus = "VISIT_SCHEDULED"
	StatusQuotationSent          LeadStatus = "QUOTATION_SENT"
	StatusDocumentsCollected     LeadStatus = "DOCUMENTS_COLLECTED"
	StatusBankProcessPending     LeadStatus = "BANK_PROCESS_PENDING"
	StatusLoanSanctioned         LeadStatus = "LOAN_SANCTIONED"
	StatusAdvanceReceived        LeadStatus = "ADVANCE_RECEIVED"
	StatusMaterialDispatched     LeadStatus = "MATERIAL_DISPATCHED"
	StatusInstallationInProgress LeadStatus = "INSTALLATION_IN_PROGRESS"
	StatusInstallationCompleted  LeadStatus = "INSTALLATION_COMPLETED"
	StatusSubsidyDisbursed       LeadStatus = "SUBSIDY_DISBURSED"
	StatusReferralReceived       LeadStatus = "REFERRAL_RECEIVED"
)

// LeadStatuses lists all stages in pipeline order.
var LeadStatuses = []LeadStatus{
	StatusUnderDiscussion,
	StatusVisitScheduled,
	StatusQuotationSent,
	StatusDocumentsCollected,
	StatusBankProcessPending,
	StatusLoanSanctioned,
	StatusAdvanceReceived,
	StatusMaterialDispatched,
	StatusInstallationInProgress,
	StatusInstallationCompleted,
	StatusSubsidyDisbursed,
	StatusReferralReceived,
}

// InitialLeadStatus is the stage every new lead starts at.
const InitialLeadStatus = StatusUnderDiscussion

// ValidLeadStatus reports whether s is one of the pipeline stages.
func ValidLeadStatus(s string) bool {
	for _, st := range LeadStatuses {
		if string(st) == s {
			return true
		}
	}
	return false
}

type Lead struct {
	ID int `json:"id"`

	// Owner (immutable after creation) with denormalized display
	// fields captured at creation time, so history survives employee
	// deletion.
	SalesmanID   int    `json:"salesman_id"`
	SalesmanName string `json:"salesman_name"`
	SalesmanCode string `json:"salesman_code"`

	CustomerName    string `json:"customer_name"`
	CustomerContact string `json:"customer_contact"`
	CustomerAddress string `json:"customer_address"`
	GPSLocation     string `json:"gps_location,omitempty"`

	CapacityKW   float64 `json:"capacity_kw"`
	QuotedAmount float64 `json:"quoted_amount"`
	BankName     string  `json:"bank_name,omitempty"`
	BankBranch   string  `json:"bank_branch,omitempty"`

	Status    LeadStatus     `json:"status"`
	Documents []LeadDocument `json:"documents"`

	// Single consolidated PDF, replace-on-upload. The object key is
	// stored so deletion never has to parse the URL.
	CompiledFileURL string `json:"compiled_file_url,omitempty"`
	CompiledFileKey string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LeadDocument is one uploaded file attached to a lead. The list is
// ordered and append-only.
type LeadDocument struct {
	ID        int       `json:"id"`
	LeadID    int       `json:"lead_id"`
	FileName  string    `json:"fileName"`
	FileURL   string    `json:"fileUrl"`
	ObjectKey string    `json:"-"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// LeadStatusEvent is one row of the status audit trail.
type LeadStatusEvent struct {
	ID            int        `json:"id"`
	LeadID        int        `json:"lead_id"`
	FromStatus    LeadStatus `json:"from_status"`
	ToStatus      LeadStatus `json:"to_status"`
	ChangedByID   int        `json:"changed_by_id"`
	ChangedByRole string     `json:"changed_by_role"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// CreateLeadRequest represents the form fields of the multipart
// addlead request. Files ride alongside as multipart parts.
type CreateLeadRequest struct {
	CustomerName    string  `json:"customer_name"`
	CustomerContact string  `json:"customer_contact"`
	CustomerAddress string  `json:"customer_address"`
	GPSLocation     string  `json:"gps_location"`
	CapacityKW      float64 `json:"capacity_kw"`
	QuotedAmount    float64 `json:"quoted_amount"`
	BankName        string  `json:"bank_name"`
	BankBranch      string  `json:"bank_branch"`
}

// UpdateLeadStatusRequest represents the request body for a status change
type UpdateLeadStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// UpdateLeadRequest is the allow-listed patch for lead fields. Only
// non-nil fields are applied; owner and status are never patchable
// through this path.
type UpdateLeadRequest struct {
	CustomerName    *string  `json:"customer_name,omitempty"`
	CustomerContact *string  `json:"customer_contact,omitempty"`
	CustomerAddress *string  `json:"customer_address,omitempty"`
	GPSLocation     *string  `json:"gps_location,omitempty"`
	CapacityKW      *float64 `json:"capacity_kw,omitempty"`
	QuotedAmount    *float64 `json:"quoted_amount,omitempty"`
	BankName        *string  `json:"bank_name,omitempty"`
	BankBranch      *string  `json:"bank_branch,omitempty"`
}
