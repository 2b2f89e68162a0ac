package models

// StatusCount is one bucket of the leads-by-status aggregation.
type StatusCount struct {
	Status LeadStatus `json:"status"`
	Count  int        `json:"count"`
}

// EmployeeLeadCount is one row of the leads-per-employee aggregation.
type EmployeeLeadCount struct {
	SalesmanID   int    `json:"salesman_id"`
	SalesmanName string `json:"salesman_name"`
	SalesmanCode string `json:"salesman_code"`
	LeadCount    int    `json:"lead_count"`
}

// DashboardSummary is the single-call payload for back-office dashboards.
type DashboardSummary struct {
	TotalLeads      int                 `json:"total_leads"`
	LeadsByStatus   []StatusCount       `json:"leads_by_status"`
	LeadsByEmployee []EmployeeLeadCount `json:"leads_by_employee"`
	TotalEmployees  int                 `json:"total_employees"`
	PendingKYC      int                 `json:"pending_kyc"`
	AdvanceTotal    float64             `json:"advance_total"`
}

// EmployeeDashboard is the per-employee view: own lead counts only.
type EmployeeDashboard struct {
	SalesmanID    int           `json:"salesman_id"`
	TotalLeads    int           `json:"total_leads"`
	LeadsByStatus []StatusCount `json:"leads_by_status"`
}
