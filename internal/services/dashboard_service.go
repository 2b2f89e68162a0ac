package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"solar-backend/internal/cache"
	"solar-backend/internal/models"
	"solar-backend/internal/repositories"
)

// DashboardService aggregates lead, employee and payment counts for
// the back-office and per-employee dashboards. Results are cached in
// Redis for a few minutes; writes invalidate through the lead cache.
type DashboardService struct {
	Leads        *repositories.LeadRepository
	Employees    *repositories.EmployeeRepository
	Transactions *repositories.OnlineTransactionRepository
}

func NewDashboardService(leads *repositories.LeadRepository, employees *repositories.EmployeeRepository, transactions *repositories.OnlineTransactionRepository) *DashboardService {
	return &DashboardService{
		Leads:        leads,
		Employees:    employees,
		Transactions: transactions,
	}
}

const dashboardTTL = 5 * time.Minute

// Summary builds the full back-office dashboard payload.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	if data, ok := cache.GetCached(ctx, cache.DashboardSummaryKey); ok {
		var summary models.DashboardSummary
		if err := json.Unmarshal(data, &summary); err == nil {
			return &summary, nil
		}
	}

	totalLeads, err := s.Leads.Count(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.Leads.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byEmployee, err := s.Leads.CountBySalesman(ctx)
	if err != nil {
		return nil, err
	}
	totalEmployees, err := s.Employees.Count(ctx)
	if err != nil {
		return nil, err
	}
	pendingKYC, err := s.Employees.CountByKYCStatus(ctx, models.KYCSubmitted)
	if err != nil {
		return nil, err
	}
	advanceTotal, err := s.Transactions.SumSuccessful(ctx)
	if err != nil {
		return nil, err
	}

	summary := &models.DashboardSummary{
		TotalLeads:      totalLeads,
		LeadsByStatus:   byStatus,
		LeadsByEmployee: byEmployee,
		TotalEmployees:  totalEmployees,
		PendingKYC:      pendingKYC,
		AdvanceTotal:    advanceTotal,
	}

	if data, err := json.Marshal(summary); err == nil {
		cache.SetCached(ctx, cache.DashboardSummaryKey, data, dashboardTTL)
	}
	return summary, nil
}

// EmployeeSummary builds one employee's own dashboard.
func (s *DashboardService) EmployeeSummary(ctx context.Context, salesmanID int) (*models.EmployeeDashboard, error) {
	key := fmt.Sprintf(cache.EmployeeDashboardFmt, salesmanID)
	if data, ok := cache.GetCached(ctx, key); ok {
		var d models.EmployeeDashboard
		if err := json.Unmarshal(data, &d); err == nil {
			return &d, nil
		}
	}

	byStatus, err := s.Leads.CountByStatusForSalesman(ctx, salesmanID)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, c := range byStatus {
		total += c.Count
	}

	d := &models.EmployeeDashboard{
		SalesmanID:    salesmanID,
		TotalLeads:    total,
		LeadsByStatus: byStatus,
	}

	if data, err := json.Marshal(d); err == nil {
		cache.SetCached(ctx, key, data, dashboardTTL)
	}
	return d, nil
}
