package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sync"

	"solar-backend/internal/models"
	"solar-backend/internal/repositories"
	"solar-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
)

// LeadReportData holds everything a per-lead report needs.
type LeadReportData struct {
	Lead   *models.Lead
	Events []*models.LeadStatusEvent
}

// ReportService generates CSV and PDF exports of the lead pipeline.
type ReportService struct {
	LeadRepo  *repositories.LeadRepository
	EventRepo *repositories.LeadEventRepository
}

func NewReportService(leadRepo *repositories.LeadRepository, eventRepo *repositories.LeadEventRepository) *ReportService {
	return &ReportService{
		LeadRepo:  leadRepo,
		EventRepo: eventRepo,
	}
}

// GetLeadReportData loads one lead with its status history
func (s *ReportService) GetLeadReportData(ctx context.Context, leadID int) (*LeadReportData, error) {
	lead, err := s.LeadRepo.Get(ctx, leadID)
	if err != nil {
		return nil, ErrNotFound
	}
	events, err := s.EventRepo.ListByLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	return &LeadReportData{Lead: lead, Events: events}, nil
}

// GenerateLeadPDF renders a single lead's report
func (s *ReportService) GenerateLeadPDF(data *LeadReportData) ([]byte, error) {
	lead := data.Lead

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Solar CRM - Lead Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format("02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Customer Info Box
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Customer Information", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Name: %s", lead.CustomerName), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Contact: %s", lead.CustomerContact), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Address: %s", truncate(lead.CustomerAddress, 40)), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Salesman: %s (%s)", lead.SalesmanName, lead.SalesmanCode), "RB", 1, "L", false, 0, "")
	pdf.Ln(5)

	// Project details
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Project Details", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(63, 8, fmt.Sprintf("Capacity: %.2f kW", lead.CapacityKW), "1", 0, "C", false, 0, "")
	pdf.CellFormat(63, 8, fmt.Sprintf("Quoted: Rs. %.2f", lead.QuotedAmount), "1", 0, "C", false, 0, "")
	pdf.CellFormat(64, 8, fmt.Sprintf("Bank: %s", truncate(lead.BankName, 22)), "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 14)
	pdf.SetFillColor(220, 235, 250)
	pdf.CellFormat(190, 10, fmt.Sprintf("Status: %s", lead.Status), "1", 1, "C", true, 0, "")
	pdf.Ln(5)

	// Documents table
	if len(lead.Documents) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(190, 8, "Documents", "1", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(15, 7, "#", "1", 0, "C", true, 0, "")
		pdf.CellFormat(115, 7, "File Name", "1", 0, "C", true, 0, "")
		pdf.CellFormat(60, 7, "Uploaded", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, d := range lead.Documents {
			pdf.CellFormat(15, 6, fmt.Sprintf("%d", d.Position+1), "1", 0, "C", false, 0, "")
			pdf.CellFormat(115, 6, truncate(d.FileName, 55), "1", 0, "L", false, 0, "")
			pdf.CellFormat(60, 6, d.CreatedAt.Format("02-Jan-2006"), "1", 1, "C", false, 0, "")
		}
		pdf.Ln(5)
	}

	// Status history
	if len(data.Events) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(190, 8, "Status History", "1", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(55, 7, "From", "1", 0, "C", true, 0, "")
		pdf.CellFormat(55, 7, "To", "1", 0, "C", true, 0, "")
		pdf.CellFormat(40, 7, "By", "1", 0, "C", true, 0, "")
		pdf.CellFormat(40, 7, "Date", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 9)
		for _, e := range data.Events {
			pdf.CellFormat(55, 6, string(e.FromStatus), "1", 0, "C", false, 0, "")
			pdf.CellFormat(55, 6, string(e.ToStatus), "1", 0, "C", false, 0, "")
			pdf.CellFormat(40, 6, e.ChangedByRole, "1", 0, "C", false, 0, "")
			pdf.CellFormat(40, 6, e.CreatedAt.Format("02-Jan-2006"), "1", 1, "C", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateBulkLeadPDFs renders every lead's report in parallel
func (s *ReportService) GenerateBulkLeadPDFs(ctx context.Context) (map[string][]byte, error) {
	leads, err := s.LeadRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	type pdfResult struct {
		name string
		data []byte
		err  error
	}

	results := make(chan pdfResult, len(leads))
	jobs := make(chan *models.Lead, len(leads))

	// Start 5 workers for PDF generation
	var wg sync.WaitGroup
	numWorkers := 5
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for lead := range jobs {
				events, err := s.EventRepo.ListByLead(ctx, lead.ID)
				if err != nil {
					results <- pdfResult{err: err}
					continue
				}
				pdfData, err := s.GenerateLeadPDF(&LeadReportData{Lead: lead, Events: events})
				results <- pdfResult{
					name: fmt.Sprintf("%d_%s", lead.ID, lead.CustomerName),
					data: pdfData,
					err:  err,
				}
			}
		}()
	}

	for _, lead := range leads {
		jobs <- lead
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	pdfs := make(map[string][]byte)
	for r := range results {
		if r.err == nil && r.data != nil {
			pdfs[r.name] = r.data
		}
	}
	return pdfs, nil
}

// CreateBulkPDFZip packs the per-lead PDFs into one ZIP archive
func (s *ReportService) CreateBulkPDFZip(pdfs map[string][]byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for name, pdfData := range pdfs {
		fw, err := zw.Create(fmt.Sprintf("lead_%s.pdf", name))
		if err != nil {
			continue
		}
		fw.Write(pdfData)
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateLeadsCSV exports the whole pipeline as CSV
func (s *ReportService) GenerateLeadsCSV(ctx context.Context) ([]byte, error) {
	leads, err := s.LeadRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{
		"#", "Customer", "Contact", "Address", "Salesman", "Code",
		"Capacity kW", "Quoted", "Bank", "Status", "Documents", "Created",
	})

	for i, l := range leads {
		w.Write([]string{
			fmt.Sprintf("%d", i+1),
			l.CustomerName,
			l.CustomerContact,
			l.CustomerAddress,
			l.SalesmanName,
			l.SalesmanCode,
			fmt.Sprintf("%.2f", l.CapacityKW),
			fmt.Sprintf("%.2f", l.QuotedAmount),
			l.BankName,
			string(l.Status),
			fmt.Sprintf("%d", len(l.Documents)),
			l.CreatedAt.Format("2006-01-02"),
		})
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
