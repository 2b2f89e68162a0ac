package http

import (
	"net/http"

	"solar-backend/internal/auth"
	"solar-backend/internal/handlers"
	"solar-backend/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	accountHandler *handlers.AccountHandler,
	employeeHandler *handlers.EmployeeHandler,
	leadHandler *handlers.LeadHandler,
	compiledFileHandler *handlers.CompiledFileHandler,
	dashboardHandler *handlers.DashboardHandler,
	razorpayHandler *handlers.RazorpayHandler,
	reportHandler *handlers.ReportHandler,
	totpHandler *handlers.TOTPHandler,
	systemSettingHandler *handlers.SystemSettingHandler,
	loginLogHandler *handlers.LoginLogHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public API routes - per-role authentication. Each role logs in
	// against its own credential namespace.
	r.HandleFunc("/api/{role}/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/{role}/auth/refresh-token", authHandler.Refresh).Methods("POST")

	// Second step of an admin 2FA login (temp token + code)
	r.HandleFunc("/api/admin/auth/2fa/verify", totpHandler.Verify).Methods("POST")

	// First-admin bootstrap; closed once an admin exists
	r.HandleFunc("/api/admin/auth/register", authHandler.RegisterAdmin).Methods("POST")

	// Logout needs a valid access token to know whose slot to clear
	logoutAPI := r.PathPrefix("/api/{role}/auth/logout").Subrouter()
	logoutAPI.Use(authMiddleware.Authenticate)
	logoutAPI.HandleFunc("", authHandler.Logout).Methods("POST")

	// Protected API routes - Leads
	leadsAPI := r.PathPrefix("/api/leads").Subrouter()
	leadsAPI.Use(authMiddleware.Authenticate)
	leadsAPI.HandleFunc("/addlead", authMiddleware.RequireCapability(auth.CapCreateLead)(http.HandlerFunc(leadHandler.AddLead)).ServeHTTP).Methods("POST")
	leadsAPI.HandleFunc("/getAll", authMiddleware.RequireCapability(auth.CapViewAllLeads)(http.HandlerFunc(leadHandler.GetAll)).ServeHTTP).Methods("GET")
	leadsAPI.HandleFunc("/getAllBysalesId/{salesId}", leadHandler.GetBySalesman).Methods("GET") // ownership checked in handler
	leadsAPI.HandleFunc("/updatestatus/{id}/status", authMiddleware.RequireCapability(auth.CapUpdateLeadState)(http.HandlerFunc(leadHandler.UpdateStatus)).ServeHTTP).Methods("PATCH")
	leadsAPI.HandleFunc("/{id}", leadHandler.Get).Methods("GET")
	leadsAPI.HandleFunc("/{id}", authMiddleware.RequireCapability(auth.CapUpdateLeadState)(http.HandlerFunc(leadHandler.Update)).ServeHTTP).Methods("PATCH")
	leadsAPI.HandleFunc("/{id}", authMiddleware.RequireCapability(auth.CapDeleteLead)(http.HandlerFunc(leadHandler.Delete)).ServeHTTP).Methods("DELETE")
	leadsAPI.HandleFunc("/{id}/events", leadHandler.StatusEvents).Methods("GET")
	leadsAPI.HandleFunc("/{id}/compiled-file", authMiddleware.RequireCapability(auth.CapCompiledFile)(http.HandlerFunc(compiledFileHandler.Upload)).ServeHTTP).Methods("POST")
	leadsAPI.HandleFunc("/{id}/compiled-file", compiledFileHandler.Get).Methods("GET")
	leadsAPI.HandleFunc("/{id}/compiled-file", authMiddleware.RequireCapability(auth.CapCompiledFile)(http.HandlerFunc(compiledFileHandler.Delete)).ServeHTTP).Methods("DELETE")

	// Protected API routes - Staff account management (admin only)
	staffAPI := r.PathPrefix("/api/admin/staff").Subrouter()
	staffAPI.Use(authMiddleware.Authenticate)
	staffAPI.Use(authMiddleware.RequireCapability(auth.CapManageStaff))
	staffAPI.HandleFunc("/{role}", accountHandler.Create).Methods("POST")
	staffAPI.HandleFunc("/{role}", accountHandler.List).Methods("GET")
	staffAPI.HandleFunc("/{role}/{id}", accountHandler.Get).Methods("GET")
	staffAPI.HandleFunc("/{role}/{id}", accountHandler.Update).Methods("PATCH")
	staffAPI.HandleFunc("/{role}/{id}", accountHandler.Delete).Methods("DELETE")

	// Protected API routes - Employee management (admin only)
	employeesAPI := r.PathPrefix("/api/admin/employees").Subrouter()
	employeesAPI.Use(authMiddleware.Authenticate)
	employeesAPI.Use(authMiddleware.RequireCapability(auth.CapManageStaff))
	employeesAPI.HandleFunc("", employeeHandler.Register).Methods("POST")
	employeesAPI.HandleFunc("", employeeHandler.List).Methods("GET")
	employeesAPI.HandleFunc("/{id}", employeeHandler.Get).Methods("GET")
	employeesAPI.HandleFunc("/{id}", employeeHandler.Update).Methods("PATCH")
	employeesAPI.HandleFunc("/{id}", employeeHandler.Delete).Methods("DELETE")
	employeesAPI.HandleFunc("/{id}/kyc-review", authMiddleware.RequireCapability(auth.CapReviewKYC)(http.HandlerFunc(employeeHandler.ReviewKYC)).ServeHTTP).Methods("POST")

	// Protected API routes - Employee self-service
	employeeAPI := r.PathPrefix("/api/employee").Subrouter()
	employeeAPI.Use(authMiddleware.Authenticate)
	employeeAPI.Use(authMiddleware.RequireRole(auth.RoleEmployee))
	employeeAPI.HandleFunc("/me", employeeHandler.Me).Methods("GET")
	employeeAPI.HandleFunc("/kyc", employeeHandler.SubmitKYC).Methods("POST")

	// Protected API routes - Dashboards
	dashboardAPI := r.PathPrefix("/api/dashboard").Subrouter()
	dashboardAPI.Use(authMiddleware.Authenticate)
	dashboardAPI.HandleFunc("", authMiddleware.RequireCapability(auth.CapViewDashboard)(http.HandlerFunc(dashboardHandler.Summary)).ServeHTTP).Methods("GET")
	dashboardAPI.HandleFunc("/summary", authMiddleware.RequireCapability(auth.CapViewDashboard)(http.HandlerFunc(dashboardHandler.Summary)).ServeHTTP).Methods("GET")
	dashboardAPI.HandleFunc("/leads-by-status", authMiddleware.RequireCapability(auth.CapViewDashboard)(http.HandlerFunc(dashboardHandler.LeadsByStatus)).ServeHTTP).Methods("GET")
	dashboardAPI.HandleFunc("/employee/{id}", dashboardHandler.EmployeeSummary).Methods("GET") // ownership checked in handler

	// Payment routes. Status is public (the app decides whether to
	// show the pay button before login); the webhook authenticates via
	// its signature.
	r.HandleFunc("/api/payments/status", razorpayHandler.CheckPaymentStatus).Methods("GET")
	r.HandleFunc("/api/payments/webhook", razorpayHandler.HandleWebhook).Methods("POST")

	paymentsAPI := r.PathPrefix("/api/payments").Subrouter()
	paymentsAPI.Use(authMiddleware.Authenticate)
	paymentsAPI.HandleFunc("/order", razorpayHandler.CreateOrder).Methods("POST")
	paymentsAPI.HandleFunc("/verify", razorpayHandler.VerifyPayment).Methods("POST")
	paymentsAPI.HandleFunc("/lead/{id}", authMiddleware.RequireCapability(auth.CapViewAllLeads)(http.HandlerFunc(razorpayHandler.LeadTransactions)).ServeHTTP).Methods("GET")

	// Protected API routes - Reports (export capability)
	reportsAPI := r.PathPrefix("/api/reports").Subrouter()
	reportsAPI.Use(authMiddleware.Authenticate)
	reportsAPI.Use(authMiddleware.RequireCapability(auth.CapExportReports))
	reportsAPI.HandleFunc("/leads/csv", reportHandler.LeadsCSV).Methods("GET")
	reportsAPI.HandleFunc("/leads/pdf-zip", reportHandler.LeadsPDFZip).Methods("GET")
	reportsAPI.HandleFunc("/leads/{id}/pdf", reportHandler.LeadPDF).Methods("GET")

	// Protected API routes - Admin 2FA management
	twoFAAPI := r.PathPrefix("/api/admin/2fa").Subrouter()
	twoFAAPI.Use(authMiddleware.Authenticate)
	twoFAAPI.Use(authMiddleware.RequireRole(auth.RoleAdmin))
	twoFAAPI.HandleFunc("/setup", totpHandler.Setup).Methods("POST")
	twoFAAPI.HandleFunc("/enable", totpHandler.Enable).Methods("POST")
	twoFAAPI.HandleFunc("/disable", totpHandler.Disable).Methods("POST")
	twoFAAPI.HandleFunc("/status", totpHandler.Status).Methods("GET")
	twoFAAPI.HandleFunc("/backup-codes", totpHandler.RegenerateBackupCodes).Methods("POST")

	// Protected API routes - System settings (admin only)
	settingsAPI := r.PathPrefix("/api/admin/settings").Subrouter()
	settingsAPI.Use(authMiddleware.Authenticate)
	settingsAPI.Use(authMiddleware.RequireRole(auth.RoleAdmin))
	settingsAPI.HandleFunc("", systemSettingHandler.List).Methods("GET")
	settingsAPI.HandleFunc("/{key}", systemSettingHandler.Get).Methods("GET")
	settingsAPI.HandleFunc("/{key}", systemSettingHandler.Update).Methods("PUT")

	// Protected API routes - Login logs (admin only)
	loginLogsAPI := r.PathPrefix("/api/admin/login-logs").Subrouter()
	loginLogsAPI.Use(authMiddleware.Authenticate)
	loginLogsAPI.Use(authMiddleware.RequireRole(auth.RoleAdmin))
	loginLogsAPI.HandleFunc("", loginLogHandler.List).Methods("GET")

	// Health endpoints (no auth required - for Kubernetes probes)
	r.HandleFunc("/health", healthHandler.Basic).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.Readiness).Methods("GET")
	r.HandleFunc("/health/detailed", healthHandler.Detailed).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
