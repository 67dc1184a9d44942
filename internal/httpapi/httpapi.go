package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"backoffice/internal/logger"
	"backoffice/internal/ratelimit"
	"backoffice/internal/service"
	"backoffice/internal/store"
)

const maxBodyBytes = 1 << 20

type API struct {
	service       *service.Service
	auth          *AuthManager
	limiter       *ratelimit.Limiter
	allowedOrigin string
	log           zerolog.Logger
}

// New wires the HTTP layer. auth and limiter are optional: a nil auth leaves
// the API open and a nil limiter disables throttling.
func New(svc *service.Service, auth *AuthManager, limiter *ratelimit.Limiter, allowedOrigin string) *API {
	return &API{
		service:       svc,
		auth:          auth,
		limiter:       limiter,
		allowedOrigin: allowedOrigin,
		log:           logger.WithComponent("http"),
	}
}

func (a *API) Handler() http.Handler {
	router := gin.New()
	router.Use(a.recoverPanics(), a.securityHeaders(), a.requestLogger())
	router.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, errors.New("route not found"))
	})

	router.GET("/healthz", a.handleHealth)

	v1 := router.Group("/api/v1")
	if a.limiter != nil {
		v1.Use(a.limiter.Middleware())
	}
	v1.Use(a.requireAuth())

	gateIn := v1.Group("/gate-in")
	gateIn.POST("", a.createGateIn)
	gateIn.GET("", a.listGateIns)
	gateIn.GET("/:id", a.getGateIn)
	gateIn.PUT("/:id", a.updateGateIn)
	gateIn.DELETE("/:id", a.deleteGateIn)
	gateIn.POST("/:id/payments", a.addGateInPayment)

	gateOut := v1.Group("/gate-out")
	gateOut.POST("", a.createGateOut)
	gateOut.GET("", a.listGateOuts)
	gateOut.GET("/:id", a.getGateOut)
	gateOut.PUT("/:id", a.updateGateOut)
	gateOut.DELETE("/:id", a.deleteGateOut)

	invoices := v1.Group("/invoices")
	invoices.GET("", a.listInvoices)
	invoices.POST("", a.createInvoice)
	invoices.POST("/refresh-status", a.refreshInvoiceStatuses)
	invoices.GET("/customer/:customerId", a.listCustomerInvoices)
	invoices.GET("/:id", a.getInvoice)
	invoices.PUT("/:id", a.updateInvoice)
	invoices.DELETE("/:id", a.deleteInvoice)
	invoices.POST("/:id/payments", a.addInvoicePayment)

	vendors := v1.Group("/vendors")
	vendors.POST("", a.createVendor)
	vendors.GET("", a.listVendors)
	vendors.GET("/:id", a.getVendor)
	vendors.GET("/:id/ledger", a.vendorLedger)
	vendors.PUT("/:id", a.updateVendor)
	vendors.DELETE("/:id", a.deleteVendor)

	customers := v1.Group("/customers")
	customers.POST("", a.createCustomer)
	customers.GET("", a.listCustomers)
	customers.GET("/:id", a.getCustomer)
	customers.PUT("/:id", a.updateCustomer)
	customers.DELETE("/:id", a.deleteCustomer)

	rawProducts := v1.Group("/raw-products")
	rawProducts.POST("", a.createRawProduct)
	rawProducts.GET("", a.listRawProducts)
	rawProducts.GET("/:id", a.getRawProduct)
	rawProducts.PUT("/:id", a.updateRawProduct)
	rawProducts.DELETE("/:id", a.deleteRawProduct)

	hrm := v1.Group("/hrm")
	hrm.GET("/employees", a.listEmployees)
	hrm.POST("/employees", a.createEmployee)
	hrm.GET("/employees/:id", a.getEmployee)
	hrm.PUT("/employees/:id", a.updateEmployee)
	hrm.DELETE("/employees/:id", a.deleteEmployee)

	hrm.GET("/salaries", a.listSalaries)
	hrm.POST("/salaries", a.createSalary)
	hrm.POST("/salaries/bulk", a.createSalaryBulk)
	hrm.GET("/salaries/:id", a.getSalary)
	hrm.PUT("/salaries/:id", a.updateSalary)
	hrm.PATCH("/salaries/:id/status", a.updateSalaryStatus)
	hrm.DELETE("/salaries/:id", a.deleteSalary)

	hrm.GET("/advances", a.listAdvances)
	hrm.POST("/advances", a.createAdvance)
	hrm.GET("/advances/:id", a.getAdvance)
	hrm.POST("/advances/:id/repayments", a.addAdvanceRepayment)
	hrm.PATCH("/advances/:id/status", a.updateAdvanceStatus)

	hrm.GET("/attendances", a.listAttendances)
	hrm.POST("/attendances", a.createAttendance)
	hrm.POST("/attendances/bulk", a.createAttendanceBulk)
	hrm.GET("/attendances/:id", a.getAttendance)
	hrm.PUT("/attendances/:id", a.updateAttendance)
	hrm.DELETE("/attendances/:id", a.deleteAttendance)

	hrm.GET("/departments", a.listDepartments)
	hrm.POST("/departments", a.createDepartment)
	hrm.DELETE("/departments/:id", a.deleteDepartment)

	expenses := v1.Group("/expenses")
	expenses.GET("/monthly", a.listMonthlyExpenses)
	expenses.GET("/monthly/:yearMonth", a.getMonthlyExpense)
	expenses.GET("/yearly", a.listYearlyExpenses)
	expenses.GET("/yearly/:year", a.getYearlyExpense)
	expenses.POST("/transfer-daily", a.transferDaily)
	expenses.POST("/transfer-monthly", a.transferMonthly)
	expenses.POST("/manual-transfer", a.manualTransfer)
	expenses.GET("/analytics", a.expenseAnalytics)

	v1.GET("/audit-logs", a.listAuditLogs)

	return router
}

// requireAuth checks the bearer token when token auth is enabled and puts the
// caller on the request context for audit logging.
func (a *API) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.auth == nil {
			c.Next()
			return
		}
		authorization := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
			abortWithError(c, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		actor, err := a.auth.ParseToken(strings.TrimSpace(authorization[len("Bearer "):]))
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, err)
			return
		}
		c.Request = c.Request.WithContext(service.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

func (a *API) securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		h.Set("Access-Control-Allow-Origin", a.allowedOrigin)
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		h.Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		h.Set("Vary", "Origin")

		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (a *API) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startedAt := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := a.log.Info()
		if status >= http.StatusInternalServerError {
			event = a.log.Error()
		}
		event.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(startedAt)).
			Str("client", c.ClientIP()).
			Msg("request")
	}
}

func (a *API) recoverPanics() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		a.log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("handler panicked")
		abortWithError(c, http.StatusInternalServerError, errors.New("panic"))
	})
}

func (a *API) handleHealth(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) listAuditLogs(c *gin.Context) {
	limit := parsePositiveLimit(c.Query("limit"), 100, 500)
	logs, err := a.service.ListAuditLogs(c.Request.Context(), c.Query("entity_type"), limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"logs": logs})
}

// decodeJSON reads a single JSON object and rejects unknown fields.
func decodeJSON(c *gin.Context, dest any) error {
	if c.Request.Body == nil {
		return errors.New("request body is required")
	}
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errors.New("request body too large")
		}
		return err
	}
	return nil
}

// bindJSON decodes the body into dest and writes a 400 on failure.
func bindJSON(c *gin.Context, dest any) bool {
	if err := decodeJSON(c, dest); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return false
	}
	return true
}

func parsePositiveLimit(raw string, fallback int, max int) int {
	limit := fallback
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if parsed, err := strconv.Atoi(trimmed); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}

func parseIntQuery(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(key + " must be a number")
	}
	return value, nil
}

// writeServiceError maps service and store errors onto status codes.
func writeServiceError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		body := gin.H{"message": verr.Message}
		if len(verr.Fields) > 0 {
			body["errors"] = verr.Fields
		}
		writeJSON(c, http.StatusBadRequest, body)
	case errors.Is(err, store.ErrNotFound):
		writeError(c, http.StatusNotFound, err)
	case errors.Is(err, store.ErrConflict):
		writeError(c, http.StatusConflict, err)
	case errors.Is(err, store.ErrInvalidDocument):
		writeError(c, http.StatusBadRequest, err)
	default:
		writeError(c, http.StatusInternalServerError, err)
	}
}

func writeError(c *gin.Context, status int, err error) {
	// 5xx bodies stay generic; the cause goes to the log only.
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		l := logger.WithComponent("http")
		l.Error().Err(err).Int("status", status).Str("path", c.Request.URL.Path).Msg("internal error")
		msg = "internal server error"
	}
	writeJSON(c, status, gin.H{"message": msg})
}

func abortWithError(c *gin.Context, status int, err error) {
	writeError(c, status, err)
	c.Abort()
}

func writeJSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}
