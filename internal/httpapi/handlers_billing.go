package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backoffice/internal/domain"
)

func (a *API) listInvoices(c *gin.Context) {
	page, err := parseIntQuery(c, "page")
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	limit, err := parseIntQuery(c, "limit")
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	result, err := a.service.ListInvoices(c.Request.Context(), page, limit, c.Query("search"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, result)
}

func (a *API) createInvoice(c *gin.Context) {
	var req domain.InvoiceCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	invoice, err := a.service.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, invoice)
}

func (a *API) getInvoice(c *gin.Context) {
	invoice, err := a.service.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, invoice)
}

func (a *API) listCustomerInvoices(c *gin.Context) {
	invoices, err := a.service.ListInvoicesByCustomer(c.Request.Context(), c.Param("customerId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"invoices": invoices})
}

func (a *API) updateInvoice(c *gin.Context) {
	var req domain.InvoiceUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	invoice, err := a.service.UpdateInvoice(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, invoice)
}

func (a *API) deleteInvoice(c *gin.Context) {
	if err := a.service.DeleteInvoice(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"deleted": true})
}

func (a *API) addInvoicePayment(c *gin.Context) {
	var req domain.InvoicePaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	invoice, err := a.service.AddInvoicePayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, invoice)
}

func (a *API) refreshInvoiceStatuses(c *gin.Context) {
	result, err := a.service.RefreshInvoiceStatuses(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, result)
}

// Expenses

func (a *API) listMonthlyExpenses(c *gin.Context) {
	buckets, err := a.service.ListMonthlyExpenses(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"monthly": buckets})
}

func (a *API) getMonthlyExpense(c *gin.Context) {
	bucket, err := a.service.GetMonthlyExpense(c.Request.Context(), c.Param("yearMonth"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, bucket)
}

func (a *API) listYearlyExpenses(c *gin.Context) {
	buckets, err := a.service.ListYearlyExpenses(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"yearly": buckets})
}

func (a *API) getYearlyExpense(c *gin.Context) {
	bucket, err := a.service.GetYearlyExpense(c.Request.Context(), c.Param("year"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, bucket)
}

func (a *API) transferDaily(c *gin.Context) {
	var req domain.DailyTransferRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := a.service.TransferDailyToMonthly(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, result)
}

// transferMonthly rolls up an explicit month given in the body.
func (a *API) transferMonthly(c *gin.Context) {
	var req domain.MonthlyTransferRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Year == 0 || req.Month == 0 {
		writeJSON(c, http.StatusBadRequest, gin.H{"message": "year and month are required"})
		return
	}
	a.rollUpMonth(c, req)
}

// manualTransfer rolls up the previous calendar month.
func (a *API) manualTransfer(c *gin.Context) {
	a.rollUpMonth(c, domain.MonthlyTransferRequest{})
}

func (a *API) rollUpMonth(c *gin.Context, req domain.MonthlyTransferRequest) {
	result, err := a.service.TransferMonthlyToYearly(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, result)
}

func (a *API) expenseAnalytics(c *gin.Context) {
	analytics, err := a.service.ExpenseAnalytics(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, analytics)
}
