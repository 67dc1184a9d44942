package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backoffice/internal/domain"
)

func (a *API) createGateIn(c *gin.Context) {
	var req domain.GateInCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := a.service.CreateGateIn(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, record)
}

func (a *API) listGateIns(c *gin.Context) {
	records, err := a.service.ListGateIns(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"records": records})
}

func (a *API) getGateIn(c *gin.Context) {
	record, err := a.service.GetGateIn(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, record)
}

func (a *API) updateGateIn(c *gin.Context) {
	var req domain.GateInUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := a.service.UpdateGateIn(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, record)
}

func (a *API) deleteGateIn(c *gin.Context) {
	if err := a.service.DeleteGateIn(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"deleted": true})
}

func (a *API) addGateInPayment(c *gin.Context) {
	var req domain.GateInPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := a.service.AddGateInPayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, record)
}

func (a *API) createGateOut(c *gin.Context) {
	var req domain.GateOutCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := a.service.CreateGateOut(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, record)
}

func (a *API) listGateOuts(c *gin.Context) {
	records, err := a.service.ListGateOuts(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"records": records})
}

func (a *API) getGateOut(c *gin.Context) {
	record, err := a.service.GetGateOut(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, record)
}

func (a *API) updateGateOut(c *gin.Context) {
	var req domain.GateOutUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := a.service.UpdateGateOut(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, record)
}

func (a *API) deleteGateOut(c *gin.Context) {
	if err := a.service.DeleteGateOut(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"deleted": true})
}

// Vendors

func (a *API) createVendor(c *gin.Context) {
	var req domain.VendorCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	vendor, err := a.service.CreateVendor(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, vendor)
}

func (a *API) listVendors(c *gin.Context) {
	vendors, err := a.service.ListVendors(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"vendors": vendors})
}

func (a *API) getVendor(c *gin.Context) {
	vendor, err := a.service.GetVendor(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, vendor)
}

func (a *API) vendorLedger(c *gin.Context) {
	ledger, err := a.service.VendorLedger(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, ledger)
}

func (a *API) updateVendor(c *gin.Context) {
	var req domain.VendorUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	vendor, err := a.service.UpdateVendor(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, vendor)
}

func (a *API) deleteVendor(c *gin.Context) {
	if err := a.service.DeleteVendor(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"deleted": true})
}

// Customers

func (a *API) createCustomer(c *gin.Context) {
	var req domain.CustomerCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	customer, err := a.service.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, customer)
}

func (a *API) listCustomers(c *gin.Context) {
	customers, err := a.service.ListCustomers(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"customers": customers})
}

func (a *API) getCustomer(c *gin.Context) {
	customer, err := a.service.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, customer)
}

func (a *API) updateCustomer(c *gin.Context) {
	var req domain.CustomerUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	customer, err := a.service.UpdateCustomer(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, customer)
}

func (a *API) deleteCustomer(c *gin.Context) {
	if err := a.service.DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"deleted": true})
}

// Raw products

func (a *API) createRawProduct(c *gin.Context) {
	var req domain.RawProductCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := a.service.CreateRawProduct(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, product)
}

func (a *API) listRawProducts(c *gin.Context) {
	products, err := a.service.ListRawProducts(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"raw_products": products})
}

func (a *API) getRawProduct(c *gin.Context) {
	product, err := a.service.GetRawProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, product)
}

func (a *API) updateRawProduct(c *gin.Context) {
	var req domain.RawProductUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := a.service.UpdateRawProduct(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, product)
}

func (a *API) deleteRawProduct(c *gin.Context) {
	if err := a.service.DeleteRawProduct(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"deleted": true})
}
