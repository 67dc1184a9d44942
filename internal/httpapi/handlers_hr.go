package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backoffice/internal/domain"
	"backoffice/internal/store"
)

func (a *API) listEmployees(c *gin.Context) {
	employees, err := a.service.ListEmployees(c.Request.Context(), c.Query("status"), c.Query("department"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"employees": employees})
}

func (a *API) createEmployee(c *gin.Context) {
	var req domain.EmployeeCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	employee, err := a.service.CreateEmployee(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, employee)
}

func (a *API) getEmployee(c *gin.Context) {
	employee, err := a.service.GetEmployee(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, employee)
}

func (a *API) updateEmployee(c *gin.Context) {
	var req domain.EmployeeUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	employee, err := a.service.UpdateEmployee(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, employee)
}

// deleteEmployee deactivates; history stays attached.
func (a *API) deleteEmployee(c *gin.Context) {
	employee, err := a.service.DeleteEmployee(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, employee)
}

// Salaries

func (a *API) listSalaries(c *gin.Context) {
	month, err := parseIntQuery(c, "month")
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	year, err := parseIntQuery(c, "year")
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	records, err := a.service.ListSalaries(c.Request.Context(), store.SalaryFilter{
		EmployeeID: c.Query("employee_id"),
		Month:      month,
		Year:       year,
		Status:     c.Query("status"),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"salaries": records})
}

func (a *API) createSalary(c *gin.Context) {
	var req domain.SalaryCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := a.service.CreateSalary(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, record)
}

func (a *API) createSalaryBulk(c *gin.Context) {
	var req domain.SalaryBulkRequest
	if !bindJSON(c, &req) {
		return
	}
	report, err := a.service.CreateSalaryBulk(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, report)
}

func (a *API) getSalary(c *gin.Context) {
	record, err := a.service.GetSalary(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, record)
}

func (a *API) updateSalary(c *gin.Context) {
	var req domain.SalaryUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := a.service.UpdateSalary(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, record)
}

func (a *API) updateSalaryStatus(c *gin.Context) {
	var req domain.StatusUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := a.service.UpdateSalaryStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, record)
}

func (a *API) deleteSalary(c *gin.Context) {
	if err := a.service.DeleteSalary(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"deleted": true})
}

// Advances

func (a *API) listAdvances(c *gin.Context) {
	advances, err := a.service.ListAdvances(c.Request.Context(), c.Query("employee_id"), c.Query("status"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"advances": advances})
}

func (a *API) createAdvance(c *gin.Context) {
	var req domain.AdvanceCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	advance, err := a.service.CreateAdvance(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, advance)
}

func (a *API) getAdvance(c *gin.Context) {
	advance, err := a.service.GetAdvance(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, advance)
}

func (a *API) addAdvanceRepayment(c *gin.Context) {
	var req domain.AdvanceRepaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	advance, err := a.service.AddAdvanceRepayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, advance)
}

func (a *API) updateAdvanceStatus(c *gin.Context) {
	var req domain.StatusUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	advance, err := a.service.UpdateAdvanceStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, advance)
}

// Attendance

func (a *API) listAttendances(c *gin.Context) {
	records, err := a.service.ListAttendances(c.Request.Context(), c.Query("employee_id"), c.Query("from"), c.Query("to"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"attendances": records})
}

func (a *API) createAttendance(c *gin.Context) {
	var req domain.AttendanceCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := a.service.CreateAttendance(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, record)
}

func (a *API) createAttendanceBulk(c *gin.Context) {
	var req domain.AttendanceBulkRequest
	if !bindJSON(c, &req) {
		return
	}
	report, err := a.service.CreateAttendanceBulk(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, report)
}

func (a *API) getAttendance(c *gin.Context) {
	record, err := a.service.GetAttendance(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, record)
}

func (a *API) updateAttendance(c *gin.Context) {
	var req domain.AttendanceUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := a.service.UpdateAttendance(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, record)
}

func (a *API) deleteAttendance(c *gin.Context) {
	if err := a.service.DeleteAttendance(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"deleted": true})
}

// Departments

func (a *API) listDepartments(c *gin.Context) {
	departments, err := a.service.ListDepartments(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"departments": departments})
}

func (a *API) createDepartment(c *gin.Context) {
	var req domain.DepartmentCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	department, err := a.service.CreateDepartment(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, department)
}

func (a *API) deleteDepartment(c *gin.Context) {
	if err := a.service.DeleteDepartment(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"deleted": true})
}
