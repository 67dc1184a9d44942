package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"backoffice/internal/domain"
	"backoffice/internal/store"
	"backoffice/internal/xid"
)

func isAttendanceStatus(status string) bool {
	switch status {
	case domain.AttendancePresent, domain.AttendanceAbsent, domain.AttendanceLate, domain.AttendanceHalfDay, domain.AttendanceLeave:
		return true
	default:
		return false
	}
}

// clockOn combines day with an "HH:MM" clock time. An empty clock yields nil.
func clockOn(day time.Time, clock string) (*time.Time, error) {
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return nil, nil
	}
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q, expected HH:MM", clock)
	}
	at := day.Add(time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute)
	return &at, nil
}

// attendanceTimes parses the day and both clock times and checks their order.
func attendanceTimes(date string, checkIn string, checkOut string) (time.Time, *time.Time, *time.Time, error) {
	if strings.TrimSpace(date) == "" {
		return time.Time{}, nil, nil, invalid("date is required")
	}
	day, err := parseDay(date)
	if err != nil {
		return time.Time{}, nil, nil, invalid("%v", err)
	}
	in, err := clockOn(day, checkIn)
	if err != nil {
		return time.Time{}, nil, nil, invalid("check_in: %v", err)
	}
	out, err := clockOn(day, checkOut)
	if err != nil {
		return time.Time{}, nil, nil, invalid("check_out: %v", err)
	}
	if in != nil && out != nil && out.Before(*in) {
		return time.Time{}, nil, nil, invalid("check_out must not be before check_in")
	}
	return day, in, out, nil
}

func (s *Service) findAttendanceOn(ctx context.Context, employeeID string, day time.Time) (*domain.AttendanceRecord, error) {
	existing, err := s.repo.FindAttendance(ctx, employeeID, day, day.Add(24*time.Hour))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return existing, nil
}

func (s *Service) CreateAttendance(ctx context.Context, req domain.AttendanceCreateRequest) (domain.AttendanceRecord, error) {
	status := strings.TrimSpace(req.Status)
	if !isAttendanceStatus(status) {
		return domain.AttendanceRecord{}, invalid("status must be one of present, absent, late, half-day, leave")
	}
	day, checkIn, checkOut, err := attendanceTimes(req.Date, req.CheckIn, req.CheckOut)
	if err != nil {
		return domain.AttendanceRecord{}, err
	}

	employee, err := s.GetEmployee(ctx, strings.TrimSpace(req.EmployeeID))
	if err != nil {
		return domain.AttendanceRecord{}, err
	}
	existing, err := s.findAttendanceOn(ctx, employee.ID, day)
	if err != nil {
		return domain.AttendanceRecord{}, err
	}
	if existing != nil {
		return domain.AttendanceRecord{}, conflict("attendance already recorded for this employee on " + day.Format("2006-01-02"))
	}

	created, err := s.repo.CreateAttendance(ctx, domain.AttendanceRecord{
		EmployeeID: employee.ID,
		Date:       day,
		Status:     status,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Notes:      strings.TrimSpace(req.Notes),
	})
	if err != nil {
		return domain.AttendanceRecord{}, err
	}
	s.logAudit(ctx, "attendance_create", "attendance", created.ID, fmt.Sprintf("employee=%s,date=%s,status=%s", created.EmployeeID, day.Format("2006-01-02"), created.Status))
	return *created, nil
}

// CreateAttendanceBulk records the same day and status for many employees,
// skipping unknown employees and those already recorded for the day.
func (s *Service) CreateAttendanceBulk(ctx context.Context, req domain.AttendanceBulkRequest) (domain.BatchReport, error) {
	if len(req.EmployeeIDs) == 0 {
		return domain.BatchReport{}, invalid("employee_ids must not be empty")
	}
	status := strings.TrimSpace(req.Status)
	if !isAttendanceStatus(status) {
		return domain.BatchReport{}, invalid("status must be one of present, absent, late, half-day, leave")
	}
	day, checkIn, checkOut, err := attendanceTimes(req.Date, req.CheckIn, req.CheckOut)
	if err != nil {
		return domain.BatchReport{}, err
	}

	report := domain.BatchReport{Results: make([]domain.BatchResult, 0, len(req.EmployeeIDs))}
	records := make([]domain.AttendanceRecord, 0, len(req.EmployeeIDs))
	seen := make(map[string]bool, len(req.EmployeeIDs))
	for _, raw := range req.EmployeeIDs {
		employeeID := strings.TrimSpace(raw)
		if seen[employeeID] {
			report.Add(employeeID, "", "duplicate employee in request")
			continue
		}
		seen[employeeID] = true

		if _, err := s.repo.GetEmployee(ctx, employeeID); err != nil {
			if isNotFound(err) {
				report.Add(employeeID, "", "employee not found")
				continue
			}
			return domain.BatchReport{}, err
		}
		existing, err := s.findAttendanceOn(ctx, employeeID, day)
		if err != nil {
			return domain.BatchReport{}, err
		}
		if existing != nil {
			report.Add(employeeID, "", "attendance already recorded for this day")
			continue
		}

		record := domain.AttendanceRecord{
			ID:         xid.New("att"),
			EmployeeID: employeeID,
			Date:       day,
			Status:     status,
			CheckIn:    checkIn,
			CheckOut:   checkOut,
			Notes:      strings.TrimSpace(req.Notes),
			CreatedAt:  s.now(),
		}
		records = append(records, record)
		report.Add(employeeID, record.ID, "")
	}

	if err := s.repo.CreateAttendanceBatch(ctx, records); err != nil {
		return domain.BatchReport{}, fmt.Errorf("bulk attendance insert: %w", err)
	}
	if report.Created > 0 {
		s.logAudit(ctx, "attendance_bulk_create", "attendance", "*", fmt.Sprintf("date=%s,created=%d,skipped=%d", day.Format("2006-01-02"), report.Created, report.Skipped))
	}
	return report, nil
}

func (s *Service) GetAttendance(ctx context.Context, id string) (domain.AttendanceRecord, error) {
	record, err := s.repo.GetAttendance(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return domain.AttendanceRecord{}, notFound("attendance record")
		}
		return domain.AttendanceRecord{}, err
	}
	return *record, nil
}

// ListAttendances filters by employee and an inclusive day range.
func (s *Service) ListAttendances(ctx context.Context, employeeID string, from string, to string) ([]domain.AttendanceRecord, error) {
	filter := store.AttendanceFilter{EmployeeID: strings.TrimSpace(employeeID)}
	if strings.TrimSpace(from) != "" {
		start, err := parseDay(from)
		if err != nil {
			return nil, invalid("from: %v", err)
		}
		filter.From = &start
	}
	if strings.TrimSpace(to) != "" {
		end, err := parseDay(to)
		if err != nil {
			return nil, invalid("to: %v", err)
		}
		end = end.Add(24 * time.Hour)
		filter.To = &end
	}
	return s.repo.ListAttendances(ctx, filter)
}

func (s *Service) UpdateAttendance(ctx context.Context, id string, req domain.AttendanceUpdateRequest) (domain.AttendanceRecord, error) {
	record, err := s.GetAttendance(ctx, id)
	if err != nil {
		return domain.AttendanceRecord{}, err
	}

	if req.Status != nil {
		status := strings.TrimSpace(*req.Status)
		if !isAttendanceStatus(status) {
			return domain.AttendanceRecord{}, invalid("status must be one of present, absent, late, half-day, leave")
		}
		record.Status = status
	}
	if req.CheckIn != nil {
		at, err := clockOn(record.Date, *req.CheckIn)
		if err != nil {
			return domain.AttendanceRecord{}, invalid("check_in: %v", err)
		}
		record.CheckIn = at
	}
	if req.CheckOut != nil {
		at, err := clockOn(record.Date, *req.CheckOut)
		if err != nil {
			return domain.AttendanceRecord{}, invalid("check_out: %v", err)
		}
		record.CheckOut = at
	}
	if record.CheckIn != nil && record.CheckOut != nil && record.CheckOut.Before(*record.CheckIn) {
		return domain.AttendanceRecord{}, invalid("check_out must not be before check_in")
	}
	if req.Notes != nil {
		record.Notes = strings.TrimSpace(*req.Notes)
	}

	saved, err := s.repo.UpdateAttendance(ctx, record)
	if err != nil {
		return domain.AttendanceRecord{}, err
	}
	s.logAudit(ctx, "attendance_update", "attendance", saved.ID, "status="+saved.Status)
	return *saved, nil
}

func (s *Service) DeleteAttendance(ctx context.Context, id string) error {
	if err := s.repo.DeleteAttendance(ctx, id); err != nil {
		if isNotFound(err) {
			return notFound("attendance record")
		}
		return err
	}
	s.logAudit(ctx, "attendance_delete", "attendance", id, "")
	return nil
}
