package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/catzoCode/catzoteam-project/internal/repository"
	"github.com/catzoCode/catzoteam-project/internal/server/authctx"
	"github.com/catzoCode/catzoteam-project/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"
)

// PointsHandler serves the personal scoreboard and the manager payout views.
type PointsHandler struct {
	Service service.PointsService
}

func (h PointsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/points/me", h.myDay)
	r.Get("/points/me/range", h.myRange)
	r.Get("/points/me/month", h.myMonth)
	r.Get("/points/me/history", h.myHistory)
	r.Get("/points/me/projection", h.myProjection)
}

func (h PointsHandler) RegisterManagerRoutes(r chi.Router) {
	r.Get("/points/team", h.teamDay)
	r.Get("/points/overview", h.monthOverview)
	r.Get("/points/overview/export", h.exportOverview)
	r.Post("/points/incentives/{id}/mark-paid", h.markPaid)
}

func (h PointsHandler) myDay(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	day, err := parseDateQuery(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	at := time.Now()
	if day != nil {
		at = *day
	}
	entry, err := h.Service.Day(r.Context(), user.ID, at)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dailyEntryPayload(entry))
}

func (h PointsHandler) myRange(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	from, err := parseDateQuery(r, "from")
	if err != nil || from == nil {
		writeError(w, http.StatusBadRequest, "from is required")
		return
	}
	to, err := parseDateQuery(r, "to")
	if err != nil || to == nil {
		writeError(w, http.StatusBadRequest, "to is required")
		return
	}
	if from.After(*to) {
		writeError(w, http.StatusBadRequest, "from must be before to")
		return
	}
	entries, err := h.Service.Range(r.Context(), user.ID, *from, *to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(entries))
	for i := range entries {
		out = append(out, dailyEntryPayload(&entries[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h PointsHandler) myMonth(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	month, err := parseMonthQuery(r, "month")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month")
		return
	}
	inc, err := h.Service.Month(r.Context(), user.ID, month)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, incentivePayload(inc))
}

func (h PointsHandler) myHistory(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 36 {
		limit = 12
	}
	items, err := h.Service.History(r.Context(), user.ID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(items))
	for i := range items {
		out = append(out, incentivePayload(&items[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h PointsHandler) myProjection(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	p, err := h.Service.ProjectMonth(r.Context(), user.ID, time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month":           p.Month.Format(monthLayout),
		"total_points":    p.TotalPoints,
		"days_elapsed":    p.DaysElapsed,
		"days_in_month":   p.DaysInMonth,
		"daily_average":   p.DailyAverage,
		"projected_total": p.ProjectedTotal,
		"remaining":       p.RemainingToTop,
		"needed_per_day":  p.NeededPerDay,
		"on_track":        p.OnTrack,
	})
}

func (h PointsHandler) teamDay(w http.ResponseWriter, r *http.Request) {
	day, err := parseDateQuery(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	at := time.Now()
	if day != nil {
		at = *day
	}
	rows, err := h.Service.TeamDay(r.Context(), at, r.URL.Query().Get("branch"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(rows))
	for i := range rows {
		payload := dailyEntryPayload(&rows[i].DailyPointEntry)
		payload["staff_name"] = rows[i].StaffName
		payload["branch"] = rows[i].Branch
		out = append(out, payload)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h PointsHandler) monthOverview(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthQuery(r, "month")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month")
		return
	}
	rows, err := h.Service.MonthOverview(r.Context(), month, r.URL.Query().Get("branch"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(rows))
	for i := range rows {
		payload := incentivePayload(&rows[i].MonthlyIncentive)
		payload["staff_name"] = rows[i].StaffName
		payload["branch"] = rows[i].Branch
		out = append(out, payload)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h PointsHandler) exportOverview(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	month, err := parseMonthQuery(r, "month")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month")
		return
	}
	rows, err := h.Service.MonthOverview(r.Context(), month, r.URL.Query().Get("branch"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	suffix := month.Format("200601")
	switch format {
	case "csv":
		data, err := exportIncentivesCSV(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"incentives_%s.csv\"", suffix))
		_, _ = w.Write(data)
	case "xlsx", "excel":
		data, err := exportIncentivesXLSX(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"incentives_%s.xlsx\"", suffix))
		_, _ = w.Write(data)
	default:
		writeError(w, http.StatusBadRequest, "invalid format (use csv or xlsx)")
	}
}

func (h PointsHandler) markPaid(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Service.MarkPaid(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "incentive marked paid"})
}

func exportIncentivesCSV(rows []repository.MonthlyIncentiveRow) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"staff_id", "staff_name", "branch", "month", "total_points", "incentive", "bonus", "milestone", "below_warning", "paid"})
	for _, row := range rows {
		milestone := ""
		if row.MilestoneReached != nil {
			milestone = strconv.Itoa(*row.MilestoneReached)
		}
		_ = w.Write([]string{
			strconv.FormatInt(row.StaffID, 10),
			row.StaffName,
			row.Branch,
			row.Month.Format(monthLayout),
			row.TotalPoints.String(),
			row.IncentiveEarned.String(),
			row.BonusEarned.String(),
			milestone,
			strconv.FormatBool(row.BelowWarning),
			strconv.FormatBool(row.Paid),
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportIncentivesXLSX(rows []repository.MonthlyIncentiveRow) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Incentives"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	header := []string{"Staff ID", "Name", "Branch", "Month", "Total Points", "Incentive", "Bonus", "Milestone", "Below Warning", "Paid"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for r, row := range rows {
		milestone := ""
		if row.MilestoneReached != nil {
			milestone = strconv.Itoa(*row.MilestoneReached)
		}
		values := []any{
			row.StaffID,
			row.StaffName,
			row.Branch,
			row.Month.Format(monthLayout),
			row.TotalPoints.String(),
			row.IncentiveEarned.String(),
			row.BonusEarned.String(),
			milestone,
			row.BelowWarning,
			row.Paid,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 10)
	_ = f.SetColWidth(sheet, "B", "B", 24)
	_ = f.SetColWidth(sheet, "C", "C", 16)
	_ = f.SetColWidth(sheet, "D", "D", 10)
	_ = f.SetColWidth(sheet, "E", "J", 14)

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	_ = f.SetCellStyle(sheet, "A1", "J1", style)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func dailyEntryPayload(e *domain.DailyPointEntry) map[string]any {
	return map[string]any{
		"staff_id":        e.StaffID,
		"date":            e.Date.Format(dateLayout),
		"grooming_points": e.GroomingPoints,
		"service_points":  e.ServicePoints,
		"booking_points":  e.BookingPoints,
		"bonus_points":    e.BonusPoints,
		"total_points":    e.TotalPoints,
		"target_status":   e.TargetStatus(),
	}
}

func incentivePayload(m *domain.MonthlyIncentive) map[string]any {
	payload := map[string]any{
		"id":               m.ID,
		"staff_id":         m.StaffID,
		"month":            m.Month.Format(monthLayout),
		"total_points":     m.TotalPoints,
		"incentive_earned": m.IncentiveEarned,
		"bonus_earned":     m.BonusEarned,
		"below_warning":    m.BelowWarning,
		"warning_issued":   m.WarningIssued,
		"paid":             m.Paid,
	}
	if m.MilestoneReached != nil {
		payload["milestone_reached"] = *m.MilestoneReached
	}
	if m.PaidAt != nil {
		payload["paid_at"] = m.PaidAt.Format(time.RFC3339)
	}
	return payload
}
