package handler

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"

	"carcare-backend/internal/domain"
	"carcare-backend/internal/repository"
	"carcare-backend/internal/server/authctx"
	"carcare-backend/internal/service"
)

type SessionHandler struct {
	Service  *service.SessionService
	Repo     repository.SessionRepository
	PageSize int
}

// RegisterRoutes wires the self-service endpoints every signed-in employee
// uses for their own working day.
func (h SessionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions/check-in", h.checkIn)
	r.Post("/sessions/check-out", h.checkOut)
	r.Get("/sessions/status", h.status)
	r.Post("/sessions/{id}/breaks", h.startBreak)
	r.Put("/sessions/{id}/breaks/{breakId}", h.endBreak)
	r.Put("/sessions/{id}/description", h.setDescription)
}

func (h SessionHandler) RegisterManagerRoutes(r chi.Router) {
	r.Get("/sessions", h.list)
	r.Get("/sessions/export", h.export)
	r.Post("/sessions", h.adminCreate)
	r.Put("/sessions/{id}", h.adminUpdate)
	r.Delete("/sessions/{id}", h.remove)
	r.Post("/sessions/mark-paid", h.markPaid)
}

func (h SessionHandler) checkIn(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	session, err := h.Service.CheckIn(r.Context(), service.CheckInInput{
		UserID:    user.ID,
		StartTime: time.Now(),
		CreatedBy: user.ID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrSessionExists) {
			writeError(w, http.StatusConflict, "session already exists for today")
			return
		}
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionPayload(*session))
}

func (h SessionHandler) checkOut(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	session, err := h.Service.CheckOut(r.Context(), service.CheckOutInput{
		UserID:  user.ID,
		EndTime: time.Now(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrSessionClosed) {
			writeError(w, http.StatusConflict, "session already checked out")
			return
		}
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionPayload(*session))
}

func (h SessionHandler) status(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	session, err := h.Service.Status(r.Context(), user.ID, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]any{"session": nil})
			return
		}
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": sessionPayload(*session)})
}

func (h SessionHandler) startBreak(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	brk, err := h.Service.StartBreak(r.Context(), id, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrBreakOpen) {
			writeError(w, http.StatusConflict, "a break is already open")
			return
		}
		if errors.Is(err, domain.ErrSessionClosed) {
			writeError(w, http.StatusConflict, "session already closed")
			return
		}
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, breakPayload(*brk))
}

func (h SessionHandler) endBreak(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	breakID, err := strconv.ParseInt(chi.URLParam(r, "breakId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid break id")
		return
	}
	brk, err := h.Service.EndBreak(r.Context(), id, breakID, time.Now())
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, breakPayload(*brk))
}

func (h SessionHandler) setDescription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.Repo.SetDescription(r.Context(), id, req.Description); err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := h.sessionFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, limit := parsePage(r, h.PageSize)
	filter.Page = page
	filter.Limit = limit

	sessions, total, err := h.Repo.List(r.Context(), *filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	items := make([]map[string]any, 0, len(sessions))
	for _, s := range sessions {
		p := sessionPayload(s.WorkSession)
		p["userName"] = sessionUserName(s)
		items = append(items, p)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions":   items,
		"total":      total,
		"numOfPages": repository.NumPages(total, limit),
	})
}

func (h SessionHandler) adminCreate(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		UserID      int64     `json:"userId"`
		StartTime   time.Time `json:"startTime"`
		EndTime     time.Time `json:"endTime"`
		Description string    `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	session, err := h.Service.AdminCreate(r.Context(), service.AdminSessionInput{
		UserID:      req.UserID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
		CreatedBy:   user.ID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrSessionExists) {
			writeError(w, http.StatusConflict, "session already exists for that day")
			return
		}
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionPayload(*session))
}

func (h SessionHandler) adminUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req struct {
		StartTime   time.Time `json:"startTime"`
		EndTime     time.Time `json:"endTime"`
		Description string    `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	session, err := h.Service.AdminUpdate(r.Context(), id, service.AdminSessionInput{
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
	})
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionPayload(*session))
}

func (h SessionHandler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h SessionHandler) markPaid(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID int64  `json:"userId"`
		From   string `json:"from"`
		To     string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	from, err := time.Parse(dateLayout, req.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	to, err := time.Parse(dateLayout, req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date")
		return
	}
	if req.UserID == 0 || from.After(to) {
		writeError(w, http.StatusBadRequest, "invalid range")
		return
	}
	if err := h.Repo.MarkPaid(r.Context(), req.UserID, from, to.AddDate(0, 0, 1)); err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h SessionHandler) export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	filter, err := h.sessionFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sessions, _, err := h.Repo.List(r.Context(), *filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	name := exportFilename("sessions", filter.From, filter.To)

	switch format {
	case "csv":
		data, err := exportSessionsCSV(sessions)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", name))
		_, _ = w.Write(data)
	case "xlsx", "excel":
		data, err := exportSessionsXLSX(sessions)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", name))
		_, _ = w.Write(data)
	default:
		writeError(w, http.StatusBadRequest, "invalid format (use csv or xlsx)")
	}
}

// sessionFilter parses the shared query params; the To bound is made
// exclusive by pushing it one day forward.
func (h SessionHandler) sessionFilter(r *http.Request) (*repository.SessionFilter, error) {
	filter := repository.SessionFilter{}
	from, err := parseDateQuery(r, "startDate")
	if err != nil {
		return nil, fmt.Errorf("invalid startDate")
	}
	to, err := parseDateQuery(r, "endDate")
	if err != nil {
		return nil, fmt.Errorf("invalid endDate")
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, fmt.Errorf("startDate must be before endDate")
	}
	filter.From = from
	if to != nil {
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}
	if v := r.URL.Query().Get("userId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid userId")
		}
		filter.UserID = &id
	}
	return &filter, nil
}

func sessionUserName(s repository.SessionWithUser) string {
	if s.FirstName == "" && s.LastName == "" {
		return "User Deleted"
	}
	return s.FirstName + " " + s.LastName
}

func sessionPayload(s domain.WorkSession) map[string]any {
	breaks := make([]map[string]any, 0, len(s.Breaks))
	for _, b := range s.Breaks {
		breaks = append(breaks, breakPayload(b))
	}
	return map[string]any{
		"id":          s.ID,
		"userId":      s.UserID,
		"startTime":   s.StartTime,
		"endTime":     s.EndTime,
		"active":      s.Active,
		"attempt":     s.Attempt,
		"description": s.Description,
		"hours":       s.Hours,
		"workMinutes": s.WorkMinutes,
		"dailySalary": s.DailySalary,
		"paid":        s.Paid,
		"suspect":     s.Suspect,
		"breaks":      breaks,
	}
}

func breakPayload(b domain.Break) map[string]any {
	return map[string]any{
		"id":         b.ID,
		"sessionId":  b.SessionID,
		"startBreak": b.StartBreak,
		"endBreak":   b.EndBreak,
		"active":     b.Active,
	}
}

func exportSessionsCSV(items []repository.SessionWithUser) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"id", "employee", "date", "start", "end", "hours", "salary", "paid", "suspect", "description"})
	for _, s := range items {
		end := ""
		if s.EndTime != nil {
			end = s.EndTime.Format("15:04")
		}
		_ = w.Write([]string{
			strconv.FormatInt(s.ID, 10),
			sessionUserName(s),
			s.StartTime.Format(dateLayout),
			s.StartTime.Format("15:04"),
			end,
			s.Hours,
			strconv.FormatFloat(s.DailySalary, 'f', 2, 64),
			strconv.FormatBool(s.Paid),
			strconv.FormatBool(s.Suspect),
			s.Description,
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportSessionsXLSX(items []repository.SessionWithUser) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Sessions"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	header := []string{"ID", "Employee", "Date", "Start", "End", "Hours", "Salary", "Paid", "Suspect", "Description"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for r, s := range items {
		row := r + 2
		end := ""
		if s.EndTime != nil {
			end = s.EndTime.Format("15:04")
		}
		values := []any{
			s.ID,
			sessionUserName(s),
			s.StartTime.Format(dateLayout),
			s.StartTime.Format("15:04"),
			end,
			s.Hours,
			s.DailySalary,
			s.Paid,
			s.Suspect,
			s.Description,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 8)
	_ = f.SetColWidth(sheet, "B", "B", 24)
	_ = f.SetColWidth(sheet, "C", "E", 12)
	_ = f.SetColWidth(sheet, "F", "G", 12)
	_ = f.SetColWidth(sheet, "H", "I", 10)
	_ = f.SetColWidth(sheet, "J", "J", 32)

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
