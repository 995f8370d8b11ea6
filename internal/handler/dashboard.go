package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"carcare-backend/internal/repository"
	"carcare-backend/internal/timeutil"
)

// DashboardHandler serves the back-office stats screens.
type DashboardHandler struct {
	Repo repository.DashboardRepository
}

func (h DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard/totals", h.totals)
	r.Get("/dashboard/by-user", h.byUser)
	r.Get("/dashboard/by-location", h.byLocation)
}

// statsRange defaults to the current pay period when no explicit window is
// given.
func statsRange(r *http.Request) (time.Time, time.Time, error) {
	from, err := parseDateQuery(r, "startDate")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDateQuery(r, "endDate")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if from == nil || to == nil {
		start, end := timeutil.PayPeriod(time.Now())
		return start, end, nil
	}
	return *from, to.AddDate(0, 0, 1), nil
}

func (h DashboardHandler) totals(w http.ResponseWriter, r *http.Request) {
	from, to, err := statsRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date range")
		return
	}
	stats, err := h.Repo.Totals(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"from": from.Format(dateLayout),
		"to":   to.AddDate(0, 0, -1).Format(dateLayout),
		"carWash": map[string]any{
			"count":      stats.CarWash.TotalCount,
			"totalPrice": stats.CarWash.TotalPrice,
		},
		"carTransfer": map[string]any{
			"count":      stats.CarTransfer.TotalCount,
			"totalPrice": stats.CarTransfer.TotalPrice,
		},
		"sessions": map[string]any{
			"checkIns":    stats.Sessions.TotalCheckIns,
			"totalSalary": stats.Sessions.TotalSalary,
		},
	})
}

func (h DashboardHandler) byUser(w http.ResponseWriter, r *http.Request) {
	from, to, err := statsRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date range")
		return
	}
	totals, err := h.Repo.SessionTotalsByUser(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	items := make([]map[string]any, 0, len(totals))
	for _, t := range totals {
		items = append(items, map[string]any{
			"userId":      t.UserID,
			"userName":    recordUserName(t.FirstName, t.LastName),
			"sessions":    t.TotalCount,
			"workMinutes": t.WorkMinutes,
			"hours":       timeutil.FormatHoursMinutes(int(t.WorkMinutes)),
			"totalSalary": t.TotalSalary,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": items})
}

func (h DashboardHandler) byLocation(w http.ResponseWriter, r *http.Request) {
	from, to, err := statsRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date range")
		return
	}
	totals, err := h.Repo.RecordTotalsByLocation(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	items := make([]map[string]any, 0, len(totals))
	for name, t := range totals {
		items = append(items, map[string]any{
			"locationName": name,
			"count":        t.TotalCount,
			"totalPrice":   t.TotalPrice,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"locations": items})
}
