package handler

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"log/slog"

	"carcare-backend/internal/domain"
	"carcare-backend/internal/mailer"
	"carcare-backend/internal/repository"
	"carcare-backend/internal/server/authctx"
)

type PayrollHandler struct {
	Repo     repository.PayrollRepository
	Users    repository.UserRepository
	Mailer   mailer.Mailer
	Logger   *slog.Logger
	PageSize int
}

func (h PayrollHandler) RegisterRoutes(r chi.Router) {
	r.Get("/payrolls", h.list)
	r.Get("/payrolls/{id}", h.get)
	r.Post("/payrolls", h.create)
	r.Delete("/payrolls/{id}", h.remove)
	r.Get("/payrolls/pending-users", h.pendingUsers)
	r.Post("/payrolls/send-email", h.sendEmail)
}

// pendingUsers lists active employees that have no payroll for the given
// month yet.
func (h PayrollHandler) pendingUsers(w http.ResponseWriter, r *http.Request) {
	monthYear := r.URL.Query().Get("date")
	if monthYear == "" {
		writeError(w, http.StatusBadRequest, "missing date")
		return
	}
	roles := []string{string(domain.RoleUser)}
	if v := r.URL.Query().Get("roles"); v != "" {
		roles = strings.Split(v, ",")
	}
	users, err := h.Users.WithoutPayroll(r.Context(), monthYear, roles)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	items := make([]map[string]any, 0, len(users))
	for _, u := range users {
		items = append(items, userPayload(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": items})
}

func (h PayrollHandler) create(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		UserID           int64               `json:"userId"`
		Employer         domain.PayrollParty `json:"employer"`
		Worker           domain.PayrollParty `json:"worker"`
		MonthYear        string              `json:"monthYear"`
		PlaceDate        string              `json:"placeDate"`
		Canton           string              `json:"canton"`
		BillingProcedure string              `json:"billingProcedure"`
		TotalHours       float64             `json:"totalHours"`
		HourlyPay        float64             `json:"hourlyPay"`
		HolidayBonus     float64             `json:"holidayBonus"`
		HourlyPayGross   float64             `json:"hourlyPayGross"`
		GrossSalary      float64             `json:"grossSalary"`
		HourlyDeduction  float64             `json:"hourlyDeduction"`
		MonthlyDeduction float64             `json:"monthlyDeduction"`
		MonthlyPay       float64             `json:"monthlyPay"`
		Taxes            map[string]float64  `json:"taxes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.UserID == 0 || req.Employer.Name == "" || req.Worker.Name == "" ||
		req.MonthYear == "" || req.PlaceDate == "" || req.Canton == "" ||
		req.TotalHours == 0 || req.GrossSalary == 0 || len(req.Taxes) == 0 {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}
	payroll, err := h.Repo.Create(r.Context(), domain.Payroll{
		UserID:           req.UserID,
		Employer:         req.Employer,
		Worker:           req.Worker,
		MonthYear:        req.MonthYear,
		PlaceDate:        req.PlaceDate,
		Canton:           req.Canton,
		BillingProcedure: req.BillingProcedure,
		TotalHours:       req.TotalHours,
		HourlyPay:        req.HourlyPay,
		HolidayBonus:     req.HolidayBonus,
		HourlyPayGross:   req.HourlyPayGross,
		GrossSalary:      req.GrossSalary,
		HourlyDeduction:  req.HourlyDeduction,
		MonthlyDeduction: req.MonthlyDeduction,
		MonthlyPay:       req.MonthlyPay,
		Taxes:            req.Taxes,
		CreatedBy:        user.ID,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, payrollPayload(*payroll))
}

func (h PayrollHandler) list(w http.ResponseWriter, r *http.Request) {
	filter := repository.PayrollFilter{}
	from, err := parseDateQuery(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from")
		return
	}
	to, err := parseDateQuery(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to")
		return
	}
	filter.From = from
	if to != nil {
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}
	if v := r.URL.Query().Get("userId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid userId")
			return
		}
		filter.UserID = &id
	}
	filter.Page, filter.Limit = parsePage(r, h.PageSize)

	payrolls, total, err := h.Repo.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	items := make([]map[string]any, 0, len(payrolls))
	for _, p := range payrolls {
		items = append(items, payrollPayload(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"payrolls":   items,
		"total":      total,
		"numOfPages": repository.NumPages(total, filter.Limit),
	})
}

func (h PayrollHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	payroll, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payrollPayload(*payroll))
}

func (h PayrollHandler) remove(w http.ResponseWriter, r *http.Request) {
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

// sendEmail mails a client-rendered payslip PDF to the employee.
func (h PayrollHandler) sendEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		Email     string `json:"email"`
		PDFBase64 string `json:"pdfBase64"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Email == "" || req.PDFBase64 == "" {
		writeError(w, http.StatusBadRequest, "missing email or pdf")
		return
	}
	data, err := base64.StdEncoding.DecodeString(req.PDFBase64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pdf encoding")
		return
	}
	err = h.Mailer.SendWithAttachment(req.Email,
		fmt.Sprintf("Lohnabrechnung - %s", req.Name),
		"Im Anhang finden Sie Ihre Lohnabrechnung.",
		mailer.Attachment{
			Filename:    fmt.Sprintf("Lohnabrechnung - %s.pdf", req.Name),
			ContentType: "application/pdf",
			Data:        data,
		})
	if err != nil {
		h.Logger.Error("send payroll mail", "email", req.Email, "error", err)
		writeError(w, http.StatusBadGateway, "could not send email")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func payrollPayload(p domain.Payroll) map[string]any {
	return map[string]any{
		"id":               p.ID,
		"userId":           p.UserID,
		"employer":         p.Employer,
		"worker":           p.Worker,
		"monthYear":        p.MonthYear,
		"placeDate":        p.PlaceDate,
		"canton":           p.Canton,
		"billingProcedure": p.BillingProcedure,
		"totalHours":       p.TotalHours,
		"hourlyPay":        p.HourlyPay,
		"holidayBonus":     p.HolidayBonus,
		"hourlyPayGross":   p.HourlyPayGross,
		"grossSalary":      p.GrossSalary,
		"hourlyDeduction":  p.HourlyDeduction,
		"monthlyDeduction": p.MonthlyDeduction,
		"monthlyPay":       p.MonthlyPay,
		"taxes":            p.Taxes,
		"createdAt":        p.CreatedAt,
	}
}
