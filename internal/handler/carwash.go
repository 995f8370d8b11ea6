package handler

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"

	"carcare-backend/internal/domain"
	"carcare-backend/internal/repository"
	"carcare-backend/internal/server/authctx"
	"carcare-backend/internal/service"
)

type CarWashHandler struct {
	Service  *service.PricingService
	Repo     repository.CarWashRepository
	PageSize int
}

func (h CarWashHandler) RegisterRoutes(r chi.Router) {
	r.Post("/car-washes", h.create)
	r.Get("/car-washes", h.list)
}

func (h CarWashHandler) RegisterManagerRoutes(r chi.Router) {
	r.Get("/car-washes/export", h.export)
	r.Get("/car-washes/{id}", h.get)
	r.Put("/car-washes/{id}", h.update)
	r.Delete("/car-washes/{id}", h.remove)
	r.Post("/car-washes/{id}/clear-suspect", h.clearSuspect)
}

type carWashRequest struct {
	LicensePlate  string   `json:"licensePlate"`
	LocationID    int64    `json:"locationId"`
	CarType       string   `json:"carType"`
	WashType      string   `json:"washType"`
	SpecialPrice  *float64 `json:"specialPrice"`
	AcceptSuspect bool     `json:"acceptSuspect"`
}

func (h CarWashHandler) create(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req carWashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	wash, suspected, err := h.Service.CreateWash(r.Context(), service.WashInput{
		UserID:        user.ID,
		LicensePlate:  req.LicensePlate,
		LocationID:    req.LocationID,
		CarType:       req.CarType,
		WashType:      domain.WashType(req.WashType),
		SpecialPrice:  req.SpecialPrice,
		AcceptSuspect: req.AcceptSuspect,
		CreatedBy:     user.ID,
	})
	if err != nil {
		writeRepoError(w, err)
		return
	}
	if suspected {
		writeJSON(w, http.StatusOK, map[string]any{"suspected": true})
		return
	}
	writeJSON(w, http.StatusCreated, carWashPayload(*wash, user.Staff()))
}

func (h CarWashHandler) list(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	filter, err := recordFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// regular employees only see their own submissions
	if !user.Staff() {
		filter.UserID = &user.ID
	}
	page, limit := parsePage(r, h.PageSize)
	filter.Page = page
	filter.Limit = limit

	washes, total, err := h.Repo.List(r.Context(), *filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	items := make([]map[string]any, 0, len(washes))
	for _, cw := range washes {
		p := carWashPayload(cw.CarWash, user.Staff())
		p["userName"] = recordUserName(cw.FirstName, cw.LastName)
		p["locationName"] = cw.LocationName
		items = append(items, p)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"carWashes":  items,
		"total":      total,
		"numOfPages": repository.NumPages(total, limit),
	})
}

func (h CarWashHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	wash, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, carWashPayload(*wash, true))
}

func (h CarWashHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req carWashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	wash, suspected, err := h.Service.UpdateWash(r.Context(), id, service.WashInput{
		LicensePlate:  req.LicensePlate,
		LocationID:    req.LocationID,
		CarType:       req.CarType,
		WashType:      domain.WashType(req.WashType),
		SpecialPrice:  req.SpecialPrice,
		AcceptSuspect: req.AcceptSuspect,
	})
	if err != nil {
		writeRepoError(w, err)
		return
	}
	if suspected {
		writeJSON(w, http.StatusOK, map[string]any{"suspected": true})
		return
	}
	writeJSON(w, http.StatusOK, carWashPayload(*wash, true))
}

func (h CarWashHandler) remove(w http.ResponseWriter, r *http.Request) {
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

func (h CarWashHandler) clearSuspect(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	wash, err := h.Repo.ClearSuspect(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, carWashPayload(*wash, true))
}

func (h CarWashHandler) export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	filter, err := recordFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	washes, _, err := h.Repo.List(r.Context(), *filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	name := exportFilename("car_washes", filter.From, filter.To)

	switch format {
	case "csv":
		data, err := exportCarWashesCSV(washes)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", name))
		_, _ = w.Write(data)
	case "xlsx", "excel":
		data, err := exportCarWashesXLSX(washes)
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

func exportCarWashesCSV(items []repository.CarWashWithNames) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"id", "employee", "location", "plate", "carType", "washType", "specialPrice", "finalPrice", "suspect", "date"})
	for _, cw := range items {
		special := ""
		if cw.SpecialPrice != nil {
			special = strconv.FormatFloat(*cw.SpecialPrice, 'f', 2, 64)
		}
		_ = w.Write([]string{
			strconv.FormatInt(cw.ID, 10),
			recordUserName(cw.FirstName, cw.LastName),
			cw.LocationName,
			cw.LicensePlate,
			cw.CarType,
			washTypeLabel(cw.WashType),
			special,
			strconv.FormatFloat(cw.FinalPrice, 'f', 2, 64),
			strconv.FormatBool(cw.Suspect),
			cw.CreatedAt.Format(dateLayout),
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportCarWashesXLSX(items []repository.CarWashWithNames) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Car Washes"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	header := []string{"ID", "Employee", "Location", "Plate", "Car Type", "Wash Type", "Special Price", "Final Price", "Suspect", "Date"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for r, cw := range items {
		row := r + 2
		special := any("")
		if cw.SpecialPrice != nil {
			special = *cw.SpecialPrice
		}
		values := []any{
			cw.ID,
			recordUserName(cw.FirstName, cw.LastName),
			cw.LocationName,
			cw.LicensePlate,
			cw.CarType,
			washTypeLabel(cw.WashType),
			special,
			cw.FinalPrice,
			cw.Suspect,
			cw.CreatedAt.Format(dateLayout),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 8)
	_ = f.SetColWidth(sheet, "B", "C", 24)
	_ = f.SetColWidth(sheet, "D", "F", 16)
	_ = f.SetColWidth(sheet, "G", "H", 12)
	_ = f.SetColWidth(sheet, "I", "I", 10)
	_ = f.SetColWidth(sheet, "J", "J", 12)

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

// carWashPayload hides prices from regular employees.
func carWashPayload(cw domain.CarWash, staff bool) map[string]any {
	payload := map[string]any{
		"id":            cw.ID,
		"userId":        cw.UserID,
		"licensePlate":  cw.LicensePlate,
		"locationId":    cw.LocationID,
		"carType":       cw.CarType,
		"washType":      cw.WashType,
		"washTypeLabel": washTypeLabel(cw.WashType),
		"suspect":       cw.Suspect,
		"createdAt":     cw.CreatedAt,
	}
	if staff {
		payload["specialPrice"] = cw.SpecialPrice
		payload["finalPrice"] = cw.FinalPrice
	}
	return payload
}

func recordUserName(first, last string) string {
	if first == "" && last == "" {
		return "User Deleted"
	}
	return first + " " + last
}

// recordFilter parses the query params shared by wash and transfer listings.
func recordFilter(r *http.Request) (*repository.RecordFilter, error) {
	filter := repository.RecordFilter{
		Search: r.URL.Query().Get("search"),
	}
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
	if v := r.URL.Query().Get("locationId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid locationId")
		}
		filter.LocationID = &id
	}
	return &filter, nil
}
