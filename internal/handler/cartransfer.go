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

type CarTransferHandler struct {
	Service  *service.PricingService
	Repo     repository.CarTransferRepository
	PageSize int
}

func (h CarTransferHandler) RegisterRoutes(r chi.Router) {
	r.Post("/car-transfers", h.create)
	r.Get("/car-transfers", h.list)
}

func (h CarTransferHandler) RegisterManagerRoutes(r chi.Router) {
	r.Get("/car-transfers/export", h.export)
	r.Get("/car-transfers/{id}", h.get)
	r.Put("/car-transfers/{id}", h.update)
	r.Delete("/car-transfers/{id}", h.remove)
	r.Post("/car-transfers/{id}/clear-suspect", h.clearSuspect)
}

type carTransferRequest struct {
	LicensePlate     string   `json:"licensePlate"`
	LocationID       int64    `json:"locationId"`
	CarType          string   `json:"carType"`
	TransferType     string   `json:"transferType"`
	TransferMethod   string   `json:"transferMethod"`
	TransferDistance *float64 `json:"transferDistance"`
	TransferPlace    string   `json:"transferPlace"`
	AcceptSuspect    bool     `json:"acceptSuspect"`
}

func (h CarTransferHandler) create(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req carTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	transfer, suspected, err := h.Service.CreateTransfer(r.Context(), service.TransferInput{
		UserID:           user.ID,
		LicensePlate:     req.LicensePlate,
		LocationID:       req.LocationID,
		CarType:          req.CarType,
		TransferType:     domain.TransferType(req.TransferType),
		TransferMethod:   domain.TransferMethod(req.TransferMethod),
		TransferDistance: req.TransferDistance,
		TransferPlace:    req.TransferPlace,
		AcceptSuspect:    req.AcceptSuspect,
		CreatedBy:        user.ID,
	})
	if err != nil {
		writeRepoError(w, err)
		return
	}
	if suspected {
		writeJSON(w, http.StatusOK, map[string]any{"suspected": true})
		return
	}
	writeJSON(w, http.StatusCreated, carTransferPayload(*transfer, user.Staff()))
}

func (h CarTransferHandler) list(w http.ResponseWriter, r *http.Request) {
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
	if !user.Staff() {
		filter.UserID = &user.ID
	}
	page, limit := parsePage(r, h.PageSize)
	filter.Page = page
	filter.Limit = limit

	transfers, total, err := h.Repo.List(r.Context(), *filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	items := make([]map[string]any, 0, len(transfers))
	for _, ct := range transfers {
		p := carTransferPayload(ct.CarTransfer, user.Staff())
		p["userName"] = recordUserName(ct.FirstName, ct.LastName)
		p["locationName"] = ct.LocationName
		items = append(items, p)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"carTransfers": items,
		"total":        total,
		"numOfPages":   repository.NumPages(total, limit),
	})
}

func (h CarTransferHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	transfer, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, carTransferPayload(*transfer, true))
}

func (h CarTransferHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req carTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	transfer, suspected, err := h.Service.UpdateTransfer(r.Context(), id, service.TransferInput{
		LicensePlate:     req.LicensePlate,
		LocationID:       req.LocationID,
		CarType:          req.CarType,
		TransferType:     domain.TransferType(req.TransferType),
		TransferMethod:   domain.TransferMethod(req.TransferMethod),
		TransferDistance: req.TransferDistance,
		TransferPlace:    req.TransferPlace,
		AcceptSuspect:    req.AcceptSuspect,
	})
	if err != nil {
		writeRepoError(w, err)
		return
	}
	if suspected {
		writeJSON(w, http.StatusOK, map[string]any{"suspected": true})
		return
	}
	writeJSON(w, http.StatusOK, carTransferPayload(*transfer, true))
}

func (h CarTransferHandler) remove(w http.ResponseWriter, r *http.Request) {
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

func (h CarTransferHandler) clearSuspect(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	transfer, err := h.Repo.ClearSuspect(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, carTransferPayload(*transfer, true))
}

func (h CarTransferHandler) export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	filter, err := recordFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	transfers, _, err := h.Repo.List(r.Context(), *filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	name := exportFilename("car_transfers", filter.From, filter.To)

	switch format {
	case "csv":
		data, err := exportCarTransfersCSV(transfers)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", name))
		_, _ = w.Write(data)
	case "xlsx", "excel":
		data, err := exportCarTransfersXLSX(transfers)
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

func exportCarTransfersCSV(items []repository.CarTransferWithNames) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"id", "employee", "location", "plate", "carType", "transferType", "method", "distanceKm", "place", "finalPrice", "suspect", "date"})
	for _, ct := range items {
		distance := ""
		if ct.TransferDistance != nil {
			distance = strconv.FormatFloat(*ct.TransferDistance, 'f', 1, 64)
		}
		_ = w.Write([]string{
			strconv.FormatInt(ct.ID, 10),
			recordUserName(ct.FirstName, ct.LastName),
			ct.LocationName,
			ct.LicensePlate,
			ct.CarType,
			transferTypeLabel(ct.TransferType),
			transferMethodLabel(ct.TransferMethod),
			distance,
			ct.TransferPlace,
			strconv.FormatFloat(ct.FinalPrice, 'f', 2, 64),
			strconv.FormatBool(ct.Suspect),
			ct.CreatedAt.Format(dateLayout),
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportCarTransfersXLSX(items []repository.CarTransferWithNames) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Car Transfers"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	header := []string{"ID", "Employee", "Location", "Plate", "Car Type", "Transfer Type", "Method", "Distance (km)", "Place", "Final Price", "Suspect", "Date"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for r, ct := range items {
		row := r + 2
		distance := any("")
		if ct.TransferDistance != nil {
			distance = *ct.TransferDistance
		}
		values := []any{
			ct.ID,
			recordUserName(ct.FirstName, ct.LastName),
			ct.LocationName,
			ct.LicensePlate,
			ct.CarType,
			transferTypeLabel(ct.TransferType),
			transferMethodLabel(ct.TransferMethod),
			distance,
			ct.TransferPlace,
			ct.FinalPrice,
			ct.Suspect,
			ct.CreatedAt.Format(dateLayout),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 8)
	_ = f.SetColWidth(sheet, "B", "C", 24)
	_ = f.SetColWidth(sheet, "D", "G", 16)
	_ = f.SetColWidth(sheet, "H", "J", 12)
	_ = f.SetColWidth(sheet, "K", "K", 10)
	_ = f.SetColWidth(sheet, "L", "L", 12)

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	_ = f.SetCellStyle(sheet, "A1", "L1", style)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func carTransferPayload(ct domain.CarTransfer, staff bool) map[string]any {
	payload := map[string]any{
		"id":                  ct.ID,
		"userId":              ct.UserID,
		"licensePlate":        ct.LicensePlate,
		"locationId":          ct.LocationID,
		"carType":             ct.CarType,
		"transferType":        ct.TransferType,
		"transferTypeLabel":   transferTypeLabel(ct.TransferType),
		"transferMethod":      ct.TransferMethod,
		"transferMethodLabel": transferMethodLabel(ct.TransferMethod),
		"transferDistance":    ct.TransferDistance,
		"transferPlace":       ct.TransferPlace,
		"suspect":             ct.Suspect,
		"createdAt":           ct.CreatedAt,
	}
	if staff {
		payload["finalPrice"] = ct.FinalPrice
	}
	return payload
}
