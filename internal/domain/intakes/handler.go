package intakes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"med-tracker/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/intakes", func(ir chi.Router) {
		ir.Get("/", listIntakesHandler(svc))
		ir.Patch("/{intakeID}/status", setIntakeStatusHandler(svc))
	})
}

type setStatusRequest struct {
	Status Status `json:"status" enums:"planned,taken,missed"`
}

// intakeResponse es una toma del ledger con el snapshot de su medicamento.
type intakeResponse struct {
	ID           string `json:"id"`
	MedicationID string `json:"medication_id"`
	Date         string `json:"date"` // YYYY-MM-DD
	Time         string `json:"time"` // HH:MM
	Status       Status `json:"status"`

	Medication medicationSnapshot `json:"medication"`
}

type medicationSnapshot struct {
	Name        string  `json:"name"`
	DosageValue float64 `json:"dosage_value"`
	DosageUnit  string  `json:"dosage_unit"`
}

// listIntakesHandler godoc
// @Summary Listar tomas
// @Description Lista las tomas del usuario autenticado. Permite filtrar por medicamento y por rango de fechas (YYYY-MM-DD). Cada toma incluye nombre y dosis del medicamento.
// @Tags intakes
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param medication_id query string false "Filtrar por medicamento"
// @Param from query string false "Fecha mínima (YYYY-MM-DD)"
// @Param to query string false "Fecha máxima (YYYY-MM-DD)"
// @Success 200 {array} intakeResponse
// @Failure 400 {string} string "filtros inválidos"
// @Failure 401 {string} string "unauthorized"
// @Router /intakes [get]
func listIntakesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.List(r.Context(), claims.UserID, filter)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]intakeResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toIntakeResponse(it))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// setIntakeStatusHandler godoc
// @Summary Actualizar estado de una toma
// @Description Marca una toma como taken, missed o planned. Una toma con fecha pasada no puede volver a planned.
// @Tags intakes
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param intakeID path string true "ID de la toma"
// @Param payload body setStatusRequest true "Nuevo estado"
// @Success 200 {object} intakeResponse
// @Failure 400 {string} string "estado inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "intake not found"
// @Failure 422 {string} string "transición ilegal"
// @Router /intakes/{intakeID}/status [patch]
func setIntakeStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		intakeID := chi.URLParam(r, "intakeID")

		var req setStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		updated, err := svc.SetStatus(r.Context(), claims.UserID, intakeID, req.Status)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "intake not found", http.StatusNotFound)
			case errors.Is(err, ErrBadState):
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toIntakeResponse(updated))
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	filter := ListFilter{
		MedicationID: strings.TrimSpace(r.URL.Query().Get("medication_id")),
	}

	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return ListFilter{}, errors.New("from must be YYYY-MM-DD")
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return ListFilter{}, errors.New("to must be YYYY-MM-DD")
		}
		filter.To = &t
	}

	return filter, nil
}

func toIntakeResponse(it IntakeWithSchedule) intakeResponse {
	return intakeResponse{
		ID:           it.ID,
		MedicationID: it.MedicationID,
		Date:         it.Date.Format("2006-01-02"),
		Time:         it.Time,
		Status:       it.Status,
		Medication: medicationSnapshot{
			Name:        it.Schedule.Name,
			DosageValue: it.Schedule.DosageValue,
			DosageUnit:  it.Schedule.DosageUnit,
		},
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
