package medications

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"med-tracker/internal/middleware"
	"med-tracker/internal/platform/logger"
	"med-tracker/internal/ports/notify"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, notifier notify.ReminderNotifier, log logger.Logger) {
	r.Route("/medications", func(mr chi.Router) {
		mr.Post("/", createMedicationHandler(svc))
		mr.Get("/", listMedicationsHandler(svc))

		mr.Get("/{medicationID}", getMedicationHandler(svc))
		mr.Put("/{medicationID}", updateMedicationHandler(svc))
		mr.Delete("/{medicationID}", deleteMedicationHandler(svc))

		// Ciclo de vida de cierre
		mr.Post("/{medicationID}/complete", completeMedicationHandler(svc))
		mr.Post("/{medicationID}/restore", restoreMedicationHandler(svc))

		// Recordatorio push (best-effort)
		mr.Post("/{medicationID}/notify", notifyMedicationHandler(svc, notifier, log))
	})
}

// medicationRequest es el cuerpo de creación/edición de una prescripción.
type medicationRequest struct {
	Name           string   `json:"name"`
	DosageValue    float64  `json:"dosage_value"`
	DosageUnit     string   `json:"dosage_unit"`
	IntakeTimes    []string `json:"intake_times"` // HH:MM 24h
	FrequencyCount int      `json:"frequency_count"`
	FrequencyUnit  string   `json:"frequency_unit" enums:"day,week,month"`
	StartDate      string   `json:"start_date"`         // YYYY-MM-DD
	EndDate        string   `json:"end_date,omitempty"` // YYYY-MM-DD opcional
	Notes          string   `json:"notes"`
}

type medicationResponse struct {
	ID             string    `json:"id"`
	OwnerUserID    string    `json:"owner_user_id"`
	Name           string    `json:"name"`
	DosageValue    float64   `json:"dosage_value"`
	DosageUnit     string    `json:"dosage_unit"`
	IntakeTimes    []string  `json:"intake_times"`
	FrequencyCount int       `json:"frequency_count"`
	FrequencyUnit  string    `json:"frequency_unit"`
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date,omitempty"`
	Notes          string    `json:"notes"`
	IsCompleted    bool      `json:"is_completed"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// createMedicationHandler godoc
// @Summary Crear medicamento
// @Description Crea una prescripción recurrente y deja generadas sus tomas. La unidad de dosis debe existir en el registro del usuario (GET /units la siembra con los defaults).
// @Tags medications
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param payload body medicationRequest true "Definición completa; fechas en YYYY-MM-DD"
// @Success 201 {object} medicationResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 401 {string} string "unauthorized"
// @Router /medications [post]
func createMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		in, err := decodeMedicationRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		m, err := svc.Create(r.Context(), claims.UserID, in)
		if err != nil {
			writeMedicationErr(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toMedicationResponse(m))
	}
}

// listMedicationsHandler godoc
// @Summary Listar medicamentos
// @Description Lista las prescripciones del usuario, más recientes primero.
// @Tags medications
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Success 200 {array} medicationResponse
// @Failure 401 {string} string "unauthorized"
// @Router /medications [get]
func listMedicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]medicationResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMedicationResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		m, err := svc.GetByID(r.Context(), claims.UserID, chi.URLParam(r, "medicationID"))
		if err != nil {
			writeMedicationErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMedicationResponse(m))
	}
}

// updateMedicationHandler godoc
// @Summary Editar medicamento
// @Description Reemplaza la definición completa y regenera el ledger de tomas. Las tomas previas se descartan, incluidas las ya marcadas taken/missed.
// @Tags medications
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param medicationID path string true "ID del medicamento"
// @Param payload body medicationRequest true "Definición completa"
// @Success 200 {object} medicationResponse
// @Failure 400 {string} string "validación"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "medication not found"
// @Router /medications/{medicationID} [put]
func updateMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		in, err := decodeMedicationRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		m, err := svc.Update(r.Context(), claims.UserID, chi.URLParam(r, "medicationID"), in)
		if err != nil {
			writeMedicationErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMedicationResponse(m))
	}
}

func completeMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		m, err := svc.Complete(r.Context(), claims.UserID, chi.URLParam(r, "medicationID"))
		if err != nil {
			writeMedicationErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMedicationResponse(m))
	}
}

func restoreMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		m, err := svc.Restore(r.Context(), claims.UserID, chi.URLParam(r, "medicationID"))
		if err != nil {
			writeMedicationErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMedicationResponse(m))
	}
}

// deleteMedicationHandler godoc
// @Summary Borrar medicamento
// @Description Borra definitivamente un medicamento completado y todas sus tomas. Sobre uno activo responde 422: completar primero.
// @Tags medications
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param medicationID path string true "ID del medicamento"
// @Success 200 {object} map[string]string
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "medication not found"
// @Failure 422 {string} string "no está completado"
// @Router /medications/{medicationID} [delete]
func deleteMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "medicationID")); err != nil {
			writeMedicationErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "medication deleted"})
	}
}

// notifyMedicationHandler dispara un recordatorio push para el medicamento.
// Best-effort: si la entrega falla solo se loguea; el 202 confirma la
// aceptación, no la entrega.
func notifyMedicationHandler(svc *Service, notifier notify.ReminderNotifier, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		m, err := svc.GetByID(r.Context(), claims.UserID, chi.URLParam(r, "medicationID"))
		if err != nil {
			writeMedicationErr(w, err)
			return
		}

		if notifier == nil {
			http.Error(w, "notifications not configured", http.StatusServiceUnavailable)
			return
		}

		reminder := notify.Reminder{
			UserID: claims.UserID,
			Title:  "Reminder: " + m.Name,
			Body:   fmt.Sprintf("Time to take %g %s", m.Dosage.Value, m.Dosage.Unit),
		}
		if err := notifier.Send(r.Context(), reminder); err != nil {
			log.Warn("reminder delivery failed", map[string]any{
				"medication_id": m.ID,
				"error":         err.Error(),
			})
		}

		writeJSON(w, http.StatusAccepted, map[string]string{"message": "reminder accepted"})
	}
}

func decodeMedicationRequest(r *http.Request) (Input, error) {
	var req medicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return Input{}, errors.New("invalid json")
	}

	start, err := time.Parse("2006-01-02", strings.TrimSpace(req.StartDate))
	if err != nil {
		return Input{}, errors.New("start_date must be YYYY-MM-DD")
	}

	var end *time.Time
	if strings.TrimSpace(req.EndDate) != "" {
		t, err := time.Parse("2006-01-02", strings.TrimSpace(req.EndDate))
		if err != nil {
			return Input{}, errors.New("end_date must be YYYY-MM-DD")
		}
		end = &t
	}

	return Input{
		Name:           req.Name,
		DosageValue:    req.DosageValue,
		DosageUnit:     req.DosageUnit,
		IntakeTimes:    req.IntakeTimes,
		FrequencyCount: req.FrequencyCount,
		FrequencyUnit:  req.FrequencyUnit,
		StartDate:      start,
		EndDate:        end,
		Notes:          req.Notes,
	}, nil
}

func writeMedicationErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "medication not found", http.StatusNotFound)
	case errors.Is(err, ErrBadState):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toMedicationResponse(m Medication) medicationResponse {
	out := medicationResponse{
		ID:             m.ID,
		OwnerUserID:    m.OwnerUserID,
		Name:           m.Name,
		DosageValue:    m.Dosage.Value,
		DosageUnit:     m.Dosage.Unit,
		IntakeTimes:    m.IntakeTimes,
		FrequencyCount: m.Frequency.Count,
		FrequencyUnit:  string(m.Frequency.Unit),
		StartDate:      m.StartDate.Format("2006-01-02"),
		Notes:          m.Notes,
		IsCompleted:    m.IsCompleted,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.EndDate != nil {
		out.EndDate = m.EndDate.Format("2006-01-02")
	}
	return out
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
