package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"med-tracker/internal/router"
)

func TestHTTP_EndToEnd_MedicationLifecycle(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	userID := "user-1"
	otherID := "user-2"

	// 1) GET /units siembra los defaults
	{
		st, body := doReq(t, ts.URL, "GET", "/units", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing units, got %d body=%s", st, string(body))
		}
		var units []struct {
			Name string `json:"name"`
		}
		_ = json.Unmarshal(body, &units)
		if len(units) != 5 {
			t.Fatalf("expected 5 default units, got %d body=%s", len(units), string(body))
		}
	}

	// 2) Usuario crea medicación con unidad default
	start := time.Now().UTC().Format("2006-01-02")
	medID := createMedication(t, ts.URL, userID, map[string]any{
		"name":            "Aspirin",
		"dosage_value":    500,
		"dosage_unit":     "mg",
		"intake_times":    []string{"08:00", "20:00"},
		"frequency_count": 1,
		"frequency_unit":  "day",
		"start_date":      start,
	})

	// 3) El ledger quedó poblado, con snapshot del medicamento
	var firstIntakeID string
	{
		st, body := doReq(t, ts.URL, "GET", "/intakes?medication_id="+medID, userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing intakes, got %d body=%s", st, string(body))
		}
		var items []struct {
			ID         string `json:"id"`
			Status     string `json:"status"`
			Medication struct {
				Name       string  `json:"name"`
				DosageUnit string  `json:"dosage_unit"`
				Value      float64 `json:"dosage_value"`
			} `json:"medication"`
		}
		_ = json.Unmarshal(body, &items)
		if len(items) == 0 {
			t.Fatalf("expected generated intakes, got none")
		}
		if items[0].Medication.Name != "Aspirin" || items[0].Medication.DosageUnit != "mg" {
			t.Fatalf("expected medication snapshot on intake, got %+v", items[0].Medication)
		}
		firstIntakeID = items[0].ID
	}

	// 4) Marcar una toma como taken
	{
		st, body := doReq(t, ts.URL, "PATCH", "/intakes/"+firstIntakeID+"/status", userID, map[string]any{
			"status": "taken",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 setting status, got %d body=%s", st, string(body))
		}
	}

	// 5) Otro usuario no ve nada de esto
	{
		st, _ := doReq(t, ts.URL, "GET", "/medications/"+medID, otherID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 for other user, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "PATCH", "/intakes/"+firstIntakeID+"/status", otherID, map[string]any{
			"status": "missed",
		})
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 setting status as other user, got %d", st)
		}
	}

	// 6) Borrar una medicación activa falla: completar primero
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/medications/"+medID, userID, nil)
		if st != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422 deleting active medication, got %d", st)
		}
	}

	// 7) Completar descarta lo pendiente, el historial sobrevive
	{
		st, body := doReq(t, ts.URL, "POST", "/medications/"+medID+"/complete", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 completing, got %d body=%s", st, string(body))
		}

		st, body = doReq(t, ts.URL, "GET", "/intakes?medication_id="+medID, userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing after complete, got %d", st)
		}
		var items []struct {
			Status string `json:"status"`
		}
		_ = json.Unmarshal(body, &items)
		if len(items) != 1 || items[0].Status != "taken" {
			t.Fatalf("expected only the taken intake to survive, got %s", string(body))
		}
	}

	// 8) Restaurar regenera lo que faltaba sin duplicar el historial
	{
		st, body := doReq(t, ts.URL, "POST", "/medications/"+medID+"/restore", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 restoring, got %d body=%s", st, string(body))
		}

		st, body = doReq(t, ts.URL, "GET", "/intakes?medication_id="+medID, userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing after restore, got %d", st)
		}
		var items []struct {
			Status string `json:"status"`
		}
		_ = json.Unmarshal(body, &items)
		takenCount := 0
		for _, it := range items {
			if it.Status == "taken" {
				takenCount++
			}
		}
		if takenCount != 1 {
			t.Fatalf("expected exactly 1 taken intake after restore, got %d", takenCount)
		}
		if len(items) < 2 {
			t.Fatalf("expected regenerated planned intakes after restore, got %d total", len(items))
		}
	}

	// 9) La unidad en uso no se puede borrar
	{
		mgID := unitIDByName(t, ts.URL, userID, "mg")
		st, body := doReq(t, ts.URL, "DELETE", "/units/"+mgID, userID, nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 deleting in-use unit, got %d body=%s", st, string(body))
		}
	}

	// 10) Completar de nuevo y borrar definitivamente
	{
		st, _ := doReq(t, ts.URL, "POST", "/medications/"+medID+"/complete", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 completing again, got %d", st)
		}
		st, body := doReq(t, ts.URL, "DELETE", "/medications/"+medID, userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 deleting completed medication, got %d body=%s", st, string(body))
		}
		st, _ = doReq(t, ts.URL, "GET", "/medications/"+medID, userID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 after delete, got %d", st)
		}
		st, body = doReq(t, ts.URL, "GET", "/intakes?medication_id="+medID, userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing after delete, got %d", st)
		}
		var items []any
		_ = json.Unmarshal(body, &items)
		if len(items) != 0 {
			t.Fatalf("expected empty ledger after delete, got %d items", len(items))
		}
	}
}

func TestHTTP_CreateMedication_RejectsUnknownUnit(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	userID := "user-1"

	// siembra los defaults
	doReq(t, ts.URL, "GET", "/units", userID, nil)

	st, body := doReq(t, ts.URL, "POST", "/medications", userID, map[string]any{
		"name":            "Aspirin",
		"dosage_value":    500,
		"dosage_unit":     "pills",
		"intake_times":    []string{"08:00"},
		"frequency_count": 1,
		"frequency_unit":  "day",
		"start_date":      time.Now().UTC().Format("2006-01-02"),
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown unit, got %d body=%s", st, string(body))
	}
}

func TestHTTP_UnitRename_PropagatesToMedications(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	userID := "user-1"

	doReq(t, ts.URL, "GET", "/units", userID, nil)

	medID := createMedication(t, ts.URL, userID, map[string]any{
		"name":            "Ibuprofen",
		"dosage_value":    2,
		"dosage_unit":     "tablets",
		"intake_times":    []string{"12:00"},
		"frequency_count": 1,
		"frequency_unit":  "day",
		"start_date":      time.Now().UTC().Format("2006-01-02"),
	})

	tabletsID := unitIDByName(t, ts.URL, userID, "tablets")
	st, body := doReq(t, ts.URL, "PATCH", "/units/"+tabletsID, userID, map[string]any{
		"name": "pills",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 renaming unit, got %d body=%s", st, string(body))
	}

	st, body = doReq(t, ts.URL, "GET", "/medications/"+medID, userID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 getting medication, got %d", st)
	}
	var med struct {
		DosageUnit string `json:"dosage_unit"`
	}
	_ = json.Unmarshal(body, &med)
	if med.DosageUnit != "pills" {
		t.Fatalf("expected dosage_unit renamed to pills, got %q", med.DosageUnit)
	}
}

func TestHTTP_MissingIdentity_IsUnauthorized(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	st, _ := doReq(t, ts.URL, "GET", "/medications", "", nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", st)
	}
}

func TestHTTP_Health_IsPublic(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	st, body := doReq(t, ts.URL, "GET", "/health", "", nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("expected public 200 ok, got %d body=%s", st, string(body))
	}
}

func createMedication(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/medications", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create medication, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create medication: missing id body=%s", string(body))
	}
	return resp.ID
}

func unitIDByName(t *testing.T, baseURL, userID, name string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/units", userID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 listing units, got %d body=%s", st, string(body))
	}

	var units []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	_ = json.Unmarshal(body, &units)
	for _, u := range units {
		if u.Name == name {
			return u.ID
		}
	}
	t.Fatalf("unit %q not found in body=%s", name, string(body))
	return ""
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
