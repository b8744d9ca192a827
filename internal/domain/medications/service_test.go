package medications

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"med-tracker/internal/domain/intakes"
)

// -------------------------
// Test repos (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testMedRepo struct {
	byID map[string]Medication
}

func newTestMedRepo() *testMedRepo {
	return &testMedRepo{byID: map[string]Medication{}}
}

func (r *testMedRepo) Create(ctx context.Context, m Medication) error {
	if _, ok := r.byID[m.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[m.ID] = m
	return nil
}

func (r *testMedRepo) Update(ctx context.Context, m Medication) error {
	cur, ok := r.byID[m.ID]
	if !ok || cur.OwnerUserID != m.OwnerUserID {
		return errRepoNotFound
	}
	r.byID[m.ID] = m
	return nil
}

func (r *testMedRepo) GetByID(ctx context.Context, ownerUserID, id string) (Medication, error) {
	m, ok := r.byID[id]
	if !ok || m.OwnerUserID != ownerUserID {
		return Medication{}, errRepoNotFound
	}
	return m, nil
}

func (r *testMedRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]Medication, error) {
	out := make([]Medication, 0)
	for _, m := range r.byID {
		if m.OwnerUserID == ownerUserID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *testMedRepo) ListByDosageUnit(ctx context.Context, ownerUserID, unit string) ([]Medication, error) {
	out := make([]Medication, 0)
	for _, m := range r.byID {
		if m.OwnerUserID == ownerUserID && m.Dosage.Unit == unit {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *testMedRepo) Delete(ctx context.Context, ownerUserID, id string) error {
	m, ok := r.byID[id]
	if !ok || m.OwnerUserID != ownerUserID {
		return errRepoNotFound
	}
	delete(r.byID, id)
	return nil
}

type testIntakeRepo struct {
	byID map[string]intakes.Intake
}

func newTestIntakeRepo() *testIntakeRepo {
	return &testIntakeRepo{byID: map[string]intakes.Intake{}}
}

func (r *testIntakeRepo) InsertBatch(ctx context.Context, items []intakes.Intake) error {
	slots := map[string]struct{}{}
	for _, it := range r.byID {
		slots[it.MedicationID+"|"+it.SlotKey()] = struct{}{}
	}
	for _, it := range items {
		key := it.MedicationID + "|" + it.SlotKey()
		if _, dup := slots[key]; dup {
			return errors.New("repo: duplicated slot")
		}
		slots[key] = struct{}{}
	}
	for _, it := range items {
		r.byID[it.ID] = it
	}
	return nil
}

func (r *testIntakeRepo) GetByID(ctx context.Context, ownerUserID, id string) (intakes.Intake, error) {
	it, ok := r.byID[id]
	if !ok || it.OwnerUserID != ownerUserID {
		return intakes.Intake{}, errRepoNotFound
	}
	return it, nil
}

func (r *testIntakeRepo) List(ctx context.Context, ownerUserID string, filter intakes.ListFilter) ([]intakes.Intake, error) {
	out := make([]intakes.Intake, 0)
	for _, it := range r.byID {
		if it.OwnerUserID != ownerUserID {
			continue
		}
		if filter.MedicationID != "" && it.MedicationID != filter.MedicationID {
			continue
		}
		if filter.From != nil && it.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && it.Date.After(*filter.To) {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (r *testIntakeRepo) UpdateStatus(ctx context.Context, ownerUserID, id string, status intakes.Status) error {
	it, ok := r.byID[id]
	if !ok || it.OwnerUserID != ownerUserID {
		return errRepoNotFound
	}
	it.Status = status
	r.byID[id] = it
	return nil
}

func (r *testIntakeRepo) DeleteByMedication(ctx context.Context, ownerUserID, medicationID string, onlyStatus *intakes.Status) error {
	for id, it := range r.byID {
		if it.OwnerUserID != ownerUserID || it.MedicationID != medicationID {
			continue
		}
		if onlyStatus != nil && it.Status != *onlyStatus {
			continue
		}
		delete(r.byID, id)
	}
	return nil
}

// testUnitCatalog acepta solo los nombres sembrados.
type testUnitCatalog struct {
	names map[string]struct{}
}

func newTestUnitCatalog(names ...string) *testUnitCatalog {
	c := &testUnitCatalog{names: map[string]struct{}{}}
	for _, n := range names {
		c.names[n] = struct{}{}
	}
	return c
}

func (c *testUnitCatalog) Exists(ctx context.Context, ownerUserID, name string) (bool, error) {
	_, ok := c.names[name]
	return ok, nil
}

// -------------------------
// Helpers
// -------------------------

func newTestService(now time.Time) (*Service, *testMedRepo, *testIntakeRepo) {
	medRepo := newTestMedRepo()
	intakeRepo := newTestIntakeRepo()
	svc := NewService(medRepo, intakeRepo, newTestUnitCatalog("mg", "ml"))
	svc.now = func() time.Time { return now }
	return svc, medRepo, intakeRepo
}

func validInput() Input {
	return Input{
		Name:           "Aspirin",
		DosageValue:    500,
		DosageUnit:     "mg",
		IntakeTimes:    []string{"08:00", "20:00"},
		FrequencyCount: 1,
		FrequencyUnit:  "day",
		StartDate:      day(2024, time.January, 1),
	}
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_PopulatesLedger(t *testing.T) {
	now := time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)
	svc, _, intakeRepo := newTestService(now)

	m, err := svc.Create(context.Background(), "user-1", validInput())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if m.ID == "" {
		t.Fatalf("expected generated id")
	}
	if m.IsCompleted {
		t.Fatalf("expected new medication active")
	}
	if m.CreatedAt != now || m.UpdatedAt != now {
		t.Fatalf("expected CreatedAt/UpdatedAt = now")
	}

	items, _ := intakeRepo.List(context.Background(), "user-1", intakes.ListFilter{MedicationID: m.ID})
	if len(items) != 62 {
		t.Fatalf("expected 62 generated intakes, got %d", len(items))
	}
	for _, it := range items {
		if it.Status != intakes.StatusPlanned {
			t.Fatalf("expected planned, got %s", it.Status)
		}
	}
}

func TestService_Create_ValidationErrors(t *testing.T) {
	now := time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)

	future := day(2024, time.February, 1)
	endBeforeStart := day(2023, time.December, 1)

	cases := []struct {
		name   string
		mutate func(*Input)
		field  string
	}{
		{"empty name", func(in *Input) { in.Name = "   " }, "name"},
		{"name too long", func(in *Input) { in.Name = strings.Repeat("x", 101) }, "name"},
		{"zero dosage", func(in *Input) { in.DosageValue = 0 }, "dosage_value"},
		{"dosage too big", func(in *Input) { in.DosageValue = 10000 }, "dosage_value"},
		{"unknown unit", func(in *Input) { in.DosageUnit = "pills" }, "dosage_unit"},
		{"no intake times", func(in *Input) { in.IntakeTimes = nil }, "intake_times"},
		{"too many intake times", func(in *Input) {
			in.IntakeTimes = []string{"00:01", "00:02", "00:03", "00:04", "00:05", "00:06", "00:07", "00:08", "00:09", "00:10", "00:11"}
		}, "intake_times"},
		{"bad time format", func(in *Input) { in.IntakeTimes = []string{"8:00"} }, "intake_times"},
		{"out of range time", func(in *Input) { in.IntakeTimes = []string{"24:00"} }, "intake_times"},
		{"duplicated time", func(in *Input) { in.IntakeTimes = []string{"08:00", "08:00"} }, "intake_times"},
		{"zero frequency", func(in *Input) { in.FrequencyCount = 0 }, "frequency_count"},
		{"frequency too big", func(in *Input) { in.FrequencyCount = 31 }, "frequency_count"},
		{"bad frequency unit", func(in *Input) { in.FrequencyUnit = "year" }, "frequency_unit"},
		{"missing start date", func(in *Input) { in.StartDate = time.Time{} }, "start_date"},
		{"future start date", func(in *Input) { in.StartDate = future }, "start_date"},
		{"end before start", func(in *Input) { in.EndDate = &endBeforeStart }, "end_date"},
		{"notes too long", func(in *Input) { in.Notes = strings.Repeat("x", 501) }, "notes"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, _ := newTestService(now)

			in := validInput()
			tc.mutate(&in)

			_, err := svc.Create(context.Background(), "user-1", in)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Fatalf("expected error naming %q, got %q", tc.field, err.Error())
			}
		})
	}
}

func TestService_Create_SameDayStartAllowed(t *testing.T) {
	now := time.Date(2024, time.January, 1, 23, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(now)

	in := validInput()
	in.StartDate = day(2024, time.January, 1)

	if _, err := svc.Create(context.Background(), "user-1", in); err != nil {
		t.Fatalf("expected same-day start to pass, got %v", err)
	}
}

func TestService_Update_RegeneratesAndDiscardsHistory(t *testing.T) {
	now := time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)
	svc, _, intakeRepo := newTestService(now)

	m, err := svc.Create(context.Background(), "user-1", validInput())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// marca una toma como taken antes de editar
	items, _ := intakeRepo.List(context.Background(), "user-1", intakes.ListFilter{MedicationID: m.ID})
	if err := intakeRepo.UpdateStatus(context.Background(), "user-1", items[0].ID, intakes.StatusTaken); err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}

	in := validInput()
	in.IntakeTimes = []string{"09:00"}
	updated, err := svc.Update(context.Background(), "user-1", m.ID, in)
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if len(updated.IntakeTimes) != 1 || updated.IntakeTimes[0] != "09:00" {
		t.Fatalf("expected intake times replaced, got %#v", updated.IntakeTimes)
	}

	// regeneración total: 31 días x 1 horario, todo planned de nuevo
	items, _ = intakeRepo.List(context.Background(), "user-1", intakes.ListFilter{MedicationID: m.ID})
	if len(items) != 31 {
		t.Fatalf("expected 31 regenerated intakes, got %d", len(items))
	}
	for _, it := range items {
		if it.Status != intakes.StatusPlanned {
			t.Fatalf("expected regenerated intakes planned, got %s", it.Status)
		}
	}
}

func TestService_Complete_KeepsHistoryDropsPlanned(t *testing.T) {
	now := time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)
	svc, _, intakeRepo := newTestService(now)

	m, err := svc.Create(context.Background(), "user-1", validInput())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	items, _ := intakeRepo.List(context.Background(), "user-1", intakes.ListFilter{MedicationID: m.ID})
	_ = intakeRepo.UpdateStatus(context.Background(), "user-1", items[0].ID, intakes.StatusTaken)
	_ = intakeRepo.UpdateStatus(context.Background(), "user-1", items[1].ID, intakes.StatusMissed)

	completed, err := svc.Complete(context.Background(), "user-1", m.ID)
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if !completed.IsCompleted {
		t.Fatalf("expected IsCompleted = true")
	}

	items, _ = intakeRepo.List(context.Background(), "user-1", intakes.ListFilter{MedicationID: m.ID})
	if len(items) != 2 {
		t.Fatalf("expected only the 2 history intakes to survive, got %d", len(items))
	}
	for _, it := range items {
		if it.Status == intakes.StatusPlanned {
			t.Fatalf("expected no planned intakes after complete")
		}
	}

	// idempotente
	if _, err := svc.Complete(context.Background(), "user-1", m.ID); err != nil {
		t.Fatalf("Complete #2 error: %v", err)
	}
}

func TestService_Restore_RegeneratesWithoutDuplicatingHistory(t *testing.T) {
	now := time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)
	svc, _, intakeRepo := newTestService(now)

	m, err := svc.Create(context.Background(), "user-1", validInput())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	items, _ := intakeRepo.List(context.Background(), "user-1", intakes.ListFilter{MedicationID: m.ID})
	takenID := items[0].ID
	takenKey := items[0].SlotKey()
	_ = intakeRepo.UpdateStatus(context.Background(), "user-1", takenID, intakes.StatusTaken)

	if _, err := svc.Complete(context.Background(), "user-1", m.ID); err != nil {
		t.Fatalf("Complete error: %v", err)
	}

	restored, err := svc.Restore(context.Background(), "user-1", m.ID)
	if err != nil {
		t.Fatalf("Restore error: %v", err)
	}
	if restored.IsCompleted {
		t.Fatalf("expected IsCompleted = false after restore")
	}

	items, _ = intakeRepo.List(context.Background(), "user-1", intakes.ListFilter{MedicationID: m.ID})
	if len(items) != 62 {
		t.Fatalf("expected full 62-slot ledger after restore, got %d", len(items))
	}
	for _, it := range items {
		if it.SlotKey() == takenKey {
			if it.Status != intakes.StatusTaken {
				t.Fatalf("expected history slot to keep taken status, got %s", it.Status)
			}
			if it.ID != takenID {
				t.Fatalf("expected history slot to survive, not be regenerated")
			}
		}
	}

	// idempotente sobre una medicación activa
	if _, err := svc.Restore(context.Background(), "user-1", m.ID); err != nil {
		t.Fatalf("Restore #2 error: %v", err)
	}
}

func TestService_Delete_RequiresCompleted(t *testing.T) {
	now := time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)
	svc, medRepo, intakeRepo := newTestService(now)

	m, err := svc.Create(context.Background(), "user-1", validInput())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := svc.Delete(context.Background(), "user-1", m.ID); !errors.Is(err, ErrBadState) {
		t.Fatalf("expected ErrBadState deleting active medication, got %v", err)
	}

	if _, err := svc.Complete(context.Background(), "user-1", m.ID); err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if err := svc.Delete(context.Background(), "user-1", m.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	if len(medRepo.byID) != 0 {
		t.Fatalf("expected medication removed")
	}
	if len(intakeRepo.byID) != 0 {
		t.Fatalf("expected all intakes removed, got %d", len(intakeRepo.byID))
	}
}

func TestService_CrossOwner_IsNotFound(t *testing.T) {
	now := time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(now)

	m, err := svc.Create(context.Background(), "user-1", validInput())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if _, err := svc.GetByID(context.Background(), "user-2", m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other owner, got %v", err)
	}
	if _, err := svc.Update(context.Background(), "user-2", m.ID, validInput()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating as other owner, got %v", err)
	}
	if err := svc.Delete(context.Background(), "user-2", m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting as other owner, got %v", err)
	}
}
