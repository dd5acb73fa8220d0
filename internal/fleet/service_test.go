package fleet

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"droneMedicalDelivery/internal/apperr"
	"droneMedicalDelivery/internal/audit"
	"droneMedicalDelivery/internal/testutil"
	"droneMedicalDelivery/models"
	"droneMedicalDelivery/repository"
)

// recordingSink captures emitted events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (s *recordingSink) Emit(_ context.Context, e audit.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.Action
	}
	return out
}

type fixture struct {
	svc    *Service
	drones *repository.DroneRepository
	meds   *repository.MedicationRepository
	loads  *repository.DroneMedicationRepository
	sink   *recordingSink
}

func newFixture(t *testing.T, name string) *fixture {
	t.Helper()
	d := testutil.OpenInMemoryDB(t, name)
	drones := repository.NewDroneRepository(d)
	meds := repository.NewMedicationRepository(d)
	loads := repository.NewDroneMedicationRepository(d)
	sink := &recordingSink{}
	svc := NewService(drones, meds, loads, sink, zap.NewNop())
	return &fixture{svc: svc, drones: drones, meds: meds, loads: loads, sink: sink}
}

func (f *fixture) seedDrone(t *testing.T, serial string, model models.DroneModel, limit, battery float64) *models.Drone {
	t.Helper()
	dr, err := f.drones.Create(context.Background(), &models.Drone{
		SerialNumber:    serial,
		Model:           model,
		WeightLimit:     limit,
		BatteryCapacity: battery,
		IsActive:        true,
	})
	if err != nil {
		t.Fatalf("seed drone %s: %v", serial, err)
	}
	return dr
}

func (f *fixture) seedMedication(t *testing.T, code string, weight float64) *models.Medication {
	t.Helper()
	m, err := f.meds.Create(context.Background(), &models.Medication{
		Name: code, Code: code, Weight: weight, IsActive: true,
	})
	if err != nil {
		t.Fatalf("seed medication %s: %v", code, err)
	}
	return m
}

func assertInvariant(t *testing.T, d *models.Drone) {
	t.Helper()
	maxWeight, ok := MaxWeightFor(d.Model)
	if !ok {
		t.Fatalf("drone %s has unknown model %s", d.SerialNumber, d.Model)
	}
	if d.CurrentLoadWeight < 0 || d.CurrentLoadWeight > d.WeightLimit || d.WeightLimit > maxWeight {
		t.Fatalf("capacity invariant violated: load=%v limit=%v max=%v", d.CurrentLoadWeight, d.WeightLimit, maxWeight)
	}
}

// Scenario A: registration honors the model weight table.
func TestRegister(t *testing.T) {
	f := newFixture(t, "svc_register")
	ctx := context.Background()

	dr, err := f.svc.Register(ctx, RegisterInput{
		SerialNumber: "HW-1", Model: models.DroneModelHeavyweight, WeightLimit: 500,
	}, audit.Actor{ID: "u-1", Email: "ops@x.example"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if dr.Status != models.DroneStatusIdle || dr.CurrentLoadWeight != 0 || dr.BatteryCapacity != 100 {
		t.Fatalf("unexpected registered drone: %+v", dr)
	}
	assertInvariant(t, dr)

	_, err = f.svc.Register(ctx, RegisterInput{
		SerialNumber: "HW-2", Model: models.DroneModelHeavyweight, WeightLimit: 600,
	}, audit.Actor{})
	if apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Fatalf("expected InvalidInput for weight over model max, got %v", err)
	}

	_, err = f.svc.Register(ctx, RegisterInput{
		SerialNumber: "HW-1", Model: models.DroneModelHeavyweight, WeightLimit: 400,
	}, audit.Actor{})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected Conflict for duplicate serial, got %v", err)
	}

	if got := f.sink.actions(); len(got) != 1 || got[0] != "DRONE_REGISTER" {
		t.Fatalf("expected one DRONE_REGISTER event, got %v", got)
	}
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t, "svc_register_val")
	ctx := context.Background()

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"empty serial", RegisterInput{Model: models.DroneModelLightweight, WeightLimit: 100}},
		{"unknown model", RegisterInput{SerialNumber: "X", Model: "Featherweight", WeightLimit: 100}},
		{"zero weight", RegisterInput{SerialNumber: "X", Model: models.DroneModelLightweight, WeightLimit: 0}},
		{"bad battery", RegisterInput{SerialNumber: "X", Model: models.DroneModelLightweight, WeightLimit: 100, BatteryCapacity: ptr(120.0)}},
		{"bad coords", RegisterInput{SerialNumber: "X", Model: models.DroneModelLightweight, WeightLimit: 100, BaseLatitude: ptr(91.0), BaseLongitude: ptr(0.0)}},
	}
	for _, c := range cases {
		if _, err := f.svc.Register(ctx, c.in, audit.Actor{}); apperr.KindOf(err) != apperr.KindInvalidInput {
			t.Fatalf("%s: expected InvalidInput, got %v", c.name, err)
		}
	}
}

func ptr[T any](v T) *T { return &v }

// Scenarios B and C: successful load, then reload while LOADED.
func TestLoad_SuccessThenNotAvailable(t *testing.T) {
	f := newFixture(t, "svc_load")
	ctx := context.Background()
	dr := f.seedDrone(t, "MW-1", models.DroneModelMiddleweight, 250, 30)
	med := f.seedMedication(t, "MED_100", 100)

	loaded, entries, err := f.svc.Load(ctx, dr.ID, []LoadItem{{MedicationID: med.ID, Quantity: 2}}, audit.Actor{ID: "u-1", Email: "ops@x.example"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Status != models.DroneStatusLoaded || loaded.CurrentLoadWeight != 200 {
		t.Fatalf("unexpected drone after load: %+v", loaded)
	}
	if len(entries) != 1 || entries[0].Quantity != 2 || entries[0].TotalWeight != 200 {
		t.Fatalf("unexpected load entries: %+v", entries)
	}
	assertInvariant(t, loaded)

	// Scenario C: still LOADED, another load is not available.
	_, _, err = f.svc.Load(ctx, dr.ID, []LoadItem{{MedicationID: med.ID, Quantity: 1}}, audit.Actor{})
	if apperr.KindOf(err) != apperr.KindPreconditionFailed {
		t.Fatalf("expected PreconditionFailed while LOADED, got %v", err)
	}
}

// Scenario D: low battery rejects the load without side effects.
func TestLoad_LowBattery(t *testing.T) {
	f := newFixture(t, "svc_load_battery")
	ctx := context.Background()
	dr := f.seedDrone(t, "MW-2", models.DroneModelMiddleweight, 250, 20)
	med := f.seedMedication(t, "MED_50", 50)

	_, _, err := f.svc.Load(ctx, dr.ID, []LoadItem{{MedicationID: med.ID, Quantity: 1}}, audit.Actor{})
	if apperr.KindOf(err) != apperr.KindPreconditionFailed {
		t.Fatalf("expected PreconditionFailed for low battery, got %v", err)
	}

	after, _ := f.drones.GetByID(ctx, dr.ID)
	if after.Status != models.DroneStatusIdle || after.CurrentLoadWeight != 0 {
		t.Fatalf("drone mutated by failed load: %+v", after)
	}
	if got, _ := f.loads.ListUndelivered(ctx, dr.ID); len(got) != 0 {
		t.Fatalf("load rows created by failed load: %+v", got)
	}
}

func TestLoad_BatteryBoundary(t *testing.T) {
	f := newFixture(t, "svc_load_battery_edge")
	ctx := context.Background()
	med := f.seedMedication(t, "MED_10", 10)

	// Exactly 25 permits loading.
	at := f.seedDrone(t, "EDGE-25", models.DroneModelMiddleweight, 250, 25)
	if _, _, err := f.svc.Load(ctx, at.ID, []LoadItem{{MedicationID: med.ID, Quantity: 1}}, audit.Actor{}); err != nil {
		t.Fatalf("battery exactly 25 should load: %v", err)
	}
	// 24.99 does not.
	below := f.seedDrone(t, "EDGE-24", models.DroneModelMiddleweight, 250, 24.99)
	if _, _, err := f.svc.Load(ctx, below.ID, []LoadItem{{MedicationID: med.ID, Quantity: 1}}, audit.Actor{}); apperr.KindOf(err) != apperr.KindPreconditionFailed {
		t.Fatalf("battery 24.99 should fail, got %v", err)
	}
}

func TestLoad_WeightBoundary(t *testing.T) {
	f := newFixture(t, "svc_load_weight")
	ctx := context.Background()

	exact := f.seedDrone(t, "W-EXACT", models.DroneModelMiddleweight, 200, 80)
	med100 := f.seedMedication(t, "MED_W100", 100)
	loaded, _, err := f.svc.Load(ctx, exact.ID, []LoadItem{{MedicationID: med100.ID, Quantity: 2}}, audit.Actor{})
	if err != nil {
		t.Fatalf("load to exact limit should succeed: %v", err)
	}
	if loaded.CurrentLoadWeight != 200 {
		t.Fatalf("expected full load of 200, got %v", loaded.CurrentLoadWeight)
	}

	over := f.seedDrone(t, "W-OVER", models.DroneModelMiddleweight, 200, 80)
	medOver := f.seedMedication(t, "MED_W1005", 100.0005)
	_, _, err = f.svc.Load(ctx, over.ID, []LoadItem{{MedicationID: medOver.ID, Quantity: 2}}, audit.Actor{})
	if apperr.KindOf(err) != apperr.KindPreconditionFailed {
		t.Fatalf("expected overload for 200.001, got %v", err)
	}
	after, _ := f.drones.GetByID(ctx, over.ID)
	if after.Status != models.DroneStatusIdle || after.CurrentLoadWeight != 0 {
		t.Fatalf("drone mutated by overload attempt: %+v", after)
	}
}

func TestLoad_AllOrNothing(t *testing.T) {
	f := newFixture(t, "svc_load_atomic")
	ctx := context.Background()
	dr := f.seedDrone(t, "MW-3", models.DroneModelMiddleweight, 250, 80)
	med := f.seedMedication(t, "MED_ATOMIC", 50)

	// Unknown medication on the second item fails the whole set; the
	// drone never leaves IDLE and no rows are committed.
	_, _, err := f.svc.Load(ctx, dr.ID, []LoadItem{
		{MedicationID: med.ID, Quantity: 1},
		{MedicationID: "no-such-id", Quantity: 1},
	}, audit.Actor{})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected NotFound for unknown medication, got %v", err)
	}
	after, _ := f.drones.GetByID(ctx, dr.ID)
	if after.Status != models.DroneStatusIdle || after.CurrentLoadWeight != 0 {
		t.Fatalf("partial load leaked: %+v", after)
	}
	if got, _ := f.loads.ListUndelivered(ctx, dr.ID); len(got) != 0 {
		t.Fatalf("load rows committed by failed load: %+v", got)
	}

	// Non-positive quantity is invalid input.
	_, _, err = f.svc.Load(ctx, dr.ID, []LoadItem{{MedicationID: med.ID, Quantity: 0}}, audit.Actor{})
	if apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Fatalf("expected InvalidInput for zero quantity, got %v", err)
	}
	// Empty item set likewise.
	_, _, err = f.svc.Load(ctx, dr.ID, nil, audit.Actor{})
	if apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Fatalf("expected InvalidInput for empty items, got %v", err)
	}
}

// A medication may appear at most once per load cycle: duplicates inside
// one request are invalid input, and reloading something still on board
// is a conflict. Either way the drone stays IDLE with nothing committed.
func TestLoad_DuplicateMedication(t *testing.T) {
	f := newFixture(t, "svc_load_dup")
	ctx := context.Background()
	dr := f.seedDrone(t, "MW-4", models.DroneModelMiddleweight, 250, 80)
	med := f.seedMedication(t, "MED_DUP", 50)

	_, _, err := f.svc.Load(ctx, dr.ID, []LoadItem{
		{MedicationID: med.ID, Quantity: 1},
		{MedicationID: med.ID, Quantity: 2},
	}, audit.Actor{})
	if apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Fatalf("expected InvalidInput for repeated medication, got %v", err)
	}
	after, _ := f.drones.GetByID(ctx, dr.ID)
	if after.Status != models.DroneStatusIdle || after.CurrentLoadWeight != 0 {
		t.Fatalf("failed load mutated drone: %+v", after)
	}
	if got, _ := f.loads.ListUndelivered(ctx, dr.ID); len(got) != 0 {
		t.Fatalf("load rows committed by failed load: %+v", got)
	}

	// Load once, return the drone to IDLE without delivering, and try
	// to load the same medication again.
	if _, _, err := f.svc.Load(ctx, dr.ID, []LoadItem{{MedicationID: med.ID, Quantity: 1}}, audit.Actor{}); err != nil {
		t.Fatalf("first load: %v", err)
	}
	if err := f.svc.UpdateState(ctx, dr.ID, models.DroneStatusIdle, audit.Actor{}); err != nil {
		t.Fatalf("return to idle: %v", err)
	}
	_, _, err = f.svc.Load(ctx, dr.ID, []LoadItem{{MedicationID: med.ID, Quantity: 1}}, audit.Actor{})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected Conflict for medication already on board, got %v", err)
	}
	if got, _ := f.loads.ListUndelivered(ctx, dr.ID); len(got) != 1 {
		t.Fatalf("expected the single original load row, got %+v", got)
	}
}

func TestLoad_UnknownDrone(t *testing.T) {
	f := newFixture(t, "svc_load_missing")
	_, _, err := f.svc.Load(context.Background(), "no-such-drone", []LoadItem{{MedicationID: "m", Quantity: 1}}, audit.Actor{})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

// Scenario E: concurrent loads against one IDLE snapshot produce exactly
// one winner and never a doubled load.
func TestLoad_ConcurrentSingleWinner(t *testing.T) {
	f := newFixture(t, "svc_load_race")
	ctx := context.Background()
	dr := f.seedDrone(t, "RACE-1", models.DroneModelMiddleweight, 250, 80)
	med := f.seedMedication(t, "MED_RACE", 100)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	start := make(chan struct{})
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, _, errs[i] = f.svc.Load(ctx, dr.ID, []LoadItem{{MedicationID: med.ID, Quantity: 2}}, audit.Actor{})
		}(i)
	}
	close(start)
	wg.Wait()

	var successes, failures int
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		failures++
		if k := apperr.KindOf(err); k != apperr.KindConflict && k != apperr.KindPreconditionFailed {
			t.Fatalf("loser must fail with conflict or precondition, got %v", err)
		}
	}
	if successes != 1 || failures != 1 {
		t.Fatalf("expected exactly one winner, got %d successes %d failures (%v)", successes, failures, errs)
	}

	after, _ := f.drones.GetByID(ctx, dr.ID)
	if after.CurrentLoadWeight != 200 || after.Status != models.DroneStatusLoaded {
		t.Fatalf("final state wrong after race: %+v", after)
	}
	assertInvariant(t, after)
}

func TestUpdateState(t *testing.T) {
	f := newFixture(t, "svc_state")
	ctx := context.Background()
	dr := f.seedDrone(t, "ST-1", models.DroneModelLightweight, 125, 80)

	// Arbitrary jumps are rejected.
	err := f.svc.UpdateState(ctx, dr.ID, models.DroneStatusDelivering, audit.Actor{})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected Conflict for illegal transition, got %v", err)
	}

	// Walk a full legal cycle.
	cycle := []models.DroneStatus{
		models.DroneStatusLoading,
		models.DroneStatusLoaded,
		models.DroneStatusDelivering,
		models.DroneStatusDelivered,
		models.DroneStatusReturning,
		models.DroneStatusIdle,
	}
	for _, next := range cycle {
		if err := f.svc.UpdateState(ctx, dr.ID, next, audit.Actor{}); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}
	got, _ := f.drones.GetByID(ctx, dr.ID)
	if got.Status != models.DroneStatusIdle {
		t.Fatalf("expected drone back at IDLE, got %s", got.Status)
	}

	if err := f.svc.UpdateState(ctx, "no-such-drone", models.DroneStatusLoading, audit.Actor{}); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestUpdateState_LoadingRequiresBattery(t *testing.T) {
	f := newFixture(t, "svc_state_battery")
	ctx := context.Background()
	dr := f.seedDrone(t, "ST-2", models.DroneModelLightweight, 125, 10)

	err := f.svc.UpdateState(ctx, dr.ID, models.DroneStatusLoading, audit.Actor{})
	if apperr.KindOf(err) != apperr.KindPreconditionFailed {
		t.Fatalf("expected PreconditionFailed for low battery, got %v", err)
	}
	// MAINTENANCE has no battery gate.
	if err := f.svc.UpdateState(ctx, dr.ID, models.DroneStatusMaintenance, audit.Actor{}); err != nil {
		t.Fatalf("transition to MAINTENANCE: %v", err)
	}
}

func TestUpdateLocation_RoundTrip(t *testing.T) {
	f := newFixture(t, "svc_location")
	ctx := context.Background()
	dr := f.seedDrone(t, "LOC-1", models.DroneModelLightweight, 125, 80)

	before := time.Now()
	updated, err := f.svc.UpdateLocation(ctx, dr.ID, 31.95, 35.91, audit.Actor{})
	if err != nil {
		t.Fatalf("update location: %v", err)
	}
	if updated.CurrentLatitude == nil || *updated.CurrentLatitude != 31.95 || *updated.CurrentLongitude != 35.91 {
		t.Fatalf("location round-trip failed: %+v", updated)
	}
	if updated.LastLocationUpdate == nil || updated.LastLocationUpdate.Before(before.Add(-time.Second)) {
		t.Fatalf("lastLocationUpdate not advanced: %v", updated.LastLocationUpdate)
	}
	if updated.Status != dr.Status || updated.CurrentLoadWeight != dr.CurrentLoadWeight {
		t.Fatalf("location update had status/capacity side effects: %+v", updated)
	}

	if _, err := f.svc.UpdateLocation(ctx, dr.ID, 91, 0, audit.Actor{}); apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Fatalf("expected InvalidInput for malformed coordinates, got %v", err)
	}
}

func TestCheckBattery_Idempotent(t *testing.T) {
	f := newFixture(t, "svc_battery_check")
	ctx := context.Background()
	dr := f.seedDrone(t, "BAT-1", models.DroneModelLightweight, 125, 24)

	first, err := f.svc.CheckBattery(ctx, dr.ID)
	if err != nil {
		t.Fatalf("check battery: %v", err)
	}
	if !first.IsLowBattery || first.CanLoad {
		t.Fatalf("battery 24 should be low and unloadable: %+v", first)
	}
	second, _ := f.svc.CheckBattery(ctx, dr.ID)
	if *first != *second {
		t.Fatalf("repeated check differs: %+v vs %+v", first, second)
	}

	ok := f.seedDrone(t, "BAT-2", models.DroneModelLightweight, 125, 25)
	st, _ := f.svc.CheckBattery(ctx, ok.ID)
	if st.IsLowBattery || !st.CanLoad {
		t.Fatalf("battery 25 on IDLE should be loadable: %+v", st)
	}
}

// Scenario F plus nearest selection and the serial tie-break.
func TestFindNearestAvailable(t *testing.T) {
	f := newFixture(t, "svc_nearest")
	ctx := context.Background()

	// No candidates: a legitimate negative result, not an error.
	got, err := f.svc.FindNearestAvailable(ctx, 31.95, 35.91, 100)
	if err != nil || got != nil {
		t.Fatalf("expected none found, got %+v err=%v", got, err)
	}

	near := f.seedDrone(t, "N-NEAR", models.DroneModelMiddleweight, 250, 80)
	far := f.seedDrone(t, "N-FAR", models.DroneModelMiddleweight, 250, 80)
	if _, err := f.svc.UpdateLocation(ctx, near.ID, 31.96, 35.91, audit.Actor{}); err != nil {
		t.Fatalf("set near location: %v", err)
	}
	if _, err := f.svc.UpdateLocation(ctx, far.ID, 33.00, 35.91, audit.Actor{}); err != nil {
		t.Fatalf("set far location: %v", err)
	}

	got, err = f.svc.FindNearestAvailable(ctx, 31.95, 35.91, 100)
	if err != nil || got == nil || got.ID != near.ID {
		t.Fatalf("expected nearest drone %s, got %+v err=%v", near.SerialNumber, got, err)
	}

	// Filters: low battery, busy and undersized drones are not candidates.
	lowBat := f.seedDrone(t, "N-LOW", models.DroneModelMiddleweight, 250, 10)
	if _, err := f.svc.UpdateLocation(ctx, lowBat.ID, 31.95, 35.91, audit.Actor{}); err != nil {
		t.Fatalf("set location: %v", err)
	}
	small := f.seedDrone(t, "N-SMALL", models.DroneModelLightweight, 50, 80)
	if _, err := f.svc.UpdateLocation(ctx, small.ID, 31.95, 35.91, audit.Actor{}); err != nil {
		t.Fatalf("set location: %v", err)
	}
	got, _ = f.svc.FindNearestAvailable(ctx, 31.95, 35.91, 100)
	if got == nil || got.ID != near.ID {
		t.Fatalf("filters not applied, got %+v", got)
	}

	if _, err := f.svc.FindNearestAvailable(ctx, 200, 0, 10); apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Fatalf("expected InvalidInput for bad pickup coordinates, got %v", err)
	}
}

func TestFindNearestAvailable_TieBreakBySerial(t *testing.T) {
	f := newFixture(t, "svc_nearest_tie")
	ctx := context.Background()

	// Both drones sit at base (0,0); identical distance to the pickup.
	b := f.seedDrone(t, "TIE-B", models.DroneModelMiddleweight, 250, 80)
	a := f.seedDrone(t, "TIE-A", models.DroneModelMiddleweight, 250, 80)
	_ = b

	got, err := f.svc.FindNearestAvailable(ctx, 1, 1, 100)
	if err != nil || got == nil {
		t.Fatalf("nearest: %v %+v", err, got)
	}
	if got.ID != a.ID {
		t.Fatalf("tie should resolve to lowest serial TIE-A, got %s", got.SerialNumber)
	}
}

func TestMedications_ReadOnly(t *testing.T) {
	f := newFixture(t, "svc_meds")
	ctx := context.Background()
	dr := f.seedDrone(t, "GM-1", models.DroneModelMiddleweight, 250, 80)
	med := f.seedMedication(t, "MED_GM", 25)

	if _, _, err := f.svc.Load(ctx, dr.ID, []LoadItem{{MedicationID: med.ID, Quantity: 3}}, audit.Actor{}); err != nil {
		t.Fatalf("load: %v", err)
	}

	first, err := f.svc.Medications(ctx, dr.ID)
	if err != nil || len(first) != 1 {
		t.Fatalf("medications: %v len=%d", err, len(first))
	}
	if first[0].Medication == nil || first[0].Medication.Code != "MED_GM" {
		t.Fatalf("medication summary missing: %+v", first[0])
	}
	second, _ := f.svc.Medications(ctx, dr.ID)
	if len(second) != len(first) || second[0].ID != first[0].ID {
		t.Fatalf("repeated read differs")
	}

	if _, err := f.svc.Medications(ctx, "no-such-drone"); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestDeactivate_PreservesHistory(t *testing.T) {
	f := newFixture(t, "svc_deactivate")
	ctx := context.Background()
	dr := f.seedDrone(t, "DEL-1", models.DroneModelLightweight, 125, 80)

	if err := f.svc.Deactivate(ctx, dr.ID, audit.Actor{ID: "u-9", Email: "admin@x.example"}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := f.svc.Get(ctx, dr.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected NotFound after deactivate, got %v", err)
	}
	// Second deactivate reports NotFound rather than silently succeeding.
	if err := f.svc.Deactivate(ctx, dr.ID, audit.Actor{}); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected NotFound on repeat deactivate, got %v", err)
	}
}
