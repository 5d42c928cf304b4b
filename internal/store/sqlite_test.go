package store

import (
	"path/filepath"
	"testing"

	"github.com/larsalmen/Nightlight-O-Matic/internal/schedule"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func testSnapshot() Snapshot {
	return Snapshot{
		DST:            true,
		Day:            schedule.Span{Start: schedule.TimeOfDay{Hour: 7}, End: schedule.TimeOfDay{Hour: 19}},
		Night:          schedule.Span{Start: schedule.TimeOfDay{Hour: 19}, End: schedule.TimeOfDay{Hour: 7}},
		DayIntensity:   80,
		NightIntensity: 10,
		DayActive:      true,
	}
}

func TestLoadEmptyReturnsNil(t *testing.T) {
	st := openTestStore(t)
	snap, err := st.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap != nil {
		t.Errorf("empty store: got %+v, want nil", snap)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := openTestStore(t)
	want := testSnapshot()
	want.Weekend = &schedule.Weekend{
		Day:   schedule.Span{Start: schedule.TimeOfDay{Hour: 8}, End: schedule.TimeOfDay{Hour: 21}},
		Night: schedule.Span{Start: schedule.TimeOfDay{Hour: 21}, End: schedule.TimeOfDay{Hour: 9}},
	}

	if err := st.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := st.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil {
		t.Fatal("Load returned nil after Save")
	}
	if got.Day != want.Day || got.Night != want.Night {
		t.Errorf("spans: got %v/%v, want %v/%v", got.Day, got.Night, want.Day, want.Night)
	}
	if got.Weekend == nil || *got.Weekend != *want.Weekend {
		t.Errorf("weekend: got %+v, want %+v", got.Weekend, want.Weekend)
	}
	if !got.DST || !got.DayActive || got.NightActive {
		t.Errorf("flags: got %+v", got)
	}
	if got.DayIntensity != 80 || got.NightIntensity != 10 {
		t.Errorf("intensities: got %d/%d", got.DayIntensity, got.NightIntensity)
	}
}

func TestSaveReplacesPrevious(t *testing.T) {
	st := openTestStore(t)
	first := testSnapshot()
	if err := st.Save(first); err != nil {
		t.Fatalf("Save: %v", err)
	}

	second := testSnapshot()
	second.DayIntensity = 42
	second.DayActive = false
	if err := st.Save(second); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := st.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.DayIntensity != 42 {
		t.Errorf("DayIntensity: got %d, want 42", got.DayIntensity)
	}
	if got.DayActive {
		t.Error("DayActive should be false after replacement")
	}
}

func TestWipe(t *testing.T) {
	st := openTestStore(t)
	if err := st.Save(testSnapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := st.Wipe(); err != nil {
		t.Fatalf("Wipe: %v", err)
	}
	snap, err := st.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap != nil {
		t.Errorf("after wipe: got %+v, want nil", snap)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	st, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := st.Save(testSnapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	st.Close()

	st2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st2.Close()
	got, err := st2.Load()
	if err != nil {
		t.Fatalf("Load after reopen: %v", err)
	}
	if got == nil || got.DayIntensity != 80 {
		t.Errorf("snapshot did not survive reopen: %+v", got)
	}
}

func TestSnapshotScheduleReconstruction(t *testing.T) {
	snap := testSnapshot()
	sched := snap.Schedule()
	if err := sched.Validate(); err != nil {
		t.Fatalf("reconstructed schedule invalid: %v", err)
	}
	if sched.Day != snap.Day || sched.Night != snap.Night {
		t.Errorf("spans: got %v/%v", sched.Day, sched.Night)
	}
	if !sched.DST {
		t.Error("DST flag lost in reconstruction")
	}
}
