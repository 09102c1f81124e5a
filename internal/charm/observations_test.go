// ABOUTME: Unit tests for Charm-based observation storage.
// ABOUTME: Runs the Repository methods against an in-memory key/value store.
package charm

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/harperreed/focus/internal/models"
	"github.com/harperreed/focus/internal/storage"
)

// memStore is an in-memory stand-in for *kv.KV.
type memStore struct {
	data     map[string][]byte
	readOnly bool
	syncs    int
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (m *memStore) Get(k []byte) ([]byte, error) {
	v, ok := m.data[string(k)]
	if !ok {
		return nil, fmt.Errorf("key %s missing", k)
	}
	return v, nil
}

func (m *memStore) Set(k, v []byte) error {
	m.data[string(k)] = bytes.Clone(v)
	return nil
}

func (m *memStore) Delete(k []byte) error {
	delete(m.data, string(k))
	return nil
}

func (m *memStore) Keys() ([][]byte, error) {
	names := make([]string, 0, len(m.data))
	for k := range m.data {
		names = append(names, k)
	}
	sort.Strings(names)
	keys := make([][]byte, len(names))
	for i, k := range names {
		keys[i] = []byte(k)
	}
	return keys, nil
}

func (m *memStore) Sync() error      { m.syncs++; return nil }
func (m *memStore) Reset() error     { m.data = map[string][]byte{}; return nil }
func (m *memStore) IsReadOnly() bool { return m.readOnly }
func (m *memStore) Close() error     { return nil }

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func observation(offset int, focus float64) *models.Observation {
	o := models.NewObservation(day0.AddDate(0, 0, offset))
	o.SleepHours = 7
	o.ExerciseMinutes = 20
	o.ScreenTimeHours = 5
	o.StudyHours = 2
	o.SocialHours = 1
	o.NutritionScore = 6
	o.CaffeineMg = 100
	o.StressLevel = 5
	o.FocusScore = focus
	return o
}

func TestObservationKeyFormat(t *testing.T) {
	o := observation(0, 5)
	k := string(key(o.ID.String()))

	if k[:4] != "obs:" {
		t.Errorf("Expected key to start with 'obs:', got: %s", k[:4])
	}
	if k[4:] != o.ID.String() {
		t.Errorf("Expected key to end with the ID, got: %s", k[4:])
	}
}

func TestCreateGetAndCount(t *testing.T) {
	mem := newMemStore()
	c := newClient(mem, true)

	o := observation(0, 6)
	if err := c.CreateObservation(o); err != nil {
		t.Fatalf("CreateObservation failed: %v", err)
	}
	if mem.syncs != 1 {
		t.Errorf("Expected one sync after write, got %d", mem.syncs)
	}

	got, err := c.GetObservation(o.ID.String()[:8])
	if err != nil {
		t.Fatalf("GetObservation failed: %v", err)
	}
	if got.ID != o.ID || got.FocusScore != 6 {
		t.Errorf("unexpected observation: %+v", got)
	}

	if err := c.CreateObservation(observation(0, 7)); err == nil {
		t.Error("Expected duplicate day to be rejected")
	}

	n, err := c.CountObservations()
	if err != nil || n != 1 {
		t.Errorf("CountObservations: got %d, %v", n, err)
	}
}

func TestUpsertKeepsID(t *testing.T) {
	c := newClient(newMemStore(), false)

	first := observation(2, 4)
	if err := c.UpsertObservation(first); err != nil {
		t.Fatalf("UpsertObservation failed: %v", err)
	}
	second := observation(2, 8)
	if err := c.UpsertObservation(second); err != nil {
		t.Fatalf("UpsertObservation failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Expected ID %v to be kept, got %v", first.ID, second.ID)
	}

	got, err := c.GetObservationByDate(day0.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("GetObservationByDate failed: %v", err)
	}
	if got.FocusScore != 8 {
		t.Errorf("Expected focus 8, got %v", got.FocusScore)
	}
}

func TestListObservationsOrderSinceLimit(t *testing.T) {
	c := newClient(newMemStore(), false)
	for _, offset := range []int{3, 0, 4, 1, 2} {
		if err := c.CreateObservation(observation(offset, 5)); err != nil {
			t.Fatalf("CreateObservation failed: %v", err)
		}
	}

	all, err := c.ListObservations(nil, 0)
	if err != nil {
		t.Fatalf("ListObservations failed: %v", err)
	}
	for i, o := range all {
		if !o.Date.Equal(day0.AddDate(0, 0, i)) {
			t.Errorf("position %d: got %s", i, o.DateString())
		}
	}

	since := day0.AddDate(0, 0, 1)
	recent, err := c.ListObservations(&since, 2)
	if err != nil {
		t.Fatalf("ListObservations failed: %v", err)
	}
	if len(recent) != 2 || recent[0].DateString() != "2024-01-04" {
		t.Errorf("unexpected recent list: %d entries", len(recent))
	}
}

func TestDeleteAndNotFound(t *testing.T) {
	c := newClient(newMemStore(), false)
	o := observation(0, 5)
	if err := c.CreateObservation(o); err != nil {
		t.Fatalf("CreateObservation failed: %v", err)
	}

	if err := c.DeleteObservation(o.ID.String()); err != nil {
		t.Fatalf("DeleteObservation failed: %v", err)
	}
	if _, err := c.GetObservation(o.ID.String()); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := c.DeleteObservation(o.ID.String()); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := c.GetObservationByDate(day0); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound by date, got %v", err)
	}
}

func TestReadOnlyRejectsWrites(t *testing.T) {
	mem := newMemStore()
	mem.readOnly = true
	c := newClient(mem, true)

	if err := c.CreateObservation(observation(0, 5)); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Expected ErrReadOnly, got %v", err)
	}
	if err := c.Sync(); err != nil {
		t.Errorf("Sync in read-only mode should be a no-op, got %v", err)
	}
	if mem.syncs != 0 {
		t.Errorf("Expected no syncs, got %d", mem.syncs)
	}
}

func TestImportDataSyncsOnce(t *testing.T) {
	mem := newMemStore()
	c := newClient(mem, true)

	data := storage.NewExportData([]*models.Observation{
		observation(0, 5), observation(1, 6), observation(2, 7),
	})
	if err := c.ImportData(data); err != nil {
		t.Fatalf("ImportData failed: %v", err)
	}
	if mem.syncs != 1 {
		t.Errorf("Expected a single sync, got %d", mem.syncs)
	}

	exported, err := c.GetAllData()
	if err != nil {
		t.Fatalf("GetAllData failed: %v", err)
	}
	if len(exported.Observations) != 3 || exported.Tool != "focus" {
		t.Errorf("unexpected export: %d observations, tool %q", len(exported.Observations), exported.Tool)
	}
}

func TestMigrateFromCharmToSQLite(t *testing.T) {
	c := newClient(newMemStore(), false)
	for i := 0; i < 3; i++ {
		if err := c.CreateObservation(observation(i, 5)); err != nil {
			t.Fatalf("CreateObservation failed: %v", err)
		}
	}

	dst, err := storage.Open(t.TempDir() + "/focus.db")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer dst.Close()

	summary, err := storage.MigrateData(c, dst)
	if err != nil {
		t.Fatalf("MigrateData failed: %v", err)
	}
	if summary.Observations != 3 {
		t.Errorf("Expected 3 migrated, got %d", summary.Observations)
	}
}

func TestImportDataWithoutIDsKeepsEveryDay(t *testing.T) {
	mem := newMemStore()
	c := newClient(mem, false)

	first, second := observation(0, 5), observation(1, 6)
	first.ID, second.ID = uuid.Nil, uuid.Nil
	if err := c.ImportData(storage.NewExportData([]*models.Observation{first, second})); err != nil {
		t.Fatalf("ImportData failed: %v", err)
	}

	n, err := c.CountObservations()
	if err != nil {
		t.Fatalf("CountObservations failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 stored days, got %d", n)
	}
	if _, ok := mem.data[string(key(uuid.Nil.String()))]; ok {
		t.Error("zero UUID must never be used as a key")
	}
}

func TestImportDataRejectsNullEntryBeforeWriting(t *testing.T) {
	mem := newMemStore()
	c := newClient(mem, false)

	data := storage.NewExportData([]*models.Observation{observation(0, 5), nil})
	err := c.ImportData(data)
	if err == nil || !strings.Contains(err.Error(), "observation 2 is null") {
		t.Fatalf("Expected null entry error, got %v", err)
	}
	if len(mem.data) != 0 {
		t.Errorf("Expected nothing written, got %d keys", len(mem.data))
	}
}

func TestUnreadableEntriesAreLogged(t *testing.T) {
	mem := newMemStore()
	c := newClient(mem, false)
	var buf bytes.Buffer
	c.SetLogger(log.New(&buf))

	if err := c.CreateObservation(observation(0, 5)); err != nil {
		t.Fatalf("CreateObservation failed: %v", err)
	}
	mem.data[string(key("garbage"))] = []byte("{not json")

	obs, err := c.ListObservations(nil, 0)
	if err != nil {
		t.Fatalf("ListObservations failed: %v", err)
	}
	if len(obs) != 1 {
		t.Errorf("Expected 1 readable observation, got %d", len(obs))
	}
	if !strings.Contains(buf.String(), "skipping unreadable observation") {
		t.Errorf("Expected a warning, got %q", buf.String())
	}
}
