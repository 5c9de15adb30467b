package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/tanhaei/nspr/internal/graph"
)

const (
	testSymptoms = `[
  {"id": "Chest Pain"},
  {"id": "High Fever"}
]`
	testDiseases = `[
  {"id": "Heart Disease", "symptoms": ["Chest Pain"], "specialty": "Cardiology", "doctors": ["Dr. Heart"]},
  {"id": "Flu", "symptoms": ["High Fever"], "specialty": "General Medicine"}
]`
	testDoctors = `[
  {"id": "Dr. Heart", "specialty": "Cardiology", "fee": 120, "location": [35.7, 51.4], "insurance": ["Basic", "Premium"]},
  {"id": "Dr. House", "specialty": "General Medicine", "fee": 80, "insurance": ["Basic"]}
]`
)

func writeDataset(t *testing.T, symptoms, diseases, doctors string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range map[string]string{
		SymptomsFile: symptoms,
		DiseasesFile: diseases,
		DoctorsFile:  doctors,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return dir
}

func TestLoadDir(t *testing.T) {
	dir := writeDataset(t, testSymptoms, testDiseases, testDoctors)

	records, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	if len(records.Symptoms) != 2 || len(records.Diseases) != 2 || len(records.Doctors) != 2 {
		t.Errorf("counts = %d/%d/%d, want 2/2/2",
			len(records.Symptoms), len(records.Diseases), len(records.Doctors))
	}
	if records.Doctors[0].Fee != 120 || records.Doctors[0].Location[1] != 51.4 {
		t.Errorf("doctor record = %+v", records.Doctors[0])
	}
}

func TestLoadDir_Errors(t *testing.T) {
	tests := []struct {
		name     string
		symptoms string
		diseases string
		doctors  string
		wantErr  error
	}{
		{"empty symptom id", `[{"id": ""}]`, testDiseases, testDoctors, ErrEmptyID},
		{"disease without symptoms", testSymptoms, `[{"id": "Flu", "symptoms": [], "specialty": "General Medicine"}]`, testDoctors, ErrNoSymptoms},
		{"disease without specialty", testSymptoms, `[{"id": "Flu", "symptoms": ["High Fever"]}]`, testDoctors, ErrEmptySpecialty},
		{"negative fee", testSymptoms, testDiseases, `[{"id": "Dr. X", "specialty": "Cardiology", "fee": -5}]`, ErrNegativeFee},
		{"one-element location", testSymptoms, testDiseases, `[{"id": "Dr. X", "specialty": "Cardiology", "fee": 5, "location": [35.7]}]`, ErrBadLocation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeDataset(t, tt.symptoms, tt.diseases, tt.doctors)
			if _, err := LoadDir(dir); !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadDir error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		dir := t.TempDir()
		if _, err := LoadDir(dir); err == nil {
			t.Error("LoadDir succeeded with no source files")
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		dir := writeDataset(t, `{not json`, testDiseases, testDoctors)
		if _, err := LoadDir(dir); err == nil {
			t.Error("LoadDir succeeded on malformed JSON")
		}
	})
}

func TestLower(t *testing.T) {
	records := &Records{
		Symptoms: []SymptomRecord{{ID: "Chest Pain"}},
		Diseases: []DiseaseRecord{{
			ID: "Heart Disease", Symptoms: []string{"Chest Pain"},
			Specialty: "Cardiology", Doctors: []string{"Dr. Heart"},
		}},
		Doctors: []DoctorRecord{{
			ID: "Dr. Heart", Specialty: "Cardiology", Fee: 120,
			Location: []float64{35.7, 51.4}, Insurance: []string{"Basic"},
		}},
	}

	entities, edges := records.Lower()

	byID := make(map[string]graph.Entity, len(entities))
	for _, e := range entities {
		if _, dup := byID[e.ID]; dup {
			t.Errorf("duplicate entity %s", e.ID)
		}
		byID[e.ID] = e
	}

	// Cardiology appears in both the disease and the doctor record but
	// must be lowered once.
	wantTypes := map[string]graph.EntityType{
		"Chest Pain":    graph.TypeSymptom,
		"Heart Disease": graph.TypeDisease,
		"Cardiology":    graph.TypeSpecialty,
		"Dr. Heart":     graph.TypeDoctor,
		"fee:Dr. Heart": graph.TypePrice,
		"loc:Dr. Heart": graph.TypeLocation,
		"Basic":         graph.TypeInsurance,
	}
	if len(entities) != len(wantTypes) {
		t.Errorf("got %d entities, want %d", len(entities), len(wantTypes))
	}
	for id, typ := range wantTypes {
		if e, ok := byID[id]; !ok || e.Type != typ {
			t.Errorf("entity %s = %+v, want type %s", id, e, typ)
		}
	}

	if got := byID["fee:Dr. Heart"].Attrs[graph.AttrAmount]; got != 120.0 {
		t.Errorf("fee amount = %v, want 120", got)
	}
	if got := byID["loc:Dr. Heart"].Attrs[graph.AttrLat]; got != 35.7 {
		t.Errorf("lat = %v, want 35.7", got)
	}

	wantEdges := []graph.Edge{
		{Source: "Heart Disease", Target: "Chest Pain", Relation: graph.HasSymptom},
		{Source: "Heart Disease", Target: "Cardiology", Relation: graph.RequiresSpecialty},
		{Source: "Heart Disease", Target: "Dr. Heart", Relation: graph.TreatedBy},
		{Source: "Dr. Heart", Target: "Cardiology", Relation: graph.PracticesSpecialty},
		{Source: "Dr. Heart", Target: "fee:Dr. Heart", Relation: graph.ChargesFee},
		{Source: "Dr. Heart", Target: "loc:Dr. Heart", Relation: graph.LocatedIn},
		{Source: "Dr. Heart", Target: "Basic", Relation: graph.AcceptsInsurance},
	}
	if !reflect.DeepEqual(edges, wantEdges) {
		t.Errorf("edges = %v\nwant %v", edges, wantEdges)
	}
}

func TestLower_OmitsLocationlessDoctors(t *testing.T) {
	records := &Records{
		Doctors: []DoctorRecord{{ID: "Dr. House", Specialty: "General Medicine", Fee: 80}},
	}
	entities, edges := records.Lower()

	for _, e := range entities {
		if e.Type == graph.TypeLocation {
			t.Errorf("unexpected location entity %s", e.ID)
		}
	}
	for _, e := range edges {
		if e.Relation == graph.LocatedIn {
			t.Errorf("unexpected located_in edge %v", e)
		}
	}
}

func TestBuildGraph(t *testing.T) {
	dir := writeDataset(t, testSymptoms, testDiseases, testDoctors)

	g, err := BuildGraph(dir)
	if err != nil {
		t.Fatalf("BuildGraph failed: %v", err)
	}
	if !g.Contains("Dr. Heart") || !g.Contains("Chest Pain") {
		t.Error("graph is missing lowered entities")
	}
	if fee, ok := g.DoctorFee("Dr. Heart"); !ok || fee != 120 {
		t.Errorf("DoctorFee = %v/%v, want 120/true", fee, ok)
	}

	// The first build populated the cache; a rebuild must hit it and
	// produce an identical graph.
	if _, err := os.Stat(SnapshotPath(dir)); err != nil {
		t.Fatalf("snapshot cache missing after build: %v", err)
	}
	cached, err := BuildGraph(dir)
	if err != nil {
		t.Fatalf("cached BuildGraph failed: %v", err)
	}
	if cached.EntityCount() != g.EntityCount() || cached.EdgeCount() != g.EdgeCount() {
		t.Errorf("cached graph %d/%d differs from fresh %d/%d",
			cached.EntityCount(), cached.EdgeCount(), g.EntityCount(), g.EdgeCount())
	}

	// Editing a source file invalidates the cache.
	extra := `[
  {"id": "Chest Pain"},
  {"id": "High Fever"},
  {"id": "Back Pain"}
]`
	if err := os.WriteFile(filepath.Join(dir, SymptomsFile), []byte(extra), 0644); err != nil {
		t.Fatalf("rewriting symptoms: %v", err)
	}
	rebuilt, err := BuildGraph(dir)
	if err != nil {
		t.Fatalf("BuildGraph after edit failed: %v", err)
	}
	if !rebuilt.Contains("Back Pain") {
		t.Error("stale cache served after source change")
	}
}

func TestSnapshot_StoreLoad(t *testing.T) {
	dir := t.TempDir()
	snap, err := OpenSnapshot(dir)
	if err != nil {
		t.Fatalf("OpenSnapshot failed: %v", err)
	}
	defer snap.Close()

	entities := []graph.Entity{
		{ID: "S1", Type: graph.TypeSymptom},
		{ID: "fee:DocA", Type: graph.TypePrice, Attrs: map[string]any{graph.AttrAmount: 50.0}},
	}
	edges := []graph.Edge{
		{Source: "D1", Target: "S1", Relation: graph.HasSymptom},
	}

	if err := snap.Store(entities, edges, "hash-1"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	current, err := snap.IsCurrent("hash-1")
	if err != nil || !current {
		t.Errorf("IsCurrent(hash-1) = %v, %v; want true", current, err)
	}
	current, err = snap.IsCurrent("hash-2")
	if err != nil || current {
		t.Errorf("IsCurrent(hash-2) = %v, %v; want false", current, err)
	}

	gotEntities, gotEdges, err := snap.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(gotEntities, entities) {
		t.Errorf("entities = %v, want %v", gotEntities, entities)
	}
	if !reflect.DeepEqual(gotEdges, edges) {
		t.Errorf("edges = %v, want %v", gotEdges, edges)
	}

	// A second Store fully replaces the first.
	if err := snap.Store(entities[:1], nil, "hash-2"); err != nil {
		t.Fatalf("second Store failed: %v", err)
	}
	gotEntities, gotEdges, err = snap.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(gotEntities) != 1 || len(gotEdges) != 0 {
		t.Errorf("after replace: %d entities, %d edges; want 1, 0", len(gotEntities), len(gotEdges))
	}
}

func TestSnapshot_EmptyIsNotCurrent(t *testing.T) {
	snap, err := OpenSnapshot(t.TempDir())
	if err != nil {
		t.Fatalf("OpenSnapshot failed: %v", err)
	}
	defer snap.Close()

	current, err := snap.IsCurrent("anything")
	if err != nil || current {
		t.Errorf("IsCurrent on empty cache = %v, %v; want false, nil", current, err)
	}
}

func TestSourceHash(t *testing.T) {
	dir := writeDataset(t, testSymptoms, testDiseases, testDoctors)

	first, err := SourceHash(dir)
	if err != nil {
		t.Fatalf("SourceHash failed: %v", err)
	}
	again, err := SourceHash(dir)
	if err != nil {
		t.Fatalf("SourceHash failed: %v", err)
	}
	if first != again {
		t.Error("hash changed without a source change")
	}

	if err := os.WriteFile(filepath.Join(dir, DoctorsFile), []byte(`[]`), 0644); err != nil {
		t.Fatalf("rewriting doctors: %v", err)
	}
	changed, err := SourceHash(dir)
	if err != nil {
		t.Fatalf("SourceHash failed: %v", err)
	}
	if changed == first {
		t.Error("hash unchanged after a source change")
	}
}
