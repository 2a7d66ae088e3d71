package wellspring_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperengineering/wellspring"
)

func TestStore_InsertAndGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	e := dailyEntries(1)[0]
	e.ID = ""
	e.Tags = []string{"Work", "work", " Gym"}
	if err := s.InsertEntry(ctx, &e); err != nil {
		t.Fatalf("InsertEntry: %v", err)
	}
	if e.ID == "" {
		t.Fatal("InsertEntry did not assign an ID")
	}

	got, err := s.GetEntry(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if !got.Timestamp.Equal(e.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, e.Timestamp)
	}
	if got.Mood != e.Mood || got.TimeOfDay != e.TimeOfDay {
		t.Errorf("got %+v, want %+v", got, e)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "gym" || got.Tags[1] != "work" {
		t.Errorf("Tags = %v, want [gym work]", got.Tags)
	}
	if got.FocusMinutes == nil || *got.FocusMinutes != *e.FocusMinutes {
		t.Errorf("FocusMinutes = %v", got.FocusMinutes)
	}
	if got.RecoveryAction == nil || *got.RecoveryAction != *e.RecoveryAction {
		t.Errorf("RecoveryAction = %v", got.RecoveryAction)
	}
}

func TestStore_OptionalFieldsStayNil(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	e := entry("bare", 0, 1, 2, 3, 4)
	if err := s.InsertEntry(ctx, &e); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetEntry(ctx, "bare")
	if err != nil {
		t.Fatal(err)
	}
	if got.FocusMinutes != nil || got.TasksCompleted != nil || got.SleepHours != nil ||
		got.RecoveryAction != nil || got.SocialInteractions != nil {
		t.Errorf("unrecorded fields came back set: %+v", got)
	}
	if got.Tags != nil {
		t.Errorf("Tags = %v, want nil", got.Tags)
	}
}

func TestStore_InsertRejects(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	bad := entry("bad", 0, 9, 1, 1, 1)
	if err := s.InsertEntry(ctx, &bad); !errors.Is(err, wellspring.ErrInvalidEntry) {
		t.Errorf("invalid entry err = %v", err)
	}

	e := entry("dup", 0, 1, 1, 1, 1)
	if err := s.InsertEntry(ctx, &e); err != nil {
		t.Fatal(err)
	}
	again := entry("dup", time.Hour, 2, 2, 2, 2)
	if err := s.InsertEntry(ctx, &again); !errors.Is(err, wellspring.ErrEntryExists) {
		t.Errorf("duplicate err = %v, want ErrEntryExists", err)
	}
}

func TestStore_GetMissing(t *testing.T) {
	s := openStore(t)
	if _, err := s.GetEntry(context.Background(), "nope"); !errors.Is(err, wellspring.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteEntry(context.Background(), "nope"); !errors.Is(err, wellspring.ErrNotFound) {
		t.Errorf("delete err = %v, want ErrNotFound", err)
	}
}

func insertAll(t *testing.T, s *wellspring.Store, entries []wellspring.Entry) {
	t.Helper()
	for i := range entries {
		if err := s.InsertEntry(context.Background(), &entries[i]); err != nil {
			t.Fatalf("InsertEntry(%s): %v", entries[i].ID, err)
		}
	}
}

func TestStore_ListEntriesFilters(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	entries := dailyEntries(6)
	entries[1].Tags = []string{"gym"}
	entries[4].Tags = []string{"GYM", "work"}
	entries[5].Timestamp = entries[5].Timestamp.Add(9 * time.Hour)
	entries[5].TimeOfDay = wellspring.TimeEvening
	// Insert newest first to prove ordering comes from the timestamp.
	for i := len(entries) - 1; i >= 0; i-- {
		if err := s.InsertEntry(ctx, &entries[i]); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.ListEntries(ctx, wellspring.EntryFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 6 || all[0].ID != "e00" || all[5].ID != "e05" {
		t.Fatalf("all = %v", ids(all))
	}

	tests := []struct {
		name   string
		filter wellspring.EntryFilter
		want   []string
	}{
		{"tag", wellspring.EntryFilter{Tag: "Gym"}, []string{"e01", "e04"}},
		{"time of day", wellspring.EntryFilter{TimeOfDay: wellspring.TimeEvening}, []string{"e05"}},
		{"from", wellspring.EntryFilter{From: baseTime.AddDate(0, 0, 4)}, []string{"e04", "e05"}},
		{"to exclusive", wellspring.EntryFilter{To: baseTime.AddDate(0, 0, 2)}, []string{"e00", "e01"}},
		{"limit keeps newest ascending", wellspring.EntryFilter{Limit: 3}, []string{"e03", "e04", "e05"}},
		{"tag and limit", wellspring.EntryFilter{Tag: "gym", Limit: 1}, []string{"e04"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListEntries(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if g := ids(got); !equalStrings(g, tt.want) {
				t.Errorf("got %v, want %v", g, tt.want)
			}
		})
	}

	tagged, _ := s.ListEntries(ctx, wellspring.EntryFilter{Tag: "work"})
	if len(tagged) != 1 || len(tagged[0].Tags) != 2 {
		t.Errorf("tag filter should keep all tags of the entry: %+v", tagged)
	}
}

func TestStore_DeleteAndCount(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	insertAll(t, s, dailyEntries(3))

	if err := s.DeleteEntry(ctx, "e01"); err != nil {
		t.Fatal(err)
	}
	n, err := s.EntryCount(ctx)
	if err != nil || n != 2 {
		t.Errorf("EntryCount = %d, %v; want 2", n, err)
	}
	if ok, _ := s.EntryExists(ctx, "e01"); ok {
		t.Error("deleted entry still exists")
	}
	if ok, _ := s.EntryExists(ctx, "e02"); !ok {
		t.Error("e02 missing")
	}
}

func TestStore_Stats(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	entries := dailyEntries(3)
	entries[0].Tags = []string{"a", "b"}
	entries[2].Tags = []string{"b"}
	insertAll(t, s, entries)

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.EntryCount != 3 || st.TagCount != 2 {
		t.Errorf("stats = %+v", st)
	}
	if !st.FirstEntry.Equal(baseTime) || !st.LastEntry.Equal(baseTime.AddDate(0, 0, 2)) {
		t.Errorf("range = %v..%v", st.FirstEntry, st.LastEntry)
	}
	if st.SchemaVersion == "" {
		t.Error("SchemaVersion empty")
	}
}

func TestStore_ValueQuota(t *testing.T) {
	s, err := wellspring.NewStore(filepath.Join(t.TempDir(), "q.db"), wellspring.WithMaxValueBytes(8))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()

	if _, err := s.GetValue(ctx, "k"); !errors.Is(err, wellspring.ErrNotFound) {
		t.Errorf("missing key err = %v", err)
	}
	if err := s.SetValue(ctx, "k", []byte("12345678")); err != nil {
		t.Fatalf("SetValue at limit: %v", err)
	}
	err = s.SetValue(ctx, "k", []byte("123456789"))
	if !wellspring.IsQuotaExceeded(err) {
		t.Errorf("over limit err = %v, want quota exceeded", err)
	}
	v, _ := s.GetValue(ctx, "k")
	if string(v) != "12345678" {
		t.Errorf("value after failed write = %q", v)
	}
	if err := s.RemoveValue(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveValue(ctx, "k"); err != nil {
		t.Errorf("removing absent key: %v", err)
	}
}

func TestStore_Metadata(t *testing.T) {
	s := openStore(t)

	created, err := s.CreatedAt()
	if err != nil || created.IsZero() {
		t.Errorf("CreatedAt = %v, %v", created, err)
	}
	if v, _ := s.GetMetadata("missing"); v != "" {
		t.Errorf("missing metadata = %q", v)
	}
	if err := s.SetDescription("work profile"); err != nil {
		t.Fatal(err)
	}
	if d, _ := s.Description(); d != "work profile" {
		t.Errorf("Description = %q", d)
	}
	if v, _ := s.GetMetadata(wellspring.MetaSchemaVersion); v == "" {
		t.Error("schema_version not recorded")
	}
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "re.db")
	s, err := wellspring.NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	insertAll(t, s, dailyEntries(2))
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s2, err := wellspring.NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	if n, _ := s2.EntryCount(context.Background()); n != 2 {
		t.Errorf("EntryCount after reopen = %d, want 2", n)
	}
}

func TestStore_Closed(t *testing.T) {
	s, err := wellspring.NewStore(filepath.Join(t.TempDir(), "c.db"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	ctx := context.Background()

	e := entry("x", 0, 1, 1, 1, 1)
	if err := s.InsertEntry(ctx, &e); !errors.Is(err, wellspring.ErrStoreClosed) {
		t.Errorf("InsertEntry err = %v", err)
	}
	if _, err := s.ListEntries(ctx, wellspring.EntryFilter{}); !errors.Is(err, wellspring.ErrStoreClosed) {
		t.Errorf("ListEntries err = %v", err)
	}
	err = s.SetValue(ctx, "k", nil)
	var se *wellspring.StoreError
	if !errors.As(err, &se) || se.Reason != wellspring.ReasonUnavailable {
		t.Errorf("SetValue err = %v, want unavailable", err)
	}
}

func ids(entries []wellspring.Entry) []string {
	out := make([]string, len(entries))
	for i := range entries {
		out[i] = entries[i].ID
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
