package history

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T, maxPerTab int) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), maxPerTab)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_AddAndList(t *testing.T) {
	s := openTestStore(t, 0)

	id, err := s.Add("word2latex", "First", "", "", json.RawMessage(`{"latex":"x"}`))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if id == 0 {
		t.Error("expected nonzero id")
	}

	entries, err := s.Entries("word2latex", 0)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Title != "First" {
		t.Errorf("title = %q", entries[0].Title)
	}
	if string(entries[0].Data) != `{"latex":"x"}` {
		t.Errorf("data = %s", entries[0].Data)
	}
	if entries[0].CreatedAt == "" {
		t.Error("created_at not set")
	}
}

func TestStore_NewestFirst(t *testing.T) {
	s := openTestStore(t, 0)
	for i := 1; i <= 3; i++ {
		if _, err := s.Add("tab", fmt.Sprintf("entry %d", i), "", "", nil); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	entries, err := s.Entries("tab", 0)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if entries[0].Title != "entry 3" {
		t.Errorf("expected newest first, got %q", entries[0].Title)
	}
}

func TestStore_TrimsToMaxPerTab(t *testing.T) {
	s := openTestStore(t, 3)
	for i := 1; i <= 5; i++ {
		if _, err := s.Add("tab", fmt.Sprintf("entry %d", i), "", "", nil); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	entries, err := s.Entries("tab", 0)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries after trim, got %d", len(entries))
	}
	if entries[0].Title != "entry 5" || entries[2].Title != "entry 3" {
		t.Errorf("wrong entries survived: %q .. %q", entries[0].Title, entries[2].Title)
	}
}

func TestStore_TabsAreIndependent(t *testing.T) {
	s := openTestStore(t, 0)
	s.Add("a", "in a", "", "", nil)
	s.Add("b", "in b", "", "", nil)

	entries, _ := s.Entries("a", 0)
	if len(entries) != 1 || entries[0].Title != "in a" {
		t.Errorf("tab isolation broken: %+v", entries)
	}
}

func TestStore_DeleteEntry(t *testing.T) {
	s := openTestStore(t, 0)
	id, _ := s.Add("tab", "x", "", "", nil)

	deleted, err := s.DeleteEntry(id)
	if err != nil || !deleted {
		t.Fatalf("DeleteEntry = %v, %v", deleted, err)
	}
	deleted, err = s.DeleteEntry(id)
	if err != nil || deleted {
		t.Errorf("second delete should report false, got %v, %v", deleted, err)
	}
}

func TestStore_ClearTab(t *testing.T) {
	s := openTestStore(t, 0)
	s.Add("tab", "1", "", "", nil)
	s.Add("tab", "2", "", "", nil)

	n, err := s.ClearTab("tab")
	if err != nil {
		t.Fatalf("ClearTab failed: %v", err)
	}
	if n != 2 {
		t.Errorf("cleared %d, want 2", n)
	}
	entries, _ := s.Entries("tab", 0)
	if len(entries) != 0 {
		t.Errorf("entries survived clear: %d", len(entries))
	}
}

func TestStore_SettingsDefaults(t *testing.T) {
	s := openTestStore(t, 0)
	settings, err := s.Settings()
	if err != nil {
		t.Fatalf("Settings failed: %v", err)
	}
	if settings["gemini_model"] != "gemini-2.5-flash" {
		t.Errorf("default model = %q", settings["gemini_model"])
	}
	if _, ok := settings["gemini_api_key"]; !ok {
		t.Error("api key default missing")
	}
}

func TestStore_SetSettings(t *testing.T) {
	s := openTestStore(t, 0)
	err := s.SetSettings(map[string]string{
		"gemini_api_key": "secret",
		"bogus_key":      "ignored",
	})
	if err != nil {
		t.Fatalf("SetSettings failed: %v", err)
	}
	settings, _ := s.Settings()
	if settings["gemini_api_key"] != "secret" {
		t.Errorf("setting not persisted: %q", settings["gemini_api_key"])
	}
	if _, ok := settings["bogus_key"]; ok {
		t.Error("unknown key was stored")
	}
}
