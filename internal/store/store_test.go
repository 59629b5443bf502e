package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/frederic-klein/mrm/internal/modlist"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), AppName, FileName), "/downloads")
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("list-%d", n)
	}
	return s
}

func readDocument(t *testing.T, s *Store) document {
	t.Helper()
	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	var doc document
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestStore_Create(t *testing.T) {
	s := newTestStore(t)

	list, err := s.Create("  Test  ")
	require.NoError(t, err)
	require.Equal(t, "list-1", list.ID)
	require.Equal(t, "Test", list.Name)
	require.Empty(t, list.Mods)
	require.NotNil(t, list.Mods)
	require.Equal(t, 0, list.ModCount())

	got, err := s.Get(list.ID)
	require.NoError(t, err)
	require.Equal(t, list, got)
}

func TestStore_Create_GeneratesUniqueIDs(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), FileName), "")

	a, err := s.Create("A")
	require.NoError(t, err)
	b, err := s.Create("B")
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)
	require.NotEqual(t, a.ID, b.ID)
}

func TestStore_Create_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason modlist.Reason
	}{
		{"empty", "", modlist.ReasonEmpty},
		{"blank", "    ", modlist.ReasonEmpty},
		{"too long", strings.Repeat("x", modlist.MaxNameLength+1), modlist.ReasonTooLong},
		{"duplicate", "Existing", modlist.ReasonDuplicate},
		{"duplicate after trim", "  Existing ", modlist.ReasonDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			_, err := s.Create("Existing")
			require.NoError(t, err)
			before, err := os.ReadFile(s.Path())
			require.NoError(t, err)

			_, err = s.Create(tt.input)

			require.True(t, modlist.IsReason(err, tt.reason), "got %v, want reason %s", err, tt.reason)
			after, err := os.ReadFile(s.Path())
			require.NoError(t, err)
			require.Equal(t, string(before), string(after), "store changed after rejected create")
		})
	}
}

func TestStore_Create_RejectedOnFreshStoreWritesNothing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create("")

	require.ErrorIs(t, err, modlist.ErrValidation)
	_, statErr := os.Stat(s.Path())
	require.True(t, errors.Is(statErr, os.ErrNotExist), "document should not exist")
}

func TestStore_Create_IsCaseSensitive(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Create("Test")
	require.NoError(t, err)

	_, err = s.Create("test")
	require.NoError(t, err)
}

func TestStore_Rename(t *testing.T) {
	s := newTestStore(t)
	a, err := s.Create("Alpha")
	require.NoError(t, err)
	_, err = s.Create("Beta")
	require.NoError(t, err)

	renamed, err := s.Rename(a.ID, " Gamma ")
	require.NoError(t, err)
	require.Equal(t, "Gamma", renamed.Name)

	_, err = s.Rename(a.ID, "Beta")
	require.True(t, modlist.IsReason(err, modlist.ReasonDuplicate))

	_, err = s.Rename(a.ID, "")
	require.True(t, modlist.IsReason(err, modlist.ReasonEmpty))

	_, err = s.Rename("missing", "Delta")
	require.ErrorIs(t, err, modlist.ErrNotFound)

	got, err := s.Get(a.ID)
	require.NoError(t, err)
	require.Equal(t, "Gamma", got.Name)
}

// The list being renamed is excluded from the uniqueness check, so its own
// current name is not a duplicate and the rename leaves it unchanged. A
// name held by any other list is still rejected.
func TestStore_Rename_ToCurrentName(t *testing.T) {
	s := newTestStore(t)
	list, err := s.Create("Test")
	require.NoError(t, err)
	other, err := s.Create("Other")
	require.NoError(t, err)
	_, err = s.AddMods(list.ID, []string{"A"})
	require.NoError(t, err)

	renamed, err := s.Rename(list.ID, "  Test ")

	require.NoError(t, err)
	require.Equal(t, "Test", renamed.Name)
	require.Equal(t, []string{"A"}, renamed.Mods)

	_, err = s.Rename(other.ID, "Test")
	require.True(t, modlist.IsReason(err, modlist.ReasonDuplicate))
}

func TestStore_Delete(t *testing.T) {
	s := newTestStore(t)
	a, err := s.Create("A")
	require.NoError(t, err)
	b, err := s.Create("B")
	require.NoError(t, err)

	require.NoError(t, s.Delete(a.ID))

	_, err = s.Get(a.ID)
	require.ErrorIs(t, err, modlist.ErrNotFound)
	require.ErrorIs(t, s.Delete(a.ID), modlist.ErrNotFound)

	lists, err := s.List()
	require.NoError(t, err)
	require.Len(t, lists, 1)
	require.Equal(t, b.ID, lists[0].ID)

	// The freed name can be reused.
	_, err = s.Create("A")
	require.NoError(t, err)
}

func TestStore_GetByNameAndLookup(t *testing.T) {
	s := newTestStore(t)
	list, err := s.Create("Survival")
	require.NoError(t, err)

	got, err := s.GetByName(" Survival ")
	require.NoError(t, err)
	require.Equal(t, list.ID, got.ID)

	got, err = s.Lookup(list.ID)
	require.NoError(t, err)
	require.Equal(t, "Survival", got.Name)

	got, err = s.Lookup("Survival")
	require.NoError(t, err)
	require.Equal(t, list.ID, got.ID)

	_, err = s.Lookup("survival")
	require.ErrorIs(t, err, modlist.ErrNotFound)
}

func TestStore_AddMods(t *testing.T) {
	s := newTestStore(t)
	list, err := s.Create("Test")
	require.NoError(t, err)

	added, err := s.AddMods(list.ID, []string{"A", "B"})
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B"}, added)

	added, err = s.AddMods(list.ID, []string{"B", "C", "C", "", "D"})
	require.NoError(t, err)
	require.Equal(t, []string{"C", "D"}, added)

	got, err := s.Get(list.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B", "C", "D"}, got.Mods)
	require.Equal(t, 4, got.ModCount())

	_, err = s.AddMods("missing", []string{"A"})
	require.ErrorIs(t, err, modlist.ErrNotFound)
}

func TestStore_RemoveMods_CountsOnlyRemoved(t *testing.T) {
	s := newTestStore(t)
	list, err := s.Create("Test")
	require.NoError(t, err)
	_, err = s.AddMods(list.ID, []string{"A", "B", "C"})
	require.NoError(t, err)

	removed, err := s.RemoveMods(list.ID, []string{"C", "A", "X", "Y"})
	require.NoError(t, err)
	require.Equal(t, []string{"A", "C"}, removed)

	doc := readDocument(t, s)
	require.Len(t, doc.ModLists, 1)
	require.Equal(t, []string{"B"}, doc.ModLists[0].Mods)
	require.Equal(t, 1, doc.ModLists[0].ModCount)
}

func TestStore_AddThenRemoveRestores(t *testing.T) {
	s := newTestStore(t)
	list, err := s.Create("Test")
	require.NoError(t, err)
	_, err = s.AddMods(list.ID, []string{"X", "Y"})
	require.NoError(t, err)
	before, err := s.Get(list.ID)
	require.NoError(t, err)

	refs := []string{"A", "B", "C"}
	_, err = s.AddMods(list.ID, refs)
	require.NoError(t, err)
	_, err = s.RemoveMods(list.ID, refs)
	require.NoError(t, err)

	after, err := s.Get(list.ID)
	require.NoError(t, err)
	require.Equal(t, before.Mods, after.Mods)
	require.Equal(t, before.ModCount(), after.ModCount())
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	s := New(path, "/downloads")
	list, err := s.Create("Test")
	require.NoError(t, err)
	_, err = s.AddMods(list.ID, []string{"A", "B"})
	require.NoError(t, err)

	reopened := New(path, "/elsewhere")
	got, err := reopened.Get(list.ID)
	require.NoError(t, err)
	require.Equal(t, "Test", got.Name)
	require.Equal(t, []string{"A", "B"}, got.Mods)

	dl, err := reopened.DownloadPath()
	require.NoError(t, err)
	require.Equal(t, "/downloads", dl)
}

func TestStore_LoadIgnoresStaleModCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	raw := `{"downloadPath":"/dl","modLists":[{"id":"x","name":"Old","modCount":7,"mods":["A","B"]},{"id":"y","name":"Nil","modCount":0}]}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))
	s := New(path, "")

	got, err := s.Get("x")
	require.NoError(t, err)
	require.Equal(t, 2, got.ModCount())

	_, err = s.AddMods("x", []string{"C"})
	require.NoError(t, err)
	doc := readDocument(t, s)
	require.Equal(t, 3, doc.ModLists[0].ModCount)
	require.Equal(t, []string{}, doc.ModLists[1].Mods)
}

func TestStore_LoadDropsDuplicateMods(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	raw := `{"modLists":[{"id":"x","name":"Dup","modCount":5,"mods":["A","B","A","","B"]}]}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))
	s := New(path, "")

	got, err := s.Get("x")
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B"}, got.Mods)
	require.Equal(t, 2, got.ModCount())

	removed, err := s.RemoveMods("x", []string{"A"})
	require.NoError(t, err)
	require.Equal(t, []string{"A"}, removed)
	doc := readDocument(t, s)
	require.Equal(t, []string{"B"}, doc.ModLists[0].Mods)
	require.Equal(t, 1, doc.ModLists[0].ModCount)
}

func TestStore_DownloadPath(t *testing.T) {
	s := newTestStore(t)

	dl, err := s.DownloadPath()
	require.NoError(t, err)
	require.Equal(t, "/downloads", dl)

	require.NoError(t, s.SetDownloadPath(" /srv/mods "))
	dl, err = s.DownloadPath()
	require.NoError(t, err)
	require.Equal(t, "/srv/mods", dl)

	err = s.SetDownloadPath("  ")
	require.True(t, modlist.IsReason(err, modlist.ReasonEmpty))
}

func TestStore_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	s := New(path, "")

	_, err := s.List()
	require.Error(t, err)
	_, err = s.Create("Test")
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "{not json", string(data))
}
