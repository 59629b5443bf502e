package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type project struct {
	ID           string   `json:"id"`
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	GameVersions []string `json:"game_versions"`
	Loaders      []string `json:"loaders"`
}

func newFakeCatalog(t *testing.T) *httptest.Server {
	t.Helper()
	projects := []project{
		{ID: "A", Slug: "alpha", Title: "Alpha", GameVersions: []string{"1.20"}, Loaders: []string{"fabric"}},
		{ID: "B", Slug: "beta", Title: "Beta", GameVersions: []string{"1.19"}, Loaders: []string{"forge"}},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/v2/projects":
			var ids []string
			json.Unmarshal([]byte(r.URL.Query().Get("ids")), &ids)
			out := []project{}
			for _, p := range projects {
				for _, id := range ids {
					if id == p.ID || id == p.Slug {
						out = append(out, p)
						break
					}
				}
			}
			json.NewEncoder(w).Encode(out)
		case r.URL.Path == "/v2/tag/game_version":
			w.Write([]byte(`[{"version":"1.20","version_type":"release"},{"version":"1.19","version_type":"release"}]`))
		case r.URL.Path == "/v2/tag/loader":
			w.Write([]byte(`[{"name":"fabric","supported_project_types":["mod"]},{"name":"forge","supported_project_types":["mod"]}]`))
		case r.URL.Path == "/v2/project/A/version":
			w.Write([]byte(`[{"id":"v1","files":[{"url":"` + "http://" + r.Host + `/files/alpha.jar","filename":"alpha.jar","primary":true}]}]`))
		case strings.HasPrefix(r.URL.Path, "/files/"):
			w.Write([]byte("jar"))
		case r.URL.Path == "/v2/search":
			w.Write([]byte(`{"hits":[{"project_id":"A","title":"Alpha"},{"project_id":"B","title":"Beta"}],"total_hits":2}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

type cli struct {
	t      *testing.T
	config string
	api    string
}

func (c cli) run(args ...string) (string, error) {
	c.t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", c.config, "--api-url", c.api}, args...))
	err := root.Execute()
	return out.String(), err
}

func newCLI(t *testing.T) cli {
	return cli{
		t:      t,
		config: filepath.Join(t.TempDir(), "config.json"),
		api:    newFakeCatalog(t).URL,
	}
}

func TestCLI_CreateAddResolve(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("list", "create", "Test")
	require.NoError(t, err)

	out, err := c.run("add", "Test", "A", "B")
	require.NoError(t, err)
	require.Contains(t, out, "Added 2 mods: A, B")

	out, err = c.run("resolve", "Test", "--game-version", "1.20", "--loader", "fabric")
	require.NoError(t, err)
	require.Contains(t, out, "1 of 2 mods")
	require.Contains(t, out, "  A\n")
	require.NotContains(t, out, "  B\n")
}

func TestCLI_AddRejectsMembersAndUnknown(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("list", "create", "Test")
	require.NoError(t, err)
	_, err = c.run("add", "Test", "A")
	require.NoError(t, err)

	_, err = c.run("add", "Test", "B", "A")
	require.Error(t, err)

	_, err = c.run("add", "Test", "Z")
	require.Error(t, err)

	out, err := c.run("list", "show", "Test", "--offline")
	require.NoError(t, err)
	require.Contains(t, out, "1 mods")
}

func TestCLI_AddStoresSlugsAsIDs(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("list", "create", "Test")
	require.NoError(t, err)

	out, err := c.run("add", "Test", "alpha")
	require.NoError(t, err)
	require.Contains(t, out, "Added 1 mods: A")

	_, err = c.run("add", "Test", "A")
	require.Error(t, err)

	out, err = c.run("list", "show", "Test", "--offline")
	require.NoError(t, err)
	require.Contains(t, out, "1 mods")
}

func TestCLI_ImportRejectsUnknownMods(t *testing.T) {
	c := newCLI(t)
	path := filepath.Join(t.TempDir(), "typo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: 1\nname: Typo\nmods:\n  - A\n  - Z\n"), 0o644))

	_, err := c.run("import", path)
	require.Error(t, err)

	out, err := c.run("lists")
	require.NoError(t, err)
	require.NotContains(t, out, "Typo")
}

func TestCLI_RemoveAndDelete(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("list", "create", "Test")
	require.NoError(t, err)
	_, err = c.run("add", "Test", "A", "B")
	require.NoError(t, err)

	out, err := c.run("remove", "Test", "A")
	require.NoError(t, err)
	require.Contains(t, out, "Removed 1 mods: A")

	_, err = c.run("list", "delete", "Test")
	require.NoError(t, err)
	_, err = c.run("list", "show", "Test")
	require.Error(t, err)
}

func TestCLI_ResolveUnknownLoader(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("list", "create", "Test")
	require.NoError(t, err)

	_, err = c.run("resolve", "Test", "--game-version", "1.20", "--loader", "quilt")
	require.ErrorContains(t, err, "quilt")
}

func TestCLI_Download(t *testing.T) {
	c := newCLI(t)
	dest := t.TempDir()
	_, err := c.run("list", "create", "Test")
	require.NoError(t, err)
	_, err = c.run("add", "Test", "A", "B")
	require.NoError(t, err)
	_, err = c.run("options", "download-path", dest)
	require.NoError(t, err)

	out, err := c.run("download", "Test", "-g", "1.20", "-l", "fabric")
	require.NoError(t, err)
	require.Contains(t, out, "alpha.jar")
	require.Contains(t, out, "Downloaded 1 of 1 compatible mods from Test (0 already present, 1 incompatible)")

	data, err := os.ReadFile(filepath.Join(dest, "alpha.jar"))
	require.NoError(t, err)
	require.Equal(t, "jar", string(data))

	out, err = c.run("download", "Test", "-g", "1.20", "-l", "fabric")
	require.NoError(t, err)
	require.Contains(t, out, "Downloaded 0 of 1 compatible mods from Test (1 already present, 1 incompatible)")
}

func TestCLI_BrowseMarksMembers(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("list", "create", "Test")
	require.NoError(t, err)
	_, err = c.run("add", "Test", "A")
	require.NoError(t, err)

	out, err := c.run("browse", "Test")
	require.NoError(t, err)
	require.Contains(t, out, "[-] Alpha [A]")
	require.Contains(t, out, "[ ] Beta [B]")
}

func TestCLI_ExportImport(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("list", "create", "Source")
	require.NoError(t, err)
	_, err = c.run("add", "Source", "B", "A")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "source.yaml")

	_, err = c.run("export", "Source", "-o", path)
	require.NoError(t, err)
	_, err = c.run("list", "rename", "Source", "Old")
	require.NoError(t, err)
	out, err := c.run("import", path)
	require.NoError(t, err)
	require.Contains(t, out, "Source")

	out, err = c.run("lists")
	require.NoError(t, err)
	require.Contains(t, out, "Old")
	require.Contains(t, out, "Source")
}
