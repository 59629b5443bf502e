package catalog

import (
	"fmt"

	"github.com/frederic-klein/mrm/internal/modlist"
)

type searchResponse struct {
	Hits      []searchHit `json:"hits"`
	TotalHits *int        `json:"total_hits"`
}

type searchHit struct {
	ProjectID   string   `json:"project_id"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Downloads   int      `json:"downloads"`
	Versions    []string `json:"versions"`
}

// toRemoteMod converts a search hit into a summary. Hits carry game versions
// but no loader list.
func (h searchHit) toRemoteMod() (modlist.RemoteMod, error) {
	if h.ProjectID == "" {
		return modlist.RemoteMod{}, fmt.Errorf("%w: search hit without project_id", modlist.ErrMalformedResponse)
	}
	return modlist.RemoteMod{
		ID:           h.ProjectID,
		Slug:         h.Slug,
		Title:        h.Title,
		Description:  h.Description,
		Downloads:    h.Downloads,
		GameVersions: h.Versions,
	}, nil
}

type projectResponse struct {
	ID           string   `json:"id"`
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Downloads    int      `json:"downloads"`
	GameVersions []string `json:"game_versions"`
	Loaders      []string `json:"loaders"`
}

func (p projectResponse) toRemoteMod() (modlist.RemoteMod, error) {
	if p.ID == "" {
		return modlist.RemoteMod{}, fmt.Errorf("%w: project without id", modlist.ErrMalformedResponse)
	}
	// A missing list decodes to nil; an empty one does not.
	if p.GameVersions == nil {
		return modlist.RemoteMod{}, fmt.Errorf("%w: project %s without game_versions", modlist.ErrMalformedResponse, p.ID)
	}
	if p.Loaders == nil {
		return modlist.RemoteMod{}, fmt.Errorf("%w: project %s without loaders", modlist.ErrMalformedResponse, p.ID)
	}
	return modlist.RemoteMod{
		ID:           p.ID,
		Slug:         p.Slug,
		Title:        p.Title,
		Description:  p.Description,
		Downloads:    p.Downloads,
		GameVersions: p.GameVersions,
		Loaders:      p.Loaders,
	}, nil
}

type gameVersionResponse struct {
	Version     string `json:"version"`
	VersionType string `json:"version_type"`
}

type loaderResponse struct {
	Name                  string   `json:"name"`
	SupportedProjectTypes []string `json:"supported_project_types"`
}

type versionResponse struct {
	ID            string         `json:"id"`
	ProjectID     string         `json:"project_id"`
	Name          string         `json:"name"`
	VersionNumber string         `json:"version_number"`
	GameVersions  []string       `json:"game_versions"`
	Loaders       []string       `json:"loaders"`
	Files         []fileResponse `json:"files"`
}

type fileResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Primary  bool   `json:"primary"`
	Size     int64  `json:"size"`
}

func (v versionResponse) toVersion() (modlist.Version, error) {
	if v.ID == "" {
		return modlist.Version{}, fmt.Errorf("%w: version without id", modlist.ErrMalformedResponse)
	}
	version := modlist.Version{
		ID:            v.ID,
		ProjectID:     v.ProjectID,
		Name:          v.Name,
		VersionNumber: v.VersionNumber,
		GameVersions:  v.GameVersions,
		Loaders:       v.Loaders,
		Files:         make([]modlist.VersionFile, 0, len(v.Files)),
	}
	for _, f := range v.Files {
		if f.URL == "" || f.Filename == "" {
			return modlist.Version{}, fmt.Errorf("%w: version %s has a file without url or filename", modlist.ErrMalformedResponse, v.ID)
		}
		version.Files = append(version.Files, modlist.VersionFile{
			URL:      f.URL,
			Filename: f.Filename,
			Primary:  f.Primary,
			Size:     f.Size,
		})
	}
	return version, nil
}
