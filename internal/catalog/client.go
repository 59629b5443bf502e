// Package catalog is a client for the Modrinth v2 API, the remote index that
// mod lists reference.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/frederic-klein/mrm/internal/modlist"
)

const (
	// DefaultAPIURL is the public Modrinth API.
	DefaultAPIURL = "https://api.modrinth.com"
	// DefaultTimeout bounds every catalog request.
	DefaultTimeout = 15 * time.Second

	userAgent = "frederic-klein/mrm (modrinth-manage)"
)

// Client queries the remote catalog. It is stateless: nothing is cached
// between calls.
type Client struct {
	apiURL  string
	client  *http.Client
	timeout time.Duration
	logger  *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The client is copied,
// so options never change the caller's value.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithTimeout sets the per-request timeout. Non-positive values keep
// DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a catalog client for the API rooted at apiURL.
func NewClient(apiURL string, opts ...Option) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	c := &Client{
		apiURL:  strings.TrimSuffix(apiURL, "/"),
		client:  http.DefaultClient,
		timeout: DefaultTimeout,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	hc := *c.client
	hc.Timeout = c.timeout
	c.client = &hc
	return c
}

// APIURL returns the configured API root.
func (c *Client) APIURL() string {
	return c.apiURL
}

// Search returns one page of projects matching query. An empty query lists
// projects in the catalog's default order.
func (c *Client) Search(ctx context.Context, page int, query string) (modlist.SearchResult, error) {
	if page < 0 {
		return modlist.SearchResult{}, fmt.Errorf("invalid page %d", page)
	}

	params := url.Values{}
	if query = strings.TrimSpace(query); query != "" {
		params.Set("query", query)
	}
	params.Set("limit", strconv.Itoa(modlist.PageSize))
	params.Set("offset", strconv.Itoa(page*modlist.PageSize))

	var resp searchResponse
	if err := c.get(ctx, "/v2/search", params, &resp); err != nil {
		return modlist.SearchResult{}, err
	}
	if resp.TotalHits == nil {
		return modlist.SearchResult{}, fmt.Errorf("%w: search: missing total_hits", modlist.ErrMalformedResponse)
	}

	result := modlist.SearchResult{
		Hits:      make([]modlist.RemoteMod, 0, len(resp.Hits)),
		TotalHits: *resp.TotalHits,
		Page:      page,
	}
	for _, h := range resp.Hits {
		mod, err := h.toRemoteMod()
		if err != nil {
			return modlist.SearchResult{}, err
		}
		result.Hits = append(result.Hits, mod)
	}
	return result, nil
}

// FetchByIDs returns full records for ids in a single request. The order of
// the result is the catalog's, not the order of ids.
func (c *Client) FetchByIDs(ctx context.Context, ids []string) ([]modlist.RemoteMod, error) {
	if len(ids) == 0 {
		return []modlist.RemoteMod{}, nil
	}

	encoded, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("encoding ids: %w", err)
	}
	params := url.Values{}
	params.Set("ids", string(encoded))

	var resp []projectResponse
	if err := c.get(ctx, "/v2/projects", params, &resp); err != nil {
		return nil, err
	}

	mods := make([]modlist.RemoteMod, 0, len(resp))
	for _, p := range resp {
		mod, err := p.toRemoteMod()
		if err != nil {
			return nil, err
		}
		mods = append(mods, mod)
	}
	return mods, nil
}

// FetchGameVersions returns every known game version grouped by channel,
// preserving the catalog's order within each channel.
func (c *Client) FetchGameVersions(ctx context.Context) (modlist.GameVersions, error) {
	var resp []gameVersionResponse
	if err := c.get(ctx, "/v2/tag/game_version", nil, &resp); err != nil {
		return modlist.GameVersions{}, err
	}

	var versions modlist.GameVersions
	for _, v := range resp {
		if v.Version == "" {
			return modlist.GameVersions{}, fmt.Errorf("%w: game version without label", modlist.ErrMalformedResponse)
		}
		switch v.VersionType {
		case "release":
			versions.Release = append(versions.Release, v.Version)
		case "snapshot":
			versions.Snapshot = append(versions.Snapshot, v.Version)
		case "beta":
			versions.Beta = append(versions.Beta, v.Version)
		case "alpha":
			versions.Alpha = append(versions.Alpha, v.Version)
		default:
			c.logger.Debug("ignoring game version", "version", v.Version, "type", v.VersionType)
		}
	}
	return versions, nil
}

// FetchLoaders returns the names of loaders that apply to mods.
func (c *Client) FetchLoaders(ctx context.Context) ([]string, error) {
	var resp []loaderResponse
	if err := c.get(ctx, "/v2/tag/loader", nil, &resp); err != nil {
		return nil, err
	}

	loaders := []string{}
	for _, l := range resp {
		if l.Name == "" {
			return nil, fmt.Errorf("%w: loader without name", modlist.ErrMalformedResponse)
		}
		for _, t := range l.SupportedProjectTypes {
			if t == "mod" {
				loaders = append(loaders, l.Name)
				break
			}
		}
	}
	return loaders, nil
}

// FetchVersions returns the versions of a project that declare support for
// both gameVersion and loader, newest first as the catalog orders them.
func (c *Client) FetchVersions(ctx context.Context, projectID, gameVersion, loader string) ([]modlist.Version, error) {
	params := url.Values{}
	if gameVersion != "" {
		params.Set("game_versions", jsonArray(gameVersion))
	}
	if loader != "" {
		params.Set("loaders", jsonArray(loader))
	}

	var resp []versionResponse
	path := "/v2/project/" + url.PathEscape(projectID) + "/version"
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	versions := make([]modlist.Version, 0, len(resp))
	for _, v := range resp {
		version, err := v.toVersion()
		if err != nil {
			return nil, err
		}
		versions = append(versions, version)
	}
	return versions, nil
}

// get performs a GET request and decodes the JSON body into out. Transport
// failures and non-200 responses are reported as ErrCatalogUnavailable.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	apiURL := c.apiURL + path
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("catalog request", "url", apiURL)
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: querying %s: %w", modlist.ErrCatalogUnavailable, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: querying %s: HTTP %d", modlist.ErrCatalogUnavailable, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: parsing %s: %v", modlist.ErrMalformedResponse, path, err)
	}
	return nil
}

func jsonArray(values ...string) string {
	data, _ := json.Marshal(values)
	return string(data)
}
