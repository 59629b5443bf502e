// Package downloader transfers the files of resolved mods into the
// download directory.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/frederic-klein/mrm/internal/modlist"
)

// ErrNoMatchingVersion is reported for a mod with no published version that
// matches the requested game version and loader.
var ErrNoMatchingVersion = errors.New("no matching version")

// Catalog looks up the published versions of a project.
type Catalog interface {
	FetchVersions(ctx context.Context, projectID, gameVersion, loader string) ([]modlist.Version, error)
}

// Job represents a download job.
type Job struct {
	ModID    string
	URL      string
	DestPath string
}

// Result represents a download result.
type Result struct {
	Job     Job
	Skipped bool // destination already existed
	Error   error
}

// Downloader handles parallel HTTP downloads.
type Downloader struct {
	workers int
	catalog Catalog
	client  *http.Client
	logger  *log.Logger
}

// NewDownloader creates a new downloader with the specified number of workers.
func NewDownloader(workers int, catalog Catalog, logger *log.Logger) *Downloader {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Downloader{
		workers: workers,
		catalog: catalog,
		client:  &http.Client{},
		logger:  logger,
	}
}

// Fetch downloads the newest file of every mod in ids that matches
// gameVersion and loader into dir. Every id yields one Result; a failure for
// one mod never stops the others.
func (d *Downloader) Fetch(ctx context.Context, ids []string, gameVersion, loader, dir string) []Result {
	jobs, failed := d.Plan(ctx, ids, gameVersion, loader, dir)
	return append(failed, d.Download(ctx, jobs)...)
}

// Plan looks up the file to download for each id. Ids that cannot be
// planned are returned as failed results.
func (d *Downloader) Plan(ctx context.Context, ids []string, gameVersion, loader, dir string) ([]Job, []Result) {
	var jobs []Job
	var failed []Result
	for _, id := range ids {
		job, err := d.planOne(ctx, id, gameVersion, loader, dir)
		if err != nil {
			d.logger.Warn("skipping mod", "mod", id, "error", err)
			failed = append(failed, Result{Job: Job{ModID: id}, Error: err})
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, failed
}

func (d *Downloader) planOne(ctx context.Context, id, gameVersion, loader, dir string) (Job, error) {
	versions, err := d.catalog.FetchVersions(ctx, id, gameVersion, loader)
	if err != nil {
		return Job{}, fmt.Errorf("listing versions of %s: %w", id, err)
	}
	for _, v := range versions {
		file, ok := v.PrimaryFile()
		if !ok {
			continue
		}
		d.logger.Debug("planned download", "mod", id, "version", v.VersionNumber, "file", file.Filename)
		return Job{
			ModID:    id,
			URL:      file.URL,
			DestPath: filepath.Join(dir, filepath.Base(file.Filename)),
		}, nil
	}
	return Job{}, fmt.Errorf("%s for %s %s: %w", id, gameVersion, loader, ErrNoMatchingVersion)
}

// Download downloads multiple files in parallel.
func (d *Downloader) Download(ctx context.Context, jobs []Job) []Result {
	jobChan := make(chan Job, len(jobs))
	resultChan := make(chan Result, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				skipped, err := d.downloadOne(ctx, job)
				resultChan <- Result{Job: job, Skipped: skipped, Error: err}
			}
		}()
	}

	for _, job := range jobs {
		jobChan <- job
	}
	close(jobChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]Result, 0, len(jobs))
	for result := range resultChan {
		results = append(results, result)
	}

	return results
}

func (d *Downloader) downloadOne(ctx context.Context, job Job) (bool, error) {
	// Check if already downloaded
	if _, err := os.Stat(job.DestPath); err == nil {
		return true, nil
	}

	// Ensure destination directory exists
	if err := os.MkdirAll(filepath.Dir(job.DestPath), 0755); err != nil {
		return false, fmt.Errorf("creating directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, job.URL, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("downloading %s: %w", job.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("downloading %s: HTTP %d", job.URL, resp.StatusCode)
	}

	// Write to temp file first, then rename
	tmpPath := job.DestPath + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return false, fmt.Errorf("creating file: %w", err)
	}

	_, err = io.Copy(out, resp.Body)
	out.Close()
	if err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("writing file: %w", err)
	}

	if err := os.Rename(tmpPath, job.DestPath); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("renaming file: %w", err)
	}

	d.logger.Debug("downloaded", "mod", job.ModID, "path", job.DestPath)
	return false, nil
}
