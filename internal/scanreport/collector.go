package scanreport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ppiankov/pipeguard/internal/models"
	"golang.org/x/sync/errgroup"
)

// Config holds configuration for the collector
type Config struct {
	MaxConcurrency int
	Timeout        time.Duration
	Logger         *slog.Logger
}

// Collector finds scanner output files and parses them concurrently
type Collector struct {
	config Config
	now    func() time.Time
}

// New creates a new collector with the given configuration
func New(config Config) *Collector {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 10
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Minute
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Collector{
		config: config,
		now:    time.Now,
	}
}

// CollectFromDirectory parses every recognised scanner file under dir.
// Files that fail to parse are logged and skipped; files without findings
// produce no result.
func (c *Collector) CollectFromDirectory(ctx context.Context, dir string) ([]models.ScanResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("input directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path %s is not a directory", dir)
	}

	files, err := c.findScanFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to find scan files: %w", err)
	}

	c.config.Logger.Debug("found scan files", "count", len(files), "dir", dir)

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	return c.collectFiles(ctx, files)
}

// findScanFiles recursively finds scanner output files in a directory
func (c *Collector) findScanFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || DetectFormat(path) == FormatUnknown {
			return nil
		}
		files = append(files, path)
		return nil
	})

	return files, err
}

// collectFiles parses files concurrently, at most MaxConcurrency at a time.
// Results are ordered by file path.
func (c *Collector) collectFiles(ctx context.Context, files []string) ([]models.ScanResult, error) {
	var (
		g  errgroup.Group
		mu sync.Mutex

		collected = make(map[string]models.ScanResult, len(files))
		failed    int
	)
	g.SetLimit(c.config.MaxConcurrency)

	for _, file := range files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			result, err := c.processFile(file)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				failed++
				c.config.Logger.Warn("failed to parse scan file", "file", file, "error", err)
			case result == nil:
				c.config.Logger.Debug("no findings in scan file", "file", file)
			default:
				collected[file] = *result
				c.config.Logger.Debug("collected scan results",
					"scanner", result.Scanner, "findings", len(result.Vulnerabilities))
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("collection interrupted: %w", err)
	}
	if failed > 0 {
		c.config.Logger.Warn("some scan files failed to parse", "failed", failed)
	}

	paths := make([]string, 0, len(collected))
	for p := range collected {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	results := make([]models.ScanResult, 0, len(paths))
	for _, p := range paths {
		results = append(results, collected[p])
	}
	return results, nil
}

// processFile reads and parses a single scanner output file
func (c *Collector) processFile(path string) (*models.ScanResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	format := DetectFormat(path)
	vulns, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	if len(vulns) == 0 {
		return nil, nil
	}

	return &models.ScanResult{
		Scanner:         ScannerName(path, format),
		Timestamp:       c.now(),
		Vulnerabilities: vulns,
		Summary:         Summarize(vulns),
	}, nil
}

// Summarize counts vulnerabilities per severity.
func Summarize(vulns []models.Vulnerability) map[models.Severity]int {
	summary := make(map[models.Severity]int)
	for _, v := range vulns {
		summary[v.Severity]++
	}
	return summary
}
