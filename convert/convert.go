// Package convert implements the batch conversion pipeline: for each source
// file, read → icu.Convert → write, with per-file failure isolation.
//
// Files are independent: a failure converting one file never aborts its
// siblings. The pipeline runs sequentially by default, or with a bounded
// worker pool when Options.Parallel is set — conversions are pure and
// share no state, so no coordination is needed beyond the lock file's own
// mutex. A progress callback fires exactly once per file, after that
// file's attempt completes; callback order across files is unspecified in
// parallel mode.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/minios-linux/icukit/icu"
	"github.com/minios-linux/icukit/jsonfile"
	"github.com/minios-linux/icukit/lockfile"
	"github.com/minios-linux/icukit/node"
	"github.com/minios-linux/icukit/yamlfile"
)

// Format selects the output serialization format.
type Format string

const (
	// FormatKeep writes each file in the same format it was read from.
	FormatKeep Format = ""
	// FormatJSON writes JSON regardless of the source format.
	FormatJSON Format = "json"
	// FormatYAML writes YAML regardless of the source format.
	FormatYAML Format = "yaml"
)

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

// Options configures a batch conversion run.
type Options struct {
	// OutDir is the output directory. Empty means write next to the source
	// (in-place migration when Suffix is also empty and the format is kept).
	OutDir string
	// Suffix is inserted before the output extension (e.g. ".icu" turns
	// en.json into en.icu.json).
	Suffix string
	// Format is the output format. FormatKeep mirrors the source format.
	Format Format
	// Lock, when set, enables incremental runs: sources unchanged since
	// their last successful conversion are skipped if the output exists.
	Lock *lockfile.LockFile
	// Force converts every file even when Lock says it is unchanged.
	Force bool
	// Parallel enables the bounded worker pool.
	Parallel bool
	// MaxConcurrent is the worker pool size (default 4).
	MaxConcurrent int
	// OnProgress is called exactly once per file after its attempt
	// completes; err is nil on success or skip.
	OnProgress func(path string, err error)
	// OnLog emits informational messages.
	OnLog func(format string, args ...any)
	// OnError emits error messages.
	OnError func(format string, args ...any)
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) logError(format string, args ...any) {
	if o.OnError != nil {
		o.OnError(format, args...)
	}
}

func (o *Options) effectiveMaxConcurrent() int {
	if o.MaxConcurrent <= 0 {
		return 4
	}
	return o.MaxConcurrent
}

// Summary reports the outcome of a batch run.
type Summary struct {
	Converted int
	Skipped   int
	Failed    int
	// FailedPaths lists the sources that failed, in completion order.
	FailedPaths []string
}

// ---------------------------------------------------------------------------
// Batch run
// ---------------------------------------------------------------------------

// Run converts all paths according to opts. Per-file errors are reported
// through the callbacks and the summary; the returned error is non-nil when
// any file failed (so callers can exit non-zero) or when the context was
// cancelled.
func Run(ctx context.Context, paths []string, opts Options) (*Summary, error) {
	summary := &Summary{}
	var mu sync.Mutex

	process := func(path string) {
		skipped, err := convertFile(path, opts)

		mu.Lock()
		switch {
		case err != nil:
			summary.Failed++
			summary.FailedPaths = append(summary.FailedPaths, path)
			opts.logError("%s: %v", path, err)
		case skipped:
			summary.Skipped++
		default:
			summary.Converted++
		}
		mu.Unlock()

		if opts.OnProgress != nil {
			opts.OnProgress(path, err)
		}
	}

	if opts.Parallel {
		sem := make(chan struct{}, opts.effectiveMaxConcurrent())
		var wg sync.WaitGroup
		for _, path := range paths {
			if ctx.Err() != nil {
				break
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(p string) {
				defer func() {
					<-sem
					wg.Done()
				}()
				process(p)
			}(path)
		}
		wg.Wait()
	} else {
		for _, path := range paths {
			if ctx.Err() != nil {
				break
			}
			process(path)
		}
	}

	if ctx.Err() != nil {
		return summary, ctx.Err()
	}
	if summary.Failed > 0 {
		return summary, fmt.Errorf("%d file(s) failed: %s",
			summary.Failed, strings.Join(summary.FailedPaths, ", "))
	}
	return summary, nil
}

// ---------------------------------------------------------------------------
// Per-file conversion
// ---------------------------------------------------------------------------

// convertFile reads, converts, and writes one source file.
// Returns skipped=true when the lock file marked the source unchanged.
func convertFile(path string, opts Options) (skipped bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}

	srcFormat, err := formatOf(path)
	if err != nil {
		return false, err
	}

	outPath := OutputPath(path, opts)

	if opts.Lock != nil && !opts.Force && !opts.Lock.IsChanged(path, data) {
		if _, statErr := os.Stat(outPath); statErr == nil {
			opts.log("%s: unchanged, skipping", path)
			return true, nil
		}
	}

	var tree *node.Tree
	switch srcFormat {
	case FormatJSON:
		tree, err = jsonfile.Parse(data)
	case FormatYAML:
		tree, err = yamlfile.Parse(data)
	}
	if err != nil {
		return false, fmt.Errorf("parsing %s: %w", path, err)
	}

	converted := icu.Convert(tree)

	outFormat := opts.Format
	if outFormat == FormatKeep {
		outFormat = srcFormat
	}

	var outData []byte
	switch outFormat {
	case FormatJSON:
		outData, err = jsonfile.Marshal(converted)
	case FormatYAML:
		outData, err = yamlfile.Marshal(converted)
	}
	if err != nil {
		return false, fmt.Errorf("marshaling %s: %w", outPath, err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return false, fmt.Errorf("creating directory for %s: %w", outPath, err)
	}
	if err := os.WriteFile(outPath, outData, 0644); err != nil {
		return false, fmt.Errorf("writing %s: %w", outPath, err)
	}

	if opts.Lock != nil {
		// An in-place conversion rewrites the source itself: record the
		// written bytes so the converted file compares unchanged on the
		// next run instead of being converted a second time.
		if filepath.Clean(outPath) == filepath.Clean(path) {
			opts.Lock.Update(path, outData)
		} else {
			opts.Lock.Update(path, data)
		}
	}

	return false, nil
}

// formatOf determines the serialization format from the file extension.
func formatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return FormatKeep, fmt.Errorf("unsupported file format: %s", path)
	}
}

// OutputPath computes where the converted file is written.
func OutputPath(path string, opts Options) string {
	dir := filepath.Dir(path)
	if opts.OutDir != "" {
		dir = opts.OutDir
	}

	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	switch opts.Format {
	case FormatJSON:
		ext = ".json"
	case FormatYAML:
		ext = ".yaml"
	}

	return filepath.Join(dir, stem+opts.Suffix+ext)
}
