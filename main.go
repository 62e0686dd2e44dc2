// icukit — ICU Kit: migrates i18next translation resources to ICU MessageFormat.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/minios-linux/icukit/config"
	"github.com/minios-linux/icukit/convert"
	"github.com/minios-linux/icukit/i18n"
	"github.com/minios-linux/icukit/icu"
	"github.com/minios-linux/icukit/jsonfile"
	"github.com/minios-linux/icukit/locate"
	"github.com/minios-linux/icukit/lockfile"
	"github.com/minios-linux/icukit/node"
	"github.com/minios-linux/icukit/yamlfile"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "icukit",
		Short: "ICU Kit: migrate i18next translations to ICU MessageFormat",
		Long: `icukit — ICU Kit: migrates i18next translation resources to ICU MessageFormat.

Rewrites {{var}} interpolation to {var}, collapses _zero/_one/_two/_few/
_many/_other plural-suffixed sibling keys into a single ICU plural
expression, and marks $t(key) nesting references as [REF:key] for manual
follow-up. Key structure, key order, and non-string values are preserved.

Reads and writes JSON and YAML; a conversion may cross formats
(e.g. YAML in, JSON out).

Commands:
  convert     Convert translation files (in place by default)
  status      Show what a conversion would touch (read-only)

Sources can be given as files, directories (scanned recursively), or glob
patterns — or declared once in a .icukit.yaml file with one or more targets.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newConvertCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("icukit version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// convert
// ---------------------------------------------------------------------------

func newConvertCmd() *cobra.Command {
	var (
		outDir        string
		format        string
		suffix        string
		force         bool
		noLock        bool
		parallel      bool
		maxConcurrent int
		dryRun        bool
	)

	cmd := &cobra.Command{
		Use:   "convert [paths...]",
		Short: "Convert translation files to ICU MessageFormat",
		Long: `Convert i18next translation files to ICU MessageFormat.

Without --out-dir and --suffix the conversion is in place (each source is
overwritten with its converted form). Files that failed to convert are
reported and skipped; the remaining files are still converted, and the
exit status is non-zero.

An icukit.lock file tracks source checksums so unchanged files are skipped
on re-runs (disable with --no-lock, override with --force).

Examples:
  # Convert every JSON file under locales/ in place
  icukit convert locales/

  # Convert YAML sources to JSON in a separate directory
  icukit convert 'config/locales/*.yml' --format json --out-dir build/locales

  # Convert the targets declared in .icukit.yaml
  icukit convert`,
		Run: func(cmd *cobra.Command, args []string) {
			runConvert(convertArgs{
				paths: args, outDir: outDir, format: format, suffix: suffix,
				force: force, noLock: noLock,
				parallel: parallel, maxConcurrent: maxConcurrent,
				dryRun: dryRun,
			})
		},
	}

	cmd.Flags().StringVar(&outDir, "out-dir", "", "Output directory (default: next to each source)")
	cmd.Flags().StringVar(&format, "format", "", "Output format: json or yaml (default: same as source)")
	cmd.Flags().StringVar(&suffix, "suffix", "", "Suffix inserted before the output extension (e.g. .icu)")
	cmd.Flags().BoolVar(&force, "force", false, "Convert files even when the lock file says they are unchanged")
	cmd.Flags().BoolVar(&noLock, "no-lock", false, "Do not read or write icukit.lock")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "Convert files in parallel")
	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", 4, "Maximum concurrent conversions (with --parallel)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be converted without writing anything")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"json\tWrite JSON output",
			"yaml\tWrite YAML output",
		}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

type convertArgs struct {
	paths         []string
	outDir        string
	format        string
	suffix        string
	force         bool
	noLock        bool
	parallel      bool
	maxConcurrent int
	dryRun        bool
}

// target is one unit of work: a resolved file list plus output settings.
type target struct {
	name  string
	files []string
	opts  convert.Options
}

func runConvert(a convertArgs) {
	targets, err := resolveTargets(a)
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}

	var lock *lockfile.LockFile
	if !a.noLock {
		lock, err = lockfile.Load(".")
		if err != nil {
			logError("%v", err)
			os.Exit(1)
		}
	}

	if a.dryRun {
		for _, t := range targets {
			if t.name != "" {
				logInfo("Target: %s", t.name)
			}
			for _, f := range t.files {
				fmt.Fprintf(os.Stderr, "  %s -> %s\n", f, convert.OutputPath(f, t.opts))
			}
		}
		return
	}

	cleanLock(lock, targets)

	// Graceful cancellation on Ctrl-C: the current files finish, the rest
	// of the batch is abandoned.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		logWarning("Interrupted, finishing current files...")
		cancel()
	}()

	totalConverted, totalSkipped, totalFailed := 0, 0, 0
	hadErrors := false

	for _, t := range targets {
		if t.name != "" {
			logInfo("Target: %s (%d files)", t.name, len(t.files))
		}

		opts := t.opts
		opts.Lock = lock
		opts.Force = a.force
		opts.Parallel = a.parallel
		opts.MaxConcurrent = a.maxConcurrent
		opts.OnLog = func(format string, args ...any) {
			logInfo(format, args...)
		}
		opts.OnError = func(format string, args ...any) {
			logError(format, args...)
		}

		var done atomic.Int64
		total := len(t.files)
		opts.OnProgress = func(path string, err error) {
			n := done.Add(1)
			if err == nil {
				logSuccess("[%d/%d] %s", n, total, path)
			} else {
				logError("[%d/%d] %s", n, total, path)
			}
		}

		summary, err := convert.Run(ctx, t.files, opts)
		totalConverted += summary.Converted
		totalSkipped += summary.Skipped
		totalFailed += summary.Failed

		if err != nil {
			if ctx.Err() != nil {
				saveLock(lock)
				logWarning("Conversion interrupted, partial progress saved")
				os.Exit(1)
			}
			hadErrors = true
		}
	}

	saveLock(lock)

	fmt.Fprintln(os.Stderr)
	if totalConverted > 0 {
		logInfo(i18n.N("Converted %d file", "Converted %d files", totalConverted), totalConverted)
	}
	if totalSkipped > 0 {
		logInfo(i18n.N("Skipped %d unchanged file", "Skipped %d unchanged files", totalSkipped), totalSkipped)
	}
	if totalFailed > 0 {
		logError(i18n.N("%d file failed", "%d files failed", totalFailed), totalFailed)
	}

	if hadErrors {
		os.Exit(1)
	}
	if totalConverted == 0 && totalSkipped > 0 {
		logInfo(i18n.T("Nothing to do — all files are up to date."))
		return
	}
	logSuccess(i18n.T("Conversion complete!"))
}

// cleanLock drops lock entries for sources outside the current batch, so
// stale paths don't accumulate across runs.
func cleanLock(lock *lockfile.LockFile, targets []target) {
	if lock == nil {
		return
	}
	var batch []string
	for _, t := range targets {
		batch = append(batch, t.files...)
	}
	lock.Clean(batch)
}

func saveLock(lock *lockfile.LockFile) {
	if lock == nil {
		return
	}
	if err := lock.Save(); err != nil {
		logWarning("Saving %s: %v", lock.Path(), err)
	}
}

// resolveTargets builds the work list from CLI args, or from .icukit.yaml
// when no paths are given. Flags override per-target settings.
func resolveTargets(a convertArgs) ([]target, error) {
	if len(a.paths) > 0 {
		files, err := locate.Resolve(a.paths)
		if err != nil {
			return nil, err
		}
		return []target{{
			files: files,
			opts: convert.Options{
				OutDir: a.outDir,
				Suffix: a.suffix,
				Format: convert.Format(a.format),
			},
		}}, nil
	}

	cfg, err := config.Load(".")
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("no paths given and no %s found — run 'icukit convert <paths...>' or declare targets in %s",
			config.FileName, config.FileName)
	}

	var targets []target
	for _, t := range cfg.Targets {
		files, err := locate.Resolve(t.Paths)
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", t.Name, err)
		}

		opts := convert.Options{
			OutDir: t.OutDir,
			Suffix: t.Suffix,
			Format: convert.Format(t.Format),
		}
		if a.outDir != "" {
			opts.OutDir = a.outDir
		}
		if a.suffix != "" {
			opts.Suffix = a.suffix
		}
		if a.format != "" {
			opts.Format = convert.Format(a.format)
		}

		targets = append(targets, target{name: t.Name, files: files, opts: opts})
	}

	return targets, nil
}

// ---------------------------------------------------------------------------
// status (read-only: per-file conversion report)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [paths...]",
		Short: "Show what a conversion would touch",
		Long: `Scan translation files and report what a conversion would touch:
string leaves, {{...}} interpolation placeholders, plural families, and
$t(...) nesting references. Plain keys that a synthesized plural expression
would overwrite are flagged as collisions. Does not modify any files.`,
		Run: func(cmd *cobra.Command, args []string) {
			runStatus(args)
		},
	}

	return cmd
}

func runStatus(paths []string) {
	files, err := statusFiles(paths)
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "\n%sConversion Report%s\n", colorBlue, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 72))
	fmt.Fprintf(os.Stderr, "\n%-36s %-8s %-8s %-8s %-8s\n", "File", "Strings", "Plurals", "Interp.", "Refs")
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 72))

	var collisions []string
	failed := 0

	for _, path := range files {
		tree, err := parseAny(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%-36s %serror: %v%s\n", path, colorRed, err, colorReset)
			failed++
			continue
		}

		r := icu.Inspect(tree)
		fmt.Fprintf(os.Stderr, "%-36s %-8d %-8d %-8d %-8d\n",
			path, r.Strings, r.Families, r.Placeholders, r.References)

		for _, c := range r.Collisions {
			collisions = append(collisions, fmt.Sprintf("%s: %s", path, c))
		}
	}

	fmt.Fprintln(os.Stderr, strings.Repeat("─", 72))

	if len(collisions) > 0 {
		fmt.Fprintln(os.Stderr)
		logWarning("Plural families that will overwrite a plain key with the same name:")
		for _, c := range collisions {
			fmt.Fprintf(os.Stderr, "  %s\n", c)
		}
	}

	fmt.Fprintln(os.Stderr)

	if failed > 0 {
		os.Exit(1)
	}
}

// statusFiles resolves the status scan list from args or .icukit.yaml.
func statusFiles(paths []string) ([]string, error) {
	if len(paths) > 0 {
		return locate.Resolve(paths)
	}

	cfg, err := config.Load(".")
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("no paths given and no %s found", config.FileName)
	}

	var all []string
	for _, t := range cfg.Targets {
		files, err := locate.Resolve(t.Paths)
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", t.Name, err)
		}
		all = append(all, files...)
	}
	return all, nil
}

// parseAny parses a file as JSON or YAML by extension.
func parseAny(path string) (*node.Tree, error) {
	switch {
	case strings.HasSuffix(strings.ToLower(path), ".json"):
		return jsonfile.ParseFile(path)
	case strings.HasSuffix(strings.ToLower(path), ".yaml"),
		strings.HasSuffix(strings.ToLower(path), ".yml"):
		return yamlfile.ParseFile(path)
	default:
		return nil, fmt.Errorf("unsupported file format")
	}
}
