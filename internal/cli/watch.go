package cli

import (
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/banrakshak/fra-ocr-service/internal/artifacts"
	"github.com/banrakshak/fra-ocr-service/internal/ingest"
)

var (
	watchClassify bool
	watchExisting bool
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Process new scans as they arrive in a directory",
	Long: `Watches a directory tree and parses every new or rewritten scan. Each result
is written to <output>/watch/<name>.json. Stops on interrupt.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchClassify, "classify", true, "Classify each document after extraction")
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "Also process scans already in the directory")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Wait this long after the last write before processing")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if svc.Parser == nil {
		return errNoOCR
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	files, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{args[0]},
		AllowedExts: ingest.DefaultExts,
		InitialScan: watchExisting,
		Debounce:    watchDebounce,
	}, svc.Logger)
	if err != nil {
		return err
	}

	outDir := filepath.Join(svc.Artifacts.Dir(), "watch")
	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	for files != nil || errs != nil {
		select {
		case path, ok := <-files:
			if !ok {
				files = nil
				continue
			}
			res, err := processDocument(ctx, path, watchClassify)
			if err != nil {
				svc.Logger.Error("document processing failed", "file", path, "error", err)
				continue
			}
			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".json"
			saved, err := artifacts.SaveJSON(outDir, name, BatchEntry{
				File:           path,
				Extraction:     res.Analysis,
				Classification: res.Classification,
			})
			if err != nil {
				svc.Logger.Error("failed to save result", "file", path, "error", err)
				continue
			}
			cmd.Printf("%s -> %s\n", path, saved)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			svc.Logger.Warn("watcher error", "error", err)
		}
	}
	return nil
}
