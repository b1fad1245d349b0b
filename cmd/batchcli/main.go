// Command batchcli runs the batch pipeline against a local directory
// without the HTTP wizard: it ingests every image in the directory,
// applies one set of naming metadata, processes the batch, and writes the
// resulting ZIP to disk.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"photobatch/internal/batch"
	"photobatch/internal/logging"
	"photobatch/internal/naming"
	"photobatch/internal/pipeline"
	"photobatch/internal/session"
	"photobatch/internal/startup"
	"photobatch/internal/telemetry"

	"github.com/spf13/cobra"
)

var (
	flagDir     string
	flagOut     string
	flagCode    string
	flagID      string
	flagDate    string
	flagQuality int
	flagStart   int
	flagWidth   int
	flagHeight  int
)

func main() {
	root := &cobra.Command{
		Use:     "batchcli",
		Short:   "Resize, rename, and zip a directory of photos",
		Version: startup.Version,
		RunE:    run,
	}

	root.Flags().StringVar(&flagDir, "dir", ".", "directory of source images (JPEG/PNG/HEIC)")
	root.Flags().StringVar(&flagOut, "out", "", "output ZIP path (default: archive name in the current directory)")
	root.Flags().StringVar(&flagCode, "code", "", "industry code (required)")
	root.Flags().StringVar(&flagID, "id", "", "submission ID, digits only (required)")
	root.Flags().StringVar(&flagDate, "date", "", "date stamp as YYYYMMDD (required)")
	root.Flags().IntVar(&flagQuality, "quality", 8, "JPEG quality on the 0-10 scale")
	root.Flags().IntVar(&flagStart, "start", 1, "starting sequence number")
	root.Flags().IntVar(&flagWidth, "width", pipeline.TargetWidth, "output canvas width")
	root.Flags().IntVar(&flagHeight, "height", pipeline.TargetHeight, "output canvas height")
	root.MarkFlagRequired("code")
	root.MarkFlagRequired("id")
	root.MarkFlagRequired("date")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	if err := naming.ValidateMetadata(flagCode, flagID, flagDate, flagQuality); err != nil {
		return err
	}

	if err := pipeline.Init(); err != nil {
		logging.Warn("libvips unavailable, HEIC inputs will be skipped: %v", err)
	}
	defer pipeline.Shutdown()

	files, err := collectFiles(flagDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no image files found in %s", flagDir)
	}
	if len(files) > session.MaxFiles {
		return fmt.Errorf("%d files found, limit is %d per batch", len(files), session.MaxFiles)
	}

	sess := session.New()
	orch := batch.New(sess, telemetry.Noop{}, flagWidth, flagHeight)

	summary, err := orch.IngestAll(cmd.Context(), files)
	if err != nil {
		return err
	}
	for _, rej := range summary.Rejected {
		fmt.Fprintf(os.Stderr, "skipped %s: %s\n", rej.Name, rej.Reason)
	}
	if len(summary.Accepted) == 0 {
		return fmt.Errorf("no files accepted")
	}

	meta := session.Metadata{
		IndustryCode: flagCode,
		SubmissionID: flagID,
		DateStamp:    flagDate,
		Quality:      flagQuality,
	}
	if err := sess.ApplyBulkMetadata(meta); err != nil {
		return err
	}
	if err := sess.Confirm(); err != nil {
		return err
	}

	result, err := orch.Run(cmd.Context(), flagStart)
	if err != nil {
		return err
	}

	blob, name, ok := sess.Archive()
	if !ok {
		return fmt.Errorf("processing finished without an archive")
	}

	out := flagOut
	if out == "" {
		out = name
	}
	if err := os.WriteFile(out, blob, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	fmt.Printf("%s: %d of %d images packed (%d bytes)\n",
		out, result.Succeeded, result.Succeeded+result.Failed, len(blob))
	return nil
}

// collectFiles reads every regular file in dir with an accepted image
// extension, in sorted name order.
func collectFiles(dir string) ([]batch.File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var files []batch.File
	for _, entry := range entries {
		if entry.IsDir() || !hasImageExt(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		files = append(files, batch.File{
			Name: entry.Name(),
			Size: int64(len(data)),
			Data: data,
		})
	}
	return files, nil
}

func hasImageExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".heic", ".heif":
		return true
	}
	return false
}
