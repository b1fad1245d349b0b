package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"photobatch/internal/archive"
	"photobatch/internal/logging"
	"photobatch/internal/metrics"
	"photobatch/internal/naming"
	"photobatch/internal/pipeline"
	"photobatch/internal/session"
	"photobatch/internal/telemetry"
)

// Orchestrator sequences the pipeline stages over the session's item
// collection. Items are processed strictly one at a time: ingest,
// normalization, thumbnailing, and the resize/encode/archive loop all run
// sequentially so peak memory stays bounded to one decoded raster plus the
// committed archive bytes, and progress advances monotonically.
type Orchestrator struct {
	sess *session.Session
	sink telemetry.Sink

	targetW int
	targetH int
}

// New returns an orchestrator bound to the given session and telemetry
// sink. Zero target dimensions fall back to the 600x400 default canvas.
func New(sess *session.Session, sink telemetry.Sink, targetW, targetH int) *Orchestrator {
	if targetW <= 0 {
		targetW = pipeline.TargetWidth
	}
	if targetH <= 0 {
		targetH = pipeline.TargetHeight
	}
	return &Orchestrator{
		sess:    sess,
		sink:    sink,
		targetW: targetW,
		targetH: targetH,
	}
}

// Result reports one completed batch run.
type Result struct {
	ArchiveName string `json:"archiveName"`
	Entries     int    `json:"entries"`
	Succeeded   int    `json:"succeeded"`
	Failed      int    `json:"failed"`
}

// Run executes the processing stage: for every item in order, resize and
// pad onto the target canvas, re-encode at the item's quality level,
// synthesize the output filename from the item's ordinal plus startSeq, and
// add the bytes to the archive.
//
// Sequence numbers come from the pre-failure ordinal, so a failed item
// leaves a gap rather than shifting its successors. Per-item failures are
// recorded on the session's note list and skipped; progress increments for
// failures too, so the counter always reaches the batch length. Only an
// archive builder failure aborts the batch, returning the wizard to the
// confirmation screen with no archive produced.
func (o *Orchestrator) Run(ctx context.Context, startSeq int) (*Result, error) {
	items, err := o.sess.BeginProcessing()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	builder := archive.NewBuilder()
	result := &Result{}
	ev := telemetry.Event{FormatCounts: make(map[string]int)}

	for i, item := range items {
		seq := startSeq + i
		ev.FormatCounts[item.SourceMIME]++

		if err := o.processItem(item, seq, builder, &ev); err != nil {
			var aerr *archive.ArchiveError
			if errors.As(err, &aerr) {
				metrics.BatchesTotal.WithLabelValues("failed").Inc()
				if ferr := o.sess.FailProcessing(); ferr != nil {
					logging.Error("Recovery transition failed: %v", ferr)
				}
				return nil, err
			}

			result.Failed++
			o.sess.AddNote(fmt.Sprintf("%s: %v", item.SourceName, err))
			logging.Warn("Batch: item %s (seq %d) skipped: %v", item.SourceName, seq, err)
		} else {
			result.Succeeded++
		}
		o.sess.IncrementProgress()
	}

	archiveStart := time.Now()
	blob, err := builder.Finalize()
	if err != nil {
		metrics.BatchesTotal.WithLabelValues("failed").Inc()
		if ferr := o.sess.FailProcessing(); ferr != nil {
			logging.Error("Recovery transition failed: %v", ferr)
		}
		return nil, err
	}
	ev.ArchiveDuration = time.Since(archiveStart)

	result.ArchiveName = o.archiveName(items)
	result.Entries = builder.Len()

	if err := o.sess.CompleteProcessing(blob, result.ArchiveName); err != nil {
		return nil, err
	}

	metrics.BatchesTotal.WithLabelValues("complete").Inc()
	metrics.BatchDuration.Observe(time.Since(start).Seconds())
	metrics.BatchItems.WithLabelValues("succeeded").Observe(float64(result.Succeeded))
	metrics.BatchItems.WithLabelValues("failed").Observe(float64(result.Failed))
	metrics.ArchiveBytes.Observe(float64(len(blob)))
	logging.Info("Batch complete: %d/%d items archived as %s (%d bytes)",
		result.Succeeded, len(items), result.ArchiveName, len(blob))

	ev.CompletedAt = time.Now()
	ev.Files = len(items)
	ev.Succeeded = result.Succeeded
	ev.Failed = result.Failed
	ev.ArchiveBytes = len(blob)
	ev.SessionDuration = o.sess.Duration()
	telemetry.Dispatch(o.sink, ev)

	return result, nil
}

// processItem runs one item through resize, encode, and archive add.
func (o *Orchestrator) processItem(item *session.UploadedImage, seq int, builder *archive.Builder, ev *telemetry.Event) error {
	data, err := item.Raster.Bytes()
	if err != nil {
		return &pipeline.DecodeError{Name: item.SourceName, Err: err}
	}

	resizeStart := time.Now()
	canvas, err := pipeline.ResizeAndPad(data, o.targetW, o.targetH)
	if err != nil {
		return err
	}
	ev.ResizeDuration += time.Since(resizeStart)

	encodeStart := time.Now()
	jpg, err := pipeline.EncodeJPEG(canvas, item.Meta.Quality)
	if err != nil {
		return fmt.Errorf("encode %s: %w", item.SourceName, err)
	}
	ev.EncodeDuration += time.Since(encodeStart)

	name := naming.Synthesize(item.Meta.IndustryCode, item.Meta.SubmissionID, item.Meta.DateStamp, seq)
	return builder.Add(name, jpg)
}

// archiveName derives the ZIP filename from the first item's metadata.
func (o *Orchestrator) archiveName(items []*session.UploadedImage) string {
	if len(items) == 0 {
		return naming.DefaultArchiveName
	}
	return naming.ArchiveName(items[0].Meta.IndustryCode, items[0].Meta.SubmissionID)
}
