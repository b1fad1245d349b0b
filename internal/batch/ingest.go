package batch

import (
	"context"
	"fmt"
	"strings"

	"photobatch/internal/logging"
	"photobatch/internal/metrics"
	"photobatch/internal/pipeline"
	"photobatch/internal/session"

	"github.com/gabriel-vasile/mimetype"
)

// acceptedMIMEs is the intake allow-list. HEIC/HEIF is detected from
// content sniffing with an extension fallback, since some encoders emit
// brand variants that sniff as a generic container.
var acceptedMIMEs = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/heic": true,
	"image/heif": true,
}

// File is one raw upload offered at intake.
type File struct {
	Name string
	Size int64
	Data []byte
}

// Rejection records why one offered file was not accepted. Other files in
// the same upload are unaffected.
type Rejection struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// IngestSummary reports the outcome of one ingest run.
type IngestSummary struct {
	Accepted []string    `json:"accepted"`
	Rejected []Rejection `json:"rejected"`
}

// IngestAll runs the loading stage: each offered file is validated against
// the intake limits, normalized (HEIC to JPEG), thumbnailed, and added to
// the session. Files are handled strictly in order, one decoded raster at a
// time. A rejected or failed file is recorded and skipped; the rest of the
// upload proceeds.
func (o *Orchestrator) IngestAll(ctx context.Context, files []File) (*IngestSummary, error) {
	if err := o.sess.BeginIngest(len(files)); err != nil {
		return nil, err
	}

	summary := &IngestSummary{}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			o.sess.IncrementProgress()
			continue
		}
		if err := o.ingestOne(f, summary); err != nil {
			summary.Rejected = append(summary.Rejected, Rejection{Name: f.Name, Reason: err.Error()})
			o.sess.AddNote(err.Error())
			metrics.IngestFilesTotal.WithLabelValues("rejected").Inc()
			logging.Warn("Ingest: %s skipped: %v", f.Name, err)
		}
		o.sess.IncrementProgress()
	}

	if err := o.sess.FinishIngest(); err != nil {
		return nil, err
	}
	logging.Info("Ingest complete: %d accepted, %d rejected",
		len(summary.Accepted), len(summary.Rejected))
	return summary, nil
}

func (o *Orchestrator) ingestOne(f File, summary *IngestSummary) error {
	if err := validateFile(f); err != nil {
		return err
	}

	mime := sniffMIME(f)
	norm, err := pipeline.Normalize(f.Name, f.Data, mime)
	if err != nil {
		return err
	}

	// Thumbnail failure drops the item: a raster that cannot produce a
	// preview will not survive the resize stage either.
	thumb, err := pipeline.Thumbnail(norm.Data)
	if err != nil {
		return err
	}

	img, err := session.NewUploadedImage(f.Name, f.Size, mime, norm.Data, thumb)
	if err != nil {
		return err
	}
	if err := o.sess.AddItem(img); err != nil {
		return err
	}

	summary.Accepted = append(summary.Accepted, img.ID)
	metrics.IngestFilesTotal.WithLabelValues("accepted").Inc()
	metrics.IngestBytesTotal.Add(float64(len(f.Data)))
	logging.Debug("Ingest: accepted %s (%d bytes, %s) as %s", f.Name, f.Size, mime, img.ID)
	return nil
}

// validateFile applies the intake limits: size cap and content type.
func validateFile(f File) error {
	if f.Size > session.MaxFileSize || int64(len(f.Data)) > session.MaxFileSize {
		return &session.IngestError{
			Name:   f.Name,
			Reason: fmt.Sprintf("file exceeds %d MB limit", session.MaxFileSize>>20),
		}
	}
	if len(f.Data) == 0 {
		return &session.IngestError{Name: f.Name, Reason: "empty file"}
	}

	mime := sniffMIME(f)
	if !acceptedMIMEs[mime] {
		return &session.IngestError{
			Name:   f.Name,
			Reason: fmt.Sprintf("unsupported type %s (accepted: JPEG, PNG, HEIC)", mime),
		}
	}
	return nil
}

// sniffMIME detects the content type from the bytes themselves rather than
// trusting the upload's declared type. HEIC-named files whose brand sniffs
// as a generic ISO-BMFF container are still treated as HEIC; the normalizer
// surfaces a ConversionError if they turn out not to be.
func sniffMIME(f File) string {
	detected, _, _ := strings.Cut(mimetype.Detect(f.Data).String(), ";")
	if !acceptedMIMEs[detected] && pipeline.IsHEIC(f.Name) {
		return "image/heic"
	}
	return detected
}
