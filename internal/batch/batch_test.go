package batch

import (
	"archive/zip"
	"bytes"
	"context"
	"image/color"
	"image/jpeg"
	"sort"
	"testing"
	"time"

	"photobatch/internal/session"
	"photobatch/internal/telemetry"

	"github.com/disintegration/imaging"
)

// captureSink records every event for assertion.
type captureSink struct {
	events chan telemetry.Event
}

func newCaptureSink() *captureSink {
	return &captureSink{events: make(chan telemetry.Event, 1)}
}

func (c *captureSink) Record(_ context.Context, ev telemetry.Event) error {
	c.events <- ev
	return nil
}

func (c *captureSink) Close() error { return nil }

func (c *captureSink) wait(t *testing.T) telemetry.Event {
	t.Helper()
	select {
	case ev := <-c.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no telemetry event received")
		return telemetry.Event{}
	}
}

func makeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 150, G: 100, B: 50, A: 255})
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

var testMeta = session.Metadata{
	IndustryCode: "hos",
	SubmissionID: "123",
	DateStamp:    "20260815",
	Quality:      8,
}

// confirmedSession builds a session in awaiting-confirmation holding the
// given raster payloads.
func confirmedSession(t *testing.T, rasters ...[]byte) *session.Session {
	t.Helper()
	sess := session.New()
	if err := sess.BeginIngest(len(rasters)); err != nil {
		t.Fatal(err)
	}
	for i, data := range rasters {
		img, err := session.NewUploadedImage(
			"photo"+string(rune('a'+i))+".jpg", int64(len(data)), "image/jpeg", data, nil)
		if err != nil {
			t.Fatal(err)
		}
		if err := sess.AddItem(img); err != nil {
			t.Fatal(err)
		}
	}
	if err := sess.FinishIngest(); err != nil {
		t.Fatal(err)
	}
	if err := sess.ApplyBulkMetadata(testMeta); err != nil {
		t.Fatal(err)
	}
	if err := sess.Confirm(); err != nil {
		t.Fatal(err)
	}
	return sess
}

func archiveEntryNames(t *testing.T, blob []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		t.Fatalf("archive not readable: %v", err)
	}
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func TestRunFullBatch(t *testing.T) {
	src := makeJPEG(t, 1200, 800)
	sess := confirmedSession(t, src, src, src)
	sink := newCaptureSink()
	orch := New(sess, sink, 600, 400)

	result, err := orch.Run(context.Background(), 1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Succeeded != 3 || result.Failed != 0 || result.Entries != 3 {
		t.Fatalf("result = %+v, want 3 succeeded", result)
	}
	if result.ArchiveName != "hos_123.zip" {
		t.Errorf("archive name = %q, want hos_123.zip", result.ArchiveName)
	}
	if sess.State() != session.StateComplete {
		t.Errorf("state = %s, want complete", sess.State())
	}

	blob, name, ok := sess.Archive()
	if !ok {
		t.Fatal("archive not available")
	}
	if name != "hos_123.zip" {
		t.Errorf("stored archive name = %q", name)
	}

	want := []string{
		"hos_123_20260815_01.jpg",
		"hos_123_20260815_02.jpg",
		"hos_123_20260815_03.jpg",
	}
	got := archiveEntryNames(t, blob)
	if len(got) != 3 {
		t.Fatalf("archive holds %d entries, want 3", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, got[i], want[i])
		}
	}

	// Every packed entry is a decodable 600x400 JPEG.
	zr, _ := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		cfg, err := jpeg.DecodeConfig(rc)
		rc.Close()
		if err != nil {
			t.Errorf("entry %s not a JPEG: %v", f.Name, err)
			continue
		}
		if cfg.Width != 600 || cfg.Height != 400 {
			t.Errorf("entry %s = %dx%d, want 600x400", f.Name, cfg.Width, cfg.Height)
		}
	}

	ev := sink.wait(t)
	if ev.Files != 3 || ev.Succeeded != 3 || ev.Failed != 0 {
		t.Errorf("telemetry event = %+v, want 3/3/0", ev)
	}
	if ev.FormatCounts["image/jpeg"] != 3 {
		t.Errorf("format counts = %v", ev.FormatCounts)
	}
}

func TestRunStartSequenceOffset(t *testing.T) {
	src := makeJPEG(t, 600, 400)
	sess := confirmedSession(t, src, src)
	orch := New(sess, telemetry.Noop{}, 600, 400)

	if _, err := orch.Run(context.Background(), 7); err != nil {
		t.Fatalf("Run: %v", err)
	}

	blob, _, _ := sess.Archive()
	got := archiveEntryNames(t, blob)
	want := []string{"hos_123_20260815_07.jpg", "hos_123_20260815_08.jpg"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("entries = %v, want %v", got, want)
	}
}

func TestRunSkipsBadItemAndLeavesSequenceGap(t *testing.T) {
	src := makeJPEG(t, 800, 600)
	sess := confirmedSession(t, src, []byte("not an image"), src)
	sink := newCaptureSink()
	orch := New(sess, sink, 600, 400)

	result, err := orch.Run(context.Background(), 1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Succeeded != 2 || result.Failed != 1 || result.Entries != 2 {
		t.Fatalf("result = %+v, want 2 succeeded 1 failed", result)
	}

	processed, total := sess.Progress()
	if processed != 3 || total != 3 {
		t.Errorf("progress = %d/%d, want 3/3 including the failure", processed, total)
	}
	if len(sess.Notes()) == 0 {
		t.Error("no error note recorded for the failed item")
	}

	// The failed item keeps its ordinal: seq 02 is missing, not shifted.
	blob, _, _ := sess.Archive()
	got := archiveEntryNames(t, blob)
	want := []string{"hos_123_20260815_01.jpg", "hos_123_20260815_03.jpg"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("entries = %v, want %v", got, want)
	}

	ev := sink.wait(t)
	if ev.Succeeded != 2 || ev.Failed != 1 {
		t.Errorf("telemetry event = %+v, want 2 succeeded 1 failed", ev)
	}
}

func TestRunRequiresConfirmation(t *testing.T) {
	sess := session.New()
	orch := New(sess, telemetry.Noop{}, 600, 400)

	if _, err := orch.Run(context.Background(), 1); err == nil {
		t.Fatal("Run accepted from idle")
	}
	if sess.State() != session.StateIdle {
		t.Errorf("state = %s after rejected run, want idle", sess.State())
	}
}

func TestIngestAll(t *testing.T) {
	good := makeJPEG(t, 640, 480)
	sess := session.New()
	orch := New(sess, telemetry.Noop{}, 600, 400)

	files := []File{
		{Name: "good.jpg", Size: int64(len(good)), Data: good},
		{Name: "notes.txt", Size: 12, Data: []byte("hello world!")},
		{Name: "huge.jpg", Size: session.MaxFileSize + 1, Data: good},
		{Name: "empty.jpg", Size: 0, Data: nil},
	}

	summary, err := orch.IngestAll(context.Background(), files)
	if err != nil {
		t.Fatalf("IngestAll: %v", err)
	}

	if len(summary.Accepted) != 1 {
		t.Fatalf("accepted %d files, want 1: %+v", len(summary.Accepted), summary)
	}
	if len(summary.Rejected) != 3 {
		t.Fatalf("rejected %d files, want 3: %+v", len(summary.Rejected), summary.Rejected)
	}
	if sess.State() != session.StateAwaitingMetadata {
		t.Errorf("state = %s, want awaiting-metadata", sess.State())
	}

	items := sess.Items()
	if len(items) != 1 || items[0].SourceName != "good.jpg" {
		t.Fatalf("items = %+v", items)
	}
	if items[0].Thumb == nil {
		t.Error("accepted item has no thumbnail")
	}
	if _, err := items[0].Raster.Bytes(); err != nil {
		t.Errorf("raster handle unreadable: %v", err)
	}

	processed, total := sess.Progress()
	if processed != 4 || total != 4 {
		t.Errorf("progress = %d/%d, want 4/4", processed, total)
	}
}

func TestIngestAllNothingAccepted(t *testing.T) {
	sess := session.New()
	orch := New(sess, telemetry.Noop{}, 600, 400)

	summary, err := orch.IngestAll(context.Background(), []File{
		{Name: "junk.bin", Size: 4, Data: []byte{1, 2, 3, 4}},
	})
	if err != nil {
		t.Fatalf("IngestAll: %v", err)
	}
	if len(summary.Accepted) != 0 {
		t.Fatalf("accepted = %v", summary.Accepted)
	}
	if sess.State() != session.StateIdle {
		t.Errorf("state = %s, want idle when nothing was accepted", sess.State())
	}
}

func TestIngestAllPNG(t *testing.T) {
	img := imaging.New(300, 300, color.NRGBA{R: 10, G: 200, B: 10, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatal(err)
	}

	sess := session.New()
	orch := New(sess, telemetry.Noop{}, 600, 400)

	summary, err := orch.IngestAll(context.Background(), []File{
		{Name: "pic.png", Size: int64(buf.Len()), Data: buf.Bytes()},
	})
	if err != nil {
		t.Fatalf("IngestAll: %v", err)
	}
	if len(summary.Accepted) != 1 {
		t.Fatalf("PNG not accepted: %+v", summary.Rejected)
	}
	if got := sess.Items()[0].SourceMIME; got != "image/png" {
		t.Errorf("sniffed MIME = %q, want image/png", got)
	}
}

func TestNewDefaultsCanvas(t *testing.T) {
	orch := New(session.New(), telemetry.Noop{}, 0, 0)
	if orch.targetW != 600 || orch.targetH != 400 {
		t.Errorf("default canvas = %dx%d, want 600x400", orch.targetW, orch.targetH)
	}
}
