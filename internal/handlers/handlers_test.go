package handlers

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"image/color"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"photobatch/internal/batch"
	"photobatch/internal/naming"
	"photobatch/internal/session"
	"photobatch/internal/telemetry"

	"github.com/disintegration/imaging"
	"github.com/gorilla/mux"
)

func newTestServer(t *testing.T) (*httptest.Server, *session.Session) {
	t.Helper()

	sess := session.New()
	orch := batch.New(sess, telemetry.Noop{}, 600, 400)
	h := New(sess, orch, naming.NewRegistry(nil), nil)

	r := mux.NewRouter()
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/upload", h.Upload).Methods("POST")
	api.HandleFunc("/items", h.ListItems).Methods("GET")
	api.HandleFunc("/items/{id}/thumbnail", h.GetThumbnail).Methods("GET")
	api.HandleFunc("/items/{id}/metadata", h.ItemMetadata).Methods("PUT")
	api.HandleFunc("/metadata", h.BulkMetadata).Methods("POST")
	api.HandleFunc("/codes", h.ListCodes).Methods("GET")
	api.HandleFunc("/confirm", h.Confirm).Methods("POST")
	api.HandleFunc("/process", h.Process).Methods("POST")
	api.HandleFunc("/archive", h.Download).Methods("GET")
	api.HandleFunc("/reset", h.Reset).Methods("POST")
	api.HandleFunc("/status", h.Status).Methods("GET")

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, sess
}

func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 120, B: 40, A: 255})
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func uploadFiles(t *testing.T, url string, files map[string][]byte) *http.Response {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, data := range files {
		fw, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	mw.Close()

	resp, err := http.Post(url+"/api/upload", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func postJSON(t *testing.T, url string, payload interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

var testMetadata = map[string]interface{}{
	"industryCode": "hos",
	"submissionId": "123",
	"dateStamp":    "20260815",
	"quality":      8,
}

func TestWizardFullFlow(t *testing.T) {
	srv, sess := newTestServer(t)
	img := testJPEG(t, 1200, 800)

	// Upload two files, one of which is not an image.
	resp := uploadFiles(t, srv.URL, map[string][]byte{
		"a.jpg":     img,
		"notes.txt": []byte("not an image at all"),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload status = %d", resp.StatusCode)
	}
	var uploadResp struct {
		State    string            `json:"state"`
		Accepted []string          `json:"accepted"`
		Rejected []batch.Rejection `json:"rejected"`
	}
	decodeBody(t, resp, &uploadResp)
	if uploadResp.State != "awaiting-metadata" {
		t.Fatalf("state after upload = %q", uploadResp.State)
	}
	if len(uploadResp.Accepted) != 1 || len(uploadResp.Rejected) != 1 {
		t.Fatalf("upload summary = %+v", uploadResp)
	}

	// The item list shows the accepted file with a thumbnail URL.
	resp, err := http.Get(srv.URL + "/api/items")
	if err != nil {
		t.Fatal(err)
	}
	var items []ItemResponse
	decodeBody(t, resp, &items)
	if len(items) != 1 || items[0].Name != "a.jpg" {
		t.Fatalf("items = %+v", items)
	}

	// Thumbnail serves a decodable JPEG with both edges at most 200px.
	resp, err = http.Get(srv.URL + items[0].ThumbnailURL)
	if err != nil {
		t.Fatal(err)
	}
	thumbData, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("thumbnail status = %d", resp.StatusCode)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(thumbData))
	if err != nil {
		t.Fatalf("thumbnail not a JPEG: %v", err)
	}
	if cfg.Width > 200 || cfg.Height > 200 {
		t.Errorf("thumbnail = %dx%d, want max edge 200", cfg.Width, cfg.Height)
	}

	// Assign bulk metadata, confirm, process.
	resp = postJSON(t, srv.URL+"/api/metadata", testMetadata)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metadata status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/confirm", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("confirm status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/process", map[string]interface{}{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("process status = %d", resp.StatusCode)
	}
	resp.Body.Close()
	if sess.State() != session.StateComplete {
		t.Fatalf("state after process = %s", sess.State())
	}

	// Download the archive and verify its single 600x400 entry.
	resp, err = http.Get(srv.URL + "/api/archive")
	if err != nil {
		t.Fatal(err)
	}
	blob, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("archive status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/zip" {
		t.Errorf("archive Content-Type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != `attachment; filename="hos_123.zip"` {
		t.Errorf("Content-Disposition = %q", cd)
	}

	zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		t.Fatalf("downloaded archive not readable: %v", err)
	}
	if len(zr.File) != 1 || zr.File[0].Name != "hos_123_20260815_01.jpg" {
		t.Fatalf("archive entries = %+v", zr.File)
	}

	// Reset returns to idle and releases the thumbnail.
	resp = postJSON(t, srv.URL+"/api/reset", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reset status = %d", resp.StatusCode)
	}
	resp.Body.Close()
	if sess.State() != session.StateIdle {
		t.Errorf("state after reset = %s", sess.State())
	}

	resp, err = http.Get(srv.URL + items[0].ThumbnailURL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("thumbnail status after reset = %d, want 404", resp.StatusCode)
	}
}

func TestUploadWithNoFiles(t *testing.T) {
	srv, _ := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("note", "no files here")
	mw.Close()

	resp, err := http.Post(srv.URL+"/api/upload", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestMetadataRejectsUnknownCode(t *testing.T) {
	srv, _ := newTestServer(t)
	uploadFiles(t, srv.URL, map[string][]byte{"a.jpg": testJPEG(t, 400, 300)}).Body.Close()

	payload := map[string]interface{}{
		"industryCode": "zzz",
		"submissionId": "123",
		"dateStamp":    "20260815",
		"quality":      8,
	}
	resp := postJSON(t, srv.URL+"/api/metadata", payload)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unknown code", resp.StatusCode)
	}
}

func TestMetadataRejectsMalformedFields(t *testing.T) {
	srv, _ := newTestServer(t)
	uploadFiles(t, srv.URL, map[string][]byte{"a.jpg": testJPEG(t, 400, 300)}).Body.Close()

	tests := []map[string]interface{}{
		{"industryCode": "hos", "submissionId": "12a", "dateStamp": "20260815", "quality": 8},
		{"industryCode": "hos", "submissionId": "123", "dateStamp": "2026", "quality": 8},
		{"industryCode": "hos", "submissionId": "123", "dateStamp": "20260815", "quality": 11},
		{"industryCode": "", "submissionId": "123", "dateStamp": "20260815", "quality": 8},
	}
	for i, payload := range tests {
		resp := postJSON(t, srv.URL+"/api/metadata", payload)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("case %d: status = %d, want 400", i, resp.StatusCode)
		}
	}
}

func TestItemMetadataOverride(t *testing.T) {
	srv, sess := newTestServer(t)
	uploadFiles(t, srv.URL, map[string][]byte{"a.jpg": testJPEG(t, 400, 300)}).Body.Close()
	postJSON(t, srv.URL+"/api/metadata", testMetadata).Body.Close()

	id := sess.Items()[0].ID
	payload := map[string]interface{}{
		"industryCode": "caf",
		"submissionId": "999",
		"dateStamp":    "20260101",
		"quality":      5,
	}
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/items/"+id+"/metadata", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	var item ItemResponse
	decodeBody(t, resp, &item)
	if item.Metadata.IndustryCode != "caf" || item.Metadata.SubmissionID != "999" {
		t.Errorf("override not applied: %+v", item.Metadata)
	}
}

func TestProcessBeforeConfirmationConflicts(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/process", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409 for out-of-order process", resp.StatusCode)
	}
}

func TestProcessWithStartSequence(t *testing.T) {
	srv, sess := newTestServer(t)
	uploadFiles(t, srv.URL, map[string][]byte{"a.jpg": testJPEG(t, 600, 400)}).Body.Close()
	postJSON(t, srv.URL+"/api/metadata", testMetadata).Body.Close()
	postJSON(t, srv.URL+"/api/confirm", nil).Body.Close()

	resp := postJSON(t, srv.URL+"/api/process?start=5", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("process status = %d", resp.StatusCode)
	}

	blob, _, ok := sess.Archive()
	if !ok {
		t.Fatal("no archive")
	}
	zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		t.Fatal(err)
	}
	if len(zr.File) != 1 || zr.File[0].Name != "hos_123_20260815_05.jpg" {
		t.Errorf("entries = %v", zr.File[0].Name)
	}
}

func TestDownloadBeforeComplete(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/archive")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404 before completion", resp.StatusCode)
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	uploadFiles(t, srv.URL, map[string][]byte{"a.jpg": testJPEG(t, 400, 300)}).Body.Close()

	resp, err := http.Get(srv.URL + "/api/status")
	if err != nil {
		t.Fatal(err)
	}
	var status struct {
		State     string `json:"state"`
		Processed int    `json:"processed"`
		Total     int    `json:"total"`
		Items     int    `json:"items"`
	}
	decodeBody(t, resp, &status)
	if status.State != "awaiting-metadata" || status.Items != 1 {
		t.Errorf("status = %+v", status)
	}
	if status.Processed != 1 || status.Total != 1 {
		t.Errorf("progress = %d/%d, want 1/1 after ingest", status.Processed, status.Total)
	}
}

func TestListCodes(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/codes")
	if err != nil {
		t.Fatal(err)
	}
	var codes []naming.Code
	decodeBody(t, resp, &codes)
	if len(codes) == 0 {
		t.Fatal("no codes returned")
	}
	found := false
	for _, c := range codes {
		if c.Code == "hos" {
			found = true
		}
	}
	if !found {
		t.Error("built-in code hos missing from list")
	}
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	var health HealthResponse
	decodeBody(t, resp, &health)
	if health.Status != "healthy" {
		t.Errorf("status = %q", health.Status)
	}
	if health.State != "idle" {
		t.Errorf("wizard state = %q, want idle", health.State)
	}
}
