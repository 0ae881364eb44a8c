package intake

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSubmit_Multipart(t *testing.T) {
	var (
		fields   = map[string]string{}
		fileName string
		fileBody string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
			return
		}
		for k, v := range r.MultipartForm.Value {
			fields[k] = v[0]
		}
		f, hdr, err := r.FormFile("upload")
		if err != nil {
			t.Errorf("missing upload part: %v", err)
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		fileName, fileBody = hdr.Filename, string(b)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, time.Second).Submit(context.Background(), Submission{
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		Phone:       "(555) 555-5555",
		ServiceDate: "2026-10-01",
		Feedback:    "Steak was overcooked",
		Rating:      2,
		Attachment:  &Attachment{Filename: "receipt.txt", Data: []byte("table 12")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{
		"name":         "Jane Doe",
		"email":        "jane@example.com",
		"phone":        "(555) 555-5555",
		"service_date": "2026-10-01",
		"feedback":     "Steak was overcooked",
		"rating":       "2",
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("field %s = %q, want %q", k, fields[k], v)
		}
	}
	if fileName != "receipt.txt" || fileBody != "table 12" {
		t.Errorf("unexpected upload %q / %q", fileName, fileBody)
	}
}

func TestSubmit_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	if err := NewClient(srv.URL, time.Second).Submit(context.Background(), Submission{Name: "x"}); err == nil {
		t.Error("expected error for 422")
	}
}

func TestFileAttachment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	if err := os.WriteFile(path, []byte("jpeg"), 0o600); err != nil {
		t.Fatal(err)
	}

	att, err := FileAttachment(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if att.Filename != "photo.jpg" || string(att.Data) != "jpeg" {
		t.Errorf("unexpected attachment %+v", att)
	}

	if _, err := FileAttachment(dir); err == nil {
		t.Error("expected error for directory")
	}
	if _, err := FileAttachment(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}
