package documents_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/JaimeStill/courtfetch/internal/documents"
	"github.com/JaimeStill/courtfetch/pkg/lifecycle"
	"github.com/JaimeStill/courtfetch/pkg/routes"
	"github.com/JaimeStill/courtfetch/pkg/storage"
)

type mockStorage struct {
	blobs map[string][]byte
	types map[string]string
}

func newMockStorage() *mockStorage {
	return &mockStorage{blobs: map[string][]byte{}, types: map[string]string{}}
}

func (m *mockStorage) Start(*lifecycle.Coordinator) error { return nil }

func (m *mockStorage) Upload(_ context.Context, key string, r io.Reader, contentType string) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.blobs[key] = data
	m.types[key] = contentType
	return nil
}

func (m *mockStorage) props(key string) (*storage.Properties, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}
	data, ok := m.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Properties{Key: key, ContentType: m.types[key], ContentLength: int64(len(data))}, nil
}

func (m *mockStorage) Download(_ context.Context, key string) (*storage.Blob, error) {
	p, err := m.props(key)
	if err != nil {
		return nil, err
	}
	return &storage.Blob{Properties: *p, Body: io.NopCloser(bytes.NewReader(m.blobs[key]))}, nil
}

func (m *mockStorage) Properties(_ context.Context, key string) (*storage.Properties, error) {
	return m.props(key)
}

func (m *mockStorage) List(_ context.Context, prefix string) ([]storage.Properties, error) {
	out := []storage.Properties{}
	for k := range m.blobs {
		if strings.HasPrefix(k, prefix) {
			p, _ := m.props(k)
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockStorage) Delete(_ context.Context, key string) error {
	if _, ok := m.blobs[key]; !ok {
		return storage.ErrNotFound
	}
	delete(m.blobs, key)
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/two-pages.pdf")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

func newMux(sys documents.System, maxUpload int64) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler(maxUpload).Routes())
	return mux
}

const orderKey = "delhi-high-court/1234-2023/order-2026-03-01.pdf"

func TestInfoCountsPDFPages(t *testing.T) {
	store := newMockStorage()
	store.Upload(context.Background(), orderKey, bytes.NewReader(fixture(t)), "application/pdf")

	sys := documents.New(store, discard(), 1<<20)
	doc, err := sys.Info(context.Background(), orderKey)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}

	if doc.Filename != "order-2026-03-01.pdf" {
		t.Errorf("filename = %q", doc.Filename)
	}
	if doc.PageCount == nil || *doc.PageCount != 2 {
		t.Errorf("page count = %v, want 2", doc.PageCount)
	}
}

func TestInfoSkipsLargeAndNonPDF(t *testing.T) {
	store := newMockStorage()
	ctx := context.Background()
	store.Upload(ctx, "a/notes.txt", strings.NewReader("hello"), "text/plain")
	store.Upload(ctx, "a/big.pdf", bytes.NewReader(fixture(t)), "application/pdf")

	sys := documents.New(store, discard(), 16)

	for _, key := range []string{"a/notes.txt", "a/big.pdf"} {
		doc, err := sys.Info(ctx, key)
		if err != nil {
			t.Fatalf("Info(%s): %v", key, err)
		}
		if doc.PageCount != nil {
			t.Errorf("Info(%s) page count = %d, want nil", key, *doc.PageCount)
		}
	}
}

func TestDisabledStorage(t *testing.T) {
	sys := documents.New(nil, discard(), 1<<20)

	_, err := sys.Info(context.Background(), orderKey)
	if !errors.Is(err, storage.ErrDisabled) {
		t.Errorf("err = %v, want ErrDisabled", err)
	}

	rec := httptest.NewRecorder()
	newMux(sys, 1<<20).ServeHTTP(rec, httptest.NewRequest("GET", "/documents/"+orderKey, nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandlerUploadDownload(t *testing.T) {
	store := newMockStorage()
	mux := newMux(documents.New(store, discard(), 1<<20), 1<<20)
	pdf := fixture(t)

	put := httptest.NewRequest("PUT", "/documents/"+orderKey, bytes.NewReader(pdf))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, put)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, want 201: %s", rec.Code, rec.Body)
	}

	var doc documents.Document
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.ContentType != "application/pdf" {
		t.Errorf("detected content type = %q, want application/pdf", doc.ContentType)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/documents/"+orderKey, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("download status = %d", rec.Code)
	}
	if !bytes.Equal(rec.Body.Bytes(), pdf) {
		t.Error("downloaded bytes differ from upload")
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "order-2026-03-01.pdf") {
		t.Errorf("content-disposition = %q", cd)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/documents/info/"+orderKey, nil))
	if rec.Code != http.StatusOK {
		t.Errorf("info status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/documents?prefix=delhi-high-court/", nil))
	var listed []documents.Document
	json.NewDecoder(rec.Body).Decode(&listed)
	if len(listed) != 1 || listed[0].Key != orderKey {
		t.Errorf("listed = %+v", listed)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("DELETE", "/documents/"+orderKey, nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}
}

func TestHandlerErrors(t *testing.T) {
	mux := newMux(documents.New(newMockStorage(), discard(), 1<<20), 8)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"missing document", "GET", "/documents/none.pdf", "", http.StatusNotFound},
		{"upload too large", "PUT", "/documents/a.txt", "more than eight bytes", http.StatusRequestEntityTooLarge},
		{"empty upload", "PUT", "/documents/a.txt", "", http.StatusBadRequest},
		{"delete missing", "DELETE", "/documents/none.pdf", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}
