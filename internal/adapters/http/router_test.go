package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rsnlabs/docbase/internal/core/domain"
	"github.com/rsnlabs/docbase/internal/core/ports"
	"github.com/rsnlabs/docbase/internal/core/usecase"
	"github.com/rsnlabs/docbase/internal/observability/metrics"
)

type fakeIngestor struct {
	receipt   *domain.UploadReceipt
	uploadErr error
	deleteErr error
	deletedID string
	gotInput  ports.UploadInput
}

func (f *fakeIngestor) Upload(_ context.Context, in ports.UploadInput) (*domain.UploadReceipt, error) {
	f.gotInput = in
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return f.receipt, nil
}

func (f *fakeIngestor) Delete(_ context.Context, id string, _ domain.DocumentType) error {
	f.deletedID = id
	return f.deleteErr
}

type fakeRetriever struct {
	texts []string
	err   error
}

func (f *fakeRetriever) Search(context.Context, string, string) ([]string, error) {
	return f.texts, f.err
}

type fakeCatalog struct {
	doc    *domain.Document
	docErr error
	page   *domain.RecordPage
	err    error
}

func (f *fakeCatalog) GetDocument(context.Context, string) (*domain.Document, error) {
	return f.doc, f.docErr
}

func (f *fakeCatalog) ListDocuments(context.Context, domain.Paging) (*domain.RecordPage, error) {
	return f.list()
}

func (f *fakeCatalog) ListCategories(context.Context, domain.Paging) (*domain.RecordPage, error) {
	return f.list()
}

func (f *fakeCatalog) ListTags(context.Context, domain.Paging) (*domain.RecordPage, error) {
	return f.list()
}

func (f *fakeCatalog) list() (*domain.RecordPage, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.page == nil {
		return &domain.RecordPage{List: []domain.Record{}}, nil
	}
	return f.page, nil
}

func newTestRouter(ing *fakeIngestor, ret *fakeRetriever, cat *fakeCatalog) http.Handler {
	if ing == nil {
		ing = &fakeIngestor{}
	}
	if ret == nil {
		ret = &fakeRetriever{}
	}
	if cat == nil {
		cat = &fakeCatalog{}
	}
	return NewRouter(ing, ret, cat, metrics.NewPipelineMetrics("test"), "test").Handler()
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func multipartUpload(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "notes.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("file body")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %q: %v", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestFileUploadStored(t *testing.T) {
	ing := &fakeIngestor{receipt: &domain.UploadReceipt{
		Status:   domain.IngestStored,
		FileHash: strings.Repeat("ab", 32),
		FileName: "notes.txt",
	}}
	handler := newTestRouter(ing, nil, nil)

	body, contentType := multipartUpload(t, map[string]string{
		"category": "2",
		"tags":     `[{"id":1,"name":"go","alias":"golang"}]`,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fileUpload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Code != CodeOK {
		t.Fatalf("code = %d, message = %q, want success", env.Code, env.Message)
	}
	if ing.gotInput.CategoryID != 2 {
		t.Errorf("category = %d, want 2", ing.gotInput.CategoryID)
	}
	if len(ing.gotInput.Tags) != 1 || ing.gotInput.Tags[0].Name != "go" {
		t.Errorf("tags = %+v, want the parsed tag", ing.gotInput.Tags)
	}
}

func TestFileUploadDuplicate(t *testing.T) {
	ing := &fakeIngestor{receipt: &domain.UploadReceipt{
		Status:   domain.IngestDuplicate,
		FileHash: strings.Repeat("ab", 32),
	}}
	handler := newTestRouter(ing, nil, nil)

	body, contentType := multipartUpload(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fileUpload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	env := decodeEnvelope(t, rec)
	if env.Code != CodeDuplicate {
		t.Fatalf("code = %d, want duplicate code", env.Code)
	}
	if env.Message != "already uploaded" {
		t.Errorf("message = %q, want already uploaded", env.Message)
	}
}

func TestFileUploadWithoutFileField(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/fileUpload", strings.NewReader("not multipart"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with envelope error", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Code != CodeError {
		t.Fatalf("code = %d, want error", env.Code)
	}
}

func TestFileUploadErrorIsMapped(t *testing.T) {
	ing := &fakeIngestor{uploadErr: domain.WrapError(domain.ErrUnsupportedFormat, "upload", errors.New("zip"))}
	handler := newTestRouter(ing, nil, nil)

	body, contentType := multipartUpload(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fileUpload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	env := decodeEnvelope(t, rec)
	if env.Code != CodeError || env.Message != "unsupported file format" {
		t.Fatalf("envelope = %+v, want mapped format error", env)
	}
}

func TestFileDelete(t *testing.T) {
	ing := &fakeIngestor{}
	handler := newTestRouter(ing, nil, nil)

	payload := `{"id":"` + strings.Repeat("ab", 32) + `","type":"txt"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fileDelete", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	body := rec.Body.String()
	if env := decodeEnvelope(t, rec); env.Code != CodeOK {
		t.Fatalf("code = %d, want success", env.Code)
	}
	if ing.deletedID != strings.Repeat("ab", 32) {
		t.Errorf("deleted id = %q, want the requested id", ing.deletedID)
	}
	if !strings.Contains(body, `"data":null`) {
		t.Errorf("body = %s, want an explicit null data field", body)
	}
}

func TestFileSearchReturnsTexts(t *testing.T) {
	ret := &fakeRetriever{texts: []string{"first", "second"}}
	handler := newTestRouter(nil, ret, nil)

	payload := `{"input":"question","id":"` + strings.Repeat("ab", 32) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fileSearch", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	env := decodeEnvelope(t, rec)
	if env.Code != CodeOK {
		t.Fatalf("code = %d, want success", env.Code)
	}
	data, ok := env.Data.([]any)
	if !ok || len(data) != 2 {
		t.Fatalf("data = %v, want both texts", env.Data)
	}
}

func TestFileSearchFallbackStillSucceeds(t *testing.T) {
	ret := &fakeRetriever{texts: []string{usecase.NoMatchMessage}}
	handler := newTestRouter(nil, ret, nil)

	payload := `{"input":"question","id":"` + strings.Repeat("ab", 32) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fileSearch", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if env := decodeEnvelope(t, rec); env.Code != CodeOK {
		t.Fatalf("code = %d, a below-threshold search is still a success", env.Code)
	}
}

func TestFileSearchEngineError(t *testing.T) {
	ret := &fakeRetriever{err: errors.New("qdrant down")}
	handler := newTestRouter(nil, ret, nil)

	payload := `{"input":"question","id":"` + strings.Repeat("ab", 32) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fileSearch", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with envelope error", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Code != CodeError {
		t.Fatalf("code = %d, want error", env.Code)
	}
	if !strings.Contains(env.Message, "qdrant down") {
		t.Fatalf("message = %q, want the engine's reason surfaced", env.Message)
	}
}

func TestFileSearchInvalidInputStaysGeneric(t *testing.T) {
	ret := &fakeRetriever{err: domain.WrapError(domain.ErrInvalidInput, "search", errors.New("empty query"))}
	handler := newTestRouter(nil, ret, nil)

	payload := `{"input":"","id":"` + strings.Repeat("ab", 32) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fileSearch", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	env := decodeEnvelope(t, rec)
	if env.Code != CodeError || env.Message != "invalid request" {
		t.Fatalf("envelope = %+v, want the generic validation message", env)
	}
}

func TestInitChatRejectsMalformedID(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/initChat?id=short", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if env := decodeEnvelope(t, rec); env.Code != CodeError {
		t.Fatalf("code = %d, want validation failure", env.Code)
	}
}

func TestInitChatReturnsDocument(t *testing.T) {
	cat := &fakeCatalog{doc: &domain.Document{ID: strings.Repeat("ab", 32), FileName: "notes.txt"}}
	handler := newTestRouter(nil, nil, cat)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/initChat?id="+strings.Repeat("ab", 32), nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	env := decodeEnvelope(t, rec)
	if env.Code != CodeOK {
		t.Fatalf("code = %d, want success", env.Code)
	}
}

func TestListingsEmptyTable(t *testing.T) {
	handler := newTestRouter(nil, nil, &fakeCatalog{})

	for _, path := range []string{"/api/v1/fileList", "/api/v1/categoryList", "/api/v1/tagList"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		body := rec.Body.String()
		env := decodeEnvelope(t, rec)
		if env.Code != CodeOK || env.Message != "no data found" {
			t.Errorf("%s envelope = %+v, want success with no data found", path, env)
		}
		if !strings.Contains(body, `"list":[]`) {
			t.Errorf("%s body = %s, want an empty list in data", path, body)
		}
	}
}

func TestListingsWithData(t *testing.T) {
	cat := &fakeCatalog{page: &domain.RecordPage{
		List:  []domain.Record{{Kind: domain.KindTag, Tag: &domain.Tag{ID: 1, Name: "go"}}},
		Total: 1,
	}}
	handler := newTestRouter(nil, nil, cat)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tagList?size=10&page=0", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	env := decodeEnvelope(t, rec)
	if env.Code != CodeOK {
		t.Fatalf("code = %d, want success", env.Code)
	}
}

func TestActionsRejectWrongMethod(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fileUpload", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("fileUpload GET status = %d, want 405", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/fileList", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("fileList POST status = %d, want 405", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("response should carry a request id")
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "client-supplied")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got != "client-supplied" {
		t.Errorf("request id = %q, want the client value echoed", got)
	}
}

func TestParseTags(t *testing.T) {
	tags, err := parseTags(`[{"id":1,"name":"go","alias":"golang"},{"name":"fresh"}]`)
	if err != nil {
		t.Fatalf("parse objects: %v", err)
	}
	if len(tags) != 2 || tags[0].ID != 1 || tags[1].Name != "fresh" {
		t.Errorf("tags = %+v, want both objects", tags)
	}

	tags, err = parseTags(`[4,5]`)
	if err != nil {
		t.Fatalf("parse bare ids: %v", err)
	}
	if len(tags) != 2 || tags[0].ID != 4 || tags[1].ID != 5 {
		t.Errorf("tags = %+v, want id-only tags", tags)
	}

	tags, err = parseTags("")
	if err != nil || tags != nil {
		t.Errorf("empty input = (%v, %v), want clean nil", tags, err)
	}

	if _, err = parseTags(`{"not":"a list"}`); err == nil {
		t.Error("expected error for a non-list payload")
	}
}
