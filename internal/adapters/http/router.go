package httpadapter

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rsnlabs/docbase/internal/core/domain"
	"github.com/rsnlabs/docbase/internal/core/ports"
	"github.com/rsnlabs/docbase/internal/core/usecase"
	"github.com/rsnlabs/docbase/internal/observability/metrics"
)

// maxUploadBytes caps one multipart upload held in the form parser.
const maxUploadBytes = 64 << 20

type Router struct {
	ingestor  ports.DocumentIngestor
	retriever ports.DocumentRetriever
	catalog   ports.CatalogReader
	metrics   *metrics.PipelineMetrics
	service   string
}

func NewRouter(
	ingestor ports.DocumentIngestor,
	retriever ports.DocumentRetriever,
	catalog ports.CatalogReader,
	m *metrics.PipelineMetrics,
	service string,
) *Router {
	return &Router{
		ingestor:  ingestor,
		retriever: retriever,
		catalog:   catalog,
		metrics:   m,
		service:   service,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.Handle("/metrics", rt.metrics.Handler())
	mux.HandleFunc("/api/v1/fileUpload", rt.fileUpload)
	mux.HandleFunc("/api/v1/fileDelete", rt.fileDelete)
	mux.HandleFunc("/api/v1/fileSearch", rt.fileSearch)
	mux.HandleFunc("/api/v1/initChat", rt.initChat)
	mux.HandleFunc("/api/v1/fileList", rt.fileList)
	mux.HandleFunc("/api/v1/categoryList", rt.categoryList)
	mux.HandleFunc("/api/v1/tagList", rt.tagList)

	handler := rt.metrics.Middleware(rt.service, mux)
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) fileUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeEnvelope(w, CodeError, nil, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	var categoryID int64
	if raw := r.FormValue("category"); raw != "" {
		categoryID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeEnvelope(w, CodeError, nil, "invalid request")
			return
		}
	}

	tags, err := parseTags(r.FormValue("tags"))
	if err != nil {
		writeEnvelope(w, CodeError, nil, "invalid request")
		return
	}

	start := time.Now()
	receipt, err := rt.ingestor.Upload(r.Context(), ports.UploadInput{
		FileName:   header.Filename,
		FileSize:   header.Size,
		CategoryID: categoryID,
		Tags:       tags,
		Content:    file,
	})
	if err != nil {
		rt.metrics.ObserveIngest(rt.service, "failed", time.Since(start), 0)
		writeError(w, err)
		return
	}

	if receipt.Status == domain.IngestDuplicate {
		rt.metrics.ObserveIngest(rt.service, "duplicate", time.Since(start), 0)
		writeEnvelope(w, CodeDuplicate, receipt, "already uploaded")
		return
	}
	rt.metrics.ObserveIngest(rt.service, "stored", time.Since(start), receipt.ChunkCount)
	writeOK(w, receipt)
}

func (rt *Router) fileDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, CodeError, nil, "invalid request")
		return
	}

	if err := rt.ingestor.Delete(r.Context(), req.ID, domain.DocumentType(req.Type)); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, nil)
}

func (rt *Router) fileSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Input string `json:"input"`
		ID    string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, CodeError, nil, "invalid request")
		return
	}

	texts, err := rt.retriever.Search(r.Context(), req.Input, req.ID)
	if err != nil {
		rt.metrics.ObserveSearch(rt.service, "engine_error")
		writeEnvelope(w, CodeError, nil, searchMessageFor(err))
		return
	}

	outcome := "hit"
	if len(texts) == 1 && texts[0] == usecase.NoMatchMessage {
		outcome = "no_match"
	}
	rt.metrics.ObserveSearch(rt.service, outcome)
	writeOK(w, texts)
}

func (rt *Router) initChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := r.URL.Query().Get("id")
	if !domain.ValidFingerprint(id) {
		writeEnvelope(w, CodeError, nil, "invalid request")
		return
	}

	doc, err := rt.catalog.GetDocument(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, doc)
}

func (rt *Router) fileList(w http.ResponseWriter, r *http.Request) {
	rt.listing(w, r, rt.catalog.ListDocuments)
}

func (rt *Router) categoryList(w http.ResponseWriter, r *http.Request) {
	rt.listing(w, r, rt.catalog.ListCategories)
}

func (rt *Router) tagList(w http.ResponseWriter, r *http.Request) {
	rt.listing(w, r, rt.catalog.ListTags)
}

func (rt *Router) listing(
	w http.ResponseWriter,
	r *http.Request,
	list func(ctx context.Context, paging domain.Paging) (*domain.RecordPage, error),
) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	paging := pagingFromQuery(r)
	page, err := list(r.Context(), paging)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(page.List) == 0 {
		writeEnvelope(w, CodeOK, page, "no data found")
		return
	}
	writeOK(w, page)
}

func pagingFromQuery(r *http.Request) domain.Paging {
	var paging domain.Paging
	if size, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil {
		paging.PageSize = size
	}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		paging.PageNum = page
	}
	return paging
}

// parseTags accepts either full tag objects or bare numeric ids.
func parseTags(raw string) ([]domain.Tag, error) {
	if raw == "" {
		return nil, nil
	}

	var tags []domain.Tag
	if err := json.Unmarshal([]byte(raw), &tags); err == nil {
		return tags, nil
	}

	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, err
	}
	tags = make([]domain.Tag, 0, len(ids))
	for _, id := range ids {
		tags = append(tags, domain.Tag{ID: id})
	}
	return tags, nil
}
