package prompt_test

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

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"github.com/alanyang/prompt-manager/internal/adapter/memory"
	domainprompt "github.com/alanyang/prompt-manager/internal/domain/prompt"
	"github.com/alanyang/prompt-manager/internal/mocks"
	promptsvc "github.com/alanyang/prompt-manager/internal/service/prompt"
	transportprompt "github.com/alanyang/prompt-manager/internal/transport/prompt"
)

func init() { gin.SetMode(gin.TestMode) }

func newRouter(svc *promptsvc.Service) *gin.Engine {
	r := gin.New()
	transportprompt.Register(r.Group("/prompts"), svc)
	return r
}

func newPromptSvc(t *testing.T) *promptsvc.Service {
	t.Helper()
	return promptsvc.NewService(memory.NewStore(), nil, zaptest.NewLogger(t))
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func seed(t *testing.T, svc *promptsvc.Service, titles ...string) []domainprompt.Prompt {
	t.Helper()
	var out []domainprompt.Prompt
	for _, title := range titles {
		p, err := svc.Add(context.Background(), domainprompt.FormData{Title: title, Content: title, Category: "cat-" + title})
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

// ── POST / (createPrompt) ─────────────────────────────────────────────────────

func TestCreatePrompt_Success(t *testing.T) {
	svc := newPromptSvc(t)
	r := newRouter(svc)

	w := do(t, r, http.MethodPost, "/prompts/", map[string]string{"title": "t", "content": "c", "category": "x"})
	assert.Equal(t, http.StatusCreated, w.Code)

	var got domainprompt.Prompt
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "t", got.Title)
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
	assert.Len(t, svc.List(context.Background()), 1)
}

func TestCreatePrompt_EmptyFieldsAllowed(t *testing.T) {
	r := newRouter(newPromptSvc(t))
	w := do(t, r, http.MethodPost, "/prompts/", map[string]string{})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreatePrompt_BadBody(t *testing.T) {
	r := newRouter(newPromptSvc(t))

	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodPost, "/prompts/", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePrompt_StorageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
	r := newRouter(promptsvc.NewService(store, nil, zaptest.NewLogger(t)))

	w := do(t, r, http.MethodPost, "/prompts/", map[string]string{"title": "t"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// ── GET / (listPrompts) ───────────────────────────────────────────────────────

func TestListPrompts(t *testing.T) {
	svc := newPromptSvc(t)
	seeded := seed(t, svc, "alpha", "beta")
	r := newRouter(svc)

	w := do(t, r, http.MethodGet, "/prompts/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got []domainprompt.Prompt
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, seeded[0].ID, got[0].ID)

	w = do(t, r, http.MethodGet, "/prompts/?q=BET", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, seeded[1].ID, got[0].ID)

	w = do(t, r, http.MethodGet, "/prompts/?category=cat-alpha", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, seeded[0].ID, got[0].ID)
}

func TestListPrompts_EmptyIsArray(t *testing.T) {
	r := newRouter(newPromptSvc(t))
	w := do(t, r, http.MethodGet, "/prompts/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestListCategories(t *testing.T) {
	svc := newPromptSvc(t)
	seed(t, svc, "b", "a")
	r := newRouter(svc)

	w := do(t, r, http.MethodGet, "/prompts/categories", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["cat-a","cat-b"]`, w.Body.String())
}

// ── GET /:id (getPrompt) ──────────────────────────────────────────────────────

func TestGetPrompt(t *testing.T) {
	svc := newPromptSvc(t)
	p := seed(t, svc, "one")[0]
	r := newRouter(svc)

	w := do(t, r, http.MethodGet, "/prompts/"+p.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/prompts/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ── PUT /:id (updatePrompt) ───────────────────────────────────────────────────

func TestUpdatePrompt(t *testing.T) {
	svc := newPromptSvc(t)
	p := seed(t, svc, "one")[0]
	r := newRouter(svc)

	w := do(t, r, http.MethodPut, "/prompts/"+p.ID, map[string]string{"title": "renamed", "content": "c", "category": "k"})
	require.Equal(t, http.StatusOK, w.Code)

	var got domainprompt.Prompt
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "renamed", got.Title)
	assert.True(t, got.CreatedAt.Equal(p.CreatedAt))
}

func TestUpdatePrompt_NotFound(t *testing.T) {
	r := newRouter(newPromptSvc(t))
	w := do(t, r, http.MethodPut, "/prompts/missing", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ── DELETE /:id (deletePrompt) ────────────────────────────────────────────────

func TestDeletePrompt(t *testing.T) {
	svc := newPromptSvc(t)
	p := seed(t, svc, "one")[0]
	r := newRouter(svc)

	w := do(t, r, http.MethodDelete, "/prompts/"+p.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodDelete, "/prompts/"+p.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, svc.List(context.Background()))
}

// ── GET /export, POST /import ─────────────────────────────────────────────────

func TestExportPrompts_Attachment(t *testing.T) {
	svc := newPromptSvc(t)
	seed(t, svc, "one", "two")
	r := newRouter(svc)

	w := do(t, r, http.MethodGet, "/prompts/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Regexp(t, `^attachment; filename="prompts-export-\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}\.json"$`,
		w.Header().Get("Content-Disposition"))

	var doc domainprompt.ExportDocument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "1.0", doc.Version)
	assert.Len(t, doc.Prompts, 2)
}

func TestImportPrompts_RawBody(t *testing.T) {
	svc := newPromptSvc(t)
	r := newRouter(svc)

	w := httptest.NewRecorder()
	body := `{"version":"1.0","prompts":[{"id":"x","title":"imported","createdAt":"2024-01-01T00:00:00.000Z","updatedAt":"2024-01-01T00:00:00.000Z"}]}`
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodPost, "/prompts/import", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"added":1,"updated":0,"unchanged":0}`, w.Body.String())
	got, ok := svc.Get(context.Background(), "x")
	require.True(t, ok)
	assert.Equal(t, "imported", got.Title)
}

func TestImportPrompts_Multipart(t *testing.T) {
	svc := newPromptSvc(t)
	seed(t, svc, "one")
	r := newRouter(svc)

	exported := do(t, r, http.MethodGet, "/prompts/export", nil).Body.Bytes()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "prompts-export.json")
	require.NoError(t, err)
	_, err = fw.Write(exported)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodPost, "/prompts/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"added":0,"updated":0,"unchanged":1}`, w.Body.String())
}

func TestImportPrompts_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing prompts", `{"version":"1.0"}`},
		{"not json", `not json`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newRouter(newPromptSvc(t))
			w := httptest.NewRecorder()
			req, _ := http.NewRequestWithContext(context.Background(), http.MethodPost, "/prompts/import", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestImportPrompts_MultipartMissingFile(t *testing.T) {
	r := newRouter(newPromptSvc(t))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodPost, "/prompts/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
