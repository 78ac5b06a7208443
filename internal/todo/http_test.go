package todo

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/todo-gate/internal/web"
)

func newTestRouter(store *Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.SetHTMLTemplate(web.Templates())
	RegisterRoutes(router, store, zerolog.Nop())
	return router
}

func postForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func requireRedirectToList(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
}

func TestListRendersItems(t *testing.T) {
	store := NewStore()
	store.Create("Buy milk")
	store.Create("<script>")
	router := newTestRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Buy milk")
	assert.Contains(t, body, `data-id="2"`)
	assert.NotContains(t, body, "<script>")
}

func TestListEmpty(t *testing.T) {
	router := newTestRouter(NewStore())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Chưa có công việc nào.")
}

func TestCreateFormRenders(t *testing.T) {
	router := newTestRouter(NewStore())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/create", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/create"`)
}

func TestCreateHandler(t *testing.T) {
	store := NewStore()
	router := newTestRouter(store)

	requireRedirectToList(t, postForm(router, "/create", url.Values{"title": {"   "}}))
	requireRedirectToList(t, postForm(router, "/create", url.Values{}))
	assert.Empty(t, store.List())

	requireRedirectToList(t, postForm(router, "/create", url.Values{"title": {"Buy milk"}}))
	assert.Equal(t, []Item{{ID: 1, Title: "Buy milk"}}, store.List())
}

func TestToggleAndDeleteHandlers(t *testing.T) {
	store := NewStore()
	store.Create("A")
	store.Create("B")
	router := newTestRouter(store)

	requireRedirectToList(t, postForm(router, "/toggle", url.Values{"id": {"1"}}))
	assert.Equal(t, []Item{{ID: 1, Title: "A", IsCompleted: true}, {ID: 2, Title: "B"}}, store.List())

	requireRedirectToList(t, postForm(router, "/delete", url.Values{"id": {"1"}}))
	assert.Equal(t, []Item{{ID: 2, Title: "B"}}, store.List())
}

func TestMutationsWithUnknownOrInvalidIDAreSilent(t *testing.T) {
	store := NewStore()
	store.Create("A")
	before := store.List()
	router := newTestRouter(store)

	for _, id := range []string{"99", "abc", ""} {
		requireRedirectToList(t, postForm(router, "/toggle", url.Values{"id": {id}}))
		requireRedirectToList(t, postForm(router, "/delete", url.Values{"id": {id}}))
	}
	assert.Equal(t, before, store.List())
}
