package api

import (
	"bytes"
	"compress/gzip"
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/crypto/bcrypt"

	"github.com/ManiEids/vef2hop2/auth"
	"github.com/ManiEids/vef2hop2/domain"
	"github.com/ManiEids/vef2hop2/localstore"
	"github.com/ManiEids/vef2hop2/service"
)

type testServer struct {
	e      *echo.Echo
	tokens *auth.Tokens
	admin  string
	user   string
}

func newTestServer(t *testing.T, deduper Deduper) *testServer {
	t.Helper()
	logger, _ := test.NewNullLogger()
	tokens := auth.NewTokens([]byte("test-secret"), time.Hour, "", "")
	svc := service.New(localstore.NewStore(localstore.NewMemoryKV()), tokens, service.Options{PasswordCost: bcrypt.MinCost}, logger)
	if err := svc.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	e := NewServer(ServerOptions{})
	Register(e, svc, NewAuthenticator(tokens), deduper, logger)

	adminToken, err := tokens.Issue(domain.User{ID: "1", Username: "admin", Admin: true})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	userToken, err := tokens.Issue(domain.User{ID: "2", Username: "user"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return &testServer{e: e, tokens: tokens, admin: adminToken, user: userToken}
}

func (s *testServer) do(t *testing.T, method, path, token, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := sonic.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestListTasksPaginates(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/tasks?page=2&limit=2", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	page := decode[domain.TaskPage](t, rec)
	if page.Count != 7 || page.PageCount != 4 || page.CurrentPage != 2 || len(page.Items) != 2 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if !strings.Contains(rec.Body.String(), `"pageCount":4`) {
		t.Fatalf("expected camelCase page fields, got %s", rec.Body.String())
	}
}

func TestListTasksPageBeyondRange(t *testing.T) {
	s := newTestServer(t, nil)
	for _, target := range []string{
		"/tasks?page=5&limit=2",
		"/tasks?page=92233720368547758&limit=100",
		"/tasks?page=" + strconv.Itoa(math.MaxInt) + "&limit=10",
	} {
		rec := s.do(t, http.MethodGet, target, "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: unexpected status %d body=%s", target, rec.Code, rec.Body.String())
		}
		page := decode[domain.TaskPage](t, rec)
		if page.Count != 7 || len(page.Items) != 0 {
			t.Fatalf("%s: unexpected page: %+v", target, page)
		}
	}
}

func TestListTasksFilters(t *testing.T) {
	s := newTestServer(t, nil)
	cases := []struct {
		query string
		want  int
	}{
		{"/tasks?status=completed", 2},
		{"/tasks?status=active", 5},
		{"/tasks?category=3", 1},
		{"/tasks?tag=L%C3%A1gt%20forgangsstig", 2},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, tc.query, "", "")
			if rec.Code != http.StatusOK {
				t.Fatalf("unexpected status: %d", rec.Code)
			}
			if page := decode[domain.TaskPage](t, rec); page.Count != tc.want {
				t.Fatalf("expected %d tasks, got %d", tc.want, page.Count)
			}
		})
	}
}

func TestListTasksSortsByPriority(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/tasks?sort=priority&limit=1", "", "")
	page := decode[domain.TaskPage](t, rec)
	if len(page.Items) != 1 || page.Items[0].ID != "5" {
		t.Fatalf("expected high priority task first, got %+v", page.Items)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	s := newTestServer(t, nil)
	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		want   int
	}{
		{"bad status filter", http.MethodGet, "/tasks?status=bogus", "", "", http.StatusBadRequest},
		{"bad page", http.MethodGet, "/tasks?page=zero", "", "", http.StatusBadRequest},
		{"missing task", http.MethodGet, "/tasks/nope", "", "", http.StatusNotFound},
		{"create without auth", http.MethodPost, "/tasks", "", `{"title":"x"}`, http.StatusUnauthorized},
		{"create with bad token", http.MethodPost, "/tasks", "a.b.c", `{"title":"x"}`, http.StatusUnauthorized},
		{"create without title", http.MethodPost, "/tasks", s.user, `{"description":"x"}`, http.StatusBadRequest},
		{"create malformed body", http.MethodPost, "/tasks", s.user, `{"title":`, http.StatusBadRequest},
		{"category as anonymous", http.MethodPost, "/categories", "", `{"name":"Nýr"}`, http.StatusUnauthorized},
		{"category as user", http.MethodPost, "/categories", s.user, `{"name":"Nýr"}`, http.StatusForbidden},
		{"duplicate category", http.MethodPost, "/categories", s.admin, `{"name":"vinna"}`, http.StatusConflict},
		{"unknown route", http.MethodGet, "/nothing-here", "", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(t, tc.method, tc.path, tc.token, tc.body)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d, body=%s", rec.Code, tc.want, rec.Body.String())
			}
			if resp := decode[errorResponse](t, rec); resp.Error == "" {
				t.Fatalf("expected error message in body: %s", rec.Body.String())
			}
		})
	}
}

func TestTaskLifecycle(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/tasks", s.user, `{"title":"Skila skýrslu","category_id":"1","tags":["Frestur"],"due_date":"2025-04-01"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status: %d body=%s", rec.Code, rec.Body.String())
	}
	created := decode[domain.Task](t, rec)
	if created.CategoryName != "Vinna" || created.Priority != domain.PriorityNormal {
		t.Fatalf("unexpected created task: %+v", created)
	}

	rec = s.do(t, http.MethodPut, "/tasks/"+created.ID, s.user, `{"priority":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status: %d body=%s", rec.Code, rec.Body.String())
	}
	if updated := decode[domain.Task](t, rec); updated.Priority != 1 || updated.Title != "Skila skýrslu" {
		t.Fatalf("unexpected updated task: %+v", updated)
	}

	rec = s.do(t, http.MethodPost, "/tasks/"+created.ID+"/complete", s.user, "")
	if rec.Code != http.StatusOK || !decode[domain.Task](t, rec).Completed {
		t.Fatalf("complete failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/tasks/counts", "", "")
	counts := decode[domain.TaskCounts](t, rec)
	if counts.Completed != 3 || counts.Tags["Frestur"] != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}

	if rec = s.do(t, http.MethodDelete, "/tasks/"+created.ID, s.user, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status: %d", rec.Code)
	}
	if rec = s.do(t, http.MethodDelete, "/tasks/"+created.ID, s.user, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status: %d", rec.Code)
	}
}

func TestCreateTaskGzipBody(t *testing.T) {
	s := newTestServer(t, nil)
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write([]byte(`{"title":"Þjappað"}`))
	_ = zw.Close()

	req := httptest.NewRequest(http.MethodPost, "/tasks", &buf)
	req.Header.Set(echo.HeaderContentEncoding, "gzip")
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+s.user)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader("not gzip"))
	req.Header.Set(echo.HeaderContentEncoding, "gzip")
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+s.user)
	rec = httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid gzip, got %d", rec.Code)
	}
}

func TestGzipBodyLimitAppliesAfterInflating(t *testing.T) {
	s := newTestServer(t, nil)
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write([]byte(`{"title":"` + strings.Repeat("x", 4*maxBodySize) + `"}`))
	_ = zw.Close()
	if buf.Len() >= maxBodySize {
		t.Fatalf("compressed body should fit the raw limit, got %d bytes", buf.Len())
	}

	req := httptest.NewRequest(http.MethodPost, "/tasks", &buf)
	req.Header.Set(echo.HeaderContentEncoding, "gzip")
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+s.user)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestIsGzip(t *testing.T) {
	cases := map[string]bool{
		"":              false,
		"gzip":          true,
		"GZIP":          true,
		"deflate, gzip": true,
		"br":            false,
	}
	for header, want := range cases {
		if got := isGzip(header); got != want {
			t.Fatalf("isGzip(%q) = %v, want %v", header, got, want)
		}
	}
}

func TestBodyLimit(t *testing.T) {
	s := newTestServer(t, nil)
	big := `{"title":"` + strings.Repeat("x", maxBodySize+1) + `"}`
	rec := s.do(t, http.MethodPost, "/tasks", s.user, big)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
}

func TestCreateTaskIdempotencyKey(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	s := newTestServer(t, NewRedisDeduper(client, time.Minute))

	rec := s.do(t, http.MethodPost, "/tasks", s.user, `{"title":"Einu sinni"}`, HeaderIdempotencyKey, "k1")
	if rec.Code != http.StatusCreated {
		t.Fatalf("first create: %d", rec.Code)
	}
	rec = s.do(t, http.MethodPost, "/tasks", s.user, `{"title":"Einu sinni"}`, HeaderIdempotencyKey, "k1")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate key, got %d", rec.Code)
	}

	// A failed create releases its key.
	rec = s.do(t, http.MethodPost, "/tasks", s.user, `{"title":""}`, HeaderIdempotencyKey, "k2")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	rec = s.do(t, http.MethodPost, "/tasks", s.user, `{"title":"Aftur"}`, HeaderIdempotencyKey, "k2")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected retry after failure to succeed, got %d", rec.Code)
	}

	// Keys are scoped per user.
	rec = s.do(t, http.MethodPost, "/tasks", s.admin, `{"title":"Einu sinni"}`, HeaderIdempotencyKey, "k1")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected other user's key to be independent, got %d", rec.Code)
	}
}

func TestSyncTasks(t *testing.T) {
	s := newTestServer(t, nil)
	far := time.Now().Add(time.Hour).UnixMilli()
	body := `[{"id":"1","title":"Breytt á staðnum","modified":` + strconv.FormatInt(far, 10) + `},{"id":"local-1","title":"Nýtt","modified":1}]`
	rec := s.do(t, http.MethodPost, "/tasks/sync", s.user, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("sync status: %d body=%s", rec.Code, rec.Body.String())
	}
	merged := decode[[]domain.Task](t, rec)
	if len(merged) != 8 || merged[0].Title != "Breytt á staðnum" || merged[1].ID != "local-1" {
		t.Fatalf("unexpected merge result: %+v", merged)
	}
	rec = s.do(t, http.MethodGet, "/tasks/1", "", "")
	if got := decode[domain.Task](t, rec); got.Title != "Breytt á staðnum" {
		t.Fatalf("expected synced title to persist, got %q", got.Title)
	}

	rec = s.do(t, http.MethodGet, "/tasks/2", "", "")
	stored := decode[domain.Task](t, rec)
	body = `[{"id":"2","title":"Jafn gamalt","modified":` + strconv.FormatInt(stored.Modified, 10) + `}]`
	if rec = s.do(t, http.MethodPost, "/tasks/sync", s.user, body); rec.Code != http.StatusOK {
		t.Fatalf("tie sync status: %d body=%s", rec.Code, rec.Body.String())
	}
	rec = s.do(t, http.MethodGet, "/tasks/2", "", "")
	if got := decode[domain.Task](t, rec); got.Title != "Jafn gamalt" {
		t.Fatalf("expected incoming copy to win a tie, got %q", got.Title)
	}

	rec = s.do(t, http.MethodPost, "/tasks/sync", s.user, `[{"title":"no id"}]`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for task without id, got %d", rec.Code)
	}
}

func TestCategoryAdminFlow(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodPost, "/categories", s.admin, `{"name":"Áhugamál","description":"Frítími"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d body=%s", rec.Code, rec.Body.String())
	}
	cat := decode[domain.Category](t, rec)

	rec = s.do(t, http.MethodPut, "/categories/"+cat.ID, s.admin, `{"name":"Áhugamál og leikir"}`)
	if rec.Code != http.StatusOK || decode[domain.Category](t, rec).Description != "Frítími" {
		t.Fatalf("update: %d body=%s", rec.Code, rec.Body.String())
	}
	if rec = s.do(t, http.MethodDelete, "/categories/"+cat.ID, s.user, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin delete, got %d", rec.Code)
	}
	if rec = s.do(t, http.MethodDelete, "/categories/"+cat.ID, s.admin, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	rec = s.do(t, http.MethodGet, "/categories", "", "")
	cats := decode[[]domain.Category](t, rec)
	if len(cats) != 5 || cats[0].TaskCount != 1 {
		t.Fatalf("unexpected categories: %+v", cats)
	}
}

func TestTags(t *testing.T) {
	s := newTestServer(t, nil)
	if rec := s.do(t, http.MethodPost, "/tags", "", `{"name":"Nýtt"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodPost, "/tags", s.user, `{"name":"Nýtt"}`); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodPost, "/tags", s.user, `{"name":"nýtt"}`); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	rec := s.do(t, http.MethodGet, "/tags", "", "")
	if tags := decode[[]domain.Tag](t, rec); len(tags) != 6 {
		t.Fatalf("expected 6 tags, got %d", len(tags))
	}
}

func TestLoginRegisterMe(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/users/login", "", `{"email":"admin","password":"admin"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d body=%s", rec.Code, rec.Body.String())
	}
	session := decode[domain.Session](t, rec)
	if !session.User.Admin || session.Token == "" {
		t.Fatalf("unexpected session: %+v", session)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("session leaks password data: %s", rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/users/me", session.Token, "")
	if rec.Code != http.StatusOK || decode[domain.User](t, rec).ID != "1" {
		t.Fatalf("me: %d body=%s", rec.Code, rec.Body.String())
	}
	if rec = s.do(t, http.MethodGet, "/users/me", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec = s.do(t, http.MethodPost, "/users/login", "", `{"email":"admin","password":"wrong"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodPost, "/users/register", "", `{"email":"gudrun@example.com","password":"leyndo","name":"Guðrún"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d body=%s", rec.Code, rec.Body.String())
	}
	if rec = s.do(t, http.MethodPost, "/users/register", "", `{"email":"gudrun@example.com","password":"leyndo","name":"Guðrún"}`); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate registration, got %d", rec.Code)
	}
	if rec = s.do(t, http.MethodPost, "/users/register", "", `{"email":"not-an-email","password":"leyndo","name":"X"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid email, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)
	if rec := s.do(t, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestGetTaskWithEchoContext(t *testing.T) {
	s := newTestServer(t, nil)
	logger, _ := test.NewNullLogger()
	svc := service.New(localstore.NewStore(localstore.NewMemoryKV()), nil, service.Options{}, logger)
	h := &handlers{svc: svc, log: logger}

	req := httptest.NewRequest(http.MethodGet, "/tasks/x", nil)
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("x")
	if err := h.getTask(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
