package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/exploitz3r0/xq/internal/app/model"
	"github.com/exploitz3r0/xq/internal/app/repository"
	appserver "github.com/exploitz3r0/xq/internal/app/server"
	"github.com/exploitz3r0/xq/internal/app/service"
)

// fakeLinkRepo is an in-memory LinkRepository so handler tests run the full
// service stack without SQLite.
type fakeLinkRepo struct {
	mu     sync.Mutex
	nextID uint
	links  map[string]*model.Link
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{links: make(map[string]*model.Link)}
}

func (f *fakeLinkRepo) Create(_ context.Context, link *model.Link) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.links[link.ShortCode]; ok {
		return repository.ErrCodeTaken
	}
	f.nextID++
	link.ID = f.nextID
	link.CreatedAt = time.Now().UTC()
	stored := *link
	f.links[link.ShortCode] = &stored
	return nil
}

func (f *fakeLinkRepo) GetByCode(_ context.Context, code string) (*model.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	link, ok := f.links[code]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	out := *link
	return &out, nil
}

func (f *fakeLinkRepo) IncrementClicks(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if link, ok := f.links[code]; ok {
		link.Clicks++
	}
	return nil
}

func (f *fakeLinkRepo) Delete(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.links, code)
	return nil
}

func (f *fakeLinkRepo) ListRecent(_ context.Context, limit int) ([]model.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit <= 0 {
		limit = 10
	}
	all := make([]model.Link, 0, len(f.links))
	for _, link := range f.links {
		all = append(all, *link)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeLinkRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var swept int64
	for code, link := range f.links {
		if link.Expired(now) {
			delete(f.links, code)
			swept++
		}
	}
	return swept, nil
}

func (f *fakeLinkRepo) AllCodes(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	codes := make([]string, 0, len(f.links))
	for code := range f.links {
		codes = append(codes, code)
	}
	return codes, nil
}

func (f *fakeLinkRepo) clicks(t *testing.T, code string) int64 {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	link, ok := f.links[code]
	if !ok {
		t.Fatalf("expected link %q to exist", code)
	}
	return link.Clicks
}

func newTestApp(t *testing.T) (*fiber.App, *fakeLinkRepo) {
	t.Helper()
	repo := newFakeLinkRepo()
	svc := service.NewLinkService(repo, service.NewCodeGenerator(0), service.NewCodeFilter())
	srv := appserver.New(appserver.Dependencies{
		Logger:      zap.NewNop(),
		Links:       svc,
		RecentLimit: 10,
	})
	return srv.App(), repo
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func get(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func createLink(t *testing.T, app *fiber.App, form url.Values) string {
	t.Helper()
	resp := postForm(t, app, "/", form)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302 after create, got %d", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if !strings.HasPrefix(loc, "/?created=") {
		t.Fatalf("expected redirect to /?created=<code>, got %q", loc)
	}
	code, err := url.QueryUnescape(strings.TrimPrefix(loc, "/?created="))
	if err != nil {
		t.Fatalf("unescape code: %v", err)
	}
	return code
}

func TestCreateRedirectPreviewFlow(t *testing.T) {
	app, repo := newTestApp(t)

	code := createLink(t, app, url.Values{"long_url": {"https://example.com"}})
	if len(code) != service.DefaultCodeLength {
		t.Fatalf("expected generated code of length %d, got %q", service.DefaultCodeLength, code)
	}

	// Landing page shows the fully-qualified short URL for the new code.
	resp := get(t, app, "/?created="+code)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from landing page, got %d", resp.StatusCode)
	}
	if html := body(t, resp); !strings.Contains(html, "http://example.com/"+code) {
		t.Fatalf("expected landing page to show the short URL for %q", code)
	}

	// Redirect increments the click counter.
	resp = get(t, app, "/"+code)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302 redirect, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "https://example.com" {
		t.Fatalf("expected Location https://example.com, got %q", loc)
	}
	if clicks := repo.clicks(t, code); clicks != 1 {
		t.Fatalf("expected 1 click after redirect, got %d", clicks)
	}

	// Preview shows the count without bumping it.
	resp = get(t, app, "/"+code+"+")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from preview, got %d", resp.StatusCode)
	}
	if html := body(t, resp); !strings.Contains(html, "Clicks: 1") || !strings.Contains(html, "https://example.com") {
		t.Fatal("expected preview page with destination and click count")
	}
	if clicks := repo.clicks(t, code); clicks != 1 {
		t.Fatalf("expected preview to leave clicks at 1, got %d", clicks)
	}
}

func TestCreate_CustomCode(t *testing.T) {
	app, _ := newTestApp(t)

	code := createLink(t, app, url.Values{
		"long_url":    {"https://example.com"},
		"custom_code": {"mylink"},
	})
	if code != "mylink" {
		t.Fatalf("expected custom code, got %q", code)
	}

	resp := get(t, app, "/mylink")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302 for custom code, got %d", resp.StatusCode)
	}
}

func TestCreate_DuplicateCustomCode(t *testing.T) {
	app, repo := newTestApp(t)

	createLink(t, app, url.Values{
		"long_url":    {"https://first.example"},
		"custom_code": {"taken"},
	})

	resp := postForm(t, app, "/", url.Values{
		"long_url":    {"https://second.example"},
		"custom_code": {"taken"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected inline error page, got %d", resp.StatusCode)
	}
	if html := body(t, resp); !strings.Contains(html, "Custom code already exists.") {
		t.Fatal("expected duplicate-code error message")
	}

	// The failed attempt must not have replaced the original target.
	link, err := repo.GetByCode(context.Background(), "taken")
	if err != nil {
		t.Fatalf("GetByCode returned error: %v", err)
	}
	if link.LongURL != "https://first.example" {
		t.Fatalf("expected original link untouched, got %q", link.LongURL)
	}
}

func TestCreate_MissingLongURL(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postForm(t, app, "/", url.Values{"custom_code": {"whatever"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing long_url, got %d", resp.StatusCode)
	}
	if html := body(t, resp); !strings.Contains(html, "A long URL is required.") {
		t.Fatal("expected validation error message")
	}
}

func TestCreate_CustomCodeTooLong(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postForm(t, app, "/", url.Values{
		"long_url":    {"https://example.com"},
		"custom_code": {strings.Repeat("x", 65)},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for over-long custom code, got %d", resp.StatusCode)
	}
	if html := body(t, resp); !strings.Contains(html, "Custom code is too long") {
		t.Fatal("expected custom-code length error message, not a date error")
	}
}

func TestCreate_BadExpirationDate(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postForm(t, app, "/", url.Values{
		"long_url":        {"https://example.com"},
		"expiration_date": {"not-a-date"},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed expiration date, got %d", resp.StatusCode)
	}
	if html := body(t, resp); !strings.Contains(html, "Expiration date must be a valid date") {
		t.Fatal("expected expiration-date error message")
	}
}

func TestResolve_NotFound(t *testing.T) {
	app, _ := newTestApp(t)

	resp := get(t, app, "/nosuchcode")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if got := body(t, resp); got != "URL not found" {
		t.Fatalf("expected plain 'URL not found' body, got %q", got)
	}

	resp = get(t, app, "/nosuchcode+")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for preview of unknown code, got %d", resp.StatusCode)
	}
}

func TestDeleteFlow(t *testing.T) {
	app, _ := newTestApp(t)

	code := createLink(t, app, url.Values{"long_url": {"https://example.com"}})

	resp := postForm(t, app, "/delete", url.Values{"short_code": {code}})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302 after delete, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Fatalf("expected redirect to /, got %q", loc)
	}

	resp = get(t, app, "/"+code)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected deleted link to 404, got %d", resp.StatusCode)
	}

	// Deleting a code that never existed still redirects home.
	resp = postForm(t, app, "/delete", url.Values{"short_code": {"ghost"}})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected idempotent delete redirect, got %d", resp.StatusCode)
	}
}

func TestExpiredLinkIsSwept(t *testing.T) {
	app, _ := newTestApp(t)

	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	code := createLink(t, app, url.Values{
		"long_url":        {"https://example.com"},
		"expiration_date": {yesterday},
	})

	// The sweep runs before resolution, so the expired link is already gone.
	resp := get(t, app, "/"+code)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected expired link to 404, got %d", resp.StatusCode)
	}

	resp = get(t, app, "/")
	if html := body(t, resp); strings.Contains(html, ">"+code+"<") {
		t.Fatal("expected expired link to be absent from history")
	}
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t)

	resp := get(t, app, "/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", resp.StatusCode)
	}
	if got := body(t, resp); !strings.Contains(got, `"status":"ok"`) {
		t.Fatalf("expected ok status, got %q", got)
	}
}
