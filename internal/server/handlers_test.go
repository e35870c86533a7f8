package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/claude/onerm/internal/calc"
	"github.com/claude/onerm/internal/render"
	"github.com/claude/onerm/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testClient wraps an httptest server and a cookie-carrying client, so every
// request from one client belongs to one session.
type testClient struct {
	t   *testing.T
	ts  *httptest.Server
	cli *http.Client
}

func newTestServer(t *testing.T, kv storage.KV, opts Options) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(New(kv, opts, discardLogger()))
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T, ts *httptest.Server) *testClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &testClient{t: t, ts: ts, cli: &http.Client{Jar: jar}}
}

func (c *testClient) do(method, path, contentType string, body io.Reader) *http.Response {
	c.t.Helper()
	req, err := http.NewRequest(method, c.ts.URL+path, body)
	if err != nil {
		c.t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.cli.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	c.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (c *testClient) event(ev calc.Event, value string) (*http.Response, render.View) {
	c.t.Helper()
	body, _ := json.Marshal(eventRequest{Value: value})
	resp := c.do(http.MethodPost, "/api/v1/events/"+string(ev), "application/json", bytes.NewReader(body))
	var v render.View
	if resp.StatusCode == http.StatusOK {
		decode(c.t, resp, &v)
	}
	return resp, v
}

func (c *testClient) fill(e calc.Exercise, weight, reps string) render.View {
	c.t.Helper()
	c.event(calc.ExerciseChanged, string(e))
	c.event(calc.WeightChanged, weight)
	c.event(calc.RepsChanged, reps)
	_, v := c.event(calc.SubmitRequested, "")
	return v
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode error: %v", err)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

// TestPageDefaults verifies a first visit renders the Korean page with an
// empty form and issues a session cookie.
func TestPageDefaults(t *testing.T) {
	c := newClient(t, newTestServer(t, storage.NewMemory(), Options{}))
	resp := c.do(http.MethodGet, "/", "", nil)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Errorf("content-type = %q", got)
	}
	body := readBody(t, resp)
	for _, want := range []string{`lang="ko"`, "<title>1RM 계산기 - 최대 중량 쉽게 계산</title>", "벤치프레스", `name="reps"`} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(body, `class="result"`) {
		t.Error("result shown on a fresh page")
	}

	var found bool
	for _, ck := range resp.Cookies() {
		found = found || ck.Name == sessionCookie
	}
	if !found {
		t.Error("no session cookie issued")
	}
}

// TestEventFlow walks the select, type, submit sequence over the JSON API.
func TestEventFlow(t *testing.T) {
	c := newClient(t, newTestServer(t, storage.NewMemory(), Options{DefaultLocale: calc.English}))

	v := c.fill(calc.BenchPress, "100", "5")
	if v.Result == nil {
		t.Fatalf("no result, error = %q", v.Error)
	}
	if v.Result.Value != 117 {
		t.Errorf("1RM = %d, want 117", v.Result.Value)
	}
	if v.Result.OneRepMax != "Estimated 1RM: 117kg" {
		t.Errorf("result text = %q", v.Result.OneRepMax)
	}

	// editing an input hides the result
	_, v = c.event(calc.WeightChanged, "110")
	if v.Result != nil {
		t.Error("result still visible after weight edit")
	}

	// locale switch re-renders without touching inputs
	_, v = c.event(calc.LocaleChanged, "ja")
	if v.Locale != calc.Japanese || v.Form.WeightValue != "110" {
		t.Errorf("after locale switch: locale=%q weight=%q", v.Locale, v.Form.WeightValue)
	}
}

func TestEventValidation(t *testing.T) {
	c := newClient(t, newTestServer(t, storage.NewMemory(), Options{DefaultLocale: calc.English}))

	resp, v := c.event(calc.SubmitRequested, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if v.ErrorKind != "missing_exercise" || v.Error != "Please select an exercise." {
		t.Errorf("error = %q (%s)", v.Error, v.ErrorKind)
	}

	v = c.fill(calc.Squat, "-5", "5")
	if v.ErrorKind != "invalid_weight" {
		t.Errorf("error kind = %q, want invalid_weight", v.ErrorKind)
	}

	if resp, _ := c.event(calc.ExerciseChanged, "curl"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown exercise status = %d, want 400", resp.StatusCode)
	}
	if resp, _ := c.event("teleport", ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown event status = %d, want 404", resp.StatusCode)
	}
	if resp, _ := c.event(calc.CarouselMoved, "sideways"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad carousel direction status = %d, want 400", resp.StatusCode)
	}
}

func TestCarouselEvents(t *testing.T) {
	c := newClient(t, newTestServer(t, storage.NewMemory(), Options{}))

	_, v := c.event(calc.CarouselMoved, calc.CarouselPrev)
	if v.Selected != calc.Deadlift {
		t.Errorf("prev from start selected %q, want deadlift", v.Selected)
	}
	for _, item := range v.Carousel {
		if item.Selected != (item.Exercise == calc.Deadlift) {
			t.Errorf("carousel item %q selected = %v", item.Exercise, item.Selected)
		}
	}
	_, v = c.event(calc.CarouselMoved, calc.CarouselNext)
	if v.Selected != calc.BenchPress {
		t.Errorf("next wraps to %q, want bench_press", v.Selected)
	}
}

// TestSessionRestoredFromStorage verifies a restarted server rebuilds the
// calculator from what the session saved, without the result.
func TestSessionRestoredFromStorage(t *testing.T) {
	kv := storage.NewMemory()
	first := newTestServer(t, kv, Options{})
	c := newClient(t, first)
	c.fill(calc.Deadlift, "180", "3")
	c.event(calc.LocaleChanged, "en")

	// same cookie jar, new server instance over the same storage
	c.ts = newTestServer(t, kv, Options{})
	resp := c.do(http.MethodGet, "/api/v1/state", "", nil)
	var v render.View
	decode(t, resp, &v)

	if v.Selected != calc.Deadlift || v.Form.WeightValue != "180" {
		t.Errorf("restored selection = %q weight = %q", v.Selected, v.Form.WeightValue)
	}
	if v.Locale != calc.English {
		t.Errorf("restored locale = %q, want en", v.Locale)
	}
	if v.Result != nil {
		t.Error("result restored; only inputs are persisted")
	}
}

// TestQueryAutoSubmit verifies a shared link opens with the result shown.
func TestQueryAutoSubmit(t *testing.T) {
	c := newClient(t, newTestServer(t, storage.NewMemory(), Options{DefaultLocale: calc.English}))
	body := readBody(t, c.do(http.MethodGet, "/?exercise=squat&weight=100&reps=5", "", nil))

	if !strings.Contains(body, "Estimated 1RM: 117kg") {
		t.Errorf("page does not show the auto-submitted result")
	}
	if !strings.Contains(body, "exercise=squat&amp;reps=5&amp;weight=100") {
		t.Errorf("page does not carry the share link")
	}
}

// TestFormFallback drives the calculator through plain form posts.
func TestFormFallback(t *testing.T) {
	c := newClient(t, newTestServer(t, storage.NewMemory(), Options{DefaultLocale: calc.English}))

	form := url.Values{"exercise": {"squat"}, "weight": {"140"}, "reps": {"3"}, "action": {"submit"}}
	resp := c.do(http.MethodPost, "/form", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if resp.Request.URL.Path != "/" {
		t.Errorf("redirected to %q, want /", resp.Request.URL.Path)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Estimated 1RM: 154kg") {
		t.Errorf("result missing after form submit")
	}

	form = url.Values{"action": {"locale"}, "lang": {"ja"}}
	body = readBody(t, c.do(http.MethodPost, "/form", "application/x-www-form-urlencoded", strings.NewReader(form.Encode())))
	if !strings.Contains(body, `lang="ja"`) {
		t.Errorf("locale not switched by form")
	}
}

func TestShareChain(t *testing.T) {
	base, _ := url.Parse("https://lift.example.com/1rm/")
	c := newClient(t, newTestServer(t, storage.NewMemory(), Options{BaseURL: base, DefaultLocale: calc.English}))

	resp := c.do(http.MethodPost, "/api/v1/share", "application/json", strings.NewReader(`{}`))
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("share without result status = %d, want 409", resp.StatusCode)
	}

	c.fill(calc.BenchPress, "100", "5")
	wantLink := "https://lift.example.com/1rm/?exercise=bench_press&reps=5&weight=100"

	tests := []struct {
		name     string
		body     string
		wantKind string
	}{
		{"native share sheet", `{"native":true}`, "shared"},
		{"clipboard", `{}`, "link_copied"},
		{"nothing available", `{"clipboard":false}`, "share_failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := c.do(http.MethodPost, "/api/v1/share", "application/json", strings.NewReader(tt.body))
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			var got shareResponse
			decode(t, resp, &got)
			if string(got.Status.Kind) != tt.wantKind {
				t.Errorf("kind = %q, want %q", got.Status.Kind, tt.wantKind)
			}
			switch tt.wantKind {
			case "shared":
				if got.Payload == nil || got.Payload.URL != wantLink {
					t.Errorf("payload = %+v, want url %q", got.Payload, wantLink)
				}
			case "link_copied":
				if got.Link != wantLink {
					t.Errorf("link = %q, want %q", got.Link, wantLink)
				}
			}
		})
	}

	// the banner follows the last outcome and can be dismissed
	resp = c.do(http.MethodGet, "/api/v1/state", "", nil)
	var v render.View
	decode(t, resp, &v)
	if !v.StatusError || v.Status == "" {
		t.Errorf("status = %q error=%v, want the share failure banner", v.Status, v.StatusError)
	}
	c.do(http.MethodDelete, "/api/v1/status", "", nil)
	resp = c.do(http.MethodGet, "/api/v1/state", "", nil)
	v = render.View{}
	decode(t, resp, &v)
	if v.Status != "" {
		t.Errorf("status after dismiss = %q", v.Status)
	}
}

func TestExport(t *testing.T) {
	c := newClient(t, newTestServer(t, storage.NewMemory(), Options{DefaultLocale: calc.English}))

	if resp := c.do(http.MethodGet, "/api/v1/export/pdf", "", nil); resp.StatusCode != http.StatusConflict {
		t.Errorf("export without result status = %d, want 409", resp.StatusCode)
	}

	c.fill(calc.Deadlift, "200", "3")

	resp := c.do(http.MethodGet, "/api/v1/export/pdf", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pdf status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "application/pdf" {
		t.Errorf("content-type = %q", got)
	}
	if got := resp.Header.Get("Content-Disposition"); !strings.Contains(got, "1rm-deadlift-220.pdf") {
		t.Errorf("content-disposition = %q", got)
	}
	if body := readBody(t, resp); !strings.HasPrefix(body, "%PDF-") {
		t.Error("body is not a PDF")
	}

	resp = c.do(http.MethodGet, "/api/v1/export/xlsx", "", nil)
	data, _ := io.ReadAll(resp.Body)
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("xlsx export unreadable: %v", err)
	}
	wb.Close()

	if resp := c.do(http.MethodGet, "/api/v1/export/png", "", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown format status = %d, want 404", resp.StatusCode)
	}
}

func TestEstimateEndpoint(t *testing.T) {
	c := newClient(t, newTestServer(t, storage.NewMemory(), Options{}))

	resp := c.do(http.MethodGet, "/api/v1/estimate?exercise=deadlift&weight=200&reps=3&lang=en", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var got estimateResponse
	decode(t, resp, &got)
	if got.Result == nil || got.Result.OneRepMax != 220 {
		t.Fatalf("result = %+v, want 220", got.Result)
	}
	if got.Text != "Estimated 1RM: 220kg" {
		t.Errorf("text = %q", got.Text)
	}

	resp = c.do(http.MethodGet, "/api/v1/estimate?exercise=squat&weight=100&reps=11", "", nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	got = estimateResponse{}
	decode(t, resp, &got)
	if got.ErrorKind != "invalid_reps" || got.Error != "횟수는 1~10 중에서 선택해주세요." {
		t.Errorf("error = %q (%s)", got.Error, got.ErrorKind)
	}
}

func TestBatchEndpoint(t *testing.T) {
	c := newClient(t, newTestServer(t, storage.NewMemory(), Options{}))

	f := excelize.NewFile()
	rows := [][]any{{"exercise", "weight", "reps"}, {"bench_press", 100, 5}, {"squat", 0, 5}}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	resp := c.do(http.MethodPost, "/api/v1/batch", "application/octet-stream", buf)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", resp.StatusCode, readBody(t, resp))
	}
	var report struct {
		Count  int `json:"count"`
		Failed int `json:"failed"`
	}
	decode(t, resp, &report)
	if report.Count != 2 || report.Failed != 1 {
		t.Errorf("report = %+v, want 2 rows with 1 failure", report)
	}

	resp = c.do(http.MethodPost, "/api/v1/batch", "application/octet-stream", strings.NewReader("not a workbook"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("garbage upload status = %d, want 400", resp.StatusCode)
	}
}

func TestThemeToggle(t *testing.T) {
	c := newClient(t, newTestServer(t, storage.NewMemory(), Options{}))

	resp := c.do(http.MethodPost, "/api/v1/theme/toggle", "", nil)
	var v render.View
	decode(t, resp, &v)
	if v.Theme != "dark" || v.ThemeIcon != "☀️" {
		t.Errorf("after toggle theme = %q icon = %q", v.Theme, v.ThemeIcon)
	}

	resp = c.do(http.MethodGet, "/api/v1/state", "", nil)
	v = render.View{}
	decode(t, resp, &v)
	if v.Theme != "dark" {
		t.Errorf("theme not persisted: %q", v.Theme)
	}
}

func TestPrecache(t *testing.T) {
	c := newClient(t, newTestServer(t, storage.NewMemory(), Options{}))
	var got struct {
		Assets []string `json:"assets"`
	}
	decode(t, c.do(http.MethodGet, "/api/v1/precache", "", nil), &got)
	if len(got.Assets) != len(render.PrecacheAssets) || got.Assets[0] != "/" {
		t.Errorf("assets = %v", got.Assets)
	}
}

// TestShareRateLimited verifies artifact routes are throttled per client.
func TestShareRateLimited(t *testing.T) {
	c := newClient(t, newTestServer(t, storage.NewMemory(), Options{ShareLimit: 0.001, ShareBurst: 1}))
	c.fill(calc.Squat, "100", "5")

	if resp := c.do(http.MethodPost, "/api/v1/share", "application/json", strings.NewReader(`{}`)); resp.StatusCode != http.StatusOK {
		t.Fatalf("first share status = %d", resp.StatusCode)
	}
	if resp := c.do(http.MethodPost, "/api/v1/share", "application/json", strings.NewReader(`{}`)); resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("second share status = %d, want 429", resp.StatusCode)
	}
}

// TestFormEnterSubmits verifies Enter in a field, which posts the form's
// first submit button, runs the calculation instead of moving the carousel.
func TestFormEnterSubmits(t *testing.T) {
	c := newClient(t, newTestServer(t, storage.NewMemory(), Options{DefaultLocale: calc.English}))

	body := readBody(t, c.do(http.MethodGet, "/", "", nil))
	form := body[strings.Index(body, `id="calculator"`):]
	first := form[strings.Index(form, `type="submit"`):]
	if !strings.HasPrefix(first, `type="submit" name="action" value="submit"`) {
		t.Errorf("first submit button = %.60q, want the submit action", first)
	}

	c.fill(calc.Squat, "100", "5")

	// a card click posts fields without an action
	post := func(form url.Values) render.View {
		c.do(http.MethodPost, "/form", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
		var v render.View
		decode(t, c.do(http.MethodGet, "/api/v1/state", "", nil), &v)
		return v
	}
	v := post(url.Values{"weight": {"110"}})
	if v.Selected != calc.Squat {
		t.Errorf("selected = %q, want squat", v.Selected)
	}
	if v.Result != nil {
		t.Error("result visible after an edit without submit")
	}

	v = post(url.Values{"weight": {"110"}, "action": {"submit"}})
	if v.Result == nil || v.Result.Value != 128 {
		t.Fatalf("result = %+v, want 128", v.Result)
	}
	if v.Selected != calc.Squat {
		t.Errorf("selected = %q, want squat", v.Selected)
	}
}

// TestShareOutcomeReport verifies the client can replace the handed-over
// outcome when its share sheet or clipboard fails.
func TestShareOutcomeReport(t *testing.T) {
	c := newClient(t, newTestServer(t, storage.NewMemory(), Options{DefaultLocale: calc.English}))
	c.fill(calc.BenchPress, "100", "5")

	var got shareResponse
	decode(t, c.do(http.MethodPost, "/api/v1/share", "application/json", strings.NewReader(`{"native":true}`)), &got)
	if got.Status.Kind != "shared" {
		t.Fatalf("kind = %q, want shared", got.Status.Kind)
	}

	tests := []struct {
		body       string
		wantStatus int
		wantError  bool
	}{
		{`{"kind":"link_copied"}`, http.StatusOK, false},
		{`{"kind":"share_failed"}`, http.StatusOK, true},
		{`{"kind":"exported"}`, http.StatusBadRequest, true},
		{`not json`, http.StatusBadRequest, true},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			resp := c.do(http.MethodPost, "/api/v1/status", "application/json", strings.NewReader(tt.body))
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			var v render.View
			decode(t, c.do(http.MethodGet, "/api/v1/state", "", nil), &v)
			if v.StatusError != tt.wantError {
				t.Errorf("status error = %v (%q), want %v", v.StatusError, v.Status, tt.wantError)
			}
		})
	}
}
