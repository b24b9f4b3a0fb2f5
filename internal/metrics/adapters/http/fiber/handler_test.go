package fiber_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	httpadapter "telemetry-analytics-service/internal/metrics/adapters/http/fiber"
	"telemetry-analytics-service/internal/metrics/core/domain"
	"telemetry-analytics-service/internal/metrics/core/usecase"

	"github.com/gofiber/fiber/v2"
)

// Fake usecase implementing the interface that handler depends on.
type fakeGetReportUseCase struct {
	ExecuteFn func(ctx context.Context, in usecase.GetReportInput) (*domain.Report, error)
	lastInput usecase.GetReportInput
	called    bool
}

func (f *fakeGetReportUseCase) Execute(ctx context.Context, in usecase.GetReportInput) (*domain.Report, error) {
	f.called = true
	f.lastInput = in
	if f.ExecuteFn != nil {
		return f.ExecuteFn(ctx, in)
	}
	return nil, nil
}

func setupApp(t *testing.T, uc httpadapter.GetReportUseCase) *fiber.App {
	t.Helper()
	app := fiber.New()
	h := httpadapter.NewReportHandler(uc)
	app.Get("/report", h.GetReport)
	app.Get("/report/text", h.GetReportText)
	app.Get("/report/html", h.GetReportHTML)
	return app
}

func sampleReport() *domain.Report {
	counts := domain.NewOrdered[int]()
	counts.Set("sessions", 1)
	counts.Set("total", 1)

	adoption := domain.NewOrdered[any]()
	adoption.Set("total_unique_devices", 1)

	return &domain.Report{
		GeneratedAt: time.Date(2026, 2, 11, 6, 0, 0, 0, time.UTC),
		EventCounts: counts,
		Sections: []domain.Section{
			{Key: domain.SectionAdoption, Title: domain.SectionTitle(domain.SectionAdoption), Metrics: adoption},
			{Key: domain.SectionCrash, Title: domain.SectionTitle(domain.SectionCrash), Metrics: domain.Note("No crash data")},
		},
	}
}

func get(t *testing.T, app *fiber.App, target string) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	_ = resp.Body.Close()
	return resp, string(body)
}

// ------------------------------------------------------------
// SUCCESS
// ------------------------------------------------------------

func TestGetReport_JSON(t *testing.T) {
	uc := &fakeGetReportUseCase{
		ExecuteFn: func(ctx context.Context, in usecase.GetReportInput) (*domain.Report, error) {
			return sampleReport(), nil
		},
	}
	app := setupApp(t, uc)

	params := url.Values{}
	params.Set("since", "2026-02-01")
	params.Set("until", "2026-02-10")

	resp, body := get(t, app, "/report?"+params.Encode())

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body: %s)", resp.StatusCode, body)
	}
	if !uc.called {
		t.Fatalf("expected usecase to be called")
	}
	if uc.lastInput.Since != "2026-02-01" || uc.lastInput.Until != "2026-02-10" {
		t.Fatalf("unexpected input %+v", uc.lastInput)
	}

	want := `{"generated_at":"2026-02-11T06:00:00Z","event_counts":{"sessions":1,"total":1},` +
		`"adoption":{"total_unique_devices":1},"crash_analysis":{"note":"No crash data"}}`
	if body != want {
		t.Fatalf("unexpected body\n got: %s\nwant: %s", body, want)
	}
}

func TestGetReport_NoWindow(t *testing.T) {
	uc := &fakeGetReportUseCase{
		ExecuteFn: func(ctx context.Context, in usecase.GetReportInput) (*domain.Report, error) {
			return sampleReport(), nil
		},
	}
	app := setupApp(t, uc)

	resp, _ := get(t, app, "/report")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if uc.lastInput != (usecase.GetReportInput{}) {
		t.Fatalf("expected empty window, got %+v", uc.lastInput)
	}
}

func TestGetReport_Text(t *testing.T) {
	uc := &fakeGetReportUseCase{
		ExecuteFn: func(ctx context.Context, in usecase.GetReportInput) (*domain.Report, error) {
			return sampleReport(), nil
		},
	}
	app := setupApp(t, uc)

	resp, body := get(t, app, "/report/text")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(body, "HELIXSCREEN TELEMETRY REPORT") || !strings.Contains(body, "  No crash data") {
		t.Fatalf("unexpected text body:\n%s", body)
	}
}

func TestGetReport_HTML(t *testing.T) {
	uc := &fakeGetReportUseCase{
		ExecuteFn: func(ctx context.Context, in usecase.GetReportInput) (*domain.Report, error) {
			return sampleReport(), nil
		},
	}
	app := setupApp(t, uc)

	resp, body := get(t, app, "/report/html")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(body, "<title>HelixScreen Telemetry Report</title>") {
		t.Fatalf("expected html page, got:\n%s", body)
	}
}

// ------------------------------------------------------------
// ERRORS
// ------------------------------------------------------------

func TestGetReport_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: since must be YYYY-MM-DD", usecase.ErrInvalidWindow), http.StatusBadRequest, "invalid_window"},
		{usecase.ErrNoData, http.StatusNotFound, "no_data"},
		{errors.New("disk failure"), http.StatusInternalServerError, "internal_server_error"},
	}

	for _, tc := range cases {
		for _, path := range []string{"/report", "/report/text", "/report/html"} {
			uc := &fakeGetReportUseCase{
				ExecuteFn: func(ctx context.Context, in usecase.GetReportInput) (*domain.Report, error) {
					return nil, tc.err
				},
			}
			app := setupApp(t, uc)

			resp, body := get(t, app, path)

			if resp.StatusCode != tc.status {
				t.Fatalf("%s %v: expected status %d, got %d", path, tc.err, tc.status, resp.StatusCode)
			}
			if !strings.Contains(body, `"error":"`+tc.code+`"`) {
				t.Fatalf("%s: expected error %q, got %s", path, tc.code, body)
			}
		}
	}
}
