package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"seotrack/internal/models"
	"seotrack/internal/queue"
)

type fakeJobs struct {
	err      error
	lastKind models.JobKind
	lastIDs  []int64
	lastArg  int
}

func (f *fakeJobs) job(kind models.JobKind) (queue.Job, error) {
	f.lastKind = kind
	if f.err != nil {
		return queue.Job{}, f.err
	}
	return queue.Job{ID: uuid.New(), Kind: kind, EnqueuedAt: time.Now()}, nil
}

func (f *fakeJobs) EnqueueCollection(ctx context.Context, keywordID int64) (queue.Job, error) {
	f.lastIDs = []int64{keywordID}
	return f.job(models.KindCollection)
}

func (f *fakeJobs) EnqueueAnalysis(ctx context.Context, keywordIDs []int64, target int) (queue.Job, error) {
	f.lastIDs, f.lastArg = keywordIDs, target
	return f.job(models.KindAnalysis)
}

func (f *fakeJobs) EnqueueForecast(ctx context.Context, keywordID int64, horizonDays int) (queue.Job, error) {
	f.lastIDs, f.lastArg = []int64{keywordID}, horizonDays
	return f.job(models.KindForecast)
}

type fakeResults map[string]*models.JobResult

func (f fakeResults) Get(jobID string) (*models.JobResult, error) {
	if res, ok := f[jobID]; ok {
		return res, nil
	}
	return nil, queue.ErrResultNotFound
}

func newTestApp(jobs *fakeJobs, results fakeResults) *fiber.App {
	h := NewJobHandler(jobs, results)
	app := fiber.New()
	app.Post("/api/jobs/collection", h.Collection)
	app.Post("/api/jobs/analysis", h.Analysis)
	app.Post("/api/jobs/forecast", h.Forecast)
	app.Get("/api/jobs/:id", h.Get)
	return app
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("%s %s: invalid JSON %q: %v", method, path, raw, err)
	}
	return resp.StatusCode, env
}

func TestJobHandler_Enqueue(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     string
		wantKind models.JobKind
		wantArg  int
	}{
		{"collection", "/api/jobs/collection", `{"keyword_id": 7}`, models.KindCollection, 0},
		{"analysis default target", "/api/jobs/analysis", `{"keyword_ids": [1, 2, 3]}`, models.KindAnalysis, 5},
		{"analysis explicit target", "/api/jobs/analysis", `{"keyword_ids": [1, 2], "target_cluster_count": 2}`, models.KindAnalysis, 2},
		{"forecast default horizon", "/api/jobs/forecast", `{"keyword_id": 7}`, models.KindForecast, 30},
		{"forecast explicit horizon", "/api/jobs/forecast", `{"keyword_id": 7, "horizon_days": 14}`, models.KindForecast, 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := &fakeJobs{}
			status, env := do(t, newTestApp(jobs, fakeResults{}), "POST", tt.path, tt.body)

			if status != fiber.StatusAccepted {
				t.Fatalf("status = %d, want 202 (%s)", status, env.Error)
			}
			var resp models.EnqueueResponse
			if err := json.Unmarshal(env.Data, &resp); err != nil {
				t.Fatalf("decode data: %v", err)
			}
			if resp.JobID == "" || resp.Kind != tt.wantKind {
				t.Errorf("response = %+v", resp)
			}
			if jobs.lastArg != tt.wantArg {
				t.Errorf("enqueued arg = %d, want %d", jobs.lastArg, tt.wantArg)
			}
		})
	}
}

func TestJobHandler_EnqueueInvalid(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{"not json", "/api/jobs/collection", `keyword=1`},
		{"missing keyword", "/api/jobs/collection", `{}`},
		{"empty ids", "/api/jobs/analysis", `{"keyword_ids": []}`},
		{"bad horizon", "/api/jobs/forecast", `{"keyword_id": 1, "horizon_days": -2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := &fakeJobs{}
			status, env := do(t, newTestApp(jobs, fakeResults{}), "POST", tt.path, tt.body)
			if status != fiber.StatusBadRequest || env.Status != "error" {
				t.Errorf("status = %d %q, want 400 error", status, env.Status)
			}
			if jobs.lastKind != "" {
				t.Errorf("job enqueued for invalid request")
			}
		})
	}
}

func TestJobHandler_EnqueueFailure(t *testing.T) {
	jobs := &fakeJobs{err: errors.New("redis down")}
	status, _ := do(t, newTestApp(jobs, fakeResults{}), "POST", "/api/jobs/collection", `{"keyword_id": 1}`)
	if status != fiber.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", status)
	}
}

func TestJobHandler_Get(t *testing.T) {
	done := uuid.New().String()
	pending := uuid.New().String()
	results := fakeResults{
		done:    {JobID: done, Kind: models.KindForecast, Status: models.JobWarning, Message: "not enough data for forecast"},
		pending: {JobID: pending, Kind: models.KindCollection, Status: models.JobPending},
	}
	app := newTestApp(&fakeJobs{}, results)

	status, env := do(t, app, "GET", "/api/jobs/"+done, "")
	if status != fiber.StatusOK {
		t.Fatalf("finished job status = %d, want 200", status)
	}
	var res models.JobResult
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if res.Status != models.JobWarning || res.Message != "not enough data for forecast" {
		t.Errorf("result = %+v", res)
	}

	status, env = do(t, app, "GET", "/api/jobs/"+pending, "")
	if status != fiber.StatusAccepted {
		t.Errorf("pending job status = %d, want 202", status)
	}

	status, _ = do(t, app, "GET", "/api/jobs/"+uuid.New().String(), "")
	if status != fiber.StatusNotFound {
		t.Errorf("unknown job status = %d, want 404", status)
	}

	status, _ = do(t, app, "GET", "/api/jobs/not-a-uuid", "")
	if status != fiber.StatusBadRequest {
		t.Errorf("invalid id status = %d, want 400", status)
	}
}
