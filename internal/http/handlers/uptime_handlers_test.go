package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"stationuptime/internal/models"
	"stationuptime/internal/service"
)

type fakeUptimeService struct {
	computeResults []models.StationUptime
	computeErr     error
	percent        int
	percentErr     error
	latest         []models.StationUptime
	latestErr      error
	liveResults    []models.StationUptime
	liveErr        error
}

func (f *fakeUptimeService) ComputeFromReader(_ context.Context, r io.Reader) ([]models.StationUptime, error) {
	_, _ = io.ReadAll(r)
	return f.computeResults, f.computeErr
}

func (f *fakeUptimeService) StationPercent(context.Context, uint32) (int, error) {
	return f.percent, f.percentErr
}

func (f *fakeUptimeService) LatestRun(context.Context) ([]models.StationUptime, time.Time, error) {
	return f.latest, time.Unix(1700000000, 0), f.latestErr
}

func (f *fakeUptimeService) ComputeLive(context.Context) ([]models.StationUptime, error) {
	return f.liveResults, f.liveErr
}

func TestComputeHandlerSuccess(t *testing.T) {
	svc := &fakeUptimeService{
		computeResults: []models.StationUptime{{StationID: 0, Percent: 50}},
	}
	handler := NewComputeHandler(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/v1/uptime/compute", strings.NewReader("[Stations]\n0 1001\n"))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Stations int                    `json:"stations"`
		Results  []models.StationUptime `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Stations != 1 || payload.Results[0].Percent != 50 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestComputeHandlerBadFile(t *testing.T) {
	svc := &fakeUptimeService{computeErr: service.ErrInvalidReportFile}
	handler := NewComputeHandler(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/v1/uptime/compute", strings.NewReader("garbage"))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestStationUptimeHandler(t *testing.T) {
	svc := &fakeUptimeService{percent: 75}
	handler := NewStationUptimeHandler(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/stations/uptime?station_id=12", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload models.StationUptime
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.StationID != 12 || payload.Percent != 75 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestStationUptimeHandlerValidation(t *testing.T) {
	handler := NewStationUptimeHandler(&fakeUptimeService{}, zap.NewNop())

	cases := []string{
		"/v1/stations/uptime",
		"/v1/stations/uptime?station_id=abc",
		"/v1/stations/uptime?station_id=-1",
		"/v1/stations/uptime?station_id=4294967296",
	}
	for _, url := range cases {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, url, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", url, rec.Code)
		}
	}
}

func TestStationUptimeHandlerNotFound(t *testing.T) {
	svc := &fakeUptimeService{percentErr: service.ErrNotFound}
	handler := NewStationUptimeHandler(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/v1/stations/uptime?station_id=1", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestLatestRunHandlerNotFound(t *testing.T) {
	svc := &fakeUptimeService{latestErr: service.ErrNotFound}
	handler := NewLatestRunHandler(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/v1/uptime/latest", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestLiveUptimeHandler(t *testing.T) {
	svc := &fakeUptimeService{
		liveResults: []models.StationUptime{{StationID: 3, Percent: 100}},
	}
	handler := NewLiveUptimeHandler(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/v1/uptime/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
