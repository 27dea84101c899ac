package test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kilianp07/manmonths/api/runs"
	"github.com/kilianp07/manmonths/app"
	"github.com/kilianp07/manmonths/config"
	"github.com/kilianp07/manmonths/core/factory"
	"github.com/kilianp07/manmonths/core/history"
	"github.com/kilianp07/manmonths/infra/logger"
	"github.com/kilianp07/manmonths/infra/metrics"
	"github.com/kilianp07/manmonths/infra/render"
	"github.com/kilianp07/manmonths/test/util"
)

func TestPipelineWritesOutputsAndHistory(t *testing.T) {
	dir := t.TempDir()
	input, err := util.WriteProjectsCSV(dir, "projects.csv", [][2]string{
		{"2023", "3"}, {"1/2023-2/2023", "2"}, {"2024", "11"}, {"1/2024", "1"},
	})
	require.NoError(t, err)

	cfg := config.Default()
	cfg.History = history.Config{Backend: history.BackendJSONL, Path: filepath.Join(dir, "runs.jsonl")}
	cfg.Output = config.OutputConfig{
		Dir:     filepath.Join(dir, "out"),
		Formats: []factory.ModuleConfig{{Type: "xlsx"}, {Type: "csv"}},
	}
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	svc, err := app.New(cfg, app.WithMetricsSink(sink), app.WithLogger(logger.NopLogger{}))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	ctx := context.Background()
	short, err := svc.Run(ctx, app.Request{Input: input})
	require.NoError(t, err)
	assert.Equal(t, 1, short.Report.Unallocated)
	require.Len(t, short.Outputs, 2)
	for _, p := range short.Outputs {
		_, err := os.Stat(p)
		require.NoError(t, err)
	}

	xlsxPath := filepath.Join(cfg.Output.Dir, render.OutputName(input, ".xlsx"))
	wb, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	assert.Contains(t, wb.GetSheetList(), render.SourceSheet)
	assert.Contains(t, wb.GetSheetList(), render.DefaultAnalysisSheet)
	require.NoError(t, wb.Close())

	full, err := svc.Run(ctx, app.Request{Input: input, Capacity: 20, Formats: []string{"csv"}})
	require.NoError(t, err)
	assert.Equal(t, 0, full.Report.Unallocated)

	srv := httptest.NewServer(metrics.NewMux(metrics.Route{
		Pattern: runs.Path,
		Handler: runs.NewHandler(svc.Store(), "secret"),
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+runs.Path+"?shortfall=true", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var recs []history.RunRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&recs))
	require.Len(t, recs, 1)
	assert.Equal(t, short.RunID, recs[0].ID)
	assert.Equal(t, 11, recs[0].Capacity)

	all, err := svc.Store().Query(ctx, history.Query{Source: "projects.csv"})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
