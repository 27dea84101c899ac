package metrics

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/manmonths/core/metrics"
	"github.com/kilianp07/manmonths/infra/logger"
)

// InfluxSink writes allocation runs to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes one allocation_run point followed by an allocation_year
// point per calendar year, in ascending year order.
func (s *InfluxSink) RecordRun(ev coremetrics.RunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("allocation_run").
		AddTag("run_id", ev.RunID).
		AddTag("source", ev.Source).
		AddField("capacity", ev.Capacity).
		AddField("projects", ev.Projects).
		AddField("requested", ev.Requested).
		AddField("allocated", ev.Allocated).
		AddField("unallocated", ev.Unallocated).
		AddField("shortfalls", ev.Shortfalls).
		AddField("duration_ms", ev.Duration.Milliseconds()).
		SetTime(ev.Time)
	if err := s.writeAPI.WritePoint(ctx, p); err != nil {
		return err
	}
	for _, year := range sortedYears(ev.YearTotals) {
		total := ev.YearTotals[year]
		yp := write.NewPointWithMeasurement("allocation_year").
			AddTag("run_id", ev.RunID).
			AddTag("year", strconv.Itoa(year)).
			AddField("total", total).
			AddField("at_capacity", total >= ev.Capacity).
			SetTime(ev.Time)
		if err := s.writeAPI.WritePoint(ctx, yp); err != nil {
			return err
		}
	}
	return nil
}

// RecordFailure writes an allocation_failure point.
func (s *InfluxSink) RecordFailure(ev coremetrics.LoadFailure) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("allocation_failure").
		AddTag("source", ev.Source).
		AddTag("kind", ev.Kind).
		AddField("count", 1).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func sortedYears(m map[int]int) []int {
	years := make([]int, 0, len(m))
	for y := range m {
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}
