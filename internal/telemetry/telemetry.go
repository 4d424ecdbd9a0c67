// Package telemetry exports recording and transcription counters in the
// Prometheus text format.
package telemetry

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/rahulvramesh/vibeco/internal/controller"
	"github.com/rahulvramesh/vibeco/internal/errs"
)

const meterName = "github.com/rahulvramesh/vibeco"

type Telemetry struct {
	provider *sdkmetric.MeterProvider
	handler  http.Handler

	recordings     metric.Int64Counter
	recordedTime   metric.Float64Counter
	failures       metric.Int64Counter
	transcriptions metric.Int64Counter
	uploadedBytes  metric.Int64Counter
}

// New builds a meter provider backed by its own Prometheus registry.
// dropped, when non-nil, is sampled for the dropped-block counter and must
// never decrease.
func New(dropped func() int64) (*Telemetry, error) {
	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, err
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter(meterName)

	t := &Telemetry{
		provider: provider,
		handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}

	if t.recordings, err = meter.Int64Counter("vibeco.recordings",
		metric.WithDescription("Completed recordings")); err != nil {
		return nil, err
	}
	if t.recordedTime, err = meter.Float64Counter("vibeco.recorded",
		metric.WithDescription("Recorded audio"), metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if t.failures, err = meter.Int64Counter("vibeco.failures",
		metric.WithDescription("Failed recordings and transcriptions by error kind")); err != nil {
		return nil, err
	}
	if t.transcriptions, err = meter.Int64Counter("vibeco.transcriptions",
		metric.WithDescription("Finished transcriptions by outcome")); err != nil {
		return nil, err
	}
	if t.uploadedBytes, err = meter.Int64Counter("vibeco.uploaded",
		metric.WithDescription("Bytes sent to the transcription endpoint"), metric.WithUnit("By")); err != nil {
		return nil, err
	}

	if dropped != nil {
		_, err = meter.Int64ObservableCounter("vibeco.dropped_blocks",
			metric.WithDescription("Audio blocks dropped because the writer fell behind"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				o.Observe(dropped())
				return nil
			}))
		if err != nil {
			return nil, err
		}
	}

	return t, nil
}

func (t *Telemetry) Handler() http.Handler {
	return t.handler
}

// Observe records one controller event.
func (t *Telemetry) Observe(ctx context.Context, ev controller.Event) {
	switch ev.Type {
	case controller.RecordingStopped:
		t.recordings.Add(ctx, 1)
		t.recordedTime.Add(ctx, ev.Duration.Seconds())
	case controller.RecordingFailed:
		t.failures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("stage", "recording"),
			attribute.String("kind", errs.KindOf(ev.Err).String())))
	case controller.TranscriptionCompleted:
		t.transcriptions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "ok")))
	case controller.TranscriptionFailed:
		t.transcriptions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "error")))
		t.failures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("stage", "transcription"),
			attribute.String("kind", errs.KindOf(ev.Err).String())))
	case controller.UploadProgress:
		// Only the final progress report carries the full size.
		if ev.Total > 0 && ev.Sent == ev.Total {
			t.uploadedBytes.Add(ctx, ev.Total)
		}
	}
}

// Consume observes events until the channel closes or ctx ends.
func (t *Telemetry) Consume(ctx context.Context, events <-chan controller.Event) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			t.Observe(ctx, ev)
		case <-ctx.Done():
			return
		}
	}
}

// Serve exposes /metrics on bind until ctx is cancelled.
func (t *Telemetry) Serve(ctx context.Context, bind string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", t.handler)
	srv := &http.Server{
		Addr:              bind,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", bind)
	if err != nil {
		return err
	}
	log.Printf("Telemetry: serving metrics on http://%s/metrics", ln.Addr())

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (t *Telemetry) Shutdown(ctx context.Context) error {
	return t.provider.Shutdown(ctx)
}
