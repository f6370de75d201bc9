package observe

import (
	"context"
	"errors"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:   "minimal valid",
			config: Config{ServiceName: "toolguard"},
		},
		{
			name: "full valid",
			config: Config{
				ServiceName: "toolguard",
				Version:     "1.0.0",
				Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 0.5},
				Metrics:     MetricsConfig{Enabled: true, Exporter: "prometheus"},
				Logging:     LoggingConfig{Enabled: true, Level: "debug"},
			},
		},
		{
			name:    "missing service name",
			config:  Config{},
			wantErr: ErrMissingServiceName,
		},
		{
			name: "bad tracing exporter",
			config: Config{
				ServiceName: "toolguard",
				Tracing:     TracingConfig{Enabled: true, Exporter: "jaeger"},
			},
			wantErr: ErrInvalidTracingExporter,
		},
		{
			name: "sample pct above one",
			config: Config{
				ServiceName: "toolguard",
				Tracing:     TracingConfig{Enabled: true, Exporter: "none", SamplePct: 1.5},
			},
			wantErr: ErrInvalidSamplePct,
		},
		{
			name: "negative sample pct",
			config: Config{
				ServiceName: "toolguard",
				Tracing:     TracingConfig{Enabled: true, Exporter: "none", SamplePct: -0.1},
			},
			wantErr: ErrInvalidSamplePct,
		},
		{
			name: "bad metrics exporter",
			config: Config{
				ServiceName: "toolguard",
				Metrics:     MetricsConfig{Enabled: true, Exporter: "statsd"},
			},
			wantErr: ErrInvalidMetricsExporter,
		},
		{
			name: "bad log level",
			config: Config{
				ServiceName: "toolguard",
				Logging:     LoggingConfig{Enabled: true, Level: "verbose"},
			},
			wantErr: ErrInvalidLogLevel,
		},
		{
			name: "disabled subsystems skip validation",
			config: Config{
				ServiceName: "toolguard",
				Tracing:     TracingConfig{Enabled: false, Exporter: "jaeger"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewObserver_Disabled(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "toolguard"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}

	// Everything is a usable no-op.
	if obs.Tracer() == nil {
		t.Error("Tracer() = nil")
	}
	if obs.Meter() == nil {
		t.Error("Meter() = nil")
	}
	if obs.Logger() == nil {
		t.Error("Logger() = nil")
	}
	obs.Logger().Info(context.Background(), "discarded")

	if err := obs.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNewObserver_NoneExporters(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{
		ServiceName: "toolguard",
		Tracing:     TracingConfig{Enabled: true, Exporter: "none", SamplePct: 1.0},
		Metrics:     MetricsConfig{Enabled: true, Exporter: "none"},
		Logging:     LoggingConfig{Enabled: true, Level: "error"},
	})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	defer obs.Shutdown(context.Background())

	_, span := obs.Tracer().Start(context.Background(), "test-span")
	span.End()

	counter, err := obs.Meter().Int64Counter("test.counter")
	if err != nil {
		t.Fatalf("Int64Counter() error = %v", err)
	}
	counter.Add(context.Background(), 1)
}

func TestNewObserver_InvalidConfig(t *testing.T) {
	if _, err := NewObserver(context.Background(), Config{}); err == nil {
		t.Error("NewObserver() error = nil, want validation failure")
	}
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	ctx := context.Background()

	// Must not panic, including through a scope.
	logger.Info(ctx, "msg", Field{Key: "k", Value: "v"})
	logger.WithScope(Scope{Tool: "t"}).Error(ctx, "msg")
}
