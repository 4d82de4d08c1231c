package cmd

import (
	"context"
	"errors"
	"testing"

	coreconfig "github.com/m3rciful/insightbot/core/config"
	coretelegram "github.com/m3rciful/insightbot/core/telegram"
)

type carrier struct{ cfg *coreconfig.Config }

func (c carrier) CoreConfig() *coreconfig.Config { return c.cfg }

type fakeApp struct {
	closed  bool
	started bool
}

func (a *fakeApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{
		OnStart: func(context.Context, coretelegram.Runtime) error {
			a.started = true
			return nil
		},
	}, nil
}

func (a *fakeApp) Close() error {
	a.closed = true
	return nil
}

func TestRunDrivesLifecycle(t *testing.T) {
	t.Setenv("INSIGHTS_CONFIG", "custom.yaml")
	app := &fakeApp{}
	var gotPath string
	loggerFlushed := false

	err := Run(Options{
		ConfigEnvVar: "INSIGHTS_CONFIG",
		LoadConfig: func(path string) (ConfigCarrier, error) {
			gotPath = path
			return carrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap:      func(ConfigCarrier) (TelegramApp, error) { return app, nil },
		ShutdownLogger: func() error { loggerFlushed = true; return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			if err := opts.OnStart(ctx, coretelegram.Runtime{}); err != nil {
				return err
			}
			return opts.OnStop(ctx, coretelegram.Runtime{})
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if gotPath != "custom.yaml" {
		t.Fatalf("config path %q", gotPath)
	}
	if !app.started || !app.closed || !loggerFlushed {
		t.Fatalf("lifecycle incomplete: started=%v closed=%v flushed=%v", app.started, app.closed, loggerFlushed)
	}
}

func TestRunRejectsMissingCore(t *testing.T) {
	err := Run(Options{
		LoadConfig: func(string) (ConfigCarrier, error) { return carrier{}, nil },
		Bootstrap:  func(ConfigCarrier) (TelegramApp, error) { return &fakeApp{}, nil },
	})
	if err == nil {
		t.Fatal("expected error for nil core config")
	}
}

func TestRunWrapsBootstrapError(t *testing.T) {
	boom := errors.New("boom")
	err := Run(Options{
		LoadConfig: func(string) (ConfigCarrier, error) { return carrier{cfg: &coreconfig.Config{}}, nil },
		Bootstrap:  func(ConfigCarrier) (TelegramApp, error) { return nil, boom },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want wrapped boom, got %v", err)
	}
}
