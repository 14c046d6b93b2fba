package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/squad/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New(ctx))
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SQUAD_ADDR", ":8080")
			_ = os.Setenv("SQUAD_QUEUE_SIZE", "500")
			_ = os.Setenv("SQUAD_WORKER_COUNT", "16")
			_ = os.Setenv("SQUAD_SIM_JITTER", "2.5")
			_ = os.Setenv("SQUAD_RANDOM_SEED", "42")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.SimJitter, convey.ShouldEqual, 2.5)
				convey.So(cfg.RandomSeed, convey.ShouldEqual, 42)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			tmpFile := createTempConfigFile(t, `
# roster settings
addr: ":9090"
store_driver: postgres
postgres_dsn: "postgres://squad@localhost/squad"
max_team_size: 4
min_pool_size: 2
metrics_namespace: club
metrics_labels:
  env: staging
`)
			_ = os.Setenv("SQUAD_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should merge the file with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, config.StorePostgres)
				convey.So(cfg.MaxTeamSize, convey.ShouldEqual, 4)
				convey.So(cfg.MinPoolSize, convey.ShouldEqual, 2)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "club")
				convey.So(cfg.MetricsLabels, convey.ShouldResemble, map[string]string{"env": "staging"})
				convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			})

			convey.Convey("And environment variables win over the file", func() {
				_ = os.Setenv("SQUAD_ADDR", ":7070")
				_ = os.Setenv("SQUAD_METRICS_ENABLED", "false")

				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.MaxTeamSize, convey.ShouldEqual, 4)
				convey.So(cfg.MetricsEnabled, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the YAML file is invalid", func() {
			_ = os.Setenv("SQUAD_CONFIG", createTempConfigFile(t, `invalid: yaml: content: [`))
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When the YAML file does not exist", func() {
			_ = os.Setenv("SQUAD_CONFIG", "/nonexistent/squad.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When a numeric variable is not a number", func() {
			_ = os.Setenv("SQUAD_QUEUE_SIZE", "invalid")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When the result fails validation", func() {
			_ = os.Setenv("SQUAD_ADDR", "")
			_ = os.Setenv("SQUAD_WORKER_COUNT", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

func clearConfigEnvVars() {
	for _, name := range []string{
		"SQUAD_CONFIG",
		"SQUAD_ADDR",
		"SQUAD_QUEUE_SIZE",
		"SQUAD_WORKER_COUNT",
		"SQUAD_SIM_JITTER",
		"SQUAD_RANDOM_SEED",
		"SQUAD_METRICS_ENABLED",
	} {
		_ = os.Unsetenv(name)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := t.TempDir() + "/squad.yaml"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
