package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"
	"github.com/grafana/dskit/flagext"
	"github.com/prometheus/client_golang/prometheus"
	ver "github.com/prometheus/client_golang/prometheus/collectors/version"
	"github.com/prometheus/common/version"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"gopkg.in/yaml.v2"

	"github.com/vectorgw/semsearch/pkg/semsearch/admission"
	"github.com/vectorgw/semsearch/pkg/semsearch/cache"
	"github.com/vectorgw/semsearch/pkg/semsearch/embeddingclient"
	"github.com/vectorgw/semsearch/pkg/semsearch/health"
	"github.com/vectorgw/semsearch/pkg/semsearch/httpapi"
	"github.com/vectorgw/semsearch/pkg/semsearch/indexclient"
	"github.com/vectorgw/semsearch/pkg/semsearch/observability"
	"github.com/vectorgw/semsearch/pkg/semsearch/orchestrator"
	"github.com/vectorgw/semsearch/pkg/semsearch/resilience"
	"github.com/vectorgw/semsearch/pkg/semsearch/shardrouter"
	"github.com/vectorgw/semsearch/pkg/semsearch/vectorpb"
)

const appName = "semsearch-gateway"

// Version is set via build flag -ldflags -X main.Version
var (
	Version  string
	Branch   string
	Revision string
)

func init() {
	version.Version = Version
	version.Branch = Branch
	version.Revision = Revision

	prometheus.MustRegister(ver.NewCollector(appName))
}

func main() {
	printVersion := flag.Bool("version", false, "Print version and exit")

	for _, arg := range os.Args[1:] {
		if arg == "-config.example" || arg == "--config.example" {
			fmt.Print(ExampleConfig())
			os.Exit(0)
		}
	}

	cfg, configVerify, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed parsing config: %v\n", err)
		os.Exit(1)
	}
	if *printVersion {
		fmt.Println(version.Print(appName))
		os.Exit(0)
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stdout))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	logger = level.NewFilter(logger, level.AllowInfo())

	configValid := true
	if warnings := cfg.CheckConfig(); len(warnings) != 0 {
		level.Warn(logger).Log("msg", "-- CONFIGURATION WARNINGS --")
		for _, w := range warnings {
			output := []any{"msg", w.Message}
			if w.Explain != "" {
				output = append(output, "explain", w.Explain)
			}
			level.Warn(logger).Log(output...)
		}
		configValid = false
	}

	if configVerify {
		if err := cfg.Validate(); err != nil {
			level.Error(logger).Log("msg", "invalid configuration", "err", err)
			os.Exit(1)
		}
		if !configValid {
			os.Exit(1)
		}
		level.Info(logger).Log("msg", "configuration is valid")
		os.Exit(0)
	}

	if err := cfg.Validate(); err != nil {
		level.Error(logger).Log("msg", "invalid configuration", "err", err)
		os.Exit(1)
	}

	level.Info(logger).Log(
		"msg", "starting semantic search gateway",
		"version", Version,
		"sidecarGrpcAddress", cfg.SidecarGRPCAddress,
	)

	app, err := newApp(cfg, logger)
	if err != nil {
		level.Error(logger).Log("msg", "failed to initialize", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	router := mux.NewRouter()
	app.handler.RegisterRoutes(router)

	addr := fmt.Sprintf("%s:%d", cfg.HTTPListenAddress, cfg.HTTPListenPort)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		level.Info(logger).Log("msg", "shutting down server...")
		if err := server.Close(); err != nil {
			level.Error(logger).Log("msg", "error during shutdown", "err", err)
		}
		done <- true
	}()

	level.Info(logger).Log("msg", "server listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		level.Error(logger).Log("msg", "server error", "err", err)
		os.Exit(1)
	}

	<-done
	level.Info(logger).Log("msg", "server stopped")
}

// app bundles the process-wide singletons: the circuit breakers, the
// cache connection, and the HTTP handler built on top of them. It owns
// their shutdown.
type app struct {
	cache   *cache.Cache
	conn    *grpc.ClientConn
	handler *httpapi.Handler
}

func newApp(cfg *Config, logger log.Logger) (*app, error) {
	conn, err := grpc.NewClient(cfg.SidecarGRPCAddress, append(
		[]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())},
		vectorpb.KeepaliveDialOptions()...,
	)...)
	if err != nil {
		return nil, fmt.Errorf("dial backend sidecar: %w", err)
	}

	redisClient := cache.NewRedisClient(&cfg.Redis)
	c := cache.New(cfg.cacheConfig(), redisClient, log.With(logger, "component", "cache"))

	embedPolicy := resilience.New(cfg.EmbeddingResilience, log.With(logger, "component", "resilience"), observability.SetCircuitBreakerOpen)
	indexPolicy := resilience.New(cfg.IndexResilience, log.With(logger, "component", "resilience"), observability.SetCircuitBreakerOpen)

	embed := embeddingclient.New(vectorpb.NewEmbeddingBackendClient(conn), embedPolicy, cfg.EmbeddingModelName)
	index := indexclient.New(vectorpb.NewIndexBackendClient(conn), indexPolicy)

	router := shardrouter.New(cfg.shardRouterConfig())
	orch := orchestrator.New(c, router, embed, index, cfg.orchestratorConfig(), log.With(logger, "component", "orchestrator"))

	checker := health.NewChecker(c, index)
	limiter := admission.NewRateLimiter(cfg.RateLimit)

	handler := httpapi.NewHandler(orch, index, limiter, checker, log.With(logger, "component", "httpapi"))

	return &app{cache: c, conn: conn, handler: handler}, nil
}

func (a *app) Close() {
	_ = a.cache.Close()
	_ = a.conn.Close()
}

func loadConfig() (*Config, bool, error) {
	const (
		configFileOption   = "config.file"
		configVerifyOption = "config.verify"
	)

	var (
		configFile   string
		configVerify bool
	)

	args := os.Args[1:]
	config := &Config{}

	fs := flag.NewFlagSet("", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&configFile, configFileOption, "", "")
	fs.BoolVar(&configVerify, configVerifyOption, false, "")

	for len(args) > 0 {
		_ = fs.Parse(args)
		args = args[1:]
	}

	config.RegisterFlagsAndApplyDefaults("", flag.CommandLine)

	if configFile != "" {
		buff, err := os.ReadFile(configFile)
		if err != nil {
			return nil, false, fmt.Errorf("failed to read configFile %s: %w", configFile, err)
		}

		if err := yaml.UnmarshalStrict(buff, config); err != nil {
			return nil, false, fmt.Errorf("failed to parse configFile %s: %w", configFile, err)
		}
	}

	flagext.IgnoredFlag(flag.CommandLine, configFileOption, "Configuration file to load")
	flagext.IgnoredFlag(flag.CommandLine, configVerifyOption, "Verify configuration and exit")
	flag.Parse()

	return config, configVerify, nil
}
