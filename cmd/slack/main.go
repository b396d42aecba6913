package main

import (
	"context"
	"flag"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/weaveworks/common/logging"
	"github.com/weaveworks/common/signals"

	"github.com/weaveworks/integration-slack/api"
	"github.com/weaveworks/integration-slack/formatter"
	"github.com/weaveworks/integration-slack/integration"
	"github.com/weaveworks/integration-slack/render"
	"github.com/weaveworks/integration-slack/sender"
	"github.com/weaveworks/integration-slack/settings"
)

type stopServer struct {
	server  *http.Server
	timeout time.Duration
}

func (s stopServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func main() {
	var (
		logLevel        string
		listen          string
		settingsFile    string
		webhookURL      string
		cacheSize       int
		shutdownTimeout time.Duration
		senderConfig    sender.Config
	)

	flag.StringVar(&logLevel, "log.level", "info", "Logging level to use: debug | info | warn | error")
	flag.StringVar(&listen, "listen", ":80", "Address to listen on for events and prometheus metrics")
	flag.StringVar(&settingsFile, "settings", "", "YAML file with the integration settings")
	flag.StringVar(&webhookURL, "webhook-url", "", "Slack incoming webhook URL. Overrides the one in the settings file.")
	flag.IntVar(&cacheSize, "template.cache-size", render.DefaultCacheSize, "Number of compiled templates to keep")
	flag.DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second, "How long to wait for requests in flight when stopping")
	senderConfig.RegisterFlags(flag.CommandLine)

	flag.Parse()

	if err := logging.Setup(logLevel); err != nil {
		log.Fatalf("Error configuring logging: %v", err)
		return
	}

	s, err := loadSettings(settingsFile, webhookURL)
	if err != nil {
		log.Fatalf("cannot load settings: %v", err)
	}

	slack, err := integration.New(s, formatter.New(render.NewEngine(cacheSize)), sender.New(senderConfig))
	if err != nil {
		log.Fatalf("cannot create slack integration: %v", err)
	}

	server := &http.Server{
		Addr:    listen,
		Handler: api.New(slack),
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("cannot serve on %s: %v", listen, err)
		}
	}()

	log.WithField("listen", listen).Info("Running slack integration")

	signals.SignalHandlerLoop(
		logging.Logrus(log.StandardLogger()),
		stopServer{server: server, timeout: shutdownTimeout},
	)
}

// loadSettings reads the settings file, if any, and applies the webhook URL
// flag on top of it.
func loadSettings(path, webhookURL string) (*settings.Settings, error) {
	s := &settings.Settings{}
	if path != "" {
		var err error
		if s, err = settings.Read(path); err != nil {
			return nil, err
		}
	}
	if webhookURL != "" {
		s.WebhookURL = webhookURL
	}
	return s, s.Validate()
}
