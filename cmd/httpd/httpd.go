// Package httpd implements the HTTP server command.
package httpd

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/interlinker/cmd/common"
	"github.com/jonesrussell/north-cloud/interlinker/internal/api"
	"github.com/jonesrussell/north-cloud/interlinker/internal/injector"
	"github.com/jonesrussell/north-cloud/interlinker/internal/logger"
	"github.com/jonesrussell/north-cloud/interlinker/internal/metrics"
)

// Command returns the httpd command. version is reported by /health when
// the config leaves service.version empty.
func Command(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "httpd",
		Short: "Serve the link engine over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return err
			}
			defer func() { _ = deps.Logger.Sync() }()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			inj, err := deps.NewInjector(injector.WithRecorder(metrics.NewRecorder(reg)))
			if err != nil {
				return err
			}

			svc := deps.Config.Service
			if svc.Version == "" {
				svc.Version = version
			}
			handler := api.NewHandler(inj, deps.Logger,
				api.WithGatherer(reg),
				api.WithService(svc.Name, svc.Version),
			)

			deps.Logger.Info("Injection defaults",
				logger.Int("min_links", inj.Options().MinLinks),
				logger.Int("max_links", inj.Options().MaxLinks),
				logger.Float64("min_relevance", inj.Options().MinRelevance),
			)
			return api.NewServer(deps.Config, deps.Logger, handler).Run(cmd.Context())
		},
	}
}
