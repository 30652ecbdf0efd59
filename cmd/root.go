// Package cmd implements the interlinker command-line interface.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonesrussell/north-cloud/interlinker/cmd/anchors"
	"github.com/jonesrussell/north-cloud/interlinker/cmd/audit"
	"github.com/jonesrussell/north-cloud/interlinker/cmd/common"
	"github.com/jonesrussell/north-cloud/interlinker/cmd/httpd"
	"github.com/jonesrussell/north-cloud/interlinker/cmd/inject"
	"github.com/jonesrussell/north-cloud/interlinker/internal/config"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

var (
	cfgFile string
	debug   bool

	rootCmd = &cobra.Command{
		Use:   "interlinker",
		Short: "Semantic internal link injection",
		Long: `interlinker places internal links into HTML articles. Anchors are
generated from destination titles, matched against the article text, and
only inserted where they land on word boundaries outside existing links,
headings and code.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// .env is optional; existing environment variables win.
	_ = godotenv.Load()

	cobra.OnInitialize(initConfig)
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, common.KeyConfig, "",
		"config file (default from "+config.EnvConfigPath+")")
	rootCmd.PersistentFlags().BoolVar(&debug, common.KeyDebug, false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "interlinker version %s\n", Version)
		},
	})

	rootCmd.AddCommand(inject.Command())
	rootCmd.AddCommand(anchors.Command())
	rootCmd.AddCommand(audit.Command())
	rootCmd.AddCommand(httpd.Command(Version))
}

// initConfig binds the global flags and their environment fallbacks.
func initConfig() {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	_ = viper.BindPFlag(common.KeyConfig, rootCmd.PersistentFlags().Lookup(common.KeyConfig))
	_ = viper.BindPFlag(common.KeyDebug, rootCmd.PersistentFlags().Lookup(common.KeyDebug))
	_ = viper.BindEnv(common.KeyConfig, config.EnvConfigPath)
	_ = viper.BindEnv(common.KeyDebug, "APP_DEBUG")
}
