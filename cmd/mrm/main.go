package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/frederic-klein/mrm/internal/catalog"
	"github.com/frederic-klein/mrm/internal/store"
)

const (
	flagConfig  = "config"
	flagAPIURL  = "api-url"
	flagTimeout = "timeout"
	flagWorkers = "workers"
	flagVerbose = "verbose"
)

// app holds the collaborators shared by every command.
type app struct {
	store   *store.Store
	catalog *catalog.Client
	logger  *log.Logger
	workers int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "mrm",
		Short:        "Modrinth manage - curate mod lists and resolve them for a game version",
		Long:         "mrm keeps named lists of Modrinth projects, fills them from catalog searches, and resolves which members support a chosen game version and loader.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, v)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String(flagConfig, "", "Config document path (default: user config dir)")
	flags.String(flagAPIURL, catalog.DefaultAPIURL, "Catalog API URL")
	flags.Duration(flagTimeout, catalog.DefaultTimeout, "Timeout for each catalog request")
	flags.IntP(flagWorkers, "w", 4, "Parallel download workers")
	flags.BoolP(flagVerbose, "v", false, "Verbose output")

	v.SetEnvPrefix("MRM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)

	rootCmd.AddCommand(
		newListsCmd(a),
		newListCmd(a),
		newSearchCmd(a),
		newBrowseCmd(a),
		newAddCmd(a),
		newRemoveCmd(a),
		newResolveCmd(a),
		newDownloadCmd(a),
		newVersionsCmd(a),
		newLoadersCmd(a),
		newOptionsCmd(a),
		newExportCmd(a),
		newImportCmd(a),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, v *viper.Viper) error {
	a.logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Prefix: "mrm"})
	a.logger.SetLevel(log.WarnLevel)
	if v.GetBool(flagVerbose) {
		a.logger.SetLevel(log.DebugLevel)
	}

	configPath := v.GetString(flagConfig)
	if configPath == "" {
		var err error
		configPath, err = store.DefaultPath()
		if err != nil {
			return err
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	a.store = store.New(configPath, filepath.Join(cwd, "downloads"))

	timeout := v.GetDuration(flagTimeout)
	if timeout <= 0 {
		timeout = catalog.DefaultTimeout
	}
	a.catalog = catalog.NewClient(v.GetString(flagAPIURL),
		catalog.WithTimeout(timeout),
		catalog.WithLogger(a.logger),
	)
	a.workers = v.GetInt(flagWorkers)

	a.logger.Debug("configured", "config", configPath, "api", a.catalog.APIURL(), "timeout", timeout)
	return nil
}
