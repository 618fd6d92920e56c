package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/codewith-ram/task-manager/config"
)

// flagOverrides holds command line values that take precedence over the
// environment.
type flagOverrides struct {
	slot       string
	dataDir    string
	key        string
	listenAddr string
	debug      bool
}

func (f flagOverrides) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("slot") {
		cfg.Slot = config.SlotKind(f.slot)
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = f.dataDir
	}
	if flags.Changed("key") {
		cfg.StorageKey = f.key
	}
	if flags.Changed("listen") {
		cfg.ListenAddr = f.listenAddr
	}
	if flags.Changed("debug") {
		cfg.Debug = f.debug
	}
	return cfg.Validate()
}

func newRootCmd() *cobra.Command {
	var flags flagOverrides
	root := &cobra.Command{
		Use:           "kanban",
		Short:         "Four column task board",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.slot, "slot", "", "storage backend: file, redis or table (KANBAN_SLOT)")
	pf.StringVar(&flags.dataDir, "data-dir", "", "directory of the file slot (KANBAN_DATA_DIR)")
	pf.StringVar(&flags.key, "key", "", "slot key holding the board (KANBAN_STORAGE_KEY)")
	pf.BoolVar(&flags.debug, "debug", false, "enable debug logging (DEBUG)")

	serve := newServeCmd(&flags)
	serve.Flags().StringVar(&flags.listenAddr, "listen", "", "listen address (LISTEN_ADDR)")
	root.AddCommand(serve, newDumpCmd(&flags))
	return root
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(cmd *cobra.Command, flags *flagOverrides) (config.Config, error) {
	cfg, err := config.Parse(os.LookupEnv)
	if err != nil {
		return config.Config{}, err
	}
	if err := flags.apply(cmd, &cfg); err != nil {
		return config.Config{}, err
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	return cfg, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.WithError(err).Error("kanban failed")
		os.Exit(1)
	}
}
