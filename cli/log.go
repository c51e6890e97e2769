package cli

import (
	"fmt"
	"time"

	"github.com/ruapotato/Flick-sub004/commands"
	"github.com/ruapotato/Flick-sub004/compositor"
	"github.com/ruapotato/Flick-sub004/config"
	"github.com/ruapotato/Flick-sub004/eventlog"
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Print the persistent gesture log",
	Long:  `Reads the SQLite event log a server writes when history.database is set. Works while the server is stopped.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := logDatabase
		if path == "" {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path = cfg.History.Database
		}
		if path == "" {
			path = config.DefaultLogPath()
		}

		query := eventlog.Query{
			Kind:  compositor.NotificationKind(logKind),
			Limit: logLimit,
		}
		switch logKind {
		case "", string(compositor.KindGesture), string(compositor.KindAction), string(compositor.KindView):
		default:
			return fmt.Errorf("invalid kind '%s', expected gesture, action or view", logKind)
		}
		if logSince > 0 {
			query.Since = time.Now().Add(-logSince)
		}

		store, err := eventlog.Open(path)
		if err != nil {
			printJson(commands.NewErrorResponse(err))
			return err
		}
		defer store.Close()

		entries, err := store.Recent(query)
		if err != nil {
			printJson(commands.NewErrorResponse(err))
			return err
		}

		printJson(commands.NewSuccessResponse(map[string]interface{}{
			"database": path,
			"entries":  entries,
		}))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logCmd)

	logCmd.Flags().StringVar(&logDatabase, "db", "", "event log database (default: history.database from the config)")
	logCmd.Flags().StringVar(&logKind, "kind", "", "only print gesture, action or view entries")
	logCmd.Flags().IntVar(&logLimit, "limit", 50, "number of entries to print, 0 for all")
	logCmd.Flags().DurationVar(&logSince, "since", 0, "only print entries newer than this, e.g. 10m")
}
