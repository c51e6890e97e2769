package cli

import (
	"fmt"

	"github.com/ruapotato/Flick-sub004/daemon"
	"github.com/ruapotato/Flick-sub004/server"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Server management commands",
	Long:  `Commands for managing the flick server, which owns the compositor and reads the touchscreens.`,
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the flick server",
	Long:  `Starts the compositor event loop, attaches touchscreens and serves JSON-RPC over HTTP and WebSocket.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// flags override the config file
		if cmd.Flags().Changed("listen") {
			cfg.Server.Listen, _ = cmd.Flags().GetString("listen")
		}
		if cmd.Flags().Changed("cors") {
			cfg.Server.CORS, _ = cmd.Flags().GetBool("cors")
		}
		if cmd.Flags().Changed("no-input") {
			noInput, _ := cmd.Flags().GetBool("no-input")
			cfg.Input.Enabled = !noInput
		}

		isDaemon, _ := cmd.Flags().GetBool("daemon")
		if isDaemon && !daemon.IsChild() {
			_, err := daemon.Daemonize()
			if err != nil {
				return fmt.Errorf("failed to start daemon: %w", err)
			}

			fmt.Printf("Server daemon spawned, attempting to listen on %s\n", cfg.Server.Listen)
			return nil
		}

		return server.StartServer(cfg)
	},
}

var serverKillCmd = &cobra.Command{
	Use:   "kill",
	Short: "Stop a running flick server",
	Long:  `Connects to the server and sends a shutdown command via JSON-RPC.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// GetString cannot fail for defined flags
		addr, _ := cmd.Flags().GetString("listen")
		if addr == "" {
			addr = serverAddr()
		}

		err := daemon.KillServer(addr)
		if err != nil {
			return err
		}

		fmt.Printf("Server shutdown command sent successfully\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// add server subcommands
	serverCmd.AddCommand(serverStartCmd)
	serverCmd.AddCommand(serverKillCmd)

	// server start flags
	serverStartCmd.Flags().String("listen", "", "Address to listen on (e.g., 'localhost:12000' or '0.0.0.0:13000')")
	serverStartCmd.Flags().Bool("cors", false, "Enable CORS support")
	serverStartCmd.Flags().Bool("no-input", false, "Do not read touchscreens, accept injected input only")
	serverStartCmd.Flags().BoolP("daemon", "d", false, "Run server in daemon mode (background)")

	// server kill flags
	serverKillCmd.Flags().String("listen", "", "Address of server to kill (default: --server or the config)")
}
