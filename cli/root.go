package cli

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/ruapotato/Flick-sub004/commands"
	"github.com/ruapotato/Flick-sub004/config"
	"github.com/ruapotato/Flick-sub004/daemon"
	"github.com/ruapotato/Flick-sub004/utils"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const version = "dev"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "flick",
	Short: "Gesture recognition and shell state for the Flick mobile compositor",
	Long: `Flick turns raw touch input into phone gestures (taps, long presses and
edge swipes) and drives the shell between the lock screen, home, apps, the
app switcher and quick settings.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logFormat != "text" && logFormat != "json" {
			return fmt.Errorf("invalid log format '%s', expected text or json", logFormat)
		}
		return nil
	},
}

// GetVersion returns the build version reported by --version and doctor
func GetVersion() string {
	return version
}

func initConfig() {
	utils.SetVerbose(verbose)
	utils.SetJSON(logFormat == "json")
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", fmt.Sprintf("config file (default: %s)", config.DefaultPath()))
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text or json)")
	rootCmd.PersistentFlags().StringVar(&serverAddress, "server", "", "address of a running flick server (default: server.listen from the config)")
}

// Execute runs the root command
func Execute() error {
	// enable microseconds in logs
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	return rootCmd.Execute()
}

// loadConfig reads the config file named by --config, or the default one,
// and applies environment overrides
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}

// serverAddr is where client commands send their requests
func serverAddr() string {
	if serverAddress != "" {
		return serverAddress
	}
	cfg, err := loadConfig()
	if err != nil {
		utils.Verbose("Falling back to default server address: %v", err)
		return config.DefaultConfig().Server.Listen
	}
	return cfg.Server.Listen
}

// callServer runs method on the server and prints the result
func callServer(method string, params interface{}) error {
	result, err := daemon.Call(serverAddr(), method, params)
	if err != nil {
		printJson(commands.NewErrorResponse(err))
		return err
	}

	printJson(commands.NewSuccessResponse(result))
	return nil
}

// printResponse prints a local command response and turns its error into
// the command's error
func printResponse(response *commands.CommandResponse) error {
	printJson(response)
	if response.Status == "error" {
		return fmt.Errorf("%s", response.Error)
	}
	return nil
}

// printJson is a helper function to print JSON responses. Output is indented
// for terminals and compact when piped.
func printJson(data interface{}) {
	var jsonData []byte
	var err error
	if term.IsTerminal(int(os.Stdout.Fd())) {
		jsonData, err = json.MarshalIndent(data, "", "  ")
	} else {
		jsonData, err = json.Marshal(data)
	}
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(jsonData))
}
