package cli

import "time"

var (
	verbose       bool
	configPath    string
	logFormat     string
	serverAddress string

	// for io commands
	ioDuration int

	// for replay command
	replayFrames bool

	// for devices command
	inputDir string

	// for config commands
	configFormat string
	configForce  bool

	// for log command
	logDatabase string
	logKind     string
	logLimit    int
	logSince    time.Duration
)
