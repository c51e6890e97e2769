package commands

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ruapotato/Flick-sub004/compositor"
	"github.com/ruapotato/Flick-sub004/devices"
	"github.com/ruapotato/Flick-sub004/gesture"
	"github.com/ruapotato/Flick-sub004/shell"
	"github.com/ruapotato/Flick-sub004/types"
	"github.com/ruapotato/Flick-sub004/utils"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const replayFrameInterval = 16 * time.Millisecond

const replaySchemaURL = "replay.schema.json"

//go:embed replay.schema.json
var replaySchemaJSON []byte

var (
	replaySchemaOnce sync.Once
	replaySchema     *jsonschema.Schema
	replaySchemaErr  error
)

func compiledReplaySchema() (*jsonschema.Schema, error) {
	replaySchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(replaySchemaURL, bytes.NewReader(replaySchemaJSON)); err != nil {
			replaySchemaErr = fmt.Errorf("add replay schema: %w", err)
			return
		}
		replaySchema, replaySchemaErr = compiler.Compile(replaySchemaURL)
	})
	return replaySchema, replaySchemaErr
}

// ReplayStep is one scripted input. At is milliseconds since the start of the
// script; steps without it happen at the time of the previous step.
type ReplayStep struct {
	At     *int    `yaml:"at,omitempty" json:"at,omitempty"`
	Kind   string  `yaml:"kind" json:"kind"`
	ID     int32   `yaml:"id,omitempty" json:"id,omitempty"`
	X      float64 `yaml:"x,omitempty" json:"x,omitempty"`
	Y      float64 `yaml:"y,omitempty" json:"y,omitempty"`
	Frames int     `yaml:"frames,omitempty" json:"frames,omitempty"`
	Action string  `yaml:"action,omitempty" json:"action,omitempty"`
	View   string  `yaml:"view,omitempty" json:"view,omitempty"`
	Key    string  `yaml:"key,omitempty" json:"key,omitempty"`
}

// ReplayScript drives a fresh compositor with a manual clock, so a recorded
// gesture sequence always classifies the same way
type ReplayScript struct {
	Screen types.Size   `yaml:"screen" json:"screen"`
	View   string       `yaml:"view,omitempty" json:"view,omitempty"`
	Steps  []ReplayStep `yaml:"steps" json:"steps"`
}

type ReplayRequest struct {
	Path string `json:"path,omitempty"`
	// Script is used when Path is empty
	Script *ReplayScript `json:"script,omitempty"`
	// Frames includes per-frame notifications in the result
	Frames bool `json:"frames,omitempty"`
	// Options configure the compositor before the script's own screen and view
	Options []compositor.Option `json:"-"`
}

type ReplayResult struct {
	Notifications []compositor.Notification `json:"notifications"`
	Dispatches    []compositor.Dispatch     `json:"dispatches"`
	Final         ShellStateResponse        `json:"final"`
	Duration      int64                     `json:"durationMs"`
}

// DecodeReplayScript checks a JSON replay script against the script schema
// and decodes it
func DecodeReplayScript(data []byte) (*ReplayScript, error) {
	var instance interface{}
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	schema, err := compiledReplaySchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(instance); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}

	var script ReplayScript
	if err := json.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("failed to decode script: %w", err)
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}
	return &script, nil
}

// ParseReplayScript reads a YAML (or JSON) replay script
func ParseReplayScript(r io.Reader) (*ReplayScript, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	// YAML is a superset of JSON; both are validated as JSON
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	return DecodeReplayScript(asJSON)
}

func (s *ReplayScript) Validate() error {
	if s.Screen.Width <= 0 || s.Screen.Height <= 0 {
		return fmt.Errorf("script screen size must be positive, got %dx%d", s.Screen.Width, s.Screen.Height)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("script has no steps")
	}
	return nil
}

// Replay runs script against a new compositor. It never touches the running
// event loop.
func Replay(script *ReplayScript, includeFrames bool, opts ...compositor.Option) (*ReplayResult, error) {
	if err := script.Validate(); err != nil {
		return nil, err
	}

	start := time.Unix(0, 0)
	clock := gesture.NewManualClock(start)

	output := compositor.Output{
		Name:   "replay",
		Width:  int32(script.Screen.Width),
		Height: int32(script.Screen.Height),
	}

	allOpts := append([]compositor.Option{compositor.WithLogger(utils.Logger())}, opts...)
	allOpts = append(allOpts, compositor.WithClock(clock))
	if script.View != "" {
		view, err := shell.ParseView(script.View)
		if err != nil {
			return nil, err
		}
		allOpts = append(allOpts, compositor.WithShellOptions(shell.WithInitialView(view)))
	}

	c, err := compositor.New(output, allOpts...)
	if err != nil {
		return nil, err
	}

	result := &ReplayResult{
		Notifications: []compositor.Notification{},
		Dispatches:    []compositor.Dispatch{},
	}
	c.Subscribe(func(n compositor.Notification) {
		if n.Kind == compositor.KindFrame && !includeFrames {
			return
		}
		result.Notifications = append(result.Notifications, n)
	})

	for i, step := range script.Steps {
		if step.At != nil {
			at := start.Add(time.Duration(*step.At) * time.Millisecond)
			if at.Before(clock.Now()) {
				return nil, fmt.Errorf("step %d: time %dms is before the replay clock at %dms", i, *step.At, clock.Now().Sub(start).Milliseconds())
			}
			clock.Set(at)
		}

		if err := replayStep(c, clock, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	result.Final = shellState(c)
	result.Duration = clock.Now().Sub(start).Milliseconds()
	return result, nil
}

func replayStep(c *compositor.Compositor, clock *gesture.ManualClock, step ReplayStep, result *ReplayResult) error {
	switch step.Kind {
	case "down", "motion", "move", "up", "cancel":
		kind, err := devices.ParseTouchKind(step.Kind)
		if err != nil {
			return err
		}
		d := c.Touch(devices.TouchEvent{Kind: kind, ID: step.ID, X: step.X, Y: step.Y})
		if d.HasEvent {
			result.Dispatches = append(result.Dispatches, d)
		}
	case "frames":
		n := step.Frames
		if n <= 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			clock.Advance(replayFrameInterval)
			c.Frame(replayFrameInterval)
		}
	case "action":
		action, err := gesture.ParseAction(step.Action)
		if err != nil {
			return err
		}
		c.HandleAction(action)
	case "view":
		view, err := shell.ParseView(step.View)
		if err != nil {
			return err
		}
		c.GoToView(view)
	case "key":
		key, err := compositor.ParseKey(step.Key)
		if err != nil {
			return err
		}
		c.Key(key)
	default:
		return fmt.Errorf("unknown step kind '%s'", step.Kind)
	}
	return nil
}

// ReplayCommand loads and runs a replay script
func ReplayCommand(req ReplayRequest) *CommandResponse {
	script := req.Script
	if req.Path != "" {
		f, err := os.Open(req.Path)
		if err != nil {
			return NewErrorResponse(fmt.Errorf("failed to open script: %w", err))
		}
		defer f.Close()

		script, err = ParseReplayScript(f)
		if err != nil {
			return NewErrorResponse(err)
		}
	}
	if script == nil {
		return NewErrorResponse(fmt.Errorf("either path or script is required"))
	}

	result, err := Replay(script, req.Frames, req.Options...)
	if err != nil {
		return NewErrorResponse(err)
	}
	return NewSuccessResponse(result)
}
