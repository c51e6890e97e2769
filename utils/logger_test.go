package utils

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetVerbose_And_IsVerbose(t *testing.T) {
	// save original state and restore after test
	original := IsVerbose()
	defer SetVerbose(original)

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected IsVerbose() = true after SetVerbose(true)")
	}
	if Logger().GetLevel() != logrus.DebugLevel {
		t.Errorf("expected debug level, got %v", Logger().GetLevel())
	}

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected IsVerbose() = false after SetVerbose(false)")
	}
	if Logger().GetLevel() != logrus.InfoLevel {
		t.Errorf("expected info level, got %v", Logger().GetLevel())
	}
}

func TestVerbose_SuppressedWhenDisabled(t *testing.T) {
	original := IsVerbose()
	defer SetVerbose(original)

	var buf bytes.Buffer
	Logger().SetOutput(&buf)
	defer Logger().SetOutput(os.Stderr)

	SetVerbose(false)
	Verbose("test message %s %d", "arg", 42)

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestVerbose_WrittenWhenEnabled(t *testing.T) {
	original := IsVerbose()
	defer SetVerbose(original)

	var buf bytes.Buffer
	Logger().SetOutput(&buf)
	defer Logger().SetOutput(os.Stderr)

	SetVerbose(true)
	Verbose("test message %s %d", "arg", 42)

	if !strings.Contains(buf.String(), "test message arg 42") {
		t.Errorf("expected message in output, got %q", buf.String())
	}
}

func TestSetJSON_EmitsStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	Logger().SetOutput(&buf)
	defer Logger().SetOutput(os.Stderr)

	SetJSON(true)
	defer SetJSON(false)

	Logger().WithField("view", "home").Info("shell initialized")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected a JSON line, got %q: %v", buf.String(), err)
	}
	if line["view"] != "home" {
		t.Errorf("expected view field, got %v", line["view"])
	}
	if line["msg"] != "shell initialized" {
		t.Errorf("expected msg field, got %v", line["msg"])
	}
}
