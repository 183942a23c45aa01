package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetupJSON(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)
	var buf bytes.Buffer
	if err := Setup("debug", "json"); err != nil {
		t.Fatalf("setup: %v", err)
	}
	SetOutput(&buf)
	logrus.WithField("order_id", 12).Debug("placed")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("not json: %q", buf.String())
	}
	if line["msg"] != "placed" || line["order_id"] != float64(12) {
		t.Fatalf("line=%v", line)
	}
}

func TestSetupBadLevel(t *testing.T) {
	if err := Setup("loud", "text"); err == nil {
		t.Fatalf("expected error")
	}
}
