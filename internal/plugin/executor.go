package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrTimeout is returned when a plugin runs past the executor timeout.
var ErrTimeout = errors.New("plugin execution timeout")

// Executor runs plugins with a per-call timeout.
type Executor struct {
	timeout time.Duration
	log     logrus.FieldLogger
}

// NewExecutor returns an Executor. A non-positive timeout means 5s.
func NewExecutor(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Executor{timeout: timeout, log: logrus.WithField("component", "plugin-exec")}
}

// Execute runs plugin with req on stdin and parses its stdout as a Response.
func (e *Executor) Execute(ctx context.Context, plugin *Plugin, req *Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	name := plugin.Manifest.Name
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: marshal request: %w", name, err)
	}

	cmd := exec.CommandContext(ctx, plugin.Executable)
	cmd.Dir = plugin.Path
	cmd.Stdin = bytes.NewReader(reqJSON)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	diag := strings.TrimSpace(stderr.String())
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("plugin %s: %w after %s", name, ErrTimeout, e.timeout)
	}
	if err != nil {
		if diag != "" {
			return nil, fmt.Errorf("plugin %s failed: %w: %s", name, err, diag)
		}
		return nil, fmt.Errorf("plugin %s failed: %w", name, err)
	}
	if diag != "" {
		e.log.WithField("plugin", name).Debug(diag)
	}

	var resp Response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("plugin %s: parse response %q: %w", name, stdout.String(), err)
	}
	return &resp, nil
}
