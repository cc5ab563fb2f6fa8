package process

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/3-lines-studio/bifrost-mini/internal/core"
)

//go:embed transpiler.ts
var BunTranspilerSource string

var ErrTranspilerStopped = errors.New("transpiler stopped")

var socketSeq atomic.Int64

// Transpiler runs Bun.Transpiler in a bun subprocess and talks to it over a
// unix socket.
type Transpiler struct {
	cmd     *exec.Cmd
	socket  string
	client  *http.Client
	stopped atomic.Bool
}

func NewTranspiler(dir string) (*Transpiler, error) {
	socket := filepath.Join(os.TempDir(), fmt.Sprintf("mini-build-%d-%d.sock", os.Getpid(), socketSeq.Add(1)))
	_ = os.Remove(socket)

	cmd := exec.Command("bun", "run", "--smol", "-")
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "MINI_SOCKET="+socket)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = strings.NewReader(BunTranspilerSource)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start bun: %w", err)
	}

	if err := waitForSocket(socket, 5*time.Second); err != nil {
		_ = cmd.Process.Kill()
		return nil, err
	}

	t := newClient(socket)
	t.cmd = cmd
	return t, nil
}

func newClient(socket string) *Transpiler {
	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socket)
		},
	}

	return &Transpiler{
		socket: socket,
		client: &http.Client{Transport: transport},
	}
}

func (t *Transpiler) Stop() error {
	if !t.stopped.CompareAndSwap(false, true) {
		return nil
	}
	var err error
	if t.cmd != nil && t.cmd.Process != nil {
		err = t.cmd.Process.Kill()
		_ = t.cmd.Wait()
	}
	_ = os.Remove(t.socket)
	return err
}

func (t *Transpiler) Transform(ctx context.Context, req core.TransformRequest) (core.TransformResult, error) {
	if t.stopped.Load() {
		return core.TransformResult{}, ErrTranspilerStopped
	}

	reqBody := map[string]any{
		"path":   req.Path,
		"code":   string(req.Source),
		"loader": string(req.Loader),
	}

	var result struct {
		Code  string `json:"code"`
		Map   string `json:"map"`
		Error *struct {
			Message string `json:"message"`
			Stack   string `json:"stack"`
		} `json:"error"`
	}

	if err := t.postJSON(ctx, "/transform", reqBody, &result); err != nil {
		return core.TransformResult{}, fmt.Errorf("transform %s: %w", req.Path, err)
	}

	if result.Error != nil {
		var sb strings.Builder
		sb.WriteString(result.Error.Message)
		if result.Error.Stack != "" {
			fmt.Fprintf(&sb, "\n\nStack:\n%s", result.Error.Stack)
		}
		return core.TransformResult{}, fmt.Errorf("transform %s: %s", req.Path, sb.String())
	}

	out := core.TransformResult{Code: []byte(result.Code)}
	if result.Map != "" {
		out.Map = []byte(result.Map)
	}
	return out, nil
}

func (t *Transpiler) postJSON(ctx context.Context, endpoint string, body any, result any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://localhost"+endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

func waitForSocket(path string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("timeout waiting for bun socket at %s", path)
}
