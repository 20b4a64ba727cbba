package provider

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	perrors "persuader/pkg/errors"
)

// CLIAdapter drives a long-lived local subprocess (a model CLI such as
// `claude` or `ollama run`) as a provider, grounded on TaskWing's
// exec.CommandContext usage for spawning and supervising external
// processes. Unlike the HTTP adapters this one is genuinely stateful: one
// subprocess per provider session, fed one prompt per line on stdin and
// read back one response per invocation on stdout.
type CLIAdapter struct {
	command string
	args    []string

	mu       sync.Mutex
	sessions map[string]*cliSession
}

type cliSession struct {
	cmd    *exec.Cmd
	stdin  *bufio.Writer
	stdout *bufio.Reader
	mu     sync.Mutex
}

// NewCLIAdapter builds an adapter that runs `command args...` per session.
func NewCLIAdapter(command string, args ...string) *CLIAdapter {
	return &CLIAdapter{command: command, args: args, sessions: make(map[string]*cliSession)}
}

func (a *CLIAdapter) Name() string         { return "cli:" + a.command }
func (a *CLIAdapter) Version() string      { return "local" }
func (a *CLIAdapter) SupportsSession() bool { return true }
func (a *CLIAdapter) SupportedModels() []string {
	return []string{a.command}
}

func (a *CLIAdapter) Health(ctx context.Context) (HealthStatus, error) {
	start := time.Now()
	path, err := exec.LookPath(a.command)
	elapsed := time.Since(start)
	if err != nil {
		return HealthStatus{Healthy: false, CheckedAt: time.Now(), ResponseTimeMs: elapsed.Milliseconds(), Error: err.Error()}, nil
	}
	return HealthStatus{Healthy: true, CheckedAt: time.Now(), ResponseTimeMs: elapsed.Milliseconds(), Details: map[string]interface{}{"path": path}}, nil
}

func (a *CLIAdapter) CreateSession(ctx context.Context, systemContext string, opts Options) (string, error) {
	args := append([]string{}, a.args...)
	if systemContext != "" {
		args = append(args, "--system", systemContext)
	}
	cmd := exec.CommandContext(context.Background(), a.command, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return "", perrors.NewProviderError(perrors.ComponentProvider, a.Name(), perrors.ErrorKindTransport, 0, fmt.Sprintf("stdin pipe: %v", err), false)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", perrors.NewProviderError(perrors.ComponentProvider, a.Name(), perrors.ErrorKindTransport, 0, fmt.Sprintf("stdout pipe: %v", err), false)
	}
	if err := cmd.Start(); err != nil {
		return "", perrors.NewProviderError(perrors.ComponentProvider, a.Name(), perrors.ErrorKindTransport, 0, fmt.Sprintf("start subprocess: %v", err), false)
	}

	id := fmt.Sprintf("cli-%d", time.Now().UnixNano())
	sess := &cliSession{cmd: cmd, stdin: bufio.NewWriter(stdin), stdout: bufio.NewReader(stdout)}

	a.mu.Lock()
	a.sessions[id] = sess
	a.mu.Unlock()
	return id, nil
}

func (a *CLIAdapter) DestroySession(ctx context.Context, providerSessionID string) error {
	a.mu.Lock()
	sess, ok := a.sessions[providerSessionID]
	delete(a.sessions, providerSessionID)
	a.mu.Unlock()
	if !ok {
		return nil
	}
	if sess.cmd.Process != nil {
		_ = sess.cmd.Process.Kill()
	}
	return sess.cmd.Wait()
}

func (a *CLIAdapter) SendPrompt(ctx context.Context, providerSessionID, prompt string, opts Options) (Response, error) {
	a.mu.Lock()
	sess, ok := a.sessions[providerSessionID]
	a.mu.Unlock()
	if !ok {
		return Response{}, perrors.NewSessionError(perrors.ComponentProvider, providerSessionID, "send_prompt", "no subprocess for provider session")
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	done := make(chan struct{})
	var line []byte
	var readErr error
	go func() {
		defer close(done)
		var buf bytes.Buffer
		for {
			b, err := sess.stdout.ReadByte()
			if err != nil {
				readErr = err
				return
			}
			if b == '\n' {
				line = buf.Bytes()
				return
			}
			buf.WriteByte(b)
		}
	}()

	if _, err := sess.stdin.WriteString(prompt + "\n"); err != nil {
		return Response{}, perrors.NewProviderError(perrors.ComponentProvider, a.Name(), perrors.ErrorKindTransport, 0, fmt.Sprintf("write prompt: %v", err), true)
	}
	if err := sess.stdin.Flush(); err != nil {
		return Response{}, perrors.NewProviderError(perrors.ComponentProvider, a.Name(), perrors.ErrorKindTransport, 0, fmt.Sprintf("flush prompt: %v", err), true)
	}

	select {
	case <-ctx.Done():
		return Response{}, perrors.NewCancelledError(perrors.ComponentProvider, ctx.Err().Error())
	case <-done:
	}
	if readErr != nil {
		return Response{}, perrors.NewProviderError(perrors.ComponentProvider, a.Name(), perrors.ErrorKindTransport, 0, fmt.Sprintf("read response: %v", readErr), true)
	}

	return Response{
		Content:    string(line),
		StopReason: StopEndTurn,
	}, nil
}
