// Package codeexec manages the coding-round panel: one code buffer, a
// language selection, stdin, and a single bounded remote execution.
package codeexec

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Rahul-150705/interviewflow-pro/internal/gateway"
	"github.com/Rahul-150705/interviewflow-pro/internal/metrics"
	"github.com/Rahul-150705/interviewflow-pro/internal/models"
)

// execution result statuses, each rendered with its own label so the
// user can tell which phase failed
const (
	StatusSuccess      = "Success"
	StatusRuntimeError = "Runtime Error"
	StatusCompileError = "Compile Error"
	StatusTimeout      = "Timeout"
	StatusError        = "Error"
)

var (
	ErrEmptyCode   = errors.New("code buffer is empty")
	ErrRunInFlight = errors.New("an execution is already running")
)

// Executor is the remote execution boundary; *gateway.Client satisfies it.
type Executor interface {
	ExecuteCode(ctx context.Context, req *models.ExecuteRequest) (*models.ExecuteResponse, error)
}

// Result is one classified execution outcome.
type Result struct {
	Status  string
	Output  string
	Detail  string
	Elapsed time.Duration
}

type Panel struct {
	exec    Executor
	timeout time.Duration
	logger  *zap.Logger

	mu       sync.Mutex
	language string
	code     string
	stdin    string
	running  bool
	result   *Result
}

// NewPanel starts on Python with its starter template loaded.
func NewPanel(exec Executor, timeout time.Duration, logger *zap.Logger) *Panel {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Panel{
		exec:     exec,
		timeout:  timeout,
		logger:   logger,
		language: "python",
		code:     languages["python"].Template,
	}
}

// SetLanguage switches the panel language. The buffer is replaced with
// the new language's starter template only when it is empty or still the
// previous language's untouched template; user edits are preserved. Any
// previous execution result is cleared.
func (p *Panel) SetLanguage(name string) error {
	spec, err := Spec(name)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	previous := languages[p.language].Template
	if strings.TrimSpace(p.code) == "" || p.code == previous {
		p.code = spec.Template
	}
	p.language = spec.Name
	p.result = nil
	return nil
}

func (p *Panel) SetCode(code string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.code = code
}

func (p *Panel) SetStdin(stdin string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stdin = stdin
}

func (p *Panel) Language() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.language
}

func (p *Panel) Code() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.code
}

func (p *Panel) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Result returns the last execution outcome, or nil.
func (p *Panel) Result() *Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// Run executes the buffer remotely, bounded by the panel timeout. A
// timed-out run is reported as StatusTimeout, distinct from transport
// failures, with guidance about runaway programs. Only one run may be in
// flight at a time.
func (p *Panel) Run(ctx context.Context) (*Result, error) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil, ErrRunInFlight
	}
	if strings.TrimSpace(p.code) == "" {
		p.mu.Unlock()
		return nil, ErrEmptyCode
	}
	p.running = true
	req := &models.ExecuteRequest{
		SourceCode: p.code,
		Language:   p.language,
		Stdin:      p.stdin,
	}
	p.mu.Unlock()

	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	resp, err := p.exec.ExecuteCode(runCtx, req)
	elapsed := time.Since(start)

	result := p.classify(resp, err, elapsed)

	p.mu.Lock()
	p.running = false
	p.result = result
	p.mu.Unlock()

	p.logger.Info("Code execution finished",
		zap.String("language", req.Language),
		zap.String("status", result.Status),
		zap.Duration("elapsed", elapsed))
	return result, nil
}

func (p *Panel) classify(resp *models.ExecuteResponse, err error, elapsed time.Duration) *Result {
	if err != nil {
		var gwErr *gateway.Error
		if errors.As(err, &gwErr) && gwErr.Timeout() {
			metrics.RecordExecTimeout()
			return &Result{
				Status:  StatusTimeout,
				Detail:  fmt.Sprintf("Execution exceeded %s. The program may have an infinite loop.", p.timeout),
				Elapsed: elapsed,
			}
		}
		return &Result{
			Status:  StatusError,
			Detail:  err.Error(),
			Elapsed: elapsed,
		}
	}

	switch {
	case resp.CompileOutput != "":
		return &Result{Status: StatusCompileError, Detail: resp.CompileOutput, Elapsed: elapsed}
	case resp.Stderr != "":
		return &Result{Status: StatusRuntimeError, Output: resp.Stdout, Detail: resp.Stderr, Elapsed: elapsed}
	default:
		return &Result{Status: StatusSuccess, Output: resp.Stdout, Elapsed: elapsed}
	}
}

// SubmitPayload formats the buffer as the answer payload for the current
// question.
func (p *Panel) SubmitPayload() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if strings.TrimSpace(p.code) == "" {
		return "", ErrEmptyCode
	}
	return fmt.Sprintf("Language: %s\n\n%s", p.language, p.code), nil
}
