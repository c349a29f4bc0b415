package codeexec

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Rahul-150705/interviewflow-pro/internal/gateway"
	"github.com/Rahul-150705/interviewflow-pro/internal/models"
)

// fakeExecutor scripts the remote compiler.
type fakeExecutor struct {
	mu    sync.Mutex
	resp  *models.ExecuteResponse
	err   error
	block bool // wait for ctx cancellation instead of answering
	calls int
	last  *models.ExecuteRequest
}

func (f *fakeExecutor) ExecuteCode(ctx context.Context, req *models.ExecuteRequest) (*models.ExecuteResponse, error) {
	f.mu.Lock()
	f.calls++
	f.last = req
	resp, err, block := f.resp, f.err, f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, &gateway.Error{Op: "execute_code", Code: gateway.ErrCodeTimeout,
			Message: "request failed", Err: ctx.Err()}
	}
	return resp, err
}

func newPanel(exec Executor, timeout time.Duration) *Panel {
	return NewPanel(exec, timeout, zap.NewNop())
}

func TestSetLanguage_ReplacesUntouchedTemplate(t *testing.T) {
	panel := newPanel(&fakeExecutor{}, time.Second)

	require.Equal(t, "python", panel.Language())
	require.Equal(t, languages["python"].Template, panel.Code())

	require.NoError(t, panel.SetLanguage("java"))
	assert.Equal(t, "java", panel.Language())
	assert.Equal(t, languages["java"].Template, panel.Code())
}

func TestSetLanguage_PreservesUserEdits(t *testing.T) {
	panel := newPanel(&fakeExecutor{}, time.Second)

	panel.SetCode("print('my own code')")
	require.NoError(t, panel.SetLanguage("java"))

	assert.Equal(t, "java", panel.Language())
	assert.Equal(t, "print('my own code')", panel.Code(), "user edits must not be clobbered")
}

func TestSetLanguage_ReplacesBlankBuffer(t *testing.T) {
	panel := newPanel(&fakeExecutor{}, time.Second)

	panel.SetCode("  \n\t ")
	require.NoError(t, panel.SetLanguage("cpp"))
	assert.Equal(t, languages["cpp"].Template, panel.Code())
}

func TestSetLanguage_Unknown(t *testing.T) {
	panel := newPanel(&fakeExecutor{}, time.Second)
	assert.Error(t, panel.SetLanguage("cobol"))
	assert.Equal(t, "python", panel.Language())
}

func TestSetLanguage_ClearsResult(t *testing.T) {
	exec := &fakeExecutor{resp: &models.ExecuteResponse{Success: true, Stdout: "ok"}}
	panel := newPanel(exec, time.Second)
	panel.SetCode("print('x')")

	_, err := panel.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, panel.Result())

	require.NoError(t, panel.SetLanguage("java"))
	assert.Nil(t, panel.Result())
}

func TestRun_Success(t *testing.T) {
	exec := &fakeExecutor{resp: &models.ExecuteResponse{Success: true, Stdout: "42\n"}}
	panel := newPanel(exec, time.Second)
	panel.SetCode("print(42)")
	panel.SetStdin("unused")

	result, err := panel.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, "42\n", result.Output)
	assert.Equal(t, "unused", exec.last.Stdin)
	assert.False(t, panel.Running())
}

func TestRun_RuntimeError(t *testing.T) {
	exec := &fakeExecutor{resp: &models.ExecuteResponse{
		Stdout: "partial", Stderr: "ZeroDivisionError: division by zero"}}
	panel := newPanel(exec, time.Second)
	panel.SetCode("1/0")

	result, err := panel.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusRuntimeError, result.Status)
	assert.Contains(t, result.Detail, "ZeroDivisionError")
	assert.Equal(t, "partial", result.Output)
}

func TestRun_CompileError(t *testing.T) {
	exec := &fakeExecutor{resp: &models.ExecuteResponse{
		CompileOutput: "Main.java:3: error: ';' expected"}}
	panel := newPanel(exec, time.Second)
	require.NoError(t, panel.SetLanguage("java"))

	result, err := panel.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusCompileError, result.Status)
	assert.Contains(t, result.Detail, "';' expected")
}

func TestRun_TimeoutDistinctFromError(t *testing.T) {
	exec := &fakeExecutor{block: true}
	panel := newPanel(exec, 30*time.Millisecond)
	panel.SetCode("while True: pass")

	result, err := panel.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusTimeout, result.Status)
	assert.Contains(t, result.Detail, "infinite loop")
}

func TestRun_TransportError(t *testing.T) {
	exec := &fakeExecutor{err: &gateway.Error{
		Op: "execute_code", Code: gateway.ErrCodeNetwork, Message: "request failed"}}
	panel := newPanel(exec, time.Second)
	panel.SetCode("print(1)")

	result, err := panel.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusError, result.Status)
}

func TestRun_RejectsBlankBuffer(t *testing.T) {
	exec := &fakeExecutor{}
	panel := newPanel(exec, time.Second)
	panel.SetCode("   ")

	_, err := panel.Run(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCode)
	assert.Zero(t, exec.calls, "blank buffer must never reach the network")
}

func TestRun_SingleInFlight(t *testing.T) {
	exec := &fakeExecutor{block: true}
	panel := newPanel(exec, 200*time.Millisecond)
	panel.SetCode("print(1)")

	started := make(chan struct{})
	go func() {
		close(started)
		panel.Run(context.Background())
	}()
	<-started
	require.Eventually(t, panel.Running, time.Second, time.Millisecond)

	_, err := panel.Run(context.Background())
	assert.ErrorIs(t, err, ErrRunInFlight)
}

func TestSubmitPayload(t *testing.T) {
	panel := newPanel(&fakeExecutor{}, time.Second)
	require.NoError(t, panel.SetLanguage("java"))
	panel.SetCode("class Main {}")

	payload, err := panel.SubmitPayload()
	require.NoError(t, err)
	assert.Equal(t, "Language: java\n\nclass Main {}", payload)

	panel.SetCode(" ")
	_, err = panel.SubmitPayload()
	assert.ErrorIs(t, err, ErrEmptyCode)
}
