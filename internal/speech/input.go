package speech

import (
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Rahul-150705/interviewflow-pro/internal/metrics"
)

type InputConfig struct {
	// RestartLimit caps consecutive auto-restarts that end without any
	// recognition event in between. Zero means a single failed restart
	// stops capture.
	RestartLimit int
}

// InputAdapter accumulates a transcript from a continuous Recognizer
// across provider-initiated stream ends. Only finalized segments are
// durable; interim text is display-only and replaced on every event.
type InputAdapter struct {
	rec    Recognizer
	output *OutputAdapter
	cfg    InputConfig
	logger *zap.Logger

	// OnTranscript, if set, is called with the running transcript after
	// every recognition event, for display.
	OnTranscript func(final, interim string)

	// OnError, if set, receives asynchronous capture failures that end
	// capture (restart loop, provider errors other than no-speech).
	OnError func(error)

	mu           sync.Mutex
	capturing    bool
	finalText    strings.Builder
	interim      string
	restartFails int
}

// NewInputAdapter wires capture against the recognizer. output may be
// nil; when present it is cancelled whenever capture starts, keeping the
// microphone and speaker mutually exclusive.
func NewInputAdapter(rec Recognizer, output *OutputAdapter, cfg InputConfig, logger *zap.Logger) *InputAdapter {
	if cfg.RestartLimit <= 0 {
		cfg.RestartLimit = 5
	}
	return &InputAdapter{rec: rec, output: output, cfg: cfg, logger: logger}
}

func (a *InputAdapter) handlers() RecognitionHandlers {
	return RecognitionHandlers{
		OnEvent: a.handleEvent,
		OnEnd:   a.handleEnd,
		OnError: a.handleError,
	}
}

// Supported reports whether the recognizer can capture audio on this
// platform.
func (a *InputAdapter) Supported() bool {
	return a.rec.Supported()
}

// Start begins capture. Any active playback is cancelled first.
func (a *InputAdapter) Start() error {
	if !a.rec.Supported() {
		return ErrUnsupported
	}

	a.mu.Lock()
	if a.capturing {
		a.mu.Unlock()
		return ErrAlreadyCapturing
	}
	a.capturing = true
	a.interim = ""
	a.restartFails = 0
	a.mu.Unlock()

	if a.output != nil {
		a.output.Cancel()
	}

	if err := a.rec.Start(a.handlers()); err != nil {
		a.mu.Lock()
		a.capturing = false
		a.mu.Unlock()
		return err
	}
	return nil
}

// Stop ends capture and hands back the finalized utterance. The
// capturing flag drops before the provider is stopped so the provider's
// end callback does not trigger a restart. ErrNoSpeech is returned when
// nothing durable was captured.
func (a *InputAdapter) Stop() (string, error) {
	a.mu.Lock()
	if !a.capturing {
		a.mu.Unlock()
		return "", ErrNotCapturing
	}
	a.capturing = false
	text := strings.TrimSpace(a.finalText.String())
	a.finalText.Reset()
	a.interim = ""
	a.mu.Unlock()

	a.rec.Stop()

	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}

// Capturing reports whether capture is active.
func (a *InputAdapter) Capturing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.capturing
}

// Transcript returns the current durable and provisional text.
func (a *InputAdapter) Transcript() (final, interim string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.finalText.String(), a.interim
}

func (a *InputAdapter) handleEvent(ev RecognitionEvent) {
	a.mu.Lock()
	for _, segment := range ev.Finals {
		a.finalText.WriteString(segment)
	}
	a.interim = ev.Interim
	a.restartFails = 0
	final, interim := a.finalText.String(), a.interim
	notify := a.OnTranscript
	a.mu.Unlock()

	if notify != nil {
		notify(final, interim)
	}
}

// handleEnd fires when the provider ends the stream on its own. While
// capture is meant to be active this restarts recognition, bounded by
// RestartLimit consecutive ends with no speech in between.
func (a *InputAdapter) handleEnd() {
	a.mu.Lock()
	if !a.capturing {
		a.mu.Unlock()
		return
	}
	a.restartFails++
	if a.restartFails > a.cfg.RestartLimit {
		a.capturing = false
		a.mu.Unlock()
		a.logger.Warn("Speech capture restart limit reached",
			zap.Int("limit", a.cfg.RestartLimit))
		a.notifyError(ErrRestartLoop)
		return
	}
	a.mu.Unlock()

	metrics.RecordSpeechRestart()
	if err := a.rec.Start(a.handlers()); err != nil {
		a.mu.Lock()
		a.capturing = false
		a.mu.Unlock()
		a.logger.Warn("Speech capture restart failed", zap.Error(err))
		a.notifyError(err)
	}
}

func (a *InputAdapter) handleError(err error) {
	if errors.Is(err, ErrNoSpeech) {
		// transient; capture continues
		a.logger.Debug("Ignoring transient recognition error", zap.Error(err))
		return
	}

	a.mu.Lock()
	wasCapturing := a.capturing
	a.capturing = false
	a.mu.Unlock()

	if wasCapturing {
		a.rec.Stop()
		a.logger.Warn("Speech capture failed", zap.Error(err))
		a.notifyError(err)
	}
}

func (a *InputAdapter) notifyError(err error) {
	if a.OnError != nil {
		a.OnError(err)
	}
}
