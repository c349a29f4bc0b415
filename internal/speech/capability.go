// Package speech orchestrates speech capture and playback over injected
// platform capability providers, so non-browser targets and tests can
// supply their own implementations.
package speech

import "errors"

var (
	// ErrUnsupported is returned when the platform capability is absent.
	// Callers should disable voice features once rather than retrying.
	ErrUnsupported = errors.New("speech capability not supported on this platform")

	// ErrNoSpeech marks the transient "no speech detected" recognizer
	// error. Providers wrap it so capture can swallow it and continue.
	ErrNoSpeech = errors.New("no speech detected")

	ErrAlreadyCapturing = errors.New("speech capture already active")
	ErrNotCapturing     = errors.New("speech capture not active")

	// ErrRestartLoop is surfaced when continuous recognition keeps
	// ending immediately after every restart.
	ErrRestartLoop = errors.New("speech capture restart limit reached")
)

// RecognitionEvent carries recognizer output covering audio received
// since the previous event. Finals are recognizer-confirmed segments in
// recognition order; Interim is provisional text that replaces any
// earlier interim text, including replacing it with "".
type RecognitionEvent struct {
	Finals  []string
	Interim string
}

// RecognitionHandlers receive recognizer callbacks. OnEnd fires when the
// provider terminates the stream unilaterally (silence timeout, platform
// limits), not in response to Stop.
type RecognitionHandlers struct {
	OnEvent func(RecognitionEvent)
	OnEnd   func()
	OnError func(error)
}

// Recognizer is the injected continuous speech-to-text capability.
type Recognizer interface {
	Supported() bool
	Start(handlers RecognitionHandlers) error
	Stop()
}

// Synthesizer is the injected text-to-speech capability. Speak plays one
// chunk and invokes done exactly once on playback end or error; when
// Speak itself returns a non-nil error, done must not be invoked. Cancel
// stops the current chunk, after which pending done callbacks may be
// dropped by the caller.
type Synthesizer interface {
	Supported() bool
	Speak(text string, done func(error)) error
	Cancel()
}

// UnsupportedRecognizer is the default for targets without a capture
// capability.
type UnsupportedRecognizer struct{}

func (UnsupportedRecognizer) Supported() bool { return false }

func (UnsupportedRecognizer) Start(RecognitionHandlers) error { return ErrUnsupported }

func (UnsupportedRecognizer) Stop() {}

// UnsupportedSynthesizer is the default for targets without a playback
// capability.
type UnsupportedSynthesizer struct{}

func (UnsupportedSynthesizer) Supported() bool { return false }

func (UnsupportedSynthesizer) Speak(string, func(error)) error { return ErrUnsupported }

func (UnsupportedSynthesizer) Cancel() {}
