package speech

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

type OutputConfig struct {
	// ChunkSize bounds each playback chunk, in bytes. Defaults to 200,
	// matching common synthesis engine limits.
	ChunkSize int

	// Gap is the pause between consecutive chunks, kept short to avoid
	// engine glitching.
	Gap time.Duration
}

// OutputAdapter reads arbitrarily long text aloud as an ordered queue of
// bounded chunks. At most one utterance plays at a time; a new Speak or
// a Cancel discards whatever remains of the previous queue.
type OutputAdapter struct {
	syn    Synthesizer
	cfg    OutputConfig
	logger *zap.Logger

	mu       sync.Mutex
	gen      uint64
	queue    []string
	speaking bool
	onDone   func()
}

func NewOutputAdapter(syn Synthesizer, cfg OutputConfig, logger *zap.Logger) *OutputAdapter {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 200
	}
	if cfg.Gap < 0 {
		cfg.Gap = 0
	}
	return &OutputAdapter{syn: syn, cfg: cfg, logger: logger}
}

// Supported reports whether the synthesizer can play audio on this
// platform.
func (a *OutputAdapter) Supported() bool {
	return a.syn.Supported()
}

// Speak cancels any in-flight utterance, splits text into chunks and
// plays them strictly in order. onDone, if non-nil, runs once after the
// last chunk finishes; it never runs if the utterance is cancelled or
// superseded.
func (a *OutputAdapter) Speak(text string, onDone func()) error {
	if !a.syn.Supported() {
		return ErrUnsupported
	}

	chunks := Chunk(text, a.cfg.ChunkSize)
	if len(chunks) == 0 {
		return nil
	}

	a.mu.Lock()
	a.gen++
	gen := a.gen
	a.queue = chunks
	a.speaking = true
	a.onDone = onDone
	a.mu.Unlock()

	a.syn.Cancel()
	a.playNext(gen)
	return nil
}

// Cancel stops the current chunk and discards the remaining queue.
func (a *OutputAdapter) Cancel() {
	a.mu.Lock()
	a.gen++
	a.queue = nil
	a.speaking = false
	a.onDone = nil
	a.mu.Unlock()

	a.syn.Cancel()
}

// Speaking reports whether an utterance is in progress.
func (a *OutputAdapter) Speaking() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.speaking
}

func (a *OutputAdapter) playNext(gen uint64) {
	a.mu.Lock()
	if gen != a.gen {
		// superseded by a newer Speak or a Cancel
		a.mu.Unlock()
		return
	}
	if len(a.queue) == 0 {
		a.speaking = false
		done := a.onDone
		a.onDone = nil
		a.mu.Unlock()
		if done != nil {
			done()
		}
		return
	}
	chunk := a.queue[0]
	a.queue = a.queue[1:]
	a.mu.Unlock()

	err := a.syn.Speak(chunk, func(playErr error) {
		a.afterChunk(gen, playErr)
	})
	if err != nil {
		a.afterChunk(gen, err)
	}
}

// afterChunk advances the queue after one chunk ends. Playback errors on
// a single chunk do not abort the utterance; the next chunk still plays.
func (a *OutputAdapter) afterChunk(gen uint64, err error) {
	if err != nil {
		a.logger.Warn("Chunk playback failed, continuing", zap.Error(err))
	}

	if a.cfg.Gap > 0 {
		time.AfterFunc(a.cfg.Gap, func() { a.playNext(gen) })
		return
	}
	a.playNext(gen)
}

// Chunk splits text into pieces of at most limit bytes, breaking on a
// space when one falls inside the window and never splitting a UTF-8
// sequence.
func Chunk(text string, limit int) []string {
	var chunks []string

	remaining := strings.TrimSpace(text)
	for len(remaining) > limit {
		cut := strings.LastIndexByte(remaining[:limit+1], ' ')
		if cut <= 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(remaining[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
		}
		chunk := strings.TrimSpace(remaining[:cut])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		remaining = strings.TrimSpace(remaining[cut:])
	}
	if remaining != "" {
		chunks = append(chunks, remaining)
	}
	return chunks
}
