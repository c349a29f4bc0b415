package speech

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSynthesizer records chunks and lets the test complete playback.
type fakeSynthesizer struct {
	mu      sync.Mutex
	spoken  []string
	done    func(error)
	cancels int
}

func (f *fakeSynthesizer) Supported() bool { return true }

func (f *fakeSynthesizer) Speak(text string, done func(error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spoken = append(f.spoken, text)
	f.done = done
	return nil
}

func (f *fakeSynthesizer) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
	f.done = nil
}

// finish completes the chunk currently playing.
func (f *fakeSynthesizer) finish() {
	f.mu.Lock()
	done := f.done
	f.done = nil
	f.mu.Unlock()
	if done != nil {
		done(nil)
	}
}

func (f *fakeSynthesizer) chunks() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.spoken...)
}

func (f *fakeSynthesizer) cancelCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancels
}

func newOutput(syn Synthesizer) *OutputAdapter {
	// no inter-chunk gap so tests can drive playback synchronously
	return NewOutputAdapter(syn, OutputConfig{ChunkSize: 200, Gap: 0}, zap.NewNop())
}

func TestOutput_LongTextSplitsIntoOrderedChunks(t *testing.T) {
	syn := &fakeSynthesizer{}
	out := newOutput(syn)

	text := strings.Repeat("A", 450)
	require.NoError(t, out.Speak(text, nil))

	syn.finish()
	syn.finish()
	syn.finish()

	chunks := syn.chunks()
	require.Len(t, chunks, 3)
	assert.Equal(t, strings.Repeat("A", 200), chunks[0])
	assert.Equal(t, strings.Repeat("A", 200), chunks[1])
	assert.Equal(t, strings.Repeat("A", 50), chunks[2])
	assert.False(t, out.Speaking())
}

func TestOutput_CancelDiscardsRemainder(t *testing.T) {
	syn := &fakeSynthesizer{}
	out := newOutput(syn)

	require.NoError(t, out.Speak(strings.Repeat("A", 450), nil))
	require.Len(t, syn.chunks(), 1, "only the first chunk should be playing")

	out.Cancel()
	syn.finish()

	assert.Len(t, syn.chunks(), 1, "cancelled chunks must never play")
	assert.False(t, out.Speaking())
}

func TestOutput_CompletionCallback(t *testing.T) {
	syn := &fakeSynthesizer{}
	out := newOutput(syn)

	completed := 0
	require.NoError(t, out.Speak("short message", func() { completed++ }))

	assert.True(t, out.Speaking())
	syn.finish()

	assert.Equal(t, 1, completed)
	assert.False(t, out.Speaking())
}

func TestOutput_CallbackSkippedOnCancel(t *testing.T) {
	syn := &fakeSynthesizer{}
	out := newOutput(syn)

	completed := 0
	require.NoError(t, out.Speak("short message", func() { completed++ }))
	out.Cancel()
	syn.finish()

	assert.Zero(t, completed, "cancelled utterances must not report completion")
}

func TestOutput_NewSpeakSupersedesOld(t *testing.T) {
	syn := &fakeSynthesizer{}
	out := newOutput(syn)

	require.NoError(t, out.Speak(strings.Repeat("A", 450), nil))
	require.NoError(t, out.Speak("second utterance", nil))

	syn.finish()
	syn.finish()

	chunks := syn.chunks()
	require.Len(t, chunks, 2, "superseded queue must not keep playing")
	assert.Equal(t, "second utterance", chunks[1])
	assert.False(t, out.Speaking())
}

func TestOutput_ChunkErrorContinues(t *testing.T) {
	syn := &fakeSynthesizer{}
	out := newOutput(syn)

	require.NoError(t, out.Speak(strings.Repeat("A", 250), nil))

	// the engine reports a playback error for chunk 1; chunk 2 still plays
	syn.mu.Lock()
	done := syn.done
	syn.done = nil
	syn.mu.Unlock()
	done(assert.AnError)

	syn.finish()
	assert.Len(t, syn.chunks(), 2)
	assert.False(t, out.Speaking())
}

func TestOutput_EmptyTextIsNoop(t *testing.T) {
	syn := &fakeSynthesizer{}
	out := newOutput(syn)

	require.NoError(t, out.Speak("   \n ", nil))
	assert.Empty(t, syn.chunks())
	assert.False(t, out.Speaking())
}

func TestOutput_Unsupported(t *testing.T) {
	out := NewOutputAdapter(UnsupportedSynthesizer{}, OutputConfig{}, zap.NewNop())
	assert.ErrorIs(t, out.Speak("hello", nil), ErrUnsupported)
}

func TestOutput_SupportedReflectsProvider(t *testing.T) {
	assert.True(t, newOutput(&fakeSynthesizer{}).Supported())
	assert.False(t, NewOutputAdapter(UnsupportedSynthesizer{}, OutputConfig{}, zap.NewNop()).Supported())
}

func TestChunk_WordBoundaries(t *testing.T) {
	chunks := Chunk("the quick brown fox jumps over the lazy dog", 15)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 15)
	}
	assert.Equal(t, "the quick brown fox jumps over the lazy dog", strings.Join(chunks, " "))
}

func TestChunk_HardCutWithoutSpaces(t *testing.T) {
	chunks := Chunk(strings.Repeat("x", 401), 200)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 200)
	assert.Len(t, chunks[1], 200)
	assert.Len(t, chunks[2], 1)
}

func TestChunk_NeverSplitsUTF8(t *testing.T) {
	chunks := Chunk(strings.Repeat("é", 101), 201)
	for _, chunk := range chunks {
		assert.True(t, strings.ToValidUTF8(chunk, "") == chunk, "chunk must stay valid UTF-8")
	}
}

func TestChunk_ShortTextSingleChunk(t *testing.T) {
	chunks := Chunk("hello world", 200)
	assert.Equal(t, []string{"hello world"}, chunks)
}
