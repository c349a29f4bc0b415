package session

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Rahul-150705/interviewflow-pro/internal/models"
	"github.com/Rahul-150705/interviewflow-pro/internal/speech"
)

type voiceRecognizer struct {
	mu       sync.Mutex
	handlers speech.RecognitionHandlers
}

func (f *voiceRecognizer) Supported() bool { return true }

func (f *voiceRecognizer) Start(h speech.RecognitionHandlers) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers = h
	return nil
}

func (f *voiceRecognizer) Stop() {}

func (f *voiceRecognizer) say(text string) {
	f.mu.Lock()
	h := f.handlers
	f.mu.Unlock()
	h.OnEvent(speech.RecognitionEvent{Finals: []string{text}})
}

// voiceSynthesizer completes every chunk immediately.
type voiceSynthesizer struct {
	mu     sync.Mutex
	spoken []string
}

func (f *voiceSynthesizer) Supported() bool { return true }

func (f *voiceSynthesizer) Speak(text string, done func(error)) error {
	f.mu.Lock()
	f.spoken = append(f.spoken, text)
	f.mu.Unlock()
	done(nil)
	return nil
}

func (f *voiceSynthesizer) Cancel() {}

func (f *voiceSynthesizer) utterances() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.spoken...)
}

// voiceGrader fakes the spoken-answer grading endpoint.
type voiceGrader struct {
	mu     sync.Mutex
	scores []int
	err    error
	calls  int
	reqs   []models.VoiceSubmitRequest
}

func (g *voiceGrader) VoiceSubmit(ctx context.Context, req *models.VoiceSubmitRequest) (*models.VoiceFeedback, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.reqs = append(g.reqs, *req)
	if g.err != nil {
		return nil, g.err
	}
	score := 75
	if len(g.scores) > 0 {
		score = g.scores[0]
		g.scores = g.scores[1:]
	}
	return &models.VoiceFeedback{Score: score, FeedbackText: fmt.Sprintf("feedback for %s", req.QuestionID)}, nil
}

// newVoiceFlow also returns the controller's text gateway so tests can
// assert spoken answers never reach it.
func newVoiceFlow(t *testing.T, grader *voiceGrader) (*VoiceFlow, *voiceRecognizer, *voiceSynthesizer, *scriptedGateway) {
	t.Helper()
	textGW := &scriptedGateway{}
	ctrl := newTestController(t, textGW, models.RoundBehavioral, Options{})

	rec := &voiceRecognizer{}
	syn := &voiceSynthesizer{}
	output := speech.NewOutputAdapter(syn, speech.OutputConfig{ChunkSize: 500}, zap.NewNop())
	input := speech.NewInputAdapter(rec, output, speech.InputConfig{}, zap.NewNop())

	return NewVoiceFlow(ctrl, grader, input, output, zap.NewNop()), rec, syn, textGW
}

func TestVoiceFlow_FeedbackChainsIntoNextQuestion(t *testing.T) {
	grader := &voiceGrader{scores: []int{85}}
	flow, rec, syn, _ := newVoiceFlow(t, grader)

	require.NoError(t, flow.ReadQuestion())
	require.NoError(t, flow.BeginAnswer())
	rec.say("I would use buffered channels")

	fb, err := flow.FinishAnswer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 85, fb.Score)

	spoken := syn.utterances()
	// question 1, its feedback, then question 2 automatically
	require.Len(t, spoken, 3)
	assert.Equal(t, "Tell me about Go channels.", spoken[0])
	assert.Equal(t, "feedback for q-1", spoken[1])
	assert.Equal(t, "Design a rate limiter.", spoken[2])
}

func TestVoiceFlow_GradesThroughVoiceEndpoint(t *testing.T) {
	grader := &voiceGrader{scores: []int{85}}
	flow, rec, _, textGW := newVoiceFlow(t, grader)

	require.NoError(t, flow.BeginAnswer())
	rec.say("I would use buffered channels")
	_, err := flow.FinishAnswer(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, grader.calls)
	assert.Zero(t, textGW.calls, "spoken answers must not use the text grading endpoint")

	req := grader.reqs[0]
	assert.Equal(t, "q-1", req.QuestionID)
	assert.Equal(t, "Tell me about Go channels.", req.QuestionText)
	assert.Equal(t, "I would use buffered channels", req.UserAnswer)
}

func TestVoiceFlow_GradingFailurePreservesState(t *testing.T) {
	grader := &voiceGrader{err: fmt.Errorf("voice backend down")}
	flow, rec, syn, _ := newVoiceFlow(t, grader)

	require.NoError(t, flow.BeginAnswer())
	rec.say("my answer")
	_, err := flow.FinishAnswer(context.Background())
	require.Error(t, err)

	// no feedback played, the session did not advance
	assert.Empty(t, syn.utterances())
	require.NoError(t, flow.ReadQuestion())
	assert.Equal(t, "Tell me about Go channels.", syn.utterances()[0])
}

func TestVoiceFlow_EmptyCaptureRejected(t *testing.T) {
	grader := &voiceGrader{}
	flow, _, _, _ := newVoiceFlow(t, grader)

	require.NoError(t, flow.BeginAnswer())
	_, err := flow.FinishAnswer(context.Background())
	assert.ErrorIs(t, err, speech.ErrNoSpeech)
	assert.Zero(t, grader.calls, "no speech means no submission")
}

func TestVoiceFlow_SkipReadsNextQuestion(t *testing.T) {
	flow, _, syn, _ := newVoiceFlow(t, &voiceGrader{})

	require.NoError(t, flow.Skip())
	spoken := syn.utterances()
	require.Len(t, spoken, 1)
	assert.Equal(t, "Design a rate limiter.", spoken[0])
}

func TestVoiceFlow_LastAnswerCompletesQuietly(t *testing.T) {
	grader := &voiceGrader{scores: []int{70}}
	flow, rec, syn, _ := newVoiceFlow(t, grader)

	require.NoError(t, flow.Skip())
	require.NoError(t, flow.Skip())

	require.NoError(t, flow.BeginAnswer())
	rec.say("final spoken answer")
	_, err := flow.FinishAnswer(context.Background())
	require.NoError(t, err)

	// feedback for the last question plays, but nothing follows it
	spoken := syn.utterances()
	assert.Equal(t, "feedback for q-3", spoken[len(spoken)-1])
	assert.ErrorIs(t, flow.ReadQuestion(), ErrSessionComplete)
}

func TestVoiceFlow_UnsupportedProvidersDisableVoice(t *testing.T) {
	ctrl := newTestController(t, &scriptedGateway{}, models.RoundBehavioral, Options{})
	output := speech.NewOutputAdapter(speech.UnsupportedSynthesizer{}, speech.OutputConfig{}, zap.NewNop())
	input := speech.NewInputAdapter(speech.UnsupportedRecognizer{}, output, speech.InputConfig{}, zap.NewNop())
	flow := NewVoiceFlow(ctrl, &voiceGrader{}, input, output, zap.NewNop())

	assert.False(t, flow.Supported(), "platforms without speech providers must report voice as unavailable")
}
