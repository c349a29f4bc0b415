package session

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Rahul-150705/interviewflow-pro/internal/models"
	"github.com/Rahul-150705/interviewflow-pro/internal/speech"
)

// Grader is the spoken-answer grading boundary; *gateway.Client
// satisfies it.
type Grader interface {
	VoiceSubmit(ctx context.Context, req *models.VoiceSubmitRequest) (*models.VoiceFeedback, error)
}

// VoiceFlow layers speech I/O over a Controller: questions and feedback
// are read aloud, answers come from speech capture, and finishing the
// feedback playback automatically reads the next question. Spoken
// answers are graded through the voice-interview endpoint, which takes
// the question text alongside the transcript.
type VoiceFlow struct {
	ctrl   *Controller
	grader Grader
	input  *speech.InputAdapter
	output *speech.OutputAdapter
	logger *zap.Logger
}

func NewVoiceFlow(ctrl *Controller, grader Grader, input *speech.InputAdapter, output *speech.OutputAdapter, logger *zap.Logger) *VoiceFlow {
	return &VoiceFlow{ctrl: ctrl, grader: grader, input: input, output: output, logger: logger}
}

// Supported reports whether both speech capabilities are available.
// Checked once when voice features are offered; a false here disables
// them rather than failing every attempt.
func (v *VoiceFlow) Supported() bool {
	return v.input != nil && v.output != nil &&
		v.input.Supported() && v.output.Supported()
}

// ReadQuestion speaks the current question.
func (v *VoiceFlow) ReadQuestion() error {
	if v.ctrl.Phase() == models.PhaseComplete {
		return ErrSessionComplete
	}
	return v.output.Speak(v.ctrl.Question().Text, nil)
}

// BeginAnswer starts capturing the spoken answer; playback, if any, is
// cancelled by the capture start.
func (v *VoiceFlow) BeginAnswer() error {
	return v.input.Start()
}

// FinishAnswer stops capture, submits the finalized transcript and reads
// the feedback aloud. When the feedback finishes playing the flow
// advances and reads the next question, completing the session after the
// last one.
func (v *VoiceFlow) FinishAnswer(ctx context.Context) (*models.Feedback, error) {
	text, err := v.input.Stop()
	if err != nil {
		return nil, err
	}

	v.ctrl.SetAnswer(text)
	questionText := v.ctrl.Question().Text
	feedback, err := v.ctrl.SubmitVia(ctx, func(ctx context.Context, questionID, answer string) (*models.Feedback, error) {
		resp, err := v.grader.VoiceSubmit(ctx, &models.VoiceSubmitRequest{
			QuestionID:   questionID,
			QuestionText: questionText,
			UserAnswer:   answer,
		})
		if err != nil {
			return nil, err
		}
		return &models.Feedback{Score: resp.Score, Explanation: resp.FeedbackText}, nil
	})
	if err != nil {
		return nil, err
	}

	if speakErr := v.output.Speak(feedback.Explanation, v.advanceAndRead); speakErr != nil {
		// capability loss mid-session: advance silently
		v.logger.Warn("Feedback playback unavailable", zap.Error(speakErr))
		v.advanceAndRead()
	}
	return feedback, nil
}

// Skip abandons the current question and reads the next one.
func (v *VoiceFlow) Skip() error {
	v.output.Cancel()
	if err := v.ctrl.Skip(); err != nil {
		return err
	}
	if v.ctrl.Phase() == models.PhaseComplete {
		return nil
	}
	return v.ReadQuestion()
}

func (v *VoiceFlow) advanceAndRead() {
	if err := v.ctrl.Next(); err != nil {
		if !errors.Is(err, ErrSessionComplete) {
			v.logger.Warn("Could not advance voice session", zap.Error(err))
		}
		return
	}
	if v.ctrl.Phase() == models.PhaseComplete {
		return
	}
	if err := v.ReadQuestion(); err != nil {
		v.logger.Warn("Could not read next question", zap.Error(err))
	}
}
