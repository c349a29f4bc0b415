// Package session drives one interview from the first question to
// completion: per-question answer and feedback slots, the current
// position, the elapsed-time ticker and the submit flow.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Rahul-150705/interviewflow-pro/internal/metrics"
	"github.com/Rahul-150705/interviewflow-pro/internal/models"
)

var (
	ErrEmptyAnswer     = errors.New("answer is empty")
	ErrSubmitInFlight  = errors.New("a submit is already in flight")
	ErrNotAnswering    = errors.New("current question is not awaiting an answer")
	ErrNotReviewing    = errors.New("current question has no feedback to advance from")
	ErrSessionComplete = errors.New("session is complete")
	ErrNoQuestions     = errors.New("interview has no questions")
	ErrOutOfRange      = errors.New("question index out of range")
)

// Gateway is the grading boundary; *gateway.Client satisfies it.
type Gateway interface {
	SubmitAnswer(ctx context.Context, questionID, answer string) (*models.AnswerFeedback, error)
}

type Options struct {
	// TickInterval drives the elapsed-seconds counter; defaults to 1s.
	TickInterval time.Duration

	// AutoSaveDelay is how long the answer text must be stable before
	// the saved indicator turns on; defaults to 900ms.
	AutoSaveDelay time.Duration

	// OnComplete receives the finalized bundle when the session ends.
	OnComplete func(models.Bundle)
}

type Controller struct {
	gw     Gateway
	logger *zap.Logger
	opts   Options

	interviewID string
	jobTitle    string
	round       models.RoundType
	questions   []models.Question

	mu         sync.Mutex
	slots      []models.AnswerSlot
	current    int
	phase      models.Phase
	elapsed    int
	submitting bool
	saved      bool
	saveTimer  *time.Timer
	ticker     *time.Ticker
	done       chan struct{}
	closeOnce  sync.Once
}

// NewController builds a controller for one started interview and begins
// the elapsed-time ticker. Close must be called on teardown.
func NewController(gw Gateway, interview *models.InterviewSession, round models.RoundType, logger *zap.Logger, opts Options) (*Controller, error) {
	if len(interview.Questions) == 0 {
		return nil, ErrNoQuestions
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.AutoSaveDelay <= 0 {
		opts.AutoSaveDelay = 900 * time.Millisecond
	}

	c := &Controller{
		gw:          gw,
		logger:      logger,
		opts:        opts,
		interviewID: interview.ID,
		jobTitle:    interview.JobTitle,
		round:       round,
		questions:   interview.Questions,
		slots:       make([]models.AnswerSlot, len(interview.Questions)),
		phase:       models.PhaseAnswering,
		ticker:      time.NewTicker(opts.TickInterval),
		done:        make(chan struct{}),
	}
	go c.tickLoop()

	logger.Info("Interview session started",
		zap.String("interview_id", interview.ID),
		zap.String("round", string(round)),
		zap.Int("questions", len(interview.Questions)))
	return c, nil
}

// tickLoop increments elapsed time until the session is torn down. It is
// not paused by answering/reviewing transitions.
func (c *Controller) tickLoop() {
	for {
		select {
		case <-c.ticker.C:
			c.mu.Lock()
			c.elapsed++
			c.mu.Unlock()
		case <-c.done:
			return
		}
	}
}

// Close stops the ticker and any pending debounce timer. Safe to call
// more than once.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.ticker.Stop()
		c.mu.Lock()
		if c.saveTimer != nil {
			c.saveTimer.Stop()
			c.saveTimer = nil
		}
		c.mu.Unlock()
	})
}

func (c *Controller) InterviewID() string { return c.interviewID }

func (c *Controller) JobTitle() string { return c.jobTitle }

func (c *Controller) Round() models.RoundType { return c.round }

func (c *Controller) QuestionCount() int { return len(c.questions) }

func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Controller) Phase() models.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Controller) Elapsed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

// Question returns the question at the current position.
func (c *Controller) Question() models.Question {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.questions[c.current]
}

// Slot returns a copy of the slot at index i.
func (c *Controller) Slot(i int) (models.AnswerSlot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.slots) {
		return models.AnswerSlot{}, ErrOutOfRange
	}
	return c.slots[i], nil
}

// SetAnswer updates the current answer text and resets the auto-save
// indicator; the indicator turns back on once the text has been stable
// for the debounce window. Purely cosmetic, nothing is persisted.
func (c *Controller) SetAnswer(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.slots[c.current].RawAnswer = text
	c.saved = false
	if c.saveTimer != nil {
		c.saveTimer.Stop()
	}
	c.saveTimer = time.AfterFunc(c.opts.AutoSaveDelay, func() {
		c.mu.Lock()
		c.saved = true
		c.mu.Unlock()
	})
}

func (c *Controller) Saved() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saved
}

// SetLanguage tags the current slot's language for coding rounds.
func (c *Controller) SetLanguage(lang string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots[c.current].Language = lang
}

// GradeFunc grades one formatted answer and returns its feedback. The
// controller lock is not held while it runs.
type GradeFunc func(ctx context.Context, questionID, answer string) (*models.Feedback, error)

// Submit grades the current answer through the gateway. Valid only
// while answering; an empty answer is rejected locally without a
// network call, and a remote failure leaves the slot and phase
// untouched so the user can retry.
func (c *Controller) Submit(ctx context.Context) (*models.Feedback, error) {
	return c.SubmitVia(ctx, func(ctx context.Context, questionID, answer string) (*models.Feedback, error) {
		resp, err := c.gw.SubmitAnswer(ctx, questionID, answer)
		if err != nil {
			return nil, err
		}
		return &models.Feedback{Score: resp.Score, Explanation: resp.AIFeedback}, nil
	})
}

// SubmitVia is Submit with the grading call swapped out; the voice flow
// grades spoken answers through a different backend operation. Guards
// and state transitions are identical to Submit.
func (c *Controller) SubmitVia(ctx context.Context, grade GradeFunc) (*models.Feedback, error) {
	c.mu.Lock()
	if c.phase == models.PhaseComplete {
		c.mu.Unlock()
		return nil, ErrSessionComplete
	}
	if c.phase != models.PhaseAnswering {
		c.mu.Unlock()
		return nil, ErrNotAnswering
	}
	if c.submitting {
		c.mu.Unlock()
		return nil, ErrSubmitInFlight
	}

	idx := c.current
	payload := c.answerPayload(idx)
	if strings.TrimSpace(payload) == "" || strings.TrimSpace(c.slots[idx].RawAnswer) == "" {
		c.mu.Unlock()
		return nil, ErrEmptyAnswer
	}
	questionID := c.questions[idx].ID
	c.submitting = true
	c.mu.Unlock()

	feedback, err := grade(ctx, questionID, payload)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false

	if err != nil {
		c.logger.Warn("Answer submission failed",
			zap.String("question_id", questionID),
			zap.Error(err))
		return nil, err
	}

	c.slots[idx].Feedback = feedback
	if c.phase != models.PhaseComplete {
		c.phase = c.phaseFor(c.current)
	}
	metrics.RecordSubmission()

	c.logger.Info("Answer graded",
		zap.String("question_id", questionID),
		zap.Int("score", feedback.Score))
	return feedback, nil
}

// answerPayload formats the raw answer for submission; coding answers
// carry their language header. Callers hold the lock.
func (c *Controller) answerPayload(i int) string {
	slot := c.slots[i]
	if c.round.IsCoding() && slot.Language != "" {
		return fmt.Sprintf("Language: %s\n\n%s", slot.Language, slot.RawAnswer)
	}
	return slot.RawAnswer
}

// phaseFor classifies index i: a question with feedback is presented as
// reviewing, one without as answering. Callers hold the lock.
func (c *Controller) phaseFor(i int) models.Phase {
	if c.slots[i].Feedback != nil {
		return models.PhaseReviewing
	}
	return models.PhaseAnswering
}

// Next advances after feedback is shown. On the last question it
// completes the session and emits the finalized bundle.
func (c *Controller) Next() error {
	c.mu.Lock()
	if c.phase == models.PhaseComplete {
		c.mu.Unlock()
		return ErrSessionComplete
	}
	if c.phase != models.PhaseReviewing {
		c.mu.Unlock()
		return ErrNotReviewing
	}
	return c.advanceLocked()
}

// Skip moves past the current question without submitting, leaving its
// slot ungraded. On the last question it completes the session with the
// feedback collected so far.
func (c *Controller) Skip() error {
	c.mu.Lock()
	if c.phase == models.PhaseComplete {
		c.mu.Unlock()
		return ErrSessionComplete
	}
	if c.phase != models.PhaseAnswering {
		c.mu.Unlock()
		return ErrNotAnswering
	}
	return c.advanceLocked()
}

// advanceLocked moves forward one question or completes the session.
// The caller holds the lock; it is released here.
func (c *Controller) advanceLocked() error {
	if c.current+1 < len(c.questions) {
		c.current++
		c.phase = c.phaseFor(c.current)
		c.saved = false
		c.mu.Unlock()
		return nil
	}

	c.phase = models.PhaseComplete
	bundle := c.bundleLocked()
	c.mu.Unlock()

	c.Close()
	metrics.RecordSessionCompleted()
	c.logger.Info("Interview session complete",
		zap.String("interview_id", c.interviewID),
		zap.Int("graded", len(bundle.Feedbacks)))

	if c.opts.OnComplete != nil {
		c.opts.OnComplete(bundle)
	}
	return nil
}

// Previous revisits the prior question. A question that already has
// feedback is presented as reviewing and is never silently reset.
func (c *Controller) Previous() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == models.PhaseComplete {
		return ErrSessionComplete
	}
	if c.current == 0 {
		return ErrOutOfRange
	}
	c.current--
	c.phase = c.phaseFor(c.current)
	return nil
}

// JumpTo moves straight to question j, preserving any feedback there.
func (c *Controller) JumpTo(j int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == models.PhaseComplete {
		return ErrSessionComplete
	}
	if j < 0 || j >= len(c.questions) {
		return ErrOutOfRange
	}
	c.current = j
	c.phase = c.phaseFor(c.current)
	return nil
}

// Bundle snapshots the finalized output: formatted answers for every
// question and the feedback entries collected so far.
func (c *Controller) Bundle() models.Bundle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bundleLocked()
}

func (c *Controller) bundleLocked() models.Bundle {
	answers := make([]string, len(c.slots))
	var feedbacks []models.Feedback
	for i := range c.slots {
		answers[i] = c.answerPayload(i)
		if c.slots[i].Feedback != nil {
			feedbacks = append(feedbacks, *c.slots[i].Feedback)
		}
	}
	return models.Bundle{
		InterviewID: c.interviewID,
		JobTitle:    c.jobTitle,
		Round:       c.round,
		Questions:   c.questions,
		Answers:     answers,
		Feedbacks:   feedbacks,
		ElapsedSecs: c.elapsed,
	}
}
