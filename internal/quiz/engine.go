// Package quiz runs multiple-choice test sessions over a user's daily words
// and commits the outcome into the per-word attempt counters.
package quiz

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/vocabot/pkg/models"
)

// DistractorSource supplies random incorrect options from the catalog.
type DistractorSource interface {
	GetRandomDistractors(ctx context.Context, excludeWordID int64, count int) ([]models.Word, error)
}

// ProgressStore persists per-word attempt counters and learned flags.
type ProgressStore interface {
	RecordAttempt(ctx context.Context, userID, wordID int64, correct bool, at time.Time) error
	SumAttempts(ctx context.Context, userID int64, wordIDs []int64) (correct, total int, err error)
	MarkLearned(ctx context.Context, userID int64, wordIDs []int64) error
}

// ResultStore records finished test outcomes. Optional.
type ResultStore interface {
	Create(ctx context.Context, result *models.TestResult) error
}

// Pronouncer synthesizes pronunciation audio. Failure yields an empty ref and
// never blocks question delivery.
type Pronouncer interface {
	Synthesize(text string) (string, error)
}

// Options configures an Engine.
type Options struct {
	OptionsCount   int     // answer options per question, correct one included
	PassPercentage float64 // minimal aggregate percentage to pass
	Pronouncer     Pronouncer
	Rand           *rand.Rand       // defaults to a time-seeded source
	Now            func() time.Time // defaults to time.Now
}

// Engine runs quiz sessions, at most one active session per user. Starting a
// new session for a user implicitly abandons the previous one; abandoned
// sessions carry no state beyond what RecordAttempt already persisted.
type Engine struct {
	words    DistractorSource
	progress ProgressStore
	results  ResultStore

	optionsCount   int
	passPercentage float64
	pronouncer     Pronouncer
	now            func() time.Time

	mu       sync.Mutex
	rnd      *rand.Rand
	sessions map[int64]*Session
}

// NewEngine creates a quiz engine.
func NewEngine(words DistractorSource, progress ProgressStore, results ResultStore, opts Options) *Engine {
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		words:          words,
		progress:       progress,
		results:        results,
		optionsCount:   opts.OptionsCount,
		passPercentage: opts.PassPercentage,
		pronouncer:     opts.Pronouncer,
		now:            now,
		rnd:            rnd,
		sessions:       make(map[int64]*Session),
	}
}

// StartSession begins a session over the given word set. The order of words
// is frozen for the lifetime of the session.
func (e *Engine) StartSession(userID int64, words []models.TestWord) (*Session, error) {
	if len(words) == 0 {
		return nil, ErrNoWords
	}

	session := &Session{
		ID:        uuid.New(),
		UserID:    userID,
		Words:     words,
		StartedAt: e.now(),
	}

	e.mu.Lock()
	if prev, ok := e.sessions[userID]; ok {
		log.Printf("Abandoning unfinished session %s for user %d", prev.ID, userID)
	}
	e.sessions[userID] = session
	e.mu.Unlock()

	return session, nil
}

// ActiveSession returns the user's current session, or nil.
func (e *Engine) ActiveSession(userID int64) *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessions[userID]
}

// NextQuestion produces the question for the session's current word. A nil
// question with a nil error means the session is complete and should be
// finished. Direction and option order are chosen uniformly at random. The
// engine's lock is never held across the distractor query or the
// pronunciation fetch, so one user's slow synthesis does not stall the rest.
func (e *Engine) NextQuestion(ctx context.Context, userID int64) (*Question, error) {
	e.mu.Lock()
	session, ok := e.sessions[userID]
	if !ok {
		e.mu.Unlock()
		return nil, ErrInvalidSession
	}
	if session.Index >= len(session.Words) {
		e.mu.Unlock()
		return nil, nil
	}

	word := session.Words[session.Index]

	direction := EnglishToTranslation
	if e.rnd.Intn(2) == 1 {
		direction = TranslationToEnglish
	}
	e.mu.Unlock()

	var prompt, correct string
	if direction == EnglishToTranslation {
		prompt = word.EnglishWord
		correct = word.Translation
	} else {
		prompt = word.Translation
		correct = word.EnglishWord
	}

	distractors, err := e.words.GetRandomDistractors(ctx, word.ID, e.optionsCount-1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	// A short catalog yields fewer options; the question still goes out
	options := make([]string, 0, len(distractors)+1)
	for _, d := range distractors {
		if direction == EnglishToTranslation {
			options = append(options, d.Translation)
		} else {
			options = append(options, d.EnglishWord)
		}
	}
	options = append(options, correct)

	// rnd is not safe for concurrent use
	e.mu.Lock()
	e.rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	e.mu.Unlock()

	question := &Question{
		WordID:        word.ID,
		Prompt:        prompt,
		Direction:     direction,
		Options:       options,
		CorrectOption: correct,
	}

	if direction == EnglishToTranslation && e.pronouncer != nil {
		ref, err := e.pronouncer.Synthesize(word.EnglishWord)
		if err != nil {
			log.Printf("Pronunciation unavailable for %q: %v", word.EnglishWord, err)
		} else {
			question.AudioRef = ref
		}
	}

	return question, nil
}

// SubmitAnswer verifies the selected option against the correct one by exact
// text match, persists the attempt as one atomic counter update and advances
// the session. A storage failure leaves the session on the same question with
// no counters changed. Exactly one of several concurrent submissions for the
// same question wins; the others get ErrInvalidSession and the session stays
// alive on its current question.
func (e *Engine) SubmitAnswer(ctx context.Context, userID, wordID int64, selected, correct string) (AnswerOutcome, error) {
	e.mu.Lock()
	session, ok := e.sessions[userID]
	if !ok || session.Index >= len(session.Words) || session.Words[session.Index].ID != wordID {
		delete(e.sessions, userID)
		e.mu.Unlock()
		return AnswerOutcome{}, ErrInvalidSession
	}
	if session.answering {
		// Duplicate press while the first submission is still persisting
		e.mu.Unlock()
		return AnswerOutcome{}, ErrInvalidSession
	}
	session.answering = true
	e.mu.Unlock()

	isCorrect := selected == correct

	if err := e.progress.RecordAttempt(ctx, userID, wordID, isCorrect, e.now()); err != nil {
		e.mu.Lock()
		session.answering = false
		e.mu.Unlock()
		return AnswerOutcome{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	e.mu.Lock()
	session.answering = false
	session.Index++
	if isCorrect {
		session.Correct++
	}
	e.mu.Unlock()

	return AnswerOutcome{IsCorrect: isCorrect}, nil
}

// FinishSession computes the test outcome and commits it. The percentage
// aggregates the all-time attempt counters of the session's words, so
// attempts from earlier failed cycles carry into the result. A pass marks
// every session word learned; a fail changes nothing further. The caller is
// responsible for stamping the user's last test time afterwards.
func (e *Engine) FinishSession(ctx context.Context, userID int64) (*models.TestResult, error) {
	e.mu.Lock()
	session, ok := e.sessions[userID]
	if !ok {
		e.mu.Unlock()
		return nil, ErrInvalidSession
	}
	delete(e.sessions, userID)
	e.mu.Unlock()

	wordIDs := session.wordIDs()

	correct, total, err := e.progress.SumAttempts(ctx, userID, wordIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	var percentage float64
	if total > 0 {
		percentage = float64(correct) / float64(total) * 100
	}
	passed := total > 0 && percentage >= e.passPercentage

	if passed {
		if err := e.progress.MarkLearned(ctx, userID, wordIDs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
	}

	result := &models.TestResult{
		UserID:         userID,
		TotalWords:     len(session.Words),
		CorrectAnswers: session.Correct,
		Percentage:     percentage,
		Passed:         passed,
		TestDate:       e.now(),
	}

	if e.results != nil {
		if err := e.results.Create(ctx, result); err != nil {
			// The outcome is already committed; losing the history row is not fatal
			log.Printf("Failed to record test result for user %d: %v", userID, err)
		}
	}

	return result, nil
}
