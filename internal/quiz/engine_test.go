package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocabot/pkg/models"
)

// fakeCatalog serves distractors from a fixed in-memory word list.
type fakeCatalog struct {
	words []models.Word
	err   error
}

func (f *fakeCatalog) GetRandomDistractors(_ context.Context, excludeWordID int64, count int) ([]models.Word, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Word
	for _, w := range f.words {
		if w.ID != excludeWordID && len(out) < count {
			out = append(out, w)
		}
	}
	return out, nil
}

type attemptCounters struct {
	correct int
	total   int
}

// fakeProgress is a stateful in-memory progress store for one user.
type fakeProgress struct {
	attempts  map[int64]*attemptCounters
	learned   map[int64]bool
	recordErr error
	sumErr    error
}

func newFakeProgress() *fakeProgress {
	return &fakeProgress{
		attempts: make(map[int64]*attemptCounters),
		learned:  make(map[int64]bool),
	}
}

func (f *fakeProgress) RecordAttempt(_ context.Context, _, wordID int64, correct bool, _ time.Time) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	c, ok := f.attempts[wordID]
	if !ok {
		c = &attemptCounters{}
		f.attempts[wordID] = c
	}
	c.total++
	if correct {
		c.correct++
	}
	return nil
}

func (f *fakeProgress) SumAttempts(_ context.Context, _ int64, wordIDs []int64) (int, int, error) {
	if f.sumErr != nil {
		return 0, 0, f.sumErr
	}
	var correct, total int
	for _, id := range wordIDs {
		if c, ok := f.attempts[id]; ok {
			correct += c.correct
			total += c.total
		}
	}
	return correct, total, nil
}

func (f *fakeProgress) MarkLearned(_ context.Context, _ int64, wordIDs []int64) error {
	for _, id := range wordIDs {
		f.learned[id] = true
	}
	return nil
}

type fakeResults struct {
	saved []*models.TestResult
}

func (f *fakeResults) Create(_ context.Context, r *models.TestResult) error {
	f.saved = append(f.saved, r)
	return nil
}

type failingPronouncer struct{}

func (failingPronouncer) Synthesize(string) (string, error) {
	return "", errors.New("tts offline")
}

func catalogWords(n int) []models.Word {
	words := make([]models.Word, n)
	for i := range words {
		words[i] = models.Word{
			ID:          int64(i + 1),
			EnglishWord: fmt.Sprintf("english%d", i+1),
			Translation: fmt.Sprintf("translation%d", i+1),
		}
	}
	return words
}

func testWords(n int) []models.TestWord {
	words := make([]models.TestWord, n)
	for i, w := range catalogWords(n) {
		words[i] = models.TestWord{Word: w}
	}
	return words
}

func newTestEngine(catalog *fakeCatalog, progress *fakeProgress, results ResultStore, pass float64) *Engine {
	return NewEngine(catalog, progress, results, Options{
		OptionsCount:   3,
		PassPercentage: pass,
		Rand:           rand.New(rand.NewSource(42)),
	})
}

// answerAll walks the whole session, answering each question per the choose
// function, and returns the number of questions answered.
func answerAll(t *testing.T, e *Engine, userID int64, choose func(q *Question) string) int {
	t.Helper()
	ctx := context.Background()
	answered := 0
	for {
		q, err := e.NextQuestion(ctx, userID)
		require.NoError(t, err)
		if q == nil {
			return answered
		}
		_, err = e.SubmitAnswer(ctx, userID, q.WordID, choose(q), q.CorrectOption)
		require.NoError(t, err)
		answered++
	}
}

func wrongOption(q *Question) string {
	for _, o := range q.Options {
		if o != q.CorrectOption {
			return o
		}
	}
	return q.CorrectOption + " (wrong)"
}

func TestEngineAllCorrectPasses(t *testing.T) {
	ctx := context.Background()
	progress := newFakeProgress()
	results := &fakeResults{}
	e := newTestEngine(&fakeCatalog{words: catalogWords(20)}, progress, results, 92)

	words := testWords(5)
	_, err := e.StartSession(1, words)
	require.NoError(t, err)

	answered := answerAll(t, e, 1, func(q *Question) string { return q.CorrectOption })
	assert.Equal(t, 5, answered)

	result, err := e.FinishSession(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 100.0, result.Percentage)
	assert.True(t, result.Passed)
	assert.Equal(t, 5, result.TotalWords)
	assert.Equal(t, 5, result.CorrectAnswers)
	for _, w := range words {
		assert.True(t, progress.learned[w.ID], "word %d should be learned", w.ID)
	}
	require.Len(t, results.saved, 1)
	assert.True(t, results.saved[0].Passed)

	// The session is gone once finished
	_, err = e.FinishSession(ctx, 1)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestEngineHalfCorrectFails(t *testing.T) {
	ctx := context.Background()
	progress := newFakeProgress()
	e := newTestEngine(&fakeCatalog{words: catalogWords(20)}, progress, nil, 92)

	_, err := e.StartSession(1, testWords(2))
	require.NoError(t, err)

	first := true
	answerAll(t, e, 1, func(q *Question) string {
		if first {
			first = false
			return q.CorrectOption
		}
		return wrongOption(q)
	})

	result, err := e.FinishSession(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 50.0, result.Percentage)
	assert.False(t, result.Passed)
	assert.Empty(t, progress.learned)
}

func TestEngineAggregatesHistoricalAttempts(t *testing.T) {
	ctx := context.Background()
	progress := newFakeProgress()
	// Two failed attempts from an earlier cycle weigh the percentage down
	progress.attempts[1] = &attemptCounters{correct: 0, total: 2}
	e := newTestEngine(&fakeCatalog{words: catalogWords(20)}, progress, nil, 92)

	_, err := e.StartSession(1, testWords(1))
	require.NoError(t, err)
	answerAll(t, e, 1, func(q *Question) string { return q.CorrectOption })

	result, err := e.FinishSession(ctx, 1)
	require.NoError(t, err)

	assert.InDelta(t, 100.0/3.0, result.Percentage, 0.001)
	assert.False(t, result.Passed)
}

func TestEngineNoAttemptsScoresZero(t *testing.T) {
	ctx := context.Background()
	progress := newFakeProgress()
	e := newTestEngine(&fakeCatalog{words: catalogWords(20)}, progress, nil, 92)

	_, err := e.StartSession(1, testWords(3))
	require.NoError(t, err)

	result, err := e.FinishSession(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Percentage)
	assert.False(t, result.Passed)
	assert.Empty(t, progress.learned)
}

func TestEngineCounterInvariant(t *testing.T) {
	progress := newFakeProgress()
	e := newTestEngine(&fakeCatalog{words: catalogWords(20)}, progress, nil, 92)

	_, err := e.StartSession(1, testWords(10))
	require.NoError(t, err)

	rnd := rand.New(rand.NewSource(7))
	answerAll(t, e, 1, func(q *Question) string {
		if rnd.Intn(2) == 0 {
			return q.CorrectOption
		}
		return wrongOption(q)
	})

	for id, c := range progress.attempts {
		assert.LessOrEqual(t, c.correct, c.total, "word %d", id)
	}
}

func TestEngineQuestionShape(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(&fakeCatalog{words: catalogWords(20)}, newFakeProgress(), nil, 92)

	_, err := e.StartSession(1, testWords(1))
	require.NoError(t, err)

	q, err := e.NextQuestion(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, q)

	assert.Len(t, q.Options, 3)
	assert.Contains(t, q.Options, q.CorrectOption)
	if q.Direction == EnglishToTranslation {
		assert.Equal(t, "english1", q.Prompt)
		assert.Equal(t, "translation1", q.CorrectOption)
	} else {
		assert.Equal(t, "translation1", q.Prompt)
		assert.Equal(t, "english1", q.CorrectOption)
	}
	// Distractors never include the tested word itself
	for i, o := range q.Options {
		if o == q.CorrectOption {
			continue
		}
		assert.NotEqual(t, q.Prompt, o, "option %d", i)
	}
}

func TestEngineDistractorShortageDegrades(t *testing.T) {
	ctx := context.Background()
	// Catalog holds only the tested word: no distractors at all
	e := newTestEngine(&fakeCatalog{words: catalogWords(1)}, newFakeProgress(), nil, 92)

	_, err := e.StartSession(1, testWords(1))
	require.NoError(t, err)

	q, err := e.NextQuestion(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, []string{q.CorrectOption}, q.Options)
}

func TestEngineStaleSubmissionDiscardsSession(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(&fakeCatalog{words: catalogWords(20)}, newFakeProgress(), nil, 92)

	_, err := e.StartSession(1, testWords(2))
	require.NoError(t, err)

	q, err := e.NextQuestion(ctx, 1)
	require.NoError(t, err)

	// Submitting a word id that is not the outstanding question kills the session
	_, err = e.SubmitAnswer(ctx, 1, q.WordID+999, "x", "x")
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = e.NextQuestion(ctx, 1)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestEngineNoSessionIsInvalid(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(&fakeCatalog{words: catalogWords(5)}, newFakeProgress(), nil, 92)

	_, err := e.NextQuestion(ctx, 42)
	assert.ErrorIs(t, err, ErrInvalidSession)
	_, err = e.SubmitAnswer(ctx, 42, 1, "a", "a")
	assert.ErrorIs(t, err, ErrInvalidSession)
	_, err = e.FinishSession(ctx, 42)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestEngineStorageFailureLeavesSessionIntact(t *testing.T) {
	ctx := context.Background()
	progress := newFakeProgress()
	e := newTestEngine(&fakeCatalog{words: catalogWords(20)}, progress, nil, 92)

	_, err := e.StartSession(1, testWords(2))
	require.NoError(t, err)

	q, err := e.NextQuestion(ctx, 1)
	require.NoError(t, err)

	progress.recordErr = errors.New("connection refused")
	_, err = e.SubmitAnswer(ctx, 1, q.WordID, q.CorrectOption, q.CorrectOption)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Empty(t, progress.attempts)

	// Same question is still outstanding once storage recovers
	progress.recordErr = nil
	retry, err := e.NextQuestion(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, q.WordID, retry.WordID)

	outcome, err := e.SubmitAnswer(ctx, 1, retry.WordID, retry.CorrectOption, retry.CorrectOption)
	require.NoError(t, err)
	assert.True(t, outcome.IsCorrect)
	assert.Equal(t, 1, progress.attempts[retry.WordID].total)
}

func TestEngineEmptyWordSetRejected(t *testing.T) {
	e := newTestEngine(&fakeCatalog{}, newFakeProgress(), nil, 92)

	_, err := e.StartSession(1, nil)
	assert.ErrorIs(t, err, ErrNoWords)
}

func TestEngineRestartAbandonsPreviousSession(t *testing.T) {
	e := newTestEngine(&fakeCatalog{words: catalogWords(20)}, newFakeProgress(), nil, 92)

	_, err := e.StartSession(1, testWords(3))
	require.NoError(t, err)
	answerAll(t, e, 1, func(q *Question) string { return q.CorrectOption })

	// A new session over a different set replaces the unfinished one
	fresh, err := e.StartSession(1, testWords(2))
	require.NoError(t, err)
	assert.Equal(t, fresh, e.ActiveSession(1))
	assert.Equal(t, 0, fresh.Index)
	assert.Equal(t, 2, fresh.Remaining())
}

// blockingProgress parks the first RecordAttempt call until released, so a
// test can interleave a second submission with an in-flight one.
type blockingProgress struct {
	*fakeProgress
	entered chan struct{}
	release chan struct{}
}

func (b *blockingProgress) RecordAttempt(ctx context.Context, userID, wordID int64, correct bool, at time.Time) error {
	b.entered <- struct{}{}
	<-b.release
	return b.fakeProgress.RecordAttempt(ctx, userID, wordID, correct, at)
}

func TestEngineDuplicateSubmissionRecordsOnce(t *testing.T) {
	ctx := context.Background()
	progress := &blockingProgress{
		fakeProgress: newFakeProgress(),
		entered:      make(chan struct{}, 1),
		release:      make(chan struct{}),
	}
	e := NewEngine(&fakeCatalog{words: catalogWords(20)}, progress, nil, Options{
		OptionsCount:   3,
		PassPercentage: 92,
		Rand:           rand.New(rand.NewSource(42)),
	})

	_, err := e.StartSession(1, testWords(2))
	require.NoError(t, err)
	q, err := e.NextQuestion(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, q)

	done := make(chan error, 1)
	go func() {
		_, err := e.SubmitAnswer(ctx, 1, q.WordID, q.CorrectOption, q.CorrectOption)
		done <- err
	}()
	<-progress.entered

	// Double tap on the same button while the first answer is persisting
	_, err = e.SubmitAnswer(ctx, 1, q.WordID, q.CorrectOption, q.CorrectOption)
	assert.ErrorIs(t, err, ErrInvalidSession)

	close(progress.release)
	require.NoError(t, <-done)

	// Exactly one attempt landed and the session moved exactly one word on
	assert.Equal(t, 1, progress.attempts[q.WordID].total)
	next, err := e.NextQuestion(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, int64(2), next.WordID)
}

// zeroSource forces Intn(2) to 0, so every question asks english to
// translation and the pronouncer always fires. Int63 returns 1<<62 rather
// than 0 because a constant zero makes Shuffle's rejection sampling in
// math/rand.int31n loop forever; 1<<62 still yields Int31()&1 == 0.
type zeroSource struct{}

func (zeroSource) Int63() int64 { return 1 << 62 }
func (zeroSource) Seed(int64)   {}

// blockingPronouncer parks its first call until released.
type blockingPronouncer struct {
	mu      sync.Mutex
	calls   int
	entered chan struct{}
	release chan struct{}
}

func (p *blockingPronouncer) Synthesize(string) (string, error) {
	p.mu.Lock()
	p.calls++
	first := p.calls == 1
	p.mu.Unlock()
	if first {
		p.entered <- struct{}{}
		<-p.release
	}
	return "voice.mp3", nil
}

func TestEngineSlowPronunciationDoesNotStallOtherUsers(t *testing.T) {
	ctx := context.Background()
	pron := &blockingPronouncer{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	e := NewEngine(&fakeCatalog{words: catalogWords(20)}, newFakeProgress(), nil, Options{
		OptionsCount:   3,
		PassPercentage: 92,
		Pronouncer:     pron,
		Rand:           rand.New(zeroSource{}),
	})

	_, err := e.StartSession(1, testWords(1))
	require.NoError(t, err)
	_, err = e.StartSession(2, testWords(1))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		q, err := e.NextQuestion(ctx, 1)
		assert.NoError(t, err)
		assert.NotNil(t, q)
	}()
	<-pron.entered

	// The second user's question goes out while the first synthesis hangs
	q2, err := e.NextQuestion(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, q2)
	assert.Equal(t, "voice.mp3", q2.AudioRef)

	close(pron.release)
	<-done
}

func TestEnginePronunciationFailureDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(&fakeCatalog{words: catalogWords(20)}, newFakeProgress(), nil, Options{
		OptionsCount:   3,
		PassPercentage: 92,
		Pronouncer:     failingPronouncer{},
		Rand:           rand.New(rand.NewSource(3)),
	})

	_, err := e.StartSession(1, testWords(8))
	require.NoError(t, err)

	for {
		q, err := e.NextQuestion(ctx, 1)
		require.NoError(t, err)
		if q == nil {
			break
		}
		assert.Empty(t, q.AudioRef)
		_, err = e.SubmitAnswer(ctx, 1, q.WordID, q.CorrectOption, q.CorrectOption)
		require.NoError(t, err)
	}
}
