package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"translateapp/internal/observability"
	"translateapp/internal/serviceinterfaces"
	contextutils "translateapp/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testDebounce = 300 * time.Millisecond

// fakeScheduler records scheduled tasks and runs them only when the test says so
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	mu      sync.Mutex
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{delay: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) scheduled() []*fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*fakeTimer(nil), s.timers...)
}

func (s *fakeScheduler) active() []*fakeTimer {
	var out []*fakeTimer
	for _, t := range s.scheduled() {
		t.mu.Lock()
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
		t.mu.Unlock()
	}
	return out
}

// fireActive runs every timer that is neither stopped nor fired and returns how many ran
func (s *fakeScheduler) fireActive() int {
	timers := s.active()
	for _, t := range timers {
		t.mu.Lock()
		t.fired = true
		t.mu.Unlock()
		t.f()
	}
	return len(timers)
}

type fakeReply struct {
	result *serviceinterfaces.TranslationResult
	err    error
}

type fakeCall struct {
	ctx   context.Context
	req   serviceinterfaces.TranslationRequest
	reply chan fakeReply
}

func (c *fakeCall) succeed(text string) {
	c.reply <- fakeReply{result: &serviceinterfaces.TranslationResult{
		SourceLanguage:      c.req.SourceLanguage,
		SourceText:          c.req.Text,
		DestinationLanguage: c.req.DestinationLanguage,
		DestinationText:     text,
	}}
}

func (c *fakeCall) fail(err error) {
	c.reply <- fakeReply{err: err}
}

// fakeClient hands every request to the test and blocks until the test replies.
// It ignores cancellation so that superseded results still arrive.
type fakeClient struct {
	calls chan *fakeCall
	stop  chan struct{}
}

func newFakeClient(t *testing.T) *fakeClient {
	c := &fakeClient{calls: make(chan *fakeCall, 16), stop: make(chan struct{})}
	t.Cleanup(func() { close(c.stop) })
	return c
}

func (c *fakeClient) Translate(ctx context.Context, req serviceinterfaces.TranslationRequest) (*serviceinterfaces.TranslationResult, error) {
	call := &fakeCall{ctx: ctx, req: req, reply: make(chan fakeReply, 1)}
	c.calls <- call
	select {
	case r := <-call.reply:
		return r.result, r.err
	case <-c.stop:
		return nil, contextutils.ErrBadResponse
	}
}

func (c *fakeClient) next(t *testing.T) *fakeCall {
	t.Helper()
	select {
	case call := <-c.calls:
		return call
	case <-time.After(2 * time.Second):
		require.FailNow(t, "expected a translation request")
		return nil
	}
}

// recordingObserver keeps every notification in order
type recordingObserver struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingObserver) add(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingObserver) TranslationChanged(text string)    { r.add("translation:" + text) }
func (r *recordingObserver) LoadingStateChanged(loading bool)  { r.add(fmt.Sprintf("loading:%t", loading)) }
func (r *recordingObserver) ErrorReceived(message string)      { r.add("error:" + message) }
func (r *recordingObserver) SourceLanguageChanged(name string) { r.add("source:" + name) }
func (r *recordingObserver) TargetLanguageChanged(name string) { r.add("target:" + name) }

func (r *recordingObserver) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recordingObserver) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type orchestratorHarness struct {
	orch      *TranslationOrchestrator
	scheduler *fakeScheduler
	client    *fakeClient
	observer  *recordingObserver
	logs      *observer.ObservedLogs
}

func newHarness(t *testing.T) *orchestratorHarness {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	h := &orchestratorHarness{
		scheduler: &fakeScheduler{},
		client:    newFakeClient(t),
		observer:  &recordingObserver{},
		logs:      logs,
	}
	h.orch = NewTranslationOrchestrator(h.client, h.observer, OrchestratorOptions{
		DebounceInterval: testDebounce,
		Locale:           "en",
		Scheduler:        h.scheduler,
		Logger:           &observability.Logger{Logger: zap.New(core)},
	})
	t.Cleanup(h.orch.Close)
	return h
}

// sync waits until everything queued so far has run and returns the resulting state
func (h *orchestratorHarness) sync(t *testing.T) OrchestratorState {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	state, err := h.orch.State(ctx)
	require.NoError(t, err)
	return state
}

// fire runs the pending debounce task and waits for the request it issues
func (h *orchestratorHarness) fire(t *testing.T) *fakeCall {
	t.Helper()
	require.Equal(t, 1, h.scheduler.fireActive(), "expected exactly one pending debounce task")
	return h.client.next(t)
}

func (h *orchestratorHarness) waitForEvents(t *testing.T, expected ...string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(h.observer.all()) >= len(expected)
	}, 2*time.Second, time.Millisecond)
	assert.Equal(t, expected, h.observer.all())
}

func (h *orchestratorHarness) waitForStaleDiscard(t *testing.T, count int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return h.logs.FilterMessage("Discarding stale translation result").Len() >= count
	}, 2*time.Second, time.Millisecond)
}

func TestOrchestrator_InitialState(t *testing.T) {
	h := newHarness(t)

	state := h.sync(t)
	assert.Equal(t, "en", state.SourceLanguage)
	assert.Equal(t, "ru", state.TargetLanguage)
	assert.Empty(t, state.InputText)
	assert.Empty(t, state.TranslatedText)
	assert.False(t, state.Pending)
	assert.False(t, state.Loading)
	assert.Empty(t, h.observer.all())
}

func TestOrchestrator_SuccessfulTranslation(t *testing.T) {
	h := newHarness(t)

	h.orch.UpdateInputText("hello")
	state := h.sync(t)
	assert.True(t, state.Pending)
	require.Len(t, h.scheduler.scheduled(), 1)
	assert.Equal(t, testDebounce, h.scheduler.scheduled()[0].delay)
	assert.Empty(t, h.observer.all(), "nothing is emitted before the debounce fires")

	call := h.fire(t)
	assert.Equal(t, serviceinterfaces.TranslationRequest{
		SourceLanguage:      "en",
		DestinationLanguage: "ru",
		Text:                "hello",
	}, call.req)

	state = h.sync(t)
	assert.True(t, state.Loading)
	assert.False(t, state.Pending)

	call.succeed("привет")
	h.waitForEvents(t, "loading:true", "loading:false", "translation:привет")

	state = h.sync(t)
	assert.Equal(t, "привет", state.TranslatedText)
	assert.False(t, state.Loading)
}

func TestOrchestrator_BurstIssuesOneRequestWithLastText(t *testing.T) {
	h := newHarness(t)

	for _, text := range []string{"h", "he", "hel", "hell", "hello"} {
		h.orch.UpdateInputText(text)
	}
	h.sync(t)

	assert.Len(t, h.scheduler.scheduled(), 5)
	assert.Len(t, h.scheduler.active(), 1, "each trigger replaces the previous debounce task")

	call := h.fire(t)
	assert.Equal(t, "hello", call.req.Text)

	h.sync(t)
	assert.Empty(t, h.client.calls, "only one request is issued")
}

func TestOrchestrator_StoppedTimerThatStillFiresIsIgnored(t *testing.T) {
	h := newHarness(t)

	h.orch.UpdateInputText("a")
	h.orch.UpdateInputText("ab")
	h.sync(t)

	// Simulate the first timer racing its Stop call
	first := h.scheduler.scheduled()[0]
	first.f()
	h.sync(t)
	assert.Empty(t, h.client.calls)
	assert.Empty(t, h.observer.all())

	call := h.fire(t)
	assert.Equal(t, "ab", call.req.Text)
}

func TestOrchestrator_StaleResponseIsDiscarded(t *testing.T) {
	h := newHarness(t)

	h.orch.UpdateInputText("a")
	first := h.fire(t)

	h.orch.UpdateInputText("ab")
	h.sync(t)
	assert.Error(t, first.ctx.Err(), "superseded request context is cancelled")

	second := h.fire(t)
	assert.Equal(t, "ab", second.req.Text)

	first.succeed("а")
	h.waitForStaleDiscard(t, 1)

	second.succeed("аб")
	h.waitForEvents(t,
		"loading:true",
		"loading:false",
		"loading:true",
		"loading:false",
		"translation:аб",
	)
	assert.Equal(t, "аб", h.sync(t).TranslatedText)
}

func TestOrchestrator_StaleErrorIsDiscarded(t *testing.T) {
	h := newHarness(t)

	h.orch.UpdateInputText("a")
	first := h.fire(t)
	h.orch.UpdateInputText("b")
	h.sync(t)

	first.fail(contextutils.ErrBadResponse)
	h.waitForStaleDiscard(t, 1)

	for _, event := range h.observer.all() {
		assert.NotContains(t, event, "error:")
	}
}

func TestOrchestrator_EmptyTextShortCircuits(t *testing.T) {
	h := newHarness(t)

	h.orch.UpdateInputText("hello")
	h.orch.UpdateInputText("")
	state := h.sync(t)

	assert.False(t, state.Pending)
	assert.Empty(t, h.scheduler.active())
	assert.Equal(t, 0, h.scheduler.fireActive())
	assert.Equal(t, []string{"translation:"}, h.observer.all())
	assert.Empty(t, h.client.calls)
}

func TestOrchestrator_ClearTextEmitsOnceAndSuppressesInFlight(t *testing.T) {
	h := newHarness(t)

	h.orch.UpdateInputText("hello")
	call := h.fire(t)
	h.sync(t)
	h.observer.reset()

	h.orch.ClearText()
	state := h.sync(t)
	assert.Equal(t, []string{"loading:false", "translation:"}, h.observer.all())
	assert.Empty(t, state.InputText)
	assert.Empty(t, state.TranslatedText)
	assert.False(t, state.Loading)
	assert.Error(t, call.ctx.Err())

	call.succeed("привет")
	h.waitForStaleDiscard(t, 1)
	assert.Equal(t, []string{"loading:false", "translation:"}, h.observer.all())
	assert.Empty(t, h.sync(t).TranslatedText)
}

func TestOrchestrator_ClearTextCancelsPendingDebounce(t *testing.T) {
	h := newHarness(t)

	h.orch.UpdateInputText("hello")
	h.orch.ClearText()
	state := h.sync(t)

	assert.False(t, state.Pending)
	assert.Equal(t, 0, h.scheduler.fireActive())
	assert.Equal(t, []string{"translation:"}, h.observer.all())
}

func TestOrchestrator_ErrorKeepsTextsAndIsLocalized(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{"bad url", contextutils.ErrBadURL, "Could not build the translation request"},
		{"bad response", contextutils.ErrBadResponse, "The translation service could not be reached"},
		{"invalid data", contextutils.ErrInvalidData, "The translation service returned no data"},
		{"decode error", contextutils.ErrDecodeError, "The translation service returned an unexpected response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			h.orch.UpdateInputText("hello")
			h.fire(t).succeed("привет")
			h.waitForEvents(t, "loading:true", "loading:false", "translation:привет")
			h.observer.reset()

			h.orch.UpdateInputText("hello world")
			h.fire(t).fail(tt.err)
			h.waitForEvents(t, "loading:true", "loading:false", "error:"+tt.message)

			state := h.sync(t)
			assert.Equal(t, "hello world", state.InputText)
			assert.Equal(t, "привет", state.TranslatedText)
		})
	}
}

func TestOrchestrator_RussianErrorMessages(t *testing.T) {
	obs := &recordingObserver{}
	sched := &fakeScheduler{}
	client := newFakeClient(t)
	orch := NewTranslationOrchestrator(client, obs, OrchestratorOptions{Scheduler: sched})
	t.Cleanup(orch.Close)

	orch.UpdateInputText("hello")
	_, err := orch.State(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sched.fireActive())
	client.next(t).fail(contextutils.ErrBadResponse)

	require.Eventually(t, func() bool { return len(obs.all()) == 3 }, 2*time.Second, time.Millisecond)
	assert.Equal(t, "error:Сервис перевода недоступен", obs.all()[2])
}

func TestOrchestrator_ForeignErrorIsReportedAsBadResponse(t *testing.T) {
	h := newHarness(t)

	h.orch.UpdateInputText("hello")
	h.fire(t).fail(errors.New("quota exhausted"))
	h.waitForEvents(t, "loading:true", "loading:false", "error:The translation service could not be reached")

	entries := h.logs.FilterMessage("Translation failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.Equal(t, "BAD_RESPONSE", entries[0].ContextMap()["error_code"])
}

func TestOrchestrator_FailureLogLevelFollowsSeverity(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		level zapcore.Level
	}{
		{"bad url", contextutils.ErrBadURL, zap.ErrorLevel},
		{"decode error", contextutils.ErrDecodeError, zap.ErrorLevel},
		{"bad response", contextutils.ErrBadResponse, zap.WarnLevel},
		{"invalid data", contextutils.ErrInvalidData, zap.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			h.orch.UpdateInputText("hello")
			h.fire(t).fail(tt.err)
			h.waitForEvents(t, "loading:true", "loading:false", "error:"+contextutils.GetErrorLocalizedMessage(tt.err, "en"))

			entries := h.logs.FilterMessage("Translation failed").All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.level, entries[0].Level)
		})
	}
}

func TestOrchestrator_NilResultIsInvalidData(t *testing.T) {
	h := newHarness(t)

	h.orch.UpdateInputText("hello")
	h.fire(t).reply <- fakeReply{}
	h.waitForEvents(t, "loading:true", "loading:false", "error:The translation service returned no data")
}

func TestOrchestrator_SwapLanguages(t *testing.T) {
	h := newHarness(t)

	h.orch.UpdateInputText("hello")
	h.fire(t).succeed("привет")
	h.waitForEvents(t, "loading:true", "loading:false", "translation:привет")
	h.observer.reset()

	h.orch.SwapLanguages()
	state := h.sync(t)

	assert.Equal(t, "ru", state.SourceLanguage)
	assert.Equal(t, "en", state.TargetLanguage)
	assert.Equal(t, "привет", state.InputText)
	assert.Equal(t, "hello", state.TranslatedText)
	assert.True(t, state.Pending)
	assert.Equal(t, []string{"source:Русский", "target:Английский", "translation:hello"}, h.observer.all())

	call := h.fire(t)
	assert.Equal(t, serviceinterfaces.TranslationRequest{
		SourceLanguage:      "ru",
		DestinationLanguage: "en",
		Text:                "привет",
	}, call.req)
}

func TestOrchestrator_DoubleSwapRestoresState(t *testing.T) {
	h := newHarness(t)

	h.orch.UpdateInputText("hello")
	h.fire(t).succeed("привет")
	h.waitForEvents(t, "loading:true", "loading:false", "translation:привет")
	before := h.sync(t)

	h.orch.SwapLanguages()
	h.orch.SwapLanguages()
	after := h.sync(t)

	assert.Equal(t, before.SourceLanguage, after.SourceLanguage)
	assert.Equal(t, before.TargetLanguage, after.TargetLanguage)
	assert.Equal(t, before.InputText, after.InputText)
	assert.Equal(t, before.TranslatedText, after.TranslatedText)
	assert.Len(t, h.scheduler.active(), 1)
}

func TestOrchestrator_SwapWithEmptyTranslation(t *testing.T) {
	h := newHarness(t)

	h.orch.UpdateInputText("hello")
	h.orch.SwapLanguages()
	state := h.sync(t)

	assert.Empty(t, state.InputText)
	assert.Equal(t, "hello", state.TranslatedText)
	assert.False(t, state.Pending)
	assert.Equal(t, []string{"source:Русский", "target:Английский", "translation:", "translation:hello"}, h.observer.all())
}

func TestOrchestrator_SetLanguagesRetranslate(t *testing.T) {
	h := newHarness(t)

	h.orch.UpdateInputText("hello")
	h.fire(t).succeed("привет")
	h.waitForEvents(t, "loading:true", "loading:false", "translation:привет")
	h.observer.reset()

	require.NoError(t, h.orch.SetTargetLanguage("de"))
	h.sync(t)
	assert.Equal(t, []string{"target:DE"}, h.observer.all())

	call := h.fire(t)
	assert.Equal(t, "de", call.req.DestinationLanguage)
	assert.Equal(t, "hello", call.req.Text)
	call.succeed("hallo")
	h.waitForEvents(t, "target:DE", "loading:true", "loading:false", "translation:hallo")

	require.NoError(t, h.orch.SetSourceLanguage("en"))
	h.sync(t)
	assert.Len(t, h.scheduler.active(), 1, "unchanged language still re-translates")
}

func TestOrchestrator_SetLanguageRejectsEmptyCode(t *testing.T) {
	h := newHarness(t)

	err := h.orch.SetSourceLanguage("")
	assert.ErrorIs(t, err, contextutils.ErrInvalidInput)
	err = h.orch.SetTargetLanguage("")
	assert.ErrorIs(t, err, contextutils.ErrInvalidInput)

	state := h.sync(t)
	assert.Equal(t, "en", state.SourceLanguage)
	assert.Equal(t, "ru", state.TargetLanguage)
	assert.Empty(t, h.observer.all())
}

func TestOrchestrator_ObserverMayCallBack(t *testing.T) {
	sched := &fakeScheduler{}
	client := newFakeClient(t)

	var orch *TranslationOrchestrator
	swapped := make(chan struct{})
	obs := serviceinterfaces.ObserverFuncs{
		OnTranslationChanged: func(text string) {
			if text == "привет" {
				orch.SwapLanguages()
				close(swapped)
			}
		},
	}
	orch = NewTranslationOrchestrator(client, obs, OrchestratorOptions{Scheduler: sched})
	t.Cleanup(orch.Close)

	orch.UpdateInputText("hello")
	_, err := orch.State(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sched.fireActive())
	client.next(t).succeed("привет")

	select {
	case <-swapped:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "observer callback did not run")
	}

	state, err := orch.State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ru", state.SourceLanguage)
	assert.Equal(t, "привет", state.InputText)
}

func TestOrchestrator_LanguageDisplayName(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "Английский", h.orch.LanguageDisplayName("en"))
	assert.Equal(t, "FR", h.orch.LanguageDisplayName("fr"))
}

func TestOrchestrator_Close(t *testing.T) {
	sched := &fakeScheduler{}
	client := newFakeClient(t)
	obs := &recordingObserver{}
	orch := NewTranslationOrchestrator(client, obs, OrchestratorOptions{Scheduler: sched})

	orch.UpdateInputText("hello")
	_, err := orch.State(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sched.fireActive())
	call := client.next(t)

	orch.Close()
	orch.Close()

	select {
	case <-orch.Done():
	default:
		require.FailNow(t, "loop still running after Close")
	}
	assert.Error(t, call.ctx.Err())

	call.succeed("привет")
	orch.UpdateInputText("ignored")
	assert.ErrorIs(t, orch.SetTargetLanguage("de"), contextutils.ErrClosed)

	_, err = orch.State(context.Background())
	assert.ErrorIs(t, err, contextutils.ErrClosed)
	assert.Equal(t, []string{"loading:true"}, obs.all())
}

func TestOrchestrator_StateHonoursContext(t *testing.T) {
	sched := &fakeScheduler{}
	block := make(chan struct{})
	obs := serviceinterfaces.ObserverFuncs{
		OnTranslationChanged: func(string) { <-block },
	}
	orch := NewTranslationOrchestrator(newFakeClient(t), obs, OrchestratorOptions{Scheduler: sched})
	t.Cleanup(func() {
		close(block)
		orch.Close()
	})

	orch.ClearText()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := orch.State(ctx)
	assert.ErrorIs(t, err, contextutils.ErrTimeout)
}

func TestOrchestrator_RealSchedulerDebounces(t *testing.T) {
	client := &countingClient{inner: NewNoopTranslationClient()}
	obs := &recordingObserver{}
	orch := NewTranslationOrchestrator(client, obs, OrchestratorOptions{DebounceInterval: 20 * time.Millisecond})
	t.Cleanup(orch.Close)

	orch.UpdateInputText("a")
	orch.UpdateInputText("ab")
	orch.UpdateInputText("abc")

	require.Eventually(t, func() bool {
		events := obs.all()
		return len(events) > 0 && events[len(events)-1] == "translation:abc"
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"abc"}, client.texts())
	assert.Equal(t, []string{"loading:true", "loading:false", "translation:abc"}, obs.all())
}

type countingClient struct {
	mu    sync.Mutex
	inner serviceinterfaces.TranslationClient
	seen  []string
}

func (c *countingClient) Translate(ctx context.Context, req serviceinterfaces.TranslationRequest) (*serviceinterfaces.TranslationResult, error) {
	c.mu.Lock()
	c.seen = append(c.seen, req.Text)
	c.mu.Unlock()
	return c.inner.Translate(ctx, req)
}

func (c *countingClient) texts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.seen...)
}
