package services

import (
	"context"
	"sync"
	"time"

	"translateapp/internal/config"
	"translateapp/internal/observability"
	"translateapp/internal/serviceinterfaces"
	contextutils "translateapp/internal/utils"
)

// OrchestratorState is a snapshot of the orchestrator's state
type OrchestratorState struct {
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	InputText      string `json:"input_text"`
	TranslatedText string `json:"translated_text"`
	// Token identifies the latest scheduled or in-flight request
	Token uint64 `json:"token"`
	// Pending is true while a debounce task is scheduled
	Pending bool `json:"pending"`
	// Loading is true while a request is in flight
	Loading bool `json:"loading"`
}

// OrchestratorOptions configures a TranslationOrchestrator. Zero values take the defaults.
type OrchestratorOptions struct {
	SourceLanguage   string
	TargetLanguage   string
	DebounceInterval time.Duration
	// Locale selects the language of messages passed to ErrorReceived
	Locale    string
	Scheduler Scheduler
	Metrics   *observability.TranslationMetrics
	Logger    *observability.Logger
}

// OptionsFromConfig builds orchestrator options from the translation config section
func OptionsFromConfig(cfg *config.TranslationConfig) OrchestratorOptions {
	return OrchestratorOptions{
		SourceLanguage:   cfg.SourceLanguage,
		TargetLanguage:   cfg.TargetLanguage,
		DebounceInterval: cfg.DebounceInterval,
		Locale:           cfg.Locale,
	}
}

// TranslationOrchestrator turns a stream of text edits, language swaps and clears into
// debounced translation requests and reports the results to an observer.
//
// All state is owned by a single loop goroutine. Public methods only enqueue work for it,
// so they never block on the network and may be called from observer callbacks.
// Timer callbacks and client completions are posted to the same queue, and every
// completion is checked against the current token before it can touch state.
type TranslationOrchestrator struct {
	client    serviceinterfaces.TranslationClient
	observer  serviceinterfaces.TranslationObserver
	scheduler Scheduler
	debounce  time.Duration
	locale    string
	metrics   *observability.TranslationMetrics
	logger    *observability.Logger

	mu     sync.Mutex
	queue  []func()
	closed bool
	wake   chan struct{}
	done   chan struct{}

	// owned by the loop goroutine
	baseCtx        context.Context
	cancelBase     context.CancelFunc
	sourceLanguage string
	targetLanguage string
	inputText      string
	translatedText string
	token          uint64
	timer          Timer
	cancelInFlight context.CancelFunc
	stopping       bool
}

// NewTranslationOrchestrator creates an orchestrator and starts its loop. Call Close to stop it.
func NewTranslationOrchestrator(client serviceinterfaces.TranslationClient, observer serviceinterfaces.TranslationObserver, opts OrchestratorOptions) *TranslationOrchestrator {
	if observer == nil {
		observer = serviceinterfaces.ObserverFuncs{}
	}
	if opts.SourceLanguage == "" {
		opts.SourceLanguage = config.DefaultSourceLanguage
	}
	if opts.TargetLanguage == "" {
		opts.TargetLanguage = config.DefaultTargetLanguage
	}
	if opts.DebounceInterval <= 0 {
		opts.DebounceInterval = config.DefaultDebounceInterval
	}
	if opts.Locale == "" {
		opts.Locale = config.DefaultLocale
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewRealScheduler()
	}
	if opts.Logger == nil {
		opts.Logger = observability.NewNopLogger()
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	o := &TranslationOrchestrator{
		client:         client,
		observer:       observer,
		scheduler:      opts.Scheduler,
		debounce:       opts.DebounceInterval,
		locale:         opts.Locale,
		metrics:        opts.Metrics,
		logger:         opts.Logger,
		wake:           make(chan struct{}, 1),
		done:           make(chan struct{}),
		baseCtx:        baseCtx,
		cancelBase:     cancel,
		sourceLanguage: opts.SourceLanguage,
		targetLanguage: opts.TargetLanguage,
	}
	go o.run()
	return o
}

// UpdateInputText replaces the input text and schedules a translation of it
func (o *TranslationOrchestrator) UpdateInputText(text string) {
	o.post(func() {
		o.inputText = text
		o.translate()
	})
}

// SwapLanguages exchanges the source and target languages together with the input and
// translated texts, then schedules a translation of the new input
func (o *TranslationOrchestrator) SwapLanguages() {
	o.post(func() {
		o.sourceLanguage, o.targetLanguage = o.targetLanguage, o.sourceLanguage
		o.inputText, o.translatedText = o.translatedText, o.inputText

		o.observer.SourceLanguageChanged(LanguageDisplayName(o.sourceLanguage))
		o.observer.TargetLanguageChanged(LanguageDisplayName(o.targetLanguage))
		o.translate()
		o.observer.TranslationChanged(o.translatedText)
	})
}

// ClearText empties both texts and drops any scheduled or in-flight translation
func (o *TranslationOrchestrator) ClearText() {
	o.post(func() {
		o.inputText = ""
		o.translatedText = ""
		o.translate()
	})
}

// SetSourceLanguage changes the source language and re-translates the current input
func (o *TranslationOrchestrator) SetSourceLanguage(code string) error {
	if code == "" {
		return contextutils.NewAppError(contextutils.ErrorCodeInvalidInput, contextutils.SeverityWarn,
			"Language code cannot be empty", "source_language")
	}
	return o.postOrClosed(func() {
		o.sourceLanguage = code
		o.observer.SourceLanguageChanged(LanguageDisplayName(code))
		o.translate()
	})
}

// SetTargetLanguage changes the target language and re-translates the current input
func (o *TranslationOrchestrator) SetTargetLanguage(code string) error {
	if code == "" {
		return contextutils.NewAppError(contextutils.ErrorCodeInvalidInput, contextutils.SeverityWarn,
			"Language code cannot be empty", "target_language")
	}
	return o.postOrClosed(func() {
		o.targetLanguage = code
		o.observer.TargetLanguageChanged(LanguageDisplayName(code))
		o.translate()
	})
}

// LanguageDisplayName returns the display name for a language code
func (o *TranslationOrchestrator) LanguageDisplayName(code string) string {
	return LanguageDisplayName(code)
}

// State returns a snapshot taken on the loop goroutine after all previously queued work has run.
// It must not be called from an observer callback.
func (o *TranslationOrchestrator) State(ctx context.Context) (OrchestratorState, error) {
	result := make(chan OrchestratorState, 1)
	err := o.postOrClosed(func() {
		result <- OrchestratorState{
			SourceLanguage: o.sourceLanguage,
			TargetLanguage: o.targetLanguage,
			InputText:      o.inputText,
			TranslatedText: o.translatedText,
			Token:          o.token,
			Pending:        o.timer != nil,
			Loading:        o.cancelInFlight != nil,
		}
	})
	if err != nil {
		return OrchestratorState{}, err
	}

	select {
	case state := <-result:
		return state, nil
	case <-o.done:
		return OrchestratorState{}, contextutils.ErrClosed
	case <-ctx.Done():
		return OrchestratorState{}, contextutils.NewAppErrorWithCause(contextutils.ErrorCodeTimeout, contextutils.SeverityWarn,
			"Timed out waiting for orchestrator state", "", ctx.Err())
	}
}

// Close stops the loop, the pending debounce task and any in-flight request, and waits for the
// loop to exit. Operations queued before Close still run. It must not be called from an observer callback.
func (o *TranslationOrchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		<-o.done
		return
	}
	o.queue = append(o.queue, o.shutdown)
	o.closed = true
	o.mu.Unlock()
	o.signal()

	<-o.done
}

// Done is closed once the loop has exited
func (o *TranslationOrchestrator) Done() <-chan struct{} {
	return o.done
}

// post enqueues f for the loop goroutine. It reports false once the orchestrator is closed.
func (o *TranslationOrchestrator) post(f func()) bool {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return false
	}
	o.queue = append(o.queue, f)
	o.mu.Unlock()
	o.signal()
	return true
}

func (o *TranslationOrchestrator) postOrClosed(f func()) error {
	if !o.post(f) {
		return contextutils.ErrClosed
	}
	return nil
}

func (o *TranslationOrchestrator) signal() {
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// run executes queued work in FIFO order until shutdown
func (o *TranslationOrchestrator) run() {
	defer close(o.done)
	for range o.wake {
		for {
			o.mu.Lock()
			if len(o.queue) == 0 {
				o.mu.Unlock()
				break
			}
			f := o.queue[0]
			o.queue[0] = nil
			o.queue = o.queue[1:]
			o.mu.Unlock()

			f()
			if o.stopping {
				return
			}
		}
	}
}

func (o *TranslationOrchestrator) shutdown() {
	o.stopping = true
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	o.cancelInFlight = nil
	o.cancelBase()
	o.logger.Debug(o.baseCtx, "Translation orchestrator stopped", map[string]interface{}{"token": o.token})
}

// translate supersedes any scheduled or in-flight request and, for non-empty input,
// schedules a new one after the debounce interval
func (o *TranslationOrchestrator) translate() {
	o.token++

	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	if o.cancelInFlight != nil {
		o.cancelInFlight()
		o.cancelInFlight = nil
		o.observer.LoadingStateChanged(false)
	}

	if o.inputText == "" {
		o.observer.TranslationChanged("")
		return
	}

	token := o.token
	o.timer = o.scheduler.AfterFunc(o.debounce, func() {
		o.post(func() { o.fire(token) })
	})
	o.logger.Debug(o.baseCtx, "Translation scheduled", map[string]interface{}{
		"token":    token,
		"debounce": o.debounce.String(),
	})
}

// fire issues the request for token unless a newer trigger has superseded it.
// A timer that fired just before Stop still lands here, so the token check is what gates it.
func (o *TranslationOrchestrator) fire(token uint64) {
	if token != o.token {
		return
	}
	o.timer = nil

	req := serviceinterfaces.TranslationRequest{
		SourceLanguage:      o.sourceLanguage,
		DestinationLanguage: o.targetLanguage,
		Text:                o.inputText,
	}

	ctx, cancel := context.WithCancel(o.baseCtx)
	o.cancelInFlight = cancel

	o.metrics.RecordDebounceFire(ctx)
	o.metrics.RecordRequest(ctx, req.SourceLanguage, req.DestinationLanguage)
	o.observer.LoadingStateChanged(true)

	go func() {
		ctx, span := observability.TraceOrchestratorFunction(ctx, "translate",
			observability.AttributeRequestToken(token),
			observability.AttributeSourceLanguage(req.SourceLanguage),
			observability.AttributeTargetLanguage(req.DestinationLanguage),
		)
		start := time.Now()
		result, err := o.client.Translate(ctx, req)
		elapsed := time.Since(start)
		observability.FinishSpan(span, &err)

		o.post(func() { o.complete(ctx, token, result, err, elapsed) })
	}()
}

// complete applies the outcome of the request for token, or drops it when stale
func (o *TranslationOrchestrator) complete(ctx context.Context, token uint64, result *serviceinterfaces.TranslationResult, err error, elapsed time.Duration) {
	if token != o.token {
		o.metrics.RecordStale(ctx)
		o.logger.Debug(ctx, "Discarding stale translation result", map[string]interface{}{
			"token":         token,
			"current_token": o.token,
		})
		return
	}

	if o.cancelInFlight != nil {
		o.cancelInFlight()
		o.cancelInFlight = nil
	}

	if err == nil && result == nil {
		err = contextutils.NewAppError(contextutils.ErrorCodeInvalidData, contextutils.SeverityWarn,
			"Translation client returned no result", "")
	}
	if err != nil && !contextutils.IsTranslationError(err) {
		err = contextutils.NewAppErrorWithCause(contextutils.ErrorCodeBadResponse, contextutils.SeverityWarn,
			"Translation request failed", err.Error(), err)
	}
	o.metrics.RecordOutcome(ctx, elapsed, err)

	o.observer.LoadingStateChanged(false)

	if err != nil {
		fields := map[string]interface{}{
			"token":      token,
			"error_code": string(contextutils.GetErrorCode(err)),
		}
		if contextutils.GetErrorSeverity(err) == contextutils.SeverityWarn {
			fields["error"] = err.Error()
			o.logger.Warn(ctx, "Translation failed", fields)
		} else {
			o.logger.Error(ctx, "Translation failed", err, fields)
		}
		o.observer.ErrorReceived(contextutils.GetErrorLocalizedMessage(err, o.locale))
		return
	}

	o.translatedText = result.DestinationText
	o.logger.Debug(ctx, "Translation applied", map[string]interface{}{
		"token":      token,
		"elapsed_ms": elapsed.Milliseconds(),
	})
	o.observer.TranslationChanged(result.DestinationText)
}
