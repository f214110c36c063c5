package tasting

import (
	"context"
	"log"

	"github.com/looplab/fsm"

	"winechat/internal/api"
	"winechat/internal/i18n"
	"winechat/internal/session"
)

// SentinelFeedback is the stage name the backend uses to signal end of
// flow. A payload declaring it as next stage terminates the tasting; it is
// never visited as a real stage.
const SentinelFeedback = "feedback"

// Controller states.
const (
	StateIdle           = "idle"
	StateLevelSelection = "level_selection"
	StateAwaitingStage  = "awaiting_stage"
	StatePreview        = "stage_preview"
	StateDelivery       = "stage_delivery"
	StateError          = "error"
)

const (
	eventStart       = "start"
	eventSelectLevel = "select_level"
	eventStageReady  = "stage_ready"
	eventStageFailed = "stage_failed"
	eventRetry       = "retry"
	eventConfirm     = "confirm"
	eventAdvance     = "advance"
	eventTerminate   = "terminate"
)

type Mode string

const (
	ModeBeginner Mode = "beginner"
	ModeExpert   Mode = "expert"
)

// Session is one guided-tasting run. It is replaced wholesale on every
// stage advance and discarded on termination.
type Session struct {
	WineID    string
	WineName  string
	WineIndex int
	Mode      Mode

	CurrentStage string
	NextStage    string
	PreviewText  string
	Chunks       []api.Chunk
}

// Backend is the slice of the API client the controller needs.
type Backend interface {
	SendTastingRequest(ctx context.Context, mode, wineID, stage string) (*api.TastingStage, error)
	SendTastingFeedback(ctx context.Context, wineID, stage, text string) (*api.FeedbackReply, error)
}

// View is the external render collaborator for the tasting overlay.
type View interface {
	ShowLevelSelect(wineName string)
	ShowLoading()
	ShowPreview(stage, previewText string)
	ShowComposing(on bool)
	StageMessage(text string)
	UserMessage(text string)
	ShowAction(caption string)
	HideAction()
	SetInputEnabled(on bool)
	ShowError(message string)
	Closed()
}

// Notifier receives messages destined for the main conversation.
type Notifier interface {
	BotMessage(text string)
}

// Controller drives the guided tasting flow: level selection, staged
// content delivery with pacing, a free-text feedback loop per stage, and
// termination on the feedback sentinel or an explicit close.
//
// Invalid actions for the current state are silent no-ops, never errors.
// Each stage request carries a monotonic token; completions whose token no
// longer matches are discarded so a superseded stage or a closed overlay is
// never mutated by a straggling response.
type Controller struct {
	backend Backend
	view    View
	tr      *i18n.Translator
	main    Notifier
	pace    Pacer

	machine      *fsm.FSM
	sess         *Session
	stageChat    *session.Conversation
	token        uint64
	inputEnabled bool
}

func NewController(backend Backend, view View, tr *i18n.Translator, main Notifier, pace Pacer) *Controller {
	if pace == nil {
		pace = NewPacer()
	}
	c := &Controller{backend: backend, view: view, tr: tr, main: main, pace: pace}
	c.machine = fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventStart, Src: []string{StateIdle}, Dst: StateLevelSelection},
			{Name: eventSelectLevel, Src: []string{StateLevelSelection}, Dst: StateAwaitingStage},
			{Name: eventStageReady, Src: []string{StateAwaitingStage}, Dst: StatePreview},
			{Name: eventStageFailed, Src: []string{StateAwaitingStage}, Dst: StateError},
			{Name: eventRetry, Src: []string{StateError}, Dst: StateLevelSelection},
			{Name: eventConfirm, Src: []string{StatePreview}, Dst: StateDelivery},
			{Name: eventAdvance, Src: []string{StateDelivery}, Dst: StateAwaitingStage},
			{Name: eventTerminate, Src: []string{
				StateLevelSelection, StateAwaitingStage, StatePreview, StateDelivery, StateError,
			}, Dst: StateIdle},
		},
		fsm.Callbacks{},
	)
	return c
}

func (c *Controller) State() string { return c.machine.Current() }

func (c *Controller) Active() bool { return c.machine.Current() != StateIdle }

// Session returns the current tasting session, nil when none is active.
func (c *Controller) Session() *Session { return c.sess }

// StageChat exposes the per-stage sub-conversation.
func (c *Controller) StageChat() *session.Conversation { return c.stageChat }

// StartTasting opens the level selector for the chosen wine. Valid only
// when no tasting is active.
func (c *Controller) StartTasting(wineName string, wineIndex int, wineID string) bool {
	if !c.machine.Can(eventStart) {
		return false
	}
	c.sess = &Session{WineID: wineID, WineName: wineName, WineIndex: wineIndex}
	c.fire(eventStart)
	c.view.ShowLevelSelect(wineName)
	return true
}

// SelectLevel fixes the mode for the run and requests the first stage.
func (c *Controller) SelectLevel(ctx context.Context, mode Mode) error {
	if !c.machine.Can(eventSelectLevel) || c.sess == nil {
		return nil
	}
	c.sess.Mode = mode
	c.fire(eventSelectLevel)
	return c.requestStage(ctx, "visual")
}

// Retry re-opens the level selector after a failed stage request.
func (c *Controller) Retry() {
	if !c.machine.Can(eventRetry) || c.sess == nil {
		return
	}
	c.fire(eventRetry)
	c.view.ShowLevelSelect(c.sess.WineName)
}

func (c *Controller) requestStage(ctx context.Context, stage string) error {
	c.token++
	tok := c.token
	mode, wineID := c.sess.Mode, c.sess.WineID

	c.view.ShowLoading()
	stageData, err := c.backend.SendTastingRequest(ctx, string(mode), wineID, stage)
	if tok != c.token || c.sess == nil {
		// Superseded by a newer request or an explicit close.
		return nil
	}
	if err != nil {
		c.fire(eventStageFailed)
		c.view.ShowError(c.tr.T("tastingError"))
		return err
	}

	c.sess.CurrentStage = stageData.CurrentStage
	c.sess.NextStage = stageData.NextStage
	c.sess.PreviewText = stageData.PreviewText
	c.sess.Chunks = stageData.Chunks
	if stageData.Mode != "" {
		c.sess.Mode = Mode(stageData.Mode)
	}
	c.stageChat = session.New()
	c.inputEnabled = false
	c.fire(eventStageReady)
	c.view.ShowPreview(stageData.CurrentStage, stageData.PreviewText)
	return nil
}

// ConfirmStageStart reveals the stage chunks one at a time with fixed
// pacing, then enables input and shows the continue/end action.
func (c *Controller) ConfirmStageStart(ctx context.Context) {
	if !c.machine.Can(eventConfirm) || c.sess == nil {
		return
	}
	c.fire(eventConfirm)
	tok := c.token
	chunks := c.sess.Chunks

	for i, chunk := range chunks {
		if i == 0 {
			c.pace.Pause(ctx, firstChunkDelay)
		} else {
			c.pace.Pause(ctx, nextChunkDelay)
		}
		if c.stale(tok) || ctx.Err() != nil {
			return
		}
		c.view.ShowComposing(true)
		c.pace.Pause(ctx, composingHold)
		c.view.ShowComposing(false)
		if c.stale(tok) || ctx.Err() != nil {
			return
		}
		c.stageChat.AppendBot(chunk.Text)
		c.view.StageMessage(chunk.Text)
	}

	c.pace.Pause(ctx, inputSettle)
	if c.stale(tok) || ctx.Err() != nil {
		return
	}
	c.inputEnabled = true
	c.view.SetInputEnabled(true)
	c.view.ShowAction(c.actionCaption())
}

func (c *Controller) actionCaption() string {
	if c.hasNextStage() {
		return c.tr.T("continue")
	}
	return c.tr.T("endTasting")
}

func (c *Controller) hasNextStage() bool {
	return c.sess != nil && c.sess.NextStage != "" && c.sess.NextStage != SentinelFeedback
}

// SubmitFeedback sends the user's free text for the active stage. The
// continue/end action stays available throughout; feedback never forces an
// advance. Input is re-enabled on every exit path.
func (c *Controller) SubmitFeedback(ctx context.Context, text string) error {
	if c.machine.Current() != StateDelivery || !c.inputEnabled || c.sess == nil {
		return nil
	}
	chat := c.stageChat
	if !chat.BeginPending() {
		return nil
	}
	tok := c.token
	stage, wineID := c.sess.CurrentStage, c.sess.WineID

	c.view.SetInputEnabled(false)
	chat.AppendUser(text)
	c.view.UserMessage(text)
	c.view.ShowComposing(true)

	reply, err := c.backend.SendTastingFeedback(ctx, wineID, stage, text)

	chat.EndPending()
	c.view.ShowComposing(false)
	if c.stale(tok) {
		return nil
	}
	if err != nil {
		chat.AppendBot(c.tr.T("apology"))
		c.view.StageMessage(c.tr.T("apology"))
	} else if reply != nil && reply.ResponseToFeedback != "" {
		chat.AppendBot(reply.ResponseToFeedback)
		c.view.StageMessage(reply.ResponseToFeedback)
	}
	c.view.SetInputEnabled(true)
	return err
}

// ContinueToNextStage advances to the declared next stage, or terminates
// when the backend declared none or the feedback sentinel.
func (c *Controller) ContinueToNextStage(ctx context.Context) error {
	if c.machine.Current() != StateDelivery || c.sess == nil {
		return nil
	}
	if !c.hasNextStage() {
		c.EndTasting()
		return nil
	}
	next := c.sess.NextStage
	c.inputEnabled = false
	c.view.HideAction()
	c.view.SetInputEnabled(false)
	c.fire(eventAdvance)
	return c.requestStage(ctx, next)
}

// EndTasting discards the session and returns to Idle. It is reachable
// from any non-idle state and idempotent: a second call is a no-op and the
// completion message is appended exactly once.
func (c *Controller) EndTasting() {
	if c.machine.Current() == StateIdle {
		return
	}
	c.token++
	c.fire(eventTerminate)
	c.sess = nil
	c.stageChat = nil
	c.inputEnabled = false
	c.view.HideAction()
	c.view.Closed()
	c.main.BotMessage(c.tr.T("tastingCompleted"))
}

func (c *Controller) stale(tok uint64) bool {
	return tok != c.token || c.machine.Current() != StateDelivery
}

func (c *Controller) fire(event string) {
	if err := c.machine.Event(context.Background(), event); err != nil {
		log.Printf("tasting: event %s from %s: %v", event, c.machine.Current(), err)
	}
}
