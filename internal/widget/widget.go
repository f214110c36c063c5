package widget

import (
	"context"
	"log"
	"strconv"

	"winechat/internal/api"
	"winechat/internal/config"
	"winechat/internal/experience"
	"winechat/internal/i18n"
	"winechat/internal/session"
	"winechat/internal/tasting"
	"winechat/internal/theme"
)

// Backend is everything the widget needs from the API client.
// *api.Client satisfies it.
type Backend interface {
	Authenticate(ctx context.Context) error
	SendMessage(ctx context.Context, text string) (string, error)
	SendToEndpoint(ctx context.Context, url string) (api.Reply, error)
	SendTastingRequest(ctx context.Context, mode, wineID, stage string) (*api.TastingStage, error)
	SendTastingFeedback(ctx context.Context, wineID, stage, text string) (*api.FeedbackReply, error)
	SendExperienceMessage(ctx context.Context, cardID, text string) (string, error)
	SetLanguage(lang string)
	SetFallback(s string)
	Connected() bool
	Reset()
}

// Renderer receives main-chat render events. The widget core never touches
// a UI toolkit directly; hosts plug in their own renderer.
type Renderer interface {
	MessageAppended(msg session.Message)
	Typing(on bool)
	InputEnabled(on bool)
	QuickActionsEnabled(on bool)
	ThemeApplied(name string, colors map[string]string)
}

// Views bundles the render collaborators for the three surfaces.
type Views struct {
	Chat       Renderer
	Tasting    tasting.View
	Experience experience.View
}

// QuickAction is one predefined prompt shown under the welcome message.
type QuickAction struct {
	Label string
	URL   string
}

// Options configures one widget instance.
type Options struct {
	Config     *config.Config
	Backend    Backend
	ThemeStore theme.Store
	Views      Views

	// Pacer overrides tasting delivery pacing; nil uses real time.
	Pacer tasting.Pacer
}

// Widget is one injectable chat widget instance. It owns its collaborators;
// nothing is shared through package-level state, so multiple instances can
// coexist in one process.
type Widget struct {
	cfg     *config.Config
	tr      *i18n.Translator
	backend Backend
	views   Views

	conv    *session.Conversation
	themes  *theme.Manager
	tasting *tasting.Controller
	exp     *experience.Flow

	actions     []QuickAction
	open        bool
	initialized bool
	cannedIdx   int
}

func New(opts Options) *Widget {
	cfg := opts.Config
	tr := i18n.New(i18n.Language(cfg.Language), cfg.AssistantName)
	opts.Backend.SetLanguage(string(tr.Language()))
	opts.Backend.SetFallback(tr.T("fallback"))

	welcome := cfg.WelcomeMessage
	if welcome == "" {
		welcome = tr.T("welcomeMessage")
	}

	w := &Widget{
		cfg:     cfg,
		tr:      tr,
		backend: opts.Backend,
		views:   opts.Views,
		conv:    session.NewWithWelcome(welcome),
		themes:  theme.NewManager(opts.ThemeStore, cfg.Theme),
	}
	w.tasting = tasting.NewController(opts.Backend, opts.Views.Tasting, tr, w, opts.Pacer)
	w.exp = experience.NewFlow(opts.Backend, opts.Views.Experience, tr, w.conv)
	if cfg.ShowQuickActions {
		w.actions = []QuickAction{
			{Label: tr.T("quickActionVisit"), URL: cfg.APIBaseURL + "/api/winery/experiences"},
			{Label: tr.T("quickActionTaste"), URL: cfg.APIBaseURL + "/api/wine-knowledge/wines"},
		}
	}
	return w
}

// Init renders the initial state and authenticates. It reports whether
// initialization ran; a second call or a missing API base URL returns false.
// Authentication failure is not an initialization failure: the widget stays
// usable with canned replies.
func (w *Widget) Init(ctx context.Context) bool {
	if w.initialized || w.cfg.APIBaseURL == "" {
		return false
	}
	w.initialized = true

	if colors, ok := w.themes.Colors(w.themes.Current()); ok {
		w.views.Chat.ThemeApplied(w.themes.Current(), colors)
	}
	for _, msg := range w.conv.Messages() {
		w.views.Chat.MessageAppended(msg)
	}
	w.views.Chat.QuickActionsEnabled(len(w.actions) > 0)
	w.views.Chat.InputEnabled(true)

	if err := w.backend.Authenticate(ctx); err != nil {
		log.Printf("widget: authentication failed, running degraded: %v", err)
	}
	return true
}

func (w *Widget) Open()        { w.open = true }
func (w *Widget) IsOpen() bool { return w.open }

// Close collapses the widget. An active tasting or experience overlay is
// discarded, never suspended.
func (w *Widget) Close() {
	w.tasting.EndTasting()
	w.exp.Close()
	w.open = false
}

// Shutdown drops the backend session, for host teardown.
func (w *Widget) Shutdown() {
	w.Close()
	w.backend.Reset()
}

func (w *Widget) Conversation() *session.Conversation { return w.conv }
func (w *Widget) Tasting() *tasting.Controller        { return w.tasting }
func (w *Widget) Experience() *experience.Flow        { return w.exp }
func (w *Widget) QuickActions() []QuickAction         { return w.actions }
func (w *Widget) Translator() *i18n.Translator        { return w.tr }
func (w *Widget) Themes() *theme.Manager              { return w.themes }

// Embedded reports whether the widget renders into a host container instead
// of floating.
func (w *Widget) Embedded() bool { return w.cfg.ContainerID != "" }

func (w *Widget) Position() string { return w.cfg.Position }

// BotMessage appends an assistant message to the main conversation and
// notifies the renderer. It also serves the tasting controller's completion
// message.
func (w *Widget) BotMessage(text string) {
	w.postBot(text)
}

// SetLanguage switches widget language at runtime. Unsupported languages
// are rejected and the current language kept.
func (w *Widget) SetLanguage(lang string) bool {
	if !w.tr.SetLanguage(i18n.Language(lang)) {
		return false
	}
	w.backend.SetLanguage(string(w.tr.Language()))
	w.backend.SetFallback(w.tr.T("fallback"))
	return true
}

// ApplyTheme switches the active theme and notifies the renderer.
func (w *Widget) ApplyTheme(name string) bool {
	if !w.themes.Apply(name) {
		return false
	}
	colors, _ := w.themes.Colors(name)
	w.views.Chat.ThemeApplied(name, colors)
	return true
}

// Send runs one conversational turn in the main chat. Only one turn may be
// outstanding; extra calls while pending are no-ops. Transport failures
// degrade to the apology text, and a disconnected backend answers from the
// canned list. Input is re-enabled on every exit path.
func (w *Widget) Send(ctx context.Context, text string) error {
	if !w.conv.CanSend(text) {
		return nil
	}
	if !w.conv.BeginPending() {
		return nil
	}
	w.views.Chat.InputEnabled(false)
	w.postUser(text)
	w.views.Chat.Typing(true)

	var reply string
	var err error
	if w.backend.Connected() {
		reply, err = w.backend.SendMessage(ctx, text)
		if err != nil {
			log.Printf("widget: send message: %v", err)
			reply = w.tr.T("apology")
		}
	} else {
		reply = w.nextCanned()
	}

	w.views.Chat.Typing(false)
	w.postBot(reply)
	w.conv.EndPending()
	w.views.Chat.InputEnabled(true)
	return err
}

// TriggerQuickAction dispatches one of the predefined actions. It shares
// the pending gate with Send, so an action cannot overlap a free-text turn.
func (w *Widget) TriggerQuickAction(ctx context.Context, idx int) error {
	if idx < 0 || idx >= len(w.actions) {
		return nil
	}
	if !w.conv.BeginPending() {
		return nil
	}
	action := w.actions[idx]
	w.views.Chat.InputEnabled(false)
	w.postUser(action.Label)
	w.views.Chat.Typing(true)

	reply, err := w.backend.SendToEndpoint(ctx, action.URL)
	w.views.Chat.Typing(false)
	if err != nil {
		log.Printf("widget: quick action %q: %v", action.Label, err)
		w.postBot(w.tr.T("apology"))
	} else {
		w.postReply(reply)
	}
	w.conv.EndPending()
	w.views.Chat.InputEnabled(true)
	return err
}

func (w *Widget) postReply(reply api.Reply) {
	switch r := reply.(type) {
	case api.PlainText:
		w.postBot(r.Text)
	case api.WineList:
		if len(r.Wines) == 0 {
			w.postBot(w.tr.T("noWines"))
			return
		}
		w.postBot(w.tr.Tf("winesHeader", "count", strconv.Itoa(len(r.Wines))))
		msg := w.conv.Append(session.Message{
			Role:  session.RoleBot,
			Kind:  session.KindWineList,
			Wines: r.Wines,
		})
		w.views.Chat.MessageAppended(msg)
	case api.ExperienceList:
		if len(r.Cards) == 0 {
			w.postBot(w.tr.T("noExperiences"))
			return
		}
		w.postBot(r.Reply)
		msg := w.conv.Append(session.Message{
			Role:        session.RoleBot,
			Kind:        session.KindExperienceList,
			Experiences: r.Cards,
		})
		w.views.Chat.MessageAppended(msg)
	default:
		w.postBot(w.tr.T("fallback"))
	}
}

// StartTasting opens the tasting flow for a wine referenced out of a wine
// list message. Invalid references and an already-active tasting are no-ops.
func (w *Widget) StartTasting(ref session.Ref) bool {
	msg, ok := w.conv.ByID(ref.MessageID)
	if !ok || msg.Kind != session.KindWineList {
		return false
	}
	if ref.Index < 0 || ref.Index >= len(msg.Wines) {
		return false
	}
	wine := msg.Wines[ref.Index]
	return w.tasting.StartTasting(wine.Name, ref.Index, wine.Name)
}

// OpenExperience opens the detail overlay for a card referenced out of an
// experience list message.
func (w *Widget) OpenExperience(ref session.Ref) bool {
	return w.exp.OpenDetail(ref)
}

func (w *Widget) postUser(text string) {
	msg := w.conv.AppendUser(text)
	w.views.Chat.MessageAppended(msg)
}

func (w *Widget) postBot(text string) {
	msg := w.conv.AppendBot(text)
	w.views.Chat.MessageAppended(msg)
}

func (w *Widget) nextCanned() string {
	replies := w.tr.Canned()
	if len(replies) == 0 {
		return w.tr.T("fallback")
	}
	reply := replies[w.cannedIdx%len(replies)]
	w.cannedIdx++
	return reply
}
