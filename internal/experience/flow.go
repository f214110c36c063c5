package experience

import (
	"context"

	"winechat/internal/api"
	"winechat/internal/i18n"
	"winechat/internal/session"
)

// Backend is the slice of the API client the flow needs.
type Backend interface {
	SendExperienceMessage(ctx context.Context, cardID, text string) (string, error)
}

// View renders the experience detail overlay and its sub-chat.
type View interface {
	ShowDetail(exp api.Experience)
	ShowChat(exp api.Experience, greeting string)
	BotMessage(text string)
	UserMessage(text string)
	ShowComposing(on bool)
	SetInputEnabled(on bool)
	CloseOverlays()
}

// Flow drives the experience detail overlay: a card opened from a list
// message, an optional scoped sub-chat, and back-navigation between the two.
//
// The card is pinned by a message-id/index reference taken when the detail
// opens, so Back always returns to the same record even after newer
// experience lists were appended to the conversation.
type Flow struct {
	backend Backend
	view    View
	tr      *i18n.Translator
	main    *session.Conversation

	ref    session.Ref
	open   bool
	inChat bool
	chat   *session.Conversation
}

func NewFlow(backend Backend, view View, tr *i18n.Translator, main *session.Conversation) *Flow {
	return &Flow{backend: backend, view: view, tr: tr, main: main}
}

func (f *Flow) Open() bool { return f.open }

// Chat exposes the scoped sub-conversation, nil until the chat is opened.
func (f *Flow) Chat() *session.Conversation { return f.chat }

// OpenDetail opens the detail overlay for the referenced card. The
// reference must name an experience-list message and a valid card index;
// anything else is a no-op.
func (f *Flow) OpenDetail(ref session.Ref) bool {
	exp, ok := resolve(f.main, ref)
	if !ok {
		return false
	}
	f.ref = ref
	f.open = true
	f.inChat = false
	f.chat = nil
	f.view.ShowDetail(exp)
	return true
}

// OpenChat switches from the detail view to the scoped sub-chat, seeded
// with a greeting naming the experience.
func (f *Flow) OpenChat() {
	if !f.open || f.inChat {
		return
	}
	exp, ok := resolve(f.main, f.ref)
	if !ok {
		return
	}
	f.inChat = true
	f.chat = session.New()
	greeting := f.tr.Tf("experienceHello", "title", exp.Title)
	f.chat.AppendBot(greeting)
	f.view.ShowChat(exp, greeting)
}

// Back returns from the sub-chat to the detail view of the same card.
func (f *Flow) Back() {
	if !f.open || !f.inChat {
		return
	}
	exp, ok := resolve(f.main, f.ref)
	if !ok {
		f.Close()
		return
	}
	f.inChat = false
	f.chat = nil
	f.view.ShowDetail(exp)
}

// Send posts a user message in the scoped sub-chat. One turn at a time;
// failures degrade to the apology text and input is re-enabled on every
// exit path.
func (f *Flow) Send(ctx context.Context, text string) error {
	if !f.open || !f.inChat || f.chat == nil {
		return nil
	}
	if !f.chat.CanSend(text) {
		return nil
	}
	if !f.chat.BeginPending() {
		return nil
	}
	chat := f.chat
	cardID := resolveID(f.main, f.ref)

	f.view.SetInputEnabled(false)
	chat.AppendUser(text)
	f.view.UserMessage(text)
	f.view.ShowComposing(true)

	reply, err := f.backend.SendExperienceMessage(ctx, cardID, text)

	chat.EndPending()
	f.view.ShowComposing(false)
	if f.chat != chat {
		// Overlay was closed or reopened while the request was in flight.
		return nil
	}
	if err != nil {
		reply = f.tr.T("apology")
	}
	chat.AppendBot(reply)
	f.view.BotMessage(reply)
	f.view.SetInputEnabled(true)
	return err
}

// Close dismisses the detail overlay and sub-chat.
func (f *Flow) Close() {
	if !f.open {
		return
	}
	f.open = false
	f.inChat = false
	f.chat = nil
	f.view.CloseOverlays()
}

func resolve(main *session.Conversation, ref session.Ref) (api.Experience, bool) {
	msg, ok := main.ByID(ref.MessageID)
	if !ok || msg.Kind != session.KindExperienceList {
		return api.Experience{}, false
	}
	if ref.Index < 0 || ref.Index >= len(msg.Experiences) {
		return api.Experience{}, false
	}
	return msg.Experiences[ref.Index], true
}

func resolveID(main *session.Conversation, ref session.Ref) string {
	exp, ok := resolve(main, ref)
	if !ok {
		return ""
	}
	return exp.ID
}
