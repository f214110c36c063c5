package experience

import (
	"context"
	"errors"
	"strings"
	"testing"

	"winechat/internal/api"
	"winechat/internal/i18n"
	"winechat/internal/session"
)

type stubBackend struct {
	reply string
	err   error
	cards []string // cardId per call
	// onSend runs while the request is in flight.
	onSend func()
}

func (b *stubBackend) SendExperienceMessage(ctx context.Context, cardID, text string) (string, error) {
	b.cards = append(b.cards, cardID)
	if b.onSend != nil {
		b.onSend()
	}
	return b.reply, b.err
}

type recordView struct {
	details   []string // titles shown
	chats     []string
	greetings []string
	botMsgs   []string
	userMsgs  []string
	input     bool
	closes    int
}

func (v *recordView) ShowDetail(exp api.Experience) { v.details = append(v.details, exp.Title) }
func (v *recordView) ShowChat(exp api.Experience, greeting string) {
	v.chats = append(v.chats, exp.Title)
	v.greetings = append(v.greetings, greeting)
}
func (v *recordView) BotMessage(text string) { v.botMsgs = append(v.botMsgs, text) }
func (v *recordView) UserMessage(text string) { v.userMsgs = append(v.userMsgs, text) }
func (v *recordView) ShowComposing(on bool) {}
func (v *recordView) SetInputEnabled(on bool) { v.input = on }
func (v *recordView) CloseOverlays() { v.closes++ }

func newTestFlow(backend *stubBackend) (*Flow, *recordView, *session.Conversation, session.Ref) {
	view := &recordView{}
	main := session.New()
	msg := main.Append(session.Message{
		Role: session.RoleBot,
		Kind: session.KindExperienceList,
		Experiences: []api.Experience{
			{ID: "e1", Title: "Cellar Tour"},
			{ID: "e2", Title: "Sunset Tasting"},
		},
	})
	tr := i18n.New(i18n.Italian, "")
	f := NewFlow(backend, view, tr, main)
	return f, view, main, session.Ref{MessageID: msg.ID, Index: 1}
}

func TestOpenDetailResolvesCard(t *testing.T) {
	f, view, _, ref := newTestFlow(&stubBackend{})
	if !f.OpenDetail(ref) {
		t.Fatal("open refused")
	}
	if len(view.details) != 1 || view.details[0] != "Sunset Tasting" {
		t.Fatalf("details: %v", view.details)
	}

	if f.OpenDetail(session.Ref{MessageID: ref.MessageID, Index: 5}) {
		t.Fatal("out-of-range index accepted")
	}
	if f.OpenDetail(session.Ref{MessageID: "missing", Index: 0}) {
		t.Fatal("unknown message accepted")
	}
}

func TestOpenDetailRejectsNonListMessage(t *testing.T) {
	backend := &stubBackend{}
	view := &recordView{}
	main := session.New()
	msg := main.AppendBot("plain text")
	f := NewFlow(backend, view, i18n.New(i18n.Italian, ""), main)
	if f.OpenDetail(session.Ref{MessageID: msg.ID, Index: 0}) {
		t.Fatal("plain message accepted as card source")
	}
}

func TestChatGreetingNamesExperience(t *testing.T) {
	f, view, _, ref := newTestFlow(&stubBackend{})
	f.OpenDetail(ref)
	f.OpenChat()
	if len(view.chats) != 1 {
		t.Fatalf("chats: %v", view.chats)
	}
	if !strings.Contains(view.greetings[0], "Sunset Tasting") {
		t.Fatalf("greeting %q does not name the experience", view.greetings[0])
	}
	if got := len(f.Chat().Messages()); got != 1 {
		t.Fatalf("chat seeded with %d messages", got)
	}
}

func TestBackReturnsToSameCardAfterNewerList(t *testing.T) {
	f, view, main, ref := newTestFlow(&stubBackend{})
	f.OpenDetail(ref)
	f.OpenChat()

	// A newer experience list arrives in the main conversation while the
	// overlay is open; Back must still resolve the pinned card.
	main.Append(session.Message{
		Role:        session.RoleBot,
		Kind:        session.KindExperienceList,
		Experiences: []api.Experience{{ID: "e9", Title: "Other"}},
	})

	f.Back()
	if len(view.details) != 2 || view.details[1] != "Sunset Tasting" {
		t.Fatalf("details: %v", view.details)
	}
	if f.Chat() != nil {
		t.Fatal("chat survived back navigation")
	}
}

func TestSendRoutesCardID(t *testing.T) {
	backend := &stubBackend{reply: "volentieri"}
	f, view, _, ref := newTestFlow(backend)
	f.OpenDetail(ref)
	f.OpenChat()

	if err := f.Send(context.Background(), "quanto dura?"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(backend.cards) != 1 || backend.cards[0] != "e2" {
		t.Fatalf("card ids: %v", backend.cards)
	}
	if len(view.botMsgs) != 1 || view.botMsgs[0] != "volentieri" {
		t.Fatalf("bot msgs: %v", view.botMsgs)
	}
	if !view.input {
		t.Fatal("input not re-enabled")
	}
	if got := len(f.Chat().Messages()); got != 3 {
		t.Fatalf("chat has %d messages", got)
	}
}

func TestSendFailureApologizes(t *testing.T) {
	backend := &stubBackend{err: errors.New("down")}
	f, view, _, ref := newTestFlow(backend)
	tr := i18n.New(i18n.Italian, "")
	f.OpenDetail(ref)
	f.OpenChat()

	if err := f.Send(context.Background(), "ciao"); err == nil {
		t.Fatal("expected error")
	}
	if len(view.botMsgs) != 1 || view.botMsgs[0] != tr.T("apology") {
		t.Fatalf("bot msgs: %v", view.botMsgs)
	}
	if !view.input {
		t.Fatal("input not re-enabled after failure")
	}
}

func TestSendIgnoredOutsideChat(t *testing.T) {
	backend := &stubBackend{reply: "x"}
	f, _, _, ref := newTestFlow(backend)

	if err := f.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	f.OpenDetail(ref)
	if err := f.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(backend.cards) != 0 {
		t.Fatalf("requests issued outside chat: %v", backend.cards)
	}
}

func TestCloseWhileSendInFlight(t *testing.T) {
	backend := &stubBackend{reply: "late"}
	f, view, _, ref := newTestFlow(backend)
	backend.onSend = func() { f.Close() }
	f.OpenDetail(ref)
	f.OpenChat()

	if err := f.Send(context.Background(), "ciao"); err != nil {
		t.Fatalf("send: %v", err)
	}
	for _, m := range view.botMsgs {
		if m == "late" {
			t.Fatal("stale reply rendered after close")
		}
	}
	if view.closes != 1 {
		t.Fatalf("closes = %d", view.closes)
	}
	if f.Open() {
		t.Fatal("flow still open")
	}
}
