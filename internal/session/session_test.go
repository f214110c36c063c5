package session

import (
	"testing"

	"winechat/internal/api"
)

func TestAppendKeepsInsertionOrder(t *testing.T) {
	c := New()
	c.AppendUser("one")
	c.AppendBot("two")
	c.AppendUser("three")

	msgs := c.Messages()
	if len(msgs) != 3 {
		t.Fatalf("len = %d", len(msgs))
	}
	for i, want := range []string{"one", "two", "three"} {
		if msgs[i].Text != want {
			t.Fatalf("msgs[%d] = %q, want %q", i, msgs[i].Text, want)
		}
	}
	if msgs[0].ID == "" || msgs[0].ID == msgs[1].ID {
		t.Fatal("messages must get distinct ids")
	}
}

func TestWelcomeRemovedOnFirstUserMessage(t *testing.T) {
	c := NewWithWelcome("benvenuto")
	if msgs := c.Messages(); len(msgs) != 1 || msgs[0].Text != "benvenuto" {
		t.Fatalf("seed: %+v", msgs)
	}

	c.AppendBot("still here")
	if msgs := c.Messages(); len(msgs) != 2 {
		t.Fatalf("bot message must not remove welcome: %+v", msgs)
	}

	c.AppendUser("hi")
	msgs := c.Messages()
	if len(msgs) != 2 {
		t.Fatalf("len = %d", len(msgs))
	}
	for _, m := range msgs {
		if m.Text == "benvenuto" {
			t.Fatal("welcome survived first user message")
		}
	}

	// Only the first user message removes it; later ones are plain appends.
	c.AppendUser("again")
	if len(c.Messages()) != 3 {
		t.Fatal("later user messages must not drop anything")
	}
}

func TestMostRecentOfKind(t *testing.T) {
	c := New()
	first := c.Append(Message{Role: RoleBot, Kind: KindWineList, Wines: []api.Wine{{Name: "A"}}})
	c.AppendBot("text")
	second := c.Append(Message{Role: RoleBot, Kind: KindWineList, Wines: []api.Wine{{Name: "B"}}})

	got, ok := c.MostRecentOfKind(KindWineList)
	if !ok || got.ID != second.ID {
		t.Fatalf("got %+v, want id %s", got, second.ID)
	}

	byID, ok := c.ByID(first.ID)
	if !ok || byID.Wines[0].Name != "A" {
		t.Fatalf("ByID lost the older list: %+v", byID)
	}

	if _, ok := c.MostRecentOfKind(KindExperienceList); ok {
		t.Fatal("found a kind that was never appended")
	}
}

func TestPendingGate(t *testing.T) {
	c := New()
	if !c.BeginPending() {
		t.Fatal("first claim refused")
	}
	if c.BeginPending() {
		t.Fatal("second claim allowed while pending")
	}
	c.EndPending()
	if !c.BeginPending() {
		t.Fatal("claim refused after release")
	}
}

func TestCanSend(t *testing.T) {
	c := New()
	if c.CanSend("") || c.CanSend("   ") {
		t.Fatal("blank input must disable send")
	}
	if !c.CanSend("ciao") {
		t.Fatal("non-empty input with no pending turn must enable send")
	}
	c.BeginPending()
	if c.CanSend("ciao") {
		t.Fatal("send enabled while a response is outstanding")
	}
	c.EndPending()
	if !c.CanSend("ciao") {
		t.Fatal("send not re-enabled after release")
	}
}
