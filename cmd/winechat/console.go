package main

import (
	"fmt"
	"io"
	"strings"

	"winechat/internal/api"
	"winechat/internal/session"
	"winechat/internal/widget"
)

// consoleView renders all three widget surfaces to a terminal. It stands in
// for a host-page renderer and keeps the core free of UI concerns.
type consoleView struct {
	out io.Writer
}

func newConsoleView(out io.Writer) *consoleView {
	return &consoleView{out: out}
}

func (v *consoleView) prompt() {
	fmt.Fprint(v.out, "> ")
}

func (v *consoleView) note(text string) {
	fmt.Fprintf(v.out, "  %s\n", text)
}

func (v *consoleView) help(actions []widget.QuickAction) {
	fmt.Fprintln(v.out, "  /quick <n>            trigger a quick action")
	for i, a := range actions {
		fmt.Fprintf(v.out, "      %d. %s\n", i+1, a.Label)
	}
	fmt.Fprintln(v.out, "  /taste <n>            start a tasting for wine n of the last list")
	fmt.Fprintln(v.out, "  /level <b|e>          pick beginner or expert")
	fmt.Fprintln(v.out, "  /start /continue /end drive the tasting")
	fmt.Fprintln(v.out, "  /exp <n> /chat /back  browse experience cards")
	fmt.Fprintln(v.out, "  /lang <it|en> /theme <name> /quit")
}

// widget.Renderer

func (v *consoleView) MessageAppended(msg session.Message) {
	switch msg.Kind {
	case session.KindWineList:
		for i, wine := range msg.Wines {
			fmt.Fprintf(v.out, "  %d. %s", i+1, wine.Name)
			if wine.Producer != "" {
				fmt.Fprintf(v.out, " — %s", wine.Producer)
			}
			if wine.Vintage != "" {
				fmt.Fprintf(v.out, " (%s)", wine.Vintage)
			}
			fmt.Fprintln(v.out)
		}
	case session.KindExperienceList:
		for i, exp := range msg.Experiences {
			fmt.Fprintf(v.out, "  %d. %s", i+1, exp.Title)
			if exp.Price != "" {
				fmt.Fprintf(v.out, " · %s", exp.Price)
			}
			fmt.Fprintln(v.out)
		}
	default:
		role := "bot"
		if msg.Role == session.RoleUser {
			role = "you"
		}
		fmt.Fprintf(v.out, "[%s] %s\n", role, msg.Text)
	}
}

func (v *consoleView) Typing(on bool) {
	if on {
		fmt.Fprintln(v.out, "  ...")
	}
}

func (v *consoleView) InputEnabled(on bool) {}

func (v *consoleView) QuickActionsEnabled(on bool) {
	if on {
		fmt.Fprintln(v.out, "  (quick actions available, see /help)")
	}
}

func (v *consoleView) ThemeApplied(name string, colors map[string]string) {
	fmt.Fprintf(v.out, "  theme: %s\n", name)
}

// tasting.View

func (v *consoleView) ShowLevelSelect(wineName string) {
	fmt.Fprintf(v.out, "  ── tasting: %s ──\n", wineName)
	fmt.Fprintln(v.out, "  pick a level with /level beginner or /level expert")
}

func (v *consoleView) ShowLoading() {
	fmt.Fprintln(v.out, "  loading stage...")
}

func (v *consoleView) ShowPreview(stage, previewText string) {
	fmt.Fprintf(v.out, "  ── stage: %s ──\n", strings.ToUpper(stage))
	if previewText != "" {
		fmt.Fprintf(v.out, "  %s\n", previewText)
	}
	fmt.Fprintln(v.out, "  type /start when ready")
}

func (v *consoleView) ShowComposing(on bool) {
	if on {
		fmt.Fprintln(v.out, "  ...")
	}
}

func (v *consoleView) StageMessage(text string) {
	fmt.Fprintf(v.out, "[tasting] %s\n", text)
}

func (v *consoleView) UserMessage(text string) {
	fmt.Fprintf(v.out, "[you] %s\n", text)
}

func (v *consoleView) ShowAction(caption string) {
	fmt.Fprintf(v.out, "  [%s] → /continue\n", caption)
}

func (v *consoleView) HideAction() {}

func (v *consoleView) SetInputEnabled(on bool) {}

func (v *consoleView) ShowError(message string) {
	fmt.Fprintf(v.out, "  error: %s (/retry to pick a level again)\n", message)
}

func (v *consoleView) Closed() {
	fmt.Fprintln(v.out, "  ── tasting closed ──")
}

// experience.View

func (v *consoleView) ShowDetail(exp api.Experience) {
	fmt.Fprintf(v.out, "  ── %s ──\n", exp.Title)
	if exp.Description != "" {
		fmt.Fprintf(v.out, "  %s\n", exp.Description)
	}
	if exp.Duration != "" {
		fmt.Fprintf(v.out, "  duration: %s\n", exp.Duration)
	}
	if exp.Price != "" {
		fmt.Fprintf(v.out, "  price: %s\n", exp.Price)
	}
	fmt.Fprintln(v.out, "  /chat to ask about it, /close to dismiss")
}

func (v *consoleView) ShowChat(exp api.Experience, greeting string) {
	fmt.Fprintf(v.out, "  ── chat: %s ──\n", exp.Title)
	fmt.Fprintf(v.out, "[bot] %s\n", greeting)
}

func (v *consoleView) BotMessage(text string) {
	fmt.Fprintf(v.out, "[bot] %s\n", text)
}

func (v *consoleView) CloseOverlays() {
	fmt.Fprintln(v.out, "  ── overlay closed ──")
}
