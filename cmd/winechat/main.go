package main

import (
	"bufio"
	"context"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"winechat/internal/api"
	"winechat/internal/config"
	"winechat/internal/session"
	"winechat/internal/tasting"
	"winechat/internal/theme"
	"winechat/internal/widget"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	var store theme.Store
	if cfg.ThemeFilePath != "" {
		fs, err := theme.NewFileStore(cfg.ThemeFilePath)
		if err != nil {
			log.Printf("failed to init theme store: %v", err)
		} else {
			store = fs
		}
	}

	view := newConsoleView(os.Stdout)
	w := widget.New(widget.Options{
		Config:     cfg,
		Backend:    api.New(cfg.APIBaseURL, cfg.ClientID),
		ThemeStore: store,
		Views: widget.Views{
			Chat:       view,
			Tasting:    view,
			Experience: view,
		},
	})

	ctx := context.Background()
	if !w.Init(ctx) {
		log.Fatalf("widget initialization failed")
	}
	w.Open()

	run(ctx, w, view)
}

// run reads lines from stdin and routes them: commands start with '/',
// plain text goes to whichever surface is active (tasting feedback,
// experience chat, or the main conversation).
func run(ctx context.Context, w *widget.Widget, view *consoleView) {
	scanner := bufio.NewScanner(os.Stdin)
	view.prompt()
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			view.prompt()
			continue
		}
		if line == "/quit" {
			break
		}
		if strings.HasPrefix(line, "/") {
			command(ctx, w, view, line)
		} else {
			freeText(ctx, w, line)
		}
		view.prompt()
	}
	w.Shutdown()
}

func freeText(ctx context.Context, w *widget.Widget, text string) {
	switch {
	case w.Tasting().State() == tasting.StateDelivery:
		if err := w.Tasting().SubmitFeedback(ctx, text); err != nil {
			log.Printf("feedback: %v", err)
		}
	case w.Experience().Open():
		if err := w.Experience().Send(ctx, text); err != nil {
			log.Printf("experience chat: %v", err)
		}
	default:
		if err := w.Send(ctx, text); err != nil {
			log.Printf("send: %v", err)
		}
	}
}

func command(ctx context.Context, w *widget.Widget, view *consoleView, line string) {
	fields := strings.Fields(line)
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch fields[0] {
	case "/help":
		view.help(w.QuickActions())
	case "/quick":
		n, err := strconv.Atoi(arg)
		if err != nil {
			view.note("usage: /quick <n>")
			return
		}
		if err := w.TriggerQuickAction(ctx, n-1); err != nil {
			log.Printf("quick action: %v", err)
		}
	case "/taste":
		n, err := strconv.Atoi(arg)
		if err != nil {
			view.note("usage: /taste <wine number>")
			return
		}
		msg, ok := w.Conversation().MostRecentOfKind(session.KindWineList)
		if !ok {
			view.note("no wine list in the conversation yet")
			return
		}
		if !w.StartTasting(session.Ref{MessageID: msg.ID, Index: n - 1}) {
			view.note("cannot start a tasting for that wine")
		}
	case "/level":
		mode := tasting.Mode(arg)
		if mode != tasting.ModeBeginner && mode != tasting.ModeExpert {
			view.note("usage: /level beginner|expert")
			return
		}
		if err := w.Tasting().SelectLevel(ctx, mode); err != nil {
			log.Printf("select level: %v", err)
		}
	case "/start":
		w.Tasting().ConfirmStageStart(ctx)
	case "/continue":
		if err := w.Tasting().ContinueToNextStage(ctx); err != nil {
			log.Printf("next stage: %v", err)
		}
	case "/retry":
		w.Tasting().Retry()
	case "/end":
		w.Tasting().EndTasting()
	case "/exp":
		n, err := strconv.Atoi(arg)
		if err != nil {
			view.note("usage: /exp <card number>")
			return
		}
		msg, ok := w.Conversation().MostRecentOfKind(session.KindExperienceList)
		if !ok {
			view.note("no experience list in the conversation yet")
			return
		}
		if !w.OpenExperience(session.Ref{MessageID: msg.ID, Index: n - 1}) {
			view.note("cannot open that card")
		}
	case "/chat":
		w.Experience().OpenChat()
	case "/back":
		w.Experience().Back()
	case "/close":
		w.Experience().Close()
	case "/lang":
		if !w.SetLanguage(arg) {
			view.note("unsupported language: " + arg)
		}
	case "/theme":
		if !w.ApplyTheme(arg) {
			view.note("unknown theme: " + arg + " (available: " + strings.Join(w.Themes().Available(), ", ") + ")")
		}
	default:
		view.note("unknown command, try /help")
	}
}
