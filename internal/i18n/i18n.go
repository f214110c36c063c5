package i18n

import (
	"strings"
	"sync"
)

type Language string

const (
	Italian Language = "it"
	English Language = "en"
)

var defaultAssistantNames = map[Language]string{
	Italian: "Assistente Virtuale",
	English: "Virtual Assistant",
}

var translations = map[Language]map[string]string{
	Italian: {
		"welcomeMessage":   "Ciao! 👋 Sono il tuo assistente virtuale. Come posso aiutarti oggi?",
		"placeholder":      "Scrivi un messaggio...",
		"typing":           "L'assistente sta scrivendo...",
		"quickActionVisit": "Organizzate visite?",
		"quickActionTaste": "Degustiamo insieme?",
		"selectLevel":      "Seleziona il tuo livello",
		"beginner":         "Principiante",
		"expert":           "Esperto",
		"beginnerDesc":     "Perfetto per chi inizia a scoprire il mondo del vino",
		"expertDesc":       "Per degustatori esperti che vogliono approfondire",
		"stage":            "Fase",
		"start":            "Inizia",
		"continue":         "Continua la degustazione",
		"endTasting":       "Termina Degustazione",
		"tastingCompleted": "🍷 Degustazione completata! Grazie per aver partecipato.",
		"tastingError":     "Errore durante l'avvio della degustazione. Riprova.",
		"stageError":       "Errore durante il caricamento della prossima fase.",
		"loading":          "Caricamento...",
		"error":            "Errore",
		"close":            "Chiudi",
		"discoverMore":     "Scopri di più",
		"chatForInfo":      "Chatta per avere info",
		"included":         "Incluso",
		"apology":          "Scusa, c'è stato un problema. Riprova più tardi.",
		"fallback":         "Scusa, non sono riuscito a elaborare la tua richiesta.",
		"noWines":          "Non ho trovato vini da mostrare.",
		"noExperiences":    "Non ho trovato esperienze da mostrare.",
		"winesHeader":      "Ecco {count} vini disponibili:",
		"experienceHello":  "Ciao! 👋 Sono qui per aiutarti con domande su \"{title}\". Cosa vorresti sapere?",
	},
	English: {
		"welcomeMessage":   "Hello! 👋 I'm your virtual assistant. How can I help you today?",
		"placeholder":      "Type a message...",
		"typing":           "Assistant is typing...",
		"quickActionVisit": "Do you organize visits?",
		"quickActionTaste": "Let's taste together?",
		"selectLevel":      "Select your level",
		"beginner":         "Beginner",
		"expert":           "Expert",
		"beginnerDesc":     "Perfect for those starting to discover the wine world",
		"expertDesc":       "For experienced tasters who want to deepen their knowledge",
		"stage":            "Stage",
		"start":            "Start",
		"continue":         "Continue tasting",
		"endTasting":       "End Tasting",
		"tastingCompleted": "🍷 Tasting completed! Thank you for participating.",
		"tastingError":     "Something went wrong starting the tasting. Please retry.",
		"stageError":       "Something went wrong loading the next stage.",
		"loading":          "Loading...",
		"error":            "Error",
		"close":            "Close",
		"discoverMore":     "Discover more",
		"chatForInfo":      "Chat for info",
		"included":         "Included",
		"apology":          "Sorry, something went wrong. Please try again later.",
		"fallback":         "Sorry, I could not process your request.",
		"noWines":          "I could not find any wines to show.",
		"noExperiences":    "I could not find any experiences to show.",
		"winesHeader":      "Here are {count} available wines:",
		"experienceHello":  "Hi! 👋 I'm here to help with questions about \"{title}\". What would you like to know?",
	},
}

// Degraded-mode replies used when the API could not be authenticated.
var canned = map[Language][]string{
	Italian: {
		"Interessante! Potresti dirmi di più?",
		"Capisco la tua domanda. Lascia che ci pensi...",
		"Ottima domanda! Ecco cosa penso:",
		"Perfetto! Sono qui per aiutarti con questo.",
	},
	English: {
		"Interesting! Could you tell me more?",
		"I see your question. Let me think...",
		"Great question! Here is what I think:",
		"Perfect! I'm here to help you with that.",
	},
}

func Supported(lang Language) bool {
	_, ok := translations[lang]
	return ok
}

// Translator resolves localized widget strings for one widget instance.
// The language may change at runtime; lookups after SetLanguage use the
// new table. Unknown keys fall back to the Italian table, then to the key
// itself, so a missing entry never breaks rendering.
type Translator struct {
	mu            sync.RWMutex
	lang          Language
	assistantName string
}

func New(lang Language, assistantName string) *Translator {
	if !Supported(lang) {
		lang = Italian
	}
	return &Translator{lang: lang, assistantName: assistantName}
}

func (t *Translator) Language() Language {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lang
}

func (t *Translator) SetLanguage(lang Language) bool {
	if !Supported(lang) {
		return false
	}
	t.mu.Lock()
	t.lang = lang
	t.mu.Unlock()
	return true
}

func (t *Translator) T(key string) string {
	t.mu.RLock()
	lang := t.lang
	name := t.assistantName
	t.mu.RUnlock()

	text, ok := translations[lang][key]
	if !ok {
		text, ok = translations[Italian][key]
	}
	if !ok {
		return key
	}
	if name == "" {
		name = defaultAssistantNames[lang]
	}
	return strings.ReplaceAll(text, "{assistantName}", name)
}

// Tf resolves a key and substitutes placeholder/value pairs,
// e.g. Tf("winesHeader", "count", "3").
func (t *Translator) Tf(key string, pairs ...string) string {
	text := t.T(key)
	for i := 0; i+1 < len(pairs); i += 2 {
		text = strings.ReplaceAll(text, "{"+pairs[i]+"}", pairs[i+1])
	}
	return text
}

// Canned returns the degraded-mode reply list for the current language.
func (t *Translator) Canned() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, len(canned[t.lang]))
	copy(out, canned[t.lang])
	return out
}
