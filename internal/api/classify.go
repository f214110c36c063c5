package api

import (
	"encoding/json"
	"strings"
)

// RequestKind is the endpoint hint derived from which action the user
// triggered. Hints take precedence over shape-sniffing: a response to a
// wines request is never reinterpreted as plain text even when the body
// also carries a text field.
type RequestKind int

const (
	RequestDefault RequestKind = iota
	RequestWines
	RequestExperiences
)

// KindForURL infers the request kind from a quick-action endpoint URL.
func KindForURL(url string) RequestKind {
	switch {
	case strings.Contains(url, "wine-knowledge/wines"):
		return RequestWines
	case strings.Contains(url, "winery/experiences"):
		return RequestExperiences
	default:
		return RequestDefault
	}
}

type wineEnvelope struct {
	Wines []Wine `json:"wines"`
}

type experienceEnvelope struct {
	Reply string       `json:"reply"`
	Cards []Experience `json:"cards"`
}

type textEnvelope struct {
	Text     string `json:"text"`
	Response string `json:"response"`
	Message  string `json:"message"`
}

// Classify turns a raw response body into exactly one Reply variant.
// The hinted structured shapes are tried first; when they do not apply the
// generic text shapes are tried in a fixed order (array of objects with a
// text field, object with text, object with response/message, bare string).
// Nothing matching degrades to PlainText carrying the given fallback, never
// to an error.
func Classify(kind RequestKind, body []byte, fallback string) Reply {
	if kind == RequestWines {
		var env wineEnvelope
		if err := json.Unmarshal(body, &env); err == nil && env.Wines != nil {
			// An empty list still classifies as a wine list; "no results"
			// is a rendering concern, not an error.
			return WineList{Wines: env.Wines}
		}
	}
	if kind == RequestExperiences {
		var env experienceEnvelope
		if err := json.Unmarshal(body, &env); err == nil && env.Reply != "" && env.Cards != nil {
			return ExperienceList{Reply: env.Reply, Cards: env.Cards}
		}
	}

	if text, ok := classifyText(body); ok {
		return PlainText{Text: text}
	}
	return PlainText{Text: fallback}
}

func classifyText(body []byte) (string, bool) {
	var arr []textEnvelope
	if err := json.Unmarshal(body, &arr); err == nil && len(arr) > 0 && arr[0].Text != "" {
		return arr[0].Text, true
	}
	var obj textEnvelope
	if err := json.Unmarshal(body, &obj); err == nil {
		if obj.Text != "" {
			return obj.Text, true
		}
		if obj.Response != "" {
			return obj.Response, true
		}
		if obj.Message != "" {
			return obj.Message, true
		}
	}
	var s string
	if err := json.Unmarshal(body, &s); err == nil && s != "" {
		return s, true
	}
	return "", false
}
