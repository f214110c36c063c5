package api

// Wine is a read-only record from the wine-knowledge endpoint.
// It is never mutated locally.
type Wine struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Producer string `json:"producer"`
	Vintage  string `json:"vintage"`
	Region   string `json:"region"`
	Type     string `json:"type"`
	Category string `json:"category"`
}

// Experience is a read-only card record from the winery experiences endpoint.
type Experience struct {
	ID                    string `json:"id"`
	Title                 string `json:"title"`
	Description           string `json:"description"`
	AdditionalDescription string `json:"additonal_description"`
	Duration              string `json:"duration"`
	Price                 string `json:"price"`
	Image                 string `json:"image"`
	DiscoverMoreLink      string `json:"discoverMoreLink"`
}

// Chunk is one unit of tasting-stage content revealed with a pacing delay.
type Chunk struct {
	Text string `json:"text"`
}

// Reply is the closed set of classified API results. Exactly one concrete
// type is produced per response; callers switch on the variant instead of
// sniffing JSON shapes at every call site.
type Reply interface {
	replyVariant()
}

type PlainText struct {
	Text string
}

type WineList struct {
	Wines []Wine
}

// ExperienceList carries both the textual reply, delivered as its own
// message before the cards, and the card records.
type ExperienceList struct {
	Reply string
	Cards []Experience
}

// TastingStage is one stage of the guided tasting flow as returned by the
// backend. NextStage set to the "feedback" sentinel means the flow must
// terminate after this stage; there is no separate last-stage flag.
type TastingStage struct {
	CurrentStage string  `json:"currentStage"`
	NextStage    string  `json:"nextStage"`
	PreviewText  string  `json:"previewText"`
	Mode         string  `json:"mode"`
	Chunks       []Chunk `json:"chunks"`
}

type FeedbackReply struct {
	ResponseToFeedback string `json:"responseToFeedback"`
}

func (PlainText) replyVariant()      {}
func (WineList) replyVariant()       {}
func (ExperienceList) replyVariant() {}
func (TastingStage) replyVariant()   {}
func (FeedbackReply) replyVariant()  {}
