package types

// Log action types.
const (
	ActionWater       = "water"
	ActionFeed        = "feed"
	ActionFlush       = "flush"
	ActionPrune       = "prune"
	ActionTrain       = "train"
	ActionFlip        = "flip"
	ActionHarvest     = "harvest"
	ActionDry         = "dry"
	ActionCure        = "cure"
	ActionPhoto       = "photo"
	ActionIssue       = "issue"
	ActionEnvironment = "environment"
	ActionNote        = "note"
	ActionOther       = "other"
)

// ActionTypes lists all action types in display order.
var ActionTypes = []string{
	ActionWater, ActionFeed, ActionFlush, ActionPrune, ActionTrain, ActionFlip,
	ActionHarvest, ActionDry, ActionCure, ActionPhoto, ActionIssue,
	ActionEnvironment, ActionNote, ActionOther,
}

var validActions = func() map[string]bool {
	m := make(map[string]bool, len(ActionTypes))
	for _, a := range ActionTypes {
		m[a] = true
	}
	return m
}()

// ValidAction reports whether a is a recognized log action type.
func ValidAction(a string) bool {
	return validActions[a]
}

// TreeLog is a journal entry attached to a tree.
type TreeLog struct {
	ID         int64  `json:"id"`
	Tree       int64  `json:"tree"`
	ActionDate string `json:"action_date"`
	ActionType string `json:"action_type"`
	Title      string `json:"title,omitempty"`
	Notes      string `json:"notes,omitempty"`

	// Environment readings.
	PH       *Decimal `json:"ph,omitempty"`
	EC       *Decimal `json:"ec,omitempty"`
	Temp     *Decimal `json:"temp,omitempty"`
	Humidity *Decimal `json:"humidity,omitempty"`

	// Harvest weights in grams.
	WetWeight  *Decimal `json:"wet_weight,omitempty"`
	DryWeight  *Decimal `json:"dry_weight,omitempty"`
	TrimWeight *Decimal `json:"trim_weight,omitempty"`

	CreatedAt string  `json:"created_at"`
	Images    []Image `json:"images"`
}

// Clone returns a copy that shares no slices with l.
func (l TreeLog) Clone() TreeLog {
	c := l
	if l.Images != nil {
		c.Images = append([]Image(nil), l.Images...)
	}
	return c
}
