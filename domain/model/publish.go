package model

// Delivery status values for a (post, platform) pair.
const (
	StatusQueued    = "queued"
	StatusDelivered = "delivered"
	StatusFailed    = "failed"
)

// QueueEntry is a post awaiting distribution, keyed by its public URL
type QueueEntry struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Source   string `json:"source"`
	Date     string `json:"date"`
	File     string `json:"file"`
	State    string `json:"state"`
	QueuedAt string `json:"queued_at"`
}

// PlatformDelivery is the delivery state of one post on one platform
type PlatformDelivery struct {
	Status        string `json:"status"`
	Attempts      int    `json:"attempts"`
	LastAttemptAt string `json:"last_attempt_at"`
	Message       string `json:"message"`
}

// Terminal reports whether no further dispatch attempts are made for this slot
func (d *PlatformDelivery) Terminal() bool {
	return d.Status == StatusDelivered || d.Status == StatusFailed
}

// StatusRecord tracks per-platform delivery for one post
type StatusRecord struct {
	Title     string                       `json:"title"`
	Source    string                       `json:"source"`
	Date      string                       `json:"date"`
	File      string                       `json:"file"`
	Platforms map[string]*PlatformDelivery `json:"platforms"`
	CreatedAt string                       `json:"created_at"`
}

// StatusSnapshot is the full content of the status store (shape of publish_status.json)
type StatusSnapshot struct {
	Items     map[string]*StatusRecord `json:"items"`
	UpdatedAt string                   `json:"updated_at"`
}

// PublishPayload is the body of one webhook dispatch
type PublishPayload struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source,omitempty"`
	Date   string `json:"date,omitempty"`
	Body   string `json:"body,omitempty"`
}

// AssistTask is one manual-publish task: a (post, platform) pair still awaiting delivery
type AssistTask struct {
	Platform   string `json:"platform"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	PublishURL string `json:"publish_url,omitempty"`
	Body       string `json:"body"`
}
