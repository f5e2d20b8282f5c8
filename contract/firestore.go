package contract

import "time"

const (
	MessageCollection    = "messages"
	UserCollection       = "users"
	AssessmentCollection = "assessment"
)

// Message is one entry in the shared "messages" collection. The store
// assigns the id; messages are append-only and never mutated.
type Message struct {
	ID        string    `firestore:"-" json:"-"`
	From      string    `firestore:"from" json:"from"`
	To        string    `firestore:"to" json:"to"`
	Text      string    `firestore:"text" json:"text"`
	Timestamp time.Time `firestore:"timestamp" json:"timestamp"`
}

// UserProfile is a "users" collection document. CreatedAt is the ordering
// key for directory lookups (account-creation order).
type UserProfile struct {
	Email       string    `firestore:"email" json:"email"`
	DisplayName string    `firestore:"displayName" json:"displayName"`
	Role        string    `firestore:"role" json:"role"`
	Img         string    `firestore:"img" json:"img"`
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt"`
}

// Assessment is an "assessment" collection document. Skill and Questions
// are written when generation succeeds; Response and Score are merged in
// once, on submission. Response keys are question indexes as strings.
type Assessment struct {
	ID        string            `firestore:"-" json:"-"`
	Skill     string            `firestore:"skill" json:"skill"`
	Questions []Question        `firestore:"questions" json:"questions"`
	Response  map[string]string `firestore:"response,omitempty" json:"response,omitempty"`
	Score     int               `firestore:"score,omitempty" json:"score,omitempty"`
}

// Question uses the same field names on the wire and in the generation
// service's JSON payload.
type Question struct {
	Prompt        string   `firestore:"question" json:"question"`
	Options       []string `firestore:"options" json:"options"`
	CorrectAnswer string   `firestore:"correctAnswer" json:"correctAnswer"`
}
