package model

import "time"

// Phase is the stage of a user's conversation.
type Phase string

const (
	PhaseOnboarding Phase = "ONBOARDING"
	PhaseQuiz       Phase = "QUIZ"
)

// User is the per-chat conversation record.
type User struct {
	ID     int64
	ChatID int64
	Phase  Phase

	WrongCount   int
	CorrectCount int

	// PendingAnswerID is the choice id expected for the question on screen.
	// Empty before the first question and after a judgement consumed it.
	PendingAnswerID string
	Explanation     string

	Location Location

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser returns a fresh record in the onboarding phase.
func NewUser(chatID int64) *User {
	return &User{ChatID: chatID, Phase: PhaseOnboarding}
}

// EnterQuiz moves the user into the quiz phase with zeroed counters.
func (u *User) EnterQuiz() {
	u.Phase = PhaseQuiz
	u.WrongCount = 0
	u.CorrectCount = 0
	u.PendingAnswerID = ""
}

// Reset returns the user to onboarding and forgets the selected location.
func (u *User) Reset() {
	u.Phase = PhaseOnboarding
	u.WrongCount = 0
	u.CorrectCount = 0
	u.PendingAnswerID = ""
	u.Explanation = ""
	u.Location = Location{}
}

// SetPending records the expected answer of the question being sent.
func (u *User) SetPending(q Question) {
	u.PendingAnswerID = q.CorrectAnswerID
	u.Explanation = q.Explanation
}

// Clone returns a copy safe to hand to another goroutine.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
