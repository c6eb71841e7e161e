package model

// ChoiceIDs are the normalised ids of the four answer choices, in display order.
var ChoiceIDs = [4]string{"A", "B", "C", "D"}

// Choice is one answer option of a question.
type Choice struct {
	ID   string
	Text string
}

// Question is a generated quiz question. It is not persisted.
type Question struct {
	ImageURL        string
	Text            string
	Choices         [4]Choice
	CorrectAnswerID string
	Explanation     string
}
