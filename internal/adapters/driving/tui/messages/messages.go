// Package messages defines Bubbletea message types for the TUI.
// Messages represent events that flow through the Elm architecture.
package messages

// QuestionSubmitted is sent when the user asks a question.
type QuestionSubmitted struct {
	Question string
}

// AnswerReceived carries an answer back to the model.
// Sources lists the labels of the passages retrieved for the question.
type AnswerReceived struct {
	Question string
	Answer   string
	Sources  []string
}

// ErrorOccurred is sent when a background step fails.
type ErrorOccurred struct {
	Err error
}
