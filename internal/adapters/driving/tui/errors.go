package tui

import "errors"

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("tui: answer service is required")

// ErrMissingDataset is returned when no dataset is selected for the chat.
var ErrMissingDataset = errors.New("tui: dataset is required")
