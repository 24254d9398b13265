// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The pipeline runs leaves first: a normaliser turns an artifact into
// text, the post-processor pipeline splits it into passages, and the
// IndexManager embeds and stores them per collection. AnswerService later
// retrieves passages for a question and grounds a generated answer in them.
package services
