package domain

// RetrievalResult is one passage ranked by similarity to a query.
// It is ephemeral and never persisted.
type RetrievalResult struct {
	// Text is the passage content.
	Text string

	// Metadata is the metadata stored with the passage.
	Metadata PassageMetadata

	// Score is the cosine similarity to the query (higher is closer).
	Score float64
}

// CollectionInfo summarises a stored collection.
type CollectionInfo struct {
	// Name is the collection name.
	Name string

	// Model is the embedding model that filled the collection.
	// Empty when the collection was created without one.
	Model string

	// Passages is the number of stored passages.
	Passages int

	// Documents is the number of distinct document keys.
	Documents int
}

// Texts returns the passage texts of results in rank order.
func Texts(results []RetrievalResult) []string {
	texts := make([]string, len(results))
	for i := range results {
		texts[i] = results[i].Text
	}
	return texts
}
