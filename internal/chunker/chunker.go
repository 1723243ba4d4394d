// Package chunker splits raw document text into ordered, size-bounded chunks
// along paragraph boundaries. Chunks are the unit of materialization for the
// viewer: word indices are globally contiguous across the sequence and a
// paragraph is never split across two chunks.
package chunker

import "strings"

// Chunk is one size-bounded slice of a document's paragraphs.
// StartWord and EndWord are global, inclusive word indices; for any two
// adjacent chunks, EndWord+1 of the first equals StartWord of the second.
type Chunk struct {
	Index     int
	Content   string
	WordCount int
	StartWord int
	EndWord   int
}

// Split partitions text into chunks of roughly targetWords words each.
// Paragraphs accumulate into the current chunk until adding the next one
// would exceed targetWords; the chunk is then closed, unless it is still
// below minWords, in which case the paragraph is appended anyway so chunks
// never end up pathologically small. A single paragraph larger than
// targetWords becomes an oversized chunk by itself rather than being
// truncated. Returns nil for input with no paragraphs.
func Split(text string, targetWords, minWords int) []Chunk {
	if targetWords < 1 {
		targetWords = 1
	}
	if minWords < 0 {
		minWords = 0
	}

	paragraphs := splitParagraphs(text)
	if len(paragraphs) == 0 {
		return nil
	}

	var chunks []Chunk
	var current []string
	currentWords := 0
	nextWord := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			Index:     len(chunks),
			Content:   strings.Join(current, "\n\n"),
			WordCount: currentWords,
			StartWord: nextWord,
			EndWord:   nextWord + currentWords - 1,
		})
		nextWord += currentWords
		current = nil
		currentWords = 0
	}

	for _, p := range paragraphs {
		words := len(strings.Fields(p))
		if currentWords > 0 && currentWords+words > targetWords && currentWords >= minWords {
			flush()
		}
		current = append(current, p)
		currentWords += words
	}
	// The final chunk closes unconditionally, even below minWords.
	flush()

	return chunks
}

// splitParagraphs breaks text on line boundaries and discards empty lines.
func splitParagraphs(text string) []string {
	var paragraphs []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		paragraphs = append(paragraphs, line)
	}
	return paragraphs
}
