package ingest

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/minervahq/minerva/internal/store"
)

// Splitter cuts extracted text into overlapping chunks sized for the
// embedding model.
type Splitter struct {
	inner textsplitter.RecursiveCharacter
}

// NewSplitter creates a splitter with the given chunk size and overlap, both
// measured in characters.
func NewSplitter(chunkSize, chunkOverlap int) Splitter {
	return Splitter{
		inner: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
	}
}

// Split chunks one document. Each chunk keeps the page number and source
// name it came from; author is carried through to every chunk.
func (s Splitter) Split(doc Document, author string) ([]store.Chunk, error) {
	var chunks []store.Chunk
	for _, page := range doc.Pages {
		pieces, err := s.inner.SplitText(page.Text)
		if err != nil {
			return nil, fmt.Errorf("splitting %s page %d: %w", doc.Name, page.Number, err)
		}
		for _, piece := range pieces {
			piece = strings.TrimSpace(piece)
			if piece == "" {
				continue
			}
			chunks = append(chunks, store.Chunk{
				Text:   piece,
				Page:   page.Number,
				Source: doc.Name,
				Author: author,
			})
		}
	}
	return chunks, nil
}

// SplitAll chunks a batch of documents in order.
func (s Splitter) SplitAll(docs []Document, author string) ([]store.Chunk, error) {
	var chunks []store.Chunk
	for _, doc := range docs {
		cs, err := s.Split(doc, author)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, cs...)
	}
	return chunks, nil
}
