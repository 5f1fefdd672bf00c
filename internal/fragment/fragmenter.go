// Package fragment splits document text into small semantic units for
// embedding and risk scoring.
package fragment

import (
	"strings"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/sentences"
)

// DefaultWindowSize is the number of sentences grouped per fragment.
const DefaultWindowSize = 3

const (
	// minLineLength drops layout noise during pre-cleaning.
	minLineLength = 50
	// minCleanedLength is the minimum cleaned text worth fragmenting.
	minCleanedLength = 50
	// minSentenceLength drops semantic noise from segmentation.
	minSentenceLength = 20
	// minWindowLength drops degenerate windows.
	minWindowLength = 30
	// fallbackChunkSize is the fixed partition size when sentence
	// windowing produced nothing.
	fallbackChunkSize = 1000
)

// Strategies reported alongside the produced pieces.
const (
	StrategySentenceWindow = "sentence_window"
	StrategyFixedChunk     = "fixed_chunk"
)

// Piece is one produced fragment. Sequence is 1-based and contiguous.
type Piece struct {
	Sequence int
	Text     string
}

// Split fragments text into sentence windows of windowSize sentences,
// falling back to fixed-size character chunks when segmentation yields
// nothing usable. The returned strategy names which path produced the
// pieces. Output is deterministic for a given input.
func Split(text string, windowSize int) ([]Piece, string) {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}

	cleaned := clean(text)
	if utf8.RuneCountInString(cleaned) < minCleanedLength {
		return nil, ""
	}

	if pieces := sentenceWindows(cleaned, windowSize); len(pieces) > 0 {
		return pieces, StrategySentenceWindow
	}
	return fixedChunks(cleaned), StrategyFixedChunk
}

// clean drops short lines (navigation crumbs, captions, layout noise) and
// joins the remainder into one line.
func clean(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) > minLineLength {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, " ")
}

// sentenceWindows groups sentences into consecutive windows. A text with
// windowSize sentences or fewer becomes a single whole-text piece.
func sentenceWindows(cleaned string, windowSize int) []Piece {
	var sents []string
	iter := sentences.FromString(cleaned)
	for iter.Next() {
		sent := strings.TrimSpace(iter.Value())
		if utf8.RuneCountInString(sent) > minSentenceLength {
			sents = append(sents, sent)
		}
	}
	if len(sents) == 0 {
		return nil
	}

	if len(sents) <= windowSize {
		return []Piece{{Sequence: 1, Text: cleaned}}
	}

	var pieces []Piece
	sequence := 1
	for i := 0; i < len(sents); i += windowSize {
		end := i + windowSize
		if end > len(sents) {
			end = len(sents)
		}
		window := strings.Join(sents[i:end], " ")
		if utf8.RuneCountInString(window) > minWindowLength {
			pieces = append(pieces, Piece{Sequence: sequence, Text: window})
			sequence++
		}
	}
	return pieces
}

// fixedChunks partitions the cleaned text into fallbackChunkSize-rune
// blocks.
func fixedChunks(cleaned string) []Piece {
	runes := []rune(cleaned)

	var pieces []Piece
	sequence := 1
	for i := 0; i < len(runes); i += fallbackChunkSize {
		end := i + fallbackChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		pieces = append(pieces, Piece{Sequence: sequence, Text: string(runes[i:end])})
		sequence++
	}
	return pieces
}
