// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"bytes"
	"encoding/hex"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/shelf/core"
)

const (
	// textSampleBytes caps how much of a file feeds excerpt and summary
	// extraction. Enough for the opening of any document.
	textSampleBytes = 8 * 1024

	excerptRunes     = 280
	summarySentences = 2
)

// hashFile computes the hex-encoded BLAKE2b fingerprint of a file's
// content, streaming so large files stay cheap.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h, err := blake2b.New(32, nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// extractText reads the leading sample of a file and reports whether it
// looks like text. Binary content (NUL bytes in the sample) is rejected.
func extractText(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	sample := make([]byte, textSampleBytes)
	n, err := io.ReadFull(f, sample)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", false
	}
	sample = sample[:n]
	if len(sample) == 0 || bytes.IndexByte(sample, 0) >= 0 {
		return "", false
	}
	return string(sample), true
}

// excerpt returns the leading slice of the text with whitespace collapsed.
func excerpt(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	runes := []rune(collapsed)
	if len(runes) <= excerptRunes {
		return collapsed
	}
	cut := string(runes[:excerptRunes])
	// Trim back to the last full word
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut
}

// summarize picks the sentences densest in the text's own frequent terms,
// returned in document order. Cheap and extractive; no model involved.
func summarize(text string) string {
	sentences := splitSentences(text)
	if len(sentences) <= summarySentences {
		return strings.Join(sentences, " ")
	}

	freq := core.TermFrequencies(text)
	type scored struct {
		index int
		score float64
	}
	ranked := make([]scored, 0, len(sentences))
	for i, sentence := range sentences {
		terms := core.Tokenize(sentence)
		if len(terms) == 0 {
			continue
		}
		var sum int
		for _, term := range terms {
			sum += freq[term]
		}
		// Normalize by length so long sentences don't win by default
		ranked = append(ranked, scored{i, float64(sum) / float64(len(terms))})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > summarySentences {
		ranked = ranked[:summarySentences]
	}
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].index < ranked[j].index
	})

	picked := make([]string, len(ranked))
	for i, s := range ranked {
		picked[i] = sentences[s.index]
	}
	return strings.Join(picked, " ")
}

// splitSentences breaks text on sentence punctuation and newlines,
// dropping fragments too short to mean anything.
func splitSentences(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})
	sentences := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if len(s) >= 12 {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// isHidden reports whether a file or directory name is dot-hidden.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
