package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const DefaultMaxChars = 1500

// SentenceChunker splits text into length-bounded chunks along sentence
// boundaries. Lengths are counted in runes, not bytes, so multi-byte
// scripts are bounded the same way as Latin text.
type SentenceChunker struct {
	maxChars int
	splitter *regexp.Regexp
}

func NewSentenceChunker(maxChars int) *SentenceChunker {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &SentenceChunker{
		maxChars: maxChars,
		splitter: regexp.MustCompile(`[.!?。！？]`),
	}
}

// MaxChars returns the configured chunk size bound.
func (c *SentenceChunker) MaxChars() int { return c.maxChars }

// Chunk splits text into at least one chunk. Text within the bound is
// returned unmodified as a single chunk. Longer text is split on
// sentence-terminal punctuation and sentences are accumulated greedily
// until the bound would be reached. A text with no sentence boundaries is
// returned whole even when it exceeds the bound; content is never dropped.
func (c *SentenceChunker) Chunk(text string) []string {
	if utf8.RuneCountInString(text) <= c.maxChars {
		return []string{text}
	}

	sentences := c.splitter.Split(text, -1)

	var chunks []string
	var buf strings.Builder
	bufLen := 0
	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		n := utf8.RuneCountInString(sentence)
		if bufLen > 0 && bufLen+n >= c.maxChars {
			chunks = append(chunks, strings.TrimSpace(buf.String()))
			buf.Reset()
			bufLen = 0
		}
		buf.WriteString(sentence)
		buf.WriteString(". ")
		bufLen += n + 2
	}
	if bufLen > 0 {
		chunks = append(chunks, strings.TrimSpace(buf.String()))
	}
	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}
