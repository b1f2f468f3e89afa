package generation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"mmrag/internal/domain"
)

func TestBuildPrompt(t *testing.T) {
	docs := []domain.RetrievedDocument{
		{DocumentID: "manual", Text: "첫 번째 문서 내용", Score: 0.9},
		{DocumentID: "appendix", Text: "두 번째 문서 내용", Score: 0.7},
	}

	prompt := BuildPrompt(docs, "온도는 몇 도인가요?")

	assert.Contains(t, prompt, "온도는 몇 도인가요?")
	assert.Contains(t, prompt, "첫 번째 문서 내용\n\n두 번째 문서 내용")
	// Higher-ranked document comes first.
	assert.Less(t,
		strings.Index(prompt, "첫 번째 문서 내용"),
		strings.Index(prompt, "두 번째 문서 내용"))
}

func TestBuildPromptNoDocuments(t *testing.T) {
	prompt := BuildPrompt(nil, "질문입니다")

	assert.Contains(t, prompt, "질문입니다")
	assert.Contains(t, prompt, noContextNotice)
}
