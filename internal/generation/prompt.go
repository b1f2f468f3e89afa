package generation

import (
	"fmt"
	"strings"

	"mmrag/internal/domain"
)

const answerTemplate = `다음 문서들을 참고하여 질문에 답변해주세요.

문서들:
%s

질문: %s

답변은 한국어로 작성하고, 문서의 내용을 바탕으로 정확하고 자세하게 답변해주세요.
답변:`

// noContextNotice replaces the context when retrieval found nothing, so
// the model states explicitly that no information was found instead of
// answering from thin air.
const noContextNotice = "(검색된 문서가 없습니다. 문서에서 관련 정보를 찾을 수 없다고 답변해주세요.)"

// BuildPrompt assembles the answer prompt from the retrieved documents in
// rank order.
func BuildPrompt(docs []domain.RetrievedDocument, question string) string {
	context := noContextNotice
	if len(docs) > 0 {
		parts := make([]string, 0, len(docs))
		for _, d := range docs {
			parts = append(parts, d.Text)
		}
		context = strings.Join(parts, "\n\n")
	}
	return fmt.Sprintf(answerTemplate, context, question)
}
