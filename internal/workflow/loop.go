package workflow

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

var exitTokens = map[string]struct{}{
	"quit": {},
	"exit": {},
	"종료":   {},
}

// RunInteractive reads questions line by line and answers them until a
// termination token, EOF or context cancellation. A failed question is
// reported inline and the loop continues; it never brings the session
// down.
func (w *Workflow) RunInteractive(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "질문을 입력하세요. 'quit', 'exit', 또는 '종료'를 입력하면 종료됩니다.")

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		if ctx.Err() != nil {
			fmt.Fprintln(out, "\nQ&A 세션을 종료합니다.")
			return nil
		}
		fmt.Fprint(out, "\n질문: ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if _, ok := exitTokens[strings.ToLower(question)]; ok {
			fmt.Fprintln(out, "Q&A 세션을 종료합니다.")
			return nil
		}

		state, err := w.Run(ctx, question)
		if err != nil {
			w.log.Warn("question failed", zap.String("question", question), zap.Error(err))
			fmt.Fprintf(out, "오류가 발생했습니다: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "\n답변:\n%s\n", state.Answer)
		fmt.Fprintf(out, "\n참조된 문서 수: %d개\n", len(state.Documents))
	}
	return scanner.Err()
}
