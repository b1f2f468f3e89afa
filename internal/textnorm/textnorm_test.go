package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", " \t\n ", ""},
		{"collapses runs", "온실  환경   관리", "온실 환경 관리"},
		{"strips punctuation", "딸기, 농장! (온도)", "딸기 농장 온도"},
		{"mixed script", "Greenhouse 온도: 25.3°C", "Greenhouse 온도 25 3 C"},
		{"keeps underscores and digits", "page_3 img_1", "page_3 img_1"},
		{"newlines become single spaces", "첫 줄\n둘째 줄\r\n셋째 줄", "첫 줄 둘째 줄 셋째 줄"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}
