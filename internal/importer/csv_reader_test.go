package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadRecords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{
			name:  "plain rows",
			input: "a,b,c\nd,e,f\n",
			want:  [][]string{{"a", "b", "c"}, {"d", "e", "f"}},
		},
		{
			name:  "quoted field with comma",
			input: `1,"Hello, world",x` + "\n",
			want:  [][]string{{"1", "Hello, world", "x"}},
		},
		{
			name:  "quoted field with newline",
			input: "1,\"line one\nline two\",x\n",
			want:  [][]string{{"1", "line one\nline two", "x"}},
		},
		{
			name:  "escaped quotes",
			input: `1,"say ""hi""",x` + "\n",
			want:  [][]string{{"1", `say "hi"`, "x"}},
		},
		{
			name:  "crlf line endings",
			input: "a,b\r\nc,d\r\n",
			want:  [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:  "crlf inside quotes becomes lf",
			input: "1,\"x\r\ny\"\n",
			want:  [][]string{{"1", "x\ny"}},
		},
		{
			name:  "missing trailing newline",
			input: "a,b\nc,d",
			want:  [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:  "ragged rows are kept",
			input: "a,b,c\nd\ne,f\n",
			want:  [][]string{{"a", "b", "c"}, {"d"}, {"e", "f"}},
		},
		{
			name:  "unterminated quote runs to end of input",
			input: "a,\"b,c\nd",
			want:  [][]string{{"a", "b,c\nd"}},
		},
		{
			name:  "empty fields",
			input: "a,,c\n,,\n",
			want:  [][]string{{"a", "", "c"}, {"", "", ""}},
		},
		{
			name:  "json object in quoted cell",
			input: `1,"{""A"": ""yes"", ""B"": ""no""}",A` + "\n",
			want:  [][]string{{"1", `{"A": "yes", "B": "no"}`, "A"}},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, readRecords(tt.input))
		})
	}
}
