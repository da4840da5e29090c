package oracle

import (
	"errors"
	"testing"
)

func TestExtractObject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "bare object",
			text: `{"action": "decide"}`,
			want: `{"action": "decide"}`,
		},
		{
			name: "code fence",
			text: "```json\n{\"action\": \"decide\"}\n```",
			want: `{"action": "decide"}`,
		},
		{
			name: "surrounding prose",
			text: `Sure! Here is the decision: {"action": "follow_link", "url": "https://x.example.com/a"} Hope that helps.`,
			want: `{"action": "follow_link", "url": "https://x.example.com/a"}`,
		},
		{
			name: "braces inside strings",
			text: `{"summary": "uses {curly} braces and a \" quote", "is_relevant": true}`,
			want: `{"summary": "uses {curly} braces and a \" quote", "is_relevant": true}`,
		},
		{
			name: "nested objects",
			text: `{"outer": {"inner": 1}}`,
			want: `{"outer": {"inner": 1}}`,
		},
		{
			name: "skips invalid candidate and finds a later object",
			text: `{not json} text {"ok": true}`,
			want: `{"ok": true}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ExtractObject(tt.text)
			if err != nil {
				t.Fatalf("ExtractObject() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("ExtractObject() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExtractObjectErrors(t *testing.T) {
	t.Parallel()

	for _, text := range []string{
		"",
		"no object here",
		"{never closes",
		"{\"broken\": }",
	} {
		if _, err := ExtractObject(text); !errors.Is(err, ErrNoJSONObject) {
			t.Errorf("ExtractObject(%q) error = %v, want ErrNoJSONObject", text, err)
		}
	}
}
