package style

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{"fenced json", "here you go: ```json\n{\"a\":1}\n```", `{"a":1}`, true},
		{"fenced untagged", "```\n{\"a\":2}\n```", `{"a":2}`, true},
		{"fenced upper-case tag", "```JSON\n{\"a\":3}\n```\nenjoy", `{"a":3}`, true},
		{"prose wrapped", `blah {"a":1} blah`, `{"a":1}`, true},
		{"nested braces", `result: {"a":{"b":1}} done`, `{"a":{"b":1}}`, true},
		{"no braces", "  not json at all  ", "not json at all", true},
		{"close before open", "} then {", "} then {", true},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSON(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("ExtractJSON(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
