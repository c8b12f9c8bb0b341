package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/harrison/doctest/internal/models"
)

func TestMarkdownParser_Parse(t *testing.T) {
	source := fence(`# Math

Some text.

'''ts example
assertEqual(add(1, 2), 3);
'''

'''ts
notAnExample();
'''

## Multiply things

'''js doctest
assertEqual(2 * 3, 6);
'''

'''js example
assertEqual(2 * 4, 8); // => 8
'''
`)

	got := NewMarkdownParser().Parse("README.md", []byte(source))
	want := []models.DocExample{
		{OriginFile: "README.md", Line: 5, Name: "math", Code: "assertEqual(add(1, 2), 3);", Language: "ts"},
		{OriginFile: "README.md", Line: 15, Name: "multiply_things_example1", Code: "assertEqual(2 * 3, 6);", Language: "js"},
		{OriginFile: "README.md", Line: 19, Name: "multiply_things_example2", Code: "assertEqual(2 * 4, 8); // => 8", ExpectedOutput: "8", Language: "js"},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestMarkdownParser_NoHeading(t *testing.T) {
	source := fence("'''typescript example\nassert(1 === 1);\n'''\n")

	got := NewMarkdownParser().Parse("notes.md", []byte(source))
	if len(got) != 1 {
		t.Fatalf("expected 1 example, got %d", len(got))
	}
	if got[0].Name != "anonymous_1" {
		t.Errorf("expected anonymous_1, got %q", got[0].Name)
	}
	if got[0].Language != "ts" {
		t.Errorf("expected language ts, got %q", got[0].Language)
	}
}

func TestIsExampleFence(t *testing.T) {
	tests := []struct {
		info string
		want bool
	}{
		{"ts example", true},
		{"JavaScript doctest", true},
		{"ts", false},
		{"python example", false},
		{"", false},
		{"ts title=example", false},
	}
	for _, tt := range tests {
		if got := isExampleFence(tt.info); got != tt.want {
			t.Errorf("isExampleFence(%q) = %v, want %v", tt.info, got, tt.want)
		}
	}
}
