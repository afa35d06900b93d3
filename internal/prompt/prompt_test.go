package prompt

import (
	"strings"
	"testing"

	"github.com/minervahq/minerva/internal/vector"
)

func TestFormatContext(t *testing.T) {
	t.Parallel()

	matches := []vector.Match{
		{ID: 7, Score: 0.913, Text: "Refunds are issued within 30 days."},
		{ID: 2, Score: 0.85, Text: "Withdrawal requires form W-2."},
		{ID: 9, Score: 0.7, Text: "Contact the registrar for appeals."},
	}

	got := FormatContext(matches)
	want := "Context 1 (Score: 0.91): Refunds are issued within 30 days.\n\n" +
		"Context 2 (Score: 0.85): Withdrawal requires form W-2.\n\n" +
		"Context 3 (Score: 0.70): Contact the registrar for appeals."

	if got != want {
		t.Errorf("FormatContext mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatContext_Empty(t *testing.T) {
	t.Parallel()

	if got := FormatContext(nil); got != "" {
		t.Errorf("FormatContext(nil) = %q, want empty string", got)
	}
}

func TestBuild_Structure(t *testing.T) {
	t.Parallel()

	contextBlock := "Context 1 (Score: 0.91): Recommendation letters require form RD-42."
	query := "What do I need to request a recommendation letter?"

	got := Build(contextBlock, query)

	// Section order is part of the contract.
	sections := []string{
		"University Policy PDF Handbook context:\n" + contextBlock,
		"Student Query:\n" + query,
		"University AI Assistant Instructions:",
		Refusal,
		"<|UNIVERSITY_ASSISTANT|>\nResponse:\n",
	}

	prev := -1
	for _, section := range sections {
		idx := strings.Index(got, section)
		if idx < 0 {
			t.Fatalf("prompt missing section %q:\n%s", section, got)
		}
		if idx <= prev {
			t.Fatalf("section %q out of order in prompt:\n%s", section, got)
		}
		prev = idx
	}
}

func TestBuild_Deterministic(t *testing.T) {
	t.Parallel()

	a := Build("ctx", "query")
	b := Build("ctx", "query")
	if a != b {
		t.Error("Build is not deterministic for identical inputs")
	}
}

func TestBuild_EnumeratesQueryTypes(t *testing.T) {
	t.Parallel()

	got := Build("ctx", "q")

	for _, category := range []string{
		"a) General questions",
		"b) Administrative requests",
		"c) Project/Exam information",
	} {
		if !strings.Contains(got, category) {
			t.Errorf("prompt missing query category %q", category)
		}
	}
}
