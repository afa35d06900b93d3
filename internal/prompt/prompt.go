// Package prompt assembles retrieved handbook context and a student query
// into the instruction prompt fed to the generator.
//
// Both functions are pure: deterministic, no side effects, no external calls.
// The template's structure (context block, query block, instruction block,
// refusal phrase) is a contract the generator depends on; tests pin it
// verbatim.
package prompt

import (
	"fmt"
	"strings"

	"github.com/minervahq/minerva/internal/vector"
)

// Refusal is the canned answer the generator is instructed to give when the
// requested information is absent from the retrieved context.
const Refusal = "This information is not available in the university handbook."

// FormatContext renders retrieved matches into the context block: each item
// labeled with its rank and similarity score, blank-line separated.
func FormatContext(matches []vector.Match) string {
	parts := make([]string, 0, len(matches))
	for i, m := range matches {
		parts = append(parts, fmt.Sprintf("Context %d (Score: %.2f): %s", i+1, m.Score, m.Text))
	}
	return strings.Join(parts, "\n\n")
}

// Build wraps the formatted context and the student's verbatim query in the
// fixed instruction template.
func Build(context, userMessage string) string {
	var b strings.Builder

	b.WriteString("University Policy PDF Handbook context:\n")
	b.WriteString(context)
	b.WriteString("\n\n")

	b.WriteString("Student Query:\n")
	b.WriteString(userMessage)
	b.WriteString("\n\n")

	b.WriteString("University AI Assistant Instructions:\n")
	b.WriteString("1. You are an AI assistant for university students, helping with administrative tasks and policies.\n")
	b.WriteString("2. Your ONLY knowledge source is the provided university policy handbook.\n")
	b.WriteString("3. For administrative requests, identify and collect ALL required information:\n")
	b.WriteString("   - Recommendation Letters: student name, course name, professor name\n")
	b.WriteString("   - Make-up Exams: student name, course name, valid reason\n")
	b.WriteString("4. Support these 3 query types:\n")
	b.WriteString("   a) General questions (policies, rules)\n")
	b.WriteString("   b) Administrative requests (recommendation letters, make-up exams)\n")
	b.WriteString("   c) Project/Exam information (courses, project, exam information)\n")
	b.WriteString("5. Be precise and concise. If information is missing from the handbook, say '" + Refusal + "'\n")
	b.WriteString("6. Format lists/requirements clearly when applicable.\n")
	b.WriteString("7. For procedures, provide exact steps from the handbook.\n\n")

	b.WriteString("<|UNIVERSITY_ASSISTANT|>\n")
	b.WriteString("Response:\n")

	return b.String()
}
