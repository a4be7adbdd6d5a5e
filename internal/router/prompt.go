package router

import (
	"fmt"
	"strings"
)

// BuildPrompt renders the classifier prompt for query.
func BuildPrompt(query string) string {
	names := make([]string, len(Tools))
	for i, t := range Tools {
		names[i] = fmt.Sprintf("'%s'", t)
	}
	var hints strings.Builder
	for i, t := range hintOrder {
		if i > 0 {
			hints.WriteByte('\n')
		}
		fmt.Fprintf(&hints, "- %s: %s", t, strings.Join(Keywords[t], ", "))
	}

	var b strings.Builder
	b.WriteString("You are a tool router for a CSV analyst bot. Select exactly one tool from this list:\n")
	fmt.Fprintf(&b, "[%s]\n\n", strings.Join(names, ", "))
	b.WriteString("Here's when to use each tool:\n")
	b.WriteString(hints.String())
	b.WriteString("\n\nConsider these priorities:\n")
	b.WriteString("1. Summary for general dataset information and statistics\n")
	b.WriteString("2. Line plots for trends and changes over time\n")
	b.WriteString("3. Bar plots for comparisons and categorical data\n")
	b.WriteString("4. Scatter plots for relationships between variables\n")
	b.WriteString("5. Histograms for distributions\n")
	b.WriteString("6. Pie charts for proportions\n")
	b.WriteString("7. Correlation matrix for multiple variable relationships\n\n")
	fmt.Fprintf(&b, "User Query: %q\n\n", query)
	b.WriteString("Respond with ONLY the tool name, nothing else.\nTool:\n")
	return b.String()
}
