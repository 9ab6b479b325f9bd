package gemini

import (
	"log/slog"

	"google.golang.org/genai"
)

// logGoogleSearchUsage reports whether the model actually used the Search
// tool for a grounded request. All metadata fields are optional; every
// access is nil-guarded.
func logGoogleSearchUsage(name string, meta *genai.GroundingMetadata) {
	used := false
	query := ""
	snippets := 0

	if meta != nil {
		snippets = len(meta.GroundingChunks)
		if len(meta.WebSearchQueries) > 0 {
			used = true
			query = meta.WebSearchQueries[0]
		}
		if meta.SearchEntryPoint != nil {
			used = true
			if query == "" {
				query = "[embedded in RenderedContent]"
			}
		}
		if snippets > 0 {
			used = true
		}
	}

	if used {
		slog.Info("Gemini: Google Search used",
			"intent", name,
			"snippets", snippets,
			"search_query", query)
	}
}
