package models

// VerseSearchRequest is the request for verse retrieval
type VerseSearchRequest struct {
	Text        string          `json:"text" validate:"required"`
	Language    string          `json:"language"`
	Translation string          `json:"translation"`
	Version     string          `json:"bible_version"`
	Analysis    *AnalysisResult `json:"analysis"`

	IncludeAnalysis bool `json:"include_analysis"`
}

// VerseSearchResponse is the response for verse retrieval
type VerseSearchResponse struct {
	Verse    VerseResult     `json:"verse"`
	Analysis *AnalysisResult `json:"analysis,omitempty"`
}
