package domain

// SearchRequest is a free-text query over the public catalog. Style,
// Composition and Quality narrow the result; empty or "all" means any.
type SearchRequest struct {
	Query       string
	Style       string
	Composition string
	Quality     string
	Sort        string
	Limit       int
}

// SearchResult echoes the applied query and filters with the first Limit
// matches and the total match count.
type SearchResult struct {
	Items   []*Map            `json:"items"`
	Total   int               `json:"total"`
	Query   string            `json:"query"`
	Filters map[string]string `json:"filters"`
	Limit   int               `json:"limit"`
}
