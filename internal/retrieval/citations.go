package retrieval

import "strconv"

// notAvailable is the sentinel used when a citation id does not resolve.
const notAvailable = "N/A"

// Citation is the resolved attribution for one citation id, captured at
// answer time. Document-grounded answers carry FileName/PageNumber;
// Wikipedia-grounded answers carry URL.
type Citation struct {
	ID         int    `json:"id"`
	FileName   string `json:"file_name,omitempty"`
	PageNumber string `json:"page_number,omitempty"`
	URL        string `json:"url,omitempty"`
}

// ResolveCitations maps citation ids to file/page attributions against
// the given result. Out-of-range ids resolve to a "not available" entry
// rather than failing the whole call.
func ResolveCitations(ids []int, res *Result) []Citation {
	citations := make([]Citation, 0, len(ids))
	for _, id := range ids {
		if res == nil || id < 0 || id >= len(res.Chunks) {
			citations = append(citations, Citation{
				ID:         id,
				FileName:   notAvailable,
				PageNumber: notAvailable,
			})
			continue
		}
		chunk := res.Chunks[id]
		citations = append(citations, Citation{
			ID:         id,
			FileName:   chunk.Source,
			PageNumber: strconv.Itoa(chunk.Page),
		})
	}
	return citations
}

// ResolveWikiCitations maps citation ids to article URLs against the
// given result, with the same sentinel policy as ResolveCitations.
func ResolveWikiCitations(ids []int, res *Result) []Citation {
	citations := make([]Citation, 0, len(ids))
	for _, id := range ids {
		if res == nil || id < 0 || id >= len(res.Chunks) {
			citations = append(citations, Citation{ID: id, URL: notAvailable})
			continue
		}
		citations = append(citations, Citation{ID: id, URL: res.Chunks[id].URL})
	}
	return citations
}
