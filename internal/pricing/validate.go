package pricing

import (
	"fmt"
	"strings"

	"github.com/guarzo/resalepricer/internal/model"
)

// maxKeywordsLength caps the search phrase length.
const maxKeywordsLength = 200

// ValidationError reports a request rejected before any source is queried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ValidateRequest returns a normalized copy of req with every field trimmed.
func ValidateRequest(req model.AnalysisRequest) (model.AnalysisRequest, error) {
	req.Keywords = strings.Join(strings.Fields(req.Keywords), " ")
	req.Category = strings.TrimSpace(req.Category)
	req.Condition = strings.TrimSpace(req.Condition)
	req.Brand = strings.TrimSpace(req.Brand)

	if req.Keywords == "" {
		return req, &ValidationError{Field: "keywords", Message: "must not be empty"}
	}
	if len(req.Keywords) > maxKeywordsLength {
		return req, &ValidationError{
			Field:   "keywords",
			Message: fmt.Sprintf("must be at most %d characters", maxKeywordsLength),
		}
	}
	return req, nil
}

// searchQuery builds the query sent to every listing source. A brand not
// already mentioned in the keywords is prefixed to them.
func searchQuery(req model.AnalysisRequest) model.SearchQuery {
	keywords := req.Keywords
	if req.Brand != "" && !strings.Contains(strings.ToLower(keywords), strings.ToLower(req.Brand)) {
		keywords = req.Brand + " " + keywords
	}
	return model.SearchQuery{Keywords: keywords, Condition: req.Condition}
}
