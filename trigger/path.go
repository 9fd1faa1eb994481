package trigger

import "strings"

// WebhookPathPattern is the document path whose writes are observed
const WebhookPathPattern = "endpoints/{endpointId}/webhooks/{webhookId}"

// MatchPath matches a document path against pattern and returns the captured wildcards.
// A fully qualified Firestore name (projects/{p}/databases/{d}/documents/...) is accepted.
func MatchPath(pattern string, name string) (map[string]string, bool) {
	if _, rest, ok := strings.Cut(name, "/documents/"); ok {
		name = rest
	}
	name = strings.Trim(name, "/")

	patterns := strings.Split(pattern, "/")
	segments := strings.Split(name, "/")
	if len(patterns) != len(segments) {
		return nil, false
	}

	params := make(map[string]string)
	for i, p := range patterns {
		s := segments[i]
		if s == "" {
			return nil, false
		}
		if strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") {
			params[p[1:len(p)-1]] = s
			continue
		}
		if p != s {
			return nil, false
		}
	}
	return params, true
}
