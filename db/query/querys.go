package query

import sq "github.com/Masterminds/squirrel"

type EndpointQuery struct {
	Query

	// Visible excludes implicit rows that hold no webhooks
	Visible bool
}

func (q *EndpointQuery) WhereMap() map[string]interface{} {
	return map[string]interface{}{}
}

func (q *EndpointQuery) Conditions() []sq.Sqlizer {
	if !q.Visible {
		return nil
	}
	return []sq.Sqlizer{sq.Or{sq.Eq{"implicit": false}, sq.Gt{"webhook_count": 0}}}
}

type WebhookQuery struct {
	Query

	EndpointId *string
	EventType  *string
}

func (q *WebhookQuery) WhereMap() map[string]interface{} {
	maps := make(map[string]interface{})
	if q.EndpointId != nil {
		maps["endpoint_id"] = *q.EndpointId
	}
	if q.EventType != nil {
		maps["event_type"] = *q.EventType
	}
	return maps
}
