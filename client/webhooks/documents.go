package webhooks

const webhookFragment = `
fragment webhook on Webhook {
  id
  endpointId
  eventType
  data
  headers
  createdAt
}
`

const GetWebhooksQuery = `
query getWebhooks($endpointId: ID!, $after: Int) {
  webhooks(endpointId: $endpointId, after: $after) {
    nodes {
      ...webhook
    }
    pageInfo {
      endCursor
      hasNextPage
    }
  }
}
` + webhookFragment

const WebhookCreatedSubscription = `
subscription webhookCreated($endpointId: ID!) {
  webhookCreated(endpointId: $endpointId) {
    webhook {
      ...webhook
    }
  }
}
` + webhookFragment
