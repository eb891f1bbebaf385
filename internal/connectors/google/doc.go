// Package google implements the Google-backed connectors and the OAuth
// client they share.
//
// The package contains:
//   - Client: the stateless OAuth and data-plane gateway (consent URL,
//     code exchange, token refresh, profile, GA4 and Search Console APIs)
//   - GA4Connector: Google Analytics 4 traffic metrics
//   - GSCConnector: Google Search Console search metrics
//
// Connectors convert provider failures into error payloads or empty
// results; callers never see raw API errors from a fetch.
package google
