// Package connection provides the API client for peermeet-cli.
//
// Client wraps the server's HTTP/JSON endpoints with typed methods and
// unwraps the response envelope. Watch upgrades to a WebSocket and
// streams membership updates for a group.
package connection
