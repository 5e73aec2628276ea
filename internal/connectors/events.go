package connectors

import "time"

// ConnectionState describes engine reachability as seen by the status poller.
type ConnectionState string

const (
	ConnectionStateUnknown      ConnectionState = "unknown"
	ConnectionStateConnected    ConnectionState = "connected"
	ConnectionStateDisconnected ConnectionState = "disconnected"
)

// ConnectionStatus is a bus event published whenever engine reachability changes.
type ConnectionStatus struct {
	State     ConnectionState
	Err       string
	Target    string
	Timestamp time.Time
}
