// Package relay implements the connection registry and the broadcast hub.
//
// The Registry is the authoritative set of live viewer connections. The Hub
// owns the single most recent frame, fans new frames out to every registered
// viewer, delivers the cached frame to viewers at join time, and evicts
// connections whose sends fail. Publishes are serialized, so viewers observe
// frames in publish order.
package relay
