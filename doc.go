// Package transmitter holds the pieces shared by the Remote ID broadcast
// daemon: the transport selection, the per-category message counters, the
// shared identification snapshot and the logging setup.
package transmitter
