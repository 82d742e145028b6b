// Package tlsroots provides TLS certificate management for SnapBrowse.
//
//   - roots.go: trust pools for clients (system roots plus custom CA files)
//   - keypair.go: a server key pair that reloads when its files change
//
// The server key pair is the only piece of runtime state that changes after
// startup; the snapshot root configuration does not.
package tlsroots
