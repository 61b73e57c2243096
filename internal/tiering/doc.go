// Package tiering decides whether a media object is persisted with its
// full payload or metadata-only, based on a fixed size threshold.
package tiering
