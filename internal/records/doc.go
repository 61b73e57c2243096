// Package records defines the persisted domain entities (Media, Transcript,
// HighlightSet) and the codecs that convert them to and from flat storage
// records. Codecs are pure functions; all I/O lives in the storage and
// store packages.
package records
