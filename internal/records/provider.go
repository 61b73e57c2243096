package records

// Handle is an opaque playable reference produced by a Materializer. This
// layer never inspects its contents.
type Handle interface {
	URI() string
}

// Materializer turns restored media bytes into a playable handle. It is
// consumed by the layer above session restore; persistence itself never
// materializes anything.
type Materializer interface {
	Materialize(raw []byte) (Handle, error)
}
