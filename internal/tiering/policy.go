package tiering

// Tier selects where and how completely a media object is persisted.
type Tier int

const (
	// TierFull stores payload and metadata in the durable tier.
	TierFull Tier = iota
	// TierMetadataOnly stores metadata in the volatile tier with no payload.
	TierMetadataOnly
)

func (t Tier) String() string {
	switch t {
	case TierFull:
		return "full"
	case TierMetadataOnly:
		return "metadata-only"
	default:
		return "unknown"
	}
}

// Policy decides the tier for a media object by size. It is pure and holds
// a single fixed threshold taken from configuration.
type Policy struct {
	fullPayloadMax int64
}

// NewPolicy creates a policy with the given payload size threshold.
func NewPolicy(fullPayloadMaxBytes int64) Policy {
	return Policy{fullPayloadMax: fullPayloadMaxBytes}
}

// Choose returns the tier for an object of the given size. The boundary is
// inclusive on the full side: an object exactly at the threshold keeps its
// payload.
func (p Policy) Choose(sizeBytes int64) Tier {
	if sizeBytes <= p.fullPayloadMax {
		return TierFull
	}
	return TierMetadataOnly
}

// Threshold returns the configured payload size limit.
func (p Policy) Threshold() int64 {
	return p.fullPayloadMax
}
