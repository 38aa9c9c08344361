package domain

// EncodedID is the opaque external-facing token for a database id.
type EncodedID string

// DecodedID is the internal database id recovered from an EncodedID.
type DecodedID int64

// IDCodec converts between internal ids and their external tokens.
// The schema set only depends on this capability, see internal/ids for the
// implementation.
type IDCodec interface {
	Encode(id int64) string
	Decode(token string) (int64, error)
}
