package models

// MarkKind selects one of the per-identity engagement sets.
type MarkKind string

const (
	MarkLiked MarkKind = "liked"
	MarkSaved MarkKind = "saved"
)

// Valid reports whether k names a known engagement set.
func (k MarkKind) Valid() bool {
	return k == MarkLiked || k == MarkSaved
}
