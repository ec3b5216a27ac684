package storage

// MismatchPolicy selects how an endpoint class surfaces an ownership
// mismatch: fold it into "not found" (the default, hiding the resource's
// existence) or answer "forbidden" (admitting the ID exists). The policy
// is per-endpoint-class deployment configuration, never a per-request
// decision.
type MismatchPolicy string

const (
	MismatchNotFound  MismatchPolicy = "not_found"
	MismatchForbidden MismatchPolicy = "forbidden"
)

// Valid reports whether the policy is a known value.
func (p MismatchPolicy) Valid() bool {
	return p == MismatchNotFound || p == MismatchForbidden
}
