package device

import (
	"fmt"
	"strings"
)

// Query is a filter for selecting devices: a vendor:model:serial triple of
// case-sensitive substring filters. Empty fields match anything.
type Query struct {
	Vendor string
	Model  string
	Serial string
}

// AnyQuery matches every device.
func AnyQuery() Query {
	return Query{}
}

// ParseQuery parses a "vendor:model:serial" string. The empty string parses
// to AnyQuery.
func ParseQuery(value string) (Query, error) {
	if value == "" {
		return AnyQuery(), nil
	}
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return Query{}, &QueryParseError{
			Value:  value,
			Reason: fmt.Sprintf("expected 3 colon-separated components, found %d", len(parts)),
		}
	}
	return Query{Vendor: parts[0], Model: parts[1], Serial: parts[2]}, nil
}

func (q Query) String() string {
	return fmt.Sprintf("%s:%s:%s", q.Vendor, q.Model, q.Serial)
}

// Matches reports whether the identity satisfies every non-empty filter
// field as a case-sensitive substring.
func (q Query) Matches(id Identity) bool {
	return strings.Contains(id.Vendor, q.Vendor) &&
		strings.Contains(id.Model, q.Model) &&
		strings.Contains(id.Serial, q.Serial)
}

// Filter returns the devices matched by the query. The same filtering
// applies uniformly to normal-mode and bootloader-mode devices.
func Filter[D Identifiable](q Query, devices []D) []D {
	var matched []D
	for _, d := range devices {
		if q.Matches(d.DeviceIdentity()) {
			matched = append(matched, d)
		}
	}
	return matched
}

// ResolveSingle requires the query to match exactly one device. Zero matches
// yield a NoMatchError; two or more yield an AmbiguousMatchError listing all
// candidates.
func ResolveSingle[D Identifiable](q Query, devices []D) (D, error) {
	matched := Filter(q, devices)
	switch len(matched) {
	case 1:
		return matched[0], nil
	case 0:
		var zero D
		return zero, &NoMatchError{Query: q}
	default:
		candidates := make([]Identity, len(matched))
		for i, d := range matched {
			candidates[i] = d.DeviceIdentity()
		}
		var zero D
		return zero, &AmbiguousMatchError{Query: q, Candidates: candidates}
	}
}
