package transmitter

import "github.com/opendroneid/transmitter-linux/odid"

// Category selects one of the independent message counters.
type Category int

// Counter categories.
const (
	CategoryBasicID Category = iota
	CategoryLocation
	CategoryAuth
	CategorySelfID
	CategorySystem
	CategoryOperatorID
	CategoryPacked
	numCategories
)

var categoryName = [numCategories]string{
	"basic_id", "location", "auth", "self_id", "system", "operator_id", "packed",
}

func (c Category) String() string {
	if c < 0 || c >= numCategories {
		return "unknown"
	}
	return categoryName[c]
}

// CategoryOf maps an odid message type onto its counter.
func CategoryOf(msgType uint8) Category {
	switch msgType {
	case odid.MessageTypeBasicID:
		return CategoryBasicID
	case odid.MessageTypeLocation:
		return CategoryLocation
	case odid.MessageTypeAuth:
		return CategoryAuth
	case odid.MessageTypeSelfID:
		return CategorySelfID
	case odid.MessageTypeSystem:
		return CategorySystem
	case odid.MessageTypeOperatorID:
		return CategoryOperatorID
	}
	return CategoryPacked
}

// Counters holds the 8 bit message counters of one transmission session.
// It is owned by a single goroutine.
type Counters struct {
	c [numCategories]uint8
}

// Next returns the current value of cat and advances it, wrapping at 256.
func (c *Counters) Next(cat Category) uint8 {
	v := c.c[cat]
	c.c[cat]++
	return v
}

// Value returns the current value of cat.
func (c *Counters) Value(cat Category) uint8 { return c.c[cat] }
