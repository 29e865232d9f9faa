package protocol

// ValueKind identifies the primitive wire type of one descriptor item.
// The numeric values match the value-type identifiers in spec.md
// section 6 exactly so a descriptor's Items can be serialized straight
// onto the wire when a typed accessor layer needs to describe itself.
type ValueKind byte

const (
	KindReserved ValueKind = 0
	KindU8       ValueKind = 1
	KindU16      ValueKind = 2
	KindU32      ValueKind = 3
	KindU64      ValueKind = 4
	KindR16      ValueKind = 5
	KindR32      ValueKind = 6
	KindR64      ValueKind = 7
	KindString8  ValueKind = 8
)

// FixedSize returns the on-wire size of a fixed-width kind, or 0 for
// KindString8 whose size is data-dependent.
func (k ValueKind) FixedSize() int {
	switch k {
	case KindU8:
		return 1
	case KindU16, KindR16:
		return 2
	case KindU32, KindR32:
		return 4
	case KindU64, KindR64:
		return 8
	default:
		return 0
	}
}

// NumericKinds lists the seven numeric value kinds used to build the
// tag-set / layer-set opcode families (spec.md section 6: "4 arities x 7
// numeric kinds"). Order is fixed so opcode numbering is stable.
var NumericKinds = [7]ValueKind{
	KindU8, KindU16, KindU32, KindU64, KindR16, KindR32, KindR64,
}
