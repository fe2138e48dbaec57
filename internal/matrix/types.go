package matrix

// Signed is a constraint for signed integer element types.
type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is a constraint for unsigned integer element types.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Integer is a constraint for all integer element types.
type Integer interface {
	Signed | Unsigned
}

// Float is a constraint for floating-point element types.
type Float interface {
	~float32 | ~float64
}

// Number is the element constraint for matrices: any type whose zero
// value is the additive identity and which supports + and *. Elements
// are passed by value across goroutines, never by shared reference.
type Number interface {
	Integer | Float
}
