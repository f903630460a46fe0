package fixcodec

import (
	"math"

	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"
)

// layoutCache memoizes layouts by descriptor identity. Recomputing a layout
// yields the same result, so the cache only saves work.
var layoutCache = xsync.NewMap[Type, *Layout]()

var scalarLayouts [scalarCount]*Layout

func init() {
	for i := 1; i < scalarCount; i++ {
		s := Scalar(i)
		scalarLayouts[i] = &Layout{Type: s, Size: s.Size()}
	}
}

// Layout is the computed byte layout of a descriptor.
// Layouts are shared between callers and must be treated as read-only.
type Layout struct {
	Type Type
	// Size is the total encoded width in bytes.
	Size int

	// Offsets holds the start of every struct field, in declaration order.
	Offsets []int
	// Sizes holds the width of every struct field.
	Sizes []int

	// Stride is the element width of an array.
	Stride int

	// TagSize is the width of an enum tag.
	TagSize int
	// PayloadSize is the width of the payload region shared by all variants.
	PayloadSize int
	// Tags holds the derived tag of every variant, in declaration order.
	Tags []uint64
	// PayloadSizes holds the payload width of every variant, 0 for unit variants.
	PayloadSizes []int
}

// FieldRange returns the byte range [start, end) owned by struct field i.
func (l *Layout) FieldRange(i int) (start, end int) {
	return l.Offsets[i], l.Offsets[i] + l.Sizes[i]
}

// ElemRange returns the byte range [start, end) owned by array element i.
func (l *Layout) ElemRange(i int) (start, end int) {
	return i * l.Stride, (i + 1) * l.Stride
}

// PayloadRange returns the byte range of the shared enum payload region.
func (l *Layout) PayloadRange() (start, end int) {
	return l.TagSize, l.TagSize + l.PayloadSize
}

// TagOf returns the derived tag of the named variant.
func (l *Layout) TagOf(name string) (uint64, bool) {
	e, ok := l.Type.(*Enum)
	if !ok {
		return 0, false
	}
	if i := e.VariantIndex(name); i >= 0 {
		return l.Tags[i], true
	}
	return 0, false
}

// VariantIndex returns the index of the first variant, in declaration
// order, whose tag equals tag, or -1.
func (l *Layout) VariantIndex(tag uint64) int {
	for i, t := range l.Tags {
		if t == tag {
			return i
		}
	}
	return -1
}

// LayoutOf returns the layout of t, computing and memoizing it on first use.
func LayoutOf(t Type) (*Layout, error) {
	return layoutOf(t, nil, nil)
}

// SizeOf returns the encoded width of t in bytes.
func SizeOf(t Type) (int, error) {
	l, err := LayoutOf(t)
	if err != nil {
		return 0, err
	}
	return l.Size, nil
}

// ComputeStructLayout computes the layout of an anonymous struct made of fields.
// The result is not memoized; nested types are.
func ComputeStructLayout(fields []Field) (*Layout, error) {
	s := &Struct{Fields: fields}
	return structLayout(s, nil, map[Type]struct{}{s: {}})
}

// ComputeEnumLayout computes the layout of an anonymous enum.
// The result is not memoized; payload types are.
func ComputeEnumLayout(repr Scalar, variants []Variant) (*Layout, error) {
	e := &Enum{Repr: repr, Variants: variants}
	return enumLayout(e, nil, map[Type]struct{}{e: {}})
}

// ResetLayoutCache drops every memoized layout.
func ResetLayoutCache() {
	layoutCache.Clear()
}

// CachedLayouts returns the number of memoized layouts.
func CachedLayouts() int {
	return layoutCache.Size()
}

func layoutOf(t Type, path []string, visiting map[Type]struct{}) (*Layout, error) {
	switch t := t.(type) {
	case nil:
		return nil, malformed(path, nil, "missing type")
	case Scalar:
		if !t.Valid() {
			return nil, malformed(path, t, "invalid scalar")
		}
		return scalarLayouts[t], nil
	case *Struct:
		if t == nil {
			return nil, malformed(path, nil, "nil struct descriptor")
		}
	case *Enum:
		if t == nil {
			return nil, malformed(path, nil, "nil enum descriptor")
		}
	case *Array:
		if t == nil {
			return nil, malformed(path, nil, "nil array descriptor")
		}
	default:
		return nil, malformed(path, t, "unsupported descriptor %T", t)
	}

	if l, ok := layoutCache.Load(t); ok {
		return l, nil
	}

	if _, ok := visiting[t]; ok {
		return nil, malformed(path, t, "recursive type has no fixed size")
	}
	if visiting == nil {
		visiting = make(map[Type]struct{})
	}
	visiting[t] = struct{}{}
	defer delete(visiting, t)

	var (
		l   *Layout
		err error
	)
	switch t := t.(type) {
	case *Struct:
		l, err = structLayout(t, path, visiting)
	case *Enum:
		l, err = enumLayout(t, path, visiting)
	case *Array:
		l, err = arrayLayout(t, path, visiting)
	}
	if err != nil {
		return nil, err
	}

	l, _ = layoutCache.LoadOrStore(t, l)
	Logger().Debug("layout computed", zap.Stringer("type", t), zap.Int("size", l.Size))
	return l, nil
}

func structLayout(s *Struct, path []string, visiting map[Type]struct{}) (*Layout, error) {
	l := &Layout{
		Type:    s,
		Offsets: make([]int, len(s.Fields)),
		Sizes:   make([]int, len(s.Fields)),
	}
	seen := make(map[string]struct{}, len(s.Fields))

	for i, f := range s.Fields {
		if f.Name == "" {
			return nil, malformed(path, s, "field %d has no name", i)
		}
		if _, dup := seen[f.Name]; dup {
			return nil, malformed(path, s, "duplicate field %q", f.Name)
		}
		seen[f.Name] = struct{}{}

		fl, err := layoutOf(f.Type, pathWith(path, f.Name), visiting)
		if err != nil {
			return nil, err
		}
		if l.Size > math.MaxInt-fl.Size {
			return nil, malformed(path, s, "size overflows int")
		}
		l.Offsets[i] = l.Size
		l.Sizes[i] = fl.Size
		l.Size += fl.Size
	}
	return l, nil
}

// enumLayout derives variant tags: an explicit discriminant becomes the new
// anchor and resets the counter; an implicit tag is anchor + counter.
func enumLayout(e *Enum, path []string, visiting map[Type]struct{}) (*Layout, error) {
	if !e.Repr.IsUnsigned() {
		return nil, malformed(path, e, "representation %s is not an unsigned integer", e.Repr)
	}

	l := &Layout{
		Type:         e,
		TagSize:      e.Repr.Size(),
		Tags:         make([]uint64, len(e.Variants)),
		PayloadSizes: make([]int, len(e.Variants)),
	}
	maxTag := uint64(math.MaxUint64) >> (64 - e.Repr.Bits())

	names := make(map[string]struct{}, len(e.Variants))
	owners := make(map[uint64]string, len(e.Variants))
	var anchor, counter uint64

	for i, v := range e.Variants {
		if v.Name == "" {
			return nil, malformed(path, e, "variant %d has no name", i)
		}
		if _, dup := names[v.Name]; dup {
			return nil, malformed(path, e, "duplicate variant %q", v.Name)
		}
		names[v.Name] = struct{}{}

		var tag uint64
		if v.Discriminant != nil {
			tag = *v.Discriminant
			anchor, counter = tag, 0
		} else {
			if counter > math.MaxUint64-anchor {
				return nil, malformed(path, e, "tag of variant %q overflows u64", v.Name)
			}
			tag = anchor + counter
		}
		counter++

		if tag > maxTag {
			return nil, malformed(path, e, "tag 0x%x of variant %q overflows %s", tag, v.Name, e.Repr)
		}
		if prev, dup := owners[tag]; dup {
			return nil, malformed(path, e, "variant %q repeats tag 0x%x of variant %q", v.Name, tag, prev)
		}
		owners[tag] = v.Name
		l.Tags[i] = tag

		if v.Payload == nil {
			if v.Field != "" {
				return nil, malformed(path, e, "variant %q names field %q without a payload type", v.Name, v.Field)
			}
			continue
		}
		pl, err := layoutOf(v.Payload, pathWith(path, v.Name), visiting)
		if err != nil {
			return nil, err
		}
		l.PayloadSizes[i] = pl.Size
		l.PayloadSize = max(l.PayloadSize, pl.Size)
	}

	l.Size = l.TagSize + l.PayloadSize
	return l, nil
}

func arrayLayout(a *Array, path []string, visiting map[Type]struct{}) (*Layout, error) {
	if a.Len < 0 {
		return nil, malformed(path, a, "negative length %d", a.Len)
	}
	el, err := layoutOf(a.Elem, pathWith(path, "[]"), visiting)
	if err != nil {
		return nil, err
	}
	if el.Size > 0 && a.Len > math.MaxInt/el.Size {
		return nil, malformed(path, a, "size overflows int")
	}
	return &Layout{Type: a, Size: a.Len * el.Size, Stride: el.Size}, nil
}
