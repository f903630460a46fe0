package fixcodec

// Descriptors shared by the tests. Foo, Eenie, Meenie and Bar mirror the
// canonical fixtures of the format: Bar encodes to
// 00 10 | 00 01 00 | 00 df | 11 01 2c | 00 00 00.
var (
	fooType = NewStruct("Foo",
		Field{"a", Bool},
		Field{"b", U16},
	)

	eenieType = NewEnum("Eenie", U16,
		Unit("A").At(0xde),
		Unit("B"),
		Unit("C"),
		Unit("D").At(0xff),
		Unit("E"),
	)

	meenieType = NewEnum("Meenie", U8,
		Unit("A"),
		Named("B", "val", Bool).At(0x10),
		Tuple("C", U16),
	)

	barType = NewStruct("Bar",
		Field{"something", U16},
		Field{"foo", fooType},
		Field{"other", eenieType},
		Field{"another", meenieType},
		Field{"lastly", meenieType},
	)
)

var barBytes = []byte{0x0, 0x10, 0x0, 0x1, 0x0, 0x00, 0xdf, 0x11, 0x1, 0x2c, 0x0, 0x0, 0x0}

func barValue() map[string]any {
	return map[string]any{
		"something": uint16(0x10),
		"foo":       map[string]any{"a": false, "b": uint16(0x100)},
		"other":     Of("B"),
		"another":   Of("C", uint16(300)),
		"lastly":    Of("A"),
	}
}
