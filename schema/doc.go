// Package schema loads fixed-width type descriptors from YAML or TOML
// documents and converts values between YAML and their canonical form.
//
// # Document Overview
//
// A schema declares named structs and enums. Type references are scalar
// names (bool, u8 ... u64, i8 ... i64, f32, f64), declared type names
// (forward references allowed) or fixed-size arrays written [N]T.
//
//	version: "1"
//	types:
//	  - name: Foo
//	    fields:
//	      - {name: a, type: bool}
//	      - {name: b, type: u16}
//	  - name: Meenie
//	    repr: u8
//	    variants:
//	      - A                      # unit variant, tag 0
//	      - name: B
//	        tag: 0x10              # explicit tag, later variants continue from it
//	        fields: [{name: val, type: bool}]
//	      - {name: C, payload: u16}
//
// A variant carries at most one payload, either unnamed (payload) or as a
// single named field (fields).
package schema
