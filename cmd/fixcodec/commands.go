package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/oy3o/fixcodec"
	"github.com/oy3o/fixcodec/schema"
)

func (e *env) check(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: check takes no arguments", errUsage)
	}

	rows := make([][]string, 0, len(e.schema.Names()))
	for _, t := range e.schema.Types() {
		l := fixcodec.MustLayout(t)
		rows = append(rows, []string{t.String(), kindOf(t), strconv.Itoa(l.Size)})
	}
	fmt.Fprintln(e.stdout, e.table([]string{"TYPE", "KIND", "SIZE"}, rows))
	return nil
}

func (e *env) layout(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: layout takes no arguments", errUsage)
	}

	types := e.schema.Types()
	if e.cfg.Type != "" {
		t, err := e.target()
		if err != nil {
			return err
		}
		types = []fixcodec.Type{t}
	}

	for i, t := range types {
		if i > 0 {
			fmt.Fprintln(e.stdout)
		}
		l := fixcodec.MustLayout(t)
		fmt.Fprintln(e.stdout, e.title(fmt.Sprintf("%s  %s, %d bytes", t, kindOf(t), l.Size)))
		header, rows := layoutRows(t, l)
		if len(rows) > 0 {
			fmt.Fprintln(e.stdout, e.table(header, rows))
		}
	}
	return nil
}

// layoutRows lists the byte ranges a type is made of.
func layoutRows(t fixcodec.Type, l *fixcodec.Layout) ([]string, [][]string) {
	switch t := t.(type) {
	case *fixcodec.Struct:
		rows := make([][]string, len(t.Fields))
		for i, f := range t.Fields {
			start, end := l.FieldRange(i)
			rows[i] = []string{f.Name, byteRange(start, end), strconv.Itoa(end - start), f.Type.String()}
		}
		return []string{"FIELD", "BYTES", "SIZE", "TYPE"}, rows
	case *fixcodec.Enum:
		rows := [][]string{{"(tag)", "", byteRange(0, l.TagSize), t.Repr.String()}}
		for i, v := range t.Variants {
			payload, span := "", ""
			if v.HasPayload() {
				payload = v.Payload.String()
				if v.Field != "" {
					payload = v.Field + ": " + payload
				}
				span = byteRange(l.TagSize, l.TagSize+l.PayloadSizes[i])
			}
			rows = append(rows, []string{v.Name, fmt.Sprintf("0x%0*x", 2*l.TagSize, l.Tags[i]), span, payload})
		}
		return []string{"VARIANT", "TAG", "BYTES", "PAYLOAD"}, rows
	case *fixcodec.Array:
		if t.Len == 0 {
			return nil, nil
		}
		start, end := l.ElemRange(0)
		rows := [][]string{{"0", byteRange(start, end), t.Elem.String()}}
		if t.Len > 1 {
			start, end = l.ElemRange(t.Len - 1)
			rows = append(rows, []string{strconv.Itoa(t.Len - 1), byteRange(start, end), t.Elem.String()})
		}
		return []string{"ELEMENT", "BYTES", "TYPE"}, rows
	}
	return nil, nil
}

func byteRange(start, end int) string {
	return strconv.Itoa(start) + ".." + strconv.Itoa(end)
}

func kindOf(t fixcodec.Type) string {
	switch t.(type) {
	case *fixcodec.Struct:
		return "struct"
	case *fixcodec.Enum:
		return "enum"
	case *fixcodec.Array:
		return "array"
	}
	return "scalar"
}

// encode reads one YAML document per record and prints each encoding as a
// line of hex.
func (e *env) encode(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: encode takes no arguments", errUsage)
	}
	t, err := e.target()
	if err != nil {
		return err
	}

	var in io.Reader = e.stdin
	if e.value != "" {
		in = strings.NewReader(e.value)
	}

	var out bytes.Buffer
	w, err := fixcodec.NewWriter(&out, t)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(in)
	for {
		var loose any
		if err := dec.Decode(&loose); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("record %d: %w", w.Records(), err)
		}
		v, err := fixcodec.Convert(t, loose)
		if err != nil {
			return fmt.Errorf("record %d: %w", w.Records(), err)
		}
		if err := w.Write(v); err != nil {
			return fmt.Errorf("record %d: %w", w.Records(), err)
		}
	}
	if _, err := w.Result(); err != nil {
		return err
	}
	e.log.Debug("encoded", zap.Int64("records", w.Records()), zap.Int64("bytes", w.Count()))

	_, err = e.stdout.Write(hexLines(out.Bytes(), fixcodec.MustLayout(t).Size))
	return err
}

// hexLines renders data as one line of hex per size-byte record.
func hexLines(data []byte, size int) []byte {
	var b bytes.Buffer
	for len(data) >= size {
		b.WriteString(hex.EncodeToString(data[:size]))
		b.WriteByte('\n')
		data = data[size:]
	}
	return b.Bytes()
}

// decode reads hex from the arguments, or stdin when there are none, and
// prints every record as a YAML document.
func (e *env) decode(args []string) error {
	t, err := e.target()
	if err != nil {
		return err
	}

	text := strings.Join(args, "")
	if len(args) == 0 {
		raw, err := io.ReadAll(e.stdin)
		if err != nil {
			return err
		}
		text = string(raw)
	}
	data, err := parseHex(text)
	if err != nil {
		return err
	}

	r, err := fixcodec.NewReader(bytes.NewReader(data), t)
	if err != nil {
		return err
	}
	n := 0
	for v, err := range r.All() {
		if err != nil {
			return fmt.Errorf("record %d: %w", n, err)
		}
		out, err := schema.MarshalValue(t, v)
		if err != nil {
			return err
		}
		if n > 0 {
			fmt.Fprintln(e.stdout, "---")
		}
		n++
		if _, err := e.stdout.Write(out); err != nil {
			return err
		}
	}
	_, err = r.Result()
	return err
}

// parseHex accepts hex digits separated by any whitespace. Each
// whitespace-separated group may carry a 0x prefix.
func parseHex(s string) ([]byte, error) {
	var b strings.Builder
	for _, f := range strings.Fields(s) {
		b.WriteString(strings.TrimPrefix(strings.TrimPrefix(f, "0x"), "0X"))
	}
	data, err := hex.DecodeString(b.String())
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return data, nil
}
