package fp3

import (
	"errors"
	"testing"
)

func TestReaderReadI32LE(t *testing.T) {
	r := newReader([]byte{0x0a, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff})
	v, err := r.readI32LE()
	if err != nil || v != 10 {
		t.Fatalf("got (%d, %v), want (10, nil)", v, err)
	}
	v, err = r.readI32LE()
	if err != nil || v != -1 {
		t.Fatalf("got (%d, %v), want (-1, nil)", v, err)
	}
}

func TestReaderReadI32LEShort(t *testing.T) {
	r := newReader([]byte{0x01, 0x02})
	if _, err := r.readI32LE(); !errors.Is(err, errTruncated) {
		t.Fatalf("got %v, want errTruncated", err)
	}
}

func TestReaderReadCStr(t *testing.T) {
	r := newReader([]byte("hello\x00world\x00"))
	s, err := r.readCStr()
	if err != nil || s != "hello" {
		t.Fatalf("got (%q, %v), want (hello, nil)", s, err)
	}
	s, err = r.readCStr()
	if err != nil || s != "world" {
		t.Fatalf("got (%q, %v), want (world, nil)", s, err)
	}
}

func TestReaderReadCStrNoTerminator(t *testing.T) {
	r := newReader([]byte("nonullhere"))
	if _, err := r.readCStr(); !errors.Is(err, errTruncated) {
		t.Fatalf("got %v, want errTruncated", err)
	}
}

func TestReaderReadCStrBadUTF8(t *testing.T) {
	r := newReader([]byte{0xff, 0xfe, 0x00})
	if _, err := r.readCStr(); !errors.Is(err, errBadText) {
		t.Fatalf("got %v, want errBadText", err)
	}
}

func TestReaderReadOptionalCStrAbsent(t *testing.T) {
	r := newReader([]byte{0x00, 0x00, 0x00, 0x00, 0x2a})
	s, present, err := r.readOptionalCStr()
	if err != nil || present || s != "" {
		t.Fatalf("got (%q, %v, %v), want absent", s, present, err)
	}
	// Absence consumes exactly 4 bytes.
	if r.pos != 4 {
		t.Fatalf("pos = %d, want 4", r.pos)
	}
}

func TestReaderReadOptionalCStrPresentWithPad(t *testing.T) {
	r := newReader([]byte("user\x00\x00rest"))
	s, present, err := r.readOptionalCStr()
	if err != nil || !present || s != "user" {
		t.Fatalf("got (%q, %v, %v), want (user, true, nil)", s, present, err)
	}
	if r.pos != 6 {
		t.Fatalf("pos = %d, want 6 (string + terminator + pad)", r.pos)
	}
}

func TestReaderReadOptionalCStrPresentNoPad(t *testing.T) {
	r := newReader([]byte("user\x00X"))
	s, present, err := r.readOptionalCStr()
	if err != nil || !present || s != "user" {
		t.Fatalf("got (%q, %v, %v), want (user, true, nil)", s, present, err)
	}
	if r.pos != 5 {
		t.Fatalf("pos = %d, want 5 (no pad consumed since next byte is non-zero)", r.pos)
	}
}

func TestReaderAlignTo(t *testing.T) {
	r := newReader(make([]byte, 16))
	r.pos = 1
	if err := r.alignTo(4); err != nil {
		t.Fatalf("alignTo(4): %v", err)
	}
	if r.pos != 4 {
		t.Fatalf("pos = %d, want 4", r.pos)
	}

	r.pos = 4
	if err := r.alignTo(4); err != nil {
		t.Fatalf("alignTo(4) on aligned pos: %v", err)
	}
	if r.pos != 4 {
		t.Fatalf("pos = %d, want unchanged 4", r.pos)
	}
}

func TestReaderAlignToPastEnd(t *testing.T) {
	r := newReader(make([]byte, 2))
	r.pos = 1
	if _, err := r.readByte(); err != nil {
		t.Fatal(err)
	}
	if err := r.alignTo(8); !errors.Is(err, errTruncated) {
		t.Fatalf("got %v, want errTruncated", err)
	}
}

func TestReaderReadI32Array(t *testing.T) {
	buf := []byte{0x02, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00}
	r := newReader(buf)
	arr, err := r.readI32Array()
	if err != nil {
		t.Fatal(err)
	}
	if len(arr) != 2 || arr[0] != 1 || arr[1] != 2 {
		t.Fatalf("got %v, want [1 2]", arr)
	}
}
