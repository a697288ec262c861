package diaglog

import (
	"encoding/binary"
	"fmt"
	"unsafe"
)

// record is a decoded binary log entry, shared by the terminal and logfmt
// writers so the wire format is parsed in exactly one place.
type record struct {
	level   Level
	seq     uint64
	tsNanos int64
	msg     string
	fields  []byte // remaining bytes: field-count byte, then encoded fields
}

const headerSize = 22

func decodeRecord(b []byte) (record, error) {
	if len(b) < headerSize+1 {
		return record{}, fmt.Errorf("diaglog: record too short (%d bytes)", len(b))
	}
	if binary.LittleEndian.Uint32(b[0:4]) != MagicHeader {
		return record{}, fmt.Errorf("diaglog: bad magic header")
	}

	r := record{
		level:   Level(b[5]),
		seq:     binary.LittleEndian.Uint64(b[6:14]),
		tsNanos: int64(binary.LittleEndian.Uint64(b[14:22])),
	}

	pos := headerSize
	msgLen := int(b[pos])
	pos++
	if pos+msgLen > len(b) {
		return record{}, fmt.Errorf("diaglog: truncated message")
	}
	r.msg = string(b[pos : pos+msgLen])
	pos += msgLen
	r.fields = b[pos:]
	return r, nil
}

// fieldIter walks the fields encoded in record.fields, counting down the
// field-count byte so callers need not re-derive it.
type fieldIter struct {
	remaining int
	buf       []byte
}

func (r record) fieldIter() fieldIter {
	if len(r.fields) == 0 {
		return fieldIter{}
	}
	return fieldIter{remaining: int(r.fields[0]), buf: r.fields[1:]}
}

func (it *fieldIter) next() (key string, typ FieldType, valueText string, ok bool) {
	if it.remaining <= 0 || len(it.buf) == 0 {
		return "", 0, "", false
	}
	buf := it.buf

	keyLen := int(buf[0])
	buf = buf[1:]
	if keyLen > len(buf) {
		it.remaining = 0
		return "", 0, "", false
	}
	key = string(buf[:keyLen])
	buf = buf[keyLen:]

	if len(buf) == 0 {
		it.remaining = 0
		return "", 0, "", false
	}
	typ = FieldType(buf[0])
	buf = buf[1:]

	valueText, n := decodeFieldValue(buf, typ)
	buf = buf[n:]

	it.remaining--
	it.buf = buf
	return key, typ, valueText, true
}

// decodeFieldValue formats a field's value as text and returns how many
// bytes of buf it consumed.
func decodeFieldValue(buf []byte, typ FieldType) (string, int) {
	switch typ {
	case FieldTypeInt:
		if len(buf) < 8 {
			return "?", len(buf)
		}
		return fmt.Sprintf("%d", int64(binary.BigEndian.Uint64(buf))), 8

	case FieldTypeUint:
		if len(buf) < 8 {
			return "?", len(buf)
		}
		return fmt.Sprintf("%d", binary.BigEndian.Uint64(buf)), 8

	case FieldTypeBool:
		if len(buf) < 8 {
			return "?", len(buf)
		}
		if binary.BigEndian.Uint64(buf) != 0 {
			return "true", 8
		}
		return "false", 8

	case FieldTypeFloat32:
		if len(buf) < 4 {
			return "?", len(buf)
		}
		v := binary.BigEndian.Uint32(buf)
		f := *(*float32)(unsafe.Pointer(&v))
		return fmt.Sprintf("%.3f", f), 4

	case FieldTypeFloat64:
		if len(buf) < 8 {
			return "?", len(buf)
		}
		v := binary.BigEndian.Uint64(buf)
		f := *(*float64)(unsafe.Pointer(&v))
		return fmt.Sprintf("%.3f", f), 8

	case FieldTypeString:
		if len(buf) < 2 {
			return "?", len(buf)
		}
		strLen := int(binary.BigEndian.Uint16(buf))
		if len(buf) < 2+strLen {
			return "?", len(buf)
		}
		return string(buf[2 : 2+strLen]), 2 + strLen

	case FieldTypeBytes:
		if len(buf) < 2 {
			return "?", len(buf)
		}
		dataLen := int(binary.BigEndian.Uint16(buf))
		if len(buf) < 2+dataLen {
			return "?", len(buf)
		}
		return fmt.Sprintf("%x", buf[2:2+dataLen]), 2 + dataLen

	default:
		return "?", 0
	}
}
