package diaglog

import (
	"encoding/binary"
	"sync"
	"time"
	"unsafe"
)

// FieldType identifies the encoding of a Field's value.
type FieldType uint8

const (
	FieldTypeInt FieldType = iota
	FieldTypeUint
	FieldTypeFloat32
	FieldTypeFloat64
	FieldTypeString
	FieldTypeBool
	FieldTypeBytes
)

// Field is a typed key-value pair encoded without allocation.
type Field struct {
	Key  string
	Type FieldType
	num  uint64
	str  string
	ptr  unsafe.Pointer
}

func Int(key string, val int) Field     { return Field{Key: key, Type: FieldTypeInt, num: uint64(val)} }
func Int64(key string, val int64) Field { return Field{Key: key, Type: FieldTypeInt, num: uint64(val)} }
func Uint(key string, val uint) Field   { return Field{Key: key, Type: FieldTypeUint, num: uint64(val)} }
func Uint64(key string, val uint64) Field {
	return Field{Key: key, Type: FieldTypeUint, num: val}
}

func Float32(key string, val float32) Field {
	return Field{Key: key, Type: FieldTypeFloat32, num: uint64(*(*uint32)(unsafe.Pointer(&val)))}
}

func Float64(key string, val float64) Field {
	return Field{Key: key, Type: FieldTypeFloat64, num: *(*uint64)(unsafe.Pointer(&val))}
}

func String(key string, val string) Field { return Field{Key: key, Type: FieldTypeString, str: val} }

func Bool(key string, val bool) Field {
	n := uint64(0)
	if val {
		n = 1
	}
	return Field{Key: key, Type: FieldTypeBool, num: n}
}

// Bytes creates a bytes field. val must outlive the Field.
func Bytes(key string, val []byte) Field {
	if len(val) == 0 {
		return Field{Key: key, Type: FieldTypeBytes}
	}
	return Field{Key: key, Type: FieldTypeBytes, ptr: unsafe.Pointer(&val[0]), num: uint64(len(val))}
}

// Err creates a string field keyed "error" from an error, with the value
// "<nil>" if err is nil.
func Err(err error) Field {
	if err == nil {
		return String("error", "<nil>")
	}
	return String("error", err.Error())
}

var structuredPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 1024)
		return &b
	},
}

// StructuredLogger is the logger type used throughout qpage/ring/broadcast.
type StructuredLogger struct {
	*Logger
}

// NewStructured creates a new structured logger discarding output by default.
func NewStructured() *StructuredLogger {
	return &StructuredLogger{Logger: New()}
}

func (l *StructuredLogger) Debug(msg string, fields ...Field) { l.logFields(LevelDebug, msg, fields) }
func (l *StructuredLogger) Info(msg string, fields ...Field)  { l.logFields(LevelInfo, msg, fields) }
func (l *StructuredLogger) Warn(msg string, fields ...Field)  { l.logFields(LevelWarn, msg, fields) }
func (l *StructuredLogger) Error(msg string, fields ...Field) { l.logFields(LevelError, msg, fields) }

// Fatal logs at LevelFatal. Unlike the original teacher library this does
// NOT call os.Exit: qpage is a library, and a library must not terminate its
// host process. Callers that want process-level fatality do it themselves
// after observing the returned error.
func (l *StructuredLogger) Fatal(msg string, fields ...Field) { l.logFields(LevelFatal, msg, fields) }

// logFields encodes and delivers one record using a pooled buffer.
func (l *StructuredLogger) logFields(level Level, msg string, fields []Field) {
	if !l.shouldLog(level) {
		return
	}

	bufPtr := structuredPool.Get().(*[]byte)
	buf := *bufPtr
	pos := 0

	pos += writeBinaryHeader(buf, level, l.nextSequence())

	msgLen := len(msg)
	if msgLen > 255 {
		msgLen = 255
	}
	buf[pos] = byte(msgLen)
	pos++
	copy(buf[pos:], msg[:msgLen])
	pos += msgLen

	fieldCount := len(fields)
	if fieldCount > 255 {
		fieldCount = 255
	}
	buf[pos] = byte(fieldCount)
	pos++

	for i := 0; i < fieldCount && pos < len(buf)-64; i++ {
		pos += encodeField(buf[pos:], &fields[i])
	}

	w := l.getWriter()
	w(buf[:pos])

	structuredPool.Put(bufPtr)
}

// writeBinaryHeader writes the magic/version/level/sequence/timestamp
// header common to every record and returns its length.
func writeBinaryHeader(buf []byte, level Level, seq uint64) int {
	binary.LittleEndian.PutUint32(buf[0:], MagicHeader)
	buf[4] = Version
	buf[5] = byte(level)
	binary.LittleEndian.PutUint64(buf[6:], seq)
	binary.LittleEndian.PutUint64(buf[14:], uint64(time.Now().UnixNano()))
	return 22
}

// encodeField appends one field's wire encoding to buf and returns its length.
func encodeField(buf []byte, f *Field) int {
	if len(buf) < 10 {
		return 0
	}

	pos := 0

	keyLen := len(f.Key)
	if keyLen > 255 {
		keyLen = 255
	}
	if keyLen > len(buf)-pos-2 {
		keyLen = len(buf) - pos - 2
		if keyLen < 0 {
			return 0
		}
	}
	buf[pos] = byte(keyLen)
	pos++
	copy(buf[pos:], f.Key[:keyLen])
	pos += keyLen

	buf[pos] = byte(f.Type)
	pos++

	switch f.Type {
	case FieldTypeInt, FieldTypeUint, FieldTypeBool, FieldTypeFloat64:
		if len(buf)-pos < 8 {
			return pos
		}
		binary.BigEndian.PutUint64(buf[pos:], f.num)
		pos += 8

	case FieldTypeFloat32:
		if len(buf)-pos < 4 {
			return pos
		}
		binary.BigEndian.PutUint32(buf[pos:], uint32(f.num))
		pos += 4

	case FieldTypeString:
		if len(buf)-pos < 2 {
			return pos
		}
		strLen := len(f.str)
		maxLen := len(buf) - pos - 2
		if strLen > maxLen {
			strLen = maxLen
		}
		if strLen > 65535 {
			strLen = 65535
		}
		binary.BigEndian.PutUint16(buf[pos:], uint16(strLen))
		pos += 2
		if strLen > 0 {
			copy(buf[pos:], f.str[:strLen])
			pos += strLen
		}

	case FieldTypeBytes:
		if len(buf)-pos < 2 {
			return pos
		}
		dataLen := int(f.num)
		maxLen := len(buf) - pos - 2
		if dataLen > maxLen {
			dataLen = maxLen
		}
		if dataLen > 65535 {
			dataLen = 65535
		}
		binary.BigEndian.PutUint16(buf[pos:], uint16(dataLen))
		pos += 2
		if f.ptr != nil && dataLen > 0 {
			copy(buf[pos:], unsafe.Slice((*byte)(f.ptr), dataLen))
			pos += dataLen
		}
	}

	return pos
}
