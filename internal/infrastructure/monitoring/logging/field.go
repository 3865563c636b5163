package logging

import (
	"time"

	"go.uber.org/zap"
)

// Field is one structured key/value attached to an entry.
type Field struct {
	Key   string
	Value interface{}
}

func (f Field) zap() zap.Field { return zap.Any(f.Key, f.Value) }

func zapFields(fields []Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = f.zap()
	}
	return out
}

func String(key, val string) Field                 { return Field{key, val} }
func Int(key string, val int) Field                { return Field{key, val} }
func Int64(key string, val int64) Field            { return Field{key, val} }
func Float64(key string, val float64) Field        { return Field{key, val} }
func Bool(key string, val bool) Field              { return Field{key, val} }
func Duration(key string, val time.Duration) Field { return Field{key, val} }
func Any(key string, val interface{}) Field        { return Field{key, val} }

// Err records err's message under "error"; a nil err logs "<nil>".
func Err(err error) Field {
	if err == nil {
		return Field{"error", "<nil>"}
	}
	return Field{"error", err.Error()}
}

// Keys shared by the HTTP layer and the dashboard service.
const (
	FieldRequestID = "request_id"
	FieldState     = "state"
	FieldYear      = "year"
	FieldComponent = "component"
)

//Personal.AI order the ending
