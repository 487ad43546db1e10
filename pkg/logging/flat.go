package logging

import (
	"encoding/json"
	"time"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

var bufferPool = buffer.NewPool()

// FlatEncoder writes each entry as a single flat JSON object: fixed
// timestamp/level/message/caller keys with every field merged at the top level.
type FlatEncoder struct {
	zapcore.Encoder
	fields map[string]interface{}
}

// NewFlatEncoder creates a flat JSON encoder
func NewFlatEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return &FlatEncoder{
		Encoder: zapcore.NewJSONEncoder(cfg),
		fields:  map[string]interface{}{},
	}
}

// Clone keeps fields added through With.
func (e *FlatEncoder) Clone() zapcore.Encoder {
	fields := make(map[string]interface{}, len(e.fields))
	for k, v := range e.fields {
		fields[k] = v
	}
	return &FlatEncoder{Encoder: e.Encoder.Clone(), fields: fields}
}

// AddString records context fields from logger.With for string values.
func (e *FlatEncoder) AddString(key, value string) {
	e.fields[key] = value
	e.Encoder.AddString(key, value)
}

// EncodeEntry encodes a log entry
func (e *FlatEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	obj := map[string]interface{}{
		"timestamp": entry.Time.UTC().Format(time.RFC3339Nano),
		"level":     entry.Level.String(),
		"message":   entry.Message,
	}
	if entry.LoggerName != "" {
		obj["logger"] = entry.LoggerName
	}
	if entry.Caller.Defined {
		obj["caller"] = entry.Caller.TrimmedPath()
	}
	if entry.Stack != "" {
		obj["stack"] = entry.Stack
	}

	for k, v := range e.fields {
		obj[k] = v
	}

	enc := zapcore.NewMapObjectEncoder()
	for _, field := range fields {
		field.AddTo(enc)
	}
	for k, v := range enc.Fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		obj[k] = v
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	buf := bufferPool.Get()
	buf.AppendBytes(data)
	buf.AppendByte('\n')
	return buf, nil
}
