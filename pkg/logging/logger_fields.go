package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Component field helpers
func Component(name string) Field {
	return String("component", name)
}

func NodeID(id string) Field {
	return String("node_id", id)
}

func Slot(name string) Field {
	return String("slot", name)
}

func Endpoint(method, path string) Field {
	return String("endpoint", method+" "+path)
}

func RequestID(id string) Field {
	return String("request_id", id)
}

func Status(code int) Field {
	return Int("status", code)
}

func Operation(op string) Field {
	return String("operation", op)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}

func Path(p string) Field {
	return String("path", p)
}
