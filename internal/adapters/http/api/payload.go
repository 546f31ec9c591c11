package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
)

// fields holds the raw top-level members of a JSON object body.
type fields map[string]json.RawMessage

// decodeFields reads r's body as a JSON object. Oversized bodies map to
// ErrPayloadTooLarge; anything that is not an object maps to ErrBadRequest.
func decodeFields(op string, r *http.Request) (fields, error) {
	if r.Body == nil {
		return nil, NewKind(op, ErrBadRequest)
	}
	var f fields
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&f); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, WrapKind(op, ErrPayloadTooLarge, err)
		}
		return nil, WrapKind(op, ErrBadRequest, fmt.Errorf("decode body: %w", err))
	}
	if f == nil {
		return nil, WrapKind(op, ErrBadRequest, errors.New("body must be a JSON object"))
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, WrapKind(op, ErrPayloadTooLarge, err)
		}
		return nil, WrapKind(op, ErrBadRequest, errors.New("body must hold a single JSON object"))
	}
	return f, nil
}

// fieldReader coerces named members of a decoded body, keeping the first failure.
type fieldReader struct {
	f   fields
	err error
}

func (fr *fieldReader) raw(key string) (json.RawMessage, bool) {
	if fr.err != nil {
		return nil, false
	}
	v, ok := fr.f[key]
	if !ok {
		fr.err = fmt.Errorf("missing field %q", key)
		return nil, false
	}
	return bytes.TrimSpace(v), true
}

// text accepts strings, numbers and booleans as text; null reads as "".
func (fr *fieldReader) text(key string) string {
	v, ok := fr.raw(key)
	if !ok {
		return ""
	}
	switch {
	case isNull(v):
		return ""
	case v[0] == '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			fr.err = fmt.Errorf("field %q: %w", key, err)
			return ""
		}
		return s
	case string(v) == "true" || string(v) == "false":
		return string(v)
	case v[0] == '-' || (v[0] >= '0' && v[0] <= '9'):
		return string(v)
	default:
		fr.err = fmt.Errorf("field %q: expected a string", key)
		return ""
	}
}

// number accepts numbers and numeric strings; null reads as 0.
func (fr *fieldReader) number(key string) float64 {
	v, ok := fr.raw(key)
	if !ok {
		return 0
	}
	n, err := parseNumber(v)
	if err != nil {
		fr.err = fmt.Errorf("field %q: %w", key, err)
		return 0
	}
	return n
}

// integer accepts integral numbers and numeric strings; null reads as 0.
func (fr *fieldReader) integer(key string) int64 {
	v, ok := fr.raw(key)
	if !ok {
		return 0
	}
	if isNull(v) {
		return 0
	}
	text := string(v)
	if v[0] == '"' {
		if err := json.Unmarshal(v, &text); err != nil {
			fr.err = fmt.Errorf("field %q: %w", key, err)
			return 0
		}
		text = strings.TrimSpace(text)
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		fr.err = fmt.Errorf("field %q: expected an integer", key)
		return 0
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		fr.err = fmt.Errorf("field %q: %v is not an integer", key, f)
		return 0
	}
	return int64(f)
}

func isNull(v json.RawMessage) bool {
	return string(v) == "null"
}

func parseNumber(v json.RawMessage) (float64, error) {
	if isNull(v) {
		return 0, nil
	}
	text := string(v)
	if v[0] == '"' {
		if err := json.Unmarshal(v, &text); err != nil {
			return 0, err
		}
		text = strings.TrimSpace(text)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, errors.New("expected a number")
	}
	return f, nil
}
