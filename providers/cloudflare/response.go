package cloudflare

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is one entity returned by the API: a zone, a DNS record, an account,
// an Access group or a single rule. The API is semi-structured so no schema
// is imposed.
type Record map[string]any

// String returns the field as a string, reporting false when it is absent or
// not a JSON string.
func (r Record) String(key string) (string, bool) {
	v, ok := r[key].(string)
	return v, ok
}

// ID returns the record's "id" field.
func (r Record) ID() (string, error) {
	id, ok := r.String("id")
	if !ok {
		return "", fmt.Errorf("%w: record has no string \"id\" field", ErrParse)
	}
	return id, nil
}

// APIError is one entry of the envelope's "errors" list.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e APIError) String() string {
	return fmt.Sprintf("%s (code: %d)", e.Message, e.Code)
}

// Response is a decoded API envelope with the result normalized to a list.
type Response struct {
	Success bool
	Errors  []APIError
	Records []Record
}

// envelope is the standard Cloudflare API response wrapper.
type envelope struct {
	Success  bool              `json:"success"`
	Errors   []APIError        `json:"errors"`
	Messages []json.RawMessage `json:"messages"`
	Result   resultShape       `json:"result"`
}

// resultShape holds "result", which is a bare object for singular lookups
// and an array for collection lookups.
type resultShape struct {
	single Record
	many   []Record
	isList bool
}

func (s *resultShape) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		*s = resultShape{}
		return nil
	case trimmed[0] == '[':
		var many []Record
		if err := json.Unmarshal(trimmed, &many); err != nil {
			return err
		}
		*s = resultShape{many: many, isList: true}
		return nil
	case trimmed[0] == '{':
		var single Record
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return err
		}
		*s = resultShape{single: single}
		return nil
	default:
		return fmt.Errorf("result is neither an object nor an array: %.32s", trimmed)
	}
}

// records returns the result as a list: one element for an object, the
// array itself for a list, nil when absent.
func (s resultShape) records() []Record {
	if s.isList {
		return s.many
	}
	if s.single != nil {
		return []Record{s.single}
	}
	return nil
}

// decodeResponse parses a raw response body into a Response.
func decodeResponse(body []byte) (*Response, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}

	return &Response{
		Success: env.Success,
		Errors:  env.Errors,
		Records: env.Result.records(),
	}, nil
}
