package registry

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/hakichain/haki-analytics/internal/shared"
)

// Record is one off-chain metadata record. MetadataHash and Owner are nil when the
// registry omits them. RegisteredAt is a decimal nanosecond string, "None", or "".
type Record struct {
	ID           int64   `json:"id" yaml:"id"`
	MetadataHash *string `json:"metadataHash,omitempty" yaml:"metadataHash,omitempty"`
	Owner        *string `json:"owner,omitempty" yaml:"owner,omitempty"`
	RegisteredAt string  `json:"registeredAt" yaml:"registeredAt"`
}

func (r *Record) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID           json.RawMessage `json:"id"`
		MetadataHash *string         `json:"metadataHash"`
		Owner        *string         `json:"owner"`
		RegisteredAt json.RawMessage `json:"registeredAt"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*r = Record{
		ID:           lenientInt(raw.ID),
		MetadataHash: raw.MetadataHash,
		Owner:        raw.Owner,
		RegisteredAt: lenientString(raw.RegisteredAt),
	}
	return nil
}

// lenientInt accepts 12 and "12". Anything else decodes to 0.
func lenientInt(raw json.RawMessage) int64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0
	}
	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
	} else {
		s = string(raw)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// lenientString keeps strings as they are and numbers as their literal text.
func lenientString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return ""
	}
	return n.String()
}

// EnvelopeKind is the shape the registry answered with.
type EnvelopeKind int

const (
	EnvelopeUnknown EnvelopeKind = iota
	EnvelopeArray
	EnvelopeResults
)

func (k EnvelopeKind) String() string {
	switch k {
	case EnvelopeArray:
		return "array"
	case EnvelopeResults:
		return "results"
	default:
		return "unknown"
	}
}

// DecodeEnvelope decodes a bare array or a {"results": [...]} page into records.
// Any other valid JSON yields an empty list and EnvelopeUnknown. Only a body that is not
// JSON at all is an error (marked shared.ErrParseFailure).
func DecodeEnvelope(body []byte) ([]Record, EnvelopeKind, error) {
	var top any
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, EnvelopeUnknown, shared.Mark(err, shared.ErrParseFailure, "registry: decode body")
	}

	switch v := top.(type) {
	case []any:
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, EnvelopeUnknown, shared.Mark(err, shared.ErrParseFailure, "registry: decode array")
		}
		return decodeItems(items), EnvelopeArray, nil

	case map[string]any:
		if _, ok := v["results"].([]any); !ok {
			return []Record{}, EnvelopeUnknown, nil
		}
		var page struct {
			Results []json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, EnvelopeUnknown, shared.Mark(err, shared.ErrParseFailure, "registry: decode results")
		}
		return decodeItems(page.Results), EnvelopeResults, nil
	}

	return []Record{}, EnvelopeUnknown, nil
}

func decodeItems(items []json.RawMessage) []Record {
	out := make([]Record, 0, len(items))
	for i, item := range items {
		var rec Record
		if err := json.Unmarshal(item, &rec); err != nil {
			log.Warn("registry: skipping malformed record", "index", i, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out
}
