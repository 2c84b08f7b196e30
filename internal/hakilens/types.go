package hakilens

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

const UntitledCase = "Untitled Case"

type Case struct {
	CaseID      string `json:"case_id" yaml:"case_id"`
	Title       string `json:"title" yaml:"title"`
	Court       string `json:"court,omitempty" yaml:"court,omitempty"`
	CaseNumber  string `json:"case_number,omitempty" yaml:"case_number,omitempty"`
	Parties     string `json:"parties,omitempty" yaml:"parties,omitempty"`
	Judges      string `json:"judges,omitempty" yaml:"judges,omitempty"`
	DateCreated string `json:"date_created,omitempty" yaml:"date_created,omitempty"`
	Summary     string `json:"summary,omitempty" yaml:"summary,omitempty"`
	Content     string `json:"content,omitempty" yaml:"content,omitempty"`
}

// Attachment is a case document or image.
type Attachment struct {
	Filename string `json:"filename" yaml:"filename"`
	URL      string `json:"url" yaml:"url"`
}

type askRequest struct {
	Question string `json:"question"`
}

type chatRequest struct {
	Message string `json:"message"`
}

// listItem is a case as /cases lists it. Field names vary between deployments.
type listItem struct {
	ID          json.RawMessage `json:"id"`
	CaseID      json.RawMessage `json:"case_id"`
	Title       json.RawMessage `json:"title"`
	Court       json.RawMessage `json:"court"`
	CaseNumber  json.RawMessage `json:"case_number"`
	Parties     json.RawMessage `json:"parties"`
	Judges      json.RawMessage `json:"judges"`
	Date        json.RawMessage `json:"date"`
	DateCreated json.RawMessage `json:"date_created"`
	Summary     json.RawMessage `json:"summary"`
	Content     json.RawMessage `json:"content"`
}

func (it listItem) toCase() Case {
	title := firstText(it.Title)
	if title == "" {
		title = UntitledCase
	}
	return Case{
		CaseID:      firstText(it.ID, it.CaseID),
		Title:       title,
		Court:       firstText(it.Court),
		CaseNumber:  firstText(it.CaseNumber),
		Parties:     firstText(it.Parties),
		Judges:      firstText(it.Judges),
		DateCreated: firstText(it.Date, it.DateCreated),
		Summary:     firstText(it.Summary),
		Content:     firstText(it.Content),
	}
}

func decodeCaseList(body []byte) ([]Case, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []Case{}, nil
	}

	var items []listItem
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, errors.Wrap(err, "hakilens: decode case list")
		}
	case '{':
		var page struct {
			Items json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, errors.Wrap(err, "hakilens: decode case page")
		}
		p := bytes.TrimSpace(page.Items)
		if len(p) == 0 || p[0] != '[' {
			return []Case{}, nil
		}
		if err := json.Unmarshal(p, &items); err != nil {
			return nil, errors.Wrap(err, "hakilens: decode case page items")
		}
	default:
		return []Case{}, nil
	}

	out := make([]Case, 0, len(items))
	for _, it := range items {
		out = append(out, it.toCase())
	}
	return out, nil
}

// firstText returns the first value that is a non-empty string or a non-zero number,
// as text. null, false, 0 and "" are skipped.
func firstText(values ...json.RawMessage) string {
	for _, raw := range values {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			continue
		}
		switch raw[0] {
		case '"':
			var s string
			if err := json.Unmarshal(raw, &s); err == nil && s != "" {
				return s
			}
		case 'n', 't', 'f', '{', '[':
			// null, booleans and nested values carry no text
		default:
			var n json.Number
			if err := json.Unmarshal(raw, &n); err == nil {
				if f, err := n.Float64(); err == nil && f != 0 {
					return n.String()
				}
			}
		}
	}
	return ""
}
