package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// TimestampLayout is the layout used for the stored "timestamp" field.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// parseLayout accepts any fractional second precision, including none.
const parseLayout = "2006-01-02 15:04:05"

const (
	fieldTechnicalQuestions = "technical_questions"
	fieldTimestamp          = "timestamp"
)

// Field is one collected fixed answer.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// QAPair is a generated question with the applicant's answer. It is encoded
// as a two-element JSON array.
type QAPair struct {
	Question string
	Answer   string
}

// MarshalJSON encodes the pair as [question, answer].
func (p QAPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{p.Question, p.Answer})
}

// UnmarshalJSON decodes a [question, answer] array.
func (p *QAPair) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decode question pair: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("decode question pair: want 2 elements, got %d", len(pair))
	}
	p.Question, p.Answer = pair[0], pair[1]
	return nil
}

// CandidateRecord is the durable artifact produced by a submitted session.
// Fields keep the order in which they were collected.
type CandidateRecord struct {
	Fields             []Field
	TechnicalQuestions []QAPair
	Timestamp          time.Time
}

// Get returns the value stored for key.
func (c CandidateRecord) Get(key string) (string, bool) {
	for _, f := range c.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// MarshalJSON writes a flat object: one member per fixed field in collection
// order, then "technical_questions" and "timestamp".
func (c CandidateRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, f := range c.Fields {
		if err := writeMember(&buf, f.Key, f.Value); err != nil {
			return nil, err
		}
		buf.WriteByte(',')
	}
	pairs := c.TechnicalQuestions
	if pairs == nil {
		pairs = []QAPair{}
	}
	if err := writeMember(&buf, fieldTechnicalQuestions, pairs); err != nil {
		return nil, err
	}
	buf.WriteByte(',')
	if err := writeMember(&buf, fieldTimestamp, c.Timestamp.Format(TimestampLayout)); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("encode key %q: %w", key, err)
	}
	v, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// UnmarshalJSON reads the flat object form. Known catalog keys come first in
// catalog order; any other string members follow sorted by key.
func (c *CandidateRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode candidate: %w", err)
	}

	var out CandidateRecord
	if tq, ok := raw[fieldTechnicalQuestions]; ok {
		if err := json.Unmarshal(tq, &out.TechnicalQuestions); err != nil {
			return fmt.Errorf("decode %s: %w", fieldTechnicalQuestions, err)
		}
	}
	if ts, ok := raw[fieldTimestamp]; ok {
		var s string
		if err := json.Unmarshal(ts, &s); err != nil {
			return fmt.Errorf("decode %s: %w", fieldTimestamp, err)
		}
		t, err := ParseTimestamp(s)
		if err != nil {
			return err
		}
		out.Timestamp = t
	}
	delete(raw, fieldTechnicalQuestions)
	delete(raw, fieldTimestamp)

	keys := make([]string, 0, len(raw))
	for _, q := range defaultQuestions {
		if _, ok := raw[q.Key]; ok {
			keys = append(keys, q.Key)
		}
	}
	var extra []string
	for k := range raw {
		if IndexOfKey(defaultQuestions, k) < 0 {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	keys = append(keys, extra...)

	for _, k := range keys {
		var v string
		if err := json.Unmarshal(raw[k], &v); err != nil {
			return fmt.Errorf("decode field %q: %w", k, err)
		}
		out.Fields = append(out.Fields, Field{Key: k, Value: v})
	}
	*c = out
	return nil
}

// ParseTimestamp accepts the stored layout and RFC 3339.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(parseLayout, s, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
