package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// AnswerKind tags the shape of an Answer.
type AnswerKind int

const (
	AnswerNone AnswerKind = iota
	AnswerSingle
	AnswerOrdered
)

func (k AnswerKind) String() string {
	switch k {
	case AnswerSingle:
		return "single"
	case AnswerOrdered:
		return "ordered"
	}
	return "none"
}

// Answer is either a single value or an ordered list of values.
// The zero Answer has kind AnswerNone and never matches anything.
type Answer struct {
	kind    AnswerKind
	single  string
	ordered []string
}

// SingleAnswer builds a single-value answer.
func SingleAnswer(value string) Answer {
	return Answer{kind: AnswerSingle, single: value}
}

// OrderedAnswer builds an ordered multi-value answer; order is significant.
func OrderedAnswer(values ...string) Answer {
	cp := make([]string, len(values))
	copy(cp, values)
	return Answer{kind: AnswerOrdered, ordered: cp}
}

func (a Answer) Kind() AnswerKind { return a.kind }

// Single returns the value of a single answer and false for other kinds.
func (a Answer) Single() (string, bool) {
	return a.single, a.kind == AnswerSingle
}

// Ordered returns the values of an ordered answer and false for other kinds.
func (a Answer) Ordered() ([]string, bool) {
	if a.kind != AnswerOrdered {
		return nil, false
	}
	return a.ordered, true
}

func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case AnswerSingle:
		return json.Marshal(a.single)
	case AnswerOrdered:
		return json.Marshal(a.ordered)
	}
	return []byte("null"), nil
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = Answer{}
		return nil
	}
	switch data[0] {
	case '[':
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("decode ordered answer: %w", err)
		}
		*a = OrderedAnswer(values...)
	case '"':
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return fmt.Errorf("decode answer: %w", err)
		}
		*a = SingleAnswer(value)
	default:
		return fmt.Errorf("answer must be a string or a list of strings")
	}
	return nil
}

func (a Answer) MarshalYAML() (interface{}, error) {
	switch a.kind {
	case AnswerSingle:
		return a.single, nil
	case AnswerOrdered:
		return a.ordered, nil
	}
	return nil, nil
}

func (a *Answer) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*a = Answer{}
			return nil
		}
		*a = SingleAnswer(value.Value)
	case yaml.SequenceNode:
		var values []string
		if err := value.Decode(&values); err != nil {
			return fmt.Errorf("decode ordered answer: %w", err)
		}
		*a = OrderedAnswer(values...)
	default:
		return fmt.Errorf("line %d: answer must be a string or a list of strings", value.Line)
	}
	return nil
}
