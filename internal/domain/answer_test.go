package domain

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestAnswerDecodesStringOrList(t *testing.T) {
	var q struct {
		Single  Answer `json:"single" yaml:"single"`
		Ordered Answer `json:"ordered" yaml:"ordered"`
		Missing Answer `json:"missing" yaml:"missing"`
	}

	if err := json.Unmarshal([]byte(`{"single":"Paris","ordered":["a","b"],"missing":null}`), &q); err != nil {
		t.Fatalf("json decode: %v", err)
	}
	assertShapes(t, q.Single, q.Ordered, q.Missing)

	q.Single, q.Ordered, q.Missing = Answer{}, Answer{}, Answer{}
	if err := yaml.Unmarshal([]byte("single: Paris\nordered: [a, b]\nmissing: ~\n"), &q); err != nil {
		t.Fatalf("yaml decode: %v", err)
	}
	assertShapes(t, q.Single, q.Ordered, q.Missing)
}

func TestAnswerRejectsOtherJSONShapes(t *testing.T) {
	var a Answer
	if err := json.Unmarshal([]byte(`42`), &a); err == nil {
		t.Fatalf("expected error for numeric answer")
	}
	if err := json.Unmarshal([]byte(`[1,2]`), &a); err == nil {
		t.Fatalf("expected error for numeric list")
	}
}

func TestAnswerJSONEncoding(t *testing.T) {
	out, err := json.Marshal(OrderedAnswer("x", "y"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `["x","y"]` {
		t.Fatalf("unexpected encoding %s", out)
	}
	out, _ = json.Marshal(SingleAnswer("F12"))
	if string(out) != `"F12"` {
		t.Fatalf("unexpected encoding %s", out)
	}
}

func assertShapes(t *testing.T, single, ordered, missing Answer) {
	t.Helper()
	if v, ok := single.Single(); !ok || v != "Paris" {
		t.Fatalf("expected single Paris, got %+v", single)
	}
	if v, ok := ordered.Ordered(); !ok || len(v) != 2 || v[0] != "a" || v[1] != "b" {
		t.Fatalf("expected ordered [a b], got %+v", ordered)
	}
	if missing.Kind() != AnswerNone {
		t.Fatalf("expected no answer, got %s", missing.Kind())
	}
}
