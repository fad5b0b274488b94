package models

import (
	"encoding/json"
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestStringListDecodesLegacyCommaString(t *testing.T) {
	data, err := bson.Marshal(bson.M{"sizes": "S, M ,L,", "colors": bson.A{"Red", "Blue"}})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var p Product
	if err := bson.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if want := (StringList{"S", "M", "L"}); !reflect.DeepEqual(p.Sizes, want) {
		t.Fatalf("expected sizes %v, got %v", want, p.Sizes)
	}
	if !p.Colors.Contains("Blue") || p.Colors.Contains("blue") {
		t.Fatalf("unexpected colors %v", p.Colors)
	}
}

func TestStringListWritesArray(t *testing.T) {
	data, err := bson.Marshal(Product{Name: "Tee"})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw bson.M
	if err := bson.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, ok := raw["sizes"].(bson.A); !ok {
		t.Fatalf("expected sizes stored as array, got %T", raw["sizes"])
	}
}

func TestStringListJSON(t *testing.T) {
	var body struct {
		Sizes StringList `json:"sizes"`
		Tags  StringList `json:"tags"`
	}
	if err := json.Unmarshal([]byte(`{"sizes":"XS,XL","tags":["summer"]}`), &body); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(body.Sizes) != 2 || body.Sizes[1] != "XL" {
		t.Fatalf("unexpected sizes %v", body.Sizes)
	}
	if len(body.Tags) != 1 || body.Tags[0] != "summer" {
		t.Fatalf("unexpected tags %v", body.Tags)
	}

	if err := json.Unmarshal([]byte(`{"sizes":42}`), &body); err == nil {
		t.Fatal("expected error for a number")
	}
}
