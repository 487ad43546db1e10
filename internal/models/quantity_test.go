package models

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in      string
		want    Quantity
		wantErr bool
	}{
		{"0.3", 300, false},
		{"10", Units(10), false},
		{" 2.5 ", 2500, false},
		{"0.001", 1, false},
		{"-1", -1000, false},
		{"0.0001", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"1e30", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseQuantity(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseQuantity(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrQuantity) {
			t.Errorf("ParseQuantity(%q) error = %v, want ErrQuantity", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseQuantity(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestQuantityFromFloat(t *testing.T) {
	for _, f := range []float64{0.1, 0.2, 0.3} {
		q, err := QuantityFromFloat(f)
		if err != nil {
			t.Fatalf("QuantityFromFloat(%v): %v", f, err)
		}
		if q.Float64() != f {
			t.Errorf("round trip of %v gave %v", f, q.Float64())
		}
	}

	a, _ := QuantityFromFloat(0.1)
	b, _ := QuantityFromFloat(0.2)
	c, _ := QuantityFromFloat(0.3)
	if c-a != b {
		t.Errorf("0.3 - 0.1 = %s, want 0.2", c-a)
	}

	for _, f := range []float64{math.NaN(), math.Inf(1), 0.12345} {
		if _, err := QuantityFromFloat(f); err == nil {
			t.Errorf("QuantityFromFloat(%v): expected error", f)
		}
	}
}

func TestQuantityJSON(t *testing.T) {
	var v struct {
		Q Quantity `json:"q"`
	}
	if err := json.Unmarshal([]byte(`{"q":0.2}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.Q != 200 {
		t.Errorf("unmarshal 0.2 = %d, want 200", v.Q)
	}
	if err := json.Unmarshal([]byte(`{"q":"1.5"}`), &v); err != nil || v.Q != 1500 {
		t.Errorf("unmarshal \"1.5\" = %d, %v", v.Q, err)
	}
	if err := json.Unmarshal([]byte(`{"q":true}`), &v); err == nil {
		t.Error("expected error for non-numeric quantity")
	}

	v.Q = Quantity(300) - Quantity(100)
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"q":0.2}` {
		t.Errorf("marshal = %s, want {\"q\":0.2}", data)
	}
}
