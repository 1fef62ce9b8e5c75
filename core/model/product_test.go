package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFactoryRespectsCategoryRanges(t *testing.T) {
	f := NewFactory(42)
	for _, c := range Categories() {
		spec, ok := Spec(c)
		if !ok {
			t.Fatalf("missing spec for %s", c)
		}
		for _, p := range f.Batch(c, 50) {
			if p.Weight < spec.MinWeight || p.Weight > spec.MaxWeight {
				t.Fatalf("%s weight %v outside [%v,%v]", c, p.Weight, spec.MinWeight, spec.MaxWeight)
			}
			if p.Category != c || p.ID == "" {
				t.Fatalf("bad product %+v", p)
			}
			assert.Contains(t, spec.Names, p.Name)
		}
	}
}

func TestProductIdentityAndValueEquality(t *testing.T) {
	a := NewProduct(Toys, "RC Car", 1.25)
	b := NewProduct(Toys, "RC Car", 1.25)
	assert.False(t, a.Same(b))
	assert.True(t, a.Same(a))
	assert.True(t, a.Matches(b))
	b.Weight = 1.26
	assert.False(t, a.Matches(b))
}

func TestSizeClass(t *testing.T) {
	assert.Equal(t, Small, Product{Weight: 40}.Size())
	assert.Equal(t, Medium, Product{Weight: 40.01}.Size())
	assert.Equal(t, Medium, Product{Weight: 150}.Size())
	assert.Equal(t, Large, Product{Weight: 151}.Size())
}

func TestSummaryAndWeight(t *testing.T) {
	ps := []Product{
		NewProduct(Office, "A4 Binder", 0.5),
		NewProduct(Office, "LED Lamp", 1.5),
		NewProduct(Sports, "Football", 0.4),
	}
	assert.InDelta(t, 2.4, TotalWeight(ps), 1e-9)
	sum := CategorySummary(ps)
	assert.Equal(t, 2, sum[Office])
	assert.Equal(t, 1, sum[Sports])
}

func TestParseCategory(t *testing.T) {
	if c, ok := ParseCategory("gaming_hardware"); !ok || c != GamingHardware {
		t.Fatalf("expected gaming_hardware, got %v %v", c, ok)
	}
	if _, ok := ParseCategory("groceries"); ok {
		t.Fatalf("unexpected category")
	}
	if Furniture.MaxWeight() != 200 {
		t.Fatalf("furniture max weight")
	}
}

func TestSpecReturnsCopy(t *testing.T) {
	s, _ := Spec(Toys)
	s.Names[0] = "changed"
	s2, _ := Spec(Toys)
	if s2.Names[0] == "changed" {
		t.Fatalf("spec names must not be shared")
	}
}
