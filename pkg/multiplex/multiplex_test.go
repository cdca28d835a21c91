package multiplex

import (
	"reflect"
	"testing"

	"github.com/viruswevh/ObscurCore/pkg/csprng"
)

func newSource(t *testing.T) *csprng.Source {
	t.Helper()
	src, err := csprng.NewFromSeed(csprng.CipherSalsa20, make([]byte, csprng.KeySize), make([]byte, csprng.NonceSize))
	if err != nil {
		t.Fatalf("NewFromSeed: %v", err)
	}
	return src
}

func TestScheduleSimple(t *testing.T) {
	cfg := Config{Scheme: SchemeSimple}
	steps, err := Schedule(cfg, []uint32{10, 20, 30}, nil)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	want := []Step{
		{ItemIndex: 0, Stride: 10, Final: true},
		{ItemIndex: 1, Stride: 20, Final: true},
		{ItemIndex: 2, Stride: 30, Final: true},
	}
	if !reflect.DeepEqual(steps, want) {
		t.Fatalf("got %+v, want %+v", steps, want)
	}
}

func TestFrameshiftZeroPadMatchesSimple(t *testing.T) {
	cfg := Config{Scheme: SchemeFrameshift, Frameshift: FrameshiftParams{PadMin: 0, PadMax: 0}}
	steps, err := Schedule(cfg, []uint32{5, 15}, newSource(t))
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	for _, s := range steps {
		if s.PadAfter != 0 {
			t.Fatalf("expected zero padding, got %+v", s)
		}
	}
	simple, _ := Schedule(Config{Scheme: SchemeSimple}, []uint32{5, 15}, nil)
	for i := range steps {
		if steps[i].ItemIndex != simple[i].ItemIndex || steps[i].Stride != simple[i].Stride {
			t.Fatalf("frameshift[%d]=%+v diverges from simple[%d]=%+v", i, steps[i], i, simple[i])
		}
	}
}

func TestFabricDeterministic(t *testing.T) {
	cfg := Config{Scheme: SchemeFabric, Fabric: FabricParams{StripeMin: 64, StripeMax: 256}}
	sizes := []uint32{1000, 2000, 500}

	a, err := Schedule(cfg, sizes, newSource(t))
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	b, err := Schedule(cfg, sizes, newSource(t))
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("two independent Fabric schedules over the same seed diverged")
	}

	var totals [3]uint32
	for _, s := range a {
		totals[s.ItemIndex] += s.Stride
	}
	for i, want := range sizes {
		if totals[i] != want {
			t.Fatalf("item %d: transferred %d bytes, want %d", i, totals[i], want)
		}
	}
}

func TestFabricSingleItemBehavesLikeSimple(t *testing.T) {
	cfg := Config{Scheme: SchemeFabric, Fabric: FabricParams{StripeMin: 64, StripeMax: 128}}
	steps, err := Schedule(cfg, []uint32{500}, newSource(t))
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	var total uint32
	for _, s := range steps {
		if s.ItemIndex != 0 {
			t.Fatalf("expected every turn to select the only open item, got %+v", s)
		}
		total += s.Stride
	}
	if total != 500 {
		t.Fatalf("transferred %d bytes, want 500", total)
	}
	if !steps[len(steps)-1].Final {
		t.Fatal("last step should close the only item")
	}
}

func TestScheduleRejectsBadFabricParams(t *testing.T) {
	cfg := Config{Scheme: SchemeFabric, Fabric: FabricParams{StripeMin: 10, StripeMax: 20}}
	if _, err := Schedule(cfg, []uint32{100}, newSource(t)); err != ErrSchemeParamsInvalid {
		t.Fatalf("got %v, want ErrSchemeParamsInvalid", err)
	}
}

func TestScheduleRejectsNoItems(t *testing.T) {
	if _, err := Schedule(Config{Scheme: SchemeSimple}, nil, nil); err != ErrNoItems {
		t.Fatalf("got %v, want ErrNoItems", err)
	}
}
