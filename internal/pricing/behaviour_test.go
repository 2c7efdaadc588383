package pricing

import (
	"math"
	"testing"

	"github.com/mwolff/settlex/internal/domain"
)

// decisionRecorder captures pricing decisions.
type decisionRecorder struct {
	causes []string
	deltas []float64
}

func (r *decisionRecorder) PriceDecision(_ domain.AgentID, cause string, delta float64) {
	r.causes = append(r.causes, cause)
	r.deltas = append(r.deltas, delta)
}

func newTestBehaviour(initialPrice, increment float64, rec Recorder) *Behaviour {
	return New("seller", domain.GoodCommodity(domain.GoodWheat), domain.CurrencyEUR,
		initialPrice, increment, DefaultParams(), rec)
}

func approx(t *testing.T, got, want float64, what string) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s: got %v, want %v", what, got, want)
	}
}

func TestCurrentPrice_UsesExplicitInitialPrice(t *testing.T) {
	b := newTestBehaviour(5.0, 0.1, nil)
	approx(t, b.CurrentPrice(), 5.0, "initial price")
}

func TestCurrentPrice_FallsBackToDefault(t *testing.T) {
	cases := []struct {
		name    string
		initial float64
	}{
		{"negative", -1},
		{"nan", math.NaN()},
		{"positive infinity", math.Inf(1)},
		{"negative infinity", math.Inf(-1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newTestBehaviour(tc.initial, 0.1, nil)
			approx(t, b.CurrentPrice(), DefaultParams().DefaultInitialPrice, "fallback price")
		})
	}
}

func TestNew_NonPositiveIncrementUsesDefault(t *testing.T) {
	b := newTestBehaviour(1.0, 0, nil)
	approx(t, b.Increment(), DefaultParams().ExplicitIncrement, "default increment")

	b = newTestBehaviour(1.0, -0.5, nil)
	approx(t, b.Increment(), DefaultParams().ExplicitIncrement, "default increment for negative")
}

func TestAdvancePeriod_SoldNothingLowersPrice(t *testing.T) {
	rec := &decisionRecorder{}
	b := newTestBehaviour(10.0, 0.1, rec)

	b.RegisterOfferedAmount(5)
	b.AdvancePeriod()

	// The increment adapts before the move: the zero-filled history reads
	// as an uptrend, so this lower decelerates the increment first.
	approx(t, b.CurrentPrice(), 10.0/(1.0+0.1/1.1), "lowered price")
	if len(rec.causes) != 1 || rec.causes[0] != CauseSoldNothing {
		t.Errorf("causes %v, want [%s]", rec.causes, CauseSoldNothing)
	}
	if rec.deltas[0] >= 0 {
		t.Errorf("delta %v, want negative", rec.deltas[0])
	}
}

func TestAdvancePeriod_SoldEverythingRaisesPrice(t *testing.T) {
	rec := &decisionRecorder{}
	b := newTestBehaviour(10.0, 0.1, rec)

	b.RegisterOfferedAmount(5)
	b.RegisterSelling(5, 50)
	b.AdvancePeriod()

	approx(t, b.CurrentPrice(), 10.0*1.1, "raised price")
	if len(rec.causes) != 1 || rec.causes[0] != CauseSoldEverything {
		t.Errorf("causes %v, want [%s]", rec.causes, CauseSoldEverything)
	}
}

func TestAdvancePeriod_SoldLessThanBeforeLowersPrice(t *testing.T) {
	rec := &decisionRecorder{}
	b := newTestBehaviour(10.0, 0.1, rec)

	// Period 1: offered 10, sold 8.
	b.RegisterOfferedAmount(10)
	b.RegisterSelling(8, 80)
	b.AdvancePeriod()

	// Period 2: offered 10 (capacity covered last period's 8), sold only 2.
	b.RegisterOfferedAmount(10)
	b.RegisterSelling(2, 20)
	b.AdvancePeriod()

	if rec.causes[len(rec.causes)-1] != CauseSoldLess {
		t.Errorf("last cause %s, want %s", rec.causes[len(rec.causes)-1], CauseSoldLess)
	}
}

func TestAdvancePeriod_SoldMoreThanBeforeRaisesPrice(t *testing.T) {
	rec := &decisionRecorder{}
	b := newTestBehaviour(10.0, 0.1, rec)

	// Period 1: offered 10, sold 2.
	b.RegisterOfferedAmount(10)
	b.RegisterSelling(2, 20)
	b.AdvancePeriod()

	// Period 2: sold 8; period 1's offered 10 would have covered that.
	b.RegisterOfferedAmount(10)
	b.RegisterSelling(8, 80)
	b.AdvancePeriod()

	if rec.causes[len(rec.causes)-1] != CauseSoldMore {
		t.Errorf("last cause %s, want %s", rec.causes[len(rec.causes)-1], CauseSoldMore)
	}
}

func TestAdvancePeriod_NothingOfferedGivesImplicitRaise(t *testing.T) {
	rec := &decisionRecorder{}
	b := newTestBehaviour(10.0, 0.1, rec)

	b.AdvancePeriod()

	approx(t, b.CurrentPrice(), 10.0*(1.0+DefaultParams().ImplicitIncrement), "implicit raise")
	if len(rec.causes) != 1 || rec.causes[0] != CauseImplicitRaise {
		t.Errorf("causes %v, want [%s]", rec.causes, CauseImplicitRaise)
	}
	approx(t, rec.deltas[0], DefaultParams().ImplicitIncrement, "implicit delta")
}

func TestAdvancePeriod_RaiseFromZeroReturnsFloor(t *testing.T) {
	b := newTestBehaviour(0, 0.1, nil)

	b.RegisterOfferedAmount(5)
	b.RegisterSelling(5, 0)
	b.AdvancePeriod()

	approx(t, b.CurrentPrice(), 0.0001, "price floor")
}

func TestAdvancePeriod_CountersResetEachPeriod(t *testing.T) {
	b := newTestBehaviour(10.0, 0.1, nil)

	b.RegisterOfferedAmount(5)
	b.RegisterSelling(3, 30)
	b.AdvancePeriod()

	approx(t, b.LastOfferedAmount(), 5, "last offered")
	approx(t, b.LastSoldAmount(), 3, "last sold")
	approx(t, b.LastSoldValue(), 30, "last sold value")

	b.AdvancePeriod()
	approx(t, b.LastOfferedAmount(), 0, "offered resets")
	approx(t, b.LastSoldAmount(), 0, "sold resets")
}

func TestIncrement_AcceleratesWithTrend(t *testing.T) {
	b := newTestBehaviour(10.0, 0.1, nil)

	// The first lower decelerates (zero history reads as an uptrend); the
	// second moves with the realized downtrend, accelerates back, and the
	// cap at the initial increment bites.
	b.RegisterOfferedAmount(5)
	b.AdvancePeriod()
	b.RegisterOfferedAmount(5)
	b.AdvancePeriod()

	approx(t, b.Increment(), 0.1, "increment capped at initial")
}

func TestIncrement_DeceleratesOnOscillation(t *testing.T) {
	b := newTestBehaviour(10.0, 0.1, nil)

	// Raise after a realized downtrend: direction flips, increment decays.
	b.RegisterOfferedAmount(5)
	b.AdvancePeriod() // sold nothing, price lowered, increment 0.1/1.1

	b.RegisterOfferedAmount(5)
	b.RegisterSelling(5, 40)
	b.AdvancePeriod() // sold everything, price raised against the trend

	approx(t, b.Increment(), 0.1/1.21, "decayed increment")
}

func TestIncrement_NeverExceedsInitial(t *testing.T) {
	b := newTestBehaviour(10.0, 0.05, nil)

	for i := 0; i < 20; i++ {
		b.RegisterOfferedAmount(5)
		b.AdvancePeriod()
	}
	if b.Increment() > 0.05+1e-12 {
		t.Errorf("increment %v exceeds initial 0.05", b.Increment())
	}
}

func TestRegister_IgnoresNonFinite(t *testing.T) {
	b := newTestBehaviour(10.0, 0.1, nil)

	b.RegisterOfferedAmount(math.NaN())
	b.RegisterOfferedAmount(math.Inf(1))
	b.RegisterSelling(math.NaN(), 5)
	b.AdvancePeriod()

	// With no finite observations the period counts as nothing offered.
	approx(t, b.CurrentPrice(), 10.0*(1.0+DefaultParams().ImplicitIncrement), "implicit raise")
}

func TestCurrentPriceSpread(t *testing.T) {
	b := newTestBehaviour(10.0, 0.1, nil)

	if got := b.CurrentPriceSpread(0); got != nil {
		t.Errorf("spread(0) = %v, want nil", got)
	}

	one := b.CurrentPriceSpread(1)
	if len(one) != 1 {
		t.Fatalf("spread(1) length %d, want 1", len(one))
	}
	approx(t, one[0], 10.0, "spread(1) value")

	three := b.CurrentPriceSpread(3)
	if len(three) != 3 {
		t.Fatalf("spread(3) length %d, want 3", len(three))
	}
	approx(t, three[0], 9.9, "spread low")
	approx(t, three[1], 10.0, "spread mid")
	approx(t, three[2], 10.1, "spread high")
}

func TestCurrentPriceSpread_ClampsAtZero(t *testing.T) {
	b := newTestBehaviour(0.05, 0.1, nil)

	spread := b.CurrentPriceSpread(2)
	approx(t, spread[0], 0, "spread floor")
	approx(t, spread[1], 0.15, "spread ceiling")
}

func TestWindow_DiscardsObservationsAfterTenPeriods(t *testing.T) {
	b := newTestBehaviour(10.0, 0.1, nil)

	b.RegisterOfferedAmount(5)
	b.RegisterSelling(5, 50)

	for i := 0; i < windowSize; i++ {
		b.AdvancePeriod()
	}

	approx(t, b.LastOfferedAmount(), 0, "offered dropped out of the window")
	approx(t, b.LastSoldAmount(), 0, "sold dropped out of the window")
}
