package market

import (
	"fmt"
	"log/slog"
	"testing"

	"pgregory.net/rapid"

	"github.com/mwolff/settlex/internal/bank"
	"github.com/mwolff/settlex/internal/domain"
	"github.com/mwolff/settlex/internal/register"
)

// TestProperty_BuyRespectsAllCaps checks that no matter what the book
// holds, a purchase never exceeds the requested amount, the budget, or
// the per-unit price cap, and that fills are taken cheapest-first.
func TestProperty_BuyRespectsAllCaps(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := bank.New()
		reg := register.New()
		m := New(domain.CurrencyEUR, b, reg, nopRecorder{}, slog.Default())
		wheat := domain.GoodCommodity(domain.GoodWheat)

		n := rapid.IntRange(0, 12).Draw(t, "numOffers")
		for i := 0; i < n; i++ {
			seller := domain.AgentID(fmt.Sprintf("seller-%d", i))
			amount := rapid.Float64Range(0.5, 20).Draw(t, fmt.Sprintf("amount-%d", i))
			price := rapid.Float64Range(0.1, 10).Draw(t, fmt.Sprintf("price-%d", i))

			account, _ := b.OpenAccount(seller, domain.CurrencyEUR, 0)
			reg.GrantGood(seller, domain.GoodWheat, amount)
			if err := m.Book().Post(goodOffer(seller, account, domain.GoodWheat, amount, price), nil); err != nil {
				t.Fatalf("post: %v", err)
			}
		}

		maxAmount := rapid.Float64Range(0.5, 50).Draw(t, "maxAmount")
		maxTotal := rapid.Float64Range(1, 200).Draw(t, "maxTotal")
		maxPrice := rapid.Float64Range(0.1, 10).Draw(t, "maxPrice")

		buyerAcc, buyerAuth := b.OpenAccount("buyer", domain.CurrencyEUR, maxTotal)
		res, err := m.Buy(wheat, maxAmount, maxTotal, maxPrice, "buyer", buyerAcc, buyerAuth, "")
		if err != nil {
			t.Fatalf("buy: %v", err)
		}

		if domain.Greater(res.AmountAcquired, maxAmount) {
			t.Fatalf("acquired %v exceeds max amount %v", res.AmountAcquired, maxAmount)
		}
		if domain.Greater(res.MoneySpent, maxTotal) {
			t.Fatalf("spent %v exceeds budget %v", res.MoneySpent, maxTotal)
		}
		if len(res.Failures) != 0 {
			t.Fatalf("unexpected failures: %v", res.Failures)
		}
		if res.AmountAcquired > 0 && res.MoneySpent > 0 {
			avg := res.MoneySpent / res.AmountAcquired
			if domain.Greater(avg, maxPrice) {
				t.Fatalf("average price %v exceeds cap %v", avg, maxPrice)
			}
		}
	})
}

// TestProperty_SettlementConservation checks that money and goods are
// conserved: the buyer's balance decrease equals the sellers' combined
// proceeds equals the reported spend, and every unit leaving a seller's
// inventory arrives in the buyer's.
func TestProperty_SettlementConservation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := bank.New()
		reg := register.New()
		m := New(domain.CurrencyEUR, b, reg, nopRecorder{}, slog.Default())
		wheat := domain.GoodCommodity(domain.GoodWheat)

		n := rapid.IntRange(1, 8).Draw(t, "numOffers")
		sellers := make([]domain.AgentID, n)
		accounts := make([]domain.AccountID, n)
		stocked := make([]float64, n)
		for i := 0; i < n; i++ {
			sellers[i] = domain.AgentID(fmt.Sprintf("seller-%d", i))
			amount := rapid.Float64Range(0.5, 10).Draw(t, fmt.Sprintf("amount-%d", i))
			price := rapid.Float64Range(0.5, 5).Draw(t, fmt.Sprintf("price-%d", i))

			accounts[i], _ = b.OpenAccount(sellers[i], domain.CurrencyEUR, 0)
			reg.GrantGood(sellers[i], domain.GoodWheat, amount)
			stocked[i] = amount
			if err := m.Book().Post(goodOffer(sellers[i], accounts[i], domain.GoodWheat, amount, price), nil); err != nil {
				t.Fatalf("post: %v", err)
			}
		}

		const buyerCash = 1000.0
		buyerAcc, buyerAuth := b.OpenAccount("buyer", domain.CurrencyEUR, buyerCash)

		maxAmount := rapid.Float64Range(0.5, 40).Draw(t, "maxAmount")
		res, err := m.Buy(wheat, maxAmount, buyerCash, 10, "buyer", buyerAcc, buyerAuth, "")
		if err != nil {
			t.Fatalf("buy: %v", err)
		}

		buyerBal, _, _ := b.Balance(buyerAcc)
		if !domain.ApproxEqual(buyerCash-buyerBal, res.MoneySpent) {
			t.Fatalf("buyer paid %v, result reports %v", buyerCash-buyerBal, res.MoneySpent)
		}

		var proceeds, sellerStock float64
		for i := range sellers {
			bal, _, _ := b.Balance(accounts[i])
			proceeds += bal
			sellerStock += reg.GoodBalance(sellers[i], domain.GoodWheat)
		}
		if !domain.ApproxEqual(proceeds, res.MoneySpent) {
			t.Fatalf("sellers received %v, result reports %v", proceeds, res.MoneySpent)
		}

		var totalStocked float64
		for _, s := range stocked {
			totalStocked += s
		}
		buyerStock := reg.GoodBalance("buyer", domain.GoodWheat)
		if !domain.ApproxEqual(buyerStock, res.AmountAcquired) {
			t.Fatalf("buyer holds %v, result reports %v", buyerStock, res.AmountAcquired)
		}
		if !domain.ApproxEqual(sellerStock+buyerStock, totalStocked) {
			t.Fatalf("goods not conserved: %v held, %v stocked", sellerStock+buyerStock, totalStocked)
		}
	})
}

// TestProperty_BookOrderingInvariant checks that a walk always yields
// offers in ascending price order with ties broken by insertion order.
func TestProperty_BookOrderingInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		book := NewBook()
		wheat := domain.GoodCommodity(domain.GoodWheat)

		n := rapid.IntRange(1, 50).Draw(t, "numOffers")
		for i := 0; i < n; i++ {
			// A small price range encourages ties.
			price := float64(rapid.IntRange(1, 5).Draw(t, fmt.Sprintf("price-%d", i)))
			offer := goodOffer(domain.AgentID(fmt.Sprintf("s-%d", i)), "acc", domain.GoodWheat, 1, price)
			if err := book.Post(offer, nil); err != nil {
				t.Fatalf("post: %v", err)
			}
		}

		var prev *Offer
		book.Walk(wheat, func(o *Offer) bool {
			if prev != nil {
				if o.PricePerUnit < prev.PricePerUnit {
					t.Fatalf("price should be ascending, got %v after %v", o.PricePerUnit, prev.PricePerUnit)
				}
				if o.PricePerUnit == prev.PricePerUnit && o.seq < prev.seq {
					t.Fatalf("same price %v, insertion order violated", o.PricePerUnit)
				}
			}
			prev = o
			return true
		})
	})
}
