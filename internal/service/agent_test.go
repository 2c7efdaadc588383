package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwolff/settlex/internal/bank"
	"github.com/mwolff/settlex/internal/domain"
	"github.com/mwolff/settlex/internal/register"
)

func newTestAgentService() (*AgentService, *bank.Bank, *register.Register) {
	b := bank.New()
	r := register.New()
	return NewAgentService(b, r, domain.CurrencyEUR), b, r
}

func TestAgentCreate(t *testing.T) {
	s, _, _ := newTestAgentService()

	view, err := s.Create(CreateAgentRequest{
		AgentID: "alice",
		Cash:    100,
		Goods:   map[domain.GoodType]float64{domain.GoodWheat: 10},
		Properties: []domain.PropertyClass{
			domain.PropertyRealEstate,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.AgentID("alice"), view.AgentID)
	assert.Equal(t, 100.0, view.Cash)
	assert.Equal(t, domain.CurrencyEUR, view.Currency)
	assert.Equal(t, 10.0, view.Goods[domain.GoodWheat])
	assert.Len(t, view.Properties, 1)
	assert.True(t, s.Exists("alice"))
}

func TestAgentCreate_Validation(t *testing.T) {
	s, _, _ := newTestAgentService()

	cases := []struct {
		name string
		req  CreateAgentRequest
	}{
		{"empty id", CreateAgentRequest{}},
		{"negative cash", CreateAgentRequest{AgentID: "a", Cash: -1}},
		{"unknown good", CreateAgentRequest{AgentID: "a", Goods: map[domain.GoodType]float64{"plutonium": 1}}},
		{"negative good amount", CreateAgentRequest{AgentID: "a", Goods: map[domain.GoodType]float64{domain.GoodWheat: -1}}},
		{"unknown property class", CreateAgentRequest{AgentID: "a", Properties: []domain.PropertyClass{"castle"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Create(tc.req)
			var vErr *domain.ValidationError
			assert.ErrorAs(t, err, &vErr)
		})
	}
}

func TestAgentCreate_Duplicate(t *testing.T) {
	s, _, _ := newTestAgentService()

	_, err := s.Create(CreateAgentRequest{AgentID: "alice"})
	require.NoError(t, err)

	_, err = s.Create(CreateAgentRequest{AgentID: "alice"})
	assert.ErrorIs(t, err, domain.ErrAgentExists)
}

func TestAgentGet_Unknown(t *testing.T) {
	s, _, _ := newTestAgentService()
	_, err := s.Get("nobody")
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)
}

func TestCurrencyAccount_OpensOnceAndReuses(t *testing.T) {
	s, b, _ := newTestAgentService()
	_, err := s.Create(CreateAgentRequest{AgentID: "alice"})
	require.NoError(t, err)

	acc1, auth1, err := s.CurrencyAccount("alice", domain.CurrencyUSD)
	require.NoError(t, err)
	acc2, auth2, err := s.CurrencyAccount("alice", domain.CurrencyUSD)
	require.NoError(t, err)

	assert.Equal(t, acc1, acc2)
	assert.Equal(t, auth1, auth2)

	balance, currency, err := b.Balance(acc1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, balance)
	assert.Equal(t, domain.CurrencyUSD, currency)
}

func TestDepositForeign(t *testing.T) {
	s, b, _ := newTestAgentService()
	_, err := s.Create(CreateAgentRequest{AgentID: "alice"})
	require.NoError(t, err)

	require.NoError(t, s.DepositForeign("alice", domain.CurrencyUSD, 50))

	acc, _, err := s.CurrencyAccount("alice", domain.CurrencyUSD)
	require.NoError(t, err)
	balance, _, err := b.Balance(acc)
	require.NoError(t, err)
	assert.Equal(t, 50.0, balance)

	// The endowment shows up in the journal like any other transfer.
	journal := b.Journal()
	require.NotEmpty(t, journal)
	assert.Equal(t, acc, journal[len(journal)-1].To)

	assert.ErrorIs(t, s.DepositForeign("alice", domain.CurrencyUSD, 0), domain.ErrNonPositiveAmount)
	assert.ErrorIs(t, s.DepositForeign("nobody", domain.CurrencyUSD, 5), domain.ErrAgentNotFound)
}
