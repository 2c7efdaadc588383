package service

import (
	"sync"

	"github.com/mwolff/settlex/internal/bank"
	"github.com/mwolff/settlex/internal/domain"
	"github.com/mwolff/settlex/internal/register"
)

// CreateAgentRequest is the input for agent registration.
type CreateAgentRequest struct {
	AgentID    domain.AgentID
	Cash       float64
	Goods      map[domain.GoodType]float64
	Properties []domain.PropertyClass
}

// AgentView is the service-level representation of a registered agent.
type AgentView struct {
	AgentID    domain.AgentID
	Account    domain.AccountID
	Cash       float64
	Currency   domain.Currency
	Goods      map[domain.GoodType]float64
	Properties []domain.PropertyID
}

// agentRecord holds the accounts the service manages on behalf of an
// agent, including the authorization secrets needed to buy.
type agentRecord struct {
	account          domain.AccountID
	auth             string
	currencyAccounts map[domain.Currency]domain.AccountID
	currencyAuths    map[domain.Currency]string
	properties       []domain.PropertyID
}

// AgentService registers simulation agents and manages their bank accounts
// and endowments.
type AgentService struct {
	bank     *bank.Bank
	register *register.Register
	currency domain.Currency

	mu     sync.RWMutex
	agents map[domain.AgentID]*agentRecord
}

// NewAgentService creates an AgentService opening accounts in the given
// settlement currency.
func NewAgentService(b *bank.Bank, r *register.Register, currency domain.Currency) *AgentService {
	return &AgentService{
		bank:     b,
		register: r,
		currency: currency,
		agents:   make(map[domain.AgentID]*agentRecord),
	}
}

// Create registers an agent: opens its settlement account with the given
// opening cash, grants initial goods and registers initial property titles.
func (s *AgentService) Create(req CreateAgentRequest) (*AgentView, error) {
	if req.AgentID == "" {
		return nil, &domain.ValidationError{Message: "agent_id is required"}
	}
	if req.Cash < 0 {
		return nil, &domain.ValidationError{Message: "cash must be >= 0"}
	}
	for good, amount := range req.Goods {
		if !good.Valid() {
			return nil, &domain.ValidationError{Message: "unknown good type: " + string(good)}
		}
		if amount < 0 {
			return nil, &domain.ValidationError{Message: "good amounts must be >= 0"}
		}
	}
	for _, class := range req.Properties {
		if !class.Valid() {
			return nil, &domain.ValidationError{Message: "unknown property class: " + string(class)}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.agents[req.AgentID]; exists {
		return nil, domain.ErrAgentExists
	}

	account, auth := s.bank.OpenAccount(req.AgentID, s.currency, req.Cash)
	rec := &agentRecord{
		account:          account,
		auth:             auth,
		currencyAccounts: make(map[domain.Currency]domain.AccountID),
		currencyAuths:    make(map[domain.Currency]string),
	}

	for good, amount := range req.Goods {
		s.register.GrantGood(req.AgentID, good, amount)
	}
	for _, class := range req.Properties {
		rec.properties = append(rec.properties, s.register.RegisterProperty(req.AgentID, class))
	}

	s.agents[req.AgentID] = rec
	return s.viewLocked(req.AgentID, rec), nil
}

// Get returns the agent's current balances and holdings.
func (s *AgentService) Get(id domain.AgentID) (*AgentView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.agents[id]
	if !ok {
		return nil, domain.ErrAgentNotFound
	}
	return s.viewLocked(id, rec), nil
}

// Exists returns true if the agent is registered.
func (s *AgentService) Exists(id domain.AgentID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.agents[id]
	return ok
}

// Account returns the agent's settlement account and authorization.
func (s *AgentService) Account(id domain.AgentID) (domain.AccountID, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.agents[id]
	if !ok {
		return "", "", domain.ErrAgentNotFound
	}
	return rec.account, rec.auth, nil
}

// CurrencyAccount returns the agent's account denominated in the given
// foreign currency, opening an empty one on first use. Currency-lot
// trading needs one on both sides: the seller funds it with the offered
// currency, the buyer receives into it.
func (s *AgentService) CurrencyAccount(id domain.AgentID, currency domain.Currency) (domain.AccountID, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.agents[id]
	if !ok {
		return "", "", domain.ErrAgentNotFound
	}
	if acc, ok := rec.currencyAccounts[currency]; ok {
		return acc, rec.currencyAuths[currency], nil
	}

	acc, auth := s.bank.OpenAccount(id, currency, 0)
	rec.currencyAccounts[currency] = acc
	rec.currencyAuths[currency] = auth
	return acc, auth, nil
}

// DepositForeign credits the agent's foreign-currency account, opening it
// if needed. Used to endow currency sellers.
func (s *AgentService) DepositForeign(id domain.AgentID, currency domain.Currency, amount float64) error {
	if amount <= 0 {
		return domain.ErrNonPositiveAmount
	}

	// Fund via an ephemeral source account so the deposit shows up in the
	// bank journal like any other transfer.
	acc, _, err := s.CurrencyAccount(id, currency)
	if err != nil {
		return err
	}
	src, srcAuth := s.bank.OpenAccount("mint", currency, amount)
	return s.bank.Transfer(src, acc, amount, srcAuth, "foreign currency endowment")
}

func (s *AgentService) viewLocked(id domain.AgentID, rec *agentRecord) *AgentView {
	balance, currency, _ := s.bank.Balance(rec.account)

	goods := make(map[domain.GoodType]float64)
	for _, g := range []domain.GoodType{
		domain.GoodWheat, domain.GoodCoal, domain.GoodIron, domain.GoodGold,
		domain.GoodKilowatt, domain.GoodLabourHour, domain.GoodConsumption,
	} {
		if amount := s.register.GoodBalance(id, g); amount > 0 {
			goods[g] = amount
		}
	}

	props := make([]domain.PropertyID, 0, len(rec.properties))
	for _, p := range rec.properties {
		if owner, err := s.register.PropertyOwner(p); err == nil && owner == id {
			props = append(props, p)
		}
	}

	return &AgentView{
		AgentID:    id,
		Account:    rec.account,
		Cash:       balance,
		Currency:   currency,
		Goods:      goods,
		Properties: props,
	}
}
