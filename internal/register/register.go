// Package register provides the ownership register collaborator: who holds
// how much of each good, and who owns which property title.
package register

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mwolff/settlex/internal/domain"
)

// property is one registered title.
type property struct {
	class domain.PropertyClass
	owner domain.AgentID
}

// Register is a thread-safe in-memory ownership register.
type Register struct {
	mu         sync.Mutex
	goods      map[domain.AgentID]map[domain.GoodType]float64
	properties map[domain.PropertyID]*property
}

// New creates an empty Register.
func New() *Register {
	return &Register{
		goods:      make(map[domain.AgentID]map[domain.GoodType]float64),
		properties: make(map[domain.PropertyID]*property),
	}
}

// GrantGood credits amount of the good to the agent, creating the inventory
// on first use. Used for initial endowments and production output.
func (r *Register) GrantGood(agent domain.AgentID, good domain.GoodType, amount float64) {
	if amount <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creditLocked(agent, good, amount)
}

// GoodBalance returns how much of the good the agent holds.
func (r *Register) GoodBalance(agent domain.AgentID, good domain.GoodType) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.goods[agent][good]
}

// TransferGood moves amount of the good from one agent to another. The
// source must hold at least the amount (epsilon-tolerant).
func (r *Register) TransferGood(from, to domain.AgentID, good domain.GoodType, amount float64) error {
	if amount <= 0 {
		return domain.ErrNonPositiveAmount
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	held := r.goods[from][good]
	if domain.Lesser(held, amount) {
		return domain.ErrInsufficientQuantity
	}
	r.goods[from][good] = held - amount
	r.creditLocked(to, good, amount)
	return nil
}

// RegisterProperty creates a new property title of the given class owned by
// the agent and returns its ID.
func (r *Register) RegisterProperty(owner domain.AgentID, class domain.PropertyClass) domain.PropertyID {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := domain.PropertyID(uuid.New().String())
	r.properties[id] = &property{class: class, owner: owner}
	return id
}

// PropertyOwner returns the current owner of a property title.
func (r *Register) PropertyOwner(id domain.PropertyID) (domain.AgentID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.properties[id]
	if !ok {
		return "", domain.ErrNotOwned
	}
	return p.owner, nil
}

// TransferProperty moves a property title from one agent to another. The
// title must exist and be owned by from.
func (r *Register) TransferProperty(from, to domain.AgentID, id domain.PropertyID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.properties[id]
	if !ok || p.owner != from {
		return domain.ErrNotOwned
	}
	p.owner = to
	return nil
}

func (r *Register) creditLocked(agent domain.AgentID, good domain.GoodType, amount float64) {
	inv := r.goods[agent]
	if inv == nil {
		inv = make(map[domain.GoodType]float64)
		r.goods[agent] = inv
	}
	inv[good] += amount
}
