package domain

// AgentID identifies a market participant (household, firm, bank or state).
// The core never inspects agents beyond their identity; accounts, holdings
// and behaviours are looked up by this ID in the respective collaborators.
type AgentID string

// PropertyID identifies a single property title in the ownership register.
type PropertyID string

// AccountID identifies a bank account. Settlement only ever passes account
// IDs around; balances stay behind the banking collaborator.
type AccountID string
