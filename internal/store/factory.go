package store

import (
	"factlog.app/api/core/db"
)

// Stores provides typed accessors bound to a querier, which is either the
// connection pool or an open transaction.
type Stores struct {
	q db.Querier
}

func NewStores(q db.Querier) *Stores {
	return &Stores{q: q}
}

func (s *Stores) Facts() FactStore {
	return newFactStore(s.q)
}

func (s *Stores) Integrations() IntegrationStore {
	return newIntegrationStore(s.q)
}

func (s *Stores) Settings() SettingStore {
	return newSettingStore(s.q)
}
