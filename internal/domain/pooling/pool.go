package pooling

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrInvalidPool = errors.New("pool proposal is not valid")

// Pool is the immutable record of one redistribution.
type Pool struct {
	ID        uuid.UUID       `json:"id"`
	Year      int             `json:"year"`
	TotalCB   decimal.Decimal `json:"total_cb"`
	Members   []*PoolMember   `json:"members"`
	CreatedAt time.Time       `json:"created_at"`
}

type PoolMember struct {
	ID       uuid.UUID       `json:"id"`
	PoolID   uuid.UUID       `json:"pool_id"`
	ShipID   string          `json:"ship_id"`
	CBBefore decimal.Decimal `json:"cb_before"`
	CBAfter  decimal.Decimal `json:"cb_after"`
}

// NewPool freezes a valid proposal into a pool record.
func NewPool(result *ValidationResult) (*Pool, error) {
	if result == nil || !result.IsValid {
		return nil, ErrInvalidPool
	}

	pool := &Pool{
		ID:        uuid.New(),
		Year:      result.Year,
		TotalCB:   result.TotalCB,
		Members:   make([]*PoolMember, 0, len(result.Members)),
		CreatedAt: time.Now(),
	}
	for _, m := range result.Members {
		if m.CBAfter == nil {
			return nil, ErrInvalidPool
		}
		pool.Members = append(pool.Members, &PoolMember{
			ID:       uuid.New(),
			PoolID:   pool.ID,
			ShipID:   m.ShipID,
			CBBefore: m.CBBefore,
			CBAfter:  *m.CBAfter,
		})
	}
	return pool, nil
}

// ShipIDs lists member ships in pool order
func (p *Pool) ShipIDs() []string {
	ids := make([]string, 0, len(p.Members))
	for _, m := range p.Members {
		ids = append(ids, m.ShipID)
	}
	return ids
}
