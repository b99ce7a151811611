package memory

import (
	"sort"
	"time"

	"ai-ops-copilot-be/pkg/ticket"

	"github.com/patrickmn/go-cache"
)

// TicketRecord wraps an accepted ticket with intake bookkeeping.
type TicketRecord struct {
	Ticket     ticket.Ticket
	ReceivedAt time.Time
}

// TicketRepository keeps accepted tickets in memory. Workflow state lives in
// the checkpoint store; this only answers "what tickets have we seen".
type TicketRepository struct {
	cache *cache.Cache
}

func NewTicketRepository() *TicketRepository {
	return &TicketRepository{
		cache: cache.New(cache.NoExpiration, 10*time.Minute),
	}
}

func (r *TicketRepository) Save(record *TicketRecord) {
	r.cache.Set(record.Ticket.TicketID, record, cache.NoExpiration)
}

func (r *TicketRepository) Get(ticketID string) (*TicketRecord, bool) {
	if x, found := r.cache.Get(ticketID); found {
		return x.(*TicketRecord), true
	}
	return nil, false
}

func (r *TicketRepository) Delete(ticketID string) {
	r.cache.Delete(ticketID)
}

// List returns every stored ticket, newest first.
func (r *TicketRepository) List() []*TicketRecord {
	items := r.cache.Items()
	records := make([]*TicketRecord, 0, len(items))
	for _, item := range items {
		records = append(records, item.Object.(*TicketRecord))
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ReceivedAt.After(records[j].ReceivedAt)
	})
	return records
}
