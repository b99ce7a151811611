package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-ops-copilot-be/pkg/ticket"
)

func TestTicketRepositorySaveAndGet(t *testing.T) {
	repo := NewTicketRepository()

	record := &TicketRecord{
		Ticket:     ticket.Ticket{TicketID: "tkt-1", Subject: "login broken"},
		ReceivedAt: time.Now().UTC(),
	}
	repo.Save(record)

	got, found := repo.Get("tkt-1")
	require.True(t, found)
	assert.Equal(t, "login broken", got.Ticket.Subject)

	_, found = repo.Get("missing")
	assert.False(t, found)
}

func TestTicketRepositoryDelete(t *testing.T) {
	repo := NewTicketRepository()
	repo.Save(&TicketRecord{Ticket: ticket.Ticket{TicketID: "tkt-1"}, ReceivedAt: time.Now().UTC()})

	repo.Delete("tkt-1")

	_, found := repo.Get("tkt-1")
	assert.False(t, found)
}

func TestTicketRepositoryListNewestFirst(t *testing.T) {
	repo := NewTicketRepository()
	base := time.Now().UTC()

	repo.Save(&TicketRecord{Ticket: ticket.Ticket{TicketID: "tkt-old"}, ReceivedAt: base.Add(-2 * time.Hour)})
	repo.Save(&TicketRecord{Ticket: ticket.Ticket{TicketID: "tkt-new"}, ReceivedAt: base})
	repo.Save(&TicketRecord{Ticket: ticket.Ticket{TicketID: "tkt-mid"}, ReceivedAt: base.Add(-1 * time.Hour)})

	records := repo.List()
	require.Len(t, records, 3)
	assert.Equal(t, "tkt-new", records[0].Ticket.TicketID)
	assert.Equal(t, "tkt-mid", records[1].Ticket.TicketID)
	assert.Equal(t, "tkt-old", records[2].Ticket.TicketID)
}
