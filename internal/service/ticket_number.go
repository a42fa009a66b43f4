package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/scamguard/support-service/internal/repository"
)

// ticketNumberAttempts bounds the random-suffix uniqueness retry loop.
const ticketNumberAttempts = 5

// Sequencer yields monotonic per-day counters for ticket numbers.
// *persistence.Redis satisfies it.
type Sequencer interface {
	NextTicketSequence(ctx context.Context, dateKey string) (int64, error)
}

// TicketNumberGenerator produces human-readable ticket numbers of the form
// TKT-YYYYMMDD-NNNN. The primary path is a monotonic per-day Redis counter;
// when Redis is unavailable it falls back to a random suffix with a
// uniqueness check against the store.
type TicketNumberGenerator struct {
	sequencer Sequencer
	tickets   repository.TicketRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewTicketNumberGenerator builds the generator. sequencer may be nil.
func NewTicketNumberGenerator(sequencer Sequencer, tickets repository.TicketRepository, logger *zap.Logger) *TicketNumberGenerator {
	return &TicketNumberGenerator{
		sequencer: sequencer,
		tickets:   tickets,
		logger:    logger,
		now:       time.Now,
	}
}

// Generate returns a fresh ticket number embedding today's UTC date.
func (g *TicketNumberGenerator) Generate(ctx context.Context) (string, error) {
	dateKey := g.now().UTC().Format("20060102")

	if g.sequencer != nil {
		seq, err := g.sequencer.NextTicketSequence(ctx, dateKey)
		if err == nil && seq <= 9999 {
			return fmt.Sprintf("TKT-%s-%04d", dateKey, seq), nil
		}
		if err != nil {
			g.logger.Warn("ticket sequence counter unavailable; using random suffix", zap.Error(err))
		}
	}

	return g.randomNumber(ctx, dateKey)
}

func (g *TicketNumberGenerator) randomNumber(ctx context.Context, dateKey string) (string, error) {
	for attempt := 0; attempt < ticketNumberAttempts; attempt++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10000))
		if err != nil {
			return "", err
		}
		candidate := fmt.Sprintf("TKT-%s-%04d", dateKey, n.Int64())

		_, err = g.tickets.GetByNumber(ctx, candidate)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return candidate, nil
		case errors.Is(err, repository.ErrUnavailable):
			// cannot check uniqueness without a store; the insert will fail
			// anyway if the candidate collides
			return candidate, nil
		case err == nil:
			continue
		default:
			return "", err
		}
	}
	return "", fmt.Errorf("no free ticket number after %d attempts", ticketNumberAttempts)
}
