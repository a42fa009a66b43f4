package service_test

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scamguard/support-service/internal/mocks"
	"github.com/scamguard/support-service/internal/service"
)

var ticketNumberFormat = regexp.MustCompile(`^TKT-\d{8}-\d{4}$`)

func TestGenerateUsesSequenceCounter(t *testing.T) {
	dateKey := time.Now().UTC().Format("20060102")

	sequencer := new(mocks.Sequencer)
	sequencer.On("NextTicketSequence", mock.Anything, dateKey).Return(int64(42), nil)
	tickets := new(mocks.TicketRepository)

	gen := service.NewTicketNumberGenerator(sequencer, tickets, zap.NewNop())
	number, err := gen.Generate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("TKT-%s-0042", dateKey), number)
	tickets.AssertNotCalled(t, "GetByNumber", mock.Anything, mock.Anything)
}

func TestGenerateFallsBackToRandomSuffix(t *testing.T) {
	sequencer := new(mocks.Sequencer)
	sequencer.On("NextTicketSequence", mock.Anything, mock.Anything).Return(int64(0), errors.New("connection refused"))
	tickets := new(mocks.TicketRepository)
	tickets.On("GetByNumber", mock.Anything, mock.Anything).Return(nil, pgx.ErrNoRows)

	gen := service.NewTicketNumberGenerator(sequencer, tickets, zap.NewNop())
	number, err := gen.Generate(context.Background())

	require.NoError(t, err)
	assert.Regexp(t, ticketNumberFormat, number)
}

func TestGenerateSequenceOverflowUsesRandomSuffix(t *testing.T) {
	sequencer := new(mocks.Sequencer)
	sequencer.On("NextTicketSequence", mock.Anything, mock.Anything).Return(int64(10001), nil)
	tickets := new(mocks.TicketRepository)
	tickets.On("GetByNumber", mock.Anything, mock.Anything).Return(nil, pgx.ErrNoRows)

	gen := service.NewTicketNumberGenerator(sequencer, tickets, zap.NewNop())
	number, err := gen.Generate(context.Background())

	require.NoError(t, err)
	assert.Regexp(t, ticketNumberFormat, number)
}

func TestGenerateWithoutSequencer(t *testing.T) {
	tickets := new(mocks.TicketRepository)
	tickets.On("GetByNumber", mock.Anything, mock.Anything).Return(nil, pgx.ErrNoRows)

	gen := service.NewTicketNumberGenerator(nil, tickets, zap.NewNop())
	number, err := gen.Generate(context.Background())

	require.NoError(t, err)
	assert.Regexp(t, ticketNumberFormat, number)
	assert.Contains(t, number, time.Now().UTC().Format("20060102"))
}
