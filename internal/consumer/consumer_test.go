package consumer_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/crypto_converter/internal/consumer"
	"github.com/SscSPs/crypto_converter/internal/core/domain"
	portssvc "github.com/SscSPs/crypto_converter/internal/core/ports/services"
)

// fakeRateSource feeds batches through a channel and records Close calls.
type fakeRateSource struct {
	batches chan domain.RateBatch

	mu         sync.Mutex
	closeCalls int
}

func newFakeRateSource() *fakeRateSource {
	return &fakeRateSource{batches: make(chan domain.RateBatch, 10)}
}

func (f *fakeRateSource) Stream(ctx context.Context) (<-chan domain.RateBatch, error) {
	return f.batches, nil
}

func (f *fakeRateSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCalls++
	if f.closeCalls == 1 {
		close(f.batches)
	}
	return nil
}

func (f *fakeRateSource) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeCalls
}

// --- Mock QuoteStore ---
type MockQuoteStore struct {
	mock.Mock
}

func (m *MockQuoteStore) StoreQuotes(ctx context.Context, quotes []domain.Quote) (*portssvc.StoreQuotesResult, error) {
	args := m.Called(ctx, quotes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.StoreQuotesResult), args.Error(1)
}

// --- Test Suite ---
type ConsumerTestSuite struct {
	suite.Suite
	source *fakeRateSource
	store  *MockQuoteStore
	c      *consumer.Consumer

	batch domain.RateBatch
}

func (suite *ConsumerTestSuite) SetupTest() {
	suite.source = newFakeRateSource()
	suite.store = new(MockQuoteStore)
	suite.c = consumer.New(suite.source, suite.store, slog.Default())

	pair, err := domain.NewPairFromCodes("BTC", "USDT")
	suite.Require().NoError(err)
	rate, err := domain.NewRate(decimal.NewFromInt(25000))
	suite.Require().NoError(err)
	suite.batch = domain.RateBatch{
		Quotes: []domain.Quote{domain.NewQuote(pair, rate, domain.NowUTC())},
	}
}

func (suite *ConsumerTestSuite) runConsumer(ctx context.Context) chan error {
	done := make(chan error, 1)
	go func() { done <- suite.c.Run(ctx) }()
	return done
}

func (suite *ConsumerTestSuite) TestStoresBatches() {
	stored := make(chan struct{}, 1)
	suite.store.On("StoreQuotes", mock.Anything, suite.batch.Quotes).
		Return(&portssvc.StoreQuotesResult{TotalReceived: 1}, nil).
		Run(func(args mock.Arguments) { stored <- struct{}{} }).
		Once()

	done := suite.runConsumer(context.Background())
	suite.source.batches <- suite.batch

	select {
	case <-stored:
	case <-time.After(time.Second):
		suite.FailNow("batch was not stored")
	}

	suite.Require().NoError(suite.c.Stop())
	suite.Require().NoError(<-done)
	suite.store.AssertExpectations(suite.T())
}

func (suite *ConsumerTestSuite) TestSkipsEmptyBatches() {
	done := suite.runConsumer(context.Background())

	suite.source.batches <- domain.RateBatch{}
	suite.source.batches <- domain.RateBatch{}

	time.Sleep(20 * time.Millisecond)

	suite.Require().NoError(suite.c.Stop())
	suite.Require().NoError(<-done)
	suite.store.AssertNotCalled(suite.T(), "StoreQuotes", mock.Anything, mock.Anything)
}

func (suite *ConsumerTestSuite) TestStorageFailureDoesNotStopConsumer() {
	// All attempts for the first batch fail; the second batch still lands.
	firstDone := make(chan struct{}, 3)
	suite.store.On("StoreQuotes", mock.Anything, suite.batch.Quotes).
		Return(nil, assert.AnError).
		Run(func(args mock.Arguments) { firstDone <- struct{}{} }).
		Times(3)

	secondBatch := domain.RateBatch{Quotes: suite.batch.Quotes[:1]}
	secondStored := make(chan struct{}, 1)

	done := suite.runConsumer(context.Background())
	suite.source.batches <- suite.batch

	// Wait for all retry attempts of the failing batch.
	for i := 0; i < 3; i++ {
		select {
		case <-firstDone:
		case <-time.After(10 * time.Second):
			suite.FailNow("retry attempts did not happen")
		}
	}

	suite.store.On("StoreQuotes", mock.Anything, secondBatch.Quotes).
		Return(&portssvc.StoreQuotesResult{TotalReceived: 1}, nil).
		Run(func(args mock.Arguments) { secondStored <- struct{}{} }).
		Once()
	suite.source.batches <- secondBatch

	select {
	case <-secondStored:
	case <-time.After(10 * time.Second):
		suite.FailNow("consumer stopped after storage failure")
	}

	suite.Require().NoError(suite.c.Stop())
	suite.Require().NoError(<-done)
}

func (suite *ConsumerTestSuite) TestStopIsIdempotent() {
	done := suite.runConsumer(context.Background())

	suite.Require().NoError(suite.c.Stop())
	suite.Require().NoError(suite.c.Stop())
	suite.Require().NoError(<-done)
	suite.Equal(1, suite.source.closeCount())
}

func (suite *ConsumerTestSuite) TestStopWithoutRunReturnsPromptly() {
	stopped := make(chan error, 1)
	go func() { stopped <- suite.c.Stop() }()

	select {
	case err := <-stopped:
		suite.NoError(err)
		suite.Equal(1, suite.source.closeCount())
	case <-time.After(time.Second):
		suite.FailNow("Stop blocked without a running consumer")
	}
}

func (suite *ConsumerTestSuite) TestStopsWhenContextCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	done := suite.runConsumer(ctx)

	cancel()

	select {
	case err := <-done:
		require.NoError(suite.T(), err)
	case <-time.After(time.Second):
		suite.FailNow("consumer did not stop on context cancellation")
	}
}

func TestConsumer(t *testing.T) {
	suite.Run(t, new(ConsumerTestSuite))
}
