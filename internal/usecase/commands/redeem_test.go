//go:build unit

package commands_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merch-api/internal/domain/pricing"
	"merch-api/internal/domain/product"
	"merch-api/internal/domain/redemption"
	"merch-api/internal/domain/user"
	reqdto "merch-api/internal/handler/dto/request"
	"merch-api/internal/infra"
	"merch-api/internal/infra/db"
	"merch-api/internal/pkg/clock"
	"merch-api/internal/pkg/config"
	"merch-api/internal/pkg/errs"
	"merch-api/internal/usecase/commands"
	"merch-api/internal/usecase/queries"
)

// --- Fakes ---

type fakeTx struct {
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *fakeTx) Begin(context.Context) (pgx.Tx, error) { return t, nil }

func (t *fakeTx) Commit(context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

func (t *fakeTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *fakeTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (t *fakeTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (t *fakeTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *fakeTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (t *fakeTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (t *fakeTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (t *fakeTx) Conn() *pgx.Conn                                         { return nil }

type fakeDB struct {
	mu       sync.Mutex
	txs      []*fakeTx
	beginErr error
}

func (d *fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (d *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (d *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }

func (d *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	if d.beginErr != nil {
		return nil, d.beginErr
	}
	tx := &fakeTx{}
	d.mu.Lock()
	d.txs = append(d.txs, tx)
	d.mu.Unlock()
	return tx, nil
}

type fakeUserRepo struct {
	mu           sync.Mutex
	snapshot     *commands.UserSnapshot
	passwordHash string
	balance      int64
	debits       []int64
	created      []*user.User
	findErr      error
	debitErr     error
	createErr    error
	lastLogin    int
}

func (r *fakeUserRepo) FindSnapshotByID(_ context.Context, id uuid.UUID) (*commands.UserSnapshot, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if r.snapshot == nil || r.snapshot.ID != id {
		return nil, infra.WrapRepoErr("user not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	s := *r.snapshot
	return &s, nil
}

func (r *fakeUserRepo) FindSnapshotByEmail(_ context.Context, email string) (*commands.UserSnapshot, string, error) {
	if r.snapshot == nil || r.snapshot.Email != email {
		return nil, "", infra.WrapRepoErr("user not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	s := *r.snapshot
	return &s, r.passwordHash, nil
}

func (r *fakeUserRepo) Create(_ context.Context, _ db.DBTX, u *user.User) (uuid.UUID, error) {
	if r.createErr != nil {
		return uuid.Nil, r.createErr
	}
	r.created = append(r.created, u)
	return u.ID(), nil
}

func (r *fakeUserRepo) UpdateLastLogin(context.Context, db.DBTX, uuid.UUID) error {
	r.lastLogin++
	return nil
}

func (r *fakeUserRepo) DebitCredits(_ context.Context, _ db.DBTX, _ uuid.UUID, credits int64) error {
	if r.debitErr != nil {
		return r.debitErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.balance < credits {
		return infra.WrapRepoErr("insufficient credits", nil, infra.KindConflict)
	}
	r.balance -= credits
	r.debits = append(r.debits, credits)
	return nil
}

// fakeRedemptionStore backs both the write repository and the read queries, so
// a committed redemption can be read back by ID.
type fakeRedemptionStore struct {
	mu        sync.Mutex
	created   []*redemption.Redemption
	views     map[uuid.UUID]*queries.RedemptionView
	createErr error
}

func newFakeRedemptionStore() *fakeRedemptionStore {
	return &fakeRedemptionStore{views: make(map[uuid.UUID]*queries.RedemptionView)}
}

func (s *fakeRedemptionStore) Create(_ context.Context, _ db.DBTX, r *redemption.Redemption) (uuid.UUID, error) {
	if s.createErr != nil {
		return uuid.Nil, s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, r)
	s.views[r.ID()] = &queries.RedemptionView{
		ID:               r.ID(),
		UserID:           r.UserID(),
		ProductID:        r.ProductID(),
		CreditsUsed:      r.CreditsUsed(),
		CashAmount:       r.CashAmount(),
		TotalAmount:      r.TotalAmount(),
		PaymentReference: r.PaymentReference(),
		Status:           r.Status().String(),
	}
	return r.ID(), nil
}

func (s *fakeRedemptionStore) GetByID(_ context.Context, id uuid.UUID) (*queries.RedemptionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[id]
	if !ok {
		return nil, queries.ErrRedemptionNotFound
	}
	return v, nil
}

func (s *fakeRedemptionStore) ListByUser(context.Context, uuid.UUID) ([]*queries.RedemptionView, error) {
	return nil, nil
}

func (s *fakeRedemptionStore) byStatus(status redemption.Status) []*redemption.Redemption {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*redemption.Redemption
	for _, r := range s.created {
		if r.Status() == status {
			out = append(out, r)
		}
	}
	return out
}

type fakeIdempotencyRepo struct {
	mu        sync.Mutex
	records   map[uuid.UUID]*commands.IdempotencyRecord
	updateErr error
}

func newFakeIdempotencyRepo() *fakeIdempotencyRepo {
	return &fakeIdempotencyRepo{records: make(map[uuid.UUID]*commands.IdempotencyRecord)}
}

func (r *fakeIdempotencyRepo) TryInsert(_ context.Context, key, userID uuid.UUID, _ string, requestHash string, expiresAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[key]; exists {
		return false, nil
	}
	r.records[key] = &commands.IdempotencyRecord{
		Key:         key,
		UserID:      userID,
		Status:      "processing",
		RequestHash: requestHash,
		ExpiresAt:   expiresAt,
	}
	return true, nil
}

func (r *fakeIdempotencyRepo) Get(_ context.Context, key, _ uuid.UUID) (*commands.IdempotencyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[key]
	if !ok {
		return nil, infra.WrapRepoErr("idempotency key not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeIdempotencyRepo) UpdateStatusCompleted(_ context.Context, _ db.DBTX, key, _ uuid.UUID, _ string, resultRedemptionID uuid.UUID) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[key]
	if !ok {
		return infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	rec.Status = "completed"
	rec.ResultRedemptionID = &resultRedemptionID
	return nil
}

func (r *fakeIdempotencyRepo) Release(_ context.Context, key, _ uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[key]; ok && rec.Status == "processing" {
		delete(r.records, key)
	}
	return nil
}

func (r *fakeIdempotencyRepo) record(key uuid.UUID) *commands.IdempotencyRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[key]
	if !ok {
		return nil
	}
	cp := *rec
	return &cp
}

type fakeProductSource struct {
	byID map[string]*product.Product
}

func (s *fakeProductSource) Resolve(_ context.Context, id string) (*product.Product, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakeProductSource) List(context.Context) ([]product.Product, error) { return nil, nil }

type fakePayment struct {
	mu      sync.Mutex
	calls   int
	amounts []int64
	err     error
}

func (p *fakePayment) Authorize(_ context.Context, amountMinorUnits int64, _ string, _ commands.PaymentMetadata) (*commands.PaymentAuthorization, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	p.calls++
	p.amounts = append(p.amounts, amountMinorUnits)
	return &commands.PaymentAuthorization{ID: "pi_test_123", ClientSecret: "pi_test_123_secret"}, nil
}

// --- Helpers ---

type redeemFixture struct {
	users       *fakeUserRepo
	redemptions *fakeRedemptionStore
	idempotency *fakeIdempotencyRepo
	payment     *fakePayment
	db          *fakeDB
	uc          commands.RedeemCommands
	userID      uuid.UUID
}

func newRedeemFixture(t *testing.T, credits, pendingCredits int64) *redeemFixture {
	t.Helper()

	userID := uuid.New()
	users := &fakeUserRepo{
		snapshot: &commands.UserSnapshot{
			ID:             userID,
			Email:          "member@example.com",
			Role:           "member",
			Credits:        credits,
			PendingCredits: pendingCredits,
			IsActive:       true,
		},
		balance: credits,
	}
	redemptions := newFakeRedemptionStore()
	idempotency := newFakeIdempotencyRepo()
	payment := &fakePayment{}
	fdb := &fakeDB{}

	products := &fakeProductSource{byID: map[string]*product.Product{
		"demo-1": {ID: "demo-1", Name: "Premium T-Shirt", Price: decimal.RequireFromString("29.99"), Category: product.CategoryApparel, InStock: true},
		"demo-9": {ID: "demo-9", Name: "Out of Stock Mug", Price: decimal.RequireFromString("19.99"), Category: product.CategoryDrinkware, InStock: false},
	}}

	uc := commands.NewRedeemCommands(
		users,
		redemptions,
		idempotency,
		products,
		pricing.NewCalculator(pricing.DefaultConfig()),
		payment,
		config.NewTestConfig(),
		redemptions,
		fdb,
		clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
	)

	return &redeemFixture{
		users:       users,
		redemptions: redemptions,
		idempotency: idempotency,
		payment:     payment,
		db:          fdb,
		uc:          uc,
		userID:      userID,
	}
}

func validRedeemRequest(credits int64) reqdto.RedeemRequest {
	return reqdto.RedeemRequest{
		ProductID:    "demo-1",
		CreditsToUse: credits,
		ShippingAddress: reqdto.ShippingAddressRequest{
			Street:  "1 Main St",
			City:    "Springfield",
			State:   "IL",
			ZipCode: "62701",
		},
	}
}

func requestHash(t *testing.T, req reqdto.RedeemRequest) string {
	t.Helper()
	data, err := json.Marshal(req)
	require.NoError(t, err)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// --- Tests ---

func TestRedeem_Success(t *testing.T) {
	f := newRedeemFixture(t, 2500, 0)
	key := uuid.New()

	result, err := f.uc.Redeem(context.Background(), validRedeemRequest(1000), f.userID, key)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsReplayed)

	// 29.99 at 60% cap allows 599 credits; the request of 1000 is clamped.
	require.Len(t, f.users.debits, 1)
	assert.Equal(t, int64(599), f.users.debits[0])

	// Total 12.02 + 5.99 + 2.3992 = 20.4092 charges as 2041 cents.
	require.Equal(t, 1, f.payment.calls)
	assert.Equal(t, int64(2041), f.payment.amounts[0])

	require.Len(t, f.redemptions.created, 1)
	created := f.redemptions.created[0]
	assert.Equal(t, redemption.StatusPending, created.Status())
	assert.Equal(t, int64(599), created.CreditsUsed())
	assert.True(t, created.CashAmount().Equal(decimal.RequireFromString("12.02")))
	assert.Equal(t, "pi_test_123", created.PaymentReference())

	assert.Equal(t, "pending", result.Redemption.Status)

	require.Len(t, f.db.txs, 1)
	assert.True(t, f.db.txs[0].committed)

	// A first-time key must be claimed and finish completed, not trip over
	// its own just-created processing row.
	rec := f.idempotency.record(key)
	require.NotNil(t, rec)
	assert.Equal(t, "completed", rec.Status)
	require.NotNil(t, rec.ResultRedemptionID)
	assert.Equal(t, created.ID(), *rec.ResultRedemptionID)
}

func TestRedeem_UserNotFound(t *testing.T) {
	f := newRedeemFixture(t, 2500, 0)

	_, err := f.uc.Redeem(context.Background(), validRedeemRequest(100), uuid.New(), uuid.New())
	require.ErrorIs(t, err, commands.ErrUserNotFound)
	assert.Zero(t, f.payment.calls)
}

func TestRedeem_PendingCreditsBlock(t *testing.T) {
	f := newRedeemFixture(t, 2500, 150)

	_, err := f.uc.Redeem(context.Background(), validRedeemRequest(100), f.userID, uuid.New())
	require.ErrorIs(t, err, commands.ErrPendingCredits)
	assert.Zero(t, f.payment.calls)
	assert.Empty(t, f.users.debits)
}

func TestRedeem_ProductNotFound(t *testing.T) {
	f := newRedeemFixture(t, 2500, 0)

	req := validRedeemRequest(100)
	req.ProductID = "missing"
	_, err := f.uc.Redeem(context.Background(), req, f.userID, uuid.New())
	require.ErrorIs(t, err, commands.ErrProductNotFound)
	assert.Zero(t, f.payment.calls)
}

func TestRedeem_OutOfStockProduct(t *testing.T) {
	f := newRedeemFixture(t, 2500, 0)

	req := validRedeemRequest(100)
	req.ProductID = "demo-9"
	_, err := f.uc.Redeem(context.Background(), req, f.userID, uuid.New())
	require.ErrorIs(t, err, commands.ErrProductNotFound)
	assert.Zero(t, f.payment.calls)
}

func TestRedeem_InsufficientCredits(t *testing.T) {
	// Balance below the clamped spend of 599.
	f := newRedeemFixture(t, 100, 0)

	_, err := f.uc.Redeem(context.Background(), validRedeemRequest(599), f.userID, uuid.New())
	require.ErrorIs(t, err, commands.ErrInsufficientCredits)
	assert.Zero(t, f.payment.calls)
	assert.Empty(t, f.users.debits)
}

func TestRedeem_IncompleteAddress(t *testing.T) {
	f := newRedeemFixture(t, 2500, 0)

	req := validRedeemRequest(100)
	req.ShippingAddress.City = ""
	_, err := f.uc.Redeem(context.Background(), req, f.userID, uuid.New())
	require.True(t, errs.Is(err, commands.ErrInvalidRedemption), "got %v", err)
	assert.Zero(t, f.payment.calls)
}

func TestRedeem_PaymentFailure(t *testing.T) {
	f := newRedeemFixture(t, 2500, 0)
	f.payment.err = errors.New("stripe: connection refused")

	_, err := f.uc.Redeem(context.Background(), validRedeemRequest(100), f.userID, uuid.New())
	require.True(t, errs.Is(err, commands.ErrPaymentUnavailable), "got %v", err)
	assert.Empty(t, f.users.debits)
	assert.Empty(t, f.redemptions.created)
}

func TestRedeem_ReplayCompletedRequest(t *testing.T) {
	f := newRedeemFixture(t, 2500, 0)
	key := uuid.New()
	req := validRedeemRequest(1000)

	first, err := f.uc.Redeem(context.Background(), req, f.userID, key)
	require.NoError(t, err)

	second, err := f.uc.Redeem(context.Background(), req, f.userID, key)
	require.NoError(t, err)
	assert.True(t, second.IsReplayed)
	if diff := cmp.Diff(first.Redemption, second.Redemption); diff != "" {
		t.Errorf("replayed view mismatch (-first +second):\n%s", diff)
	}

	// The replay must not debit or charge again.
	assert.Len(t, f.users.debits, 1)
	assert.Equal(t, 1, f.payment.calls)
	assert.Len(t, f.redemptions.created, 1)
}

func TestRedeem_InProgressSameRequest(t *testing.T) {
	f := newRedeemFixture(t, 2500, 0)
	key := uuid.New()
	req := validRedeemRequest(100)

	claimed, err := f.idempotency.TryInsert(context.Background(), key, f.userID,
		"POST /merch/redeem", requestHash(t, req), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.True(t, claimed)

	_, err = f.uc.Redeem(context.Background(), req, f.userID, key)
	require.ErrorIs(t, err, commands.ErrIdempotencyInProgress)
	assert.Zero(t, f.payment.calls)
}

func TestRedeem_DuplicateKeyDifferentRequest(t *testing.T) {
	f := newRedeemFixture(t, 2500, 0)
	key := uuid.New()

	claimed, err := f.idempotency.TryInsert(context.Background(), key, f.userID,
		"POST /merch/redeem", "some-other-request-hash", time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.True(t, claimed)

	_, err = f.uc.Redeem(context.Background(), validRedeemRequest(100), f.userID, key)
	require.ErrorIs(t, err, commands.ErrDuplicateRedemption)
	assert.Zero(t, f.payment.calls)
}

func TestRedeem_DebitRaceWritesFailedRecord(t *testing.T) {
	f := newRedeemFixture(t, 2500, 0)
	// Snapshot passes the pre-check, but the conditional debit loses the race.
	f.users.debitErr = infra.WrapRepoErr("insufficient credits", nil, infra.KindConflict)

	_, err := f.uc.Redeem(context.Background(), validRedeemRequest(1000), f.userID, uuid.New())
	require.ErrorIs(t, err, commands.ErrInsufficientCredits)

	// Payment was authorized before the debit, so a compensating failed
	// record must carry the payment reference.
	require.Equal(t, 1, f.payment.calls)
	failed := f.redemptions.byStatus(redemption.StatusFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "pi_test_123", failed[0].PaymentReference())
}

func TestRedeem_CompletionMarkFailureWritesFailedRecord(t *testing.T) {
	f := newRedeemFixture(t, 2500, 0)
	f.idempotency.updateErr = errors.New("connection reset")

	_, err := f.uc.Redeem(context.Background(), validRedeemRequest(1000), f.userID, uuid.New())
	require.True(t, errs.Is(err, commands.ErrDatabaseOperationFailed), "got %v", err)

	// The payment intent was already authorized; the aborted transaction must
	// still leave a failed record carrying the reference.
	require.Equal(t, 1, f.payment.calls)
	failed := f.redemptions.byStatus(redemption.StatusFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "pi_test_123", failed[0].PaymentReference())
}

func TestRedeem_RetryAfterFailureWithSameKey(t *testing.T) {
	f := newRedeemFixture(t, 2500, 0)
	key := uuid.New()
	req := validRedeemRequest(1000)

	f.payment.err = errors.New("stripe: connection refused")
	_, err := f.uc.Redeem(context.Background(), req, f.userID, key)
	require.True(t, errs.Is(err, commands.ErrPaymentUnavailable), "got %v", err)

	// The aborted attempt must release its claim instead of leaving the key
	// stuck in processing until expiry.
	require.Nil(t, f.idempotency.record(key))

	f.payment.err = nil
	result, err := f.uc.Redeem(context.Background(), req, f.userID, key)
	require.NoError(t, err)
	assert.False(t, result.IsReplayed)
	assert.Equal(t, []int64{599}, f.users.debits)
	assert.Equal(t, 1, f.payment.calls)
}

func TestRedeem_ConcurrentOverdraft(t *testing.T) {
	// Enough balance for exactly one clamped redemption of 599 credits.
	f := newRedeemFixture(t, 599, 0)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.uc.Redeem(context.Background(), validRedeemRequest(599), f.userID, uuid.New())
			results[i] = err
		}(i)
	}
	wg.Wait()

	var succeeded, insufficient int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, commands.ErrInsufficientCredits):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, []int64{599}, f.users.debits)
}
