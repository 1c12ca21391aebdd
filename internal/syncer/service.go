// Package syncer coordinates credential use, incremental windowing,
// per-account fetching, batch persistence and balance refresh against the
// aggregation provider.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jcarver/ledgerlink/internal/account"
	"github.com/jcarver/ledgerlink/internal/enrollment"
	"github.com/jcarver/ledgerlink/internal/money"
	"github.com/jcarver/ledgerlink/internal/provider"
	"github.com/jcarver/ledgerlink/internal/transaction"
)

const (
	// lookbackDays is the window for an enrollment's very first sync.
	lookbackDays = 90
	// overlapDays re-fetches a trailing band of already-synced days to
	// catch transactions the provider reports late. The upsert key
	// absorbs the duplicates as no-op updates.
	overlapDays = 5

	// initialSyncTimeout bounds the fire-and-forget sync after connect.
	initialSyncTimeout = 5 * time.Minute
)

// ErrSyncInProgress is returned when another sync already holds the
// enrollment's lease. Callers log and skip; the running sync covers them.
var ErrSyncInProgress = errors.New("sync already in progress for enrollment")

//go:generate mockgen -source=service.go -destination=service_mock.go -package=syncer
type EnrollmentRepository interface {
	Create(ctx context.Context, e *enrollment.Enrollment) error
	Get(ctx context.Context, id uuid.UUID) (*enrollment.Enrollment, error)
	AdvanceWatermark(ctx context.Context, id uuid.UUID, syncedDate, syncedAt time.Time) error
}

type AccountRepository interface {
	Upsert(ctx context.Context, a *account.Account) error
	ListByEnrollment(ctx context.Context, enrollmentID uuid.UUID) ([]*account.Account, error)
	UpdateBalances(ctx context.Context, id uuid.UUID, current, available *money.Money, syncedAt time.Time) error
}

type TransactionRepository interface {
	BatchUpsert(ctx context.Context, params []transaction.UpsertParams) (transaction.BatchResult, error)
}

type ProviderAPI interface {
	ListAccounts(ctx context.Context, accessToken string) ([]provider.Account, error)
	GetBalance(ctx context.Context, accessToken, accountID string) (*provider.Balance, error)
	ListTransactions(ctx context.Context, accessToken, accountID string, from, to *time.Time) ([]provider.Transaction, error)
}

// CredentialVault hides the plaintext access token behind encrypt/decrypt.
type CredentialVault interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

type Service struct {
	enrollments  EnrollmentRepository
	accounts     AccountRepository
	transactions TransactionRepository
	provider     ProviderAPI
	vault        CredentialVault
	lease        *Lease
	now          func() time.Time
	spawn        func(fn func()) // background launcher; replaced in tests
}

func NewService(
	enrollments EnrollmentRepository,
	accounts AccountRepository,
	transactions TransactionRepository,
	providerAPI ProviderAPI,
	credentialVault CredentialVault,
) *Service {
	return &Service{
		enrollments:  enrollments,
		accounts:     accounts,
		transactions: transactions,
		provider:     providerAPI,
		vault:        credentialVault,
		lease:        NewLease(),
		now:          time.Now,
		spawn:        func(fn func()) { go fn() },
	}
}

type ConnectParams struct {
	UserID               uuid.UUID
	AccessToken          string
	ProviderEnrollmentID string
	InstitutionName      *string
}

// Connect persists a freshly authorized enrollment, discovers its accounts
// and kicks off the first transaction sync in the background.
//
// A balance fetch failing for one account never aborts account creation: a
// missing balance heals on the next sync, a missing account would hide the
// link from the user entirely.
func (s *Service) Connect(ctx context.Context, params ConnectParams) (*enrollment.Enrollment, error) {
	encrypted, err := s.vault.Encrypt(params.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("encrypting access token: %w", err)
	}

	e := &enrollment.Enrollment{
		UserID:               params.UserID,
		EncryptedAccessToken: encrypted,
		ProviderEnrollmentID: params.ProviderEnrollmentID,
		InstitutionName:      params.InstitutionName,
		Status:               enrollment.StatusActive,
	}

	if err := s.enrollments.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("persisting enrollment: %w", err)
	}

	providerAccounts, err := s.provider.ListAccounts(ctx, params.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("listing provider accounts: %w", err)
	}

	syncedAt := s.now()

	for _, raw := range providerAccounts {
		acct := MapAccount(params.UserID, e.ID, raw)

		balance, err := s.provider.GetBalance(ctx, params.AccessToken, raw.ID)
		if err != nil {
			slog.Error("initial balance fetch failed, creating account without balance",
				"enrollment_id", e.ID, "provider_account_id", raw.ID, "error", err)
		} else {
			current, available, err := MapBalance(balance, acct.Currency)
			if err != nil {
				slog.Error("unparseable initial balance, creating account without balance",
					"enrollment_id", e.ID, "provider_account_id", raw.ID, "error", err)
			} else {
				acct.CurrentBalance = current
				acct.AvailableBalance = available
				acct.LastSyncedAt = &syncedAt
			}
		}

		if err := s.accounts.Upsert(ctx, acct); err != nil {
			return nil, fmt.Errorf("upserting account %s: %w", raw.ID, err)
		}
	}

	// Fire-and-forget: a failed first sync is recovered by the next
	// scheduled run, never by failing the connect call.
	s.spawn(func() { s.initialSync(e.ID) })

	return e, nil
}

func (s *Service) initialSync(enrollmentID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), initialSyncTimeout)
	defer cancel()

	if err := s.SyncTransactions(ctx, enrollmentID); err != nil {
		slog.Error("initial transaction sync failed; scheduled sync will retry",
			"enrollment_id", enrollmentID, "error", err)
	}
}

// SyncTransactions runs one incremental sync for the enrollment. A provider
// failure on one account is logged and skipped so sibling accounts still
// sync. The watermark advances unconditionally afterwards; the overlap
// window papers over small per-account gaps rather than retrying the exact
// failed slice.
func (s *Service) SyncTransactions(ctx context.Context, enrollmentID uuid.UUID) error {
	if !s.lease.Acquire(enrollmentID) {
		return ErrSyncInProgress
	}
	defer s.lease.Release(enrollmentID)

	e, err := s.enrollments.Get(ctx, enrollmentID)
	if err != nil {
		return fmt.Errorf("loading enrollment: %w", err)
	}

	// Decryption failure propagates: it implies a corrupted or tampered
	// credential and is never safe to swallow.
	accessToken, err := s.vault.Decrypt(e.EncryptedAccessToken)
	if err != nil {
		return fmt.Errorf("decrypting access token for enrollment %s: %w", e.ID, err)
	}

	accounts, err := s.accounts.ListByEnrollment(ctx, e.ID)
	if err != nil {
		return fmt.Errorf("loading enrollment accounts: %w", err)
	}

	today := dateOnly(s.now())
	from, to := syncWindow(e.LastSyncedDate, today)

	for _, acct := range accounts {
		if err := s.syncAccount(ctx, e, acct, accessToken, from, to); err != nil {
			slog.Error("account sync failed, continuing with siblings",
				"enrollment_id", e.ID, "account_id", acct.ID,
				"provider_account_id", acct.ProviderAccountID, "error", err)
		}
	}

	if err := s.enrollments.AdvanceWatermark(ctx, e.ID, today, s.now()); err != nil {
		return fmt.Errorf("advancing watermark: %w", err)
	}

	return nil
}

// syncWindow computes the fetch range. First sync looks back lookbackDays;
// incremental syncs re-fetch overlapDays behind the watermark.
func syncWindow(lastSyncedDate *time.Time, today time.Time) (from, to time.Time) {
	if lastSyncedDate == nil {
		return today.AddDate(0, 0, -lookbackDays), today
	}

	return lastSyncedDate.AddDate(0, 0, -overlapDays), today
}

func (s *Service) syncAccount(ctx context.Context, e *enrollment.Enrollment, acct *account.Account, accessToken string, from, to time.Time) error {
	raws, err := s.provider.ListTransactions(ctx, accessToken, acct.ProviderAccountID, &from, &to)
	if err != nil {
		return fmt.Errorf("listing transactions: %w", err)
	}

	params := make([]transaction.UpsertParams, 0, len(raws))

	for _, raw := range raws {
		p, err := MapTransaction(e.UserID, acct, raw)
		if err != nil {
			slog.Error("skipping unmappable transaction",
				"enrollment_id", e.ID, "provider_transaction_id", raw.ID, "error", err)

			continue
		}

		params = append(params, p)
	}

	result, err := s.transactions.BatchUpsert(ctx, params)
	if err != nil {
		return fmt.Errorf("upserting transactions: %w", err)
	}

	if result.Failed > 0 {
		slog.Warn("some transaction upserts failed",
			"enrollment_id", e.ID, "account_id", acct.ID,
			"succeeded", result.Succeeded, "failed", result.Failed)
	}

	// Balance refresh is best-effort; the next sync retries it.
	if err := s.refreshBalance(ctx, acct, accessToken); err != nil {
		slog.Error("balance refresh failed",
			"enrollment_id", e.ID, "account_id", acct.ID, "error", err)
	}

	return nil
}

func (s *Service) refreshBalance(ctx context.Context, acct *account.Account, accessToken string) error {
	balance, err := s.provider.GetBalance(ctx, accessToken, acct.ProviderAccountID)
	if err != nil {
		return err
	}

	current, available, err := MapBalance(balance, acct.Currency)
	if err != nil {
		return err
	}

	return s.accounts.UpdateBalances(ctx, acct.ID, current, available, s.now())
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
