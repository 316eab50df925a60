package wallet

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"healthoasis/internal/client"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrEmailRequired       = errors.New("email is required")
	ErrInvalidAmount       = errors.New("please enter a valid amount greater than zero")
	ErrInsufficientBalance = errors.New("withdrawal amount exceeds your current balance")
	ErrInvalidAccount      = errors.New("please provide valid withdrawal account information")
)

const minAccountDetails = 5

// Loader is the remote wallet service.
type Loader interface {
	LoginWallet(ctx context.Context, email string) (*client.WalletData, error)
	Wallet(ctx context.Context) (*client.WalletData, error)
}

// Store owns a wallet State. All changes go through Dispatch.
type Store struct {
	api           Loader
	session       Session
	withdrawDelay time.Duration
	log           logrus.FieldLogger

	now   func() time.Time
	newID func() string

	mu      sync.Mutex
	state   State
	subs    map[int]func(State)
	nextSub int
}

func NewStore(api Loader, session Session, withdrawDelay time.Duration, log logrus.FieldLogger) *Store {
	if session == nil {
		session = &MemorySession{}
	}
	return &Store{
		api:           api,
		session:       session,
		withdrawDelay: withdrawDelay,
		log:           log,
		now:           time.Now,
		newID:         func() string { return uuid.NewString() },
		state:         InitialState(),
		subs:          make(map[int]func(State)),
	}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return next
}

// Subscribe calls fn after every dispatch. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Init loads the wallet for the cached email, or asks for one.
func (s *Store) Init(ctx context.Context) error {
	email, err := s.session.Load()
	if err != nil {
		s.log.WithError(err).Warn("wallet session unreadable")
	}
	if email == "" {
		s.Dispatch(ShowEmailModal{Open: true})
		return nil
	}
	s.Dispatch(SetEmail{Email: email})
	return s.Login(ctx, email)
}

// Login opens the wallet for email. On failure the cached email is dropped
// and the email prompt reopened.
func (s *Store) Login(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmailRequired
	}
	s.Dispatch(SetLoading{Loading: true})
	defer s.Dispatch(SetLoading{Loading: false})

	w, err := s.api.LoginWallet(ctx, email)
	if err != nil {
		if cerr := s.session.Clear(); cerr != nil {
			s.log.WithError(cerr).Warn("clear wallet session")
		}
		s.Dispatch(ShowEmailModal{Open: true})
		return err
	}
	if err := s.session.Save(email); err != nil {
		s.log.WithError(err).Warn("save wallet session")
	}
	s.Dispatch(SetWalletData{
		Email:           w.Email,
		Balance:         w.Balance,
		Transactions:    w.Transactions,
		IsAuthenticated: true,
	})
	return nil
}

// Refresh re-reads the open wallet from the server.
func (s *Store) Refresh(ctx context.Context) error {
	st := s.State()
	if !st.IsAuthenticated {
		if st.Email == "" {
			s.Dispatch(ShowEmailModal{Open: true})
			return ErrEmailRequired
		}
		return s.Login(ctx, st.Email)
	}
	w, err := s.api.Wallet(ctx)
	if err != nil {
		return err
	}
	s.Dispatch(SetWalletData{
		Email:           w.Email,
		Balance:         w.Balance,
		Transactions:    w.Transactions,
		IsAuthenticated: true,
	})
	return nil
}

// AddMoney records a completed top-up locally.
func (s *Store) AddMoney(amount decimal.Decimal, description string) (client.Transaction, error) {
	if !amount.IsPositive() {
		return client.Transaction{}, ErrInvalidAmount
	}
	if description == "" {
		description = "Added money to wallet"
	}
	tx := s.transaction(amount, "credit", description)
	s.Dispatch(AddTransaction{Amount: amount, Transaction: tx})
	s.Dispatch(ToggleAddMoneyModal{Open: false})
	return tx, nil
}

// WithdrawMoney validates against the current balance, then applies the
// withdrawal locally after the configured delay. No server call is made.
func (s *Store) WithdrawMoney(ctx context.Context, amount decimal.Decimal, accountDetails string) (client.Transaction, error) {
	if !amount.IsPositive() {
		return client.Transaction{}, ErrInvalidAmount
	}
	if amount.GreaterThan(s.State().Balance) {
		return client.Transaction{}, ErrInsufficientBalance
	}
	accountDetails = strings.TrimSpace(accountDetails)
	if utf8.RuneCountInString(accountDetails) < minAccountDetails {
		return client.Transaction{}, ErrInvalidAccount
	}

	s.Dispatch(SetLoading{Loading: true})
	defer s.Dispatch(SetLoading{Loading: false})

	if s.withdrawDelay > 0 {
		t := time.NewTimer(s.withdrawDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return client.Transaction{}, ctx.Err()
		case <-t.C:
		}
	}

	tx := s.transaction(amount, "debit", "Withdrawal: "+accountDetails)
	s.Dispatch(Withdraw{Amount: amount, Transaction: tx})
	s.Dispatch(ToggleWithdrawModal{Open: false})
	return tx, nil
}

// Logout forgets the cached email and resets the state.
func (s *Store) Logout() error {
	err := s.session.Clear()
	s.mu.Lock()
	s.state = InitialState()
	s.mu.Unlock()
	s.Dispatch(ShowEmailModal{Open: true})
	return err
}

func (s *Store) transaction(amount decimal.Decimal, kind, description string) client.Transaction {
	return client.Transaction{
		ID:          s.newID(),
		Amount:      amount,
		Type:        kind,
		Description: description,
		Timestamp:   s.now().UTC(),
	}
}
