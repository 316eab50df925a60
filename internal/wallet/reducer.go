// Package wallet holds the portal's wallet view state.
package wallet

import (
	"healthoasis/internal/client"

	"github.com/shopspring/decimal"
)

type State struct {
	Balance           decimal.Decimal
	Transactions      []client.Transaction
	Loading           bool
	AddMoneyOpen      bool
	WithdrawMoneyOpen bool
	EmailModalOpen    bool
	Email             string
	IsAuthenticated   bool
}

func InitialState() State {
	return State{Transactions: []client.Transaction{}}
}

// Action is one of the typed actions below.
type Action interface{ walletAction() }

type SetLoading struct{ Loading bool }

// ShowEmailModal also drops authentication.
type ShowEmailModal struct{ Open bool }

type SetEmail struct{ Email string }

type SetWalletData struct {
	Email           string
	Balance         decimal.Decimal
	Transactions    []client.Transaction
	IsAuthenticated bool
}

type ToggleAddMoneyModal struct{ Open bool }

type ToggleWithdrawModal struct{ Open bool }

type AddTransaction struct {
	Amount      decimal.Decimal
	Transaction client.Transaction
}

type Withdraw struct {
	Amount      decimal.Decimal
	Transaction client.Transaction
}

func (SetLoading) walletAction()          {}
func (ShowEmailModal) walletAction()      {}
func (SetEmail) walletAction()            {}
func (SetWalletData) walletAction()       {}
func (ToggleAddMoneyModal) walletAction() {}
func (ToggleWithdrawModal) walletAction() {}
func (AddTransaction) walletAction()      {}
func (Withdraw) walletAction()            {}

// Reduce returns the next state. It never validates amounts: a negative
// AddTransaction or an overdrawing Withdraw is applied as given, and the
// balance is not reconciled against the transaction list.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetLoading:
		s.Loading = a.Loading
	case ShowEmailModal:
		s.EmailModalOpen = a.Open
		s.IsAuthenticated = false
	case SetEmail:
		s.Email = a.Email
	case SetWalletData:
		s.Email = a.Email
		s.Balance = a.Balance
		s.Transactions = append([]client.Transaction{}, a.Transactions...)
		s.IsAuthenticated = a.IsAuthenticated
		s.EmailModalOpen = false
		s.Loading = false
	case ToggleAddMoneyModal:
		s.AddMoneyOpen = a.Open
	case ToggleWithdrawModal:
		s.WithdrawMoneyOpen = a.Open
	case AddTransaction:
		s.Balance = s.Balance.Add(a.Amount)
		s.Transactions = prepend(a.Transaction, s.Transactions)
	case Withdraw:
		s.Balance = s.Balance.Sub(a.Amount)
		s.Transactions = prepend(a.Transaction, s.Transactions)
	}
	return s
}

func prepend(tx client.Transaction, list []client.Transaction) []client.Transaction {
	out := make([]client.Transaction, 0, len(list)+1)
	out = append(out, tx)
	return append(out, list...)
}
