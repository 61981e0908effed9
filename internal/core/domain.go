package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidDate     = errors.New("invalid date")
	ErrUnknownNature   = errors.New("unknown transaction nature")
	ErrEmptyName       = errors.New("empty name")
	ErrNotOwner        = errors.New("record belongs to another user")
)

const maxDescriptionLen = 255

// Nature is the sign a transaction type applies to every movement that
// references it. It is a closed set: anything outside Credit/Debit is a
// data-integrity fault, never a value to guess a sign for.
type Nature string

const (
	NatureCredit Nature = "credit"
	NatureDebit  Nature = "debit"
)

// Sign returns +1 for credits and -1 for debits. An unknown nature is an
// error so a corrupted row aborts a balance computation instead of being
// silently skipped.
func (n Nature) Sign() (int64, error) {
	switch n {
	case NatureCredit:
		return 1, nil
	case NatureDebit:
		return -1, nil
	default:
		return 0, ErrUnknownNature
	}
}

// Valid reports whether n is one of the two enumerated natures.
func (n Nature) Valid() bool {
	_, err := n.Sign()
	return err == nil
}

// AccountType enumerates the supported kinds of bank account.
type AccountType string

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountDigital    AccountType = "digital"
	AccountInvestment AccountType = "investment"
	AccountCashBox    AccountType = "cashbox"
	AccountCash       AccountType = "cash"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountChecking, AccountSavings, AccountDigital, AccountInvestment, AccountCashBox, AccountCash:
		return true
	}
	return false
}

// SupportsCreditLimit reports whether accounts of this type carry an
// overdraft limit. For every other type the limit is forced to zero.
func (t AccountType) SupportsCreditLimit() bool {
	return t == AccountChecking || t == AccountDigital
}

// Account is a bank account owned by one user. Its balance is never
// stored: it is always derived from the opening balance plus movements.
type Account struct {
	ID             int64
	UserID         int64
	BankName       string
	Agency         string
	Number         string
	Type           AccountType
	OpeningBalance Money
	CreditLimit    Money
	Description    string
	CreatedAt      time.Time
}

// Normalize clears the credit limit on account types that do not carry
// one. Call before persisting.
func (a *Account) Normalize() {
	if !a.Type.SupportsCreditLimit() {
		a.CreditLimit = MoneyZero
	}
}

func (a Account) Validate() error {
	if a.UserID <= 0 {
		return ErrInvalidArgument
	}
	if strings.TrimSpace(a.BankName) == "" || strings.TrimSpace(a.Number) == "" {
		return ErrEmptyName
	}
	if !a.Type.Valid() {
		return errors.New("invalid account type")
	}
	if a.CreditLimit.IsNegative() {
		return ErrInvalidAmount
	}
	if !a.Type.SupportsCreditLimit() && !a.CreditLimit.IsZero() {
		return errors.New("credit limit not allowed for this account type")
	}
	if len(a.Description) > maxDescriptionLen {
		return errors.New("description too long")
	}
	return nil
}

// TransactionType is a user-owned, named kind of movement ("Pix", "TED")
// whose nature decides the sign applied during replay.
type TransactionType struct {
	ID          int64
	UserID      int64
	Name        string
	Nature      Nature
	Description string
	CreatedAt   time.Time
}

func (t TransactionType) Validate() error {
	if t.UserID <= 0 {
		return ErrInvalidArgument
	}
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if !t.Nature.Valid() {
		return ErrUnknownNature
	}
	if len(t.Description) > maxDescriptionLen {
		return errors.New("description too long")
	}
	return nil
}

// AccountMovement is a dated amount on an account. The magnitude is
// stored unsigned; the sign comes from the referenced transaction type.
type AccountMovement struct {
	ID                int64
	UserID            int64
	AccountID         int64
	TransactionTypeID int64
	Date              time.Time
	Amount            Money
	Description       string
	CreatedAt         time.Time
}

func (m AccountMovement) Validate() error {
	if m.UserID <= 0 || m.AccountID <= 0 || m.TransactionTypeID <= 0 {
		return ErrInvalidArgument
	}
	if m.Date.IsZero() {
		return ErrInvalidDate
	}
	if err := m.Amount.Validate(); err != nil {
		return err
	}
	if len(m.Description) > maxDescriptionLen {
		return errors.New("description too long")
	}
	return nil
}

// CreditLineKind enumerates the supported kinds of credit line.
type CreditLineKind string

const (
	CreditLinePhysical         CreditLineKind = "physical"
	CreditLineVirtualRecurring CreditLineKind = "virtual_recurring"
	CreditLineVirtualTemporary CreditLineKind = "virtual_temporary"
	CreditLineOther            CreditLineKind = "other"
)

func (k CreditLineKind) Valid() bool {
	switch k {
	case CreditLinePhysical, CreditLineVirtualRecurring, CreditLineVirtualTemporary, CreditLineOther:
		return true
	}
	return false
}

// CreditLine is a revolving/installment credit line (store card,
// recurring virtual card) distinct from a bank account.
type CreditLine struct {
	ID          int64
	UserID      int64
	Name        string
	Kind        CreditLineKind
	CardSuffix  string
	Limit       Money
	Description string
	CreatedAt   time.Time
}

func (c CreditLine) Validate() error {
	if c.UserID <= 0 {
		return ErrInvalidArgument
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Kind.Valid() {
		return errors.New("invalid credit line kind")
	}
	if c.Limit.IsNegative() {
		return ErrInvalidAmount
	}
	if len(c.Description) > maxDescriptionLen {
		return errors.New("description too long")
	}
	return nil
}

// GroupKind distinguishes purchase groups from reversal groups.
type GroupKind string

const (
	GroupPurchase GroupKind = "purchase"
	GroupReversal GroupKind = "reversal"
)

func (k GroupKind) Valid() bool {
	return k == GroupPurchase || k == GroupReversal
}

// PurchaseGroup is a user-defined tag that groups purchase plans.
type PurchaseGroup struct {
	ID          int64
	UserID      int64
	Name        string
	Kind        GroupKind
	Description string
	CreatedAt   time.Time
}

func (g PurchaseGroup) Validate() error {
	if g.UserID <= 0 {
		return ErrInvalidArgument
	}
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if !g.Kind.Valid() {
		return errors.New("invalid group kind")
	}
	if len(g.Description) > maxDescriptionLen {
		return errors.New("description too long")
	}
	return nil
}

// PurchasePlan is a single credit-line purchase split into monthly
// installments. LastMonth and MonthlyAmount are cached projections of
// (Total, Count, FirstMonth): they are recomputed and overwritten on
// every edit, never patched incrementally.
type PurchasePlan struct {
	ID            int64
	UserID        int64
	CreditLineID  int64
	GroupID       int64
	PurchaseDate  time.Time
	Description   string
	Total         Money
	Count         int
	FirstMonth    Month
	LastMonth     Month
	MonthlyAmount Money
	CreatedAt     time.Time
}

func (p PurchasePlan) Validate() error {
	if p.UserID <= 0 || p.CreditLineID <= 0 || p.GroupID <= 0 {
		return ErrInvalidArgument
	}
	if p.PurchaseDate.IsZero() {
		return ErrInvalidDate
	}
	if err := p.Total.Validate(); err != nil {
		return err
	}
	if p.Count < 1 {
		return ErrInvalidArgument
	}
	if err := p.FirstMonth.Validate(); err != nil {
		return err
	}
	if len(p.Description) > maxDescriptionLen {
		return errors.New("description too long")
	}
	return nil
}

// Installment is one parcel of a purchase plan. Sequence numbers form a
// contiguous 1..N run per plan and due dates advance by exactly one
// calendar month, anchored to day 1.
type Installment struct {
	ID        int64
	PlanID    int64
	Sequence  int
	DueDate   time.Time
	Amount    Money
	CreatedAt time.Time
}

// LoanAmortization labels how an imported loan schedule was computed.
// The label is informational: this system never computes SAC or PRICE
// schedules, it only stores externally computed installments.
type LoanAmortization string

const (
	AmortizationSAC   LoanAmortization = "SAC"
	AmortizationPrice LoanAmortization = "PRICE"
	AmortizationOther LoanAmortization = "other"
)

func (a LoanAmortization) Valid() bool {
	return a == AmortizationSAC || a == AmortizationPrice || a == AmortizationOther
}

// Loan is a financed debt whose installment schedule is imported, not
// computed here.
type Loan struct {
	ID           int64
	UserID       int64
	AccountID    int64
	Name         string
	Principal    Money
	AnnualRate   decimal.Decimal
	StartDate    time.Time
	TermMonths   int
	Amortization LoanAmortization
	Description  string
	CreatedAt    time.Time
}

func (l Loan) Validate() error {
	if l.UserID <= 0 || l.AccountID <= 0 {
		return ErrInvalidArgument
	}
	if strings.TrimSpace(l.Name) == "" {
		return ErrEmptyName
	}
	if err := l.Principal.Validate(); err != nil {
		return err
	}
	if l.AnnualRate.IsNegative() {
		return ErrInvalidArgument
	}
	if l.StartDate.IsZero() {
		return ErrInvalidDate
	}
	if l.TermMonths < 1 {
		return ErrInvalidArgument
	}
	if !l.Amortization.Valid() {
		return errors.New("invalid amortization type")
	}
	return nil
}

// LoanInstallmentStatus tracks the payment state of a loan installment.
// Credit-line installments carry no such state.
type LoanInstallmentStatus string

const (
	LoanInstallmentPending   LoanInstallmentStatus = "pending"
	LoanInstallmentPaid      LoanInstallmentStatus = "paid"
	LoanInstallmentOverdue   LoanInstallmentStatus = "overdue"
	LoanInstallmentAmortized LoanInstallmentStatus = "amortized"
)

func (s LoanInstallmentStatus) Valid() bool {
	switch s {
	case LoanInstallmentPending, LoanInstallmentPaid, LoanInstallmentOverdue, LoanInstallmentAmortized:
		return true
	}
	return false
}

// LoanInstallment is one externally computed parcel of a loan: principal,
// interest, insurance and fees are pass-through values.
type LoanInstallment struct {
	ID         int64
	LoanID     int64
	Sequence   int
	DueDate    time.Time
	Principal  Money
	Interest   Money
	Insurance  Money
	Fees       Money
	TotalDue   Money
	PaidDate   *time.Time
	PaidAmount *Money
	Status     LoanInstallmentStatus
	Notes      string
	CreatedAt  time.Time
}

// Validate checks the installment's own fields. LoanID is not checked:
// imported schedule rows are validated before their loan row exists,
// and the foreign key is enforced by storage.
func (i LoanInstallment) Validate() error {
	if i.Sequence < 1 {
		return ErrInvalidArgument
	}
	if i.DueDate.IsZero() {
		return ErrInvalidDate
	}
	if i.Principal.IsNegative() || i.Interest.IsNegative() || i.Insurance.IsNegative() || i.Fees.IsNegative() {
		return ErrInvalidAmount
	}
	if err := i.TotalDue.Validate(); err != nil {
		return err
	}
	if !i.Status.Valid() {
		return errors.New("invalid installment status")
	}
	return nil
}

// IncomeType enumerates the kinds of recurring income record.
type IncomeType string

const (
	IncomeEarning   IncomeType = "earning"
	IncomeBenefit   IncomeType = "benefit"
	IncomeDeduction IncomeType = "deduction"
	IncomeTax       IncomeType = "tax"
)

func (t IncomeType) Valid() bool {
	switch t {
	case IncomeEarning, IncomeBenefit, IncomeDeduction, IncomeTax:
		return true
	}
	return false
}

// IncomeSource is a named recurring income line (salary, benefit, ...).
type IncomeSource struct {
	ID          int64
	UserID      int64
	Description string
	Type        IncomeType
	CreatedAt   time.Time
}

func (s IncomeSource) Validate() error {
	if s.UserID <= 0 {
		return ErrInvalidArgument
	}
	if strings.TrimSpace(s.Description) == "" {
		return ErrEmptyName
	}
	if !s.Type.Valid() {
		return errors.New("invalid income type")
	}
	return nil
}

// IncomeMovement records an income amount for a reference month, paid in
// a (possibly different) payment month.
type IncomeMovement struct {
	ID             int64
	UserID         int64
	SourceID       int64
	ReferenceMonth Month
	PaymentMonth   Month
	Amount         Money
	Description    string
	CreatedAt      time.Time
}

func (m IncomeMovement) Validate() error {
	if m.UserID <= 0 || m.SourceID <= 0 {
		return ErrInvalidArgument
	}
	if err := m.ReferenceMonth.Validate(); err != nil {
		return err
	}
	if err := m.PaymentMonth.Validate(); err != nil {
		return err
	}
	if err := m.Amount.Validate(); err != nil {
		return err
	}
	return nil
}

// BudgetKind splits budget categories into income and expense.
type BudgetKind string

const (
	BudgetIncome  BudgetKind = "income"
	BudgetExpense BudgetKind = "expense"
)

func (k BudgetKind) Valid() bool {
	return k == BudgetIncome || k == BudgetExpense
}

// BudgetCategory is a named fixed income/expense category.
type BudgetCategory struct {
	ID          int64
	UserID      int64
	Name        string
	Kind        BudgetKind
	Description string
	CreatedAt   time.Time
}

func (c BudgetCategory) Validate() error {
	if c.UserID <= 0 {
		return ErrInvalidArgument
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Kind.Valid() {
		return errors.New("invalid budget kind")
	}
	return nil
}

// FixedEntry is the planned amount for a budget category in one month.
type FixedEntry struct {
	ID          int64
	UserID      int64
	CategoryID  int64
	Month       Month
	Amount      Money
	Description string
	CreatedAt   time.Time
}

func (e FixedEntry) Validate() error {
	if e.UserID <= 0 || e.CategoryID <= 0 {
		return ErrInvalidArgument
	}
	if err := e.Month.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	return nil
}

// AuditEvent is one row of the append-only audit trail. Events arrive
// over the audit queue and are persisted by the worker.
type AuditEvent struct {
	ID        int64
	EventID   string
	UserID    int64
	Event     string
	Entity    string
	EntityID  int64
	At        time.Time
	ClientIP  string
	UserAgent string
}
