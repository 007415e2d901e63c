// Package ledger holds the records read from a HomeBank ledger and turns a
// single transaction into the flat Context a query is evaluated against.
package ledger

// Transaction is one operation as exported by the ledger. Values are kept as
// the raw attribute text.
type Transaction struct {
	Memo        string
	Amount      string
	CategoryKey string
	// Date is the day serial, where 1 is 0001-01-01.
	Date       string
	Tags       string
	AccountKey string
}

// Category is an entry of the category table. ParentKey is empty for top-level
// categories.
type Category struct {
	Key       string
	Name      string
	ParentKey string
}

// Account is an entry of the account table.
type Account struct {
	Key  string
	Name string
	Type int
}

// Tables are the read-only lookup tables used to resolve transaction keys.
type Tables struct {
	Categories map[string]Category
	Accounts   map[string]Account
}

// NewTables indexes categories and accounts by key. When a key repeats, the
// first entry wins.
func NewTables(categories []Category, accounts []Account) Tables {
	t := Tables{
		Categories: make(map[string]Category, len(categories)),
		Accounts:   make(map[string]Account, len(accounts)),
	}
	for _, c := range categories {
		if _, dup := t.Categories[c.Key]; !dup {
			t.Categories[c.Key] = c
		}
	}
	for _, a := range accounts {
		if _, dup := t.Accounts[a.Key]; !dup {
			t.Accounts[a.Key] = a
		}
	}
	return t
}

// Ledger is a loaded ledger document.
type Ledger struct {
	Transactions []Transaction
	Tables       Tables
}
