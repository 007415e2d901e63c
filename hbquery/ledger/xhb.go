package ledger

import (
	"encoding/xml"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	hqerrors "github.com/nonibytes/hbquery/hbquery/errors"
)

type xhbAccount struct {
	Key  string `xml:"key,attr"`
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
}

type xhbCategory struct {
	Key    string `xml:"key,attr"`
	Name   string `xml:"name,attr"`
	Parent string `xml:"parent,attr"`
}

type xhbOperation struct {
	Date     string `xml:"date,attr"`
	Amount   string `xml:"amount,attr"`
	Account  string `xml:"account,attr"`
	Category string `xml:"category,attr"`
	Wording  string `xml:"wording,attr"`
	Tags     string `xml:"tags,attr"`
}

// LoadXHB reads a HomeBank .xhb file.
func LoadXHB(path string) (*Ledger, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, hqerrors.Wrap(hqerrors.ErrIO, "open ledger", err)
	}
	defer f.Close()
	return ReadXHB(f)
}

// ReadXHB decodes a HomeBank document. account, cat and ope elements are
// collected wherever they appear; everything else is skipped.
func ReadXHB(r io.Reader) (*Ledger, error) {
	dec := xml.NewDecoder(r)
	var (
		accounts   []Account
		categories []Category
		txs        []Transaction
		sawRoot    bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, hqerrors.Wrap(hqerrors.ErrIO, "decode ledger", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawRoot = true

		switch start.Name.Local {
		case "account":
			var a xhbAccount
			if err := dec.DecodeElement(&a, &start); err != nil {
				return nil, hqerrors.Wrap(hqerrors.ErrIO, "decode account", err)
			}
			typ, _ := strconv.Atoi(strings.TrimSpace(a.Type))
			accounts = append(accounts, Account{Key: a.Key, Name: a.Name, Type: typ})
		case "cat":
			var c xhbCategory
			if err := dec.DecodeElement(&c, &start); err != nil {
				return nil, hqerrors.Wrap(hqerrors.ErrIO, "decode category", err)
			}
			categories = append(categories, Category{Key: c.Key, Name: c.Name, ParentKey: c.Parent})
		case "ope":
			var o xhbOperation
			if err := dec.DecodeElement(&o, &start); err != nil {
				return nil, hqerrors.Wrap(hqerrors.ErrIO, "decode operation", err)
			}
			txs = append(txs, Transaction{
				Memo:        o.Wording,
				Amount:      o.Amount,
				CategoryKey: o.Category,
				Date:        o.Date,
				Tags:        o.Tags,
				AccountKey:  o.Account,
			})
		}
	}

	if !sawRoot {
		return nil, hqerrors.New(hqerrors.ErrIO, "ledger document is empty")
	}

	return &Ledger{
		Transactions: txs,
		Tables:       NewTables(categories, accounts),
	}, nil
}
