package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/cleared-dev/equity/internal/model"
)

// Header is the CSV header for accounts.csv.
var Header = []string{"account_id", "account_name", "account_type", "is_permanent"}

const (
	numFields    = 4
	colID        = 0
	colName      = 1
	colType      = 2
	colPermanent = 3
)

// ReadAccounts reads accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colID] = acct.ID
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	row[colPermanent] = strconv.FormatBool(acct.IsPermanent)
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	if record[colID] == "" {
		return model.Account{}, fmt.Errorf("empty account_id")
	}

	acctType := model.AccountType(record[colType])
	switch acctType {
	case model.AccountTypeEquity, model.AccountTypeBank, model.AccountTypeOther:
	default:
		return model.Account{}, fmt.Errorf("unknown account_type %q", record[colType])
	}

	var permanent bool
	if record[colPermanent] != "" {
		p, err := strconv.ParseBool(record[colPermanent])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing is_permanent %q: %w", record[colPermanent], err)
		}
		permanent = p
	}

	return model.Account{
		ID:          record[colID],
		Name:        record[colName],
		Type:        acctType,
		IsPermanent: permanent,
	}, nil
}
