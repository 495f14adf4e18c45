package accounting

import "github.com/shopspring/decimal"

// SkippedTransaction records a transaction excluded from the ledger.
type SkippedTransaction struct {
	ID     string
	Type   TransactionType
	Reason string
}

// Journal is the ordered list of postings produced from a transaction set.
type Journal struct {
	Postings []Posting
	Skipped  []SkippedTransaction
}

// TotalDebit sums the debit side of every posting.
func (j Journal) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, p := range j.Postings {
		total = total.Add(p.Debit())
	}
	return total
}

// TotalCredit sums the credit side of every posting.
func (j Journal) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, p := range j.Postings {
		total = total.Add(p.Credit())
	}
	return total
}

// BuildPostings expands every transaction into its two postings, in input order.
// Amounts are rounded to two decimals here and nowhere downstream. Transactions the
// rules cannot place are skipped and listed in the journal.
func BuildPostings(txs []Transaction, cash LedgerAccount, rules Rules) Journal {
	if rules == nil {
		rules = StandardRules{}
	}
	journal := Journal{Postings: make([]Posting, 0, len(txs)*2)}
	for _, tx := range txs {
		legs, err := rules.Legs(tx, cash)
		if err != nil {
			journal.Skipped = append(journal.Skipped, SkippedTransaction{ID: tx.ID, Type: tx.Type, Reason: err.Error()})
			continue
		}
		amount := tx.Amount.Round(2)
		description := tx.DescriptionOrDefault()
		for _, leg := range legs {
			journal.Postings = append(journal.Postings, Posting{
				TransactionID: tx.ID,
				Date:          tx.Date,
				Description:   description,
				Account:       leg.Account,
				Side:          leg.Side,
				Amount:        amount,
			})
		}
	}
	return journal
}
