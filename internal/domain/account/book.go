package account

// Book is the ledger state: accounts keyed by number, iterated in insertion
// order so that queries break ties deterministically.
type Book struct {
	accounts map[int64]*Account
	order    []int64
}

func NewBook() *Book {
	return &Book{accounts: make(map[int64]*Account)}
}

// Put stores acc, replacing any account with the same number in place.
func (b *Book) Put(acc *Account) {
	if _, exists := b.accounts[acc.AccountNumber]; !exists {
		b.order = append(b.order, acc.AccountNumber)
	}
	b.accounts[acc.AccountNumber] = acc
}

func (b *Book) Get(number int64) (*Account, bool) {
	acc, ok := b.accounts[number]
	return acc, ok
}

func (b *Book) Has(number int64) bool {
	_, ok := b.accounts[number]
	return ok
}

func (b *Book) Len() int {
	return len(b.order)
}

// Accounts returns the accounts in insertion order.
func (b *Book) Accounts() []*Account {
	out := make([]*Account, 0, len(b.order))
	for _, n := range b.order {
		out = append(out, b.accounts[n])
	}
	return out
}

// MaxNumber returns the highest account number held, or 0 when empty.
func (b *Book) MaxNumber() int64 {
	var max int64
	for _, n := range b.order {
		if n > max {
			max = n
		}
	}
	return max
}

func (b *Book) Clear() {
	b.accounts = make(map[int64]*Account)
	b.order = nil
}
