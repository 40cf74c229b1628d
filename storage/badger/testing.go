package badger

// NewMemoryStores creates in-memory stores for testing.
// Caller must close the result when done.
func NewMemoryStores() (*Stores, error) {
	return OpenStores("", true)
}
