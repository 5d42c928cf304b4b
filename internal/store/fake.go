package store

// FakeStore is an in-memory test double.
type FakeStore struct {
	// Snap is the stored snapshot, nil when empty.
	Snap *Snapshot

	// Saves counts Save calls.
	Saves int

	// SaveError, if set, is returned by Save (the snapshot is not updated).
	SaveError error

	// LoadError, if set, is returned by Load.
	LoadError error
}

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

// Load returns the stored snapshot.
func (f *FakeStore) Load() (*Snapshot, error) {
	if f.LoadError != nil {
		return nil, f.LoadError
	}
	return f.Snap, nil
}

// Save records the snapshot.
func (f *FakeStore) Save(snap Snapshot) error {
	f.Saves++
	if f.SaveError != nil {
		return f.SaveError
	}
	s := snap
	f.Snap = &s
	return nil
}
