package registry

import "context"

// Backend holds and mutates registry state. Names passed to a backend are
// always canonical and, for Create, already validated.
//
// Backends own their concurrency: Create calls racing for the same name are
// arbitrated by the backend alone, first write wins.
type Backend interface {
	// Create binds name to address. It returns ErrBindingExists when the
	// name is taken. The returned submission reports when the binding is
	// committed; a submission may also fail with ErrBindingExists when a
	// concurrent registrant wins after submission.
	Create(ctx context.Context, name, address string) (*Submission, error)

	// Lookup returns the bound address or ErrNoBinding.
	Lookup(ctx context.Context, name string) (string, error)

	// Replace rebinds an existing name. It returns ErrNoBinding when the
	// name has no binding and never creates one.
	Replace(ctx context.Context, name, address string) (*Submission, error)
}

// OwnerLookup is implemented by backends that track who registered a name.
type OwnerLookup interface {
	Owner(ctx context.Context, name string) (string, error)
}

// NameRecord is a resolved binding.
type NameRecord struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Owner   string `json:"owner,omitempty"`
}

type RegisterResult struct {
	Record     NameRecord
	Receipt    Receipt
	Submission *Submission
}

type UpdateResult struct {
	Record     NameRecord
	Receipt    Receipt
	Submission *Submission
}
