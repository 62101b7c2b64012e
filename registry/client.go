// Package registry is the client side of the WNS name service: it validates
// and normalizes names, checks addresses against the known account formats
// and dispatches register, resolve and update requests to a pluggable
// Backend.
//
// The Client keeps no state of its own and is safe for concurrent use. It
// never retries and never caches; every call is one round trip to the
// backend.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ss-deshmukh/Nomenclature/common"
)

type Client struct {
	backend    Backend
	confidence Confidence
	log        *logrus.Entry
}

type Option func(*Client)

// WithConfidence sets the milestone Register and Update wait for before
// reporting success. The default is ConfidenceIncluded.
func WithConfidence(c Confidence) Option {
	return func(cl *Client) {
		cl.confidence = c
	}
}

func WithLogger(l *logrus.Entry) Option {
	return func(cl *Client) {
		cl.log = l
	}
}

func NewClient(b Backend, opts ...Option) *Client {
	c := &Client{
		backend:    b,
		confidence: ConfidenceIncluded,
		log:        common.LoggerFor("registry"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Confidence() Confidence {
	return c.confidence
}

func (c *Client) request(op, name string) *logrus.Entry {
	return c.log.WithFields(logrus.Fields{
		"req":  uuid.NewString(),
		"op":   op,
		"name": name,
	})
}

// translate maps the backend vocabulary onto the client error taxonomy.
// Anything else is returned unchanged.
func translate(err error, name string, noBinding error) error {
	switch {
	case errors.Is(err, ErrBindingExists):
		return fmt.Errorf("%s: %w", name, ErrAlreadyRegistered)
	case errors.Is(err, ErrNoBinding):
		return fmt.Errorf("%s: %w", name, noBinding)
	}
	return err
}

// Register binds name to address. The name may be given with or without the
// .web3 suffix. It returns a *ValidationError before contacting the backend
// when either input is malformed and ErrAlreadyRegistered when the backend
// reports the name as taken.
//
// On success the receipt reflects the milestone configured through
// WithConfidence; the returned Submission can be used to wait for
// finalization later. If ctx expires while waiting the error wraps
// ErrOutcomeUnknown and the registration may still land.
func (c *Client) Register(ctx context.Context, name, address string) (RegisterResult, error) {
	if !ValidateName(name) {
		return RegisterResult{}, &ValidationError{Field: "name", Value: name}
	}
	if !ValidateAddress(address) {
		return RegisterResult{}, &ValidationError{Field: "address", Value: address}
	}
	canonical := NormalizeName(name)
	log := c.request("register", canonical)
	log.Debug("creating binding")

	sub, err := c.backend.Create(ctx, canonical, address)
	if err != nil {
		log.WithError(err).Debug("create failed")
		return RegisterResult{}, translate(err, canonical, ErrNotRegistered)
	}
	receipt, err := sub.Wait(ctx, c.confidence)
	if err != nil {
		log.WithError(err).Debug("waiting for commitment failed")
		return RegisterResult{Submission: sub}, translate(err, canonical, ErrNotRegistered)
	}
	log.WithField("tx", receipt.TxHash).Debugf("binding %s", receipt.Confidence)
	return RegisterResult{
		Record:     NameRecord{Name: canonical, Address: address},
		Receipt:    receipt,
		Submission: sub,
	}, nil
}

// Resolve returns the address bound to name or an error wrapping ErrNotFound.
func (c *Client) Resolve(ctx context.Context, name string) (string, error) {
	canonical := NormalizeName(name)
	c.request("resolve", canonical).Debug("looking up")
	addr, err := c.backend.Lookup(ctx, canonical)
	if err != nil {
		return "", translate(err, canonical, ErrNotFound)
	}
	return addr, nil
}

// IsAvailable reports whether name has no binding. It agrees with Resolve:
// a name is available exactly when Resolve reports ErrNotFound. Backend
// failures are returned as errors, never as availability.
func (c *Client) IsAvailable(ctx context.Context, name string) (bool, error) {
	_, err := c.Resolve(ctx, name)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, ErrNotFound):
		return true, nil
	}
	return false, err
}

// Update rebinds an already registered name to address. It never creates a
// binding: an unbound name fails with ErrNotRegistered.
func (c *Client) Update(ctx context.Context, name, address string) (UpdateResult, error) {
	if !ValidateAddress(address) {
		return UpdateResult{}, &ValidationError{Field: "address", Value: address}
	}
	canonical := NormalizeName(name)
	log := c.request("update", canonical)
	log.Debug("replacing binding")

	sub, err := c.backend.Replace(ctx, canonical, address)
	if err != nil {
		log.WithError(err).Debug("replace failed")
		return UpdateResult{}, translate(err, canonical, ErrNotRegistered)
	}
	receipt, err := sub.Wait(ctx, c.confidence)
	if err != nil {
		log.WithError(err).Debug("waiting for commitment failed")
		return UpdateResult{Submission: sub}, translate(err, canonical, ErrNotRegistered)
	}
	log.WithField("tx", receipt.TxHash).Debugf("binding %s", receipt.Confidence)
	return UpdateResult{
		Record:     NameRecord{Name: canonical, Address: address},
		Receipt:    receipt,
		Submission: sub,
	}, nil
}

// ResolveMany resolves names in order and returns the records that
// resolved. Names that fail for any reason, including transport errors, are
// left out without an error; use Resolve per name when failures matter.
func (c *Client) ResolveMany(ctx context.Context, names []string) []NameRecord {
	records := make([]NameRecord, 0, len(names))
	for _, name := range names {
		addr, err := c.Resolve(ctx, name)
		if err != nil {
			c.log.WithError(err).WithField("name", name).Debug("skipping unresolved name")
			continue
		}
		records = append(records, NameRecord{Name: NormalizeName(name), Address: addr})
	}
	return records
}

// Owner returns the account that registered name. Backends that do not
// track ownership return ErrUnsupported.
func (c *Client) Owner(ctx context.Context, name string) (string, error) {
	ol, ok := c.backend.(OwnerLookup)
	if !ok {
		return "", fmt.Errorf("owner lookup: %w", ErrUnsupported)
	}
	canonical := NormalizeName(name)
	c.request("owner", canonical).Debug("looking up owner")
	owner, err := ol.Owner(ctx, canonical)
	if err != nil {
		return "", translate(err, canonical, ErrNotFound)
	}
	return owner, nil
}

// Close releases the backend's resources when it holds any.
func (c *Client) Close() error {
	if closer, ok := c.backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
