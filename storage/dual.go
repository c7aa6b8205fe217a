package storage

import (
	"github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/rs/zerolog/log"
)

// Dual reads from the primary store and falls back to the secondary one;
// writes go to both. The two stores are not transactional: a failed write
// to one does not undo the write to the other, and the error reports which
// store failed.
type Dual struct {
	primary  Repo
	fallback Repo
}

var _ Repo = (*Dual)(nil)

func NewDual(primary, fallback Repo) *Dual {
	return &Dual{primary: primary, fallback: fallback}
}

func (d *Dual) Primary() Repo {
	return d.primary
}

func (d *Dual) Fallback() Repo {
	return d.fallback
}

// Get tries the primary store, then the fallback. A primary read failure
// falls through to the fallback; if that has nothing either, the error is
// ErrStoreUnavailable wrapping the primary failure.
func (d *Dual) Get(key string) (string, error) {
	v, primaryErr := d.primary.Get(key)
	if primaryErr == nil && v != "" {
		return v, nil
	}
	if errors.Is(primaryErr, errors.ErrKeyNotFound) {
		primaryErr = nil
	}
	if primaryErr != nil {
		log.Warn().Err(primaryErr).Str("key", key).Msg("Primary store read failed, trying fallback")
	}

	v, err := d.fallback.Get(key)
	if err == nil && v != "" {
		return v, nil
	}
	if err != nil && !errors.Is(err, errors.ErrKeyNotFound) {
		return "", errors.Wrapf(errors.Join(errors.ErrStoreUnavailable, primaryErr, err), "[Dual Get] %s", key)
	}
	if primaryErr != nil {
		return "", errors.Wrapf(errors.Join(errors.ErrStoreUnavailable, primaryErr), "[Dual Get] %s", key)
	}
	return "", errors.ErrKeyNotFound
}

// Set writes key to both stores, attempting the second even if the first fails.
func (d *Dual) Set(key, value string) error {
	return errors.Join(
		errors.Wrapf(d.primary.Set(key, value), "[Dual Set] primary %s", key),
		errors.Wrapf(d.fallback.Set(key, value), "[Dual Set] fallback %s", key),
	)
}

// SetPrimary writes key to the primary store only.
func (d *Dual) SetPrimary(key, value string) error {
	return errors.Wrapf(d.primary.Set(key, value), "[Dual SetPrimary] %s", key)
}

// Remove deletes key from both stores.
func (d *Dual) Remove(key string) error {
	return errors.Join(
		errors.Wrapf(d.primary.Remove(key), "[Dual Remove] primary %s", key),
		errors.Wrapf(d.fallback.Remove(key), "[Dual Remove] fallback %s", key),
	)
}

// Clear removes every key from both stores, continuing past failures.
func (d *Dual) Clear(keys ...string) error {
	var errs []error
	for _, k := range keys {
		errs = append(errs, d.Remove(k))
	}
	return errors.Join(errs...)
}
