package storagefakes

import (
	"sync"

	"github.com/jrsteele09/go-admin-console/storage"
	"github.com/pkg/errors"
)

var _ storage.Repo = (*FakeRepo)(nil)

// ErrInjected is returned by FakeRepo operations switched to fail.
var ErrInjected = errors.New("injected store failure")

// FakeRepo is an in-memory repo whose operations can be made to fail, for
// exercising partial writes across the two stores.
type FakeRepo struct {
	inner *storage.LocalStore

	lock       sync.Mutex
	failGet    bool
	failSet    bool
	failRemove bool
	sets       int
}

func NewFakeRepo() *FakeRepo {
	return &FakeRepo{inner: storage.NewLocalStore()}
}

func (r *FakeRepo) FailGet(fail bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.failGet = fail
}

func (r *FakeRepo) FailSet(fail bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.failSet = fail
}

func (r *FakeRepo) FailRemove(fail bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.failRemove = fail
}

// Sets returns the number of successful Set calls.
func (r *FakeRepo) Sets() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.sets
}

func (r *FakeRepo) Get(key string) (string, error) {
	r.lock.Lock()
	fail := r.failGet
	r.lock.Unlock()
	if fail {
		return "", errors.Wrap(ErrInjected, "Get")
	}
	return r.inner.Get(key)
}

func (r *FakeRepo) Set(key, value string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.failSet {
		return errors.Wrap(ErrInjected, "Set")
	}
	r.sets++
	return r.inner.Set(key, value)
}

func (r *FakeRepo) Remove(key string) error {
	r.lock.Lock()
	fail := r.failRemove
	r.lock.Unlock()
	if fail {
		return errors.Wrap(ErrInjected, "Remove")
	}
	return r.inner.Remove(key)
}
