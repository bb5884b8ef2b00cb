package payment

import (
	"fmt"
	"sync"
	"unicode"
)

// PaymentHeader is the header the agent inspects for proof of payment.
const PaymentHeader = "X-PAYMENT"

/*
TokenStore guards the process-wide payment token. A token arrives once a
payment challenge resolves and rides along on every call until the task
that demanded it reaches a terminal outcome, at which point the engine
clears it. Tokens must be pure ASCII; anything else is treated as corrupt
and the store empties itself rather than poison the header.
*/
type TokenStore struct {
	mu    sync.RWMutex
	token string
}

func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Set validates and stores a freshly acquired token. A corrupt token
// clears the store and reports why.
func (store *TokenStore) Set(token string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for i := 0; i < len(token); i++ {
		if token[i] > unicode.MaxASCII {
			store.token = ""
			return fmt.Errorf("payment token contains non-ASCII byte at offset %d", i)
		}
	}

	store.token = token

	return nil
}

// Clear drops whatever token is held.
func (store *TokenStore) Clear() {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.token = ""
}

// Has reports whether a token is currently held.
func (store *TokenStore) Has() bool {
	store.mu.RLock()
	defer store.mu.RUnlock()

	return store.token != ""
}

// Headers contributes the payment header when a token is held and nothing
// otherwise, which lets the store hang permanently off an RPC client.
func (store *TokenStore) Headers() map[string]string {
	store.mu.RLock()
	defer store.mu.RUnlock()

	if store.token == "" {
		return nil
	}

	return map[string]string{PaymentHeader: store.token}
}
