package server

import (
	"crypto/rand"
	"encoding/base64"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// KeyInfo describes an issued API key.
type KeyInfo struct {
	ID   string `json:"key_id"`
	Name string `json:"key_name"`
}

// KeyStore holds issued API keys in memory. Keys live for the process
// lifetime; callers needing durability sit in front of this server.
type KeyStore struct {
	mu   sync.RWMutex
	keys map[string]KeyInfo
}

func NewKeyStore() *KeyStore {
	return &KeyStore{keys: make(map[string]KeyInfo)}
}

// Add registers an externally supplied key value (e.g. from configuration)
// and returns its generated ID.
func (s *KeyStore) Add(value, name string) KeyInfo {
	info := KeyInfo{ID: uuid.NewString(), Name: name}
	s.mu.Lock()
	s.keys[value] = info
	s.mu.Unlock()
	return info
}

// Generate mints a fresh random key under the given name and returns both
// the secret value and its metadata.
func (s *KeyStore) Generate(name string) (string, KeyInfo) {
	value := randomToken(32)
	return value, s.Add(value, name)
}

// KeyListing is the public view of an issued key; the secret value is
// masked down to its last four characters.
type KeyListing struct {
	ID        string `json:"key_id"`
	Name      string `json:"key_name"`
	MaskedKey string `json:"masked_key"`
}

// List returns every issued key with its value masked, sorted by ID for
// stable output.
func (s *KeyStore) List() []KeyListing {
	s.mu.RLock()
	listings := make([]KeyListing, 0, len(s.keys))
	for value, info := range s.keys {
		listings = append(listings, KeyListing{ID: info.ID, Name: info.Name, MaskedKey: maskKey(value)})
	}
	s.mu.RUnlock()

	sort.Slice(listings, func(i, j int) bool { return listings[i].ID < listings[j].ID })
	return listings
}

// Delete revokes the key with the given ID, reporting whether it existed.
func (s *KeyStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for value, info := range s.keys {
		if info.ID == id {
			delete(s.keys, value)
			return true
		}
	}
	return false
}

func maskKey(value string) string {
	if len(value) < 4 {
		return "••••"
	}
	return "••••" + value[len(value)-4:]
}

// Lookup resolves a presented key value.
func (s *KeyStore) Lookup(value string) (KeyInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.keys[value]
	return info, ok
}

func randomToken(bytes int) string {
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; there is no
		// weaker source worth falling back to.
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
