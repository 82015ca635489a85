// Package coupon issues flat lookup coupon codes: an opaque 8-character code
// mapped to a table of barcode -> amount. Codes are persisted in a bbolt
// bucket so they survive process restarts.
package coupon

import (
	"crypto/rand"
	"math/big"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 8
)

var bucketCoupons = []byte("coupons")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Manager stores and resolves coupon codes.
type Manager struct {
	db *bolt.DB
}

// Open opens (creating if needed) the coupon database at path.
func Open(path string) (*Manager, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "open coupon db")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCoupons)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Manager{db: db}, nil
}

// Close releases the underlying database.
func (m *Manager) Close() error {
	return m.db.Close()
}

// Add stores the item table under a freshly generated code and returns it.
func (m *Manager) Add(table map[string]float64) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	value, err := json.Marshal(table)
	if err != nil {
		return "", err
	}
	err = m.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCoupons).Put([]byte(code), value)
	})
	if err != nil {
		return "", errors.Wrap(err, "store coupon")
	}
	return code, nil
}

// Items resolves a code to its item table. The second return is false when
// the code is unknown.
func (m *Manager) Items(code string) (map[string]float64, bool, error) {
	var table map[string]float64
	found := false
	err := m.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(bucketCoupons).Get([]byte(code))
		if value == nil {
			return nil
		}
		found = true
		return json.Unmarshal(value, &table)
	})
	if err != nil {
		return nil, false, err
	}
	return table, found, nil
}

func generateCode() (string, error) {
	code := make([]byte, codeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Wrap(err, "generate coupon code")
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}
