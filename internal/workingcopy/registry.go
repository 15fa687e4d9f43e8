package workingcopy

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

const registryFile = "registry.db"

var bucketWorkingCopies = []byte("working-copies")

// Record is the registry entry of a persistent working copy.
type Record struct {
	Location     string    `json:"location"`
	Folder       string    `json:"folder"`
	Acquisitions int       `json:"acquisitions"`
	Corruptions  int       `json:"corruptions"`
	LastAcquired time.Time `json:"last_acquired"`
	LastReleased time.Time `json:"last_released,omitempty"`
}

// registry persists working-copy bookkeeping. The database is opened for
// each call so several processes can share one workspace root.
type registry struct {
	path    string
	timeout time.Duration
}

func (r *registry) update(fn func(b *bbolt.Bucket) error) error {
	db, err := bbolt.Open(r.path, 0o600, &bbolt.Options{Timeout: r.timeout})
	if err != nil {
		return fmt.Errorf("open registry: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketWorkingCopies)
		if err != nil {
			return err
		}
		return fn(b)
	})
	return errors.Join(err, db.Close())
}

func (r *registry) modify(folder string, fn func(rec *Record)) error {
	return r.update(func(b *bbolt.Bucket) error {
		var rec Record
		if raw := b.Get([]byte(folder)); raw != nil {
			if err := json.Unmarshal(raw, &rec); err != nil {
				return fmt.Errorf("decode record %s: %w", folder, err)
			}
		}
		rec.Folder = folder
		fn(&rec)
		raw, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put([]byte(folder), raw)
	})
}

func (r *registry) acquired(location, folder string, at time.Time) error {
	return r.modify(folder, func(rec *Record) {
		rec.Location = location
		rec.Acquisitions++
		rec.LastAcquired = at
	})
}

func (r *registry) released(folder string, corrupted bool, at time.Time) error {
	return r.modify(folder, func(rec *Record) {
		if corrupted {
			rec.Corruptions++
		}
		rec.LastReleased = at
	})
}

func (r *registry) remove(folder string) error {
	return r.update(func(b *bbolt.Bucket) error {
		return b.Delete([]byte(folder))
	})
}

func (r *registry) list() ([]Record, error) {
	var records []Record
	err := r.update(func(b *bbolt.Bucket) error {
		return b.ForEach(func(_, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Folder < records[j].Folder
	})
	return records, nil
}
