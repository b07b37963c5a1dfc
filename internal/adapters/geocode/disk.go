package geocode

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/zerr"
)

type diskRecord struct {
	Query     string         `json:"query"`
	Places    []domain.Place `json:"places"`
	FetchedAt time.Time      `json:"fetchedAt"`
}

// diskCache stores one JSON file per normalized query, named by its xxhash digest.
type diskCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

func (d *diskCache) path(q string) string {
	return filepath.Join(d.dir, fmt.Sprintf("%016x.json", xxhash.Sum64String(q)))
}

func (d *diskCache) clock() time.Time {
	if d.now != nil {
		return d.now()
	}
	return time.Now()
}

func (d *diskCache) get(q string) ([]domain.Place, bool, error) {
	data, err := os.ReadFile(d.path(q))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, zerr.With(zerr.Wrap(err, domain.ErrGeocodeCacheFailed.Error()), "query", q)
	}
	var rec diskRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false, zerr.With(zerr.Wrap(err, domain.ErrGeocodeCacheFailed.Error()), "query", q)
	}
	// Digest collisions and expired records are misses.
	if rec.Query != q || (d.ttl > 0 && d.clock().Sub(rec.FetchedAt) > d.ttl) {
		return nil, false, nil
	}
	return rec.Places, true, nil
}

func (d *diskCache) put(q string, places []domain.Place) error {
	if err := os.MkdirAll(d.dir, domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrGeocodeCacheFailed.Error())
	}
	data, err := json.Marshal(diskRecord{Query: q, Places: places, FetchedAt: d.clock()})
	if err != nil {
		return zerr.Wrap(err, domain.ErrGeocodeCacheFailed.Error())
	}
	tmp, err := os.CreateTemp(d.dir, "place-*.tmp")
	if err != nil {
		return zerr.Wrap(err, domain.ErrGeocodeCacheFailed.Error())
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, domain.ErrGeocodeCacheFailed.Error())
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, domain.ErrGeocodeCacheFailed.Error())
	}
	if err := os.Rename(tmp.Name(), d.path(q)); err != nil {
		return zerr.Wrap(err, domain.ErrGeocodeCacheFailed.Error())
	}
	return nil
}
