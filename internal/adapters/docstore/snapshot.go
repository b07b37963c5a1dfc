package docstore

import (
	"encoding/json"

	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/zerr"
)

// Save writes every table to the snapshot store.
func (s *Store) Save() error {
	if s.snapshots == nil {
		return nil
	}

	ds := s.Dataset()
	for table, docs := range datasetTables(ds) {
		data, err := json.Marshal(docs)
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrSnapshotEncodeFailed.Error()), "table", table)
		}
		if err := s.snapshots.Put(table, data); err != nil {
			return zerr.With(err, "table", table)
		}
	}
	return nil
}

// Restore loads tables from the snapshot store. It reports false when no snapshot exists,
// leaving the store untouched.
func (s *Store) Restore() (bool, error) {
	if s.snapshots == nil {
		return false, nil
	}

	var (
		ds    domain.Dataset
		found bool
	)
	for table, dst := range datasetTables(&ds) {
		data, err := s.snapshots.Get(table)
		if err != nil {
			return false, zerr.With(err, "table", table)
		}
		if data == nil {
			continue
		}
		found = true
		if err := json.Unmarshal(data, dst); err != nil {
			return false, zerr.With(zerr.Wrap(err, domain.ErrSnapshotDecodeFailed.Error()), "table", table)
		}
	}
	if !found {
		return false, nil
	}
	return true, s.Load(&ds)
}

// datasetTables maps each table name to a pointer to its slice in ds.
func datasetTables(ds *domain.Dataset) map[string]any {
	return map[string]any{
		tableProducts:      &ds.Products,
		tableCategories:    &ds.Categories,
		tableOrders:        &ds.Orders,
		tableOrderItems:    &ds.OrderItems,
		tableUsers:         &ds.Users,
		tableAddresses:     &ds.Addresses,
		tableCoupons:       &ds.Coupons,
		tableCartRules:     &ds.CartRules,
		tableCarts:         &ds.Carts,
		tableNotifications: &ds.Notifications,
	}
}
