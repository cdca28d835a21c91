package payload

import (
	"errors"
	"fmt"
)

// StageItems validates every item before any I/O begins, aggregating every
// offending item into one joined error rather than failing on the first
// (spec §4.6 / §7: "missing stream binding or missing key is reported
// aggregated, one error per offending item, before any I/O begins"). writing
// selects which stream binding is required: Open for the write path, Sink
// for the read path.
func StageItems(items []*Item, writing bool) error {
	var errs []error
	for i, item := range items {
		if item.CipherKey == nil && item.KeyDerivation == nil {
			errs = append(errs, fmt.Errorf("item %d (%s): %w", i, item.UUID, ErrKeyMaterialMissing))
		}
		if writing && item.Open == nil {
			errs = append(errs, fmt.Errorf("item %d (%s): %w", i, item.UUID, ErrStreamBindingAbsent))
		}
		if !writing && item.Sink == nil {
			errs = append(errs, fmt.Errorf("item %d (%s): %w", i, item.UUID, ErrStreamBindingAbsent))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
