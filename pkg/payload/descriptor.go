package payload

import (
	"bytes"

	"github.com/viruswevh/ObscurCore/pkg/tlv"
)

// Descriptor field numbers for the portion of an item's descriptor that
// becomes C5's associated data — the "authenticatable clone" of spec §4.4,
// with the authentication_tag field itself always absent since it is the
// value the MAC/AEAD tag is protecting, never an input to it.
const (
	fieldUUID           = 1
	fieldType           = 2
	fieldPath           = 3
	fieldExternalLength = 4
	fieldFormatName     = 5
	fieldFormatData     = 6
)

// descriptorAAD serializes the authenticated (but never encrypted) portion
// of item's descriptor, deterministically, so both the writer's Close and
// the reader's Finish compute identical associated data from the same
// fields (spec §9: "descriptor serialization must be deterministic and
// byte-stable").
func descriptorAAD(item *Item) ([]byte, error) {
	var buf bytes.Buffer
	w := tlv.NewWriter(&buf)

	if err := w.PutBytes(tlv.FieldTag(fieldUUID), item.UUID[:]); err != nil {
		return nil, err
	}
	if err := w.PutUint(tlv.FieldTag(fieldType), uint64(item.Type)); err != nil {
		return nil, err
	}
	if err := w.PutString(tlv.FieldTag(fieldPath), item.Path); err != nil {
		return nil, err
	}
	if err := w.PutUint(tlv.FieldTag(fieldExternalLength), item.ExternalLength); err != nil {
		return nil, err
	}
	if item.FormatName != "" {
		if err := w.PutString(tlv.FieldTag(fieldFormatName), item.FormatName); err != nil {
			return nil, err
		}
	}
	if len(item.FormatData) > 0 {
		if err := w.PutBytes(tlv.FieldTag(fieldFormatData), item.FormatData); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
