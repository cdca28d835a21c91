package payload

import (
	"fmt"

	"github.com/viruswevh/ObscurCore/pkg/athena"
	"github.com/viruswevh/ObscurCore/pkg/kdf"
	"github.com/viruswevh/ObscurCore/pkg/keyconfirm"
)

// resolveItemKeys returns the cipher key, MAC key, and IV an item's C5
// stream should use, either taken directly from the item's explicit fields
// or derived from preKey via the item's KeyDerivation config (spec §4.6:
// "explicit (cipher_key, authentication_key) … or pre-key + (KeyDerivation,
// KeyConfirmation) resolved at transfer time").
func resolveItemKeys(item *Item, preKey []byte) (cipherKey, macKey, iv []byte, err error) {
	if item.CipherKey != nil {
		return item.CipherKey, item.AuthKey, item.IV, nil
	}
	if item.KeyDerivation == nil {
		return nil, nil, nil, ErrKeyMaterialMissing
	}
	if preKey == nil {
		return nil, nil, nil, ErrKeyMaterialMissing
	}

	if item.KeyConfirmation != nil && item.KeyConfirmationOutput != nil {
		if !keyconfirm.Verify(preKey, *item.KeyConfirmation, item.KeyConfirmationOutput) {
			return nil, nil, nil, fmt.Errorf("%w: key confirmation rejected candidate pre-key", ErrKeyMaterialMissing)
		}
	}

	cipherKeyLen := item.Cipher.KeySizeBits / 8
	macKeyLen := item.Auth.KeySizeBits / 8
	ivLen := item.Cipher.IVSize

	out, err := kdf.Derive(append([]byte(nil), preKey...), *item.KeyDerivation, cipherKeyLen+macKeyLen+ivLen)
	if err != nil {
		return nil, nil, nil, err
	}
	cipherKey = append([]byte(nil), out[:cipherKeyLen]...)
	macKey = append([]byte(nil), out[cipherKeyLen:cipherKeyLen+macKeyLen]...)
	iv = append([]byte(nil), out[cipherKeyLen+macKeyLen:cipherKeyLen+macKeyLen+ivLen]...)
	athena.Zero(out)
	return cipherKey, macKey, iv, nil
}
