package manifest

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"

	"github.com/viruswevh/ObscurCore/pkg/multiplex"
	"github.com/viruswevh/ObscurCore/pkg/payload"
	"github.com/viruswevh/ObscurCore/pkg/tlv"
)

const (
	fItemUUID              = 1
	fItemType              = 2
	fItemPath              = 3
	fItemExternalLength    = 4
	fItemInternalLength    = 5
	fItemFormatName        = 6
	fItemFormatData        = 7
	fItemCipher            = 8
	fItemCipherKey         = 9
	fItemAuth              = 10
	fItemAuthKey           = 11
	fItemAuthenticationTag = 12
	fItemKeyConfirmation   = 13
	fItemKeyConfirmOutput  = 14
	fItemKeyDerivation     = 15
	fItemIV                = 16
)

func writeItem(w *tlv.Writer, tag tlv.Tag, item *payload.Item) error {
	if err := w.StartStructure(tag); err != nil {
		return err
	}
	if err := w.PutBytes(tlv.FieldTag(fItemUUID), item.UUID[:]); err != nil {
		return err
	}
	if err := w.PutUint(tlv.FieldTag(fItemType), uint64(item.Type)); err != nil {
		return err
	}
	if err := w.PutString(tlv.FieldTag(fItemPath), item.Path); err != nil {
		return err
	}
	if err := w.PutUint(tlv.FieldTag(fItemExternalLength), item.ExternalLength); err != nil {
		return err
	}
	if err := w.PutUint(tlv.FieldTag(fItemInternalLength), item.InternalLength); err != nil {
		return err
	}
	if item.FormatName != "" {
		if err := w.PutString(tlv.FieldTag(fItemFormatName), item.FormatName); err != nil {
			return err
		}
	}
	if len(item.FormatData) > 0 {
		if err := w.PutBytes(tlv.FieldTag(fItemFormatData), item.FormatData); err != nil {
			return err
		}
	}
	if err := writeCipherConfig(w, tlv.FieldTag(fItemCipher), item.Cipher); err != nil {
		return err
	}
	if len(item.CipherKey) > 0 {
		if err := w.PutBytes(tlv.FieldTag(fItemCipherKey), item.CipherKey); err != nil {
			return err
		}
	}
	if err := writeAuthConfig(w, tlv.FieldTag(fItemAuth), item.Auth); err != nil {
		return err
	}
	if len(item.AuthKey) > 0 {
		if err := w.PutBytes(tlv.FieldTag(fItemAuthKey), item.AuthKey); err != nil {
			return err
		}
	}
	if len(item.AuthenticationTag) > 0 {
		if err := w.PutBytes(tlv.FieldTag(fItemAuthenticationTag), item.AuthenticationTag); err != nil {
			return err
		}
	}
	if item.KeyConfirmation != nil {
		if err := writeConfirmConfig(w, tlv.FieldTag(fItemKeyConfirmation), *item.KeyConfirmation); err != nil {
			return err
		}
	}
	if len(item.KeyConfirmationOutput) > 0 {
		if err := w.PutBytes(tlv.FieldTag(fItemKeyConfirmOutput), item.KeyConfirmationOutput); err != nil {
			return err
		}
	}
	if item.KeyDerivation != nil {
		if err := writeKDFConfig(w, tlv.FieldTag(fItemKeyDerivation), *item.KeyDerivation); err != nil {
			return err
		}
	}
	if len(item.IV) > 0 {
		if err := w.PutBytes(tlv.FieldTag(fItemIV), item.IV); err != nil {
			return err
		}
	}
	return w.EndContainer()
}

func readItem(r *tlv.Reader) (*payload.Item, error) {
	item := &payload.Item{}
	if err := r.EnterContainer(); err != nil {
		return nil, err
	}
	for {
		if err := r.Next(); err != nil {
			return nil, err
		}
		if r.IsEndOfContainer() {
			break
		}
		switch r.Tag().FieldNumber() {
		case fItemUUID:
			v, err := r.Bytes()
			if err != nil {
				return nil, err
			}
			id, err := uuid.FromBytes(v)
			if err != nil {
				return nil, fmt.Errorf("%w: item uuid: %v", ErrFormatMalformed, err)
			}
			item.UUID = id
		case fItemType:
			v, err := r.Uint()
			if err != nil {
				return nil, err
			}
			item.Type = payload.ItemType(v)
		case fItemPath:
			v, err := r.String()
			if err != nil {
				return nil, err
			}
			item.Path = v
		case fItemExternalLength:
			v, err := r.Uint()
			if err != nil {
				return nil, err
			}
			item.ExternalLength = v
		case fItemInternalLength:
			v, err := r.Uint()
			if err != nil {
				return nil, err
			}
			item.InternalLength = v
		case fItemFormatName:
			v, err := r.String()
			if err != nil {
				return nil, err
			}
			item.FormatName = v
		case fItemFormatData:
			v, err := r.Bytes()
			if err != nil {
				return nil, err
			}
			item.FormatData = v
		case fItemCipher:
			v, err := readCipherConfig(r)
			if err != nil {
				return nil, err
			}
			item.Cipher = v
		case fItemCipherKey:
			v, err := r.Bytes()
			if err != nil {
				return nil, err
			}
			item.CipherKey = v
		case fItemAuth:
			v, err := readAuthConfig(r)
			if err != nil {
				return nil, err
			}
			item.Auth = v
		case fItemAuthKey:
			v, err := r.Bytes()
			if err != nil {
				return nil, err
			}
			item.AuthKey = v
		case fItemAuthenticationTag:
			v, err := r.Bytes()
			if err != nil {
				return nil, err
			}
			item.AuthenticationTag = v
		case fItemKeyConfirmation:
			v, err := readConfirmConfig(r)
			if err != nil {
				return nil, err
			}
			item.KeyConfirmation = &v
		case fItemKeyConfirmOutput:
			v, err := r.Bytes()
			if err != nil {
				return nil, err
			}
			item.KeyConfirmationOutput = v
		case fItemKeyDerivation:
			v, err := readKDFConfig(r)
			if err != nil {
				return nil, err
			}
			item.KeyDerivation = &v
		case fItemIV:
			v, err := r.Bytes()
			if err != nil {
				return nil, err
			}
			item.IV = v
		default:
			if err := r.Skip(); err != nil {
				return nil, err
			}
		}
	}
	if err := r.ExitContainer(); err != nil {
		return nil, err
	}
	return item, nil
}

const (
	fBodyItems           = 1
	fBodyPayloadConfig   = 2
	fPayloadScheme       = 1
	fPayloadFrameshiftMin = 2
	fPayloadFrameshiftMax = 3
	fPayloadFabricMin    = 4
	fPayloadFabricMax    = 5
	fPayloadPRNGName     = 6
	fPayloadPRNGKey      = 7
	fPayloadPRNGNonce    = 8
)

// encodeManifestBody serializes the ordered item list and the payload
// multiplexing configuration: together, the plaintext protected by the
// manifest envelope's authenticated cipher stream (spec §4.8/§4.9).
func encodeManifestBody(m *Manifest) ([]byte, error) {
	var buf bytes.Buffer
	w := tlv.NewWriter(&buf)
	if err := w.StartArray(tlv.FieldTag(fBodyItems)); err != nil {
		return nil, err
	}
	for _, item := range m.Items {
		if err := writeItem(w, tlv.Anonymous(), item); err != nil {
			return nil, err
		}
	}
	if err := w.EndContainer(); err != nil {
		return nil, err
	}

	if err := w.StartStructure(tlv.FieldTag(fBodyPayloadConfig)); err != nil {
		return nil, err
	}
	cfg := m.Payload
	if err := w.PutUint(tlv.FieldTag(fPayloadScheme), uint64(cfg.Multiplex.Scheme)); err != nil {
		return nil, err
	}
	if err := w.PutUint(tlv.FieldTag(fPayloadFrameshiftMin), uint64(cfg.Multiplex.Frameshift.PadMin)); err != nil {
		return nil, err
	}
	if err := w.PutUint(tlv.FieldTag(fPayloadFrameshiftMax), uint64(cfg.Multiplex.Frameshift.PadMax)); err != nil {
		return nil, err
	}
	if err := w.PutUint(tlv.FieldTag(fPayloadFabricMin), uint64(cfg.Multiplex.Fabric.StripeMin)); err != nil {
		return nil, err
	}
	if err := w.PutUint(tlv.FieldTag(fPayloadFabricMax), uint64(cfg.Multiplex.Fabric.StripeMax)); err != nil {
		return nil, err
	}
	if err := w.PutString(tlv.FieldTag(fPayloadPRNGName), cfg.PRNGName); err != nil {
		return nil, err
	}
	if err := w.PutBytes(tlv.FieldTag(fPayloadPRNGKey), cfg.PRNGKey); err != nil {
		return nil, err
	}
	if err := w.PutBytes(tlv.FieldTag(fPayloadPRNGNonce), cfg.PRNGNonce); err != nil {
		return nil, err
	}
	if err := w.EndContainer(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// decodeManifestBody is encodeManifestBody's inverse.
func decodeManifestBody(body []byte) (*Manifest, error) {
	r := tlv.NewReader(bytes.NewReader(body))
	m := &Manifest{}

	if err := r.Next(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormatMalformed, err)
	}
	if r.Tag().FieldNumber() != fBodyItems {
		return nil, fmt.Errorf("%w: expected items array first", ErrFormatMalformed)
	}
	if err := r.EnterContainer(); err != nil {
		return nil, err
	}
	for {
		if err := r.Next(); err != nil {
			return nil, err
		}
		if r.IsEndOfContainer() {
			break
		}
		item, err := readItemFromCurrent(r)
		if err != nil {
			return nil, err
		}
		m.Items = append(m.Items, item)
	}
	if err := r.ExitContainer(); err != nil {
		return nil, err
	}

	if err := r.Next(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormatMalformed, err)
	}
	if r.Tag().FieldNumber() != fBodyPayloadConfig {
		return nil, fmt.Errorf("%w: expected payload configuration struct", ErrFormatMalformed)
	}
	if err := r.EnterContainer(); err != nil {
		return nil, err
	}
	for {
		if err := r.Next(); err != nil {
			return nil, err
		}
		if r.IsEndOfContainer() {
			break
		}
		switch r.Tag().FieldNumber() {
		case fPayloadScheme:
			v, err := r.Uint()
			if err != nil {
				return nil, err
			}
			m.Payload.Multiplex.Scheme = multiplex.Scheme(v)
		case fPayloadFrameshiftMin:
			v, err := r.Uint()
			if err != nil {
				return nil, err
			}
			m.Payload.Multiplex.Frameshift.PadMin = uint32(v)
		case fPayloadFrameshiftMax:
			v, err := r.Uint()
			if err != nil {
				return nil, err
			}
			m.Payload.Multiplex.Frameshift.PadMax = uint32(v)
		case fPayloadFabricMin:
			v, err := r.Uint()
			if err != nil {
				return nil, err
			}
			m.Payload.Multiplex.Fabric.StripeMin = uint32(v)
		case fPayloadFabricMax:
			v, err := r.Uint()
			if err != nil {
				return nil, err
			}
			m.Payload.Multiplex.Fabric.StripeMax = uint32(v)
		case fPayloadPRNGName:
			v, err := r.String()
			if err != nil {
				return nil, err
			}
			m.Payload.PRNGName = v
		case fPayloadPRNGKey:
			v, err := r.Bytes()
			if err != nil {
				return nil, err
			}
			m.Payload.PRNGKey = v
		case fPayloadPRNGNonce:
			v, err := r.Bytes()
			if err != nil {
				return nil, err
			}
			m.Payload.PRNGNonce = v
		default:
			if err := r.Skip(); err != nil {
				return nil, err
			}
		}
	}
	if err := r.ExitContainer(); err != nil {
		return nil, err
	}

	return m, nil
}

// readItemFromCurrent reads an item struct whose opening element the reader
// has already advanced onto (used for array elements, which Next() has
// already positioned on rather than a container's named field).
func readItemFromCurrent(r *tlv.Reader) (*payload.Item, error) {
	return readItem(r)
}
