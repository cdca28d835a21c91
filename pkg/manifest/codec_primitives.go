package manifest

import (
	"github.com/viruswevh/ObscurCore/pkg/athena"
	"github.com/viruswevh/ObscurCore/pkg/keyconfirm"
	"github.com/viruswevh/ObscurCore/pkg/tlv"
)

// Field numbers are local to each struct's own container, the way the
// teacher's TLV records nest context tags per structure rather than
// sharing one flat namespace (pkg/tlv's whole point is that a reader can
// skip a field number it doesn't recognize without derailing the rest of
// the structure).
const (
	fCipherKind          = 1
	fCipherAlgo          = 2
	fCipherMode          = 3
	fCipherPadding       = 4
	fCipherKeySizeBits   = 5
	fCipherBlockSizeBits = 6
	fCipherIVSize        = 7
	fCipherAEADMacBits   = 8
	fCipherAEADAssocData = 9

	fAuthKind        = 1
	fAuthFuncName    = 2
	fAuthKeySizeBits = 3
	fAuthNonce       = 4
	fAuthSalt        = 5
	fAuthAddData     = 6
	fAuthAuxNonceCT  = 7

	fKDFFunction         = 1
	fKDFSalt             = 2
	fKDFScryptN          = 3
	fKDFScryptR          = 4
	fKDFScryptP          = 5
	fKDFPBKDF2Iterations = 6
	fKDFPBKDF2HashName   = 7

	fConfirmFuncName = 1
	fConfirmSalt     = 2
)

func writeCipherConfig(w *tlv.Writer, tag tlv.Tag, cfg athena.CipherConfig) error {
	if err := w.StartStructure(tag); err != nil {
		return err
	}
	if err := w.PutUint(tlv.FieldTag(fCipherKind), uint64(cfg.Kind)); err != nil {
		return err
	}
	if err := w.PutString(tlv.FieldTag(fCipherAlgo), cfg.Algo); err != nil {
		return err
	}
	if err := w.PutString(tlv.FieldTag(fCipherMode), cfg.Mode); err != nil {
		return err
	}
	if err := w.PutUint(tlv.FieldTag(fCipherPadding), uint64(cfg.Padding)); err != nil {
		return err
	}
	if err := w.PutUint(tlv.FieldTag(fCipherKeySizeBits), uint64(cfg.KeySizeBits)); err != nil {
		return err
	}
	if err := w.PutUint(tlv.FieldTag(fCipherBlockSizeBits), uint64(cfg.BlockSizeBits)); err != nil {
		return err
	}
	if err := w.PutUint(tlv.FieldTag(fCipherIVSize), uint64(cfg.IVSize)); err != nil {
		return err
	}
	if err := w.PutUint(tlv.FieldTag(fCipherAEADMacBits), uint64(cfg.AEADMacSizeBits)); err != nil {
		return err
	}
	if len(cfg.AEADAssociatedData) > 0 {
		if err := w.PutBytes(tlv.FieldTag(fCipherAEADAssocData), cfg.AEADAssociatedData); err != nil {
			return err
		}
	}
	return w.EndContainer()
}

func readCipherConfig(r *tlv.Reader) (athena.CipherConfig, error) {
	var cfg athena.CipherConfig
	if err := r.EnterContainer(); err != nil {
		return cfg, err
	}
	for {
		if err := r.Next(); err != nil {
			return cfg, err
		}
		if r.IsEndOfContainer() {
			break
		}
		switch r.Tag().FieldNumber() {
		case fCipherKind:
			v, err := r.Uint()
			if err != nil {
				return cfg, err
			}
			cfg.Kind = athena.CipherKind(v)
		case fCipherAlgo:
			v, err := r.String()
			if err != nil {
				return cfg, err
			}
			cfg.Algo = v
		case fCipherMode:
			v, err := r.String()
			if err != nil {
				return cfg, err
			}
			cfg.Mode = v
		case fCipherPadding:
			v, err := r.Uint()
			if err != nil {
				return cfg, err
			}
			cfg.Padding = athena.Padding(v)
		case fCipherKeySizeBits:
			v, err := r.Uint()
			if err != nil {
				return cfg, err
			}
			cfg.KeySizeBits = int(v)
		case fCipherBlockSizeBits:
			v, err := r.Uint()
			if err != nil {
				return cfg, err
			}
			cfg.BlockSizeBits = int(v)
		case fCipherIVSize:
			v, err := r.Uint()
			if err != nil {
				return cfg, err
			}
			cfg.IVSize = int(v)
		case fCipherAEADMacBits:
			v, err := r.Uint()
			if err != nil {
				return cfg, err
			}
			cfg.AEADMacSizeBits = int(v)
		case fCipherAEADAssocData:
			v, err := r.Bytes()
			if err != nil {
				return cfg, err
			}
			cfg.AEADAssociatedData = v
		default:
			if err := r.Skip(); err != nil {
				return cfg, err
			}
		}
	}
	return cfg, r.ExitContainer()
}

func writeAuthConfig(w *tlv.Writer, tag tlv.Tag, cfg athena.AuthConfig) error {
	if err := w.StartStructure(tag); err != nil {
		return err
	}
	if err := w.PutUint(tlv.FieldTag(fAuthKind), uint64(cfg.Kind)); err != nil {
		return err
	}
	if err := w.PutString(tlv.FieldTag(fAuthFuncName), cfg.FunctionName); err != nil {
		return err
	}
	if err := w.PutUint(tlv.FieldTag(fAuthKeySizeBits), uint64(cfg.KeySizeBits)); err != nil {
		return err
	}
	if len(cfg.Nonce) > 0 {
		if err := w.PutBytes(tlv.FieldTag(fAuthNonce), cfg.Nonce); err != nil {
			return err
		}
	}
	if len(cfg.Salt) > 0 {
		if err := w.PutBytes(tlv.FieldTag(fAuthSalt), cfg.Salt); err != nil {
			return err
		}
	}
	if len(cfg.AdditionalData) > 0 {
		if err := w.PutBytes(tlv.FieldTag(fAuthAddData), cfg.AdditionalData); err != nil {
			return err
		}
	}
	if len(cfg.AuxNonceCiphertext) > 0 {
		if err := w.PutBytes(tlv.FieldTag(fAuthAuxNonceCT), cfg.AuxNonceCiphertext); err != nil {
			return err
		}
	}
	return w.EndContainer()
}

func readAuthConfig(r *tlv.Reader) (athena.AuthConfig, error) {
	var cfg athena.AuthConfig
	if err := r.EnterContainer(); err != nil {
		return cfg, err
	}
	for {
		if err := r.Next(); err != nil {
			return cfg, err
		}
		if r.IsEndOfContainer() {
			break
		}
		switch r.Tag().FieldNumber() {
		case fAuthKind:
			v, err := r.Uint()
			if err != nil {
				return cfg, err
			}
			cfg.Kind = athena.AuthFunctionKind(v)
		case fAuthFuncName:
			v, err := r.String()
			if err != nil {
				return cfg, err
			}
			cfg.FunctionName = v
		case fAuthKeySizeBits:
			v, err := r.Uint()
			if err != nil {
				return cfg, err
			}
			cfg.KeySizeBits = int(v)
		case fAuthNonce:
			v, err := r.Bytes()
			if err != nil {
				return cfg, err
			}
			cfg.Nonce = v
		case fAuthSalt:
			v, err := r.Bytes()
			if err != nil {
				return cfg, err
			}
			cfg.Salt = v
		case fAuthAddData:
			v, err := r.Bytes()
			if err != nil {
				return cfg, err
			}
			cfg.AdditionalData = v
		case fAuthAuxNonceCT:
			v, err := r.Bytes()
			if err != nil {
				return cfg, err
			}
			cfg.AuxNonceCiphertext = v
		default:
			if err := r.Skip(); err != nil {
				return cfg, err
			}
		}
	}
	return cfg, r.ExitContainer()
}

func writeKDFConfig(w *tlv.Writer, tag tlv.Tag, cfg athena.KDFConfig) error {
	if err := w.StartStructure(tag); err != nil {
		return err
	}
	if err := w.PutUint(tlv.FieldTag(fKDFFunction), uint64(cfg.Function)); err != nil {
		return err
	}
	if len(cfg.Salt) > 0 {
		if err := w.PutBytes(tlv.FieldTag(fKDFSalt), cfg.Salt); err != nil {
			return err
		}
	}
	if err := w.PutUint(tlv.FieldTag(fKDFScryptN), uint64(cfg.Scrypt.N)); err != nil {
		return err
	}
	if err := w.PutUint(tlv.FieldTag(fKDFScryptR), uint64(cfg.Scrypt.R)); err != nil {
		return err
	}
	if err := w.PutUint(tlv.FieldTag(fKDFScryptP), uint64(cfg.Scrypt.P)); err != nil {
		return err
	}
	if err := w.PutUint(tlv.FieldTag(fKDFPBKDF2Iterations), uint64(cfg.PBKDF2.Iterations)); err != nil {
		return err
	}
	if cfg.PBKDF2.HashName != "" {
		if err := w.PutString(tlv.FieldTag(fKDFPBKDF2HashName), cfg.PBKDF2.HashName); err != nil {
			return err
		}
	}
	return w.EndContainer()
}

func readKDFConfig(r *tlv.Reader) (athena.KDFConfig, error) {
	var cfg athena.KDFConfig
	if err := r.EnterContainer(); err != nil {
		return cfg, err
	}
	for {
		if err := r.Next(); err != nil {
			return cfg, err
		}
		if r.IsEndOfContainer() {
			break
		}
		switch r.Tag().FieldNumber() {
		case fKDFFunction:
			v, err := r.Uint()
			if err != nil {
				return cfg, err
			}
			cfg.Function = athena.KDFFunction(v)
		case fKDFSalt:
			v, err := r.Bytes()
			if err != nil {
				return cfg, err
			}
			cfg.Salt = v
		case fKDFScryptN:
			v, err := r.Uint()
			if err != nil {
				return cfg, err
			}
			cfg.Scrypt.N = int(v)
		case fKDFScryptR:
			v, err := r.Uint()
			if err != nil {
				return cfg, err
			}
			cfg.Scrypt.R = int(v)
		case fKDFScryptP:
			v, err := r.Uint()
			if err != nil {
				return cfg, err
			}
			cfg.Scrypt.P = int(v)
		case fKDFPBKDF2Iterations:
			v, err := r.Uint()
			if err != nil {
				return cfg, err
			}
			cfg.PBKDF2.Iterations = int(v)
		case fKDFPBKDF2HashName:
			v, err := r.String()
			if err != nil {
				return cfg, err
			}
			cfg.PBKDF2.HashName = v
		default:
			if err := r.Skip(); err != nil {
				return cfg, err
			}
		}
	}
	return cfg, r.ExitContainer()
}

func writeConfirmConfig(w *tlv.Writer, tag tlv.Tag, cfg keyconfirm.Config) error {
	if err := w.StartStructure(tag); err != nil {
		return err
	}
	if err := w.PutString(tlv.FieldTag(fConfirmFuncName), cfg.FunctionName); err != nil {
		return err
	}
	if err := w.PutBytes(tlv.FieldTag(fConfirmSalt), cfg.Salt); err != nil {
		return err
	}
	return w.EndContainer()
}

func readConfirmConfig(r *tlv.Reader) (keyconfirm.Config, error) {
	var cfg keyconfirm.Config
	if err := r.EnterContainer(); err != nil {
		return cfg, err
	}
	for {
		if err := r.Next(); err != nil {
			return cfg, err
		}
		if r.IsEndOfContainer() {
			break
		}
		switch r.Tag().FieldNumber() {
		case fConfirmFuncName:
			v, err := r.String()
			if err != nil {
				return cfg, err
			}
			cfg.FunctionName = v
		case fConfirmSalt:
			v, err := r.Bytes()
			if err != nil {
				return cfg, err
			}
			cfg.Salt = v
		default:
			if err := r.Skip(); err != nil {
				return cfg, err
			}
		}
	}
	return cfg, r.ExitContainer()
}
