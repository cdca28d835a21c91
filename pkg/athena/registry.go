// Package athena is the primitive capability registry (spec component C2).
//
// It holds a static table describing every cipher, MAC, and KDF ObscurCore
// knows how to configure: allowable key sizes, block sizes, nonce sizes, and
// whether padding or associated data apply. Every other package validates
// its configuration records against this table before touching key material,
// the way the teacher centralizes Matter's CRYPTO_* size constants in
// pkg/crypto instead of scattering literal numbers through callers.
package athena

// CipherKind is the tagged-sum discriminator for CipherConfig, matching
// spec §9's "Cipher variants {Block, Stream, AEAD} … a tagged sum with
// common init/process/reset operations".
type CipherKind int

const (
	// KindBlock is a block cipher operated in some chaining mode (CBC, ECB, CTR).
	KindBlock CipherKind = iota
	// KindStream is a stream cipher (Salsa20, ChaCha20 unauthenticated).
	KindStream
	// KindAEAD is an authenticated-encryption-with-associated-data cipher
	// (AES-GCM, AES-CCM, ChaCha20-Poly1305).
	KindAEAD
)

func (k CipherKind) String() string {
	switch k {
	case KindBlock:
		return "Block"
	case KindStream:
		return "Stream"
	case KindAEAD:
		return "AEAD"
	default:
		return "Unknown"
	}
}

// Padding names the padding scheme for a block cipher mode.
type Padding int

const (
	PaddingNone Padding = iota
	PaddingPKCS7
)

// CipherConfig fully describes one symmetric cipher instantiation (spec §3).
type CipherConfig struct {
	Kind    CipherKind
	Algo    string // e.g. "AES", "Salsa20", "ChaCha20Poly1305"
	Mode    string // block only: "CBC", "ECB", "CTR"
	Padding Padding

	KeySizeBits   int
	BlockSizeBits int // block/AEAD only

	IVSize int // bytes: block-size for Block/AEAD, registry nonce-size for Stream

	AEADMacSizeBits    int
	AEADAssociatedData []byte
}

// AuthFunctionKind discriminates the three families of AuthConfig.
type AuthFunctionKind int

const (
	AuthMAC AuthFunctionKind = iota
	AuthKDFAsMAC
	AuthPoly1305
)

func (k AuthFunctionKind) String() string {
	switch k {
	case AuthMAC:
		return "MAC"
	case AuthKDFAsMAC:
		return "KDF-as-MAC"
	case AuthPoly1305:
		return "Poly1305"
	default:
		return "Unknown"
	}
}

// AuthConfig describes one MAC/authentication-function instantiation
// (spec §3). Poly1305 carries an auxiliary block-cipher-encrypted nonce
// (AuxNonceCiphertext) so each Poly1305 key is used exactly once, the same
// trick the teacher's AES-CCM uses a block-encrypted S_0 to protect the tag.
type AuthConfig struct {
	Kind           AuthFunctionKind
	FunctionName   string // e.g. "HMAC-SHA256", "Poly1305"
	KeySizeBits    int
	Nonce          []byte
	Salt           []byte
	AdditionalData []byte

	AuxNonceCiphertext []byte // Poly1305 only
}

// KDFFunction names the two selectable key-derivation functions.
type KDFFunction int

const (
	KDFScrypt KDFFunction = iota
	KDFPBKDF2
)

// ScryptParams are the cost parameters for scrypt. N must be a power of two
// >= 1024 (spec §3).
type ScryptParams struct {
	N, R, P int
}

// PBKDF2Params are the cost parameters for PBKDF2.
type PBKDF2Params struct {
	Iterations int
	HashName   string // "SHA256", "SHA512"
}

// KDFConfig names a key-derivation function and its salt/parameters (spec §3).
type KDFConfig struct {
	Function KDFFunction
	Salt     []byte
	Scrypt   ScryptParams
	PBKDF2   PBKDF2Params
}

// capability describes the registry entry for one named algorithm.
type capability struct {
	kind             CipherKind
	keySizesBits     []int
	blockSizeBits    int // 0 if not block-shaped
	nonceSize        int // stream ciphers and AEAD nonce size in bytes
	aeadMacSizesBits []int
	allowedModes     []string // block only
}

// cipherRegistry is the static capability table (spec §4.1 "Athena").
var cipherRegistry = map[string]capability{
	"AES": {
		kind:          KindBlock,
		keySizesBits:  []int{128, 192, 256},
		blockSizeBits: 128,
		allowedModes:  []string{"CBC", "ECB", "CTR"},
	},
	"AES-GCM": {
		kind:             KindAEAD,
		keySizesBits:     []int{128, 192, 256},
		blockSizeBits:    128,
		nonceSize:        12,
		aeadMacSizesBits: []int{128},
	},
	"AES-CCM": {
		kind:             KindAEAD,
		keySizesBits:     []int{128},
		blockSizeBits:    128,
		nonceSize:        13,
		aeadMacSizesBits: []int{32, 48, 64, 80, 96, 112, 128},
	},
	"ChaCha20Poly1305": {
		kind:             KindAEAD,
		keySizesBits:     []int{256},
		nonceSize:        12,
		aeadMacSizesBits: []int{128},
	},
	"Salsa20": {
		kind:         KindStream,
		keySizesBits: []int{256},
		nonceSize:    8,
	},
}

// macRegistry names the allowable MAC output sizes per function.
var macRegistry = map[string]struct {
	keySizesBits []int
	outSizesBits []int
}{
	"HMAC-SHA256": {keySizesBits: []int{256}, outSizesBits: []int{256}},
	"HMAC-SHA512": {keySizesBits: []int{512}, outSizesBits: []int{512}},
	"Poly1305":    {keySizesBits: []int{256}, outSizesBits: []int{128}},
}

// LookupCipher returns the registry entry for algo, or
// (capability{}, false) if unknown.
func lookupCipher(algo string) (capability, bool) {
	c, ok := cipherRegistry[algo]
	return c, ok
}

// ValidateCipher checks cfg against the registry, implementing the
// invariants listed in spec §3 (CipherConfig).
func ValidateCipher(cfg CipherConfig) error {
	entry, ok := lookupCipher(cfg.Algo)
	if !ok {
		return ErrUnknownAlgorithm
	}
	if entry.kind != cfg.Kind {
		return ErrUnknownAlgorithm
	}
	if !containsInt(entry.keySizesBits, cfg.KeySizeBits) {
		return ErrKeySizeInvalid
	}

	switch cfg.Kind {
	case KindBlock:
		if entry.blockSizeBits != cfg.BlockSizeBits {
			return ErrBlockSizeInvalid
		}
		if !containsString(entry.allowedModes, cfg.Mode) {
			return ErrUnknownAlgorithm
		}
		if modeRequiresPadding(cfg.Mode) && cfg.Padding == PaddingNone {
			return ErrPaddingRequired
		}
		if cfg.IVSize != cfg.BlockSizeBits/8 {
			return ErrIVSizeInvalid
		}
	case KindStream:
		if cfg.Padding != PaddingNone {
			return ErrPaddingForbidden
		}
		if cfg.IVSize != entry.nonceSize {
			return ErrIVSizeInvalid
		}
	case KindAEAD:
		if cfg.Padding != PaddingNone {
			return ErrPaddingForbidden
		}
		if entry.blockSizeBits != 0 && cfg.BlockSizeBits != entry.blockSizeBits {
			return ErrBlockSizeInvalid
		}
		if cfg.IVSize != entry.nonceSize {
			return ErrIVSizeInvalid
		}
		if !containsInt(entry.aeadMacSizesBits, cfg.AEADMacSizeBits) {
			return ErrMacSizeInvalid
		}
	}
	return nil
}

// ValidateAuth checks cfg against the MAC registry.
func ValidateAuth(cfg AuthConfig) error {
	switch cfg.Kind {
	case AuthMAC, AuthPoly1305:
		entry, ok := macRegistry[cfg.FunctionName]
		if !ok {
			return ErrUnknownAlgorithm
		}
		if !containsInt(entry.keySizesBits, cfg.KeySizeBits) {
			return ErrKeySizeInvalid
		}
		if cfg.Kind == AuthPoly1305 && len(cfg.AuxNonceCiphertext) == 0 {
			return ErrIVSizeInvalid
		}
	case AuthKDFAsMAC:
		// KDF-as-MAC borrows the KDF's own parameter validation; the
		// function name must still be a known KDF.
		if cfg.FunctionName != "scrypt" && cfg.FunctionName != "pbkdf2" {
			return ErrUnknownAlgorithm
		}
	default:
		return ErrUnknownAlgorithm
	}
	return nil
}

// ValidateKDF checks cfg's cost parameters for sanity (spec §4.2).
func ValidateKDF(cfg KDFConfig) error {
	switch cfg.Function {
	case KDFScrypt:
		if cfg.Scrypt.N < 1024 || !isPowerOfTwo(cfg.Scrypt.N) {
			return ErrKDFParameterInvalid
		}
		if cfg.Scrypt.R <= 0 || cfg.Scrypt.P <= 0 {
			return ErrKDFParameterInvalid
		}
	case KDFPBKDF2:
		if cfg.PBKDF2.Iterations <= 0 {
			return ErrKDFParameterInvalid
		}
		if cfg.PBKDF2.HashName != "SHA256" && cfg.PBKDF2.HashName != "SHA512" {
			return ErrKDFParameterInvalid
		}
	default:
		return ErrKDFParameterInvalid
	}
	return nil
}

func modeRequiresPadding(mode string) bool {
	return mode == "CBC" || mode == "ECB"
}

func containsInt(set []int, v int) bool {
	for _, x := range set {
		if x == v {
			return true
		}
	}
	return false
}

func containsString(set []string, v string) bool {
	for _, x := range set {
		if x == v {
			return true
		}
	}
	return false
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
