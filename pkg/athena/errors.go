package athena

import "errors"

// Sentinel errors for the primitive registry. Higher layers wrap these into
// obscurcore.Error values carrying the spec's error-kind taxonomy.
var (
	// ErrUnknownAlgorithm is returned when a config names an algorithm the
	// registry has no capability record for.
	ErrUnknownAlgorithm = errors.New("athena: unknown algorithm")

	// ErrKeySizeInvalid is returned when a key size is not in the
	// algorithm's allowable set.
	ErrKeySizeInvalid = errors.New("athena: key size not allowed for algorithm")

	// ErrBlockSizeInvalid is returned when a block size is not in the
	// algorithm's allowable set.
	ErrBlockSizeInvalid = errors.New("athena: block size not allowed for algorithm")

	// ErrMacSizeInvalid is returned when a MAC/tag size is not in the
	// algorithm's allowable set.
	ErrMacSizeInvalid = errors.New("athena: MAC size not allowed for algorithm")

	// ErrPaddingRequired is returned when a block mode that requires padding
	// (CBC, ECB) is configured with PaddingNone.
	ErrPaddingRequired = errors.New("athena: mode requires a padding scheme")

	// ErrPaddingForbidden is returned when an AEAD or stream config carries
	// a padding scheme (padding is meaningless for those kinds).
	ErrPaddingForbidden = errors.New("athena: padding not applicable to this cipher kind")

	// ErrIVSizeInvalid is returned when an IV/nonce length doesn't match
	// what the cipher kind and algorithm require.
	ErrIVSizeInvalid = errors.New("athena: IV/nonce size invalid for cipher")

	// ErrKDFParameterInvalid is returned for malformed KDF parameters
	// (e.g. a non-power-of-two scrypt N).
	ErrKDFParameterInvalid = errors.New("athena: KDF parameter invalid")
)
