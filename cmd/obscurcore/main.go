// obscurcore is a command-line front end over this module's package writer
// and reader: seal a file into an ObscurCore package under a passphrase, or
// open one back out.
//
// Usage:
//
//	obscurcore seal -in <path> -out <path> -passphrase <text> [-mux simple|frameshift|fabric]
//	obscurcore open -in <path> -out <path> -passphrase <text>
package main

import (
	"bytes"
	"crypto/rand"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/viruswevh/ObscurCore/pkg/athena"
	"github.com/viruswevh/ObscurCore/pkg/csprng"
	"github.com/viruswevh/ObscurCore/pkg/kdf"
	"github.com/viruswevh/ObscurCore/pkg/keyconfirm"
	"github.com/viruswevh/ObscurCore/pkg/manifest"
	"github.com/viruswevh/ObscurCore/pkg/multiplex"
	"github.com/viruswevh/ObscurCore/pkg/obscurcore"
	"github.com/viruswevh/ObscurCore/pkg/payload"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "seal":
		err = runSeal(os.Args[2:])
	case "open":
		err = runOpen(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "obscurcore: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s seal|open [options]\n", os.Args[0])
}

// envelopeCipher is the fixed AES-256-GCM manifest cipher this CLI
// configures; the library supports others, but a command-line tool needs
// one sensible default rather than exposing the whole Athena registry as
// flags.
var envelopeCipher = athena.CipherConfig{
	Kind: athena.KindAEAD, Algo: "AES-GCM",
	KeySizeBits: 256, BlockSizeBits: 128, IVSize: 12, AEADMacSizeBits: 128,
}

var envelopeAuth = athena.AuthConfig{
	Kind: athena.AuthMAC, FunctionName: "HMAC-SHA256", KeySizeBits: 256,
}

var itemCipher = athena.CipherConfig{
	Kind: athena.KindBlock, Algo: "AES", Mode: "CTR",
	KeySizeBits: 256, BlockSizeBits: 128, IVSize: 16,
}

var itemAuth = athena.AuthConfig{
	Kind: athena.AuthMAC, FunctionName: "HMAC-SHA256", KeySizeBits: 256,
}

func runSeal(args []string) error {
	fs := flag.NewFlagSet("seal", flag.ExitOnError)
	in := fs.String("in", "", "path to the file to seal (required)")
	out := fs.String("out", "", "path to write the package to (required)")
	passphrase := fs.String("passphrase", "", "pre-key passphrase (required)")
	muxName := fs.String("mux", "simple", "payload layout: simple, frameshift, or fabric")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" || *passphrase == "" {
		fs.Usage()
		return fmt.Errorf("-in, -out, and -passphrase are required")
	}

	mux, err := parseMux(*muxName)
	if err != nil {
		return err
	}

	plaintext, err := os.ReadFile(*in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	item := payload.NewItem(payload.ItemBinary, *in)
	item.ExternalLength = uint64(len(plaintext))
	item.Cipher = itemCipher
	item.Auth = itemAuth
	item.CipherKey = make([]byte, itemCipher.KeySizeBits/8)
	item.AuthKey = make([]byte, itemAuth.KeySizeBits/8)
	item.IV = make([]byte, itemCipher.IVSize)
	if err := randomFill(item.CipherKey, item.AuthKey, item.IV); err != nil {
		return err
	}
	item.Open = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(plaintext)), nil
	}

	prngKey := make([]byte, csprng.KeySize)
	prngNonce := make([]byte, csprng.NonceSize)
	if err := randomFill(prngKey, prngNonce); err != nil {
		return err
	}

	confirmCfg, err := mkKeyConfirmConfig()
	if err != nil {
		return err
	}

	writerCfg := obscurcore.WriterConfig{
		Items:      []*payload.Item{item},
		Multiplex:  mux,
		PRNGCipher: csprng.CipherSalsa20,
		PRNGKey:    prngKey,
		PRNGNonce:  prngNonce,
		Crypto: manifest.SealParams{
			Scheme:          manifest.SchemeSymmetricOnly,
			Cipher:          envelopeCipher,
			Auth:            envelopeAuth,
			KeyDerivation:   athena.KDFConfig{Function: athena.KDFScrypt, Salt: randomSalt(16), Scrypt: kdf.ScryptManifestLowEntropy},
			KeyConfirmation: confirmCfg,
		},
		PreKey: []byte(*passphrase),
	}

	w, err := obscurcore.NewWriter(writerCfg)
	if err != nil {
		return fmt.Errorf("configure writer: %w", err)
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	if err := w.Write(f); err != nil {
		return fmt.Errorf("seal package: %w", err)
	}
	return nil
}

func runOpen(args []string) error {
	fs := flag.NewFlagSet("open", flag.ExitOnError)
	in := fs.String("in", "", "path to the package to open (required)")
	out := fs.String("out", "", "path to write the recovered plaintext to (required)")
	passphrase := fs.String("passphrase", "", "pre-key passphrase (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" || *passphrase == "" {
		fs.Usage()
		return fmt.Errorf("-in, -out, and -passphrase are required")
	}

	f, err := os.Open(*in)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	outFile, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer outFile.Close()

	r := obscurcore.NewReader(obscurcore.ReaderConfig{
		PreKey: []byte(*passphrase),
		SinkFor: func(item *payload.Item, index int) (io.WriteCloser, error) {
			return nopWriteCloser{outFile}, nil
		},
	})

	if _, err := r.Read(f); err != nil {
		return fmt.Errorf("open package: %w", err)
	}
	return nil
}

func parseMux(name string) (multiplex.Config, error) {
	switch name {
	case "simple":
		return multiplex.Config{Scheme: multiplex.SchemeSimple}, nil
	case "frameshift":
		return multiplex.Config{
			Scheme:     multiplex.SchemeFrameshift,
			Frameshift: multiplex.FrameshiftParams{PadMin: 64, PadMax: 256},
		}, nil
	case "fabric":
		return multiplex.Config{
			Scheme: multiplex.SchemeFabric,
			Fabric: multiplex.FabricParams{StripeMin: 64, StripeMax: 512},
		}, nil
	default:
		return multiplex.Config{}, fmt.Errorf("unknown -mux %q (want simple, frameshift, or fabric)", name)
	}
}

func mkKeyConfirmConfig() (*keyconfirm.Config, error) {
	cfg, err := keyconfirm.NewConfig("HMAC-SHA256")
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func randomFill(bufs ...[]byte) error {
	for _, b := range bufs {
		if _, err := io.ReadFull(rand.Reader, b); err != nil {
			return fmt.Errorf("read entropy: %w", err)
		}
	}
	return nil
}

func randomSalt(n int) []byte {
	salt := make([]byte, n)
	_, _ = io.ReadFull(rand.Reader, salt)
	return salt
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
