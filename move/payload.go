package move

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/sha3"
)

var ErrInvalidPayload = errors.New("invalid publish payload")

// Package is a compiled Move package ready to be published: the BCS encoded package
// metadata and the module bytecode in dependency order.
type Package struct {
	Metadata []byte
	Code     [][]byte
}

// Digest returns the hex encoded sha3-256 digest of the metadata followed by every module.
// Each part is length prefixed so that moving bytes between modules changes the digest.
func (p *Package) Digest() string {
	h := sha3.New256()
	writePart := func(b []byte) {
		var l [8]byte
		binary.LittleEndian.PutUint64(l[:], uint64(len(b)))
		h.Write(l[:])
		h.Write(b)
	}

	writePart(p.Metadata)
	for _, c := range p.Code {
		writePart(c)
	}

	return hex.EncodeToString(h.Sum(nil))
}

// payloadFile is the JSON written by `aptos move build-publish-payload`.
type payloadFile struct {
	FunctionID string       `json:"function_id"`
	TypeArgs   []string     `json:"type_args"`
	Args       []payloadArg `json:"args"`
}

type payloadArg struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// LoadPayloadFile reads a publish payload file produced by the Aptos CLI.
func LoadPayloadFile(path string) (*Package, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload file %s: %w", path, err)
	}

	pkg, err := DecodePayload(b)
	if err != nil {
		return nil, fmt.Errorf("payload file %s: %w", path, err)
	}

	return pkg, nil
}

// DecodePayload decodes the JSON publish payload into a Package. The payload must carry
// exactly two hex arguments: the metadata and the list of modules.
func DecodePayload(b []byte) (*Package, error) {
	var pf payloadFile
	if err := json.Unmarshal(b, &pf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	if len(pf.Args) != 2 {
		return nil, fmt.Errorf("%w: expected 2 arguments, got %d", ErrInvalidPayload, len(pf.Args))
	}
	for i, arg := range pf.Args {
		if arg.Type != "hex" {
			return nil, fmt.Errorf("%w: argument %d has type %q, expected hex", ErrInvalidPayload, i, arg.Type)
		}
	}

	var metadataHex string
	if err := json.Unmarshal(pf.Args[0].Value, &metadataHex); err != nil {
		return nil, fmt.Errorf("%w: metadata: %w", ErrInvalidPayload, err)
	}
	metadata, err := decodeHex(metadataHex)
	if err != nil {
		return nil, fmt.Errorf("%w: metadata: %w", ErrInvalidPayload, err)
	}

	var codeHex []string
	if err = json.Unmarshal(pf.Args[1].Value, &codeHex); err != nil {
		return nil, fmt.Errorf("%w: code: %w", ErrInvalidPayload, err)
	}
	if len(codeHex) == 0 {
		return nil, fmt.Errorf("%w: package has no modules", ErrInvalidPayload)
	}

	code := make([][]byte, 0, len(codeHex))
	for i, c := range codeHex {
		module, err := decodeHex(c)
		if err != nil {
			return nil, fmt.Errorf("%w: module %d: %w", ErrInvalidPayload, i, err)
		}
		code = append(code, module)
	}

	return &Package{Metadata: metadata, Code: code}, nil
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}
