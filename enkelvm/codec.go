package enkelvm

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

const programMagic = "enkel-bytecode/1"

type programFile struct {
	Magic   string   `cbor:"1,keyasint"`
	Program *Program `cbor:"2,keyasint"`
}

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	encMode = em
}

func WriteProgram(w io.Writer, p *Program) error {
	return encMode.NewEncoder(w).Encode(programFile{
		Magic:   programMagic,
		Program: p,
	})
}

func ReadProgram(r io.Reader) (*Program, error) {
	var file programFile
	if err := cbor.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadProgram, err)
	}
	if file.Magic != programMagic {
		return nil, fmt.Errorf("%w: unknown format %q", ErrBadProgram, file.Magic)
	}
	if file.Program == nil {
		return nil, fmt.Errorf("%w: empty file", ErrBadProgram)
	}
	if err := file.Program.Validate(); err != nil {
		return nil, err
	}
	return file.Program, nil
}
