package checkpoint

import (
	"errors"
	"fmt"

	"github.com/redsum/redsum/pkg/persist"
)

// Codec is an alias for [persist.Codec].
type Codec = persist.Codec

// Codec names accepted in configuration.
const (
	CodecJSON   = "json"
	CodecGob    = "gob"
	CodecGobLZ4 = "gob-lz4"
)

// ErrUnknownCodec indicates a codec name not recognized by CodecByName.
var ErrUnknownCodec = errors.New("unknown checkpoint codec")

// CodecByName maps a configured codec name to an implementation. JSON keeps
// the checkpoint inspectable; gob-lz4 trades that for size.
func CodecByName(name string) (Codec, error) {
	switch name {
	case CodecJSON:
		return persist.NewJSONCodec(), nil
	case CodecGob:
		return persist.NewGobCodec(), nil
	case CodecGobLZ4:
		return persist.NewLZ4Codec(persist.NewGobCodec()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}
