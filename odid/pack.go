package odid

import "github.com/pkg/errors"

// ErrPackSize is returned for an empty or oversized message pack.
var ErrPackSize = errors.New("odid: message pack must hold 1 to 9 messages")

// PackHeaderSize is the size of the pack header preceding the messages.
const PackHeaderSize = 3

// PackLen returns the encoded length of a pack holding n messages.
func PackLen(n int) int { return PackHeaderSize + n*MessageSize }

// EncodePack encodes entries into a message pack:
// header, SingleMessageSize (25), MsgPackSize (n), then the n messages.
func EncodePack(entries []Message) ([]byte, error) {
	if len(entries) == 0 || len(entries) > PackMaxMessages {
		return nil, errors.Wrapf(ErrPackSize, "got %d", len(entries))
	}
	b := make([]byte, PackHeaderSize, PackLen(len(entries)))
	b[0] = header(MessageTypePack)
	b[1] = MessageSize
	b[2] = uint8(len(entries))
	for _, m := range entries {
		b = append(b, m[:]...)
	}
	return b, nil
}
