package uid

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// ErrNoNodeIdentity is returned when neither /etc/machine-id nor the hostname
// can be read.
var ErrNoNodeIdentity = errors.New("uid: cannot determine node identity")

// ObjectID generates 24-byte hex ids: 6 bytes of millisecond time, 4 bytes of
// node hash, a 4-byte counter and 10 random bytes. Used for auth session ids,
// which end up in cookies and Redis keys.
type ObjectID struct {
	node    [4]byte
	counter atomic.Uint32
}

// NewObjectID seeds the generator from the node identity and crypto/rand.
func NewObjectID() (*ObjectID, error) {
	src, err := nodeIdentity()
	if err != nil {
		return nil, err
	}

	g := &ObjectID{}
	sum := sha256.Sum256([]byte(src + "/" + strconv.Itoa(os.Getpid())))
	copy(g.node[:], sum[:4])

	var seed [4]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, err
	}
	g.counter.Store(uint32(seed[0])<<24 | uint32(seed[1])<<16 | uint32(seed[2])<<8 | uint32(seed[3]))

	return g, nil
}

func nodeIdentity() (string, error) {
	if b, err := os.ReadFile("/etc/machine-id"); err == nil {
		if s := strings.TrimSpace(string(b)); s != "" {
			return s, nil
		}
	}
	if h, err := os.Hostname(); err == nil {
		if h = strings.TrimSpace(h); h != "" {
			return h, nil
		}
	}
	return "", ErrNoNodeIdentity
}

// Generate returns a 48-character lowercase hex id.
func (g *ObjectID) Generate() string {
	var raw [24]byte

	ts := uint64(time.Now().UnixMilli())
	for i := range 6 {
		raw[i] = byte(ts >> (8 * (5 - i)))
	}
	copy(raw[6:10], g.node[:])

	c := g.counter.Add(1)
	raw[10], raw[11], raw[12], raw[13] = byte(c>>24), byte(c>>16), byte(c>>8), byte(c)

	// crypto/rand.Read never returns an error on supported platforms.
	_, _ = rand.Read(raw[14:])

	return hex.EncodeToString(raw[:])
}
