package envelope

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
)

const (
	// KeySize is the length of content keys (AES-256).
	KeySize = 32

	// DefaultChunkSize bounds memory use per stream regardless of file size.
	DefaultChunkSize = 64 * 1024

	// maxChunkSize caps the chunk size accepted from a ciphertext header so
	// a corrupt header cannot force a huge allocation.
	maxChunkSize = 4 * 1024 * 1024

	version   = 0x01
	headerLen = 5
	nonceSize = 12
	tagSize   = 16
)

// GenerateKey returns a new random 256-bit content key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}
	return key, nil
}

// Encrypt seals the whole plaintext with the given key using the chunked
// stream format. Convenient for small payloads; use NewWriter for large
// files.
func Encrypt(key, plaintext []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, key)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decrypt opens a ciphertext produced by Encrypt or NewWriter. Any tamper,
// truncation, or wrong-key condition fails with ErrDecryptionFailed; partial
// plaintext is never returned.
func Decrypt(key, ciphertext []byte) ([]byte, error) {
	r, err := NewReader(bytes.NewReader(ciphertext), key)
	if err != nil {
		return nil, err
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return plaintext, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}
	return cipher.NewGCM(block)
}

// chunkAAD binds the chunk sequence number and the final-chunk flag to the
// ciphertext so frames cannot be reordered or dropped from the tail.
func chunkAAD(index uint64, final bool) []byte {
	aad := make([]byte, 9)
	for i := 7; i >= 0; i-- {
		aad[i] = byte(index & 0xff)
		index >>= 8
	}
	if final {
		aad[8] = 1
	}
	return aad
}

// Writer encrypts a stream chunk by chunk. It keeps at most one chunk
// buffered; the buffered chunk is sealed as non-final as soon as more input
// arrives, and Close seals the remainder with the final flag.
type Writer struct {
	dst       io.Writer
	aead      cipher.AEAD
	buf       []byte
	n         int
	chunkSize int
	index     uint64
	closed    bool
	err       error
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithChunkSize overrides DefaultChunkSize.
func WithChunkSize(size int) WriterOption {
	return func(w *Writer) {
		w.chunkSize = size
	}
}

// NewWriter starts an encrypted stream to dst and writes the format header
// immediately. The caller must Close to seal the final chunk; without it
// the ciphertext is truncated and will fail to decrypt.
func NewWriter(dst io.Writer, key []byte, opts ...WriterOption) (*Writer, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	w := &Writer{
		dst:       dst,
		aead:      aead,
		chunkSize: DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.chunkSize <= 0 || w.chunkSize > maxChunkSize {
		return nil, ErrInvalidChunkSize
	}
	w.buf = make([]byte, w.chunkSize)

	header := []byte{
		version,
		byte(w.chunkSize >> 24), byte(w.chunkSize >> 16),
		byte(w.chunkSize >> 8), byte(w.chunkSize),
	}
	if _, err := dst.Write(header); err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}
	return w, nil
}

func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	if w.closed {
		return 0, ErrWriterClosed
	}

	written := 0
	for len(p) > 0 {
		if w.n == w.chunkSize {
			if err := w.flush(false); err != nil {
				return written, err
			}
		}
		n := copy(w.buf[w.n:], p)
		w.n += n
		p = p[n:]
		written += n
	}
	return written, nil
}

// Close seals the final chunk. A zero-length final chunk is still written
// and authenticated, so empty files round-trip correctly.
func (w *Writer) Close() error {
	if w.closed {
		return w.err
	}
	w.closed = true
	if w.err != nil {
		return w.err
	}
	return w.flush(true)
}

func (w *Writer) flush(final bool) error {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		w.err = errors.Join(ErrEncryptionFailed, err)
		return w.err
	}

	frame := w.aead.Seal(nonce, nonce, w.buf[:w.n], chunkAAD(w.index, final))
	if _, err := w.dst.Write(frame); err != nil {
		w.err = errors.Join(ErrEncryptionFailed, err)
		return w.err
	}
	w.index++
	w.n = 0
	return nil
}

// Reader decrypts a stream produced by Writer. It reads one frame ahead so
// the last frame can be authenticated with the final flag before its
// plaintext is released.
type Reader struct {
	src       io.Reader
	aead      cipher.AEAD
	frameSize int
	next      []byte
	plain     []byte
	off       int
	index     uint64
	done      bool
	err       error
}

// NewReader validates the stream header and prepares chunked decryption.
func NewReader(src io.Reader, key []byte) (*Reader, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	header := make([]byte, headerLen)
	if _, err := io.ReadFull(src, header); err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	if header[0] != version {
		return nil, ErrDecryptionFailed
	}
	chunkSize := int(header[1])<<24 | int(header[2])<<16 | int(header[3])<<8 | int(header[4])
	if chunkSize <= 0 || chunkSize > maxChunkSize {
		return nil, ErrDecryptionFailed
	}

	r := &Reader{
		src:       src,
		aead:      aead,
		frameSize: nonceSize + chunkSize + tagSize,
	}

	// Prime the lookahead with the first frame; an empty source is a
	// truncated stream since even empty plaintext produces a final frame.
	frame, err := r.readFrame()
	if err != nil {
		return nil, err
	}
	if frame == nil {
		return nil, ErrDecryptionFailed
	}
	r.next = frame
	return r, nil
}

func (r *Reader) Read(p []byte) (int, error) {
	for {
		if r.off < len(r.plain) {
			n := copy(p, r.plain[r.off:])
			r.off += n
			return n, nil
		}
		if r.err != nil {
			return 0, r.err
		}
		if r.done {
			return 0, io.EOF
		}
		if err := r.advance(); err != nil {
			r.err = err
			return 0, err
		}
	}
}

// advance decrypts the buffered frame, using the presence of a following
// frame to decide whether the buffered one must carry the final flag.
func (r *Reader) advance() error {
	current := r.next
	following, err := r.readFrame()
	if err != nil {
		return err
	}
	r.next = following
	final := following == nil

	if len(current) < nonceSize+tagSize {
		return ErrDecryptionFailed
	}
	nonce, sealed := current[:nonceSize], current[nonceSize:]

	plain, err := r.aead.Open(nil, nonce, sealed, chunkAAD(r.index, final))
	if err != nil {
		return ErrDecryptionFailed
	}
	r.index++
	r.plain = plain
	r.off = 0
	if final {
		r.done = true
	}
	return nil
}

// readFrame returns the next frame, which may be shorter than frameSize for
// the final chunk, or nil when the source is exhausted.
func (r *Reader) readFrame() ([]byte, error) {
	buf := make([]byte, r.frameSize)
	n, err := io.ReadFull(r.src, buf)
	switch {
	case err == nil:
		return buf, nil
	case errors.Is(err, io.EOF):
		return nil, nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		return buf[:n], nil
	default:
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
}
