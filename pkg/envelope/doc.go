// Package envelope implements per-object authenticated encryption for file
// contents.
//
// Every file is encrypted with its own random 256-bit key using AES-GCM.
// Ciphertext is a sequence of independently sealed chunks, so memory use
// during encryption and decryption is bounded by the chunk size rather than
// the file size. Each chunk's sequence number and a final-chunk flag are
// bound as associated data: reordering chunks, truncating the stream, or
// decrypting with the wrong key all fail authentication. Decryption never
// yields partial plaintext for a chunk that failed to authenticate.
//
// The wire layout is:
//
//	[1]version [4]chunkSize  header, big-endian
//	repeated frames: [12]nonce [n+16]sealed chunk
//
// The final frame may be shorter than chunkSize (including empty for
// zero-length plaintext) and is sealed with the final flag set.
package envelope
