package ethers

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================
// Concurrent signing tests
// ============================================

// TestSign_Concurrent verifies that Sign is safe for unrestricted
// concurrent use against the same SigningKey instance: no operation
// mutates instance state, so no locking is involved.
func TestSign_Concurrent(t *testing.T) {
	key, err := NewSigningKey(privOne)
	require.NoError(t, err)

	const numWorkers = 8
	const signsPerWorker = 25

	// The reference signature every worker must reproduce.
	digest := testDigest(0x5a)
	want, err := key.Sign(digest)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mismatches int64
	errs := make(chan error, numWorkers*signsPerWorker)

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < signsPerWorker; i++ {
				sig, err := key.Sign(digest)
				if err != nil {
					errs <- err
					continue
				}
				if *sig != *want {
					atomic.AddInt64(&mismatches, 1)
				}
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent sign failed: %v", err)
	}
	assert.Zero(t, atomic.LoadInt64(&mismatches), "deterministic signing must not vary under concurrency")
}

// TestMixedOperations_Concurrent hammers every operation of one key
// from independent goroutines.
func TestMixedOperations_Concurrent(t *testing.T) {
	key, err := NewSigningKey(privTwo)
	require.NoError(t, err)
	peer, err := NewSigningKey(privThree)
	require.NoError(t, err)

	wantSecret, err := key.ComputeSharedSecret(peer.PublicKey())
	require.NoError(t, err)

	const numWorkers = 6
	var wg sync.WaitGroup
	var failures int64

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			digest := testDigest(byte(id))

			for i := 0; i < 20; i++ {
				sig, err := key.Sign(digest)
				if err != nil {
					atomic.AddInt64(&failures, 1)
					continue
				}
				pub, err := RecoverPublicKey(digest, sig)
				if err != nil || pub != key.PublicKey() {
					atomic.AddInt64(&failures, 1)
				}
				secret, err := key.ComputeSharedSecret(peer.CompressedPublicKey())
				if err != nil || secret != wantSecret {
					atomic.AddInt64(&failures, 1)
				}
				if _, err := ComputePublicKey(key.PublicKey(), i%2 == 0); err != nil {
					atomic.AddInt64(&failures, 1)
				}
			}
		}(w)
	}

	wg.Wait()
	require.Zero(t, atomic.LoadInt64(&failures), fmt.Sprintf("%d concurrent operations failed", failures))
}
