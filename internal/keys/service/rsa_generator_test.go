package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/vouch/internal/signature"
	"github.com/allisson/vouch/internal/signature/signer"
)

func TestRSAKeyGenerator_Generate(t *testing.T) {
	gen := NewRSAKeyGenerator(2048)

	publicPEM, privatePEM, err := gen.Generate()
	require.NoError(t, err)

	t.Run("PublicKeyParses", func(t *testing.T) {
		pub, err := signature.ParsePublicKeyPEM([]byte(publicPEM))
		require.NoError(t, err)
		assert.Equal(t, 2048, pub.N.BitLen())
	})

	t.Run("PrivateKeyIsDistinctAndMatches", func(t *testing.T) {
		assert.NotEqual(t, publicPEM, privatePEM)
		assert.Contains(t, privatePEM, "BEGIN PRIVATE KEY")
		assert.NotContains(t, publicPEM, "PRIVATE")

		priv, err := signer.ParsePrivateKeyPEM([]byte(privatePEM))
		require.NoError(t, err)
		pub, err := signature.ParsePublicKeyPEM([]byte(publicPEM))
		require.NoError(t, err)
		assert.True(t, priv.PublicKey.Equal(pub))
	})
}

func TestNewRSAKeyGenerator_EnforcesMinimum(t *testing.T) {
	assert.Equal(t, 2048, NewRSAKeyGenerator(512).bits)
	assert.Equal(t, 3072, NewRSAKeyGenerator(3072).bits)
}
