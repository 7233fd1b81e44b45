package rsa_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	snailrsa "github.com/snailcrypt/snailcrypt-go/pkg/envelope/rsa"
)

var (
	keyOnce sync.Once
	key     *rsa.PrivateKey
)

func sharedKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()

	keyOnce.Do(func() {
		k, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic("failed to generate test RSA key: " + err.Error())
		}
		key = k
	})

	return key
}

func encodePEM(t *testing.T, pemType string) []byte {
	t.Helper()

	privateKey := sharedKey(t)

	var der []byte
	switch pemType {
	case "PUBLIC KEY":
		b, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
		require.NoError(t, err)
		der = b
	case "RSA PUBLIC KEY":
		der = x509.MarshalPKCS1PublicKey(&privateKey.PublicKey)
	case "RSA PRIVATE KEY":
		der = x509.MarshalPKCS1PrivateKey(privateKey)
	case "PRIVATE KEY":
		b, err := x509.MarshalPKCS8PrivateKey(privateKey)
		require.NoError(t, err)
		der = b
	default:
		t.Fatalf("unknown PEM type %q", pemType)
	}

	return pem.EncodeToMemory(&pem.Block{Type: pemType, Bytes: der})
}

func TestLoadPublicKeyFromPEM(t *testing.T) {
	for _, pemType := range []string{"PUBLIC KEY", "RSA PUBLIC KEY"} {
		t.Run(pemType, func(t *testing.T) {
			key, err := snailrsa.LoadPublicKeyFromPEM(encodePEM(t, pemType))
			require.NoError(t, err)
			require.Equal(t, 2048, key.N.BitLen())
			require.True(t, key.Equal(&sharedKey(t).PublicKey))
		})
	}
}

func TestLoadPrivateKeyFromPEM(t *testing.T) {
	for _, pemType := range []string{"RSA PRIVATE KEY", "PRIVATE KEY"} {
		t.Run(pemType, func(t *testing.T) {
			key, err := snailrsa.LoadPrivateKeyFromPEM(encodePEM(t, pemType))
			require.NoError(t, err)
			require.True(t, key.Equal(sharedKey(t)))
		})
	}
}

func TestLoadKeyFromPEM_StripsQuotes(t *testing.T) {
	quoted := append([]byte("'"), encodePEM(t, "RSA PRIVATE KEY")...)
	quoted = append(quoted, '\'')

	key, err := snailrsa.LoadPrivateKeyFromPEM(quoted)
	require.NoError(t, err)
	require.True(t, key.Equal(sharedKey(t)))
}

func TestLoadPublicKeyFromPEM_InvalidPEM(t *testing.T) {
	key, err := snailrsa.LoadPublicKeyFromPEM([]byte("this is not a valid PEM"))
	require.Error(t, err)
	require.Nil(t, key)
	require.Contains(t, err.Error(), "failed to decode PEM block")
}

func TestLoadKeyFromPEM_WrongPEMType(t *testing.T) {
	_, err := snailrsa.LoadPublicKeyFromPEM(encodePEM(t, "RSA PRIVATE KEY"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported PEM block type: RSA PRIVATE KEY")

	_, err = snailrsa.LoadPrivateKeyFromPEM(encodePEM(t, "PUBLIC KEY"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported PEM block type: PUBLIC KEY")
}

func TestLoadKeyFromPEM_NonRSAKey(t *testing.T) {
	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	pubBytes, err := x509.MarshalPKIXPublicKey(&ecKey.PublicKey)
	require.NoError(t, err)

	_, err = snailrsa.LoadPublicKeyFromPEM(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes}))
	require.Error(t, err)
	require.Contains(t, err.Error(), "not an RSA public key")

	privBytes, err := x509.MarshalPKCS8PrivateKey(ecKey)
	require.NoError(t, err)

	_, err = snailrsa.LoadPrivateKeyFromPEM(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privBytes}))
	require.Error(t, err)
	require.Contains(t, err.Error(), "not an RSA private key")
}

func TestLoadKeyFromPEMFile(t *testing.T) {
	dir := t.TempDir()

	pubPath := filepath.Join(dir, "public.pem")
	require.NoError(t, os.WriteFile(pubPath, encodePEM(t, "PUBLIC KEY"), 0o600))

	privPath := filepath.Join(dir, "private.pem")
	require.NoError(t, os.WriteFile(privPath, encodePEM(t, "RSA PRIVATE KEY"), 0o600))

	pub, err := snailrsa.LoadPublicKeyFromPEMFile(pubPath)
	require.NoError(t, err)

	priv, err := snailrsa.LoadPrivateKeyFromPEMFile(privPath)
	require.NoError(t, err)
	require.True(t, pub.Equal(&priv.PublicKey))

	_, err = snailrsa.LoadPublicKeyFromPEMFile(filepath.Join(dir, "missing.pem"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read PEM file")
}
