// Self-signed TLS identity bound to a node's Ed25519 key pair. A
// certificate's public key IS the node's PeerKey, so the TLS handshake
// itself proves possession of the matching private key: mutual
// authentication falls directly out of requiring and verifying client
// certificates, grounded on the crypto/tls listener construction in the
// pack reference file other_examples/2e2c86c9_LeJamon-goXRPLd__internal-peermanagement-overlay.go.go.
package transport

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"time"
)

func selfSignedCertificate(priv ed25519.PrivateKey) (tls.Certificate, error) {
	pub := priv.Public().(ed25519.PublicKey)

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, err
	}

	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: "robot-node"},
		NotBefore:             time.Unix(0, 0),
		NotAfter:              time.Now().AddDate(100, 0, 0),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, pub, priv)
	if err != nil {
		return tls.Certificate{}, err
	}

	return tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  priv,
	}, nil
}

func peerKeyFromCertificate(cert *x509.Certificate) (ed25519.PublicKey, bool) {
	pub, ok := cert.PublicKey.(ed25519.PublicKey)
	return pub, ok
}
