/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package legacykms

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/box"

	"github.com/hyperledger/aries-messaging-go/pkg/internal/cryptoutil"
)

// CryptoBox provides an elliptic-curve-based authenticated encryption scheme
//
// Payloads are encrypted using symmetric encryption (XSalsa20Poly1305)
// using a shared key derived from a shared secret created by
// Curve25519 Elliptic Curve Diffie-Hellman key exchange.
//
// CryptoBox reads secret keys from the LegacyKMS so clients do not need to see the secrets themselves.
type CryptoBox struct {
	km *LegacyKMS
}

// NewCryptoBox creates a CryptoBox which provides crypto box encryption using the given KMS's keys.
func NewCryptoBox(w KeyManager) (*CryptoBox, error) {
	lkms, ok := w.(*LegacyKMS)
	if !ok || lkms == nil {
		return nil, fmt.Errorf("cannot use parameter argument as KMS")
	}

	return &CryptoBox{km: lkms}, nil
}

// Easy seals a message with a provided nonce.
// theirPub is a Curve25519 public key, myPub is the Ed25519 public key identifying the sender secret key.
func (b *CryptoBox) Easy(payload, nonce, theirPub, myPub []byte) ([]byte, error) {
	var recPubBytes [cryptoutil.Curve25519KeySize]byte

	copy(recPubBytes[:], theirPub)

	senderPriv, err := b.km.encPrivKey(myPub)
	if err != nil {
		return nil, fmt.Errorf("easy: failed to get sender key: %w", err)
	}

	var (
		priv       [cryptoutil.Curve25519KeySize]byte
		nonceBytes [cryptoutil.NonceSize]byte
	)

	copy(priv[:], senderPriv)
	copy(nonceBytes[:], nonce)

	ret := box.Seal(nil, payload, &nonceBytes, &recPubBytes, &priv)

	return ret, nil
}

// EasyOpen unseals a message sealed with Easy, where the nonce is provided.
// theirPub is the Curve25519 public key of the sender, myPub identifies the recipient secret key.
func (b *CryptoBox) EasyOpen(cipherText, nonce, theirPub, myPub []byte) ([]byte, error) {
	var sendPubBytes [cryptoutil.Curve25519KeySize]byte

	copy(sendPubBytes[:], theirPub)

	recipientPriv, err := b.km.encPrivKey(myPub)
	if err != nil {
		return nil, fmt.Errorf("easyOpen: failed to get recipient key: %w", err)
	}

	var (
		priv       [cryptoutil.Curve25519KeySize]byte
		nonceBytes [cryptoutil.NonceSize]byte
	)

	copy(priv[:], recipientPriv)
	copy(nonceBytes[:], nonce)

	out, success := box.Open(nil, cipherText, &nonceBytes, &sendPubBytes, &priv)
	if !success {
		return nil, errors.New("failed to unpack")
	}

	return out, nil
}

// Seal seals a payload using the equivalent of libsodium box_seal
//
// Generates an ephemeral keypair to use for the sender, and includes
// the ephemeral sender public key in the message.
func (b *CryptoBox) Seal(payload, theirEncPub []byte, randSource io.Reader) ([]byte, error) {
	return Seal(payload, theirEncPub, randSource)
}

// Seal is the key-less form of CryptoBox.Seal: anonymous encryption needs no secret of this agent.
func Seal(payload, theirEncPub []byte, randSource io.Reader) ([]byte, error) {
	if len(theirEncPub) != cryptoutil.Curve25519KeySize {
		return nil, cryptoutil.ErrInvalidKey
	}

	epk, esk, err := box.GenerateKey(randSource)
	if err != nil {
		return nil, err
	}

	var recPubBytes [cryptoutil.Curve25519KeySize]byte

	copy(recPubBytes[:], theirEncPub)

	nonce, err := cryptoutil.Nonce(epk[:], theirEncPub)
	if err != nil {
		return nil, err
	}

	ret := box.Seal(epk[:], payload, nonce, &recPubBytes, esk)

	return ret, nil
}

// SealOpen decrypts a payload encrypted with Seal
//
// Reads the ephemeral sender public key, prepended to a properly-formatted message,
// and uses that along with the recipient private key corresponding to myPub to decrypt the message.
func (b *CryptoBox) SealOpen(cipherText, myPub []byte) ([]byte, error) {
	if len(cipherText) < cryptoutil.Curve25519KeySize {
		return nil, errors.New("message too short")
	}

	recipientEncPriv, err := b.km.encPrivKey(myPub)
	if err != nil {
		return nil, fmt.Errorf("sealOpen: failed to get recipient key: %w", err)
	}

	var (
		epk  [cryptoutil.Curve25519KeySize]byte
		priv [cryptoutil.Curve25519KeySize]byte
	)

	copy(epk[:], cipherText[:cryptoutil.Curve25519KeySize])
	copy(priv[:], recipientEncPriv)

	recEncPub, err := cryptoutil.PublicEd25519toCurve25519(myPub)
	if err != nil {
		return nil, fmt.Errorf("sealOpen: failed to convert pub Ed25519 to X25519 key: %w", err)
	}

	nonce, err := cryptoutil.Nonce(epk[:], recEncPub)
	if err != nil {
		return nil, err
	}

	out, success := box.Open(nil, cipherText[cryptoutil.Curve25519KeySize:], nonce, &epk, &priv)
	if !success {
		return nil, errors.New("failed to unpack")
	}

	return out, nil
}
