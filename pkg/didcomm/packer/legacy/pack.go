/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package legacy

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	chacha "golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/poly1305"

	"github.com/hyperledger/aries-messaging-go/pkg/internal/cryptoutil"
	"github.com/hyperledger/aries-messaging-go/pkg/kms/legacykms"
)

// Pack will encode the payload argument
// Using the protocol defined by Aries RFC 0019. Without a sender key the envelope is anonymous (Anoncrypt).
func (p *Packer) Pack(payload, sender []byte, recipientPubKeys [][]byte) ([]byte, error) {
	if len(recipientPubKeys) == 0 {
		return nil, errEmptyRecipients
	}

	if sender != nil && len(sender) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("pack: %w: sender key size %d", cryptoutil.ErrInvalidKey, len(sender))
	}

	cek := &[chacha.KeySize]byte{}

	_, err := p.randSource.Read(cek[:])
	if err != nil {
		return nil, fmt.Errorf("pack: failed to generate cek: %w", err)
	}

	nonce := make([]byte, chacha.NonceSizeX)

	_, err = p.randSource.Read(nonce)
	if err != nil {
		return nil, fmt.Errorf("pack: failed to generate random nonce: %w", err)
	}

	recipients, err := p.buildRecipients(cek, sender, recipientPubKeys)
	if err != nil {
		return nil, fmt.Errorf("pack: failed to build recipients: %w", err)
	}

	alg := anonCrypt
	if sender != nil {
		alg = authCrypt
	}

	protectedBytes, err := json.Marshal(protected{
		Enc:        encAlgorithm,
		Typ:        encodingType,
		Alg:        alg,
		Recipients: recipients,
	})
	if err != nil {
		return nil, fmt.Errorf("pack: failed to marshal protected header: %w", err)
	}

	chachaCipher, err := chacha.NewX(cek[:])
	if err != nil {
		return nil, fmt.Errorf("pack: failed to create cipher: %w", err)
	}

	aad := base64.URLEncoding.EncodeToString(protectedBytes)

	// 	Additional data is b64encode(jsonencode(protected))
	symPld := chachaCipher.Seal(nil, nonce, payload, []byte(aad))

	// symPld has a length of len(pld) + poly1035.TagSize
	tag := symPld[len(symPld)-poly1305.TagSize:]
	cipherText := symPld[0 : len(symPld)-poly1305.TagSize]

	out, err := json.Marshal(legacyEnvelope{
		Protected:  aad,
		IV:         base64.URLEncoding.EncodeToString(nonce),
		CipherText: base64.URLEncoding.EncodeToString(cipherText),
		Tag:        base64.URLEncoding.EncodeToString(tag),
	})
	if err != nil {
		return nil, fmt.Errorf("pack: failed to marshal envelope: %w", err)
	}

	return out, nil
}

func (p *Packer) buildRecipients(cek *[chacha.KeySize]byte, senderKey []byte, recPubKeys [][]byte) ([]recipient, error) {
	encodedRecipients := make([]recipient, 0, len(recPubKeys))

	for _, recKey := range recPubKeys {
		var (
			rec *recipient
			err error
		)

		if senderKey == nil {
			rec, err = p.buildAnonRecipient(cek, recKey)
		} else {
			rec, err = p.buildRecipient(cek, senderKey, recKey)
		}

		if err != nil {
			return nil, err
		}

		encodedRecipients = append(encodedRecipients, *rec)
	}

	return encodedRecipients, nil
}

// buildRecipient encodes the necessary data for the recipient to decrypt the message
// encrypting the CEK and sender Pub key.
func (p *Packer) buildRecipient(cek *[chacha.KeySize]byte, senderKey, recKey []byte) (*recipient, error) {
	var nonce [cryptoutil.NonceSize]byte

	_, err := p.randSource.Read(nonce[:])
	if err != nil {
		return nil, fmt.Errorf("buildRecipient: failed to generate random nonce: %w", err)
	}

	recEncKey, err := cryptoutil.PublicEd25519toCurve25519(recKey)
	if err != nil {
		return nil, fmt.Errorf("buildRecipient: failed to convert public Ed25519 to Curve25519: %w", err)
	}

	box, err := legacykms.NewCryptoBox(p.kms)
	if err != nil {
		return nil, fmt.Errorf("buildRecipient: failed to create new CryptoBox: %w", err)
	}

	encCEK, err := box.Easy(cek[:], nonce[:], recEncKey, senderKey)
	if err != nil {
		return nil, fmt.Errorf("buildRecipient: failed to encrypt cek: %w", err)
	}

	encSender, err := box.Seal([]byte(base58.Encode(senderKey)), recEncKey, p.randSource)
	if err != nil {
		return nil, fmt.Errorf("buildRecipient: failed to encrypt sender key: %w", err)
	}

	return &recipient{
		EncryptedKey: base64.URLEncoding.EncodeToString(encCEK),
		Header: recipientHeader{
			KID:    base58.Encode(recKey), // recKey is the Ed25519 pk
			Sender: base64.URLEncoding.EncodeToString(encSender),
			IV:     base64.URLEncoding.EncodeToString(nonce[:]),
		},
	}, nil
}

// buildAnonRecipient seals the CEK for the recipient with an ephemeral key pair.
func (p *Packer) buildAnonRecipient(cek *[chacha.KeySize]byte, recKey []byte) (*recipient, error) {
	recEncKey, err := cryptoutil.PublicEd25519toCurve25519(recKey)
	if err != nil {
		return nil, fmt.Errorf("buildAnonRecipient: failed to convert public Ed25519 to Curve25519: %w", err)
	}

	encCEK, err := legacykms.Seal(cek[:], recEncKey, p.randSource)
	if err != nil {
		return nil, fmt.Errorf("buildAnonRecipient: failed to encrypt cek: %w", err)
	}

	return &recipient{
		EncryptedKey: base64.URLEncoding.EncodeToString(encCEK),
		Header: recipientHeader{
			KID: base58.Encode(recKey),
		},
	}, nil
}
