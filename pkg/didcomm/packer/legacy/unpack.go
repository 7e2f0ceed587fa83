/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package legacy

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	chacha "golang.org/x/crypto/chacha20poly1305"

	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/common/transport"
	"github.com/hyperledger/aries-messaging-go/pkg/internal/cryptoutil"
	"github.com/hyperledger/aries-messaging-go/pkg/kms/legacykms"
)

// Unpack will decode the envelope using the legacy format
// Using XChacha20 encryption algorithm and Poly1035 authenticator.
func (p *Packer) Unpack(envelope []byte) (*transport.Envelope, error) {
	var envelopeData legacyEnvelope

	err := json.Unmarshal(envelope, &envelopeData)
	if err != nil {
		return nil, fmt.Errorf("unpack: %w", err)
	}

	protectedBytes, err := base64.URLEncoding.DecodeString(envelopeData.Protected)
	if err != nil {
		return nil, fmt.Errorf("unpack: failed to decode protected header: %w", err)
	}

	var protectedData protected

	err = json.Unmarshal(protectedBytes, &protectedData)
	if err != nil {
		return nil, fmt.Errorf("unpack: %w", err)
	}

	if protectedData.Typ != encodingType {
		return nil, fmt.Errorf("message type %s not supported", protectedData.Typ)
	}

	if protectedData.Alg != authCrypt && protectedData.Alg != anonCrypt {
		return nil, fmt.Errorf("message format %s not supported", protectedData.Alg)
	}

	keys, err := p.getCEK(protectedData.Recipients, protectedData.Alg == authCrypt)
	if err != nil {
		return nil, err
	}

	data, err := decodeCipherText(keys.cek, &envelopeData)
	if err != nil {
		return nil, err
	}

	return &transport.Envelope{
		Message:    data,
		FromVerKey: keys.theirKey,
		ToVerKey:   keys.myKey,
	}, nil
}

type keys struct {
	cek      *[chacha.KeySize]byte
	theirKey []byte
	myKey    []byte
}

func (p *Packer) getCEK(recipients []recipient, authenticated bool) (*keys, error) {
	var candidateKeys []string

	for _, candidate := range recipients {
		candidateKeys = append(candidateKeys, candidate.Header.KID)
	}

	recKeyIdx, err := p.kms.FindVerKey(candidateKeys)
	if err != nil {
		return nil, fmt.Errorf("getCEK: no key accessible %w", err)
	}

	recip := recipients[recKeyIdx]
	recKey := base58.Decode(recip.Header.KID)

	box, err := legacykms.NewCryptoBox(p.kms)
	if err != nil {
		return nil, err
	}

	encCEK, err := base64.URLEncoding.DecodeString(recip.EncryptedKey)
	if err != nil {
		return nil, fmt.Errorf("getCEK: failed to decode encrypted key: %w", err)
	}

	var (
		cekSlice  []byte
		senderPub []byte
	)

	if authenticated {
		var senderPubCurve []byte

		senderPub, senderPubCurve, err = decodeSender(recip.Header.Sender, recKey, box)
		if err != nil {
			return nil, err
		}

		nonceSlice, e := base64.URLEncoding.DecodeString(recip.Header.IV)
		if e != nil {
			return nil, fmt.Errorf("getCEK: failed to decode nonce: %w", e)
		}

		cekSlice, err = box.EasyOpen(encCEK, nonceSlice, senderPubCurve, recKey)
	} else {
		cekSlice, err = box.SealOpen(encCEK, recKey)
	}

	if err != nil {
		return nil, fmt.Errorf("getCEK: failed to decrypt CEK: %w", err)
	}

	if !cryptoutil.IsChachaKeyValid(cekSlice) {
		return nil, fmt.Errorf("getCEK: %w: cek size %d", cryptoutil.ErrInvalidKey, len(cekSlice))
	}

	var cek [chacha.KeySize]byte

	copy(cek[:], cekSlice)

	return &keys{
		cek:      &cek,
		theirKey: senderPub,
		myKey:    recKey,
	}, nil
}

func decodeSender(b64Sender string, pk []byte, box *legacykms.CryptoBox) ([]byte, []byte, error) {
	encSender, err := base64.URLEncoding.DecodeString(b64Sender)
	if err != nil {
		return nil, nil, fmt.Errorf("decodeSender: %w", err)
	}

	senderPub, err := box.SealOpen(encSender, pk)
	if err != nil {
		return nil, nil, fmt.Errorf("decodeSender: %w", err)
	}

	senderData := base58.Decode(string(senderPub))

	senderPubCurve, err := cryptoutil.PublicEd25519toCurve25519(senderData)
	if err != nil {
		return nil, nil, fmt.Errorf("decodeSender: %w", err)
	}

	return senderData, senderPubCurve, nil
}

// decodeCipherText decodes (from base64) and decrypts the ciphertext using xchacha20poly1305.
func decodeCipherText(cek *[chacha.KeySize]byte, envelope *legacyEnvelope) ([]byte, error) {
	aad := []byte(envelope.Protected)

	cipherText, err := base64.URLEncoding.DecodeString(envelope.CipherText)
	if err != nil {
		return nil, fmt.Errorf("decodeCipherText: %w", err)
	}

	nonce, err := base64.URLEncoding.DecodeString(envelope.IV)
	if err != nil {
		return nil, fmt.Errorf("decodeCipherText: %w", err)
	}

	if len(nonce) != chacha.NonceSizeX {
		return nil, fmt.Errorf("decodeCipherText: invalid nonce size %d", len(nonce))
	}

	tag, err := base64.URLEncoding.DecodeString(envelope.Tag)
	if err != nil {
		return nil, fmt.Errorf("decodeCipherText: %w", err)
	}

	chachaCipher, err := chacha.NewX(cek[:])
	if err != nil {
		return nil, fmt.Errorf("decodeCipherText: %w", err)
	}

	payload := append(cipherText, tag...)

	message, err := chachaCipher.Open(nil, nonce, payload, aad)
	if err != nil {
		return nil, fmt.Errorf("decodeCipherText: %w", err)
	}

	return message, nil
}
