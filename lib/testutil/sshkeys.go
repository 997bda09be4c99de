// Copyright 2026 The Slackline Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/ssh"
)

// KeyPair holds the paths of a generated SSH key pair.
type KeyPair struct {
	PrivateKeyPath string
	PublicKeyPath  string
	// AuthorizedKey is the public key line without a trailing newline.
	AuthorizedKey string
}

// WriteKeyPair generates an ed25519 key pair and writes it to
// dir/name and dir/name.pub.
func WriteKeyPair(t *testing.T, dir, name string) KeyPair {
	t.Helper()
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating ed25519 key: %v", err)
	}
	return writeKeyPair(t, dir, name, publicKey, privateKey, nil)
}

// WriteRSAKeyPair generates a 2048-bit RSA key pair and writes it to
// dir/name and dir/name.pub.
func WriteRSAKeyPair(t *testing.T, dir, name string) KeyPair {
	t.Helper()
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating rsa key: %v", err)
	}
	return writeKeyPair(t, dir, name, &privateKey.PublicKey, privateKey, nil)
}

// WriteEncryptedKeyPair generates an ed25519 key pair whose private key is
// protected by passphrase.
func WriteEncryptedKeyPair(t *testing.T, dir, name, passphrase string) KeyPair {
	t.Helper()
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating ed25519 key: %v", err)
	}
	return writeKeyPair(t, dir, name, publicKey, privateKey, []byte(passphrase))
}

func writeKeyPair(t *testing.T, dir, name string, publicKey crypto.PublicKey, privateKey crypto.PrivateKey, passphrase []byte) KeyPair {
	t.Helper()

	var block *pem.Block
	var err error
	if passphrase != nil {
		block, err = ssh.MarshalPrivateKeyWithPassphrase(privateKey, name, passphrase)
	} else {
		block, err = ssh.MarshalPrivateKey(privateKey, name)
	}
	if err != nil {
		t.Fatalf("marshaling private key: %v", err)
	}

	sshPublicKey, err := ssh.NewPublicKey(publicKey)
	if err != nil {
		t.Fatalf("converting public key: %v", err)
	}
	authorizedKey := string(ssh.MarshalAuthorizedKey(sshPublicKey))
	authorizedKey = authorizedKey[:len(authorizedKey)-1]

	privatePath := filepath.Join(dir, name)
	publicPath := privatePath + ".pub"
	if err := os.WriteFile(privatePath, pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatalf("writing private key: %v", err)
	}
	if err := os.WriteFile(publicPath, []byte(authorizedKey+" "+name+"@test\n"), 0o644); err != nil {
		t.Fatalf("writing public key: %v", err)
	}

	return KeyPair{PrivateKeyPath: privatePath, PublicKeyPath: publicPath, AuthorizedKey: authorizedKey}
}
