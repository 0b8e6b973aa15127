package crypto

import (
	"context"
	"encoding/base64"

	"cloud.google.com/go/kms/apiv1/kmspb"
	"github.com/googleapis/gax-go/v2"

	"github.com/GregMSThompson/stocks-snapshot/internal/errs"
)

// kmsClient is the subset of *kms.KeyManagementClient used here.
type kmsClient interface {
	Encrypt(ctx context.Context, req *kmspb.EncryptRequest, opts ...gax.CallOption) (*kmspb.EncryptResponse, error)
	Decrypt(ctx context.Context, req *kmspb.DecryptRequest, opts ...gax.CallOption) (*kmspb.DecryptResponse, error)
}

// KMS encrypts widget API keys at rest with a Cloud KMS symmetric key.
type KMS struct {
	client  kmsClient
	keyName string
}

func NewKMS(client kmsClient, keyName string) *KMS {
	return &KMS{client: client, keyName: keyName}
}

// Encrypt returns base64 ciphertext.
func (k *KMS) Encrypt(ctx context.Context, plaintext string) (string, error) {
	resp, err := k.client.Encrypt(ctx, &kmspb.EncryptRequest{
		Name:      k.keyName,
		Plaintext: []byte(plaintext),
	})
	if err != nil {
		return "", errs.NewEncryptionError("failed to encrypt api key", err)
	}
	return base64.StdEncoding.EncodeToString(resp.Ciphertext), nil
}

// Decrypt takes base64 ciphertext produced by Encrypt.
func (k *KMS) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errs.NewEncryptionError("api key ciphertext is not base64", err)
	}
	resp, err := k.client.Decrypt(ctx, &kmspb.DecryptRequest{
		Name:       k.keyName,
		Ciphertext: raw,
	})
	if err != nil {
		return "", errs.NewEncryptionError("failed to decrypt api key", err)
	}
	return string(resp.Plaintext), nil
}
