// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sops seals small secrets with SOPS envelope encryption. The data key
// is wrapped by every configured master key (age, GCP KMS, AWS KMS) and any
// one of them can unseal.
package sops

import (
	"errors"
	"fmt"
	"os"

	sopsapi "github.com/getsops/sops/v3"
	"github.com/getsops/sops/v3/aes"
	"github.com/getsops/sops/v3/age"
	scommon "github.com/getsops/sops/v3/cmd/sops/common"
	"github.com/getsops/sops/v3/config"
	"github.com/getsops/sops/v3/decrypt"
	"github.com/getsops/sops/v3/gcpkms"
	skeys "github.com/getsops/sops/v3/keys"
	awskms "github.com/getsops/sops/v3/kms"
	jsonstore "github.com/getsops/sops/v3/stores/json"
	"github.com/getsops/sops/v3/version"
)

var ErrNoMasterKeys = errors.New(
	"SOPS requires at least one master key to encrypt: configure an age recipient, a GCP KMS resource ID or AWS KMS key ARNs",
)

// MasterKeys selects the master keys used to wrap the data key
type MasterKeys struct {
	AgeRecipients    string `yaml:"ageRecipients"    envconfig:"SOPS_AGE_RECIPIENTS"`
	GCPKMSResourceID string `yaml:"gcpKmsResourceId" envconfig:"GCP_KMS_RESOURCE_ID"`
	AWSKMSKeyARNs    string `yaml:"awsKmsKeyArns"    envconfig:"AWS_KMS_KEY_ARNS"`
	AWSKMSProfile    string `yaml:"awsKmsProfile"    envconfig:"AWS_KMS_PROFILE"`
}

// MasterKeysFromEnv reads the master key configuration from HOMETTO_*
// environment variables
func MasterKeysFromEnv() MasterKeys {
	return MasterKeys{
		AgeRecipients:    os.Getenv("HOMETTO_SOPS_AGE_RECIPIENTS"),
		GCPKMSResourceID: os.Getenv("HOMETTO_GCP_KMS_RESOURCE_ID"),
		AWSKMSKeyARNs:    os.Getenv("HOMETTO_AWS_KMS_KEY_ARNS"),
		AWSKMSProfile:    os.Getenv("HOMETTO_AWS_KMS_PROFILE"),
	}
}

// Decrypt unseals data produced by Encrypt. Master key credentials are taken
// from the environment the way the sops CLI does (SOPS_AGE_KEY, cloud SDK
// credentials).
func Decrypt(data []byte) ([]byte, error) {
	ret, err := decrypt.Data(data, "binary")
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Encrypt seals data with a fresh data key wrapped by the given master keys
func Encrypt(data []byte, masterKeys MasterKeys) ([]byte, error) {
	storeConfig := &config.JSONBinaryStoreConfig{}
	input := jsonstore.NewBinaryStore(storeConfig)
	output := jsonstore.NewBinaryStore(storeConfig)

	// prevent double encryption
	branches, err := input.LoadPlainFile(data)
	if err != nil {
		return nil, fmt.Errorf("error loading data: %w", err)
	}
	for _, branch := range branches {
		for _, b := range branch {
			if b.Key == "sops" {
				return nil, errors.New("already encrypted")
			}
		}
	}

	tree := sopsapi.Tree{Branches: branches}
	keyGroups, err := masterKeys.keyGroups()
	if err != nil {
		return nil, err
	}
	tree.Metadata = sopsapi.Metadata{
		KeyGroups: keyGroups,
		Version:   version.Version,
	}

	dataKey, errs := tree.GenerateDataKey()
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed generating data key: %v", errs)
	}
	if err := scommon.EncryptTree(scommon.EncryptTreeOpts{
		DataKey: dataKey,
		Tree:    &tree,
		Cipher:  aes.NewCipher(),
	}); err != nil {
		return nil, fmt.Errorf("failed encrypt: %w", err)
	}

	encrypted, err := output.EmitEncryptedFile(tree)
	if err != nil {
		return nil, fmt.Errorf("failed output: %w", err)
	}
	return encrypted, nil
}

func (m MasterKeys) keyGroups() ([]sopsapi.KeyGroup, error) {
	keyGroups := []sopsapi.KeyGroup{}

	if m.AgeRecipients != "" {
		ageKeys, err := age.MasterKeysFromRecipients(m.AgeRecipients)
		if err != nil {
			return nil, fmt.Errorf("parse age recipients: %w", err)
		}
		keys := []skeys.MasterKey{}
		for _, k := range ageKeys {
			keys = append(keys, k)
		}
		if len(keys) > 0 {
			keyGroups = append(keyGroups, keys)
		}
	}

	if m.GCPKMSResourceID != "" {
		keys := []skeys.MasterKey{}
		for _, k := range gcpkms.MasterKeysFromResourceIDString(m.GCPKMSResourceID) {
			keys = append(keys, k)
		}
		if len(keys) > 0 {
			keyGroups = append(keyGroups, keys)
		}
	}

	if m.AWSKMSKeyARNs != "" {
		keys := []skeys.MasterKey{}
		for _, k := range awskms.MasterKeysFromArnString(m.AWSKMSKeyARNs, nil, m.AWSKMSProfile) {
			keys = append(keys, k)
		}
		if len(keys) > 0 {
			keyGroups = append(keyGroups, keys)
		}
	}

	if len(keyGroups) == 0 {
		return nil, ErrNoMasterKeys
	}
	return keyGroups, nil
}
