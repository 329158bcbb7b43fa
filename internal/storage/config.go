// Copyright 2026 the Labor Stats Pipeline authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

// BlobstoreType defines a specific blobstore.
type BlobstoreType string

const (
	BlobstoreTypeAWSS3              BlobstoreType = "AWS_S3"
	BlobstoreTypeS3Compatible       BlobstoreType = "S3_COMPATIBLE"
	BlobstoreTypeAzureBlobStorage   BlobstoreType = "AZURE_BLOB_STORAGE"
	BlobstoreTypeGoogleCloudStorage BlobstoreType = "GOOGLE_CLOUD_STORAGE"
	BlobstoreTypeFilesystem         BlobstoreType = "FILESYSTEM"
	BlobstoreTypeMemory             BlobstoreType = "MEMORY"
)

// Config defines the configuration for a blobstore.
type Config struct {
	Type BlobstoreType `env:"BLOBSTORE, default=AWS_S3"`

	// AllowDelete enables DeleterFor. Nothing in the pipeline deletes data, so
	// this only exists for operator tooling.
	AllowDelete bool `env:"BLOBSTORE_ALLOW_DELETE, default=false"`

	S3Compatible S3CompatibleConfig
	Azure        AzureConfig
}

// S3CompatibleConfig configures an S3 API endpoint that is not AWS, such as
// Cloudflare R2 or MinIO.
type S3CompatibleConfig struct {
	Endpoint        string `env:"S3_ENDPOINT"`
	Region          string `env:"S3_REGION, default=auto"`
	AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
}

// AzureConfig configures Azure Blob Storage. When AccessKey is empty, managed
// identity is used.
type AzureConfig struct {
	AccountName string `env:"AZURE_STORAGE_ACCOUNT"`
	AccessKey   string `env:"AZURE_STORAGE_ACCESS_KEY"`
}

// TestConfigDefaults returns a configuration populated with the default values.
// It should only be used for testing.
func TestConfigDefaults() *Config {
	return &Config{
		Type: BlobstoreTypeAWSS3,
		S3Compatible: S3CompatibleConfig{
			Region: "auto",
		},
	}
}

// TestConfigValued returns a configuration populated with values that match
// TestConfigValues() It should only be used for testing.
func TestConfigValued() *Config {
	return &Config{
		Type:        BlobstoreTypeS3Compatible,
		AllowDelete: true,
		S3Compatible: S3CompatibleConfig{
			Endpoint:        "https://example.r2.cloudflarestorage.com",
			Region:          "auto",
			AccessKeyID:     "key",
			SecretAccessKey: "secret",
		},
	}
}

// TestConfigValues returns a list of configuration that corresponds to
// TestConfigValued. It should only be used for testing.
func TestConfigValues() map[string]string {
	return map[string]string{
		"BLOBSTORE":              "S3_COMPATIBLE",
		"BLOBSTORE_ALLOW_DELETE": "true",
		"S3_ENDPOINT":            "https://example.r2.cloudflarestorage.com",
		"S3_ACCESS_KEY_ID":       "key",
		"S3_SECRET_ACCESS_KEY":   "secret",
	}
}
