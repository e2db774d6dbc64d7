package hashutil_test

import (
	"encoding/hex"
	"testing"

	"github.com/rohmanhakim/last-updated/pkg/hashutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/blake3"
)

func TestHashBytes_SHA256(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{
			name:     "empty data",
			data:     []byte{},
			expected: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:     "abc",
			data:     []byte("abc"),
			expected: "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := hashutil.HashBytes(tt.data, hashutil.HashAlgoSHA256)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestHashBytes_BLAKE3(t *testing.T) {
	page := []byte(`<p id="last-updated">Last updated: May 14, 2023</p>`)

	result, err := hashutil.HashBytes(page, hashutil.HashAlgoBLAKE3)
	require.NoError(t, err)

	expected := blake3.Sum256(page)
	assert.Equal(t, hex.EncodeToString(expected[:]), result)

	known, err := hashutil.HashBytes([]byte(""), hashutil.HashAlgoBLAKE3)
	require.NoError(t, err)
	assert.Equal(t, "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262", known)
}

func TestHashBytes_UnsupportedAlgorithm(t *testing.T) {
	result, err := hashutil.HashBytes([]byte("test data"), "md5")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported hash algorithm")
	assert.Empty(t, result)
}

func TestParseHashAlgo(t *testing.T) {
	tests := []struct {
		in      string
		want    hashutil.HashAlgo
		wantErr bool
	}{
		{in: "", want: hashutil.HashAlgoBLAKE3},
		{in: "blake3", want: hashutil.HashAlgoBLAKE3},
		{in: "sha256", want: hashutil.HashAlgoSHA256},
		{in: "crc32", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := hashutil.ParseHashAlgo(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
