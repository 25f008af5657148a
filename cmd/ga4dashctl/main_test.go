package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ga4dash/internal/config"
)

func TestGenerateKey(t *testing.T) {
	key, err := generateKey()
	require.NoError(t, err)
	assert.Len(t, key, config.PrivateKeyLength)

	other, err := generateKey()
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "(unset)", mask(""))
	assert.Equal(t, "****", mask("abc"))
	assert.Equal(t, "abcd****", mask("abcdefgh"))
}

func TestPrintConfigMasksSecrets(t *testing.T) {
	var buf bytes.Buffer
	printConfig(&buf, &config.Config{
		Environment:    config.Production,
		CacheBackend:   config.RedisCache,
		RedisAddr:      "redis:6379",
		PrivateKey:     "0123456789abcdef0123456789abcdef",
		GoogleClientID: "client-id.apps.googleusercontent.com",
	})

	out := buf.String()
	assert.Contains(t, out, "redis:         redis:6379 (db 0)")
	assert.Contains(t, out, "private key:   0123****")
	assert.NotContains(t, out, "0123456789abcdef0123456789abcdef")
}

func TestFindCommand(t *testing.T) {
	for _, cmd := range commands {
		assert.Same(t, cmd, findCommand(cmd.Name()))
	}
	assert.Nil(t, findCommand("migrate"))
}

func TestNonEmptyToken(t *testing.T) {
	token, err := nonEmptyToken("  ya29.token\n")
	require.NoError(t, err)
	assert.Equal(t, "ya29.token", token)

	_, err = nonEmptyToken("\n")
	assert.ErrorContains(t, err, tokenEnv)
}

func TestPrintUsageListsCommands(t *testing.T) {
	var buf bytes.Buffer
	printUsage(&buf)
	for _, cmd := range commands {
		assert.Contains(t, buf.String(), cmd.Name())
	}
}
