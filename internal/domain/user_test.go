package domain

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestCredentialFormattingIsRedacted(t *testing.T) {
	cred := Credential{Hash: "$argon2id$secret-hash", Salt: "abcdefghijklmnopqrstuvwxyz012345"}

	for _, out := range []string{
		fmt.Sprint(cred),
		fmt.Sprintf("%v", cred),
		fmt.Sprintf("%+v", cred),
		fmt.Sprintf("%#v", cred),
		fmt.Sprintf("%+v", User{Username: "alice", Credential: cred}),
	} {
		assert.NotContains(t, out, cred.Hash)
		assert.NotContains(t, out, cred.Salt)
	}
}

func TestUserLogObjectOmitsCredential(t *testing.T) {
	user := &User{ID: 7, Username: "alice", Credential: Credential{Hash: "h", Salt: "s"}}

	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, user.MarshalLogObject(enc))

	assert.Equal(t, map[string]any{"id": int64(7), "username": "alice"}, enc.Fields)
}

func TestPublicViewOmitsCredential(t *testing.T) {
	user := User{ID: 7, Username: "alice", Credential: Credential{Hash: "h4sh", Salt: "s4lt"}}

	body, err := json.Marshal(user.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(body), "h4sh")
	assert.NotContains(t, string(body), "s4lt")
	assert.Contains(t, string(body), `"username":"alice"`)
	assert.Contains(t, string(body), `"id":7`)
}
