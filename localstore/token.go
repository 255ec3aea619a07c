package localstore

import "context"

// TokenKey holds the current session token.
const TokenKey = "token"

func SaveToken(ctx context.Context, kv KV, token string) error {
	return kv.Set(ctx, TokenKey, []byte(token))
}

// LoadToken returns the stored token or "" when none is stored.
func LoadToken(ctx context.Context, kv KV) (string, error) {
	data, ok, err := kv.Get(ctx, TokenKey)
	if err != nil || !ok {
		return "", err
	}
	return string(data), nil
}

func ClearToken(ctx context.Context, kv KV) error {
	return kv.Delete(ctx, TokenKey)
}
