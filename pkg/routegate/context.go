package routegate

import "context"

type contextKey struct{}

// SetAccountType stores the authenticated account type in the context.
func SetAccountType(ctx context.Context, accountType AccountType) context.Context {
	return context.WithValue(ctx, contextKey{}, accountType)
}

// AccountTypeFromContext retrieves the account type placed by SetAccountType.
func AccountTypeFromContext(ctx context.Context) (AccountType, error) {
	at, ok := ctx.Value(contextKey{}).(AccountType)
	if !ok {
		return "", ErrNoAccountInContext
	}
	return at, nil
}
