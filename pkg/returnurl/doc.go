// Package returnurl issues and validates signed, expiring return-URL tokens.
//
// A token carries a destination path and its issuance timestamp, authenticated
// with HMAC-SHA256 and encoded with URL-safe base64. Tokens are self-contained:
// nothing is stored server-side, so a token's lifecycle is defined entirely by
// the timestamp it embeds and the wall clock at validation time. There is no
// revocation.
//
// Only paths from an allow-list supplied at construction can be issued, and
// the allow-list is checked again on validation because configuration may
// change between issuance and redemption. Every validation failure (malformed
// input, bad signature, expired, disallowed path) collapses to the single
// sentinel ErrInvalidToken so callers cannot probe why a token was rejected.
//
// Token format: base64url(path + ":" + issuedAtMs + ":" + hex(signature))
//
// # Usage
//
//	svc, err := returnurl.New(secret, []string{"/dashboard", "/review"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tok, err := svc.Issue("/dashboard")
//	if err != nil {
//	    // path not allow-listed; proceed without a return token
//	}
//
//	path, err := svc.Validate(tok)
//	if err != nil {
//	    // invalid, expired, or forged; proceed without a redirect
//	}
package returnurl
