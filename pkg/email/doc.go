// Package email sends transactional mail: sign-up verification links and
// filing status notifications. Production uses Postmark; development uses a
// sender that logs instead of delivering.
package email
