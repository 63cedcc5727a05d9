// Package mail sends transactional email. Callers depend on the Mail
// interface and hand it a provider-neutral Message.
package mail
