// Package mail sends the one-time code emails. Callers depend on the Mail
// interface; SMTP is the only provider.
package mail
