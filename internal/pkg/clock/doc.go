// Package clock abstracts the wall clock. OTP steps, validity windows and
// token expiry are all computed from a Clocker, so tests drive them with Fixed.
package clock
