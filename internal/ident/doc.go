// Package ident provides the identifier generators and clocks used to stamp
// survey records.
//
// Response ids are UUIDv7: 122 random-or-time bits, with a millisecond
// timestamp in the most significant bits. Two devices generating ids in the
// same millisecond still collide with probability ~2^-74 per pair, which is
// negligible for any booth fleet. Device ids are UUIDv4.
//
// Tests substitute FixedGenerator and StepClock for deterministic output.
package ident
