// Package testutil provides seeded data generators for tests.
//
//	rng := testutil.NewRNG(4711)
//	entries := testutil.Entries("e", rng.GaussianVectors(250, 16))
//
// SentinelEntries produces vectors whose first coordinate grows with
// insertion order, for checking that a reduction keeps rows aligned.
package testutil
