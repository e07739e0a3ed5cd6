//go:build !production

package diag

// Enabled says whether diagnostics are computed at all.
const Enabled = true
