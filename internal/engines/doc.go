// Package engines describes the encrypted-filesystem backends sirikali drives.
//
// A Registry holds one Descriptor per backend (ecryptfs, gocryptfs, cryfs,
// encfs, sshfs). Descriptors are plain structs carrying function values for
// command construction, password encoding and error classification, so adding
// a backend means adding a constructor in this package rather than a type
// hierarchy. Descriptors never touch the filesystem when building commands;
// resolving executables is the registry's job.
package engines
