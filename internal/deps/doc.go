// Package deps reports which external programs are available: the backend
// executables for each engine and the FUSE unmount helper.
package deps
